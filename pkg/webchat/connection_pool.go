package webchat

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// wsConn is the subset of *websocket.Conn used for writing.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// client queues outgoing frames for one websocket connection and writes them
// from a single goroutine. Enqueueing never blocks: a client whose buffer is
// full is dropped.
type client struct {
	id           string
	conn         wsConn
	writeTimeout time.Duration

	mu     sync.Mutex
	out    chan []byte
	closed bool
	done   chan struct{}
}

func newClient(id string, conn wsConn, buffer int, writeTimeout time.Duration) *client {
	return &client{
		id:           id,
		conn:         conn,
		writeTimeout: writeTimeout,
		out:          make(chan []byte, buffer),
		done:         make(chan struct{}),
	}
}

func (c *client) send(f ServerFrame) {
	b, err := json.Marshal(f)
	if err != nil {
		log.Error().Err(err).Str("component", "webchat").Msg("could not encode frame")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.out <- b:
	default:
		log.Warn().Str("component", "webchat").Str("client", c.id).Msg("send buffer full, dropping connection")
		c.closeLocked()
		_ = c.conn.Close()
	}
}

// writeLoop drains the queue until the client is closed or a write fails.
func (c *client) writeLoop() {
	defer close(c.done)
	for b := range c.out {
		if c.writeTimeout > 0 {
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Warn().Err(err).Str("component", "webchat").Str("client", c.id).Msg("ws write failed, dropping connection")
			c.close()
			_ = c.conn.Close()
			for range c.out {
			}
			return
		}
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *client) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.out)
}

// ConnectionPool tracks live clients so the server can close them on shutdown.
type ConnectionPool struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewConnectionPool() *ConnectionPool {
	return &ConnectionPool{clients: map[*client]struct{}{}}
}

func (cp *ConnectionPool) Add(c *client) {
	cp.mu.Lock()
	cp.clients[c] = struct{}{}
	cp.mu.Unlock()
}

func (cp *ConnectionPool) Remove(c *client) {
	cp.mu.Lock()
	delete(cp.clients, c)
	cp.mu.Unlock()
}

func (cp *ConnectionPool) Count() int {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return len(cp.clients)
}

// CloseAll closes every underlying connection; their handlers then end their sessions.
func (cp *ConnectionPool) CloseAll() {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	for c := range cp.clients {
		_ = c.conn.Close()
	}
}
