package webchat

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-go-golems/pandora/pkg/chat"
	"github.com/go-go-golems/pandora/pkg/conversation"
	"github.com/go-go-golems/pandora/pkg/events"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

//go:embed static
var staticFS embed.FS

const (
	defaultSendBuffer   = 64
	defaultWriteTimeout = 10 * time.Second
	maxFrameSize        = 64 * 1024
)

type Server struct {
	addr         string
	sessionOpts  []chat.SessionOption
	bus          *events.Bus
	upgrader     websocket.Upgrader
	pool         *ConnectionPool
	sendBuffer   int
	writeTimeout time.Duration
}

type ServerOption func(*Server)

func WithAddr(addr string) ServerOption {
	return func(s *Server) { s.addr = addr }
}

// WithSessionOptions applies to every session the server creates.
func WithSessionOptions(opts ...chat.SessionOption) ServerOption {
	return func(s *Server) { s.sessionOpts = append(s.sessionOpts, opts...) }
}

// WithBus mirrors every session's messages onto the event bus.
func WithBus(b *events.Bus) ServerOption {
	return func(s *Server) { s.bus = b }
}

func WithSendBuffer(n int) ServerOption {
	return func(s *Server) { s.sendBuffer = n }
}

func NewServer(opts ...ServerOption) *Server {
	s := &Server{
		addr:         ":8080",
		upgrader:     websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		pool:         NewConnectionPool(),
		sendBuffer:   defaultSendBuffer,
		writeTimeout: defaultWriteTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Server) Pool() *ConnectionPool { return s.pool }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("/", http.FileServer(http.FS(static)))
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/seed", s.handleSeed)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(conversation.SeedMessages(time.Now())); err != nil {
		log.Error().Err(err).Str("component", "webchat").Msg("could not encode seed")
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("component", "webchat").Msg("websocket upgrade failed")
		return
	}
	conn.SetReadLimit(maxFrameSize)

	opts := append([]chat.SessionOption{}, s.sessionOpts...)
	var c *client
	opts = append(opts, chat.WithObserver(func(m conversation.Message) {
		c.send(messageFrame(m))
	}))
	sess, err := chat.NewSession(opts...)
	if err != nil {
		log.Error().Err(err).Str("component", "webchat").Msg("could not create session")
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","error":"could not create session"}`))
		_ = conn.Close()
		return
	}
	var mirror *events.Mirror
	if s.bus != nil {
		mirror = events.NewMirror(s.bus, sess.ID(), 0)
		sess.Store().Observe(mirror.Observer())
	}

	c = newClient(sess.ID(), conn, s.sendBuffer, s.writeTimeout)
	s.pool.Add(c)
	logger := log.With().Str("component", "webchat").Str("session", sess.ID()).Logger()
	logger.Info().Str("remote", r.RemoteAddr).Msg("session started")

	go c.writeLoop()
	c.send(snapshotFrame(sess.ID(), sess.Messages()))

	defer func() {
		sess.Close()
		if mirror != nil {
			ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
			if err := mirror.Close(ctx); err != nil {
				logger.Warn().Err(err).Msg("message events still queued at disconnect")
			}
			cancel()
		}
		c.close()
		<-c.done
		_ = conn.Close()
		s.pool.Remove(c)
		logger.Info().Msg("session ended")
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug().Err(err).Msg("websocket read ended")
			}
			return
		}
		f, err := decodeClientFrame(data)
		if err != nil {
			c.send(errorFrame(err))
			continue
		}
		switch f.Type {
		case FrameDraft:
			sess.SetDraft(f.Text)
		case FrameSubmit:
			_, ok := sess.Submit()
			c.send(ackFrame(FrameSubmit, true, ok))
		case FrameKey:
			res := sess.HandleKey(chat.KeyEvent{Key: f.Key, Shift: f.Shift})
			c.send(ackFrame(FrameKey, res.Handled, res.Submitted))
		}
	}
}

// Run serves until ctx is cancelled, then shuts down the HTTP server and
// closes all live connections.
func (s *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		s.pool.CloseAll()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
			return err
		}
		log.Info().Msg("server shutdown complete")
		return nil
	})
	eg.Go(func() error {
		log.Info().Str("addr", s.addr).Msg("starting pandora web chat")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server listen error")
		}
		return nil
	})
	return eg.Wait()
}
