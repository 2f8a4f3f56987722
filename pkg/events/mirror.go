package events

import (
	"context"
	"sync"

	"github.com/go-go-golems/pandora/pkg/conversation"
	"github.com/rs/zerolog/log"
)

const DefaultMirrorBuffer = 256

// Mirror publishes the messages of one session on a bus from its own goroutine.
// Its observer only queues, so it can be registered on a session store whose
// observers run under the session lock. Events are published in append order;
// when the queue is full the event is dropped and logged.
type Mirror struct {
	bus       *Bus
	sessionID string

	mu     sync.Mutex
	closed bool
	queue  chan Event
	done   chan struct{}
}

func NewMirror(b *Bus, sessionID string, buffer int) *Mirror {
	if buffer <= 0 {
		buffer = DefaultMirrorBuffer
	}
	m := &Mirror{
		bus:       b,
		sessionID: sessionID,
		queue:     make(chan Event, buffer),
		done:      make(chan struct{}),
	}
	go m.loop()
	return m
}

func (m *Mirror) loop() {
	defer close(m.done)
	for e := range m.queue {
		if err := m.bus.Publish(e); err != nil {
			log.Error().Err(err).Str("component", "events").Str("session", m.sessionID).Msg("could not publish message event")
		}
	}
}

// Observer returns the store observer feeding the mirror.
func (m *Mirror) Observer() conversation.Observer {
	return func(msg conversation.Message) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed {
			return
		}
		select {
		case m.queue <- NewMessageAppended(m.sessionID, msg):
		default:
			log.Warn().Str("component", "events").Str("session", m.sessionID).Str("id", msg.ID).Msg("event queue full, dropping message event")
		}
	}
}

// Close stops accepting events and waits until the queued ones are published
// or ctx is done. It can be called more than once.
func (m *Mirror) Close(ctx context.Context) error {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.queue)
	}
	m.mu.Unlock()

	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
