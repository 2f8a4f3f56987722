package chat

import (
	"sync"
	"time"

	"github.com/go-go-golems/pandora/pkg/composer"
	"github.com/go-go-golems/pandora/pkg/conversation"
	"github.com/go-go-golems/pandora/pkg/schedule"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Session owns one conversation: its store, the composer, and the replies
// scheduled for it. User actions and reply timers are serialized by mu.
//
// Store observers run while mu is held; they must not block or call back into the session.
type Session struct {
	id        string
	mu        sync.Mutex
	store     *conversation.Store
	composer  *composer.Composer
	scheduler schedule.Scheduler
	clock     schedule.Clock
	ids       conversation.IDGenerator
	responder Responder
	delay     time.Duration

	seed      []conversation.Message
	seedSet   bool
	observers []conversation.Observer

	nextTask uint64
	pending  map[uint64]schedule.Handle
	closed   bool
}

func NewSession(opts ...SessionOption) (*Session, error) {
	s := &Session{
		composer:  composer.New(),
		scheduler: schedule.NewTimer(),
		clock:     schedule.SystemClock{},
		ids:       conversation.UUIDGenerator{},
		responder: CannedResponder{},
		delay:     DefaultReplyDelay,
		pending:   map[uint64]schedule.Handle{},
	}
	for _, o := range opts {
		o(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.delay < 0 {
		return nil, errors.Errorf("reply delay must not be negative, got %s", s.delay)
	}
	if !s.seedSet {
		s.seed = conversation.SeedMessages(s.clock.Now())
	}

	store, err := conversation.NewStore(s.seed...)
	if err != nil {
		return nil, errors.Wrap(err, "could not create conversation store")
	}
	for _, o := range s.observers {
		store.Observe(o)
	}
	s.store = store
	return s, nil
}

func (s *Session) ID() string { return s.id }

// Store exposes the conversation for reading and observing.
func (s *Session) Store() *conversation.Store { return s.store }

func (s *Session) Messages() []conversation.Message { return s.store.Messages() }

// Draft returns the current composer text.
func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.composer.Value()
}

// SetDraft replaces the composer text, as on every keystroke.
func (s *Session) SetDraft(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.composer.Set(v)
}

func (s *Session) ComposerState() composer.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.composer.State()
}

// Submit sends the draft. A blank draft is ignored and ok is false.
func (s *Session) Submit() (conversation.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return conversation.Message{}, false
	}

	text, ok := s.composer.Take()
	if !ok {
		return conversation.Message{}, false
	}

	msg := conversation.NewMessage(s.ids.NextID(), conversation.SenderUser, text, s.clock.Now())
	if err := s.store.Append(msg); err != nil {
		// only reachable through a broken IDGenerator
		log.Error().Err(err).Str("component", "chat").Str("session", s.id).Msg("could not append user message")
		s.composer.Set(text)
		return conversation.Message{}, false
	}
	log.Debug().Str("component", "chat").Str("session", s.id).Str("id", msg.ID).Msg("user message appended")

	s.scheduleReplyLocked(msg)
	return msg, true
}

// SubmitText sets the draft and submits it in one step.
func (s *Session) SubmitText(text string) (conversation.Message, bool) {
	s.SetDraft(text)
	return s.Submit()
}

// HandleKey reacts to a key press. Plain Enter submits; Shift+Enter is left to the
// surface so it can insert a line break.
func (s *Session) HandleKey(ev KeyEvent) KeyResult {
	if ev.Key != KeyEnter || ev.Shift {
		return KeyResult{}
	}
	_, ok := s.Submit()
	return KeyResult{Handled: true, Submitted: ok}
}

func (s *Session) scheduleReplyLocked(userMsg conversation.Message) {
	s.nextTask++
	task := s.nextTask
	h := s.scheduler.AfterFunc(s.delay, func() {
		s.deliverReply(task, userMsg)
	})
	// deliverReply waits on mu, so the handle is always recorded before it runs.
	s.pending[task] = h
	log.Debug().Str("component", "chat").Str("session", s.id).Dur("delay", s.delay).Msg("reply scheduled")
}

func (s *Session) deliverReply(task uint64, userMsg conversation.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		log.Debug().Str("component", "chat").Str("session", s.id).Msg("session closed, reply discarded")
		return
	}
	delete(s.pending, task)

	reply := conversation.NewMessage(
		s.ids.NextID(),
		conversation.SenderAgent,
		s.responder.Reply(userMsg),
		s.clock.Now(),
	)
	if err := s.store.Append(reply); err != nil {
		log.Error().Err(err).Str("component", "chat").Str("session", s.id).Msg("could not append reply")
		return
	}
	log.Debug().Str("component", "chat").Str("session", s.id).Str("id", reply.ID).Msg("reply appended")
}

// Pending counts replies that are scheduled but have not been delivered.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close ends the session. Scheduled replies are cancelled, and any reply whose
// timer fires anyway is dropped. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for task, h := range s.pending {
		h.Stop()
		delete(s.pending, task)
	}
	log.Debug().Str("component", "chat").Str("session", s.id).Msg("session closed")
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
