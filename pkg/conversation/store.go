package conversation

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrEmptyID     = errors.New("message id is empty")
	ErrDuplicateID = errors.New("duplicate message id")
)

// Observer is called after every successful append, outside the store lock.
type Observer func(Message)

// Store is the append-only, ordered list of messages of one session.
type Store struct {
	mu        sync.RWMutex
	messages  []Message
	ids       map[string]struct{}
	observers []Observer
}

// NewStore creates a store holding the given initial messages, in order.
func NewStore(initial ...Message) (*Store, error) {
	s := &Store{
		messages: make([]Message, 0, len(initial)+8),
		ids:      make(map[string]struct{}, len(initial)+8),
	}
	for _, m := range initial {
		if err := s.insertLocked(m); err != nil {
			return nil, errors.Wrap(err, "seeding store")
		}
	}
	return s, nil
}

// Observe registers an observer for subsequent appends.
func (s *Store) Observe(o Observer) {
	if o == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

func (s *Store) Append(m Message) error {
	s.mu.Lock()
	if err := s.insertLocked(m); err != nil {
		s.mu.Unlock()
		return err
	}
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, o := range observers {
		o(m)
	}
	return nil
}

func (s *Store) insertLocked(m Message) error {
	if m.ID == "" {
		return ErrEmptyID
	}
	if err := m.Sender.Validate(); err != nil {
		return err
	}
	if _, ok := s.ids[m.ID]; ok {
		return errors.Wrapf(ErrDuplicateID, "%q", m.ID)
	}
	s.ids[m.ID] = struct{}{}
	s.messages = append(s.messages, m)
	return nil
}

// Messages returns a copy of the conversation in display order.
func (s *Store) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Last returns the most recent message, if any.
func (s *Store) Last() (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

// LastFrom returns the most recent message written by sender.
func (s *Store) LastFrom(sender Sender) (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Sender == sender {
			return s.messages[i], true
		}
	}
	return Message{}, false
}
