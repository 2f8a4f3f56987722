package chat

import (
	"time"

	"github.com/go-go-golems/pandora/pkg/conversation"
	"github.com/go-go-golems/pandora/pkg/schedule"
)

// DefaultReplyDelay is how long the agent takes to answer.
const DefaultReplyDelay = 1000 * time.Millisecond

type SessionOption func(*Session)

func WithScheduler(s schedule.Scheduler) SessionOption {
	return func(sess *Session) {
		sess.scheduler = s
	}
}

func WithClock(c schedule.Clock) SessionOption {
	return func(sess *Session) {
		sess.clock = c
	}
}

func WithIDGenerator(g conversation.IDGenerator) SessionOption {
	return func(sess *Session) {
		sess.ids = g
	}
}

func WithResponder(r Responder) SessionOption {
	return func(sess *Session) {
		sess.responder = r
	}
}

func WithReplyDelay(d time.Duration) SessionOption {
	return func(sess *Session) {
		sess.delay = d
	}
}

// WithSeed replaces the seed conversation. Passing no messages starts empty.
func WithSeed(msgs ...conversation.Message) SessionOption {
	return func(sess *Session) {
		sess.seed = msgs
		sess.seedSet = true
	}
}

// WithObserver registers an observer on the session's store before any message is appended.
func WithObserver(o conversation.Observer) SessionOption {
	return func(sess *Session) {
		sess.observers = append(sess.observers, o)
	}
}

func WithID(id string) SessionOption {
	return func(sess *Session) {
		sess.id = id
	}
}
