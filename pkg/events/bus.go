package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-go-golems/pandora/pkg/redisstream"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Bus carries conversation events from sessions to whatever renders them.
// It runs a watermill router; handlers are added before Run.
type Bus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	router     *message.Router
	redis      redis.UniversalClient
	closers    []func() error
}

// NewBus builds an in-process bus, or a Redis Streams backed one when settings enable it.
func NewBus(s redisstream.Settings, logger watermill.LoggerAdapter) (*Bus, error) {
	if logger == nil {
		logger = NewZerologAdapter(log.Logger)
	}
	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, errors.Wrap(err, "could not create router")
	}

	if !s.Enabled {
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, logger)
		return &Bus{
			Publisher:  ch,
			Subscriber: ch,
			router:     router,
			closers:    []func() error{ch.Close},
		}, nil
	}

	tr, err := redisstream.NewTransport(s, logger)
	if err != nil {
		return nil, err
	}
	return &Bus{
		Publisher:  tr.Publisher,
		Subscriber: tr.Subscriber,
		router:     router,
		redis:      tr.Client,
		closers:    []func() error{tr.Close},
	}, nil
}

// Redis returns the client of a Redis Streams backed bus, nil for the in-process bus.
func (b *Bus) Redis() redis.UniversalClient {
	return b.redis
}

// AddHandler consumes TopicMessages with f. Messages are acked after f returns
// without error.
func (b *Bus) AddHandler(name string, f func(Event) error) {
	b.router.AddNoPublisherHandler(name, TopicMessages, b.Subscriber, func(msg *message.Message) error {
		e, err := NewEventFromJSON(msg.Payload)
		if err != nil {
			// a malformed payload would be redelivered forever
			log.Warn().Err(err).Str("component", "events").Str("uuid", msg.UUID).Msg("dropping malformed event")
			return nil
		}
		return f(e)
	})
}

// Run blocks until ctx is cancelled or the router stops.
func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

// Running is closed once the router's handlers are subscribed.
func (b *Bus) Running() chan struct{} {
	return b.router.Running()
}

func (b *Bus) Publish(e Event) error {
	payload, err := e.Marshal()
	if err != nil {
		return errors.Wrap(err, "could not encode event")
	}
	return b.Publisher.Publish(TopicMessages, message.NewMessage(uuid.NewString(), payload))
}

func (b *Bus) Close() error {
	err := b.router.Close()
	for _, c := range b.closers {
		if cerr := c(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
