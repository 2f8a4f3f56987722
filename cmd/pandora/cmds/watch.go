package cmds

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/go-go-golems/pandora/pkg/console"
	"github.com/go-go-golems/pandora/pkg/events"
	"github.com/go-go-golems/pandora/pkg/logging"
	"github.com/go-go-golems/pandora/pkg/redisstream"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewWatchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow the conversations mirrored to Redis",
		Long: `Prints every message that chat and serve sessions mirror to Redis Streams,
prefixed with the session id. Redis is enabled implicitly.

Watchers sharing a redis-group split the stream between them; give each
watcher its own group to see every message.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.Settings
			s.Redis.Enabled = true
			if err := s.Redis.Validate(); err != nil {
				return err
			}

			closer, err := logging.Init(logging.Settings{
				Level:  s.LogLevel,
				Format: s.LogFormat,
				File:   s.LogFile,
			}, os.Stderr)
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			bus, err := events.NewBus(s.Redis, events.NewZerologAdapter(log.Logger))
			if err != nil {
				return errors.Wrap(err, "could not create event bus")
			}
			defer func() { _ = bus.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := redisstream.EnsureGroupAtTail(ctx, bus.Redis(), events.TopicMessages, s.Redis.Group); err != nil {
				return errors.Wrap(err, "could not prepare redis consumer group")
			}

			printer := console.NewPrinter(cmd.OutOrStdout())
			bus.AddHandler("watch", func(e events.Event) error {
				printer.PrintEvent(e.SessionID, *e.Message)
				return nil
			})
			log.Info().Str("group", s.Redis.Group).Str("consumer", s.Redis.Consumer).Msg("watching conversations")
			return bus.Run(ctx)
		},
	}
}
