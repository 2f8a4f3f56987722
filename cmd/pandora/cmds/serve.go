package cmds

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/go-go-golems/pandora/pkg/events"
	"github.com/go-go-golems/pandora/pkg/logging"
	"github.com/go-go-golems/pandora/pkg/webchat"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewServeCommand(app *App) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat in the browser",
		Long: `Serves the chat page and its websocket endpoint.

Every browser tab gets its own conversation; closing the tab ends it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.Settings
			closer, err := logging.Init(logging.Settings{
				Level:  s.LogLevel,
				Format: s.LogFormat,
				File:   s.LogFile,
			}, os.Stderr)
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			opts, err := s.SessionOptions()
			if err != nil {
				return err
			}
			serverOpts := []webchat.ServerOption{
				webchat.WithAddr(addr),
				webchat.WithSessionOptions(opts...),
			}
			if s.Redis.Enabled {
				bus, err := events.NewBus(s.Redis, events.NewZerologAdapter(log.Logger))
				if err != nil {
					return errors.Wrap(err, "could not create event bus")
				}
				defer func() { _ = bus.Close() }()
				serverOpts = append(serverOpts, webchat.WithBus(bus))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return webchat.NewServer(serverOpts...).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	return cmd
}
