package cmds

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/pandora/pkg/chat"
	"github.com/go-go-golems/pandora/pkg/console"
	"github.com/go-go-golems/pandora/pkg/events"
	"github.com/go-go-golems/pandora/pkg/logging"
	"github.com/go-go-golems/pandora/pkg/redisstream"
	"github.com/go-go-golems/pandora/pkg/transcript"
	"github.com/go-go-golems/pandora/pkg/ui"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type chatFlags struct {
	transcript string
	noColor    bool
	console    bool
}

func NewChatCommand(app *App) *cobra.Command {
	f := &chatFlags{}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the planning agent in the terminal",
		Long: `Opens the chat in a full screen terminal UI.

Enter sends the message, alt+enter (or ctrl+j) inserts a line break.
When stdin or stdout is not a terminal, a line based console is used instead:
every line is sent, a trailing backslash continues the message on the next line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), app, f)
		},
	}
	cmd.Flags().StringVar(&f.transcript, "transcript", "", "Write the conversation to this file (.yaml or .json) on exit")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "Disable colors and markdown styling")
	cmd.Flags().BoolVar(&f.console, "console", false, "Use the line based console even on a terminal")
	return cmd
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func runChat(ctx context.Context, app *App, f *chatFlags) error {
	s := app.Settings
	interactive := !f.console && isTerminal(os.Stdin) && isTerminal(os.Stdout)

	closer, err := logging.Init(logging.Settings{
		Level:   s.LogLevel,
		Format:  s.LogFormat,
		File:    s.LogFile,
		Discard: interactive,
	}, os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	opts, err := s.SessionOptions()
	if err != nil {
		return err
	}
	sess, err := chat.NewSession(opts...)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// other processes follow the conversation through Redis; this process
	// never reads it back from there.
	var mirror *events.Mirror
	if s.Redis.Enabled {
		bus, err := events.NewBus(s.Redis, events.NewZerologAdapter(log.Logger))
		if err != nil {
			return errors.Wrap(err, "could not create event bus")
		}
		defer func() { _ = bus.Close() }()
		mirror = events.NewMirror(bus, sess.ID(), 0)
		sess.Store().Observe(mirror.Observer())
	}

	log.Info().Str("session", sess.ID()).Bool("interactive", interactive).Msg("chat session started")
	if interactive {
		err = runTUI(ctx, sess, f)
	} else {
		printer := console.NewPrinter(os.Stdout)
		sess.Store().Observe(printer.Observer())
		err = console.Run(ctx, sess, printer, os.Stdin, s.ReplyDelay+time.Second)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	}
	sess.Close()

	if mirror != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if cerr := mirror.Close(closeCtx); cerr != nil {
			log.Warn().Err(cerr).Msg("message events still queued at exit")
		}
		cancel()
	}

	if f.transcript != "" {
		t := transcript.Transcript{SessionID: sess.ID(), Messages: sess.Messages()}
		if werr := transcript.WriteFile(f.transcript, t); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

// runTUI refreshes the view through an in-process bus: store observers run under
// the session lock and must not call p.Send themselves.
func runTUI(ctx context.Context, sess *chat.Session, f *chatFlags) error {
	style := "light"
	switch {
	case f.noColor:
		lipgloss.SetColorProfile(termenv.Ascii)
		style = "notty"
	case termenv.HasDarkBackground():
		style = "dark"
	}

	bus, err := events.NewBus(redisstream.Settings{}, events.NewZerologAdapter(log.Logger))
	if err != nil {
		return errors.Wrap(err, "could not create event bus")
	}
	defer func() { _ = bus.Close() }()
	local := events.NewMirror(bus, sess.ID(), 0)
	defer func() { _ = local.Close(context.Background()) }()
	sess.Store().Observe(local.Observer())

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, egCtx := errgroup.WithContext(runCtx)

	p := tea.NewProgram(
		ui.NewModel(sess, ui.Options{MarkdownStyle: style}),
		tea.WithAltScreen(),
		tea.WithContext(egCtx),
	)
	bus.AddHandler("ui-forward", ui.ForwardFunc(p, sess.ID()))

	eg.Go(func() error {
		return bus.Run(egCtx)
	})
	eg.Go(func() error {
		defer cancel()
		select {
		case <-bus.Running():
		case <-egCtx.Done():
			return nil
		}
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return errors.Wrap(err, "error running program")
		}
		return nil
	})
	return eg.Wait()
}
