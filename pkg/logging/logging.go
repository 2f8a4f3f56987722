package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Settings struct {
	Level  string
	Format string
	File   string
	// Discard drops all output when no file is set; the TUI owns the terminal.
	Discard bool
}

// ParseLevel converts a string level into zerolog.Level with a safe default.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Init configures the global zerolog logger. The returned closer releases the
// log file, if one was opened.
func Init(s Settings, stderr io.Writer) (io.Closer, error) {
	var out io.Writer = stderr
	var closer io.Closer = nopCloser{}

	switch {
	case s.File != "":
		f, err := os.OpenFile(s.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errors.Wrap(err, "could not open log file")
		}
		out, closer = f, f
	case s.Discard:
		out = io.Discard
	}

	if s.Format != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: s.File != ""}
	}

	zerolog.SetGlobalLevel(ParseLevel(s.Level))
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return closer, nil
}
