package logger

import (
	"io"
	"log/slog"
	"os"
)

// Config selects where log records go.
type Config struct {
	// Output defaults to os.Stdout.
	Output io.Writer
	// Sentry is used when its DSN is set.
	Sentry SentryConfig
	Level  slog.Level
	// Text switches from JSON to logfmt-style output for local runs.
	Text bool
}

// New builds the process logger. Extractors add request-scoped attributes
// to every record logged with a context.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	hopts := &slog.HandlerOptions{Level: cfg.Level}
	var h slog.Handler
	if cfg.Text {
		h = slog.NewTextHandler(out, hopts)
	} else {
		h = slog.NewJSONHandler(out, hopts)
	}

	if cfg.Sentry.DSN != "" {
		if sh, err := sentryHandler(cfg.Sentry); err != nil {
			slog.New(h).Error("sentry disabled", slog.String("error", err.Error()))
		} else {
			h = fanout{h, sh}
		}
	}

	return slog.New(withExtractors(h, extractors...))
}

// NewNope returns a logger that drops everything.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything
// else is info.
func ParseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
