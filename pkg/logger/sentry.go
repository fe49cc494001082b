package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig enables error reporting.
type SentryConfig struct {
	DSN         string
	Environment string
	Release     string
}

// sentryHandler turns error records into Sentry issues and keeps warnings
// as searchable logs.
func sentryHandler(cfg SentryConfig) (slog.Handler, error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		EnableLogs:  true,
	})
	if err != nil {
		return nil, err
	}
	return sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
	}.NewSentryHandler(context.Background()), nil
}

// FlushSentry waits for buffered events to be delivered. It is a shutdown
// hook and does nothing when Sentry was never initialized.
func FlushSentry(timeout time.Duration) func(context.Context) error {
	return func(context.Context) error {
		if sentry.CurrentHub().Client() != nil {
			sentry.Flush(timeout)
		}
		return nil
	}
}
