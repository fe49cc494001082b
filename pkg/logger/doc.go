// Package logger builds the console's slog.Logger.
//
// Records are written as JSON to stdout. When a Sentry DSN is configured
// errors are also reported to Sentry and warnings are kept there as logs.
// Context extractors add request-scoped attributes such as the request id
// and the signed-in admin:
//
//	log := logger.New(logger.Config{Level: slog.LevelInfo},
//	    logger.ContextString(requestIDKey{}, "request_id"),
//	)
//	log.InfoContext(ctx, "sakes listed", slog.Int("count", n))
package logger
