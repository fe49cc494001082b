package middlewares

import (
	"runtime"

	"github.com/getsentry/sentry-go"

	"github.com/ochoko/admin/internal"
)

// DefaultStackSize caps the recorded stack trace in bytes.
const DefaultStackSize = 4096

// RecoverConfig configures the recover middleware.
type RecoverConfig struct {
	StackSize         int
	DisablePrintStack bool
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

// WithRecoverStackSize sets the maximum stack trace size.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		if size > 0 {
			cfg.StackSize = size
		}
	}
}

// WithRecoverDisablePrintStack leaves the stack trace out of the log.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.DisablePrintStack = true
	}
}

// Recover turns a handler panic into a *PanicError for the error handler.
// The panic is logged and, when Sentry is initialized, reported to it.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := &RecoverConfig{StackSize: DefaultStackSize}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				if hub := sentry.CurrentHub(); hub.Client() != nil {
					hub.RecoverWithContext(c.Context(), r)
				}

				if cfg.DisablePrintStack {
					c.LogError("panic recovered", "panic", r)
					err = &PanicError{Value: r}
					return
				}

				stack := make([]byte, cfg.StackSize)
				stack = stack[:runtime.Stack(stack, false)]
				c.LogError("panic recovered", "panic", r, "stack", string(stack))
				err = &PanicError{Value: r, Stack: stack}
			}()

			return next(c)
		}
	}
}
