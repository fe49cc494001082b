package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ochoko/admin/pkg/logger"
)

const (
	defaultTimeout     = 5 * time.Second
	defaultParallelism = 8

	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc reports the health of one dependency.
type CheckFunc func(ctx context.Context) error

// Checks maps a check name to its function.
type Checks map[string]CheckFunc

// Response is the aggregated result of a readiness run.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check is the result of a single check.
type Check struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Err returns ErrCheckFailed joined with the failing check names, or nil.
func (r *Response) Err() error {
	if r.Status == StatusHealthy {
		return nil
	}
	names := make([]string, 0, len(r.Checks))
	for name, c := range r.Checks {
		if c.Status != StatusHealthy {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return fmt.Errorf("%w: %v", ErrCheckFailed, names)
}

type config struct {
	logger      *slog.Logger
	timeout     time.Duration
	parallelism int
}

// Option configures a readiness run.
type Option func(*config)

// WithTimeout bounds the whole run. Defaults to 5s.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithParallelism caps how many checks run at once.
func WithParallelism(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

// WithLogger logs failing checks at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		timeout:     defaultTimeout,
		parallelism: defaultParallelism,
		logger:      logger.NewNope(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Run executes checks in parallel and aggregates the results.
// A check still running when the timeout fires is reported as
// ErrCheckTimeout.
func Run(ctx context.Context, checks Checks, opts ...Option) *Response {
	cfg := newConfig(opts...)
	if len(checks) == 0 {
		return &Response{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]Check, len(checks))
		status  = StatusHealthy
	)

	// Checks never fail the group; errors are collected per name.
	var g errgroup.Group
	g.SetLimit(cfg.parallelism)
	for name, check := range checks {
		g.Go(func() error {
			result := Check{Status: StatusHealthy}
			if err := check(ctx); err != nil {
				if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
					err = fmt.Errorf("%w: %w", ErrCheckTimeout, err)
				}
				result = Check{Status: StatusUnhealthy, Error: err.Error()}
				cfg.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			results[name] = result
			if result.Status != StatusHealthy {
				status = StatusUnhealthy
			}
			return nil
		})
	}
	_ = g.Wait()

	return &Response{Status: status, Checks: results}
}

// HTTPCheck probes url with a GET and treats any status below 500 as
// healthy: the sake API answers 401 or 404 on bare paths while it is up.
func HTTPCheck(client *http.Client, url string) CheckFunc {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		_ = resp.Body.Close()
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
		}
		return nil
	}
}
