package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Option tunes the connection.
type Option func(*config)

type config struct {
	poolSize    int
	attempts    int
	backoff     time.Duration
	dialTimeout time.Duration
	ioTimeout   time.Duration
}

// WithPoolSize sets the connection pool size. Default 10.
func WithPoolSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.poolSize = n
		}
	}
}

// WithRetry sets how many times the first ping is attempted and the base
// delay between attempts. The delay grows linearly. Default 3 attempts, 2s.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *config) {
		c.attempts = max(attempts, 1)
		c.backoff = backoff
	}
}

// WithTimeouts sets the dial timeout and the read/write timeout.
func WithTimeouts(dial, io time.Duration) Option {
	return func(c *config) {
		c.dialTimeout = dial
		c.ioTimeout = io
	}
}

// Open connects to the server at url (redis:// or rediss://) and pings it.
func Open(ctx context.Context, url string, opts ...Option) (redis.UniversalClient, error) {
	if url == "" {
		return nil, ErrNoURL
	}
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, fmt.Errorf("%w: unsupported scheme", ErrBadURL)
	}

	cfg := config{
		poolSize:    10,
		attempts:    3,
		backoff:     2 * time.Second,
		dialTimeout: 5 * time.Second,
		ioTimeout:   3 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	ro, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrBadURL, err)
	}
	ro.PoolSize = cfg.poolSize
	ro.DialTimeout = cfg.dialTimeout
	ro.ReadTimeout = cfg.ioTimeout
	ro.WriteTimeout = cfg.ioTimeout

	var lastErr error
	for i := range cfg.attempts {
		client := redis.NewClient(ro)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		if i == cfg.attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrUnreachable, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.backoff):
		}
	}
	return nil, errors.Join(ErrUnreachable, lastErr)
}

// Ping returns a readiness check for client.
func Ping(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrNotResponding
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrNotResponding, err)
		}
		return nil
	}
}

// Closer adapts client.Close to a shutdown hook.
func Closer(client io.Closer) func(context.Context) error {
	return func(context.Context) error {
		return client.Close()
	}
}
