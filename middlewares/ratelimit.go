package middlewares

import (
	"context"
	"math"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/ochoko/admin/internal"
	"github.com/ochoko/admin/pkg/cache"
)

// RateLimitConfig configures a RateLimiter.
type RateLimitConfig struct {
	KeyFunc  func(c internal.Context) string
	IdleTTL  time.Duration
	Capacity int
	Message  string
}

// RateLimitOption configures RateLimitConfig.
type RateLimitOption func(*RateLimitConfig)

// WithRateLimitKey buckets requests by something other than client IP.
func WithRateLimitKey(fn func(c internal.Context) string) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		if fn != nil {
			cfg.KeyFunc = fn
		}
	}
}

// WithRateLimitIdleTTL sets how long an unused bucket is kept.
func WithRateLimitIdleTTL(d time.Duration) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		if d > 0 {
			cfg.IdleTTL = d
		}
	}
}

// WithRateLimitCapacity bounds the number of tracked clients.
func WithRateLimitCapacity(n int) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		cfg.Capacity = n
	}
}

// WithRateLimitMessage sets the 429 message.
func WithRateLimitMessage(msg string) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		cfg.Message = msg
	}
}

// RateLimiter is a token bucket per client. It guards the login form.
type RateLimiter struct {
	cfg     RateLimitConfig
	limit   rate.Limit
	burst   int
	buckets *cache.Memory[*rate.Limiter]
	loader  *cache.Loader[*rate.Limiter]
}

// NewRateLimiter allows limit events per second with the given burst
// for each client. Call Close when done.
func NewRateLimiter(limit rate.Limit, burst int, opts ...RateLimitOption) *RateLimiter {
	cfg := RateLimitConfig{
		KeyFunc:  func(c internal.Context) string { return c.ClientIP() },
		IdleTTL:  10 * time.Minute,
		Capacity: 10_000,
		Message:  "Too many attempts. Please wait and try again.",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	buckets := cache.NewMemory[*rate.Limiter](
		cache.WithDefaultTTL(cfg.IdleTTL),
		cache.WithCapacity(cfg.Capacity),
	)
	return &RateLimiter{
		cfg:     cfg,
		limit:   limit,
		burst:   burst,
		buckets: buckets,
		loader:  cache.NewLoader[*rate.Limiter](buckets),
	}
}

// Allow consumes one event for key.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration) {
	lim, err := l.loader.Get(ctx, key, func(context.Context) (*rate.Limiter, time.Duration, error) {
		return rate.NewLimiter(l.limit, l.burst), l.cfg.IdleTTL, nil
	})
	if err != nil {
		return true, 0
	}

	res := lim.Reserve()
	if !res.OK() {
		return false, l.cfg.IdleTTL
	}
	if delay := res.Delay(); delay > 0 {
		res.Cancel()
		return false, delay
	}
	return true, 0
}

// Middleware rejects requests over the limit with 429 and Retry-After.
func (l *RateLimiter) Middleware() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			ok, wait := l.Allow(c, l.cfg.KeyFunc(c))
			if !ok {
				c.SetHeader("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				c.LogWarn("rate limit exceeded", "client_ip", c.ClientIP())
				return internal.ErrTooManyRequests(l.cfg.Message)
			}
			return next(c)
		}
	}
}

// Close stops the bucket sweeper.
func (l *RateLimiter) Close() error {
	return l.buckets.Close()
}
