package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOption configures a Redis cache.
type RedisOption func(*redisConfig)

type redisConfig struct {
	namespace  string
	defaultTTL time.Duration
}

// WithNamespace prefixes every key with "namespace:".
func WithNamespace(ns string) RedisOption {
	return func(c *redisConfig) {
		c.namespace = ns
	}
}

// WithRedisDefaultTTL sets the ttl used when Set receives zero. Default 1h.
func WithRedisDefaultTTL(d time.Duration) RedisOption {
	return func(c *redisConfig) {
		c.defaultTTL = d
	}
}

// Redis is a Cache shared between console instances.
type Redis[V any] struct {
	client redis.UniversalClient
	codec  Codec[V]
	cfg    redisConfig
}

// NewRedis creates a Redis cache. A nil codec selects JSONCodec.
// The client is owned by the caller and is not closed by Close.
func NewRedis[V any](client redis.UniversalClient, codec Codec[V], opts ...RedisOption) *Redis[V] {
	cfg := redisConfig{defaultTTL: time.Hour}
	for _, opt := range opts {
		opt(&cfg)
	}
	if codec == nil {
		codec = JSONCodec[V]{}
	}
	return &Redis[V]{client: client, codec: codec, cfg: cfg}
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, err
	}
	return r.codec.Decode(data)
}

func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := r.codec.Encode(value)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = r.cfg.defaultTTL
	}
	// go-redis treats 0 as "no expiry".
	return r.client.Set(ctx, r.key(key), data, max(ttl, 0)).Err()
}

func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *Redis[V]) Close() error {
	return nil
}

func (r *Redis[V]) key(k string) string {
	if r.cfg.namespace == "" {
		return k
	}
	return r.cfg.namespace + ":" + k
}

var _ Cache[struct{}] = (*Redis[struct{}])(nil)
