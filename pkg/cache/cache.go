package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a typed key-value store with per-entry expiry.
//
// The ttl passed to Set follows one rule for every backend: a positive
// value expires the entry after that duration, zero applies the cache
// default and a negative value keeps the entry until it is deleted.
type Cache[V any] interface {
	// Get returns ErrNotFound for missing and expired keys.
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Codec turns values into bytes for backends that store raw data.
type Codec[V any] interface {
	Encode(v V) ([]byte, error)
	Decode(data []byte) (V, error)
}

// JSONCodec is the default Codec.
type JSONCodec[V any] struct{}

func (JSONCodec[V]) Encode(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (JSONCodec[V]) Decode(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

// BytesCodec stores byte slices as they are.
type BytesCodec struct{}

func (BytesCodec) Encode(v []byte) ([]byte, error) { return v, nil }
func (BytesCodec) Decode(data []byte) ([]byte, error) {
	return data, nil
}

// LoadFunc computes a missing value and the ttl to store it with.
type LoadFunc[V any] func(ctx context.Context) (V, time.Duration, error)

// Loader fills a cache on demand. Concurrent misses for one key share a
// single call to the load function.
//
// The singleflight group belongs to the loader, so two caches that happen
// to use the same key never wait on each other.
type Loader[V any] struct {
	cache Cache[V]
	group singleflight.Group
}

// NewLoader wraps c.
func NewLoader[V any](c Cache[V]) *Loader[V] {
	return &Loader[V]{cache: c}
}

// Cache returns the wrapped cache.
func (l *Loader[V]) Cache() Cache[V] {
	return l.cache
}

// Get returns the cached value for key or loads it with fn.
// Errors from fn are returned and nothing is stored. A canceled ctx stops
// the wait but not a load other callers share.
func (l *Loader[V]) Get(ctx context.Context, key string, fn LoadFunc[V]) (V, error) {
	if v, err := l.cache.Get(ctx, key); err == nil {
		return v, nil
	}

	type loaded struct {
		val V
		ttl time.Duration
	}
	// The load is shared by every waiter, so it must not die with the
	// first caller's context. Each caller still stops waiting on its own.
	shared := context.WithoutCancel(ctx)
	ch := l.group.DoChan(key, func() (any, error) {
		v, ttl, err := fn(shared)
		if err != nil {
			return nil, err
		}
		// Store before releasing followers so the next caller hits.
		_ = l.cache.Set(shared, key, v, ttl)
		return loaded{val: v, ttl: ttl}, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(loaded).val, nil
	}
}

// Forget drops key from the cache.
func (l *Loader[V]) Forget(ctx context.Context, key string) error {
	return l.cache.Delete(ctx, key)
}
