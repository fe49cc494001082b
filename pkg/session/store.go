package session

import (
	"context"
	"errors"
	"time"

	"github.com/ochoko/admin/pkg/cache"
)

// Store persists sessions by token.
type Store interface {
	Load(ctx context.Context, token string) (*Session, error)
	// Save writes s under s.Token until s.ExpiresAt.
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, token string) error
}

// CacheStore keeps sessions in a cache: a Memory cache for a single
// instance or a Redis cache shared by several.
type CacheStore struct {
	entries cache.Cache[Session]
}

// NewCacheStore stores sessions in c.
func NewCacheStore(c cache.Cache[Session]) *CacheStore {
	return &CacheStore{entries: c}
}

// NewMemoryStore is a CacheStore over a process-local cache.
func NewMemoryStore() *CacheStore {
	return NewCacheStore(cache.NewMemory[Session](cache.WithCapacity(10000)))
}

func (s *CacheStore) Load(ctx context.Context, token string) (*Session, error) {
	sess, err := s.entries.Get(ctx, token)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if sess.Expired() {
		_ = s.entries.Delete(ctx, token)
		return nil, ErrExpired
	}
	if sess.Values == nil {
		sess.Values = make(map[string]string)
	}
	return &sess, nil
}

func (s *CacheStore) Save(ctx context.Context, sess *Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}
	// Store a private copy of the values.
	rec := *sess
	rec.Values = make(map[string]string, len(sess.Values))
	for k, v := range sess.Values {
		rec.Values[k] = v
	}
	if err := s.entries.Set(ctx, sess.Token, rec, ttl); err != nil {
		return err
	}
	sess.MarkClean()
	return nil
}

func (s *CacheStore) Delete(ctx context.Context, token string) error {
	return s.entries.Delete(ctx, token)
}

// Close releases the underlying cache.
func (s *CacheStore) Close() error {
	return s.entries.Close()
}

var _ Store = (*CacheStore)(nil)
