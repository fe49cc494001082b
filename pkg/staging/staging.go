// Package staging holds an uploaded CSV file between the import preview
// and the commit, so the commit sends exactly the bytes that were
// previewed without the browser uploading them twice.
package staging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ochoko/admin/pkg/cache"
	"github.com/ochoko/admin/pkg/storage"
)

// DefaultTTL is how long a staged upload waits for its commit.
const DefaultTTL = 30 * time.Minute

// ErrGone means the staged upload expired or was already committed.
var ErrGone = errors.New("staging: upload no longer available")

// Stager stores uploads under generated keys.
type Stager interface {
	Stage(ctx context.Context, data []byte) (key string, err error)
	Load(ctx context.Context, key string) ([]byte, error)
	Discard(ctx context.Context, key string) error
}

func newKey() string {
	return uuid.NewString()
}

// CacheStager keeps uploads in a byte cache: memory for one instance,
// Redis for several.
type CacheStager struct {
	files cache.Cache[[]byte]
	ttl   time.Duration
}

// NewCacheStager stages into files. A non-positive ttl uses DefaultTTL.
func NewCacheStager(files cache.Cache[[]byte], ttl time.Duration) *CacheStager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CacheStager{files: files, ttl: ttl}
}

func (s *CacheStager) Stage(ctx context.Context, data []byte) (string, error) {
	key := newKey()
	if err := s.files.Set(ctx, key, data, s.ttl); err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	return key, nil
}

func (s *CacheStager) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.files.Get(ctx, key)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, ErrGone
	}
	return data, err
}

func (s *CacheStager) Discard(ctx context.Context, key string) error {
	return s.files.Delete(ctx, key)
}

// Bucket is the part of storage.S3 a BucketStager uses.
type Bucket interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// BucketStager keeps uploads in object storage. Expiry is left to the
// bucket's lifecycle rules.
type BucketStager struct {
	bucket Bucket
}

// NewBucketStager stages into bucket.
func NewBucketStager(bucket Bucket) *BucketStager {
	return &BucketStager{bucket: bucket}
}

func (s *BucketStager) Stage(ctx context.Context, data []byte) (string, error) {
	key := newKey()
	if err := s.bucket.Put(ctx, key+".csv", data, "text/csv"); err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	return key, nil
}

func (s *BucketStager) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.bucket.Get(ctx, key+".csv")
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrGone
	}
	return data, err
}

func (s *BucketStager) Discard(ctx context.Context, key string) error {
	return s.bucket.Delete(ctx, key+".csv")
}

var (
	_ Stager = (*CacheStager)(nil)
	_ Stager = (*BucketStager)(nil)
	_ Bucket = (*storage.S3)(nil)
)
