package staging_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochoko/admin/pkg/cache"
	"github.com/ochoko/admin/pkg/staging"
	"github.com/ochoko/admin/pkg/storage"
)

type memBucket struct {
	mu   sync.Mutex
	objs map[string][]byte
}

func (b *memBucket) Put(_ context.Context, key string, data []byte, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objs[key] = data
	return nil
}

func (b *memBucket) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.objs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return d, nil
}

func (b *memBucket) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objs, key)
	return nil
}

func TestStagers(t *testing.T) {
	t.Parallel()

	files := cache.NewMemory[[]byte](cache.WithSweepInterval(0))
	t.Cleanup(func() { _ = files.Close() })

	stagers := map[string]staging.Stager{
		"cache":  staging.NewCacheStager(files, time.Minute),
		"bucket": staging.NewBucketStager(&memBucket{objs: map[string][]byte{}}),
	}

	for name, s := range stagers {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			data := []byte("brewery,brand\n")

			key, err := s.Stage(ctx, data)
			require.NoError(t, err)
			_, err = uuid.Parse(key)
			require.NoError(t, err)

			got, err := s.Load(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, data, got)

			// Loading twice returns the same bytes.
			got, err = s.Load(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, data, got)

			require.NoError(t, s.Discard(ctx, key))
			_, err = s.Load(ctx, key)
			require.ErrorIs(t, err, staging.ErrGone)

			other, err := s.Stage(ctx, data)
			require.NoError(t, err)
			assert.NotEqual(t, key, other)
		})
	}
}

func TestCacheStager_Expires(t *testing.T) {
	t.Parallel()

	files := cache.NewMemory[[]byte](cache.WithSweepInterval(0))
	t.Cleanup(func() { _ = files.Close() })
	s := staging.NewCacheStager(files, time.Millisecond)

	key, err := s.Stage(context.Background(), []byte("x"))
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, err = s.Load(context.Background(), key)
	require.ErrorIs(t, err, staging.ErrGone)
}
