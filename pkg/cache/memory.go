package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// MemoryOption configures a Memory cache.
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	defaultTTL time.Duration
	sweepEvery time.Duration
	capacity   int
}

// WithDefaultTTL sets the ttl used when Set receives zero. Default 1h.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(c *memoryConfig) {
		c.defaultTTL = d
	}
}

// WithSweepInterval sets how often expired entries are purged in the
// background. Zero disables the sweeper; expired entries are then dropped
// lazily on read. Default 1m.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(c *memoryConfig) {
		c.sweepEvery = d
	}
}

// WithCapacity bounds the number of entries. Inserting into a full cache
// evicts the least recently used entry. Zero means unbounded.
func WithCapacity(n int) MemoryOption {
	return func(c *memoryConfig) {
		c.capacity = n
	}
}

type memoryItem[V any] struct {
	key     string
	value   V
	expires time.Time
}

func (it *memoryItem[V]) expired(now time.Time) bool {
	return !it.expires.IsZero() && now.After(it.expires)
}

// Memory is a process-local Cache. Entries are ordered by recency so a
// bounded cache can drop the coldest one.
type Memory[V any] struct {
	mu     sync.Mutex
	cfg    memoryConfig
	index  map[string]*list.Element
	order  *list.List
	stop   chan struct{}
	closed bool
}

// NewMemory creates a Memory cache. Call Close to stop the sweeper.
//
//	users := cache.NewMemory[sakeapi.User](
//	    cache.WithDefaultTTL(30*time.Second),
//	    cache.WithCapacity(1024),
//	)
//	defer users.Close()
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	cfg := memoryConfig{defaultTTL: time.Hour, sweepEvery: time.Minute}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Memory[V]{
		cfg:   cfg,
		index: make(map[string]*list.Element),
		order: list.New(),
		stop:  make(chan struct{}),
	}
	if cfg.sweepEvery > 0 {
		go m.sweep(cfg.sweepEvery)
	}
	return m
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	el, ok := m.index[key]
	if !ok {
		return zero, ErrNotFound
	}
	it := el.Value.(*memoryItem[V])
	if it.expired(time.Now()) {
		m.drop(el)
		return zero, ErrNotFound
	}
	m.order.MoveToFront(el)
	return it.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	var expires time.Time
	switch {
	case ttl > 0:
		expires = time.Now().Add(ttl)
	case ttl == 0 && m.cfg.defaultTTL > 0:
		expires = time.Now().Add(m.cfg.defaultTTL)
	}

	if el, ok := m.index[key]; ok {
		it := el.Value.(*memoryItem[V])
		it.value, it.expires = value, expires
		m.order.MoveToFront(el)
		return nil
	}

	if m.cfg.capacity > 0 && len(m.index) >= m.cfg.capacity {
		if oldest := m.order.Back(); oldest != nil {
			m.drop(oldest)
		}
	}
	m.index[key] = m.order.PushFront(&memoryItem[V]{key: key, value: value, expires: expires})
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if el, ok := m.index[key]; ok {
		m.drop(el)
	}
	return nil
}

// Len returns the number of stored entries, expired ones included until
// they are swept.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.index)
}

// Close stops the sweeper. It is safe to call more than once.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.stop)
	}
	return nil
}

func (m *Memory[V]) sweep(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-m.stop:
			return
		case now := <-t.C:
			m.purge(now)
		}
	}
}

func (m *Memory[V]) purge(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for el := m.order.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*memoryItem[V]).expired(now) {
			m.drop(el)
		}
		el = prev
	}
}

// drop must be called with mu held.
func (m *Memory[V]) drop(el *list.Element) {
	m.order.Remove(el)
	delete(m.index, el.Value.(*memoryItem[V]).key)
}

var _ Cache[struct{}] = (*Memory[struct{}])(nil)
