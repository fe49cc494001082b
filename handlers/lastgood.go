package handlers

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ochoko/admin"
	"github.com/ochoko/admin/pkg/cache"
	"github.com/ochoko/admin/pkg/sakeapi"
)

// DefaultLastGoodTTL bounds how old a fallback collection may get.
const DefaultLastGoodTTL = 30 * time.Minute

// LastGood remembers the last collection each session fetched per page,
// so a failed refresh can still show data next to the error.
type LastGood struct {
	store cache.Cache[[]byte]
	ttl   time.Duration
}

// NewLastGood stores collections in store for ttl.
func NewLastGood(store cache.Cache[[]byte], ttl time.Duration) *LastGood {
	if ttl <= 0 {
		ttl = DefaultLastGoodTTL
	}
	return &LastGood{store: store, ttl: ttl}
}

func (l *LastGood) key(c admin.Context, page string) (string, bool) {
	if l == nil {
		return "", false
	}
	sess, err := c.Session()
	if err != nil || sess == nil {
		return "", false
	}
	return "lastgood:" + sess.ID + ":" + page, true
}

func (l *LastGood) remember(c admin.Context, page string, v any) {
	key, ok := l.key(c, page)
	if !ok {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := l.store.Set(c, key, data, l.ttl); err != nil {
		c.LogWarn("failed to remember page data", slog.String("page", page), slog.Any("error", err))
	}
}

func (l *LastGood) forget(c admin.Context, page string) {
	if key, ok := l.key(c, page); ok {
		_ = l.store.Delete(c, key)
	}
}

func recall[T any](c admin.Context, l *LastGood, page string) (T, bool) {
	var out T
	key, ok := l.key(c, page)
	if !ok {
		return out, false
	}
	data, err := l.store.Get(c, key)
	if err != nil {
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, false
	}
	return out, true
}

// fetched is the outcome of loading a page's collection.
type fetched[T any] struct {
	Items T
	// Error is the inline message of a failed fetch.
	Error string
	// Stale is set when Items come from an earlier fetch.
	Stale bool
}

// load fetches a collection and remembers it. Failures other than a
// rejected token are reported inline, with the remembered collection
// standing in. With cached set, a remembered collection is used without
// calling the backend; row toggles only redraw what is already shown.
func load[T any](c admin.Context, l *LastGood, page string, cached bool, fetch func() (T, error)) (fetched[T], error) {
	if cached {
		if items, ok := recall[T](c, l, page); ok {
			return fetched[T]{Items: items}, nil
		}
	}
	items, err := fetch()
	if err == nil {
		l.remember(c, page, items)
		return fetched[T]{Items: items}, nil
	}
	if sakeapi.IsUnauthorized(err) {
		return fetched[T]{}, err
	}
	c.LogWarn("backend fetch failed", slog.String("page", page), slog.Any("error", err))
	out := fetched[T]{Error: messageFor(c, err)}
	if prev, ok := recall[T](c, l, page); ok {
		out.Items = prev
		out.Stale = true
	}
	return out, nil
}
