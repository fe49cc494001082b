package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/ochoko/admin/internal"
	"github.com/ochoko/admin/pkg/i18n"
	"github.com/ochoko/admin/pkg/session"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type routes func(r internal.Router)

func (f routes) Routes(r internal.Router) { f(r) }

// result is what a harnessed request produced.
type result struct {
	rec *httptest.ResponseRecorder
	err error
}

// run serves req through mw and h inside a real app. Errors returned by
// the chain are captured instead of rendered.
func run(t *testing.T, req *http.Request, h internal.HandlerFunc, mw ...internal.Middleware) result {
	t.Helper()
	return runWith(t, nil, req, h, mw...)
}

func runWith(t *testing.T, opts []internal.Option, req *http.Request, h internal.HandlerFunc, mw ...internal.Middleware) result {
	t.Helper()

	var res result
	opts = append(opts,
		internal.WithErrorHandler(func(c internal.Context, err error) error {
			res.err = err
			return c.NoContent(http.StatusInternalServerError)
		}),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.Group(func(r internal.Router) {
				r.Use(mw...)
				if req.Method == http.MethodPost {
					r.POST(req.URL.Path, h)
				} else {
					r.GET(req.URL.Path, h)
				}
			})
		})),
	)
	app := internal.New(opts...)

	res.rec = httptest.NewRecorder()
	app.ServeHTTP(res.rec, req)
	return res
}

// withSessions returns app options backed by a fresh in-memory store.
func withSessions(t *testing.T) []internal.Option {
	t.Helper()
	store := session.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	return []internal.Option{
		internal.WithCookieOptions(),
		internal.WithSession(store),
	}
}

func testBundle(t *testing.T) *i18n.Bundle {
	t.Helper()
	b, err := i18n.Load(fstest.MapFS{
		"ja.yaml": {Data: []byte("nav:\n  sakes: 日本酒管理\n")},
		"en.yaml": {Data: []byte("nav:\n  sakes: Sakes\n")},
	}, "ja")
	require.NoError(t, err)
	return b
}

// replayCookies copies the cookies set by rec onto req.
func replayCookies(rec *httptest.ResponseRecorder, req *http.Request) *http.Request {
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}
	return req
}
