package internal_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochoko/admin/internal"
	"github.com/ochoko/admin/pkg/cookie"
	"github.com/ochoko/admin/pkg/htmx"
	"github.com/ochoko/admin/pkg/i18n"
	"github.com/ochoko/admin/pkg/session"
)

func TestContext_IsContext(t *testing.T) {
	t.Parallel()

	var seen context.Context
	app := internal.New(internal.WithHandlers(routes(func(r internal.Router) {
		r.GET("/", func(c internal.Context) error {
			seen = c
			return c.NoContent(http.StatusNoContent)
		})
	})))

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	serve(t, app, req)
	cancel()

	require.NotNil(t, seen)
	assert.ErrorIs(t, seen.Err(), context.Canceled)
}

func TestContext_Render(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithHandlers(routes(func(r internal.Router) {
		r.GET("/sakes", func(c internal.Context) error {
			return c.RenderPartial(http.StatusOK, text("<html>page</html>"), text("<tbody>rows</tbody>"),
				htmx.WithOOB(text(`<span id="count" hx-swap-oob="true">3</span>`)),
				htmx.WithPushURL("/sakes?q=dassai"),
			)
		})
		r.POST("/sakes/new", func(c internal.Context) error {
			return c.Render(http.StatusUnprocessableEntity, text("form"), htmx.WithRetarget("#form"))
		})
	})))

	t.Run("full page ignores htmx options", func(t *testing.T) {
		t.Parallel()
		rec := serve(t, app, httptest.NewRequest(http.MethodGet, "/sakes", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "<html>page</html>", rec.Body.String())
		assert.Empty(t, rec.Header().Get(htmx.HeaderPushURL))
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	})

	t.Run("htmx gets the partial and oob fragments", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/sakes", nil)
		req.Header.Set(htmx.HeaderRequest, "true")
		rec := serve(t, app, req)
		assert.Equal(t, `<tbody>rows</tbody><span id="count" hx-swap-oob="true">3</span>`, rec.Body.String())
		assert.Equal(t, "/sakes?q=dassai", rec.Header().Get(htmx.HeaderPushURL))
	})

	t.Run("regular request keeps error status", func(t *testing.T) {
		t.Parallel()
		rec := serve(t, app, httptest.NewRequest(http.MethodPost, "/sakes/new", nil))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Empty(t, rec.Header().Get(htmx.HeaderRetarget))
	})

	t.Run("htmx error status becomes 200", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/sakes/new", nil)
		req.Header.Set(htmx.HeaderRequest, "true")
		rec := serve(t, app, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "#form", rec.Header().Get(htmx.HeaderRetarget))
	})
}

func TestContext_Redirect(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithHandlers(routes(func(r internal.Router) {
		r.POST("/logout", func(c internal.Context) error {
			return c.Redirect(http.StatusSeeOther, "/login")
		})
	})))

	rec := serve(t, app, httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set(htmx.HeaderRequest, "true")
	rec = serve(t, app, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(htmx.HeaderRedirect))
}

func TestContext_SetVisibleAfterMiddleware(t *testing.T) {
	t.Parallel()

	type key struct{}
	var got string
	app := internal.New(
		internal.WithMiddleware(func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				c.Set(key{}, "admin")
				return next(c)
			}
		}),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/", func(c internal.Context) error {
				got = internal.ContextValue[string](c, key{})
				return nil
			})
		})),
	)
	serve(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "admin", got)
}

func TestContext_SessionLifecycle(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	app := internal.New(
		internal.WithSession(store),
		internal.WithMiddleware(func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				// Loaded here, reused by the handler.
				_, _ = c.Session()
				return next(c)
			}
		}),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/peek", func(c internal.Context) error {
				v, err := c.SessionValue("admin_token")
				if err != nil {
					return err
				}
				return c.String(http.StatusOK, v)
			})
			r.POST("/login", func(c internal.Context) error {
				if err := c.RotateSession(); err != nil {
					return err
				}
				if err := c.SetSessionValue("admin_token", "jwt-1"); err != nil {
					return err
				}
				return c.Redirect(http.StatusSeeOther, "/sakes")
			})
			r.POST("/logout", func(c internal.Context) error {
				if err := c.DestroySession(); err != nil {
					return err
				}
				return c.Redirect(http.StatusSeeOther, "/login")
			})
		})),
	)

	rec := serve(t, app, httptest.NewRequest(http.MethodGet, "/peek", nil))
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies(), "reading does not start a session")

	login := serve(t, app, httptest.NewRequest(http.MethodPost, "/login", nil))
	require.Equal(t, http.StatusSeeOther, login.Code)
	require.NotEmpty(t, login.Result().Cookies())

	peek := serve(t, app, replayCookies(login, httptest.NewRequest(http.MethodGet, "/peek", nil)))
	assert.Equal(t, "jwt-1", peek.Body.String())

	logout := serve(t, app, replayCookies(login, httptest.NewRequest(http.MethodPost, "/logout", nil)))
	require.Equal(t, http.StatusSeeOther, logout.Code)

	after := serve(t, app, replayCookies(login, httptest.NewRequest(http.MethodGet, "/peek", nil)))
	assert.Empty(t, after.Body.String(), "destroyed session is gone from the store")
}

func TestContext_SessionNotConfigured(t *testing.T) {
	t.Parallel()

	var err error
	app := internal.New(internal.WithHandlers(routes(func(r internal.Router) {
		r.GET("/", func(c internal.Context) error {
			err = c.SetSessionValue("k", "v")
			return nil
		})
	})))
	serve(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, errors.Is(err, session.ErrNotConfigured))
}

func TestContext_Flash(t *testing.T) {
	t.Parallel()

	type notice struct {
		Kind string `json:"kind"`
		Text string `json:"text"`
	}

	app := internal.New(
		internal.WithCookieOptions(cookie.WithSecret(testSecret)),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.POST("/sakes/new", func(c internal.Context) error {
				if err := c.SetFlash("notice", notice{Kind: "success", Text: "登録しました"}); err != nil {
					return err
				}
				return c.Redirect(http.StatusSeeOther, "/sakes")
			})
			r.GET("/sakes", func(c internal.Context) error {
				var n notice
				if err := c.Flash("notice", &n); err != nil {
					return c.String(http.StatusOK, "none")
				}
				return c.String(http.StatusOK, n.Text)
			})
		})),
	)

	set := serve(t, app, httptest.NewRequest(http.MethodPost, "/sakes/new", nil))
	got := serve(t, app, replayCookies(set, httptest.NewRequest(http.MethodGet, "/sakes", nil)))
	assert.Equal(t, "登録しました", got.Body.String())

	empty := serve(t, app, httptest.NewRequest(http.MethodGet, "/sakes", nil))
	assert.Equal(t, "none", empty.Body.String())
}

func TestContext_Translations(t *testing.T) {
	t.Parallel()

	bundle, err := i18n.Load(fstest.MapFS{
		"ja.yaml": {Data: []byte("nav:\n  sakes: 日本酒管理\nduplicates:\n  found:\n    other: \"{{count}} グループ\"\n")},
		"en.yaml": {Data: []byte("nav:\n  sakes: Sakes\n")},
	}, "ja")
	require.NoError(t, err)

	var got []string
	handler := func(c internal.Context) error {
		got = []string{
			c.T("nav.sakes"),
			c.Tn("duplicates.found", 3),
			c.Language(),
			c.FormatNumber(1234),
			c.FormatDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		}
		return nil
	}

	t.Run("with translator", func(t *testing.T) {
		app := internal.New(
			internal.WithMiddleware(func(next internal.HandlerFunc) internal.HandlerFunc {
				return func(c internal.Context) error {
					c.Set(internal.TranslatorKey{}, i18n.NewTranslator(bundle, "ja"))
					return next(c)
				}
			}),
			internal.WithHandlers(routes(func(r internal.Router) { r.GET("/", handler) })),
		)
		serve(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, []string{"日本酒管理", "3 グループ", "ja", "1,234", "2024年3月1日"}, got)
	})

	t.Run("without translator", func(t *testing.T) {
		app := internal.New(internal.WithHandlers(routes(func(r internal.Router) { r.GET("/", handler) })))
		serve(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, []string{"nav.sakes", "duplicates.found", "", "1234", "2024-03-01"}, got)
	})
}
