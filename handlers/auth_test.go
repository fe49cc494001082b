package handlers_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/ochoko/admin/middlewares"
	"github.com/ochoko/admin/pkg/sakeapi"
)

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("form", func(t *testing.T) {
		t.Parallel()
		b := newBrowser(t)
		rec := b.get("/login?next=/duplicates")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Admin login")
		assert.Contains(t, rec.Body.String(), `value="/duplicates"`)
	})

	t.Run("success goes to next", func(t *testing.T) {
		t.Parallel()
		b := newBrowser(t)
		b.signIn()

		rec := b.post("/login", url.Values{"email": {"a@b.c"}, "password": {"pw"}, "next": {"/import"}})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/import", rec.Header().Get("Location"))

		rec = b.get("/login")
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/sakes", rec.Header().Get("Location"))
	})

	t.Run("foreign next is ignored", func(t *testing.T) {
		t.Parallel()
		b := newBrowser(t)
		b.signIn()
		rec := b.post("/login", url.Values{"email": {"a@b.c"}, "password": {"pw"}, "next": {"//evil.test/x"}})
		assert.Equal(t, "/sakes", rec.Header().Get("Location"))
	})

	t.Run("non-admin is refused and stays anonymous", func(t *testing.T) {
		t.Parallel()
		b := newBrowser(t)
		b.respond(http.MethodPost, "/login", http.StatusOK, sakeapi.LoginResponse{AccessToken: "tok-user"})
		b.respond(http.MethodGet, "/me/", http.StatusOK, sakeapi.User{Username: "guest"})

		rec := b.post("/login", url.Values{"email": {"g@b.c"}, "password": {"pw"}})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Admin privileges are required")

		calls := b.calls(http.MethodGet, "/me/")
		rec = b.get("/sakes")
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login?next=%2Fsakes", rec.Header().Get("Location"))
		assert.Equal(t, calls, b.calls(http.MethodGet, "/me/"), "token must have been cleared")
	})

	t.Run("rejected credentials render inline for htmx", func(t *testing.T) {
		t.Parallel()
		b := newBrowser(t)
		b.fail(http.MethodPost, "/login", http.StatusUnauthorized, "bad credentials")

		rec := b.post("/login", url.Values{"email": {"x@b.c"}, "password": {"nope"}}, htmxReq)
		assert.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `id="login-form"`)
		assert.Contains(t, body, "Invalid email or password")
		assert.Contains(t, body, `value="x@b.c"`)
		assert.NotContains(t, body, "<html")
	})

	t.Run("network failure shows the generic message", func(t *testing.T) {
		t.Parallel()
		b := newBrowser(t)
		b.api.RegisterResponder(http.MethodPost, apiURL+"/login", httpmock.NewErrorResponder(assert.AnError))

		rec := b.post("/login", url.Values{"email": {"x@b.c"}, "password": {"pw"}})
		assert.Contains(t, rec.Body.String(), "Could not reach the server")
	})

	t.Run("attempts are throttled", func(t *testing.T) {
		t.Parallel()
		limiter := middlewares.NewRateLimiter(rate.Limit(0.001), 1)
		t.Cleanup(func() { _ = limiter.Close() })
		b := newBrowser(t, withLoginLimit(limiter))
		b.fail(http.MethodPost, "/login", http.StatusUnauthorized, "bad credentials")

		form := url.Values{"email": {"x@b.c"}, "password": {"pw"}}
		assert.Equal(t, http.StatusUnauthorized, b.post("/login", form).Code)

		rec := b.post("/login", form)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		assert.Contains(t, rec.Body.String(), "Too many login attempts")
		assert.Equal(t, 1, b.calls(http.MethodPost, "/login"))
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()
	b := newBrowser(t)
	b.signIn()
	require.Equal(t, http.StatusOK, b.get("/breweries").Code)

	rec := b.post("/logout", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = b.get("/login")
	assert.Contains(t, rec.Body.String(), "You have been logged out")

	rec = b.get("/breweries")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestLogoutForgetsSessionState(t *testing.T) {
	t.Parallel()
	b := newBrowser(t)
	b.signIn()
	b.respond(http.MethodGet, "/sakes/", http.StatusOK, testSakes)
	b.get("/sakes")
	rec := b.post("/sakes/select/1", nil, htmxReq)
	require.Contains(t, rec.Body.String(), "1 selected")
	sid := b.jar["__sid"]
	require.NotNil(t, sid)

	b.post("/logout", nil)
	assert.NotContains(t, b.jar, "__sid")

	b.signIn()
	require.Contains(t, b.jar, "__sid")
	assert.NotEqual(t, sid.Value, b.jar["__sid"].Value)

	body := b.get("/sakes").Body.String()
	assert.Contains(t, body, "0 selected")
	assert.NotContains(t, body, `<tr class="selected">`)
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()
	b := newBrowser(t)

	for _, path := range []string{"/", "/sakes", "/sakes/1", "/breweries", "/duplicates", "/import"} {
		rec := b.get(path)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/login?next="+url.QueryEscape(path), rec.Header().Get("Location"), path)
	}

	rec := b.post("/sakes/select-all", nil, htmxReq)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("HX-Redirect"))
	assert.Zero(t, b.api.GetTotalCallCount())
}

func TestLanguageSwitch(t *testing.T) {
	t.Parallel()
	b := newBrowser(t)

	rec := b.get("/lang/ja", func(r *http.Request) { r.Header.Set("Referer", "http://example.com/login?next=%2Fimport") })
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/sakes", rec.Header().Get("Location"))

	rec = b.get("/login")
	assert.Contains(t, rec.Body.String(), "管理者ログイン")

	rec = b.get("/lang/en", func(r *http.Request) { r.Header.Set("Referer", "http://example.com/breweries") })
	assert.Equal(t, "/breweries", rec.Header().Get("Location"))
	assert.Contains(t, b.get("/login").Body.String(), "Admin login")

	assert.Equal(t, http.StatusNotFound, b.get("/lang/fr").Code)
}
