package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochoko/admin/internal"
	"github.com/ochoko/admin/middlewares"
	"github.com/ochoko/admin/pkg/auth"
	"github.com/ochoko/admin/pkg/cache"
	"github.com/ochoko/admin/pkg/sakeapi"
)

const apiURL = "https://api.test/api"

func clientFactory(transport http.RoundTripper) middlewares.ClientFactory {
	return func(store sakeapi.TokenStore) *sakeapi.Client {
		return sakeapi.New(apiURL,
			sakeapi.WithHTTPClient(&http.Client{Transport: transport}),
			sakeapi.WithTokenStore(store),
		)
	}
}

// signedIn returns a request carrying a session whose token is token.
func signedIn(t *testing.T, opts []internal.Option, token string, target string) *http.Request {
	t.Helper()
	res := runWith(t, opts, httptest.NewRequest(http.MethodGet, "/seed", nil), func(c internal.Context) error {
		return c.SetSessionValue(sakeapi.TokenKey, token)
	})
	require.NoError(t, res.err)
	return replayCookies(res.rec, httptest.NewRequest(http.MethodGet, target, nil))
}

func TestLoadAuth(t *testing.T) {
	t.Parallel()

	t.Run("anonymous without token makes no request", func(t *testing.T) {
		t.Parallel()

		transport := httpmock.NewMockTransport()
		var snap auth.Snapshot
		res := runWith(t, withSessions(t), httptest.NewRequest(http.MethodGet, "/", nil), func(c internal.Context) error {
			snap = middlewares.CurrentAuth(c)
			assert.NotNil(t, middlewares.APIClient(c))
			assert.NotNil(t, middlewares.AuthProvider(c))
			return nil
		}, middlewares.LoadAuth(clientFactory(transport)))

		require.NoError(t, res.err)
		assert.Equal(t, auth.StateAnonymous, snap.State)
		assert.Zero(t, transport.GetTotalCallCount())
	})

	t.Run("stored admin token authenticates", func(t *testing.T) {
		t.Parallel()

		transport := httpmock.NewMockTransport()
		transport.RegisterResponder(http.MethodGet, apiURL+"/me/",
			func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "Bearer tok-admin", req.Header.Get("Authorization"))
				return httpmock.NewJsonResponse(http.StatusOK, sakeapi.User{ID: 1, Username: "toji", IsStaff: true})
			})

		opts := withSessions(t)
		req := signedIn(t, opts, "tok-admin", "/")

		var snap auth.Snapshot
		runWith(t, opts, req, func(c internal.Context) error {
			snap = middlewares.CurrentAuth(c)
			return nil
		}, middlewares.LoadAuth(clientFactory(transport)))

		assert.True(t, snap.IsAuthenticated())
		assert.Equal(t, "toji", snap.Username())
	})

	t.Run("rejected token is cleared from the session", func(t *testing.T) {
		t.Parallel()

		transport := httpmock.NewMockTransport()
		transport.RegisterResponder(http.MethodGet, apiURL+"/me/",
			httpmock.NewStringResponder(http.StatusUnauthorized, `{"detail":"Could not validate credentials"}`))

		opts := withSessions(t)
		req := signedIn(t, opts, "tok-expired", "/")

		var stored string
		runWith(t, opts, req, func(c internal.Context) error {
			assert.False(t, middlewares.CurrentAuth(c).IsAuthenticated())
			stored, _ = c.SessionValue(sakeapi.TokenKey)
			return nil
		}, middlewares.LoadAuth(clientFactory(transport)))

		assert.Empty(t, stored)
	})

	t.Run("user lookups are cached across requests", func(t *testing.T) {
		t.Parallel()

		transport := httpmock.NewMockTransport()
		transport.RegisterResponder(http.MethodGet, apiURL+"/me/",
			httpmock.NewJsonResponderOrPanic(http.StatusOK, sakeapi.User{ID: 2, Username: "kura", IsSuperuser: true}))

		users := cache.NewMemory[sakeapi.User](cache.WithSweepInterval(0))
		t.Cleanup(func() { _ = users.Close() })
		mw := middlewares.LoadAuth(clientFactory(transport),
			middlewares.WithAuthUserCache(cache.NewLoader[sakeapi.User](users), time.Minute))

		opts := withSessions(t)
		for range 3 {
			req := signedIn(t, opts, "tok-cached", "/")
			runWith(t, opts, req, func(c internal.Context) error {
				assert.True(t, middlewares.CurrentAuth(c).IsAuthenticated())
				return nil
			}, mw)
		}
		assert.Equal(t, 1, transport.GetTotalCallCount())
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	ok := func(c internal.Context) error { return c.String(http.StatusOK, "secret") }
	anonymous := func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			middlewares.SetAuth(c, auth.Anonymous())
			return next(c)
		}
	}

	t.Run("page load redirects with next", func(t *testing.T) {
		t.Parallel()

		res := run(t, httptest.NewRequest(http.MethodGet, "/sakes?q=dassai", nil), ok,
			anonymous, middlewares.RequireAdmin("/login"))

		assert.Equal(t, http.StatusSeeOther, res.rec.Code)
		assert.Equal(t, "/login?next=%2Fsakes%3Fq%3Ddassai", res.rec.Header().Get("Location"))
	})

	t.Run("htmx request gets HX-Redirect", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/sakes/select-all", nil)
		req.Header.Set("HX-Request", "true")
		res := run(t, req, ok, anonymous, middlewares.RequireAdmin("/login"))

		assert.Equal(t, "/login", res.rec.Header().Get("HX-Redirect"))
		assert.NotContains(t, res.rec.Body.String(), "secret")
	})

	t.Run("admin passes", func(t *testing.T) {
		t.Parallel()

		admin := func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				middlewares.SetAuth(c, auth.Authenticated(sakeapi.User{Username: "toji", IsStaff: true}))
				return next(c)
			}
		}
		res := run(t, httptest.NewRequest(http.MethodGet, "/sakes", nil), ok, admin, middlewares.RequireAdmin("/login"))
		assert.Equal(t, http.StatusOK, res.rec.Code)
		assert.Equal(t, "secret", res.rec.Body.String())
	})

	t.Run("without LoadAuth nobody passes", func(t *testing.T) {
		t.Parallel()

		res := run(t, httptest.NewRequest(http.MethodGet, "/sakes", nil), ok, middlewares.RequireAdmin("/login"))
		assert.True(t, strings.HasPrefix(res.rec.Header().Get("Location"), "/login"))
	})
}
