package middlewares

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ochoko/admin/internal"
	"github.com/ochoko/admin/pkg/auth"
	"github.com/ochoko/admin/pkg/cache"
	"github.com/ochoko/admin/pkg/htmx"
	"github.com/ochoko/admin/pkg/logger"
	"github.com/ochoko/admin/pkg/sakeapi"
)

// SessionTokenStore keeps the API token in the browser's session under
// sakeapi.TokenKey.
type SessionTokenStore struct {
	c internal.Context
}

// NewSessionTokenStore returns a token store bound to one request.
func NewSessionTokenStore(c internal.Context) *SessionTokenStore {
	return &SessionTokenStore{c: c}
}

func (s *SessionTokenStore) Load(context.Context) (string, error) {
	return s.c.SessionValue(sakeapi.TokenKey)
}

func (s *SessionTokenStore) Save(_ context.Context, token string) error {
	return s.c.SetSessionValue(sakeapi.TokenKey, token)
}

func (s *SessionTokenStore) Clear(context.Context) error {
	return s.c.DeleteSessionValue(sakeapi.TokenKey)
}

// ClientFactory builds an API client around a token store.
type ClientFactory func(store sakeapi.TokenStore) *sakeapi.Client

type (
	apiClientKey struct{}
	providerKey  struct{}
)

// AuthConfig configures LoadAuth.
type AuthConfig struct {
	Users   *cache.Loader[sakeapi.User]
	UserTTL time.Duration
}

// AuthOption configures AuthConfig.
type AuthOption func(*AuthConfig)

// WithAuthUserCache shares current-user lookups between requests.
func WithAuthUserCache(users *cache.Loader[sakeapi.User], ttl time.Duration) AuthOption {
	return func(cfg *AuthConfig) {
		cfg.Users = users
		cfg.UserTTL = ttl
	}
}

// LoadAuth gives every request its own API client over the session's
// token and settles the auth snapshot before the handler runs. The client,
// the provider and the snapshot are available through APIClient,
// AuthProvider and CurrentAuth.
func LoadAuth(newClient ClientFactory, opts ...AuthOption) internal.Middleware {
	cfg := &AuthConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			client := newClient(NewSessionTokenStore(c))

			providerOpts := []auth.Option{auth.WithLogger(c.Logger())}
			if cfg.Users != nil {
				providerOpts = append(providerOpts, auth.WithUserCache(cfg.Users, cfg.UserTTL))
			}
			provider := auth.NewProvider(client, providerOpts...)

			c.Set(apiClientKey{}, client)
			c.Set(providerKey{}, provider)
			SetAuth(c, provider.Check(c))
			return next(c)
		}
	}
}

// RequireAdmin sends anonymous visitors to loginPath. Page loads carry
// the requested path in "next"; htmx requests get an HX-Redirect.
func RequireAdmin(loginPath string) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if CurrentAuth(c).IsAuthenticated() {
				return next(c)
			}
			return c.Redirect(http.StatusSeeOther, LoginURL(loginPath, c.Request()))
		}
	}
}

// LoginURL returns loginPath with a "next" parameter for GET page loads.
func LoginURL(loginPath string, r *http.Request) string {
	if r.Method != http.MethodGet || htmx.IsHTMX(r) {
		return loginPath
	}
	return loginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
}

// SetAuth replaces the request's auth snapshot, after a login or logout.
func SetAuth(c internal.Context, snap auth.Snapshot) {
	c.Set(auth.ContextKey{}, snap)
}

// CurrentAuth returns the request's snapshot. Outside LoadAuth it is
// anonymous.
func CurrentAuth(c internal.Context) auth.Snapshot {
	if snap, ok := auth.FromContext(c); ok {
		return snap
	}
	return auth.Anonymous()
}

// APIClient returns the request's API client, or nil outside LoadAuth.
func APIClient(c internal.Context) *sakeapi.Client {
	client, _ := c.Get(apiClientKey{}).(*sakeapi.Client)
	return client
}

// AuthProvider returns the request's auth provider, or nil outside
// LoadAuth.
func AuthProvider(c internal.Context) *auth.Provider {
	p, _ := c.Get(providerKey{}).(*auth.Provider)
	return p
}

// AdminExtractor adds "admin" to log records of signed-in requests.
func AdminExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		snap, ok := auth.FromContext(ctx)
		if !ok || !snap.IsAuthenticated() {
			return slog.Attr{}, false
		}
		return slog.String("admin", snap.Username()), true
	}
}
