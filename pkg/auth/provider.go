package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/ochoko/admin/pkg/cache"
	"github.com/ochoko/admin/pkg/sakeapi"
)

// API is the part of the catalog client the provider needs.
type API interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	Login(ctx context.Context, email, password string) (sakeapi.LoginResponse, error)
	CurrentUser(ctx context.Context) (sakeapi.User, error)
}

// DefaultUserTTL is how long a current-user lookup is reused.
const DefaultUserTTL = 30 * time.Second

// Provider runs the auth transitions for one API client.
// Construct one per request; the user cache may be shared.
type Provider struct {
	api     API
	users   *cache.Loader[sakeapi.User]
	logger  *slog.Logger
	userTTL time.Duration
}

// Option configures a Provider.
type Option func(*Provider)

// WithUserCache reuses current-user lookups for ttl, keyed by token hash.
// The loader is meant to be shared by every provider of the process.
func WithUserCache(users *cache.Loader[sakeapi.User], ttl time.Duration) Option {
	return func(p *Provider) {
		p.users = users
		if ttl > 0 {
			p.userTTL = ttl
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProvider creates a provider over api.
func NewProvider(api API, opts ...Option) *Provider {
	p := &Provider{
		api:     api,
		logger:  slog.New(slog.DiscardHandler),
		userTTL: DefaultUserTTL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Check settles the session from the stored token. Without a token the
// result is anonymous and no request is made. A failed lookup or a
// non-admin account clears the token, unless ctx was canceled first.
func (p *Provider) Check(ctx context.Context) Snapshot {
	token, err := p.api.Token(ctx)
	if err != nil {
		p.logger.WarnContext(ctx, "failed to load token", slog.String("error", err.Error()))
		return Anonymous()
	}
	if token == "" {
		return Anonymous()
	}

	user, err := p.currentUser(ctx, token)
	snap := Settle(&user, err)
	if snap.IsAuthenticated() {
		return snap
	}

	// An aborted request says nothing about the token; keep it.
	if ctx.Err() != nil {
		return snap
	}
	if err != nil {
		p.logger.InfoContext(ctx, "stored token rejected", slog.String("error", err.Error()))
	}
	p.forget(ctx, token)
	return snap
}

// Login signs in and verifies admin privileges. On any failure the token
// is cleared and the error returned; the session stays anonymous.
func (p *Provider) Login(ctx context.Context, email, password string) (Snapshot, error) {
	resp, err := p.api.Login(ctx, email, password)
	if err != nil {
		p.clearToken(ctx)
		return Anonymous(), err
	}

	user, err := p.api.CurrentUser(ctx)
	if err != nil {
		p.clearToken(ctx)
		return Anonymous(), err
	}
	if !user.IsAdmin() {
		p.logger.InfoContext(ctx, "login refused for non-admin account", slog.String("username", user.Username))
		p.clearToken(ctx)
		return Anonymous(), ErrAdminRequired
	}

	if p.users != nil && resp.AccessToken != "" {
		_ = p.users.Cache().Set(ctx, tokenKey(resp.AccessToken), user, p.userTTL)
	}
	return Authenticated(user), nil
}

// Logout discards the token locally. The backend is not contacted.
func (p *Provider) Logout(ctx context.Context) Snapshot {
	if token, err := p.api.Token(ctx); err == nil && token != "" {
		p.forget(ctx, token)
	} else {
		p.clearToken(ctx)
	}
	return Anonymous()
}

func (p *Provider) currentUser(ctx context.Context, token string) (sakeapi.User, error) {
	if p.users == nil {
		return p.api.CurrentUser(ctx)
	}
	return p.users.Get(ctx, tokenKey(token), func(ctx context.Context) (sakeapi.User, time.Duration, error) {
		user, err := p.api.CurrentUser(ctx)
		return user, p.userTTL, err
	})
}

// forget clears the token and drops its cached user.
func (p *Provider) forget(ctx context.Context, token string) {
	if p.users != nil {
		_ = p.users.Forget(ctx, tokenKey(token))
	}
	p.clearToken(ctx)
}

func (p *Provider) clearToken(ctx context.Context) {
	if err := p.api.SetToken(ctx, ""); err != nil {
		p.logger.WarnContext(ctx, "failed to clear token", slog.String("error", err.Error()))
	}
}

// tokenKey keys the user cache without keeping raw tokens in it.
func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "me:" + hex.EncodeToString(sum[:])
}
