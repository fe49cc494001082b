package internal

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ochoko/admin/pkg/logger"
	"github.com/ochoko/admin/pkg/session"
)

const (
	defaultSessionCookieName = "__sid"
	defaultSessionMaxAge     = 86400 * 7
)

// ClientBinding controls what happens when a session cookie comes back
// from a different browser than the one it was issued to.
type ClientBinding int

const (
	// BindingOff ignores the client.
	BindingOff ClientBinding = iota
	// BindingWarn logs a mismatch and keeps the session.
	BindingWarn
	// BindingReject drops the session on mismatch.
	BindingReject
)

// ErrClientMismatch is returned by LoadSession under BindingReject.
var ErrClientMismatch = errors.New("session: client mismatch")

// SessionManager loads and issues browser sessions. The session token
// travels in an HttpOnly cookie; the session itself lives in a
// session.Store.
type SessionManager struct {
	store      session.Store
	logger     *slog.Logger
	cookieName string
	domain     string
	path       string
	maxAge     int
	sameSite   http.SameSite
	binding    ClientBinding
	secure     bool
}

// SessionOption configures a SessionManager.
type SessionOption func(*SessionManager)

// NewSessionManager creates a manager over store.
func NewSessionManager(store session.Store, opts ...SessionOption) *SessionManager {
	sm := &SessionManager{
		store:      store,
		logger:     logger.NewNope(),
		cookieName: defaultSessionCookieName,
		maxAge:     defaultSessionMaxAge,
		path:       "/",
		sameSite:   http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

// WithSessionCookieName overrides "__sid".
func WithSessionCookieName(name string) SessionOption {
	return func(sm *SessionManager) {
		if name != "" {
			sm.cookieName = name
		}
	}
}

// WithSessionMaxAge sets the session lifetime in seconds. Defaults to 7 days.
func WithSessionMaxAge(seconds int) SessionOption {
	return func(sm *SessionManager) {
		if seconds > 0 {
			sm.maxAge = seconds
		}
	}
}

func WithSessionDomain(domain string) SessionOption {
	return func(sm *SessionManager) {
		sm.domain = domain
	}
}

func WithSessionSecure(secure bool) SessionOption {
	return func(sm *SessionManager) {
		sm.secure = secure
	}
}

func WithSessionSameSite(sameSite http.SameSite) SessionOption {
	return func(sm *SessionManager) {
		sm.sameSite = sameSite
	}
}

// WithSessionBinding ties sessions to the User-Agent they were created with.
func WithSessionBinding(mode ClientBinding) SessionOption {
	return func(sm *SessionManager) {
		sm.binding = mode
	}
}

// SetLogger replaces the logger. The App calls it with its own logger.
func (sm *SessionManager) SetLogger(l *slog.Logger) {
	if l != nil {
		sm.logger = l
	}
}

// Store returns the backing store.
func (sm *SessionManager) Store() session.Store {
	return sm.store
}

// LoadSession returns the session named by the request cookie. A missing
// cookie, an unknown token and an expired session all yield nil, nil.
func (sm *SessionManager) LoadSession(ctx context.Context, r *http.Request) (*session.Session, error) {
	c, err := r.Cookie(sm.cookieName)
	if err != nil || c.Value == "" {
		return nil, nil
	}

	sess, err := sm.store.Load(ctx, c.Value)
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired):
		return nil, nil
	case err != nil:
		return nil, err
	}

	if sm.binding != BindingOff && sess.UserAgent != "" && sess.UserAgent != r.UserAgent() {
		sm.logger.WarnContext(ctx, "session client mismatch",
			slog.String("session_id", sess.ID),
			slog.String("ip", ClientIP(r)),
			slog.String("user_agent", r.UserAgent()),
		)
		if sm.binding == BindingReject {
			return nil, ErrClientMismatch
		}
	}
	return sess, nil
}

// CreateSession starts and stores a new session for r.
func (sm *SessionManager) CreateSession(ctx context.Context, r *http.Request) (*session.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().Add(time.Duration(sm.maxAge) * time.Second)

	sess := session.New(uuid.NewString(), token, expiresAt)
	sess.IP = ClientIP(r)
	sess.UserAgent = r.UserAgent()

	if err := sm.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// SaveSession writes the session cookie.
func (sm *SessionManager) SaveSession(w http.ResponseWriter, sess *session.Session) {
	http.SetCookie(w, sm.cookie(sess.Token, sm.maxAge))
}

// RotateToken issues a new token for sess and drops the old one, so a
// token planted before login is useless after it.
func (sm *SessionManager) RotateToken(ctx context.Context, sess *session.Session) error {
	oldToken := sess.Token
	newToken, err := generateToken()
	if err != nil {
		return err
	}

	sess.Token = newToken
	if err := sm.store.Save(ctx, sess); err != nil {
		sess.Token = oldToken
		return fmt.Errorf("save rotated session: %w", err)
	}
	if err := sm.store.Delete(ctx, oldToken); err != nil {
		sm.logger.WarnContext(ctx, "failed to delete old session token", slog.Any("error", err))
	}
	return nil
}

// DeleteSession expires the session cookie.
func (sm *SessionManager) DeleteSession(w http.ResponseWriter) {
	http.SetCookie(w, sm.cookie("", -1))
}

func (sm *SessionManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sm.cookieName,
		Value:    value,
		Path:     sm.path,
		Domain:   sm.domain,
		MaxAge:   maxAge,
		Secure:   sm.secure,
		HttpOnly: true,
		SameSite: sm.sameSite,
	}
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ClientIP returns the client address, preferring the first
// X-Forwarded-For hop, then X-Real-IP, then RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	if xr := strings.TrimSpace(r.Header.Get("X-Real-IP")); xr != "" {
		if ip := net.ParseIP(xr); ip != nil {
			return ip.String()
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
