package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ochoko/admin"
	"github.com/ochoko/admin/middlewares"
	"github.com/ochoko/admin/pkg/auth"
	"github.com/ochoko/admin/views"
)

// AuthHandler serves login and logout.
type AuthHandler struct {
	limiter *middlewares.RateLimiter
}

// NewAuthHandler throttles login attempts with limiter when it is not nil.
func NewAuthHandler(limiter *middlewares.RateLimiter) *AuthHandler {
	return &AuthHandler{limiter: limiter}
}

func (h *AuthHandler) Routes(r admin.Router) {
	var throttle []admin.Middleware
	if h.limiter != nil {
		throttle = append(throttle, h.limiter.Middleware())
	}
	r.GET(LoginPath, h.form)
	r.POST(LoginPath, h.login, throttle...)
	r.POST("/logout", h.logout)
}

func (h *AuthHandler) form(c admin.Context) error {
	if middlewares.CurrentAuth(c).IsAuthenticated() {
		return c.Redirect(http.StatusSeeOther, HomePath)
	}
	data := views.LoginData{Next: c.Query("next")}
	data.Flash = takeNotice(c)
	return c.Render(http.StatusOK, views.LoginPage(data))
}

func (h *AuthHandler) login(c admin.Context) error {
	data := views.LoginData{
		Email: strings.TrimSpace(c.Form("email")),
		Next:  c.Form("next"),
	}
	provider := middlewares.AuthProvider(c)
	if provider == nil {
		return admin.ErrInternal("auth provider not configured")
	}

	// A fresh session token on every sign-in attempt.
	if err := c.RotateSession(); err != nil {
		return err
	}

	snap, err := provider.Login(c, data.Email, c.Form("password"))
	if err != nil {
		if errors.Is(err, auth.ErrAdminRequired) {
			c.LogInfo("login refused", slog.String("email", data.Email))
		} else {
			c.LogWarn("login failed", slog.String("email", data.Email), slog.Any("error", err))
		}
		data.Error = messageFor(c, err)
		return c.RenderPartial(inlineStatus(c, http.StatusUnauthorized), views.LoginPage(data), views.LoginForm(data))
	}

	middlewares.SetAuth(c, snap)
	c.LogInfo("admin signed in", slog.String("username", snap.Username()))
	return c.Redirect(http.StatusSeeOther, safeNext(data.Next))
}

func (h *AuthHandler) logout(c admin.Context) error {
	if provider := middlewares.AuthProvider(c); provider != nil {
		middlewares.SetAuth(c, provider.Logout(c))
	}
	// Selection, expansion, the import wizard and remembered pages all hang
	// off the session, so the next sign-in starts from a fresh one.
	if err := c.DestroySession(); err != nil {
		c.LogWarn("failed to destroy session", slog.Any("error", err))
	}
	setNotice(c, "info", c.T("login.logged_out"))
	return c.Redirect(http.StatusSeeOther, LoginPath)
}
