package admin

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/ochoko/admin/internal"
	"github.com/ochoko/admin/pkg/cookie"
	"github.com/ochoko/admin/pkg/health"
	"github.com/ochoko/admin/pkg/i18n"
	"github.com/ochoko/admin/pkg/logger"
	"github.com/ochoko/admin/pkg/session"
)

type (
	// App is the console web application.
	App = internal.App

	// Router declares routes.
	Router = internal.Router

	// Context is the per-request handler context.
	Context = internal.Context

	// Handler declares routes on a Router.
	Handler = internal.Handler

	// HandlerFunc handles one request.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc.
	Middleware = internal.Middleware

	// ErrorHandler renders handler errors.
	ErrorHandler = internal.ErrorHandler

	Option        = internal.Option
	RunOption     = internal.RunOption
	HealthOption  = internal.HealthOption
	SessionOption = internal.SessionOption

	// Component renders HTML; templ components satisfy it.
	Component = internal.Component

	ResponseWriter = internal.ResponseWriter

	HTTPError       = internal.HTTPError
	HTTPErrorOption = internal.HTTPErrorOption

	ClientBinding = internal.ClientBinding

	ExtractorSource = internal.ExtractorSource
	Extractor       = internal.Extractor

	ContextExtractor = logger.ContextExtractor
	CookieOption     = cookie.Option
	Session          = session.Session
	SessionStore     = session.Store
)

// TranslatorKey is the context key of the request's translator.
type TranslatorKey = internal.TranslatorKey

const (
	BindingOff    = internal.BindingOff
	BindingWarn   = internal.BindingWarn
	BindingReject = internal.BindingReject
)

// New creates the application.
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// App options.

func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return internal.WithMethodNotAllowedHandler(h)
}

func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

func WithCookieOptions(opts ...CookieOption) Option {
	return internal.WithCookieOptions(opts...)
}

func WithTranslations(b *i18n.Bundle) Option {
	return internal.WithTranslations(b)
}

// Health options.

func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options.

func Address(addr string) RunOption {
	return internal.Address(addr)
}

func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Cookies.

func WithCookieSecret(secret string) CookieOption {
	return cookie.WithSecret(secret)
}

func WithCookieDomain(domain string) CookieOption {
	return cookie.WithDomain(domain)
}

func WithCookieSecure(secure bool) CookieOption {
	return cookie.WithSecure(secure)
}

func WithCookieSameSite(ss http.SameSite) CookieOption {
	return cookie.WithSameSite(ss)
}

var (
	ErrCookieNotFound = cookie.ErrNotFound
	ErrCookieNoSecret = cookie.ErrNoSecret
	ErrCookieTampered = cookie.ErrTampered
)

// Sessions.

func WithSession(store SessionStore, opts ...SessionOption) Option {
	return internal.WithSession(store, opts...)
}

func WithSessionCookieName(name string) SessionOption {
	return internal.WithSessionCookieName(name)
}

func WithSessionMaxAge(seconds int) SessionOption {
	return internal.WithSessionMaxAge(seconds)
}

func WithSessionDomain(domain string) SessionOption {
	return internal.WithSessionDomain(domain)
}

func WithSessionSecure(secure bool) SessionOption {
	return internal.WithSessionSecure(secure)
}

func WithSessionSameSite(sameSite http.SameSite) SessionOption {
	return internal.WithSessionSameSite(sameSite)
}

func WithSessionBinding(mode ClientBinding) SessionOption {
	return internal.WithSessionBinding(mode)
}

var (
	ErrSessionNotConfigured = session.ErrNotConfigured
	ErrSessionNotFound      = session.ErrNotFound
	ErrSessionExpired       = session.ErrExpired
	ErrClientMismatch       = internal.ErrClientMismatch
)

// Typed request helpers.

func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

func Param[T internal.Scalar](c Context, name string) T {
	return internal.Param[T](c, name)
}

func ParamOK[T internal.Scalar](c Context, name string) (T, bool) {
	return internal.ParamOK[T](c, name)
}

func Query[T internal.Scalar](c Context, name string) T {
	return internal.Query[T](c, name)
}

func QueryDefault[T internal.Scalar](c Context, name string, defaultValue T) T {
	return internal.QueryDefault(c, name, defaultValue)
}

func FormValue[T internal.Scalar](c Context, name string) (T, bool) {
	return internal.FormValue[T](c, name)
}

func ClientIP(r *http.Request) string {
	return internal.ClientIP(r)
}

// Extractors.

func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

func FromQuery(name string) ExtractorSource { return internal.FromQuery(name) }
func FromCookie(name string) ExtractorSource { return internal.FromCookie(name) }

// HTTP errors.

func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

func WithTitle(title string) HTTPErrorOption { return internal.WithTitle(title) }
func WithDetail(detail string) HTTPErrorOption { return internal.WithDetail(detail) }
func WithErrorCode(code string) HTTPErrorOption { return internal.WithErrorCode(code) }
func WithRequestID(id string) HTTPErrorOption { return internal.WithRequestID(id) }
func WithError(err error) HTTPErrorOption { return internal.WithError(err) }

func ErrBadRequest(msg string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(msg, opts...)
}

func ErrUnauthorized(msg string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnauthorized(msg, opts...)
}

func ErrForbidden(msg string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(msg, opts...)
}

func ErrNotFound(msg string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(msg, opts...)
}

func ErrConflict(msg string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrConflict(msg, opts...)
}

func ErrUnprocessable(msg string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnprocessable(msg, opts...)
}

func ErrTooManyRequests(msg string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrTooManyRequests(msg, opts...)
}

func ErrInternal(msg string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(msg, opts...)
}

func ErrBadGateway(msg string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadGateway(msg, opts...)
}

func ErrServiceUnavailable(msg string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrServiceUnavailable(msg, opts...)
}

func IsHTTPError(err error) bool { return internal.IsHTTPError(err) }
func AsHTTPError(err error) *HTTPError { return internal.AsHTTPError(err) }
