package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ochoko/admin/pkg/cookie"
	"github.com/ochoko/admin/pkg/htmx"
	"github.com/ochoko/admin/pkg/i18n"
	"github.com/ochoko/admin/pkg/session"
)

// TranslatorKey is the context key of the request's *i18n.Translator.
type TranslatorKey struct{}

// Component is anything that renders HTML. templ.Component satisfies it.
type Component interface {
	Render(ctx context.Context, w io.Writer) error
}

// Context gives handlers the request, the response and the per-request
// services: cookies, the session, translations and logging.
// It is also a context.Context bound to the request.
type Context interface {
	context.Context

	Request() *http.Request
	Response() http.ResponseWriter

	// Context returns the request's context.Context.
	Context() context.Context

	// Param returns a chi URL parameter, or "".
	Param(name string) string
	Query(name string) string
	QueryDefault(name, defaultValue string) string

	// Form returns a form value, parsing the body on first use.
	Form(name string) string
	FormFile(name string) (multipart.File, *multipart.FileHeader, error)

	Header(name string) string
	SetHeader(name, value string)

	// ClientIP returns the address of the browser.
	ClientIP() string

	JSON(code int, v any) error
	String(code int, s string) error
	NoContent(code int) error

	// Redirect redirects regular requests and sends HX-Redirect to htmx.
	Redirect(code int, url string) error

	// Error builds an HTTPError to be returned from the handler.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	IsHTMX() bool

	// Render writes component with code. For htmx requests the render
	// options set response headers and append out-of-band fragments.
	Render(code int, component Component, opts ...htmx.RenderOption) error

	// RenderPartial renders partial for htmx requests and fullPage
	// otherwise.
	RenderPartial(code int, fullPage, partial Component, opts ...htmx.RenderOption) error

	// Written reports whether the response has started.
	Written() bool

	Logger() *slog.Logger
	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set stores a value on the request context. Later middleware and the
	// handler see it through Get or Value.
	Set(key any, value any)
	Get(key any) any

	Cookie(name string) (string, error)
	SetCookie(name, value string, maxAge int)
	DeleteCookie(name string)
	CookieSigned(name string) (string, error)
	SetCookieSigned(name, value string, maxAge int) error
	CookieSealed(name string) (string, error)
	SetCookieSealed(name, value string, maxAge int) error

	// Flash reads and clears a one-shot value set by SetFlash.
	Flash(key string, dest any) error
	SetFlash(key string, value any) error

	// Session returns the current session, or nil when the browser has
	// none. Returns session.ErrNotConfigured without WithSession.
	Session() (*session.Session, error)

	// InitSession starts a fresh session and sets its cookie.
	InitSession() error

	// RotateSession gives the current session a new token, starting one
	// if needed. Call it whenever the signed-in identity changes.
	RotateSession() error

	// SessionValue returns a session value, or "" without a session.
	SessionValue(key string) (string, error)

	// SetSessionValue stores a value, starting a session if needed.
	// An empty value deletes the key.
	SetSessionValue(key, value string) error

	DeleteSessionValue(key string) error

	// DestroySession removes the session and its cookie.
	DestroySession() error

	ResponseWriter() *ResponseWriter

	// T translates key with the request's translator, or returns key.
	T(key string, placeholders ...i18n.M) string
	Tn(key string, n int, placeholders ...i18n.M) string
	Language() string
	FormatNumber(n float64) string
	FormatDate(date time.Time) string
	FormatDateTime(datetime time.Time) string
}

// requestState is shared by every Context built for the same request, so
// middleware and handler see one session.
type requestState struct {
	session      *session.Session
	loaded       bool
	hookAttached bool
}

type requestStateKey struct{}

type requestContext struct {
	response       http.ResponseWriter
	request        *http.Request
	responseWriter *ResponseWriter
	logger         *slog.Logger
	cookieManager  *cookie.Manager
	sessionManager *SessionManager
	state          *requestState
}

// newContext reuses the response writer and request state of an outer
// Context when the request already passed through one.
func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w, htmx.IsHTMX(r))
	}

	state, ok := r.Context().Value(requestStateKey{}).(*requestState)
	if !ok {
		state = &requestState{}
		r = r.WithContext(context.WithValue(r.Context(), requestStateKey{}, state))
	}

	return &requestContext{
		request:        r,
		response:       rw,
		responseWriter: rw,
		logger:         app.logger,
		cookieManager:  app.cookieManager,
		sessionManager: app.sessionManager,
		state:          state,
	}
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.response
}

func (c *requestContext) Context() context.Context {
	return c.request.Context()
}

func (c *requestContext) Deadline() (time.Time, bool) {
	return c.request.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.request.Context().Done()
}

func (c *requestContext) Err() error {
	return c.request.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Param(name string) string {
	return chi.URLParam(c.request, name)
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) QueryDefault(name, defaultValue string) string {
	if v := c.request.URL.Query().Get(name); v != "" {
		return v
	}
	return defaultValue
}

func (c *requestContext) Form(name string) string {
	return c.request.FormValue(name)
}

func (c *requestContext) FormFile(name string) (multipart.File, *multipart.FileHeader, error) {
	return c.request.FormFile(name)
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) ClientIP() string {
	return ClientIP(c.request)
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := io.WriteString(c.response, s)
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	htmx.Redirect(c.response, c.request, url, code)
	return nil
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) IsHTMX() bool {
	return htmx.IsHTMX(c.request)
}

func (c *requestContext) Render(code int, component Component, opts ...htmx.RenderOption) error {
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")

	var resp *htmx.Response
	if len(opts) > 0 && c.IsHTMX() {
		resp = htmx.NewResponse(opts...)
	}
	resp.WriteHeaders(c.response)

	c.response.WriteHeader(code)
	if err := component.Render(c.Context(), c.response); err != nil {
		return err
	}
	return resp.RenderOOB(c.Context(), c.response)
}

func (c *requestContext) RenderPartial(code int, fullPage, partial Component, opts ...htmx.RenderOption) error {
	if c.IsHTMX() {
		return c.Render(code, partial, opts...)
	}
	return c.Render(code, fullPage)
}

func (c *requestContext) Written() bool {
	return c.responseWriter.Written()
}

func (c *requestContext) Logger() *slog.Logger {
	return c.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.logger.DebugContext(c.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.logger.InfoContext(c.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.logger.WarnContext(c.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.logger.ErrorContext(c.Context(), msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	c.request = c.request.WithContext(context.WithValue(c.request.Context(), key, value))
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Cookie(name string) (string, error) {
	return c.cookieManager.Get(c.request, name)
}

func (c *requestContext) SetCookie(name, value string, maxAge int) {
	c.cookieManager.Set(c.response, name, value, maxAge)
}

func (c *requestContext) DeleteCookie(name string) {
	c.cookieManager.Delete(c.response, name)
}

func (c *requestContext) CookieSigned(name string) (string, error) {
	return c.cookieManager.GetSigned(c.request, name)
}

func (c *requestContext) SetCookieSigned(name, value string, maxAge int) error {
	return c.cookieManager.SetSigned(c.response, name, value, maxAge)
}

func (c *requestContext) CookieSealed(name string) (string, error) {
	return c.cookieManager.GetSealed(c.request, name)
}

func (c *requestContext) SetCookieSealed(name, value string, maxAge int) error {
	return c.cookieManager.SetSealed(c.response, name, value, maxAge)
}

func (c *requestContext) Flash(key string, dest any) error {
	return c.cookieManager.Flash(c.response, c.request, key, dest)
}

func (c *requestContext) SetFlash(key string, value any) error {
	return c.cookieManager.SetFlash(c.response, key, value)
}

// attachSessionHook persists a dirty session right before the response
// starts. Errors are logged; the response still goes out.
func (c *requestContext) attachSessionHook() {
	if c.state.hookAttached {
		return
	}
	c.state.hookAttached = true
	c.responseWriter.OnBeforeWrite(c.persistSession)
}

func (c *requestContext) persistSession() {
	sess := c.state.session
	if c.sessionManager == nil || sess == nil || !sess.Dirty() {
		return
	}
	if err := c.sessionManager.Store().Save(c.Context(), sess); err != nil {
		c.logger.ErrorContext(c.Context(), "failed to save session", slog.Any("error", err))
	}
}

func (c *requestContext) Session() (*session.Session, error) {
	if c.sessionManager == nil {
		return nil, session.ErrNotConfigured
	}
	c.attachSessionHook()

	if c.state.loaded {
		return c.state.session, nil
	}

	sess, err := c.sessionManager.LoadSession(c.Context(), c.request)
	if err != nil {
		return nil, err
	}
	c.state.session = sess
	c.state.loaded = true
	return sess, nil
}

func (c *requestContext) InitSession() error {
	if c.sessionManager == nil {
		return session.ErrNotConfigured
	}
	c.attachSessionHook()

	sess, err := c.sessionManager.CreateSession(c.Context(), c.request)
	if err != nil {
		return err
	}
	c.state.session = sess
	c.state.loaded = true
	c.sessionManager.SaveSession(c.response, sess)
	return nil
}

// ensureSession returns the current session, starting one if needed.
func (c *requestContext) ensureSession() (*session.Session, error) {
	sess, err := c.Session()
	if err != nil {
		return nil, err
	}
	if sess != nil {
		return sess, nil
	}
	if err := c.InitSession(); err != nil {
		return nil, err
	}
	return c.state.session, nil
}

func (c *requestContext) RotateSession() error {
	if c.sessionManager == nil {
		return session.ErrNotConfigured
	}
	sess, err := c.Session()
	if err != nil {
		c.LogWarn("failed to load session", slog.Any("error", err))
	}
	if sess == nil {
		return c.InitSession()
	}
	if err := c.sessionManager.RotateToken(c.Context(), sess); err != nil {
		return err
	}
	c.sessionManager.SaveSession(c.response, sess)
	return nil
}

func (c *requestContext) SessionValue(key string) (string, error) {
	sess, err := c.Session()
	if err != nil || sess == nil {
		return "", err
	}
	return sess.Get(key), nil
}

func (c *requestContext) SetSessionValue(key, value string) error {
	if value == "" {
		return c.DeleteSessionValue(key)
	}
	sess, err := c.ensureSession()
	if err != nil {
		return err
	}
	sess.Set(key, value)
	return nil
}

func (c *requestContext) DeleteSessionValue(key string) error {
	sess, err := c.Session()
	if err != nil || sess == nil {
		return err
	}
	sess.Delete(key)
	return nil
}

func (c *requestContext) DestroySession() error {
	if c.sessionManager == nil {
		return session.ErrNotConfigured
	}
	if sess := c.state.session; sess != nil {
		if err := c.sessionManager.Store().Delete(c.Context(), sess.Token); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	c.sessionManager.DeleteSession(c.response)
	c.state.session = nil
	c.state.loaded = true
	return nil
}

func (c *requestContext) ResponseWriter() *ResponseWriter {
	return c.responseWriter
}

func (c *requestContext) translator() *i18n.Translator {
	if tr, ok := c.Get(TranslatorKey{}).(*i18n.Translator); ok {
		return tr
	}
	return nil
}

func (c *requestContext) T(key string, placeholders ...i18n.M) string {
	if tr := c.translator(); tr != nil {
		return tr.T(key, placeholders...)
	}
	return key
}

func (c *requestContext) Tn(key string, n int, placeholders ...i18n.M) string {
	if tr := c.translator(); tr != nil {
		return tr.Tn(key, n, placeholders...)
	}
	return key
}

func (c *requestContext) Language() string {
	if tr := c.translator(); tr != nil {
		return tr.Language()
	}
	return ""
}

func (c *requestContext) FormatNumber(n float64) string {
	if tr := c.translator(); tr != nil {
		return tr.FormatNumber(n)
	}
	return fmt.Sprintf("%g", n)
}

func (c *requestContext) FormatDate(date time.Time) string {
	if tr := c.translator(); tr != nil {
		return tr.FormatDate(date)
	}
	return date.Format(time.DateOnly)
}

func (c *requestContext) FormatDateTime(datetime time.Time) string {
	if tr := c.translator(); tr != nil {
		return tr.FormatDateTime(datetime)
	}
	return datetime.Format(time.DateTime)
}
