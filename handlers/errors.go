package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ochoko/admin"
	"github.com/ochoko/admin/middlewares"
	"github.com/ochoko/admin/pkg/auth"
	"github.com/ochoko/admin/pkg/catalog"
	"github.com/ochoko/admin/pkg/htmx"
	"github.com/ochoko/admin/pkg/sakeapi"
	"github.com/ochoko/admin/pkg/staging"
	"github.com/ochoko/admin/pkg/validator"
	"github.com/ochoko/admin/views"
)

var guardMessages = []struct {
	err error
	key string
}{
	{catalog.ErrEmptySelection, "sakes.empty_selection"},
	{catalog.ErrNoFile, "import.no_file"},
	{catalog.ErrNoPreview, "import.no_preview"},
	{catalog.ErrStalePreview, "import.stale_preview"},
	{catalog.ErrNotConfirmed, "import.not_confirmed"},
	{staging.ErrGone, "import.expired"},
	{auth.ErrAdminRequired, "login.admin_required"},
}

// messageFor is the localized text shown for a failed operation.
func messageFor(c admin.Context, err error) string {
	for _, g := range guardMessages {
		if errors.Is(err, g.err) {
			return c.T(g.key)
		}
	}
	if errors.Is(err, sakeapi.ErrUnauthorized) {
		return c.T("login.invalid")
	}
	if errors.Is(err, sakeapi.ErrNetwork) || errors.Is(err, sakeapi.ErrDecode) {
		return c.T("errors.generic")
	}
	if ve := validator.ExtractValidationErrors(err); ve != nil {
		translateFields(c, ve)
		return ve[0].Message
	}
	return sakeapi.Message(err)
}

// translateFields localizes validation messages with the form labels.
func translateFields(c admin.Context, ve validator.ValidationErrors) {
	ve.Translate(func(key string, values map[string]any) string {
		if field, ok := values["field"].(string); ok {
			values["field"] = c.T("form." + field)
		}
		return c.T(key, values)
	})
}

// describe maps err onto a status code and a message.
func describe(c admin.Context, err error) (int, string) {
	if middlewares.IsPanicError(err) {
		return http.StatusInternalServerError, c.T("errors.internal")
	}
	if he := admin.AsHTTPError(err); he != nil {
		switch he.Code {
		case http.StatusNotFound:
			return he.Code, c.T("errors.not_found")
		case http.StatusTooManyRequests:
			return he.Code, c.T("login.too_many")
		case http.StatusInternalServerError:
			return he.Code, c.T("errors.internal")
		}
		return he.Code, he.Message
	}
	if apiErr, ok := sakeapi.AsAPIError(err); ok {
		if apiErr.StatusCode == http.StatusNotFound {
			return http.StatusNotFound, apiErr.Message
		}
		return http.StatusBadGateway, apiErr.Message
	}
	if errors.Is(err, sakeapi.ErrNetwork) || errors.Is(err, sakeapi.ErrDecode) {
		return http.StatusBadGateway, c.T("errors.generic")
	}
	if validator.IsValidationError(err) {
		return http.StatusUnprocessableEntity, messageFor(c, err)
	}
	for _, g := range guardMessages {
		if errors.Is(err, g.err) {
			return http.StatusBadRequest, c.T(g.key)
		}
	}
	return http.StatusInternalServerError, c.T("errors.internal")
}

// ErrorHandler renders errors returned by handlers.
//
// A rejected token ends the session: the token is dropped and the browser
// is sent to the login page. Other errors render as an error page, or for
// htmx requests as text swapped into #page-error.
func ErrorHandler(c admin.Context, err error) error {
	if sakeapi.IsUnauthorized(err) {
		if derr := c.DeleteSessionValue(sakeapi.TokenKey); derr != nil {
			c.LogWarn("failed to clear session token", slog.Any("error", derr))
		}
		middlewares.SetAuth(c, auth.Anonymous())
		setNotice(c, "info", c.T("login.session_ended"))
		return c.Redirect(http.StatusSeeOther, middlewares.LoginURL(LoginPath, c.Request()))
	}

	code, msg := describe(c, err)
	if code >= http.StatusInternalServerError {
		c.LogError("request failed", slog.Int("status", code), slog.Any("error", err))
	} else {
		c.LogWarn("request rejected", slog.Int("status", code), slog.Any("error", err))
	}

	data := views.ErrorData{Code: code, Message: msg}
	if c.IsHTMX() {
		return c.Render(http.StatusOK, views.ErrorContent(data),
			htmx.WithRetarget("#page-error"),
			htmx.WithReswap(htmx.SwapInnerHTML),
		)
	}
	return c.Render(code, views.ErrorPage(data))
}

// NotFound renders the 404 page.
func NotFound(c admin.Context) error {
	return renderStatus(c, http.StatusNotFound, c.T("errors.not_found"))
}

// MethodNotAllowed renders the 405 page.
func MethodNotAllowed(c admin.Context) error {
	return renderStatus(c, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
}

func renderStatus(c admin.Context, code int, msg string) error {
	data := views.ErrorData{Code: code, Message: msg}
	return c.RenderPartial(code, views.ErrorPage(data), views.ErrorContent(data))
}
