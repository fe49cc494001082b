package handlers

import (
	"net/http"
	"net/url"

	"github.com/ochoko/admin"
	"github.com/ochoko/admin/middlewares"
	"github.com/ochoko/admin/pkg/i18n"
)

const languageCookieMaxAge = 365 * 24 * 60 * 60

// LanguageHandler switches the interface language.
type LanguageHandler struct {
	bundle *i18n.Bundle
}

func NewLanguageHandler(b *i18n.Bundle) *LanguageHandler {
	return &LanguageHandler{bundle: b}
}

func (h *LanguageHandler) Routes(r admin.Router) {
	r.GET("/lang/{code}", h.switchLanguage)
}

// switchLanguage stores the choice in a cookie and returns to the page
// the link was clicked on.
func (h *LanguageHandler) switchLanguage(c admin.Context) error {
	code := c.Param("code")
	if !h.bundle.Supports(code) {
		return admin.ErrNotFound("unsupported language")
	}
	c.SetCookie(middlewares.LanguageCookie, code, languageCookieMaxAge)
	return c.Redirect(http.StatusSeeOther, backTo(c))
}

// backTo is the same-site path of the Referer, or the home page.
func backTo(c admin.Context) string {
	ref, err := url.Parse(c.Header("Referer"))
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != c.Request().Host) {
		return HomePath
	}
	return safeNext(ref.RequestURI())
}
