package middlewares

import (
	"github.com/ochoko/admin/internal"
	"github.com/ochoko/admin/pkg/i18n"
)

// LanguageCookie holds the language picked in the navbar.
const LanguageCookie = "lang"

// I18nConfig configures the I18n middleware.
type I18nConfig struct {
	Extractor    internal.Extractor
	extractorSet bool
}

// I18nOption configures I18nConfig.
type I18nOption func(*I18nConfig)

// WithI18nExtractor replaces the language lookup chain.
func WithI18nExtractor(ext internal.Extractor) I18nOption {
	return func(cfg *I18nConfig) {
		cfg.Extractor = ext
		cfg.extractorSet = true
	}
}

// FromAcceptLanguage matches the Accept-Language header against the
// bundle's languages.
func FromAcceptLanguage(b *i18n.Bundle) internal.ExtractorSource {
	return func(c internal.Context) (string, bool) {
		header := c.Header("Accept-Language")
		if header == "" {
			return "", false
		}
		return b.Match(header), true
	}
}

// FromSupported accepts a value from source only when the bundle has it.
func FromSupported(b *i18n.Bundle, source internal.ExtractorSource) internal.ExtractorSource {
	return func(c internal.Context) (string, bool) {
		lang, ok := source(c)
		if !ok || !b.Supports(lang) {
			return "", false
		}
		return lang, true
	}
}

// I18n resolves the request language and stores an *i18n.Translator
// under internal.TranslatorKey. The default chain is the "lang" cookie,
// then Accept-Language, then the bundle's fallback.
func I18n(b *i18n.Bundle, opts ...I18nOption) internal.Middleware {
	cfg := &I18nConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if !cfg.extractorSet {
		cfg.Extractor = internal.NewExtractor(
			FromSupported(b, internal.FromCookie(LanguageCookie)),
			FromAcceptLanguage(b),
		)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			lang, ok := cfg.Extractor.Extract(c)
			if !ok || lang == "" {
				lang = b.Fallback()
			}
			c.Set(internal.TranslatorKey{}, i18n.NewTranslator(b, lang))
			return next(c)
		}
	}
}

// GetTranslator returns the request's translator, or nil outside I18n.
func GetTranslator(c internal.Context) *i18n.Translator {
	tr, _ := c.Get(internal.TranslatorKey{}).(*i18n.Translator)
	return tr
}
