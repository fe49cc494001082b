package i18n

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Translator binds a Bundle to one language for the duration of a request.
type Translator struct {
	bundle  *Bundle
	lang    string
	printer *message.Printer
}

// NewTranslator returns a translator for lang. Unsupported languages use
// the bundle fallback.
func NewTranslator(b *Bundle, lang string) *Translator {
	if !b.Supports(lang) {
		lang = b.Fallback()
	}
	return &Translator{
		bundle:  b,
		lang:    lang,
		printer: message.NewPrinter(language.Make(lang)),
	}
}

// Language returns the active language.
func (t *Translator) Language() string { return t.lang }

func (t *Translator) T(key string, values ...M) string {
	return t.bundle.T(t.lang, key, values...)
}

func (t *Translator) Tn(key string, n int, values ...M) string {
	return t.bundle.Tn(t.lang, key, n, values...)
}

// TranslateMessage has the shape validation errors expect for their
// translation callback.
func (t *Translator) TranslateMessage(key string, values map[string]any) string {
	return t.bundle.T(t.lang, key, values)
}

// FormatNumber groups digits the way the language does.
func (t *Translator) FormatNumber(n float64) string {
	return t.printer.Sprint(number.Decimal(n))
}

// FormatDate renders a calendar date.
func (t *Translator) FormatDate(d time.Time) string {
	if t.lang == "ja" {
		return d.Format("2006年1月2日")
	}
	return d.Format("Jan 2, 2006")
}

// FormatDateTime renders a date with minutes.
func (t *Translator) FormatDateTime(d time.Time) string {
	if t.lang == "ja" {
		return d.Format("2006年1月2日 15:04")
	}
	return d.Format("Jan 2, 2006 15:04")
}
