package i18n

import "errors"

var (
	ErrNoLanguages = errors.New("i18n: no translation files found")
	ErrInvalidFile = errors.New("i18n: invalid translation file")
	ErrUnknownLang = errors.New("i18n: default language has no translations")
	ErrBadLangTag  = errors.New("i18n: invalid language tag")
)
