// Package i18n translates the console's interface.
//
// Messages live in one YAML file per language:
//
//	# ja.yaml
//	duplicates:
//	  found:
//	    other: "同じ名前を持つ日本酒が {{count}} グループ見つかりました"
//
// A Bundle is loaded once at startup. The i18n middleware picks a language
// per request from the language cookie and Accept-Language and stores a
// Translator in the request context:
//
//	b, err := i18n.Load(locales.FS, "ja")
//	tr := i18n.NewTranslator(b, b.Match(r.Header.Get("Accept-Language")))
//	tr.Tn("duplicates.found", len(groups))
//
// Plural categories follow CLDR through golang.org/x/text/feature/plural,
// so Japanese only ever uses "other" while English uses "one" and "other".
package i18n
