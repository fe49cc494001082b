package i18n

import (
	"fmt"
	"io/fs"
	"maps"
	"path"
	"strings"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// M carries placeholder values. A placeholder is written {{name}}.
type M = map[string]any

// Bundle holds every loaded language. It is read-only after Load and safe
// for concurrent use.
type Bundle struct {
	messages map[string]map[string]string
	tags     []language.Tag
	matcher  language.Matcher
	fallback string
}

// Load reads one YAML file per language from the root of fsys, named
// after the language ("ja.yaml", "en.yaml"). Nested keys are joined with
// dots. fallback is served when a key or a language is missing.
func Load(fsys fs.FS, fallback string) (*Bundle, error) {
	fb, err := language.Parse(fallback)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadLangTag, fallback)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	b := &Bundle{messages: make(map[string]map[string]string), fallback: base(fb)}
	for _, e := range entries {
		ext := strings.ToLower(path.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		tag, err := language.Parse(strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFile, e.Name(), err)
		}

		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, err
		}
		var tree map[string]any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFile, e.Name(), err)
		}

		lang := base(tag)
		if b.messages[lang] == nil {
			b.messages[lang] = make(map[string]string)
			b.tags = append(b.tags, tag)
		}
		flatten(b.messages[lang], "", tree)
	}

	if len(b.messages) == 0 {
		return nil, ErrNoLanguages
	}
	if _, ok := b.messages[b.fallback]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLang, b.fallback)
	}

	// The fallback goes first so the matcher prefers it on no match.
	tags := []language.Tag{fb}
	for _, t := range b.tags {
		if base(t) != b.fallback {
			tags = append(tags, t)
		}
	}
	b.tags = tags
	b.matcher = language.NewMatcher(tags)
	return b, nil
}

// Languages returns the loaded languages, fallback first.
func (b *Bundle) Languages() []string {
	out := make([]string, len(b.tags))
	for i, t := range b.tags {
		out[i] = base(t)
	}
	return out
}

// Fallback returns the fallback language.
func (b *Bundle) Fallback() string {
	return b.fallback
}

// Supports reports whether lang was loaded.
func (b *Bundle) Supports(lang string) bool {
	_, ok := b.messages[lang]
	return ok
}

// Match picks the best loaded language for the given preferences, each
// of which may be a single tag or a whole Accept-Language header.
// Unparsable or empty input yields the fallback.
func (b *Bundle) Match(prefs ...string) string {
	var want []language.Tag
	for _, p := range prefs {
		if p == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		want = append(want, tags...)
	}
	if len(want) == 0 {
		return b.fallback
	}
	_, idx, conf := b.matcher.Match(want...)
	if conf == language.No {
		return b.fallback
	}
	return base(b.tags[idx])
}

// T returns the message for key in lang, falling back to the fallback
// language and finally to key itself.
func (b *Bundle) T(lang, key string, values ...M) string {
	msg, ok := b.lookup(lang, key)
	if !ok {
		return key
	}
	return fill(msg, values...)
}

// Tn returns the plural form of key for n. Forms are stored as sub-keys
// named after CLDR categories ("one", "other"); "other" is the last
// resort. n is available as {{count}}.
func (b *Bundle) Tn(lang, key string, n int, values ...M) string {
	form := pluralForm(lang, n)
	msg, ok := b.lookup(lang, key+"."+form)
	if !ok {
		msg, ok = b.lookup(lang, key+".other")
	}
	if !ok {
		return key
	}
	return fill(msg, append([]M{{"count": n}}, values...)...)
}

func (b *Bundle) lookup(lang, key string) (string, bool) {
	if msgs, ok := b.messages[lang]; ok {
		if m, ok := msgs[key]; ok {
			return m, true
		}
	}
	m, ok := b.messages[b.fallback][key]
	return m, ok
}

func pluralForm(lang string, n int) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return "other"
	}
	if n < 0 {
		n = -n
	}
	switch plural.Cardinal.MatchPlural(tag, n, 0, 0, 0, 0) {
	case plural.Zero:
		return "zero"
	case plural.One:
		return "one"
	case plural.Two:
		return "two"
	case plural.Few:
		return "few"
	case plural.Many:
		return "many"
	default:
		return "other"
	}
}

func fill(msg string, values ...M) string {
	if len(values) == 0 || !strings.Contains(msg, "{{") {
		return msg
	}
	merged := make(M)
	for _, v := range values {
		maps.Copy(merged, v)
	}
	pairs := make([]string, 0, len(merged)*2)
	for k, v := range merged {
		pairs = append(pairs, "{{"+k+"}}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

func flatten(dst map[string]string, prefix string, tree map[string]any) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch v := v.(type) {
		case map[string]any:
			flatten(dst, key, v)
		case string:
			dst[key] = v
		case nil:
		default:
			dst[key] = fmt.Sprint(v)
		}
	}
}

func base(t language.Tag) string {
	b, _ := t.Base()
	return b.String()
}
