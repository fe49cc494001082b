// Package views renders the console's pages.
//
// Pages are html/template files embedded in the binary and exposed as
// templ components, so handlers render them through Context.Render and
// htmx swaps fragments of the same templates. Every template executes
// against a View, which carries the page data plus the request's
// translator and auth snapshot:
//
//	{{$.T "nav.sakes"}}  {{range .Data.Sakes}}...{{end}}
package views

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"io"
	"io/fs"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/ochoko/admin/internal"
	"github.com/ochoko/admin/pkg/auth"
	"github.com/ochoko/admin/pkg/i18n"
	"github.com/ochoko/admin/pkg/sakeapi"
	"github.com/ochoko/admin/pkg/sanitizer"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static serves the stylesheet and scripts under /static/.
func Static() fs.FS {
	return staticFS
}

var templates = template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))

var funcs = template.FuncMap{
	"rating": func(avg *float64, reviews int) string {
		if avg == nil {
			return ""
		}
		return "★ " + strconv.FormatFloat(*avg, 'f', 1, 64) + " (" + strconv.Itoa(reviews) + ")"
	},
	"str": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"num": func(v any) string {
		switch n := v.(type) {
		case *int:
			if n != nil {
				return strconv.Itoa(*n)
			}
		case *float64:
			if n != nil {
				return strconv.FormatFloat(*n, 'f', -1, 64)
			}
		}
		return ""
	},
	"markdown":  sanitizer.Markdown,
	"excerpt":   func(s *string) string { return excerpt(s, 80) },
	"unknown":   func(pref string) bool { return pref == "" || pref == sakeapi.UnknownPrefecture },
	"tokutei":   func() []sakeapi.TokuteiMeisho { return sakeapi.TokuteiMeishoValues },
	"hiire":     func() []sakeapi.HiireType { return sakeapi.HiireTypeValues },
	"filtering": func() []sakeapi.FiltrationType { return sakeapi.FiltrationTypeValues },
	"encodings": func() []sakeapi.Encoding { return sakeapi.Encodings },
	"field":     newField,
}

// formField is one text input of the sake form.
type formField struct {
	V           *View
	Name        string
	Label       string
	Value       string
	Mode        string
	Placeholder string
	Required    bool
	Error       string
}

func newField(v *View, name, value, mode, placeholder string, required bool, msg string) formField {
	return formField{
		V:           v,
		Name:        name,
		Label:       "form." + name,
		Value:       value,
		Mode:        mode,
		Placeholder: placeholder,
		Required:    required,
		Error:       msg,
	}
}

func excerpt(s *string, n int) string {
	if s == nil {
		return ""
	}
	return sanitizer.Excerpt(*s, n)
}

// View is the root object every template executes against.
type View struct {
	ctx  context.Context
	tr   *i18n.Translator
	Auth auth.Snapshot
	Data any
	Body template.HTML
}

func newView(ctx context.Context, data any) *View {
	v := &View{ctx: ctx, Data: data, Auth: auth.Anonymous()}
	v.tr, _ = ctx.Value(internal.TranslatorKey{}).(*i18n.Translator)
	if snap, ok := auth.FromContext(ctx); ok {
		v.Auth = snap
	}
	return v
}

// T translates key. Extra arguments are name/value pairs for placeholders.
func (v *View) T(key string, pairs ...any) string {
	if v.tr == nil {
		return key
	}
	return v.tr.T(key, placeholders(pairs))
}

// Tn translates the plural forms of key for n.
func (v *View) Tn(key string, n int, pairs ...any) string {
	if v.tr == nil {
		return key
	}
	return v.tr.Tn(key, n, placeholders(pairs))
}

// Lang returns the request language.
func (v *View) Lang() string {
	if v.tr == nil {
		return "ja"
	}
	return v.tr.Language()
}

// Date formats t for the request language.
func (v *View) Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if v.tr == nil {
		return t.Format(time.DateOnly)
	}
	return v.tr.FormatDate(t)
}

func placeholders(pairs []any) i18n.M {
	m := make(i18n.M, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if k, ok := pairs[i].(string); ok {
			m[k] = pairs[i+1]
		}
	}
	return m
}

// component renders the named template with data.
func component(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return templates.ExecuteTemplate(w, name, newView(ctx, data))
	})
}

// page wraps the named template in the layout.
func page(title, name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var body bytes.Buffer
		v := newView(ctx, data)
		if err := templates.ExecuteTemplate(&body, name, v); err != nil {
			return err
		}
		v.Body = template.HTML(body.String())
		v.Data = layoutData{Title: title, Flash: flashFrom(data)}
		return templates.ExecuteTemplate(w, "layout", v)
	})
}

type layoutData struct {
	Title string
	Flash Notice
}

// Notice is a one-shot message shown at the top of a page.
type Notice struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Empty reports whether there is nothing to show.
func (n Notice) Empty() bool {
	return n.Text == ""
}

type flashCarrier interface {
	flash() Notice
}

func flashFrom(data any) Notice {
	if fc, ok := data.(flashCarrier); ok {
		return fc.flash()
	}
	return Notice{}
}
