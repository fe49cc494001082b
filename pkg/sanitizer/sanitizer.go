// Package sanitizer turns free text from the catalog into safe HTML.
// Sake descriptions are written by catalog users in Markdown and may carry
// arbitrary markup; nothing from them reaches a page unsanitized.
package sanitizer

import (
	"bytes"
	"html/template"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	once     sync.Once
	strict   *bluemonday.Policy
	rich     *bluemonday.Policy
	markdown goldmark.Markdown
)

func setup() {
	once.Do(func() {
		strict = bluemonday.StrictPolicy()

		rich = bluemonday.NewPolicy()
		rich.AllowStandardURLs()
		rich.AllowElements(
			"p", "br", "hr",
			"strong", "b", "em", "i", "del",
			"ul", "ol", "li",
			"code", "pre", "blockquote",
			"table", "thead", "tbody", "tr", "th", "td",
		)
		rich.AllowAttrs("href").OnElements("a")
		rich.RequireNoFollowOnLinks(true)
		rich.AddTargetBlankToFullyQualifiedLinks(true)

		markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
}

// Markdown renders src and keeps only formatting markup and plain links.
func Markdown(src string) template.HTML {
	setup()
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		// goldmark only fails on writer errors; fall back to escaped text.
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(rich.SanitizeBytes(buf.Bytes()))
}

// HTML keeps the formatting subset of already rendered markup.
func HTML(s string) template.HTML {
	setup()
	return template.HTML(rich.Sanitize(s))
}

// PlainText strips all markup and collapses whitespace.
func PlainText(s string) string {
	setup()
	return strings.Join(strings.Fields(strict.Sanitize(s)), " ")
}

// Excerpt returns at most n runes of the plain text of s, ending in an
// ellipsis when shortened.
func Excerpt(s string, n int) string {
	text := PlainText(s)
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:n])) + "…"
}
