package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochoko/admin/pkg/sakeapi"
)

var testGroups = []sakeapi.DuplicateGroup{
	{Name: "雪の茅舎", Count: 2, Sakes: []sakeapi.DuplicateSake{
		{ID: 11, Name: "雪の茅舎", BreweryName: "齋彌酒造店", BreweryPrefecture: "秋田県"},
		{ID: 12, Name: "雪の茅舎", BreweryName: "別の蔵", BreweryPrefecture: sakeapi.UnknownPrefecture},
	}},
	{Name: "菊正宗", Count: 3, Sakes: []sakeapi.DuplicateSake{
		{ID: 21, Name: "菊正宗", BreweryName: "菊正宗酒造", BreweryPrefecture: "兵庫県"},
	}},
}

func TestDuplicates(t *testing.T) {
	t.Parallel()

	t.Run("groups sorted by count", func(t *testing.T) {
		t.Parallel()
		b := newBrowser(t)
		b.signIn()
		b.respond(http.MethodGet, "/admin/sakes/duplicates", http.StatusOK, testGroups)

		rec := b.get("/duplicates")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Found 2 names shared by several sakes")
		assert.Less(t, strings.Index(body, "▶ 菊正宗"), strings.Index(body, "▶ 雪の茅舎"))
	})

	t.Run("filter matches member prefecture", func(t *testing.T) {
		t.Parallel()
		b := newBrowser(t)
		b.signIn()
		b.respond(http.MethodGet, "/admin/sakes/duplicates", http.StatusOK, testGroups)

		rec := b.get("/duplicates?q=秋田", htmxReq)
		body := rec.Body.String()
		assert.Contains(t, body, "雪の茅舎")
		assert.NotContains(t, body, "菊正宗")
		assert.NotContains(t, body, "<html")
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		b := newBrowser(t)
		b.signIn()
		b.respond(http.MethodGet, "/admin/sakes/duplicates", http.StatusOK, []sakeapi.DuplicateGroup{})
		assert.Contains(t, b.get("/duplicates").Body.String(), "No duplicate sake names")
	})

	t.Run("expansion is kept in the session", func(t *testing.T) {
		t.Parallel()
		b := newBrowser(t)
		b.signIn()
		b.respond(http.MethodGet, "/admin/sakes/duplicates", http.StatusOK, testGroups)
		b.get("/duplicates")

		rec := b.post("/duplicates/toggle", url.Values{"name": {"雪の茅舎"}, "sort": {"name_asc"}}, htmxReq)
		body := rec.Body.String()
		assert.Contains(t, body, "▼ 雪の茅舎")
		assert.Contains(t, body, "▶ 菊正宗")
		assert.Contains(t, body, "齋彌酒造店")
		assert.Contains(t, body, `<span class="warn">`+sakeapi.UnknownPrefecture)

		rec = b.get("/duplicates")
		assert.Contains(t, rec.Body.String(), "▼ 雪の茅舎")
		assert.Equal(t, 2, b.calls(http.MethodGet, "/admin/sakes/duplicates"))
	})

	t.Run("expand all includes filtered groups", func(t *testing.T) {
		t.Parallel()
		b := newBrowser(t)
		b.signIn()
		b.respond(http.MethodGet, "/admin/sakes/duplicates", http.StatusOK, testGroups)
		b.get("/duplicates")

		b.post("/duplicates/expand-all", url.Values{"q": {"秋田"}}, htmxReq)
		rec := b.get("/duplicates")
		assert.Contains(t, rec.Body.String(), "▼ 雪の茅舎")
		assert.Contains(t, rec.Body.String(), "▼ 菊正宗")

		rec = b.post("/duplicates/collapse-all", nil, htmxReq)
		assert.NotContains(t, rec.Body.String(), "▼")
	})

	t.Run("toggle needs a name", func(t *testing.T) {
		t.Parallel()
		b := newBrowser(t)
		b.signIn()
		assert.Equal(t, http.StatusBadRequest, b.post("/duplicates/toggle", nil).Code)
	})
}
