package internal_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ochoko/admin/internal"
)

type ctxKey struct{}

func TestTypedHelpers(t *testing.T) {
	t.Parallel()

	var (
		id       int64
		idOK     bool
		bad      int64
		limit    int
		fallback int
		rating   float64
		confirm  bool
		gen      int64
		genOK    bool
		label    string
	)

	app := internal.New(internal.WithHandlers(routes(func(r internal.Router) {
		r.POST("/sakes/{id}", func(c internal.Context) error {
			id, idOK = internal.ParamOK[int64](c, "id")
			bad = internal.Query[int64](c, "bad")
			limit = internal.QueryDefault(c, "limit", 100)
			fallback = internal.QueryDefault(c, "missing", 100)
			rating = internal.Query[float64](c, "rating")
			confirm = internal.Query[bool](c, "confirm")
			gen, genOK = internal.FormValue[int64](c, "gen")
			c.Set(ctxKey{}, "純米大吟醸")
			label = internal.ContextValue[string](c, ctxKey{})
			return c.NoContent(http.StatusNoContent)
		})
	})))

	req := httptest.NewRequest(http.MethodPost,
		"/sakes/42?bad=x&limit=20&rating=4.5&confirm=true",
		strings.NewReader("gen=3"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := serve(t, app, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.True(t, idOK)
	assert.Equal(t, int64(42), id)
	assert.Zero(t, bad)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 100, fallback)
	assert.InDelta(t, 4.5, rating, 0.001)
	assert.True(t, confirm)
	assert.True(t, genOK)
	assert.Equal(t, int64(3), gen)
	assert.Equal(t, "純米大吟醸", label)
}

func TestContextValue_WrongType(t *testing.T) {
	t.Parallel()

	var got int
	app := internal.New(internal.WithHandlers(routes(func(r internal.Router) {
		r.GET("/", func(c internal.Context) error {
			c.Set(ctxKey{}, "not an int")
			got = internal.ContextValue[int](c, ctxKey{})
			return nil
		})
	})))
	serve(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Zero(t, got)
}
