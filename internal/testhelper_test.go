package internal_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"

	"github.com/ochoko/admin/internal"
)

// routes adapts a plain function to internal.Handler.
type routes func(r internal.Router)

func (f routes) Routes(r internal.Router) { f(r) }

func serve(t *testing.T, app *internal.App, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func text(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

// replayCookies copies the cookies set by rec onto the next request.
func replayCookies(rec *httptest.ResponseRecorder, req *http.Request) *http.Request {
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}
	return req
}
