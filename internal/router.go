package internal

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
)

// Router is what handlers see when they declare routes.
type Router interface {
	GET(path string, h HandlerFunc, mw ...Middleware)
	POST(path string, h HandlerFunc, mw ...Middleware)
	PUT(path string, h HandlerFunc, mw ...Middleware)
	PATCH(path string, h HandlerFunc, mw ...Middleware)
	DELETE(path string, h HandlerFunc, mw ...Middleware)

	// Group shares middleware between routes without a path prefix.
	Group(fn func(r Router))

	// Route mounts a sub-router under pattern.
	Route(pattern string, fn func(r Router))

	// Use appends middleware to the current group.
	Use(mw ...Middleware)

	// Mount attaches a plain http.Handler.
	Mount(pattern string, h http.Handler)
}

type routerAdapter struct {
	router chi.Router
	app    *App
}

func (r *routerAdapter) GET(path string, h HandlerFunc, mw ...Middleware) {
	r.handle(http.MethodGet, path, h, mw)
}

func (r *routerAdapter) POST(path string, h HandlerFunc, mw ...Middleware) {
	r.handle(http.MethodPost, path, h, mw)
}

func (r *routerAdapter) PUT(path string, h HandlerFunc, mw ...Middleware) {
	r.handle(http.MethodPut, path, h, mw)
}

func (r *routerAdapter) PATCH(path string, h HandlerFunc, mw ...Middleware) {
	r.handle(http.MethodPatch, path, h, mw)
}

func (r *routerAdapter) DELETE(path string, h HandlerFunc, mw ...Middleware) {
	r.handle(http.MethodDelete, path, h, mw)
}

// handle registers h with its route middleware; the first one listed runs
// first.
func (r *routerAdapter) handle(method, path string, h HandlerFunc, mw []Middleware) {
	for _, m := range slices.Backward(mw) {
		h = m(h)
	}
	r.router.Method(method, path, r.app.wrapHandler(h))
}

func (r *routerAdapter) Group(fn func(Router)) {
	r.router.Group(func(cr chi.Router) {
		fn(&routerAdapter{router: cr, app: r.app})
	})
}

func (r *routerAdapter) Route(pattern string, fn func(Router)) {
	r.router.Route(pattern, func(cr chi.Router) {
		fn(&routerAdapter{router: cr, app: r.app})
	})
}

func (r *routerAdapter) Use(mw ...Middleware) {
	for _, m := range mw {
		r.router.Use(r.app.adaptMiddleware(m))
	}
}

func (r *routerAdapter) Mount(pattern string, h http.Handler) {
	r.router.Mount(pattern, h)
}

// adaptMiddleware turns a Middleware into a chi middleware. The Context
// built here is carried to the next handler through the request, so values
// stored with Set survive the hop.
func (a *App) adaptMiddleware(mw Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := mw(func(c Context) error {
				next.ServeHTTP(c.Response(), c.Request())
				return nil
			})
			c := newContext(w, r, a)
			if err := wrapped(c); err != nil {
				a.handleError(c, err)
			}
		})
	}
}
