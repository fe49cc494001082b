// Package internal holds the web runtime of the admin console. Import
// "github.com/ochoko/admin" instead; it re-exports the public API.
//
// # Core Types
//
//   - App: router, middleware chain, health endpoints and graceful shutdown
//   - Context: request and response access plus cookies, the browser
//     session, translations and logging
//   - Router: what handlers use to declare routes
//   - Handler: a type that declares routes
//   - HandlerFunc: a route handler returning an error
//   - Middleware: wraps a HandlerFunc
//   - ErrorHandler: renders errors returned by handlers
//
// # Context as context.Context
//
// Context embeds context.Context, so it goes straight into API calls and is
// cancelled when the browser goes away:
//
//	func (h *Sakes) list(c admin.Context) error {
//	    sakes, err := middlewares.APIClient(c).ListSakes(c, sakeapi.ListOptions{Limit: h.pageSize})
//	    if err != nil {
//	        return err
//	    }
//	    return c.Render(http.StatusOK, views.SakesPage(views.SakesData{Sakes: sakes}))
//	}
//
// # Sessions
//
// WithSession enables server-side sessions. The token lives in an HttpOnly
// "__sid" cookie; the values live in a session.Store (memory or Redis).
// Middleware and handler of one request share the same session, and a
// dirty session is saved right before the response starts:
//
//	_ = c.SetSessionValue("selection", sel.Encode())
//	v, _ := c.SessionValue("selection")
//
// RotateSession issues a new token and must be called on login.
//
// # htmx
//
// For htmx requests the ResponseWriter sends every status as 200 so the
// fragment is swapped. Redirect sends HX-Redirect. Render accepts
// htmx.RenderOption values for out-of-band fragments and response
// headers; regular requests ignore them.
//
// # Errors
//
// A handler error goes to the ErrorHandler unless the response has
// already started. HTTPError carries a status and display text.
//
// # Runtime
//
//	err := app.Run(":8080",
//	    admin.StartupHook(check),
//	    admin.ShutdownHook(redis.Closer(client)),
//	)
package internal
