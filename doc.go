// Package admin is the Ochoko admin console: a server-rendered web UI for
// curating the remote sake catalog.
//
// The console owns no data. Every page talks to the sake REST API through
// a sakeapi.Client bound to the browser session, so each admin acts with
// their own bearer token.
//
// # Quick Start
//
//	app := admin.New(
//	    admin.WithCustomLogger(log),
//	    admin.WithCookieOptions(admin.WithCookieSecret(cfg.CookieSecret)),
//	    admin.WithSession(session.NewMemoryStore()),
//	    admin.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.Recover(),
//	    ),
//	    admin.WithHandlers(handlers.NewAuthHandler(limiter), handlers.NewSakesHandler(last, 100)),
//	)
//	if err := app.Run(cfg.Address); err != nil {
//	    log.Error("server stopped", "error", err)
//	}
//
// The ochoko-admin command wires the whole console from configuration.
//
// # Handlers
//
// Handlers implement [Handler]:
//
//	func (h *BreweriesHandler) Routes(r admin.Router) {
//	    r.GET("/breweries", h.list)
//	}
//
// A [HandlerFunc] returns an error instead of writing one; the app's
// [ErrorHandler] renders it.
//
// # Middleware
//
// A [Middleware] wraps a HandlerFunc. Global middleware is registered with
// [WithMiddleware]; route middleware is passed to the Router methods:
//
//	r.POST("/login", h.login, limiter.Middleware())
//
// # Sessions
//
// [WithSession] keeps per-browser state server-side: the API token, the
// selected sakes, the expanded duplicate groups and the import wizard.
package admin
