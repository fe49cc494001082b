// Package middlewares holds the request pipeline of the admin console.
//
// # Request ID
//
// RequestID tags each request with a UUID, or the ID an upstream proxy
// sent. RequestIDExtractor adds it to every log record:
//
//	app := admin.New(
//	    admin.WithLogger("ochoko-admin", middlewares.RequestIDExtractor(), middlewares.AdminExtractor()),
//	    admin.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	)
//
// # Recover
//
// Recover converts a handler panic into a *PanicError for the error
// handler and reports it to Sentry when Sentry is initialized.
//
// # I18n
//
// I18n picks the request language from the "lang" cookie, then
// Accept-Language, then the bundle's fallback, and stores a translator
// that Context.T and the views use.
//
// # Auth
//
// LoadAuth builds a per-request API client whose token lives in the
// session, checks it, and stores the auth snapshot. RequireAdmin guards
// the admin pages:
//
//	r.Group(func(r admin.Router) {
//	    r.Use(middlewares.RequireAdmin("/login"))
//	    r.GET("/sakes", sakes.list)
//	})
//
// # Rate limiting
//
// RateLimiter keeps a token bucket per client IP and answers 429 with
// Retry-After once the bucket is empty. The console mounts it on the
// login form only.
//
// # Order
//
//	admin.WithMiddleware(
//	    middlewares.RequestID(),
//	    middlewares.Recover(),
//	    middlewares.I18n(bundle),
//	    middlewares.LoadAuth(newClient),
//	)
package middlewares
