package internal

// Handler declares routes on a router.
//
// Example:
//
//	type BreweriesHandler struct {
//	    pages *Pages
//	}
//
//	func (h *BreweriesHandler) Routes(r admin.Router) {
//	    r.GET("/breweries", h.list)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// Returning a non-nil error hands the request to the app's ErrorHandler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc. It may inspect the request, stop the
// chain early or decorate the response.
//
// Example:
//
//	func RequireAdmin(next admin.HandlerFunc) admin.HandlerFunc {
//	    return func(c admin.Context) error {
//	        if !auth.MustFromContext(c).IsAuthenticated() {
//	            return c.Redirect(http.StatusSeeOther, "/login")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler renders errors returned from handlers.
type ErrorHandler func(Context, error) error
