package htmx

import (
	"net/http"
)

// Request headers sent by htmx.
const (
	HeaderRequest = "HX-Request"
	HeaderTarget  = "HX-Target"
	HeaderBoosted = "HX-Boosted"
)

// Response headers understood by htmx.
const (
	HeaderRedirect = "HX-Redirect"
	HeaderRefresh  = "HX-Refresh"
	HeaderRetarget = "HX-Retarget"
	HeaderReswap   = "HX-Reswap"
	HeaderPushURL  = "HX-Push-Url"
	HeaderTrigger  = "HX-Trigger"
)

// IsHTMX reports whether r was issued by htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get(HeaderRequest) == "true"
}

// IsBoosted reports whether r comes from an hx-boost link or form.
// Boosted requests expect a full page.
func IsBoosted(r *http.Request) bool {
	return r.Header.Get(HeaderBoosted) == "true"
}

// Target returns the id of the element htmx will swap.
func Target(r *http.Request) string {
	return r.Header.Get(HeaderTarget)
}

// Redirect sends the browser to url. htmx requests get HX-Redirect with a
// 200 so the client performs a full navigation; other requests get a
// regular redirect with status.
func Redirect(w http.ResponseWriter, r *http.Request, url string, status int) {
	if IsHTMX(r) {
		w.Header().Set(HeaderRedirect, url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, status)
}
