package health

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// LivenessHandler answers 200 as long as the process serves requests.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, r, http.StatusOK, &Response{Status: StatusHealthy})
	}
}

// ReadinessHandler runs checks on every request and answers 503 when any
// of them fails.
func ReadinessHandler(checks Checks, opts ...Option) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := Run(r.Context(), checks, opts...)
		code := http.StatusOK
		if resp.Status != StatusHealthy {
			code = http.StatusServiceUnavailable
		}
		respond(w, r, code, resp)
	}
}

// respond writes JSON when asked for it, otherwise one line for the
// overall status followed by one line per check.
func respond(w http.ResponseWriter, r *http.Request, code int, resp *Response) {
	if r.URL.Query().Get("format") == "json" || strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	var b strings.Builder
	if resp.Status == StatusHealthy {
		b.WriteString("OK")
	} else {
		b.WriteString("Service Unavailable")
	}
	names := make([]string, 0, len(resp.Checks))
	for name := range resp.Checks {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		c := resp.Checks[name]
		fmt.Fprintf(&b, "\n%s: %s", name, c.Status)
		if c.Error != "" {
			fmt.Fprintf(&b, " (%s)", c.Error)
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(b.String()))
}
