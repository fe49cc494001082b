// Package htmx holds the request and response helpers for the htmx
// partials the console renders: row toggles, group expansion, wizard
// steps and inline errors.
//
// A handler renders the full page for normal navigation and only the
// changed fragment for htmx requests, optionally updating other parts of
// the page out of band:
//
//	return c.Render(http.StatusOK, views.SakeRow(row),
//	    htmx.WithOOB(views.SelectionCount(n)),
//	)
package htmx
