// Package handlers serves the console's pages.
//
// Every page handler declares its routes behind middlewares.RequireAdmin and
// talks to the backend through the per-request client installed by
// middlewares.LoadAuth. Handlers return errors for anything they do not
// render inline; ErrorHandler turns those into pages or htmx fragments.
package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/ochoko/admin"
	"github.com/ochoko/admin/middlewares"
	"github.com/ochoko/admin/pkg/sakeapi"
	"github.com/ochoko/admin/views"
)

// LoginPath is where anonymous visitors are sent.
const LoginPath = "/login"

// HomePath is the landing page after login.
const HomePath = "/sakes"

// Session keys of per-browser UI state.
const (
	keySelection = "sakes.selection"
	keyExpansion = "duplicates.expanded"
	keyImport    = "import.wizard"
)

const flashKey = "notice"

// apiClient returns the request's backend client.
func apiClient(c admin.Context) (*sakeapi.Client, error) {
	client := middlewares.APIClient(c)
	if client == nil {
		return nil, admin.ErrInternal("api client not configured")
	}
	return client, nil
}

func sessionValue(c admin.Context, key string) string {
	v, err := c.SessionValue(key)
	if err != nil {
		c.LogWarn("failed to read session value", slog.String("key", key), slog.Any("error", err))
	}
	return v
}

func saveSessionValue(c admin.Context, key, value string) {
	if err := c.SetSessionValue(key, value); err != nil {
		c.LogWarn("failed to store session value", slog.String("key", key), slog.Any("error", err))
	}
}

// setNotice queues a notice for the next full page load.
func setNotice(c admin.Context, kind, text string) {
	if err := c.SetFlash(flashKey, views.Notice{Kind: kind, Text: text}); err != nil {
		c.LogWarn("failed to set flash", slog.Any("error", err))
	}
}

// takeNotice reads and clears the pending notice. Partial responses have
// nowhere to show it and leave it for the next page load.
func takeNotice(c admin.Context) views.Notice {
	if c.IsHTMX() {
		return views.Notice{}
	}
	var n views.Notice
	if err := c.Flash(flashKey, &n); err != nil {
		return views.Notice{}
	}
	return n
}

// inlineStatus is the status of a response that re-renders a form or
// panel with an error. htmx only swaps 2xx responses.
func inlineStatus(c admin.Context, code int) int {
	if c.IsHTMX() {
		return http.StatusOK
	}
	return code
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return HomePath
	}
	if next == LoginPath || strings.HasPrefix(next, LoginPath+"?") {
		return HomePath
	}
	return next
}

// requireAdmin is the page guard shared by every admin route group.
func requireAdmin(r admin.Router) {
	r.Use(middlewares.RequireAdmin(LoginPath))
}
