package session

import "errors"

var (
	// ErrNotConfigured is returned when a handler touches the session but
	// the app was built without one.
	ErrNotConfigured = errors.New("session: not configured")
	ErrNotFound      = errors.New("session: not found")
	ErrExpired       = errors.New("session: expired")
)
