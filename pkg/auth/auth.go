// Package auth tracks who is signed in to the admin console.
//
// A [Snapshot] is the session-wide answer to "who is the current admin":
// still loading, anonymous, or an authenticated admin user. A [Provider]
// derives it from the API client's token, and performs login and logout.
// Only staff or superuser accounts ever reach the authenticated state.
//
// The snapshot travels in the request context:
//
//	snap := auth.MustFromContext(r.Context())
//	if snap.IsAuthenticated() {
//	    fmt.Println(snap.User.Label())
//	}
package auth

import (
	"context"
	"errors"

	"github.com/ochoko/admin/pkg/sakeapi"
)

// ErrAdminRequired is returned by Login for accounts without staff or
// superuser privileges.
var ErrAdminRequired = errors.New("auth: admin privileges required")

// State is the authentication state of a session.
type State int

const (
	// StateUnknown means the stored token has not been checked yet.
	StateUnknown State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is the observable auth state. User is non-nil only when
// State is StateAuthenticated.
type Snapshot struct {
	User  *sakeapi.User
	State State
}

// Unknown is the initial snapshot, before the token has been checked.
func Unknown() Snapshot {
	return Snapshot{State: StateUnknown}
}

// Anonymous is the snapshot of a session without a usable admin token.
func Anonymous() Snapshot {
	return Snapshot{State: StateAnonymous}
}

// Authenticated is the snapshot of a signed-in admin.
func Authenticated(user sakeapi.User) Snapshot {
	return Snapshot{State: StateAuthenticated, User: &user}
}

// Loading reports whether the check is still pending.
func (s Snapshot) Loading() bool {
	return s.State == StateUnknown
}

// IsAuthenticated reports whether an admin is signed in.
func (s Snapshot) IsAuthenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}

// Username returns the signed-in admin's username, or "".
func (s Snapshot) Username() string {
	if !s.IsAuthenticated() {
		return ""
	}
	return s.User.Username
}

// Settle resolves the pending state from a current-user lookup.
// A failed lookup or a non-admin user both end anonymous.
func Settle(user *sakeapi.User, err error) Snapshot {
	if err != nil || user == nil || !user.IsAdmin() {
		return Anonymous()
	}
	return Authenticated(*user)
}

// ContextKey is the context key of the Snapshot. Frameworks that store
// values by key, rather than by wrapping a context, set it directly.
type ContextKey struct{}

// WithSnapshot returns a context carrying snap.
func WithSnapshot(ctx context.Context, snap Snapshot) context.Context {
	return context.WithValue(ctx, ContextKey{}, snap)
}

// FromContext returns the snapshot stored by the auth middleware.
func FromContext(ctx context.Context) (Snapshot, bool) {
	snap, ok := ctx.Value(ContextKey{}).(Snapshot)
	return snap, ok
}

// MustFromContext is like FromContext but panics when no snapshot is
// present. Reading auth state outside the auth middleware is a wiring bug.
func MustFromContext(ctx context.Context) Snapshot {
	snap, ok := FromContext(ctx)
	if !ok {
		panic("auth: snapshot read outside of the auth middleware")
	}
	return snap
}
