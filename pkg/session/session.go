package session

import (
	"time"
)

// Session is one browser's server-side state. Every value the console
// keeps is a string, so sessions serialize as plain JSON.
type Session struct {
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
	Values    map[string]string `json:"values,omitempty"`
	ID        string            `json:"id"`
	// Token is the cookie value. It changes on sign-in, the ID does not.
	Token     string `json:"token"`
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`

	dirty bool
}

// New returns an unsaved session.
func New(id, token string, expiresAt time.Time) *Session {
	return &Session{
		ID:        id,
		Token:     token,
		Values:    make(map[string]string),
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
		dirty:     true,
	}
}

// Get returns the value under key, or "" when unset.
func (s *Session) Get(key string) string {
	return s.Values[key]
}

// Set stores value under key. An empty value removes the key.
func (s *Session) Set(key, value string) {
	if value == "" {
		s.Delete(key)
		return
	}
	if s.Values == nil {
		s.Values = make(map[string]string)
	}
	if old, ok := s.Values[key]; ok && old == value {
		return
	}
	s.Values[key] = value
	s.dirty = true
}

// Delete removes key.
func (s *Session) Delete(key string) {
	if _, ok := s.Values[key]; ok {
		delete(s.Values, key)
		s.dirty = true
	}
}

// Dirty reports whether the session changed since it was loaded or saved.
func (s *Session) Dirty() bool { return s.dirty }

// MarkDirty forces the next flush to save the session.
func (s *Session) MarkDirty() { s.dirty = true }

// MarkClean is called by the store after a save.
func (s *Session) MarkClean() { s.dirty = false }

// Expired reports whether the session is past its expiry.
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}
