package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// MinSecretLen is the shortest accepted secret.
const MinSecretLen = 32

var (
	ErrNotFound  = errors.New("cookie: not found")
	ErrNoSecret  = errors.New("cookie: no secret configured")
	ErrTampered  = errors.New("cookie: signature mismatch")
	ErrUnsealing = errors.New("cookie: cannot decrypt value")
)

// Manager reads and writes the console's cookies with shared attributes.
// Signing and sealing need a secret of at least MinSecretLen bytes.
type Manager struct {
	signKey  []byte
	sealKey  []byte
	path     string
	domain   string
	sameSite http.SameSite
	secure   bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithSecret derives the signing and encryption keys. Shorter secrets are
// ignored and leave the manager without keys.
func WithSecret(secret string) Option {
	return func(m *Manager) {
		if len(secret) < MinSecretLen {
			return
		}
		sign := sha256.Sum256([]byte("sign:" + secret))
		seal := sha256.Sum256([]byte("seal:" + secret))
		m.signKey, m.sealKey = sign[:], seal[:]
	}
}

// WithSecure marks cookies https-only.
func WithSecure(secure bool) Option {
	return func(m *Manager) { m.secure = secure }
}

// WithDomain scopes cookies to domain.
func WithDomain(domain string) Option {
	return func(m *Manager) { m.domain = domain }
}

// WithSameSite overrides the default Lax policy.
func WithSameSite(mode http.SameSite) Option {
	return func(m *Manager) { m.sameSite = mode }
}

// New returns a Manager with path "/" and SameSite=Lax.
func New(opts ...Option) *Manager {
	m := &Manager{path: "/", sameSite: http.SameSiteLaxMode}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// HasSecret reports whether signing and sealing are available.
func (m *Manager) HasSecret() bool {
	return m.signKey != nil
}

// Get reads a plain cookie.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if errors.Is(err, http.ErrNoCookie) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

// Set writes a plain HttpOnly cookie. maxAge 0 makes it a browser
// session cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, m.build(name, value, maxAge))
}

// Delete expires a cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.build(name, "", -1))
}

// GetSigned reads a cookie written by SetSigned.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	if !m.HasSecret() {
		return "", ErrNoSecret
	}
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	payload, sig, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrTampered
	}
	value, err1 := base64.RawURLEncoding.DecodeString(payload)
	mac, err2 := base64.RawURLEncoding.DecodeString(sig)
	if err1 != nil || err2 != nil || !hmac.Equal(mac, m.mac(value)) {
		return "", ErrTampered
	}
	return string(value), nil
}

// SetSigned writes value in clear with an HMAC so it cannot be altered.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, maxAge int) error {
	if !m.HasSecret() {
		return ErrNoSecret
	}
	enc := base64.RawURLEncoding
	raw := enc.EncodeToString([]byte(value)) + "." + enc.EncodeToString(m.mac([]byte(value)))
	m.Set(w, name, raw, maxAge)
	return nil
}

// GetSealed reads a cookie written by SetSealed.
func (m *Manager) GetSealed(r *http.Request, name string) (string, error) {
	if !m.HasSecret() {
		return "", ErrNoSecret
	}
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return "", ErrUnsealing
	}
	aead, err := m.aead()
	if err != nil {
		return "", err
	}
	n := aead.NonceSize()
	if len(data) < n {
		return "", ErrUnsealing
	}
	plain, err := aead.Open(nil, data[:n], data[n:], []byte(name))
	if err != nil {
		return "", ErrUnsealing
	}
	return string(plain), nil
}

// SetSealed writes value encrypted with AES-GCM. The cookie name is bound
// as additional data, so a sealed value cannot be replayed under another name.
func (m *Manager) SetSealed(w http.ResponseWriter, name, value string, maxAge int) error {
	if !m.HasSecret() {
		return ErrNoSecret
	}
	aead, err := m.aead()
	if err != nil {
		return err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	sealed := aead.Seal(nonce, nonce, []byte(value), []byte(name))
	m.Set(w, name, base64.RawURLEncoding.EncodeToString(sealed), maxAge)
	return nil
}

const flashPrefix = "flash_"

// SetFlash stores v for the next request only.
func (m *Manager) SetFlash(w http.ResponseWriter, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return m.SetSealed(w, flashPrefix+key, string(data), 0)
}

// Flash decodes the flash stored under key into dest and removes it.
// ErrNotFound means there was none.
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, key string, dest any) error {
	raw, err := m.GetSealed(r, flashPrefix+key)
	if err != nil {
		return err
	}
	m.Delete(w, flashPrefix+key)
	return json.Unmarshal([]byte(raw), dest)
}

func (m *Manager) build(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: m.sameSite,
	}
}

func (m *Manager) mac(value []byte) []byte {
	h := hmac.New(sha256.New, m.signKey)
	h.Write(value)
	return h.Sum(nil)
}

func (m *Manager) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(m.sealKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
