package sakeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultBaseURL is used when no API URL is configured.
const DefaultBaseURL = "https://k5kutx396j.us-east-1.awsapprunner.com/api"

const (
	defaultUserAgent = "ochoko-admin"
	maxErrorBody     = 64 << 10
)

// Client talks to the catalog backend on behalf of one admin.
// It is safe for concurrent use. Requests carry no timeout of their own;
// cancellation comes from the caller's context.
type Client struct {
	httpClient *http.Client
	store      TokenStore
	logger     *slog.Logger
	baseURL    string
	userAgent  string

	mu       sync.Mutex
	token    string
	hydrated bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTokenStore sets where the token is persisted.
func WithTokenStore(store TokenStore) Option {
	return func(c *Client) {
		if store != nil {
			c.store = store
		}
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// New creates a client for the API rooted at baseURL.
// An empty baseURL selects DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		store:      NewMemoryTokenStore(),
		logger:     slog.New(slog.DiscardHandler),
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken replaces the current token and mirrors it to the store.
// An empty token clears the store.
func (c *Client) SetToken(ctx context.Context, token string) error {
	c.mu.Lock()
	c.token = token
	c.hydrated = true
	c.mu.Unlock()

	if token == "" {
		return c.store.Clear(ctx)
	}
	return c.store.Save(ctx, token)
}

// Token returns the current token, loading it from the store on first use.
func (c *Client) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hydrated {
		return c.token, nil
	}
	token, err := c.store.Load(ctx)
	if err != nil {
		return "", err
	}
	c.token = token
	c.hydrated = true
	return token, nil
}

// HasToken reports whether a token is currently held.
func (c *Client) HasToken(ctx context.Context) bool {
	token, err := c.Token(ctx)
	return err == nil && token != ""
}

// request is a single API call.
type request struct {
	body        io.Reader
	method      string
	path        string
	contentType string
}

func jsonRequest(method, path string, payload any) (request, error) {
	r := request{method: method, path: path, contentType: "application/json"}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return r, fmt.Errorf("sakeapi: encode request: %w", err)
		}
		r.body = bytes.NewReader(data)
	}
	return r, nil
}

// do executes r and decodes a 2xx body into out when out is non-nil.
func (c *Client) do(ctx context.Context, r request, out any) error {
	token, err := c.Token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return fmt.Errorf("sakeapi: build request: %w", err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.WarnContext(ctx, "api request failed",
			slog.String("method", r.method),
			slog.String("path", r.path),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, r.method, r.path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.DebugContext(ctx, "api request",
		slog.String("method", r.method),
		slog.String("path", r.path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		c.logger.WarnContext(ctx, "api token rejected",
			slog.String("method", r.method),
			slog.String("path", r.path),
		)
		if err := c.SetToken(ctx, ""); err != nil {
			c.logger.WarnContext(ctx, "failed to clear token", slog.String("error", err.Error()))
		}
		return ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Message: parseErrorMessage(body)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %s %s: %v", ErrDecode, r.method, r.path, err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	r, err := jsonRequest(method, path, payload)
	if err != nil {
		return err
	}
	return c.do(ctx, r, out)
}
