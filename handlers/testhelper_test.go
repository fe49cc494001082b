package handlers_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"

	"github.com/ochoko/admin"
	"github.com/ochoko/admin/handlers"
	"github.com/ochoko/admin/locales"
	"github.com/ochoko/admin/middlewares"
	"github.com/ochoko/admin/pkg/cache"
	"github.com/ochoko/admin/pkg/i18n"
	"github.com/ochoko/admin/pkg/sakeapi"
	"github.com/ochoko/admin/pkg/session"
	"github.com/ochoko/admin/pkg/staging"
)

const (
	apiURL     = "https://api.test/api"
	testSecret = "0123456789abcdef0123456789abcdef"
)

var adminUser = sakeapi.User{ID: 1, Username: "toji", DisplayName: func() *string { s := "杜氏"; return &s }(), IsStaff: true}

// browser drives the console like a single browser tab: cookies set by a
// response are sent with the next request.
type browser struct {
	t      *testing.T
	app    *admin.App
	api    *httpmock.MockTransport
	files  *cache.Memory[[]byte]
	staged *recordingStager
	jar    map[string]*http.Cookie
}

// recordingStager remembers the keys it handed out.
type recordingStager struct {
	*staging.CacheStager
	mu   sync.Mutex
	keys []string
}

func (s *recordingStager) Stage(ctx context.Context, data []byte) (string, error) {
	key, err := s.CacheStager.Stage(ctx, data)
	if err == nil {
		s.mu.Lock()
		s.keys = append(s.keys, key)
		s.mu.Unlock()
	}
	return key, err
}

func (s *recordingStager) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.keys) == 0 {
		return ""
	}
	return s.keys[len(s.keys)-1]
}

type envOption func(*envConfig)

type envConfig struct {
	limiter *middlewares.RateLimiter
}

func withLoginLimit(l *middlewares.RateLimiter) envOption {
	return func(cfg *envConfig) { cfg.limiter = l }
}

func newBrowser(t *testing.T, opts ...envOption) *browser {
	t.Helper()
	cfg := &envConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	bundle, err := i18n.Load(locales.FS, "ja")
	require.NoError(t, err)

	store := session.NewMemoryStore()
	files := cache.NewMemory[[]byte](cache.WithSweepInterval(0))
	pages := cache.NewMemory[[]byte](cache.WithSweepInterval(0))
	t.Cleanup(func() {
		_ = store.Close()
		_ = files.Close()
		_ = pages.Close()
	})
	staged := &recordingStager{CacheStager: staging.NewCacheStager(files, time.Minute)}

	transport := httpmock.NewMockTransport()
	newClient := func(ts sakeapi.TokenStore) *sakeapi.Client {
		return sakeapi.New(apiURL,
			sakeapi.WithHTTPClient(&http.Client{Transport: transport}),
			sakeapi.WithTokenStore(ts),
		)
	}

	last := handlers.NewLastGood(pages, time.Minute)
	app := admin.New(
		admin.WithCookieOptions(admin.WithCookieSecret(testSecret)),
		admin.WithSession(store),
		admin.WithTranslations(bundle),
		admin.WithMiddleware(
			middlewares.Recover(),
			middlewares.I18n(bundle),
			middlewares.LoadAuth(newClient),
		),
		admin.WithErrorHandler(handlers.ErrorHandler),
		admin.WithNotFoundHandler(handlers.NotFound),
		admin.WithHandlers(
			handlers.NewAuthHandler(cfg.limiter),
			handlers.NewLanguageHandler(bundle),
			handlers.NewSakesHandler(last, 50),
			handlers.NewBreweriesHandler(last),
			handlers.NewDuplicatesHandler(last),
			handlers.NewImportHandler(staged, last, 1<<10),
		),
	)

	return &browser{t: t, app: app, api: transport, files: files, staged: staged, jar: map[string]*http.Cookie{}}
}

type reqOption func(*http.Request)

// htmxReq marks the request as issued by htmx.
func htmxReq(r *http.Request) { r.Header.Set("HX-Request", "true") }

func (b *browser) send(req *http.Request, opts ...reqOption) *httptest.ResponseRecorder {
	b.t.Helper()
	req.Header.Set("Accept-Language", "en")
	for _, c := range b.jar {
		req.AddCookie(c)
	}
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	b.app.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.jar, c.Name)
			continue
		}
		b.jar[c.Name] = c
	}
	return rec
}

func (b *browser) get(target string, opts ...reqOption) *httptest.ResponseRecorder {
	b.t.Helper()
	return b.send(httptest.NewRequest(http.MethodGet, target, nil), opts...)
}

func (b *browser) post(target string, form url.Values, opts ...reqOption) *httptest.ResponseRecorder {
	b.t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.send(req, opts...)
}

// upload posts a multipart form with one file field.
func (b *browser) upload(target, filename string, content []byte, fields url.Values, opts ...reqOption) *httptest.ResponseRecorder {
	b.t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(b.t, w.WriteField(k, v))
		}
	}
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		require.NoError(b.t, err)
		_, err = io.Copy(fw, bytes.NewReader(content))
		require.NoError(b.t, err)
	}
	require.NoError(b.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return b.send(req, opts...)
}

// signIn logs in through the login form as an admin.
func (b *browser) signIn() {
	b.t.Helper()
	b.api.RegisterResponder(http.MethodPost, apiURL+"/login",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, sakeapi.LoginResponse{AccessToken: "tok-admin", TokenType: "bearer"}))
	b.api.RegisterResponder(http.MethodGet, apiURL+"/me/",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, adminUser))

	rec := b.post("/login", url.Values{"email": {"toji@example.com"}, "password": {"pw"}})
	require.Equal(b.t, http.StatusSeeOther, rec.Code, rec.Body.String())
}

func (b *browser) respond(method, path string, status int, body any) {
	b.api.RegisterResponder(method, apiURL+path, httpmock.NewJsonResponderOrPanic(status, body))
}

func (b *browser) fail(method, path string, status int, detail string) {
	b.respond(method, path, status, map[string]string{"detail": detail})
}

func (b *browser) calls(method, path string) int {
	return b.api.GetCallCountInfo()[method+" "+apiURL+path]
}
