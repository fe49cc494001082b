package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochoko/admin/internal/config"
	"github.com/ochoko/admin/pkg/logger"
	"github.com/ochoko/admin/pkg/sakeapi"
)

const apiURL = "https://api.test/api"

type harness struct {
	t      *testing.T
	c      *cli
	out    *bytes.Buffer
	api    *httpmock.MockTransport
	tokens string
}

func newHarness(t *testing.T, input string) *harness {
	t.Helper()
	out := &bytes.Buffer{}
	c := newCLI(strings.NewReader(input), out, &bytes.Buffer{})
	api := httpmock.NewMockTransport()
	c.httpClient = &http.Client{Transport: api}
	return &harness{t: t, c: c, out: out, api: api, tokens: filepath.Join(t.TempDir(), "credentials.json")}
}

func (h *harness) run(args ...string) error {
	h.t.Helper()
	return h.c.execute(h.t.Context(), append([]string{"--api-url", apiURL, "--token-file", h.tokens}, args...))
}

func (h *harness) signIn() {
	h.t.Helper()
	require.NoError(h.t, sakeapi.NewFileTokenStore(h.tokens).Save(h.t.Context(), "tok-cli"))
}

func (h *harness) respond(method, path string, status int, body any) {
	h.api.RegisterResponder(method, apiURL+path, httpmock.NewJsonResponderOrPanic(status, body))
}

func (h *harness) calls(method, path string) int {
	return h.api.GetCallCountInfo()[method+" "+apiURL+path]
}

func (h *harness) storedToken() string {
	tok, err := sakeapi.NewFileTokenStore(h.tokens).Load(h.t.Context())
	require.NoError(h.t, err)
	return tok
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("admin keeps the token", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, "secret\n")
		h.api.RegisterResponder(http.MethodPost, apiURL+"/login",
			func(req *http.Request) (*http.Response, error) {
				var body sakeapi.LoginRequest
				require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
				assert.Equal(t, "toji@example.com", body.Email)
				assert.Equal(t, "secret", body.Password)
				return httpmock.NewJsonResponse(http.StatusOK, sakeapi.LoginResponse{AccessToken: "tok-new", TokenType: "bearer"})
			})
		h.respond(http.MethodGet, "/me/", http.StatusOK, sakeapi.User{Username: "toji", IsStaff: true})

		require.NoError(t, h.run("login", "--email", "toji@example.com"))
		assert.Contains(t, h.out.String(), "Logged in as toji")
		assert.Equal(t, "tok-new", h.storedToken())
	})

	t.Run("non-admin is refused", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, "toji@example.com\nsecret\n")
		h.respond(http.MethodPost, "/login", http.StatusOK, sakeapi.LoginResponse{AccessToken: "tok-user"})
		h.respond(http.MethodGet, "/me/", http.StatusOK, sakeapi.User{Username: "guest"})

		err := h.run("login")
		require.Error(t, err)
		assert.Equal(t, "admin privileges are required", err.Error())
		assert.Empty(t, h.storedToken())
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, "nope\n")
		h.respond(http.MethodPost, "/login", http.StatusBadRequest, map[string]string{"detail": "Incorrect email or password"})

		err := h.run("login", "--email", "toji@example.com")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Incorrect email or password")
	})
}

func TestLogoutAndWhoami(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "")
	h.signIn()
	h.respond(http.MethodGet, "/me/", http.StatusOK, sakeapi.User{Username: "toji", Email: "toji@example.com", IsSuperuser: true})

	require.NoError(t, h.run("whoami"))
	assert.Contains(t, h.out.String(), "toji <toji@example.com> (superuser)")

	require.NoError(t, h.run("logout"))
	assert.Empty(t, h.storedToken())
	assert.Zero(t, h.calls(http.MethodPost, "/logout"))

	assert.ErrorIs(t, h.run("whoami"), errSessionEnded)
	assert.Equal(t, 1, h.calls(http.MethodGet, "/me/"))
}

func TestSakes(t *testing.T) {
	t.Parallel()

	t.Run("list", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, "")
		h.signIn()
		rating := 4.5
		h.api.RegisterResponder(http.MethodGet, apiURL+"/sakes/?limit=5",
			httpmock.NewJsonResponderOrPanic(http.StatusOK, []sakeapi.Sake{
				{ID: 1, Name: "獺祭", BreweryName: "旭酒造", BreweryPrefecture: "山口県", AverageRating: &rating, ReviewCount: 2},
				{ID: 2, Name: "十四代", BreweryName: "高木酒造", BreweryPrefecture: "山形県"},
			}))

		require.NoError(t, h.run("sakes", "list", "--limit", "5", "--search", "旭"))
		out := h.out.String()
		assert.Contains(t, out, "獺祭")
		assert.Contains(t, out, "4.5 (2)")
		assert.NotContains(t, out, "十四代")
		assert.Contains(t, out, "1 sakes")
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, "")
		h.signIn()
		h.respond(http.MethodGet, "/sakes/?limit=100", http.StatusUnauthorized, map[string]string{"detail": "expired"})

		assert.ErrorIs(t, h.run("sakes", "list"), errSessionEnded)
		assert.Empty(t, h.storedToken())
	})

	t.Run("delete asks first", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, "n\n")
		h.signIn()
		h.respond(http.MethodPost, "/admin/sakes/bulk-delete", http.StatusOK, sakeapi.BulkDeleteResponse{DeletedCount: 2})

		require.NoError(t, h.run("sakes", "delete", "3", "1"))
		assert.Contains(t, h.out.String(), "Aborted")
		assert.Zero(t, h.calls(http.MethodPost, "/admin/sakes/bulk-delete"))
	})

	t.Run("delete confirmed", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, "yes\n")
		h.signIn()
		h.api.RegisterResponder(http.MethodPost, apiURL+"/admin/sakes/bulk-delete",
			func(req *http.Request) (*http.Response, error) {
				var body sakeapi.BulkDeleteRequest
				require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
				assert.Equal(t, []int64{3, 1}, body.SakeIDs)
				return httpmock.NewJsonResponse(http.StatusOK, sakeapi.BulkDeleteResponse{DeletedCount: 2})
			})

		require.NoError(t, h.run("sakes", "delete", "3", "1", "3"))
		assert.Contains(t, h.out.String(), "Deleted 2 sakes")
	})

	t.Run("invalid id", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, "")
		h.signIn()
		err := h.run("sakes", "delete", "--yes", "abc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `invalid sake id "abc"`)
	})
}

func TestDuplicates(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "")
	h.signIn()
	h.respond(http.MethodGet, "/admin/sakes/duplicates", http.StatusOK, []sakeapi.DuplicateGroup{
		{Name: "雪の茅舎", Count: 2, Sakes: []sakeapi.DuplicateSake{{ID: 4, BreweryName: "齋彌酒造店", BreweryPrefecture: "秋田県"}}},
		{Name: "菊正宗", Count: 3, Sakes: []sakeapi.DuplicateSake{{ID: 7, BreweryName: "菊正宗酒造", BreweryPrefecture: "兵庫県"}}},
	})

	require.NoError(t, h.run("duplicates"))
	out := h.out.String()
	assert.Contains(t, out, "Found 2 names")
	assert.Less(t, strings.Index(out, "菊正宗 (3)"), strings.Index(out, "雪の茅舎 (2)"))

	h.out.Reset()
	require.NoError(t, h.run("duplicates", "--search", "秋田"))
	assert.Contains(t, h.out.String(), "Found 1 names")
	assert.Contains(t, h.out.String(), "#4")
}

func TestImport(t *testing.T) {
	t.Parallel()

	writeCSV := func(t *testing.T) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "sake.csv")
		require.NoError(t, os.WriteFile(path, []byte("brewery,brand\n旭酒造,獺祭\n"), 0o600))
		return path
	}
	preview := sakeapi.ImportPreview{Success: true, TotalRows: 1, Stats: sakeapi.PreviewStats{SakesToCreate: 1}}

	t.Run("preview", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, "")
		h.signIn()
		h.respond(http.MethodPost, "/admin/import/sakes/preview", http.StatusOK, preview)

		require.NoError(t, h.run("import", "preview", writeCSV(t), "--encoding", "cp932"))
		assert.Contains(t, h.out.String(), "Rows: 1")
		assert.Zero(t, h.calls(http.MethodPost, "/admin/import/sakes"))
	})

	t.Run("unknown encoding", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, "")
		h.signIn()
		assert.Error(t, h.run("import", "preview", writeCSV(t), "--encoding", "latin1"))
	})

	t.Run("commit declined", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, "n\n")
		h.signIn()
		h.respond(http.MethodPost, "/admin/import/sakes/preview", http.StatusOK, preview)

		require.NoError(t, h.run("import", "commit", writeCSV(t)))
		assert.Contains(t, h.out.String(), "Aborted")
		assert.Zero(t, h.calls(http.MethodPost, "/admin/import/sakes"))
	})

	t.Run("commit", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, "")
		h.signIn()
		h.respond(http.MethodPost, "/admin/import/sakes/preview", http.StatusOK, preview)
		errs := make([]string, 12)
		for i := range errs {
			errs[i] = "skipped row"
		}
		h.respond(http.MethodPost, "/admin/import/sakes", http.StatusOK, sakeapi.ImportResult{
			Success: true,
			Stats:   sakeapi.ImportStats{SakesCreated: 1, Errors: errs},
		})

		require.NoError(t, h.run("import", "commit", "--yes", writeCSV(t)))
		out := h.out.String()
		assert.Contains(t, out, "Import finished")
		assert.Contains(t, out, "...and 2 more")
	})

	t.Run("failed preview stops the commit", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, "")
		h.signIn()
		h.respond(http.MethodPost, "/admin/import/sakes/preview", http.StatusOK, sakeapi.ImportPreview{Errors: []string{"missing brand"}})

		require.Error(t, h.run("import", "commit", "--yes", writeCSV(t)))
		assert.Contains(t, h.out.String(), "missing brand")
		assert.Zero(t, h.calls(http.MethodPost, "/admin/import/sakes"))
	})
}

func TestNewServer(t *testing.T) {
	t.Parallel()
	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)
	cfg.CookieSecret = "0123456789abcdef0123456789abcdef"
	require.NoError(t, cfg.Validate())

	srv, err := newServer(t.Context(), cfg, logger.NewNope(), &http.Client{Transport: httpmock.NewMockTransport()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeAll(t.Context(), srv.closers) })

	for path, code := range map[string]int{
		"/login":          http.StatusOK,
		"/static/app.css": http.StatusOK,
		"/health/live":    http.StatusOK,
		"/sakes":          http.StatusSeeOther,
		"/nowhere":        http.StatusNotFound,
	} {
		rec := httptest.NewRecorder()
		srv.app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, code, rec.Code, path)
	}
}
