package admin_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochoko/admin"
	"github.com/ochoko/admin/pkg/logger"
)

type breweriesHandler struct {
	names []string
}

func (h *breweriesHandler) Routes(r admin.Router) {
	r.GET("/breweries", h.list)
	r.GET("/breweries/{id}", h.show)
	r.Route("/api", func(r admin.Router) {
		r.GET("/count", h.count)
	})
	r.Group(func(r admin.Router) {
		r.Use(header("X-Group", "yes"))
		r.GET("/grouped", h.count)
	})
	r.POST("/ordered", h.count, header("X-First", "1"), header("X-Second", "2"))
	r.GET("/fail", func(c admin.Context) error {
		return admin.ErrBadGateway("API unavailable")
	})
	r.GET("/late-fail", func(c admin.Context) error {
		_ = c.String(http.StatusOK, "partial")
		return errors.New("too late")
	})
}

func (h *breweriesHandler) list(c admin.Context) error {
	return c.String(http.StatusOK, strings.Join(h.names, ","))
}

func (h *breweriesHandler) show(c admin.Context) error {
	id, ok := admin.ParamOK[int64](c, "id")
	if !ok {
		return admin.ErrNotFound("no such brewery")
	}
	return c.JSON(http.StatusOK, map[string]int64{"id": id})
}

func (h *breweriesHandler) count(c admin.Context) error {
	return c.JSON(http.StatusOK, map[string]int{"count": len(h.names)})
}

func header(name, value string) admin.Middleware {
	return func(next admin.HandlerFunc) admin.HandlerFunc {
		return func(c admin.Context) error {
			if prev := c.Response().Header().Get("X-Order"); prev != "" {
				value = prev + "," + value
			}
			c.SetHeader(name, value)
			c.SetHeader("X-Order", value)
			return next(c)
		}
	}
}

func newApp(opts ...admin.Option) *admin.App {
	h := &breweriesHandler{names: []string{"旭酒造", "八海醸造"}}
	return admin.New(append(opts, admin.WithHandlers(h))...)
}

func do(app *admin.App, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestApp_Routes(t *testing.T) {
	t.Parallel()

	app := newApp()

	rec := do(app, http.MethodGet, "/breweries")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "旭酒造,八海醸造", rec.Body.String())

	rec = do(app, http.MethodGet, "/breweries/12")
	var body map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(12), body["id"])

	rec = do(app, http.MethodGet, "/api/count")
	assert.JSONEq(t, `{"count":2}`, rec.Body.String())

	rec = do(app, http.MethodGet, "/grouped")
	assert.Equal(t, "yes", rec.Header().Get("X-Group"))

	rec = do(app, http.MethodGet, "/breweries")
	assert.Empty(t, rec.Header().Get("X-Group"), "group middleware stays in its group")
}

func TestApp_RouteMiddlewareOrder(t *testing.T) {
	t.Parallel()

	rec := do(newApp(), http.MethodPost, "/ordered")
	assert.Equal(t, "1,2", rec.Header().Get("X-Order"))
}

func TestApp_GlobalMiddleware(t *testing.T) {
	t.Parallel()

	app := newApp(admin.WithMiddleware(header("X-App", "ochoko")))
	rec := do(app, http.MethodGet, "/breweries")
	assert.Equal(t, "ochoko", rec.Header().Get("X-App"))
}

func TestApp_ErrorHandling(t *testing.T) {
	t.Parallel()

	t.Run("default handler", func(t *testing.T) {
		t.Parallel()
		rec := do(newApp(), http.MethodGet, "/fail")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("custom handler", func(t *testing.T) {
		t.Parallel()
		app := newApp(admin.WithErrorHandler(func(c admin.Context, err error) error {
			if httpErr := admin.AsHTTPError(err); httpErr != nil {
				return c.String(httpErr.Code, httpErr.Message)
			}
			return c.String(http.StatusInternalServerError, "unexpected")
		}))

		rec := do(app, http.MethodGet, "/fail")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "API unavailable", rec.Body.String())

		rec = do(app, http.MethodGet, "/breweries/abc")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("error after write is only logged", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		app := newApp(
			admin.WithCustomLogger(logger.New(logger.Config{Output: &buf})),
			admin.WithErrorHandler(func(c admin.Context, err error) error {
				return c.String(http.StatusInternalServerError, "should not appear")
			}),
		)
		rec := do(app, http.MethodGet, "/late-fail")
		assert.Equal(t, "partial", rec.Body.String())
		assert.Contains(t, buf.String(), "too late")
	})
}

func TestApp_NotFoundHandler(t *testing.T) {
	t.Parallel()

	app := newApp(
		admin.WithNotFoundHandler(func(c admin.Context) error {
			return c.String(http.StatusNotFound, "ページが見つかりません")
		}),
		admin.WithMethodNotAllowedHandler(func(c admin.Context) error {
			return c.String(http.StatusMethodNotAllowed, "method")
		}),
	)

	rec := do(app, http.MethodGet, "/nowhere")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "ページが見つかりません", rec.Body.String())

	rec = do(app, http.MethodDelete, "/breweries")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestApp_HealthChecks(t *testing.T) {
	t.Parallel()

	healthy := true
	app := newApp(admin.WithHealthChecks(
		admin.WithLivenessPath("/livez"),
		admin.WithReadinessCheck("sake_api", func(context.Context) error {
			if !healthy {
				return errors.New("unreachable")
			}
			return nil
		}),
	))

	assert.Equal(t, http.StatusOK, do(app, http.MethodGet, "/livez").Code)
	assert.Equal(t, http.StatusOK, do(app, http.MethodGet, "/health/ready").Code)

	healthy = false
	assert.Equal(t, http.StatusServiceUnavailable, do(app, http.MethodGet, "/health/ready").Code)
}

func TestApp_Logging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.Config{Output: &buf, Level: slog.LevelDebug})

	app := admin.New(
		admin.WithCustomLogger(log),
		admin.WithHandlers(routesFunc(func(r admin.Router) {
			r.GET("/", func(c admin.Context) error {
				c.LogInfo("listing sakes", "limit", 100)
				return c.NoContent(http.StatusNoContent)
			})
		})),
	)
	do(app, http.MethodGet, "/")

	assert.Contains(t, buf.String(), `"msg":"listing sakes"`)
	assert.Contains(t, buf.String(), `"limit":100`)
}

type routesFunc func(r admin.Router)

func (f routesFunc) Routes(r admin.Router) { f(r) }

func TestApp_Run(t *testing.T) {
	t.Parallel()

	t.Run("failing startup hook aborts", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("redis unreachable")
		err := newApp().Run("127.0.0.1:0", admin.StartupHook(func(context.Context) error { return boom }))
		require.ErrorIs(t, err, boom)
	})

	t.Run("context cancel shuts down and runs hooks", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		hooked := make(chan struct{})

		done := make(chan error, 1)
		go func() {
			done <- newApp().Run("127.0.0.1:0",
				admin.WithContext(ctx),
				admin.ShutdownTimeout(time.Second),
				admin.ShutdownHook(func(context.Context) error {
					close(hooked)
					return nil
				}),
			)
		}()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
		<-hooked
	})
}
