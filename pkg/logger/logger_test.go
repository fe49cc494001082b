package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochoko/admin/pkg/logger"
)

type ridKey struct{}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	return rec
}

func TestNew_AddsContextAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.Config{Output: &buf}, logger.ContextString(ridKey{}, "request_id"), nil)

	ctx := context.WithValue(context.Background(), ridKey{}, "req-1")
	log.With("component", "test").InfoContext(ctx, "hello", slog.Int("n", 3))

	rec := decode(t, &buf)
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "test", rec["component"])
	assert.InDelta(t, 3, rec["n"], 0)
}

func TestNew_SkipsMissingAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.Config{Output: &buf}, logger.ContextString(ridKey{}, "request_id"))
	log.InfoContext(context.Background(), "hello")

	rec := decode(t, &buf)
	assert.NotContains(t, rec, "request_id")
}

func TestNew_Level(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.Config{Output: &buf, Level: slog.LevelWarn})
	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, logger.ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, logger.ParseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel("loud"))
}

func TestFlushSentry_WithoutClient(t *testing.T) {
	t.Parallel()

	require.NoError(t, logger.FlushSentry(0)(context.Background()))
}
