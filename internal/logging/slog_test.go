package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONLogger(level slog.Level) (*SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})
	return NewSlogLogger(slog.New(h)), &buf
}

func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newJSONLogger(slog.LevelInfo)
	ctx := context.Background()

	log.Debug(ctx, "token verified", "user_id", 1)
	log.Info(ctx, "user registered", "user_id", 2)
	log.Warn(ctx, "remote validation failed", "error", "timeout")
	log.Error(ctx, "store failure", "error", "db down")

	recs := records(t, buf)
	require.Len(t, recs, 3, "debug is below the configured level")
	assert.Equal(t, "INFO", recs[0]["level"])
	assert.Equal(t, "user registered", recs[0]["msg"])
	assert.EqualValues(t, 2, recs[0]["user_id"])
	assert.Equal(t, "WARN", recs[1]["level"])
	assert.Equal(t, "ERROR", recs[2]["level"])
	assert.NotContains(t, recs[0], RequestIDKey)
}

func TestSlogLogger_RequestIDFromContext(t *testing.T) {
	log, buf := newJSONLogger(slog.LevelDebug)
	ctx := ContextWithRequestID(context.Background(), "req-42")

	log.With("module", "gateway_http").Info(ctx, "http request", "status", 200)

	recs := records(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "req-42", recs[0][RequestIDKey])
	assert.Equal(t, "gateway_http", recs[0]["module"])
	assert.EqualValues(t, 200, recs[0]["status"])
}

func TestContextWithRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, ContextWithRequestID(ctx, ""))
	assert.Empty(t, RequestID(ctx))
	assert.Equal(t, "abc", RequestID(ContextWithRequestID(ctx, "abc")))
}
