package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"trendscribe/internal/handler/http/requestid"
	"trendscribe/internal/observability/tracing"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "output should be valid JSON")
	return entry
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo, "")

	logger.Debug("hidden")
	assert.Empty(t, buf.String(), "debug is filtered at info level")

	logger.Info("generation completed", slog.Int64("post_id", 7))
	entry := decode(t, &buf)
	assert.Equal(t, "generation completed", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, float64(7), entry["post_id"])
	assert.NotContains(t, entry, "source")
}

func TestNew_TextWithSourceAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelDebug, "TEXT")

	logger.Debug("tick")
	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "msg=tick")
	assert.Contains(t, out, "source=")
}

func TestNewLogger_FromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "text")

	logger := NewLogger()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, slog.LevelInfo, "json")

	ctx := requestid.WithRequestID(context.Background(), "req-123")
	WithRequestID(ctx, base).Info("test message")
	assert.Equal(t, "req-123", decode(t, &buf)["request_id"])

	buf.Reset()
	assert.Same(t, base, WithRequestID(context.Background(), base))
}

func TestForRequest_AddsTraceID(t *testing.T) {
	shutdown := tracing.Setup(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	ctx, span := tracing.StartSpan(context.Background(), "test")
	defer span.End()
	ctx = requestid.WithRequestID(ctx, "req-9")

	var buf bytes.Buffer
	ForRequest(ctx, New(&buf, slog.LevelInfo, "json")).Info("handled")

	entry := decode(t, &buf)
	assert.Equal(t, "req-9", entry["request_id"])
	assert.Equal(t, tracing.TraceID(ctx), entry["trace_id"])
	assert.Len(t, entry["trace_id"], 32)
}

func TestWithTraceID_NoSpan(t *testing.T) {
	base := slog.Default()
	assert.Same(t, base, WithTraceID(context.Background(), base))
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))

	logger := New(&bytes.Buffer{}, slog.LevelInfo, "json")
	assert.Same(t, logger, FromContext(WithLogger(context.Background(), logger)))

	bogus := context.WithValue(context.Background(), loggerContextKey, "not a logger")
	assert.Equal(t, slog.Default(), FromContext(bogus))
}
