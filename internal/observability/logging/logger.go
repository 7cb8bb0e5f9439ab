package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"trendscribe/internal/handler/http/requestid"
	"trendscribe/internal/observability/tracing"
)

// ParseLevel maps debug, info, warn and error (any case) to a slog level.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger writing to w. format "text" selects the text
// handler, anything else JSON. Source locations are added at debug level.
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// NewLogger creates a stdout logger configured by LOG_LEVEL and LOG_FORMAT.
// Default level: info. Default format: json.
func NewLogger() *slog.Logger {
	return New(os.Stdout, ParseLevel(os.Getenv("LOG_LEVEL")), os.Getenv("LOG_FORMAT"))
}

// WithRequestID returns a new logger that includes the request ID from the context.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		return logger
	}
	return logger.With("request_id", reqID)
}

// WithTraceID adds the trace_id of the active span, if any.
func WithTraceID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	traceID := tracing.TraceID(ctx)
	if traceID == "" {
		return logger
	}
	return logger.With("trace_id", traceID)
}

// ForRequest combines WithRequestID and WithTraceID.
func ForRequest(ctx context.Context, logger *slog.Logger) *slog.Logger {
	return WithTraceID(ctx, WithRequestID(ctx, logger))
}

// FromContext retrieves the logger from the context, or returns the default logger if not found.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

type contextKey string

const loggerContextKey contextKey = "logger"
