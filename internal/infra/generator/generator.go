// Package generator provides the text generation backends used by the
// orchestrator: OpenAI-compatible chat APIs (DeepSeek, OpenAI, Gemini),
// Anthropic Claude and a canned no-op backend.
//
// Every backend sends the same trend analysis prompt and passes its call
// through a circuit breaker. Calls are never retried.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"trendscribe/internal/handler/http/respond"
	"trendscribe/internal/resilience/circuitbreaker"
	"trendscribe/internal/utils/text"
)

// completeFunc performs one provider call for prompt.
type completeFunc func(ctx context.Context, prompt string) (string, error)

// caller holds what every remote backend shares.
type caller struct {
	name           string
	model          string
	circuitBreaker *circuitbreaker.CircuitBreaker
	metrics        MetricsRecorder
	now            func() time.Time
}

func newCaller(name, model string, metrics MetricsRecorder) caller {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return caller{
		name:           name,
		model:          model,
		circuitBreaker: circuitbreaker.New(circuitbreaker.GenerationConfig(name)),
		metrics:        metrics,
		now:            time.Now,
	}
}

// Name implements generate.Backend.
func (c *caller) Name() string { return c.name }

// generate builds the prompt and runs complete through the breaker.
func (c *caller) generate(ctx context.Context, complete completeFunc) (string, error) {
	prompt := TrendAnalysisPrompt(c.now())

	slog.InfoContext(ctx, "starting generation",
		slog.String("backend", c.name),
		slog.String("model", c.model))

	start := time.Now()
	out, err := circuitbreaker.Do(c.circuitBreaker, func() (string, error) {
		return complete(ctx, prompt)
	})
	duration := time.Since(start)

	if err != nil {
		status := "error"
		if circuitbreaker.IsOpenError(err) {
			status = "circuit_open"
			err = fmt.Errorf("%s api unavailable: circuit breaker open: %w", c.name, err)
		}
		c.metrics.RecordRequest(c.name, status, duration)
		slog.ErrorContext(ctx, "generation failed",
			slog.String("backend", c.name),
			slog.Duration("duration", duration),
			slog.String("error", respond.SanitizeError(err)))
		return "", err
	}

	length := text.CountRunes(out)
	c.metrics.RecordRequest(c.name, "success", duration)
	c.metrics.RecordOutputLength(c.name, length)
	slog.InfoContext(ctx, "generation completed",
		slog.String("backend", c.name),
		slog.Int("output_length", length),
		slog.Duration("duration", duration))

	return out, nil
}

// requireText rejects blank provider output.
func requireText(backend, out string) (string, error) {
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("%s api returned empty content", backend)
	}
	return out, nil
}
