package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"trendscribe/internal/handler/http/respond"
	"trendscribe/internal/resilience/retry"
)

// RateLimitError represents a 429 rate limit error from a webhook service.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
}

// ClientError represents a 4xx client error from a webhook service.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string {
	return e.Message
}

// ServerError represents a 5xx server error from a webhook service.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// isRetryableError reports whether a delivery failure is worth another
// attempt. Client errors other than 429 and caller cancellation are final.
func isRetryableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return false
	}

	// server errors, rate limits, network errors
	return true
}

// webhook is the delivery core shared by the Discord and Slack notifiers.
type webhook struct {
	service     string
	url         string
	httpClient  *http.Client
	rateLimiter *RateLimiter
	retry       retry.Config
}

func newWebhook(service, url string, timeout time.Duration, limiter *RateLimiter) *webhook {
	cfg := retry.WebhookConfig()
	cfg.Retryable = isRetryableError
	return &webhook{
		service:     service,
		url:         url,
		httpClient:  &http.Client{Timeout: timeout},
		rateLimiter: limiter,
		retry:       cfg,
	}
}

// deliver waits for a token, then posts payload with retries.
func (w *webhook) deliver(ctx context.Context, postID int64, payload any) error {
	requestID := uuid.New().String()
	logger := slog.Default().With(
		slog.String("request_id", requestID),
		slog.String("service", w.service),
		slog.Int64("post_id", postID))

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	waited, err := w.rateLimiter.Wait(ctx)
	if err != nil {
		logger.Error("rate limiter error", slog.Any("error", err))
		return fmt.Errorf("rate limiter error: %w", err)
	}
	if waited > time.Second {
		logger.Debug("webhook throttled", slog.Duration("waited", waited))
	}

	attempt := 0
	err = retry.WithBackoff(ctx, w.retry, func() error {
		attempt++
		err := w.post(ctx, body)
		var rateLimitErr *RateLimitError
		if errors.As(err, &rateLimitErr) {
			logger.Warn("webhook rate limit hit",
				slog.Duration("retry_after", rateLimitErr.RetryAfter),
				slog.Int("attempt", attempt))
		}
		return err
	})
	if err != nil {
		logger.Error("webhook notification failed",
			slog.Int("attempts", attempt),
			slog.String("error", respond.SanitizeError(err)))
		return fmt.Errorf("%s notification failed: %w", w.service, err)
	}

	logger.Info("webhook notification successful", slog.Int("attempt", attempt))
	return nil
}

// post sends one webhook request and classifies the response.
func (w *webhook) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			Message:    w.service + " rate limit exceeded",
			RetryAfter: extractRetryAfter(resp, respBody),
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s API client error: %s", w.service, string(respBody)),
		}
	case resp.StatusCode >= 500:
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s API server error: %s", w.service, string(respBody)),
		}
	}
	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(respBody))
}

// extractRetryAfter reads retry_after (seconds) from a JSON error body, then
// the Retry-After header. Default 5s.
func extractRetryAfter(resp *http.Response, body []byte) time.Duration {
	var payload struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.RetryAfter > 0 {
		return time.Duration(payload.RetryAfter * float64(time.Second))
	}

	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}

	return 5 * time.Second
}

// truncate shortens text to maxLength bytes, ending with suffix when cut.
// It never splits a UTF-8 sequence.
func truncate(text string, maxLength int, suffix string) string {
	if len(text) <= maxLength {
		return text
	}

	cut := maxLength - len(suffix)
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !isRuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + suffix
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// excerpt returns the first paragraph of body.
func excerpt(body string) string {
	body = strings.TrimSpace(body)
	if head, _, ok := strings.Cut(body, "\n\n"); ok {
		return strings.TrimSpace(head)
	}
	return body
}

// postLink joins base and the post path, or returns "" without a base.
func postLink(base string, id int64) string {
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/blogs/" + strconv.FormatInt(id, 10)
}
