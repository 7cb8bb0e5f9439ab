package news

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"trendscribe/internal/domain/entity"
	"trendscribe/internal/observability/metrics"
	"trendscribe/internal/observability/tracing"
	"trendscribe/pkg/ratelimit"
)

const cacheKeyPrefix = "news-"

// Cache stores filtered article lists per topic. Get must never return an
// expired entry.
type Cache interface {
	Get(key string) ([]entity.Article, bool)
	Set(key string, articles []entity.Article)
}

// Throttle decides whether a caller may fetch.
type Throttle interface {
	Allow(ctx context.Context, key string) (*ratelimit.RateLimitDecision, error)
}

// Service is the aggregation gateway.
type Service struct {
	Provider Provider
	Cache    Cache
	Throttle Throttle

	// ExcludedKeywords drop articles whose title contains any of them,
	// compared case-insensitively.
	ExcludedKeywords []string

	// Timeout bounds one provider call. Zero leaves the caller's context
	// as the only bound.
	Timeout time.Duration
}

// NewService creates the gateway. throttle may be nil to disable throttling.
func NewService(provider Provider, cache Cache, throttle Throttle, excluded []string, timeout time.Duration) *Service {
	lowered := make([]string, 0, len(excluded))
	for _, kw := range excluded {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			lowered = append(lowered, kw)
		}
	}
	return &Service{
		Provider:         provider,
		Cache:            cache,
		Throttle:         throttle,
		ExcludedKeywords: lowered,
		Timeout:          timeout,
	}
}

// SanitizeTopic keeps ASCII letters, digits and spaces, then trims.
func SanitizeTopic(topic string) string {
	var b strings.Builder
	b.Grow(len(topic))
	for _, r := range topic {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// CacheKey is the cache key for a sanitized topic.
func CacheKey(sanitized string) string {
	return cacheKeyPrefix + sanitized
}

// Fetch returns filtered articles for topic on behalf of clientKey.
//
// Order of checks: sanitize, throttle, cache, provider. A cache hit makes no
// provider call; a miss makes exactly one and writes the cache once on
// success. Nothing is retried.
func (s *Service) Fetch(ctx context.Context, clientKey, topic string) ([]entity.Article, error) {
	sanitized := SanitizeTopic(topic)
	if sanitized == "" {
		metrics.RecordNewsFetch(outcome(ErrInvalidTopic))
		return nil, ErrInvalidTopic
	}

	ctx, span := tracing.StartSpan(ctx, "news.Fetch",
		attribute.String("news.topic", sanitized),
		attribute.String("news.provider", s.Provider.Name()))

	articles, cached, err := s.fetch(ctx, clientKey, sanitized)
	span.SetAttributes(attribute.Bool("news.cache_hit", cached))
	tracing.EndSpan(span, err)

	if cached {
		metrics.RecordNewsFetch("hit")
	} else {
		metrics.RecordNewsFetch(outcome(err))
	}
	return articles, err
}

func (s *Service) fetch(ctx context.Context, clientKey, sanitized string) ([]entity.Article, bool, error) {
	if err := s.throttle(ctx, clientKey); err != nil {
		return nil, false, err
	}

	key := CacheKey(sanitized)
	if articles, ok := s.Cache.Get(key); ok {
		slog.DebugContext(ctx, "news cache hit", slog.String("topic", sanitized))
		return slices.Clone(articles), true, nil
	}

	result, err := s.search(ctx, sanitized)
	if err != nil {
		return nil, false, err
	}

	articles := s.filter(result.Articles)
	// Callers own the returned slice; the cache keeps its own copy.
	s.Cache.Set(key, slices.Clone(articles))

	slog.InfoContext(ctx, "news fetched",
		slog.String("topic", sanitized),
		slog.String("provider", s.Provider.Name()),
		slog.Int("received", len(result.Articles)),
		slog.Int("returned", len(articles)))
	return articles, false, nil
}

// throttle fails open when the limiter itself errors.
func (s *Service) throttle(ctx context.Context, clientKey string) error {
	if s.Throttle == nil {
		return nil
	}

	decision, err := s.Throttle.Allow(ctx, clientKey)
	if err != nil {
		slog.WarnContext(ctx, "news throttle check failed, allowing request",
			slog.String("client", clientKey),
			slog.Any("error", err))
		return nil
	}
	if decision.Allowed {
		return nil
	}

	slog.InfoContext(ctx, "news request throttled",
		slog.String("client", clientKey),
		slog.Duration("retry_after", decision.RetryAfter))
	return &RateLimitedError{
		RetryAfter: decision.RetryAfter,
		Limit:      decision.Limit,
		ResetAt:    decision.ResetAt,
	}
}

func (s *Service) search(ctx context.Context, sanitized string) (*SearchResult, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := s.Provider.Search(ctx, sanitized)
	metrics.RecordNewsProviderDuration(s.Provider.Name(), time.Since(start))

	if err != nil {
		slog.ErrorContext(ctx, "news provider request failed",
			slog.String("provider", s.Provider.Name()),
			slog.Any("error", err))
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.Join(ErrTimeout, err)
		}
		return nil, &ProviderError{Message: "news provider request failed", Err: err}
	}

	if result == nil || result.Status != StatusOK {
		msg := "news provider returned an error"
		if result != nil && result.Message != "" {
			msg = result.Message
		}
		slog.WarnContext(ctx, "news provider refused search",
			slog.String("provider", s.Provider.Name()),
			slog.String("message", msg))
		return nil, &ProviderError{Message: msg}
	}
	return result, nil
}

// filter drops untitled articles and titles containing an excluded keyword,
// then maps the rest to the public shape.
func (s *Service) filter(raw []RawArticle) []entity.Article {
	articles := make([]entity.Article, 0, len(raw))
	for _, a := range raw {
		if a.Title == "" || s.excluded(a.Title) {
			continue
		}
		articles = append(articles, entity.Article{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			ImageURL:    a.URLToImage,
			PublishedAt: a.PublishedAt,
			SourceName:  a.SourceName,
		})
	}
	metrics.RecordArticlesFiltered(len(raw) - len(articles))
	return articles
}

func (s *Service) excluded(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range s.ExcludedKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
