package news_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendscribe/internal/domain/entity"
	"trendscribe/internal/infra/cache"
	"trendscribe/internal/usecase/news"
	"trendscribe/pkg/ratelimit"
)

/* ───────── fakes ───────── */

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type stubProvider struct {
	calls  int32
	topics []string
	result *news.SearchResult
	err    error
	block  bool
	mu     sync.Mutex
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Search(ctx context.Context, topic string) (*news.SearchResult, error) {
	atomic.AddInt32(&p.calls, 1)
	p.mu.Lock()
	p.topics = append(p.topics, topic)
	p.mu.Unlock()
	if p.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return p.result, p.err
}

func (p *stubProvider) callCount() int { return int(atomic.LoadInt32(&p.calls)) }

type failingThrottle struct{}

func (failingThrottle) Allow(context.Context, string) (*ratelimit.RateLimitDecision, error) {
	return nil, errors.New("store unavailable")
}

func okResult(articles ...news.RawArticle) *news.SearchResult {
	return &news.SearchResult{Status: news.StatusOK, Articles: articles}
}

const published = "2026-01-01T09:00:00Z"

func newGateway(t *testing.T, provider news.Provider, clock *fakeClock, limit int) *news.Service {
	t.Helper()
	c, err := cache.New[[]entity.Article](16, 300*time.Second, clock)
	require.NoError(t, err)

	var throttle news.Throttle
	if limit > 0 {
		throttle = ratelimit.NewInMemoryLimiter("news", ratelimit.RateLimitConfig{
			Enabled:     true,
			MaxRequests: limit,
			Window:      15 * time.Minute,
			Algorithm:   ratelimit.AlgorithmFixedWindow,
		}, nil, clock)
	}
	return news.NewService(provider, c, throttle, []string{"sex", "adult"}, time.Second)
}

/* ───────── tests ───────── */

func TestSanitizeTopic(t *testing.T) {
	tests := map[string]string{
		"AI!!!":          "AI",
		"!!!":            "",
		"  open AI  ":    "open AI",
		"GPT-4o":         "GPT4o",
		"日本 tech":        "tech",
		"rock&roll 2026": "rockroll 2026",
		"":               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, news.SanitizeTopic(in), "input %q", in)
	}
}

func TestFetch_SanitizesTopicBeforeSearch(t *testing.T) {
	provider := &stubProvider{result: okResult(news.RawArticle{Title: "AI news"})}
	gw := newGateway(t, provider, newFakeClock(), 0)

	_, err := gw.Fetch(context.Background(), "10.0.0.1", "AI!!!")
	require.NoError(t, err)
	assert.Equal(t, []string{"AI"}, provider.topics)
}

func TestFetch_InvalidTopicMakesNoCalls(t *testing.T) {
	provider := &stubProvider{result: okResult()}
	gw := newGateway(t, provider, newFakeClock(), 1)

	_, err := gw.Fetch(context.Background(), "10.0.0.1", "!!!")
	assert.ErrorIs(t, err, news.ErrInvalidTopic)
	assert.Equal(t, 0, provider.callCount())

	// no throttle slot was consumed
	_, err = gw.Fetch(context.Background(), "10.0.0.1", "AI")
	assert.NoError(t, err)
}

func TestFetch_CacheTTL(t *testing.T) {
	clock := newFakeClock()
	provider := &stubProvider{result: okResult(news.RawArticle{Title: "AI news"})}
	gw := newGateway(t, provider, clock, 0)
	ctx := context.Background()

	_, err := gw.Fetch(ctx, "c", "AI")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.callCount())

	clock.Advance(299 * time.Second)
	_, err = gw.Fetch(ctx, "c", "AI")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.callCount(), "served from cache within ttl")

	clock.Advance(2 * time.Second)
	_, err = gw.Fetch(ctx, "c", "AI")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.callCount(), "re-fetched after ttl")
}

func TestFetch_CallerCannotMutateCache(t *testing.T) {
	provider := &stubProvider{result: okResult(news.RawArticle{Title: "AI news"})}
	gw := newGateway(t, provider, newFakeClock(), 0)
	ctx := context.Background()

	first, err := gw.Fetch(ctx, "c", "AI")
	require.NoError(t, err)
	first[0].Title = "edited"

	hit, err := gw.Fetch(ctx, "c", "AI")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.callCount())
	assert.Equal(t, "AI news", hit[0].Title)

	hit[0].Title = "edited again"
	again, err := gw.Fetch(ctx, "c", "AI")
	require.NoError(t, err)
	assert.Equal(t, "AI news", again[0].Title)
}

func TestFetch_SanitizedTopicsShareCacheEntry(t *testing.T) {
	provider := &stubProvider{result: okResult(news.RawArticle{Title: "AI news"})}
	gw := newGateway(t, provider, newFakeClock(), 0)

	_, err := gw.Fetch(context.Background(), "c", "AI")
	require.NoError(t, err)
	_, err = gw.Fetch(context.Background(), "c", "AI???")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.callCount())
}

func TestFetch_FiltersAndMaps(t *testing.T) {
	provider := &stubProvider{result: okResult(
		news.RawArticle{Title: "Something about sex trends", URL: "https://x/1"},
		news.RawArticle{Title: "", URL: "https://x/2"},
		news.RawArticle{Title: "ADULT content", URL: "https://x/3"},
		news.RawArticle{
			Title:       "Chips get faster",
			Description: "desc",
			URL:         "https://x/4",
			URLToImage:  "https://x/4.png",
			PublishedAt: published,
			SourceName:  "Reuters",
		},
		news.RawArticle{Title: "No source", URL: "https://x/5"},
	)}
	gw := newGateway(t, provider, newFakeClock(), 0)

	got, err := gw.Fetch(context.Background(), "c", "tech")
	require.NoError(t, err)

	want := []entity.Article{
		{
			Title:       "Chips get faster",
			Description: "desc",
			URL:         "https://x/4",
			ImageURL:    "https://x/4.png",
			PublishedAt: published,
			SourceName:  "Reuters",
		},
		{Title: "No source", URL: "https://x/5"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Fetch() mismatch (-want +got):\n%s", diff)
	}
}

func TestFetch_RateLimited(t *testing.T) {
	clock := newFakeClock()
	provider := &stubProvider{result: okResult(news.RawArticle{Title: "AI news"})}
	gw := newGateway(t, provider, clock, 2)
	ctx := context.Background()

	for i, topic := range []string{"AI", "chips"} {
		_, err := gw.Fetch(ctx, "10.0.0.1", topic)
		require.NoError(t, err, "request %d", i)
	}
	before := provider.callCount()

	_, err := gw.Fetch(ctx, "10.0.0.1", "robots")
	require.ErrorIs(t, err, news.ErrRateLimited)
	var rlErr *news.RateLimitedError
	require.ErrorAs(t, err, &rlErr)
	assert.Greater(t, rlErr.RetryAfter, time.Duration(0))
	assert.Equal(t, 2, rlErr.Limit)
	assert.Equal(t, before, provider.callCount(), "no provider call once throttled")

	// cached topics are throttled too
	_, err = gw.Fetch(ctx, "10.0.0.1", "AI")
	assert.ErrorIs(t, err, news.ErrRateLimited)

	// other clients are unaffected
	_, err = gw.Fetch(ctx, "10.0.0.2", "robots")
	assert.NoError(t, err)

	clock.Advance(15*time.Minute + time.Second)
	_, err = gw.Fetch(ctx, "10.0.0.1", "robots")
	assert.NoError(t, err, "window reset")
}

func TestFetch_ThrottleErrorFailsOpen(t *testing.T) {
	provider := &stubProvider{result: okResult(news.RawArticle{Title: "AI news"})}
	c, err := cache.New[[]entity.Article](4, time.Minute, nil)
	require.NoError(t, err)
	gw := news.NewService(provider, c, failingThrottle{}, nil, 0)

	got, err := gw.Fetch(context.Background(), "c", "AI")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFetch_ProviderStatusError(t *testing.T) {
	provider := &stubProvider{result: &news.SearchResult{Status: "error", Message: "apiKeyInvalid"}}
	gw := newGateway(t, provider, newFakeClock(), 0)

	_, err := gw.Fetch(context.Background(), "c", "AI")
	require.ErrorIs(t, err, news.ErrProvider)
	var pErr *news.ProviderError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "apiKeyInvalid", pErr.Message)

	// failures are not cached
	_, _ = gw.Fetch(context.Background(), "c", "AI")
	assert.Equal(t, 2, provider.callCount())
}

func TestFetch_ProviderStatusErrorWithoutMessage(t *testing.T) {
	provider := &stubProvider{result: &news.SearchResult{Status: "error"}}
	gw := newGateway(t, provider, newFakeClock(), 0)

	_, err := gw.Fetch(context.Background(), "c", "AI")
	var pErr *news.ProviderError
	require.ErrorAs(t, err, &pErr)
	assert.NotEmpty(t, pErr.Message)
}

func TestFetch_ProviderTransportError(t *testing.T) {
	cause := errors.New("connection reset")
	provider := &stubProvider{err: cause}
	gw := newGateway(t, provider, newFakeClock(), 0)

	_, err := gw.Fetch(context.Background(), "c", "AI")
	assert.ErrorIs(t, err, news.ErrProvider)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, news.ErrTimeout)
}

func TestFetch_ProviderTimeout(t *testing.T) {
	provider := &stubProvider{block: true}
	c, err := cache.New[[]entity.Article](4, time.Minute, nil)
	require.NoError(t, err)
	gw := news.NewService(provider, c, nil, nil, 20*time.Millisecond)

	_, err = gw.Fetch(context.Background(), "c", "AI")
	assert.ErrorIs(t, err, news.ErrTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, provider.callCount(), "no retry")
}

func TestNewService_NormalizesKeywords(t *testing.T) {
	gw := news.NewService(&stubProvider{}, nil, nil, []string{" Casino ", "", "SEX"}, 0)
	assert.Equal(t, []string{"casino", "sex"}, gw.ExcludedKeywords)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "news-AI", news.CacheKey("AI"))
}
