package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendscribe/internal/domain/entity"
)

var testPost = &entity.Post{
	ID:              42,
	Title:           "Edge AI goes mainstream",
	Body:            "First paragraph.\n\nSecond paragraph.",
	SourcesAnalyzed: "Reuters, Wired",
	Backend:         "deepseek",
	CreatedAt:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
}

// fastRetry shortens backoff so failure paths run quickly.
func fastRetry(w *webhook) {
	w.retry.InitialDelay = time.Millisecond
	w.retry.MaxDelay = 2 * time.Millisecond
}

func newTestDiscord(t *testing.T, handler http.HandlerFunc) (*DiscordNotifier, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	n := NewDiscordNotifier(DiscordConfig{
		Enabled:       true,
		WebhookURL:    srv.URL,
		Timeout:       time.Second,
		PublicBaseURL: "https://blog.example.com/",
	})
	fastRetry(n.webhook)
	return n, srv
}

func TestDiscordNotifier_Embed(t *testing.T) {
	n := NewDiscordNotifier(DiscordConfig{Enabled: true, PublicBaseURL: "https://blog.example.com"})

	payload := n.embed(testPost)

	require.Len(t, payload.Embeds, 1)
	embed := payload.Embeds[0]
	assert.Equal(t, "Edge AI goes mainstream", embed.Title)
	assert.Equal(t, "First paragraph.", embed.Description)
	assert.Equal(t, "https://blog.example.com/blogs/42", embed.URL)
	assert.Equal(t, blurple, embed.Color)
	assert.Equal(t, "Sources: Reuters, Wired", embed.Footer.Text)
	assert.Equal(t, "2026-03-01T12:00:00Z", embed.Timestamp)
}

func TestDiscordNotifier_Embed_Truncates(t *testing.T) {
	n := NewDiscordNotifier(DiscordConfig{Enabled: true})
	post := &entity.Post{
		ID:              1,
		Title:           strings.Repeat("t", 300),
		Body:            strings.Repeat("b", 5000),
		SourcesAnalyzed: "x",
	}

	embed := n.embed(post).Embeds[0]
	assert.Len(t, embed.Title, embedTitleMax)
	assert.Len(t, embed.Description, embedDescriptionMax)
	assert.True(t, strings.HasSuffix(embed.Description, ellipsis))
	assert.Empty(t, embed.URL)
}

func TestDiscordNotifier_NotifyPost_Success(t *testing.T) {
	var got discordPayload
	n, _ := newTestDiscord(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, n.NotifyPost(context.Background(), testPost))
	require.Len(t, got.Embeds, 1)
	assert.Equal(t, testPost.Title, got.Embeds[0].Title)
}

func TestDiscordNotifier_NotifyPost_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	n, _ := newTestDiscord(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"message":"Invalid Webhook Token"}`, http.StatusUnauthorized)
	})

	err := n.NotifyPost(context.Background(), testPost)
	require.Error(t, err)

	var clientErr *ClientError
	assert.ErrorAs(t, err, &clientErr)
	assert.Equal(t, http.StatusUnauthorized, clientErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDiscordNotifier_NotifyPost_ServerErrorRetried(t *testing.T) {
	var calls int32
	n, _ := newTestDiscord(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, n.NotifyPost(context.Background(), testPost))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDiscordNotifier_NotifyPost_RetriesExhausted(t *testing.T) {
	var calls int32
	n, _ := newTestDiscord(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := n.NotifyPost(context.Background(), testPost)
	var serverErr *ServerError
	assert.ErrorAs(t, err, &serverErr)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestExtractRetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		body   string
		want   time.Duration
	}{
		{"json body", "", `{"retry_after": 1.5}`, 1500 * time.Millisecond},
		{"header", "3", "", 3 * time.Second},
		{"default", "", "not json", 5 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			if tt.header != "" {
				resp.Header.Set("Retry-After", tt.header)
			}
			assert.Equal(t, tt.want, extractRetryAfter(resp, []byte(tt.body)))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10, "..."))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7, "..."))
	// never splits a multi-byte rune
	assert.Equal(t, "...", truncate("ééééé", 4, "..."))
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(&ServerError{StatusCode: 503}))
	assert.True(t, isRetryableError(&RateLimitError{RetryAfter: time.Second}))
	assert.False(t, isRetryableError(&ClientError{StatusCode: 404}))
	assert.False(t, isRetryableError(context.Canceled))
}
