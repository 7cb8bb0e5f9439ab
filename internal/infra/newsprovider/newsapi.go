// Package newsprovider implements news.Provider for NewsAPI and for Google
// News RSS search.
package newsprovider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trendscribe/internal/resilience/circuitbreaker"
	"trendscribe/internal/usecase/news"
)

const (
	defaultNewsAPIBaseURL = "https://newsapi.org"
	maxResponseBytes      = 5 << 20
)

// NewsAPI searches https://newsapi.org/v2/everything.
type NewsAPI struct {
	baseURL        string
	apiKey         string
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewNewsAPI creates a NewsAPI provider. An empty baseURL uses the public
// endpoint.
func NewNewsAPI(apiKey, baseURL string, timeout time.Duration) *NewsAPI {
	if baseURL == "" {
		baseURL = defaultNewsAPIBaseURL
	}
	return &NewsAPI{
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         apiKey,
		client:         &http.Client{Timeout: timeout},
		circuitBreaker: circuitbreaker.New(circuitbreaker.NewsProviderConfig("newsapi")),
	}
}

func (p *NewsAPI) Name() string { return "newsapi" }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		URLToImage  string `json:"urlToImage"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// upstreamError is a 5xx answer. It trips the breaker but reaches the
// gateway as a non-ok SearchResult.
type upstreamError struct {
	result *news.SearchResult
}

func (e *upstreamError) Error() string { return e.result.Message }

// Search implements news.Provider.
func (p *NewsAPI) Search(ctx context.Context, topic string) (*news.SearchResult, error) {
	result, err := circuitbreaker.Do(p.circuitBreaker, func() (*news.SearchResult, error) {
		return p.search(ctx, topic)
	})

	var upstream *upstreamError
	switch {
	case err == nil:
		return result, nil
	case errors.As(err, &upstream):
		return upstream.result, nil
	case circuitbreaker.IsOpenError(err):
		slog.WarnContext(ctx, "newsapi circuit breaker open, request rejected",
			slog.String("state", p.circuitBreaker.State().String()))
		return nil, fmt.Errorf("newsapi unavailable: circuit breaker open: %w", err)
	default:
		return nil, err
	}
}

func (p *NewsAPI) search(ctx context.Context, topic string) (*news.SearchResult, error) {
	endpoint := p.baseURL + "/v2/everything?q=" + url.QueryEscape(topic)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create newsapi request: %w", err)
	}
	// NewsAPI accepts the key as a header as well as the apiKey parameter.
	req.Header.Set("X-Api-Key", p.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read newsapi response: %w", err)
	}

	var payload newsAPIResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		if resp.StatusCode >= 400 {
			return refused(resp.StatusCode, "NewsAPI request failed")
		}
		return nil, fmt.Errorf("decode newsapi response: %w", err)
	}

	if resp.StatusCode >= 400 || payload.Status != news.StatusOK {
		msg := payload.Message
		if msg == "" {
			msg = "NewsAPI error"
		}
		return refused(resp.StatusCode, msg)
	}

	result := &news.SearchResult{
		Status:   payload.Status,
		Articles: make([]news.RawArticle, 0, len(payload.Articles)),
	}
	for _, a := range payload.Articles {
		result.Articles = append(result.Articles, news.RawArticle{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			URLToImage:  a.URLToImage,
			PublishedAt: a.PublishedAt,
			SourceName:  a.Source.Name,
		})
	}
	return result, nil
}

// refused reports an upstream refusal as a non-ok result. Only 5xx counts
// against the breaker.
func refused(code int, msg string) (*news.SearchResult, error) {
	result := &news.SearchResult{Status: "error", Message: msg}
	if code >= 500 {
		return nil, &upstreamError{result: result}
	}
	return result, nil
}
