package newsprovider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"trendscribe/internal/resilience/circuitbreaker"
	"trendscribe/internal/usecase/news"
)

const defaultRSSBaseURL = "https://news.google.com"

// RSS searches Google News through its RSS search feed. It needs no API key
// and reports every parsed feed as status ok.
type RSS struct {
	baseURL        string
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewRSS creates the RSS provider. An empty baseURL uses Google News.
func NewRSS(baseURL string, timeout time.Duration) *RSS {
	if baseURL == "" {
		baseURL = defaultRSSBaseURL
	}
	return &RSS{
		baseURL:        strings.TrimRight(baseURL, "/"),
		client:         &http.Client{Timeout: timeout},
		circuitBreaker: circuitbreaker.New(circuitbreaker.NewsProviderConfig("rss")),
	}
}

func (p *RSS) Name() string { return "rss" }

// Search implements news.Provider.
func (p *RSS) Search(ctx context.Context, topic string) (*news.SearchResult, error) {
	feed, err := circuitbreaker.Do(p.circuitBreaker, func() (*gofeed.Feed, error) {
		fp := gofeed.NewParser()
		fp.UserAgent = "TrendscribeBot"
		fp.Client = p.client
		return fp.ParseURLWithContext(p.searchURL(topic), ctx)
	})
	if err != nil {
		if circuitbreaker.IsOpenError(err) {
			slog.WarnContext(ctx, "rss circuit breaker open, request rejected",
				slog.String("state", p.circuitBreaker.State().String()))
			return nil, fmt.Errorf("rss unavailable: circuit breaker open: %w", err)
		}
		return nil, fmt.Errorf("rss search: %w", err)
	}

	result := &news.SearchResult{
		Status:   news.StatusOK,
		Articles: make([]news.RawArticle, 0, len(feed.Items)),
	}
	for _, it := range feed.Items {
		article := news.RawArticle{
			Title:       it.Title,
			Description: htmlToText(it.Description),
			URL:         it.Link,
			SourceName:  sourceName(it),
		}
		article.PublishedAt = it.Published
		if it.PublishedParsed != nil {
			article.PublishedAt = it.PublishedParsed.UTC().Format(time.RFC3339)
		}
		if it.Image != nil {
			article.URLToImage = it.Image.URL
		}
		result.Articles = append(result.Articles, article)
	}
	return result, nil
}

func (p *RSS) searchURL(topic string) string {
	q := url.Values{}
	q.Set("q", topic)
	q.Set("hl", "en-US")
	q.Set("gl", "US")
	q.Set("ceid", "US:en")
	return p.baseURL + "/rss/search?" + q.Encode()
}

// htmlToText flattens an HTML description to its text.
func htmlToText(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "<") {
		return raw
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// sourceName prefers the feed author and falls back to the " - Publisher"
// suffix Google News appends to titles.
func sourceName(it *gofeed.Item) string {
	if len(it.Authors) > 0 && it.Authors[0] != nil && it.Authors[0].Name != "" {
		return it.Authors[0].Name
	}
	if i := strings.LastIndex(it.Title, " - "); i > 0 {
		return strings.TrimSpace(it.Title[i+3:])
	}
	return ""
}
