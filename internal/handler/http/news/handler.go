// Package news serves the aggregation gateway over HTTP.
package news

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"trendscribe/internal/domain/entity"
	"trendscribe/internal/handler/http/middleware"
	"trendscribe/internal/handler/http/respond"
	"trendscribe/internal/observability/logging"
	newsUC "trendscribe/internal/usecase/news"
)

// Fetcher is satisfied by *news.Service.
type Fetcher interface {
	Fetch(ctx context.Context, clientKey, topic string) ([]entity.Article, error)
}

// ArticleDTO is the public article shape.
type ArticleDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	ImageURL    string `json:"imageUrl"`
	PublishedAt string `json:"publishedAt"`
	Source      string `json:"source"`
}

func toDTO(a entity.Article) ArticleDTO {
	return ArticleDTO{
		Title:       a.Title,
		Description: a.Description,
		URL:         a.URL,
		ImageURL:    a.ImageURL,
		PublishedAt: a.PublishedAt,
		Source:      a.SourceName,
	}
}

type Handler struct {
	Svc    Fetcher
	IPs    middleware.IPExtractor
	Logger *slog.Logger
}

// Register registers the topic query route.
func Register(mux *http.ServeMux, h Handler) {
	mux.Handle("GET /api/news/{topic}", h)
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ips := h.IPs
	if ips == nil {
		ips = &middleware.RemoteAddrExtractor{}
	}
	clientKey := middleware.ClientIP(ips, r)

	articles, err := h.Svc.Fetch(r.Context(), clientKey, r.PathValue("topic"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]ArticleDTO, 0, len(articles))
	for _, a := range articles {
		out = append(out, toDTO(a))
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.ForRequest(r.Context(), h.Logger)

	var limited *newsUC.RateLimitedError
	var provider *newsUC.ProviderError
	switch {
	case errors.Is(err, newsUC.ErrInvalidTopic):
		respond.Message(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &limited):
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limited.Limit))
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(limited.ResetAt.Unix(), 10))
		respond.RetryAfter(w, int64(math.Ceil(limited.RetryAfter.Seconds())), "too many requests, please try again later")
	case errors.Is(err, newsUC.ErrTimeout):
		logger.Warn("news provider timed out")
		respond.Message(w, http.StatusGatewayTimeout, "news provider timed out")
	case errors.As(err, &provider):
		logger.Warn("news provider failed", slog.String("error", respond.SanitizeError(err)))
		respond.Message(w, http.StatusBadGateway, provider.Message)
	default:
		respond.SafeError(w, http.StatusInternalServerError, err)
	}
}
