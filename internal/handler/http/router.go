// Package http assembles the read API: routes, probes and the middleware
// chain shared by every request.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"trendscribe/internal/handler/http/middleware"
	"trendscribe/internal/handler/http/news"
	"trendscribe/internal/handler/http/post"
	"trendscribe/internal/handler/http/requestid"
	"trendscribe/internal/observability/tracing"
	"trendscribe/internal/repository"
)

// RouterConfig carries the dependencies of NewRouter. Health and CORS are
// optional.
type RouterConfig struct {
	Posts   repository.PostRepository
	Trigger post.Trigger
	News    news.Fetcher
	IPs     middleware.IPExtractor
	CORS    *middleware.CORSConfig
	Health  *HealthHandler
	Logger  *slog.Logger

	// RequestTimeout bounds every route except /generate-blog. Zero disables it.
	RequestTimeout time.Duration
}

// NewRouter registers every route and wraps the mux with, outermost first:
// panic recovery, request id, tracing, access log, metrics, CORS, input
// validation and the request timeout.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	post.Register(mux, cfg.Posts, cfg.Trigger, logger)
	news.Register(mux, news.Handler{Svc: cfg.News, IPs: cfg.IPs, Logger: logger})

	health := cfg.Health
	if health == nil {
		health = &HealthHandler{}
	}
	mux.Handle("GET /health", health)
	mux.Handle("GET /ready", &ReadyHandler{DB: health.DB})
	mux.Handle("GET /live", LiveHandler{})
	mux.Handle("GET /metrics", MetricsHandler())

	mws := []Middleware{
		Recover(logger),
		requestid.Middleware,
		tracing.Middleware,
		Logging(logger),
		MetricsMiddleware,
	}
	if cfg.CORS != nil {
		corsCfg := *cfg.CORS
		if corsCfg.Logger == nil {
			corsCfg.Logger = logger
		}
		mws = append(mws, middleware.CORS(corsCfg))
	}
	mws = append(mws,
		InputValidation(MaxRequestBodyBytes),
		Timeout(cfg.RequestTimeout, "/generate-blog"),
	)

	return Chain(mux, mws...)
}
