package post

import (
	"log/slog"
	"net/http"

	"trendscribe/internal/handler/http/respond"
	"trendscribe/internal/observability/logging"
	"trendscribe/internal/observability/metrics"
	"trendscribe/internal/repository"
)

type ListHandler struct {
	Repo   repository.PostRepository
	Logger *slog.Logger
}

// ServeHTTP returns every post, newest first. An empty store is [].
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Repo.List(r.Context())
	if err != nil {
		logging.ForRequest(r.Context(), h.Logger).Error("failed to list posts",
			slog.String("error", respond.SanitizeError(err)))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	metrics.UpdatePostsTotal(len(posts))

	out := make([]DTO, 0, len(posts))
	for _, p := range posts {
		out = append(out, toDTO(p))
	}
	respond.JSON(w, http.StatusOK, out)
}
