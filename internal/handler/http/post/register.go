package post

import (
	"context"
	"log/slog"
	"net/http"

	"trendscribe/internal/domain/entity"
	"trendscribe/internal/repository"
)

// Trigger starts a generation run; *generate.Service satisfies it.
type Trigger interface {
	Trigger(ctx context.Context) (*entity.Post, error)
}

// Register registers the post routes with the given mux.
// /getUniqueBlog/{id} and GET /generate-blog are kept for existing clients.
func Register(mux *http.ServeMux, repo repository.PostRepository, trigger Trigger, logger *slog.Logger) {
	mux.Handle("GET /blogs", ListHandler{Repo: repo, Logger: logger})
	mux.Handle("GET /blogs/{id}", GetHandler{Repo: repo})
	mux.Handle("GET /getUniqueBlog/{id}", GetHandler{Repo: repo})

	generate := GenerateHandler{Trigger: trigger, Logger: logger}
	mux.Handle("POST /generate-blog", generate)
	mux.Handle("GET /generate-blog", generate)
}
