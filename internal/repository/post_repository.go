package repository

import (
	"context"

	"trendscribe/internal/domain/entity"
)

// PostRepository is the content store for generated posts.
// Posts are append-only: there is no update or delete.
type PostRepository interface {
	// List returns every post ordered by created_at DESC.
	List(ctx context.Context) ([]*entity.Post, error)
	// Get returns (nil, nil) when no post has the given id.
	Get(ctx context.Context, id int64) (*entity.Post, error)
	// Create inserts the post and sets its ID and CreatedAt.
	Create(ctx context.Context, post *entity.Post) error
}
