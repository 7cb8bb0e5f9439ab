// Package sqlite provides SQLite implementations of repository interfaces.
// It is intended for local development and single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trendscribe/internal/domain/entity"
	"trendscribe/internal/repository"
)

// PostRepo implements the PostRepository interface using SQLite.
type PostRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostRepo creates a new SQLite-backed post repository.
func NewPostRepo(db *sql.DB) repository.PostRepository {
	return &PostRepo{db: db, now: time.Now}
}

// List retrieves all posts ordered by creation time (newest first).
func (repo *PostRepo) List(ctx context.Context) ([]*entity.Post, error) {
	const query = `
SELECT id, title, body, sources_analyzed, backend, created_at
FROM generated_posts
ORDER BY created_at DESC, id DESC
`

	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	posts := make([]*entity.Post, 0, 32)
	for rows.Next() {
		var p entity.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Body,
			&p.SourcesAnalyzed, &p.Backend, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		posts = append(posts, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows.Err: %w", err)
	}

	return posts, nil
}

// Get retrieves a post by id. It returns (nil, nil) when the post does not exist.
func (repo *PostRepo) Get(ctx context.Context, id int64) (*entity.Post, error) {
	const query = `
SELECT id, title, body, sources_analyzed, backend, created_at
FROM generated_posts
WHERE id = ?
LIMIT 1
`
	var p entity.Post
	err := repo.db.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.Title, &p.Body, &p.SourcesAnalyzed, &p.Backend, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: QueryRowContext: %w", err)
	}
	return &p, nil
}

// Create inserts the post. created_at is stamped here in UTC because SQLite
// has no timezone-aware default.
func (repo *PostRepo) Create(ctx context.Context, post *entity.Post) error {
	const query = `
INSERT INTO generated_posts
(title, body, sources_analyzed, backend, created_at)
VALUES (?, ?, ?, ?, ?)
`
	createdAt := repo.now().UTC()
	res, err := repo.db.ExecContext(ctx, query,
		post.Title, post.Body, post.SourcesAnalyzed, post.Backend, createdAt,
	)
	if err != nil {
		return fmt.Errorf("Create: ExecContext: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("Create: LastInsertId: %w", err)
	}

	post.ID = id
	post.CreatedAt = createdAt
	return nil
}
