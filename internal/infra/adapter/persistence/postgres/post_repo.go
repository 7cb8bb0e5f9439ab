// Package postgres provides PostgreSQL implementations of repository interfaces.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"trendscribe/internal/domain/entity"
	"trendscribe/internal/repository"
)

// DBTX is the subset of *sql.DB used by the repositories.
// *circuitbreaker.DBCircuitBreaker satisfies it as well.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type PostRepo struct {
	db DBTX
}

func NewPostRepo(db DBTX) repository.PostRepository {
	return &PostRepo{db: db}
}

func (repo *PostRepo) List(ctx context.Context) ([]*entity.Post, error) {
	const query = `
SELECT id, title, body, sources_analyzed, backend, created_at
FROM generated_posts
ORDER BY created_at DESC, id DESC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
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

func (repo *PostRepo) Get(ctx context.Context, id int64) (*entity.Post, error) {
	const query = `
SELECT id, title, body, sources_analyzed, backend, created_at
FROM generated_posts
WHERE id = $1
LIMIT 1`
	var p entity.Post
	err := repo.db.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.Title, &p.Body, &p.SourcesAnalyzed, &p.Backend, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &p, nil
}

// Create uses QueryContext rather than QueryRowContext so that insert
// failures reach a wrapping circuit breaker.
func (repo *PostRepo) Create(ctx context.Context, post *entity.Post) error {
	const query = `
INSERT INTO generated_posts
       (title, body, sources_analyzed, backend)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at`
	rows, err := repo.db.QueryContext(ctx, query,
		post.Title, post.Body, post.SourcesAnalyzed, post.Backend)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("Create: %w", err)
		}
		return errors.New("Create: no row returned")
	}
	if err := rows.Scan(&post.ID, &post.CreatedAt); err != nil {
		return fmt.Errorf("Create: Scan: %w", err)
	}
	return nil
}
