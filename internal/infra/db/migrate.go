package db

import (
	"context"
	"database/sql"
	"fmt"
)

const postgresPostsTable = `
CREATE TABLE IF NOT EXISTS generated_posts (
    id               BIGSERIAL PRIMARY KEY,
    title            TEXT NOT NULL,
    body             TEXT NOT NULL DEFAULT '',
    sources_analyzed TEXT NOT NULL,
    backend          TEXT NOT NULL DEFAULT '',
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const sqlitePostsTable = `
CREATE TABLE IF NOT EXISTS generated_posts (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    title            TEXT NOT NULL,
    body             TEXT NOT NULL DEFAULT '',
    sources_analyzed TEXT NOT NULL,
    backend          TEXT NOT NULL DEFAULT '',
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// listing is always ORDER BY created_at DESC
const postsCreatedAtIndex = `CREATE INDEX IF NOT EXISTS idx_generated_posts_created_at ON generated_posts(created_at DESC)`

// MigrateUp creates the schema if it does not exist yet.
func MigrateUp(ctx context.Context, db *sql.DB, dialect Dialect) error {
	table := postgresPostsTable
	if dialect == DialectSQLite {
		table = sqlitePostsTable
	}

	if _, err := db.ExecContext(ctx, table); err != nil {
		return fmt.Errorf("create generated_posts: %w", err)
	}
	if _, err := db.ExecContext(ctx, postsCreatedAtIndex); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}
