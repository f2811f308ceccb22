package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CommentMetaStore is the per-comment key/value surface the host
// platform exposes. Get returns ("", nil) for an absent key.
type CommentMetaStore interface {
	Get(ctx context.Context, commentID int64, key string) (string, error)
	Set(ctx context.Context, commentID int64, key, value string) error
}

type PostgresCommentMetaRepository struct {
	db *pgxpool.Pool
}

func NewPostgresCommentMetaRepository(db *pgxpool.Pool) *PostgresCommentMetaRepository {
	return &PostgresCommentMetaRepository{db: db}
}

var _ CommentMetaStore = (*PostgresCommentMetaRepository)(nil)

func (r *PostgresCommentMetaRepository) Get(ctx context.Context, commentID int64, key string) (string, error) {
	const query = `
	SELECT meta_value FROM comment_meta
	WHERE comment_id = $1 AND meta_key = $2
	`

	var value string
	err := r.db.QueryRow(ctx, query, commentID, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query comment meta: %w", err)
	}
	return value, nil
}

func (r *PostgresCommentMetaRepository) Set(ctx context.Context, commentID int64, key, value string) error {
	const query = `
	INSERT INTO comment_meta (comment_id, meta_key, meta_value)
	VALUES ($1, $2, $3)
	ON CONFLICT (comment_id, meta_key) DO UPDATE SET
		meta_value = EXCLUDED.meta_value
	`

	if _, err := r.db.Exec(ctx, query, commentID, key, value); err != nil {
		return fmt.Errorf("failed to set comment meta: %w", err)
	}
	return nil
}
