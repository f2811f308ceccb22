package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Comment struct {
	ID        int64
	PostID    int64
	Author    string
	Body      string
	CreatedAt time.Time
}

type CommentStore interface {
	Create(ctx context.Context, c Comment) (int64, error)
	Get(ctx context.Context, id int64) (Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]Comment, error)
}

var ErrCommentNotFound = errors.New("comment not found")

type PostgresCommentRepository struct {
	db *pgxpool.Pool
}

func NewPostgresCommentRepository(db *pgxpool.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

var _ CommentStore = (*PostgresCommentRepository)(nil)

func (r *PostgresCommentRepository) Create(ctx context.Context, c Comment) (int64, error) {
	const query = `
	INSERT INTO comment (post_id, author, body)
	VALUES ($1, $2, $3)
	RETURNING id
	`

	var id int64
	if err := r.db.QueryRow(ctx, query, c.PostID, c.Author, c.Body).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert comment: %w", err)
	}
	return id, nil
}

func (r *PostgresCommentRepository) Get(ctx context.Context, id int64) (Comment, error) {
	const query = `
	SELECT id, post_id, author, body, created_at
	FROM comment
	WHERE id = $1
	`

	var c Comment
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.PostID, &c.Author, &c.Body, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Comment{}, ErrCommentNotFound
	}
	if err != nil {
		return Comment{}, fmt.Errorf("failed to query comment: %w", err)
	}
	return c, nil
}

func (r *PostgresCommentRepository) ListByPost(ctx context.Context, postID int64) ([]Comment, error) {
	const query = `
	SELECT id, post_id, author, body, created_at
	FROM comment
	WHERE post_id = $1
	ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Author, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// VoiceCommenter is one leaderboard row: an author ranked by how many
// of their comments carry a voice attachment.
type VoiceCommenter struct {
	Author       string
	CommentCount int64
	CommentIDs   []int64
}

// TopVoiceCommenters groups comments that carry the given meta key
// (the audio association) by author. Like totals are summed from the
// reaction store afterwards, since counters do not live in Postgres;
// ties on comment count are therefore re-ranked by the caller. A
// limit of zero or less returns all authors, which the caller needs
// to rank ties correctly before applying its own cap.
func (r *PostgresCommentRepository) TopVoiceCommenters(ctx context.Context, metaKey string, limit int) ([]VoiceCommenter, error) {
	const query = `
	SELECT c.author, COUNT(*) AS comment_count, array_agg(c.id) AS comment_ids
	FROM comment c
	JOIN comment_meta m ON m.comment_id = c.id AND m.meta_key = $1
	GROUP BY c.author
	ORDER BY comment_count DESC, c.author ASC
	LIMIT NULLIF($2, 0)
	`

	if limit < 0 {
		limit = 0
	}

	rows, err := r.db.Query(ctx, query, metaKey, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query voice commenters: %w", err)
	}
	defer rows.Close()

	var commenters []VoiceCommenter
	for rows.Next() {
		var vc VoiceCommenter
		if err := rows.Scan(&vc.Author, &vc.CommentCount, &vc.CommentIDs); err != nil {
			return nil, fmt.Errorf("failed to scan voice commenter row: %w", err)
		}
		commenters = append(commenters, vc)
	}
	return commenters, rows.Err()
}
