package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Attachment is a durable media record backed by blob storage.
type Attachment struct {
	ID         int64
	StorageKey string
	URL        string
	MimeType   string
	Title      string
	FileSize   int64
	CreatedAt  time.Time
}

// DerivedMetadata is the best-effort metadata generated after an
// attachment row exists. Missing fields leave the row untouched.
type DerivedMetadata struct {
	FileSize int64
	MimeType string
}

type AttachmentStore interface {
	Create(ctx context.Context, a Attachment) (int64, error)
	Get(ctx context.Context, id int64) (Attachment, error)
	UpdateMetadata(ctx context.Context, id int64, meta DerivedMetadata) error
	List(ctx context.Context, limit int) ([]Attachment, error)
}

// ErrAttachmentNotFound reports a lookup of a deleted or never-created
// attachment. Rendering treats it as "no audio", not a failure.
var ErrAttachmentNotFound = errors.New("attachment not found")

type PostgresAttachmentRepository struct {
	db *pgxpool.Pool
}

func NewPostgresAttachmentRepository(db *pgxpool.Pool) *PostgresAttachmentRepository {
	return &PostgresAttachmentRepository{db: db}
}

var _ AttachmentStore = (*PostgresAttachmentRepository)(nil)

func AttachmentToRowParams(a Attachment) []any {
	return []any{
		a.StorageKey,
		a.URL,
		a.MimeType,
		a.Title,
		a.FileSize,
	}
}

func (r *PostgresAttachmentRepository) Create(ctx context.Context, a Attachment) (int64, error) {
	const query = `
	INSERT INTO attachment (storage_key, url, mime_type, title, file_size)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id
	`

	var id int64
	if err := r.db.QueryRow(ctx, query, AttachmentToRowParams(a)...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert attachment: %w", err)
	}
	return id, nil
}

func (r *PostgresAttachmentRepository) Get(ctx context.Context, id int64) (Attachment, error) {
	const query = `
	SELECT id, storage_key, url, mime_type, title, file_size, created_at
	FROM attachment
	WHERE id = $1
	`

	var a Attachment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.StorageKey,
		&a.URL,
		&a.MimeType,
		&a.Title,
		&a.FileSize,
		&a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Attachment{}, ErrAttachmentNotFound
	}
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to query attachment: %w", err)
	}
	return a, nil
}

func (r *PostgresAttachmentRepository) UpdateMetadata(ctx context.Context, id int64, meta DerivedMetadata) error {
	const query = `
	UPDATE attachment
	SET file_size = COALESCE(NULLIF($2, 0::bigint), file_size),
	    mime_type = COALESCE(NULLIF($3, ''), mime_type)
	WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, meta.FileSize, meta.MimeType)
	if err != nil {
		return fmt.Errorf("failed to update attachment metadata: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAttachmentNotFound
	}
	return nil
}

func (r *PostgresAttachmentRepository) List(ctx context.Context, limit int) ([]Attachment, error) {
	const query = `
	SELECT id, storage_key, url, mime_type, title, file_size, created_at
	FROM attachment
	ORDER BY created_at DESC
	LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	var attachments []Attachment
	for rows.Next() {
		var a Attachment
		if err := rows.Scan(&a.ID, &a.StorageKey, &a.URL, &a.MimeType, &a.Title, &a.FileSize, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attachment row: %w", err)
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}
