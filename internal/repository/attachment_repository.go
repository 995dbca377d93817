package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Attachment is a metadata record; the blob itself lives elsewhere.
type Attachment struct {
	ID         string
	CardID     string
	FileName   string
	URL        string
	SizeBytes  *int64
	UploadedBy string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *Attachment) error
	FindByID(ctx context.Context, id string) (*Attachment, error)
	FindByCardID(ctx context.Context, cardID string) ([]*Attachment, error)
	Update(ctx context.Context, attachment *Attachment) error
	Delete(ctx context.Context, id string) error
}

type pgAttachmentRepository struct {
	pool *pgxpool.Pool
}

func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &pgAttachmentRepository{pool: pool}
}

func (r *pgAttachmentRepository) Create(ctx context.Context, attachment *Attachment) error {
	query := `
		INSERT INTO attachments (card_id, file_name, url, size_bytes, uploaded_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		attachment.CardID, attachment.FileName, attachment.URL,
		attachment.SizeBytes, attachment.UploadedBy,
	).Scan(&attachment.ID, &attachment.CreatedAt, &attachment.UpdatedAt)
}

func (r *pgAttachmentRepository) FindByID(ctx context.Context, id string) (*Attachment, error) {
	query := `
		SELECT id, card_id, file_name, url, size_bytes, uploaded_by, created_at, updated_at, deleted_at
		FROM attachments WHERE id = $1 AND deleted_at IS NULL
	`
	a := &Attachment{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.CardID, &a.FileName, &a.URL, &a.SizeBytes,
		&a.UploadedBy, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *pgAttachmentRepository) FindByCardID(ctx context.Context, cardID string) ([]*Attachment, error) {
	query := `
		SELECT id, card_id, file_name, url, size_bytes, uploaded_by, created_at, updated_at, deleted_at
		FROM attachments
		WHERE card_id = $1 AND deleted_at IS NULL
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []*Attachment
	for rows.Next() {
		a := &Attachment{}
		if err := rows.Scan(
			&a.ID, &a.CardID, &a.FileName, &a.URL, &a.SizeBytes,
			&a.UploadedBy, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt,
		); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

func (r *pgAttachmentRepository) Update(ctx context.Context, attachment *Attachment) error {
	query := `
		UPDATE attachments
		SET file_name = $2, url = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		attachment.ID, attachment.FileName, attachment.URL,
	).Scan(&attachment.UpdatedAt)
}

func (r *pgAttachmentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE attachments SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	return err
}
