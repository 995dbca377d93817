package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Comment struct {
	ID        string
	Body      string
	CardID    string
	AuthorID  string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
	Author    *User
}

type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	FindByID(ctx context.Context, id string) (*Comment, error)
	FindByCardID(ctx context.Context, cardID string) ([]*Comment, error)
	Update(ctx context.Context, comment *Comment) error
	Delete(ctx context.Context, id string) error
}

type pgCommentRepository struct {
	pool *pgxpool.Pool
}

func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &pgCommentRepository{pool: pool}
}

func (r *pgCommentRepository) Create(ctx context.Context, comment *Comment) error {
	query := `
		INSERT INTO comments (body, card_id, author_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		comment.Body, comment.CardID, comment.AuthorID,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
}

func (r *pgCommentRepository) FindByID(ctx context.Context, id string) (*Comment, error) {
	query := `
		SELECT id, body, card_id, author_id, created_at, updated_at, deleted_at
		FROM comments WHERE id = $1 AND deleted_at IS NULL
	`
	c := &Comment{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Body, &c.CardID, &c.AuthorID,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *pgCommentRepository) FindByCardID(ctx context.Context, cardID string) ([]*Comment, error) {
	query := `
		SELECT c.id, c.body, c.card_id, c.author_id, c.created_at, c.updated_at, c.deleted_at,
		       u.id, u.email, u.name, u.avatar
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.card_id = $1 AND c.deleted_at IS NULL
		ORDER BY c.created_at
	`
	rows, err := r.pool.Query(ctx, query, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		c := &Comment{Author: &User{}}
		if err := rows.Scan(
			&c.ID, &c.Body, &c.CardID, &c.AuthorID,
			&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
			&c.Author.ID, &c.Author.Email, &c.Author.Name, &c.Author.Avatar,
		); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *pgCommentRepository) Update(ctx context.Context, comment *Comment) error {
	query := `
		UPDATE comments
		SET body = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query, comment.ID, comment.Body).Scan(&comment.UpdatedAt)
}

func (r *pgCommentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE comments SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	return err
}
