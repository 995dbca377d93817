package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Invitation struct {
	ID          string
	WorkspaceID string
	Email       string
	Role        string
	Token       string
	InvitedBy   string
	Status      string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

type InvitationRepository interface {
	Create(ctx context.Context, invitation *Invitation) error
	FindByToken(ctx context.Context, token string) (*Invitation, error)
	FindByWorkspaceID(ctx context.Context, workspaceID string) ([]*Invitation, error)
	FindPendingByEmail(ctx context.Context, email string) ([]*Invitation, error)
	UpdateStatus(ctx context.Context, id, status string) error
	// ExpirePending marks pending invitations whose deadline passed as
	// expired and reports how many were touched.
	ExpirePending(ctx context.Context, now time.Time) (int, error)
}

type pgInvitationRepository struct {
	pool *pgxpool.Pool
}

func NewInvitationRepository(pool *pgxpool.Pool) InvitationRepository {
	return &pgInvitationRepository{pool: pool}
}

func (r *pgInvitationRepository) Create(ctx context.Context, invitation *Invitation) error {
	query := `
		INSERT INTO invitations (workspace_id, email, role, token, invited_by, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		invitation.WorkspaceID, invitation.Email, invitation.Role,
		invitation.Token, invitation.InvitedBy, invitation.Status, invitation.ExpiresAt,
	).Scan(&invitation.ID, &invitation.CreatedAt)
}

func (r *pgInvitationRepository) FindByToken(ctx context.Context, token string) (*Invitation, error) {
	query := `
		SELECT id, workspace_id, email, role, token, invited_by, status, expires_at, created_at
		FROM invitations WHERE token = $1
	`
	inv := &Invitation{}
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&inv.ID, &inv.WorkspaceID, &inv.Email, &inv.Role, &inv.Token,
		&inv.InvitedBy, &inv.Status, &inv.ExpiresAt, &inv.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *pgInvitationRepository) FindByWorkspaceID(ctx context.Context, workspaceID string) ([]*Invitation, error) {
	query := `
		SELECT id, workspace_id, email, role, token, invited_by, status, expires_at, created_at
		FROM invitations
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`
	return r.queryInvitations(ctx, query, workspaceID)
}

func (r *pgInvitationRepository) FindPendingByEmail(ctx context.Context, email string) ([]*Invitation, error) {
	query := `
		SELECT id, workspace_id, email, role, token, invited_by, status, expires_at, created_at
		FROM invitations
		WHERE LOWER(email) = LOWER($1) AND status = 'pending' AND expires_at > NOW()
		ORDER BY created_at DESC
	`
	return r.queryInvitations(ctx, query, email)
}

func (r *pgInvitationRepository) queryInvitations(ctx context.Context, query string, arg interface{}) ([]*Invitation, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []*Invitation
	for rows.Next() {
		inv := &Invitation{}
		if err := rows.Scan(
			&inv.ID, &inv.WorkspaceID, &inv.Email, &inv.Role, &inv.Token,
			&inv.InvitedBy, &inv.Status, &inv.ExpiresAt, &inv.CreatedAt,
		); err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (r *pgInvitationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE invitations SET status = $2 WHERE id = $1`, id, status)
	return err
}

func (r *pgInvitationRepository) ExpirePending(ctx context.Context, now time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE invitations SET status = 'expired' WHERE status = 'pending' AND expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
