package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Workspace struct {
	ID          string
	Name        string
	Description *string
	OwnerID     string
	Visibility  string // "private", "public"
	// Policies controlling what plain members may do. "admins" or "members".
	InvitePolicy string
	BoardPolicy  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

type WorkspaceMember struct {
	ID          string
	WorkspaceID string
	UserID      string
	Role        string
	JoinedAt    time.Time
	User        *User
}

type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *Workspace) error
	FindByID(ctx context.Context, id string) (*Workspace, error)
	FindByUserID(ctx context.Context, userID string) ([]*Workspace, error)
	Update(ctx context.Context, workspace *Workspace) error
	// DeleteCascade soft-deletes the workspace and every board, list, card,
	// comment and attachment below it in a single transaction.
	DeleteCascade(ctx context.Context, id string) error
	AddMember(ctx context.Context, member *WorkspaceMember) error
	FindMembers(ctx context.Context, workspaceID string) ([]*WorkspaceMember, error)
	FindMember(ctx context.Context, workspaceID, userID string) (*WorkspaceMember, error)
	UpdateMemberRole(ctx context.Context, workspaceID, userID, role string) error
	RemoveMember(ctx context.Context, workspaceID, userID string) error
}

type pgWorkspaceRepository struct {
	pool *pgxpool.Pool
}

func NewWorkspaceRepository(pool *pgxpool.Pool) WorkspaceRepository {
	return &pgWorkspaceRepository{pool: pool}
}

func (r *pgWorkspaceRepository) Create(ctx context.Context, workspace *Workspace) error {
	query := `
		INSERT INTO workspaces (name, description, owner_id, visibility, invite_policy, board_policy)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		workspace.Name, workspace.Description, workspace.OwnerID,
		workspace.Visibility, workspace.InvitePolicy, workspace.BoardPolicy,
	).Scan(&workspace.ID, &workspace.CreatedAt, &workspace.UpdatedAt)
}

func (r *pgWorkspaceRepository) FindByID(ctx context.Context, id string) (*Workspace, error) {
	query := `
		SELECT id, name, description, owner_id, visibility, invite_policy, board_policy, created_at, updated_at, deleted_at
		FROM workspaces WHERE id = $1 AND deleted_at IS NULL
	`
	ws := &Workspace{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&ws.ID, &ws.Name, &ws.Description, &ws.OwnerID,
		&ws.Visibility, &ws.InvitePolicy, &ws.BoardPolicy,
		&ws.CreatedAt, &ws.UpdatedAt, &ws.DeletedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ws, nil
}

func (r *pgWorkspaceRepository) FindByUserID(ctx context.Context, userID string) ([]*Workspace, error) {
	query := `
		SELECT DISTINCT w.id, w.name, w.description, w.owner_id, w.visibility, w.invite_policy, w.board_policy, w.created_at, w.updated_at, w.deleted_at
		FROM workspaces w
		LEFT JOIN workspace_members wm ON w.id = wm.workspace_id
		WHERE (wm.user_id = $1 OR w.owner_id = $1) AND w.deleted_at IS NULL
		ORDER BY w.name
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workspaces []*Workspace
	for rows.Next() {
		ws := &Workspace{}
		if err := rows.Scan(
			&ws.ID, &ws.Name, &ws.Description, &ws.OwnerID,
			&ws.Visibility, &ws.InvitePolicy, &ws.BoardPolicy,
			&ws.CreatedAt, &ws.UpdatedAt, &ws.DeletedAt,
		); err != nil {
			return nil, err
		}
		workspaces = append(workspaces, ws)
	}
	return workspaces, rows.Err()
}

func (r *pgWorkspaceRepository) Update(ctx context.Context, workspace *Workspace) error {
	query := `
		UPDATE workspaces
		SET name = $2, description = $3, visibility = $4, invite_policy = $5, board_policy = $6, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		workspace.ID, workspace.Name, workspace.Description,
		workspace.Visibility, workspace.InvitePolicy, workspace.BoardPolicy,
	).Scan(&workspace.UpdatedAt)
}

func (r *pgWorkspaceRepository) DeleteCascade(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Collect the affected subtree first, then commit one multi-table write.
	boardIDs, err := collectIDs(ctx, tx,
		`SELECT id FROM boards WHERE workspace_id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	listIDs, err := collectIDs(ctx, tx,
		`SELECT id FROM lists WHERE board_id = ANY($1) AND deleted_at IS NULL`, boardIDs)
	if err != nil {
		return err
	}
	cardIDs, err := collectIDs(ctx, tx,
		`SELECT id FROM cards WHERE list_id = ANY($1) AND deleted_at IS NULL`, listIDs)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE workspaces SET deleted_at = NOW() WHERE id = $1`, id); err != nil {
		return err
	}
	if err := softDeleteSubtree(ctx, tx, boardIDs, listIDs, cardIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *pgWorkspaceRepository) AddMember(ctx context.Context, member *WorkspaceMember) error {
	query := `
		INSERT INTO workspace_members (workspace_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, joined_at
	`
	return r.pool.QueryRow(ctx, query,
		member.WorkspaceID, member.UserID, member.Role,
	).Scan(&member.ID, &member.JoinedAt)
}

func (r *pgWorkspaceRepository) FindMembers(ctx context.Context, workspaceID string) ([]*WorkspaceMember, error) {
	query := `
		SELECT wm.id, wm.workspace_id, wm.user_id, wm.role, wm.joined_at,
		       u.id, u.email, u.name, u.avatar
		FROM workspace_members wm
		JOIN users u ON u.id = wm.user_id
		WHERE wm.workspace_id = $1
		ORDER BY wm.joined_at
	`
	rows, err := r.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*WorkspaceMember
	for rows.Next() {
		m := &WorkspaceMember{User: &User{}}
		if err := rows.Scan(
			&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.JoinedAt,
			&m.User.ID, &m.User.Email, &m.User.Name, &m.User.Avatar,
		); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *pgWorkspaceRepository) FindMember(ctx context.Context, workspaceID, userID string) (*WorkspaceMember, error) {
	query := `
		SELECT id, workspace_id, user_id, role, joined_at
		FROM workspace_members
		WHERE workspace_id = $1 AND user_id = $2
	`
	m := &WorkspaceMember{}
	err := r.pool.QueryRow(ctx, query, workspaceID, userID).Scan(
		&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.JoinedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *pgWorkspaceRepository) UpdateMemberRole(ctx context.Context, workspaceID, userID, role string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE workspace_members SET role = $3 WHERE workspace_id = $1 AND user_id = $2`,
		workspaceID, userID, role,
	)
	return err
}

func (r *pgWorkspaceRepository) RemoveMember(ctx context.Context, workspaceID, userID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM workspace_members WHERE workspace_id = $1 AND user_id = $2`,
		workspaceID, userID,
	)
	return err
}

// collectIDs runs a single-column id query inside a transaction.
func collectIDs(ctx context.Context, tx pgx.Tx, query string, arg interface{}) ([]string, error) {
	rows, err := tx.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// softDeleteSubtree marks pre-collected boards, lists, cards and the cards'
// comments and attachments as deleted. Callers own the transaction boundary.
func softDeleteSubtree(ctx context.Context, tx pgx.Tx, boardIDs, listIDs, cardIDs []string) error {
	if len(boardIDs) > 0 {
		if _, err := tx.Exec(ctx, `UPDATE boards SET deleted_at = NOW() WHERE id = ANY($1)`, boardIDs); err != nil {
			return err
		}
	}
	if len(listIDs) > 0 {
		if _, err := tx.Exec(ctx, `UPDATE lists SET deleted_at = NOW() WHERE id = ANY($1)`, listIDs); err != nil {
			return err
		}
	}
	if len(cardIDs) > 0 {
		if _, err := tx.Exec(ctx, `UPDATE cards SET deleted_at = NOW() WHERE id = ANY($1)`, cardIDs); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE comments SET deleted_at = NOW() WHERE card_id = ANY($1)`, cardIDs); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE attachments SET deleted_at = NOW() WHERE card_id = ANY($1)`, cardIDs); err != nil {
			return err
		}
	}
	return nil
}
