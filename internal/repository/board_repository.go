package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Board struct {
	ID          string
	Name        string
	Description *string
	WorkspaceID string
	OwnerID     string
	Visibility  string // "private", "workspace", "public"
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

type BoardMember struct {
	ID       string
	BoardID  string
	UserID   string
	Role     string
	JoinedAt time.Time
	User     *User
}

type BoardRepository interface {
	Create(ctx context.Context, board *Board) error
	FindByID(ctx context.Context, id string) (*Board, error)
	FindByWorkspaceID(ctx context.Context, workspaceID string) ([]*Board, error)
	Update(ctx context.Context, board *Board) error
	// DeleteCascade soft-deletes the board and its lists, cards, comments and
	// attachments in a single transaction.
	DeleteCascade(ctx context.Context, id string) error
	AddMember(ctx context.Context, member *BoardMember) error
	FindMembers(ctx context.Context, boardID string) ([]*BoardMember, error)
	FindMember(ctx context.Context, boardID, userID string) (*BoardMember, error)
	UpdateMemberRole(ctx context.Context, boardID, userID, role string) error
	RemoveMember(ctx context.Context, boardID, userID string) error
}

type pgBoardRepository struct {
	pool *pgxpool.Pool
}

func NewBoardRepository(pool *pgxpool.Pool) BoardRepository {
	return &pgBoardRepository{pool: pool}
}

func (r *pgBoardRepository) Create(ctx context.Context, board *Board) error {
	query := `
		INSERT INTO boards (name, description, workspace_id, owner_id, visibility)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		board.Name, board.Description, board.WorkspaceID, board.OwnerID, board.Visibility,
	).Scan(&board.ID, &board.CreatedAt, &board.UpdatedAt)
}

func (r *pgBoardRepository) FindByID(ctx context.Context, id string) (*Board, error) {
	query := `
		SELECT id, name, description, workspace_id, owner_id, visibility, created_at, updated_at, deleted_at
		FROM boards WHERE id = $1 AND deleted_at IS NULL
	`
	b := &Board{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.Name, &b.Description, &b.WorkspaceID, &b.OwnerID,
		&b.Visibility, &b.CreatedAt, &b.UpdatedAt, &b.DeletedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *pgBoardRepository) FindByWorkspaceID(ctx context.Context, workspaceID string) ([]*Board, error) {
	query := `
		SELECT id, name, description, workspace_id, owner_id, visibility, created_at, updated_at, deleted_at
		FROM boards
		WHERE workspace_id = $1 AND deleted_at IS NULL
		ORDER BY name
	`
	rows, err := r.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []*Board
	for rows.Next() {
		b := &Board{}
		if err := rows.Scan(
			&b.ID, &b.Name, &b.Description, &b.WorkspaceID, &b.OwnerID,
			&b.Visibility, &b.CreatedAt, &b.UpdatedAt, &b.DeletedAt,
		); err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

func (r *pgBoardRepository) Update(ctx context.Context, board *Board) error {
	query := `
		UPDATE boards
		SET name = $2, description = $3, visibility = $4, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		board.ID, board.Name, board.Description, board.Visibility,
	).Scan(&board.UpdatedAt)
}

func (r *pgBoardRepository) DeleteCascade(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	listIDs, err := collectIDs(ctx, tx,
		`SELECT id FROM lists WHERE board_id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	cardIDs, err := collectIDs(ctx, tx,
		`SELECT id FROM cards WHERE list_id = ANY($1) AND deleted_at IS NULL`, listIDs)
	if err != nil {
		return err
	}

	if err := softDeleteSubtree(ctx, tx, []string{id}, listIDs, cardIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *pgBoardRepository) AddMember(ctx context.Context, member *BoardMember) error {
	query := `
		INSERT INTO board_members (board_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, joined_at
	`
	return r.pool.QueryRow(ctx, query,
		member.BoardID, member.UserID, member.Role,
	).Scan(&member.ID, &member.JoinedAt)
}

func (r *pgBoardRepository) FindMembers(ctx context.Context, boardID string) ([]*BoardMember, error) {
	query := `
		SELECT bm.id, bm.board_id, bm.user_id, bm.role, bm.joined_at,
		       u.id, u.email, u.name, u.avatar
		FROM board_members bm
		JOIN users u ON u.id = bm.user_id
		WHERE bm.board_id = $1
		ORDER BY bm.joined_at
	`
	rows, err := r.pool.Query(ctx, query, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*BoardMember
	for rows.Next() {
		m := &BoardMember{User: &User{}}
		if err := rows.Scan(
			&m.ID, &m.BoardID, &m.UserID, &m.Role, &m.JoinedAt,
			&m.User.ID, &m.User.Email, &m.User.Name, &m.User.Avatar,
		); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *pgBoardRepository) FindMember(ctx context.Context, boardID, userID string) (*BoardMember, error) {
	query := `
		SELECT id, board_id, user_id, role, joined_at
		FROM board_members
		WHERE board_id = $1 AND user_id = $2
	`
	m := &BoardMember{}
	err := r.pool.QueryRow(ctx, query, boardID, userID).Scan(
		&m.ID, &m.BoardID, &m.UserID, &m.Role, &m.JoinedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *pgBoardRepository) UpdateMemberRole(ctx context.Context, boardID, userID, role string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE board_members SET role = $3 WHERE board_id = $1 AND user_id = $2`,
		boardID, userID, role,
	)
	return err
}

func (r *pgBoardRepository) RemoveMember(ctx context.Context, boardID, userID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM board_members WHERE board_id = $1 AND user_id = $2`,
		boardID, userID,
	)
	return err
}
