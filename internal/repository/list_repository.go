package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type List struct {
	ID        string
	Name      string
	BoardID   string
	Position  float64
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

type ListRepository interface {
	Create(ctx context.Context, list *List) error
	FindByID(ctx context.Context, id string) (*List, error)
	FindByBoardID(ctx context.Context, boardID string) ([]*List, error)
	Update(ctx context.Context, list *List) error
	// DeleteCascade soft-deletes the list and its cards, comments and
	// attachments in a single transaction.
	DeleteCascade(ctx context.Context, id string) error
	// MaxPosition returns the highest position among live lists on the board,
	// excluding excludeID (the list being moved). ok is false when the board
	// has no other lists.
	MaxPosition(ctx context.Context, boardID, excludeID string) (pos float64, ok bool, err error)
	// Move atomically re-homes the list and assigns its new position.
	Move(ctx context.Context, id, boardID string, position float64) error
	// RenumberPositions reassigns i*gap to the board's lists in their current
	// order, inside one transaction.
	RenumberPositions(ctx context.Context, boardID string, gap float64) error
	// FindDenseBoards returns board ids whose minimum inter-list gap has
	// fallen below minGap.
	FindDenseBoards(ctx context.Context, minGap float64) ([]string, error)
}

type pgListRepository struct {
	pool *pgxpool.Pool
}

func NewListRepository(pool *pgxpool.Pool) ListRepository {
	return &pgListRepository{pool: pool}
}

func (r *pgListRepository) Create(ctx context.Context, list *List) error {
	query := `
		INSERT INTO lists (name, board_id, position)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		list.Name, list.BoardID, list.Position,
	).Scan(&list.ID, &list.CreatedAt, &list.UpdatedAt)
}

func (r *pgListRepository) FindByID(ctx context.Context, id string) (*List, error) {
	query := `
		SELECT id, name, board_id, position, created_at, updated_at, deleted_at
		FROM lists WHERE id = $1 AND deleted_at IS NULL
	`
	l := &List{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.Name, &l.BoardID, &l.Position,
		&l.CreatedAt, &l.UpdatedAt, &l.DeletedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *pgListRepository) FindByBoardID(ctx context.Context, boardID string) ([]*List, error) {
	query := `
		SELECT id, name, board_id, position, created_at, updated_at, deleted_at
		FROM lists
		WHERE board_id = $1 AND deleted_at IS NULL
		ORDER BY position
	`
	rows, err := r.pool.Query(ctx, query, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []*List
	for rows.Next() {
		l := &List{}
		if err := rows.Scan(
			&l.ID, &l.Name, &l.BoardID, &l.Position,
			&l.CreatedAt, &l.UpdatedAt, &l.DeletedAt,
		); err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

func (r *pgListRepository) Update(ctx context.Context, list *List) error {
	query := `
		UPDATE lists
		SET name = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query, list.ID, list.Name).Scan(&list.UpdatedAt)
}

func (r *pgListRepository) DeleteCascade(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cardIDs, err := collectIDs(ctx, tx,
		`SELECT id FROM cards WHERE list_id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE lists SET deleted_at = NOW() WHERE id = $1`, id); err != nil {
		return err
	}
	if err := softDeleteSubtree(ctx, tx, nil, nil, cardIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *pgListRepository) MaxPosition(ctx context.Context, boardID, excludeID string) (float64, bool, error) {
	query := `
		SELECT MAX(position) FROM lists
		WHERE board_id = $1 AND id <> $2 AND deleted_at IS NULL
	`
	var max *float64
	if err := r.pool.QueryRow(ctx, query, boardID, excludeID).Scan(&max); err != nil {
		return 0, false, err
	}
	if max == nil {
		return 0, false, nil
	}
	return *max, true, nil
}

// Move re-homes the list and, in the same transaction, the denormalized
// board reference on every card riding along with it.
func (r *pgListRepository) Move(ctx context.Context, id, boardID string, position float64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE lists SET board_id = $2, position = $3, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`,
		id, boardID, position,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE cards SET board_id = $2, updated_at = NOW() WHERE list_id = $1 AND deleted_at IS NULL`,
		id, boardID,
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *pgListRepository) RenumberPositions(ctx context.Context, boardID string, gap float64) error {
	query := `
		UPDATE lists l
		SET position = ranked.rn * $2, updated_at = NOW()
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY position, id) AS rn
			FROM lists
			WHERE board_id = $1 AND deleted_at IS NULL
		) ranked
		WHERE l.id = ranked.id
	`
	_, err := r.pool.Exec(ctx, query, boardID, gap)
	return err
}

func (r *pgListRepository) FindDenseBoards(ctx context.Context, minGap float64) ([]string, error) {
	query := `
		SELECT DISTINCT board_id FROM (
			SELECT board_id,
			       position - LAG(position) OVER (PARTITION BY board_id ORDER BY position) AS gap
			FROM lists
			WHERE deleted_at IS NULL
		) gaps
		WHERE gap IS NOT NULL AND gap < $1
	`
	rows, err := r.pool.Query(ctx, query, minGap)
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
