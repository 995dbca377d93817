package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Card struct {
	ID          string
	Title       string
	Description *string
	ListID      string
	BoardID     string
	Position    float64
	AssigneeIDs []string
	DueDate     *time.Time
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

type CardRepository interface {
	Create(ctx context.Context, card *Card) error
	FindByID(ctx context.Context, id string) (*Card, error)
	FindByListID(ctx context.Context, listID string) ([]*Card, error)
	FindByBoardID(ctx context.Context, boardID string) ([]*Card, error)
	Update(ctx context.Context, card *Card) error
	// DeleteCascade soft-deletes the card and its comments and attachments in
	// a single transaction.
	DeleteCascade(ctx context.Context, id string) error
	AddAssignee(ctx context.Context, cardID, userID string) error
	RemoveAssignee(ctx context.Context, cardID, userID string) error
	// MaxPosition returns the highest position among live cards in the list,
	// excluding excludeID (the card being moved). ok is false when the list
	// holds no other cards.
	MaxPosition(ctx context.Context, listID, excludeID string) (pos float64, ok bool, err error)
	// Move atomically re-homes the card and assigns its new position. The
	// list reference and position change in one statement so no reader ever
	// observes a half-moved card.
	Move(ctx context.Context, id, listID string, position float64) error
	// RenumberPositions reassigns i*gap to the list's cards in their current
	// order, inside one transaction.
	RenumberPositions(ctx context.Context, listID string, gap float64) error
	// FindDenseLists returns list ids whose minimum inter-card gap has fallen
	// below minGap.
	FindDenseLists(ctx context.Context, minGap float64) ([]string, error)
}

type pgCardRepository struct {
	pool *pgxpool.Pool
}

func NewCardRepository(pool *pgxpool.Pool) CardRepository {
	return &pgCardRepository{pool: pool}
}

func (r *pgCardRepository) Create(ctx context.Context, card *Card) error {
	query := `
		INSERT INTO cards (title, description, list_id, board_id, position, assignee_ids, due_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		card.Title, card.Description, card.ListID, card.BoardID,
		card.Position, card.AssigneeIDs, card.DueDate, card.CreatedBy,
	).Scan(&card.ID, &card.CreatedAt, &card.UpdatedAt)
}

func (r *pgCardRepository) FindByID(ctx context.Context, id string) (*Card, error) {
	query := `
		SELECT id, title, description, list_id, board_id, position, assignee_ids, due_date, created_by, created_at, updated_at, deleted_at
		FROM cards WHERE id = $1 AND deleted_at IS NULL
	`
	c := &Card{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Title, &c.Description, &c.ListID, &c.BoardID, &c.Position,
		&c.AssigneeIDs, &c.DueDate, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *pgCardRepository) FindByListID(ctx context.Context, listID string) ([]*Card, error) {
	query := `
		SELECT id, title, description, list_id, board_id, position, assignee_ids, due_date, created_by, created_at, updated_at, deleted_at
		FROM cards
		WHERE list_id = $1 AND deleted_at IS NULL
		ORDER BY position
	`
	return r.queryCards(ctx, query, listID)
}

func (r *pgCardRepository) FindByBoardID(ctx context.Context, boardID string) ([]*Card, error) {
	query := `
		SELECT id, title, description, list_id, board_id, position, assignee_ids, due_date, created_by, created_at, updated_at, deleted_at
		FROM cards
		WHERE board_id = $1 AND deleted_at IS NULL
		ORDER BY list_id, position
	`
	return r.queryCards(ctx, query, boardID)
}

func (r *pgCardRepository) queryCards(ctx context.Context, query string, arg interface{}) ([]*Card, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []*Card
	for rows.Next() {
		c := &Card{}
		if err := rows.Scan(
			&c.ID, &c.Title, &c.Description, &c.ListID, &c.BoardID, &c.Position,
			&c.AssigneeIDs, &c.DueDate, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
		); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (r *pgCardRepository) Update(ctx context.Context, card *Card) error {
	query := `
		UPDATE cards
		SET title = $2, description = $3, due_date = $4, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		card.ID, card.Title, card.Description, card.DueDate,
	).Scan(&card.UpdatedAt)
}

func (r *pgCardRepository) DeleteCascade(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := softDeleteSubtree(ctx, tx, nil, nil, []string{id}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *pgCardRepository) AddAssignee(ctx context.Context, cardID, userID string) error {
	query := `
		UPDATE cards
		SET assignee_ids = array_append(assignee_ids, $2), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND NOT ($2 = ANY(assignee_ids))
	`
	_, err := r.pool.Exec(ctx, query, cardID, userID)
	return err
}

func (r *pgCardRepository) RemoveAssignee(ctx context.Context, cardID, userID string) error {
	query := `
		UPDATE cards
		SET assignee_ids = array_remove(assignee_ids, $2), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	_, err := r.pool.Exec(ctx, query, cardID, userID)
	return err
}

func (r *pgCardRepository) MaxPosition(ctx context.Context, listID, excludeID string) (float64, bool, error) {
	query := `
		SELECT MAX(position) FROM cards
		WHERE list_id = $1 AND id <> $2 AND deleted_at IS NULL
	`
	var max *float64
	if err := r.pool.QueryRow(ctx, query, listID, excludeID).Scan(&max); err != nil {
		return 0, false, err
	}
	if max == nil {
		return 0, false, nil
	}
	return *max, true, nil
}

func (r *pgCardRepository) Move(ctx context.Context, id, listID string, position float64) error {
	// The denormalized board reference follows the target list.
	query := `
		UPDATE cards
		SET list_id = $2,
			board_id = (SELECT board_id FROM lists WHERE id = $2),
			position = $3,
			updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	_, err := r.pool.Exec(ctx, query, id, listID, position)
	return err
}

func (r *pgCardRepository) RenumberPositions(ctx context.Context, listID string, gap float64) error {
	query := `
		UPDATE cards c
		SET position = ranked.rn * $2, updated_at = NOW()
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY position, id) AS rn
			FROM cards
			WHERE list_id = $1 AND deleted_at IS NULL
		) ranked
		WHERE c.id = ranked.id
	`
	_, err := r.pool.Exec(ctx, query, listID, gap)
	return err
}

func (r *pgCardRepository) FindDenseLists(ctx context.Context, minGap float64) ([]string, error) {
	query := `
		SELECT DISTINCT list_id FROM (
			SELECT list_id,
			       position - LAG(position) OVER (PARTITION BY list_id ORDER BY position) AS gap
			FROM cards
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
