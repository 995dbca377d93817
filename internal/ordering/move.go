package ordering

import (
	"context"
	"errors"

	"github.com/hiveboard/hiveboard-backend/internal/errs"
	"github.com/hiveboard/hiveboard-backend/internal/repository"
)

// MoveCoordinator orchestrates list and card moves: it resolves the moved
// entity, the target container and the optional neighbors, delegates the
// position computation to Allocate, and persists container + position as a
// single atomic update. When Allocate reports gap exhaustion it renumbers
// the target container and retries once.
type MoveCoordinator struct {
	listRepo repository.ListRepository
	cardRepo repository.CardRepository
}

func NewMoveCoordinator(listRepo repository.ListRepository, cardRepo repository.CardRepository) *MoveCoordinator {
	return &MoveCoordinator{listRepo: listRepo, cardRepo: cardRepo}
}

// MoveCard moves a card into targetListID (which may be its current list),
// placed between the optional prev and next cards. Neighbors are validated
// against the target list, not the card's current one.
func (m *MoveCoordinator) MoveCard(ctx context.Context, cardID, targetListID string, prevID, nextID string) (*repository.Card, error) {
	card, err := m.cardRepo.FindByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, errs.NotFound("card")
	}

	targetList, err := m.listRepo.FindByID(ctx, targetListID)
	if err != nil {
		return nil, err
	}
	if targetList == nil {
		return nil, errs.NotFound("list")
	}
	if targetList.BoardID != card.BoardID {
		return nil, errs.Validation("target list belongs to a different board")
	}

	position, err := m.allocateCardPosition(ctx, card, targetList, prevID, nextID)
	if errors.Is(err, ErrGapExhausted) {
		// Renumber the crowded list, then recompute against fresh positions.
		if err := m.cardRepo.RenumberPositions(ctx, targetListID, Gap); err != nil {
			return nil, err
		}
		position, err = m.allocateCardPosition(ctx, card, targetList, prevID, nextID)
	}
	if err != nil {
		return nil, err
	}

	if err := m.cardRepo.Move(ctx, card.ID, targetListID, position); err != nil {
		return nil, err
	}
	card.ListID = targetListID
	card.BoardID = targetList.BoardID
	card.Position = position
	return card, nil
}

func (m *MoveCoordinator) allocateCardPosition(ctx context.Context, card *repository.Card, targetList *repository.List, prevID, nextID string) (float64, error) {
	prev, err := m.cardNeighbor(ctx, prevID, "prev", targetList)
	if err != nil {
		return 0, err
	}
	next, err := m.cardNeighbor(ctx, nextID, "next", targetList)
	if err != nil {
		return 0, err
	}

	maxPos, hasSiblings, err := m.cardRepo.MaxPosition(ctx, targetList.ID, card.ID)
	if err != nil {
		return 0, err
	}
	return Allocate(maxPos, hasSiblings, prev, next)
}

func (m *MoveCoordinator) cardNeighbor(ctx context.Context, id, kind string, targetList *repository.List) (*Neighbor, error) {
	if id == "" {
		return nil, nil
	}
	card, err := m.cardRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, errs.Validation("%s card %s not found", kind, id)
	}
	n := &Neighbor{ID: card.ID, Container: card.ListID, Board: card.BoardID, Position: card.Position}
	if err := ValidateNeighbor(n, kind, targetList.ID, targetList.BoardID); err != nil {
		return nil, err
	}
	return n, nil
}

// MoveList moves a list into targetBoardID (which may be its current
// board), placed between the optional prev and next lists.
func (m *MoveCoordinator) MoveList(ctx context.Context, listID, targetBoardID string, prevID, nextID string) (*repository.List, error) {
	list, err := m.listRepo.FindByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, errs.NotFound("list")
	}
	if targetBoardID == "" {
		targetBoardID = list.BoardID
	}

	position, err := m.allocateListPosition(ctx, list, targetBoardID, prevID, nextID)
	if errors.Is(err, ErrGapExhausted) {
		if err := m.listRepo.RenumberPositions(ctx, targetBoardID, Gap); err != nil {
			return nil, err
		}
		position, err = m.allocateListPosition(ctx, list, targetBoardID, prevID, nextID)
	}
	if err != nil {
		return nil, err
	}

	if err := m.listRepo.Move(ctx, list.ID, targetBoardID, position); err != nil {
		return nil, err
	}
	list.BoardID = targetBoardID
	list.Position = position
	return list, nil
}

func (m *MoveCoordinator) allocateListPosition(ctx context.Context, list *repository.List, targetBoardID, prevID, nextID string) (float64, error) {
	prev, err := m.listNeighbor(ctx, prevID, "prev", targetBoardID)
	if err != nil {
		return 0, err
	}
	next, err := m.listNeighbor(ctx, nextID, "next", targetBoardID)
	if err != nil {
		return 0, err
	}

	maxPos, hasSiblings, err := m.listRepo.MaxPosition(ctx, targetBoardID, list.ID)
	if err != nil {
		return 0, err
	}
	return Allocate(maxPos, hasSiblings, prev, next)
}

func (m *MoveCoordinator) listNeighbor(ctx context.Context, id, kind, targetBoardID string) (*Neighbor, error) {
	if id == "" {
		return nil, nil
	}
	list, err := m.listRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, errs.Validation("%s list %s not found", kind, id)
	}
	n := &Neighbor{ID: list.ID, Container: list.BoardID, Position: list.Position}
	if err := ValidateNeighbor(n, kind, targetBoardID, ""); err != nil {
		return nil, err
	}
	return n, nil
}
