package service

import (
	"context"
	"log"
	"time"

	"github.com/hiveboard/hiveboard-backend/internal/authz"
	"github.com/hiveboard/hiveboard-backend/internal/db"
	"github.com/hiveboard/hiveboard-backend/internal/errs"
	"github.com/hiveboard/hiveboard-backend/internal/notification"
	"github.com/hiveboard/hiveboard-backend/internal/ordering"
	"github.com/hiveboard/hiveboard-backend/internal/repository"
	"github.com/hiveboard/hiveboard-backend/internal/socket"
)

// ============================================
// Card Service
// ============================================

type CardService interface {
	Create(ctx context.Context, actorID, listID string, card *repository.Card) (*repository.Card, error)
	GetByID(ctx context.Context, actorID, id string) (*repository.Card, error)
	GetByListID(ctx context.Context, actorID, listID string) ([]*repository.Card, error)
	Update(ctx context.Context, actorID, id string, update CardUpdate) (*repository.Card, error)
	Delete(ctx context.Context, actorID, id string) error
	Move(ctx context.Context, actorID, id, targetListID, prevID, nextID string) (*repository.Card, error)
	Assign(ctx context.Context, actorID, cardID, userID string) error
	Unassign(ctx context.Context, actorID, cardID, userID string) error
}

// CardUpdate carries the optional fields of a card update. SetDueDate marks
// an explicit due date change so it can also be cleared.
type CardUpdate struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	SetDueDate  bool
}

type cardService struct {
	cardRepo    repository.CardRepository
	userRepo    repository.UserRepository
	access      *accessControl
	mover       *ordering.MoveCoordinator
	redis       *db.RedisDB
	notifSvc    *notification.Service
	broadcaster *socket.Broadcaster
}

func NewCardService(
	cardRepo repository.CardRepository,
	userRepo repository.UserRepository,
	access *accessControl,
	mover *ordering.MoveCoordinator,
	redis *db.RedisDB,
	notifSvc *notification.Service,
	broadcaster *socket.Broadcaster,
) CardService {
	return &cardService{
		cardRepo:    cardRepo,
		userRepo:    userRepo,
		access:      access,
		mover:       mover,
		redis:       redis,
		notifSvc:    notifSvc,
		broadcaster: broadcaster,
	}
}

func (s *cardService) Create(ctx context.Context, actorID, listID string, card *repository.Card) (*repository.Card, error) {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{ListID: listID}, authz.CardCreate)
	if err != nil {
		return nil, err
	}

	// New cards always append to the end of the list.
	maxPos, ok, err := s.cardRepo.MaxPosition(ctx, listID, "")
	if err != nil {
		return nil, err
	}
	position := ordering.Gap
	if ok {
		position = maxPos + ordering.Gap
	}

	card.ListID = listID
	card.BoardID = rc.List.BoardID
	card.Position = position
	card.CreatedBy = actorID

	if err := s.cardRepo.Create(ctx, card); err != nil {
		return nil, err
	}
	s.invalidateBoard(ctx, card.BoardID)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastCardCreated(card.BoardID, map[string]interface{}{
			"id":       card.ID,
			"title":    card.Title,
			"listId":   card.ListID,
			"boardId":  card.BoardID,
			"position": card.Position,
		}, actorID)
	}

	return card, nil
}

func (s *cardService) GetByID(ctx context.Context, actorID, id string) (*repository.Card, error) {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{CardID: id}, authz.CardView)
	if err != nil {
		return nil, err
	}
	return rc.Card, nil
}

func (s *cardService) GetByListID(ctx context.Context, actorID, listID string) ([]*repository.Card, error) {
	if _, err := s.access.require(ctx, actorID, authz.Identifiers{ListID: listID}, authz.CardView); err != nil {
		return nil, err
	}
	return s.cardRepo.FindByListID(ctx, listID)
}

func (s *cardService) Update(ctx context.Context, actorID, id string, update CardUpdate) (*repository.Card, error) {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{CardID: id}, authz.CardUpdate)
	if err != nil {
		return nil, err
	}

	card := rc.Card
	if update.Title != nil {
		card.Title = *update.Title
	}
	if update.Description != nil {
		card.Description = update.Description
	}
	if update.SetDueDate {
		card.DueDate = update.DueDate
	}

	if err := s.cardRepo.Update(ctx, card); err != nil {
		return nil, err
	}
	s.invalidateBoard(ctx, card.BoardID)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastCardUpdated(card.BoardID, map[string]interface{}{
			"id":     card.ID,
			"title":  card.Title,
			"listId": card.ListID,
		}, actorID)
	}

	return card, nil
}

func (s *cardService) Delete(ctx context.Context, actorID, id string) error {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{CardID: id}, authz.CardDelete)
	if err != nil {
		return err
	}

	if err := s.cardRepo.DeleteCascade(ctx, id); err != nil {
		return err
	}
	s.invalidateBoard(ctx, rc.Card.BoardID)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastCardDeleted(rc.Card.BoardID, id, rc.Card.ListID, actorID)
	}
	return nil
}

func (s *cardService) Move(ctx context.Context, actorID, id, targetListID, prevID, nextID string) (*repository.Card, error) {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{CardID: id}, authz.CardMove)
	if err != nil {
		return nil, err
	}

	moved, err := s.mover.MoveCard(ctx, id, targetListID, prevID, nextID)
	if err != nil {
		return nil, err
	}
	s.invalidateBoard(ctx, rc.Card.BoardID)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastCardMoved(moved.BoardID, map[string]interface{}{
			"id":       moved.ID,
			"listId":   moved.ListID,
			"boardId":  moved.BoardID,
			"position": moved.Position,
		}, actorID)
	}

	return moved, nil
}

func (s *cardService) Assign(ctx context.Context, actorID, cardID, userID string) error {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{CardID: cardID}, authz.CardAssignMember)
	if err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return errs.NotFound("user")
	}
	for _, id := range rc.Card.AssigneeIDs {
		if id == userID {
			return errs.Conflict("user is already assigned")
		}
	}

	if err := s.cardRepo.AddAssignee(ctx, cardID, userID); err != nil {
		return err
	}
	s.invalidateBoard(ctx, rc.Card.BoardID)

	if s.notifSvc != nil && userID != actorID {
		s.notifSvc.SendCardAssigned(ctx, userID, rc.Card.Title, cardID, rc.Card.BoardID)
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastCardAssigned(userID, map[string]interface{}{
			"id":    rc.Card.ID,
			"title": rc.Card.Title,
		}, actorID)
	}

	return nil
}

func (s *cardService) Unassign(ctx context.Context, actorID, cardID, userID string) error {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{CardID: cardID}, authz.CardRemoveMember)
	if err != nil {
		return err
	}

	assigned := false
	for _, id := range rc.Card.AssigneeIDs {
		if id == userID {
			assigned = true
			break
		}
	}
	if !assigned {
		return errs.NotFound("card assignee")
	}

	if err := s.cardRepo.RemoveAssignee(ctx, cardID, userID); err != nil {
		return err
	}
	s.invalidateBoard(ctx, rc.Card.BoardID)
	return nil
}

func (s *cardService) invalidateBoard(ctx context.Context, boardID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.InvalidateBoard(ctx, boardID); err != nil {
		log.Printf("[Card] Snapshot invalidation failed for %s: %v", boardID, err)
	}
}
