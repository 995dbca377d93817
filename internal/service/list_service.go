package service

import (
	"context"
	"log"

	"github.com/hiveboard/hiveboard-backend/internal/authz"
	"github.com/hiveboard/hiveboard-backend/internal/db"
	"github.com/hiveboard/hiveboard-backend/internal/ordering"
	"github.com/hiveboard/hiveboard-backend/internal/repository"
	"github.com/hiveboard/hiveboard-backend/internal/socket"
)

// ============================================
// List Service
// ============================================

type ListService interface {
	Create(ctx context.Context, actorID, boardID, name string) (*repository.List, error)
	GetByBoardID(ctx context.Context, actorID, boardID string) ([]*repository.List, error)
	Update(ctx context.Context, actorID, id string, name *string) (*repository.List, error)
	Delete(ctx context.Context, actorID, id string) error
	Move(ctx context.Context, actorID, id string, targetBoardID, prevID, nextID string) (*repository.List, error)
}

type listService struct {
	listRepo    repository.ListRepository
	access      *accessControl
	mover       *ordering.MoveCoordinator
	redis       *db.RedisDB
	broadcaster *socket.Broadcaster
}

func NewListService(
	listRepo repository.ListRepository,
	access *accessControl,
	mover *ordering.MoveCoordinator,
	redis *db.RedisDB,
	broadcaster *socket.Broadcaster,
) ListService {
	return &listService{
		listRepo:    listRepo,
		access:      access,
		mover:       mover,
		redis:       redis,
		broadcaster: broadcaster,
	}
}

func (s *listService) Create(ctx context.Context, actorID, boardID, name string) (*repository.List, error) {
	if _, err := s.access.require(ctx, actorID, authz.Identifiers{BoardID: boardID}, authz.ListCreate); err != nil {
		return nil, err
	}

	// New lists always append: one past the current tail, or the base gap on
	// an empty board.
	maxPos, ok, err := s.listRepo.MaxPosition(ctx, boardID, "")
	if err != nil {
		return nil, err
	}
	position := ordering.Gap
	if ok {
		position = maxPos + ordering.Gap
	}

	list := &repository.List{
		Name:     name,
		BoardID:  boardID,
		Position: position,
	}
	if err := s.listRepo.Create(ctx, list); err != nil {
		return nil, err
	}
	s.invalidateBoard(ctx, boardID)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastListCreated(boardID, map[string]interface{}{
			"id":       list.ID,
			"name":     list.Name,
			"boardId":  list.BoardID,
			"position": list.Position,
		}, actorID)
	}

	return list, nil
}

func (s *listService) GetByBoardID(ctx context.Context, actorID, boardID string) ([]*repository.List, error) {
	if _, err := s.access.require(ctx, actorID, authz.Identifiers{BoardID: boardID}, authz.BoardView); err != nil {
		return nil, err
	}
	return s.listRepo.FindByBoardID(ctx, boardID)
}

func (s *listService) Update(ctx context.Context, actorID, id string, name *string) (*repository.List, error) {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{ListID: id}, authz.ListUpdate)
	if err != nil {
		return nil, err
	}

	list := rc.List
	if name != nil {
		list.Name = *name
	}

	if err := s.listRepo.Update(ctx, list); err != nil {
		return nil, err
	}
	s.invalidateBoard(ctx, list.BoardID)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastListUpdated(list.BoardID, map[string]interface{}{
			"id":   list.ID,
			"name": list.Name,
		}, actorID)
	}

	return list, nil
}

func (s *listService) Delete(ctx context.Context, actorID, id string) error {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{ListID: id}, authz.ListDelete)
	if err != nil {
		return err
	}

	if err := s.listRepo.DeleteCascade(ctx, id); err != nil {
		return err
	}
	s.invalidateBoard(ctx, rc.List.BoardID)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastListDeleted(rc.List.BoardID, id, actorID)
	}
	return nil
}

func (s *listService) Move(ctx context.Context, actorID, id string, targetBoardID, prevID, nextID string) (*repository.List, error) {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{ListID: id}, authz.ListMove)
	if err != nil {
		return nil, err
	}

	// Moving a list onto another board also requires authoring rights there.
	if targetBoardID != "" && targetBoardID != rc.List.BoardID {
		if _, err := s.access.require(ctx, actorID, authz.Identifiers{BoardID: targetBoardID}, authz.ListCreate); err != nil {
			return nil, err
		}
	}

	moved, err := s.mover.MoveList(ctx, id, targetBoardID, prevID, nextID)
	if err != nil {
		return nil, err
	}

	s.invalidateBoard(ctx, rc.List.BoardID)
	if moved.BoardID != rc.List.BoardID {
		s.invalidateBoard(ctx, moved.BoardID)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastListMoved(moved.BoardID, map[string]interface{}{
			"id":       moved.ID,
			"boardId":  moved.BoardID,
			"position": moved.Position,
		}, actorID)
	}

	return moved, nil
}

func (s *listService) invalidateBoard(ctx context.Context, boardID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.InvalidateBoard(ctx, boardID); err != nil {
		log.Printf("[List] Snapshot invalidation failed for %s: %v", boardID, err)
	}
}
