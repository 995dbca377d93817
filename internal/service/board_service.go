package service

import (
	"context"
	"log"
	"time"

	"github.com/hiveboard/hiveboard-backend/internal/authz"
	"github.com/hiveboard/hiveboard-backend/internal/db"
	"github.com/hiveboard/hiveboard-backend/internal/errs"
	"github.com/hiveboard/hiveboard-backend/internal/notification"
	"github.com/hiveboard/hiveboard-backend/internal/repository"
	"github.com/hiveboard/hiveboard-backend/internal/socket"
	"github.com/hiveboard/hiveboard-backend/internal/types"
)

// boardSnapshotTTL bounds how stale a cached board view can get if an
// invalidation is ever missed.
const boardSnapshotTTL = 5 * time.Minute

// ============================================
// Board Service
// ============================================

type BoardService interface {
	Create(ctx context.Context, actorID, workspaceID string, board *repository.Board) (*repository.Board, error)
	GetByID(ctx context.Context, actorID, id string) (*repository.Board, error)
	GetSnapshot(ctx context.Context, actorID, id string) (*BoardSnapshot, error)
	ListForWorkspace(ctx context.Context, actorID, workspaceID string) ([]*repository.Board, error)
	Update(ctx context.Context, actorID, id string, update BoardUpdate) (*repository.Board, error)
	Delete(ctx context.Context, actorID, id string) error
	GetMembers(ctx context.Context, actorID, id string) ([]*repository.BoardMember, error)
	AddMember(ctx context.Context, actorID, boardID, userID, role string) (*repository.BoardMember, error)
	UpdateMemberRole(ctx context.Context, actorID, boardID, userID, role string) error
	RemoveMember(ctx context.Context, actorID, boardID, userID string) error
}

// BoardUpdate carries the optional fields of a board update.
type BoardUpdate struct {
	Name        *string
	Description *string
	Visibility  *string
}

// BoardSnapshot is the full renderable state of a board: the board itself
// plus its lists and cards in position order.
type BoardSnapshot struct {
	Board *repository.Board  `json:"board"`
	Lists []*repository.List `json:"lists"`
	Cards []*repository.Card `json:"cards"`
}

type boardService struct {
	boardRepo   repository.BoardRepository
	listRepo    repository.ListRepository
	cardRepo    repository.CardRepository
	userRepo    repository.UserRepository
	access      *accessControl
	redis       *db.RedisDB
	notifSvc    *notification.Service
	broadcaster *socket.Broadcaster
}

func NewBoardService(
	boardRepo repository.BoardRepository,
	listRepo repository.ListRepository,
	cardRepo repository.CardRepository,
	userRepo repository.UserRepository,
	access *accessControl,
	redis *db.RedisDB,
	notifSvc *notification.Service,
	broadcaster *socket.Broadcaster,
) BoardService {
	return &boardService{
		boardRepo:   boardRepo,
		listRepo:    listRepo,
		cardRepo:    cardRepo,
		userRepo:    userRepo,
		access:      access,
		redis:       redis,
		notifSvc:    notifSvc,
		broadcaster: broadcaster,
	}
}

func (s *boardService) Create(ctx context.Context, actorID, workspaceID string, board *repository.Board) (*repository.Board, error) {
	if _, err := s.access.require(ctx, actorID, authz.Identifiers{WorkspaceID: workspaceID}, authz.WorkspaceCreateBoard); err != nil {
		return nil, err
	}

	board.WorkspaceID = workspaceID
	board.OwnerID = actorID
	if board.Visibility == "" {
		board.Visibility = types.BoardWorkspace
	}
	if !types.IsValidBoardVisibility(board.Visibility) {
		return nil, errs.Validation("invalid board visibility %q", board.Visibility)
	}

	if err := s.boardRepo.Create(ctx, board); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastBoardCreated(workspaceID, map[string]interface{}{
			"id":          board.ID,
			"name":        board.Name,
			"workspaceId": workspaceID,
		}, actorID)
	}

	return board, nil
}

func (s *boardService) GetByID(ctx context.Context, actorID, id string) (*repository.Board, error) {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{BoardID: id}, authz.BoardView)
	if err != nil {
		return nil, err
	}
	return rc.Board, nil
}

func (s *boardService) GetSnapshot(ctx context.Context, actorID, id string) (*BoardSnapshot, error) {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{BoardID: id}, authz.BoardView)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		var cached BoardSnapshot
		found, err := s.redis.GetBoardSnapshot(ctx, id, &cached)
		if err != nil {
			log.Printf("[Board] Snapshot cache read failed for %s: %v", id, err)
		} else if found {
			return &cached, nil
		}
	}

	lists, err := s.listRepo.FindByBoardID(ctx, id)
	if err != nil {
		return nil, err
	}
	cards, err := s.cardRepo.FindByBoardID(ctx, id)
	if err != nil {
		return nil, err
	}

	snapshot := &BoardSnapshot{Board: rc.Board, Lists: lists, Cards: cards}

	if s.redis != nil {
		if err := s.redis.SetBoardSnapshot(ctx, id, snapshot, boardSnapshotTTL); err != nil {
			log.Printf("[Board] Snapshot cache write failed for %s: %v", id, err)
		}
	}

	return snapshot, nil
}

func (s *boardService) ListForWorkspace(ctx context.Context, actorID, workspaceID string) ([]*repository.Board, error) {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{WorkspaceID: workspaceID}, authz.WorkspaceView)
	if err != nil {
		return nil, err
	}

	boards, err := s.boardRepo.FindByWorkspaceID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	// Filter by per-board visibility. Each check reuses the workspace part of
	// the resolved context and swaps in the candidate board.
	visible := make([]*repository.Board, 0, len(boards))
	for _, board := range boards {
		members, err := s.boardRepo.FindMembers(ctx, board.ID)
		if err != nil {
			return nil, err
		}
		boardCtx := &authz.ResourceContext{
			Workspace:        rc.Workspace,
			WorkspaceMembers: rc.WorkspaceMembers,
			Board:            board,
			BoardMembers:     members,
		}
		if s.access.engine.Resolve(actorID, boardCtx).Has(authz.BoardView) {
			visible = append(visible, board)
		}
	}
	return visible, nil
}

func (s *boardService) Update(ctx context.Context, actorID, id string, update BoardUpdate) (*repository.Board, error) {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{BoardID: id}, authz.BoardEdit)
	if err != nil {
		return nil, err
	}

	board := rc.Board
	if update.Name != nil {
		board.Name = *update.Name
	}
	if update.Description != nil {
		board.Description = update.Description
	}
	if update.Visibility != nil {
		if !types.IsValidBoardVisibility(*update.Visibility) {
			return nil, errs.Validation("invalid board visibility %q", *update.Visibility)
		}
		board.Visibility = *update.Visibility
	}

	if err := s.boardRepo.Update(ctx, board); err != nil {
		return nil, err
	}
	s.invalidateSnapshot(ctx, id)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastBoardUpdated(id, map[string]interface{}{
			"id":         board.ID,
			"name":       board.Name,
			"visibility": board.Visibility,
		}, actorID)
	}

	return board, nil
}

func (s *boardService) Delete(ctx context.Context, actorID, id string) error {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{BoardID: id}, authz.BoardDelete)
	if err != nil {
		return err
	}

	if err := s.boardRepo.DeleteCascade(ctx, id); err != nil {
		return err
	}
	s.invalidateSnapshot(ctx, id)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastBoardDeleted(rc.Board.WorkspaceID, id, actorID)
	}
	return nil
}

func (s *boardService) GetMembers(ctx context.Context, actorID, id string) ([]*repository.BoardMember, error) {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{BoardID: id}, authz.BoardView)
	if err != nil {
		return nil, err
	}
	return rc.BoardMembers, nil
}

func (s *boardService) AddMember(ctx context.Context, actorID, boardID, userID, role string) (*repository.BoardMember, error) {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{BoardID: boardID}, authz.BoardManageMembers)
	if err != nil {
		return nil, err
	}

	if !types.IsValidRole(role) {
		return nil, errs.Validation("invalid role %q", role)
	}
	if rc.Board.OwnerID == userID {
		return nil, errs.Conflict("user is the board owner")
	}
	if existing, err := s.boardRepo.FindMember(ctx, boardID, userID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, errs.Conflict("user is already a member")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.NotFound("user")
	}

	member := &repository.BoardMember{
		BoardID: boardID,
		UserID:  userID,
		Role:    role,
	}
	if err := s.boardRepo.AddMember(ctx, member); err != nil {
		return nil, err
	}
	member.User = user

	if s.notifSvc != nil {
		s.notifSvc.SendMemberAdded(ctx, userID, rc.Board.Name, "board", boardID)
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastMemberAdded(s.broadcaster.BoardRoom(boardID), map[string]interface{}{
			"boardId": boardID,
			"userId":  userID,
			"role":    role,
		}, actorID)
	}

	return member, nil
}

func (s *boardService) UpdateMemberRole(ctx context.Context, actorID, boardID, userID, role string) error {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{BoardID: boardID}, authz.BoardManageMembers)
	if err != nil {
		return err
	}

	if !types.IsValidRole(role) {
		return errs.Validation("invalid role %q", role)
	}
	if rc.Board.OwnerID == userID {
		return errs.Validation("the board owner has no membership role")
	}

	member, err := s.boardRepo.FindMember(ctx, boardID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return errs.NotFound("board member")
	}

	if err := s.boardRepo.UpdateMemberRole(ctx, boardID, userID, role); err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastMemberRoleUpdated(s.broadcaster.BoardRoom(boardID), userID, role, actorID)
	}
	return nil
}

func (s *boardService) RemoveMember(ctx context.Context, actorID, boardID, userID string) error {
	if actorID != userID {
		if _, err := s.access.require(ctx, actorID, authz.Identifiers{BoardID: boardID}, authz.BoardManageMembers); err != nil {
			return err
		}
	}

	member, err := s.boardRepo.FindMember(ctx, boardID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return errs.NotFound("board member")
	}

	if err := s.boardRepo.RemoveMember(ctx, boardID, userID); err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastMemberRemoved(s.broadcaster.BoardRoom(boardID), userID, actorID)
	}
	return nil
}

func (s *boardService) invalidateSnapshot(ctx context.Context, boardID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.InvalidateBoard(ctx, boardID); err != nil {
		log.Printf("[Board] Snapshot invalidation failed for %s: %v", boardID, err)
	}
}
