package service

import (
	"context"

	"github.com/hiveboard/hiveboard-backend/internal/authz"
	"github.com/hiveboard/hiveboard-backend/internal/notification"
	"github.com/hiveboard/hiveboard-backend/internal/repository"
	"github.com/hiveboard/hiveboard-backend/internal/socket"
)

// ============================================
// Comment Service
// ============================================

type CommentService interface {
	Create(ctx context.Context, actorID, cardID, body string) (*repository.Comment, error)
	GetByCardID(ctx context.Context, actorID, cardID string) ([]*repository.Comment, error)
	Update(ctx context.Context, actorID, id, body string) (*repository.Comment, error)
	Delete(ctx context.Context, actorID, id string) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	access      *accessControl
	notifSvc    *notification.Service
	broadcaster *socket.Broadcaster
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	access *accessControl,
	notifSvc *notification.Service,
	broadcaster *socket.Broadcaster,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		access:      access,
		notifSvc:    notifSvc,
		broadcaster: broadcaster,
	}
}

func (s *commentService) Create(ctx context.Context, actorID, cardID, body string) (*repository.Comment, error) {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{CardID: cardID}, authz.CommentCreate)
	if err != nil {
		return nil, err
	}

	comment := &repository.Comment{
		Body:     body,
		CardID:   cardID,
		AuthorID: actorID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if s.notifSvc != nil {
		s.notifSvc.SendCardCommented(ctx, rc.Card.AssigneeIDs, actorID, rc.Card.Title, cardID, rc.Card.BoardID)
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastCommentAdded(rc.Card.BoardID, cardID, map[string]interface{}{
			"id":       comment.ID,
			"body":     comment.Body,
			"authorId": comment.AuthorID,
		}, actorID)
	}

	return comment, nil
}

func (s *commentService) GetByCardID(ctx context.Context, actorID, cardID string) ([]*repository.Comment, error) {
	if _, err := s.access.require(ctx, actorID, authz.Identifiers{CardID: cardID}, authz.CardView); err != nil {
		return nil, err
	}
	return s.commentRepo.FindByCardID(ctx, cardID)
}

func (s *commentService) Update(ctx context.Context, actorID, id, body string) (*repository.Comment, error) {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{CommentID: id}, authz.CommentUpdate)
	if err != nil {
		return nil, err
	}

	comment := rc.Comment
	comment.Body = body

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastCommentUpdated(rc.Card.BoardID, comment.CardID, map[string]interface{}{
			"id":   comment.ID,
			"body": comment.Body,
		}, actorID)
	}

	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, actorID, id string) error {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{CommentID: id}, authz.CommentDelete)
	if err != nil {
		return err
	}

	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastCommentDeleted(rc.Card.BoardID, rc.Comment.CardID, id, actorID)
	}
	return nil
}
