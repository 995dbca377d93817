package service

import (
	"context"

	"github.com/hiveboard/hiveboard-backend/internal/authz"
	"github.com/hiveboard/hiveboard-backend/internal/repository"
	"github.com/hiveboard/hiveboard-backend/internal/socket"
)

// ============================================
// Attachment Service
// ============================================

type AttachmentService interface {
	Create(ctx context.Context, actorID, cardID string, attachment *repository.Attachment) (*repository.Attachment, error)
	GetByCardID(ctx context.Context, actorID, cardID string) ([]*repository.Attachment, error)
	Update(ctx context.Context, actorID, id string, fileName *string) (*repository.Attachment, error)
	Delete(ctx context.Context, actorID, id string) error
}

type attachmentService struct {
	attachmentRepo repository.AttachmentRepository
	access         *accessControl
	broadcaster    *socket.Broadcaster
}

func NewAttachmentService(
	attachmentRepo repository.AttachmentRepository,
	access *accessControl,
	broadcaster *socket.Broadcaster,
) AttachmentService {
	return &attachmentService{
		attachmentRepo: attachmentRepo,
		access:         access,
		broadcaster:    broadcaster,
	}
}

func (s *attachmentService) Create(ctx context.Context, actorID, cardID string, attachment *repository.Attachment) (*repository.Attachment, error) {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{CardID: cardID}, authz.AttachmentCreate)
	if err != nil {
		return nil, err
	}

	attachment.CardID = cardID
	attachment.UploadedBy = actorID

	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastAttachmentAdded(rc.Card.BoardID, cardID, map[string]interface{}{
			"id":       attachment.ID,
			"fileName": attachment.FileName,
			"url":      attachment.URL,
		}, actorID)
	}

	return attachment, nil
}

func (s *attachmentService) GetByCardID(ctx context.Context, actorID, cardID string) ([]*repository.Attachment, error) {
	if _, err := s.access.require(ctx, actorID, authz.Identifiers{CardID: cardID}, authz.CardView); err != nil {
		return nil, err
	}
	return s.attachmentRepo.FindByCardID(ctx, cardID)
}

func (s *attachmentService) Update(ctx context.Context, actorID, id string, fileName *string) (*repository.Attachment, error) {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{AttachmentID: id}, authz.AttachmentUpdate)
	if err != nil {
		return nil, err
	}

	attachment := rc.Attachment
	if fileName != nil {
		attachment.FileName = *fileName
	}

	if err := s.attachmentRepo.Update(ctx, attachment); err != nil {
		return nil, err
	}
	return attachment, nil
}

func (s *attachmentService) Delete(ctx context.Context, actorID, id string) error {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{AttachmentID: id}, authz.AttachmentDelete)
	if err != nil {
		return err
	}

	if err := s.attachmentRepo.Delete(ctx, id); err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastAttachmentDeleted(rc.Card.BoardID, rc.Attachment.CardID, id, actorID)
	}
	return nil
}
