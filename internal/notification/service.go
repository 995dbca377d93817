package notification

import (
	"context"
	"fmt"

	"github.com/hiveboard/hiveboard-backend/internal/repository"
	"github.com/hiveboard/hiveboard-backend/internal/socket"
)

// Notification types
const (
	TypeCardAssigned        = "CARD_ASSIGNED"
	TypeCardUnassigned      = "CARD_UNASSIGNED"
	TypeCardCommented       = "CARD_COMMENTED"
	TypeCardDueSoon         = "CARD_DUE_SOON"
	TypeWorkspaceInvitation = "WORKSPACE_INVITATION"
	TypeMemberAdded         = "MEMBER_ADDED"
	TypeMemberRemoved       = "MEMBER_REMOVED"
	TypeBoardShared         = "BOARD_SHARED"
)

// Service handles creating and delivering notifications
type Service struct {
	notificationRepo repository.NotificationRepository
	broadcaster      *socket.Broadcaster
}

// NewService creates a new notification service
func NewService(notificationRepo repository.NotificationRepository) *Service {
	return &Service{notificationRepo: notificationRepo}
}

// SetBroadcaster wires the WebSocket broadcaster for real-time delivery
func (s *Service) SetBroadcaster(b *socket.Broadcaster) {
	s.broadcaster = b
}

// sendWebSocketNotification pushes a stored notification over WebSocket
func (s *Service) sendWebSocketNotification(notification *repository.Notification) {
	if s.broadcaster == nil || notification == nil {
		return
	}

	s.broadcaster.SendNotification(notification.UserID, map[string]interface{}{
		"id":        notification.ID,
		"type":      notification.Type,
		"title":     notification.Title,
		"message":   notification.Message,
		"data":      notification.Data,
		"read":      notification.Read,
		"createdAt": notification.CreatedAt,
	})
}

// SendCardAssigned notifies a user that they were assigned to a card
func (s *Service) SendCardAssigned(ctx context.Context, userID, cardTitle, cardID, boardID string) error {
	if userID == "" {
		return nil
	}

	notification := &repository.Notification{
		UserID:  userID,
		Type:    TypeCardAssigned,
		Title:   "Card Assigned",
		Message: fmt.Sprintf("You have been assigned to card: %s", cardTitle),
		Read:    false,
		Data: map[string]interface{}{
			"cardId":  cardID,
			"boardId": boardID,
			"action":  "view_card",
		},
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}

	s.sendWebSocketNotification(notification)
	return nil
}

// SendCardCommented notifies card assignees about a new comment
func (s *Service) SendCardCommented(ctx context.Context, userIDs []string, authorID, cardTitle, cardID, boardID string) error {
	var errs []error

	for _, userID := range userIDs {
		if userID == "" || userID == authorID {
			continue
		}

		notification := &repository.Notification{
			UserID:  userID,
			Type:    TypeCardCommented,
			Title:   "New Comment",
			Message: fmt.Sprintf("New comment on card: %s", cardTitle),
			Read:    false,
			Data: map[string]interface{}{
				"cardId":  cardID,
				"boardId": boardID,
				"action":  "view_card",
			},
		}

		if err := s.notificationRepo.Create(ctx, notification); err != nil {
			errs = append(errs, fmt.Errorf("failed to notify user %s: %w", userID, err))
		} else {
			s.sendWebSocketNotification(notification)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors sending comment notifications: %v", errs)
	}
	return nil
}

// SendWorkspaceInvitation notifies an existing user about a workspace invitation
func (s *Service) SendWorkspaceInvitation(ctx context.Context, userID, workspaceName, workspaceID, token string) error {
	if userID == "" {
		return nil
	}

	notification := &repository.Notification{
		UserID:  userID,
		Type:    TypeWorkspaceInvitation,
		Title:   "Workspace Invitation",
		Message: fmt.Sprintf("You have been invited to workspace: %s", workspaceName),
		Read:    false,
		Data: map[string]interface{}{
			"workspaceId": workspaceID,
			"token":       token,
			"action":      "accept_invitation",
		},
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}

	s.sendWebSocketNotification(notification)
	return nil
}

// SendMemberAdded notifies a user that they were added to a workspace or board
func (s *Service) SendMemberAdded(ctx context.Context, userID, entityName, entityType, entityID string) error {
	if userID == "" {
		return nil
	}

	notification := &repository.Notification{
		UserID:  userID,
		Type:    TypeMemberAdded,
		Title:   "Added to " + entityType,
		Message: fmt.Sprintf("You have been added to %s: %s", entityType, entityName),
		Read:    false,
		Data: map[string]interface{}{
			"entityType": entityType,
			"entityId":   entityID,
		},
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}

	s.sendWebSocketNotification(notification)
	return nil
}
