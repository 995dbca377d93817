package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hiveboard/hiveboard-backend/internal/errs"
	"github.com/hiveboard/hiveboard-backend/internal/models"
	"github.com/hiveboard/hiveboard-backend/internal/repository"
	"github.com/hiveboard/hiveboard-backend/internal/service"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Workspace    *WorkspaceHandler
	Board        *BoardHandler
	List         *ListHandler
	Card         *CardHandler
	Comment      *CommentHandler
	Attachment   *AttachmentHandler
	Invitation   *InvitationHandler
	Notification *NotificationHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:         &AuthHandler{authService: services.Auth},
		User:         &UserHandler{userService: services.User},
		Workspace:    &WorkspaceHandler{workspaceService: services.Workspace},
		Board:        &BoardHandler{boardService: services.Board},
		List:         &ListHandler{listService: services.List},
		Card:         &CardHandler{cardService: services.Card},
		Comment:      &CommentHandler{commentService: services.Comment},
		Attachment:   &AttachmentHandler{attachmentService: services.Attachment},
		Invitation:   &InvitationHandler{invitationService: services.Invitation},
		Notification: &NotificationHandler{notificationService: services.Notification},
	}
}

// respondError maps service errors to HTTP status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errs.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errs.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errs.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errs.IsForbidden(err):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// ============================================
// Response Mappers
// ============================================

func toUserResponse(u *repository.User) models.UserResponse {
	return models.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}

func toUserInfo(u *repository.User) *models.UserInfo {
	if u == nil {
		return nil
	}
	return &models.UserInfo{
		ID:     u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Avatar: u.Avatar,
	}
}

func toWorkspaceResponse(w *repository.Workspace) models.WorkspaceResponse {
	return models.WorkspaceResponse{
		ID:           w.ID,
		Name:         w.Name,
		Description:  w.Description,
		OwnerID:      w.OwnerID,
		Visibility:   w.Visibility,
		InvitePolicy: w.InvitePolicy,
		BoardPolicy:  w.BoardPolicy,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}

func toWorkspaceMemberResponse(m *repository.WorkspaceMember) models.WorkspaceMemberResponse {
	return models.WorkspaceMemberResponse{
		ID:          m.ID,
		WorkspaceID: m.WorkspaceID,
		UserID:      m.UserID,
		Role:        m.Role,
		JoinedAt:    m.JoinedAt,
		User:        toUserInfo(m.User),
	}
}

func toBoardResponse(b *repository.Board) models.BoardResponse {
	return models.BoardResponse{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		WorkspaceID: b.WorkspaceID,
		OwnerID:     b.OwnerID,
		Visibility:  b.Visibility,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toBoardMemberResponse(m *repository.BoardMember) models.BoardMemberResponse {
	return models.BoardMemberResponse{
		ID:       m.ID,
		BoardID:  m.BoardID,
		UserID:   m.UserID,
		Role:     m.Role,
		JoinedAt: m.JoinedAt,
		User:     toUserInfo(m.User),
	}
}

func toListResponse(l *repository.List) models.ListResponse {
	return models.ListResponse{
		ID:        l.ID,
		Name:      l.Name,
		BoardID:   l.BoardID,
		Position:  l.Position,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func toCardResponse(card *repository.Card) models.CardResponse {
	return models.CardResponse{
		ID:          card.ID,
		Title:       card.Title,
		Description: card.Description,
		ListID:      card.ListID,
		BoardID:     card.BoardID,
		Position:    card.Position,
		AssigneeIDs: safeStringSlice(card.AssigneeIDs),
		DueDate:     card.DueDate,
		CreatedBy:   card.CreatedBy,
		CreatedAt:   card.CreatedAt,
		UpdatedAt:   card.UpdatedAt,
	}
}

func toCommentResponse(cm *repository.Comment) models.CommentResponse {
	return models.CommentResponse{
		ID:        cm.ID,
		Body:      cm.Body,
		CardID:    cm.CardID,
		AuthorID:  cm.AuthorID,
		Author:    toUserInfo(cm.Author),
		CreatedAt: cm.CreatedAt,
		UpdatedAt: cm.UpdatedAt,
	}
}

func toAttachmentResponse(a *repository.Attachment) models.AttachmentResponse {
	return models.AttachmentResponse{
		ID:         a.ID,
		CardID:     a.CardID,
		FileName:   a.FileName,
		URL:        a.URL,
		SizeBytes:  a.SizeBytes,
		UploadedBy: a.UploadedBy,
		CreatedAt:  a.CreatedAt,
	}
}

func toInvitationResponse(inv *repository.Invitation) models.InvitationResponse {
	return models.InvitationResponse{
		ID:          inv.ID,
		WorkspaceID: inv.WorkspaceID,
		Email:       inv.Email,
		Role:        inv.Role,
		InvitedBy:   inv.InvitedBy,
		Status:      inv.Status,
		ExpiresAt:   inv.ExpiresAt,
		CreatedAt:   inv.CreatedAt,
	}
}

func toNotificationResponse(n *repository.Notification) models.NotificationResponse {
	var data *map[string]interface{}
	if n.Data != nil {
		data = &n.Data
	}
	return models.NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		Data:      data,
		CreatedAt: n.CreatedAt,
	}
}

// Helper to ensure nil slices become empty slices
func safeStringSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
