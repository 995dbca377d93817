package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hiveboard/hiveboard-backend/internal/api/middleware"
	"github.com/hiveboard/hiveboard-backend/internal/authz"
	"github.com/hiveboard/hiveboard-backend/internal/models"
	"github.com/hiveboard/hiveboard-backend/internal/repository"
	"github.com/hiveboard/hiveboard-backend/internal/service"
)

// ============================================
// Workspace Handler
// ============================================

type WorkspaceHandler struct {
	workspaceService service.WorkspaceService
}

func (h *WorkspaceHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	workspaces, err := h.workspaceService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]models.WorkspaceResponse, len(workspaces))
	for i, ws := range workspaces {
		response[i] = toWorkspaceResponse(ws)
	}

	c.JSON(http.StatusOK, response)
}

func (h *WorkspaceHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	workspace := &repository.Workspace{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Visibility != nil {
		workspace.Visibility = *req.Visibility
	}
	if req.InvitePolicy != nil {
		workspace.InvitePolicy = *req.InvitePolicy
	}
	if req.BoardPolicy != nil {
		workspace.BoardPolicy = *req.BoardPolicy
	}

	created, err := h.workspaceService.Create(c.Request.Context(), userID, workspace)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toWorkspaceResponse(created))
}

func (h *WorkspaceHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)
	id := c.Param("id")

	workspace, err := h.workspaceService.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toWorkspaceResponse(workspace))
}

func (h *WorkspaceHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var req models.UpdateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	workspace, err := h.workspaceService.Update(c.Request.Context(), userID, id, service.WorkspaceUpdate{
		Name:         req.Name,
		Description:  req.Description,
		Visibility:   req.Visibility,
		InvitePolicy: req.InvitePolicy,
		BoardPolicy:  req.BoardPolicy,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toWorkspaceResponse(workspace))
}

func (h *WorkspaceHandler) Delete(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")

	if err := h.workspaceService.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

func (h *WorkspaceHandler) ListMembers(c *gin.Context) {
	userID := middleware.UserID(c)
	id := c.Param("id")

	members, err := h.workspaceService.GetMembers(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]models.WorkspaceMemberResponse, len(members))
	for i, m := range members {
		response[i] = toWorkspaceMemberResponse(m)
	}

	c.JSON(http.StatusOK, response)
}

func (h *WorkspaceHandler) AddMember(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var req models.AddWorkspaceMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.workspaceService.AddMember(c.Request.Context(), userID, id, req.UserID, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toWorkspaceMemberResponse(member))
}

func (h *WorkspaceHandler) UpdateMemberRole(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	memberID := c.Param("userId")

	var req models.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.workspaceService.UpdateMemberRole(c.Request.Context(), userID, id, memberID, req.Role); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	memberID := c.Param("userId")

	if err := h.workspaceService.RemoveMember(c.Request.Context(), userID, id, memberID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// Capabilities returns the actions the caller may perform against the entity
// chain described by the query parameters. The deepest supplied id wins; the
// rest of the chain is inferred server side.
func (h *WorkspaceHandler) Capabilities(c *gin.Context) {
	userID := middleware.UserID(c)

	ids := authz.Identifiers{
		WorkspaceID:  c.Query("workspaceId"),
		BoardID:      c.Query("boardId"),
		ListID:       c.Query("listId"),
		CardID:       c.Query("cardId"),
		CommentID:    c.Query("commentId"),
		AttachmentID: c.Query("attachmentId"),
	}

	actions, err := h.workspaceService.Capabilities(c.Request.Context(), userID, ids)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"actions": actions})
}
