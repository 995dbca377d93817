package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hiveboard/hiveboard-backend/internal/api/middleware"
	"github.com/hiveboard/hiveboard-backend/internal/models"
	"github.com/hiveboard/hiveboard-backend/internal/repository"
	"github.com/hiveboard/hiveboard-backend/internal/service"
)

// ============================================
// Attachment Handler
// ============================================

type AttachmentHandler struct {
	attachmentService service.AttachmentService
}

func (h *AttachmentHandler) ListForCard(c *gin.Context) {
	userID := middleware.UserID(c)
	cardID := c.Param("id")

	attachments, err := h.attachmentService.GetByCardID(c.Request.Context(), userID, cardID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]models.AttachmentResponse, len(attachments))
	for i, a := range attachments {
		response[i] = toAttachmentResponse(a)
	}

	c.JSON(http.StatusOK, response)
}

func (h *AttachmentHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	cardID := c.Param("id")

	var req models.CreateAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attachment := &repository.Attachment{
		FileName:  req.FileName,
		URL:       req.URL,
		SizeBytes: req.SizeBytes,
	}

	created, err := h.attachmentService.Create(c.Request.Context(), userID, cardID, attachment)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toAttachmentResponse(created))
}

func (h *AttachmentHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var req models.UpdateAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attachment, err := h.attachmentService.Update(c.Request.Context(), userID, id, req.FileName)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAttachmentResponse(attachment))
}

func (h *AttachmentHandler) Delete(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")

	if err := h.attachmentService.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
