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
// Card Handler
// ============================================

type CardHandler struct {
	cardService service.CardService
}

func (h *CardHandler) ListForList(c *gin.Context) {
	userID := middleware.UserID(c)
	listID := c.Param("id")

	cards, err := h.cardService.GetByListID(c.Request.Context(), userID, listID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]models.CardResponse, len(cards))
	for i, card := range cards {
		response[i] = toCardResponse(card)
	}

	c.JSON(http.StatusOK, response)
}

func (h *CardHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	listID := c.Param("id")

	var req models.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card := &repository.Card{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}

	created, err := h.cardService.Create(c.Request.Context(), userID, listID, card)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toCardResponse(created))
}

func (h *CardHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)
	id := c.Param("id")

	card, err := h.cardService.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCardResponse(card))
}

func (h *CardHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var req models.UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card, err := h.cardService.Update(c.Request.Context(), userID, id, service.CardUpdate{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		SetDueDate:  req.DueDate != nil,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCardResponse(card))
}

func (h *CardHandler) Delete(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")

	if err := h.cardService.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

func (h *CardHandler) Move(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var req models.MoveCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prevID := ""
	if req.PrevCardID != nil {
		prevID = *req.PrevCardID
	}
	nextID := ""
	if req.NextCardID != nil {
		nextID = *req.NextCardID
	}

	card, err := h.cardService.Move(c.Request.Context(), userID, id, req.TargetListID, prevID, nextID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCardResponse(card))
}

func (h *CardHandler) Assign(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var req models.AssignCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.cardService.Assign(c.Request.Context(), userID, id, req.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

func (h *CardHandler) Unassign(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	assigneeID := c.Param("userId")

	if err := h.cardService.Unassign(c.Request.Context(), userID, id, assigneeID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
