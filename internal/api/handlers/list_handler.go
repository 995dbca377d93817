package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hiveboard/hiveboard-backend/internal/api/middleware"
	"github.com/hiveboard/hiveboard-backend/internal/models"
	"github.com/hiveboard/hiveboard-backend/internal/service"
)

// ============================================
// List Handler
// ============================================

type ListHandler struct {
	listService service.ListService
}

func (h *ListHandler) ListForBoard(c *gin.Context) {
	userID := middleware.UserID(c)
	boardID := c.Param("id")

	lists, err := h.listService.GetByBoardID(c.Request.Context(), userID, boardID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]models.ListResponse, len(lists))
	for i, l := range lists {
		response[i] = toListResponse(l)
	}

	c.JSON(http.StatusOK, response)
}

func (h *ListHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	boardID := c.Param("id")

	var req models.CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := h.listService.Create(c.Request.Context(), userID, boardID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toListResponse(list))
}

func (h *ListHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var req models.UpdateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := h.listService.Update(c.Request.Context(), userID, id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toListResponse(list))
}

func (h *ListHandler) Delete(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")

	if err := h.listService.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

func (h *ListHandler) Move(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var req models.MoveListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	targetBoardID := ""
	if req.TargetBoardID != nil {
		targetBoardID = *req.TargetBoardID
	}
	prevID := ""
	if req.PrevListID != nil {
		prevID = *req.PrevListID
	}
	nextID := ""
	if req.NextListID != nil {
		nextID = *req.NextListID
	}

	list, err := h.listService.Move(c.Request.Context(), userID, id, targetBoardID, prevID, nextID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toListResponse(list))
}
