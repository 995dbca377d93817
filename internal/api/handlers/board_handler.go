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
// Board Handler
// ============================================

type BoardHandler struct {
	boardService service.BoardService
}

func (h *BoardHandler) ListForWorkspace(c *gin.Context) {
	userID := middleware.UserID(c)
	workspaceID := c.Param("id")

	boards, err := h.boardService.ListForWorkspace(c.Request.Context(), userID, workspaceID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]models.BoardResponse, len(boards))
	for i, b := range boards {
		response[i] = toBoardResponse(b)
	}

	c.JSON(http.StatusOK, response)
}

func (h *BoardHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	workspaceID := c.Param("id")

	var req models.CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	board := &repository.Board{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Visibility != nil {
		board.Visibility = *req.Visibility
	}

	created, err := h.boardService.Create(c.Request.Context(), userID, workspaceID, board)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBoardResponse(created))
}

func (h *BoardHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)
	id := c.Param("id")

	board, err := h.boardService.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBoardResponse(board))
}

// GetSnapshot returns the board with all its lists and cards in one payload.
func (h *BoardHandler) GetSnapshot(c *gin.Context) {
	userID := middleware.UserID(c)
	id := c.Param("id")

	snapshot, err := h.boardService.GetSnapshot(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	lists := make([]models.ListResponse, len(snapshot.Lists))
	for i, l := range snapshot.Lists {
		lists[i] = toListResponse(l)
	}
	cards := make([]models.CardResponse, len(snapshot.Cards))
	for i, card := range snapshot.Cards {
		cards[i] = toCardResponse(card)
	}

	c.JSON(http.StatusOK, gin.H{
		"board": toBoardResponse(snapshot.Board),
		"lists": lists,
		"cards": cards,
	})
}

func (h *BoardHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var req models.UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	board, err := h.boardService.Update(c.Request.Context(), userID, id, service.BoardUpdate{
		Name:        req.Name,
		Description: req.Description,
		Visibility:  req.Visibility,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBoardResponse(board))
}

func (h *BoardHandler) Delete(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")

	if err := h.boardService.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

func (h *BoardHandler) ListMembers(c *gin.Context) {
	userID := middleware.UserID(c)
	id := c.Param("id")

	members, err := h.boardService.GetMembers(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]models.BoardMemberResponse, len(members))
	for i, m := range members {
		response[i] = toBoardMemberResponse(m)
	}

	c.JSON(http.StatusOK, response)
}

func (h *BoardHandler) AddMember(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var req models.AddBoardMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.boardService.AddMember(c.Request.Context(), userID, id, req.UserID, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBoardMemberResponse(member))
}

func (h *BoardHandler) UpdateMemberRole(c *gin.Context) {
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

	if err := h.boardService.UpdateMemberRole(c.Request.Context(), userID, id, memberID, req.Role); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

func (h *BoardHandler) RemoveMember(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	memberID := c.Param("userId")

	if err := h.boardService.RemoveMember(c.Request.Context(), userID, id, memberID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
