package models

import "time"

type CreateCardRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
}

type UpdateCardRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
}

// MoveCardRequest places a card between two siblings in the target list.
// Both neighbor ids empty means "append to the end of the target list".
type MoveCardRequest struct {
	TargetListID string  `json:"targetListId" binding:"required"`
	PrevCardID   *string `json:"prevCardId"`
	NextCardID   *string `json:"nextCardId"`
}

type AssignCardRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type CardResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	ListID      string     `json:"listId"`
	BoardID     string     `json:"boardId"`
	Position    float64    `json:"position"`
	AssigneeIDs []string   `json:"assigneeIds"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
