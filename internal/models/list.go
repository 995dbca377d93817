package models

import "time"

type CreateListRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateListRequest struct {
	Name *string `json:"name"`
}

// MoveListRequest places a list between two siblings. PrevListID and
// NextListID are optional: both empty means "append to the end".
// TargetBoardID is optional and defaults to the list's current board.
type MoveListRequest struct {
	TargetBoardID *string `json:"targetBoardId"`
	PrevListID    *string `json:"prevListId"`
	NextListID    *string `json:"nextListId"`
}

type ListResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BoardID   string    `json:"boardId"`
	Position  float64   `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
