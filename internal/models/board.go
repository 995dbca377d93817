package models

import "time"

type CreateBoardRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Visibility  *string `json:"visibility" binding:"omitempty,oneof=private workspace public"`
}

type UpdateBoardRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Visibility  *string `json:"visibility" binding:"omitempty,oneof=private workspace public"`
}

type BoardResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	WorkspaceID string    `json:"workspaceId"`
	OwnerID     string    `json:"ownerId"`
	Visibility  string    `json:"visibility"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type AddBoardMemberRequest struct {
	UserID string `json:"userId" binding:"required"`
	Role   string `json:"role" binding:"required,oneof=admin member viewer"`
}

type BoardMemberResponse struct {
	ID       string    `json:"id"`
	BoardID  string    `json:"boardId"`
	UserID   string    `json:"userId"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
	User     *UserInfo `json:"user,omitempty"`
}
