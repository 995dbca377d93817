package models

import "time"

// Request models
type CreateWorkspaceRequest struct {
	Name         string  `json:"name" binding:"required"`
	Description  *string `json:"description"`
	Visibility   *string `json:"visibility" binding:"omitempty,oneof=private public"`
	InvitePolicy *string `json:"invitePolicy" binding:"omitempty,oneof=admins members"`
	BoardPolicy  *string `json:"boardPolicy" binding:"omitempty,oneof=admins members"`
}

type UpdateWorkspaceRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Visibility   *string `json:"visibility" binding:"omitempty,oneof=private public"`
	InvitePolicy *string `json:"invitePolicy" binding:"omitempty,oneof=admins members"`
	BoardPolicy  *string `json:"boardPolicy" binding:"omitempty,oneof=admins members"`
}

// Response models
type WorkspaceResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	OwnerID      string    `json:"ownerId"`
	Visibility   string    `json:"visibility"`
	InvitePolicy string    `json:"invitePolicy"`
	BoardPolicy  string    `json:"boardPolicy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ============================================
// Member Management Models
// ============================================

type AddWorkspaceMemberRequest struct {
	UserID string `json:"userId" binding:"required"`
	Role   string `json:"role" binding:"required,oneof=admin member viewer"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin member viewer"`
}

type WorkspaceMemberResponse struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	UserID      string    `json:"userId"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joinedAt"`
	User        *UserInfo `json:"user,omitempty"`
}

type UserInfo struct {
	ID     string  `json:"id"`
	Email  string  `json:"email"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar,omitempty"`
}
