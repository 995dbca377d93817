package models

import "time"

type CreateCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

type UpdateCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

type CommentResponse struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	CardID    string    `json:"cardId"`
	AuthorID  string    `json:"authorId"`
	Author    *UserInfo `json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ============================================
// Attachment DTOs
// ============================================

type CreateAttachmentRequest struct {
	FileName  string `json:"fileName" binding:"required"`
	URL       string `json:"url" binding:"required,url"`
	SizeBytes *int64 `json:"sizeBytes"`
}

type UpdateAttachmentRequest struct {
	FileName *string `json:"fileName"`
}

type AttachmentResponse struct {
	ID         string    `json:"id"`
	CardID     string    `json:"cardId"`
	FileName   string    `json:"fileName"`
	URL        string    `json:"url"`
	SizeBytes  *int64    `json:"sizeBytes,omitempty"`
	UploadedBy string    `json:"uploadedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}
