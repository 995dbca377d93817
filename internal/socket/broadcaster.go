package socket

import "fmt"

// Broadcaster provides high-level methods for broadcasting board events
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

func boardRoom(boardID string) string {
	return fmt.Sprintf("board:%s", boardID)
}

func workspaceRoom(workspaceID string) string {
	return fmt.Sprintf("workspace:%s", workspaceID)
}

// ============================================
// Notification Broadcasting
// ============================================

// SendNotification sends a notification to a specific user
func (b *Broadcaster) SendNotification(userID string, notification map[string]interface{}) {
	b.hub.SendToUser(userID, MessageNotification, notification)
}

// SendNotificationCount updates notification count for a user
func (b *Broadcaster) SendNotificationCount(userID string, total, unread int) {
	b.hub.SendToUser(userID, MessageNotificationCount, map[string]interface{}{
		"total":  total,
		"unread": unread,
	})
}

// ============================================
// Card Broadcasting
// ============================================

// BroadcastCardCreated broadcasts card creation to board members
func (b *Broadcaster) BroadcastCardCreated(boardID string, card map[string]interface{}, excludeUserID string) {
	b.hub.SendToRoom(boardRoom(boardID), MessageCardCreated, card, excludeUserID)
}

// BroadcastCardUpdated broadcasts card updates to board members
func (b *Broadcaster) BroadcastCardUpdated(boardID string, card map[string]interface{}, excludeUserID string) {
	b.hub.SendToRoom(boardRoom(boardID), MessageCardUpdated, map[string]interface{}{
		"card":          card,
		"changedByUser": excludeUserID,
	}, excludeUserID)
}

// BroadcastCardDeleted broadcasts card deletion to board members
func (b *Broadcaster) BroadcastCardDeleted(boardID, cardID, listID string, excludeUserID string) {
	b.hub.SendToRoom(boardRoom(boardID), MessageCardDeleted, map[string]interface{}{
		"cardId": cardID,
		"listId": listID,
	}, excludeUserID)
}

// BroadcastCardMoved broadcasts a card position change without notifications
func (b *Broadcaster) BroadcastCardMoved(boardID string, card map[string]interface{}, excludeUserID string) {
	b.hub.SendToRoom(boardRoom(boardID), MessageCardMoved, map[string]interface{}{
		"card":    card,
		"boardId": boardID,
	}, excludeUserID)
}

// BroadcastCardAssigned notifies the assigned user
func (b *Broadcaster) BroadcastCardAssigned(assigneeID string, card map[string]interface{}, assignedBy string) {
	b.hub.SendToUser(assigneeID, MessageCardAssigned, map[string]interface{}{
		"card":       card,
		"assignedBy": assignedBy,
	})
}

// ============================================
// List Broadcasting
// ============================================

// BroadcastListCreated broadcasts list creation to board members
func (b *Broadcaster) BroadcastListCreated(boardID string, list map[string]interface{}, excludeUserID string) {
	b.hub.SendToRoom(boardRoom(boardID), MessageListCreated, list, excludeUserID)
}

// BroadcastListUpdated broadcasts list updates to board members
func (b *Broadcaster) BroadcastListUpdated(boardID string, list map[string]interface{}, excludeUserID string) {
	b.hub.SendToRoom(boardRoom(boardID), MessageListUpdated, list, excludeUserID)
}

// BroadcastListDeleted broadcasts list deletion to board members
func (b *Broadcaster) BroadcastListDeleted(boardID, listID string, excludeUserID string) {
	b.hub.SendToRoom(boardRoom(boardID), MessageListDeleted, map[string]interface{}{
		"listId": listID,
	}, excludeUserID)
}

// BroadcastListMoved broadcasts a list position change without notifications
func (b *Broadcaster) BroadcastListMoved(boardID string, list map[string]interface{}, excludeUserID string) {
	b.hub.SendToRoom(boardRoom(boardID), MessageListMoved, map[string]interface{}{
		"list":    list,
		"boardId": boardID,
	}, excludeUserID)
}

// ============================================
// Board Broadcasting
// ============================================

// BroadcastBoardCreated broadcasts board creation to workspace members
func (b *Broadcaster) BroadcastBoardCreated(workspaceID string, board map[string]interface{}, excludeUserID string) {
	b.hub.SendToRoom(workspaceRoom(workspaceID), MessageBoardCreated, board, excludeUserID)
}

// BroadcastBoardUpdated broadcasts board updates to board members
func (b *Broadcaster) BroadcastBoardUpdated(boardID string, board map[string]interface{}, excludeUserID string) {
	b.hub.SendToRoom(boardRoom(boardID), MessageBoardUpdated, board, excludeUserID)
}

// BroadcastBoardDeleted broadcasts board deletion to workspace members
func (b *Broadcaster) BroadcastBoardDeleted(workspaceID, boardID string, excludeUserID string) {
	b.hub.SendToRoom(workspaceRoom(workspaceID), MessageBoardDeleted, map[string]interface{}{
		"boardId":     boardID,
		"workspaceId": workspaceID,
	}, excludeUserID)
}

// ============================================
// Workspace Broadcasting
// ============================================

// BroadcastWorkspaceUpdated broadcasts workspace updates to workspace members
func (b *Broadcaster) BroadcastWorkspaceUpdated(workspaceID string, workspace map[string]interface{}, excludeUserID string) {
	b.hub.SendToRoom(workspaceRoom(workspaceID), MessageWorkspaceUpdated, workspace, excludeUserID)
}

// BroadcastWorkspaceDeleted broadcasts workspace deletion to workspace members
func (b *Broadcaster) BroadcastWorkspaceDeleted(workspaceID string, excludeUserID string) {
	b.hub.SendToRoom(workspaceRoom(workspaceID), MessageWorkspaceDeleted, map[string]interface{}{
		"workspaceId": workspaceID,
	}, excludeUserID)
}

// ============================================
// Membership Broadcasting
// ============================================

// BroadcastMemberAdded broadcasts a new member to a workspace or board room
func (b *Broadcaster) BroadcastMemberAdded(room string, member map[string]interface{}, excludeUserID string) {
	b.hub.SendToRoom(room, MessageMemberAdded, member, excludeUserID)
}

// BroadcastMemberRemoved broadcasts a member removal to a workspace or board room
func (b *Broadcaster) BroadcastMemberRemoved(room, userID string, excludeUserID string) {
	b.hub.SendToRoom(room, MessageMemberRemoved, map[string]interface{}{
		"userId": userID,
	}, excludeUserID)
}

// BroadcastMemberRoleUpdated broadcasts a role change to a workspace or board room
func (b *Broadcaster) BroadcastMemberRoleUpdated(room, userID, role string, excludeUserID string) {
	b.hub.SendToRoom(room, MessageMemberRoleUpdated, map[string]interface{}{
		"userId": userID,
		"role":   role,
	}, excludeUserID)
}

// WorkspaceRoom returns the room name for a workspace
func (b *Broadcaster) WorkspaceRoom(workspaceID string) string {
	return workspaceRoom(workspaceID)
}

// BoardRoom returns the room name for a board
func (b *Broadcaster) BoardRoom(boardID string) string {
	return boardRoom(boardID)
}

// ============================================
// Comment Broadcasting
// ============================================

// BroadcastCommentAdded broadcasts a new comment to board members
func (b *Broadcaster) BroadcastCommentAdded(boardID, cardID string, comment map[string]interface{}, excludeUserID string) {
	b.hub.SendToRoom(boardRoom(boardID), MessageCommentAdded, map[string]interface{}{
		"cardId":  cardID,
		"comment": comment,
	}, excludeUserID)
}

// BroadcastCommentUpdated broadcasts a comment update
func (b *Broadcaster) BroadcastCommentUpdated(boardID, cardID string, comment map[string]interface{}, excludeUserID string) {
	b.hub.SendToRoom(boardRoom(boardID), MessageCommentUpdated, map[string]interface{}{
		"cardId":  cardID,
		"comment": comment,
	}, excludeUserID)
}

// BroadcastCommentDeleted broadcasts a comment deletion
func (b *Broadcaster) BroadcastCommentDeleted(boardID, cardID, commentID string, excludeUserID string) {
	b.hub.SendToRoom(boardRoom(boardID), MessageCommentDeleted, map[string]interface{}{
		"cardId":    cardID,
		"commentId": commentID,
	}, excludeUserID)
}

// ============================================
// Attachment Broadcasting
// ============================================

// BroadcastAttachmentAdded broadcasts a new attachment to board members
func (b *Broadcaster) BroadcastAttachmentAdded(boardID, cardID string, attachment map[string]interface{}, excludeUserID string) {
	b.hub.SendToRoom(boardRoom(boardID), MessageAttachmentAdded, map[string]interface{}{
		"cardId":     cardID,
		"attachment": attachment,
	}, excludeUserID)
}

// BroadcastAttachmentDeleted broadcasts an attachment deletion
func (b *Broadcaster) BroadcastAttachmentDeleted(boardID, cardID, attachmentID string, excludeUserID string) {
	b.hub.SendToRoom(boardRoom(boardID), MessageAttachmentDeleted, map[string]interface{}{
		"cardId":       cardID,
		"attachmentId": attachmentID,
	}, excludeUserID)
}
