package authz

import (
	"github.com/hiveboard/hiveboard-backend/internal/repository"
	"github.com/hiveboard/hiveboard-backend/internal/types"
)

// CapabilityEngine computes the set of actions an actor may perform against
// a resolved resource context. Resolve is a pure function of its inputs: it
// performs no I/O, mutates nothing, and returns an equal set for equal
// inputs. Capabilities are recomputed on every request because membership
// and visibility may change between requests.
type CapabilityEngine struct{}

func NewCapabilityEngine() *CapabilityEngine {
	return &CapabilityEngine{}
}

// Resolve layers two scopes. Workspace grants are evaluated first, then
// board grants. Workspace admin rights cascade down to every board in the
// workspace with no opt-out: boards are administratively subordinate to
// their workspace, so a workspace admin is never blocked by board-level
// settings.
func (e *CapabilityEngine) Resolve(actorID string, rc *ResourceContext) CapabilitySet {
	set := make(CapabilitySet)
	if rc == nil {
		return set
	}
	e.resolveWorkspace(actorID, rc, set)
	e.resolveBoard(actorID, rc, set)
	return set
}

func (e *CapabilityEngine) resolveWorkspace(actorID string, rc *ResourceContext, set CapabilitySet) {
	ws := rc.Workspace
	if ws == nil {
		return
	}

	isOwner := ws.OwnerID == actorID
	role := workspaceRole(rc, actorID)
	isMember := isOwner || role != ""
	isAdmin := isOwner || role == types.RoleAdmin

	if ws.Visibility == types.WorkspacePublic || isMember {
		set.grant(WorkspaceView)
	}

	if isMember {
		if ws.InvitePolicy == types.PolicyMembers {
			set.grant(WorkspaceInvite)
		}
		if ws.BoardPolicy == types.PolicyMembers {
			set.grant(WorkspaceCreateBoard)
		}
	}

	// Admin grants override the policy settings unconditionally.
	if isAdmin {
		set.grant(WorkspaceEdit, WorkspaceManageMembers, WorkspaceManageRoles,
			WorkspaceCreateBoard, WorkspaceInvite)
	}

	if isOwner {
		set.grant(WorkspaceDelete)
	}
}

func (e *CapabilityEngine) resolveBoard(actorID string, rc *ResourceContext, set CapabilitySet) {
	board := rc.Board
	if board == nil {
		return
	}

	isWorkspaceAdmin := workspaceAdminOrOwner(rc, actorID)
	boardMember := boardMemberOf(rc, actorID)
	isBoardMember := boardMember != nil || board.OwnerID == actorID

	viewable := false
	switch board.Visibility {
	case types.BoardPublic:
		viewable = true
	case types.BoardWorkspace:
		viewable = workspaceMemberOrOwner(rc, actorID)
	case types.BoardPrivate:
		viewable = isBoardMember
	}
	// Workspace admins see every board in the workspace, private included.
	if isWorkspaceAdmin {
		viewable = true
	}

	if viewable {
		set.grant(BoardView, CardView)
	}

	isEffectiveAdmin := isWorkspaceAdmin ||
		board.OwnerID == actorID ||
		(boardMember != nil && boardMember.Role == types.RoleAdmin)

	if isBoardMember || isEffectiveAdmin {
		set.grant(
			BoardCreateList,
			ListCreate, ListUpdate, ListDelete, ListMove,
			CardCreate, CardUpdate, CardDelete, CardMove,
			CommentCreate, AttachmentCreate,
		)
	}

	if isEffectiveAdmin {
		set.grant(
			BoardEdit, BoardDelete, BoardInvite, BoardManageMembers, BoardManageLists,
			CardAssignMember, CardRemoveMember,
			CommentDelete, AttachmentDelete, AttachmentUpdate,
		)
	}

	// Authors keep control of their own comments regardless of board role.
	if rc.Comment != nil && rc.Comment.AuthorID == actorID {
		set.grant(CommentUpdate, CommentDelete)
	}
}

func workspaceRole(rc *ResourceContext, actorID string) string {
	for _, m := range rc.WorkspaceMembers {
		if m.UserID == actorID {
			return m.Role
		}
	}
	return ""
}

func workspaceMemberOrOwner(rc *ResourceContext, actorID string) bool {
	if rc.Workspace == nil {
		return false
	}
	return rc.Workspace.OwnerID == actorID || workspaceRole(rc, actorID) != ""
}

func workspaceAdminOrOwner(rc *ResourceContext, actorID string) bool {
	if rc.Workspace == nil {
		return false
	}
	return rc.Workspace.OwnerID == actorID || workspaceRole(rc, actorID) == types.RoleAdmin
}

func boardMemberOf(rc *ResourceContext, actorID string) *repository.BoardMember {
	for _, m := range rc.BoardMembers {
		if m.UserID == actorID {
			return m
		}
	}
	return nil
}
