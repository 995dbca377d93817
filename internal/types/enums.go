package types

// Membership roles. Ownership is a field on the entity itself, not a
// membership row, and always outranks these.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleViewer = "viewer"
)

// Workspace visibility values
const (
	WorkspacePrivate = "private"
	WorkspacePublic  = "public"
)

// Board visibility values
const (
	BoardPrivate   = "private"
	BoardWorkspace = "workspace"
	BoardPublic    = "public"
)

// Workspace policy values (who may invite members / create boards)
const (
	PolicyAdmins  = "admins"
	PolicyMembers = "members"
)

// Invitation status values
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationExpired  = "expired"
	InvitationRevoked  = "revoked"
)

// Notification types
const (
	NotifWorkspaceInvite = "workspace_invite"
	NotifCardAssigned    = "card_assigned"
	NotifCardUnassigned  = "card_unassigned"
	NotifCommentAdded    = "comment_added"
	NotifMemberAdded     = "member_added"
)

// Valid role values for validation
var ValidRoles = []string{RoleAdmin, RoleMember, RoleViewer}

// Valid board visibility values for validation
var ValidBoardVisibilities = []string{BoardPrivate, BoardWorkspace, BoardPublic}

// Valid workspace visibility values for validation
var ValidWorkspaceVisibilities = []string{WorkspacePrivate, WorkspacePublic}

func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

func IsValidBoardVisibility(v string) bool {
	for _, valid := range ValidBoardVisibilities {
		if valid == v {
			return true
		}
	}
	return false
}

func IsValidWorkspaceVisibility(v string) bool {
	for _, valid := range ValidWorkspaceVisibilities {
		if valid == v {
			return true
		}
	}
	return false
}
