package authz

import "sort"

// Action is a single permitted operation, namespaced by resource.
type Action string

const (
	WorkspaceView          Action = "workspace:view"
	WorkspaceEdit          Action = "workspace:edit"
	WorkspaceDelete        Action = "workspace:delete"
	WorkspaceInvite        Action = "workspace:invite"
	WorkspaceManageMembers Action = "workspace:manage_members"
	WorkspaceManageRoles   Action = "workspace:manage_roles"
	WorkspaceCreateBoard   Action = "workspace:create_board"

	BoardView          Action = "board:view"
	BoardEdit          Action = "board:edit"
	BoardDelete        Action = "board:delete"
	BoardInvite        Action = "board:invite"
	BoardManageMembers Action = "board:manage_members"
	BoardCreateList    Action = "board:create_list"
	BoardManageLists   Action = "board:manage_lists"

	ListCreate Action = "list:create"
	ListUpdate Action = "list:update"
	ListDelete Action = "list:delete"
	ListMove   Action = "list:move"

	CardView         Action = "card:view"
	CardCreate       Action = "card:create"
	CardUpdate       Action = "card:update"
	CardDelete       Action = "card:delete"
	CardMove         Action = "card:move"
	CardAssignMember Action = "card:assign_member"
	CardRemoveMember Action = "card:remove_member"

	CommentCreate Action = "comment:create"
	CommentUpdate Action = "comment:update"
	CommentDelete Action = "comment:delete"

	AttachmentCreate Action = "attachment:create"
	AttachmentUpdate Action = "attachment:update"
	AttachmentDelete Action = "attachment:delete"
)

// CapabilitySet is the complete set of actions permitted for one
// (actor, context) pair. It is freshly built on every resolution and must
// not be cached across requests or mutated by callers.
type CapabilitySet map[Action]struct{}

func (s CapabilitySet) Has(action Action) bool {
	_, ok := s[action]
	return ok
}

func (s CapabilitySet) grant(actions ...Action) {
	for _, a := range actions {
		s[a] = struct{}{}
	}
}

// Equal reports set equality; token order is never observable.
func (s CapabilitySet) Equal(other CapabilitySet) bool {
	if len(s) != len(other) {
		return false
	}
	for a := range s {
		if _, ok := other[a]; !ok {
			return false
		}
	}
	return true
}

// Actions returns the granted tokens in sorted order, for responses and logs.
func (s CapabilitySet) Actions() []string {
	actions := make([]string, 0, len(s))
	for a := range s {
		actions = append(actions, string(a))
	}
	sort.Strings(actions)
	return actions
}
