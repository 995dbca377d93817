package authz

import (
	"testing"

	"github.com/hiveboard/hiveboard-backend/internal/repository"
	"github.com/hiveboard/hiveboard-backend/internal/types"
)

func newTestContext() *ResourceContext {
	return &ResourceContext{
		Workspace: &repository.Workspace{
			ID:           "ws-1",
			OwnerID:      "owner-1",
			Visibility:   types.WorkspacePrivate,
			InvitePolicy: types.PolicyAdmins,
			BoardPolicy:  types.PolicyMembers,
		},
	}
}

func TestResolveWorkspaceVisibility(t *testing.T) {
	engine := NewCapabilityEngine()

	t.Run("stranger sees a public workspace", func(t *testing.T) {
		rc := newTestContext()
		rc.Workspace.Visibility = types.WorkspacePublic

		set := engine.Resolve("stranger", rc)
		if !set.Has(WorkspaceView) {
			t.Error("expected view on public workspace")
		}
		if set.Has(WorkspaceEdit) {
			t.Error("stranger must not edit a public workspace")
		}
	})

	t.Run("stranger gets nothing on a private workspace", func(t *testing.T) {
		set := engine.Resolve("stranger", newTestContext())
		if len(set) != 0 {
			t.Errorf("expected empty set, got %v", set.Actions())
		}
	})

	t.Run("member sees a private workspace", func(t *testing.T) {
		rc := newTestContext()
		rc.WorkspaceMembers = []*repository.WorkspaceMember{
			{WorkspaceID: "ws-1", UserID: "member-1", Role: types.RoleMember},
		}

		set := engine.Resolve("member-1", rc)
		if !set.Has(WorkspaceView) {
			t.Error("expected view for member of private workspace")
		}
		if set.Has(WorkspaceManageMembers) {
			t.Error("plain member must not manage members")
		}
	})
}

func TestResolveWorkspaceRoles(t *testing.T) {
	engine := NewCapabilityEngine()

	t.Run("owner holds every workspace grant without a member row", func(t *testing.T) {
		set := engine.Resolve("owner-1", newTestContext())
		for _, a := range []Action{WorkspaceView, WorkspaceEdit, WorkspaceDelete,
			WorkspaceManageMembers, WorkspaceManageRoles, WorkspaceCreateBoard, WorkspaceInvite} {
			if !set.Has(a) {
				t.Errorf("owner missing %s", a)
			}
		}
	})

	t.Run("admin gets management but never delete", func(t *testing.T) {
		rc := newTestContext()
		rc.WorkspaceMembers = []*repository.WorkspaceMember{
			{WorkspaceID: "ws-1", UserID: "admin-1", Role: types.RoleAdmin},
		}

		set := engine.Resolve("admin-1", rc)
		if !set.Has(WorkspaceManageMembers) || !set.Has(WorkspaceManageRoles) {
			t.Error("admin missing management grants")
		}
		if set.Has(WorkspaceDelete) {
			t.Error("only the owner may delete the workspace")
		}
	})

	t.Run("policies gate what plain members may do", func(t *testing.T) {
		rc := newTestContext()
		rc.WorkspaceMembers = []*repository.WorkspaceMember{
			{WorkspaceID: "ws-1", UserID: "member-1", Role: types.RoleMember},
		}

		// InvitePolicy=admins, BoardPolicy=members.
		set := engine.Resolve("member-1", rc)
		if set.Has(WorkspaceInvite) {
			t.Error("invite policy restricts invites to admins")
		}
		if !set.Has(WorkspaceCreateBoard) {
			t.Error("board policy allows members to create boards")
		}

		rc.Workspace.InvitePolicy = types.PolicyMembers
		set = engine.Resolve("member-1", rc)
		if !set.Has(WorkspaceInvite) {
			t.Error("expected invite grant once policy opens to members")
		}
	})
}

func TestResolveBoardVisibility(t *testing.T) {
	engine := NewCapabilityEngine()

	board := func(visibility string) *repository.Board {
		return &repository.Board{ID: "b-1", WorkspaceID: "ws-1", OwnerID: "board-owner", Visibility: visibility}
	}

	t.Run("workspace member sees workspace-visible board but cannot edit", func(t *testing.T) {
		rc := newTestContext()
		rc.WorkspaceMembers = []*repository.WorkspaceMember{
			{WorkspaceID: "ws-1", UserID: "member-1", Role: types.RoleMember},
		}
		rc.Board = board(types.BoardWorkspace)

		set := engine.Resolve("member-1", rc)
		if !set.Has(BoardView) || !set.Has(CardView) {
			t.Error("workspace member should view a workspace-visible board")
		}
		if set.Has(CardCreate) || set.Has(BoardEdit) {
			t.Error("viewing a board grants no mutation rights")
		}
	})

	t.Run("private board hides from workspace members", func(t *testing.T) {
		rc := newTestContext()
		rc.WorkspaceMembers = []*repository.WorkspaceMember{
			{WorkspaceID: "ws-1", UserID: "member-1", Role: types.RoleMember},
		}
		rc.Board = board(types.BoardPrivate)

		if set := engine.Resolve("member-1", rc); set.Has(BoardView) {
			t.Error("private board must not be visible to plain workspace members")
		}
	})

	t.Run("direct board member works a private board", func(t *testing.T) {
		rc := newTestContext()
		rc.Board = board(types.BoardPrivate)
		rc.BoardMembers = []*repository.BoardMember{
			{BoardID: "b-1", UserID: "contractor", Role: types.RoleMember},
		}

		set := engine.Resolve("contractor", rc)
		if !set.Has(BoardView) || !set.Has(CardCreate) || !set.Has(CardMove) {
			t.Error("board member missing working grants")
		}
		if set.Has(BoardDelete) || set.Has(CardAssignMember) {
			t.Error("plain board member must not hold admin grants")
		}
	})

	t.Run("public board is visible to anyone", func(t *testing.T) {
		rc := newTestContext()
		rc.Board = board(types.BoardPublic)

		set := engine.Resolve("stranger", rc)
		if !set.Has(BoardView) {
			t.Error("public board should be visible without membership")
		}
		if set.Has(CardCreate) {
			t.Error("public visibility grants viewing only")
		}
	})
}

func TestResolveAdminCascade(t *testing.T) {
	engine := NewCapabilityEngine()

	rc := newTestContext()
	rc.WorkspaceMembers = []*repository.WorkspaceMember{
		{WorkspaceID: "ws-1", UserID: "admin-1", Role: types.RoleAdmin},
	}
	rc.Board = &repository.Board{ID: "b-1", WorkspaceID: "ws-1", OwnerID: "board-owner", Visibility: types.BoardPrivate}

	// Admin has no board member row and the board is private. Workspace
	// admin rights cascade regardless.
	set := engine.Resolve("admin-1", rc)
	for _, a := range []Action{BoardView, BoardEdit, BoardDelete, BoardManageMembers, CardCreate, CardAssignMember} {
		if !set.Has(a) {
			t.Errorf("workspace admin missing cascaded %s", a)
		}
	}

	// The workspace owner cascades the same way.
	set = engine.Resolve("owner-1", rc)
	if !set.Has(BoardDelete) {
		t.Error("workspace owner should cascade onto private boards")
	}
}

func TestResolveCommentAuthorOverride(t *testing.T) {
	engine := NewCapabilityEngine()

	rc := newTestContext()
	rc.Board = &repository.Board{ID: "b-1", WorkspaceID: "ws-1", OwnerID: "board-owner", Visibility: types.BoardWorkspace}
	rc.BoardMembers = []*repository.BoardMember{
		{BoardID: "b-1", UserID: "author-1", Role: types.RoleMember},
	}
	rc.Comment = &repository.Comment{ID: "c-1", CardID: "card-1", AuthorID: "author-1"}

	set := engine.Resolve("author-1", rc)
	if !set.Has(CommentUpdate) || !set.Has(CommentDelete) {
		t.Error("authors keep control of their own comments")
	}

	// Another plain member gets neither.
	rc.BoardMembers = append(rc.BoardMembers, &repository.BoardMember{
		BoardID: "b-1", UserID: "other", Role: types.RoleMember,
	})
	set = engine.Resolve("other", rc)
	if set.Has(CommentUpdate) || set.Has(CommentDelete) {
		t.Error("non-authors must not touch someone else's comment")
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	engine := NewCapabilityEngine()

	rc := newTestContext()
	rc.WorkspaceMembers = []*repository.WorkspaceMember{
		{WorkspaceID: "ws-1", UserID: "member-1", Role: types.RoleMember},
	}
	rc.Board = &repository.Board{ID: "b-1", WorkspaceID: "ws-1", OwnerID: "member-1", Visibility: types.BoardWorkspace}

	first := engine.Resolve("member-1", rc)
	second := engine.Resolve("member-1", rc)
	if !first.Equal(second) {
		t.Errorf("equal inputs yielded different sets: %v vs %v", first.Actions(), second.Actions())
	}

	// Actions output is sorted, so two resolutions render identically.
	a, b := first.Actions(), second.Actions()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("action order differs at %d: %s vs %s", i, a[i], b[i])
		}
	}
}
