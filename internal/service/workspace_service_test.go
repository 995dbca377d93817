package service

import (
	"context"
	"testing"

	"github.com/hiveboard/hiveboard-backend/internal/authz"
	"github.com/hiveboard/hiveboard-backend/internal/config"
	"github.com/hiveboard/hiveboard-backend/internal/errs"
	"github.com/hiveboard/hiveboard-backend/internal/notification"
	"github.com/hiveboard/hiveboard-backend/internal/repository"
	"github.com/hiveboard/hiveboard-backend/internal/socket"
	"github.com/hiveboard/hiveboard-backend/internal/types"
)

type testEnv struct {
	services *Services
	repos    *repository.Repositories
	owner    *repository.User
	admin    *repository.User
	member   *repository.User
	outsider *repository.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	repos := repository.NewInMemoryRepositories()

	hub := socket.NewHub()
	go hub.Run()
	broadcaster := socket.NewBroadcaster(hub)
	notifSvc := notification.NewService(repos.NotificationRepo)
	notifSvc.SetBroadcaster(broadcaster)

	services := NewServices(&ServiceDeps{
		Config:      config.Load(),
		Repos:       repos,
		NotifSvc:    notifSvc,
		Broadcaster: broadcaster,
	})

	env := &testEnv{services: services, repos: repos}
	users := []struct {
		dst  **repository.User
		name string
	}{
		{&env.owner, "Owner"},
		{&env.admin, "Admin"},
		{&env.member, "Member"},
		{&env.outsider, "Outsider"},
	}
	for _, u := range users {
		user := &repository.User{Email: u.name + "@example.com", Password: "x", Name: u.name}
		if err := repos.UserRepo.Create(ctx, user); err != nil {
			t.Fatalf("create user %s: %v", u.name, err)
		}
		*u.dst = user
	}
	return env
}

func (e *testEnv) workspace(t *testing.T) *repository.Workspace {
	t.Helper()
	ctx := context.Background()

	ws, err := e.services.Workspace.Create(ctx, e.owner.ID, &repository.Workspace{Name: "Acme"})
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	if _, err := e.services.Workspace.AddMember(ctx, e.owner.ID, ws.ID, e.admin.ID, types.RoleAdmin); err != nil {
		t.Fatalf("add admin: %v", err)
	}
	if _, err := e.services.Workspace.AddMember(ctx, e.owner.ID, ws.ID, e.member.ID, types.RoleMember); err != nil {
		t.Fatalf("add member: %v", err)
	}
	return ws
}

func TestWorkspaceCreateDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ws, err := env.services.Workspace.Create(ctx, env.owner.ID, &repository.Workspace{Name: "Acme"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ws.OwnerID != env.owner.ID {
		t.Errorf("owner = %s, want %s", ws.OwnerID, env.owner.ID)
	}
	if ws.Visibility != types.WorkspacePrivate {
		t.Errorf("default visibility = %s", ws.Visibility)
	}
	if ws.InvitePolicy != types.PolicyMembers || ws.BoardPolicy != types.PolicyMembers {
		t.Errorf("default policies = %s/%s", ws.InvitePolicy, ws.BoardPolicy)
	}

	// The creator holds ownership through the workspace record alone.
	members, err := env.repos.WorkspaceRepo.FindMembers(ctx, ws.ID)
	if err != nil {
		t.Fatalf("find members: %v", err)
	}
	if len(members) != 0 {
		t.Errorf("expected no member rows for a fresh workspace, got %d", len(members))
	}
}

func TestWorkspaceOwnerHasNoMemberRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ws := env.workspace(t)

	// The owner can never be added as a member.
	_, err := env.services.Workspace.AddMember(ctx, env.admin.ID, ws.ID, env.owner.ID, types.RoleMember)
	if !errs.IsConflict(err) {
		t.Errorf("adding the owner as member should conflict, got %v", err)
	}

	// Nor can a role be assigned to them.
	err = env.services.Workspace.UpdateMemberRole(ctx, env.admin.ID, ws.ID, env.owner.ID, types.RoleAdmin)
	if !errs.IsValidation(err) {
		t.Errorf("setting a role on the owner should be a validation error, got %v", err)
	}
}

func TestWorkspaceMemberPermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ws := env.workspace(t)

	// Plain members cannot manage membership.
	_, err := env.services.Workspace.AddMember(ctx, env.member.ID, ws.ID, env.outsider.ID, types.RoleMember)
	if !errs.IsForbidden(err) {
		t.Errorf("member adding a member should be forbidden, got %v", err)
	}

	// Admins can.
	if _, err := env.services.Workspace.AddMember(ctx, env.admin.ID, ws.ID, env.outsider.ID, types.RoleViewer); err != nil {
		t.Errorf("admin adding a member: %v", err)
	}

	// Outsiders cannot even read a private workspace.
	if _, err := env.services.Workspace.GetByID(ctx, "someone-else", ws.ID); !errs.IsForbidden(err) {
		t.Errorf("outsider reading private workspace should be forbidden, got %v", err)
	}

	// Only the owner deletes.
	if err := env.services.Workspace.Delete(ctx, env.admin.ID, ws.ID); !errs.IsForbidden(err) {
		t.Errorf("admin deleting workspace should be forbidden, got %v", err)
	}
	if err := env.services.Workspace.Delete(ctx, env.owner.ID, ws.ID); err != nil {
		t.Errorf("owner deleting workspace: %v", err)
	}
}

func TestWorkspaceSelfRemoval(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ws := env.workspace(t)

	// Leaving requires no management grant.
	if err := env.services.Workspace.RemoveMember(ctx, env.member.ID, ws.ID, env.member.ID); err != nil {
		t.Fatalf("self removal: %v", err)
	}
	if m, _ := env.repos.WorkspaceRepo.FindMember(ctx, ws.ID, env.member.ID); m != nil {
		t.Error("member row survived self removal")
	}

	// Removing someone else still does.
	if _, err := env.services.Workspace.AddMember(ctx, env.admin.ID, ws.ID, env.member.ID, types.RoleMember); err != nil {
		t.Fatalf("re-add member: %v", err)
	}
	err := env.services.Workspace.RemoveMember(ctx, env.member.ID, ws.ID, env.admin.ID)
	if !errs.IsForbidden(err) {
		t.Errorf("member removing the admin should be forbidden, got %v", err)
	}
}

func TestBoardVisibilityFiltering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ws := env.workspace(t)

	open, err := env.services.Board.Create(ctx, env.member.ID, ws.ID, &repository.Board{Name: "Open"})
	if err != nil {
		t.Fatalf("create board: %v", err)
	}
	if open.Visibility != types.BoardWorkspace {
		t.Errorf("default board visibility = %s", open.Visibility)
	}

	_, err = env.services.Board.Create(ctx, env.owner.ID, ws.ID, &repository.Board{Name: "Hidden", Visibility: types.BoardPrivate})
	if err != nil {
		t.Fatalf("create private board: %v", err)
	}

	// Plain members see only what their grants reach.
	boards, err := env.services.Board.ListForWorkspace(ctx, env.member.ID, ws.ID)
	if err != nil {
		t.Fatalf("list boards as member: %v", err)
	}
	if len(boards) != 1 || boards[0].Name != "Open" {
		t.Errorf("member board listing = %d boards", len(boards))
	}

	// Admins see everything, private boards included.
	boards, err = env.services.Board.ListForWorkspace(ctx, env.admin.ID, ws.ID)
	if err != nil {
		t.Fatalf("list boards as admin: %v", err)
	}
	if len(boards) != 2 {
		t.Errorf("admin board listing = %d boards, want 2", len(boards))
	}
}

func TestWorkspaceCapabilities(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ws := env.workspace(t)

	actions, err := env.services.Workspace.Capabilities(ctx, env.member.ID, authz.Identifiers{WorkspaceID: ws.ID})
	if err != nil {
		t.Fatalf("capabilities: %v", err)
	}

	has := func(a string) bool {
		for _, got := range actions {
			if got == a {
				return true
			}
		}
		return false
	}
	if !has(string(authz.WorkspaceView)) {
		t.Error("member missing workspace view")
	}
	if !has(string(authz.WorkspaceCreateBoard)) || !has(string(authz.WorkspaceInvite)) {
		t.Error("default policies open creation and invites to members")
	}
	if has(string(authz.WorkspaceDelete)) || has(string(authz.WorkspaceManageMembers)) {
		t.Errorf("member capabilities over-granted: %v", actions)
	}
}
