package service

import (
	"context"

	"github.com/hiveboard/hiveboard-backend/internal/authz"
	"github.com/hiveboard/hiveboard-backend/internal/errs"
	"github.com/hiveboard/hiveboard-backend/internal/notification"
	"github.com/hiveboard/hiveboard-backend/internal/repository"
	"github.com/hiveboard/hiveboard-backend/internal/socket"
	"github.com/hiveboard/hiveboard-backend/internal/types"
)

// ============================================
// Workspace Service
// ============================================

type WorkspaceService interface {
	Create(ctx context.Context, actorID string, workspace *repository.Workspace) (*repository.Workspace, error)
	GetByID(ctx context.Context, actorID, id string) (*repository.Workspace, error)
	ListForUser(ctx context.Context, userID string) ([]*repository.Workspace, error)
	Update(ctx context.Context, actorID, id string, update WorkspaceUpdate) (*repository.Workspace, error)
	Delete(ctx context.Context, actorID, id string) error
	GetMembers(ctx context.Context, actorID, id string) ([]*repository.WorkspaceMember, error)
	AddMember(ctx context.Context, actorID, workspaceID, userID, role string) (*repository.WorkspaceMember, error)
	UpdateMemberRole(ctx context.Context, actorID, workspaceID, userID, role string) error
	RemoveMember(ctx context.Context, actorID, workspaceID, userID string) error
	Capabilities(ctx context.Context, actorID string, ids authz.Identifiers) ([]string, error)
}

// WorkspaceUpdate carries the optional fields of a workspace update.
type WorkspaceUpdate struct {
	Name         *string
	Description  *string
	Visibility   *string
	InvitePolicy *string
	BoardPolicy  *string
}

type workspaceService struct {
	workspaceRepo repository.WorkspaceRepository
	userRepo      repository.UserRepository
	access        *accessControl
	notifSvc      *notification.Service
	broadcaster   *socket.Broadcaster
}

func NewWorkspaceService(
	workspaceRepo repository.WorkspaceRepository,
	userRepo repository.UserRepository,
	access *accessControl,
	notifSvc *notification.Service,
	broadcaster *socket.Broadcaster,
) WorkspaceService {
	return &workspaceService{
		workspaceRepo: workspaceRepo,
		userRepo:      userRepo,
		access:        access,
		notifSvc:      notifSvc,
		broadcaster:   broadcaster,
	}
}

func (s *workspaceService) Create(ctx context.Context, actorID string, workspace *repository.Workspace) (*repository.Workspace, error) {
	workspace.OwnerID = actorID
	if workspace.Visibility == "" {
		workspace.Visibility = types.WorkspacePrivate
	}
	if workspace.InvitePolicy == "" {
		workspace.InvitePolicy = types.PolicyMembers
	}
	if workspace.BoardPolicy == "" {
		workspace.BoardPolicy = types.PolicyMembers
	}
	if !types.IsValidWorkspaceVisibility(workspace.Visibility) {
		return nil, errs.Validation("invalid workspace visibility %q", workspace.Visibility)
	}

	// Ownership lives on the workspace record itself; no member row is
	// written for the creator.
	if err := s.workspaceRepo.Create(ctx, workspace); err != nil {
		return nil, err
	}
	return workspace, nil
}

func (s *workspaceService) GetByID(ctx context.Context, actorID, id string) (*repository.Workspace, error) {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{WorkspaceID: id}, authz.WorkspaceView)
	if err != nil {
		return nil, err
	}
	return rc.Workspace, nil
}

func (s *workspaceService) ListForUser(ctx context.Context, userID string) ([]*repository.Workspace, error) {
	return s.workspaceRepo.FindByUserID(ctx, userID)
}

func (s *workspaceService) Update(ctx context.Context, actorID, id string, update WorkspaceUpdate) (*repository.Workspace, error) {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{WorkspaceID: id}, authz.WorkspaceEdit)
	if err != nil {
		return nil, err
	}

	workspace := rc.Workspace
	if update.Name != nil {
		workspace.Name = *update.Name
	}
	if update.Description != nil {
		workspace.Description = update.Description
	}
	if update.Visibility != nil {
		if !types.IsValidWorkspaceVisibility(*update.Visibility) {
			return nil, errs.Validation("invalid workspace visibility %q", *update.Visibility)
		}
		workspace.Visibility = *update.Visibility
	}
	if update.InvitePolicy != nil {
		workspace.InvitePolicy = *update.InvitePolicy
	}
	if update.BoardPolicy != nil {
		workspace.BoardPolicy = *update.BoardPolicy
	}

	if err := s.workspaceRepo.Update(ctx, workspace); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastWorkspaceUpdated(workspace.ID, map[string]interface{}{
			"id":   workspace.ID,
			"name": workspace.Name,
		}, actorID)
	}

	return workspace, nil
}

func (s *workspaceService) Delete(ctx context.Context, actorID, id string) error {
	if _, err := s.access.require(ctx, actorID, authz.Identifiers{WorkspaceID: id}, authz.WorkspaceDelete); err != nil {
		return err
	}

	if err := s.workspaceRepo.DeleteCascade(ctx, id); err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastWorkspaceDeleted(id, actorID)
	}
	return nil
}

func (s *workspaceService) GetMembers(ctx context.Context, actorID, id string) ([]*repository.WorkspaceMember, error) {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{WorkspaceID: id}, authz.WorkspaceView)
	if err != nil {
		return nil, err
	}
	return rc.WorkspaceMembers, nil
}

func (s *workspaceService) AddMember(ctx context.Context, actorID, workspaceID, userID, role string) (*repository.WorkspaceMember, error) {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{WorkspaceID: workspaceID}, authz.WorkspaceManageMembers)
	if err != nil {
		return nil, err
	}

	if !types.IsValidRole(role) {
		return nil, errs.Validation("invalid role %q", role)
	}
	if rc.Workspace.OwnerID == userID {
		return nil, errs.Conflict("user is the workspace owner")
	}
	if existing, err := s.workspaceRepo.FindMember(ctx, workspaceID, userID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, errs.Conflict("user is already a member")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.NotFound("user")
	}

	member := &repository.WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
	}
	if err := s.workspaceRepo.AddMember(ctx, member); err != nil {
		return nil, err
	}
	member.User = user

	if s.notifSvc != nil {
		s.notifSvc.SendMemberAdded(ctx, userID, rc.Workspace.Name, "workspace", workspaceID)
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastMemberAdded(s.broadcaster.WorkspaceRoom(workspaceID), map[string]interface{}{
			"workspaceId": workspaceID,
			"userId":      userID,
			"role":        role,
		}, actorID)
	}

	return member, nil
}

func (s *workspaceService) UpdateMemberRole(ctx context.Context, actorID, workspaceID, userID, role string) error {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{WorkspaceID: workspaceID}, authz.WorkspaceManageRoles)
	if err != nil {
		return err
	}

	if !types.IsValidRole(role) {
		return errs.Validation("invalid role %q", role)
	}
	if rc.Workspace.OwnerID == userID {
		return errs.Validation("the workspace owner has no membership role")
	}

	member, err := s.workspaceRepo.FindMember(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return errs.NotFound("workspace member")
	}

	if err := s.workspaceRepo.UpdateMemberRole(ctx, workspaceID, userID, role); err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastMemberRoleUpdated(s.broadcaster.WorkspaceRoom(workspaceID), userID, role, actorID)
	}
	return nil
}

func (s *workspaceService) RemoveMember(ctx context.Context, actorID, workspaceID, userID string) error {
	// Members may always remove themselves.
	if actorID != userID {
		if _, err := s.access.require(ctx, actorID, authz.Identifiers{WorkspaceID: workspaceID}, authz.WorkspaceManageMembers); err != nil {
			return err
		}
	}

	member, err := s.workspaceRepo.FindMember(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return errs.NotFound("workspace member")
	}

	if err := s.workspaceRepo.RemoveMember(ctx, workspaceID, userID); err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastMemberRemoved(s.broadcaster.WorkspaceRoom(workspaceID), userID, actorID)
	}
	return nil
}

// Capabilities returns the sorted action names the actor holds against the
// supplied entity chain.
func (s *workspaceService) Capabilities(ctx context.Context, actorID string, ids authz.Identifiers) ([]string, error) {
	caps, err := s.access.capabilities(ctx, actorID, ids)
	if err != nil {
		return nil, err
	}
	return caps.Actions(), nil
}
