package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/hiveboard/hiveboard-backend/internal/authz"
	"github.com/hiveboard/hiveboard-backend/internal/config"
	"github.com/hiveboard/hiveboard-backend/internal/email"
	"github.com/hiveboard/hiveboard-backend/internal/errs"
	"github.com/hiveboard/hiveboard-backend/internal/notification"
	"github.com/hiveboard/hiveboard-backend/internal/repository"
	"github.com/hiveboard/hiveboard-backend/internal/types"
)

// invitationTTL is how long a pending invitation stays redeemable.
const invitationTTL = 7 * 24 * time.Hour

// ============================================
// Invitation Service
// ============================================

type InvitationService interface {
	Create(ctx context.Context, actorID, workspaceID, inviteeEmail, role string) (*repository.Invitation, error)
	ListForWorkspace(ctx context.Context, actorID, workspaceID string) ([]*repository.Invitation, error)
	Accept(ctx context.Context, actorID, token string) (*repository.WorkspaceMember, error)
	Revoke(ctx context.Context, actorID, workspaceID, invitationID string) error
}

type invitationService struct {
	cfg            *config.Config
	invitationRepo repository.InvitationRepository
	workspaceRepo  repository.WorkspaceRepository
	userRepo       repository.UserRepository
	access         *accessControl
	notifSvc       *notification.Service
	emailSvc       *email.Service
}

func NewInvitationService(
	cfg *config.Config,
	invitationRepo repository.InvitationRepository,
	workspaceRepo repository.WorkspaceRepository,
	userRepo repository.UserRepository,
	access *accessControl,
	notifSvc *notification.Service,
	emailSvc *email.Service,
) InvitationService {
	return &invitationService{
		cfg:            cfg,
		invitationRepo: invitationRepo,
		workspaceRepo:  workspaceRepo,
		userRepo:       userRepo,
		access:         access,
		notifSvc:       notifSvc,
		emailSvc:       emailSvc,
	}
}

func (s *invitationService) Create(ctx context.Context, actorID, workspaceID, inviteeEmail, role string) (*repository.Invitation, error) {
	rc, err := s.access.require(ctx, actorID, authz.Identifiers{WorkspaceID: workspaceID}, authz.WorkspaceInvite)
	if err != nil {
		return nil, err
	}

	if !types.IsValidRole(role) {
		return nil, errs.Validation("invalid role %q", role)
	}

	// An existing member never needs an invitation.
	if existingUser, err := s.userRepo.FindByEmail(ctx, inviteeEmail); err != nil {
		return nil, err
	} else if existingUser != nil {
		if rc.Workspace.OwnerID == existingUser.ID {
			return nil, errs.Conflict("user is the workspace owner")
		}
		member, err := s.workspaceRepo.FindMember(ctx, workspaceID, existingUser.ID)
		if err != nil {
			return nil, err
		}
		if member != nil {
			return nil, errs.Conflict("user is already a member")
		}
	}

	pending, err := s.invitationRepo.FindPendingByEmail(ctx, inviteeEmail)
	if err != nil {
		return nil, err
	}
	for _, p := range pending {
		if p.WorkspaceID == workspaceID {
			return nil, errs.Conflict("invitation already pending")
		}
	}

	invitation := &repository.Invitation{
		WorkspaceID: workspaceID,
		Email:       inviteeEmail,
		Role:        role,
		Token:       uuid.New().String(),
		InvitedBy:   actorID,
		Status:      types.InvitationPending,
		ExpiresAt:   time.Now().Add(invitationTTL),
	}
	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		return nil, err
	}

	inviter, _ := s.userRepo.FindByID(ctx, actorID)
	inviterName := ""
	if inviter != nil {
		inviterName = inviter.Name
	}

	if s.emailSvc != nil {
		inviteURL := fmt.Sprintf("%s/invite?token=%s", s.cfg.FrontendURL, invitation.Token)
		if err := s.emailSvc.SendInvitation(rc.Workspace.Name, inviteeEmail, inviterName, role, inviteURL); err != nil {
			log.Printf("[Invitation] Failed to send invitation email to %s: %v", inviteeEmail, err)
		}
	}

	// If the invitee already has an account, also push an in-app notification.
	if s.notifSvc != nil {
		if existingUser, err := s.userRepo.FindByEmail(ctx, inviteeEmail); err == nil && existingUser != nil {
			s.notifSvc.SendWorkspaceInvitation(ctx, existingUser.ID, rc.Workspace.Name, workspaceID, invitation.Token)
		}
	}

	return invitation, nil
}

func (s *invitationService) ListForWorkspace(ctx context.Context, actorID, workspaceID string) ([]*repository.Invitation, error) {
	if _, err := s.access.require(ctx, actorID, authz.Identifiers{WorkspaceID: workspaceID}, authz.WorkspaceManageMembers); err != nil {
		return nil, err
	}
	return s.invitationRepo.FindByWorkspaceID(ctx, workspaceID)
}

func (s *invitationService) Accept(ctx context.Context, actorID, token string) (*repository.WorkspaceMember, error) {
	invitation, err := s.invitationRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invitation == nil {
		return nil, errs.NotFound("invitation")
	}
	if invitation.Status != types.InvitationPending {
		return nil, errs.Conflict("invitation is no longer pending")
	}
	if time.Now().After(invitation.ExpiresAt) {
		s.invitationRepo.UpdateStatus(ctx, invitation.ID, types.InvitationExpired)
		return nil, errs.Validation("invitation has expired")
	}

	user, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.NotFound("user")
	}
	if user.Email != invitation.Email {
		return nil, errs.Forbidden("accept invitation")
	}

	workspace, err := s.workspaceRepo.FindByID(ctx, invitation.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, errs.NotFound("workspace")
	}
	if workspace.OwnerID == actorID {
		return nil, errs.Conflict("user is the workspace owner")
	}
	if existing, err := s.workspaceRepo.FindMember(ctx, invitation.WorkspaceID, actorID); err != nil {
		return nil, err
	} else if existing != nil {
		s.invitationRepo.UpdateStatus(ctx, invitation.ID, types.InvitationAccepted)
		return existing, nil
	}

	member := &repository.WorkspaceMember{
		WorkspaceID: invitation.WorkspaceID,
		UserID:      actorID,
		Role:        invitation.Role,
	}
	if err := s.workspaceRepo.AddMember(ctx, member); err != nil {
		return nil, err
	}
	if err := s.invitationRepo.UpdateStatus(ctx, invitation.ID, types.InvitationAccepted); err != nil {
		return nil, err
	}

	return member, nil
}

func (s *invitationService) Revoke(ctx context.Context, actorID, workspaceID, invitationID string) error {
	if _, err := s.access.require(ctx, actorID, authz.Identifiers{WorkspaceID: workspaceID}, authz.WorkspaceManageMembers); err != nil {
		return err
	}

	invitations, err := s.invitationRepo.FindByWorkspaceID(ctx, workspaceID)
	if err != nil {
		return err
	}
	for _, inv := range invitations {
		if inv.ID == invitationID {
			if inv.Status != types.InvitationPending {
				return errs.Conflict("invitation is no longer pending")
			}
			return s.invitationRepo.UpdateStatus(ctx, invitationID, types.InvitationRevoked)
		}
	}
	return errs.NotFound("invitation")
}
