package service

import (
	"context"
	"errors"

	"github.com/hiveboard/hiveboard-backend/internal/authz"
	"github.com/hiveboard/hiveboard-backend/internal/config"
	"github.com/hiveboard/hiveboard-backend/internal/db"
	"github.com/hiveboard/hiveboard-backend/internal/email"
	"github.com/hiveboard/hiveboard-backend/internal/errs"
	"github.com/hiveboard/hiveboard-backend/internal/notification"
	"github.com/hiveboard/hiveboard-backend/internal/ordering"
	"github.com/hiveboard/hiveboard-backend/internal/repository"
	"github.com/hiveboard/hiveboard-backend/internal/socket"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
)

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth         AuthService
	User         UserService
	Workspace    WorkspaceService
	Board        BoardService
	List         ListService
	Card         CardService
	Comment      CommentService
	Attachment   AttachmentService
	Invitation   InvitationService
	Notification NotificationService
	Broadcaster  *socket.Broadcaster
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config      *config.Config
	Repos       *repository.Repositories
	Redis       *db.RedisDB
	NotifSvc    *notification.Service
	EmailSvc    *email.Service
	Broadcaster *socket.Broadcaster
}

func NewServices(deps *ServiceDeps) *Services {
	resolver := authz.NewContextResolver(deps.Repos)
	engine := authz.NewCapabilityEngine()
	access := &accessControl{resolver: resolver, engine: engine}

	mover := ordering.NewMoveCoordinator(deps.Repos.ListRepo, deps.Repos.CardRepo)

	return &Services{
		Auth: NewAuthService(deps.Config, deps.Repos.UserRepo),
		User: NewUserService(deps.Repos.UserRepo),
		Workspace: NewWorkspaceService(
			deps.Repos.WorkspaceRepo,
			deps.Repos.UserRepo,
			access,
			deps.NotifSvc,
			deps.Broadcaster,
		),
		Board: NewBoardService(
			deps.Repos.BoardRepo,
			deps.Repos.ListRepo,
			deps.Repos.CardRepo,
			deps.Repos.UserRepo,
			access,
			deps.Redis,
			deps.NotifSvc,
			deps.Broadcaster,
		),
		List: NewListService(
			deps.Repos.ListRepo,
			access,
			mover,
			deps.Redis,
			deps.Broadcaster,
		),
		Card: NewCardService(
			deps.Repos.CardRepo,
			deps.Repos.UserRepo,
			access,
			mover,
			deps.Redis,
			deps.NotifSvc,
			deps.Broadcaster,
		),
		Comment: NewCommentService(
			deps.Repos.CommentRepo,
			access,
			deps.NotifSvc,
			deps.Broadcaster,
		),
		Attachment: NewAttachmentService(
			deps.Repos.AttachmentRepo,
			access,
			deps.Broadcaster,
		),
		Invitation: NewInvitationService(
			deps.Config,
			deps.Repos.InvitationRepo,
			deps.Repos.WorkspaceRepo,
			deps.Repos.UserRepo,
			access,
			deps.NotifSvc,
			deps.EmailSvc,
		),
		Notification: NewNotificationService(deps.Repos.NotificationRepo),
		Broadcaster:  deps.Broadcaster,
	}
}

// ============================================
// Access Control
// ============================================

// accessControl bundles context resolution with capability evaluation.
// Every guarded service call funnels through require, so capabilities are
// recomputed fresh for each request.
type accessControl struct {
	resolver *authz.ContextResolver
	engine   *authz.CapabilityEngine
}

// require resolves the entity chain for ids and checks that the actor holds
// the given action. It returns the resolved context so callers can reuse the
// fetched entities instead of loading them again.
func (a *accessControl) require(ctx context.Context, actorID string, ids authz.Identifiers, action authz.Action) (*authz.ResourceContext, error) {
	rc, err := a.resolver.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}
	caps := a.engine.Resolve(actorID, rc)
	if !caps.Has(action) {
		return nil, errs.Forbidden(string(action))
	}
	return rc, nil
}

// capabilities resolves the full capability set without requiring any
// particular action. Used by the permissions endpoint.
func (a *accessControl) capabilities(ctx context.Context, actorID string, ids authz.Identifiers) (authz.CapabilitySet, error) {
	rc, err := a.resolver.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}
	return a.engine.Resolve(actorID, rc), nil
}
