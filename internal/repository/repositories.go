package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repositories struct {
	UserRepo         UserRepository
	WorkspaceRepo    WorkspaceRepository
	BoardRepo        BoardRepository
	ListRepo         ListRepository
	CardRepo         CardRepository
	CommentRepo      CommentRepository
	AttachmentRepo   AttachmentRepository
	InvitationRepo   InvitationRepository
	NotificationRepo NotificationRepository
}

// NewRepositories creates PostgreSQL-backed repositories.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepo:         NewUserRepository(pool),
		WorkspaceRepo:    NewWorkspaceRepository(pool),
		BoardRepo:        NewBoardRepository(pool),
		ListRepo:         NewListRepository(pool),
		CardRepo:         NewCardRepository(pool),
		CommentRepo:      NewCommentRepository(pool),
		AttachmentRepo:   NewAttachmentRepository(pool),
		InvitationRepo:   NewInvitationRepository(pool),
		NotificationRepo: NewNotificationRepository(pool),
	}
}

// NewInMemoryRepositories creates in-memory repositories (for tests and
// running without a database).
func NewInMemoryRepositories() *Repositories {
	store := newMemStore()
	return &Repositories{
		UserRepo:         newMemUserRepository(),
		WorkspaceRepo:    &memWorkspaceRepository{s: store},
		BoardRepo:        &memBoardRepository{s: store},
		ListRepo:         &memListRepository{s: store},
		CardRepo:         &memCardRepository{s: store},
		CommentRepo:      &memCommentRepository{s: store},
		AttachmentRepo:   &memAttachmentRepository{s: store},
		InvitationRepo:   &memInvitationRepository{s: store},
		NotificationRepo: newMemNotificationRepository(),
	}
}
