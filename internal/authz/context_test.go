package authz

import (
	"context"
	"testing"

	"github.com/hiveboard/hiveboard-backend/internal/errs"
	"github.com/hiveboard/hiveboard-backend/internal/repository"
	"github.com/hiveboard/hiveboard-backend/internal/types"
)

type fixture struct {
	repos      *repository.Repositories
	resolver   *ContextResolver
	workspace  *repository.Workspace
	board      *repository.Board
	list       *repository.List
	card       *repository.Card
	comment    *repository.Comment
	attachment *repository.Attachment
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	repos := repository.NewInMemoryRepositories()

	workspace := &repository.Workspace{
		Name:         "Acme",
		OwnerID:      "owner-1",
		Visibility:   types.WorkspacePrivate,
		InvitePolicy: types.PolicyAdmins,
		BoardPolicy:  types.PolicyMembers,
	}
	if err := repos.WorkspaceRepo.Create(ctx, workspace); err != nil {
		t.Fatalf("create workspace: %v", err)
	}

	board := &repository.Board{
		Name:        "Roadmap",
		WorkspaceID: workspace.ID,
		OwnerID:     "owner-1",
		Visibility:  types.BoardWorkspace,
	}
	if err := repos.BoardRepo.Create(ctx, board); err != nil {
		t.Fatalf("create board: %v", err)
	}

	list := &repository.List{Name: "Backlog", BoardID: board.ID, Position: 65536}
	if err := repos.ListRepo.Create(ctx, list); err != nil {
		t.Fatalf("create list: %v", err)
	}

	card := &repository.Card{
		Title:     "First card",
		ListID:    list.ID,
		BoardID:   board.ID,
		Position:  65536,
		CreatedBy: "owner-1",
	}
	if err := repos.CardRepo.Create(ctx, card); err != nil {
		t.Fatalf("create card: %v", err)
	}

	comment := &repository.Comment{Body: "hello", CardID: card.ID, AuthorID: "owner-1"}
	if err := repos.CommentRepo.Create(ctx, comment); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	attachment := &repository.Attachment{FileName: "design.png", URL: "https://example.com/design.png", CardID: card.ID, UploadedBy: "owner-1"}
	if err := repos.AttachmentRepo.Create(ctx, attachment); err != nil {
		t.Fatalf("create attachment: %v", err)
	}

	return &fixture{
		repos:      repos,
		resolver:   NewContextResolver(repos),
		workspace:  workspace,
		board:      board,
		list:       list,
		card:       card,
		comment:    comment,
		attachment: attachment,
	}
}

func TestResolveFromDeepestID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Only the attachment id is supplied. The whole chain comes back.
	rc, err := f.resolver.Resolve(ctx, Identifiers{AttachmentID: f.attachment.ID})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if rc.Attachment == nil || rc.Attachment.ID != f.attachment.ID {
		t.Fatal("attachment not resolved")
	}
	if rc.Card == nil || rc.Card.ID != f.card.ID {
		t.Fatal("card not inferred from attachment")
	}
	if rc.List == nil || rc.List.ID != f.list.ID {
		t.Fatal("list not inferred from card")
	}
	if rc.Board == nil || rc.Board.ID != f.board.ID {
		t.Fatal("board not inferred from list")
	}
	if rc.Workspace == nil || rc.Workspace.ID != f.workspace.ID {
		t.Fatal("workspace not inferred from board")
	}
}

func TestResolveFromCommentID(t *testing.T) {
	f := newFixture(t)

	rc, err := f.resolver.Resolve(context.Background(), Identifiers{CommentID: f.comment.ID})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if rc.Comment == nil || rc.Comment.AuthorID != "owner-1" {
		t.Fatal("comment not resolved")
	}
	if rc.Workspace == nil {
		t.Fatal("workspace not reached from comment")
	}
	if rc.Attachment != nil {
		t.Fatal("attachment must stay nil when not requested")
	}
}

func TestResolveLoadsMemberships(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.repos.WorkspaceRepo.AddMember(ctx, &repository.WorkspaceMember{
		WorkspaceID: f.workspace.ID, UserID: "member-1", Role: types.RoleMember,
	})
	f.repos.BoardRepo.AddMember(ctx, &repository.BoardMember{
		BoardID: f.board.ID, UserID: "member-2", Role: types.RoleAdmin,
	})

	rc, err := f.resolver.Resolve(ctx, Identifiers{CardID: f.card.ID})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(rc.WorkspaceMembers) != 1 || rc.WorkspaceMembers[0].UserID != "member-1" {
		t.Errorf("workspace members not loaded: %+v", rc.WorkspaceMembers)
	}
	if len(rc.BoardMembers) != 1 || rc.BoardMembers[0].UserID != "member-2" {
		t.Errorf("board members not loaded: %+v", rc.BoardMembers)
	}
}

func TestResolveMissingEntity(t *testing.T) {
	f := newFixture(t)

	_, err := f.resolver.Resolve(context.Background(), Identifiers{CardID: "no-such-card"})
	if !errs.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestResolveAncestorMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := &repository.Board{Name: "Other", WorkspaceID: f.workspace.ID, OwnerID: "owner-1", Visibility: types.BoardWorkspace}
	if err := f.repos.BoardRepo.Create(ctx, other); err != nil {
		t.Fatalf("create board: %v", err)
	}

	// The list belongs to the fixture board, not to the supplied one. The
	// contradiction is rejected rather than silently corrected.
	_, err := f.resolver.Resolve(ctx, Identifiers{ListID: f.list.ID, BoardID: other.ID})
	if !errs.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Same for the card's denormalized board reference.
	_, err = f.resolver.Resolve(ctx, Identifiers{CardID: f.card.ID, BoardID: other.ID})
	if !errs.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveConsistentAncestorAccepted(t *testing.T) {
	f := newFixture(t)

	rc, err := f.resolver.Resolve(context.Background(), Identifiers{
		WorkspaceID: f.workspace.ID,
		BoardID:     f.board.ID,
		ListID:      f.list.ID,
		CardID:      f.card.ID,
	})
	if err != nil {
		t.Fatalf("resolve with full consistent chain: %v", err)
	}
	if rc.Card.ID != f.card.ID || rc.Workspace.ID != f.workspace.ID {
		t.Fatal("chain mismatch")
	}
}
