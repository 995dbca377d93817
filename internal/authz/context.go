package authz

import (
	"context"

	"github.com/hiveboard/hiveboard-backend/internal/errs"
	"github.com/hiveboard/hiveboard-backend/internal/repository"
)

// Identifiers is the sparse set of ids extracted from a request path. Any
// combination may be supplied; missing ancestors are inferred from child
// parent references.
type Identifiers struct {
	WorkspaceID  string
	BoardID      string
	ListID       string
	CardID       string
	CommentID    string
	AttachmentID string
}

// ResourceContext is the resolved ancestor chain for a request. Each slot is
// nil when that entity was neither supplied nor reachable from a supplied
// descendant. When a child slot is populated, its ancestors are too, and
// their parent references are consistent by construction.
type ResourceContext struct {
	Workspace        *repository.Workspace
	WorkspaceMembers []*repository.WorkspaceMember
	Board            *repository.Board
	BoardMembers     []*repository.BoardMember
	List             *repository.List
	Card             *repository.Card
	Comment          *repository.Comment
	Attachment       *repository.Attachment
}

// ContextResolver reconstructs the entity hierarchy for a request. It only
// reads; the produced context is the sole output.
type ContextResolver struct {
	workspaceRepo  repository.WorkspaceRepository
	boardRepo      repository.BoardRepository
	listRepo       repository.ListRepository
	cardRepo       repository.CardRepository
	commentRepo    repository.CommentRepository
	attachmentRepo repository.AttachmentRepository
}

func NewContextResolver(repos *repository.Repositories) *ContextResolver {
	return &ContextResolver{
		workspaceRepo:  repos.WorkspaceRepo,
		boardRepo:      repos.BoardRepo,
		listRepo:       repos.ListRepo,
		cardRepo:       repos.CardRepo,
		commentRepo:    repos.CommentRepo,
		attachmentRepo: repos.AttachmentRepo,
	}
}

// Resolve walks the supplied identifiers deepest-first (attachment, comment,
// card, list, board, workspace). Children store a direct parent reference,
// so each step can fill in the next identifier up; repeated single hops
// reconstruct the full chain even when only the deepest id was supplied.
//
// A supplied ancestor id that contradicts a child's stored parent is a
// ValidationError: the mismatch means the client's view of the hierarchy is
// wrong, and silently correcting it would mask the bug.
func (r *ContextResolver) Resolve(ctx context.Context, ids Identifiers) (*ResourceContext, error) {
	rc := &ResourceContext{}

	if ids.AttachmentID != "" {
		attachment, err := r.attachmentRepo.FindByID(ctx, ids.AttachmentID)
		if err != nil {
			return nil, err
		}
		if attachment == nil {
			return nil, errs.NotFound("attachment")
		}
		rc.Attachment = attachment
		if ids.CardID, err = inferParent(ids.CardID, attachment.CardID, "attachment", "card"); err != nil {
			return nil, err
		}
	}

	if ids.CommentID != "" {
		comment, err := r.commentRepo.FindByID(ctx, ids.CommentID)
		if err != nil {
			return nil, err
		}
		if comment == nil {
			return nil, errs.NotFound("comment")
		}
		rc.Comment = comment
		if ids.CardID, err = inferParent(ids.CardID, comment.CardID, "comment", "card"); err != nil {
			return nil, err
		}
	}

	if ids.CardID != "" {
		card, err := r.cardRepo.FindByID(ctx, ids.CardID)
		if err != nil {
			return nil, err
		}
		if card == nil {
			return nil, errs.NotFound("card")
		}
		rc.Card = card
		if ids.ListID, err = inferParent(ids.ListID, card.ListID, "card", "list"); err != nil {
			return nil, err
		}
		// Cards also carry a denormalized board reference; a supplied board id
		// must agree with it.
		if ids.BoardID != "" && ids.BoardID != card.BoardID {
			return nil, errs.Validation("card %s does not belong to board %s", card.ID, ids.BoardID)
		}
	}

	if ids.ListID != "" {
		list, err := r.listRepo.FindByID(ctx, ids.ListID)
		if err != nil {
			return nil, err
		}
		if list == nil {
			return nil, errs.NotFound("list")
		}
		rc.List = list
		if ids.BoardID, err = inferParent(ids.BoardID, list.BoardID, "list", "board"); err != nil {
			return nil, err
		}
	}

	if ids.BoardID != "" {
		board, err := r.boardRepo.FindByID(ctx, ids.BoardID)
		if err != nil {
			return nil, err
		}
		if board == nil {
			return nil, errs.NotFound("board")
		}
		rc.Board = board
		if ids.WorkspaceID, err = inferParent(ids.WorkspaceID, board.WorkspaceID, "board", "workspace"); err != nil {
			return nil, err
		}
		if rc.BoardMembers, err = r.boardRepo.FindMembers(ctx, board.ID); err != nil {
			return nil, err
		}
	}

	if ids.WorkspaceID != "" {
		workspace, err := r.workspaceRepo.FindByID(ctx, ids.WorkspaceID)
		if err != nil {
			return nil, err
		}
		if workspace == nil {
			return nil, errs.NotFound("workspace")
		}
		rc.Workspace = workspace
		if rc.WorkspaceMembers, err = r.workspaceRepo.FindMembers(ctx, workspace.ID); err != nil {
			return nil, err
		}
	}

	return rc, nil
}

// inferParent fills in a missing ancestor id from the child's stored parent
// reference, or rejects a supplied id that contradicts it.
func inferParent(supplied, actual, childType, parentType string) (string, error) {
	if supplied == "" {
		return actual, nil
	}
	if supplied != actual {
		return "", errs.Validation("supplied %s id %s conflicts with the %s's actual parent", parentType, supplied, childType)
	}
	return supplied, nil
}
