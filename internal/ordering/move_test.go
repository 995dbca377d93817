package ordering

import (
	"context"
	"testing"

	"github.com/hiveboard/hiveboard-backend/internal/authz"
	"github.com/hiveboard/hiveboard-backend/internal/errs"
	"github.com/hiveboard/hiveboard-backend/internal/repository"
	"github.com/hiveboard/hiveboard-backend/internal/types"
)

type moveFixture struct {
	repos *repository.Repositories
	mover *MoveCoordinator
	board *repository.Board
	todo  *repository.List
	doing *repository.List
}

func newMoveFixture(t *testing.T) *moveFixture {
	t.Helper()
	ctx := context.Background()
	repos := repository.NewInMemoryRepositories()

	workspace := &repository.Workspace{
		Name: "Acme", OwnerID: "u-1",
		Visibility: types.WorkspacePrivate, InvitePolicy: types.PolicyAdmins, BoardPolicy: types.PolicyMembers,
	}
	if err := repos.WorkspaceRepo.Create(ctx, workspace); err != nil {
		t.Fatalf("create workspace: %v", err)
	}

	board := &repository.Board{Name: "Roadmap", WorkspaceID: workspace.ID, OwnerID: "u-1", Visibility: types.BoardWorkspace}
	if err := repos.BoardRepo.Create(ctx, board); err != nil {
		t.Fatalf("create board: %v", err)
	}

	todo := &repository.List{Name: "Todo", BoardID: board.ID, Position: Gap}
	doing := &repository.List{Name: "Doing", BoardID: board.ID, Position: 2 * Gap}
	for _, l := range []*repository.List{todo, doing} {
		if err := repos.ListRepo.Create(ctx, l); err != nil {
			t.Fatalf("create list: %v", err)
		}
	}

	return &moveFixture{
		repos: repos,
		mover: NewMoveCoordinator(repos.ListRepo, repos.CardRepo),
		board: board,
		todo:  todo,
		doing: doing,
	}
}

func (f *moveFixture) card(t *testing.T, list *repository.List, title string, position float64) *repository.Card {
	t.Helper()
	c := &repository.Card{Title: title, ListID: list.ID, BoardID: list.BoardID, Position: position, CreatedBy: "u-1"}
	if err := f.repos.CardRepo.Create(context.Background(), c); err != nil {
		t.Fatalf("create card: %v", err)
	}
	return c
}

func TestMoveCardAcrossLists(t *testing.T) {
	f := newMoveFixture(t)
	ctx := context.Background()

	a := f.card(t, f.todo, "a", Gap)
	f.card(t, f.doing, "b", Gap)

	// No neighbors supplied: the card lands after everything in the target.
	moved, err := f.mover.MoveCard(ctx, a.ID, f.doing.ID, "", "")
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.ListID != f.doing.ID {
		t.Errorf("card not reparented: %s", moved.ListID)
	}
	if moved.Position != 2*Gap {
		t.Errorf("append position = %v, want %v", moved.Position, 2*Gap)
	}

	stored, err := f.repos.CardRepo.FindByID(ctx, a.ID)
	if err != nil || stored == nil {
		t.Fatalf("reload card: %v", err)
	}
	if stored.ListID != f.doing.ID || stored.Position != 2*Gap {
		t.Errorf("persisted state %s/%v does not match returned card", stored.ListID, stored.Position)
	}
}

func TestMoveCardBetweenNeighbors(t *testing.T) {
	f := newMoveFixture(t)
	ctx := context.Background()

	a := f.card(t, f.todo, "a", Gap)
	b := f.card(t, f.todo, "b", 2*Gap)
	c := f.card(t, f.todo, "c", 3*Gap)

	moved, err := f.mover.MoveCard(ctx, c.ID, f.todo.ID, a.ID, b.ID)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.Position != 1.5*Gap {
		t.Errorf("midpoint = %v, want %v", moved.Position, 1.5*Gap)
	}

	cards, err := f.repos.CardRepo.FindByListID(ctx, f.todo.ID)
	if err != nil {
		t.Fatalf("list cards: %v", err)
	}
	order := []string{cards[0].Title, cards[1].Title, cards[2].Title}
	if order[0] != "a" || order[1] != "c" || order[2] != "b" {
		t.Errorf("order after move = %v", order)
	}
}

func TestMoveCardRejectsForeignNeighbors(t *testing.T) {
	f := newMoveFixture(t)
	ctx := context.Background()

	a := f.card(t, f.todo, "a", Gap)
	other := f.card(t, f.doing, "other", Gap)

	_, err := f.mover.MoveCard(ctx, a.ID, f.todo.ID, other.ID, "")
	if !errs.IsValidation(err) {
		t.Fatalf("neighbor from another list should be a validation error, got %v", err)
	}

	_, err = f.mover.MoveCard(ctx, a.ID, f.todo.ID, "", "no-such-card")
	if !errs.IsValidation(err) {
		t.Fatalf("unknown neighbor should be a validation error, got %v", err)
	}
}

func TestMoveCardRejectsCrossBoardList(t *testing.T) {
	f := newMoveFixture(t)
	ctx := context.Background()

	otherBoard := &repository.Board{Name: "Other", WorkspaceID: f.board.WorkspaceID, OwnerID: "u-1", Visibility: types.BoardWorkspace}
	if err := f.repos.BoardRepo.Create(ctx, otherBoard); err != nil {
		t.Fatalf("create board: %v", err)
	}
	foreign := &repository.List{Name: "Foreign", BoardID: otherBoard.ID, Position: Gap}
	if err := f.repos.ListRepo.Create(ctx, foreign); err != nil {
		t.Fatalf("create list: %v", err)
	}

	a := f.card(t, f.todo, "a", Gap)
	_, err := f.mover.MoveCard(ctx, a.ID, foreign.ID, "", "")
	if !errs.IsValidation(err) {
		t.Fatalf("cross-board list target should be a validation error, got %v", err)
	}
}

func TestMoveCardStaleNeighborOrder(t *testing.T) {
	f := newMoveFixture(t)
	ctx := context.Background()

	a := f.card(t, f.todo, "a", 2*Gap)
	b := f.card(t, f.todo, "b", Gap)
	c := f.card(t, f.todo, "c", 3*Gap)

	// The client believes a precedes b; the store says otherwise.
	_, err := f.mover.MoveCard(ctx, c.ID, f.todo.ID, a.ID, b.ID)
	if !errs.IsConflict(err) {
		t.Fatalf("stale neighbor order should be a conflict, got %v", err)
	}
}

func TestMoveCardRenumbersOnExhaustion(t *testing.T) {
	f := newMoveFixture(t)
	ctx := context.Background()

	// Two cards packed tighter than the epsilon leave no midpoint room.
	a := f.card(t, f.todo, "a", 1.0)
	b := f.card(t, f.todo, "b", 1.0+MinGap/4)
	c := f.card(t, f.doing, "c", Gap)

	moved, err := f.mover.MoveCard(ctx, c.ID, f.todo.ID, a.ID, b.ID)
	if err != nil {
		t.Fatalf("move after renumbering: %v", err)
	}

	// The renumbering pass spreads a and b back onto the standard spacing
	// before the retried allocation.
	if moved.Position != 1.5*Gap {
		t.Errorf("position after renumber = %v, want %v", moved.Position, 1.5*Gap)
	}
	reloaded, _ := f.repos.CardRepo.FindByID(ctx, a.ID)
	if reloaded.Position != Gap {
		t.Errorf("renumbered first card at %v, want %v", reloaded.Position, Gap)
	}
}

func TestMoveList(t *testing.T) {
	f := newMoveFixture(t)
	ctx := context.Background()

	// Reorder within the board: Doing drops before Todo.
	moved, err := f.mover.MoveList(ctx, f.doing.ID, "", "", f.todo.ID)
	if err != nil {
		t.Fatalf("move list: %v", err)
	}
	if moved.Position != Gap/2 {
		t.Errorf("head position = %v, want %v", moved.Position, Gap/2)
	}

	// Cross-board move appends to the target board.
	otherBoard := &repository.Board{Name: "Other", WorkspaceID: f.board.WorkspaceID, OwnerID: "u-1", Visibility: types.BoardWorkspace}
	if err := f.repos.BoardRepo.Create(ctx, otherBoard); err != nil {
		t.Fatalf("create board: %v", err)
	}
	moved, err = f.mover.MoveList(ctx, f.todo.ID, otherBoard.ID, "", "")
	if err != nil {
		t.Fatalf("cross-board move: %v", err)
	}
	if moved.BoardID != otherBoard.ID || moved.Position != Gap {
		t.Errorf("moved list = board %s pos %v, want board %s pos %v", moved.BoardID, moved.Position, otherBoard.ID, Gap)
	}

	// A neighbor left on the old board no longer validates.
	done := &repository.List{Name: "Done", BoardID: f.board.ID, Position: 3 * Gap}
	if err := f.repos.ListRepo.Create(ctx, done); err != nil {
		t.Fatalf("create list: %v", err)
	}
	_, err = f.mover.MoveList(ctx, done.ID, otherBoard.ID, "", f.doing.ID)
	if !errs.IsValidation(err) {
		t.Fatalf("neighbor on a different board should be a validation error, got %v", err)
	}
}

func TestMoveListCarriesCardsToNewBoard(t *testing.T) {
	f := newMoveFixture(t)
	ctx := context.Background()

	a := f.card(t, f.todo, "a", Gap)
	b := f.card(t, f.todo, "b", 2*Gap)

	otherBoard := &repository.Board{Name: "Other", WorkspaceID: f.board.WorkspaceID, OwnerID: "u-1", Visibility: types.BoardWorkspace}
	if err := f.repos.BoardRepo.Create(ctx, otherBoard); err != nil {
		t.Fatalf("create board: %v", err)
	}

	if _, err := f.mover.MoveList(ctx, f.todo.ID, otherBoard.ID, "", ""); err != nil {
		t.Fatalf("move list: %v", err)
	}

	// Every card on the list follows it onto the new board.
	for _, c := range []*repository.Card{a, b} {
		stored, err := f.repos.CardRepo.FindByID(ctx, c.ID)
		if err != nil || stored == nil {
			t.Fatalf("reload card %s: %v", c.Title, err)
		}
		if stored.BoardID != otherBoard.ID {
			t.Errorf("card %s board = %s, want %s", c.Title, stored.BoardID, otherBoard.ID)
		}
	}

	// The carried cards stay movable within the relocated list.
	moved, err := f.mover.MoveCard(ctx, a.ID, f.todo.ID, "", "")
	if err != nil {
		t.Fatalf("move card after list relocation: %v", err)
	}
	if moved.BoardID != otherBoard.ID {
		t.Errorf("moved card board = %s, want %s", moved.BoardID, otherBoard.ID)
	}

	// And the resolver accepts the card paired with its new board.
	resolver := authz.NewContextResolver(f.repos)
	rc, err := resolver.Resolve(ctx, authz.Identifiers{CardID: b.ID, BoardID: otherBoard.ID})
	if err != nil {
		t.Fatalf("resolve card on new board: %v", err)
	}
	if rc.Board == nil || rc.Board.ID != otherBoard.ID {
		t.Errorf("resolved board = %+v, want %s", rc.Board, otherBoard.ID)
	}
}
