package ordering

import (
	"errors"
	"testing"

	"github.com/hiveboard/hiveboard-backend/internal/errs"
)

func TestAllocate(t *testing.T) {
	tests := []struct {
		name        string
		maxPos      float64
		hasSiblings bool
		prev        *Neighbor
		next        *Neighbor
		want        float64
	}{
		{
			name: "empty container starts at the standard gap",
			want: Gap,
		},
		{
			name:        "append lands after the current maximum",
			maxPos:      3 * Gap,
			hasSiblings: true,
			want:        4 * Gap,
		},
		{
			name:        "drop at the head halves the first position",
			hasSiblings: true,
			next:        &Neighbor{ID: "a", Position: Gap},
			want:        Gap / 2,
		},
		{
			name:        "drop at the tail extends past prev",
			maxPos:      2 * Gap,
			hasSiblings: true,
			prev:        &Neighbor{ID: "a", Position: 2 * Gap},
			want:        3 * Gap,
		},
		{
			name:        "drop between two neighbors takes the midpoint",
			maxPos:      2 * Gap,
			hasSiblings: true,
			prev:        &Neighbor{ID: "a", Position: Gap},
			next:        &Neighbor{ID: "b", Position: 2 * Gap},
			want:        1.5 * Gap,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Allocate(tt.maxPos, tt.hasSiblings, tt.prev, tt.next)
			if err != nil {
				t.Fatalf("Allocate: %v", err)
			}
			if got != tt.want {
				t.Errorf("Allocate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllocateInvertedNeighbors(t *testing.T) {
	prev := &Neighbor{ID: "a", Position: 100}
	next := &Neighbor{ID: "b", Position: 50}

	_, err := Allocate(200, true, prev, next)
	if !errs.IsConflict(err) {
		t.Fatalf("expected conflict for inverted neighbors, got %v", err)
	}

	// Equal positions are just as stale as inverted ones.
	next.Position = 100
	if _, err := Allocate(200, true, prev, next); !errs.IsConflict(err) {
		t.Fatalf("expected conflict for equal neighbors, got %v", err)
	}
}

func TestAllocateGapExhaustion(t *testing.T) {
	prev := &Neighbor{ID: "a", Position: 1.0}
	next := &Neighbor{ID: "b", Position: 1.0 + MinGap/2}

	_, err := Allocate(2, true, prev, next)
	if !errors.Is(err, ErrGapExhausted) {
		t.Fatalf("expected gap exhaustion, got %v", err)
	}

	// A head drop with no numeric room left exhausts the same way.
	_, err = Allocate(2, true, nil, &Neighbor{ID: "b", Position: MinGap / 2})
	if !errors.Is(err, ErrGapExhausted) {
		t.Fatalf("expected gap exhaustion at the head, got %v", err)
	}
}

func TestAllocateMidpointStaysBetween(t *testing.T) {
	// Repeated head insertions keep producing strictly decreasing, positive
	// positions until the epsilon cuts them off.
	pos := Gap
	for i := 0; i < 20; i++ {
		got, err := Allocate(Gap, true, nil, &Neighbor{ID: "head", Position: pos})
		if err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
		if got <= 0 || got >= pos {
			t.Fatalf("iteration %d: %v not strictly between 0 and %v", i, got, pos)
		}
		pos = got
	}
}

func TestValidateNeighbor(t *testing.T) {
	n := &Neighbor{ID: "c-1", Container: "list-1", Board: "board-1"}

	if err := ValidateNeighbor(n, "prev", "list-1", "board-1"); err != nil {
		t.Errorf("matching neighbor rejected: %v", err)
	}
	if err := ValidateNeighbor(nil, "prev", "list-1", "board-1"); err != nil {
		t.Errorf("nil neighbor must pass: %v", err)
	}
	if err := ValidateNeighbor(n, "prev", "list-2", "board-1"); !errs.IsValidation(err) {
		t.Errorf("wrong container should be a validation error, got %v", err)
	}
	if err := ValidateNeighbor(n, "prev", "list-1", "board-2"); !errs.IsValidation(err) {
		t.Errorf("wrong board should be a validation error, got %v", err)
	}
	// Lists carry no board dimension; empty target board skips the check.
	if err := ValidateNeighbor(n, "prev", "list-1", ""); err != nil {
		t.Errorf("empty target board must skip the board check: %v", err)
	}
}
