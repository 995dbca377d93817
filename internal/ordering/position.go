// Package ordering maintains the total order of sibling entities (lists
// within a board, cards within a list) using sparse float64 position keys.
// Insertions compute a midpoint instead of renumbering the whole container;
// renumbering happens only as a maintenance pass when the gaps wear out.
package ordering

import (
	"errors"

	"github.com/hiveboard/hiveboard-backend/internal/errs"
)

// Gap is the spacing between freshly numbered siblings. A new entity in an
// empty container starts at Gap; appends land at max+Gap.
const Gap = 65536.0

// MinGap is the safety epsilon. Once the space between two neighbors drops
// below it, further midpoints can no longer be distinguished reliably and
// the container must be renumbered before allocating.
const MinGap = 1e-6

// ErrGapExhausted signals that the requested slot has no usable numeric room
// left. Callers renumber the container and retry.
var ErrGapExhausted = errors.New("position gap exhausted, container needs renumbering")

// Neighbor is the client's view of an entity adjacent to the drop target,
// re-read from the store at request time.
type Neighbor struct {
	ID        string
	Container string
	Board     string
	Position  float64
}

// Allocate computes the position for an entity dropped into a container.
// maxPos/hasSiblings describe the container's current occupancy relative to
// the moved entity (the moved entity itself never counts). prev and next are
// optional resolved neighbors.
//
// Rules, in precedence order:
//  1. no neighbors, empty container: Gap
//  2. no neighbors, occupied container: maxPos + Gap (placed after every
//     current member off a single max query)
//  3. only next (dropped at the head): next/2
//  4. only prev (dropped at the tail): prev + Gap
//  5. both: midpoint, after checking prev < next
//
// An inverted neighbor pair (prev >= next) means the client's view of the
// order is stale and yields a ConflictError; the client must refetch and
// retry. Nothing here is retried server-side.
func Allocate(maxPos float64, hasSiblings bool, prev, next *Neighbor) (float64, error) {
	switch {
	case prev == nil && next == nil:
		if !hasSiblings {
			return Gap, nil
		}
		return maxPos + Gap, nil

	case prev == nil:
		if next.Position < MinGap {
			return 0, ErrGapExhausted
		}
		return next.Position / 2, nil

	case next == nil:
		return prev.Position + Gap, nil

	default:
		if prev.Position >= next.Position {
			return 0, errs.Conflict("neighbor positions are out of order, refresh and retry")
		}
		if next.Position-prev.Position < MinGap {
			return 0, ErrGapExhausted
		}
		return (prev.Position + next.Position) / 2, nil
	}
}

// ValidateNeighbor checks that a resolved neighbor actually sits where the
// client claims: in the target container and, for cards, on the same board
// as the moved entity. A mismatch is client error, never a silent fallback.
func ValidateNeighbor(n *Neighbor, kind, targetContainer, targetBoard string) error {
	if n == nil {
		return nil
	}
	if n.Container != targetContainer {
		return errs.Validation("%s neighbor %s is not in the target container", kind, n.ID)
	}
	if targetBoard != "" && n.Board != targetBoard {
		return errs.Validation("%s neighbor %s belongs to a different board", kind, n.ID)
	}
	return nil
}
