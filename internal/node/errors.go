package node

import (
	"errors"
	"fmt"

	"github.com/roach88/tessera/internal/grid"
)

// ContradictionError reports a constraint-propagation node reaching a
// cell with zero viable candidates. Contradictions are expected, not
// exceptional: the algorithm is probabilistic and retry-with-reseed is
// the standard recovery path.
//
// The error carries the node name and the cell so the caller can
// diagnose which part of the model over-constrained which region.
type ContradictionError struct {
	Node    string
	Cell    grid.Coords
	Retries int // retries already burned before giving up
}

func (e *ContradictionError) Error() string {
	if e.Retries > 0 {
		return fmt.Sprintf("contradiction in node %q at cell %v after %d retries", e.Node, e.Cell, e.Retries)
	}
	return fmt.Sprintf("contradiction in node %q at cell %v", e.Node, e.Cell)
}

// IsContradiction reports whether err is (or wraps) a ContradictionError.
func IsContradiction(err error) bool {
	var ce *ContradictionError
	return errors.As(err, &ce)
}
