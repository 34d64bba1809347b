package rule

import (
	"fmt"
	"strings"

	"github.com/roach88/tessera/internal/grid"
)

// Wildcard marks a pattern slot as "don't care".
const Wildcard int16 = -1

// Pattern is a local neighborhood template: an expected center value
// plus an optional expected value per neighbor direction.
//
// Slot semantics on irregular grids: a non-wildcard slot matches when
// at least one neighbor in that direction holds the expected value,
// and fails when the direction has no neighbors at all (boundary).
// Wildcard slots always pass, including at boundaries.
type Pattern struct {
	Center int16
	Slots  [grid.NumDirections]int16
}

// NewPattern returns a pattern matching center with every slot wild.
func NewPattern(center int16) Pattern {
	p := Pattern{Center: center}
	for i := range p.Slots {
		p.Slots[i] = Wildcard
	}
	return p
}

// Matches tests the pattern at c.
func (p Pattern) Matches(g grid.Grid, c grid.Coords) bool {
	if p.Center != Wildcard && g.Get(c) != grid.Cell(p.Center) {
		return false
	}
	for d, want := range p.Slots {
		if want == Wildcard {
			continue
		}
		ns := g.Neighbors(c, grid.Direction(d))
		if len(ns) == 0 {
			return false
		}
		hit := false
		for _, n := range ns {
			if g.Get(n) == grid.Cell(want) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

// Transformed returns the pattern with its neighbor slots permuted
// through t. The center is unaffected (transforms fix the origin).
func (p Pattern) Transformed(t Transform) Pattern {
	out := NewPattern(p.Center)
	for d, v := range p.Slots {
		if v == Wildcard {
			continue
		}
		out.Slots[t.Apply(grid.Direction(d))] = v
	}
	return out
}

// key is a canonical identity string used to deduplicate orbit members.
func (p Pattern) key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "c%d", p.Center)
	for d, v := range p.Slots {
		if v != Wildcard {
			fmt.Fprintf(&b, "|%d=%d", d, v)
		}
	}
	return b.String()
}
