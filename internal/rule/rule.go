package rule

import (
	"fmt"

	"github.com/roach88/tessera/internal/grid"
)

// Rule rewrites a matched neighborhood. Out replaces the center value
// (Wildcard leaves it untouched); OutSlots optionally write a value to
// every neighbor in the corresponding direction for multi-cell
// rewrites.
type Rule struct {
	Input    Pattern
	Out      int16
	OutSlots [grid.NumDirections]int16
}

// New returns a rule with all output slots wild.
func New(input Pattern, out int16) Rule {
	r := Rule{Input: input, Out: out}
	for i := range r.OutSlots {
		r.OutSlots[i] = Wildcard
	}
	return r
}

// Matches reports whether the rule's input pattern matches at c.
func (r Rule) Matches(g grid.Grid, c grid.Coords) bool {
	return r.Input.Matches(g, c)
}

// Footprint returns the cells the rule would write at c, center first.
// Used by all-at-once application to reject overlapping rewrites.
func (r Rule) Footprint(g grid.Grid, c grid.Coords) []grid.Coords {
	var out []grid.Coords
	if r.Out != Wildcard {
		out = append(out, c)
	}
	for d, v := range r.OutSlots {
		if v == Wildcard {
			continue
		}
		out = append(out, g.Neighbors(c, grid.Direction(d))...)
	}
	return out
}

// Apply writes the rule's outputs at c, reporting each mutated cell to
// dirty. Returns the number of cells whose value actually changed.
func (r Rule) Apply(g grid.Grid, c grid.Coords, dirty func(grid.Coords)) int {
	changed := 0
	write := func(at grid.Coords, v int16) {
		cell := grid.Cell(v)
		if g.Get(at) == cell {
			return
		}
		g.Set(at, cell)
		changed++
		if dirty != nil {
			dirty(at)
		}
	}
	if r.Out != Wildcard {
		write(c, r.Out)
	}
	for d, v := range r.OutSlots {
		if v == Wildcard {
			continue
		}
		for _, n := range g.Neighbors(c, grid.Direction(d)) {
			write(n, v)
		}
	}
	return changed
}

// transformed maps the rule's input and output slots through t.
func (r Rule) transformed(t Transform) Rule {
	out := New(r.Input.Transformed(t), r.Out)
	for d, v := range r.OutSlots {
		if v == Wildcard {
			continue
		}
		out.OutSlots[t.Apply(grid.Direction(d))] = v
	}
	return out
}

// key extends the input pattern key with the rule's outputs.
func (r Rule) key() string {
	k := r.Input.key() + fmt.Sprintf(">o%d", r.Out)
	for d, v := range r.OutSlots {
		if v != Wildcard {
			k += fmt.Sprintf("|%d=%d", d, v)
		}
	}
	return k
}

// WithAllSymmetries expands the rule into its orbit under g, one
// variant per group element, deduplicated by value. A rule symmetric
// under a subgroup yields proportionally fewer than g.Size() variants.
func (r Rule) WithAllSymmetries(g Group) []Rule {
	seen := make(map[string]bool, g.Size())
	var out []Rule
	for _, t := range g.Elements() {
		v := r.transformed(t)
		k := v.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return out
}
