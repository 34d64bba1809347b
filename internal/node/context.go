// Package node implements the execution graph of the rewriting engine:
// leaf rewriting nodes (one-match, all-matches), structural containers
// (markov priority sequencing, sequential round-robin), and the
// constraint-propagation node.
//
// Nodes live in an arena addressed by stable IDs; the interpreter holds
// a path of IDs as its cursor instead of pointers into a nested tree.
// The node kind set is closed and dispatched by switch, which keeps
// reset and (future) serialization logic in one place.
package node

import (
	"github.com/roach88/tessera/internal/grid"
	"github.com/roach88/tessera/internal/rng"
)

// Budget bounds the amount of atomic work one step call may perform.
//
// Ticks are atomic and never split: the final tick of a call may
// overshoot the limit (an all-at-once rewrite counts one operation per
// application), but no work is ever lost or repeated across calls.
type Budget struct {
	limit int
	used  int
}

// NewBudget returns a budget permitting limit operations.
func NewBudget(limit int) *Budget {
	return &Budget{limit: limit}
}

// Consume records n operations.
func (b *Budget) Consume(n int) {
	b.used += n
}

// Exhausted reports whether the budget has been used up.
func (b *Budget) Exhausted() bool { return b.used >= b.limit }

// Used returns the operations consumed so far.
func (b *Budget) Used() int { return b.used }

// Context is the per-step execution state handed to node ticks: the
// grid handle, the interpreter's RNG, the work budget, and the
// dirty-cell sink the host reads changed cells from.
type Context struct {
	Grid   grid.Grid
	RNG    *rng.RNG
	Budget *Budget

	dirty []grid.Coords
}

// MarkDirty records a mutated cell for the host.
func (c *Context) MarkDirty(at grid.Coords) {
	c.dirty = append(c.dirty, at)
}

// Dirty returns the cells mutated since the last TakeDirty.
func (c *Context) Dirty() []grid.Coords { return c.dirty }

// TakeDirty returns and clears the dirty-cell list.
func (c *Context) TakeDirty() []grid.Coords {
	d := c.dirty
	c.dirty = nil
	return d
}
