package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tessera/internal/grid"
)

// TestRule_ApplyCenter writes the output and reports the change.
func TestRule_ApplyCenter(t *testing.T) {
	g := newTestGrid(t, 3, 3, false)
	g.Set(grid.Coords{X: 1, Y: 1}, 1)

	r := New(NewPattern(1), 2)
	require.True(t, r.Matches(g, grid.Coords{X: 1, Y: 1}))

	var dirty []grid.Coords
	n := r.Apply(g, grid.Coords{X: 1, Y: 1}, func(c grid.Coords) { dirty = append(dirty, c) })
	assert.Equal(t, 1, n)
	assert.Equal(t, grid.Cell(2), g.Get(grid.Coords{X: 1, Y: 1}))
	assert.Equal(t, []grid.Coords{{X: 1, Y: 1}}, dirty)

	// Re-applying the same value is a no-op.
	n = r.Apply(g, grid.Coords{X: 1, Y: 1}, nil)
	assert.Equal(t, 0, n)
}

// TestRule_ApplyNeighborSlots writes to every neighbor in the slot
// direction.
func TestRule_ApplyNeighborSlots(t *testing.T) {
	g := newTestGrid(t, 3, 3, false)
	c := grid.Coords{X: 1, Y: 1}
	g.Set(c, 1)

	r := New(NewPattern(1), 2)
	r.OutSlots[grid.XPos] = 3
	n := r.Apply(g, c, nil)
	assert.Equal(t, 2, n)
	assert.Equal(t, grid.Cell(2), g.Get(c))
	assert.Equal(t, grid.Cell(3), g.Get(grid.Coords{X: 2, Y: 1}))
}

// TestRule_WildcardOutLeavesCenter: Out = Wildcard keeps the center.
func TestRule_WildcardOutLeavesCenter(t *testing.T) {
	g := newTestGrid(t, 3, 3, false)
	c := grid.Coords{X: 1, Y: 1}
	g.Set(c, 1)

	r := New(NewPattern(1), Wildcard)
	r.OutSlots[grid.YNeg] = 4
	n := r.Apply(g, c, nil)
	assert.Equal(t, 1, n)
	assert.Equal(t, grid.Cell(1), g.Get(c))
	assert.Equal(t, grid.Cell(4), g.Get(grid.Coords{X: 1, Y: 0}))
}

// TestRule_Footprint lists center plus slot targets.
func TestRule_Footprint(t *testing.T) {
	g := newTestGrid(t, 3, 3, false)
	c := grid.Coords{X: 1, Y: 1}

	r := New(NewPattern(Wildcard), 2)
	r.OutSlots[grid.XNeg] = 3
	fp := r.Footprint(g, c)
	assert.Equal(t, []grid.Coords{{X: 1, Y: 1}, {X: 0, Y: 1}}, fp)

	// Wildcard output means no center write.
	r2 := New(NewPattern(Wildcard), Wildcard)
	r2.OutSlots[grid.XNeg] = 3
	assert.Equal(t, []grid.Coords{{X: 0, Y: 1}}, r2.Footprint(g, c))
}

// TestRule_WithAllSymmetries_FullOrbit: an asymmetric rule yields one
// variant per group element.
func TestRule_WithAllSymmetries_FullOrbit(t *testing.T) {
	p := NewPattern(1)
	p.Slots[grid.XPos] = 2
	r := New(p, 3)

	xy, err := GroupByName("xy")
	require.NoError(t, err)
	variants := r.WithAllSymmetries(xy)
	// The slot only occupies the X axis, so the Y flip fixes it:
	// orbit size is 2, not 4.
	assert.Len(t, variants, 2)

	p2 := NewPattern(1)
	p2.Slots[grid.XPos] = 2
	p2.Slots[grid.YNeg] = 4
	variants = New(p2, 3).WithAllSymmetries(xy)
	assert.Len(t, variants, 4)
}

// TestRule_WithAllSymmetries_Dedup: a fully symmetric rule collapses
// to a single variant.
func TestRule_WithAllSymmetries_Dedup(t *testing.T) {
	r := New(NewPattern(1), 2)

	xyz, err := GroupByName("xyz")
	require.NoError(t, err)
	assert.Len(t, r.WithAllSymmetries(xyz), 1)

	// Mirror-symmetric slots: same value both ways on one axis.
	p := NewPattern(1)
	p.Slots[grid.XNeg] = 2
	p.Slots[grid.XPos] = 2
	x, err := GroupByName("x")
	require.NoError(t, err)
	assert.Len(t, New(p, 3).WithAllSymmetries(x), 1)
}

// TestRule_WithAllSymmetries_TransformsOutputs: output slots follow
// the same permutation as input slots.
func TestRule_WithAllSymmetries_TransformsOutputs(t *testing.T) {
	p := NewPattern(1)
	p.Slots[grid.XPos] = 0
	r := New(p, Wildcard)
	r.OutSlots[grid.XPos] = 2

	x, err := GroupByName("x")
	require.NoError(t, err)
	variants := r.WithAllSymmetries(x)
	require.Len(t, variants, 2)

	var sawFlipped bool
	for _, v := range variants {
		if v.Input.Slots[grid.XNeg] == 0 {
			assert.Equal(t, int16(2), v.OutSlots[grid.XNeg])
			sawFlipped = true
		}
	}
	assert.True(t, sawFlipped)
}
