package wfc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tessera/internal/grid"
)

// TestTiledSpec_Validation rejects malformed inputs.
func TestTiledSpec_Validation(t *testing.T) {
	_, err := TiledSpec(nil, nil, nil)
	require.Error(t, err)

	_, err = TiledSpec([]grid.Cell{1, 2}, []float64{1}, nil)
	require.Error(t, err)

	_, err = TiledSpec([]grid.Cell{1, 2}, []float64{1, 0}, nil)
	require.Error(t, err, "weights must be positive")

	_, err = TiledSpec([]grid.Cell{1, 1}, []float64{1, 1}, nil)
	require.Error(t, err, "duplicate tile")

	_, err = TiledSpec([]grid.Cell{1, 2}, []float64{1, 1}, []TileAdjacency{{A: 0, B: 5}})
	require.Error(t, err, "adjacency out of range")
}

// TestTiledSpec_SymmetricAdjacency: allowing a next to b in d also
// allows b next to a in the opposite direction.
func TestTiledSpec_SymmetricAdjacency(t *testing.T) {
	s, err := TiledSpec(
		[]grid.Cell{1, 2},
		[]float64{1, 1},
		[]TileAdjacency{{A: 0, B: 1, Directions: []grid.Direction{grid.XPos}}},
	)
	require.NoError(t, err)

	assert.True(t, s.Compat[grid.XPos][0].has(1))
	assert.True(t, s.Compat[grid.XNeg][1].has(0))
	assert.False(t, s.Compat[grid.XPos][1].has(0))
	assert.False(t, s.Compat[grid.YPos][0].has(1), "direction-limited pair")
}

// TestTiledSpec_AllDirections: a pair with no direction list applies
// everywhere.
func TestTiledSpec_AllDirections(t *testing.T) {
	s, err := TiledSpec(
		[]grid.Cell{1, 2},
		[]float64{2, 3},
		[]TileAdjacency{{A: 0, B: 1}},
	)
	require.NoError(t, err)

	for d := grid.Direction(0); d < grid.NumDirections; d++ {
		assert.True(t, s.Compat[d][0].has(1), d.String())
		assert.True(t, s.Compat[d][1].has(0), d.String())
	}
	assert.Equal(t, []float64{2, 3}, s.Weights)
	assert.Equal(t, []grid.Cell{1, 2}, s.Values)
}

// TestSpec_CandidatesFor maps grid values back to candidate sets.
func TestSpec_CandidatesFor(t *testing.T) {
	s, err := TiledSpec([]grid.Cell{1, 2, 3}, []float64{1, 1, 1}, nil)
	require.NoError(t, err)

	m := s.candidatesFor(2)
	assert.Equal(t, 1, m.count())
	assert.True(t, m.has(1))
	assert.Equal(t, 0, s.candidatesFor(9).count())
}

// TestOverlapSpec_Checkerboard extracts both phases of a periodic
// checkerboard and wires their overlap compatibility.
func TestOverlapSpec_Checkerboard(t *testing.T) {
	sample := [][]grid.Cell{
		{1, 2},
		{2, 1},
	}
	s, err := OverlapSpec(sample, 2, true, false, false)
	require.NoError(t, err)

	require.Equal(t, 2, s.Candidates)
	assert.Equal(t, []float64{2, 2}, s.Weights)
	assert.ElementsMatch(t, []grid.Cell{1, 2}, s.Values)

	// A checkerboard pattern only ever sits next to the opposite phase.
	for _, d := range []grid.Direction{grid.XNeg, grid.XPos, grid.YNeg, grid.YPos} {
		assert.False(t, s.Compat[d][0].has(0), d.String())
		assert.True(t, s.Compat[d][0].has(1), d.String())
		assert.True(t, s.Compat[d][1].has(0), d.String())
	}
}

// TestOverlapSpec_FlipExpansion adds reflected patterns.
func TestOverlapSpec_FlipExpansion(t *testing.T) {
	sample := [][]grid.Cell{
		{1, 2, 2},
		{1, 1, 2},
	}
	plain, err := OverlapSpec(sample, 2, false, false, false)
	require.NoError(t, err)
	flipped, err := OverlapSpec(sample, 2, false, true, false)
	require.NoError(t, err)

	assert.Greater(t, flipped.Candidates, plain.Candidates)
}

// TestOverlapSpec_Validation rejects malformed samples.
func TestOverlapSpec_Validation(t *testing.T) {
	_, err := OverlapSpec(nil, 2, true, false, false)
	require.Error(t, err)

	_, err = OverlapSpec([][]grid.Cell{{1, 2}}, 1, true, false, false)
	require.Error(t, err, "pattern size below 2")

	_, err = OverlapSpec([][]grid.Cell{{1, 2}, {1}}, 2, true, false, false)
	require.Error(t, err, "ragged sample")

	_, err = OverlapSpec([][]grid.Cell{{1, 2}}, 2, false, false, false)
	require.Error(t, err, "sample smaller than pattern without wrap")
}
