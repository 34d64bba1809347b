package wfc

import (
	"fmt"

	"github.com/roach88/tessera/internal/grid"
)

// Spec is a compiled constraint model: the candidate set, per-candidate
// weights and output values, and per-direction compatibility.
//
// Compat[d][t] is the set of candidates allowed in a cell adjacent in
// direction d to a cell holding candidate t. Specs are immutable after
// construction and shared across resets.
type Spec struct {
	Candidates int
	Weights    []float64
	Values     []grid.Cell // grid value written when a candidate collapses
	Compat     [grid.NumDirections][]bitset
}

// allowedFrom unions the compatibility sets of every candidate in mask
// for direction d: the constraint a cell imposes on its d-neighbors.
func (s *Spec) allowedFrom(mask bitset, d grid.Direction) bitset {
	out := newBitset(s.Candidates)
	mask.each(func(t int) {
		out.union(s.Compat[d][t])
	})
	return out
}

// candidatesFor returns the candidates whose output value is v, used to
// constrain wave cells that are already set when the wave initializes.
func (s *Spec) candidatesFor(v grid.Cell) bitset {
	out := newBitset(s.Candidates)
	for t, val := range s.Values {
		if val == v {
			out.set(t)
		}
	}
	return out
}

// TiledSpec builds a Spec whose candidates are single tiles (alphabet
// values) with an explicit adjacency list.
//
// Each adjacency pair (a, b) permits a and b to sit next to each other
// along the listed directions; pairs with no directions apply to every
// direction. Adjacency is symmetric: allowing a->b in direction d also
// allows b->a in d.Opposite().
type TileAdjacency struct {
	A, B       int
	Directions []grid.Direction // empty = all directions
}

// TiledSpec compiles tiles, weights, and adjacency into a Spec.
// Tiles are grid values; weights must be positive and len(weights)
// must equal len(tiles).
func TiledSpec(tiles []grid.Cell, weights []float64, adjacency []TileAdjacency) (*Spec, error) {
	n := len(tiles)
	if n == 0 {
		return nil, fmt.Errorf("tiled spec: no tiles")
	}
	if len(weights) != n {
		return nil, fmt.Errorf("tiled spec: %d weights for %d tiles", len(weights), n)
	}
	for i, w := range weights {
		if w <= 0 {
			return nil, fmt.Errorf("tiled spec: weight of tile %d must be positive, got %v", i, w)
		}
	}
	index := make(map[grid.Cell]int, n)
	for i, t := range tiles {
		if _, dup := index[t]; dup {
			return nil, fmt.Errorf("tiled spec: duplicate tile %d", t)
		}
		index[t] = i
	}

	s := &Spec{
		Candidates: n,
		Weights:    append([]float64(nil), weights...),
		Values:     append([]grid.Cell(nil), tiles...),
	}
	for d := range s.Compat {
		s.Compat[d] = make([]bitset, n)
		for t := 0; t < n; t++ {
			s.Compat[d][t] = newBitset(n)
		}
	}

	allDirs := []grid.Direction{grid.XNeg, grid.XPos, grid.YNeg, grid.YPos, grid.ZNeg, grid.ZPos}
	for _, adj := range adjacency {
		if adj.A < 0 || adj.A >= n || adj.B < 0 || adj.B >= n {
			return nil, fmt.Errorf("tiled spec: adjacency references tile out of range (%d, %d)", adj.A, adj.B)
		}
		dirs := adj.Directions
		if len(dirs) == 0 {
			dirs = allDirs
		}
		for _, d := range dirs {
			s.Compat[d][adj.A].set(adj.B)
			s.Compat[d.Opposite()][adj.B].set(adj.A)
		}
	}
	return s, nil
}

// OverlapSpec builds a Spec whose candidates are the distinct n x n
// patterns of a 2D sample, weighted by occurrence count. Two patterns
// are compatible along a direction when their (n-1)-column or
// (n-1)-row overlap agrees; a collapsed cell takes its pattern's
// top-left value.
//
// Optional fx/fy expand the pattern set with horizontal/vertical
// reflections of the sample patterns, mirroring the symmetry groups
// used for rewrite rules.
func OverlapSpec(sample [][]grid.Cell, n int, periodic, fx, fy bool) (*Spec, error) {
	if n < 2 {
		return nil, fmt.Errorf("overlap spec: pattern size must be >= 2, got %d", n)
	}
	h := len(sample)
	if h == 0 {
		return nil, fmt.Errorf("overlap spec: empty sample")
	}
	w := len(sample[0])
	for y, row := range sample {
		if len(row) != w {
			return nil, fmt.Errorf("overlap spec: ragged sample row %d", y)
		}
	}
	if !periodic && (w < n || h < n) {
		return nil, fmt.Errorf("overlap spec: %dx%d sample smaller than pattern size %d", w, h, n)
	}

	at := func(x, y int) grid.Cell {
		return sample[((y%h)+h)%h][((x%w)+w)%w]
	}

	type pat []grid.Cell // row-major n*n
	key := func(p pat) string {
		b := make([]byte, len(p))
		for i, c := range p {
			b[i] = byte(c)
		}
		return string(b)
	}
	flipX := func(p pat) pat {
		out := make(pat, n*n)
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				out[y*n+x] = p[y*n+(n-1-x)]
			}
		}
		return out
	}
	flipY := func(p pat) pat {
		out := make(pat, n*n)
		for y := 0; y < n; y++ {
			copy(out[y*n:y*n+n], p[(n-1-y)*n:(n-1-y)*n+n])
		}
		return out
	}

	var pats []pat
	counts := make(map[string]int)
	add := func(p pat) {
		k := key(p)
		if counts[k] == 0 {
			pats = append(pats, p)
		}
		counts[k]++
	}

	maxX, maxY := w, h
	if !periodic {
		maxX, maxY = w-n+1, h-n+1
	}
	for y := 0; y < maxY; y++ {
		for x := 0; x < maxX; x++ {
			p := make(pat, n*n)
			for dy := 0; dy < n; dy++ {
				for dx := 0; dx < n; dx++ {
					p[dy*n+dx] = at(x+dx, y+dy)
				}
			}
			add(p)
			if fx {
				add(flipX(p))
			}
			if fy {
				add(flipY(p))
			}
			if fx && fy {
				add(flipY(flipX(p)))
			}
		}
	}

	count := len(pats)
	s := &Spec{
		Candidates: count,
		Weights:    make([]float64, count),
		Values:     make([]grid.Cell, count),
	}
	for i, p := range pats {
		s.Weights[i] = float64(counts[key(p)])
		s.Values[i] = p[0]
	}

	// agrees reports whether pattern b shifted by (dx, dy) matches a on
	// their overlap.
	agrees := func(a, b pat, dx, dy int) bool {
		x0, x1 := max(0, dx), min(n, n+dx)
		y0, y1 := max(0, dy), min(n, n+dy)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				if a[y*n+x] != b[(y-dy)*n+(x-dx)] {
					return false
				}
			}
		}
		return true
	}

	offsets := map[grid.Direction][2]int{
		grid.XNeg: {-1, 0},
		grid.XPos: {1, 0},
		grid.YNeg: {0, -1},
		grid.YPos: {0, 1},
	}
	for d := range s.Compat {
		s.Compat[d] = make([]bitset, count)
		for t := 0; t < count; t++ {
			s.Compat[d][t] = newBitset(count)
		}
	}
	for d, off := range offsets {
		for a := 0; a < count; a++ {
			for b := 0; b < count; b++ {
				if agrees(pats[a], pats[b], off[0], off[1]) {
					s.Compat[d][a].set(b)
				}
			}
		}
	}
	return s, nil
}
