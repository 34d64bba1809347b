package grid

import "fmt"

// Euclid is a uniform 2D or 3D lattice with row-major storage.
//
// Edges are either hard (out-of-bounds neighbors absent) or toroidal
// (coordinates wrap per axis). Every interior cell has exactly one
// neighbor per direction.
type Euclid struct {
	w, h, d int
	wrap    bool
	cells   []Cell
	dirs    []Direction
}

// NewEuclid allocates a w*h*d lattice. Pass d=1 for a 2D grid; 2D grids
// expose only the X and Y direction pairs.
func NewEuclid(w, h, d int, wrap bool) (*Euclid, error) {
	if w <= 0 || h <= 0 || d <= 0 {
		return nil, fmt.Errorf("euclid grid: extents must be positive, got %dx%dx%d", w, h, d)
	}
	g := &Euclid{
		w:     w,
		h:     h,
		d:     d,
		wrap:  wrap,
		cells: make([]Cell, w*h*d),
	}
	g.dirs = []Direction{XNeg, XPos, YNeg, YPos}
	if d > 1 {
		g.dirs = append(g.dirs, ZNeg, ZPos)
	}
	return g, nil
}

func (g *Euclid) Len() int { return len(g.cells) }

func (g *Euclid) Index(c Coords) int {
	return (c.Z*g.h+c.Y)*g.w + c.X
}

func (g *Euclid) At(i int) Coords {
	x := i % g.w
	y := (i / g.w) % g.h
	z := i / (g.w * g.h)
	return Coords{X: x, Y: y, Z: z}
}

func (g *Euclid) Contains(c Coords) bool {
	return c.X >= 0 && c.X < g.w &&
		c.Y >= 0 && c.Y < g.h &&
		c.Z >= 0 && c.Z < g.d
}

func (g *Euclid) Get(c Coords) Cell    { return g.cells[g.Index(c)] }
func (g *Euclid) Set(c Coords, v Cell) { g.cells[g.Index(c)] = v }

func (g *Euclid) Clear() {
	for i := range g.cells {
		g.cells[i] = 0
	}
}

func (g *Euclid) Directions() []Direction { return g.dirs }

// Neighbors returns the single adjacent cell in direction d, wrapping
// on toroidal grids. At a hard boundary the result is empty. A cell is
// never its own neighbor, so a wrapped axis of extent 1 has no
// neighbors along that axis.
func (g *Euclid) Neighbors(c Coords, d Direction) []Coords {
	step := 1
	if !d.Positive() {
		step = -1
	}
	n := c
	var extent int
	switch d.Axis() {
	case 0:
		n.X += step
		extent = g.w
	case 1:
		n.Y += step
		extent = g.h
	default:
		n.Z += step
		extent = g.d
	}
	if g.Contains(n) {
		return []Coords{n}
	}
	if !g.wrap {
		return nil
	}
	switch d.Axis() {
	case 0:
		n.X = ((n.X % extent) + extent) % extent
	case 1:
		n.Y = ((n.Y % extent) + extent) % extent
	default:
		n.Z = ((n.Z % extent) + extent) % extent
	}
	if n == c {
		return nil
	}
	return []Coords{n}
}

func (g *Euclid) Dims() Dims {
	return Dims{Kind: KindEuclid, X: g.w, Y: g.h, Z: g.d}
}

func (g *Euclid) Checksum() uint64 { return checksumCells(g.cells) }
