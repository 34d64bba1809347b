package grid

import (
	"fmt"
	"math"
)

// Polar is a 2D grid of concentric rings. Coordinates are (ring r,
// angular index theta); the valid theta range depends on r.
//
// Angular adjacency wraps within a ring. Radial adjacency is defined by
// strict angular-span overlap between cells of adjacent rings, so the
// neighbor relation is symmetric even where a fine ring meets a coarse
// one and cardinality varies.
type Polar struct {
	cfg     RadialConfig
	counts  []int
	offsets []int
	cells   []Cell
}

var polarDirs = []Direction{XNeg, XPos, YNeg, YPos}

// NewPolar builds a polar grid with the given ring count. The angular
// subdivision of each ring is derived from cfg.
func NewPolar(rings int, cfg RadialConfig) (*Polar, error) {
	if rings <= 0 {
		return nil, fmt.Errorf("polar grid: ring count must be positive, got %d", rings)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	g := &Polar{cfg: cfg, counts: ringCounts(rings, cfg)}
	g.offsets = make([]int, rings+1)
	for r, n := range g.counts {
		g.offsets[r+1] = g.offsets[r] + n
	}
	g.cells = make([]Cell, g.offsets[rings])
	return g, nil
}

// Rings returns the ring count.
func (g *Polar) Rings() int { return len(g.counts) }

// RingCells returns the angular subdivision of ring r.
func (g *Polar) RingCells(r int) int { return g.counts[r] }

// ArcLength returns the angular cell size of ring r.
func (g *Polar) ArcLength(r int) float64 {
	return arcLength(g.cfg.midRadius(r), g.counts[r])
}

// ArcError returns the relative deviation of ring r's arc length from
// the configured target. Inner rings clamped by the growth bound may
// exceed the rounding tolerance; once the subdivision has caught up to
// the ideal the deviation is bounded by half a cell of rounding.
func (g *Polar) ArcError(r int) float64 {
	return math.Abs(g.ArcLength(r)-g.cfg.TargetArc) / g.cfg.TargetArc
}

func (g *Polar) Len() int { return len(g.cells) }

func (g *Polar) Index(c Coords) int { return g.offsets[c.X] + c.Y }

func (g *Polar) At(i int) Coords {
	// Rings are small in number; linear scan over offsets is fine.
	r := 0
	for g.offsets[r+1] <= i {
		r++
	}
	return Coords{X: r, Y: i - g.offsets[r]}
}

func (g *Polar) Contains(c Coords) bool {
	return c.Z == 0 && c.X >= 0 && c.X < len(g.counts) &&
		c.Y >= 0 && c.Y < g.counts[c.X]
}

func (g *Polar) Get(c Coords) Cell    { return g.cells[g.Index(c)] }
func (g *Polar) Set(c Coords, v Cell) { g.cells[g.Index(c)] = v }

func (g *Polar) Clear() {
	for i := range g.cells {
		g.cells[i] = 0
	}
}

func (g *Polar) Directions() []Direction { return polarDirs }

// Neighbors maps X to the radial axis and Y to the angular axis.
//
// Angular neighbors always wrap. A one-cell ring has no angular
// neighbor (a cell is never its own neighbor); a two-cell ring sees the
// same cell in both angular directions.
func (g *Polar) Neighbors(c Coords, d Direction) []Coords {
	r, theta := c.X, c.Y
	n := g.counts[r]
	switch d {
	case YNeg, YPos:
		if n == 1 {
			return nil
		}
		step := -1
		if d == YPos {
			step = 1
		}
		return []Coords{{X: r, Y: ((theta+step)%n + n) % n}}
	case XNeg:
		if r == 0 {
			return nil
		}
		return g.radialOverlap(theta, n, r-1)
	case XPos:
		if r == len(g.counts)-1 {
			return nil
		}
		return g.radialOverlap(theta, n, r+1)
	default:
		return nil
	}
}

// radialOverlap returns the cells of ring other whose angular span
// strictly overlaps cell theta of a ring subdivided into n.
func (g *Polar) radialOverlap(theta, n, other int) []Coords {
	lo, hi := overlapRange(theta, n, g.counts[other])
	out := make([]Coords, 0, hi-lo+1)
	for j := lo; j <= hi; j++ {
		out = append(out, Coords{X: other, Y: j})
	}
	return out
}

func (g *Polar) Dims() Dims {
	ang := make([][]int, len(g.counts))
	for r, n := range g.counts {
		ang[r] = []int{n}
	}
	return Dims{Kind: KindPolar, Rings: len(g.counts), Angular: ang}
}

func (g *Polar) Checksum() uint64 { return checksumCells(g.cells) }
