package grid

import (
	"fmt"
	"math"
)

// Sphere is a 3D grid of concentric shells. Coordinates are (shell r,
// latitude band phi, angular index theta); the valid phi range depends
// on r and the valid theta range on both r and phi.
//
// Each shell is split into latitude bands of equal colatitude span.
// A band's angular subdivision scales with the circumference at its
// midpoint latitude, which shrinks by sin(colatitude) toward the poles;
// the subdivision floor is one cell so polar caps are never empty.
//
// Latitude adjacency within a shell and radial adjacency between shells
// both use strict span overlap, so neighbor cardinality varies but the
// relation stays symmetric.
type Sphere struct {
	cfg     RadialConfig
	bands   []int   // latitude bands per shell
	counts  [][]int // angular cells per (shell, band)
	offsets [][]int // flat index of (shell, band, 0)
	cells   []Cell
}

var sphereDirs = []Direction{XNeg, XPos, YNeg, YPos, ZNeg, ZPos}

// NewSphere builds a spherical grid with the given shell count.
func NewSphere(shells int, cfg RadialConfig) (*Sphere, error) {
	if shells <= 0 {
		return nil, fmt.Errorf("sphere grid: shell count must be positive, got %d", shells)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	g := &Sphere{
		cfg:     cfg,
		counts:  make([][]int, shells),
		offsets: make([][]int, shells),
	}

	// Band count per shell follows the meridian length, with the same
	// monotone growth bound as polar rings.
	g.bands = make([]int, shells)
	prev := 0
	for r := 0; r < shells; r++ {
		meridian := math.Pi * cfg.midRadius(r)
		m := int(math.Round(meridian / cfg.TargetArc))
		if m < 1 {
			m = 1
		}
		if m < prev {
			m = prev
		}
		if prev > 0 {
			if limit := int(math.Floor(float64(prev) * cfg.MaxRatio)); m > limit {
				m = limit
			}
		}
		g.bands[r] = m
		prev = m
	}

	total := 0
	for r := 0; r < shells; r++ {
		m := g.bands[r]
		g.counts[r] = make([]int, m)
		g.offsets[r] = make([]int, m+1)
		for b := 0; b < m; b++ {
			g.offsets[r][b] = total
			n := g.bandCells(r, b)
			g.counts[r][b] = n
			total += n
		}
		g.offsets[r][m] = total
	}
	g.cells = make([]Cell, total)
	return g, nil
}

// bandCells derives the angular subdivision of band b in shell r from
// the circumference at the band's midpoint colatitude, floored at 1.
func (g *Sphere) bandCells(r, b int) int {
	mid := math.Pi * (float64(b) + 0.5) / float64(g.bands[r])
	circumference := 2 * math.Pi * g.cfg.midRadius(r) * math.Sin(mid)
	n := int(math.Round(circumference / g.cfg.TargetArc))
	if n < 1 {
		n = 1
	}
	return n
}

// Shells returns the shell count.
func (g *Sphere) Shells() int { return len(g.bands) }

// Bands returns the latitude band count of shell r.
func (g *Sphere) Bands(r int) int { return g.bands[r] }

// BandCells returns the angular subdivision of band b in shell r.
func (g *Sphere) BandCells(r, b int) int { return g.counts[r][b] }

func (g *Sphere) Len() int { return len(g.cells) }

func (g *Sphere) Index(c Coords) int { return g.offsets[c.X][c.Y] + c.Z }

func (g *Sphere) At(i int) Coords {
	for r := range g.offsets {
		m := g.bands[r]
		if i >= g.offsets[r][m] {
			continue
		}
		for b := 0; b < m; b++ {
			if i < g.offsets[r][b+1] {
				return Coords{X: r, Y: b, Z: i - g.offsets[r][b]}
			}
		}
	}
	panic(fmt.Sprintf("sphere grid: index %d out of range", i))
}

func (g *Sphere) Contains(c Coords) bool {
	return c.X >= 0 && c.X < len(g.bands) &&
		c.Y >= 0 && c.Y < g.bands[c.X] &&
		c.Z >= 0 && c.Z < g.counts[c.X][c.Y]
}

func (g *Sphere) Get(c Coords) Cell    { return g.cells[g.Index(c)] }
func (g *Sphere) Set(c Coords, v Cell) { g.cells[g.Index(c)] = v }

func (g *Sphere) Clear() {
	for i := range g.cells {
		g.cells[i] = 0
	}
}

func (g *Sphere) Directions() []Direction { return sphereDirs }

// Neighbors maps X to the radial axis, Y to latitude, Z to the wrapped
// angular axis.
func (g *Sphere) Neighbors(c Coords, d Direction) []Coords {
	r, b, theta := c.X, c.Y, c.Z
	n := g.counts[r][b]
	switch d {
	case ZNeg, ZPos:
		if n == 1 {
			return nil
		}
		step := -1
		if d == ZPos {
			step = 1
		}
		return []Coords{{X: r, Y: b, Z: ((theta+step)%n + n) % n}}
	case YNeg:
		if b == 0 {
			return nil
		}
		return g.latOverlap(r, b-1, theta, n)
	case YPos:
		if b == g.bands[r]-1 {
			return nil
		}
		return g.latOverlap(r, b+1, theta, n)
	case XNeg:
		if r == 0 {
			return nil
		}
		return g.radialOverlap(c, r-1)
	case XPos:
		if r == len(g.bands)-1 {
			return nil
		}
		return g.radialOverlap(c, r+1)
	default:
		return nil
	}
}

// latOverlap returns the cells of band other (same shell r) whose
// angular span strictly overlaps cell theta of an n-cell band.
func (g *Sphere) latOverlap(r, other, theta, n int) []Coords {
	lo, hi := overlapRange(theta, n, g.counts[r][other])
	out := make([]Coords, 0, hi-lo+1)
	for j := lo; j <= hi; j++ {
		out = append(out, Coords{X: r, Y: other, Z: j})
	}
	return out
}

// radialOverlap returns the cells of shell other whose latitude and
// angular spans both strictly overlap cell c's patch.
func (g *Sphere) radialOverlap(c Coords, other int) []Coords {
	var out []Coords
	bLo, bHi := overlapRange(c.Y, g.bands[c.X], g.bands[other])
	n := g.counts[c.X][c.Y]
	for b := bLo; b <= bHi; b++ {
		tLo, tHi := overlapRange(c.Z, n, g.counts[other][b])
		for t := tLo; t <= tHi; t++ {
			out = append(out, Coords{X: other, Y: b, Z: t})
		}
	}
	return out
}

func (g *Sphere) Dims() Dims {
	ang := make([][]int, len(g.counts))
	for r := range g.counts {
		ang[r] = append([]int(nil), g.counts[r]...)
	}
	return Dims{Kind: KindSphere, Rings: len(g.bands), Angular: ang}
}

func (g *Sphere) Checksum() uint64 { return checksumCells(g.cells) }
