// Package grid owns cell storage and coordinate-to-index mapping for the
// rewriting engine.
//
// Three coordinate systems are provided:
//
//   - Euclid: a uniform 2D/3D lattice with fixed-stride indexing and
//     exactly one neighbor per direction (absent at hard boundaries,
//     wrapping when toroidal).
//   - Polar: concentric rings whose angular subdivision grows with
//     radius so that arc length tracks a configured target. Radial
//     adjacency is irregular: a cell may have zero, one, or several
//     radial neighbors depending on how ring subdivisions line up.
//   - Sphere: concentric shells of latitude bands; angular subdivision
//     additionally scales with sin(latitude), floored at one cell per
//     band so polar caps never produce empty rings.
//
// All neighbor relations are symmetric: if B is a neighbor of A in
// direction d, A is a neighbor of B in d.Opposite(). The irregular
// radial/latitude adjacencies preserve this by construction (both sides
// evaluate the same strict interval-overlap predicate).
package grid

import (
	"fmt"
	"hash/fnv"
)

// Cell is one grid value: an index into a per-model alphabet.
// Zero conventionally means "empty/unset".
type Cell uint8

// MaxAlphabet bounds alphabet size; cell values are always in
// [0, alphabet size) and alphabet size never exceeds this.
const MaxAlphabet = 64

// Coords addresses one cell. Axis meaning depends on the grid kind:
//
//	Euclid: X, Y, Z are lattice positions (Z is 0 on 2D grids).
//	Polar:  X is the ring index, Y the angular index, Z unused.
//	Sphere: X is the shell index, Y the latitude band, Z the angular index.
type Coords struct {
	X, Y, Z int
}

func (c Coords) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Direction identifies one neighbor direction along a signed axis.
// Opposite directions differ only in their low bit, so pairing is O(1).
type Direction uint8

const (
	XNeg Direction = iota
	XPos
	YNeg
	YPos
	ZNeg
	ZPos

	// NumDirections is the size of the full direction set.
	NumDirections = 6
)

// Opposite returns the direction along the same axis with flipped sign.
func (d Direction) Opposite() Direction { return d ^ 1 }

// Axis returns 0, 1, or 2 for the X, Y, or Z axis.
func (d Direction) Axis() int { return int(d) / 2 }

// Positive reports whether the direction points along the positive axis.
func (d Direction) Positive() bool { return d&1 == 1 }

func (d Direction) String() string {
	switch d {
	case XNeg:
		return "x-"
	case XPos:
		return "x+"
	case YNeg:
		return "y-"
	case YPos:
		return "y+"
	case ZNeg:
		return "z-"
	case ZPos:
		return "z+"
	default:
		return fmt.Sprintf("dir(%d)", uint8(d))
	}
}

// Kind discriminates the coordinate system of a grid.
type Kind string

const (
	KindEuclid Kind = "euclidean"
	KindPolar  Kind = "polar"
	KindSphere Kind = "spherical"
)

// Dims describes a grid's logical extent.
//
// Euclidean grids populate X, Y, Z. Radial grids populate Rings and
// Angular: for polar grids Angular[r] has a single entry (cells in ring
// r); for spherical grids Angular[r][b] is the cell count of latitude
// band b in shell r.
type Dims struct {
	Kind    Kind
	X, Y, Z int
	Rings   int
	Angular [][]int
}

// Grid is the write-target contract shared by the engine and its host.
//
// Index and At give a stable bijection between coordinates and the
// dense range [0, Len()); leaf nodes use it to scan every cell in a
// deterministic order.
type Grid interface {
	Get(c Coords) Cell
	Set(c Coords, v Cell)
	Clear()
	Len() int
	Index(c Coords) int
	At(i int) Coords
	Contains(c Coords) bool

	// Directions returns the direction set valid for this grid, in a
	// fixed deterministic order.
	Directions() []Direction

	// Neighbors returns every cell adjacent to c in direction d.
	// The slice may be empty (boundary) and its order is deterministic.
	Neighbors(c Coords, d Direction) []Coords

	Dims() Dims

	// Checksum is an FNV-1a digest of the full cell contents, used for
	// determinism verification and the run archive.
	Checksum() uint64
}

// checksumCells hashes a flat cell slice with FNV-1a.
func checksumCells(cells []Cell) uint64 {
	h := fnv.New64a()
	buf := make([]byte, 1)
	for _, c := range cells {
		buf[0] = byte(c)
		h.Write(buf)
	}
	return h.Sum64()
}

// spansOverlap reports whether the half-open spans [a, a+1)/na and
// [b, b+1)/nb strictly overlap on the unit interval. Touching at a
// shared boundary does not count as overlap. The predicate is symmetric
// in its two spans, which is what keeps irregular adjacency symmetric.
func spansOverlap(a, na, b, nb int) bool {
	return a*nb < (b+1)*na && b*na < (a+1)*nb
}

// overlapRange returns the indices j in [0, nb) whose span [j, j+1)/nb
// strictly overlaps [a, a+1)/na, in increasing order.
func overlapRange(a, na, nb int) (lo, hi int) {
	// First j with j/nb < (a+1)/na and a/na < (j+1)/nb.
	lo = a * nb / na
	if !spansOverlap(a, na, lo, nb) {
		lo++
	}
	hi = lo
	for hi+1 < nb && spansOverlap(a, na, hi+1, nb) {
		hi++
	}
	return lo, hi
}
