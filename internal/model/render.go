package model

import (
	"fmt"
	"strings"

	"github.com/roach88/tessera/internal/grid"
)

// Render draws a grid as text using the model's alphabet, for traces,
// goldens, and debugging. Presentation only; no coordinate semantics
// beyond grid-local indexing.
//
// Euclidean grids render one line per row, with blank lines between Z
// layers. Polar grids render one line per ring, innermost first.
// Spherical grids render each shell as a block of latitude bands.
func (c *Compiled) Render(g grid.Grid) string {
	var b strings.Builder
	dims := g.Dims()
	switch dims.Kind {
	case grid.KindEuclid:
		for z := 0; z < dims.Z; z++ {
			if z > 0 {
				b.WriteByte('\n')
			}
			for y := 0; y < dims.Y; y++ {
				for x := 0; x < dims.X; x++ {
					b.WriteByte(c.Symbol(g.Get(grid.Coords{X: x, Y: y, Z: z})))
				}
				b.WriteByte('\n')
			}
		}
	case grid.KindPolar:
		for r := 0; r < dims.Rings; r++ {
			for t := 0; t < dims.Angular[r][0]; t++ {
				b.WriteByte(c.Symbol(g.Get(grid.Coords{X: r, Y: t})))
			}
			b.WriteByte('\n')
		}
	case grid.KindSphere:
		for r := 0; r < dims.Rings; r++ {
			if r > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "shell %d\n", r)
			for band := range dims.Angular[r] {
				for t := 0; t < dims.Angular[r][band]; t++ {
					b.WriteByte(c.Symbol(g.Get(grid.Coords{X: r, Y: band, Z: t})))
				}
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}
