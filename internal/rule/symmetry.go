// Package rule implements local neighborhood patterns, input-to-output
// rewrites, and the symmetry groups that expand one authored rule into
// its full orbit of rotational/reflective variants.
package rule

import (
	"fmt"
	"sort"

	"github.com/roach88/tessera/internal/grid"
)

// Transform is one coordinate-delta transform: a set of per-axis flips
// encoded as a bitmask (bit i flips axis i).
//
// Every transform is its own inverse, and composition is XOR, so any
// set of transforms closed under XOR forms a group (Z2 x Z2 x Z2 at
// most).
type Transform uint8

// Apply maps a neighbor direction through the transform.
func (t Transform) Apply(d grid.Direction) grid.Direction {
	if t&(1<<d.Axis()) != 0 {
		return d.Opposite()
	}
	return d
}

// Compose returns the transform equivalent to applying t then u.
func (t Transform) Compose(u Transform) Transform { return t ^ u }

func (t Transform) String() string {
	if t == 0 {
		return "identity"
	}
	s := ""
	for axis, name := range []string{"x", "y", "z"} {
		if t&(1<<axis) != 0 {
			s += name
		}
	}
	return "flip-" + s
}

// Group is a finite closed set of self-inverse transforms.
type Group struct {
	name  string
	elems []Transform
}

// Elements returns the group's transforms in a fixed order.
func (g Group) Elements() []Transform { return g.elems }

// Size returns the element count.
func (g Group) Size() int { return len(g.elems) }

// Name returns the name the group was constructed under.
func (g Group) Name() string { return g.name }

// groupFromAxes builds the full subgroup generated by flips of the
// given axes: 2^len(axes) elements.
func groupFromAxes(name string, axes ...int) Group {
	mask := Transform(0)
	for _, a := range axes {
		mask |= 1 << a
	}
	var elems []Transform
	for t := Transform(0); t < 8; t++ {
		if t&^mask == 0 {
			elems = append(elems, t)
		}
	}
	sort.Slice(elems, func(i, j int) bool { return elems[i] < elems[j] })
	return Group{name: name, elems: elems}
}

// Named symmetry groups available to model authors. "xy" is the
// 4-element Z2 x Z2 group used by 2D and polar grids (identity,
// angular flip, radial flip, both); "xyz" is the full 8-element
// Z2 x Z2 x Z2 group for 3D and spherical grids.
var groups = map[string]Group{
	"none": groupFromAxes("none"),
	"x":    groupFromAxes("x", 0),
	"y":    groupFromAxes("y", 1),
	"z":    groupFromAxes("z", 2),
	"xy":   groupFromAxes("xy", 0, 1),
	"xz":   groupFromAxes("xz", 0, 2),
	"yz":   groupFromAxes("yz", 1, 2),
	"xyz":  groupFromAxes("xyz", 0, 1, 2),
}

// GroupByName looks up a named symmetry group.
func GroupByName(name string) (Group, error) {
	g, ok := groups[name]
	if !ok {
		return Group{}, fmt.Errorf("unknown symmetry group %q", name)
	}
	return g, nil
}
