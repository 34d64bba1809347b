// Package wfc implements the constraint-propagation ("wave function
// collapse") node's internals: a per-cell superposition of candidate
// pattern instances, weighted-entropy observation, and queued
// breadth-first constraint propagation.
//
// The wave writes collapsed cells to the externally-visible grid as
// they resolve. It never swaps the grid for an internal scratch
// buffer; readers of the grid always see in-progress state.
package wfc

import "math/bits"

// bitset is a fixed-capacity candidate set. Tiled models have at most
// one candidate per alphabet symbol, but overlapping models routinely
// exceed 64 patterns, so the set is word-sliced.
type bitset []uint64

func newBitset(n int) bitset {
	return make(bitset, (n+63)/64)
}

func fullBitset(n int) bitset {
	b := newBitset(n)
	for i := 0; i < n; i++ {
		b.set(i)
	}
	return b
}

func (b bitset) set(i int)      { b[i/64] |= 1 << (i % 64) }
func (b bitset) has(i int) bool { return b[i/64]&(1<<(i%64)) != 0 }

func (b bitset) count() int {
	n := 0
	for _, w := range b {
		n += bits.OnesCount64(w)
	}
	return n
}

// intersect ands other into b, reporting whether b changed.
func (b bitset) intersect(other bitset) bool {
	changed := false
	for i := range b {
		next := b[i] & other[i]
		if next != b[i] {
			b[i] = next
			changed = true
		}
	}
	return changed
}

// union ors other into b.
func (b bitset) union(other bitset) {
	for i := range b {
		b[i] |= other[i]
	}
}

func (b bitset) clone() bitset {
	out := make(bitset, len(b))
	copy(out, b)
	return out
}

// first returns the lowest set index, or -1 when empty.
func (b bitset) first() int {
	for i, w := range b {
		if w != 0 {
			return i*64 + bits.TrailingZeros64(w)
		}
	}
	return -1
}

// each calls fn for every set index in increasing order.
func (b bitset) each(fn func(i int)) {
	for wi, w := range b {
		for w != 0 {
			i := bits.TrailingZeros64(w)
			fn(wi*64 + i)
			w &^= 1 << i
		}
	}
}
