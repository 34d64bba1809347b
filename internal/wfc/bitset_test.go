package wfc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestBitset_WordBoundary exercises sets wider than one word.
func TestBitset_WordBoundary(t *testing.T) {
	b := newBitset(100)
	assert.Len(t, b, 2)

	b.set(0)
	b.set(63)
	b.set(64)
	b.set(99)
	assert.True(t, b.has(63))
	assert.True(t, b.has(64))
	assert.False(t, b.has(65))
	assert.Equal(t, 4, b.count())
	assert.Equal(t, 0, b.first())

	full := fullBitset(100)
	assert.Equal(t, 100, full.count())
}

// TestBitset_IntersectReportsChange only reports actual narrowing.
func TestBitset_IntersectReportsChange(t *testing.T) {
	a := fullBitset(10)
	mask := newBitset(10)
	mask.set(3)
	mask.set(7)

	assert.True(t, a.intersect(mask))
	assert.Equal(t, 2, a.count())
	assert.False(t, a.intersect(mask), "second intersect is a no-op")
}

// TestBitset_Each visits indices in increasing order.
func TestBitset_Each(t *testing.T) {
	b := newBitset(130)
	for _, i := range []int{5, 64, 129} {
		b.set(i)
	}
	var got []int
	b.each(func(i int) { got = append(got, i) })
	assert.Equal(t, []int{5, 64, 129}, got)

	empty := newBitset(10)
	assert.Equal(t, -1, empty.first())
}

// TestBitset_UnionClone covers the remaining set algebra.
func TestBitset_UnionClone(t *testing.T) {
	a := newBitset(70)
	a.set(1)
	b := newBitset(70)
	b.set(68)

	c := a.clone()
	c.union(b)
	assert.Equal(t, 2, c.count())
	assert.Equal(t, 1, a.count(), "clone does not alias")
}
