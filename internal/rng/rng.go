// Package rng provides the deterministic random source used by the
// rewriting engine.
//
// Each interpreter instance owns exactly one RNG seeded at construction
// or reset. There is no process-wide source: per-instance seeding is
// what makes independent generation jobs reproducible when the host
// drives several interpreters concurrently.
package rng

import "math/rand/v2"

// RNG is a thin deterministic wrapper around math/rand/v2's PCG source.
//
// The zero value is not usable; construct with New.
type RNG struct {
	seed uint64
	r    *rand.Rand
}

// New creates a deterministic RNG from the given seed.
// The same seed always yields the same draw sequence.
func New(seed uint64) *RNG {
	return &RNG{seed: seed, r: rand.New(rand.NewPCG(seed, 0))}
}

// Reseed discards all generator state and restarts from seed.
func (g *RNG) Reseed(seed uint64) {
	g.seed = seed
	g.r = rand.New(rand.NewPCG(seed, 0))
}

// Seed returns the seed the generator was last (re)started from.
func (g *RNG) Seed() uint64 { return g.seed }

// IntN returns a uniform int in [0, n). Panics if n <= 0.
func (g *RNG) IntN(n int) int { return g.r.IntN(n) }

// Float64 returns a uniform float64 in [0, 1).
func (g *RNG) Float64() float64 { return g.r.Float64() }

// Shuffle pseudo-randomizes the order of n elements via swap.
func (g *RNG) Shuffle(n int, swap func(i, j int)) { g.r.Shuffle(n, swap) }

// WeightedIndex picks an index in [0, len(weights)) with probability
// proportional to its weight. Zero or negative weights never win unless
// every weight is non-positive, in which case index 0 is returned.
func (g *RNG) WeightedIndex(weights []float64) int {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 0
	}
	target := g.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		target -= w
		if target < 0 {
			return i
		}
	}
	return len(weights) - 1
}
