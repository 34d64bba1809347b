package wfc

import (
	"fmt"
	"math"

	"github.com/roach88/tessera/internal/grid"
	"github.com/roach88/tessera/internal/rng"
)

// StepStatus is the tri-state outcome of one atomic wave step.
type StepStatus uint8

const (
	// StatusProgress means the step did one unit of work and more remains.
	StatusProgress StepStatus = iota
	// StatusDone means every cell has collapsed to a single candidate.
	StatusDone
	// StatusContradiction means some cell lost its last candidate.
	StatusContradiction
)

// StepInfo reports one wave step: what happened, which cell collapsed
// or contradicted, and the operation count consumed.
type StepInfo struct {
	Status       StepStatus
	Collapsed    grid.Coords
	DidCollapse  bool
	Contradicted grid.Coords
	Ops          int
}

// ContradictionAt reports a cell whose preset value admits no
// candidate, detected while the wave initializes.
type ContradictionAt struct {
	Cell  grid.Coords
	Value grid.Cell
}

func (e *ContradictionAt) Error() string {
	return fmt.Sprintf("wave init: cell %v value %d has no candidates", e.Cell, e.Value)
}

// Wave is the superposition state of one constraint-propagation node:
// a candidate set per grid cell, kept separate from the output grid.
//
// One Step performs exactly one atomic unit: either an observe
// (collapse the lowest-entropy cell to a weighted-random candidate) or
// one propagation (re-constrain the neighbors of one queued cell).
// Cascades queue further work instead of recursing, so every step is
// bounded and the wave is resumable at any point.
//
// Propagation order is breadth-first: constrained cells join a FIFO
// queue and are revisited in arrival order. Depth-first revisiting
// would converge to the same fixpoint; FIFO keeps per-step latency
// even, which suits animated stepping.
//
// Collapsed values are written to the grid immediately and in place,
// so partial progress is externally visible. The grid buffer is never
// swapped or replaced.
type Wave struct {
	spec *Spec
	g    grid.Grid

	possible  []bitset
	collapsed []bool
	remaining int

	queue  []int // FIFO of cell indices whose constraints must be pushed
	queued []bool

	written []int // cells this wave wrote, for retry cleanup
}

// NewWave initializes a wave over g. Cells already holding a non-empty
// value are constrained to the candidates producing that value; those
// constraints are queued for propagation before the first observe.
//
// Returns an error if a preset cell has no matching candidate.
func NewWave(spec *Spec, g grid.Grid) (*Wave, error) {
	size := g.Len()
	w := &Wave{
		spec:      spec,
		g:         g,
		possible:  make([]bitset, size),
		collapsed: make([]bool, size),
		remaining: size,
		queued:    make([]bool, size),
	}
	for i := 0; i < size; i++ {
		w.possible[i] = fullBitset(spec.Candidates)
	}
	for i := 0; i < size; i++ {
		v := g.Get(g.At(i))
		if v == 0 {
			continue
		}
		mask := spec.candidatesFor(v)
		if !w.possible[i].intersect(mask) {
			continue
		}
		n := w.possible[i].count()
		if n == 0 {
			return nil, &ContradictionAt{Cell: g.At(i), Value: v}
		}
		if n == 1 {
			// Preset and fully determined; no write needed.
			w.collapsed[i] = true
			w.remaining--
		}
		w.enqueue(i)
	}
	return w, nil
}

func (w *Wave) enqueue(i int) {
	if w.queued[i] {
		return
	}
	w.queued[i] = true
	w.queue = append(w.queue, i)
}

// Remaining returns the number of uncollapsed cells.
func (w *Wave) Remaining() int { return w.remaining }

// PendingPropagation returns the propagation queue length.
func (w *Wave) PendingPropagation() int { return len(w.queue) }

// Step performs one atomic unit of work. dirty, if non-nil, receives
// every grid cell the step wrote.
func (w *Wave) Step(r *rng.RNG, dirty func(grid.Coords)) StepInfo {
	if len(w.queue) > 0 {
		return w.propagateOne(dirty)
	}
	if w.remaining == 0 {
		return StepInfo{Status: StatusDone}
	}
	return w.observe(r, dirty)
}

// observe collapses the lowest-entropy uncollapsed cell to one of its
// candidates, weighted by candidate frequency. Entropy ties are broken
// uniformly at random so no grid corner is systematically favored.
func (w *Wave) observe(r *rng.RNG, dirty func(grid.Coords)) StepInfo {
	best := math.Inf(1)
	var ties []int
	for i := range w.possible {
		if w.collapsed[i] {
			continue
		}
		e := w.entropy(i)
		switch {
		case e < best:
			best = e
			ties = ties[:0]
			ties = append(ties, i)
		case e == best:
			ties = append(ties, i)
		}
	}
	if len(ties) == 0 {
		return StepInfo{Status: StatusDone}
	}
	i := ties[0]
	if len(ties) > 1 {
		i = ties[r.IntN(len(ties))]
	}

	weights := make([]float64, w.spec.Candidates)
	w.possible[i].each(func(t int) {
		weights[t] = w.spec.Weights[t]
	})
	t := r.WeightedIndex(weights)

	w.collapseTo(i, t, dirty)
	w.enqueue(i)
	return StepInfo{
		Status:      StatusProgress,
		Collapsed:   w.g.At(i),
		DidCollapse: true,
		Ops:         1,
	}
}

// collapseTo pins cell i to candidate t and writes its value in place.
func (w *Wave) collapseTo(i, t int, dirty func(grid.Coords)) {
	mask := newBitset(w.spec.Candidates)
	mask.set(t)
	w.possible[i] = mask
	w.collapsed[i] = true
	w.remaining--

	at := w.g.At(i)
	v := w.spec.Values[t]
	if w.g.Get(at) != v {
		w.g.Set(at, v)
		w.written = append(w.written, i)
		if dirty != nil {
			dirty(at)
		}
	}
}

// propagateOne pops one cell and re-constrains each of its neighbors.
// Neighbors that lose candidates are queued in turn; a neighbor losing
// its last candidate is a contradiction.
func (w *Wave) propagateOne(dirty func(grid.Coords)) StepInfo {
	i := w.queue[0]
	w.queue = w.queue[1:]
	w.queued[i] = false

	at := w.g.At(i)
	for _, d := range w.g.Directions() {
		allowed := w.spec.allowedFrom(w.possible[i], d)
		for _, nc := range w.g.Neighbors(at, d) {
			j := w.g.Index(nc)
			if !w.possible[j].intersect(allowed) {
				continue
			}
			n := w.possible[j].count()
			if n == 0 {
				return StepInfo{Status: StatusContradiction, Contradicted: nc, Ops: 1}
			}
			if n == 1 && !w.collapsed[j] {
				w.collapseTo(j, w.possible[j].first(), dirty)
			}
			w.enqueue(j)
		}
	}
	return StepInfo{Status: StatusProgress, Ops: 1}
}

// entropy is the Shannon entropy of the cell's weighted candidates.
func (w *Wave) entropy(i int) float64 {
	var total float64
	w.possible[i].each(func(t int) {
		total += w.spec.Weights[t]
	})
	if total <= 0 {
		return 0
	}
	var h float64
	w.possible[i].each(func(t int) {
		p := w.spec.Weights[t] / total
		h -= p * math.Log(p)
	})
	return h
}

// ClearWritten resets every cell this wave wrote back to empty,
// reporting each to dirty. Used by retry-with-reseed: cells that were
// set before the wave started are untouched.
func (w *Wave) ClearWritten(dirty func(grid.Coords)) {
	for _, i := range w.written {
		at := w.g.At(i)
		if w.g.Get(at) != 0 {
			w.g.Set(at, 0)
			if dirty != nil {
				dirty(at)
			}
		}
	}
	w.written = nil
}
