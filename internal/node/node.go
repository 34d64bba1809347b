package node

import (
	"errors"

	"github.com/roach88/tessera/internal/grid"
	"github.com/roach88/tessera/internal/rule"
	"github.com/roach88/tessera/internal/wfc"
)

// ID is a stable arena index. The interpreter's cursor is a stack of
// IDs, which sidesteps any aliasing between "the tree" and "the active
// pointer into the tree".
type ID int

// Kind discriminates the closed set of node kinds.
type Kind uint8

const (
	// KindOne applies one uniformly-chosen match per tick.
	KindOne Kind = iota
	// KindAll applies every non-conflicting match in one tick.
	KindAll
	// KindMarkov runs the first child able to make progress, restarting
	// its scan from the top after every productive child visit.
	KindMarkov
	// KindSequence visits every child once per round, in authored
	// order, until a full round yields no progress.
	KindSequence
	// KindWfc runs a constraint-propagation wave to convergence.
	KindWfc
)

func (k Kind) String() string {
	switch k {
	case KindOne:
		return "one"
	case KindAll:
		return "all"
	case KindMarkov:
		return "markov"
	case KindSequence:
		return "sequence"
	case KindWfc:
		return "wfc"
	default:
		return "unknown"
	}
}

// ContradictionPolicy decides what a wfc node does when its wave
// contradicts.
type ContradictionPolicy uint8

const (
	// PolicyFail surfaces the contradiction to the interpreter.
	PolicyFail ContradictionPolicy = iota
	// PolicyRetry clears the wave's writes and restarts with fresh RNG
	// draws, up to MaxRetries times, then fails.
	PolicyRetry
	// PolicySkip clears the wave's writes and reports exhaustion so the
	// parent container falls through to its next child.
	PolicySkip
)

// Node is one unit of the execution graph. Configuration fields are set
// once at model compile time; runtime fields mutate during stepping and
// are cleared by Arena.Reset.
type Node struct {
	Kind     Kind
	Name     string
	Rules    []rule.Rule // expanded symmetry orbit, leaf kinds only
	Children []ID        // container kinds only
	Limit    int         // max applications for leaf kinds; 0 = unlimited

	Spec       *wfc.Spec // wfc kind only
	Policy     ContradictionPolicy
	MaxRetries int

	// runtime state
	applied       int
	cursorChild   int
	roundProgress bool
	wave          *wfc.Wave
	retries       int
	converged     bool
}

// Applied returns how many rewrites the leaf has performed since reset.
func (n *Node) Applied() int { return n.applied }

// Arena owns every node of one compiled model.
type Arena struct {
	nodes []Node
}

// NewArena returns an empty arena.
func NewArena() *Arena { return &Arena{} }

// Add appends a node and returns its ID.
func (a *Arena) Add(n Node) ID {
	a.nodes = append(a.nodes, n)
	return ID(len(a.nodes) - 1)
}

// Node returns the node with the given ID.
func (a *Arena) Node(id ID) *Node { return &a.nodes[id] }

// Len returns the node count.
func (a *Arena) Len() int { return len(a.nodes) }

// Reset discards all runtime progress state on every node: application
// counters, container cursors, and wave data.
func (a *Arena) Reset() {
	for i := range a.nodes {
		n := &a.nodes[i]
		n.applied = 0
		n.cursorChild = 0
		n.roundProgress = false
		n.wave = nil
		n.retries = 0
		n.converged = false
	}
}

// Status is the outcome of one node tick.
type Status uint8

const (
	// StatusProgress: the node did local work; the cursor stays.
	StatusProgress Status = iota
	// StatusDescend: the node delegates; the cursor moves to Child.
	StatusDescend
	// StatusExhausted: the node cannot progress; the cursor moves up.
	// The parent decides whether that means completion or a dead branch.
	StatusExhausted
	// StatusContradiction: a wave lost all candidates somewhere and the
	// node's policy did not absorb it.
	StatusContradiction
)

// Tick reports one node tick to the interpreter.
type Tick struct {
	Status Status
	Child  ID
	Ops    int
	Err    *ContradictionError
}

// Activate resets visit-scoped state when the cursor enters a node.
// Persistent state (application counters, converged waves) survives so
// re-visits under a container do not redo finished work.
func (a *Arena) Activate(id ID) {
	n := &a.nodes[id]
	switch n.Kind {
	case KindMarkov, KindSequence:
		n.cursorChild = 0
		n.roundProgress = false
	}
}

// ChildDone informs a container that the child it descended into has
// exhausted, and whether any operations happened during the visit.
func (a *Arena) ChildDone(id ID, progressed bool) {
	n := &a.nodes[id]
	switch n.Kind {
	case KindMarkov:
		if progressed {
			n.cursorChild = 0
		} else {
			n.cursorChild++
		}
	case KindSequence:
		n.cursorChild++
		if progressed {
			n.roundProgress = true
		}
	}
}

// Tick performs one atomic unit of work for the node under the cursor.
func (a *Arena) Tick(id ID, ctx *Context) Tick {
	n := &a.nodes[id]
	switch n.Kind {
	case KindOne:
		return a.tickOne(n, ctx)
	case KindAll:
		return a.tickAll(n, ctx)
	case KindMarkov:
		return a.tickMarkov(n)
	case KindSequence:
		return a.tickSequence(n)
	case KindWfc:
		return a.tickWfc(n, ctx)
	default:
		return Tick{Status: StatusExhausted}
	}
}

type match struct {
	cell int // dense grid index
	rule int // index into the expanded rule list
}

// collectMatches scans the whole grid in index order and tests every
// rule variant at every cell. A full rescan per tick keeps determinism
// trivial; an incremental dirty-cell index would be an optimization,
// not a behavior change.
func collectMatches(n *Node, ctx *Context) []match {
	g := ctx.Grid
	var out []match
	for i := 0; i < g.Len(); i++ {
		at := g.At(i)
		for ri := range n.Rules {
			if n.Rules[ri].Matches(g, at) {
				out = append(out, match{cell: i, rule: ri})
			}
		}
	}
	return out
}

// tickOne applies one uniformly-chosen match. No match means local
// completion, not an error.
func (a *Arena) tickOne(n *Node, ctx *Context) Tick {
	if n.Limit > 0 && n.applied >= n.Limit {
		return Tick{Status: StatusExhausted}
	}
	matches := collectMatches(n, ctx)
	if len(matches) == 0 {
		return Tick{Status: StatusExhausted}
	}
	m := matches[ctx.RNG.IntN(len(matches))]
	n.Rules[m.rule].Apply(ctx.Grid, ctx.Grid.At(m.cell), ctx.MarkDirty)
	n.applied++
	ctx.Budget.Consume(1)
	return Tick{Status: StatusProgress, Ops: 1}
}

// tickAll applies every match whose output footprint does not overlap
// an already-accepted one, in RNG-shuffled order so conflict resolution
// is unbiased but still seed-deterministic. The tick consumes one
// operation per application.
func (a *Arena) tickAll(n *Node, ctx *Context) Tick {
	if n.Limit > 0 && n.applied >= n.Limit {
		return Tick{Status: StatusExhausted}
	}
	matches := collectMatches(n, ctx)
	if len(matches) == 0 {
		return Tick{Status: StatusExhausted}
	}
	ctx.RNG.Shuffle(len(matches), func(i, j int) {
		matches[i], matches[j] = matches[j], matches[i]
	})

	g := ctx.Grid
	claimed := make(map[int]bool)
	applications := 0
	for _, m := range matches {
		at := g.At(m.cell)
		fp := n.Rules[m.rule].Footprint(g, at)
		conflict := false
		for _, c := range fp {
			if claimed[g.Index(c)] {
				conflict = true
				break
			}
		}
		if conflict {
			continue
		}
		for _, c := range fp {
			claimed[g.Index(c)] = true
		}
		n.Rules[m.rule].Apply(g, at, ctx.MarkDirty)
		applications++
		if n.Limit > 0 && n.applied+applications >= n.Limit {
			break
		}
	}
	n.applied += applications
	ctx.Budget.Consume(applications)
	return Tick{Status: StatusProgress, Ops: applications}
}

// tickMarkov probes children in priority order: descend into the
// current candidate, and let ChildDone decide whether to rescan from
// the top (progress) or move on (exhaustion).
func (a *Arena) tickMarkov(n *Node) Tick {
	if n.cursorChild >= len(n.Children) {
		return Tick{Status: StatusExhausted}
	}
	return Tick{Status: StatusDescend, Child: n.Children[n.cursorChild]}
}

// tickSequence gives every child one visit per round, in authored
// order regardless of earlier siblings' progress. The sequence
// exhausts when a full round produced no operations.
func (a *Arena) tickSequence(n *Node) Tick {
	if len(n.Children) == 0 {
		return Tick{Status: StatusExhausted}
	}
	if n.cursorChild >= len(n.Children) {
		if !n.roundProgress {
			return Tick{Status: StatusExhausted}
		}
		n.cursorChild = 0
		n.roundProgress = false
	}
	return Tick{Status: StatusDescend, Child: n.Children[n.cursorChild]}
}

// tickWfc advances the node's wave one atomic unit, building the wave
// lazily on first tick so preset grid cells constrain it.
func (a *Arena) tickWfc(n *Node, ctx *Context) Tick {
	if n.converged {
		return Tick{Status: StatusExhausted}
	}
	if n.wave == nil {
		w, err := wfc.NewWave(n.Spec, ctx.Grid)
		if err != nil {
			var ca *wfc.ContradictionAt
			cell := grid.Coords{}
			if errors.As(err, &ca) {
				cell = ca.Cell
			}
			// An init contradiction is deterministic: presets conflict
			// with the model, so retrying cannot help.
			return a.wfcContradiction(n, ctx, cell, false, 0)
		}
		n.wave = w
	}
	info := n.wave.Step(ctx.RNG, ctx.MarkDirty)
	switch info.Status {
	case wfc.StatusDone:
		n.converged = true
		return Tick{Status: StatusExhausted}
	case wfc.StatusContradiction:
		ctx.Budget.Consume(info.Ops)
		return a.wfcContradiction(n, ctx, info.Contradicted, true, info.Ops)
	default:
		ctx.Budget.Consume(info.Ops)
		return Tick{Status: StatusProgress, Ops: info.Ops}
	}
}

// wfcContradiction applies the node's contradiction policy. ops is the
// work the contradicting step performed; it rides on the tick so the
// interpreter's operation count stays aligned with the budget.
func (a *Arena) wfcContradiction(n *Node, ctx *Context, cell grid.Coords, retryable bool, ops int) Tick {
	if n.Policy == PolicyRetry && retryable && n.retries < n.MaxRetries {
		n.retries++
		n.wave.ClearWritten(ctx.MarkDirty)
		n.wave = nil
		return Tick{Status: StatusProgress, Ops: ops}
	}
	if n.Policy == PolicySkip {
		if n.wave != nil {
			n.wave.ClearWritten(ctx.MarkDirty)
		}
		n.converged = true
		return Tick{Status: StatusExhausted}
	}
	return Tick{
		Status: StatusContradiction,
		Ops:    ops,
		Err:    &ContradictionError{Node: n.Name, Cell: cell, Retries: n.retries},
	}
}
