// Package interp owns the root node graph and drives it with true
// single-atomic-operation stepping.
//
// The interpreter keeps an explicit cursor (a stack of arena IDs) into
// the node tree. Each step resumes exactly where the previous one
// paused, so a host can render one atomic rewrite at a time instead of
// watching a single call silently perform hundreds of rewrites.
package interp

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/tessera/internal/grid"
	"github.com/roach88/tessera/internal/node"
	"github.com/roach88/tessera/internal/rng"
)

// State is the interpreter's lifecycle state.
type State uint8

const (
	// StateIdle: no active node; the root starts on the next step.
	StateIdle State = iota
	// StateActive: the cursor points into the tree, possibly deep.
	StateActive
	// StateDone: the root exhausted; the grid is final.
	StateDone
	// StateContradiction: a wfc node below the cursor failed terminally.
	StateContradiction
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateDone:
		return "done"
	case StateContradiction:
		return "contradiction"
	default:
		return "unknown"
	}
}

// ResultKind tags a StepResult.
type ResultKind uint8

const (
	// Progress: operations happened and more work may remain.
	Progress ResultKind = iota
	// Complete: the root node exhausted all possible rewrites.
	Complete
	// Failed: a terminal contradiction was reached.
	Failed
)

// StepResult reports the outcome of a step call. Recoverable conditions
// (budget exhaustion, no-match) and unrecoverable ones (contradiction)
// are distinguished by Kind, never conflated into a boolean.
type StepResult struct {
	Kind       ResultKind
	Operations int    // ops this call (Progress) or in total (Complete)
	Reason     string // Failed only
	Err        error  // Failed only; wraps *node.ContradictionError
}

// frame is one cursor level: the node and the interpreter's operation
// count when the cursor entered it, used to tell parents whether the
// visit was productive.
type frame struct {
	id         node.ID
	opsAtEntry int
}

// Interpreter owns a compiled node arena, the grid it rewrites, and a
// seeded RNG. Instances are single-threaded by design: all stepping is
// caller-driven, nothing blocks, and independent instances may be run
// on separate goroutines without shared state.
type Interpreter struct {
	name  string
	arena *node.Arena
	root  node.ID
	grid  grid.Grid
	rand  *rng.RNG

	state    State
	stack    []frame
	totalOps int
	stepped  int
	failure  error

	ctx node.Context
}

// New creates an interpreter over g with the given compiled arena and
// root, seeded for deterministic stepping.
func New(name string, g grid.Grid, arena *node.Arena, root node.ID, seed uint64) *Interpreter {
	in := &Interpreter{
		name:  name,
		arena: arena,
		root:  root,
		grid:  g,
		rand:  rng.New(seed),
		state: StateIdle,
	}
	in.ctx.Grid = g
	in.ctx.RNG = in.rand
	return in
}

// Grid returns the write target the interpreter rewrites. The host must
// not mutate it through another path while stepping is in progress.
func (in *Interpreter) Grid() grid.Grid { return in.grid }

// State returns the current lifecycle state.
func (in *Interpreter) State() State { return in.state }

// IsDone reports whether stepping has terminated, successfully or not.
func (in *Interpreter) IsDone() bool {
	return in.state == StateDone || in.state == StateContradiction
}

// TotalOperations returns the operations performed since the last reset.
func (in *Interpreter) TotalOperations() int { return in.totalOps }

// Steps returns the step calls made since the last reset.
func (in *Interpreter) Steps() int { return in.stepped }

// Seed returns the RNG seed of the current run.
func (in *Interpreter) Seed() uint64 { return in.rand.Seed() }

// TakeDirty returns and clears the cells mutated since the last call.
func (in *Interpreter) TakeDirty() []grid.Coords { return in.ctx.TakeDirty() }

// Depth returns the cursor depth, for diagnostics.
func (in *Interpreter) Depth() int { return len(in.stack) }

// StepOne performs at most one atomic operation.
func (in *Interpreter) StepOne() StepResult { return in.step(node.NewBudget(1)) }

// StepN performs at most n atomic operations. Calling StepOne k times
// yields the same grid state as one StepN(k) call.
func (in *Interpreter) StepN(n int) StepResult { return in.step(node.NewBudget(n)) }

// StepTimed steps until the wall-clock budget is exhausted or the run
// terminates. Work is still counted in atomic operations, so a timed
// call pauses at an operation boundary and resumes cleanly.
func (in *Interpreter) StepTimed(d time.Duration) StepResult {
	deadline := time.Now().Add(d)
	ops := 0
	for {
		res := in.step(node.NewBudget(1))
		switch res.Kind {
		case Progress:
			ops += res.Operations
		default:
			return res
		}
		if !time.Now().Before(deadline) {
			return StepResult{Kind: Progress, Operations: ops}
		}
	}
}

// Reset discards all node-internal progress state and wave data,
// reseeds the RNG, clears the grid, and returns to Idle.
func (in *Interpreter) Reset(seed uint64) {
	in.arena.Reset()
	in.grid.Clear()
	in.rand.Reseed(seed)
	in.state = StateIdle
	in.stack = in.stack[:0]
	in.totalOps = 0
	in.stepped = 0
	in.failure = nil
	in.ctx.TakeDirty()
	slog.Debug("interpreter reset", "model", in.name, "seed", seed)
}

// step runs the cursor loop until the budget is consumed or the run
// terminates. Ticks are atomic: the final tick may overshoot the
// budget, but the cursor always pauses at an operation boundary.
func (in *Interpreter) step(budget *node.Budget) StepResult {
	switch in.state {
	case StateDone:
		return StepResult{Kind: Complete, Operations: in.totalOps}
	case StateContradiction:
		return in.failResult()
	}
	in.stepped++
	in.ctx.Budget = budget

	opsBefore := in.totalOps
	for !budget.Exhausted() {
		if in.state == StateIdle {
			in.arena.Activate(in.root)
			in.stack = append(in.stack, frame{id: in.root, opsAtEntry: in.totalOps})
			in.state = StateActive
		}
		cur := in.stack[len(in.stack)-1]
		t := in.arena.Tick(cur.id, &in.ctx)
		switch t.Status {
		case node.StatusProgress:
			in.totalOps += t.Ops

		case node.StatusDescend:
			in.arena.Activate(t.Child)
			in.stack = append(in.stack, frame{id: t.Child, opsAtEntry: in.totalOps})

		case node.StatusExhausted:
			in.stack = in.stack[:len(in.stack)-1]
			if len(in.stack) == 0 {
				in.state = StateDone
				slog.Info("run complete",
					"model", in.name,
					"operations", in.totalOps,
					"steps", in.stepped,
				)
				return StepResult{Kind: Complete, Operations: in.totalOps}
			}
			parent := in.stack[len(in.stack)-1]
			in.arena.ChildDone(parent.id, in.totalOps > cur.opsAtEntry)

		case node.StatusContradiction:
			in.totalOps += t.Ops
			in.state = StateContradiction
			in.failure = t.Err
			slog.Warn("run contradicted",
				"model", in.name,
				"node", t.Err.Node,
				"cell", t.Err.Cell.String(),
				"retries", t.Err.Retries,
			)
			return in.failResult()
		}
	}
	return StepResult{Kind: Progress, Operations: in.totalOps - opsBefore}
}

func (in *Interpreter) failResult() StepResult {
	return StepResult{
		Kind:   Failed,
		Reason: in.failure.Error(),
		Err:    fmt.Errorf("%s: %w", in.name, in.failure),
	}
}
