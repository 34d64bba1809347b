package harness

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/tessera/internal/interp"
	"github.com/roach88/tessera/internal/model"
)

// DefaultMaxOps bounds a scenario run when the scenario does not set
// its own limit.
const DefaultMaxOps = 1_000_000

// Result captures the terminal state of one scenario run.
type Result struct {
	Scenario   string
	Status     string // "complete" | "contradiction"
	Steps      int
	Operations int
	Checksum   uint64
	Render     string

	// SymbolCounts maps alphabet symbols to their final cell counts.
	SymbolCounts map[byte]int
	// EmptySymbol is the symbol for cell value zero.
	EmptySymbol byte
}

// RunScenario compiles the scenario's model, runs it to termination,
// and evaluates every assertion. A run that is still progressing at the
// operation limit is an error, not a result.
func RunScenario(sc *Scenario) (*Result, error) {
	data, err := os.ReadFile(sc.ModelPath())
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	compiled, err := model.Compile(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	in, err := compiled.NewInterpreter(sc.Seed)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	maxOps := sc.MaxOps
	if maxOps <= 0 {
		maxOps = DefaultMaxOps
	}
	step := in.StepN(maxOps)
	if step.Kind == interp.Progress {
		// Finishing in exactly the limit pauses before the zero-op
		// terminal ticks; one more step settles done vs truncated.
		step = in.StepOne()
	}

	res := &Result{
		Scenario:     sc.Name,
		Steps:        in.Steps(),
		Operations:   in.TotalOperations(),
		Checksum:     in.Grid().Checksum(),
		Render:       compiled.Render(in.Grid()),
		SymbolCounts: map[byte]int{},
		EmptySymbol:  compiled.Symbol(0),
	}
	g := in.Grid()
	for i := 0; i < g.Len(); i++ {
		res.SymbolCounts[compiled.Symbol(g.Get(g.At(i)))]++
	}

	switch step.Kind {
	case interp.Complete:
		res.Status = "complete"
	case interp.Failed:
		res.Status = "contradiction"
	default:
		return nil, fmt.Errorf("scenario %s: run still progressing after %d operations", sc.Name, maxOps)
	}

	expect := sc.Expect
	if expect == "" {
		expect = "complete"
	}
	if res.Status != expect {
		return nil, &AssertionError{
			Scenario: sc.Name,
			Type:     "terminal_state",
			Expected: expect,
			Actual:   fmt.Sprintf("%s (%s)", res.Status, step.Reason),
			Render:   res.Render,
		}
	}

	for _, a := range sc.Assertions {
		if err := a.evaluate(sc, res); err != nil {
			return nil, err
		}
	}

	slog.Debug("scenario passed",
		"scenario", sc.Name,
		"seed", sc.Seed,
		"operations", res.Operations,
		"checksum", fmt.Sprintf("%016x", res.Checksum))
	return res, nil
}
