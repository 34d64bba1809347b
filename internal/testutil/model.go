// Package testutil provides shared helpers for engine tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tessera/internal/grid"
	"github.com/roach88/tessera/internal/interp"
	"github.com/roach88/tessera/internal/model"
)

// MustCompile compiles an inline model source, failing the test on any
// parse, validation, or compile error.
func MustCompile(t *testing.T, source string) *model.Compiled {
	t.Helper()
	compiled, err := model.Compile([]byte(source))
	require.NoError(t, err)
	return compiled
}

// MustInterpreter compiles an inline model and mints an interpreter
// for the given seed.
func MustInterpreter(t *testing.T, source string, seed uint64) *interp.Interpreter {
	t.Helper()
	in, err := MustCompile(t, source).NewInterpreter(seed)
	require.NoError(t, err)
	return in
}

// RunToDone steps the interpreter with the given operation budget and
// requires termination (complete or contradiction) within it.
func RunToDone(t *testing.T, in *interp.Interpreter, maxOps int) interp.StepResult {
	t.Helper()
	res := in.StepN(maxOps)
	require.NotEqual(t, interp.Progress, res.Kind,
		"run still progressing after %d operations", maxOps)
	return res
}

// CountCells returns how many cells of g hold the value v.
func CountCells(g grid.Grid, v grid.Cell) int {
	n := 0
	for i := 0; i < g.Len(); i++ {
		if g.Get(g.At(i)) == v {
			n++
		}
	}
	return n
}
