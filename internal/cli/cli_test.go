package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fillModel = `
name: fill
grid:
  kind: euclidean
  width: 4
  height: 4
alphabet: AB
root:
  type: one
  rules:
    - center: A
      out: B
`

const brokenModel = `
name: broken
grid:
  kind: euclidean
  width: 2
  height: 2
alphabet: ABC
root:
  type: wfc
  model: tiled
  tiles: BC
  adjacent:
    - [B, C, x+]
`

func writeModel(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func execute(t *testing.T, newCmd func(*RootOptions) *cobra.Command, format string, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := newCmd(&RootOptions{Format: format})
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// TestValidate_OK validates a well-formed model.
func TestValidate_OK(t *testing.T) {
	path := writeModel(t, fillModel)
	out, _, err := execute(t, NewValidateCommand, "text", path)
	require.NoError(t, err)
	assert.Contains(t, out, `model "fill" ok`)
	assert.Contains(t, out, "alphabet: AB")
	assert.Contains(t, out, "cells: 16")
}

// TestValidate_JSON emits the structured response.
func TestValidate_JSON(t *testing.T) {
	path := writeModel(t, fillModel)
	out, _, err := execute(t, NewValidateCommand, "json", path)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "fill", data["name"])
	assert.Equal(t, float64(16), data["cells"])
}

// TestValidate_ModelError exits with the failure code for a bad model.
func TestValidate_ModelError(t *testing.T) {
	path := writeModel(t, `
name: bad
grid:
  kind: euclidean
  width: 2
  height: 2
alphabet: AB
root:
  type: one
  rules:
    - center: Z
      out: B
`)
	_, _, err := execute(t, NewValidateCommand, "text", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

// TestValidate_MissingFile exits with the command-error code.
func TestValidate_MissingFile(t *testing.T) {
	_, _, err := execute(t, NewValidateCommand, "text", "no-such-model.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

// TestRun_Completes prints operation count and checksum.
func TestRun_Completes(t *testing.T) {
	path := writeModel(t, fillModel)
	out, _, err := execute(t, NewRunCommand, "text", path, "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "run complete")
	assert.Contains(t, out, "operations: 16")
	assert.Contains(t, out, "checksum: ")
}

// TestRun_ExactOpBudget: a model that finishes in exactly --max-ops
// operations is a completed run, not a truncated one.
func TestRun_ExactOpBudget(t *testing.T) {
	path := writeModel(t, fillModel)
	out, _, err := execute(t, NewRunCommand, "text", path, "--seed", "7", "--max-ops", "16")
	require.NoError(t, err)
	assert.Contains(t, out, "run complete")
	assert.Contains(t, out, "operations: 16")
}

// TestRun_Deterministic: two runs with the same seed print the same
// checksum.
func TestRun_Deterministic(t *testing.T) {
	path := writeModel(t, fillModel)
	a, _, err := execute(t, NewRunCommand, "json", path, "--seed", "42")
	require.NoError(t, err)
	b, _, err := execute(t, NewRunCommand, "json", path, "--seed", "42")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// TestRun_Contradiction exits with the failure code and names the
// failing node.
func TestRun_Contradiction(t *testing.T) {
	path := writeModel(t, brokenModel)
	_, errOut, err := execute(t, NewRunCommand, "text", path, "--seed", "4")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, errOut, "contradiction")
}

// TestRun_ArchiveAndReplay records a run, then verifies it replays to
// the same checksum.
func TestRun_ArchiveAndReplay(t *testing.T) {
	path := writeModel(t, fillModel)
	db := filepath.Join(t.TempDir(), "runs.db")

	out, _, err := execute(t, NewRunCommand, "json", path,
		"--seed", "5", "--archive", "--db", db)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	runID := resp.Data.(map[string]any)["run_id"].(string)
	require.NotEmpty(t, runID)

	replayOut, _, err := execute(t, NewReplayCommand, "text",
		runID, "--model", path, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, replayOut, "replay verified")
	assert.Contains(t, replayOut, "seed: 5")
}

// TestReplay_HashMismatch refuses to replay against a different model
// version.
func TestReplay_HashMismatch(t *testing.T) {
	path := writeModel(t, fillModel)
	db := filepath.Join(t.TempDir(), "runs.db")

	out, _, err := execute(t, NewRunCommand, "json", path,
		"--seed", "5", "--archive", "--db", db)
	require.NoError(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	runID := resp.Data.(map[string]any)["run_id"].(string)

	edited := writeModel(t, fillModel+"\n# edited\n")
	_, _, err = execute(t, NewReplayCommand, "text",
		runID, "--model", edited, "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

// TestReplay_UnknownRun exits with the command-error code.
func TestReplay_UnknownRun(t *testing.T) {
	path := writeModel(t, fillModel)
	db := filepath.Join(t.TempDir(), "runs.db")

	_, _, err := execute(t, NewReplayCommand, "text",
		"not-a-run", "--model", path, "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

// TestRuns_ListsArchive shows recorded runs, newest first.
func TestRuns_ListsArchive(t *testing.T) {
	path := writeModel(t, fillModel)
	db := filepath.Join(t.TempDir(), "runs.db")

	for _, seed := range []string{"1", "2"} {
		_, _, err := execute(t, NewRunCommand, "text", path,
			"--seed", seed, "--archive", "--db", db)
		require.NoError(t, err)
	}

	out, _, err := execute(t, NewRunsCommand, "text", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "fill")
	assert.Contains(t, out, "complete")

	empty, _, err := execute(t, NewRunsCommand, "text",
		"--db", db, "--model-name", "unknown")
	require.NoError(t, err)
	assert.Contains(t, empty, "no archived runs")
}

// TestTrace_StepsAndPauses prints one line per step and honors the
// step bound.
func TestTrace_StepsAndPauses(t *testing.T) {
	path := writeModel(t, fillModel)
	out, _, err := execute(t, NewTraceCommand, "text", path, "--steps", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "step 1: ops=1")
	assert.Contains(t, out, "step 3: ops=1")
	assert.Contains(t, out, "paused after 3 steps (3 operations)")
}

// TestTrace_RunsToDone reports the final checksum.
func TestTrace_RunsToDone(t *testing.T) {
	path := writeModel(t, fillModel)
	out, _, err := execute(t, NewTraceCommand, "text", path, "--render", "--every", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "done: 16 operations")
	assert.Contains(t, out, "BBBB")
}

// TestRootCommand_RejectsBadFormat validates the global format flag.
func TestRootCommand_RejectsBadFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "xml", "validate", "x.yaml"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
