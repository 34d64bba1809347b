package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tessera/internal/interp"
	"github.com/roach88/tessera/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Model  string
	DB     string
	MaxOps int
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cfg, cfgErr := LoadConfig()

	cmd := &cobra.Command{
		Use:   "replay <run-id>",
		Short: "Re-execute an archived run and verify determinism",
		Long: `Replay an archived run from its recorded seed and compare the final
grid checksum against the archived one. A mismatch means the engine or
the model changed since the run was recorded, or determinism broke.

The model file must be the same version that produced the run; the
archive pins it by content hash and replay refuses a mismatch.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return WrapExitError(ExitCommandError, "load config", cfgErr)
			}
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Model, "model", "", "path to the model file (required)")
	cmd.Flags().StringVar(&opts.DB, "db", cfg.Database, "run archive path")
	cmd.Flags().IntVar(&opts.MaxOps, "max-ops", cfg.MaxOps, "operation safety limit")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

func runReplay(opts *ReplayOptions, runID string, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		return WrapExitError(ExitCommandError, "open archive", err)
	}
	defer st.Close()

	run, err := st.ReadRun(cmd.Context(), runID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return NewExitError(ExitCommandError, fmt.Sprintf("run %s not found", runID))
		}
		return WrapExitError(ExitCommandError, "read run", err)
	}

	compiled, err := compileModelFile(opts.Model)
	if err != nil {
		return WrapExitError(ExitCommandError, "load model", err)
	}
	if compiled.Hash() != run.ModelHash {
		msg := fmt.Sprintf("model hash %s does not match archived %s", compiled.Hash(), run.ModelHash)
		_ = formatter.Failure("E_HASH_MISMATCH", msg)
		return NewExitError(ExitFailure, msg)
	}

	in, err := compiled.NewInterpreter(run.Seed)
	if err != nil {
		return WrapExitError(ExitCommandError, "build interpreter", err)
	}
	res := in.StepN(opts.MaxOps)

	switch {
	case res.Kind == interp.Failed && run.Status != store.RunContradiction:
		msg := fmt.Sprintf("replay contradicted but archived run completed: %s", res.Reason)
		_ = formatter.Failure("E_REPLAY_DIVERGED", msg)
		return NewExitError(ExitFailure, msg)
	case res.Kind == interp.Progress:
		return NewExitError(ExitFailure, "replay did not terminate within the operation limit")
	}

	checksum := in.Grid().Checksum()
	if checksum != run.Checksum {
		msg := fmt.Sprintf("checksum %016x does not match archived %016x", checksum, run.Checksum)
		_ = formatter.Failure("E_REPLAY_DIVERGED", msg)
		return NewExitError(ExitFailure, msg)
	}

	text := fmt.Sprintf("replay verified\n  run: %s\n  seed: %d\n  operations: %s\n  checksum: %016x",
		run.ID, run.Seed, formatter.Count(in.TotalOperations()), checksum)
	return formatter.Success(text, map[string]any{
		"run_id":     run.ID,
		"seed":       run.Seed,
		"operations": in.TotalOperations(),
		"checksum":   fmt.Sprintf("%016x", checksum),
	})
}
