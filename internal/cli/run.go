package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tessera/internal/interp"
	"github.com/roach88/tessera/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Seed    uint64
	MaxOps  int
	DB      string
	Archive bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cfg, cfgErr := LoadConfig()

	cmd := &cobra.Command{
		Use:   "run <model.yaml>",
		Short: "Run a model to completion",
		Long: `Run a model until its root node exhausts all rewrites, then print
the operation count and the final grid checksum.

With --archive, the run is recorded in the SQLite archive so "tessera
replay" can verify determinism later.

Example:
  tessera run cave.yaml --seed 42
  tessera run cave.yaml --seed 42 --archive --db runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return WrapExitError(ExitCommandError, "load config", cfgErr)
			}
			return runRun(opts, args[0], cmd)
		},
	}

	cmd.Flags().Uint64Var(&opts.Seed, "seed", cfg.Seed, "RNG seed")
	cmd.Flags().IntVar(&opts.MaxOps, "max-ops", cfg.MaxOps, "operation safety limit")
	cmd.Flags().StringVar(&opts.DB, "db", cfg.Database, "run archive path")
	cmd.Flags().BoolVar(&opts.Archive, "archive", false, "record the run in the archive")

	return cmd
}

func runRun(opts *RunOptions, path string, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	compiled, err := compileModelFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "load model", err)
	}
	in, err := compiled.NewInterpreter(opts.Seed)
	if err != nil {
		return WrapExitError(ExitCommandError, "build interpreter", err)
	}

	res := in.StepN(opts.MaxOps)
	if res.Kind == interp.Progress {
		// Finishing in exactly the limit pauses before the zero-op
		// terminal ticks; one more step settles done vs truncated.
		res = in.StepOne()
	}
	status := store.RunComplete
	switch res.Kind {
	case interp.Complete:
	case interp.Failed:
		status = store.RunContradiction
		formatter.VerboseLog("contradiction: %s", res.Reason)
	case interp.Progress:
		return NewExitError(ExitFailure,
			fmt.Sprintf("model did not terminate within %s operations", formatter.Count(opts.MaxOps)))
	}

	checksum := in.Grid().Checksum()
	runID := ""
	if opts.Archive {
		runID, err = archiveRun(cmd.Context(), opts.DB, compiled.Name(), compiled.Hash(), in, status)
		if err != nil {
			return WrapExitError(ExitCommandError, "archive run", err)
		}
	}

	if res.Kind == interp.Failed {
		_ = formatter.Failure("E_CONTRADICTION", res.Reason)
		return NewExitError(ExitFailure, res.Reason)
	}

	text := fmt.Sprintf("run complete\n  operations: %s\n  steps: %s\n  checksum: %016x",
		formatter.Count(in.TotalOperations()), formatter.Count(in.Steps()), checksum)
	if runID != "" {
		text += "\n  run id: " + runID
	}
	return formatter.Success(text, map[string]any{
		"operations": in.TotalOperations(),
		"steps":      in.Steps(),
		"checksum":   fmt.Sprintf("%016x", checksum),
		"run_id":     runID,
	})
}

// archiveRun records a finished run in the SQLite archive.
func archiveRun(ctx context.Context, db, name, hash string, in *interp.Interpreter, status store.RunStatus) (string, error) {
	st, err := store.Open(db)
	if err != nil {
		return "", err
	}
	defer st.Close()

	run := store.Run{
		ID:         store.NewRunID(),
		ModelName:  name,
		ModelHash:  hash,
		Seed:       in.Seed(),
		Status:     status,
		Steps:      in.Steps(),
		Operations: in.TotalOperations(),
		Checksum:   in.Grid().Checksum(),
	}
	if err := st.WriteRun(ctx, run); err != nil {
		return "", err
	}
	slog.Info("run archived", "id", run.ID, "model", name, "seed", run.Seed)
	return run.ID, nil
}

// configureLogging routes slog to stderr at the requested level.
func configureLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
