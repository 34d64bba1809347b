package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tessera/internal/interp"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Seed   uint64
	Steps  int
	Every  int
	Render bool
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cfg, cfgErr := LoadConfig()

	cmd := &cobra.Command{
		Use:   "trace <model.yaml>",
		Short: "Step a model one operation at a time",
		Long: `Execute a model with single-atomic-operation stepping, printing one
line per step. This is the terminal stand-in for an animating host:
each step performs exactly one rewrite, observation, or propagation.

With --render, the grid is drawn after every --every steps.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return WrapExitError(ExitCommandError, "load config", cfgErr)
			}
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().Uint64Var(&opts.Seed, "seed", cfg.Seed, "RNG seed")
	cmd.Flags().IntVar(&opts.Steps, "steps", 0, "stop after this many steps (0 = until done)")
	cmd.Flags().IntVar(&opts.Every, "every", 1, "render interval in steps")
	cmd.Flags().BoolVar(&opts.Render, "render", false, "draw the grid while stepping")

	return cmd
}

func runTrace(opts *TraceOptions, path string, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)
	out := cmd.OutOrStdout()

	compiled, err := compileModelFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "load model", err)
	}
	in, err := compiled.NewInterpreter(opts.Seed)
	if err != nil {
		return WrapExitError(ExitCommandError, "build interpreter", err)
	}

	step := 0
	for {
		res := in.StepOne()
		switch res.Kind {
		case interp.Complete:
			fmt.Fprintf(out, "done: %d operations in %d steps, checksum %016x\n",
				in.TotalOperations(), in.Steps(), in.Grid().Checksum())
			if opts.Render {
				fmt.Fprint(out, compiled.Render(in.Grid()))
			}
			return nil
		case interp.Failed:
			fmt.Fprintf(out, "failed: %s\n", res.Reason)
			return NewExitError(ExitFailure, res.Reason)
		}

		step++
		dirty := in.TakeDirty()
		fmt.Fprintf(out, "step %d: ops=%d dirty=%d depth=%d\n",
			step, res.Operations, len(dirty), in.Depth())
		if opts.Render && opts.Every > 0 && step%opts.Every == 0 {
			fmt.Fprint(out, compiled.Render(in.Grid()))
		}
		if opts.Steps > 0 && step >= opts.Steps {
			fmt.Fprintf(out, "paused after %d steps (%d operations)\n", step, in.TotalOperations())
			return nil
		}
	}
}
