package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tessera/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	DB    string
	Model string
	Limit int
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cfg, cfgErr := LoadConfig()

	cmd := &cobra.Command{
		Use:           "runs",
		Short:         "List archived runs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return WrapExitError(ExitCommandError, "load config", cfgErr)
			}
			return runRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", cfg.Database, "run archive path")
	cmd.Flags().StringVar(&opts.Model, "model-name", "", "filter by model name")
	cmd.Flags().IntVar(&opts.Limit, "limit", 50, "maximum rows to list")

	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
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

	runs, err := st.ListRuns(cmd.Context(), opts.Model, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "list runs", err)
	}
	if len(runs) == 0 {
		return formatter.Success("no archived runs", map[string]any{"runs": []any{}})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-36s  %-20s  %-13s  %20s  %10s  %s\n",
		"ID", "MODEL", "STATUS", "SEED", "OPS", "CREATED")
	rows := make([]map[string]any, 0, len(runs))
	for _, r := range runs {
		fmt.Fprintf(&b, "%-36s  %-20s  %-13s  %20d  %10s  %s\n",
			r.ID, r.ModelName, r.Status, r.Seed,
			formatter.Count(r.Operations), r.CreatedAt.Format("2006-01-02 15:04:05"))
		rows = append(rows, map[string]any{
			"id":         r.ID,
			"model_name": r.ModelName,
			"model_hash": r.ModelHash,
			"seed":       r.Seed,
			"status":     string(r.Status),
			"steps":      r.Steps,
			"operations": r.Operations,
			"checksum":   fmt.Sprintf("%016x", r.Checksum),
			"created_at": r.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return formatter.Success(strings.TrimRight(b.String(), "\n"), map[string]any{"runs": rows})
}
