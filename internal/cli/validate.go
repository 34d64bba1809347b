package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tessera/internal/model"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <model.yaml>",
		Short: "Validate and compile a model file",
		Long: `Validate a model file against the schema, resolve its symbols and
directions, and expand its symmetry orbits, reporting any load-time
errors without executing anything.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	compiled, err := compileModelFile(path)
	if err != nil {
		var me *model.Error
		if errors.As(err, &me) {
			_ = formatter.Failure("E_MODEL", me.Error())
			return NewExitError(ExitFailure, me.Error())
		}
		return WrapExitError(ExitCommandError, "load model", err)
	}

	// Minting an interpreter exercises grid construction end to end.
	in, err := compiled.NewInterpreter(0)
	if err != nil {
		_ = formatter.Failure("E_MODEL", err.Error())
		return NewExitError(ExitFailure, err.Error())
	}

	text := fmt.Sprintf("model %q ok\n  hash: %s\n  alphabet: %s\n  cells: %s",
		compiled.Name(), compiled.Hash(), compiled.Alphabet(), formatter.Count(in.Grid().Len()))
	return formatter.Success(text, map[string]any{
		"name":     compiled.Name(),
		"hash":     compiled.Hash(),
		"alphabet": compiled.Alphabet(),
		"cells":    in.Grid().Len(),
	})
}

// compileModelFile reads and compiles a model file.
func compileModelFile(path string) (*model.Compiled, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return model.Compile(data)
}
