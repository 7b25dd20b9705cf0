package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	ProgramOptions
}

// validateOutput is the JSON payload of a successful validate.
type validateOutput struct {
	Circuits []string `json:"circuits"`
	Device   string   `json:"device"`
	Jobs     int      `json:"jobs"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{ProgramOptions: ProgramOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "validate <spec>",
		Short: "Check that a program spec loads and compiles",
		Long: `Load a program spec, build its registers and circuits, and compile
them for the target device. Nothing is dispatched.

Exit codes:
  0 - spec is valid
  1 - a circuit failed to compile
  2 - the spec could not be loaded

Example:
  qprog validate ./bell.yaml
  qprog validate ./program --device ibmqx2 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd)

	return cmd
}

func runValidate(opts *ValidateOptions, specPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	spec, err := opts.loadSpec(specPath)
	if err != nil {
		return reportError(formatter, ExitCommandError, "failed to load spec", err)
	}
	p, err := opts.newProgram(spec)
	if err != nil {
		return reportError(formatter, ExitCommandError, "failed to initialise program", err)
	}

	names, device, compileOpts := opts.compileArgs(cmd, spec)
	formatter.VerboseLog("compiling %d circuit(s) for %s", len(names), device)
	if err := p.Compile(names, device, compileOpts...); err != nil {
		return reportError(formatter, ExitFailure, "validation failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(validateOutput{Circuits: names, Device: device, Jobs: p.QueueLen()})
	}
	return formatter.Success(fmt.Sprintf("✓ %d circuit(s) valid for %s", len(names), device))
}
