package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/qprog/internal/ir"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print version information",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if rootOpts.Format == "json" {
				return formatter.Success(map[string]string{
					"engine": ir.EngineVersion,
					"record": ir.RecordVersion,
				})
			}
			return formatter.Success(fmt.Sprintf("qprog %s (record schema v%s)", ir.EngineVersion, ir.RecordVersion))
		},
	}
}
