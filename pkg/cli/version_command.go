package cli

import (
	"fmt"

	"github.com/aihub-tools/aihub-export/pkg/constants"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", constants.CLIName, constants.Version)
			return nil
		},
	}
}
