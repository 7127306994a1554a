// ABOUTME: CLI command to print build version metadata
// ABOUTME: Values are injected at build time via SetVersion
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "docweave %s\n", versionString)
			fmt.Fprintf(cmd.OutOrStdout(), "Commit: %s\n", commitString)
			fmt.Fprintf(cmd.OutOrStdout(), "Built:  %s\n", dateString)
		},
	}
}
