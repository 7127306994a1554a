// ABOUTME: Root CLI command and global flags for docweave
// ABOUTME: Registers all subcommands and carries version metadata
package commands

import (
	"github.com/spf13/cobra"
)

var (
	versionString = "dev"
	commitString  = "none"
	dateString    = "unknown"

	dbPath string
)

// SetVersion stores build metadata for the version command.
func SetVersion(version, commit, date string) {
	versionString = version
	commitString = commit
	dateString = date
}

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docweave",
		Short: "Merge-or-create knowledge document store",
		Long: `docweave ingests extracted topics and decides, per topic, whether to
merge it into an existing document or create a new one, persisting the
result as a searchable, chunked, embedded document store.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file path (overrides DOCWEAVE_DB)")

	cmd.AddCommand(NewIngestCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewShowCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewDeleteCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}
