// ABOUTME: CLI command to list stored documents
// ABOUTME: Shows id, title, word count and last update for each document
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored documents",
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.Close()

	docs, err := a.db.ListDocuments(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}
	if len(docs) == 0 {
		fmt.Println("No documents stored.")
		return nil
	}

	for _, d := range docs {
		fmt.Printf("%s  %-48s %6d words  updated %s\n",
			d.ID, d.Title, d.WordCount(), d.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
