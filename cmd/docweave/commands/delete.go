// ABOUTME: CLI command to delete a document and its dependent rows
// ABOUTME: Chunks and merge history go with the document via cascade
package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var deleteForce bool

// NewDeleteCmd creates the delete command.
func NewDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <document-id>",
		Short: "Delete a document, its chunks and its merge history",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}

	cmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	doc, err := a.db.GetDocument(ctx, args[0])
	if err != nil {
		return err
	}

	if !deleteForce {
		fmt.Printf("Delete %q (%s)? [y/N]: ", doc.Title, doc.ID)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := a.db.DeleteDocument(ctx, doc.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", doc.ID)
	return nil
}
