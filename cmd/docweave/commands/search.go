// ABOUTME: CLI command to rank stored documents against a free-text query
// ABOUTME: Embeds the query once and prints cosine-ranked matches
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchLimit int

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find documents similar to a query",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}

	cmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum number of results")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := openEmbedding()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	query := strings.Join(args, " ")

	vectors, err := a.batcher.EmbedBatch(ctx, []string{query})
	if err != nil {
		return fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) != 1 {
		return fmt.Errorf("embedding query: got %d vectors for 1 text", len(vectors))
	}

	candidates, err := a.index.Candidates(ctx, vectors[0], searchLimit)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Println("No documents found.")
		return nil
	}

	for _, c := range candidates {
		fmt.Printf("%.4f  %-34s %s\n", c.Similarity, c.Document.ID, c.Document.Title)
	}
	return nil
}
