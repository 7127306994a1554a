// ABOUTME: CLI command to show one document with its chunks and merge history
// ABOUTME: The stable read surface for downstream re-indexing consumers
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var showFull bool

// NewShowCmd creates the show command.
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <document-id>",
		Short: "Show a document, its chunks and its merge history",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}

	cmd.Flags().BoolVar(&showFull, "full", false, "Print the full document content")

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("ID:        %s\n", doc.ID)
	fmt.Printf("Title:     %s\n", doc.Title)
	if doc.Category != "" {
		fmt.Printf("Category:  %s\n", doc.Category)
	}
	fmt.Printf("Words:     %d\n", doc.WordCount())
	if len(doc.Keywords) > 0 {
		fmt.Printf("Keywords:  %s\n", strings.Join(doc.Keywords, ", "))
	}
	if len(doc.SourceURLs) > 0 {
		fmt.Printf("Sources:   %s\n", strings.Join(doc.SourceURLs, ", "))
	}
	fmt.Printf("Created:   %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated:   %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	if doc.Summary != "" {
		fmt.Printf("\nSummary:\n%s\n", doc.Summary)
	}

	chunks, err := a.db.ChunksByDocument(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("loading chunks: %w", err)
	}
	fmt.Printf("\nChunks (%d):\n", len(chunks))
	for _, c := range chunks {
		fmt.Printf("  [%d] %d tokens, chars %d-%d\n", c.ChunkIndex, c.TokenCount, c.StartChar, c.EndChar)
	}

	history, err := a.db.MergeHistory(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("loading merge history: %w", err)
	}
	if len(history) > 0 {
		fmt.Printf("\nMerge history (%d):\n", len(history))
		for _, h := range history {
			fmt.Printf("  %s  %-12s %s\n", h.MergedAt.Format("2006-01-02 15:04"), h.Strategy, h.SourceTopicTitle)
		}
	}

	if showFull {
		fmt.Printf("\nContent:\n%s\n", doc.Content)
	}
	return nil
}
