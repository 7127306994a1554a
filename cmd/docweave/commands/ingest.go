// ABOUTME: CLI command to ingest a batch of topics through the pipeline
// ABOUTME: Reads topics as JSON from a file or stdin and prints a run report
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docweave/docweave/internal/models"
)

var ingestFile string

// NewIngestCmd creates the ingest command.
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest topics and merge or create documents",
		Long: `Ingest a batch of topics, deciding per topic whether to merge into an
existing document or create a new one.

Input is a JSON array of topics:
  [{"title": "...", "content": "...", "source_url": "..."}]

Examples:
  docweave ingest --file topics.json
  crawler --extract | docweave ingest`,
		RunE: runIngest,
	}

	cmd.Flags().StringVar(&ingestFile, "file", "", "Read topics from file instead of stdin")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if ingestFile != "" {
		data, err = os.ReadFile(ingestFile)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
	} else {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	var topics []models.Topic
	if err := json.Unmarshal(data, &topics); err != nil {
		return fmt.Errorf("parsing topics: %w", err)
	}
	if len(topics) == 0 {
		return fmt.Errorf("no topics provided")
	}

	a, err := openPipeline()
	if err != nil {
		return err
	}
	defer a.Close()

	// Interruptible between topics; in-flight transactions roll back cleanly
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := a.pipeline.Run(ctx, topics)

	fmt.Printf("Processed %d topics: %d created, %d merged, %d failed\n",
		len(report.Results), report.Created, report.Merged, report.Failed)

	for _, r := range report.Results {
		if r.Err != nil {
			fmt.Printf("  FAILED  %-40s %v\n", r.Topic, r.Err)
			continue
		}
		fmt.Printf("  %-7s %-40s -> %s (%s)\n", r.Decision.Action, r.Topic, r.DocumentID, r.Decision.Confidence)
	}

	if len(report.Review) > 0 {
		fmt.Printf("\n%d low-confidence decisions for review:\n", len(report.Review))
		for _, r := range report.Review {
			fmt.Printf("  %-7s %-40s %s\n", r.Decision.Action, r.Topic, r.Decision.Reason)
		}
	}

	return err
}
