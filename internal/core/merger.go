// ABOUTME: DocumentMerger folds one or more topics into an existing document
// ABOUTME: Append-then-reorganize: one LLM call and one batch embedding call regardless of topic count
package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docweave/docweave/internal/llm"
	"github.com/docweave/docweave/internal/logger"
	"github.com/docweave/docweave/internal/models"
	"github.com/docweave/docweave/internal/provider"
	"github.com/docweave/docweave/internal/storage"
)

// DocumentMerger rewrites a document to absorb new topics.
type DocumentMerger struct {
	llm      llm.Client
	chunker  *Chunker
	embedder Embedder
	store    storage.Store
	log      *logger.Logger
}

// NewDocumentMerger creates a DocumentMerger.
func NewDocumentMerger(client llm.Client, chunker *Chunker, embedder Embedder, store storage.Store, log *logger.Logger) *DocumentMerger {
	return &DocumentMerger{
		llm:      client,
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		log:      log.With("component", "DocumentMerger"),
	}
}

// Merge combines the topics into doc and persists the result atomically.
// Exactly one LLM call reorganizes the concatenated sources, and one batch
// embedding call covers all new chunks plus the merged document, however many
// topics arrive. Any failure leaves the stored document untouched.
func (m *DocumentMerger) Merge(ctx context.Context, topics []models.Topic, doc *models.Document) (*models.Document, error) {
	if len(topics) == 0 {
		return nil, fmt.Errorf("merge into %s: no topics given", doc.ID)
	}

	response, err := m.llm.Generate(ctx, buildMergePrompt(doc, topics))
	if err != nil {
		return nil, fmt.Errorf("merge into %s: reorganization failed: %w", doc.ID, err)
	}
	merged := strings.TrimSpace(response)
	if merged == "" {
		return nil, fmt.Errorf("merge into %s: %w", doc.ID,
			&provider.MalformedResponseError{Op: "merge", Detail: "empty reorganized document"})
	}

	chunks, err := m.chunker.Chunk(merged)
	if err != nil {
		return nil, fmt.Errorf("merge into %s: chunk merged content: %w", doc.ID, err)
	}

	texts := make([]string, 0, len(chunks)+1)
	for i := range chunks {
		texts = append(texts, chunks[i].Content)
	}
	texts = append(texts, merged)

	vectors, err := m.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("merge into %s: embed merged content: %w", doc.ID, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("merge into %s: got %d vectors for %d texts", doc.ID, len(vectors), len(texts))
	}

	// Mutate a copy; the caller's document is updated only after commit
	updated := *doc
	updated.Content = merged
	updated.Summary = summarize(merged)
	updated.Embedding = vectors[len(vectors)-1]
	updated.UpdatedAt = time.Now().UTC()
	for _, t := range topics {
		updated.AddKeywords(titleKeywords(t.Title))
		if t.SourceURL != "" {
			updated.AddSourceURLs([]string{t.SourceURL})
		}
	}

	for i := range chunks {
		chunks[i].ID = models.NewChunkID()
		chunks[i].DocumentID = updated.ID
		chunks[i].Embedding = vectors[i]
	}

	records := make([]models.MergeRecord, 0, len(topics))
	mergedAt := updated.UpdatedAt
	for _, t := range topics {
		records = append(records, models.MergeRecord{
			ID:               models.NewMergeRecordID(),
			TargetDocID:      updated.ID,
			SourceTopicTitle: t.Title,
			Strategy:         classifyStrategy(doc, t, len(topics)),
			MergedAt:         mergedAt,
		})
	}

	if err := m.store.ReplaceDocument(ctx, &updated, chunks, records); err != nil {
		return nil, fmt.Errorf("merge into %s: persist: %w", doc.ID, err)
	}

	*doc = updated
	m.log.Info("document merged", "doc_id", doc.ID, "topics", len(topics), "chunks", len(chunks))
	return doc, nil
}

// buildMergePrompt concatenates the existing document and every topic behind
// section markers and instructs a single reorganization pass.
func buildMergePrompt(doc *models.Document, topics []models.Topic) string {
	var b strings.Builder

	b.WriteString("Reorganize the following sources into one coherent document.\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Preserve 100% of the information from every source. Never summarize details away.\n")
	b.WriteString("- Never shorten: every fact, example, number and code snippet must survive.\n")
	b.WriteString("- Never invent: do not add any fact that is absent from the sources.\n")
	b.WriteString("- You may add transitions and section headers to structure the result.\n")
	b.WriteString("- Output only the reorganized document text, no commentary.\n\n")

	b.WriteString(models.SectionExisting.Marker(doc.Title))
	b.WriteString("\n")
	b.WriteString(doc.Content)
	b.WriteString("\n\n")

	for _, t := range topics {
		b.WriteString(models.SectionTopic.Marker(t.Title))
		b.WriteString("\n")
		b.WriteString(t.Content)
		b.WriteString("\n\n")
	}

	return b.String()
}

// classifyStrategy records how a topic was folded in, for the audit log.
func classifyStrategy(existing *models.Document, topic models.Topic, batchSize int) models.MergeStrategy {
	if batchSize > 1 {
		return models.StrategyConsolidate
	}
	if titleOverlaps(existing.Title, topic.Title) {
		return models.StrategyEnrich
	}
	if len(topic.Content) >= len(existing.Content)/2 {
		return models.StrategyExpand
	}
	return models.StrategyAppend
}

// titleOverlaps reports whether the titles share a significant word.
func titleOverlaps(a, b string) bool {
	words := make(map[string]bool)
	for _, w := range titleKeywords(a) {
		words[w] = true
	}
	for _, w := range titleKeywords(b) {
		if words[w] {
			return true
		}
	}
	return false
}
