// ABOUTME: DocumentCreator turns a topic into a new persisted document with chunks
// ABOUTME: One batch embedding call covers every chunk plus the whole document text
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/docweave/docweave/internal/logger"
	"github.com/docweave/docweave/internal/models"
	"github.com/docweave/docweave/internal/storage"
)

// Embedder turns texts into flat embedding vectors, one per text,
// preserving input order and length.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// idRetries bounds regeneration attempts after an identifier collision.
const idRetries = 3

// DocumentCreator persists new documents.
type DocumentCreator struct {
	chunker          *Chunker
	embedder         Embedder
	store            storage.Store
	minContentLength int
	log              *logger.Logger
}

// NewDocumentCreator creates a DocumentCreator.
func NewDocumentCreator(chunker *Chunker, embedder Embedder, store storage.Store, minContentLength int, log *logger.Logger) *DocumentCreator {
	return &DocumentCreator{
		chunker:          chunker,
		embedder:         embedder,
		store:            store,
		minContentLength: minContentLength,
		log:              log.With("component", "DocumentCreator"),
	}
}

// Create chunks and embeds a topic and persists it as a new document in one
// transaction. An identifier collision triggers regeneration, never an
// overwrite.
func (c *DocumentCreator) Create(ctx context.Context, topic models.Topic) (*models.Document, error) {
	content := strings.TrimSpace(topic.Content)
	if len(content) < c.minContentLength {
		return nil, fmt.Errorf("topic %q content below minimum length %d", topic.Title, c.minContentLength)
	}

	chunks, err := c.chunker.Chunk(topic.Content)
	if err != nil {
		return nil, fmt.Errorf("chunk topic %q: %w", topic.Title, err)
	}

	// Single batch call: all chunk texts plus the whole document text last
	texts := make([]string, 0, len(chunks)+1)
	for i := range chunks {
		texts = append(texts, chunks[i].Content)
	}
	texts = append(texts, topic.Content)

	vectors, err := c.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed topic %q: %w", topic.Title, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed topic %q: got %d vectors for %d texts", topic.Title, len(vectors), len(texts))
	}

	now := time.Now().UTC()
	doc := &models.Document{
		Title:     topic.Title,
		Content:   topic.Content,
		Summary:   summarize(topic.Content),
		Keywords:  titleKeywords(topic.Title),
		Embedding: vectors[len(vectors)-1],
		CreatedAt: now,
		UpdatedAt: now,
	}
	if topic.SourceURL != "" {
		doc.SourceURLs = []string{topic.SourceURL}
	}

	for attempt := 0; attempt < idRetries; attempt++ {
		doc.ID = models.NewDocumentID()
		for i := range chunks {
			chunks[i].ID = models.NewChunkID()
			chunks[i].DocumentID = doc.ID
			chunks[i].Embedding = vectors[i]
		}

		err = c.store.CreateDocument(ctx, doc, chunks)
		if err == nil {
			c.log.Info("document created", "doc_id", doc.ID, "title", doc.Title, "chunks", len(chunks))
			return doc, nil
		}
		if !errors.Is(err, storage.ErrIDCollision) {
			return nil, fmt.Errorf("persist document %q: %w", topic.Title, err)
		}
		c.log.Warn("identifier collision, regenerating", "doc_id", doc.ID, "attempt", attempt+1)
	}
	return nil, fmt.Errorf("persist document %q: %w after %d attempts", topic.Title, storage.ErrIDCollision, idRetries)
}

// summarize returns the leading text of the content, cut at a word boundary.
func summarize(content string) string {
	first := content
	if i := strings.Index(content, "\n\n"); i > 0 {
		first = content[:i]
	}
	return clip(strings.TrimSpace(first), 280)
}

// titleKeywords seeds the keyword set from the topic title.
func titleKeywords(title string) []string {
	var keywords []string
	for _, w := range strings.Fields(strings.ToLower(title)) {
		w = strings.Trim(w, `.,:;!?"'()[]`)
		if len(w) > 3 {
			keywords = append(keywords, w)
		}
	}
	return keywords
}
