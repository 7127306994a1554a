// ABOUTME: Storage contract for the document store plus shared error sentinels
// ABOUTME: Components depend on this interface; sqlite provides the implementation
package storage

import (
	"context"
	"errors"

	"github.com/docweave/docweave/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrIDCollision is returned when an insert hits an existing primary key.
// The caller regenerates the identifier and retries, never overwrites.
var ErrIDCollision = errors.New("identifier collision")

// DocEmbedding pairs a document id with its stored whole-document embedding.
// Used by the similarity index to rank merge candidates.
type DocEmbedding struct {
	ID        string
	Embedding []float64
}

// Store is the transactional persistence surface for documents, chunks and
// merge history. Implementations must use parameterized queries throughout
// and guarantee that CreateDocument and ReplaceDocument are atomic.
type Store interface {
	// CreateDocument inserts a new document with its chunks in one transaction.
	CreateDocument(ctx context.Context, doc *models.Document, chunks []models.Chunk) error

	// ReplaceDocument applies a merge result atomically: document row updated,
	// chunks replaced wholesale, one merge record appended per source topic.
	ReplaceDocument(ctx context.Context, doc *models.Document, chunks []models.Chunk, records []models.MergeRecord) error

	GetDocument(ctx context.Context, id string) (*models.Document, error)
	ListDocuments(ctx context.Context) ([]models.Document, error)
	ChunksByDocument(ctx context.Context, documentID string) ([]models.Chunk, error)
	DocumentEmbeddings(ctx context.Context) ([]DocEmbedding, error)
	MergeHistory(ctx context.Context, documentID string) ([]models.MergeRecord, error)

	// DeleteDocument removes a document; chunks and merge history cascade.
	DeleteDocument(ctx context.Context, id string) error
}
