// ABOUTME: Chunk is a bounded contiguous span of a document's content
// ABOUTME: Chunks partition the parent content in index order and are embedded individually
package models

// Chunk represents one embedded span of a document.
// For any document, chunk spans are non-overlapping, ordered by ChunkIndex,
// and together cover the full content.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Content    string    `json:"content"`
	ChunkIndex int       `json:"chunk_index"`
	TokenCount int       `json:"token_count"`
	StartChar  int       `json:"start_char"`
	EndChar    int       `json:"end_char"`
	Embedding  []float64 `json:"embedding,omitempty"`
}
