// ABOUTME: SimilarityIndex ranks existing documents against a topic embedding
// ABOUTME: Cosine similarity over the whole-document embeddings held in the store
package core

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/docweave/docweave/internal/models"
	"github.com/docweave/docweave/internal/storage"
)

// Candidate is an existing document ranked against an incoming topic.
type Candidate struct {
	Document   *models.Document
	Similarity float64
}

// SimilarityIndex scores stored document embeddings against a query vector.
type SimilarityIndex struct {
	store storage.Store
}

// NewSimilarityIndex creates a SimilarityIndex backed by the given store.
func NewSimilarityIndex(store storage.Store) *SimilarityIndex {
	return &SimilarityIndex{store: store}
}

// Candidates returns up to limit documents ranked by cosine similarity to the
// query embedding, highest first.
func (idx *SimilarityIndex) Candidates(ctx context.Context, embedding []float64, limit int) ([]Candidate, error) {
	stored, err := idx.store.DocumentEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load document embeddings: %w", err)
	}
	if len(stored) == 0 {
		return nil, nil
	}

	type scored struct {
		id    string
		score float64
	}
	ranked := make([]scored, 0, len(stored))
	for _, de := range stored {
		ranked = append(ranked, scored{id: de.ID, score: CosineSimilarity(embedding, de.Embedding)})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	candidates := make([]Candidate, 0, len(ranked))
	for _, r := range ranked {
		doc, err := idx.store.GetDocument(ctx, r.id)
		if err != nil {
			// Document deleted between scoring and fetch; skip it
			continue
		}
		candidates = append(candidates, Candidate{Document: doc, Similarity: r.score})
	}
	return candidates, nil
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 for mismatched dimensions or zero-magnitude vectors.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
