// ABOUTME: EmbeddingBatcher groups texts into provider-sized batches and normalizes the results
// ABOUTME: A failed batch falls back to per-item calls for that group only
package embed

import (
	"context"
	"fmt"

	"github.com/docweave/docweave/internal/logger"
)

// DefaultBatchSize is the assumed provider maximum batch size.
const DefaultBatchSize = 100

// Batcher turns lists of texts into flat embedding vectors, one per text,
// preserving input order and length.
type Batcher struct {
	provider  Provider
	batchSize int
	log       *logger.Logger
}

// NewBatcher creates a Batcher over the given provider.
func NewBatcher(p Provider, batchSize int, log *logger.Logger) *Batcher {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &Batcher{
		provider:  p,
		batchSize: batchSize,
		log:       log.With("component", "EmbeddingBatcher"),
	}
}

// EmbedBatch embeds all texts, issuing at most ceil(len(texts)/batchSize)
// provider calls. Every returned vector is flat; order matches the input.
func (b *Batcher) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float64, len(texts))
	for start := 0; start < len(texts); start += b.batchSize {
		end := start + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		group := texts[start:end]

		vecs, err := b.embedGroup(ctx, group)
		if err != nil {
			b.log.Warn("batch embedding failed, falling back to per-item calls",
				"group_size", len(group), "error", err)
			vecs, err = b.embedItems(ctx, group)
			if err != nil {
				return nil, err
			}
		}
		copy(out[start:], vecs)
	}
	return out, nil
}

func (b *Batcher) embedGroup(ctx context.Context, group []string) ([][]float64, error) {
	raw, err := b.provider.EmbedRaw(ctx, group)
	if err != nil {
		return nil, err
	}
	payloads, err := ItemPayloads(raw, len(group))
	if err != nil {
		return nil, err
	}

	vecs := make([][]float64, len(group))
	for i, payload := range payloads {
		// Final defensive flatten at assignment: the store rejects nested arrays
		vec, err := Flatten(payload)
		if err != nil {
			return nil, err
		}
		vecs[i] = vec
	}
	return vecs, nil
}

// embedItems is the degraded path: one call per text for a group whose batch
// call failed.
func (b *Batcher) embedItems(ctx context.Context, group []string) ([][]float64, error) {
	vecs := make([][]float64, len(group))
	for i, text := range group {
		raw, err := b.provider.EmbedRaw(ctx, []string{text})
		if err != nil {
			return nil, fmt.Errorf("per-item embedding %d/%d: %w", i+1, len(group), err)
		}
		payloads, err := ItemPayloads(raw, 1)
		if err != nil {
			return nil, err
		}
		vec, err := Flatten(payloads[0])
		if err != nil {
			return nil, err
		}
		vecs[i] = vec
	}
	return vecs, nil
}
