// ABOUTME: Tests for the embedding batcher grouping and fallback logic
// ABOUTME: Verifies batch sizing, order preservation and per-item degradation

package embed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/docweave/docweave/internal/logger"
)

// scriptedProvider answers each EmbedRaw call from a script and records the
// batch sizes it saw.
type scriptedProvider struct {
	responses []string
	errs      []error
	calls     int
	batches   [][]string
}

func (p *scriptedProvider) EmbedRaw(ctx context.Context, texts []string) (json.RawMessage, error) {
	i := p.calls
	p.calls++
	p.batches = append(p.batches, texts)
	if i < len(p.errs) && p.errs[i] != nil {
		return nil, p.errs[i]
	}
	if i < len(p.responses) {
		return json.RawMessage(p.responses[i]), nil
	}
	// Default: one distinct vector per text, encoding the text's index in the call
	vecs := make([]string, len(texts))
	for j := range texts {
		vecs[j] = fmt.Sprintf("[%d, %d]", i, j)
	}
	return json.RawMessage(fmt.Sprintf(`{"embeddings": [%s]}`, strings.Join(vecs, ", "))), nil
}

func TestEmbedBatch_Empty(t *testing.T) {
	b := NewBatcher(&scriptedProvider{}, 10, logger.NewNop())

	vecs, err := b.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if vecs != nil {
		t.Errorf("Expected nil for empty input, got %d vectors", len(vecs))
	}
}

func TestEmbedBatch_GroupsBySize(t *testing.T) {
	p := &scriptedProvider{}
	b := NewBatcher(p, 3, logger.NewNop())

	texts := []string{"a", "b", "c", "d", "e", "f", "g"}
	vecs, err := b.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}

	if p.calls != 3 {
		t.Errorf("Provider calls = %d, want ceil(7/3) = 3", p.calls)
	}
	wantSizes := []int{3, 3, 1}
	for i, batch := range p.batches {
		if len(batch) != wantSizes[i] {
			t.Errorf("Batch %d size = %d, want %d", i, len(batch), wantSizes[i])
		}
	}
	if len(vecs) != len(texts) {
		t.Fatalf("Vectors = %d, want %d", len(vecs), len(texts))
	}
}

func TestEmbedBatch_PreservesOrder(t *testing.T) {
	p := &scriptedProvider{}
	b := NewBatcher(p, 2, logger.NewNop())

	texts := []string{"t0", "t1", "t2", "t3", "t4"}
	vecs, err := b.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}

	// The default scripted vector is [callIndex, indexWithinCall]
	for i, v := range vecs {
		call, pos := i/2, i%2
		if int(v[0]) != call || int(v[1]) != pos {
			t.Errorf("Vector %d = %v, want [%d %d]", i, v, call, pos)
		}
	}
}

func TestEmbedBatch_FallsBackToPerItem(t *testing.T) {
	p := &scriptedProvider{
		errs: []error{errors.New("batch too large")},
	}
	b := NewBatcher(p, 10, logger.NewNop())

	texts := []string{"x", "y", "z"}
	vecs, err := b.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}

	// One failed batch call, then one call per text
	if p.calls != 4 {
		t.Errorf("Provider calls = %d, want 1 failed batch + 3 per-item", p.calls)
	}
	for i := 1; i < len(p.batches); i++ {
		if len(p.batches[i]) != 1 {
			t.Errorf("Fallback call %d carried %d texts, want 1", i, len(p.batches[i]))
		}
	}
	if len(vecs) != 3 {
		t.Errorf("Vectors = %d, want 3", len(vecs))
	}
}

func TestEmbedBatch_FallbackOnMalformedBatchResponse(t *testing.T) {
	p := &scriptedProvider{
		responses: []string{`{"unexpected": true}`},
	}
	b := NewBatcher(p, 10, logger.NewNop())

	vecs, err := b.EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if p.calls != 3 {
		t.Errorf("Provider calls = %d, want 1 malformed batch + 2 per-item", p.calls)
	}
	if len(vecs) != 2 {
		t.Errorf("Vectors = %d, want 2", len(vecs))
	}
}

func TestEmbedBatch_PerItemFailureIsFatal(t *testing.T) {
	p := &scriptedProvider{
		errs: []error{errors.New("batch failed"), errors.New("item failed")},
	}
	b := NewBatcher(p, 10, logger.NewNop())

	_, err := b.EmbedBatch(context.Background(), []string{"a", "b"})
	if err == nil {
		t.Fatal("Expected error when the per-item fallback also fails")
	}
}

func TestEmbedBatch_OnlyFailedGroupDegrades(t *testing.T) {
	p := &scriptedProvider{
		errs: []error{nil, errors.New("second group failed")},
	}
	b := NewBatcher(p, 2, logger.NewNop())

	texts := []string{"a", "b", "c", "d"}
	vecs, err := b.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}

	// Group 1 succeeds in one call; group 2 fails once then goes per-item
	if p.calls != 4 {
		t.Errorf("Provider calls = %d, want 4", p.calls)
	}
	if len(vecs) != 4 {
		t.Errorf("Vectors = %d, want 4", len(vecs))
	}
}

func TestEmbedBatch_DefaultBatchSize(t *testing.T) {
	b := NewBatcher(&scriptedProvider{}, 0, logger.NewNop())
	if b.batchSize != DefaultBatchSize {
		t.Errorf("batchSize = %d, want %d", b.batchSize, DefaultBatchSize)
	}
}
