// ABOUTME: Tests for embedding response normalization across provider shapes
// ABOUTME: Covers the object, mapping and raw-list shapes plus nested-vector flattening

package embed

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/docweave/docweave/internal/provider"
)

func TestItemPayloads_OpenAIShape(t *testing.T) {
	raw := json.RawMessage(`{"data": [{"embedding": [0.1, 0.2]}, {"embedding": [0.3, 0.4]}]}`)

	payloads, err := ItemPayloads(raw, 2)
	if err != nil {
		t.Fatalf("ItemPayloads() error = %v", err)
	}
	if len(payloads) != 2 {
		t.Fatalf("Payloads = %d, want 2", len(payloads))
	}

	vec, err := Flatten(payloads[0])
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	if len(vec) != 2 || vec[0] != 0.1 || vec[1] != 0.2 {
		t.Errorf("Vector = %v, want [0.1 0.2]", vec)
	}
}

func TestItemPayloads_MappingShape(t *testing.T) {
	raw := json.RawMessage(`{"embeddings": [[1, 2], [3, 4], [5, 6]]}`)

	payloads, err := ItemPayloads(raw, 3)
	if err != nil {
		t.Fatalf("ItemPayloads() error = %v", err)
	}
	for i, want := range [][]float64{{1, 2}, {3, 4}, {5, 6}} {
		vec, err := Flatten(payloads[i])
		if err != nil {
			t.Fatalf("Flatten(%d) error = %v", i, err)
		}
		if vec[0] != want[0] || vec[1] != want[1] {
			t.Errorf("Vector %d = %v, want %v", i, vec, want)
		}
	}
}

func TestItemPayloads_SingleEmbeddingKey(t *testing.T) {
	raw := json.RawMessage(`{"embedding": [7, 8, 9]}`)

	payloads, err := ItemPayloads(raw, 1)
	if err != nil {
		t.Fatalf("ItemPayloads() error = %v", err)
	}
	vec, err := Flatten(payloads[0])
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	if len(vec) != 3 || vec[2] != 9 {
		t.Errorf("Vector = %v, want [7 8 9]", vec)
	}
}

func TestItemPayloads_RawListShape(t *testing.T) {
	raw := json.RawMessage(`[[1, 0], [0, 1]]`)

	payloads, err := ItemPayloads(raw, 2)
	if err != nil {
		t.Fatalf("ItemPayloads() error = %v", err)
	}
	if len(payloads) != 2 {
		t.Fatalf("Payloads = %d, want 2", len(payloads))
	}
}

func TestItemPayloads_BareVectorForSingleText(t *testing.T) {
	// A single request answered with one bare vector, not a list of vectors
	raw := json.RawMessage(`[0.5, 0.6, 0.7]`)

	payloads, err := ItemPayloads(raw, 1)
	if err != nil {
		t.Fatalf("ItemPayloads() error = %v", err)
	}
	vec, err := Flatten(payloads[0])
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.5 {
		t.Errorf("Vector = %v, want [0.5 0.6 0.7]", vec)
	}
}

func TestItemPayloads_CountMismatch(t *testing.T) {
	raw := json.RawMessage(`{"embeddings": [[1, 2]]}`)

	_, err := ItemPayloads(raw, 3)
	var malformed *provider.MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v, want MalformedResponseError", err)
	}
}

func TestItemPayloads_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{{{`},
		{"no embedding key", `{"result": "ok"}`},
		{"data not a list", `{"data": "oops"}`},
		{"scalar", `42`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ItemPayloads(json.RawMessage(tt.raw), 1)
			if err == nil {
				t.Error("Expected error for malformed response")
			}
		})
	}
}

func TestFlatten_UnwrapsNestedVector(t *testing.T) {
	// Provider wrapped the vector one level too deep: [[...]]
	raw := json.RawMessage(`{"data": [{"embedding": [[0.1, 0.2, 0.3]]}]}`)

	payloads, err := ItemPayloads(raw, 1)
	if err != nil {
		t.Fatalf("ItemPayloads() error = %v", err)
	}
	vec, err := Flatten(payloads[0])
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("Vector length = %d, want 3 after unwrapping", len(vec))
	}
	if vec[0] != 0.1 || vec[2] != 0.3 {
		t.Errorf("Vector = %v, want [0.1 0.2 0.3]", vec)
	}
}

func TestFlatten_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload any
	}{
		{"not a list", "string"},
		{"empty", []any{}},
		{"non numeric element", []any{1.0, "two"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Flatten(tt.payload); err == nil {
				t.Error("Expected error for malformed payload")
			}
		})
	}
}
