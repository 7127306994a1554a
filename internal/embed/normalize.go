// ABOUTME: Normalization of heterogeneous embedding response shapes
// ABOUTME: Providers return an object with data[].embedding, a mapping with an embedding(s) key, or a raw nested list
package embed

import (
	"encoding/json"
	"fmt"

	"github.com/docweave/docweave/internal/provider"
)

// ItemPayloads splits a raw provider response into one payload per input text,
// in input order. The payloads are still untyped; Flatten turns each into a
// flat vector.
func ItemPayloads(raw json.RawMessage, want int) ([]any, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &provider.MalformedResponseError{Op: "embed", Detail: fmt.Sprintf("not JSON: %v", err)}
	}

	var payloads []any
	switch v := decoded.(type) {
	case map[string]any:
		switch {
		case v["data"] != nil:
			// OpenAI shape: {"data": [{"embedding": [...]}, ...]}
			items, ok := v["data"].([]any)
			if !ok {
				return nil, &provider.MalformedResponseError{Op: "embed", Detail: "data field is not a list"}
			}
			for _, item := range items {
				if m, ok := item.(map[string]any); ok && m["embedding"] != nil {
					payloads = append(payloads, m["embedding"])
				} else {
					payloads = append(payloads, item)
				}
			}
		case v["embeddings"] != nil:
			// Mapping shape: {"embeddings": [[...], ...]}
			items, ok := v["embeddings"].([]any)
			if !ok {
				return nil, &provider.MalformedResponseError{Op: "embed", Detail: "embeddings field is not a list"}
			}
			payloads = items
		case v["embedding"] != nil:
			// Single-item mapping shape: {"embedding": [...]}
			payloads = []any{v["embedding"]}
		default:
			return nil, &provider.MalformedResponseError{Op: "embed", Detail: "no embedding field in response object"}
		}
	case []any:
		// Raw list shape: [[...], ...] or a single bare vector
		if want == 1 {
			payloads = []any{decoded}
		} else {
			payloads = v
		}
	default:
		return nil, &provider.MalformedResponseError{Op: "embed", Detail: fmt.Sprintf("unexpected response type %T", decoded)}
	}

	if len(payloads) != want {
		return nil, &provider.MalformedResponseError{
			Op:     "embed",
			Detail: fmt.Sprintf("expected %d embeddings, got %d", want, len(payloads)),
		}
	}
	return payloads, nil
}

// Flatten converts an untyped payload into a flat float64 vector. A payload
// that is still singly nested ([[...]]) is unwrapped; the vector store rejects
// nested arrays, so this runs at the point of assignment as a last defense.
func Flatten(payload any) ([]float64, error) {
	arr, ok := payload.([]any)
	if !ok {
		return nil, &provider.MalformedResponseError{Op: "embed", Detail: fmt.Sprintf("payload is %T, not a list", payload)}
	}
	if len(arr) == 1 {
		if inner, ok := arr[0].([]any); ok {
			arr = inner
		}
	}
	if len(arr) == 0 {
		return nil, &provider.MalformedResponseError{Op: "embed", Detail: "empty embedding"}
	}

	vec := make([]float64, len(arr))
	for i, e := range arr {
		f, ok := e.(float64)
		if !ok {
			return nil, &provider.MalformedResponseError{Op: "embed", Detail: fmt.Sprintf("element %d is %T, not a number", i, e)}
		}
		vec[i] = f
	}
	return vec, nil
}
