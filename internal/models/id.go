// ABOUTME: Collision-resistant identifier generation for documents, chunks and merge records
// ABOUTME: Combines a nanosecond UTC timestamp with a random UUID fragment
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// idTimeFormat includes nanoseconds so IDs minted within the same second
// still carry a monotonic component.
const idTimeFormat = "20060102T150405.000000000"

// NewDocumentID returns a fresh document identifier.
func NewDocumentID() string {
	return newID("doc")
}

// NewChunkID returns a fresh chunk identifier.
func NewChunkID() string {
	return newID("chunk")
}

// NewMergeRecordID returns a fresh merge history identifier.
func NewMergeRecordID() string {
	return newID("merge")
}

func newID(prefix string) string {
	return fmt.Sprintf("%s_%s_%s", prefix, time.Now().UTC().Format(idTimeFormat), uuid.New().String()[:8])
}
