// ABOUTME: Decision types emitted by the merge-or-create engine
// ABOUTME: A low-confidence decision is a signal for review, never an error
package models

// DecisionAction is the outcome of a merge-or-create decision.
type DecisionAction string

const (
	ActionMerge  DecisionAction = "merge"
	ActionCreate DecisionAction = "create"
)

// Confidence grades how certain the engine is about a decision.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Decision is the result of routing one topic.
type Decision struct {
	Action      DecisionAction `json:"action"`
	TargetDocID string         `json:"target_doc_id,omitempty"`
	Confidence  Confidence     `json:"confidence"`
	Reason      string         `json:"reason"`
	Similarity  float64        `json:"similarity"`
}
