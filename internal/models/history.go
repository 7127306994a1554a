// ABOUTME: MergeRecord is the append-only audit trail of topic merges into documents
// ABOUTME: Rows are never updated and only removed by cascade when the target document is deleted
package models

import "time"

// MergeStrategy classifies how a topic was folded into its target document.
type MergeStrategy string

const (
	// StrategyEnrich - the topic deepened a subject the document already covered
	StrategyEnrich MergeStrategy = "enrich"

	// StrategyExpand - the topic added a substantial new section
	StrategyExpand MergeStrategy = "expand"

	// StrategyConsolidate - several topics were merged into the document in one pass
	StrategyConsolidate MergeStrategy = "consolidate"

	// StrategyAppend - the topic was attached without reorganization
	StrategyAppend MergeStrategy = "append"
)

// Valid reports whether s is one of the known merge strategies.
func (s MergeStrategy) Valid() bool {
	switch s {
	case StrategyEnrich, StrategyExpand, StrategyConsolidate, StrategyAppend:
		return true
	}
	return false
}

// MergeRecord is one row of the merge audit log.
type MergeRecord struct {
	ID               string        `json:"id"`
	TargetDocID      string        `json:"target_doc_id"`
	SourceTopicTitle string        `json:"source_topic_title"`
	Strategy         MergeStrategy `json:"merge_strategy"`
	MergedAt         time.Time     `json:"merged_at"`
}
