// ABOUTME: Merge history persistence: append-only writes and ordered reads
// ABOUTME: Rows are only ever removed by cascade when the target document is deleted
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/docweave/docweave/internal/models"
)

// MergeHistory returns the merge audit log for a document, oldest first.
func (db *DB) MergeHistory(ctx context.Context, documentID string) ([]models.MergeRecord, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, target_doc_id, source_topic_title, merge_strategy, merged_at
		FROM merge_history
		WHERE target_doc_id = ?
		ORDER BY merged_at ASC, id ASC
	`, documentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []models.MergeRecord
	for rows.Next() {
		var (
			r        models.MergeRecord
			strategy string
		)
		if err := rows.Scan(&r.ID, &r.TargetDocID, &r.SourceTopicTitle, &strategy, &r.MergedAt); err != nil {
			return nil, err
		}
		r.Strategy = models.MergeStrategy(strategy)
		records = append(records, r)
	}
	return records, rows.Err()
}

func insertMergeRecords(ctx context.Context, tx *sql.Tx, records []models.MergeRecord) error {
	for i := range records {
		r := &records[i]
		if !r.Strategy.Valid() {
			return fmt.Errorf("merge record %s: unknown strategy %q", r.ID, r.Strategy)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO merge_history (id, target_doc_id, source_topic_title, merge_strategy, merged_at)
			VALUES (?, ?, ?, ?, ?)
		`, r.ID, r.TargetDocID, r.SourceTopicTitle, string(r.Strategy), r.MergedAt); err != nil {
			return fmt.Errorf("insert merge record: %w", err)
		}
	}
	return nil
}
