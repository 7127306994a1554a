// ABOUTME: Chunk persistence: batch insert within a transaction and ordered reads
// ABOUTME: The UNIQUE(document_id, chunk_index) constraint enforces the partition invariant
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/docweave/docweave/internal/models"
	"github.com/docweave/docweave/internal/storage"
)

// ChunksByDocument returns a document's chunks ordered by chunk index.
func (db *DB) ChunksByDocument(ctx context.Context, documentID string) ([]models.Chunk, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, document_id, content, chunk_index, token_count, start_char, end_char, embedding
		FROM chunks
		WHERE document_id = ?
		ORDER BY chunk_index ASC
	`, documentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var chunks []models.Chunk
	for rows.Next() {
		var (
			c    models.Chunk
			blob []byte
		)
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Content, &c.ChunkIndex,
			&c.TokenCount, &c.StartChar, &c.EndChar, &blob); err != nil {
			return nil, err
		}
		c.Embedding = blobToVector(blob)
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func insertChunks(ctx context.Context, tx *sql.Tx, chunks []models.Chunk) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, content, chunk_index, token_count, start_char, end_char, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare chunk insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range chunks {
		c := &chunks[i]
		if _, err := stmt.ExecContext(ctx, c.ID, c.DocumentID, c.Content, c.ChunkIndex,
			c.TokenCount, c.StartChar, c.EndChar, vectorToBlob(c.Embedding)); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("chunk %s index %d: %w", c.ID, c.ChunkIndex, storage.ErrIDCollision)
			}
			return fmt.Errorf("insert chunk %d: %w", c.ChunkIndex, err)
		}
	}
	return nil
}
