// ABOUTME: Document persistence: transactional create, replace-on-merge, reads and cascade delete
// ABOUTME: All queries are parameterized; crawled or LLM-derived text never reaches query strings
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/docweave/docweave/internal/models"
	"github.com/docweave/docweave/internal/storage"
)

// CreateDocument inserts a new document and its chunks in one transaction.
// Returns storage.ErrIDCollision (wrapped) when the document id already exists so the
// caller can regenerate and retry.
func (db *DB) CreateDocument(ctx context.Context, doc *models.Document, chunks []models.Chunk) error {
	if err := db.validateVector("document", doc.Embedding); err != nil {
		return err
	}
	for i := range chunks {
		if err := db.validateVector("chunk", chunks[i].Embedding); err != nil {
			return err
		}
	}

	return db.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertDocument(ctx, tx, doc); err != nil {
			return err
		}
		return insertChunks(ctx, tx, chunks)
	})
}

// ReplaceDocument applies a merge result atomically: the document row is
// updated, its old chunks are replaced wholesale, and one merge history row
// is appended per source topic. Any failure leaves the prior state untouched.
func (db *DB) ReplaceDocument(ctx context.Context, doc *models.Document, chunks []models.Chunk, records []models.MergeRecord) error {
	if err := db.validateVector("document", doc.Embedding); err != nil {
		return err
	}
	for i := range chunks {
		if err := db.validateVector("chunk", chunks[i].Embedding); err != nil {
			return err
		}
	}

	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, doc.ID); err != nil {
			return fmt.Errorf("delete old chunks: %w", err)
		}

		keywordsJSON, sourcesJSON, err := marshalSets(doc)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE documents
			SET title = ?, content = ?, summary = ?, category = ?, keywords = ?,
			    source_urls = ?, embedding = ?, updated_at = ?
			WHERE id = ?
		`, doc.Title, doc.Content, doc.Summary, doc.Category, keywordsJSON,
			sourcesJSON, vectorToBlob(doc.Embedding), doc.UpdatedAt, doc.ID)
		if err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("document %s: %w", doc.ID, storage.ErrNotFound)
		}

		if err := insertChunks(ctx, tx, chunks); err != nil {
			return err
		}
		return insertMergeRecords(ctx, tx, records)
	})
}

// GetDocument retrieves a document by id, including its embedding.
func (db *DB) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, title, content, summary, category, keywords, source_urls, embedding, created_at, updated_at
		FROM documents
		WHERE id = ?
	`, id)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ListDocuments returns all documents ordered by last update, newest first.
// Embeddings are omitted; use DocumentEmbeddings for similarity scoring.
func (db *DB) ListDocuments(ctx context.Context) ([]models.Document, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, title, content, summary, category, keywords, source_urls, created_at, updated_at
		FROM documents
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var docs []models.Document
	for rows.Next() {
		var (
			doc          models.Document
			summary      sql.NullString
			category     sql.NullString
			keywordsJSON sql.NullString
			sourcesJSON  sql.NullString
		)
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Content, &summary, &category,
			&keywordsJSON, &sourcesJSON, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		doc.Summary = summary.String
		doc.Category = category.String
		doc.Keywords = unmarshalSet(keywordsJSON)
		doc.SourceURLs = unmarshalSet(sourcesJSON)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DocumentEmbeddings returns the id and embedding of every stored document.
func (db *DB) DocumentEmbeddings(ctx context.Context) ([]storage.DocEmbedding, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, embedding FROM documents`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []storage.DocEmbedding
	for rows.Next() {
		var (
			id   string
			blob []byte
		)
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, err
		}
		out = append(out, storage.DocEmbedding{ID: id, Embedding: blobToVector(blob)})
	}
	return out, rows.Err()
}

// DeleteDocument removes a document; chunks and merge history cascade.
func (db *DB) DeleteDocument(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("document %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func insertDocument(ctx context.Context, tx *sql.Tx, doc *models.Document) error {
	keywordsJSON, sourcesJSON, err := marshalSets(doc)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, title, content, summary, category, keywords, source_urls, embedding, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.Title, doc.Content, doc.Summary, doc.Category, keywordsJSON,
		sourcesJSON, vectorToBlob(doc.Embedding), doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("document %s: %w", doc.ID, storage.ErrIDCollision)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func marshalSets(doc *models.Document) (string, string, error) {
	keywordsJSON, err := json.Marshal(doc.Keywords)
	if err != nil {
		return "", "", fmt.Errorf("marshal keywords: %w", err)
	}
	sourcesJSON, err := json.Marshal(doc.SourceURLs)
	if err != nil {
		return "", "", fmt.Errorf("marshal source urls: %w", err)
	}
	return string(keywordsJSON), string(sourcesJSON), nil
}

func unmarshalSet(col sql.NullString) []string {
	if !col.Valid || col.String == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(col.String), &out); err != nil {
		return nil
	}
	return out
}

func scanDocument(row *sql.Row) (*models.Document, error) {
	var (
		doc          models.Document
		summary      sql.NullString
		category     sql.NullString
		keywordsJSON sql.NullString
		sourcesJSON  sql.NullString
		blob         []byte
	)
	err := row.Scan(&doc.ID, &doc.Title, &doc.Content, &summary, &category,
		&keywordsJSON, &sourcesJSON, &blob, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	doc.Summary = summary.String
	doc.Category = category.String
	doc.Keywords = unmarshalSet(keywordsJSON)
	doc.SourceURLs = unmarshalSet(sourcesJSON)
	doc.Embedding = blobToVector(blob)
	return &doc, nil
}

// isUniqueViolation detects primary key and unique constraint failures from
// the modernc sqlite driver, which surfaces them as plain error strings.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
