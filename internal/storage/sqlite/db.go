// ABOUTME: SQLite database connection, pooling and transaction management
// ABOUTME: Uses modernc.org/sqlite for pure-Go SQLite support
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/docweave/docweave/internal/storage"
)

// Options control pool sizing and the expected embedding dimension.
type Options struct {
	MaxOpenConns int
	MaxIdleConns int
	VectorDim    int
}

// DB wraps a pooled SQLite connection and the document store operations.
type DB struct {
	conn *sql.DB
	path string
	dim  int
}

var _ storage.Store = (*DB)(nil)

// Open opens or creates a SQLite database at the given path.
func Open(path string, opts Options) (*DB, error) {
	if opts.VectorDim < 1 {
		return nil, fmt.Errorf("vector dimension must be positive, got %d", opts.VectorDim)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// WAL for better concurrency, foreign keys for cascade deletes
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(opts.MaxIdleConns)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn, path: path, dim: opts.VectorDim}

	if err := db.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// OpenInMemory creates an in-memory SQLite database (for testing).
// The pool is pinned to a single connection because each in-memory
// connection would otherwise see its own empty database.
func OpenInMemory(vectorDim int) (*DB, error) {
	if vectorDim < 1 {
		return nil, fmt.Errorf("vector dimension must be positive, got %d", vectorDim)
	}

	conn, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, path: ":memory:", dim: vectorDim}

	if err := db.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// initSchema creates all database tables and indexes.
func (db *DB) initSchema() error {
	_, err := db.conn.Exec(Schema)
	return err
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// VectorDim returns the embedding dimension enforced by this store.
func (db *DB) VectorDim() int {
	return db.dim
}

// withTx runs fn inside a transaction, rolling back on any error.
// A failed commit or a failure inside fn leaves the database untouched.
func (db *DB) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
