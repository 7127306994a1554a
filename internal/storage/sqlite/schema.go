// ABOUTME: SQLite schema for the document store
// ABOUTME: Documents own chunks and merge history rows via cascade delete
package sqlite

// Schema contains all SQL statements for database initialization.
const Schema = `
-- Documents table (full text plus metadata and a whole-document embedding)
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    summary TEXT,
    category TEXT,
    keywords TEXT,
    source_urls TEXT,
    embedding BLOB NOT NULL,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

-- Chunks table (contiguous spans of a document, embedded individually)
CREATE TABLE IF NOT EXISTS chunks (
    id TEXT PRIMARY KEY,
    document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    content TEXT NOT NULL,
    chunk_index INTEGER NOT NULL,
    token_count INTEGER NOT NULL CHECK (token_count > 0),
    start_char INTEGER NOT NULL CHECK (start_char >= 0),
    end_char INTEGER NOT NULL CHECK (end_char > start_char),
    embedding BLOB NOT NULL,
    UNIQUE(document_id, chunk_index)
);

-- Merge history (append-only audit log)
CREATE TABLE IF NOT EXISTS merge_history (
    id TEXT PRIMARY KEY,
    target_doc_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    source_topic_title TEXT NOT NULL,
    merge_strategy TEXT NOT NULL,
    merged_at DATETIME NOT NULL
);

-- Indexes for efficient querying
CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);
CREATE INDEX IF NOT EXISTS idx_history_target ON merge_history(target_doc_id);
CREATE INDEX IF NOT EXISTS idx_documents_updated ON documents(updated_at);
`

// SchemaVersion is the current schema version for migrations.
const SchemaVersion = 1
