// ABOUTME: Topic is the ingestion input unit, a titled body of text from one source
// ABOUTME: Topics are transient and never persisted, only their merged or created documents are
package models

// Topic is a single unit of incoming content.
type Topic struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	SourceURL string `json:"source_url,omitempty"`
}
