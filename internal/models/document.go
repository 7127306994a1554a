// ABOUTME: Document is the persisted knowledge unit that topics create or merge into
// ABOUTME: Keywords and SourceURLs behave as ordered sets, duplicates are never appended
package models

import (
	"strings"
	"time"
)

// Document is a stored knowledge document with its whole-content embedding.
type Document struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Summary    string    `json:"summary,omitempty"`
	Category   string    `json:"category,omitempty"`
	Keywords   []string  `json:"keywords,omitempty"`
	SourceURLs []string  `json:"source_urls,omitempty"`
	Embedding  []float64 `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// WordCount returns the number of whitespace-delimited words in the content.
func (d *Document) WordCount() int {
	return len(strings.Fields(d.Content))
}

// AddKeywords appends keywords that are not already present, preserving order.
func (d *Document) AddKeywords(keywords []string) {
	d.Keywords = appendUnique(d.Keywords, keywords)
}

// AddSourceURLs appends source URLs that are not already present, preserving order.
func (d *Document) AddSourceURLs(urls []string) {
	d.SourceURLs = appendUnique(d.SourceURLs, urls)
}

func appendUnique(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		seen[s] = struct{}{}
	}
	for _, s := range incoming {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		existing = append(existing, s)
		seen[s] = struct{}{}
	}
	return existing
}
