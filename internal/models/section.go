// ABOUTME: SectionTag is the closed set of markers used to delimit source sections
// ABOUTME: Markers are generated and parsed only through this type, never as loose strings
package models

import "fmt"

// SectionTag identifies the origin of a section inside combined merge input.
type SectionTag string

const (
	// SectionExisting wraps the current document content.
	SectionExisting SectionTag = "EXISTING_DOCUMENT"

	// SectionTopic wraps one incoming topic's content.
	SectionTopic SectionTag = "NEW_TOPIC"
)

// Marker renders the opening delimiter line for a section.
func (t SectionTag) Marker(label string) string {
	if label == "" {
		return fmt.Sprintf("=== %s ===", t)
	}
	return fmt.Sprintf("=== %s: %s ===", t, label)
}
