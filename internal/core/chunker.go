// ABOUTME: Chunker splits document text into quality-bounded, contiguous spans
// ABOUTME: Prefers paragraph then sentence boundaries and never splits fenced code blocks
package core

import (
	"errors"
	"strings"

	"github.com/docweave/docweave/internal/models"
)

// Chunker splits text into chunks within a token band. Spans are contiguous,
// non-overlapping and cover the full input, so the chunks of a document can
// always be reassembled into its exact content.
type Chunker struct {
	minTokens int
	maxTokens int
}

// NewChunker creates a Chunker with the given token band.
func NewChunker(minTokens, maxTokens int) *Chunker {
	if minTokens < 1 {
		minTokens = 1
	}
	if maxTokens < minTokens {
		maxTokens = minTokens
	}
	return &Chunker{minTokens: minTokens, maxTokens: maxTokens}
}

// span is a half-open byte range into the source text.
type span struct {
	start int
	end   int
}

// Chunk splits text into ordered chunks. IDs and document ownership are
// assigned by the caller.
func (c *Chunker) Chunk(text string) ([]models.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("cannot chunk empty text")
	}

	spans := splitBlocks(text)

	// Sub-split oversized prose blocks; fenced code blocks stay whole
	var units []span
	for _, s := range spans {
		if countTokens(text[s.start:s.end]) <= c.maxTokens || isFencedBlock(text[s.start:s.end]) {
			units = append(units, s)
			continue
		}
		for _, sent := range splitSentenceSpans(text, s) {
			if countTokens(text[sent.start:sent.end]) > c.maxTokens {
				units = append(units, hardSplit(text, sent, c.maxTokens)...)
			} else {
				units = append(units, sent)
			}
		}
	}

	// Greedy accumulation: close a chunk before it would exceed the band max
	var chunks []models.Chunk
	cur := span{start: units[0].start, end: units[0].start}
	curTokens := 0
	flush := func() {
		if cur.end <= cur.start {
			return
		}
		content := text[cur.start:cur.end]
		chunks = append(chunks, models.Chunk{
			Content:    content,
			ChunkIndex: len(chunks),
			TokenCount: maxInt(1, countTokens(content)),
			StartChar:  cur.start,
			EndChar:    cur.end,
		})
	}
	for _, u := range units {
		t := countTokens(text[u.start:u.end])
		if curTokens > 0 && curTokens+t > c.maxTokens {
			flush()
			cur = span{start: cur.end, end: cur.end}
			curTokens = 0
		}
		cur.end = u.end
		curTokens += t
	}
	flush()

	return chunks, nil
}

// splitBlocks splits text into contiguous block spans at blank lines outside
// fenced code. Separator whitespace stays attached to the preceding block so
// the spans cover the text without gaps.
func splitBlocks(text string) []span {
	var spans []span
	start := 0
	lineStart := 0
	inFence := false
	blankRun := false

	for i := 0; i <= len(text); i++ {
		if i < len(text) && text[i] != '\n' {
			continue
		}
		line := strings.TrimSpace(text[lineStart:min(i, len(text))])
		if strings.HasPrefix(line, "```") {
			inFence = !inFence
			blankRun = false
		} else if inFence {
			blankRun = false
		} else if line == "" {
			blankRun = true
		} else if blankRun {
			// First content line after a blank run starts a new block
			spans = append(spans, span{start: start, end: lineStart})
			start = lineStart
			blankRun = false
		}
		lineStart = i + 1
	}
	if start < len(text) {
		spans = append(spans, span{start: start, end: len(text)})
	}
	return spans
}

// splitSentenceSpans cuts a block after sentence-ending periods.
func splitSentenceSpans(text string, s span) []span {
	var spans []span
	start := s.start
	for i := s.start; i < s.end-1; i++ {
		if text[i] == '.' && (text[i+1] == ' ' || text[i+1] == '\n') {
			spans = append(spans, span{start: start, end: i + 1})
			start = i + 1
		}
	}
	if start < s.end {
		spans = append(spans, span{start: start, end: s.end})
	}
	return spans
}

// hardSplit cuts a span at whitespace every maxTokens words. Last resort for
// sentence-free runs of text.
func hardSplit(text string, s span, maxTokens int) []span {
	var spans []span
	start := s.start
	words := 0
	inWord := false
	for i := s.start; i < s.end; i++ {
		isSpace := text[i] == ' ' || text[i] == '\n' || text[i] == '\t' || text[i] == '\r'
		if !isSpace && !inWord {
			inWord = true
			words++
		}
		if isSpace && inWord {
			inWord = false
			if words >= maxTokens {
				spans = append(spans, span{start: start, end: i})
				start = i
				words = 0
			}
		}
	}
	if start < s.end {
		spans = append(spans, span{start: start, end: s.end})
	}
	return spans
}

// isFencedBlock reports whether a block is a fenced code block.
func isFencedBlock(block string) bool {
	return strings.HasPrefix(strings.TrimSpace(block), "```")
}

// countTokens estimates token count as whitespace-delimited words.
func countTokens(s string) int {
	return len(strings.Fields(s))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
