// ABOUTME: Tests for the bounded contiguous text chunker
// ABOUTME: Verifies full coverage, ordering, token bounds and fence integrity

package core

import (
	"fmt"
	"strings"
	"testing"
)

func makeWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(words, " ")
}

func TestChunk_EmptyText(t *testing.T) {
	c := NewChunker(200, 500)

	tests := []struct {
		name string
		text string
	}{
		{"empty string", ""},
		{"whitespace only", "   "},
		{"tabs and newlines", "\t\n\r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := c.Chunk(tt.text)
			if err == nil {
				t.Error("Expected error for empty text")
			}
			if chunks != nil {
				t.Errorf("Expected nil chunks, got %d", len(chunks))
			}
		})
	}
}

func TestChunk_ShortText(t *testing.T) {
	c := NewChunker(200, 500)

	text := "A single short paragraph that fits comfortably in one chunk."
	chunks, err := c.Chunk(text)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != text {
		t.Errorf("Chunk content = %q, want %q", chunks[0].Content, text)
	}
	if chunks[0].StartChar != 0 || chunks[0].EndChar != len(text) {
		t.Errorf("Chunk span = [%d,%d), want [0,%d)", chunks[0].StartChar, chunks[0].EndChar, len(text))
	}
}

func TestChunk_FullCoverage(t *testing.T) {
	c := NewChunker(20, 50)

	// Several paragraphs well above the band max in total
	var paras []string
	for i := 0; i < 8; i++ {
		paras = append(paras, makeWords(30))
	}
	text := strings.Join(paras, "\n\n")

	chunks, err := c.Chunk(text)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}

	// Contiguous spans starting at 0 and ending at len(text)
	if chunks[0].StartChar != 0 {
		t.Errorf("First chunk starts at %d, want 0", chunks[0].StartChar)
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].StartChar != chunks[i-1].EndChar {
			t.Errorf("Gap between chunk %d end %d and chunk %d start %d",
				i-1, chunks[i-1].EndChar, i, chunks[i].StartChar)
		}
	}
	if last := chunks[len(chunks)-1]; last.EndChar != len(text) {
		t.Errorf("Last chunk ends at %d, want %d", last.EndChar, len(text))
	}

	// Concatenation reassembles the exact input
	var b strings.Builder
	for _, ch := range chunks {
		b.WriteString(ch.Content)
	}
	if b.String() != text {
		t.Error("Concatenated chunks do not reproduce the input text")
	}

	// Spans and content agree
	for i, ch := range chunks {
		if text[ch.StartChar:ch.EndChar] != ch.Content {
			t.Errorf("Chunk %d content does not match its span", i)
		}
		if ch.ChunkIndex != i {
			t.Errorf("Chunk %d has index %d", i, ch.ChunkIndex)
		}
	}
}

func TestChunk_TokenBounds(t *testing.T) {
	c := NewChunker(20, 50)

	text := strings.Join([]string{makeWords(30), makeWords(30), makeWords(30), makeWords(30)}, "\n\n")
	chunks, err := c.Chunk(text)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}

	for i, ch := range chunks {
		if ch.TokenCount < 1 {
			t.Errorf("Chunk %d token count = %d, want >= 1", i, ch.TokenCount)
		}
		// A paragraph of 30 words never forces an overflow at max 50
		if ch.TokenCount > 60 {
			t.Errorf("Chunk %d token count = %d, exceeds band max by more than one unit", i, ch.TokenCount)
		}
	}
}

func TestChunk_OversizedParagraphSplitsAtSentences(t *testing.T) {
	c := NewChunker(5, 10)

	// One paragraph of 6 sentences, 5 words each
	var sents []string
	for i := 0; i < 6; i++ {
		sents = append(sents, makeWords(5)+".")
	}
	text := strings.Join(sents, " ")

	chunks, err := c.Chunk(text)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("Expected sentence-level split, got %d chunks", len(chunks))
	}
	for i, ch := range chunks {
		if text[ch.StartChar:ch.EndChar] != ch.Content {
			t.Errorf("Chunk %d content does not match its span", i)
		}
	}
}

func TestChunk_SentenceFreeRunHardSplits(t *testing.T) {
	c := NewChunker(5, 10)

	text := makeWords(45)
	chunks, err := c.Chunk(text)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) < 3 {
		t.Fatalf("Expected hard splits, got %d chunks", len(chunks))
	}

	// Word boundaries only: every cut lands on whitespace
	for i, ch := range chunks[:len(chunks)-1] {
		if next := text[ch.EndChar]; next != ' ' && next != '\n' {
			t.Errorf("Chunk %d cut mid-word at byte %d (%q)", i, ch.EndChar, next)
		}
	}
}

func TestChunk_FencedCodeStaysWhole(t *testing.T) {
	c := NewChunker(5, 10)

	code := "```go\nfunc main() {\n    fmt.Println(\"one two three four five six seven eight nine ten eleven twelve\")\n}\n```"
	text := makeWords(8) + "\n\n" + code + "\n\n" + makeWords(8)

	chunks, err := c.Chunk(text)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}

	found := false
	for _, ch := range chunks {
		if strings.Contains(ch.Content, "```go") {
			if !strings.Contains(ch.Content, "func main()") || strings.Count(ch.Content, "```") < 2 {
				t.Errorf("Fenced block was split across chunks: %q", ch.Content)
			}
			found = true
		}
	}
	if !found {
		t.Error("Fenced block not found in any chunk")
	}
}

func TestChunk_BlankLinesInsideFenceDoNotSplit(t *testing.T) {
	c := NewChunker(5, 50)

	code := "```\nline one\n\nline two after blank\n```"
	text := "Intro paragraph here.\n\n" + code

	chunks, err := c.Chunk(text)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}

	var withFence int
	for _, ch := range chunks {
		if strings.Contains(ch.Content, "line one") {
			if !strings.Contains(ch.Content, "line two after blank") {
				t.Error("Blank line inside fence split the code block")
			}
			withFence++
		}
	}
	if withFence == 0 {
		t.Error("Fenced content missing from chunks")
	}
}

func TestNewChunker_DegenerateBand(t *testing.T) {
	c := NewChunker(0, -5)
	if c.minTokens < 1 || c.maxTokens < c.minTokens {
		t.Errorf("Band not normalized: min=%d max=%d", c.minTokens, c.maxTokens)
	}
}
