package chunk

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/marram/ragcore/internal/token"
)

// words returns a document of n distinct word tokens.
func words(n int) Document {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return Document{ID: "doc", Text: strings.Join(parts, " ")}
}

// TestSplit_Coverage verifies every token index lands in at least one
// chunk and that start offsets strictly increase.
func TestSplit_Coverage(t *testing.T) {
	doc := words(25)
	chunks, err := Split(doc, Config{Size: 10, Overlap: 3}, token.Words{})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	covered := make([]bool, 25)
	prevStart := -1
	for _, c := range chunks {
		if c.StartToken <= prevStart {
			t.Errorf("Chunk %d start %d not strictly after previous start %d", c.Index, c.StartToken, prevStart)
		}
		prevStart = c.StartToken
		for i := c.StartToken; i < c.EndToken; i++ {
			covered[i] = true
		}
	}

	for i, ok := range covered {
		if !ok {
			t.Errorf("Token %d not covered by any chunk", i)
		}
	}
}

// TestSplit_SizeBound verifies no chunk exceeds the configured size,
// in both token offsets and actual text.
func TestSplit_SizeBound(t *testing.T) {
	doc := words(37)
	tok := token.Words{}
	chunks, err := Split(doc, Config{Size: 8, Overlap: 2}, tok)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	for _, c := range chunks {
		if span := c.EndToken - c.StartToken; span > 8 {
			t.Errorf("Chunk %d spans %d tokens, want <= 8", c.Index, span)
		}
		if n := tok.Count(c.Text); n != c.EndToken-c.StartToken {
			t.Errorf("Chunk %d text has %d tokens, offsets say %d", c.Index, n, c.EndToken-c.StartToken)
		}
	}
}

// TestSplit_ExactOverlap verifies adjacent chunks share exactly the
// configured number of tokens.
func TestSplit_ExactOverlap(t *testing.T) {
	doc := words(40)
	chunks, err := Split(doc, Config{Size: 10, Overlap: 4}, token.Words{})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		overlap := chunks[i-1].EndToken - chunks[i].StartToken
		if overlap != 4 {
			t.Errorf("Chunks %d/%d overlap by %d tokens, want 4", i-1, i, overlap)
		}
	}
}

// TestSplit_TailShorterThanOverlap verifies text smaller than the
// overlap is still emitted as a chunk rather than dropped.
func TestSplit_TailShorterThanOverlap(t *testing.T) {
	// Two tokens, overlap of three: the only window is smaller than
	// the overlap itself.
	doc := words(2)
	chunks, err := Split(doc, Config{Size: 5, Overlap: 3}, token.Words{})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "w0 w1" {
		t.Errorf("Tail text = %q, want %q", chunks[0].Text, "w0 w1")
	}
	if chunks[0].EndToken != 2 {
		t.Errorf("Tail ends at %d, want 2", chunks[0].EndToken)
	}
}

// TestSplit_FinalChunkTruncated verifies the final window is truncated
// to the remaining tokens rather than padded or dropped.
func TestSplit_FinalChunkTruncated(t *testing.T) {
	doc := words(23)
	chunks, err := Split(doc, Config{Size: 10, Overlap: 4}, token.Words{})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	last := chunks[len(chunks)-1]
	if last.EndToken != 23 {
		t.Errorf("Last chunk ends at %d, want 23", last.EndToken)
	}
	if span := last.EndToken - last.StartToken; span >= 10 {
		t.Errorf("Last chunk spans %d tokens, want a truncated window", span)
	}
}

// TestSplit_SingleChunk verifies a document within one window yields
// exactly one chunk.
func TestSplit_SingleChunk(t *testing.T) {
	doc := Document{ID: "d", Text: "alpha beta gamma"}
	chunks, err := Split(doc, Config{Size: 10, Overlap: 2}, token.Words{})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "alpha beta gamma" {
		t.Errorf("Chunk text = %q", chunks[0].Text)
	}
	if chunks[0].StartToken != 0 || chunks[0].EndToken != 3 {
		t.Errorf("Chunk span = [%d, %d), want [0, 3)", chunks[0].StartToken, chunks[0].EndToken)
	}
}

// TestSplit_EmptyDocument verifies empty input yields an empty chunk
// sequence, not an error.
func TestSplit_EmptyDocument(t *testing.T) {
	chunks, err := Split(Document{ID: "d", Text: ""}, Config{Size: 10, Overlap: 2}, token.Words{})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("Expected no chunks, got %d", len(chunks))
	}
}

// TestSplit_InvalidConfig verifies bad geometry fails with
// ErrInvalidConfig.
func TestSplit_InvalidConfig(t *testing.T) {
	doc := words(10)
	cases := []Config{
		{Size: 0, Overlap: 0},
		{Size: -1, Overlap: 0},
		{Size: 10, Overlap: -1},
		{Size: 10, Overlap: 10},
		{Size: 10, Overlap: 15},
	}

	for _, cfg := range cases {
		_, err := Split(doc, cfg, token.Words{})
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Split(%+v) error = %v, want ErrInvalidConfig", cfg, err)
		}
	}
}

// TestSplit_DocumentID verifies chunks carry their document's id and
// sequential indices.
func TestSplit_DocumentID(t *testing.T) {
	doc := words(20)
	chunks, err := Split(doc, Config{Size: 6, Overlap: 1}, token.Words{})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	for i, c := range chunks {
		if c.DocumentID != "doc" {
			t.Errorf("Chunk %d DocumentID = %q", i, c.DocumentID)
		}
		if c.Index != i {
			t.Errorf("Chunk at position %d has Index %d", i, c.Index)
		}
	}
}
