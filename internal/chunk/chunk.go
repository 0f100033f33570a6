// Package chunk splits documents into overlapping, token-bounded chunks.
package chunk

import (
	"errors"
	"fmt"
)

// Document is an immutable piece of source text to be chunked.
type Document struct {
	ID       string            // Opaque identifier (path, UUID, ...)
	Text     string            // Raw text content
	Metadata map[string]string // Source metadata (path, section, url, ...)
}

// Chunk is a contiguous token span of exactly one document.
// StartToken/EndToken are offsets into the document's tokenization;
// Text is the detokenized span.
type Chunk struct {
	DocumentID string
	Index      int // Position within the document (0, 1, 2...)
	StartToken int
	EndToken   int // Exclusive
	Text       string
}

// Tokenizer abstracts the concrete tokenizer the chunker counts and
// slices with. Any implementation satisfying this contract is
// interchangeable; see the token package for a ready-made one.
type Tokenizer interface {
	// Count returns the number of tokens in text.
	Count(text string) int
	// Slice returns the detokenized text of the token range [start, end).
	Slice(text string, start, end int) string
}

// Config controls the chunk window geometry.
type Config struct {
	Size    int // Maximum tokens per chunk, must be positive
	Overlap int // Tokens shared by adjacent chunks, must be in [0, Size)
}

// ErrInvalidConfig reports an unusable chunk size or overlap.
var ErrInvalidConfig = errors.New("invalid chunk configuration")

// Split divides a document into chunks of at most cfg.Size tokens,
// advancing the window by cfg.Size-cfg.Overlap tokens each step.
//
// Every token of the document lands in at least one chunk. The final
// chunk is truncated to the remaining tokens rather than padded, and a
// tail shorter than the overlap is still emitted so no text is lost.
// An empty document yields an empty chunk sequence, not an error.
func Split(doc Document, cfg Config, tok Tokenizer) ([]Chunk, error) {
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("%w: size %d must be positive", ErrInvalidConfig, cfg.Size)
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.Size {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidConfig, cfg.Overlap, cfg.Size)
	}

	total := tok.Count(doc.Text)
	if total == 0 {
		return nil, nil
	}

	stride := cfg.Size - cfg.Overlap
	var chunks []Chunk
	for start := 0; start < total; start += stride {
		end := min(start+cfg.Size, total)
		chunks = append(chunks, Chunk{
			DocumentID: doc.ID,
			Index:      len(chunks),
			StartToken: start,
			EndToken:   end,
			Text:       tok.Slice(doc.Text, start, end),
		})
		if end == total {
			break
		}
	}

	return chunks, nil
}
