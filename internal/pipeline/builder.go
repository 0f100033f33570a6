// Package pipeline orchestrates index builds: chunk each document,
// embed the chunk texts, and insert them into the index.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/marram/ragcore/internal/chunk"
	"github.com/marram/ragcore/internal/index"
)

// Index is the insertion side of an embedding index. Both index.Memory
// and index.Qdrant satisfy it.
type Index interface {
	Insert(ctx context.Context, entries []index.Entry) error
}

// Embedder embeds a batch of texts, preserving order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// BuildResult contains statistics about an index build.
type BuildResult struct {
	TotalDocs   int
	IndexedDocs int
	TotalChunks int
	FailedDocs  []FailedDoc
	Duration    time.Duration
}

// FailedDoc records a document that could not be indexed.
type FailedDoc struct {
	ID     string
	Reason string
}

// Builder runs the chunk-embed-insert pipeline.
type Builder struct {
	cfg      chunk.Config
	tok      chunk.Tokenizer
	embedder Embedder
	index    Index
	logger   *slog.Logger
}

// NewBuilder creates a Builder with the given chunking geometry,
// tokenizer, embedder, and target index.
func NewBuilder(cfg chunk.Config, tok chunk.Tokenizer, embedder Embedder, idx Index, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		cfg:      cfg,
		tok:      tok,
		embedder: embedder,
		index:    idx,
		logger:   logger,
	}
}

// IndexAll indexes every document, continuing past per-document
// failures and reporting them in the result.
func (b *Builder) IndexAll(ctx context.Context, docs []chunk.Document) (*BuildResult, error) {
	start := time.Now()
	result := &BuildResult{TotalDocs: len(docs)}

	b.logger.Info("Starting index build", "documents", len(docs))

	for _, doc := range docs {
		n, err := b.IndexDocument(ctx, doc)
		if err != nil {
			b.logger.Warn("Failed to index document", "id", doc.ID, "error", err)
			result.FailedDocs = append(result.FailedDocs, FailedDoc{
				ID:     doc.ID,
				Reason: err.Error(),
			})
			continue
		}
		result.IndexedDocs++
		result.TotalChunks += n
	}

	result.Duration = time.Since(start)
	b.logger.Info("Index build complete",
		"indexed", result.IndexedDocs,
		"failed", len(result.FailedDocs),
		"chunks", result.TotalChunks,
		"duration", result.Duration,
	)

	return result, nil
}

// IndexDocument chunks, embeds, and inserts one document. All of a
// document's entries go into the index as a single batch, so queries
// see either the whole document or none of it. Returns the number of
// chunks inserted.
func (b *Builder) IndexDocument(ctx context.Context, doc chunk.Document) (int, error) {
	chunks, err := chunk.Split(doc, b.cfg, b.tok)
	if err != nil {
		return 0, fmt.Errorf("chunk: %w", err)
	}
	if len(chunks) == 0 {
		b.logger.Debug("Skipping empty document", "id", doc.ID)
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := b.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embed: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	entries := make([]index.Entry, len(chunks))
	for i, c := range chunks {
		entries[i] = index.Entry{
			ID:     uuid.New().String(),
			Chunk:  c,
			Vector: vectors[i],
		}
	}

	if err := b.index.Insert(ctx, entries); err != nil {
		return 0, fmt.Errorf("insert: %w", err)
	}

	b.logger.Debug("Indexed document", "id", doc.ID, "chunks", len(chunks))
	return len(chunks), nil
}
