// Package retrieve turns a query string into ranked chunks by
// embedding it and searching an index.
package retrieve

import (
	"context"
	"errors"
	"fmt"

	"github.com/marram/ragcore/internal/index"
)

// EmbedFunc produces the embedding vector for a text. It is always
// injected; this package never talks to an embedding model itself.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// Searcher is the index-side contract. Both index.Memory and
// index.Qdrant satisfy it.
type Searcher interface {
	Query(ctx context.Context, vector []float32, k int) ([]index.Result, error)
}

// ErrEmbeddingUnavailable reports a failure of the injected embedding
// function. The underlying error is preserved in the message; no retry
// is performed here, that policy belongs to the embedding provider or
// the caller.
var ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

// Retriever wraps an index with query-time embedding.
type Retriever struct {
	index Searcher
	embed EmbedFunc
}

// New creates a Retriever over the given index and embedding function.
func New(idx Searcher, embed EmbedFunc) *Retriever {
	return &Retriever{
		index: idx,
		embed: embed,
	}
}

// Retrieve embeds the query text and returns the top k most similar
// chunks. An empty index yields an empty result; callers must check
// length.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]index.Result, error) {
	vector, err := r.embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	return r.index.Query(ctx, vector, k)
}
