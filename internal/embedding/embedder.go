// Package embedding provides an OpenAI-backed embedding provider.
// It is a collaborator of the retrieval core, which only ever sees it
// through the injected EmbedFunc shape.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
)

const (
	// DefaultModel is the embedding model used unless overridden.
	DefaultModel = "text-embedding-3-small"

	// DefaultDimension is the vector size of DefaultModel.
	DefaultDimension = 1536

	// DefaultBatchSize balances requests-per-minute against
	// tokens-per-minute rate limits. OpenAI accepts up to 2048 texts
	// per request.
	DefaultBatchSize = 500
)

// Embedder generates embeddings in batches, retrying rate-limited
// requests with exponential backoff. Retry lives here, outside the
// retrieval core, which performs none itself.
type Embedder struct {
	client    *Client
	model     string
	batchSize int
}

// NewEmbedder creates an Embedder. A non-positive batchSize selects
// DefaultBatchSize; an empty model selects DefaultModel.
func NewEmbedder(client *Client, model string, batchSize int) *Embedder {
	if model == "" {
		model = DefaultModel
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Embedder{
		client:    client,
		model:     model,
		batchSize: batchSize,
	}
}

// EmbedTexts embeds a slice of texts, preserving order. Requests are
// batched; HTTP 429 responses are retried with exponential backoff,
// other errors fail immediately.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	var all [][]float32

	for i := 0; i < len(texts); i += e.batchSize {
		end := min(i+e.batchSize, len(texts))

		vectors, err := e.embedBatchWithRetry(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", i, end, err)
		}
		all = append(all, vectors...)
	}

	return all, nil
}

// EmbedQuery embeds a single text. Its signature matches
// retrieve.EmbedFunc, so a method value of it can be injected into the
// retriever directly.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embedBatchWithRetry(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// embedBatchWithRetry embeds one batch, retrying only on rate limits.
func (e *Embedder) embedBatchWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32

	operation := func() error {
		resp, err := e.client.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: texts,
			},
			Model: openai.EmbeddingModel(e.model),
		})
		if err != nil {
			if isRateLimitError(err) {
				return err // Retried with backoff.
			}
			return backoff.Permanent(err)
		}

		vectors = make([][]float32, len(resp.Data))
		for i, data := range resp.Data {
			vectors[i] = toFloat32(data.Embedding)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	err := backoff.Retry(operation, backoff.WithContext(b, ctx))
	return vectors, err
}

// isRateLimitError reports whether err is an HTTP 429 from the API.
func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

// toFloat32 narrows the API's float64 vectors for storage.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
