package index

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/qdrant/go-client/qdrant"

	"github.com/marram/ragcore/internal/chunk"
)

// upsertBatchSize bounds the number of points sent per upsert request.
const upsertBatchSize = 100

// Qdrant is a production substitute for the in-memory index, backed by
// a Qdrant collection with cosine distance. It implements the same
// Insert/Query contract; ranking is Qdrant's approximate cosine
// ordering rather than the exact linear scan.
type Qdrant struct {
	client     *qdrant.Client
	collection string
	dim        int
}

// NewQdrant connects to Qdrant over gRPC and validates the connection
// with a retried health check, failing fast if the server is
// unreachable. The collection is created on first use with the given
// vector dimensionality.
func NewQdrant(host string, port int, collection string, dim int) (*Qdrant, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	q := &Qdrant{
		client:     client,
		collection: collection,
		dim:        dim,
	}

	if err := q.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrQdrantUnreachable, err)
	}

	return q, nil
}

// healthCheckWithRetry probes Qdrant with exponential backoff.
// Initial interval 500ms, max interval 10s, max elapsed 30s.
func (q *Qdrant) healthCheckWithRetry(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return q.Health(ctx)
	}, backoff.WithContext(b, ctx))
}

// Health performs a single health check against Qdrant.
func (q *Qdrant) Health(ctx context.Context) error {
	result, err := q.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// EnsureCollection creates the collection if it does not exist.
// Idempotent.
func (q *Qdrant) EnsureCollection(ctx context.Context) error {
	collections, err := q.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	for _, name := range collections {
		if name == q.collection {
			return nil
		}
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(q.dim),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// ClearCollection drops and recreates the collection. Used before a
// full re-index.
func (q *Qdrant) ClearCollection(ctx context.Context) error {
	if err := q.client.DeleteCollection(ctx, q.collection); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return q.EnsureCollection(ctx)
}

// Close closes the gRPC connection.
func (q *Qdrant) Close() error {
	if q.client != nil {
		return q.client.Close()
	}
	return nil
}

// Insert upserts a batch of entries. Dimensions are validated
// client-side before anything is sent, so a mismatched batch leaves
// the collection unchanged. Upserts are retried with exponential
// backoff on transient failures.
func (q *Qdrant) Insert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	for i, e := range entries {
		if len(e.Vector) != q.dim {
			return fmt.Errorf("%w: entry %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(e.Vector), q.dim)
		}
	}

	for i := 0; i < len(entries); i += upsertBatchSize {
		end := min(i+upsertBatchSize, len(entries))
		batch := entries[i:end]

		points := make([]*qdrant.PointStruct, len(batch))
		for j, e := range batch {
			points[j] = &qdrant.PointStruct{
				Id:      qdrant.NewIDUUID(e.ID),
				Vectors: qdrant.NewVectors(e.Vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"document_id": e.Chunk.DocumentID,
					"chunk_index": e.Chunk.Index,
					"start_token": e.Chunk.StartToken,
					"end_token":   e.Chunk.EndToken,
					"text":        e.Chunk.Text,
				}),
			}
		}

		if err := q.upsertWithRetry(ctx, points); err != nil {
			return fmt.Errorf("failed to upsert batch %d-%d: %w", i, end, err)
		}
	}

	return nil
}

// upsertWithRetry performs an upsert with exponential backoff.
func (q *Qdrant) upsertWithRetry(ctx context.Context, points []*qdrant.PointStruct) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: q.collection,
			Points:         points,
		})
		return err
	}, backoff.WithContext(b, ctx))
}

// Query returns the k stored entries most similar to vector, highest
// score first.
func (q *Qdrant) Query(ctx context.Context, vector []float32, k int) ([]Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, k)
	}
	if len(vector) != q.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(vector), q.dim)
	}

	hits, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		payload := hit.Payload
		results = append(results, Result{
			Entry: Entry{
				ID: hit.Id.GetUuid(),
				Chunk: chunk.Chunk{
					DocumentID: payload["document_id"].GetStringValue(),
					Index:      int(payload["chunk_index"].GetIntegerValue()),
					StartToken: int(payload["start_token"].GetIntegerValue()),
					EndToken:   int(payload["end_token"].GetIntegerValue()),
					Text:       payload["text"].GetStringValue(),
				},
				// Vector omitted: not needed by callers and not
				// requested from Qdrant.
			},
			Score: float64(hit.Score),
		})
	}

	return results, nil
}

// Dimension returns the configured vector dimensionality.
func (q *Qdrant) Dimension() int {
	return q.dim
}

// Count returns the number of points in the collection.
func (q *Qdrant) Count(ctx context.Context) (uint64, error) {
	collection, err := q.client.GetCollectionInfo(ctx, q.collection)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection: %w", err)
	}
	return collection.GetPointsCount(), nil
}
