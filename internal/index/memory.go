// Package index stores embedded chunks and answers nearest-neighbor
// queries by cosine similarity.
package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/marram/ragcore/internal/chunk"
)

// Entry is a chunk together with its embedding vector.
type Entry struct {
	ID     string // Opaque chunk id (UUID)
	Chunk  chunk.Chunk
	Vector []float32
}

// Result is a single query hit. Results are ordered by descending
// score; equal scores rank earlier-inserted entries first.
type Result struct {
	Entry Entry
	Score float64
}

// Memory is an exact, append-only in-memory index. The first insertion
// establishes the vector dimensionality; all later vectors must match.
// Queries run a linear scan, which is fine at the document scale this
// index is built for. Safe for concurrent use: inserts are serialized,
// queries run in parallel, and a batch insert becomes visible to
// queries atomically.
type Memory struct {
	mu      sync.RWMutex
	entries []Entry
	dim     int
}

// NewMemory creates an empty index.
func NewMemory() *Memory {
	return &Memory{}
}

// Insert appends a batch of entries. Either the whole batch is stored
// or, on a dimension mismatch, none of it: the index is validated
// before anything is appended and left unchanged on failure. An empty
// vector cannot establish the dimensionality and is rejected.
func (m *Memory) Insert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	dim := m.dim
	if dim == 0 {
		dim = len(entries[0].Vector)
		if dim == 0 {
			return fmt.Errorf("%w: entry 0 has an empty vector", ErrDimensionMismatch)
		}
	}
	for i, e := range entries {
		if len(e.Vector) != dim {
			return fmt.Errorf("%w: entry %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(e.Vector), dim)
		}
	}

	m.dim = dim
	m.entries = append(m.entries, entries...)
	return nil
}

// Query returns the k entries most similar to vector, descending by
// cosine similarity with ties broken by insertion order. k larger than
// the index is clamped; an empty index yields an empty result, not an
// error.
func (m *Memory) Query(ctx context.Context, vector []float32, k int) ([]Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, k)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.entries) == 0 {
		return nil, nil
	}
	if len(vector) != m.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(vector), m.dim)
	}

	results := make([]Result, len(m.entries))
	for i, e := range m.entries {
		results[i] = Result{Entry: e, Score: CosineSimilarity(vector, e.Vector)}
	}

	// Stable sort keeps insertion order among equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Dimension returns the established vector dimensionality, or 0 if
// nothing has been inserted yet.
func (m *Memory) Dimension() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dim
}

// Count reports the number of stored entries. It mirrors the Qdrant
// index signature so both satisfy the same status interface.
func (m *Memory) Count(ctx context.Context) (uint64, error) {
	return uint64(m.Len()), nil
}

// CosineSimilarity computes the cosine similarity of two vectors: dot
// product divided by the product of L2 norms. A zero-norm vector (or a
// length mismatch) yields 0 rather than dividing by zero.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
