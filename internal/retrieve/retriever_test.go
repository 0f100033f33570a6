package retrieve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marram/ragcore/internal/chunk"
	"github.com/marram/ragcore/internal/index"
)

// stubEmbed returns a fixed vector for any text.
func stubEmbed(vector []float32) EmbedFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	}
}

func TestRetrieve_RanksAgainstIndex(t *testing.T) {
	idx := index.NewMemory()
	ctx := context.Background()

	require.NoError(t, idx.Insert(ctx, []index.Entry{
		{ID: "a", Chunk: chunk.Chunk{Text: "about cats"}, Vector: []float32{1, 0}},
		{ID: "b", Chunk: chunk.Chunk{Text: "about dogs"}, Vector: []float32{0, 1}},
	}))

	r := New(idx, stubEmbed([]float32{0, 1}))

	results, err := r.Retrieve(ctx, "dogs", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].Entry.ID)
	assert.Equal(t, "about dogs", results[0].Entry.Chunk.Text)
}

func TestRetrieve_EmptyIndex(t *testing.T) {
	r := New(index.NewMemory(), stubEmbed([]float32{1, 0}))

	results, err := r.Retrieve(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrieve_EmbedFailure(t *testing.T) {
	idx := index.NewMemory()
	embedErr := errors.New("service down")
	r := New(idx, func(ctx context.Context, text string) ([]float32, error) {
		return nil, embedErr
	})

	results, err := r.Retrieve(context.Background(), "query", 3)
	assert.Nil(t, results)
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
	// The underlying cause stays visible in the message.
	assert.Contains(t, err.Error(), "service down")
}

func TestRetrieve_PropagatesIndexError(t *testing.T) {
	idx := index.NewMemory()
	require.NoError(t, idx.Insert(context.Background(), []index.Entry{
		{ID: "a", Vector: []float32{1, 0}},
	}))

	r := New(idx, stubEmbed([]float32{1, 0}))

	_, err := r.Retrieve(context.Background(), "query", 0)
	assert.ErrorIs(t, err, index.ErrInvalidLimit)
}
