package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/marram/ragcore/internal/compose"
	"github.com/marram/ragcore/internal/index"
	"github.com/marram/ragcore/internal/retrieve"
)

const defaultMaxResults = 5

// IndexInfo is the status side of an index. Both index.Memory and
// index.Qdrant satisfy it.
type IndexInfo interface {
	Count(ctx context.Context) (uint64, error)
	Dimension() int
}

// makeSearchHandler creates the search tool handler: embed the query,
// return the top chunks with scores.
func makeSearchHandler(retriever *retrieve.Retriever) func(
	context.Context, *mcp.CallToolRequest, SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (
		*mcp.CallToolResult, SearchOutput, error,
	) {
		maxResults := input.MaxResults
		if maxResults <= 0 {
			maxResults = defaultMaxResults
		}

		results, err := retriever.Retrieve(ctx, input.Query, maxResults)
		if err != nil {
			return nil, SearchOutput{}, fmt.Errorf("search failed: %w", err)
		}

		if len(results) == 0 {
			return nil, SearchOutput{
				Results: []SearchResult{},
				Message: "No matching chunks found. The index may be empty or the query too narrow.",
			}, nil
		}

		return nil, SearchOutput{Results: toSearchResults(results)}, nil
	}
}

// makeAskHandler creates the ask tool handler: retrieve context
// chunks, compose a prompt, return the generated answer with its
// sources.
func makeAskHandler(retriever *retrieve.Retriever, composer *compose.Composer) func(
	context.Context, *mcp.CallToolRequest, AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (
		*mcp.CallToolResult, AskOutput, error,
	) {
		maxResults := input.MaxResults
		if maxResults <= 0 {
			maxResults = defaultMaxResults
		}

		results, err := retriever.Retrieve(ctx, input.Question, maxResults)
		if err != nil {
			return nil, AskOutput{}, fmt.Errorf("retrieval failed: %w", err)
		}

		// An empty result still goes through the composer: the prompt
		// template lets the model answer that nothing relevant was
		// indexed.
		answer, err := composer.Compose(ctx, input.Question, results)
		if err != nil {
			return nil, AskOutput{}, fmt.Errorf("generation failed: %w", err)
		}

		return nil, AskOutput{
			Answer:  answer,
			Sources: toSearchResults(results),
		}, nil
	}
}

// makeStatusHandler creates the index_status tool handler.
func makeStatusHandler(info IndexInfo) func(
	context.Context, *mcp.CallToolRequest, StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (
		*mcp.CallToolResult, StatusOutput, error,
	) {
		count, err := info.Count(ctx)
		if err != nil {
			return nil, StatusOutput{}, fmt.Errorf("failed to count index entries: %w", err)
		}

		return nil, StatusOutput{
			TotalChunks: count,
			Dimension:   info.Dimension(),
		}, nil
	}
}

// toSearchResults converts index results to the wire shape.
func toSearchResults(results []index.Result) []SearchResult {
	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = SearchResult{
			DocumentID: r.Entry.Chunk.DocumentID,
			ChunkIndex: r.Entry.Chunk.Index,
			Score:      r.Score,
			Text:       r.Entry.Chunk.Text,
		}
	}
	return out
}
