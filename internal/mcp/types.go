// Package mcp exposes the retrieval core as an MCP tool server.
package mcp

// SearchInput defines the input parameters for the search tool.
type SearchInput struct {
	// Query is the semantic search query.
	Query string `json:"query" jsonschema:"required,description=The semantic search query for finding relevant chunks"`
	// MaxResults is the maximum number of chunks to return.
	MaxResults int `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=20,default=5,description=Maximum number of chunks to return"`
}

// SearchOutput contains the search results.
type SearchOutput struct {
	// Results is the list of matching chunks, highest score first.
	Results []SearchResult `json:"results"`
	// Message provides informational context (e.g. "no matches").
	Message string `json:"message,omitempty"`
}

// SearchResult is a single chunk match from semantic search.
type SearchResult struct {
	// DocumentID identifies the source document of the chunk.
	DocumentID string `json:"document_id"`
	// ChunkIndex is the chunk's position within its document.
	ChunkIndex int `json:"chunk_index"`
	// Score is the similarity score.
	Score float64 `json:"score"`
	// Text is the chunk content.
	Text string `json:"text"`
}

// AskInput defines the input parameters for the ask tool.
type AskInput struct {
	// Question is the natural-language question to answer.
	Question string `json:"question" jsonschema:"required,description=The question to answer from the indexed documents"`
	// MaxResults is how many chunks to retrieve as context.
	MaxResults int `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=20,default=5,description=Number of chunks to retrieve as context"`
}

// AskOutput contains the generated answer and its supporting chunks.
type AskOutput struct {
	// Answer is the model's response, verbatim.
	Answer string `json:"answer"`
	// Sources lists the chunks the answer was conditioned on.
	Sources []SearchResult `json:"sources"`
}

// StatusInput defines the input parameters for the index_status tool.
// The tool takes no parameters.
type StatusInput struct{}

// StatusOutput describes the current state of the index.
type StatusOutput struct {
	// TotalChunks is the number of embedded chunks stored.
	TotalChunks uint64 `json:"total_chunks"`
	// Dimension is the embedding vector dimensionality.
	Dimension int `json:"dimension"`
}
