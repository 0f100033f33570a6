package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/marram/ragcore/internal/compose"
	"github.com/marram/ragcore/internal/retrieve"
)

// Server wraps the MCP server with its dependencies.
type Server struct {
	server    *mcp.Server
	retriever *retrieve.Retriever
	composer  *compose.Composer
	index     IndexInfo
}

// Config holds server dependencies.
type Config struct {
	Retriever *retrieve.Retriever
	Composer  *compose.Composer
	Index     IndexInfo
}

// NewServer creates a configured MCP server with the search, ask, and
// index_status tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "ragcore-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search",
		Description: "Search indexed documents semantically. Returns the most similar chunks with scores.",
	}, makeSearchHandler(cfg.Retriever))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the indexed documents. Retrieves relevant chunks and generates an answer grounded in them.",
	}, makeAskHandler(cfg.Retriever, cfg.Composer))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "index_status",
		Description: "Report the current state of the embedding index: stored chunk count and vector dimensionality.",
	}, makeStatusHandler(cfg.Index))

	return &Server{
		server:    server,
		retriever: cfg.Retriever,
		composer:  cfg.Composer,
		index:     cfg.Index,
	}
}

// Run starts the server with stdio transport (blocks until the client
// disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance for transport
// handlers that need to wrap it.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
