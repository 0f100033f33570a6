// Package main provides the MCP server entry point for ragcore.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/marram/ragcore/internal/compose"
	"github.com/marram/ragcore/internal/embedding"
	"github.com/marram/ragcore/internal/generate"
	"github.com/marram/ragcore/internal/index"
	mcpserver "github.com/marram/ragcore/internal/mcp"
	"github.com/marram/ragcore/internal/retrieve"
)

func main() {
	// Load .env if present (local development), ignore if missing.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Cancel on SIGTERM/SIGINT.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	qdrantHost := getEnv("QDRANT_HOST", "localhost")
	qdrantPort := getEnvInt("QDRANT_PORT", 6334)
	collection := getEnv("RAGCORE_COLLECTION", "chunks")
	port := getEnv("PORT", "8080")

	// The server queries an existing collection; sync builds it.
	store, err := index.NewQdrant(qdrantHost, qdrantPort, collection, embedding.DefaultDimension)
	if err != nil {
		log.Fatalf("failed to connect to Qdrant: %v", err)
	}
	defer store.Close()

	if err := store.EnsureCollection(ctx); err != nil {
		log.Fatalf("failed to ensure collection: %v", err)
	}

	embeddingClient, err := embedding.NewClient()
	if err != nil {
		log.Fatalf("failed to create embedding client: %v", err)
	}
	embedder := embedding.NewEmbedder(embeddingClient, "", 0)
	generator := generate.NewGenerator(embeddingClient.Client())

	retriever := retrieve.New(store, embedder.EmbedQuery)
	composer := compose.New(generator.Generate, getEnvInt("RAGCORE_MAX_CONTEXT", 0))

	server := mcpserver.NewServer(&mcpserver.Config{
		Retriever: retriever,
		Composer:  composer,
		Index:     store,
	})

	mux := http.NewServeMux()

	// Health endpoint for deployment health checks.
	mux.HandleFunc("/health", mcpserver.NewHealthHandler(store))

	// MCP HTTP endpoint for remote client connections.
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(server, nil))

	// SERVER_MODE=true serves MCP over HTTP; otherwise stdio for local
	// clients, with the health endpoint in the background.
	serverMode := getEnv("SERVER_MODE", "false") == "true"

	if serverMode {
		addr := "0.0.0.0:" + port
		log.Printf("Starting HTTP server on %s (MCP at /mcp, health at /health)", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	} else {
		go func() {
			addr := "0.0.0.0:" + port
			log.Printf("Starting health server on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("Health server error: %v", err)
			}
		}()

		log.Println("Starting ragcore MCP server (stdio mode)...")
		if err := server.Run(ctx); err != nil {
			log.Printf("server error: %v", err)
			os.Exit(1)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}
