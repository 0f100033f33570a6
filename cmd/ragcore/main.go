// Package main provides the ragcore CLI for indexing and querying
// document collections.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/marram/ragcore/internal/chunk"
	"github.com/marram/ragcore/internal/compose"
	"github.com/marram/ragcore/internal/embedding"
	"github.com/marram/ragcore/internal/generate"
	"github.com/marram/ragcore/internal/index"
	"github.com/marram/ragcore/internal/pipeline"
	"github.com/marram/ragcore/internal/retrieve"
	"github.com/marram/ragcore/internal/source"
	"github.com/marram/ragcore/internal/token"
)

var rootCmd = &cobra.Command{
	Use:   "ragcore",
	Short: "Chunk, embed, index, and query document collections",
	Long:  "CLI for building embedding indexes from markdown documents and answering questions against them",
}

var (
	chunkSize    int
	chunkOverlap int
)

var (
	syncDir   string
	syncOwner string
	syncRepo  string
	syncPath  string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Re-index a document collection into Qdrant",
	Long: `Clears the existing collection and rebuilds it from the given source.

This command:
1. Connects to Qdrant and verifies health
2. Clears the existing chunk collection
3. Loads markdown documents from a local directory or a GitHub repo
4. Chunks and embeds every document
5. Stores the embedded chunks in Qdrant

Environment variables:
  QDRANT_HOST         Qdrant hostname (default: localhost)
  QDRANT_PORT         Qdrant gRPC port (default: 6334)
  RAGCORE_COLLECTION  Qdrant collection name (default: chunks)
  OPENAI_API_KEY      OpenAI API key for embeddings (required)
  GITHUB_TOKEN        GitHub token for higher rate limits (optional)`,
	RunE: runSync,
}

var (
	askDir string
	askK   int
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question against a local docs directory",
	Long: `One-shot pipeline: loads and chunks the documents, embeds them into an
in-memory index, retrieves the chunks most similar to the question, and
generates an answer grounded in them.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&chunkSize, "chunk-size", 300, "maximum tokens per chunk")
	rootCmd.PersistentFlags().IntVar(&chunkOverlap, "overlap", 50, "tokens shared by adjacent chunks")

	syncCmd.Flags().StringVar(&syncDir, "dir", "", "local directory of markdown documents")
	syncCmd.Flags().StringVar(&syncOwner, "owner", "", "GitHub repository owner")
	syncCmd.Flags().StringVar(&syncRepo, "repo", "", "GitHub repository name")
	syncCmd.Flags().StringVar(&syncPath, "path", "", "path within the GitHub repository")

	askCmd.Flags().StringVar(&askDir, "dir", "docs", "local directory of markdown documents")
	askCmd.Flags().IntVar(&askK, "k", 5, "number of chunks to retrieve as context")

	rootCmd.AddCommand(syncCmd, askCmd)
}

func main() {
	// Load .env if present (local development), ignore if missing.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	start := time.Now()

	docs, err := loadSyncDocuments(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d documents\n", len(docs))

	qdrantHost := getEnv("QDRANT_HOST", "localhost")
	qdrantPort := getEnvInt("QDRANT_PORT", 6334)
	collection := getEnv("RAGCORE_COLLECTION", "chunks")

	fmt.Printf("Connecting to Qdrant at %s:%d...\n", qdrantHost, qdrantPort)
	store, err := index.NewQdrant(qdrantHost, qdrantPort, collection, embedding.DefaultDimension)
	if err != nil {
		return fmt.Errorf("failed to connect to Qdrant: %w", err)
	}
	defer store.Close()

	if err := store.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}

	fmt.Println("Clearing existing collection...")
	if err := store.ClearCollection(ctx); err != nil {
		return fmt.Errorf("failed to clear collection: %w", err)
	}

	embeddingClient, err := embedding.NewClient()
	if err != nil {
		return fmt.Errorf("failed to create embedding client: %w", err)
	}
	embedder := embedding.NewEmbedder(embeddingClient, "", 0)

	builder := pipeline.NewBuilder(
		chunk.Config{Size: chunkSize, Overlap: chunkOverlap},
		token.Words{},
		embedder,
		store,
		slog.Default(),
	)

	fmt.Println()
	fmt.Println("Indexing documents...")
	result, err := builder.IndexAll(ctx, docs)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Println()
	fmt.Println("Sync complete!")
	fmt.Printf("  Documents: %d/%d\n", result.IndexedDocs, result.TotalDocs)
	fmt.Printf("  Chunks: %d\n", result.TotalChunks)
	fmt.Printf("  Duration: %s\n", result.Duration.Round(time.Second))

	if len(result.FailedDocs) > 0 {
		fmt.Println()
		fmt.Println("Failed documents:")
		for _, failed := range result.FailedDocs {
			fmt.Printf("  - %s: %s\n", failed.ID, failed.Reason)
		}
	}

	fmt.Println()
	fmt.Printf("Total time: %s\n", time.Since(start).Round(time.Second))
	return nil
}

// loadSyncDocuments picks the document source from the sync flags.
func loadSyncDocuments(ctx context.Context) ([]chunk.Document, error) {
	switch {
	case syncDir != "":
		return source.FromDir(syncDir)
	case syncOwner != "" && syncRepo != "":
		ghClient, err := source.NewGitHubClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create GitHub client: %w", err)
		}
		fetcher := source.NewGitHubFetcher(ghClient, syncOwner, syncRepo, syncPath)
		return fetcher.FetchAll(ctx)
	default:
		return nil, fmt.Errorf("either --dir or --owner and --repo must be set")
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	question := args[0]

	docs, err := source.FromDir(askDir)
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("no markdown documents found in %s", askDir)
	}

	embeddingClient, err := embedding.NewClient()
	if err != nil {
		return fmt.Errorf("failed to create embedding client: %w", err)
	}
	embedder := embedding.NewEmbedder(embeddingClient, "", 0)

	idx := index.NewMemory()
	builder := pipeline.NewBuilder(
		chunk.Config{Size: chunkSize, Overlap: chunkOverlap},
		token.Words{},
		embedder,
		idx,
		slog.Default(),
	)

	result, err := builder.IndexAll(ctx, docs)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	fmt.Printf("Indexed %d chunks from %d documents\n\n", result.TotalChunks, result.IndexedDocs)

	retriever := retrieve.New(idx, embedder.EmbedQuery)
	generator := generate.NewGenerator(embeddingClient.Client())
	composer := compose.New(generator.Generate, askK)

	hits, err := retriever.Retrieve(ctx, question, askK)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	answer, err := composer.Compose(ctx, question, hits)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	fmt.Println(answer)

	if len(hits) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, hit := range hits {
			fmt.Printf("  - %s (chunk %d, score %.3f)\n",
				hit.Entry.Chunk.DocumentID, hit.Entry.Chunk.Index, hit.Score)
		}
	}

	return nil
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
