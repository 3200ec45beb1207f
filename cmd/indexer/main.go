// Command indexer loads the documentation corpus, chunks and embeds it,
// and upserts the result into the vector store. Safe to re-run: chunk
// IDs are stable, so an unchanged corpus overwrites in place.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/clearpath/assistant/internal/chunker"
	"github.com/clearpath/assistant/internal/config"
	"github.com/clearpath/assistant/internal/embedding"
	"github.com/clearpath/assistant/internal/ingest"
	"github.com/clearpath/assistant/internal/loader"
	"github.com/clearpath/assistant/internal/vectorstore"
)

func main() {
	_ = godotenv.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if cfg.EmbeddingAPIKey == "" {
		log.Error("EMBEDDING_API_KEY is required")
		os.Exit(1)
	}

	dir := cfg.DocsDir
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	ctx := context.Background()

	docs, err := loader.LoadDir(dir)
	if err != nil {
		log.Error("load documents failed", "dir", dir, "error", err)
		os.Exit(1)
	}
	if len(docs) == 0 {
		log.Warn("no supported documents found", "dir", dir)
		return
	}
	log.Info("documents loaded", "dir", dir, "count", len(docs))

	embedder, err := embedding.NewClient(cfg.EmbeddingAPIKey, cfg.EmbeddingBaseURL, cfg.EmbeddingModel)
	if err != nil {
		log.Error("embedding client init failed", "error", err)
		os.Exit(1)
	}

	var store vectorstore.Store
	if cfg.QdrantURL != "" {
		store = vectorstore.NewQdrant(vectorstore.QdrantConfig{
			URL:        cfg.QdrantURL,
			APIKey:     cfg.QdrantAPIKey,
			Collection: cfg.QdrantCollection,
		})
	} else {
		log.Warn("QDRANT_URL not set, using in-memory vector store; chunks will not persist")
		store = vectorstore.NewMemory()
	}

	// Probe the embedding dimension so the collection can be created
	// before the first upsert.
	probe, err := embedder.Embed(ctx, "dimension probe")
	if err != nil {
		log.Error("embedding probe failed", "error", err)
		os.Exit(1)
	}
	if err := store.Init(ctx, len(probe)); err != nil {
		log.Error("vector store init failed", "error", err)
		os.Exit(1)
	}

	chunkCfg := chunker.DefaultConfig()
	chunkCfg.ChunkSize = cfg.ChunkSize
	chunkCfg.ChunkOverlap = cfg.ChunkOverlap

	ing := ingest.NewIngester(embedder, store, ingest.Config{
		ChunkCfg:      chunkCfg,
		HeaderCfg:     chunker.DefaultHeaderConfig(),
		MaxConcurrent: cfg.MaxConcurrent,
	}, log)

	results := ing.IngestAll(ctx, docs)

	failed := 0
	total := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			log.Error("document failed", "document", r.DocumentName, "error", r.Err)
			continue
		}
		total += r.Chunks
	}

	log.Info("indexing complete",
		"documents", len(results),
		"failed", failed,
		"chunks", total)
	if failed > 0 {
		os.Exit(1)
	}
}
