// Package ingest drives the indexing pipeline: chunk each document,
// embed the chunks, and upsert them into the vector store. Pages within
// a document are chunked sequentially so header context carries forward;
// documents are independent and run in parallel.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/clearpath/assistant/internal/chunker"
	"github.com/clearpath/assistant/internal/models"
	"github.com/clearpath/assistant/internal/vectorstore"
)

// Embedder turns chunk texts into vectors.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// Config bounds pipeline concurrency and sets chunking parameters.
type Config struct {
	ChunkCfg      chunker.Config
	HeaderCfg     chunker.HeaderConfig
	MaxConcurrent int
}

func DefaultConfig() Config {
	return Config{
		ChunkCfg:      chunker.DefaultConfig(),
		HeaderCfg:     chunker.DefaultHeaderConfig(),
		MaxConcurrent: 4,
	}
}

// DocumentResult reports the outcome of ingesting one document.
type DocumentResult struct {
	DocumentName string
	Chunks       int
	Err          error
}

// Ingester runs documents through chunk, embed, and upsert.
type Ingester struct {
	embedder Embedder
	store    vectorstore.Store
	cfg      Config
	logger   *slog.Logger
}

func NewIngester(embedder Embedder, store vectorstore.Store, cfg Config, logger *slog.Logger) *Ingester {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	return &Ingester{
		embedder: embedder,
		store:    store,
		cfg:      cfg,
		logger:   logger,
	}
}

// IngestAll processes documents in parallel, bounded by MaxConcurrent.
// Results are returned in input order. A failed document does not stop
// the others; re-running ingestion is safe because chunk IDs are stable
// and upserts overwrite.
func (ing *Ingester) IngestAll(ctx context.Context, docs []models.Document) []DocumentResult {
	results := make([]DocumentResult, len(docs))
	sem := make(chan struct{}, ing.cfg.MaxConcurrent)
	var wg sync.WaitGroup

	for i, doc := range docs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, doc models.Document) {
			defer wg.Done()
			defer func() { <-sem }()
			n, err := ing.IngestDocument(ctx, doc)
			results[i] = DocumentResult{DocumentName: doc.Name, Chunks: n, Err: err}
		}(i, doc)
	}
	wg.Wait()
	return results
}

// IngestDocument chunks, embeds, and stores one document. It returns
// the number of chunks written.
func (ing *Ingester) IngestDocument(ctx context.Context, doc models.Document) (int, error) {
	log := ing.logger.With("document", doc.Name)

	chunks := chunker.ChunkDocument(doc, ing.cfg.ChunkCfg, ing.cfg.HeaderCfg)
	if len(chunks) == 0 {
		log.Warn("document produced no chunks", "pages", doc.TotalPages())
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := ing.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed %s: %w", doc.Name, err)
	}

	if err := ing.store.Upsert(ctx, chunks, vectors); err != nil {
		return 0, fmt.Errorf("upsert %s: %w", doc.Name, err)
	}

	log.Info("document ingested", "pages", doc.TotalPages(), "chunks", len(chunks))
	return len(chunks), nil
}
