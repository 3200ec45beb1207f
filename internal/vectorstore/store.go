// Package vectorstore holds the similarity-index collaborators: a Qdrant
// REST client for production and an in-memory cosine store for tests and
// small corpora.
package vectorstore

import (
	"context"

	"github.com/clearpath/assistant/internal/models"
)

// Store persists chunk vectors and supports similarity search. Search
// results carry scores in [0, 1], best first; callers re-verify rather
// than trusting the ordering.
type Store interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, chunks []models.Chunk, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, limit int) ([]models.ScoredChunk, error)
	Count(ctx context.Context) (int, error)
}
