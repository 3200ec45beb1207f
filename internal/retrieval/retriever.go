// Package retrieval ranks indexed chunks against a query and applies an
// adaptive cutoff so marginal matches never dilute the generation prompt.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/clearpath/assistant/internal/models"
)

// Embedder turns text into a vector. Implementations must be idempotent
// for identical input.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Index is the similarity-index collaborator. Results come back scored in
// [0, 1]; the retriever re-verifies and re-sorts rather than trusting the
// collaborator's ordering blindly.
type Index interface {
	Search(ctx context.Context, vector []float64, limit int) ([]models.ScoredChunk, error)
}

// Config holds the retrieval thresholds.
type Config struct {
	TopK           int     // candidates requested from the index
	RelevanceFloor float64 // absolute minimum score to consider at all
	ScoreMargin    float64 // keep only chunks within topScore * (1 - margin)
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		TopK:           5,
		RelevanceFloor: 0.3,
		ScoreMargin:    0.2,
	}
}

// Retriever is stateless apart from read-only access to its collaborators
// and tolerates concurrent calls.
type Retriever struct {
	embedder Embedder
	index    Index
	cfg      Config
	log      *slog.Logger
}

// NewRetriever wires the collaborators together.
func NewRetriever(embedder Embedder, index Index, cfg Config, log *slog.Logger) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if log == nil {
		log = slog.Default()
	}
	return &Retriever{embedder: embedder, index: index, cfg: cfg, log: log}
}

// Retrieve returns the chunks worth sending to generation. An empty
// result is a first-class outcome: empty query, empty corpus, and nothing
// clearing the thresholds all yield an empty list, not an error. An empty
// query short-circuits before the embedding collaborator is called.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]models.ScoredChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := r.index.Search(ctx, vector, r.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// Clamp collaborator scores into [0, 1] before thresholding.
	for i := range candidates {
		if candidates[i].Relevance < 0 {
			candidates[i].Relevance = 0
		}
		if candidates[i].Relevance > 1 {
			candidates[i].Relevance = 1
		}
	}

	// Absolute floor: below-floor matches are noise, not partial signal.
	kept := candidates[:0]
	for _, c := range candidates {
		if c.Relevance >= r.cfg.RelevanceFloor {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		r.log.Debug("no chunks above relevance floor", "floor", r.cfg.RelevanceFloor)
		return nil, nil
	}

	// Relative margin cutoff: keep only chunks within a fixed band of the
	// best match, so weak tail matches don't get lost in the middle of
	// the prompt.
	topScore := kept[0].Relevance
	for _, c := range kept[1:] {
		if c.Relevance > topScore {
			topScore = c.Relevance
		}
	}
	cutoff := topScore * (1 - r.cfg.ScoreMargin)

	result := kept[:0]
	for _, c := range kept {
		if c.Relevance >= cutoff {
			result = append(result, c)
		}
	}

	// Stable sort keeps original index order on ties, for determinism.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Relevance > result[j].Relevance
	})

	r.log.Debug("retrieved chunks",
		"candidates", len(candidates),
		"kept", len(result),
		"top_score", topScore,
		"cutoff", cutoff,
	)
	return result, nil
}
