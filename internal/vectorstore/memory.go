package vectorstore

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/clearpath/assistant/internal/models"
)

// Memory is an in-memory store with brute-force cosine search. It backs
// tests and small corpora where running Qdrant is not worth it.
type Memory struct {
	mu        sync.RWMutex
	dimension int
	chunks    map[string]models.Chunk
	vectors   map[string][]float64
	order     []string // insertion order, for deterministic ties
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{
		chunks:  make(map[string]models.Chunk),
		vectors: make(map[string][]float64),
	}
}

func (m *Memory) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dimension = dimension
	return nil
}

func (m *Memory) Upsert(_ context.Context, chunks []models.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range chunks {
		if _, exists := m.chunks[c.ID]; !exists {
			m.order = append(m.order, c.ID)
		}
		m.chunks[c.ID] = c
		m.vectors[c.ID] = vectors[i]
	}
	return nil
}

func (m *Memory) Search(_ context.Context, vector []float64, limit int) ([]models.ScoredChunk, error) {
	if limit <= 0 {
		limit = 5
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]models.ScoredChunk, 0, len(m.order))
	for _, id := range m.order {
		score := cosineSimilarity(vector, m.vectors[id])
		// Map cosine [-1, 1] onto the [0, 1] relevance contract.
		if score < 0 {
			score = 0
		}
		results = append(results, models.ScoredChunk{Chunk: m.chunks[id], Relevance: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})
	if limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order), nil
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
