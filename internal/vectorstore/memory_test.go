package vectorstore

import (
	"context"
	"testing"

	"github.com/clearpath/assistant/internal/models"
)

func testChunk(id string) models.Chunk {
	return models.Chunk{ID: id, Text: "text " + id, DocumentName: "doc.pdf", PageNumber: 1}
}

func TestMemory_SearchRanksByCosine(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	if err := m.Init(ctx, 3); err != nil {
		t.Fatalf("init: %v", err)
	}

	err := m.Upsert(ctx,
		[]models.Chunk{testChunk("a"), testChunk("b"), testChunk("c")},
		[][]float64{
			{1, 0, 0},
			{0, 1, 0},
			{0.9, 0.1, 0},
		})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	results, err := m.Search(ctx, []float64{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Chunk.ID != "a" {
		t.Errorf("expected exact match first, got %q", results[0].Chunk.ID)
	}
	for i, r := range results {
		if r.Relevance < 0 || r.Relevance > 1 {
			t.Errorf("result %d: relevance %f out of [0,1]", i, r.Relevance)
		}
		if i > 0 && results[i].Relevance > results[i-1].Relevance {
			t.Errorf("scores increase at index %d", i)
		}
	}
}

func TestMemory_UpsertOverwritesByID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.Upsert(ctx, []models.Chunk{testChunk("a")}, [][]float64{{1, 0}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := m.Upsert(ctx, []models.Chunk{testChunk("a")}, [][]float64{{0, 1}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	n, err := m.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected idempotent upsert, count %d", n)
	}
}

func TestMemory_SearchLimit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for i := 0; i < 10; i++ {
		id := models.ChunkID("doc.pdf", 1, i)
		if err := m.Upsert(ctx, []models.Chunk{testChunk(id)}, [][]float64{{1, 0}}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	results, err := m.Search(ctx, []float64{1, 0}, 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestMemory_MismatchedLengths(t *testing.T) {
	m := NewMemory()
	err := m.Upsert(context.Background(), []models.Chunk{testChunk("a")}, nil)
	if err == nil {
		t.Error("expected error for mismatched chunk/vector lengths")
	}
}
