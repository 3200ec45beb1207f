package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"time"

	"github.com/clearpath/assistant/internal/models"
)

// Qdrant is a minimal REST client to a Qdrant collection. It assumes
// cosine distance and creates the collection if missing.
type Qdrant struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

// QdrantConfig holds connection details.
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// NewQdrant creates the client.
func NewQdrant(cfg QdrantConfig) *Qdrant {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Qdrant{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Init creates the collection when it does not exist yet.
func (q *Qdrant) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return q.putJSON(ctx, fmt.Sprintf("%s/collections/%s", q.url, q.collection), body)
}

// Upsert writes chunks and their vectors. Point ids are derived from the
// chunk id, so re-ingesting the same document overwrites in place.
func (q *Qdrant) Upsert(ctx context.Context, chunks []models.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	points := make([]map[string]any, len(chunks))
	for i, c := range chunks {
		points[i] = map[string]any{
			"id":     pointID(c.ID),
			"vector": vectors[i],
			"payload": map[string]any{
				"chunk_id":       c.ID,
				"text":           c.Text,
				"document_name":  c.DocumentName,
				"page_number":    c.PageNumber,
				"sequence_index": c.SequenceIndex,
				"token_count":    c.TokenCount,
				"context_header": c.ContextHeader,
			},
		}
	}
	body := map[string]any{"points": points}
	return q.putJSON(ctx, fmt.Sprintf("%s/collections/%s/points?wait=true", q.url, q.collection), body)
}

// Search returns the nearest chunks, best first.
func (q *Qdrant) Search(ctx context.Context, vector []float64, limit int) ([]models.ScoredChunk, error) {
	if limit <= 0 {
		limit = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", q.url, q.collection)
	if err := q.postJSON(ctx, url, req, &resp); err != nil {
		return nil, err
	}

	results := make([]models.ScoredChunk, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, models.ScoredChunk{
			Chunk:     chunkFromPayload(r.Payload),
			Relevance: r.Score,
		})
	}
	return results, nil
}

// Count reports the number of stored points.
func (q *Qdrant) Count(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/count", q.url, q.collection)
	if err := q.postJSON(ctx, url, map[string]any{"exact": true}, &resp); err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

func chunkFromPayload(payload map[string]any) models.Chunk {
	var c models.Chunk
	if v, ok := payload["chunk_id"].(string); ok {
		c.ID = v
	}
	if v, ok := payload["text"].(string); ok {
		c.Text = v
	}
	if v, ok := payload["document_name"].(string); ok {
		c.DocumentName = v
	}
	if v, ok := payload["page_number"].(float64); ok {
		c.PageNumber = int(v)
	}
	if v, ok := payload["sequence_index"].(float64); ok {
		c.SequenceIndex = int(v)
	}
	if v, ok := payload["token_count"].(float64); ok {
		c.TokenCount = int(v)
	}
	if v, ok := payload["context_header"].(string); ok {
		c.ContextHeader = v
	}
	return c
}

// pointID maps the persisted chunk id onto Qdrant's numeric id space
// deterministically.
func pointID(chunkID string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(chunkID))
	return h.Sum64()
}

func (q *Qdrant) putJSON(ctx context.Context, url string, body any) error {
	return q.doJSON(ctx, http.MethodPut, url, body, nil)
}

func (q *Qdrant) postJSON(ctx context.Context, url string, body any, out any) error {
	return q.doJSON(ctx, http.MethodPost, url, body, out)
}

func (q *Qdrant) doJSON(ctx context.Context, method, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
