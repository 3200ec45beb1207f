// Package embedding wraps an OpenAI-compatible embeddings API. Any
// endpoint speaking the same protocol works by overriding the base URL.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"
)

// Client generates embeddings through the OpenAI embeddings endpoint.
type Client struct {
	api           *openai.Client
	model         string
	maxConcurrent int
}

// NewClient creates an embedding client. baseURL may be empty for the
// default endpoint.
func NewClient(apiKey, baseURL, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("embedding api key is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		api:           openai.NewClientWithConfig(cfg),
		model:         model,
		maxConcurrent: 10,
	}, nil
}

// Embed generates an L2-normalized embedding for a single text. The API
// is idempotent for identical input.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, errors.New("cannot embed empty text")
	}

	var resp openai.EmbeddingResponse
	err := withRetries(ctx, func() error {
		var err error
		resp, err = c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(c.model),
			Input: []string{text},
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	v32 := resp.Data[0].Embedding
	v := make([]float64, len(v32))
	for i := range v32 {
		v[i] = float64(v32[i])
	}
	l2normalize(v)
	return v, nil
}

// EmbedBatch embeds many texts with bounded concurrency, preserving input
// order. The first collaborator error aborts the batch.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	errCh := make(chan error, len(texts))
	sem := make(chan struct{}, c.maxConcurrent)

	for i := range texts {
		sem <- struct{}{}
		go func(idx int) {
			defer func() { <-sem }()
			v, err := c.Embed(ctx, texts[idx])
			if err != nil {
				errCh <- fmt.Errorf("embed text %d: %w", idx, err)
				return
			}
			vectors[idx] = v
			errCh <- nil
		}(i)
	}

	var firstErr error
	for range texts {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}

// l2normalize scales a vector to unit length, which makes dot products
// equal cosine similarity.
func l2normalize(v []float64) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := 1.0 / math.Sqrt(sum)
	for i := range v {
		v[i] *= inv
	}
}
