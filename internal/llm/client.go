// Package llm wraps an OpenAI-compatible chat completions API for
// answer generation. Groq's endpoint speaks the same protocol, so the
// hosted Llama models work by overriding the base URL.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultMaxTokens   = 500
	defaultTemperature = 0.7
)

// Response carries the generated text plus usage accounting for a
// single completion call.
type Response struct {
	Text         string `json:"text"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	LatencyMs    int64  `json:"latency_ms"`
	Model        string `json:"model"`
}

// Client generates answers through the chat completions endpoint. The
// model is chosen per call so one client serves every routing tier.
type Client struct {
	api       *openai.Client
	maxTokens int
	stats     *Stats
	logger    *slog.Logger
}

// NewClient creates a generation client. baseURL may be empty for the
// default endpoint. stats may be nil to disable latency tracking.
func NewClient(apiKey, baseURL string, stats *Stats, logger *slog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("llm api key is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		api:       openai.NewClientWithConfig(cfg),
		maxTokens: defaultMaxTokens,
		stats:     stats,
		logger:    logger,
	}, nil
}

// Generate sends a single-turn completion request and returns the
// answer text with token usage and wall-clock latency.
func (c *Client) Generate(ctx context.Context, model, prompt string) (Response, error) {
	start := time.Now()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: defaultTemperature,
	})
	latencyMs := time.Since(start).Milliseconds()
	if err != nil {
		c.logger.Error("generation failed",
			"model", model,
			"latency_ms", latencyMs,
			"error", err)
		return Response{}, fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, errors.New("no completion choices returned")
	}

	if c.stats != nil {
		c.stats.Record(latencyMs)
	}
	c.logger.Info("generated response",
		"model", model,
		"input_tokens", resp.Usage.PromptTokens,
		"output_tokens", resp.Usage.CompletionTokens,
		"latency_ms", latencyMs)

	return Response{
		Text:         resp.Choices[0].Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		LatencyMs:    latencyMs,
		Model:        model,
	}, nil
}
