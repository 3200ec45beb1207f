// Package answer runs the full query pipeline: classify, retrieve,
// prompt, generate, audit. It is the one place where the routing tier
// turns into a concrete model choice.
package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/clearpath/assistant/internal/conversation"
	"github.com/clearpath/assistant/internal/evaluate"
	"github.com/clearpath/assistant/internal/llm"
	"github.com/clearpath/assistant/internal/models"
	"github.com/clearpath/assistant/internal/router"
)

// Generator produces an answer from a prompt with a tier-selected model.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (llm.Response, error)
}

// Retriever finds the chunks most relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]models.ScoredChunk, error)
}

// Config maps routing tiers to model names and bounds prompt history.
type Config struct {
	ModelLow        string
	ModelHigh       string
	MaxHistoryTurns int
}

func DefaultConfig() Config {
	return Config{
		ModelLow:        "llama-3.1-8b-instant",
		ModelHigh:       "llama-3.3-70b-versatile",
		MaxHistoryTurns: 3,
	}
}

// Result is the outcome of one query through the pipeline.
type Result struct {
	Answer          string          `json:"response"`
	ConversationID  string          `json:"conversation_id"`
	Tier            router.Tier     `json:"tier"`
	RuleID          router.RuleID   `json:"rule_id"`
	Signals         router.Signals  `json:"signals"`
	Model           string          `json:"model_used"`
	InputTokens     int             `json:"input_tokens"`
	OutputTokens    int             `json:"output_tokens"`
	LatencyMs       int64           `json:"latency_ms"`
	ChunksRetrieved int             `json:"chunks_retrieved"`
	Sources         []string        `json:"sources"`
	Flags           []evaluate.Flag `json:"evaluator_flags"`
}

// Service wires the pipeline stages together.
type Service struct {
	retriever     Retriever
	generator     Generator
	auditor       *evaluate.Auditor
	conversations *conversation.Store
	routingLog    *RoutingLog
	cfg           Config
	logger        *slog.Logger
}

// NewService builds the pipeline. routingLog may be nil to disable the
// decision log.
func NewService(retriever Retriever, generator Generator, auditor *evaluate.Auditor, conversations *conversation.Store, routingLog *RoutingLog, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		retriever:     retriever,
		generator:     generator,
		auditor:       auditor,
		conversations: conversations,
		routingLog:    routingLog,
		cfg:           cfg,
		logger:        logger,
	}
}

// Answer runs one query through the pipeline. conversationID may be
// empty to start a new conversation.
func (s *Service) Answer(ctx context.Context, query, conversationID string) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, fmt.Errorf("query must not be empty")
	}

	cls := router.Classify(query)
	model := s.modelFor(cls.Tier)

	var (
		retrieved []models.ScoredChunk
		err       error
	)
	if !cls.SkipRetrieval {
		retrieved, err = s.retriever.Retrieve(ctx, query)
		if err != nil {
			return Result{}, fmt.Errorf("retrieve: %w", err)
		}
	}

	conv := s.conversations.GetOrCreate(conversationID)
	history := s.conversations.Context(conv.ID, s.cfg.MaxHistoryTurns)

	prompt := llm.BuildPrompt(query, retrieved, history)
	resp, err := s.generator.Generate(ctx, model, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("generate: %w", err)
	}

	flags := s.auditor.Evaluate(resp.Text, retrieved, query, cls.SkipRetrieval)
	s.conversations.AddTurn(conv.ID, query, resp.Text)

	result := Result{
		Answer:          resp.Text,
		ConversationID:  conv.ID,
		Tier:            cls.Tier,
		RuleID:          cls.RuleID,
		Signals:         cls.Signals,
		Model:           resp.Model,
		InputTokens:     resp.InputTokens,
		OutputTokens:    resp.OutputTokens,
		LatencyMs:       resp.LatencyMs,
		ChunksRetrieved: len(retrieved),
		Sources:         sourceDocuments(retrieved),
		Flags:           flags,
	}

	s.logger.Info("query answered",
		"conversation_id", conv.ID,
		"tier", cls.Tier,
		"rule_id", cls.RuleID,
		"model", resp.Model,
		"chunks_retrieved", len(retrieved),
		"latency_ms", resp.LatencyMs,
		"flags", len(flags))

	if s.routingLog != nil {
		rec := RoutingRecord{
			Timestamp:       time.Now().UTC(),
			Query:           query,
			Tier:            cls.Tier,
			RuleID:          cls.RuleID,
			Signals:         cls.Signals,
			Model:           resp.Model,
			InputTokens:     resp.InputTokens,
			OutputTokens:    resp.OutputTokens,
			LatencyMs:       resp.LatencyMs,
			ChunksRetrieved: len(retrieved),
			Flags:           flags,
		}
		if err := s.routingLog.Write(rec); err != nil {
			s.logger.Warn("routing log write failed", "error", err)
		}
	}

	return result, nil
}

func (s *Service) modelFor(tier router.Tier) string {
	if tier == router.TierHigh {
		return s.cfg.ModelHigh
	}
	return s.cfg.ModelLow
}

// sourceDocuments lists the distinct document names behind the
// retrieved chunks, in retrieval order.
func sourceDocuments(retrieved []models.ScoredChunk) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, sc := range retrieved {
		name := sc.Chunk.DocumentName
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
