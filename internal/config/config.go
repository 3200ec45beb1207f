package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth (optional; empty disables the bearer check)
	APIKey string

	// LLM generation (Groq-compatible endpoint)
	LLMAPIKey  string
	LLMBaseURL string
	ModelLow   string
	ModelHigh  string

	// Embeddings (OpenAI-compatible endpoint)
	EmbeddingAPIKey  string
	EmbeddingBaseURL string
	EmbeddingModel   string

	// Vector store. Empty QdrantURL falls back to the in-memory store.
	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string

	// Chunking
	ChunkSize    int
	ChunkOverlap int

	// Retrieval
	TopK           int
	RelevanceFloor float64
	ScoreMargin    float64

	// Ingestion
	DocsDir       string
	MaxConcurrent int

	// Conversations
	ConversationTTL time.Duration
	MaxHistoryTurns int

	// Observability
	RoutingLogPath string
	EvaluatorTable string
	StatsWindow    time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8000"),

		APIKey: os.Getenv("ASSISTANT_API_KEY"),

		LLMAPIKey:  os.Getenv("GROQ_API_KEY"),
		LLMBaseURL: envOr("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		ModelLow:   envOr("MODEL_LOW", "llama-3.1-8b-instant"),
		ModelHigh:  envOr("MODEL_HIGH", "llama-3.3-70b-versatile"),

		EmbeddingAPIKey:  os.Getenv("EMBEDDING_API_KEY"),
		EmbeddingBaseURL: os.Getenv("EMBEDDING_BASE_URL"),
		EmbeddingModel:   envOr("EMBEDDING_MODEL", "text-embedding-3-small"),

		QdrantURL:        os.Getenv("QDRANT_URL"),
		QdrantAPIKey:     os.Getenv("QDRANT_API_KEY"),
		QdrantCollection: envOr("QDRANT_COLLECTION", "clearpath_docs"),

		ChunkSize:    envInt("CHUNK_SIZE", 300),
		ChunkOverlap: envInt("CHUNK_OVERLAP", 50),

		TopK:           envInt("MAX_CHUNKS", 5),
		RelevanceFloor: envFloat("RELEVANCE_THRESHOLD", 0.3),
		ScoreMargin:    envFloat("SCORE_MARGIN", 0.2),

		DocsDir:       envOr("DOCS_DIR", "docs"),
		MaxConcurrent: envInt("MAX_CONCURRENT_INGEST", 4),

		ConversationTTL: envDuration("CONVERSATION_TTL", 24*time.Hour),
		MaxHistoryTurns: envInt("MAX_HISTORY_TURNS", 3),

		RoutingLogPath: envOr("ROUTING_LOG_PATH", "logs/routing_decisions.jsonl"),
		EvaluatorTable: os.Getenv("EVALUATOR_TABLE"),
		StatsWindow:    envDuration("STATS_WINDOW", 1*time.Hour),
	}

	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 300
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = 50
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.RelevanceFloor < 0 || cfg.RelevanceFloor > 1 {
		cfg.RelevanceFloor = 0.3
	}
	if cfg.ScoreMargin < 0 || cfg.ScoreMargin > 1 {
		cfg.ScoreMargin = 0.2
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	if cfg.ConversationTTL <= 0 {
		cfg.ConversationTTL = 24 * time.Hour
	}
	if cfg.MaxHistoryTurns <= 0 {
		cfg.MaxHistoryTurns = 3
	}

	return cfg
}

func (c Config) Validate() error {
	if c.LLMAPIKey == "" {
		return fmt.Errorf("GROQ_API_KEY is required")
	}
	if c.EmbeddingAPIKey == "" {
		return fmt.Errorf("EMBEDDING_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
