package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/clearpath/assistant/internal/answer"
	"github.com/clearpath/assistant/internal/api"
	"github.com/clearpath/assistant/internal/config"
	"github.com/clearpath/assistant/internal/conversation"
	"github.com/clearpath/assistant/internal/embedding"
	"github.com/clearpath/assistant/internal/evaluate"
	"github.com/clearpath/assistant/internal/llm"
	"github.com/clearpath/assistant/internal/retrieval"
	"github.com/clearpath/assistant/internal/vectorstore"
)

func main() {
	_ = godotenv.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	embedder, err := embedding.NewClient(cfg.EmbeddingAPIKey, cfg.EmbeddingBaseURL, cfg.EmbeddingModel)
	if err != nil {
		log.Error("embedding client init failed", "error", err)
		os.Exit(1)
	}

	stats := llm.NewStats(cfg.StatsWindow)
	generator, err := llm.NewClient(cfg.LLMAPIKey, cfg.LLMBaseURL, stats, log)
	if err != nil {
		log.Error("llm client init failed", "error", err)
		os.Exit(1)
	}

	var store vectorstore.Store
	if cfg.QdrantURL != "" {
		store = vectorstore.NewQdrant(vectorstore.QdrantConfig{
			URL:        cfg.QdrantURL,
			APIKey:     cfg.QdrantAPIKey,
			Collection: cfg.QdrantCollection,
		})
	} else {
		log.Warn("QDRANT_URL not set, using in-memory vector store")
		store = vectorstore.NewMemory()
	}

	tables, err := evaluate.LoadTables(cfg.EvaluatorTable)
	if err != nil {
		log.Error("evaluator tables load failed", "error", err)
		os.Exit(1)
	}
	auditor := evaluate.NewAuditor(tables)

	retriever := retrieval.NewRetriever(embedder, store, retrieval.Config{
		TopK:           cfg.TopK,
		RelevanceFloor: cfg.RelevanceFloor,
		ScoreMargin:    cfg.ScoreMargin,
	}, log)

	conversations := conversation.NewStore(cfg.ConversationTTL)

	var routingLog *answer.RoutingLog
	if cfg.RoutingLogPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.RoutingLogPath), 0o755); err != nil {
			log.Error("routing log dir create failed", "error", err)
			os.Exit(1)
		}
		routingLog, err = answer.OpenRoutingLog(cfg.RoutingLogPath)
		if err != nil {
			log.Error("routing log open failed", "error", err)
			os.Exit(1)
		}
	}

	svc := answer.NewService(retriever, generator, auditor, conversations, routingLog, answer.Config{
		ModelLow:        cfg.ModelLow,
		ModelHigh:       cfg.ModelHigh,
		MaxHistoryTurns: cfg.MaxHistoryTurns,
	}, log)

	// Periodic conversation eviction.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				conversations.Cleanup()
			}
		}
	}()

	srv := api.NewServer(svc, stats, store, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if routingLog != nil {
			routingLog.Close()
		}
	}()

	log.Info("starting assistant", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
