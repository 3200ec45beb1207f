package answer

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/clearpath/assistant/internal/conversation"
	"github.com/clearpath/assistant/internal/evaluate"
	"github.com/clearpath/assistant/internal/llm"
	"github.com/clearpath/assistant/internal/models"
	"github.com/clearpath/assistant/internal/router"
)

type fakeRetriever struct {
	calls  int
	chunks []models.ScoredChunk
}

func (f *fakeRetriever) Retrieve(_ context.Context, _ string) ([]models.ScoredChunk, error) {
	f.calls++
	return f.chunks, nil
}

type fakeGenerator struct {
	lastModel  string
	lastPrompt string
	text       string
}

func (f *fakeGenerator) Generate(_ context.Context, model, prompt string) (llm.Response, error) {
	f.lastModel = model
	f.lastPrompt = prompt
	return llm.Response{
		Text:         f.text,
		InputTokens:  100,
		OutputTokens: 20,
		LatencyMs:    42,
		Model:        model,
	}, nil
}

func newTestService(t *testing.T, retr *fakeRetriever, gen *fakeGenerator, log *RoutingLog) *Service {
	t.Helper()
	auditor := evaluate.NewAuditor(evaluate.DefaultTables())
	convs := conversation.NewStore(time.Hour)
	return NewService(retr, gen, auditor, convs, log, DefaultConfig(), nil)
}

func pricingChunks() []models.ScoredChunk {
	return []models.ScoredChunk{
		{Chunk: models.Chunk{ID: models.ChunkID("pricing.pdf", 1, 0), Text: "The Pro plan costs $29 per month.", DocumentName: "pricing.pdf"}, Relevance: 0.9},
		{Chunk: models.Chunk{ID: models.ChunkID("pricing.pdf", 2, 0), Text: "The Pro plan includes 10 users.", DocumentName: "pricing.pdf"}, Relevance: 0.8},
	}
}

func TestAnswerGreetingSkipsRetrieval(t *testing.T) {
	retr := &fakeRetriever{chunks: pricingChunks()}
	gen := &fakeGenerator{text: "Hi! How can I help you with ClearPath today?"}
	svc := newTestService(t, retr, gen, nil)

	res, err := svc.Answer(context.Background(), "Hello!", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if retr.calls != 0 {
		t.Errorf("expected retrieval skipped, got %d calls", retr.calls)
	}
	if res.RuleID != router.RuleOOD {
		t.Errorf("expected ood rule, got %s", res.RuleID)
	}
	if res.Model != DefaultConfig().ModelLow {
		t.Errorf("expected low-tier model, got %s", res.Model)
	}
	if len(res.Flags) != 0 {
		t.Errorf("expected no flags for greeting, got %v", res.Flags)
	}
	if res.ChunksRetrieved != 0 {
		t.Errorf("expected 0 chunks, got %d", res.ChunksRetrieved)
	}
}

func TestAnswerKeywordQueryUsesHighTier(t *testing.T) {
	retr := &fakeRetriever{chunks: pricingChunks()}
	gen := &fakeGenerator{text: "The Pro plan costs $29 per month and includes 10 users."}
	svc := newTestService(t, retr, gen, nil)

	res, err := svc.Answer(context.Background(), "Explain the Pro plan pricing", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if retr.calls != 1 {
		t.Errorf("expected one retrieval, got %d", retr.calls)
	}
	if res.Tier != router.TierHigh {
		t.Errorf("expected high tier, got %s", res.Tier)
	}
	if res.Model != DefaultConfig().ModelHigh {
		t.Errorf("expected high-tier model, got %s", res.Model)
	}
	if res.ChunksRetrieved != 2 {
		t.Errorf("expected 2 chunks, got %d", res.ChunksRetrieved)
	}
	if len(res.Sources) != 1 || res.Sources[0] != "pricing.pdf" {
		t.Errorf("expected single source pricing.pdf, got %v", res.Sources)
	}
	if !strings.Contains(gen.lastPrompt, "The Pro plan costs $29 per month.") {
		t.Error("prompt missing retrieved context")
	}
}

func TestAnswerThreadsConversationHistory(t *testing.T) {
	retr := &fakeRetriever{chunks: pricingChunks()}
	gen := &fakeGenerator{text: "It costs $29 per month."}
	svc := newTestService(t, retr, gen, nil)

	first, err := svc.Answer(context.Background(), "What does the Pro plan cost?", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ConversationID == "" {
		t.Fatal("expected conversation ID")
	}

	second, err := svc.Answer(context.Background(), "What about the user limit?", first.ConversationID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ConversationID != first.ConversationID {
		t.Errorf("expected same conversation, got %s vs %s", second.ConversationID, first.ConversationID)
	}
	if !strings.Contains(gen.lastPrompt, "Previous Q: What does the Pro plan cost?") {
		t.Error("prompt missing conversation history")
	}
	if !strings.Contains(gen.lastPrompt, "Previous A: It costs $29 per month.") {
		t.Error("prompt missing previous answer")
	}
}

func TestAnswerEmptyQueryRejected(t *testing.T) {
	svc := newTestService(t, &fakeRetriever{}, &fakeGenerator{text: "x"}, nil)

	if _, err := svc.Answer(context.Background(), "   ", ""); err == nil {
		t.Fatal("expected error for blank query")
	}
}

func TestAnswerFlagsUngroundedAnswer(t *testing.T) {
	retr := &fakeRetriever{} // empty corpus
	gen := &fakeGenerator{text: "The Pro plan supports everything you need."}
	svc := newTestService(t, retr, gen, nil)

	res, err := svc.Answer(context.Background(), "What does the Pro plan cost?", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, f := range res.Flags {
		if f == evaluate.FlagNoContext {
			found = true
		}
	}
	if !found {
		t.Errorf("expected no_context flag, got %v", res.Flags)
	}
}

func TestRoutingLogWritesOneLinePerQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routing.jsonl")
	log, err := OpenRoutingLog(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer log.Close()

	retr := &fakeRetriever{chunks: pricingChunks()}
	gen := &fakeGenerator{text: "The Pro plan costs $29 per month."}
	svc := newTestService(t, retr, gen, log)

	if _, err := svc.Answer(context.Background(), "What does the Pro plan cost?", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Answer(context.Background(), "Hello!", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open written log: %v", err)
	}
	defer f.Close()

	var records []RoutingRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec RoutingRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("invalid JSONL line: %v", err)
		}
		records = append(records, rec)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].RuleID != router.RuleDefault {
		t.Errorf("expected default rule in first record, got %s", records[0].RuleID)
	}
	if records[1].RuleID != router.RuleOOD {
		t.Errorf("expected ood rule in second record, got %s", records[1].RuleID)
	}
	if records[0].ChunksRetrieved != 2 {
		t.Errorf("expected 2 chunks in first record, got %d", records[0].ChunksRetrieved)
	}
	if records[0].Flags == nil {
		t.Error("flags should serialize as empty array, not null")
	}
}
