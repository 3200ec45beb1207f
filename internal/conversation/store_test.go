package conversation

import (
	"strings"
	"testing"
	"time"
)

func TestGetOrCreateNewConversation(t *testing.T) {
	store := NewStore(time.Hour)

	conv := store.GetOrCreate("")
	if conv.ID == "" {
		t.Fatal("expected generated conversation ID")
	}
	if !strings.HasPrefix(conv.ID, "conv_") {
		t.Fatalf("expected conv_ prefix, got %q", conv.ID)
	}
	if len(conv.Turns) != 0 {
		t.Fatalf("expected empty turns, got %d", len(conv.Turns))
	}
}

func TestGetOrCreateReturnsExisting(t *testing.T) {
	store := NewStore(time.Hour)

	first := store.GetOrCreate("")
	store.AddTurn(first.ID, "q1", "a1")

	again := store.GetOrCreate(first.ID)
	if again.ID != first.ID {
		t.Fatalf("expected same conversation, got %q vs %q", again.ID, first.ID)
	}
	if len(again.Turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(again.Turns))
	}
}

func TestGetOrCreateUnknownIDStartsFresh(t *testing.T) {
	store := NewStore(time.Hour)

	conv := store.GetOrCreate("conv_doesnotexist")
	if conv.ID == "conv_doesnotexist" {
		t.Fatal("unknown ID should not be adopted")
	}
	if len(conv.Turns) != 0 {
		t.Fatalf("expected fresh conversation, got %d turns", len(conv.Turns))
	}
}

func TestContextFormatsMostRecentTurns(t *testing.T) {
	store := NewStore(time.Hour)
	conv := store.GetOrCreate("")

	store.AddTurn(conv.ID, "What is ClearPath?", "A project management tool.")
	store.AddTurn(conv.ID, "How much is Pro?", "$29/month.")
	store.AddTurn(conv.ID, "And Enterprise?", "Contact sales.")
	store.AddTurn(conv.ID, "Does it export CSV?", "Yes.")

	ctx := store.Context(conv.ID, 3)

	if strings.Contains(ctx, "What is ClearPath?") {
		t.Error("oldest turn should be dropped beyond max turns")
	}
	for _, want := range []string{
		"Previous Q: How much is Pro?",
		"Previous A: $29/month.",
		"Previous Q: Does it export CSV?",
	} {
		if !strings.Contains(ctx, want) {
			t.Errorf("context missing %q", want)
		}
	}
	if strings.Index(ctx, "How much is Pro?") > strings.Index(ctx, "Does it export CSV?") {
		t.Error("turns should render oldest first")
	}
}

func TestContextEmptyForUnknownOrFresh(t *testing.T) {
	store := NewStore(time.Hour)

	if got := store.Context("conv_missing", 3); got != "" {
		t.Fatalf("expected empty context for unknown ID, got %q", got)
	}

	conv := store.GetOrCreate("")
	if got := store.Context(conv.ID, 3); got != "" {
		t.Fatalf("expected empty context for fresh conversation, got %q", got)
	}
}

func TestCleanupEvictsIdleConversations(t *testing.T) {
	store := NewStore(10 * time.Millisecond)
	conv := store.GetOrCreate("")
	store.AddTurn(conv.ID, "q", "a")

	time.Sleep(25 * time.Millisecond)
	store.Cleanup()

	if store.Len() != 0 {
		t.Fatalf("expected idle conversation evicted, have %d", store.Len())
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate ID %q", id)
		}
		seen[id] = true
	}
}
