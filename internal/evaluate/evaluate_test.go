package evaluate

import (
	"testing"

	"github.com/clearpath/assistant/internal/models"
)

func newTestAuditor() *Auditor {
	return NewAuditor(DefaultTables())
}

func scored(doc, text string) models.ScoredChunk {
	return models.ScoredChunk{
		Chunk:     models.Chunk{ID: doc + "_1_0", Text: text, DocumentName: doc, PageNumber: 1},
		Relevance: 0.8,
	}
}

func hasFlag(flags []Flag, want Flag) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}

func TestEvaluate_NoContextFlag(t *testing.T) {
	a := newTestAuditor()
	flags := a.Evaluate("The export feature supports comma separated files.", nil, "export format", false)

	if !hasFlag(flags, FlagNoContext) {
		t.Errorf("expected no_context flag, got %v", flags)
	}
}

func TestEvaluate_RefusalSuppressesNoContext(t *testing.T) {
	a := newTestAuditor()
	flags := a.Evaluate("I don't have that in the documentation.", nil, "export format", false)

	if !hasFlag(flags, FlagRefusal) {
		t.Errorf("expected refusal flag, got %v", flags)
	}
	if hasFlag(flags, FlagNoContext) {
		t.Errorf("refusal must suppress no_context, got %v", flags)
	}
}

func TestEvaluate_SkippedRetrievalNotFlagged(t *testing.T) {
	a := newTestAuditor()
	// A greeting reply: retrieval was skipped on purpose, zero chunks.
	flags := a.Evaluate("Hi there, how can I assist with your workspace today?", nil, "Hello", true)

	if len(flags) != 0 {
		t.Errorf("expected zero flags on a greeting reply, got %v", flags)
	}
}

func TestEvaluate_PartialAnswerIsNotRefusal(t *testing.T) {
	a := newTestAuditor()
	answer := "The docs don't know the exact limit, however uploads are capped per workspace and admins can raise the cap from settings."
	flags := a.Evaluate(answer, []models.ScoredChunk{scored("admin_guide.pdf", "uploads are capped per workspace")}, "upload limit", false)

	if hasFlag(flags, FlagRefusal) {
		t.Errorf("partial answer flagged as refusal: %v", flags)
	}
}

func TestEvaluate_UnverifiedClaim(t *testing.T) {
	a := newTestAuditor()
	chunks := []models.ScoredChunk{scored("integrations.pdf", "Boards sync with the calendar integration.")}
	flags := a.Evaluate("You can connect boards through the Zapier integration.", chunks, "integrations", false)

	if !hasFlag(flags, FlagUnverifiedClaim) {
		t.Errorf("expected unverified_claim for term absent from evidence, got %v", flags)
	}
}

func TestEvaluate_GroundedProperNounNotFlagged(t *testing.T) {
	a := newTestAuditor()
	chunks := []models.ScoredChunk{scored("integrations.pdf", "Boards sync with the Slack integration.")}
	flags := a.Evaluate("You can connect boards through the Slack integration.", chunks, "integrations", false)

	if hasFlag(flags, FlagUnverifiedClaim) {
		t.Errorf("grounded term flagged as unverified: %v", flags)
	}
}

func TestEvaluate_AllowListedTermNotFlagged(t *testing.T) {
	a := newTestAuditor()
	chunks := []models.ScoredChunk{scored("guide.pdf", "boards support filters")}
	flags := a.Evaluate("The boards in ClearPath support filters.", chunks, "filters", false)

	if hasFlag(flags, FlagUnverifiedClaim) {
		t.Errorf("allow-listed product name flagged: %v", flags)
	}
}

func TestEvaluate_DomainUncertainty_Hedging(t *testing.T) {
	a := newTestAuditor()
	chunks := []models.ScoredChunk{scored("pricing.pdf", "the plan is billed per seat")}
	flags := a.Evaluate("The plan costs approximately twenty dollars per seat.", chunks, "plan cost", false)

	if !hasFlag(flags, FlagDomainUncertainty) {
		t.Errorf("expected domain_uncertainty for hedged pricing answer, got %v", flags)
	}
}

func TestEvaluate_DomainUncertainty_MultipleSources(t *testing.T) {
	a := newTestAuditor()
	chunks := []models.ScoredChunk{
		scored("pricing.pdf", "the plan is billed at twenty dollars"),
		scored("faq.pdf", "the plan is billed at eighteen dollars"),
	}
	flags := a.Evaluate("The plan is billed at twenty dollars per seat.", chunks, "plan cost", false)

	if !hasFlag(flags, FlagDomainUncertainty) {
		t.Errorf("expected domain_uncertainty for multi-source pricing evidence, got %v", flags)
	}
}

func TestEvaluate_NonSensitiveTopicNotFlagged(t *testing.T) {
	a := newTestAuditor()
	chunks := []models.ScoredChunk{
		scored("guide.pdf", "boards can be archived from the sidebar"),
		scored("faq.pdf", "archived boards are read only"),
	}
	flags := a.Evaluate("Archived boards might become read only.", chunks, "archiving boards", false)

	if hasFlag(flags, FlagDomainUncertainty) {
		t.Errorf("hedging outside a sensitive category flagged: %v", flags)
	}
}

func TestEvaluate_CleanAnswerNoFlags(t *testing.T) {
	a := newTestAuditor()
	chunks := []models.ScoredChunk{scored("guide.pdf", "boards can be archived from the sidebar")}
	flags := a.Evaluate("Archive a board from the sidebar.", chunks, "how to archive", false)

	if len(flags) != 0 {
		t.Errorf("expected no flags, got %v", flags)
	}
}

func TestExtractProperNouns(t *testing.T) {
	nouns := extractProperNouns("You can export boards to Slack using ClearPath's GitHub integration. Exports run nightly.")

	for _, want := range []string{"slack", "github", "clearpath"} {
		if !nouns[want] {
			t.Errorf("expected %q extracted, got %v", want, nouns)
		}
	}
	// "Exports" starts a sentence with plain casing: not a proper noun.
	if nouns["exports"] {
		t.Errorf("sentence-start word extracted as proper noun: %v", nouns)
	}
}

func TestLoadTables_EmptyPathUsesDefaults(t *testing.T) {
	tables, err := LoadTables("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tables.RefusalPhrases) == 0 || len(tables.Categories) == 0 {
		t.Errorf("embedded defaults look empty: %+v", tables)
	}
}
