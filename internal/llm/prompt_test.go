package llm

import (
	"strings"
	"testing"

	"github.com/clearpath/assistant/internal/models"
)

func scored(texts ...string) []models.ScoredChunk {
	out := make([]models.ScoredChunk, 0, len(texts))
	for i, text := range texts {
		out = append(out, models.ScoredChunk{
			Chunk:     models.Chunk{ID: models.ChunkID("doc.pdf", 1, i), Text: text},
			Relevance: 0.9,
		})
	}
	return out
}

func TestBuildPromptWithContextAndHistory(t *testing.T) {
	query := "What is the Pro plan price?"
	chunks := scored("Pro plan costs $29/month", "Includes 10 users")
	history := "Previous Q: What is ClearPath?\nPrevious A: A project management tool."

	prompt := BuildPrompt(query, chunks, history)

	for _, want := range []string{
		"ClearPath",
		"project management tool",
		query,
		"Pro plan costs $29/month",
		"Includes 10 users",
		history,
		"Context from documentation:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPromptWithoutContext(t *testing.T) {
	query := "Hello, who are you?"

	prompt := BuildPrompt(query, nil, "")

	if !strings.Contains(prompt, query) {
		t.Error("prompt missing query")
	}
	if !strings.Contains(prompt, "ClearPath") {
		t.Error("prompt missing assistant identity")
	}
	if strings.Contains(prompt, "Context from documentation:") {
		t.Error("prompt should omit context section when no chunks retrieved")
	}
}

func TestBuildPromptChunkOrderPreserved(t *testing.T) {
	prompt := BuildPrompt("q", scored("first chunk", "second chunk"), "")

	if strings.Index(prompt, "first chunk") > strings.Index(prompt, "second chunk") {
		t.Error("chunks out of order in prompt")
	}
}

func TestBuildPromptEndsWithAnswerCue(t *testing.T) {
	prompt := BuildPrompt("q", nil, "")
	if !strings.HasSuffix(prompt, "Answer:") {
		t.Errorf("prompt should end with answer cue, got tail %q", prompt[len(prompt)-20:])
	}
}
