package llm

import (
	"strings"

	"github.com/clearpath/assistant/internal/models"
)

// BuildPrompt assembles the full prompt for a support query. Retrieved
// chunk texts and prior conversation turns are optional; when absent
// their sections are omitted entirely so greetings do not arrive with
// an empty "Context from documentation:" block.
func BuildPrompt(query string, chunks []models.ScoredChunk, history string) string {
	var b strings.Builder
	b.WriteString("You are a helpful customer support assistant for ClearPath, a project management tool.\n\n")

	if len(chunks) > 0 {
		texts := make([]string, 0, len(chunks))
		for _, sc := range chunks {
			texts = append(texts, sc.Chunk.Text)
		}
		b.WriteString("Context from documentation:\n")
		b.WriteString(strings.Join(texts, "\n\n"))
		b.WriteString("\n\n")
	}

	if history != "" {
		b.WriteString(history)
		b.WriteString("\n\n")
	}

	b.WriteString("User question: ")
	b.WriteString(query)
	b.WriteString("\n\nInstructions:\n")
	b.WriteString("- Answer based on the provided context\n")
	b.WriteString("- If the context doesn't contain relevant information, say so clearly\n")
	b.WriteString("- Be concise and helpful\n")
	b.WriteString("- Cite specific features or details from the documentation when applicable\n\n")
	b.WriteString("Answer:")
	return b.String()
}
