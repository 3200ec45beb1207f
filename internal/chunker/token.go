package chunker

import "strings"

// TokenCounter reports the token length of a piece of text. The splitter
// and assembler take it as a collaborator so an exact tokenizer can be
// swapped in without touching the splitting logic.
type TokenCounter func(text string) int

// EstimateTokens gives a rough token count using a words-based heuristic.
// This is intentionally simple — exact tokenization is not required for chunking.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	// Roughly 1.33 tokens per word for English text.
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 && len(text) > 0 {
		tokens = 1
	}
	return tokens
}
