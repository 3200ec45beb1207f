package models

import "fmt"

// Run is a piece of text on a page annotated with its visual weight.
// For PDFs the size comes from the font; other formats synthesize sizes
// for their heading levels.
type Run struct {
	Text     string
	FontSize float64
}

// Page is one page of extracted document text.
type Page struct {
	Number int    // 1-indexed
	Text   string // plain text of the page
	Runs   []Run  // text runs with size info, used for header detection
}

// Document is a loaded source document.
type Document struct {
	Name  string // filename, e.g. "pricing_guide.pdf"
	Pages []Page
}

// TotalPages returns the page count.
func (d Document) TotalPages() int {
	return len(d.Pages)
}

// Chunk is a token-bounded, context-annotated segment of a document.
// It is the unit of retrieval. Chunks are created once at ingestion and
// never mutated.
type Chunk struct {
	ID            string `json:"chunk_id"`
	Text          string `json:"text"`
	DocumentName  string `json:"document_name"`
	PageNumber    int    `json:"page_number"`
	SequenceIndex int    `json:"sequence_index"`
	TokenCount    int    `json:"token_count"`
	ContextHeader string `json:"context_header,omitempty"`
}

// ChunkID derives the stable chunk identifier from its source coordinates.
// Re-ingesting the same document yields identical ids.
func ChunkID(document string, page, sequence int) string {
	return fmt.Sprintf("%s_%d_%d", document, page, sequence)
}

// ScoredChunk is a chunk with its relevance score from retrieval.
// Scores are normalized to [0, 1].
type ScoredChunk struct {
	Chunk     Chunk   `json:"chunk"`
	Relevance float64 `json:"relevance"`
}
