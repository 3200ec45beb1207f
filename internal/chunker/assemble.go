package chunker

import (
	"fmt"

	"github.com/clearpath/assistant/internal/models"
)

// ContextPrefix renders the persisted context annotation for a header path.
func ContextPrefix(path string) string {
	return fmt.Sprintf("[Context: %s] ", path)
}

// Assembler binds splitter windows to header-tracker output and produces
// metadata-complete chunks. It is stateless given its inputs; header state
// is owned by the caller's per-document HeaderTracker.
type Assembler struct {
	splitter *Splitter
	count    TokenCounter
}

// NewAssembler creates an assembler from a chunking config.
func NewAssembler(cfg Config) *Assembler {
	s := NewSplitter(cfg)
	return &Assembler{splitter: s, count: s.cfg.CountTokens}
}

// AssemblePage splits one page and attaches the given header path. The
// context prefix counts toward TokenCount, so an annotated chunk can land
// slightly over the target size; that is accepted, not corrected. A page
// with no extractable text yields zero chunks.
func (a *Assembler) AssemblePage(documentName string, page models.Page, headerPath string) []models.Chunk {
	windows := a.splitter.Split(page.Text)
	if len(windows) == 0 {
		return nil
	}

	chunks := make([]models.Chunk, 0, len(windows))
	for i, w := range windows {
		text := w.Text
		tokens := w.Tokens
		if headerPath != "" {
			text = ContextPrefix(headerPath) + text
			tokens = a.count(text)
		}
		chunks = append(chunks, models.Chunk{
			ID:            models.ChunkID(documentName, page.Number, i),
			Text:          text,
			DocumentName:  documentName,
			PageNumber:    page.Number,
			SequenceIndex: i,
			TokenCount:    tokens,
			ContextHeader: headerPath,
		})
	}
	return chunks
}

// ChunkDocument runs the full segmentation pass for one document: a fresh
// HeaderTracker is threaded through the pages in ascending order, and each
// page is assembled with the stack as of that page. The tracker is local
// to this call, so documents may be chunked concurrently.
func ChunkDocument(doc models.Document, cfg Config, headerCfg HeaderConfig) []models.Chunk {
	assembler := NewAssembler(cfg)
	tracker := NewHeaderTracker(headerCfg)

	var chunks []models.Chunk
	for _, page := range doc.Pages {
		tracker.ObservePage(page.Runs)
		chunks = append(chunks, assembler.AssemblePage(doc.Name, page, tracker.Path())...)
	}
	return chunks
}
