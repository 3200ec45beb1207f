package chunker

import (
	"strings"

	"github.com/clearpath/assistant/internal/models"
)

// HeaderLevel is the hierarchy depth of a detected section header.
type HeaderLevel int

const (
	H1 HeaderLevel = iota + 1
	H2
	H3
)

// HeaderEntry is one level of the active section path.
type HeaderEntry struct {
	Level HeaderLevel
	Title string
}

// HeaderConfig holds the font-size bands used to classify runs as headers.
// A run whose size is strictly above BodySize is a header; above H2Size it
// is an H2, above H1Size an H1, otherwise an H3.
type HeaderConfig struct {
	BodySize    float64
	H2Size      float64
	H1Size      float64
	MinTitleLen int
}

// DefaultHeaderConfig returns the size bands used for ClearPath docs.
func DefaultHeaderConfig() HeaderConfig {
	return HeaderConfig{
		BodySize:    12,
		H2Size:      14,
		H1Size:      18,
		MinTitleLen: 3,
	}
}

// HeaderTracker maintains the hierarchical section-title stack as pages of
// one document are scanned in ascending order. It is a pure state machine:
// the caller owns one tracker per document and must feed pages in order.
type HeaderTracker struct {
	cfg   HeaderConfig
	stack []HeaderEntry
}

// NewHeaderTracker creates a tracker with an empty stack.
func NewHeaderTracker(cfg HeaderConfig) *HeaderTracker {
	if cfg.BodySize <= 0 {
		cfg = DefaultHeaderConfig()
	}
	return &HeaderTracker{cfg: cfg}
}

// ObservePage scans one page's runs and updates the stack. A header of
// level L replaces every entry at level >= L, so a new broad section
// discards stale deeper context. Pages with no headers leave the stack
// unchanged: chunks on those pages inherit the prior context.
func (t *HeaderTracker) ObservePage(runs []models.Run) {
	for _, run := range runs {
		title := strings.TrimSpace(run.Text)
		if run.FontSize <= t.cfg.BodySize || len(title) < t.cfg.MinTitleLen {
			continue
		}
		level := H3
		switch {
		case run.FontSize > t.cfg.H1Size:
			level = H1
		case run.FontSize > t.cfg.H2Size:
			level = H2
		}
		t.push(HeaderEntry{Level: level, Title: title})
	}
}

func (t *HeaderTracker) push(entry HeaderEntry) {
	kept := t.stack[:0]
	for _, e := range t.stack {
		if e.Level < entry.Level {
			kept = append(kept, e)
		}
	}
	t.stack = append(kept, entry)
}

// Path renders the current stack as "H1 > H2 > H3" using only present levels.
// It returns "" when no header has been seen.
func (t *HeaderTracker) Path() string {
	if len(t.stack) == 0 {
		return ""
	}
	titles := make([]string, len(t.stack))
	for i, e := range t.stack {
		titles[i] = e.Title
	}
	return strings.Join(titles, " > ")
}

// Stack returns a copy of the current entries.
func (t *HeaderTracker) Stack() []HeaderEntry {
	out := make([]HeaderEntry, len(t.stack))
	copy(out, t.stack)
	return out
}

// Reset clears the stack. Call it before starting a new document.
func (t *HeaderTracker) Reset() {
	t.stack = t.stack[:0]
}
