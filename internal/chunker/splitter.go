package chunker

import "strings"

// DefaultSeparators lists split points from coarsest to finest. The empty
// string is the last resort: split at raw token boundaries.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target chunk size in tokens.
	ChunkOverlap int // Overlap between consecutive chunks in tokens.
	Separators   []string
	CountTokens  TokenCounter
}

// DefaultConfig returns the chunking defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    300,
		ChunkOverlap: 50,
		Separators:   DefaultSeparators,
		CountTokens:  EstimateTokens,
	}
}

// Window is one token-bounded slice of a page, before context injection.
type Window struct {
	Text   string
	Tokens int
}

// Splitter segments a page's text into overlapping token-bounded windows,
// preferring natural boundaries. It is stateless; one instance may be
// shared across goroutines.
type Splitter struct {
	cfg Config
}

// NewSplitter creates a splitter, filling in defaults for zero fields.
func NewSplitter(cfg Config) *Splitter {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 300
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 6
	}
	if len(cfg.Separators) == 0 {
		cfg.Separators = DefaultSeparators
	}
	if cfg.CountTokens == nil {
		cfg.CountTokens = EstimateTokens
	}
	return &Splitter{cfg: cfg}
}

// Split segments text into windows. Text at or under the target size yields
// exactly one window; empty or whitespace-only text yields none. The final
// window may be far under the target: page fragments are emitted as-is so
// page attribution stays exact.
func (s *Splitter) Split(text string) []Window {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	parts := s.split(text, s.cfg.Separators)
	windows := make([]Window, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		windows = append(windows, Window{Text: p, Tokens: s.cfg.CountTokens(p)})
	}
	return windows
}

// split is the recursive descent: try the coarsest remaining separator,
// assemble pieces greedily up to the target, and recurse into any piece
// that is still too large with the next separator.
func (s *Splitter) split(text string, seps []string) []string {
	if s.cfg.CountTokens(text) <= s.cfg.ChunkSize {
		return []string{text}
	}
	if len(seps) == 0 {
		return s.splitByTokens(text)
	}

	sep := seps[0]
	if sep == "" {
		return s.splitByTokens(text)
	}
	if !strings.Contains(text, sep) {
		return s.split(text, seps[1:])
	}

	pieces := strings.SplitAfter(text, sep)

	var out []string
	var current strings.Builder
	currentTokens := 0

	flush := func() {
		if currentTokens > 0 {
			out = append(out, current.String())
			current.Reset()
			currentTokens = 0
		}
	}

	for _, piece := range pieces {
		if piece == "" {
			continue
		}
		pieceTokens := s.cfg.CountTokens(piece)

		// A piece that alone exceeds the target needs a finer separator.
		if pieceTokens > s.cfg.ChunkSize {
			flush()
			out = append(out, s.split(piece, seps[1:])...)
			continue
		}

		if currentTokens > 0 && currentTokens+pieceTokens > s.cfg.ChunkSize {
			prev := current.String()
			flush()
			// Carry back the trailing overlap into the new window.
			if overlap := s.overlapTail(prev); overlap != "" {
				current.WriteString(overlap)
				if !strings.HasSuffix(overlap, " ") {
					current.WriteString(" ")
				}
				currentTokens = s.cfg.CountTokens(current.String())
			}
		}

		current.WriteString(piece)
		currentTokens += pieceTokens
	}
	flush()

	return out
}

// splitByTokens is the last resort when every separator is exhausted:
// window the text at raw token boundaries.
func (s *Splitter) splitByTokens(text string) []string {
	words := strings.Fields(text)
	if len(words) <= 1 {
		return s.splitByRunes(text)
	}

	var out []string
	var window []string
	windowTokens := 0

	for _, w := range words {
		wt := s.cfg.CountTokens(w)
		if windowTokens > 0 && windowTokens+wt > s.cfg.ChunkSize {
			out = append(out, strings.Join(window, " "))
			window = s.overlapWords(window)
			windowTokens = s.cfg.CountTokens(strings.Join(window, " "))
		}
		window = append(window, w)
		windowTokens += wt
	}
	if len(window) > 0 {
		out = append(out, strings.Join(window, " "))
	}
	return out
}

// splitByRunes handles pathological unbroken text with no word boundaries.
func (s *Splitter) splitByRunes(text string) []string {
	// ~4 chars per token keeps windows near the target.
	maxRunes := s.cfg.ChunkSize * 4
	if maxRunes <= 0 {
		maxRunes = 1200
	}
	runes := []rune(text)
	var out []string
	for start := 0; start < len(runes); start += maxRunes {
		end := start + maxRunes
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

// overlapTail extracts the last ChunkOverlap tokens' worth of trailing text.
func (s *Splitter) overlapTail(text string) string {
	if s.cfg.ChunkOverlap <= 0 {
		return ""
	}
	words := strings.Fields(text)
	tail := s.overlapWords(words)
	if len(tail) == len(words) {
		// Whole window would repeat; skip the overlap instead.
		return ""
	}
	return strings.Join(tail, " ")
}

// overlapWords returns the suffix of words that fits in ChunkOverlap tokens.
func (s *Splitter) overlapWords(words []string) []string {
	if s.cfg.ChunkOverlap <= 0 || len(words) == 0 {
		return nil
	}
	start := len(words)
	tokens := 0
	for start > 0 {
		next := tokens + s.cfg.CountTokens(words[start-1])
		if next > s.cfg.ChunkOverlap {
			break
		}
		tokens = next
		start--
	}
	return words[start:]
}
