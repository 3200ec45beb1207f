// Package evaluate inspects a generated answer against the retrieved
// evidence and raises advisory quality flags. It never raises an error
// and never alters the answer: flags annotate, they do not veto.
package evaluate

import (
	"regexp"
	"sort"
	"strings"

	"github.com/clearpath/assistant/internal/models"
)

// Flag is an advisory annotation about potential answer unreliability.
type Flag string

const (
	// FlagNoContext: nothing was retrieved yet the answer is not a
	// refusal, so it may come purely from the model's prior knowledge.
	FlagNoContext Flag = "no_context"
	// FlagRefusal: the answer contains a refusal phrase.
	FlagRefusal Flag = "refusal"
	// FlagUnverifiedClaim: the answer names a proper-noun-like term that
	// appears nowhere in the retrieved chunks. Lexical, not semantic.
	FlagUnverifiedClaim Flag = "unverified_claim"
	// FlagDomainUncertainty: a sensitive category is discussed with
	// hedging language or evidence drawn from multiple documents.
	FlagDomainUncertainty Flag = "domain_uncertainty"
)

// Auditor evaluates answers using the configured phrase tables. It holds
// only compiled read-only state and is safe for concurrent use.
type Auditor struct {
	tables     Tables
	refusalRe  *regexp.Regexp
	hedgingRe  *regexp.Regexp
	categories []categoryMatcher
	allow      map[string]bool
}

type categoryMatcher struct {
	name string
	re   *regexp.Regexp
}

// NewAuditor compiles the phrase tables into an auditor.
func NewAuditor(tables Tables) *Auditor {
	a := &Auditor{
		tables:    tables,
		refusalRe: phraseRegexp(tables.RefusalPhrases),
		hedgingRe: phraseRegexp(tables.HedgingPhrases),
		allow:     make(map[string]bool, len(tables.AllowList)),
	}
	for _, w := range tables.AllowList {
		a.allow[strings.ToLower(w)] = true
	}
	for _, c := range tables.Categories {
		a.categories = append(a.categories, categoryMatcher{
			name: c.Name,
			re:   phraseRegexp(c.Keywords),
		})
	}
	return a
}

// phraseRegexp builds a whole-word alternation, longest phrase first so
// "thank you" wins over "thanks" style prefixes.
func phraseRegexp(phrases []string) *regexp.Regexp {
	if len(phrases) == 0 {
		return regexp.MustCompile(`\bzzz_never_matches\b`)
	}
	sorted := make([]string, len(phrases))
	copy(sorted, phrases)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	escaped := make([]string, len(sorted))
	for i, p := range sorted {
		escaped[i] = regexp.QuoteMeta(strings.ToLower(p))
	}
	return regexp.MustCompile(`\b(` + strings.Join(escaped, "|") + `)\b`)
}

// Evaluate computes the flag set for a generated answer. retrievalSkipped
// marks queries the classifier answered without the corpus on purpose
// (greetings); such answers are not flagged as missing context.
func (a *Auditor) Evaluate(answer string, retrieved []models.ScoredChunk, query string, retrievalSkipped bool) []Flag {
	var flags []Flag

	refusal := a.isRefusal(answer)

	if len(retrieved) == 0 && !refusal && !retrievalSkipped {
		flags = append(flags, FlagNoContext)
	}
	if refusal {
		flags = append(flags, FlagRefusal)
	}
	if a.hasUnverifiedClaim(answer, retrieved) {
		flags = append(flags, FlagUnverifiedClaim)
	}
	if a.hasDomainUncertainty(answer, query, retrieved) {
		flags = append(flags, FlagDomainUncertainty)
	}
	return flags
}

// isRefusal detects a total refusal. A contrast word in a long enough
// answer marks a partial answer instead: the model pivots to the
// information it does have.
func (a *Auditor) isRefusal(answer string) bool {
	lower := strings.ToLower(answer)
	if !a.refusalRe.MatchString(lower) {
		return false
	}
	hasContrast := false
	for _, ind := range a.tables.PartialAnswerIndicators {
		if strings.Contains(lower, strings.ToLower(ind)) {
			hasContrast = true
			break
		}
	}
	if hasContrast && len(strings.Fields(answer)) > 12 {
		return false
	}
	return true
}

// hasUnverifiedClaim runs the lexical groundedness check: proper-noun-like
// spans in the answer that appear in none of the retrieved chunks and are
// not allow-listed. Conservative by design; both false positives and
// false negatives are expected.
func (a *Auditor) hasUnverifiedClaim(answer string, retrieved []models.ScoredChunk) bool {
	answerNouns := extractProperNouns(answer)
	if len(answerNouns) == 0 {
		return false
	}

	var sb strings.Builder
	for _, sc := range retrieved {
		sb.WriteString(sc.Chunk.Text)
		sb.WriteString(" ")
	}
	chunkNouns := extractProperNouns(sb.String())

	for noun := range answerNouns {
		if len(noun) <= 2 || a.allow[noun] || chunkNouns[noun] {
			continue
		}
		return true
	}
	return false
}

// hasDomainUncertainty checks each configured category: the query or
// answer mentions it, and either the answer hedges or the evidence spans
// more than one source document.
func (a *Auditor) hasDomainUncertainty(answer, query string, retrieved []models.ScoredChunk) bool {
	lowerAnswer := strings.ToLower(answer)
	lowerQuery := strings.ToLower(query)

	for _, c := range a.categories {
		if !c.re.MatchString(lowerAnswer) && !c.re.MatchString(lowerQuery) {
			continue
		}
		if a.hedgingRe.MatchString(lowerAnswer) {
			return true
		}
		if distinctDocuments(retrieved) > 1 {
			return true
		}
	}
	return false
}

func distinctDocuments(retrieved []models.ScoredChunk) int {
	seen := make(map[string]bool, len(retrieved))
	for _, sc := range retrieved {
		seen[sc.Chunk.DocumentName] = true
	}
	return len(seen)
}

var cleanWordRe = regexp.MustCompile(`[^\w\s-]`)
var listMarkerRe = regexp.MustCompile(`^(\d+[.)]|[-*+>])$`)

// extractProperNouns collects capitalized multi-letter spans, normalized
// to lower case. Words at sentence starts only count when their casing
// marks them as names anyway (all caps or inner capitals).
func extractProperNouns(text string) map[string]bool {
	nouns := make(map[string]bool)
	words := strings.Fields(text)

	for i, word := range words {
		// Strip possessives before cleaning so "ClearPath's" does not
		// become "ClearPaths".
		word = strings.ReplaceAll(word, "'s", "")
		word = strings.ReplaceAll(word, "’s", "")
		clean := cleanWordRe.ReplaceAllString(word, "")
		if clean == "" {
			continue
		}
		first := rune(clean[0])
		if first < 'A' || first > 'Z' {
			continue
		}

		sentenceStart := i == 0
		if i > 0 {
			prev := strings.TrimSpace(words[i-1])
			if strings.HasSuffix(prev, ".") || strings.HasSuffix(prev, "!") ||
				strings.HasSuffix(prev, "?") || strings.HasSuffix(prev, ":") ||
				listMarkerRe.MatchString(prev) {
				sentenceStart = true
			}
		}

		if !sentenceStart {
			nouns[strings.ToLower(clean)] = true
			continue
		}
		// At a sentence start, only distinctive casing counts.
		if clean == strings.ToUpper(clean) || hasInnerUpper(clean) {
			nouns[strings.ToLower(clean)] = true
		}
	}
	return nouns
}

func hasInnerUpper(word string) bool {
	for _, r := range word[1:] {
		if r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}
