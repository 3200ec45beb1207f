// Package router classifies queries into a generation tier without any
// model call. Classification is an ordered list of predicates evaluated
// top to bottom with first-match-wins semantics; exactly one rule fires
// for every query.
package router

import (
	"regexp"
	"strings"
)

// Tier is the routing outcome, selecting a generation capability level.
type Tier string

const (
	TierLow  Tier = "low"
	TierHigh Tier = "high"
)

// RuleID names the decision-tree rule that fired.
type RuleID string

const (
	RuleOOD           RuleID = "ood"
	RuleKeyword       RuleID = "keyword"
	RuleLength        RuleID = "length"
	RuleMultiQuestion RuleID = "multi_question"
	RuleComparison    RuleID = "comparison"
	RuleDefault       RuleID = "default"
)

// Signals reports the literal counts consulted during classification,
// independent of which rule fired. They exist for observability.
type Signals struct {
	WordCount      int `json:"word_count"`
	KeywordHits    int `json:"keyword_hits"`
	QuestionMarks  int `json:"question_marks"`
	ComparisonHits int `json:"comparison_hits"`
}

// Classification is the routing decision for one query. It is a pure
// function of the query text: no clock, randomness, or external state.
type Classification struct {
	Tier          Tier    `json:"tier"`
	SkipRetrieval bool    `json:"skip_retrieval"`
	RuleID        RuleID  `json:"rule_id"`
	Signals       Signals `json:"signals"`
}

// Lexicons are data, not code, so they can be tuned without touching the
// decision logic. Alternations are ordered longest-first so multi-word
// phrases match before their prefixes.
var (
	// Queries that are exclusively a greeting or meta-comment are
	// out-of-distribution: answered without touching the corpus.
	greetingRe = regexp.MustCompile(`(?i)^\s*(good morning|good afternoon|thank you|thanks|hello|hey|hi)\s*[.!?,\s]*$`)
	metaRe     = regexp.MustCompile(`(?i)\b(what can you do|who are you|help)\b`)

	complexKeywordRe = regexp.MustCompile(`(?i)\b(difference|relationship|explain|compare|analyze|why|how)\b`)

	// Whole-word boundaries keep "csv" from matching "vs".
	comparisonRe = regexp.MustCompile(`(?i)\b(compared to|versus|better|worse|vs)\b`)
)

const lengthThreshold = 15

type rule struct {
	id      RuleID
	tier    Tier
	skip    bool
	matches func(query string, sig Signals) bool
}

// Ordered, mutually exclusive by evaluation order. The default rule is
// the unconditional catch-all, guaranteeing totality.
var rules = []rule{
	{id: RuleOOD, tier: TierLow, skip: true, matches: func(q string, _ Signals) bool {
		return isGreeting(q) || isMetaComment(q)
	}},
	{id: RuleKeyword, tier: TierHigh, matches: func(_ string, sig Signals) bool {
		return sig.KeywordHits > 0
	}},
	{id: RuleLength, tier: TierHigh, matches: func(_ string, sig Signals) bool {
		return sig.WordCount > lengthThreshold
	}},
	{id: RuleMultiQuestion, tier: TierHigh, matches: func(_ string, sig Signals) bool {
		return sig.QuestionMarks > 1
	}},
	{id: RuleComparison, tier: TierHigh, matches: func(_ string, sig Signals) bool {
		return sig.ComparisonHits > 0
	}},
	{id: RuleDefault, tier: TierLow, matches: func(string, Signals) bool {
		return true
	}},
}

// Classify maps a query to its routing decision. Re-evaluating the same
// string always yields the identical result.
func Classify(query string) Classification {
	sig := computeSignals(query)
	for _, r := range rules {
		if r.matches(query, sig) {
			return Classification{
				Tier:          r.tier,
				SkipRetrieval: r.skip,
				RuleID:        r.id,
				Signals:       sig,
			}
		}
	}
	// Unreachable: the default rule always matches.
	return Classification{Tier: TierLow, RuleID: RuleDefault, Signals: sig}
}

func computeSignals(query string) Signals {
	return Signals{
		WordCount:      len(strings.Fields(query)),
		KeywordHits:    len(complexKeywordRe.FindAllString(query, -1)),
		QuestionMarks:  strings.Count(query, "?"),
		ComparisonHits: len(comparisonRe.FindAllString(query, -1)),
	}
}

func isGreeting(query string) bool {
	return greetingRe.MatchString(query)
}

// isMetaComment matches standalone meta phrases. "help" only counts when
// the query is short: a longer sentence containing "help" is a real
// question ("I need help with my server"), not a meta-comment.
func isMetaComment(query string) bool {
	lower := strings.ToLower(strings.TrimSpace(query))
	if strings.Contains(lower, "help") && len(strings.Fields(lower)) > 3 {
		return false
	}
	return metaRe.MatchString(lower)
}
