package textmatch

import (
	"fmt"
	"strings"
)

// Method names the rule that decided a MatchResult.
type Method string

// Method values
const (
	MethodExact    Method = "exact"
	MethodPartial  Method = "partial"
	MethodSemantic Method = "semantic"
	MethodAntonym  Method = "antonym_detected"
	MethodNone     Method = "none"
	MethodDisabled Method = "disabled"
)

// Confidence values assigned by the fixed rules.
const (
	ConfidenceAntonym           = 0.1
	ConfidenceCandidateContains = 0.9
	ConfidenceTargetContains    = 0.8
	ConfidenceSynonym           = 0.7
)

// MatchResult is the verdict for one target/candidate pair.
type MatchResult struct {
	Matched    bool    `json:"matched"`
	Confidence float64 `json:"confidence"`
	Method     Method  `json:"method"`
	Reason     string  `json:"reason,omitempty"`
}

type normalizedPair struct {
	positive, negative string
}

// Matcher compares labels under one Config. It holds only read-only
// tables after New and is safe for concurrent use.
type Matcher struct {
	cfg      Config
	pairs    []normalizedPair
	generic  bool
	synonyms [][]string
}

// New builds a Matcher, normalizing the antonym and synonym tables once.
func New(cfg Config) *Matcher {
	m := &Matcher{cfg: cfg, generic: cfg.BuiltinAntonyms}

	pairs := cfg.AntonymPairs
	if cfg.BuiltinAntonyms {
		pairs = append(append([]AntonymPair{}, BuiltinAntonymPairs...), cfg.AntonymPairs...)
	}
	for _, p := range pairs {
		pos, neg := Normalize(p.Positive), Normalize(p.Negative)
		if pos == "" || neg == "" || pos == neg {
			continue
		}
		m.pairs = append(m.pairs, normalizedPair{positive: pos, negative: neg})
	}

	for _, group := range SynonymGroups {
		var terms []string
		for _, term := range group {
			if n := Normalize(term); n != "" {
				terms = append(terms, n)
			}
		}
		m.synonyms = append(m.synonyms, terms)
	}
	return m
}

// Config returns the configuration the matcher was built with.
func (m *Matcher) Config() Config {
	return m.cfg
}

// Match compares target and candidate with a one-off Matcher.
func Match(target, candidate string, cfg Config) MatchResult {
	return New(cfg).Match(target, candidate)
}

// Match decides whether candidate denotes the same target.
func (m *Matcher) Match(target, candidate string) MatchResult {
	if !m.cfg.Enabled {
		return MatchResult{Matched: true, Confidence: 1.0, Method: MethodDisabled, Reason: "text matching disabled"}
	}

	t, c := Normalize(target), Normalize(candidate)
	if m.cfg.Mode == ModeExact {
		if t == c {
			return MatchResult{Matched: true, Confidence: 1.0, Method: MethodExact, Reason: "normalized text identical"}
		}
		return MatchResult{Method: MethodNone, Reason: "normalized text differs"}
	}
	return m.matchPartial(t, c)
}

func (m *Matcher) matchPartial(t, c string) MatchResult {
	if t == "" || c == "" {
		if t == c {
			return MatchResult{Matched: true, Confidence: 1.0, Method: MethodExact, Reason: "both texts empty"}
		}
		return MatchResult{Method: MethodNone, Reason: "one text is empty"}
	}

	if m.cfg.AntonymCheckEnabled {
		if pos, neg, ok := m.detectAntonym(t, c); ok {
			return MatchResult{
				Confidence: ConfidenceAntonym,
				Method:     MethodAntonym,
				Reason:     fmt.Sprintf("antonym pair %q/%q", pos, neg),
			}
		}
	}

	if t == c {
		return MatchResult{Matched: true, Confidence: 1.0, Method: MethodExact, Reason: "normalized text identical"}
	}
	if strings.Contains(c, t) {
		return MatchResult{Matched: true, Confidence: ConfidenceCandidateContains, Method: MethodPartial, Reason: "candidate contains target"}
	}
	if strings.Contains(t, c) {
		return MatchResult{Matched: true, Confidence: ConfidenceTargetContains, Method: MethodPartial, Reason: "target contains candidate"}
	}

	var sim float64
	if m.cfg.SemanticAnalysisEnabled {
		if term, ok := m.sharedSynonym(t, c); ok {
			return MatchResult{Matched: true, Confidence: ConfidenceSynonym, Method: MethodSemantic, Reason: fmt.Sprintf("synonym group of %q", term)}
		}
		sim = similarity(t, c)
		if sim >= m.cfg.threshold() {
			return MatchResult{Matched: true, Confidence: sim, Method: MethodSemantic, Reason: fmt.Sprintf("edit similarity %.2f", sim)}
		}
	}
	return MatchResult{Confidence: sim, Method: MethodNone, Reason: "no rule matched"}
}

// detectAntonym reports whether one side carries the positive term of a
// pair and the other its negative term. A positive term that only occurs
// inside its own negative ("关注" in "已关注") does not count.
func (m *Matcher) detectAntonym(t, c string) (string, string, bool) {
	for _, p := range m.pairs {
		if toggled(t, c, p.positive, p.negative) || toggled(c, t, p.positive, p.negative) {
			return p.positive, p.negative, true
		}
	}
	if m.generic {
		if base := stripActionPrefix(t); base != "" {
			for _, prefix := range genericNegationPrefixes {
				if toggled(t, c, base, prefix+base) {
					return base, prefix + base, true
				}
			}
		}
		if base := stripActionPrefix(c); base != "" {
			for _, prefix := range genericNegationPrefixes {
				if toggled(c, t, base, prefix+base) {
					return base, prefix + base, true
				}
			}
		}
	}
	return "", "", false
}

// toggled reports whether a holds pos (outside any neg) while b holds neg
// and a does not.
func toggled(a, b, pos, neg string) bool {
	if hasTerm(a, neg) || !hasTerm(b, neg) {
		return false
	}
	return hasTerm(removeTerm(a, neg), pos)
}

func stripActionPrefix(s string) string {
	for _, prefix := range actionPrefixes {
		if strings.HasPrefix(s, prefix) {
			return strings.TrimSpace(s[len(prefix):])
		}
	}
	return s
}

func (m *Matcher) sharedSynonym(t, c string) (string, bool) {
	for _, group := range m.synonyms {
		var inT, inC string
		for _, term := range group {
			if inT == "" && hasTerm(t, term) {
				inT = term
			}
			if inC == "" && hasTerm(c, term) {
				inC = term
			}
		}
		if inT != "" && inC != "" {
			return inT, true
		}
	}
	return "", false
}

// MatchAll scores target against every candidate, preserving order.
func (m *Matcher) MatchAll(target string, candidates []string) []MatchResult {
	results := make([]MatchResult, len(candidates))
	for i, c := range candidates {
		results[i] = m.Match(target, c)
	}
	return results
}

// Best returns the index and result of the highest-confidence matching
// candidate. Ties go to the earliest candidate; -1 means nothing matched.
func (m *Matcher) Best(target string, candidates []string) (int, MatchResult) {
	best := -1
	var bestResult MatchResult
	for i, r := range m.MatchAll(target, candidates) {
		if !r.Matched {
			continue
		}
		if best < 0 || r.Confidence > bestResult.Confidence {
			best, bestResult = i, r
		}
	}
	return best, bestResult
}
