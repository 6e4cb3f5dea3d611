// Package actionable ranks the descendants of a container by how likely
// each is the intended tap target.
//
// Discovery is structural: zero-area or occluded nodes are still found,
// because the caller pointed at the container, not at a pixel.
package actionable

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/devicelab-dev/element-resolver/pkg/logger"
	"github.com/devicelab-dev/element-resolver/pkg/snapshot"
	"github.com/devicelab-dev/element-resolver/pkg/textmatch"
)

// DefaultMaxDepth bounds the descendant walk.
const DefaultMaxDepth = 5

// Scoring constants
const (
	highWordBonus   = 0.2
	mediumWordBonus = 0.1
	lowWordPenalty  = 0.1
	shortTextBonus  = 0.1
	longTextPenalty = 0.15
	shortTextMax    = 20
	longTextMin     = 50
	minConfidence   = 0.1
	maxConfidence   = 1.0

	basePriority     = 50
	depthPenalty     = 5
	highWordPriority = 15
)

// Options tune Analyze.
type Options struct {
	MaxDepth                  int  `json:"maxDepth" yaml:"maxDepth"`
	EnableSmartRecommendation bool `json:"enableSmartRecommendation" yaml:"enableSmartRecommendation"`
}

// DefaultOptions walks five levels and ranks the result.
func DefaultOptions() Options {
	return Options{MaxDepth: DefaultMaxDepth, EnableSmartRecommendation: true}
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// Child is one actionable descendant of the container.
type Child struct {
	Node       *snapshot.Node `json:"node"`
	Type       ElementType    `json:"type"`
	Depth      int            `json:"depth"`
	Confidence float64        `json:"confidence"`
	Priority   int            `json:"priority"`
	Reason     string         `json:"reason,omitempty"`
}

// Result is the outcome of Analyze.
type Result struct {
	Children       []Child `json:"children"`
	Recommendation *Child  `json:"recommendation"`
	TotalCount     int     `json:"totalCount"`
}

// Analyze enumerates the actionable descendants of container within
// opts.MaxDepth levels. With smart recommendation enabled the children are
// sorted by priority, then confidence, then document order, and the first
// one is recommended. Otherwise they stay in document order and no
// recommendation is made.
func Analyze(tree *snapshot.Tree, container *snapshot.Node, opts Options) *Result {
	result := &Result{Children: []Child{}}
	if tree.Len() == 0 || container == nil {
		return result
	}

	tree.Descendants(container, opts.maxDepth(), func(n *snapshot.Node, depth int) {
		if IsActionable(n) {
			result.Children = append(result.Children, score(n, depth))
		}
	})
	result.TotalCount = len(result.Children)

	if opts.EnableSmartRecommendation && len(result.Children) > 0 {
		Rank(result.Children)
		top := result.Children[0]
		result.Recommendation = &top
	}

	logger.Debug("actionable children of node %d: %d found", container.Index, result.TotalCount)
	return result
}

// Rank sorts children in place by descending priority, then descending
// confidence. Equal entries keep their relative order.
func Rank(children []Child) {
	sort.SliceStable(children, func(i, j int) bool {
		a, b := children[i], children[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.Confidence > b.Confidence
	})
}

// wordTier records which action-word tiers a text hits.
type wordTier struct {
	high, medium, low bool
}

func tiersOf(text string) wordTier {
	return wordTier{
		high:   containsAny(text, highPriorityWords),
		medium: containsAny(text, mediumPriorityWords),
		low:    containsAny(text, lowPriorityWords),
	}
}

func containsAny(text string, words []string) bool {
	if text == "" {
		return false
	}
	for _, w := range words {
		if textmatch.ContainsTerm(text, w) {
			return true
		}
	}
	return false
}

func score(n *snapshot.Node, depth int) Child {
	typ := Classify(n)
	tier := tiersOf(n.CombinedText())
	textLen := utf8.RuneCountInString(strings.TrimSpace(n.Text))

	c := Child{
		Node:       n,
		Type:       typ,
		Depth:      depth,
		Confidence: confidence(typ, tier, textLen),
		Priority:   Priority(typ, depth, tier.high),
	}
	c.Reason = reason(c, tier)
	return c
}

// confidence combines the type base score with action words and text length.
func confidence(typ ElementType, tier wordTier, textLen int) float64 {
	c := BaseScore(typ)
	if tier.high {
		c += highWordBonus
	}
	if tier.medium {
		c += mediumWordBonus
	}
	if tier.low {
		c -= lowWordPenalty
	}
	switch {
	case textLen > longTextMin:
		c -= longTextPenalty
	case textLen > 0 && textLen <= shortTextMax:
		c += shortTextBonus
	}
	return min(maxConfidence, max(minConfidence, c))
}

// Priority orders children; shallower, button-like, high-intent nodes first.
func Priority(typ ElementType, depth int, highWord bool) int {
	p := basePriority - depth*depthPenalty + TypeWeight(typ)
	if highWord {
		p += highWordPriority
	}
	return p
}

func reason(c Child, tier wordTier) string {
	parts := []string{fmt.Sprintf("%s at depth %d", c.Type, c.Depth)}
	switch {
	case tier.high:
		parts = append(parts, "high-priority action word")
	case tier.medium:
		parts = append(parts, "medium-priority action word")
	}
	if tier.low {
		parts = append(parts, "dismissal word")
	}
	return strings.Join(parts, ", ")
}
