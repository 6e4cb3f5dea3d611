package fingerprint

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/devicelab-dev/element-resolver/pkg/logger"
	"github.com/devicelab-dev/element-resolver/pkg/snapshot"
	"github.com/devicelab-dev/element-resolver/pkg/textmatch"
)

// DefaultFloor is the combined score a candidate must exceed.
const DefaultFloor = 0.3

// Anchor pairing scores.
const (
	anchorExact      = 1.0
	anchorContains   = 0.7
	anchorSimilarity = 0.6
)

// Breakdown holds the three sub-scores of a candidate.
type Breakdown struct {
	Anchor    float64 `json:"anchor"`
	Container float64 `json:"container"`
	Sibling   float64 `json:"sibling"`
}

// Candidate is one ranked node of a fresh snapshot.
type Candidate struct {
	Node      *snapshot.Node `json:"node"`
	Score     float64        `json:"score"`
	Breakdown Breakdown      `json:"breakdown"`
	Rationale string         `json:"rationale,omitempty"`
}

// Options tune a Matcher.
type Options struct {
	// Floor is exclusive: candidates scoring exactly Floor are dropped.
	Floor float64 `json:"floor" yaml:"floor"`
}

// DefaultOptions returns the stock floor.
func DefaultOptions() Options {
	return Options{Floor: DefaultFloor}
}

// Matcher ranks the nodes of a fresh tree against a fingerprint.
type Matcher struct {
	floor float64
}

// NewMatcher builds a Matcher. Floors outside [0,1) are clamped.
func NewMatcher(opts Options) *Matcher {
	floor := opts.Floor
	if floor < 0 {
		floor = 0
	}
	if floor >= 1 {
		floor = DefaultFloor
	}
	return &Matcher{floor: floor}
}

// FindBestMatch relocates fp in tree with default options.
// It returns nil when no candidate clears the floor.
func FindBestMatch(tree *snapshot.Tree, fp *Fingerprint) *snapshot.Node {
	best := NewMatcher(DefaultOptions()).FindBest(tree, fp)
	if best == nil {
		return nil
	}
	return best.Node
}

// FindBest returns the top candidate or nil.
func (m *Matcher) FindBest(tree *snapshot.Tree, fp *Fingerprint) *Candidate {
	ranked := m.Rank(tree, fp)
	if len(ranked) == 0 {
		return nil
	}
	return &ranked[0]
}

// Rank scores every non-root node, drops those at or below the floor and
// sorts the rest by descending score. Ties keep document order.
func (m *Matcher) Rank(tree *snapshot.Tree, fp *Fingerprint) []Candidate {
	ranked := []Candidate{}
	if fp == nil || tree.Len() == 0 {
		return ranked
	}

	d := newDescriber(tree)
	for _, node := range tree.Nodes() {
		current := d.describe(node)
		if current == nil {
			continue
		}
		score, breakdown := Score(fp, current)
		if !m.retained(score) {
			continue
		}
		ranked = append(ranked, Candidate{
			Node:      node,
			Score:     score,
			Breakdown: breakdown,
			Rationale: fmt.Sprintf("anchor=%.2f container=%.2f sibling=%.2f", breakdown.Anchor, breakdown.Container, breakdown.Sibling),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	logger.Debug("fingerprint match: %d of %d nodes above floor %.2f", len(ranked), tree.Len(), m.floor)
	return ranked
}

func (m *Matcher) retained(score float64) bool {
	return score > m.floor
}

// Score combines the sub-scores of current against the remembered fp
// using fp.Weights. Zero weights leave their signal out of the average;
// when every weight is zero all three signals count equally.
func Score(fp, current *Fingerprint) (float64, Breakdown) {
	b := Breakdown{
		Anchor:    anchorScore(fp.Anchors, current.Anchors),
		Container: containerScore(fp.Container, current.Container),
		Sibling:   siblingScore(fp.Siblings, current.Siblings),
	}

	w := fp.Weights
	wa, wc, ws := math.Max(w.Anchor, 0), math.Max(w.Container, 0), math.Max(w.Sibling, 0)
	total := wa + wc + ws
	if total == 0 {
		wa, wc, ws, total = 1, 1, 1, 3
	}
	return (wa*b.Anchor + wc*b.Container + ws*b.Sibling) / total, b
}

func anchorScore(remembered, current []Anchor) float64 {
	var want []string
	for _, a := range remembered {
		if t := textmatch.Normalize(a.Text); t != "" {
			want = append(want, t)
		}
	}
	if len(want) == 0 {
		return 1.0
	}

	var have []string
	for _, a := range current {
		if t := textmatch.Normalize(a.Text); t != "" {
			have = append(have, t)
		}
	}

	best := 0.0
	for _, r := range want {
		for _, c := range have {
			var s float64
			switch {
			case r == c:
				return anchorExact
			case strings.Contains(r, c) || strings.Contains(c, r):
				s = anchorContains
			default:
				s = textmatch.Similarity(r, c) * anchorSimilarity
			}
			best = math.Max(best, s)
		}
	}
	return best
}

func containerScore(remembered, current ContainerSignature) float64 {
	sum, checks := 0.0, 0
	if remembered.Class != "" && current.Class != "" {
		sum += boolScore(remembered.Class == current.Class)
		checks++
	}
	if remembered.ResourceID != "" && current.ResourceID != "" {
		sum += boolScore(remembered.ResourceID == current.ResourceID)
		checks++
	}
	sum += countSimilarity(remembered.ChildCount, current.ChildCount)
	checks++
	return sum / float64(checks)
}

func siblingScore(remembered, current SiblingPattern) float64 {
	total := countSimilarity(remembered.TotalSiblings, current.TotalSiblings)
	clickable := countSimilarity(remembered.ClickableSiblings, current.ClickableSiblings)

	span := max(remembered.TotalSiblings, current.TotalSiblings, 1)
	position := clamp01(1 - math.Abs(float64(remembered.Position-current.Position))/float64(span))

	overlap := textOverlap(remembered.SiblingTexts, current.SiblingTexts)
	return (total + clickable + position + overlap) / 4
}

// textOverlap is the fraction of remembered texts found among current
// ones, exactly or by containment either way.
func textOverlap(remembered, current []string) float64 {
	var want []string
	for _, t := range remembered {
		if n := textmatch.Normalize(t); n != "" {
			want = append(want, n)
		}
	}
	if len(want) == 0 {
		return 1.0
	}

	have := make([]string, 0, len(current))
	for _, t := range current {
		if n := textmatch.Normalize(t); n != "" {
			have = append(have, n)
		}
	}

	found := 0
	for _, r := range want {
		for _, c := range have {
			if r == c || strings.Contains(r, c) || strings.Contains(c, r) {
				found++
				break
			}
		}
	}
	return float64(found) / float64(len(want))
}

// countSimilarity is 1 - |a-b| / max(a, b, 1).
func countSimilarity(a, b int) float64 {
	diff := math.Abs(float64(a - b))
	return clamp01(1 - diff/float64(max(a, b, 1)))
}

func boolScore(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
