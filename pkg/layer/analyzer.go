// Package layer computes paint order and hit-testing over a UI snapshot.
//
// Every node gets a z-index from its depth, sibling position, document
// order and a semantic boost (dialogs above drawers above navigation bars
// above content). Zero-area nodes keep their place in the structure but
// are left out of the render order.
package layer

import (
	"sort"
	"strings"

	"github.com/devicelab-dev/element-resolver/pkg/core"
	"github.com/devicelab-dev/element-resolver/pkg/logger"
	"github.com/devicelab-dev/element-resolver/pkg/snapshot"
)

// DefaultBottomNavBand is the fraction of screen height, measured from the
// bottom, in which the bottom-navigation fallback looks for tab bars.
const DefaultBottomNavBand = 0.08

// RenderableNode is a node placed in paint order.
type RenderableNode struct {
	Node         *snapshot.Node `json:"node"`
	Bounds       core.Bounds    `json:"bounds"`
	ZIndex       int            `json:"zIndex"`
	Depth        int            `json:"depth"`
	SiblingIndex int            `json:"siblingIndex"`
	IsOverlay    bool           `json:"isOverlay"`
	SemanticType SemanticType   `json:"semanticType"`
}

// Metadata summarizes one analysis.
type Metadata struct {
	TotalNodes      int                  `json:"totalNodes"`
	RenderableNodes int                  `json:"renderableNodes"`
	ZeroAreaNodes   int                  `json:"zeroAreaNodes"`
	SemanticCounts  map[SemanticType]int `json:"semanticCounts"`
}

// Result is the output of Analyze.
type Result struct {
	// RenderOrder is sorted bottom-to-top.
	RenderOrder  []RenderableNode `json:"renderOrder"`
	ScreenSize   core.ScreenSize  `json:"screenSize"`
	OverlayCount int              `json:"overlayCount"`
	Metadata     Metadata         `json:"metadata"`
}

// Options tune the layer analysis.
type Options struct {
	// BottomNavBand is the bottom fraction of the screen searched by the
	// bottom-navigation fallback. It is a heuristic, not a guarantee.
	BottomNavBand float64 `yaml:"bottomNavBand" json:"bottomNavBand"`
	// NavLabels are compared case-insensitively against descendant labels.
	NavLabels []string `yaml:"navLabels" json:"navLabels"`
	// DefaultScreen is reported when the tree has no usable geometry.
	DefaultScreen core.ScreenSize `yaml:"defaultScreen" json:"defaultScreen"`
}

// DefaultOptions returns the stock heuristics.
func DefaultOptions() Options {
	return Options{
		BottomNavBand: DefaultBottomNavBand,
		NavLabels:     DefaultNavLabels,
		DefaultScreen: core.DefaultScreenSize,
	}
}

// Analyzer classifies nodes and orders them for painting. It holds no
// per-snapshot state and may be shared across goroutines.
type Analyzer struct {
	band      float64
	navLabels map[string]struct{}
	screen    core.ScreenSize
}

// NewAnalyzer builds an Analyzer, filling zero options with defaults.
func NewAnalyzer(opts Options) *Analyzer {
	a := &Analyzer{
		band:      opts.BottomNavBand,
		screen:    opts.DefaultScreen,
		navLabels: make(map[string]struct{}),
	}
	if a.band <= 0 || a.band >= 1 {
		a.band = DefaultBottomNavBand
	}
	if a.screen.Width <= 0 || a.screen.Height <= 0 {
		a.screen = core.DefaultScreenSize
	}
	labels := opts.NavLabels
	if labels == nil {
		labels = DefaultNavLabels
	}
	for _, l := range labels {
		if l = normalizeLabel(l); l != "" {
			a.navLabels[l] = struct{}{}
		}
	}
	return a
}

// Analyze runs an Analyzer with default options.
func Analyze(tree *snapshot.Tree) *Result {
	return NewAnalyzer(DefaultOptions()).Analyze(tree)
}

// Analyze computes semantic types, z-indices and the render order.
// A nil or empty tree yields an empty result with the default screen size.
func (a *Analyzer) Analyze(tree *snapshot.Tree) *Result {
	res := &Result{
		RenderOrder: []RenderableNode{},
		ScreenSize:  a.screen,
		Metadata:    Metadata{SemanticCounts: map[SemanticType]int{}},
	}
	n := tree.Len()
	if n == 0 {
		return res
	}
	res.ScreenSize = a.screenSize(tree)
	res.Metadata.TotalNodes = n

	types := make([]SemanticType, n)
	boosts := make([]int, n)
	zs := make([]int, n)
	inNav := make([]bool, n)

	// Arena order is pre-order, so every parent is resolved before its children.
	for i, node := range tree.Nodes() {
		parent := tree.Parent(node)

		t := a.classify(tree, node, parent, types, inNav, res.ScreenSize)
		types[i] = t

		boost := Boost(t)
		if parent != nil {
			boosts[i] = max(boost, boosts[parent.Index])
			inNav[i] = inNav[parent.Index] || t == TypeBottomNavigation
		} else {
			boosts[i] = boost
			inNav[i] = t == TypeBottomNavigation
		}

		z := node.Depth*1000 + node.SiblingIndex*10 + i + boosts[i]
		if parent != nil && z <= zs[parent.Index] {
			z = zs[parent.Index] + 1
		}
		zs[i] = z

		res.Metadata.SemanticCounts[t]++
		if !node.Bounds.HasArea() {
			res.Metadata.ZeroAreaNodes++
			continue
		}
		rn := RenderableNode{
			Node:         node,
			Bounds:       node.Bounds,
			ZIndex:       z,
			Depth:        node.Depth,
			SiblingIndex: node.SiblingIndex,
			IsOverlay:    IsOverlay(t),
			SemanticType: t,
		}
		if rn.IsOverlay {
			res.OverlayCount++
		}
		res.RenderOrder = append(res.RenderOrder, rn)
	}

	sort.SliceStable(res.RenderOrder, func(i, j int) bool {
		return res.RenderOrder[i].ZIndex < res.RenderOrder[j].ZIndex
	})
	res.Metadata.RenderableNodes = len(res.RenderOrder)

	logger.Debug("layer analysis: %d nodes, %d renderable, %d overlays", n, len(res.RenderOrder), res.OverlayCount)
	return res
}

func (a *Analyzer) classify(tree *snapshot.Tree, node, parent *snapshot.Node, types []SemanticType, inNav []bool, screen core.ScreenSize) SemanticType {
	if parent != nil && types[parent.Index] == TypeDrawerLayout {
		if node.SiblingIndex == 0 {
			return TypeMainContent
		}
		return TypeDrawerContent
	}

	t := Classify(node)
	if t != TypeNormal {
		return t
	}
	if parent != nil && inNav[parent.Index] {
		return t
	}
	if a.looksLikeBottomNav(tree, node, screen) {
		return TypeBottomNavigation
	}
	return t
}

// navHeightBands caps a fallback tab bar at this many bands of height, so
// full-height containers reaching the screen bottom never qualify.
const navHeightBands = 2

// looksLikeBottomNav is the geometric fallback: a bar-shaped node whose
// bottom edge ends in the bottom band of the screen, with a well-known tab
// label below it. Tab bars often sit just above the system navigation
// bar, so only the bottom edge is tested against the band.
func (a *Analyzer) looksLikeBottomNav(tree *snapshot.Tree, node *snapshot.Node, screen core.ScreenSize) bool {
	if !node.Bounds.HasArea() || len(node.Children) == 0 {
		return false
	}
	h := float64(screen.Height)
	if float64(node.Bounds.Bottom()) < h*(1-a.band) {
		return false
	}
	if float64(node.Bounds.Height) > h*a.band*navHeightBands {
		return false
	}
	return a.hasNavLabel(tree, node)
}

func (a *Analyzer) hasNavLabel(tree *snapshot.Tree, node *snapshot.Node) bool {
	for _, child := range tree.Children(node) {
		if a.isNavLabel(child.Text) || a.isNavLabel(child.ContentDesc) {
			return true
		}
		if a.hasNavLabel(tree, child) {
			return true
		}
	}
	return false
}

func (a *Analyzer) isNavLabel(s string) bool {
	if s == "" {
		return false
	}
	_, ok := a.navLabels[normalizeLabel(s)]
	return ok
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// screenSize takes the root bounds, then the union of all node bounds,
// then the configured default.
func (a *Analyzer) screenSize(tree *snapshot.Tree) core.ScreenSize {
	if root := tree.Root(); root.Bounds.HasArea() {
		return core.ScreenSize{Width: root.Bounds.Right(), Height: root.Bounds.Bottom()}
	}
	var union core.Bounds
	for _, n := range tree.Nodes() {
		union = union.Union(n.Bounds)
	}
	if union.HasArea() {
		return core.ScreenSize{Width: union.Right(), Height: union.Bottom()}
	}
	return a.screen
}
