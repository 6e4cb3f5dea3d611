// Package fingerprint re-locates a remembered element in a fresh snapshot.
//
// A fingerprint describes an element by its surroundings rather than its
// identity: nearby labels (anchors), the container it sits in, and the
// shape of its sibling list. Each signal alone is unreliable across UI
// churn; the Matcher combines all three with caller-supplied weights.
package fingerprint

import (
	"github.com/devicelab-dev/element-resolver/pkg/snapshot"
	"github.com/devicelab-dev/element-resolver/pkg/textmatch"
)

// Anchor roles
const (
	RoleSelf    = "self"
	RoleChild   = "child"
	RoleSibling = "sibling"
	RoleParent  = "parent"
)

// MaxAnchors caps how many anchors Capture records.
const MaxAnchors = 10

// labelSearchDepth bounds how far below a node Capture looks for a label.
const labelSearchDepth = 2

// Anchor is a nearby labeled element used as a landmark.
type Anchor struct {
	Text string `json:"text" yaml:"text"`
	Role string `json:"role" yaml:"role"`
}

// ContainerSignature describes the element's immediate parent.
type ContainerSignature struct {
	Class      string `json:"class" yaml:"class"`
	ResourceID string `json:"resourceId,omitempty" yaml:"resourceId,omitempty"`
	ChildCount int    `json:"childCount" yaml:"childCount"`
}

// SiblingPattern describes the element's place among its siblings.
// TotalSiblings and ClickableSiblings count the element itself.
type SiblingPattern struct {
	TotalSiblings     int      `json:"totalSiblings" yaml:"totalSiblings"`
	ClickableSiblings int      `json:"clickableSiblings" yaml:"clickableSiblings"`
	Position          int      `json:"position" yaml:"position"`
	SiblingTexts      []string `json:"siblingTexts,omitempty" yaml:"siblingTexts,omitempty"`
}

// Weights set the relative trust in each signal. They need not sum to 1;
// a zero weight disables that signal.
type Weights struct {
	Anchor    float64 `json:"anchor_weight" yaml:"anchor_weight"`
	Container float64 `json:"container_weight" yaml:"container_weight"`
	Sibling   float64 `json:"sibling_weight" yaml:"sibling_weight"`
}

// DefaultWeights trusts anchors most.
func DefaultWeights() Weights {
	return Weights{Anchor: 0.5, Container: 0.25, Sibling: 0.25}
}

// Fingerprint is a portable descriptor of one remembered element.
type Fingerprint struct {
	Anchors   []Anchor           `json:"anchorElements" yaml:"anchorElements"`
	Container ContainerSignature `json:"containerSignature" yaml:"containerSignature"`
	Siblings  SiblingPattern     `json:"siblingPattern" yaml:"siblingPattern"`
	Weights   Weights            `json:"matchingWeights" yaml:"matchingWeights"`
}

// Capture records the fingerprint of node within tree. It returns nil for
// a nil node or the root, which has no container or siblings.
func Capture(tree *snapshot.Tree, node *snapshot.Node, weights Weights) *Fingerprint {
	fp := newDescriber(tree).describe(node)
	if fp == nil {
		return nil
	}
	fp.Weights = weights
	return fp
}

// describer memoizes per-node summary labels for one tree.
type describer struct {
	tree   *snapshot.Tree
	labels map[int]string
}

func newDescriber(tree *snapshot.Tree) *describer {
	return &describer{tree: tree, labels: make(map[int]string)}
}

// summary returns the node's own label or the first label found beneath it.
func (c *describer) summary(n *snapshot.Node) string {
	if s, ok := c.labels[n.Index]; ok {
		return s
	}
	s := n.Label()
	if s == "" {
		c.tree.Descendants(n, labelSearchDepth, func(d *snapshot.Node, _ int) {
			if s == "" {
				s = d.Label()
			}
		})
	}
	c.labels[n.Index] = s
	return s
}

func (c *describer) describe(node *snapshot.Node) *Fingerprint {
	parent := c.tree.Parent(node)
	if node == nil || parent == nil {
		return nil
	}

	fp := &Fingerprint{
		Container: ContainerSignature{
			Class:      parent.Class,
			ResourceID: parent.ResourceID,
			ChildCount: len(parent.Children),
		},
	}

	siblings := c.tree.Siblings(node)
	fp.Siblings.TotalSiblings = len(siblings)
	fp.Siblings.Position = node.SiblingIndex
	for _, s := range siblings {
		if s.Clickable {
			fp.Siblings.ClickableSiblings++
		}
		if s.Index == node.Index {
			continue
		}
		if text := c.summary(s); text != "" {
			fp.Siblings.SiblingTexts = append(fp.Siblings.SiblingTexts, text)
		}
	}

	fp.Anchors = c.anchors(node, parent, siblings)
	return fp
}

func (c *describer) anchors(node, parent *snapshot.Node, siblings []*snapshot.Node) []Anchor {
	var anchors []Anchor
	seen := make(map[string]struct{})
	add := func(text, role string) {
		key := textmatch.Normalize(text)
		if key == "" || len(anchors) >= MaxAnchors {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		anchors = append(anchors, Anchor{Text: text, Role: role})
	}

	add(node.Label(), RoleSelf)
	c.tree.Descendants(node, labelSearchDepth, func(d *snapshot.Node, _ int) {
		add(d.Label(), RoleChild)
	})
	for _, s := range siblings {
		if s.Index != node.Index {
			add(c.summary(s), RoleSibling)
		}
	}
	add(parent.Label(), RoleParent)
	return anchors
}
