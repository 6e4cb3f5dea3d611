// Package snapshot holds the immutable UI tree captured from one screen.
//
// Nodes live in a flat arena ordered by a depth-first pre-order walk, so a
// node's Index is also its document order. Parent and child links are
// indices into that arena.
package snapshot

import (
	"strings"

	"github.com/devicelab-dev/element-resolver/pkg/core"
)

// NoParent is the Parent value of the root node.
const NoParent = -1

// Node is one UI element of a snapshot.
type Node struct {
	Index        int    `json:"index"`
	Parent       int    `json:"parent"`
	Children     []int  `json:"children,omitempty"`
	Depth        int    `json:"depth"`
	SiblingIndex int    `json:"siblingIndex"`
	Class        string `json:"class"`
	ResourceID   string `json:"resourceId,omitempty"`
	Text         string `json:"text,omitempty"`
	ContentDesc  string `json:"contentDesc,omitempty"`
	Package      string `json:"package,omitempty"`

	Bounds    core.Bounds `json:"bounds"`
	Clickable bool        `json:"clickable"`
	Enabled   bool        `json:"enabled"`
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool {
	return n.Parent == NoParent
}

// Label returns the visible text, falling back to the content description.
func (n *Node) Label() string {
	if t := strings.TrimSpace(n.Text); t != "" {
		return t
	}
	return strings.TrimSpace(n.ContentDesc)
}

// CombinedText joins text and content description for keyword scans.
func (n *Node) CombinedText() string {
	text := strings.TrimSpace(n.Text)
	desc := strings.TrimSpace(n.ContentDesc)
	switch {
	case text == "":
		return desc
	case desc == "" || desc == text:
		return text
	default:
		return text + " " + desc
	}
}

// ResourceName strips the "package:id/" prefix from the resource id.
func (n *Node) ResourceName() string {
	if i := strings.LastIndex(n.ResourceID, "/"); i >= 0 {
		return n.ResourceID[i+1:]
	}
	return n.ResourceID
}

// Element is the mutable builder form of a node, used by parsers and tests.
type Element struct {
	Class       string
	ResourceID  string
	Text        string
	ContentDesc string
	Package     string
	Bounds      core.Bounds
	Clickable   bool
	Enabled     bool
	Children    []*Element
}
