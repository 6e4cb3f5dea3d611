package snapshot

// Tree is an immutable, single-rooted snapshot of a UI hierarchy.
// A nil or empty Tree is valid and behaves as a tree with no nodes.
type Tree struct {
	nodes []Node
}

// Build flattens an element tree into an arena in pre-order.
// A nil root yields an empty tree.
func Build(root *Element) *Tree {
	t := &Tree{}
	if root == nil {
		return t
	}
	t.add(root, NoParent, 0, 0)
	return t
}

func (t *Tree) add(elem *Element, parent, depth, siblingIndex int) int {
	idx := len(t.nodes)
	t.nodes = append(t.nodes, Node{
		Index:        idx,
		Parent:       parent,
		Depth:        depth,
		SiblingIndex: siblingIndex,
		Class:        elem.Class,
		ResourceID:   elem.ResourceID,
		Text:         elem.Text,
		ContentDesc:  elem.ContentDesc,
		Package:      elem.Package,
		Bounds:       elem.Bounds,
		Clickable:    elem.Clickable,
		Enabled:      elem.Enabled,
	})

	var children []int
	for _, child := range elem.Children {
		if child == nil {
			continue
		}
		children = append(children, t.add(child, idx, depth+1, len(children)))
	}
	// assigned after recursion: appends above may have moved t.nodes
	t.nodes[idx].Children = children
	return idx
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Root returns the root node or nil for an empty tree.
func (t *Tree) Root() *Node {
	return t.Node(0)
}

// Node returns the node at index i, or nil when out of range.
func (t *Tree) Node(i int) *Node {
	if t == nil || i < 0 || i >= len(t.nodes) {
		return nil
	}
	return &t.nodes[i]
}

// Nodes returns every node in document order.
func (t *Tree) Nodes() []*Node {
	if t == nil {
		return nil
	}
	out := make([]*Node, len(t.nodes))
	for i := range t.nodes {
		out[i] = &t.nodes[i]
	}
	return out
}

// Parent returns the parent of n, or nil for the root.
func (t *Tree) Parent(n *Node) *Node {
	if n == nil {
		return nil
	}
	return t.Node(n.Parent)
}

// Children returns the direct children of n in sibling order.
func (t *Tree) Children(n *Node) []*Node {
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if child := t.Node(c); child != nil {
			out = append(out, child)
		}
	}
	return out
}

// Siblings returns all children of n's parent, n included.
// The root is its own only sibling.
func (t *Tree) Siblings(n *Node) []*Node {
	parent := t.Parent(n)
	if parent == nil {
		if n == nil {
			return nil
		}
		return []*Node{n}
	}
	return t.Children(parent)
}

// Walk visits every node in pre-order. Returning false from fn skips the
// node's subtree.
func (t *Tree) Walk(fn func(*Node) bool) {
	if root := t.Root(); root != nil {
		t.walk(root, fn)
	}
}

func (t *Tree) walk(n *Node, fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		t.walk(&t.nodes[c], fn)
	}
}

// Descendants visits the descendants of n in pre-order down to maxDepth
// levels below n (maxDepth <= 0 means unbounded). fn receives the depth
// relative to n, starting at 1.
func (t *Tree) Descendants(n *Node, maxDepth int, fn func(node *Node, relDepth int)) {
	if n == nil {
		return
	}
	t.descendants(n, 1, maxDepth, fn)
}

func (t *Tree) descendants(n *Node, depth, maxDepth int, fn func(*Node, int)) {
	if maxDepth > 0 && depth > maxDepth {
		return
	}
	for _, c := range n.Children {
		child := t.Node(c)
		if child == nil {
			continue
		}
		fn(child, depth)
		t.descendants(child, depth+1, maxDepth, fn)
	}
}

// IsAncestor reports whether a is a strict ancestor of b.
func (t *Tree) IsAncestor(a, b *Node) bool {
	if a == nil || b == nil {
		return false
	}
	for p := t.Parent(b); p != nil; p = t.Parent(p) {
		if p.Index == a.Index {
			return true
		}
	}
	return false
}
