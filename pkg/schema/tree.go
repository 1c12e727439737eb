package schema

// Tree is the theme + single-root UI description produced by UI generation.
type Tree struct {
	Theme Theme `json:"theme"`
	Root  *Node `json:"root,omitempty"`
}

// Theme holds design tokens. Values are kept as decoded.
type Theme struct {
	Colors     map[string]any `json:"colors,omitempty"`
	Typography map[string]any `json:"typography,omitempty"`
	Spacing    map[string]any `json:"spacing,omitempty"`
}

// Node is one component or layout primitive. Content is usually a string
// but models sometimes emit objects.
type Node struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Props    map[string]any `json:"props,omitempty"`
	Content  any            `json:"content,omitempty"`
	Children []*Node        `json:"children,omitempty"`
}

// Walk visits nodes depth-first, parents before children. Returning false
// from fn skips the node's children.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	if t == nil || t.Root == nil {
		return
	}
	walk(t.Root, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if n == nil {
		return
	}
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		walk(c, depth+1, fn)
	}
}

// Count returns the number of nodes in the tree.
func (t *Tree) Count() int {
	n := 0
	t.Walk(func(*Node, int) bool {
		n++
		return true
	})
	return n
}

// Types returns how often each node type occurs.
func (t *Tree) Types() map[string]int {
	counts := make(map[string]int)
	t.Walk(func(n *Node, _ int) bool {
		counts[n.Type]++
		return true
	})
	return counts
}
