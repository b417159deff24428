package tree

import "strings"

// Node is a single locality tree node.
type Node struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Children  []*Node `json:"children,omitempty"`
	Collapsed bool    `json:"collapsed,omitempty"`
}

// IsLeaf reports whether n has no children at all, visible or collapsed.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// HasChildren reports whether n has visible or collapsed children.
func (n *Node) HasChildren() bool { return len(n.Children) > 0 }

// VisibleChildren returns the children drawn for n: none when collapsed.
func (n *Node) VisibleChildren() []*Node {
	if n.Collapsed {
		return nil
	}
	return n.Children
}

// Toggle flips the collapse state of a node with children.
// Leaves are never marked collapsed. It reports the new state.
func (n *Node) Toggle() bool {
	if n.IsLeaf() {
		n.Collapsed = false
		return false
	}
	n.Collapsed = !n.Collapsed
	return n.Collapsed
}

// Walk visits every node in pre-order, including children of collapsed
// nodes. Returning false from fn skips the node's subtree.
func Walk(root *Node, fn func(n *Node, depth int) bool) {
	walk(root, 0, false, fn)
}

// WalkVisible visits nodes in pre-order like [Walk] but does not descend
// into collapsed nodes.
func WalkVisible(root *Node, fn func(n *Node, depth int) bool) {
	walk(root, 0, true, fn)
}

func walk(n *Node, depth int, visibleOnly bool, fn func(*Node, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	children := n.Children
	if visibleOnly {
		children = n.VisibleChildren()
	}
	for _, c := range children {
		walk(c, depth+1, visibleOnly, fn)
	}
}

// Count returns the total number of nodes under and including root.
func Count(root *Node) int {
	n := 0
	Walk(root, func(*Node, int) bool { n++; return true })
	return n
}

// Height returns the maximum depth of the tree (0 for a single node, -1 for nil).
func Height(root *Node) int {
	h := -1
	Walk(root, func(_ *Node, depth int) bool {
		h = max(h, depth)
		return true
	})
	return h
}

// Find returns the node reached by following names from root. The first
// element must match the root's name. Names are matched exactly; the first
// child with a matching name wins.
func Find(root *Node, path []string) (*Node, bool) {
	if root == nil || len(path) == 0 || root.Name != path[0] {
		return nil, false
	}
	cur := root
	for _, name := range path[1:] {
		var next *Node
		for _, c := range cur.Children {
			if c.Name == name {
				next = c
				break
			}
		}
		if next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// ParsePath splits a slash-separated name path ("root/0011/01").
func ParsePath(s string) []string {
	s = strings.Trim(s, "/")
	if s == "" {
		return nil
	}
	return strings.Split(s, "/")
}

// CollapseDepth collapses every node with children at the given depth, so
// that depth is the deepest level drawn. Depth 0 collapses the root.
// Negative depths are ignored.
func CollapseDepth(root *Node, depth int) {
	if depth < 0 {
		return
	}
	Walk(root, func(n *Node, d int) bool {
		if d == depth {
			if n.HasChildren() {
				n.Collapsed = true
			}
			return false
		}
		return true
	})
}

// ExpandAll clears the collapse state of every node.
func ExpandAll(root *Node) {
	Walk(root, func(n *Node, _ int) bool {
		n.Collapsed = false
		return true
	})
}

// Clone returns a deep copy of the tree so that collapse state can be
// changed without affecting the original.
func Clone(n *Node) *Node {
	if n == nil {
		return nil
	}
	out := &Node{Name: n.Name, Value: n.Value, Collapsed: n.Collapsed}
	if n.Children != nil {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = Clone(c)
		}
	}
	return out
}
