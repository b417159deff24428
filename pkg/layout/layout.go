package layout

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/localitree/pkg/tree"
)

// DefaultDepthSpacing is the fixed vertical offset between tree levels.
const DefaultDepthSpacing = 100.0

// SeparationFunc returns the minimum distance between two adjacent nodes,
// in units before normalization.
type SeparationFunc func(a, b *Node) float64

// DefaultSeparation separates siblings by 1 and non-siblings by 2.
func DefaultSeparation(a, b *Node) float64 {
	if a.Parent == b.Parent {
		return 1
	}
	return 2
}

// Config controls layout geometry.
type Config struct {
	// Breadth is the horizontal extent the tree is stretched to.
	Breadth float64
	// Depth is the vertical extent used only when DepthSpacing is 0.
	Depth float64
	// DepthSpacing fixes y to depth * DepthSpacing when non-zero.
	DepthSpacing float64
	// Separation defaults to DefaultSeparation.
	Separation SeparationFunc
}

// Node is a positioned tree node.
type Node struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Depth       int     `json:"depth"`
	HasChildren bool    `json:"has_children,omitempty"`
	Collapsed   bool    `json:"collapsed,omitempty"`
	// Parent is the index of the parent in Layout.Nodes, -1 for the root.
	Parent int `json:"parent"`
	// Path is the slash-separated name path from the root.
	Path string `json:"path"`

	src *tree.Node
}

// Source returns the tree node this layout node was computed from.
func (n *Node) Source() *tree.Node { return n.src }

// Link connects two nodes by their index in Layout.Nodes.
type Link struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// Layout is the result of [Compute].
type Layout struct {
	Breadth      float64 `json:"breadth"`
	Depth        float64 `json:"depth"`
	DepthSpacing float64 `json:"depth_spacing"`
	Nodes        []Node  `json:"nodes"`
	Links        []Link  `json:"links"`
}

// Root returns the root node, or false for an empty layout.
func (l Layout) Root() (Node, bool) {
	if len(l.Nodes) == 0 {
		return Node{}, false
	}
	return l.Nodes[0], true
}

// MaxDepth returns the deepest level present in the layout.
func (l Layout) MaxDepth() int {
	d := 0
	for _, n := range l.Nodes {
		d = max(d, n.Depth)
	}
	return d
}

// Compute lays out the visible part of root.
// A nil root yields an empty layout.
func Compute(root *tree.Node, cfg Config) Layout {
	out := Layout{Breadth: cfg.Breadth, Depth: cfg.Depth, DepthSpacing: cfg.DepthSpacing}
	if root == nil {
		return out
	}
	sep := cfg.Separation
	if sep == nil {
		sep = DefaultSeparation
	}

	out.Nodes, out.Links = flatten(root)
	w := wrap(out.Nodes)
	tidy(w, out.Nodes, sep)
	normalize(out.Nodes, cfg, sep)
	return out
}

// flatten lists visible nodes in pre-order and records parent links.
func flatten(root *tree.Node) ([]Node, []Link) {
	var nodes []Node

	var visit func(n *tree.Node, parent, depth int, prefix string)
	visit = func(n *tree.Node, parent, depth int, prefix string) {
		path := n.Name
		if depth > 0 {
			path = prefix + "/" + n.Name
		}
		nodes = append(nodes, Node{
			Name:        n.Name,
			Value:       n.Value,
			Depth:       depth,
			HasChildren: n.HasChildren(),
			Collapsed:   n.Collapsed,
			Parent:      parent,
			Path:        path,
			src:         n,
		})
		idx := len(nodes) - 1
		for _, c := range n.VisibleChildren() {
			visit(c, idx, depth+1, path)
		}
	}
	visit(root, -1, 0, "")

	// Pre-order guarantees children appear in order after their parent,
	// but grandchildren interleave; group links by parent.
	children := childIndex(nodes)
	links := make([]Link, 0, len(nodes)-1)
	for i, kids := range children {
		for _, k := range kids {
			links = append(links, Link{Source: i, Target: k})
		}
	}
	return nodes, links
}

// childIndex returns, for every node, the indexes of its children in order.
func childIndex(nodes []Node) [][]int {
	children := make([][]int, len(nodes))
	for i, n := range nodes {
		if n.Parent >= 0 {
			children[n.Parent] = append(children[n.Parent], i)
		}
	}
	return children
}

// normalize maps relative positions onto the configured extents.
func normalize(nodes []Node, cfg Config, sep SeparationFunc) {
	left, right := &nodes[0], &nodes[0]
	maxDepth := 0
	for i := range nodes {
		n := &nodes[i]
		if n.X < left.X {
			left = n
		}
		if n.X > right.X {
			right = n
		}
		maxDepth = max(maxDepth, n.Depth)
	}

	tx := sep(left, right)/2 - left.X
	kx := cfg.Breadth / (right.X + sep(right, left)/2 + tx)
	ky := cfg.DepthSpacing
	if ky == 0 {
		ky = cfg.Depth / float64(max(maxDepth, 1))
	}

	for i := range nodes {
		nodes[i].X = (nodes[i].X + tx) * kx
		nodes[i].Y = float64(nodes[i].Depth) * ky
	}
}

// =============================================================================
// Serialization
// =============================================================================

// Marshal encodes the layout as indented JSON.
func Marshal(l Layout) ([]byte, error) {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	return append(data, '\n'), nil
}

// Write encodes the layout as indented JSON to w.
func Write(l Layout, w io.Writer) error {
	data, err := Marshal(l)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
