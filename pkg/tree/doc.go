// Package tree defines the locality tree data model and its JSON format.
//
// # Overview
//
// A locality tree is a hierarchy of named nodes, each carrying a numeric
// value (a usage percentage in the 0–100 range for trees produced by the
// filtering engine). The value drives both the circle radius and the fill
// color when the tree is rendered.
//
// # JSON Format
//
// The source document is a JSON array whose first element is the root:
//
//	[
//	  {"name": "root", "value": 100, "children": [
//	    {"name": "0011", "value": 62.5, "children": null},
//	    {"name": "1100", "value": 37.5}
//	  ]}
//	]
//
// Elements after the first are ignored. A missing value decodes to 0 and a
// missing or null children list marks a leaf.
//
// # Collapse State
//
// Nodes can be collapsed, hiding their children from layout and rendering
// while keeping them in the model. The state round-trips through JSON via
// the optional "collapsed" field.
//
//	root, err := tree.ReadFile("locality.json")
//	tree.CollapseDepth(root, 2)
//	tree.WalkVisible(root, func(n *tree.Node, depth int) bool { ... })
package tree
