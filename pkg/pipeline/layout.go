package pipeline

import (
	"github.com/matzehuels/localitree/pkg/layout"
	"github.com/matzehuels/localitree/pkg/tree"
)

// =============================================================================
// Layout Generation
// =============================================================================

// Prepare returns a copy of root with the collapse options applied. The
// loaded tree itself is never modified.
func Prepare(root *tree.Node, opts Options) *tree.Node {
	work := tree.Clone(root)
	if opts.Expand {
		tree.ExpandAll(work)
	}
	if opts.CollapseDepth > 0 {
		tree.CollapseDepth(work, opts.CollapseDepth)
	}
	for _, p := range opts.Collapse {
		if n, ok := tree.Find(work, tree.ParsePath(p)); ok && n.HasChildren() {
			n.Collapsed = true
		} else if opts.Logger != nil {
			opts.Logger.Warn("cannot collapse node", "path", p)
		}
	}
	return work
}

// GenerateLayout computes node positions for the visible part of root.
func GenerateLayout(root *tree.Node, opts Options) layout.Layout {
	return layout.Compute(root, opts.LayoutConfig())
}
