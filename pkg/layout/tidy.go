package layout

// wnode carries the Buchheim/Walker bookkeeping for one visible node.
type wnode struct {
	idx      int // index into the flattened nodes, -1 for the sentinel
	parent   *wnode
	children []*wnode
	i        int // position among siblings

	prelim   float64
	mod      float64
	change   float64
	shift    float64
	thread   *wnode
	ancestor *wnode
	// defAncestor is the default ancestor used while apportioning this
	// node's children.
	defAncestor *wnode
}

// wrap builds the working tree under a sentinel parent and returns the root.
func wrap(nodes []Node) *wnode {
	ws := make([]*wnode, len(nodes))
	for i := range nodes {
		ws[i] = &wnode{idx: i}
		ws[i].ancestor = ws[i]
	}
	sentinel := &wnode{idx: -1, children: []*wnode{ws[0]}}
	ws[0].parent = sentinel
	for i, n := range nodes {
		if n.Parent < 0 {
			continue
		}
		p := ws[n.Parent]
		ws[i].parent = p
		ws[i].i = len(p.children)
		p.children = append(p.children, ws[i])
	}
	return ws[0]
}

// tidy assigns relative x positions (before normalization) to nodes.
func tidy(root *wnode, nodes []Node, sep SeparationFunc) {
	t := tidier{nodes: nodes, sep: sep}
	t.firstWalk(root)
	root.parent.mod = -root.prelim
	t.secondWalk(root)
}

type tidier struct {
	nodes []Node
	sep   SeparationFunc
}

func (t *tidier) separation(a, b *wnode) float64 {
	return t.sep(&t.nodes[a.idx], &t.nodes[b.idx])
}

// firstWalk computes preliminary positions bottom-up.
func (t *tidier) firstWalk(v *wnode) {
	for _, c := range v.children {
		t.firstWalk(c)
	}

	siblings := v.parent.children
	var w *wnode
	if v.i > 0 {
		w = siblings[v.i-1]
	}

	if n := len(v.children); n > 0 {
		executeShifts(v)
		midpoint := (v.children[0].prelim + v.children[n-1].prelim) / 2
		if w != nil {
			v.prelim = w.prelim + t.separation(v, w)
			v.mod = v.prelim - midpoint
		} else {
			v.prelim = midpoint
		}
	} else if w != nil {
		v.prelim = w.prelim + t.separation(v, w)
	}

	anc := v.parent.defAncestor
	if anc == nil {
		anc = siblings[0]
	}
	v.parent.defAncestor = t.apportion(v, w, anc)
}

// secondWalk accumulates modifiers top-down into final relative positions.
func (t *tidier) secondWalk(v *wnode) {
	t.nodes[v.idx].X = v.prelim + v.parent.mod
	v.mod += v.parent.mod
	for _, c := range v.children {
		t.secondWalk(c)
	}
}

// apportion resolves conflicts between v's subtree and its left siblings'
// subtrees by walking the contours and shifting v right where they overlap.
func (t *tidier) apportion(v, w, ancestor *wnode) *wnode {
	if w == nil {
		return ancestor
	}

	vip, vop := v, v
	vim := w
	vom := vip.parent.children[0]
	sip, sop := vip.mod, vop.mod
	sim, som := vim.mod, vom.mod

	for {
		vim = nextRight(vim)
		vip = nextLeft(vip)
		if vim == nil || vip == nil {
			break
		}
		vom = nextLeft(vom)
		vop = nextRight(vop)
		vop.ancestor = v

		shift := vim.prelim + sim - vip.prelim - sip + t.separation(vim, vip)
		if shift > 0 {
			moveSubtree(nextAncestor(vim, v, ancestor), v, shift)
			sip += shift
			sop += shift
		}
		sim += vim.mod
		sip += vip.mod
		som += vom.mod
		sop += vop.mod
	}

	if vim != nil && nextRight(vop) == nil {
		vop.thread = vim
		vop.mod += sim - sop
	}
	if vip != nil && nextLeft(vom) == nil {
		vom.thread = vip
		vom.mod += sip - som
		ancestor = v
	}
	return ancestor
}

func nextLeft(v *wnode) *wnode {
	if len(v.children) > 0 {
		return v.children[0]
	}
	return v.thread
}

func nextRight(v *wnode) *wnode {
	if n := len(v.children); n > 0 {
		return v.children[n-1]
	}
	return v.thread
}

func nextAncestor(vim, v, ancestor *wnode) *wnode {
	if vim.ancestor.parent == v.parent {
		return vim.ancestor
	}
	return ancestor
}

// moveSubtree shifts wp right and spreads the shift over the siblings
// between wm and wp.
func moveSubtree(wm, wp *wnode, shift float64) {
	change := shift / float64(wp.i-wm.i)
	wp.change -= change
	wp.shift += shift
	wm.change += change
	wp.prelim += shift
	wp.mod += shift
}

// executeShifts applies the shifts accumulated by moveSubtree to v's children.
func executeShifts(v *wnode) {
	var shift, change float64
	for i := len(v.children) - 1; i >= 0; i-- {
		w := v.children[i]
		w.prelim += shift
		w.mod += shift
		change += w.change
		shift += w.shift + change
	}
}
