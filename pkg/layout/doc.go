// Package layout computes tidy tree positions for locality trees.
//
// # Algorithm
//
// [Compute] implements the Reingold–Tilford tidy tree in its linear-time
// Buchheim/Walker form, with the same conventions as the classic d3 v3
// tree layout:
//
//   - Siblings are separated by 1 unit, cousins by 2 ([DefaultSeparation]).
//   - The breadth axis (x) is normalized so the leftmost and rightmost nodes,
//     padded by half a separation, span exactly [Config.Breadth].
//   - The depth axis (y) is depth * [Config.DepthSpacing]. With a spacing of
//     0 it falls back to depth * Depth / maxDepth.
//
// Children of collapsed nodes are not laid out.
//
// # Output
//
// [Layout.Nodes] holds the visible nodes in pre-order; [Layout.Links] holds
// one link per visible parent→child edge, ordered by parent then child.
//
//	l := layout.Compute(root, layout.Config{Breadth: 4780, DepthSpacing: 100})
//	for _, n := range l.Nodes {
//	    fmt.Println(n.Name, n.X, n.Y)
//	}
package layout
