// Package nodelink renders laid-out locality trees as node-link diagrams.
//
// # Overview
//
// Every node becomes a circle whose radius equals its value and whose fill
// comes from a threshold [Palette]. Nodes with a value above 20 get a text
// label, placed above the circle when the node has (visible or collapsed)
// children and below it otherwise. Parent→child edges are cubic "diagonal"
// curves that leave the parent vertically and enter the child vertically.
//
// # Usage
//
//	l := layout.Compute(root, canvas.LayoutConfig(layout.DefaultDepthSpacing))
//	svg := nodelink.RenderSVG(l, nodelink.WithCanvas(canvas))
//	page := nodelink.RenderHTML(l, nodelink.WithCanvas(canvas))
//
// # Canvas
//
// [DefaultCanvas] is the oversized drawing area of the locality
// page: margins of 200/120/20/120 pixels around a 9,599,760 × 4,780 pixel
// plot. The tree's breadth axis is sized to the plot height and its depth
// axis to the plot width, then depth is flattened to a fixed 100 pixels per
// level by the layout.
//
// # Graphviz
//
// [ToDOT] and [RenderDOTSVG] offer an alternative engine that lets Graphviz
// place the nodes. This package uses [github.com/goccy/go-graphviz] for
// in-process rendering.
package nodelink
