package nodelink

import (
	"strconv"
	"strings"
)

// Point is a 2D position in plot coordinates.
type Point struct{ X, Y float64 }

// Diagonal returns the SVG path data for a cubic curve from s to t whose
// control points sit halfway along the y axis, so the curve leaves s and
// enters t vertically.
func Diagonal(s, t Point) string {
	m := (s.Y + t.Y) / 2
	var b strings.Builder
	b.WriteString("M")
	writePoint(&b, s.X, s.Y)
	b.WriteString("C")
	writePoint(&b, s.X, m)
	b.WriteString(" ")
	writePoint(&b, t.X, m)
	b.WriteString(" ")
	writePoint(&b, t.X, t.Y)
	return b.String()
}

func writePoint(b *strings.Builder, x, y float64) {
	b.WriteString(num(x))
	b.WriteString(",")
	b.WriteString(num(y))
}

// num formats a coordinate in its shortest exact form.
func num(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
