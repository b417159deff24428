package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/localitree/pkg/layout"
	"github.com/matzehuels/localitree/pkg/tree"
)

var testCanvas = Canvas{
	Width:  800,
	Height: 400,
	Margin: Margin{Top: 20, Right: 10, Bottom: 20, Left: 10},
}

func render(t *testing.T, root *tree.Node, opts ...SVGOption) string {
	t.Helper()
	l := layout.Compute(root, testCanvas.LayoutConfig(layout.DefaultDepthSpacing))
	opts = append([]SVGOption{WithCanvas(testCanvas)}, opts...)
	return string(RenderSVG(l, opts...))
}

func TestRenderSVGSingleNode(t *testing.T) {
	svg := render(t, &tree.Node{Name: "root", Value: 50})

	if got := strings.Count(svg, "<circle"); got != 1 {
		t.Errorf("circles = %d, want 1", got)
	}
	if got := strings.Count(svg, "<path"); got != 0 {
		t.Errorf("paths = %d, want 0", got)
	}
	if !strings.Contains(svg, `<g class="node" transform="translate(200,0)">`) {
		t.Errorf("root not centered on breadth axis:\n%s", svg)
	}
}

func TestRenderSVGRootAndTwoChildren(t *testing.T) {
	root := &tree.Node{Name: "root", Value: 30, Children: []*tree.Node{
		{Name: "a", Value: 10},
		{Name: "b", Value: 10},
	}}
	svg := render(t, root)

	if got := strings.Count(svg, "<circle"); got != 3 {
		t.Errorf("circles = %d, want 3", got)
	}
	if got := strings.Count(svg, `class="link"`); got != 2 {
		t.Errorf("links = %d, want 2", got)
	}
	for _, d := range []string{"M200,0C200,50 100,50 100,100", "M200,0C200,50 300,50 300,100"} {
		if !strings.Contains(svg, `d="`+d+`"`) {
			t.Errorf("missing edge %q", d)
		}
	}
}

func TestRenderSVGEdgesBeforeNodes(t *testing.T) {
	root := &tree.Node{Name: "root", Value: 30, Children: []*tree.Node{{Name: "a"}}}
	svg := render(t, root)

	lastPath := strings.LastIndex(svg, "<path")
	firstNode := strings.Index(svg, `class="node"`)
	if lastPath < 0 || firstNode < 0 || lastPath > firstNode {
		t.Errorf("edges must precede nodes:\n%s", svg)
	}
}

func TestRenderSVGReversePreOrder(t *testing.T) {
	root := &tree.Node{Name: "root", Value: 90, Children: []*tree.Node{
		{Name: "a", Value: 90},
		{Name: "b", Value: 90},
	}}
	svg := render(t, root)

	ib := strings.Index(svg, ">b</text>")
	ia := strings.Index(svg, ">a</text>")
	ir := strings.Index(svg, ">root</text>")
	if !(ib < ia && ia < ir) {
		t.Errorf("node order b=%d a=%d root=%d, want b < a < root", ib, ia, ir)
	}
}

func TestRenderSVGNodeStyle(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		wantR     string
		wantFill  string
		wantLabel bool
	}{
		{"darkest", 85, "85", ColorDarkest, true},
		{"dark", 61, "61", ColorDark, true},
		{"medium", 50, "50", ColorMedium, true},
		{"light", 21, "21", ColorLight, true},
		{"boundary 20", 20, "20", ColorLightest, false},
		{"lightest", 15, "15", ColorLightest, false},
		{"fractional", 2.5, "2.5", ColorLightest, false},
		{"negative", -5, "0", ColorLightest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svg := render(t, &tree.Node{Name: "n", Value: tt.value})

			want := `<circle r="` + tt.wantR + `" fill="` + tt.wantFill + `"/>`
			if !strings.Contains(svg, want) {
				t.Errorf("missing %s in:\n%s", want, svg)
			}
			if got := strings.Contains(svg, "<text"); got != tt.wantLabel {
				t.Errorf("label present = %v, want %v", got, tt.wantLabel)
			}
		})
	}
}

func TestRenderSVGLabelOffset(t *testing.T) {
	root := &tree.Node{Name: "parent", Value: 50, Children: []*tree.Node{
		{Name: "leaf", Value: 50},
		{Name: "folded", Value: 50, Collapsed: true, Children: []*tree.Node{{Name: "hidden", Value: 50}}},
	}}
	svg := render(t, root)

	for _, want := range []string{
		`<text y="-18" dy=".35em" text-anchor="middle" fill-opacity="1">parent</text>`,
		`<text y="18" dy=".35em" text-anchor="middle" fill-opacity="1">leaf</text>`,
		`<text y="-18" dy=".35em" text-anchor="middle" fill-opacity="1">folded</text>`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("missing %s", want)
		}
	}
	if strings.Contains(svg, "hidden") {
		t.Error("children of collapsed nodes must not be drawn")
	}
}

func TestRenderSVGEscapesLabels(t *testing.T) {
	svg := render(t, &tree.Node{Name: `<a&b>`, Value: 50})
	if !strings.Contains(svg, "&lt;a&amp;b&gt;") {
		t.Errorf("label not escaped:\n%s", svg)
	}
}

func TestRenderSVGCanvas(t *testing.T) {
	svg := render(t, &tree.Node{Name: "root"})

	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 820 440" width="820" height="440">`) {
		t.Errorf("unexpected root element:\n%s", svg)
	}
	if !strings.Contains(svg, `<g transform="translate(10,20)">`) {
		t.Errorf("missing margin translation:\n%s", svg)
	}
}

func TestRenderSVGOptions(t *testing.T) {
	root := &tree.Node{Name: "root", Value: 50}

	if svg := render(t, root); !strings.Contains(svg, "<style>") {
		t.Error("style sheet should be embedded by default")
	}
	if svg := render(t, root, WithStyleSheet(false)); strings.Contains(svg, "<style>") {
		t.Error("WithStyleSheet(false) should omit the style sheet")
	}
	if svg := render(t, root, WithTitle("locality")); !strings.Contains(svg, "<title>locality</title>") {
		t.Error("WithTitle should add a title element")
	}

	mono := Palette{Fallback: "#000000"}
	if svg := render(t, root, WithPalette(mono)); !strings.Contains(svg, `fill="#000000"`) {
		t.Error("WithPalette should change node fill")
	}
	if svg := render(t, root, WithPalette(Palette{})); !strings.Contains(svg, `fill="`+ColorMedium+`"`) {
		t.Error("empty palette should keep the default")
	}
}

func TestRenderHTML(t *testing.T) {
	l := layout.Compute(&tree.Node{Name: "root", Value: 50}, testCanvas.LayoutConfig(0))
	page := string(RenderHTML(l, WithCanvas(testCanvas)))

	for _, want := range []string{"<!DOCTYPE html>", "<title>locality tree</title>", "<body>\n<svg ", "</svg>\n</body>"} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestDiagonal(t *testing.T) {
	tests := []struct {
		s, t Point
		want string
	}{
		{Point{0, 0}, Point{0, 100}, "M0,0C0,50 0,50 0,100"},
		{Point{200, 0}, Point{100, 100}, "M200,0C200,50 100,50 100,100"},
		{Point{10.5, 100}, Point{-3, 200}, "M10.5,100C10.5,150 -3,150 -3,200"},
	}

	for _, tt := range tests {
		if got := Diagonal(tt.s, tt.t); got != tt.want {
			t.Errorf("Diagonal(%v, %v) = %q, want %q", tt.s, tt.t, got, tt.want)
		}
	}
}

func TestPaletteColor(t *testing.T) {
	p := DefaultPalette()
	tests := []struct {
		v    float64
		want string
	}{
		{100, ColorDarkest},
		{80.5, ColorDarkest},
		{80, ColorDark},
		{60, ColorMedium},
		{40, ColorLight},
		{20, ColorLightest},
		{0, ColorLightest},
		{-10, ColorLightest},
	}
	for _, tt := range tests {
		if got := p.Color(tt.v); got != tt.want {
			t.Errorf("Color(%v) = %s, want %s", tt.v, got, tt.want)
		}
	}

	unsorted := Palette{
		Thresholds: []Threshold{{Above: 10, Color: "low"}, {Above: 50, Color: "high"}},
		Fallback:   "none",
	}
	if got := unsorted.Color(60); got != "high" {
		t.Errorf("unsorted Color(60) = %s, want high", got)
	}
}

func TestDefaultCanvas(t *testing.T) {
	c := DefaultCanvas()
	if c.OuterWidth() != 960*10000 {
		t.Errorf("OuterWidth = %v, want %v", c.OuterWidth(), 960*10000)
	}
	if c.OuterHeight() != 500*10 {
		t.Errorf("OuterHeight = %v, want %v", c.OuterHeight(), 500*10)
	}
	cfg := c.LayoutConfig(100)
	if cfg.Breadth != c.Height || cfg.Depth != c.Width {
		t.Errorf("LayoutConfig = %+v, want breadth=height depth=width", cfg)
	}
}

func TestToDOT(t *testing.T) {
	root := &tree.Node{Name: "root", Value: 90, Children: []*tree.Node{
		{Name: "a", Value: 10},
		{Name: "b", Value: 30},
	}}
	l := layout.Compute(root, testCanvas.LayoutConfig(layout.DefaultDepthSpacing))
	dot := ToDOT(l, Palette{})

	for _, want := range []string{
		`n0 [label="root", width=2.500, fillcolor="#E74C3C"];`,
		`n1 [label="", width=0.278, fillcolor="#FADBD8"];`,
		`n2 [label="b", width=0.833, fillcolor="#F5B7B1"];`,
		"n0 -> n1;",
		"n0 -> n2;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestDOTQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"root", `"root"`},
		{`say "hi"`, `"say \"hi\""`},
		{`C:\tree`, `"C:\\tree"`},
		{"zürich", `"zürich"`},
		{"a\tb", "\"a\tb\""},
	}
	for _, tt := range tests {
		if got := dotQuote(tt.in); got != tt.want {
			t.Errorf("dotQuote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	l := layout.Compute(&tree.Node{Name: "zürich \"01\"", Value: 50}, testCanvas.LayoutConfig(layout.DefaultDepthSpacing))
	if want := `n0 [label="zürich \"01\"", `; !strings.Contains(ToDOT(l, Palette{}), want) {
		t.Errorf("DOT label not escaped for graphviz, want %s", want)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 116.00" width="62" height="116"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}

	plain := []byte(`<svg></svg>`)
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("normalizeViewBox() changed svg without viewBox: %s", got)
	}
}
