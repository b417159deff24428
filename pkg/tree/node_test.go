package tree

import (
	"slices"
	"testing"
)

// sample builds:
//
//	root
//	├── a
//	│   ├── a1
//	│   └── a2
//	└── b
func sample() *Node {
	return &Node{Name: "root", Value: 100, Children: []*Node{
		{Name: "a", Value: 70, Children: []*Node{
			{Name: "a1", Value: 50},
			{Name: "a2", Value: 20},
		}},
		{Name: "b", Value: 30},
	}}
}

func names(root *Node, visible bool) []string {
	var out []string
	fn := func(n *Node, _ int) bool {
		out = append(out, n.Name)
		return true
	}
	if visible {
		WalkVisible(root, fn)
	} else {
		Walk(root, fn)
	}
	return out
}

func TestWalkPreOrder(t *testing.T) {
	got := names(sample(), false)
	want := []string{"root", "a", "a1", "a2", "b"}
	if !slices.Equal(got, want) {
		t.Errorf("Walk order = %v, want %v", got, want)
	}
}

func TestWalkVisibleSkipsCollapsed(t *testing.T) {
	root := sample()
	root.Children[0].Collapsed = true

	got := names(root, true)
	want := []string{"root", "a", "b"}
	if !slices.Equal(got, want) {
		t.Errorf("WalkVisible order = %v, want %v", got, want)
	}
	if Count(root) != 5 {
		t.Errorf("Count() = %d, want 5 (collapsed nodes still counted)", Count(root))
	}
}

func TestHeight(t *testing.T) {
	if h := Height(sample()); h != 2 {
		t.Errorf("Height() = %d, want 2", h)
	}
	if h := Height(&Node{Name: "solo"}); h != 0 {
		t.Errorf("Height(single) = %d, want 0", h)
	}
	if h := Height(nil); h != -1 {
		t.Errorf("Height(nil) = %d, want -1", h)
	}
}

func TestFind(t *testing.T) {
	root := sample()

	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{"root", "root", true},
		{"root/a/a2", "a2", true},
		{"/root/b/", "b", true},
		{"root/c", "", false},
		{"other/a", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			n, ok := Find(root, ParsePath(tt.path))
			if ok != tt.wantOK {
				t.Fatalf("Find(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if ok && n.Name != tt.want {
				t.Errorf("Find(%q) = %q, want %q", tt.path, n.Name, tt.want)
			}
		})
	}
}

func TestToggle(t *testing.T) {
	root := sample()
	if !root.Toggle() {
		t.Error("Toggle() on parent should collapse")
	}
	if root.Toggle() {
		t.Error("second Toggle() should expand")
	}

	leaf := root.Children[1]
	if leaf.Toggle() || leaf.Collapsed {
		t.Error("leaf must never be collapsed")
	}
}

func TestCollapseDepth(t *testing.T) {
	root := sample()
	CollapseDepth(root, 1)

	if root.Collapsed {
		t.Error("root should stay expanded")
	}
	if !root.Children[0].Collapsed {
		t.Error("a should be collapsed")
	}
	if root.Children[1].Collapsed {
		t.Error("leaf b should not be collapsed")
	}

	ExpandAll(root)
	if root.Children[0].Collapsed {
		t.Error("ExpandAll() left a collapsed")
	}
}

func TestClone(t *testing.T) {
	root := sample()
	cp := Clone(root)
	cp.Children[0].Collapsed = true
	cp.Children[0].Name = "changed"

	if root.Children[0].Collapsed || root.Children[0].Name != "a" {
		t.Error("Clone() shares nodes with the original")
	}
	if Clone(nil) != nil {
		t.Error("Clone(nil) should be nil")
	}
}
