package tree

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/localitree/pkg/errors"
)

const sampleDoc = `[
  {"name": "root", "value": 100, "children": [
    {"name": "0011", "value": 62.5, "children": null},
    {"name": "1100", "value": 37.5}
  ]}
]`

func TestDecode(t *testing.T) {
	root, err := Decode([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if root.Name != "root" || root.Value != 100 {
		t.Errorf("root = %q/%v, want root/100", root.Name, root.Value)
	}
	if len(root.Children) != 2 {
		t.Fatalf("len(Children) = %d, want 2", len(root.Children))
	}
	if root.Children[0].Name != "0011" || root.Children[0].Value != 62.5 {
		t.Errorf("child[0] = %+v", root.Children[0])
	}
	if !root.Children[1].IsLeaf() {
		t.Error("child without children key should be a leaf")
	}
}

func TestDecodeFirstElementIsRoot(t *testing.T) {
	root, err := Decode([]byte(`[{"name":"first","value":1},{"name":"second","value":2}]`))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if root.Name != "first" {
		t.Errorf("root.Name = %q, want first", root.Name)
	}
}

func TestDecodeMissingValue(t *testing.T) {
	root, err := Decode([]byte(`[{"name":"bare"}]`))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if root.Value != 0 {
		t.Errorf("Value = %v, want 0", root.Value)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errors.Code
	}{
		{"malformed", `[{"name":`, errors.ErrCodeInvalidTree},
		{"object document", `{"name":"root"}`, errors.ErrCodeInvalidTree},
		{"empty array", `[]`, errors.ErrCodeEmptyTree},
		{"scalar root", `[42]`, errors.ErrCodeInvalidTree},
		{"wrong value type", `[{"name":"root","value":"high"}]`, errors.ErrCodeInvalidTree},
		{"null child", `[{"name":"r","value":50,"children":[null,{"name":"a","value":30}]}]`, errors.ErrCodeInvalidTree},
		{"nested null child", `[{"name":"r","children":[{"name":"a","children":[{"name":"b"},null]}]}]`, errors.ErrCodeInvalidTree},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			if err == nil {
				t.Fatal("Decode() expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), tt.code)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	root, err := Decode([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	root.Collapsed = true

	data, err := Marshal(root)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode(Marshal()) error: %v", err)
	}
	if !back.Collapsed {
		t.Error("collapse state lost in round trip")
	}
	if Count(back) != 3 {
		t.Errorf("Count() = %d, want 3", Count(back))
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locality.json")
	if err := os.WriteFile(path, []byte(sampleDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	root, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if root.Name != "root" {
		t.Errorf("root.Name = %q", root.Name)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ReadFile() on missing file should fail")
	}
}

func TestWriteNil(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(nil, &buf); !errors.Is(err, errors.ErrCodeEmptyTree) {
		t.Errorf("Write(nil) error = %v, want EMPTY_TREE", err)
	}
}
