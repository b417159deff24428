package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/gjson"

	"github.com/matzehuels/localitree/pkg/errors"
)

// =============================================================================
// Decoding
// =============================================================================

// Decode parses a locality document and returns its root node.
//
// The document must be a JSON array; its first element is the root.
// Returns an INVALID_TREE error for malformed JSON, a non-array document or
// a null child, and an EMPTY_TREE error for an empty array.
func Decode(data []byte) (*Node, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New(errors.ErrCodeInvalidTree, "document is not valid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsArray() {
		return nil, errors.New(errors.ErrCodeInvalidTree, "document must be a JSON array, got %s", doc.Type)
	}
	first := doc.Get("0")
	if !first.Exists() {
		return nil, errors.New(errors.ErrCodeEmptyTree, "document contains no root node")
	}
	if !first.IsObject() {
		return nil, errors.New(errors.ErrCodeInvalidTree, "root must be a JSON object, got %s", first.Type)
	}

	var root Node
	if err := json.Unmarshal([]byte(first.Raw), &root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "decode root")
	}
	if err := Validate(&root); err != nil {
		return nil, err
	}
	return &root, nil
}

// Validate reports an INVALID_TREE error when a children list holds a
// null entry, and an EMPTY_TREE error for a nil root.
func Validate(root *Node) error {
	if root == nil {
		return errors.New(errors.ErrCodeEmptyTree, "no root node")
	}
	return validateChildren(root, root.Name)
}

func validateChildren(n *Node, path string) error {
	for i, c := range n.Children {
		if c == nil {
			return errors.New(errors.ErrCodeInvalidTree, "%s: child %d is null", path, i)
		}
		if err := validateChildren(c, path+"/"+c.Name); err != nil {
			return err
		}
	}
	return nil
}

// Read decodes a locality document from r.
// Use ReadFile for files or pass bytes.NewReader for in-memory data.
func Read(r io.Reader) (*Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Decode(data)
}

// ReadFile reads a locality document from disk.
func ReadFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// =============================================================================
// Encoding
// =============================================================================

// Marshal encodes root as a locality document (a one-element array).
func Marshal(root *Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(root, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes root as an indented locality document to w.
func Write(root *Node, w io.Writer) error {
	if root == nil {
		return errors.New(errors.ErrCodeEmptyTree, "no root node to encode")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode([]*Node{root}); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes root as a locality document to path with 0644 permissions.
func WriteFile(root *Node, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(root, f)
}
