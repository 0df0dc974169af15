package bundler

import (
	"encoding/json"
	"fmt"

	"github.com/Warbo/python-decompiler/pkg/ast"
	"github.com/Warbo/python-decompiler/pkg/common"
)

// EncodeTree converts a node to the JSON form of its term view, the same
// shape the JSON printer writes.
func EncodeTree(n ast.Node) (string, error) {
	if n == nil {
		return "", fmt.Errorf("cannot encode a missing node")
	}
	data, err := json.Marshal(ast.ToTerm(n))
	if err != nil {
		return "", fmt.Errorf("failed to serialize %s node: %w", n.Tag(), err)
	}
	return string(data), nil
}

// DecodeTree is the inverse of EncodeTree.
func DecodeTree(data string) (ast.Node, error) {
	var term common.Node
	if err := json.Unmarshal([]byte(data), &term); err != nil {
		return nil, fmt.Errorf("failed to parse stored tree: %w", err)
	}
	return ast.FromTerm(&term)
}

// findIdentifierReferences collects the distinct identifiers that n reads,
// in the order they first appear.
func findIdentifierReferences(n ast.Node) []string {
	seen := make(map[string]bool)
	var references []string
	ast.Walk(n, func(node ast.Node) bool {
		if name, ok := node.(*ast.Name); ok && !seen[name.Name] {
			seen[name.Name] = true
			references = append(references, name.Name)
		}
		return true
	})
	return references
}

// Tree decodes the stored desugared statement.
func (u *Unit) Tree() (ast.Node, error) {
	return DecodeTree(u.Core)
}
