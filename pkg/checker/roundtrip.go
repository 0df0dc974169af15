package checker

import (
	"fmt"
	"maps"

	"github.com/Warbo/python-decompiler/pkg/ast"
	"github.com/Warbo/python-decompiler/pkg/common"
	"github.com/Warbo/python-decompiler/pkg/rewriter"
)

// RenderFunc turns a node into source text at depth zero.
type RenderFunc func(n ast.Node) (string, error)

// ParseFunc reads text back as the kind of fragment a node with the given
// tag renders to. parser.ParseNode has this type.
type ParseFunc func(tag ast.Tag, text string) (ast.Node, error)

// RoundTrip renders n and reads the text back. Errors from render are
// returned as they are; text that fails to read back, or reads back as a
// different tree, is a RoundTripViolation located at the first difference.
func RoundTrip(n ast.Node, render RenderFunc, parse ParseFunc) error {
	text, err := render(n)
	if err != nil {
		return err
	}
	back, err := parse(n.Tag(), text)
	if err != nil {
		return violation(n, nil, "rendered text does not read back", text, err)
	}
	if path, differs := FirstDifference(n, back); differs {
		return violation(n, path, "rendered text reads back as a different tree", text, nil)
	}
	return nil
}

func violation(n ast.Node, path *common.Path, message, text string, err error) error {
	return &rewriter.Error{
		Kind:   rewriter.RoundTripViolation,
		Tag:    n.Tag(),
		Group:  "roundtrip",
		Path:   path,
		Detail: fmt.Sprintf("%s: %q", message, text),
		Err:    err,
	}
}

// FirstDifference finds the first place, in field order, where a and b
// disagree. It agrees with ast.Equal.
func FirstDifference(a, b ast.Node) (*common.Path, bool) {
	return firstDifference(a, b, nil)
}

func firstDifference(a, b ast.Node, path *common.Path) (*common.Path, bool) {
	if missing(a) || missing(b) {
		return path, missing(a) != missing(b)
	}
	if a.Tag() != b.Tag() || !maps.Equal(ast.LeafOptions(a), ast.LeafOptions(b)) {
		return path, true
	}
	parent := string(a.Tag())
	others := ast.Fields(b)
	for i, f := range ast.Fields(a) {
		if f.Kind == ast.LeafField {
			continue
		}
		g := others[i]
		if len(f.Nodes) != len(g.Nodes) {
			return path.Extend(parent, f.Name, -1), true
		}
		for j := range f.Nodes {
			position := -1
			if f.Kind == ast.ListField {
				position = j
			}
			if p, ok := firstDifference(f.Nodes[j], g.Nodes[j], path.Extend(parent, f.Name, position)); ok {
				return p, true
			}
		}
	}
	return nil, false
}
