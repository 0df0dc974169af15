package rewriter

import "github.com/Warbo/python-decompiler/pkg/ast"

// Slice is a run of elements of a list field, remembering where it starts so
// that errors can name the element's position.
type Slice struct {
	Field  string
	Offset int
	Nodes  []ast.Node
}

// Apply applies the engine to the k-th node of the slice.
func Apply[R any](c Ctx[R], s Slice, k int) (R, error) {
	return c.Item(s.Field, s.Offset+k, s.Nodes[k])
}

// ListAlternative handles a list whose remaining length satisfies Arity by
// consuming its first Take elements. The rest of the list is folded first
// and its result handed to Action as tail; hasTail is false when the
// alternative consumed everything.
type ListAlternative[R, T any] struct {
	Name   string
	Arity  Count
	Guards []func(items []ast.Node) bool
	Take   int
	Action func(c Ctx[R], head Slice, tail T, hasTail bool) (T, error)
}

// ListRule consumes a list field element by element. Every element is
// consumed exactly once, or the rule fails with ArityMismatch.
type ListRule[R, T any] struct {
	Name         string
	Alternatives []*ListAlternative[R, T]
}

func (lr *ListRule[R, T]) Apply(c Ctx[R], field string, items []ast.Node) (T, error) {
	return lr.fold(c, Slice{Field: field, Nodes: items})
}

// ApplySlice is Apply for a run of a list field that does not start at its
// first element.
func (lr *ListRule[R, T]) ApplySlice(c Ctx[R], s Slice) (T, error) {
	return lr.fold(c, s)
}

func (lr *ListRule[R, T]) fold(c Ctx[R], s Slice) (T, error) {
	var zero T
	remaining := len(s.Nodes)
	for _, alt := range lr.Alternatives {
		if !alt.Arity.Allows(remaining) || !listGuardsPass(alt.Guards, s.Nodes) {
			continue
		}
		if alt.Take > remaining || (alt.Take == 0 && remaining > 0) || alt.Take < 0 {
			return zero, c.Fail(ArityMismatch, alt.Name, "list rule %s would consume %d of %d remaining elements of %s", lr.Name, alt.Take, remaining, s.Field)
		}
		head := Slice{Field: s.Field, Offset: s.Offset, Nodes: s.Nodes[:alt.Take]}
		if alt.Take == remaining {
			return alt.Action(c, head, zero, false)
		}
		tail, err := lr.fold(c, Slice{Field: s.Field, Offset: s.Offset + alt.Take, Nodes: s.Nodes[alt.Take:]})
		if err != nil {
			return zero, err
		}
		return alt.Action(c, head, tail, true)
	}
	return zero, c.Fail(ArityMismatch, "", "list rule %s has no alternative for %d remaining elements of %s", lr.Name, remaining, s.Field)
}

func listGuardsPass(guards []func([]ast.Node) bool, items []ast.Node) bool {
	for _, guard := range guards {
		if !guard(items) {
			return false
		}
	}
	return true
}
