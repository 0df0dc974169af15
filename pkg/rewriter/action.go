package rewriter

import "github.com/Warbo/python-decompiler/pkg/ast"

// NodeAction is a data-driven transform action, built from an ActionConfig.
type NodeAction interface {
	Apply(c Ctx[ast.Node], n ast.Node) (ast.Node, error)
}

// fieldNodes transforms the named field of n. A list field contributes all
// of its elements, an absent optional contributes a None constant.
func fieldNodes(c Ctx[ast.Node], n ast.Node, name string) ([]ast.Node, error) {
	f, ok := ast.FieldOf(n, name)
	if !ok {
		return nil, c.Fail(UnmatchedShape, "", "%s has no field %q", n.Tag(), name)
	}
	switch f.Kind {
	case ast.LeafField:
		return nil, c.Fail(UnmatchedShape, "", "field %q of %s is not a node", name, n.Tag())
	case ast.OptionalField:
		if len(f.Nodes) == 0 {
			return []ast.Node{ast.NoneConst()}, nil
		}
		child, err := c.Child(name, f.Nodes[0])
		if err != nil {
			return nil, err
		}
		return []ast.Node{child}, nil
	case ast.ListField:
		out := make([]ast.Node, 0, len(f.Nodes))
		for i, item := range f.Nodes {
			child, err := c.Item(name, i, item)
			if err != nil {
				return nil, err
			}
			out = append(out, child)
		}
		return out, nil
	}
	if len(f.Nodes) == 0 {
		return nil, c.Fail(UnmatchedShape, "", "%s.%s is missing", n.Tag(), name)
	}
	child, err := c.Child(name, f.Nodes[0])
	if err != nil {
		return nil, err
	}
	return []ast.Node{child}, nil
}

func singleField(c Ctx[ast.Node], n ast.Node, name string) (ast.Node, error) {
	nodes, err := fieldNodes(c, n, name)
	if err != nil {
		return nil, err
	}
	if len(nodes) != 1 {
		return nil, c.Fail(ArityMismatch, "", "field %q holds %d nodes, expected one", name, len(nodes))
	}
	return nodes[0], nil
}

func collectArgs(c Ctx[ast.Node], n ast.Node, names []string) ([]ast.Node, error) {
	var args []ast.Node
	for _, name := range names {
		nodes, err := fieldNodes(c, n, name)
		if err != nil {
			return nil, err
		}
		args = append(args, nodes...)
	}
	return args, nil
}

////////////////////////////////////////////////////////////////////////////////
/// MethodAction
////////////////////////////////////////////////////////////////////////////////

// MethodAction rewrites a node into `receiver.name(args...)`, optionally
// coercing the receiver first, as in `bool(x).__lognot__()`.
type MethodAction struct {
	Receiver string
	Name     string
	Args     []string
	Coerce   string
}

func (a *MethodAction) Apply(c Ctx[ast.Node], n ast.Node) (ast.Node, error) {
	recv, err := singleField(c, n, a.Receiver)
	if err != nil {
		return nil, err
	}
	args, err := collectArgs(c, n, a.Args)
	if err != nil {
		return nil, err
	}
	if a.Coerce != "" {
		recv = ast.Call(ast.N(a.Coerce), recv)
	}
	return ast.Method(recv, a.Name, args...), nil
}

////////////////////////////////////////////////////////////////////////////////
/// FoldMethodAction
////////////////////////////////////////////////////////////////////////////////

// FoldMethodAction rewrites an n-ary node left to right:
// `a & b & c` becomes `a.__and__(b).__and__(c)`.
type FoldMethodAction struct {
	List string
	Name string
}

func (a *FoldMethodAction) Apply(c Ctx[ast.Node], n ast.Node) (ast.Node, error) {
	items, err := fieldNodes(c, n, a.List)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, c.Fail(ArityMismatch, "", "cannot fold an empty %s", a.List)
	}
	acc := items[0]
	for _, item := range items[1:] {
		acc = ast.Method(acc, a.Name, item)
	}
	return acc, nil
}

////////////////////////////////////////////////////////////////////////////////
/// CallAction
////////////////////////////////////////////////////////////////////////////////

// CallAction rewrites a node into `func(args...)`.
type CallAction struct {
	Func string
	Args []string
}

func (a *CallAction) Apply(c Ctx[ast.Node], n ast.Node) (ast.Node, error) {
	args, err := collectArgs(c, n, a.Args)
	if err != nil {
		return nil, err
	}
	return ast.Call(ast.N(a.Func), args...), nil
}

////////////////////////////////////////////////////////////////////////////////
/// ReplaceByChildAction
////////////////////////////////////////////////////////////////////////////////

type ReplaceByChildAction struct {
	Field string
}

func (a *ReplaceByChildAction) Apply(c Ctx[ast.Node], n ast.Node) (ast.Node, error) {
	return singleField(c, n, a.Field)
}

////////////////////////////////////////////////////////////////////////////////
/// FailAction
////////////////////////////////////////////////////////////////////////////////

type FailAction struct {
	Message string
}

func (a *FailAction) Apply(c Ctx[ast.Node], n ast.Node) (ast.Node, error) {
	return nil, c.Fail(UnmatchedShape, "", "%s", a.Message)
}

// asAction adapts a NodeAction to the engine's Action type.
func asAction(a NodeAction) Action[ast.Node] {
	return func(c Ctx[ast.Node], n ast.Node) (ast.Node, error) {
		return a.Apply(c, n)
	}
}

