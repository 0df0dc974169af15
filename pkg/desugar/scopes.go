package desugar

import (
	"github.com/Warbo/python-decompiler/pkg/ast"
	"github.com/Warbo/python-decompiler/pkg/rewriter"
)

// Builtins the class namespace lookup is spelled with.
const (
	builtinLocals  = "locals"
	builtinGlobals = "globals"
	builtinEval    = "eval"
)

// classBody rewrites the thunks made in one class body. A lambda cannot see
// the names a class binds, so a thunk that reads one takes the class
// namespace as a default argument and looks such names up through it,
// falling back to globals and builtins as the class body would:
// `y = a or x` becomes
// `y = bool(a).__logor__(lambda _t0=locals(): eval('x', globals(), _t0))`.
type classBody struct {
	s     *session
	bound map[string]bool
}

// classThunks applies the rewrite to body, the desugared body of class.
// Nested classes were rewritten when they were desugared, and function
// bodies are not class scope, so neither is entered.
func (d *Desugarer) classThunks(c ctx, class ast.Node, body *ast.Stmt) (*ast.Stmt, error) {
	s := sessionOf(c)
	scope, ok := s.scope(class)
	if !ok || len(scope.Identifiers) == 0 {
		return body, nil
	}
	cb := &classBody{s: s, bound: make(map[string]bool, len(scope.Identifiers))}
	for name := range scope.Identifiers {
		cb.bound[name] = true
	}
	out, err := cb.visit(body)
	if err != nil {
		return nil, err
	}
	stmt, ok := out.(*ast.Stmt)
	if !ok {
		return nil, c.Fail(rewriter.UnmatchedShape, "class namespace", "class body rewritten to %s", out.Tag())
	}
	return stmt, nil
}

func (cb *classBody) visit(n ast.Node) (ast.Node, error) {
	switch n := n.(type) {
	case *ast.Lambda:
		if cb.s.isThunk(n) {
			return cb.thunk(n)
		}
		// Only the defaults of a lambda of the program's own run in the
		// class body.
		return cb.fields(n, cb.visit, "defaults")
	case *ast.Function:
		return cb.fields(n, cb.visit, "decorators", "defaults")
	case *ast.Class:
		return cb.fields(n, cb.visit, "decorators", "bases")
	}
	return ast.MapChildren(n, func(field string, index int, child ast.Node) (ast.Node, error) {
		return cb.visit(child)
	})
}

// fields maps f over the named fields of n and copies the rest.
func (cb *classBody) fields(n ast.Node, f func(ast.Node) (ast.Node, error), names ...string) (ast.Node, error) {
	return ast.MapChildren(n, func(field string, index int, child ast.Node) (ast.Node, error) {
		for _, name := range names {
			if field == name {
				return f(child)
			}
		}
		return child, nil
	})
}

func (cb *classBody) thunk(l *ast.Lambda) (ast.Node, error) {
	tv := cb.s.temps.AllocateTemporaryVariable()
	defer cb.s.temps.FreeTemporaryVariable(tv)
	lookup := &namespaceLookup{classBody: cb, namespace: tv.Name}
	code, err := lookup.rewrite(l.Code)
	if err != nil || !lookup.changed {
		return l, err
	}
	return &ast.Lambda{
		Argnames: []string{tv.Name},
		Defaults: []ast.Node{ast.Call(ast.N(builtinLocals))},
		Code:     code,
	}, nil
}

// namespaceLookup rewrites the reads of class-bound names inside one
// outermost thunk. Thunks nested in it close over its namespace argument.
type namespaceLookup struct {
	*classBody
	namespace string
	changed   bool
}

func (nl *namespaceLookup) rewrite(n ast.Node) (ast.Node, error) {
	switch n := n.(type) {
	case *ast.Name:
		if !nl.bound[n.Name] {
			return n, nil
		}
		nl.changed = true
		return ast.Call(ast.N(builtinEval), ast.Str(n.Name), ast.Call(ast.N(builtinGlobals)), ast.N(nl.namespace)), nil
	case *ast.Lambda:
		if !nl.s.isThunk(n) {
			return nl.fields(n, nl.rewrite, "defaults")
		}
	}
	return ast.MapChildren(n, func(field string, index int, child ast.Node) (ast.Node, error) {
		return nl.rewrite(child)
	})
}
