package desugar

import (
	"testing"

	"github.com/Warbo/python-decompiler/pkg/ast"
)

// A small evaluator for desugared trees. It knows just enough of the
// runtime protocol (truth hooks, comparisons, item access, integer
// arithmetic) to count how often each operand is evaluated, and enough of
// the scoping rules to tell whether a name is visible where it is read.

type builtin func(args []any) any

// frame is the locals of one lambda call, seen by lambdas nested in it.
type frame struct {
	vars map[string]any
	next *frame
}

type closure struct {
	lambda   *ast.Lambda
	env      *frame
	defaults []any
}

// namespace is the value of a class statement.
type namespace struct {
	vars map[string]any
}

type bound struct {
	recv any
	name string
}

type list struct {
	items []int64
}

type evaluator struct {
	t     *testing.T
	env   map[string]any
	calls map[string]int

	// locals is nil at module level, where env holds the bindings.
	locals map[string]any
	class  bool
	chain  *frame
}

func newEvaluator(t *testing.T) *evaluator {
	ev := &evaluator{t: t, env: map[string]any{"__name__": "__main__"}, calls: map[string]int{}}
	ev.env["bool"] = builtin(func(args []any) any { return truthy(args[0]) })
	ev.env["locals"] = builtin(func(args []any) any {
		if ev.locals == nil {
			return ev.env
		}
		return ev.locals
	})
	ev.env["globals"] = builtin(func(args []any) any { return ev.env })
	// Only names are evaluated: eval(name, globals, locals).
	ev.env["eval"] = builtin(func(args []any) any {
		name := args[0].(string)
		for _, ns := range []any{args[2], args[1]} {
			if v, ok := ns.(map[string]any)[name]; ok {
				return v
			}
		}
		ev.t.Fatalf("eval: unbound name %s", name)
		return nil
	})
	return ev
}

func (ev *evaluator) bindings() map[string]any {
	if ev.locals == nil {
		return ev.env
	}
	return ev.locals
}

func (ev *evaluator) lookup(name string) (any, bool) {
	if v, ok := ev.locals[name]; ok {
		return v, true
	}
	for f := ev.chain; f != nil; f = f.next {
		if v, ok := f.vars[name]; ok {
			return v, true
		}
	}
	v, ok := ev.env[name]
	return v, ok
}

// enter runs body with the given locals and enclosing frames.
func (ev *evaluator) enter(locals map[string]any, class bool, chain *frame, body func()) {
	saved, savedClass, savedChain := ev.locals, ev.class, ev.chain
	ev.locals, ev.class, ev.chain = locals, class, chain
	defer func() { ev.locals, ev.class, ev.chain = saved, savedClass, savedChain }()
	body()
}

// operand binds a zero-argument function name that records each call and
// returns value.
func (ev *evaluator) operand(name string, value any) {
	ev.env[name] = builtin(func(args []any) any {
		ev.calls[name]++
		return value
	})
}

func truthy(v any) bool {
	switch v := v.(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case nil:
		return false
	}
	return true
}

func (ev *evaluator) exec(n ast.Node) {
	switch n := n.(type) {
	case *ast.Module:
		ev.exec(n.Body)
	case *ast.Stmt:
		for _, s := range n.Nodes {
			ev.exec(s)
		}
	case *ast.Discard:
		ev.eval(n.Expr)
	case *ast.Assign:
		v := ev.eval(n.Expr)
		for _, target := range n.Targets {
			switch target := target.(type) {
			case *ast.AssName:
				ev.bindings()[target.Name] = v
			case *ast.AssAttr:
				obj, ok := ev.eval(target.Expr).(*namespace)
				if !ok {
					ev.t.Fatalf("evaluator cannot set attributes of %s", target.Expr.Tag())
				}
				obj.vars[target.Attr] = v
			default:
				ev.t.Fatalf("evaluator cannot assign to %s", target.Tag())
			}
		}
	case *ast.Delete:
		for _, target := range n.Targets {
			name, ok := target.(*ast.AssName)
			if !ok {
				ev.t.Fatalf("evaluator cannot delete %s", target.Tag())
			}
			if _, ok := ev.bindings()[name.Name]; !ok {
				ev.t.Fatalf("cannot delete unbound name %s", name.Name)
			}
			delete(ev.bindings(), name.Name)
		}
	case *ast.Class:
		ns := &namespace{vars: map[string]any{}}
		ev.enter(ns.vars, true, ev.chain, func() { ev.exec(n.Code) })
		ev.bindings()[n.Name] = ns
	default:
		ev.t.Fatalf("evaluator cannot execute %s", n.Tag())
	}
}

func (ev *evaluator) eval(n ast.Node) any {
	switch n := n.(type) {
	case *ast.Name:
		v, ok := ev.lookup(n.Name)
		if !ok {
			ev.t.Fatalf("unbound name %s", n.Name)
		}
		return v
	case *ast.Const:
		switch n.Value.Kind {
		case ast.IntLiteral:
			return n.Value.Int.Int64()
		case ast.BoolLiteral:
			return n.Value.Bool
		case ast.StrLiteral:
			return n.Value.Str
		}
		return nil
	case *ast.Lambda:
		// A lambda sees the lambda it was made in, never a class body.
		env := ev.chain
		if ev.locals != nil && !ev.class {
			env = &frame{vars: ev.locals, next: ev.chain}
		}
		c := closure{lambda: n, env: env}
		for _, d := range n.Defaults {
			c.defaults = append(c.defaults, ev.eval(d))
		}
		return c
	case *ast.Tuple:
		out := make([]any, len(n.Nodes))
		for i, item := range n.Nodes {
			out[i] = ev.eval(item)
		}
		return out
	case *ast.Getattr:
		recv := ev.eval(n.Expr)
		if obj, ok := recv.(*namespace); ok {
			return obj.vars[n.Attr]
		}
		return bound{recv: recv, name: n.Attr}
	case *ast.CallFunc:
		f := ev.eval(n.Func)
		args := make([]any, len(n.Args))
		for i, arg := range n.Args {
			args[i] = ev.eval(arg)
		}
		return ev.call(f, args)
	}
	ev.t.Fatalf("evaluator cannot evaluate %s", n.Tag())
	return nil
}

func (ev *evaluator) call(f any, args []any) any {
	switch f := f.(type) {
	case builtin:
		return f(args)
	case closure:
		locals := map[string]any{}
		firstDefault := len(f.lambda.Argnames) - len(f.defaults)
		for i, name := range f.lambda.Argnames {
			if i < len(args) {
				locals[name] = args[i]
			} else {
				locals[name] = f.defaults[i-firstDefault]
			}
		}
		var v any
		ev.enter(locals, false, f.env, func() { v = ev.eval(f.lambda.Code) })
		return v
	case bound:
		return ev.method(f.recv, f.name, args)
	}
	ev.t.Fatalf("cannot call %#v", f)
	return nil
}

func (ev *evaluator) force(thunk any) any {
	return ev.call(thunk, nil)
}

func (ev *evaluator) method(recv any, name string, args []any) any {
	switch r := recv.(type) {
	case bool:
		switch name {
		case "__logand__":
			if !r {
				return false
			}
			return truthy(ev.force(args[0]))
		case "__logor__":
			if r {
				return true
			}
			return truthy(ev.force(args[0]))
		case "__lognot__":
			return !r
		case "__if__":
			if r {
				return ev.force(args[0])
			}
			return ev.force(args[1])
		}
	case int64:
		switch name {
		case "__add__":
			return r + args[0].(int64)
		case "__sub__":
			return r - args[0].(int64)
		case "__lt__", "__gt__", "__eq__", "__ne__", "__le__", "__ge__":
			ok := compareInts(name, r, args[0].(int64))
			prev := args[0].(int64)
			for _, extra := range args[1:] {
				if !ok {
					return false
				}
				link := extra.([]any)
				next := ev.force(link[1]).(int64)
				ok = compareInts(link[0].(string), prev, next)
				prev = next
			}
			return ok
		}
	case *list:
		switch name {
		case "__getitem__":
			return r.items[args[0].(int64)]
		case "__setitem__":
			r.items[args[0].(int64)] = args[1].(int64)
			return nil
		}
	}
	ev.t.Fatalf("no method %s on %#v", name, recv)
	return nil
}

func compareInts(name string, a, b int64) bool {
	switch name {
	case "__lt__":
		return a < b
	case "__gt__":
		return a > b
	case "__eq__":
		return a == b
	case "__ne__":
		return a != b
	case "__le__":
		return a <= b
	}
	return a >= b
}
