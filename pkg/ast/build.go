package ast

import "github.com/Warbo/python-decompiler/pkg/common"

// Shorthand constructors used by rule actions and tests.

func N(name string) *Name {
	return &Name{Name: name}
}

func Attr(expr Node, attr string) *Getattr {
	return &Getattr{Expr: expr, Attr: attr}
}

func Call(fn Node, args ...Node) *CallFunc {
	return &CallFunc{Func: fn, Args: args}
}

// Method builds `recv.method(args...)`.
func Method(recv Node, method string, args ...Node) *CallFunc {
	return Call(Attr(recv, method), args...)
}

func Str(s string) *Const {
	return &Const{Value: StrValue(s)}
}

func Int(i int64) *Const {
	return &Const{Value: IntValue(i)}
}

func Float(f float64) *Const {
	return &Const{Value: FloatValue(f)}
}

func NoneConst() *Const {
	return &Const{Value: NoneValue()}
}

func Bool(b bool) *Const {
	return &Const{Value: BoolValue(b)}
}

// Thunk wraps body in a parameterless lambda, deferring its evaluation to
// whoever calls it.
func Thunk(body Node) *Lambda {
	return &Lambda{Code: body}
}

func Block(stmts ...Node) *Stmt {
	return &Stmt{Nodes: stmts}
}

// AssignName builds `name = expr`.
func AssignName(name string, expr Node) *Assign {
	return &Assign{Targets: []Node{&AssName{Name: name}}, Expr: expr}
}

func Some(n Node) common.Option[Node] {
	return common.Some(n)
}

func Absent() common.Option[Node] {
	return common.None[Node]()
}

// Positional returns the parameter names that are neither varargs nor
// kwargs.
func Positional(argnames []string, varargs, kwargs bool) []string {
	n := len(argnames)
	if varargs {
		n--
	}
	if kwargs {
		n--
	}
	if n < 0 {
		return nil
	}
	return argnames[:n]
}
