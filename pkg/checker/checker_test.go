package checker_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Warbo/python-decompiler/pkg/ast"
	"github.com/Warbo/python-decompiler/pkg/checker"
	"github.com/Warbo/python-decompiler/pkg/common"
	"github.com/Warbo/python-decompiler/pkg/parser"
	"github.com/Warbo/python-decompiler/pkg/render"
	"github.com/Warbo/python-decompiler/pkg/rewriter"
	"github.com/stretchr/testify/require"
)

func messages[T checker.Bug | checker.Issue](xs []T) []string {
	out := []string{}
	for _, x := range xs {
		switch x := any(x).(type) {
		case checker.Bug:
			out = append(out, x.Message)
		case checker.Issue:
			out = append(out, x.Message)
		}
	}
	return out
}

func module(stmts ...ast.Node) *ast.Module {
	return &ast.Module{Body: ast.Block(stmts...)}
}

func TestParsedSourceHasNoProblems(t *testing.T) {
	m, err := parser.ParseModule(`"""Doc."""
import os
from . import sibling
class C(object):
    def m(self, x, y=1, *rest, **kw):
        for i in x:
            if i:
                break
            elif y:
                continue
        while x:
            x -= 1
        try:
            yield x[0]
        except KeyError as e:
            raise ValueError(e) from e
        except:
            pass
        return lambda a: a
`)
	require.NoError(t, err)
	c := checker.NewChecker()
	require.True(t, c.Check(m), "bugs %v issues %v", messages(c.Bugs), messages(c.Issues))
}

func TestBugs(t *testing.T) {
	a := ast.N("a")
	tests := []struct {
		name string
		in   ast.Node
		want []string
	}{
		{"nil root", nil, []string{"invalid node: nil"}},
		{"missing body", &ast.Module{}, []string{"missing body"}},
		{"too many defaults", module(&ast.Function{
			Name: "f", Argnames: []string{"x"}, Defaults: []ast.Node{a, a}, Code: ast.Block(&ast.Pass{}),
		}), []string{"2 defaults for 1 positional parameters"}},
		{"flags without names", module(&ast.Discard{Expr: &ast.Lambda{Varargs: true, Kwargs: true, Argnames: []string{"k"}, Code: a}}),
			[]string{"1 parameter names for 2 variadic flags"}},
		{"empty function", module(&ast.Function{Name: "f", Code: ast.Block()}), []string{"empty code"}},
		{"empty loop", module(&ast.While{Test: a, Body: ast.Block()}), []string{"empty body"}},
		{"if without branches", module(&ast.If{}), []string{"If has no tests"}},
		{"compare without operators", module(&ast.Discard{Expr: &ast.Compare{Expr: a}}), []string{"Compare has no ops"}},
		{"cause without exception", module(&ast.Raise{Cause: ast.Some(a)}), []string{"raise has a cause but no exception"}},
		{"handler name without type", module(&ast.TryExcept{
			Body: ast.Block(&ast.Pass{}),
			Handlers: []*ast.Handler{{Name: ast.Some(&ast.AssName{Name: "e"}), Body: ast.Block(&ast.Pass{})}},
		}), []string{"except clause binds a name but has no type"}},
		{"empty global", module(&ast.Global{}), []string{"Global has no names"}},
		{"empty import", module(&ast.Import{}), []string{"Import has no names"}},
		{"from nowhere", module(&ast.From{Names: []*ast.Alias{{Name: "x"}}}), []string{"from-import names no module"}},
		{"expression statement", module(a), []string{"Name in statement position"}},
		{"bad target", module(&ast.Assign{Targets: []ast.Node{ast.Call(a)}, Expr: a}), []string{"CallFunc cannot be an assignment target"}},
		{"bad identifier", module(&ast.Discard{Expr: ast.N("two words")}), []string{`invalid identifier "two words"`}},
		{"one operand", module(&ast.Discard{Expr: &ast.Bitor{Nodes: []ast.Node{a}}}), []string{"Bitor needs at least two nodes, got 1"}},
		{"invalid UTF-8 string", module(&ast.Discard{Expr: ast.Str("caf\xe9")}), []string{`string "caf\xe9" is not valid UTF-8`}},
		{"invalid UTF-8 docstring", module(&ast.Class{Name: "C", Doc: common.Some("\xff"), Code: ast.Block(&ast.Pass{})}),
			[]string{`string "\xff" is not valid UTF-8`}},
		{"finally around a name", module(&ast.TryFinally{Body: a, Final: ast.Block(&ast.Pass{})}), []string{"finally follows Name"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := checker.NewChecker()
			require.False(t, c.Check(tt.in))
			require.Equal(t, tt.want, messages(c.Bugs))
			require.Empty(t, c.Issues)
		})
	}
}

func TestIssues(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{"break outside loop", "break\n", []string{"'break' outside loop"}},
		{"continue in a function inside a loop", "while x:\n    def f():\n        continue\n", []string{"'continue' not properly in loop"}},
		{"break in loop else", "for i in x:\n    pass\nelse:\n    break\n", []string{"'break' outside loop"}},
		{"return at module level", "return 1\n", []string{"'return' outside function"}},
		{"yield in class body", "class C:\n    yield\n", []string{"'yield' outside function"}},
		{"duplicate parameter", "def f(a, a):\n    pass\n", []string{"duplicate argument 'a' in function definition"}},
		{"repeated keyword", "f(k=1, k=2)\n", []string{"keyword argument repeated: k"}},
		{"bare except first", "try:\n    pass\nexcept:\n    pass\nexcept E:\n    pass\n", []string{"default 'except:' must be last"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := parser.ParseModule(tt.source)
			require.NoError(t, err)
			c := checker.NewChecker()
			require.False(t, c.Check(m))
			require.Equal(t, tt.want, messages(c.Issues))
			require.Empty(t, c.Bugs)
		})
	}
}

func TestAssignToConstantName(t *testing.T) {
	c := checker.NewChecker()
	c.Check(module(&ast.Assign{Targets: []ast.Node{&ast.AssName{Name: "None"}}, Expr: ast.Int(1)}))
	require.Equal(t, []string{"cannot assign to None"}, messages(c.Issues))
}

func TestReportErrors(t *testing.T) {
	c := checker.NewChecker()
	c.Check(module(&ast.Pass{}, &ast.If{}, &ast.Break{}))
	var out bytes.Buffer
	c.ReportErrors(&out)
	require.Equal(t, "Bug in input tree detected; the tree is malformed:\n"+
		"  [1]. If has no tests, at Module.body > Stmt.nodes[1]\n"+
		"Errors found in the source code:\n"+
		"  [1]. 'break' outside loop, at Module.body > Stmt.nodes[2]\n", out.String())
}

func newRoundTrip(t *testing.T) (checker.RenderFunc, checker.ParseFunc) {
	t.Helper()
	r, err := render.New()
	require.NoError(t, err)
	return func(n ast.Node) (string, error) { return r.Render(n, 0) }, parser.ParseNode
}

func TestRoundTripAccepts(t *testing.T) {
	renderFn, parseFn := newRoundTrip(t)
	nodes := []ast.Node{
		module(ast.AssignName("x", ast.Method(ast.Int(-1), "__neg__"))),
		&ast.Function{Name: "f", Doc: common.Some("Doc."), Code: ast.Block()},
		ast.Call(ast.Thunk(ast.Float(2.5))),
		&ast.Tuple{Nodes: []ast.Node{ast.Str("one")}},
	}
	for _, n := range nodes {
		require.NoError(t, checker.RoundTrip(n, renderFn, parseFn))
	}
}

func TestRoundTripViolations(t *testing.T) {
	renderFn, parseFn := newRoundTrip(t)
	tests := []struct {
		name string
		in   ast.Node
		path string
		text string
	}{
		{"name that reads back as a constant", &ast.Discard{Expr: ast.N("None")}, "Discard.expr", `"None\n"`},
		{"attribute that reads back as a call", ast.Attr(ast.N("a"), "b()"), "<root>", `"a.b()"`},
		{"statement list with a nested block", module(&ast.Stmt{Nodes: []ast.Node{&ast.Pass{}}}), "Module.body > Stmt.nodes[0]", `"pass\n"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checker.RoundTrip(tt.in, renderFn, parseFn)
			require.Error(t, err)
			require.True(t, errors.Is(err, rewriter.ErrRoundTripViolation), "got %v", err)
			e, ok := rewriter.AsError(err)
			require.True(t, ok)
			require.Equal(t, tt.in.Tag(), e.Tag)
			require.Equal(t, tt.path, e.Path.String())
			require.Contains(t, e.Detail, tt.text)
		})
	}
}

func TestRoundTripPassesRenderErrorsThrough(t *testing.T) {
	renderFn, parseFn := newRoundTrip(t)
	err := checker.RoundTrip(&ast.Add{Left: ast.N("a"), Right: ast.N("b")}, renderFn, parseFn)
	require.True(t, errors.Is(err, rewriter.ErrUnmatchedShape))
	require.False(t, errors.Is(err, rewriter.ErrRoundTripViolation))
}

func TestFirstDifference(t *testing.T) {
	a := ast.Call(ast.N("f"), ast.Int(1), ast.N("x"))
	b := ast.Call(ast.N("f"), ast.Int(1), ast.N("y"))
	path, differs := checker.FirstDifference(a, b)
	require.True(t, differs)
	require.Equal(t, "CallFunc.args[1]", path.String())

	_, differs = checker.FirstDifference(a, ast.Call(ast.N("f"), ast.Int(1), ast.N("x")))
	require.False(t, differs)
}
