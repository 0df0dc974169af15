package render

import (
	"strings"

	"github.com/Warbo/python-decompiler/pkg/ast"
	"github.com/Warbo/python-decompiler/pkg/rewriter"
)

func (r *Renderer) addStatementRules(rs *rewriter.RuleSet[string]) {
	rs.Add(ast.TagModule, &alternative{Name: "module", Action: func(c ctx, n ast.Node) (string, error) {
		m := n.(*ast.Module)
		return r.suite(c, "body", m.Doc, m.Body, true)
	}})
	rs.Add(ast.TagStmt,
		&alternative{
			Name:    "empty block",
			Pattern: lists(ast.TagStmt, "nodes", rewriter.Exactly(0)),
			Action:  fail(rewriter.ArityMismatch, "a block needs at least one statement"),
		},
		&alternative{Name: "statements", Action: r.statements()},
	)
	rs.Add(ast.TagAssign,
		&alternative{
			Name:    "no targets",
			Pattern: lists(ast.TagAssign, "targets", rewriter.Exactly(0)),
			Action:  fail(rewriter.ArityMismatch, "assignment has no targets"),
		},
		&alternative{Name: "t = ... = e", Action: func(c ctx, n ast.Node) (string, error) {
			a := n.(*ast.Assign)
			targets, err := items(c, "targets", a.Targets)
			if err != nil {
				return "", err
			}
			expr, err := c.Child("expr", a.Expr)
			if err != nil {
				return "", err
			}
			return r.line(c, strings.Join(append(targets, expr), " = ")), nil
		}},
	)
	rs.Add(ast.TagAssName, &alternative{Name: "name", Action: func(c ctx, n ast.Node) (string, error) {
		return n.(*ast.AssName).Name, nil
	}})
	rs.Add(ast.TagAssAttr, &alternative{Name: "e.attr", Action: func(c ctx, n ast.Node) (string, error) {
		a := n.(*ast.AssAttr)
		recv, err := receiver(c, "expr", a.Expr)
		if err != nil {
			return "", err
		}
		return recv + "." + a.Attr, nil
	}})
	rs.Add(ast.TagAssTuple, tuple(ast.TagAssTuple)...)
	rs.Add(ast.TagAssList, &alternative{Name: "[a, b]", Action: func(c ctx, n ast.Node) (string, error) {
		parts, err := joined(c, "nodes", n.(*ast.AssList).Nodes)
		return "[" + parts + "]", err
	}})
	rs.Add(ast.TagDelete,
		&alternative{
			Name:    "no targets",
			Pattern: lists(ast.TagDelete, "targets", rewriter.Exactly(0)),
			Action:  fail(rewriter.ArityMismatch, "del has no targets"),
		},
		&alternative{Name: "del a, b", Action: func(c ctx, n ast.Node) (string, error) {
			targets, err := joined(c, "targets", n.(*ast.Delete).Targets)
			if err != nil {
				return "", err
			}
			return r.line(c, "del "+targets), nil
		}},
	)
	rs.Add(ast.TagDiscard, &alternative{Name: "expression statement", Action: func(c ctx, n ast.Node) (string, error) {
		expr, err := c.Child("expr", n.(*ast.Discard).Expr)
		if err != nil {
			return "", err
		}
		return r.line(c, expr), nil
	}})
	rs.Add(ast.TagPass, r.simple("pass"))
	rs.Add(ast.TagBreak, r.simple("break"))
	rs.Add(ast.TagContinue, r.simple("continue"))
	rs.Add(ast.TagReturn, r.optionalValue(ast.TagReturn, "return")...)
	rs.Add(ast.TagYield, r.optionalValue(ast.TagYield, "yield")...)
	rs.Add(ast.TagIf,
		&alternative{
			Name:    "no branches",
			Pattern: lists(ast.TagIf, "tests", rewriter.Exactly(0)),
			Action:  fail(rewriter.ArityMismatch, "if has no branches"),
		},
		&alternative{Name: "if/elif/else", Action: r.ifStmt()},
	)
	rs.Add(ast.TagBranch, &alternative{Name: "test: body", Action: func(c ctx, n ast.Node) (string, error) {
		b := n.(*ast.Branch)
		test, err := c.Child("test", b.Test)
		if err != nil {
			return "", err
		}
		body, err := c.Nested().Child("body", b.Body)
		if err != nil {
			return "", err
		}
		return test + ":\n" + body, nil
	}})
	rs.Add(ast.TagWhile, &alternative{Name: "while", Action: r.while})
	rs.Add(ast.TagFor, &alternative{Name: "for", Action: r.forLoop})
	rs.Add(ast.TagWith,
		&alternative{
			Name:    "with e as v",
			Pattern: &rewriter.Pattern{Tag: ast.TagWith, Present: []string{"vars"}},
			Action:  r.with,
		},
		&alternative{Name: "with e", Action: r.with},
	)
	rs.Add(ast.TagFunction, &alternative{Name: "def", Action: r.function})
	rs.Add(ast.TagClass, &alternative{Name: "class", Action: r.class})
	rs.Add(ast.TagTryExcept,
		&alternative{
			Name:    "no handlers",
			Pattern: lists(ast.TagTryExcept, "handlers", rewriter.Exactly(0)),
			Action:  fail(rewriter.ArityMismatch, "try has no except clauses"),
		},
		&alternative{Name: "try/except", Action: r.tryExcept},
	)
	rs.Add(ast.TagHandler,
		&alternative{
			Name:    "except",
			Pattern: &rewriter.Pattern{Tag: ast.TagHandler, Absent: []string{"type", "name"}},
			Action:  r.handler,
		},
		&alternative{
			Name:    "except T",
			Pattern: &rewriter.Pattern{Tag: ast.TagHandler, Present: []string{"type"}, Absent: []string{"name"}},
			Action:  r.handler,
		},
		&alternative{
			Name:    "except T as n",
			Pattern: &rewriter.Pattern{Tag: ast.TagHandler, Present: []string{"type", "name"}},
			Action:  r.handler,
		},
		&alternative{Name: "name without type", Action: fail(rewriter.UnmatchedShape, "except clause binds a name but has no type")},
	)
	rs.Add(ast.TagTryFinally,
		&alternative{
			Name: "try/except/finally",
			Guards: []rewriter.Guard{func(n ast.Node) bool {
				_, ok := n.(*ast.TryFinally).Body.(*ast.TryExcept)
				return ok
			}},
			Action: r.tryFinally,
		},
		&alternative{
			Name: "try/finally",
			Guards: []rewriter.Guard{func(n ast.Node) bool {
				_, ok := n.(*ast.TryFinally).Body.(*ast.Stmt)
				return ok
			}},
			Action: r.tryFinally,
		},
		&alternative{Name: "other body", Action: fail(rewriter.UnmatchedShape, "finally must follow a block or a try/except")},
	)
	rs.Add(ast.TagRaise,
		&alternative{
			Name:    "raise",
			Pattern: &rewriter.Pattern{Tag: ast.TagRaise, Absent: []string{"exc", "cause"}},
			Action:  r.raise,
		},
		&alternative{
			Name:    "raise e",
			Pattern: &rewriter.Pattern{Tag: ast.TagRaise, Present: []string{"exc"}},
			Action:  r.raise,
		},
		&alternative{Name: "cause without exception", Action: fail(rewriter.UnmatchedShape, "raise has a cause but no exception")},
	)
	rs.Add(ast.TagAssert, &alternative{Name: "assert", Action: func(c ctx, n ast.Node) (string, error) {
		a := n.(*ast.Assert)
		test, err := c.Child("test", a.Test)
		if err != nil {
			return "", err
		}
		if msg, ok := a.Fail.Get(); ok {
			text, err := c.Child("fail", msg)
			if err != nil {
				return "", err
			}
			test += ", " + text
		}
		return r.line(c, "assert "+test), nil
	}})
	rs.Add(ast.TagGlobal,
		&alternative{
			Name:   "no names",
			Guards: []rewriter.Guard{func(n ast.Node) bool { return len(n.(*ast.Global).Names) == 0 }},
			Action: fail(rewriter.ArityMismatch, "global has no names"),
		},
		&alternative{Name: "global", Action: func(c ctx, n ast.Node) (string, error) {
			return r.line(c, "global "+strings.Join(n.(*ast.Global).Names, ", ")), nil
		}},
	)
	rs.Add(ast.TagImport,
		&alternative{
			Name:    "no names",
			Pattern: lists(ast.TagImport, "names", rewriter.Exactly(0)),
			Action:  fail(rewriter.ArityMismatch, "import has no names"),
		},
		&alternative{Name: "import", Action: func(c ctx, n ast.Node) (string, error) {
			names, err := joined(c, "names", ast.Nodes(n.(*ast.Import).Names))
			if err != nil {
				return "", err
			}
			return r.line(c, "import "+names), nil
		}},
	)
	rs.Add(ast.TagFrom,
		&alternative{
			Name:    "no names",
			Pattern: lists(ast.TagFrom, "names", rewriter.Exactly(0)),
			Action:  fail(rewriter.ArityMismatch, "from-import has no names"),
		},
		&alternative{
			Name:    "no module",
			Pattern: &rewriter.Pattern{Tag: ast.TagFrom, Leaves: map[string]string{"module": "", "level": "0"}},
			Action:  fail(rewriter.UnmatchedShape, "from-import names no module"),
		},
		&alternative{Name: "from", Action: func(c ctx, n ast.Node) (string, error) {
			f := n.(*ast.From)
			names, err := joined(c, "names", ast.Nodes(f.Names))
			if err != nil {
				return "", err
			}
			return r.line(c, "from "+strings.Repeat(".", f.Level)+f.Module+" import "+names), nil
		}},
	)
	rs.Add(ast.TagAlias, &alternative{Name: "name as alias", Action: func(c ctx, n ast.Node) (string, error) {
		a := n.(*ast.Alias)
		if as, ok := a.AsName.Get(); ok {
			return a.Name + " as " + as, nil
		}
		return a.Name, nil
	}})
}

func (r *Renderer) simple(word string) *alternative {
	return &alternative{Name: word, Action: func(c ctx, n ast.Node) (string, error) {
		return r.line(c, word), nil
	}}
}

// optionalValue covers `return` and `return x`, and likewise for yield.
func (r *Renderer) optionalValue(tag ast.Tag, word string) []*alternative {
	return []*alternative{
		{
			Name:    word,
			Pattern: &rewriter.Pattern{Tag: tag, Absent: []string{"value"}},
			Action: func(c ctx, n ast.Node) (string, error) {
				return r.line(c, word), nil
			},
		},
		{
			Name: word + " value",
			Action: func(c ctx, n ast.Node) (string, error) {
				f, _ := ast.FieldOf(n, "value")
				value, err := c.Child("value", f.Nodes[0])
				if err != nil {
					return "", err
				}
				return r.line(c, word+" "+value), nil
			},
		},
	}
}

// statements renders each statement of a block on its own lines, at the
// block's depth.
func (r *Renderer) statements() rewriter.Action[string] {
	one := func(c ctx, head rewriter.Slice) (string, error) {
		if !ast.IsStatement(head.Nodes[0].Tag()) {
			return "", c.At(head.Field, head.Offset).Fail(rewriter.UnmatchedShape, "statements", "%s is not a statement", head.Nodes[0].Tag())
		}
		return rewriter.Apply(c, head, 0)
	}
	rule := &rewriter.ListRule[string, string]{
		Name: "statements",
		Alternatives: []*rewriter.ListAlternative[string, string]{
			{
				Name:  "last statement",
				Arity: rewriter.Exactly(1),
				Take:  1,
				Action: func(c ctx, head rewriter.Slice, tail string, hasTail bool) (string, error) {
					return one(c, head)
				},
			},
			{
				Name:  "statement then the rest",
				Arity: rewriter.AtLeast(2),
				Take:  1,
				Action: func(c ctx, head rewriter.Slice, tail string, hasTail bool) (string, error) {
					text, err := one(c, head)
					if err != nil {
						return "", err
					}
					return text + tail, nil
				},
			},
		},
	}
	return func(c ctx, n ast.Node) (string, error) {
		stmt, _ := n.(*ast.Stmt)
		if stmt == nil {
			return "", c.Fail(rewriter.UnmatchedShape, "statements", "missing block")
		}
		return rule.Apply(c, "nodes", stmt.Nodes)
	}
}

// ifStmt renders the first branch as `if` and the others as `elif`.
func (r *Renderer) ifStmt() rewriter.Action[string] {
	rule := &rewriter.ListRule[string, string]{
		Name: "branches",
		Alternatives: []*rewriter.ListAlternative[string, string]{
			{
				Name:  "branch",
				Arity: rewriter.AtLeast(1),
				Take:  1,
				Action: func(c ctx, head rewriter.Slice, tail string, hasTail bool) (string, error) {
					word := "elif "
					if head.Offset == 0 {
						word = "if "
					}
					text, err := rewriter.Apply(c, head, 0)
					if err != nil {
						return "", err
					}
					return strings.Repeat(r.indent, c.Depth()) + word + text + tail, nil
				},
			},
		},
	}
	return func(c ctx, n ast.Node) (string, error) {
		s := n.(*ast.If)
		branches, err := rule.Apply(c, "tests", ast.Nodes(s.Tests))
		if err != nil {
			return "", err
		}
		otherwise, err := r.orElse(c, s.Else)
		if err != nil {
			return "", err
		}
		return branches + otherwise, nil
	}
}

func (r *Renderer) while(c ctx, n ast.Node) (string, error) {
	w := n.(*ast.While)
	test, err := c.Child("test", w.Test)
	if err != nil {
		return "", err
	}
	body, err := r.block(c, "while "+test, "body", w.Body)
	if err != nil {
		return "", err
	}
	otherwise, err := r.orElse(c, w.Else)
	if err != nil {
		return "", err
	}
	return body + otherwise, nil
}

func (r *Renderer) forLoop(c ctx, n ast.Node) (string, error) {
	f := n.(*ast.For)
	target, err := c.Child("assign", f.Assign)
	if err != nil {
		return "", err
	}
	iter, err := c.Child("iter", f.Iter)
	if err != nil {
		return "", err
	}
	body, err := r.block(c, "for "+target+" in "+iter, "body", f.Body)
	if err != nil {
		return "", err
	}
	otherwise, err := r.orElse(c, f.Else)
	if err != nil {
		return "", err
	}
	return body + otherwise, nil
}

func (r *Renderer) with(c ctx, n ast.Node) (string, error) {
	w := n.(*ast.With)
	header, err := c.Child("expr", w.Expr)
	if err != nil {
		return "", err
	}
	if vars, ok := w.Vars.Get(); ok {
		target, err := c.Child("vars", vars)
		if err != nil {
			return "", err
		}
		header += " as " + target
	}
	return r.block(c, "with "+header, "body", w.Body)
}

func (r *Renderer) function(c ctx, n ast.Node) (string, error) {
	fn := n.(*ast.Function)
	decorators, err := r.decorators(c, fn.Decorators)
	if err != nil {
		return "", err
	}
	ps, err := params(c, fn.Argnames, fn.Defaults, fn.Varargs, fn.Kwargs)
	if err != nil {
		return "", err
	}
	body, err := r.suite(c.Nested(), "code", fn.Doc, fn.Code, false)
	if err != nil {
		return "", err
	}
	return decorators + r.line(c, "def "+fn.Name+"("+ps+"):") + body, nil
}

func (r *Renderer) class(c ctx, n ast.Node) (string, error) {
	class := n.(*ast.Class)
	decorators, err := r.decorators(c, class.Decorators)
	if err != nil {
		return "", err
	}
	header := "class " + class.Name
	if len(class.Bases) > 0 {
		bases, err := joined(c, "bases", class.Bases)
		if err != nil {
			return "", err
		}
		header += "(" + bases + ")"
	}
	body, err := r.suite(c.Nested(), "code", class.Doc, class.Code, false)
	if err != nil {
		return "", err
	}
	return decorators + r.line(c, header+":") + body, nil
}

func (r *Renderer) tryExcept(c ctx, n ast.Node) (string, error) {
	t := n.(*ast.TryExcept)
	var b strings.Builder
	body, err := r.block(c, "try", "body", t.Body)
	if err != nil {
		return "", err
	}
	b.WriteString(body)
	for i, h := range t.Handlers {
		text, err := c.Item("handlers", i, h)
		if err != nil {
			return "", err
		}
		b.WriteString(text)
	}
	otherwise, err := r.orElse(c, t.Else)
	if err != nil {
		return "", err
	}
	b.WriteString(otherwise)
	return b.String(), nil
}

func (r *Renderer) handler(c ctx, n ast.Node) (string, error) {
	h := n.(*ast.Handler)
	header := "except"
	if typ, ok := h.Type.Get(); ok {
		text, err := c.Child("type", typ)
		if err != nil {
			return "", err
		}
		header += " " + text
	}
	if name, ok := h.Name.Get(); ok {
		text, err := c.Child("name", name)
		if err != nil {
			return "", err
		}
		header += " as " + text
	}
	return r.block(c, header, "body", h.Body)
}

// tryFinally merges a try/except body into one statement with the
// finally clause.
func (r *Renderer) tryFinally(c ctx, n ast.Node) (string, error) {
	t := n.(*ast.TryFinally)
	var body string
	var err error
	if te, ok := t.Body.(*ast.TryExcept); ok {
		body, err = c.Child("body", te)
	} else {
		body, err = r.block(c, "try", "body", t.Body)
	}
	if err != nil {
		return "", err
	}
	final, err := r.block(c, "finally", "final", t.Final)
	if err != nil {
		return "", err
	}
	return body + final, nil
}

func (r *Renderer) raise(c ctx, n ast.Node) (string, error) {
	rs := n.(*ast.Raise)
	text := "raise"
	if exc, ok := rs.Exc.Get(); ok {
		e, err := c.Child("exc", exc)
		if err != nil {
			return "", err
		}
		text += " " + e
	}
	if cause, ok := rs.Cause.Get(); ok {
		e, err := c.Child("cause", cause)
		if err != nil {
			return "", err
		}
		text += " from " + e
	}
	return r.line(c, text), nil
}
