// Package desugar reduces a syntax tree to the core vocabulary the renderer
// accepts. Operators become method calls, short-circuit logic and chained
// comparisons become calls taking thunks, and definitions are followed by
// explicit metadata and decorator statements.
package desugar

import (
	"fmt"
	"io"

	"github.com/Warbo/python-decompiler/pkg/ast"
	"github.com/Warbo/python-decompiler/pkg/resolver"
	"github.com/Warbo/python-decompiler/pkg/rewriter"
)

type (
	alternative = rewriter.Alternative[ast.Node]
	ctx         = rewriter.Ctx[ast.Node]
)

// rebuiltTags are the core variants that are kept, with their children
// desugared in order.
var rebuiltTags = []ast.Tag{
	ast.TagModule, ast.TagAssName, ast.TagAssAttr, ast.TagAssTuple, ast.TagAssList,
	ast.TagDiscard, ast.TagPass, ast.TagBreak, ast.TagContinue, ast.TagReturn,
	ast.TagYield, ast.TagBranch, ast.TagWhile, ast.TagLambda, ast.TagTryExcept,
	ast.TagTryFinally, ast.TagRaise, ast.TagAssert, ast.TagGlobal, ast.TagImport,
	ast.TagFrom, ast.TagAlias, ast.TagName, ast.TagConst, ast.TagGetattr,
	ast.TagCallFunc, ast.TagKeyword, ast.TagTuple, ast.TagList, ast.TagDict,
	ast.TagDictItem, ast.TagCompareOp,
}

// Desugarer applies a desugaring table. It is immutable once built and may
// be shared between goroutines.
type Desugarer struct {
	config *Config
	rules  *rewriter.RuleSet[ast.Node]
	engine *rewriter.Engine[ast.Node]
}

type Option func(*options)

type options struct {
	extra  *rewriter.RuleSet[ast.Node]
	engine []rewriter.EngineOption
}

// WithRules layers extra in front of the built-in rules.
func WithRules(extra *rewriter.RuleSet[ast.Node]) Option {
	return func(o *options) { o.extra = extra }
}

// WithTrace logs every committed rule to w.
func WithTrace(w io.Writer) Option {
	return func(o *options) { o.engine = append(o.engine, rewriter.WithTrace(w)) }
}

func WithMaxDepth(depth int) Option {
	return func(o *options) { o.engine = append(o.engine, rewriter.WithMaxDepth(depth)) }
}

// New builds a desugarer from config, or from DefaultDesugarRules when
// config is nil.
func New(config *Config, opts ...Option) (*Desugarer, error) {
	if config == nil {
		var err error
		if config, err = DefaultConfig(); err != nil {
			return nil, fmt.Errorf("error loading default desugar rules: %w", err)
		}
	}
	if config.Name == "" {
		config.Name = "desugar"
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	rules, err := config.RewriteConfig().Compile()
	if err != nil {
		return nil, err
	}
	d := &Desugarer{config: config}
	d.addRules(rules)
	d.rules = rules.Extend(o.extra)
	if d.engine, err = rewriter.NewEngine(d.rules, o.engine...); err != nil {
		return nil, err
	}
	return d, nil
}

// Rules returns a copy of the rule set the desugarer runs.
func (d *Desugarer) Rules() *rewriter.RuleSet[ast.Node] {
	return d.rules.Clone()
}

func (d *Desugarer) Config() *Config {
	return d.config
}

// Transform returns the desugared form of n. n is not modified.
func (d *Desugarer) Transform(n ast.Node) (ast.Node, error) {
	return d.TransformWith(n, resolver.Resolve(n))
}

// TransformWith desugars n, which may be part of the tree info was resolved
// from. Temporaries avoid every identifier of that tree.
func (d *Desugarer) TransformWith(n ast.Node, info *resolver.Info) (ast.Node, error) {
	return d.engine.Run(n, 0, newSession(info, d.config.Options.TempPrefix))
}

func sessionOf(c ctx) *session {
	if s, ok := c.Session().(*session); ok && s != nil {
		return s
	}
	return newSession(nil, "_t")
}

func (d *Desugarer) addRules(rs *rewriter.RuleSet[ast.Node]) {
	for _, tag := range rebuiltTags {
		rs.Add(tag, &alternative{Name: "rebuild", Action: rebuild})
	}
	rs.Add(ast.TagStmt, &alternative{Name: "splice", Action: spliceStmt})
	rs.Add(ast.TagIf,
		&alternative{
			Name:    "flatten elifs",
			Pattern: &rewriter.Pattern{Tag: ast.TagIf, Lists: map[string]rewriter.Count{"tests": rewriter.AtLeast(2)}},
			Guards:  []rewriter.Guard{func(ast.Node) bool { return d.config.Options.flattenElifs() }},
			Action:  flattenElifs,
		},
		&alternative{Name: "rebuild", Action: rebuild},
	)
	rs.Add(ast.TagAnd, &alternative{Name: "and chain", Action: d.logicChain(d.config.Logic.And, true)})
	rs.Add(ast.TagOr, &alternative{Name: "or chain", Action: d.logicChain(d.config.Logic.Or, false)})
	rs.Add(ast.TagCompare,
		&alternative{
			Name:    "comparison chain",
			Pattern: &rewriter.Pattern{Tag: ast.TagCompare, Lists: map[string]rewriter.Count{"ops": rewriter.AtLeast(1)}},
			Action:  d.compare,
		},
		&alternative{Name: "no comparison", Action: func(c ctx, n ast.Node) (ast.Node, error) {
			return nil, c.Fail(rewriter.ArityMismatch, "no comparison", "comparison has no operators")
		}},
	)
	rs.Add(ast.TagIfExp, &alternative{Name: "c.__if__(then, else)", Action: d.ifExp})
	rs.Add(ast.TagSubscript, &alternative{Name: "x.__getitem__(key)", Action: d.getItem})
	rs.Add(ast.TagSlice, &alternative{Name: "x.__getitem__(slice(lo, hi))", Action: d.getItem})
	rs.Add(ast.TagAugAssign, &alternative{Name: "augmented assignment", Action: d.augAssign})
	rs.Add(ast.TagAssign, &alternative{Name: "assignment", Action: d.assign})
	rs.Add(ast.TagDelete, &alternative{Name: "deletion", Action: d.delete})
	rs.Add(ast.TagFor, &alternative{Name: "for target", Action: d.forLoop})
	rs.Add(ast.TagWith, &alternative{Name: "with target", Action: d.with})
	rs.Add(ast.TagHandler, &alternative{Name: "handler target", Action: d.handler})
	rs.Add(ast.TagFunction, &alternative{Name: "function definition", Action: d.function})
	rs.Add(ast.TagClass, &alternative{Name: "class definition", Action: d.class})
}

// rebuild copies n with every child desugared, in field order.
func rebuild(c ctx, n ast.Node) (ast.Node, error) {
	out, err := ast.MapChildren(n, func(field string, index int, child ast.Node) (ast.Node, error) {
		if index < 0 {
			return c.Child(field, child)
		}
		return c.Item(field, index, child)
	})
	if err != nil {
		if _, ok := rewriter.AsError(err); ok {
			return nil, err
		}
		return nil, c.Fail(rewriter.UnmatchedShape, "rebuild", "%v", err)
	}
	return out, nil
}

// spliceStmt desugars each statement; statements that expanded into a
// sequence are spliced into this one.
func spliceStmt(c ctx, n ast.Node) (ast.Node, error) {
	stmt := n.(*ast.Stmt)
	if stmt == nil {
		return nil, c.Fail(rewriter.UnmatchedShape, "splice", "missing statement block")
	}
	out := &ast.Stmt{Nodes: make([]ast.Node, 0, len(stmt.Nodes))}
	for i, s := range stmt.Nodes {
		r, err := c.Item("nodes", i, s)
		if err != nil {
			return nil, err
		}
		out.Nodes = appendStmt(out.Nodes, r)
	}
	return out, nil
}

func appendStmt(stmts []ast.Node, n ast.Node) []ast.Node {
	if nested, ok := n.(*ast.Stmt); ok {
		return append(stmts, nested.Nodes...)
	}
	return append(stmts, n)
}

// sequence wraps stmts, or returns the statement itself when there is one.
func sequence(stmts []ast.Node) ast.Node {
	if len(stmts) == 1 {
		return stmts[0]
	}
	return &ast.Stmt{Nodes: stmts}
}

// applyAll desugars synthesized statements in order.
func applyAll(c ctx, stmts []ast.Node) ([]ast.Node, error) {
	var out []ast.Node
	for _, s := range stmts {
		r, err := c.Apply(s)
		if err != nil {
			return nil, err
		}
		out = appendStmt(out, r)
	}
	return out, nil
}

// flattenElifs turns `if a: x elif b: y else: z` into
// `if a: x else: (if b: y else: z)`.
func flattenElifs(c ctx, n ast.Node) (ast.Node, error) {
	stmt := n.(*ast.If)
	first, err := c.Item("tests", 0, stmt.Tests[0])
	if err != nil {
		return nil, err
	}
	branch, ok := first.(*ast.Branch)
	if !ok {
		return nil, c.Fail(rewriter.UnmatchedShape, "flatten elifs", "branch desugared to %s", first.Tag())
	}
	rest, err := c.At("tests", 1).Apply(&ast.If{Tests: stmt.Tests[1:], Else: stmt.Else})
	if err != nil {
		return nil, err
	}
	return &ast.If{Tests: []*ast.Branch{branch}, Else: ast.Some(ast.Block(rest))}, nil
}

////////////////////////////////////////////////////////////////////////////////
/// Short-circuit logic
////////////////////////////////////////////////////////////////////////////////

// logicChain desugars `a and b and c` to
// `bool(a).__logand__(lambda: bool(b).__logand__(lambda: c))`. The rest of
// the chain is only reachable through the thunk, so it is evaluated after,
// and only if, the receiver allows it.
func (d *Desugarer) logicChain(hook string, empty bool) rewriter.Action[ast.Node] {
	rule := &rewriter.ListRule[ast.Node, ast.Node]{
		Name: hook,
		Alternatives: []*rewriter.ListAlternative[ast.Node, ast.Node]{
			{
				Name:  "empty",
				Arity: rewriter.Exactly(0),
				Action: func(c ctx, head rewriter.Slice, tail ast.Node, hasTail bool) (ast.Node, error) {
					return ast.Bool(empty), nil
				},
			},
			{
				Name:  "last operand",
				Arity: rewriter.Exactly(1),
				Take:  1,
				Action: func(c ctx, head rewriter.Slice, tail ast.Node, hasTail bool) (ast.Node, error) {
					return rewriter.Apply(c, head, 0)
				},
			},
			{
				Name:  "deferred rest",
				Arity: rewriter.AtLeast(2),
				Take:  1,
				Action: func(c ctx, head rewriter.Slice, tail ast.Node, hasTail bool) (ast.Node, error) {
					first, err := rewriter.Apply(c, head, 0)
					if err != nil {
						return nil, err
					}
					return ast.Method(d.truth(first), hook, sessionOf(c).thunk(tail)), nil
				},
			},
		},
	}
	return func(c ctx, n ast.Node) (ast.Node, error) {
		f, _ := ast.FieldOf(n, "nodes")
		return rule.Apply(c, "nodes", f.Nodes)
	}
}

func (d *Desugarer) truth(n ast.Node) ast.Node {
	return ast.Call(ast.N(d.config.Truth.Coerce), n)
}

func (d *Desugarer) ifExp(c ctx, n ast.Node) (ast.Node, error) {
	e := n.(*ast.IfExp)
	test, err := c.Child("test", e.Test)
	if err != nil {
		return nil, err
	}
	then, err := c.Child("then", e.Then)
	if err != nil {
		return nil, err
	}
	otherwise, err := c.Child("else", e.Else)
	if err != nil {
		return nil, err
	}
	s := sessionOf(c)
	return ast.Method(d.truth(test), d.config.Truth.If, s.thunk(then), s.thunk(otherwise)), nil
}

////////////////////////////////////////////////////////////////////////////////
/// Comparisons
////////////////////////////////////////////////////////////////////////////////

func (d *Desugarer) comparison(c ctx, op *ast.CompareOp) (string, error) {
	name, ok := d.config.Comparisons[op.Op]
	if !ok {
		return "", c.Fail(rewriter.UnmatchedShape, "comparison chain", "no method for comparison operator %q", op.Op)
	}
	return name, nil
}

// compare desugars `a < b` to `a.__lt__(b)`, and a chain `a < b == c` to
// `a.__lt__(b, ('__eq__', lambda: c))`: every operand after the second is
// a thunk, so the receiver decides whether it is ever evaluated.
func (d *Desugarer) compare(c ctx, n ast.Node) (ast.Node, error) {
	cmp := n.(*ast.Compare)
	left, err := c.Child("expr", cmp.Expr)
	if err != nil {
		return nil, err
	}
	first, err := d.compareOp(c, "ops", 0, cmp.Ops[0])
	if err != nil {
		return nil, err
	}
	name, err := d.comparison(c, first)
	if err != nil {
		return nil, err
	}
	deferred := &rewriter.ListRule[ast.Node, []ast.Node]{
		Name: "deferred comparisons",
		Alternatives: []*rewriter.ListAlternative[ast.Node, []ast.Node]{
			{
				Name:  "done",
				Arity: rewriter.Exactly(0),
				Action: func(c ctx, head rewriter.Slice, tail []ast.Node, hasTail bool) ([]ast.Node, error) {
					return nil, nil
				},
			},
			{
				Name:  "thunk",
				Arity: rewriter.AtLeast(1),
				Take:  1,
				Action: func(c ctx, head rewriter.Slice, tail []ast.Node, hasTail bool) ([]ast.Node, error) {
					op, err := d.compareOp(c, head.Field, head.Offset, head.Nodes[0])
					if err != nil {
						return nil, err
					}
					name, err := d.comparison(c, op)
					if err != nil {
						return nil, err
					}
					link := &ast.Tuple{Nodes: []ast.Node{ast.Str(name), sessionOf(c).thunk(op.Expr)}}
					return append([]ast.Node{link}, tail...), nil
				},
			},
		},
	}
	rest, err := deferred.ApplySlice(c, rewriter.Slice{Field: "ops", Offset: 1, Nodes: ast.Nodes(cmp.Ops[1:])})
	if err != nil {
		return nil, err
	}
	return ast.Method(left, name, append([]ast.Node{first.Expr}, rest...)...), nil
}

func (d *Desugarer) compareOp(c ctx, field string, index int, op ast.Node) (*ast.CompareOp, error) {
	r, err := c.Item(field, index, op)
	if err != nil {
		return nil, err
	}
	out, ok := r.(*ast.CompareOp)
	if !ok {
		return nil, c.Fail(rewriter.UnmatchedShape, "comparison chain", "comparison operand desugared to %s", r.Tag())
	}
	return out, nil
}

////////////////////////////////////////////////////////////////////////////////
/// Items
////////////////////////////////////////////////////////////////////////////////

// itemKey splits a subscript or slice into its receiver and the key passed
// to the item protocol. Several subscripts pack into a tuple; absent slice
// bounds are None.
func (d *Desugarer) itemKey(n ast.Node) (ast.Node, ast.Node, bool) {
	switch n := n.(type) {
	case *ast.Subscript:
		if len(n.Subs) == 1 {
			return n.Expr, n.Subs[0], true
		}
		return n.Expr, &ast.Tuple{Nodes: n.Subs}, true
	case *ast.Slice:
		lower := n.Lower.OrElse(ast.NoneConst())
		upper := n.Upper.OrElse(ast.NoneConst())
		return n.Expr, ast.Call(ast.N(d.config.Items.Slice), lower, upper), true
	}
	return nil, nil, false
}

// getItem desugars a subscript or slice in load position. The key is built
// first and desugared as a whole, so it reaches the core vocabulary too.
func (d *Desugarer) getItem(c ctx, n ast.Node) (ast.Node, error) {
	recv, key, _ := d.itemKey(n)
	recv, err := c.Child("expr", recv)
	if err != nil {
		return nil, err
	}
	field := "subs"
	if n.Tag() == ast.TagSlice {
		field = "lower"
	}
	key, err = c.Child(field, key)
	if err != nil {
		return nil, err
	}
	return ast.Method(recv, d.config.Items.Get, key), nil
}

////////////////////////////////////////////////////////////////////////////////
/// Assignment targets
////////////////////////////////////////////////////////////////////////////////

// lowered collects the statements that complete an assignment whose
// subscript targets were replaced by temporaries.
type lowered struct {
	after []ast.Node
	tmps  []*TemporaryVariable
}

// lowerTarget replaces every subscript or slice inside target with a fresh
// temporary and queues the `__setitem__` call that stores it.
func (d *Desugarer) lowerTarget(target ast.Node, s *session, l *lowered) ast.Node {
	switch t := target.(type) {
	case *ast.Subscript, *ast.Slice:
		recv, key, _ := d.itemKey(t)
		tv := s.temps.AllocateTemporaryVariable()
		l.tmps = append(l.tmps, tv)
		l.after = append(l.after, &ast.Discard{Expr: ast.Method(recv, d.config.Items.Set, key, ast.N(tv.Name))})
		return &ast.AssName{Name: tv.Name}
	case *ast.AssTuple:
		return &ast.AssTuple{Nodes: d.lowerTargets(t.Nodes, s, l)}
	case *ast.AssList:
		return &ast.AssList{Nodes: d.lowerTargets(t.Nodes, s, l)}
	}
	return target
}

func (d *Desugarer) lowerTargets(targets []ast.Node, s *session, l *lowered) []ast.Node {
	out := make([]ast.Node, len(targets))
	for i, target := range targets {
		out[i] = d.lowerTarget(target, s, l)
	}
	return out
}

// assign desugars `x[i] = e` to `_t0 = e; x.__setitem__(i, _t0); del _t0`,
// so that e is still evaluated before the target's parts.
func (d *Desugarer) assign(c ctx, n ast.Node) (ast.Node, error) {
	a := n.(*ast.Assign)
	s := sessionOf(c)
	var l lowered
	targets := d.lowerTargets(a.Targets, s, &l)
	if len(l.after) == 0 {
		return rebuild(c, n)
	}
	defer s.temps.FreeTemporaryVariable(l.tmps...)
	head, err := rebuild(c, &ast.Assign{Targets: targets, Expr: a.Expr})
	if err != nil {
		return nil, err
	}
	after, err := applyAll(c, l.after)
	if err != nil {
		return nil, err
	}
	stmts := append([]ast.Node{head}, after...)
	return &ast.Stmt{Nodes: append(stmts, deleteTemporaries(l.tmps)...)}, nil
}

// delete desugars subscript targets to `__delitem__` calls. Other targets
// stay in delete statements, in their original order.
func (d *Desugarer) delete(c ctx, n ast.Node) (ast.Node, error) {
	del := n.(*ast.Delete)
	targets := flattenDeleteTargets(del.Targets)
	if len(targets) == len(del.Targets) && !hasItemTarget(targets) {
		return rebuild(c, n)
	}
	var stmts, pending []ast.Node
	flush := func() {
		if len(pending) > 0 {
			stmts = append(stmts, &ast.Delete{Targets: pending})
			pending = nil
		}
	}
	for _, target := range targets {
		recv, key, ok := d.itemKey(target)
		if !ok {
			pending = append(pending, target)
			continue
		}
		flush()
		stmts = append(stmts, &ast.Discard{Expr: ast.Method(recv, d.config.Items.Del, key)})
	}
	flush()
	out, err := applyAll(c, stmts)
	if err != nil {
		return nil, err
	}
	return sequence(out), nil
}

// flattenDeleteTargets expands tuple and list targets that contain
// subscripts: `del (a, b[0])` deletes a, then b[0].
func flattenDeleteTargets(targets []ast.Node) []ast.Node {
	var out []ast.Node
	for _, target := range targets {
		switch t := target.(type) {
		case *ast.AssTuple:
			if hasItemTarget(t.Nodes) {
				out = append(out, flattenDeleteTargets(t.Nodes)...)
				continue
			}
		case *ast.AssList:
			if hasItemTarget(t.Nodes) {
				out = append(out, flattenDeleteTargets(t.Nodes)...)
				continue
			}
		}
		out = append(out, target)
	}
	return out
}

func hasItemTarget(targets []ast.Node) bool {
	for _, target := range targets {
		switch t := target.(type) {
		case *ast.Subscript, *ast.Slice:
			return true
		case *ast.AssTuple:
			if hasItemTarget(t.Nodes) {
				return true
			}
		case *ast.AssList:
			if hasItemTarget(t.Nodes) {
				return true
			}
		}
	}
	return false
}

// lowerIntoBody handles statements that bind a target before running a
// body: the stores for subscript targets, and the deletion of their
// temporaries, become the body's first statements.
func (d *Desugarer) lowerIntoBody(c ctx, n ast.Node, target ast.Node, body *ast.Stmt, build func(target ast.Node, body *ast.Stmt) ast.Node) (ast.Node, error) {
	s := sessionOf(c)
	var l lowered
	replaced := d.lowerTarget(target, s, &l)
	if len(l.after) == 0 {
		return rebuild(c, n)
	}
	defer s.temps.FreeTemporaryVariable(l.tmps...)
	stmts := append(append([]ast.Node(nil), l.after...), deleteTemporaries(l.tmps)...)
	stmts = append(stmts, body.Nodes...)
	return rebuild(c, build(replaced, &ast.Stmt{Nodes: stmts}))
}

func (d *Desugarer) forLoop(c ctx, n ast.Node) (ast.Node, error) {
	f := n.(*ast.For)
	return d.lowerIntoBody(c, n, f.Assign, f.Body, func(target ast.Node, body *ast.Stmt) ast.Node {
		return &ast.For{Assign: target, Iter: f.Iter, Body: body, Else: f.Else}
	})
}

func (d *Desugarer) with(c ctx, n ast.Node) (ast.Node, error) {
	w := n.(*ast.With)
	vars, ok := w.Vars.Get()
	if !ok {
		return rebuild(c, n)
	}
	return d.lowerIntoBody(c, n, vars, w.Body, func(target ast.Node, body *ast.Stmt) ast.Node {
		return &ast.With{Expr: w.Expr, Vars: ast.Some(target), Body: body}
	})
}

func (d *Desugarer) handler(c ctx, n ast.Node) (ast.Node, error) {
	h := n.(*ast.Handler)
	name, ok := h.Name.Get()
	if !ok {
		return rebuild(c, n)
	}
	return d.lowerIntoBody(c, n, name, h.Body, func(target ast.Node, body *ast.Stmt) ast.Node {
		return &ast.Handler{Type: h.Type, Name: ast.Some(target), Body: body}
	})
}

////////////////////////////////////////////////////////////////////////////////
/// Augmented assignment
////////////////////////////////////////////////////////////////////////////////

// augAssign desugars `x += e` to `x = x.__add__(e)`. For attribute and item
// targets every part of the target other than a constant is bound to a
// temporary first, so it is evaluated exactly once:
// `lst[idx()] += 1` becomes
// `_t0 = lst; _t1 = idx(); _t0.__setitem__(_t1, _t0.__getitem__(_t1).__add__(1)); del _t0, _t1`.
func (d *Desugarer) augAssign(c ctx, n ast.Node) (ast.Node, error) {
	a := n.(*ast.AugAssign)
	method, ok := d.config.Augmented[a.Op]
	if !ok {
		return nil, c.Fail(rewriter.UnmatchedShape, "augmented assignment", "no method for operator %q", a.Op)
	}
	s := sessionOf(c)
	var stmts []ast.Node
	var tmps []*TemporaryVariable
	defer func() { s.temps.FreeTemporaryVariable(tmps...) }()
	bind := func(e ast.Node) ast.Node {
		if _, ok := e.(*ast.Const); ok {
			return e
		}
		tv := s.temps.AllocateTemporaryVariable()
		tmps = append(tmps, tv)
		stmts = append(stmts, ast.AssignName(tv.Name, e))
		return ast.N(tv.Name)
	}
	switch t := a.Target.(type) {
	case *ast.Name:
		stmts = append(stmts, ast.AssignName(t.Name, ast.Method(ast.N(t.Name), method, a.Expr)))
	case *ast.AssName:
		stmts = append(stmts, ast.AssignName(t.Name, ast.Method(ast.N(t.Name), method, a.Expr)))
	case *ast.Getattr:
		recv := bind(t.Expr)
		stmts = append(stmts, &ast.Assign{
			Targets: []ast.Node{&ast.AssAttr{Expr: recv, Attr: t.Attr}},
			Expr:    ast.Method(ast.Attr(recv, t.Attr), method, a.Expr),
		})
	case *ast.AssAttr:
		recv := bind(t.Expr)
		stmts = append(stmts, &ast.Assign{
			Targets: []ast.Node{&ast.AssAttr{Expr: recv, Attr: t.Attr}},
			Expr:    ast.Method(ast.Attr(recv, t.Attr), method, a.Expr),
		})
	case *ast.Subscript, *ast.Slice:
		recv, key, _ := d.itemKey(t)
		recv = bind(recv)
		key = bind(key)
		current := ast.Method(recv, d.config.Items.Get, key)
		stmts = append(stmts, &ast.Discard{Expr: ast.Method(recv, d.config.Items.Set, key, ast.Method(current, method, a.Expr))})
	default:
		return nil, c.Fail(rewriter.UnmatchedShape, "augmented assignment", "cannot assign to %s", a.Target.Tag())
	}
	out, err := applyAll(c, stmts)
	if err != nil {
		return nil, err
	}
	return sequence(append(out, deleteTemporaries(tmps)...)), nil
}
