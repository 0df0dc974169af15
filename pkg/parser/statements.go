package parser

import (
	"fmt"
	"strings"

	"github.com/Warbo/python-decompiler/pkg/ast"
	. "github.com/Warbo/python-decompiler/pkg/common"
)

var augmentedOperators = []string{
	"+=", "-=", "*=", "/=", "//=", "%=", "**=", "<<=", ">>=", "&=", "|=", "^=",
}

// readStatementsUntil reads statements until the next token has type stop,
// which is left unread.
func (p *Parser) readStatementsUntil(stop TokenType) ([]ast.Node, error) {
	var out []ast.Node
	for {
		token := p.PeekToken()
		if token == nil || token.Type == stop || token.Type == EndTokenType {
			return out, nil
		}
		stmts, err := p.readStatement()
		if err != nil {
			return nil, err
		}
		out = append(out, stmts...)
	}
}

// readStatement reads one compound statement, or one line of simple
// statements separated by semicolons.
func (p *Parser) readStatement() ([]ast.Node, error) {
	token := p.PeekToken()
	if token.Is(OperatorTokenType, "@") {
		return one(p.readDecorated())
	}
	if token.Type == KeywordTokenType {
		switch token.Text {
		case "if":
			return one(p.readIf())
		case "while":
			return one(p.readWhile())
		case "for":
			return one(p.readFor())
		case "with":
			return one(p.readWith())
		case "def":
			return one(p.readFunction(nil))
		case "class":
			return one(p.readClass(nil))
		case "try":
			return one(p.readTry())
		}
	}
	return p.readSimpleStatements()
}

func one(n ast.Node, err error) ([]ast.Node, error) {
	if err != nil {
		return nil, err
	}
	return []ast.Node{n}, nil
}

func (p *Parser) readSimpleStatements() ([]ast.Node, error) {
	var out []ast.Node
	for {
		s, err := p.readSmallStatement()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
		if !p.tryOperator(";") || p.PeekToken().Type == NewlineTokenType {
			break
		}
	}
	if _, err := p.MustReadType(NewlineTokenType, "newline"); err != nil {
		return nil, err
	}
	return out, nil
}

// atLineEnd reports whether the current simple statement has ended.
func (p *Parser) atLineEnd() bool {
	token := p.PeekToken()
	return token == nil || token.Type == NewlineTokenType || token.Type == EndTokenType || token.Is(OperatorTokenType, ";")
}

func (p *Parser) readSmallStatement() (ast.Node, error) {
	token := p.PeekToken()
	if token != nil && token.Type == KeywordTokenType {
		switch token.Text {
		case "pass":
			p.DropPeekedToken()
			return &ast.Pass{}, nil
		case "break":
			p.DropPeekedToken()
			return &ast.Break{}, nil
		case "continue":
			p.DropPeekedToken()
			return &ast.Continue{}, nil
		case "return":
			p.DropPeekedToken()
			value, err := p.readOptionalValue()
			return &ast.Return{Value: value}, err
		case "yield":
			p.DropPeekedToken()
			value, err := p.readOptionalValue()
			return &ast.Yield{Value: value}, err
		case "del":
			p.DropPeekedToken()
			return p.readDelete()
		case "raise":
			p.DropPeekedToken()
			return p.readRaise()
		case "assert":
			p.DropPeekedToken()
			return p.readAssert()
		case "global":
			p.DropPeekedToken()
			return p.readGlobal()
		case "import":
			p.DropPeekedToken()
			return p.readImport()
		case "from":
			p.DropPeekedToken()
			return p.readFrom()
		}
	}
	return p.readExpressionStatement()
}

func (p *Parser) readOptionalValue() (Option[ast.Node], error) {
	if p.atLineEnd() {
		return ast.Absent(), nil
	}
	e, err := p.readTestList()
	if err != nil {
		return ast.Absent(), err
	}
	return ast.Some(e), nil
}

// readExpressionStatement reads an expression statement, an assignment
// chain `a = b = e` or an augmented assignment `a += e`.
func (p *Parser) readExpressionStatement() (ast.Node, error) {
	start := p.PeekToken()
	e, err := p.readTestList()
	if err != nil {
		return nil, err
	}
	if op := p.TryReadOneOf(OperatorTokenType, augmentedOperators); op != nil {
		switch e.(type) {
		case *ast.Name, *ast.Getattr, *ast.Subscript, *ast.Slice:
		default:
			return nil, fmt.Errorf("cannot use '%s' on %s at %s", op.Text, e.Tag(), start.Span.Start())
		}
		value, err := p.readTestList()
		if err != nil {
			return nil, err
		}
		return &ast.AugAssign{Target: e, Op: op.Text, Expr: value}, nil
	}
	if !p.isOperator("=") {
		return &ast.Discard{Expr: e}, nil
	}
	exprs := []ast.Node{e}
	for p.tryOperator("=") {
		value, err := p.readTestList()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, value)
	}
	targets := make([]ast.Node, 0, len(exprs)-1)
	for _, t := range exprs[:len(exprs)-1] {
		target, err := toTarget(t, start)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return &ast.Assign{Targets: targets, Expr: exprs[len(exprs)-1]}, nil
}

// toTarget converts an expression read in load position into the store
// form used for assignment, deletion and loop targets.
func toTarget(e ast.Node, at *Token) (ast.Node, error) {
	switch e := e.(type) {
	case *ast.Name:
		return &ast.AssName{Name: e.Name}, nil
	case *ast.Getattr:
		return &ast.AssAttr{Expr: e.Expr, Attr: e.Attr}, nil
	case *ast.Subscript, *ast.Slice:
		return e, nil
	case *ast.Tuple:
		nodes, err := toTargets(e.Nodes, at)
		return &ast.AssTuple{Nodes: nodes}, err
	case *ast.List:
		nodes, err := toTargets(e.Nodes, at)
		return &ast.AssList{Nodes: nodes}, err
	}
	return nil, fmt.Errorf("cannot assign to %s at %s", e.Tag(), at.Span.Start())
}

func toTargets(es []ast.Node, at *Token) ([]ast.Node, error) {
	out := make([]ast.Node, 0, len(es))
	for _, e := range es {
		t, err := toTarget(e, at)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (p *Parser) readDelete() (ast.Node, error) {
	start := p.PeekToken()
	es, _, err := p.readExprList()
	if err != nil {
		return nil, err
	}
	targets, err := toTargets(es, start)
	if err != nil {
		return nil, err
	}
	return &ast.Delete{Targets: targets}, nil
}

func (p *Parser) readRaise() (ast.Node, error) {
	r := &ast.Raise{}
	if p.atLineEnd() {
		return r, nil
	}
	exc, err := p.readTest()
	if err != nil {
		return nil, err
	}
	r.Exc = ast.Some(exc)
	if p.tryKeyword("from") {
		cause, err := p.readTest()
		if err != nil {
			return nil, err
		}
		r.Cause = ast.Some(cause)
	}
	return r, nil
}

func (p *Parser) readAssert() (ast.Node, error) {
	test, err := p.readTest()
	if err != nil {
		return nil, err
	}
	a := &ast.Assert{Test: test}
	if p.tryOperator(",") {
		msg, err := p.readTest()
		if err != nil {
			return nil, err
		}
		a.Fail = ast.Some(msg)
	}
	return a, nil
}

func (p *Parser) readGlobal() (ast.Node, error) {
	g := &ast.Global{}
	for {
		name, err := p.MustReadName()
		if err != nil {
			return nil, err
		}
		g.Names = append(g.Names, name)
		if !p.tryOperator(",") {
			return g, nil
		}
	}
}

func (p *Parser) readDottedName() (string, error) {
	parts := []string{}
	for {
		name, err := p.MustReadName()
		if err != nil {
			return "", err
		}
		parts = append(parts, name)
		if !p.tryOperator(".") {
			return strings.Join(parts, "."), nil
		}
	}
}

func (p *Parser) readAlias(dotted bool) (*ast.Alias, error) {
	var name string
	var err error
	if dotted {
		name, err = p.readDottedName()
	} else {
		name, err = p.MustReadName()
	}
	if err != nil {
		return nil, err
	}
	alias := &ast.Alias{Name: name}
	if p.tryKeyword("as") {
		as, err := p.MustReadName()
		if err != nil {
			return nil, err
		}
		alias.AsName = Some(as)
	}
	return alias, nil
}

func (p *Parser) readImport() (ast.Node, error) {
	imp := &ast.Import{}
	for {
		alias, err := p.readAlias(true)
		if err != nil {
			return nil, err
		}
		imp.Names = append(imp.Names, alias)
		if !p.tryOperator(",") {
			return imp, nil
		}
	}
}

// readFrom reads `from ..module import a as b, c`, with the names
// optionally in parentheses.
func (p *Parser) readFrom() (ast.Node, error) {
	start := p.PeekToken()
	f := &ast.From{}
	for p.tryOperator(".") {
		f.Level++
	}
	if !p.isKeyword("import") {
		module, err := p.readDottedName()
		if err != nil {
			return nil, err
		}
		f.Module = module
	}
	if f.Module == "" && f.Level == 0 {
		return nil, unexpected(start, "module name")
	}
	if err := p.mustKeyword("import"); err != nil {
		return nil, err
	}
	if p.tryOperator("*") {
		f.Names = []*ast.Alias{{Name: "*"}}
		return f, nil
	}
	closer := ""
	if p.tryOperator("(") {
		closer = ")"
	}
	for {
		alias, err := p.readAlias(false)
		if err != nil {
			return nil, err
		}
		f.Names = append(f.Names, alias)
		if !p.tryOperator(",") {
			break
		}
		if closer != "" && p.isOperator(closer) {
			break
		}
	}
	if closer != "" {
		if err := p.mustOperator(closer); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// readSuite reads the block after a compound statement header: either an
// indented block on the following lines or simple statements on the same
// line.
func (p *Parser) readSuite() ([]ast.Node, error) {
	if err := p.mustOperator(":"); err != nil {
		return nil, err
	}
	if p.TryReadType(NewlineTokenType) == nil {
		return p.readSimpleStatements()
	}
	if _, err := p.MustReadType(IndentTokenType, "indented block"); err != nil {
		return nil, err
	}
	stmts, err := p.readStatementsUntil(DedentTokenType)
	if err != nil {
		return nil, err
	}
	if _, err := p.MustReadType(DedentTokenType, "dedent"); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) readBody() (*ast.Stmt, error) {
	stmts, err := p.readSuite()
	if err != nil {
		return nil, err
	}
	return &ast.Stmt{Nodes: stmts}, nil
}

// readDocBody reads a definition body, splitting off its docstring.
func (p *Parser) readDocBody() (Option[string], *ast.Stmt, error) {
	stmts, err := p.readSuite()
	if err != nil {
		return None[string](), nil, err
	}
	doc, rest := docstring(stmts)
	return doc, &ast.Stmt{Nodes: rest}, nil
}

func (p *Parser) readElse() (Option[ast.Node], error) {
	if !p.tryKeyword("else") {
		return ast.Absent(), nil
	}
	body, err := p.readBody()
	if err != nil {
		return ast.Absent(), err
	}
	return ast.Some(body), nil
}

func (p *Parser) readBranch() (*ast.Branch, error) {
	test, err := p.readTest()
	if err != nil {
		return nil, err
	}
	body, err := p.readBody()
	if err != nil {
		return nil, err
	}
	return &ast.Branch{Test: test, Body: body}, nil
}

func (p *Parser) readIf() (ast.Node, error) {
	if err := p.mustKeyword("if"); err != nil {
		return nil, err
	}
	s := &ast.If{}
	for {
		branch, err := p.readBranch()
		if err != nil {
			return nil, err
		}
		s.Tests = append(s.Tests, branch)
		if !p.tryKeyword("elif") {
			break
		}
	}
	var err error
	s.Else, err = p.readElse()
	return s, err
}

func (p *Parser) readWhile() (ast.Node, error) {
	if err := p.mustKeyword("while"); err != nil {
		return nil, err
	}
	test, err := p.readTest()
	if err != nil {
		return nil, err
	}
	body, err := p.readBody()
	if err != nil {
		return nil, err
	}
	otherwise, err := p.readElse()
	return &ast.While{Test: test, Body: body, Else: otherwise}, err
}

func (p *Parser) readFor() (ast.Node, error) {
	if err := p.mustKeyword("for"); err != nil {
		return nil, err
	}
	start := p.PeekToken()
	es, comma, err := p.readExprList()
	if err != nil {
		return nil, err
	}
	var target ast.Node = &ast.Tuple{Nodes: es}
	if !comma {
		target = es[0]
	}
	if target, err = toTarget(target, start); err != nil {
		return nil, err
	}
	if err := p.mustKeyword("in"); err != nil {
		return nil, err
	}
	iter, err := p.readTestList()
	if err != nil {
		return nil, err
	}
	body, err := p.readBody()
	if err != nil {
		return nil, err
	}
	otherwise, err := p.readElse()
	return &ast.For{Assign: target, Iter: iter, Body: body, Else: otherwise}, err
}

// readWith reads a with statement; several context managers nest.
func (p *Parser) readWith() (ast.Node, error) {
	if err := p.mustKeyword("with"); err != nil {
		return nil, err
	}
	var items []*ast.With
	for {
		expr, err := p.readTest()
		if err != nil {
			return nil, err
		}
		w := &ast.With{Expr: expr}
		if p.tryKeyword("as") {
			start := p.PeekToken()
			e, err := p.readOrExpr()
			if err != nil {
				return nil, err
			}
			target, err := toTarget(e, start)
			if err != nil {
				return nil, err
			}
			w.Vars = ast.Some(target)
		}
		items = append(items, w)
		if !p.tryOperator(",") {
			break
		}
	}
	body, err := p.readBody()
	if err != nil {
		return nil, err
	}
	for i := len(items) - 1; i >= 0; i-- {
		items[i].Body = body
		body = ast.Block(items[i])
	}
	return items[0], nil
}

func (p *Parser) readDecorated() (ast.Node, error) {
	var decorators []ast.Node
	for p.tryOperator("@") {
		d, err := p.readTest()
		if err != nil {
			return nil, err
		}
		if _, err := p.MustReadType(NewlineTokenType, "newline"); err != nil {
			return nil, err
		}
		decorators = append(decorators, d)
	}
	switch {
	case p.isKeyword("def"):
		return p.readFunction(decorators)
	case p.isKeyword("class"):
		return p.readClass(decorators)
	}
	return nil, unexpected(p.PeekToken(), "def or class")
}

func (p *Parser) readFunction(decorators []ast.Node) (ast.Node, error) {
	if err := p.mustKeyword("def"); err != nil {
		return nil, err
	}
	name, err := p.MustReadName()
	if err != nil {
		return nil, err
	}
	if err := p.mustOperator("("); err != nil {
		return nil, err
	}
	ps, err := p.readParams(")")
	if err != nil {
		return nil, err
	}
	if err := p.mustOperator(")"); err != nil {
		return nil, err
	}
	doc, code, err := p.readDocBody()
	if err != nil {
		return nil, err
	}
	return &ast.Function{
		Decorators: decorators,
		Name:       name,
		Argnames:   ps.argnames,
		Defaults:   ps.defaults,
		Varargs:    ps.varargs,
		Kwargs:     ps.kwargs,
		Doc:        doc,
		Code:       code,
	}, nil
}

func (p *Parser) readClass(decorators []ast.Node) (ast.Node, error) {
	if err := p.mustKeyword("class"); err != nil {
		return nil, err
	}
	name, err := p.MustReadName()
	if err != nil {
		return nil, err
	}
	var bases []ast.Node
	if p.tryOperator("(") {
		if bases, err = p.readItems(")"); err != nil {
			return nil, err
		}
	}
	doc, code, err := p.readDocBody()
	if err != nil {
		return nil, err
	}
	return &ast.Class{Decorators: decorators, Name: name, Bases: bases, Doc: doc, Code: code}, nil
}

// readTry reads try/except/else/finally. A finally clause wraps whatever
// precedes it in a TryFinally.
func (p *Parser) readTry() (ast.Node, error) {
	start, err := p.MustReadToken(KeywordTokenType, "try")
	if err != nil {
		return nil, err
	}
	body, err := p.readBody()
	if err != nil {
		return nil, err
	}
	var handlers []*ast.Handler
	for p.tryKeyword("except") {
		h := &ast.Handler{}
		if !p.isOperator(":") {
			typ, err := p.readTest()
			if err != nil {
				return nil, err
			}
			h.Type = ast.Some(typ)
			if p.tryKeyword("as") {
				at := p.PeekToken()
				e, err := p.readOrExpr()
				if err != nil {
					return nil, err
				}
				target, err := toTarget(e, at)
				if err != nil {
					return nil, err
				}
				h.Name = ast.Some(target)
			}
		}
		if h.Body, err = p.readBody(); err != nil {
			return nil, err
		}
		handlers = append(handlers, h)
	}
	var result ast.Node = body
	if len(handlers) > 0 {
		te := &ast.TryExcept{Body: body, Handlers: handlers}
		if te.Else, err = p.readElse(); err != nil {
			return nil, err
		}
		result = te
	}
	if p.tryKeyword("finally") {
		final, err := p.readBody()
		if err != nil {
			return nil, err
		}
		return &ast.TryFinally{Body: result, Final: final}, nil
	}
	if len(handlers) == 0 {
		return nil, fmt.Errorf("try at %s has neither except nor finally", start.Span.Start())
	}
	return result, nil
}
