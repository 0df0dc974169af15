package parser

import (
	"fmt"

	"github.com/Warbo/python-decompiler/pkg/ast"
	. "github.com/Warbo/python-decompiler/pkg/common"
)

var comparisonOperators = []string{"<", ">", "==", "!=", "<=", ">="}

// startsExpression reports whether the next token can begin an expression.
func (p *Parser) startsExpression() bool {
	token := p.PeekToken()
	if token == nil {
		return false
	}
	switch token.Type {
	case NameTokenType, NumberTokenType, StringTokenType:
		return true
	case KeywordTokenType:
		switch token.Text {
		case "not", "lambda", "True", "False", "None":
			return true
		}
	case OperatorTokenType:
		switch token.Text {
		case "(", "[", "{", "-", "+", "~":
			return true
		}
	}
	return false
}

// readTestList reads `a, b, ...`; more than one element, or a trailing
// comma, makes a Tuple.
func (p *Parser) readTestList() (ast.Node, error) {
	first, err := p.readTest()
	if err != nil {
		return nil, err
	}
	if !p.isOperator(",") {
		return first, nil
	}
	nodes := []ast.Node{first}
	for p.tryOperator(",") {
		if !p.startsExpression() {
			break
		}
		e, err := p.readTest()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, e)
	}
	return &ast.Tuple{Nodes: nodes}, nil
}

// readExprList reads the comma-separated operands of `for` and `del`,
// which stop short of comparisons so that `in` is left alone.
func (p *Parser) readExprList() ([]ast.Node, bool, error) {
	var nodes []ast.Node
	comma := false
	for {
		e, err := p.readOrExpr()
		if err != nil {
			return nil, false, err
		}
		nodes = append(nodes, e)
		if !p.tryOperator(",") {
			return nodes, comma, nil
		}
		comma = true
		if !p.startsExpression() {
			return nodes, comma, nil
		}
	}
}

func (p *Parser) readTest() (ast.Node, error) {
	if p.isKeyword("lambda") {
		return p.readLambda()
	}
	e, err := p.readOrTest()
	if err != nil {
		return nil, err
	}
	if !p.tryKeyword("if") {
		return e, nil
	}
	test, err := p.readOrTest()
	if err != nil {
		return nil, err
	}
	if err := p.mustKeyword("else"); err != nil {
		return nil, err
	}
	otherwise, err := p.readTest()
	if err != nil {
		return nil, err
	}
	return &ast.IfExp{Test: test, Then: e, Else: otherwise}, nil
}

func (p *Parser) readLambda() (ast.Node, error) {
	if err := p.mustKeyword("lambda"); err != nil {
		return nil, err
	}
	ps, err := p.readParams(":")
	if err != nil {
		return nil, err
	}
	if err := p.mustOperator(":"); err != nil {
		return nil, err
	}
	body, err := p.readTest()
	if err != nil {
		return nil, err
	}
	return &ast.Lambda{Argnames: ps.argnames, Defaults: ps.defaults, Varargs: ps.varargs, Kwargs: ps.kwargs, Code: body}, nil
}

// chain reads `next (sep next)*`, building an n-ary node when sep occurs.
func (p *Parser) chain(next func() (ast.Node, error), tokenType TokenType, sep string, build func([]ast.Node) ast.Node) (ast.Node, error) {
	first, err := next()
	if err != nil {
		return nil, err
	}
	nodes := []ast.Node{first}
	for p.TryReadToken(tokenType, sep) != nil {
		e, err := next()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, e)
	}
	if len(nodes) == 1 {
		return first, nil
	}
	return build(nodes), nil
}

func (p *Parser) readOrTest() (ast.Node, error) {
	return p.chain(p.readAndTest, KeywordTokenType, "or", func(ns []ast.Node) ast.Node { return &ast.Or{Nodes: ns} })
}

func (p *Parser) readAndTest() (ast.Node, error) {
	return p.chain(p.readNotTest, KeywordTokenType, "and", func(ns []ast.Node) ast.Node { return &ast.And{Nodes: ns} })
}

func (p *Parser) readNotTest() (ast.Node, error) {
	if p.tryKeyword("not") {
		e, err := p.readNotTest()
		if err != nil {
			return nil, err
		}
		return &ast.Not{Expr: e}, nil
	}
	return p.readComparison()
}

// compareOperator consumes the next comparison operator, returning "" when
// there is none.
func (p *Parser) compareOperator() (string, error) {
	if token := p.TryReadOneOf(OperatorTokenType, comparisonOperators); token != nil {
		return token.Text, nil
	}
	switch {
	case p.tryKeyword("in"):
		return "in", nil
	case p.tryKeyword("is"):
		if p.tryKeyword("not") {
			return "is not", nil
		}
		return "is", nil
	case p.tryKeyword("not"):
		if err := p.mustKeyword("in"); err != nil {
			return "", err
		}
		return "not in", nil
	}
	return "", nil
}

func (p *Parser) readComparison() (ast.Node, error) {
	e, err := p.readOrExpr()
	if err != nil {
		return nil, err
	}
	var ops []*ast.CompareOp
	for {
		op, err := p.compareOperator()
		if err != nil {
			return nil, err
		}
		if op == "" {
			break
		}
		rhs, err := p.readOrExpr()
		if err != nil {
			return nil, err
		}
		ops = append(ops, &ast.CompareOp{Op: op, Expr: rhs})
	}
	if len(ops) == 0 {
		return e, nil
	}
	return &ast.Compare{Expr: e, Ops: ops}, nil
}

func (p *Parser) readOrExpr() (ast.Node, error) {
	return p.chain(p.readXorExpr, OperatorTokenType, "|", func(ns []ast.Node) ast.Node { return &ast.Bitor{Nodes: ns} })
}

func (p *Parser) readXorExpr() (ast.Node, error) {
	return p.chain(p.readAndExpr, OperatorTokenType, "^", func(ns []ast.Node) ast.Node { return &ast.Bitxor{Nodes: ns} })
}

func (p *Parser) readAndExpr() (ast.Node, error) {
	return p.chain(p.readShiftExpr, OperatorTokenType, "&", func(ns []ast.Node) ast.Node { return &ast.Bitand{Nodes: ns} })
}

// binary reads a left-associative level of binary operators.
func (p *Parser) binary(next func() (ast.Node, error), builders map[string]func(l, r ast.Node) ast.Node) (ast.Node, error) {
	ops := make([]string, 0, len(builders))
	for op := range builders {
		ops = append(ops, op)
	}
	lhs, err := next()
	if err != nil {
		return nil, err
	}
	for {
		op := p.TryReadOneOf(OperatorTokenType, ops)
		if op == nil {
			return lhs, nil
		}
		rhs, err := next()
		if err != nil {
			return nil, err
		}
		lhs = builders[op.Text](lhs, rhs)
	}
}

var shiftOperators = map[string]func(l, r ast.Node) ast.Node{
	"<<": func(l, r ast.Node) ast.Node { return &ast.LeftShift{Left: l, Right: r} },
	">>": func(l, r ast.Node) ast.Node { return &ast.RightShift{Left: l, Right: r} },
}

var arithOperators = map[string]func(l, r ast.Node) ast.Node{
	"+": func(l, r ast.Node) ast.Node { return &ast.Add{Left: l, Right: r} },
	"-": func(l, r ast.Node) ast.Node { return &ast.Sub{Left: l, Right: r} },
}

var termOperators = map[string]func(l, r ast.Node) ast.Node{
	"*":  multiply,
	"/":  func(l, r ast.Node) ast.Node { return &ast.Div{Left: l, Right: r} },
	"//": func(l, r ast.Node) ast.Node { return &ast.FloorDiv{Left: l, Right: r} },
	"%":  func(l, r ast.Node) ast.Node { return &ast.Mod{Left: l, Right: r} },
}

func (p *Parser) readShiftExpr() (ast.Node, error) {
	return p.binary(p.readArithExpr, shiftOperators)
}

func (p *Parser) readArithExpr() (ast.Node, error) {
	return p.binary(p.readTerm, arithOperators)
}

func (p *Parser) readTerm() (ast.Node, error) {
	return p.binary(p.readFactor, termOperators)
}

func (p *Parser) readFactor() (ast.Node, error) {
	switch {
	case p.tryOperator("-"):
		e, err := p.readFactor()
		if err != nil {
			return nil, err
		}
		return negate(e), nil
	case p.tryOperator("+"):
		e, err := p.readFactor()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryAdd{Expr: e}, nil
	case p.tryOperator("~"):
		e, err := p.readFactor()
		if err != nil {
			return nil, err
		}
		return &ast.Invert{Expr: e}, nil
	}
	return p.readPower()
}

// readPower binds `**` tighter than a unary minus on its left but looser
// than one on its right: `-2 ** -1` is `-(2 ** (-1))`.
func (p *Parser) readPower() (ast.Node, error) {
	e, err := p.readTrailers()
	if err != nil {
		return nil, err
	}
	if !p.tryOperator("**") {
		return e, nil
	}
	rhs, err := p.readFactor()
	if err != nil {
		return nil, err
	}
	return &ast.Power{Left: e, Right: rhs}, nil
}

func (p *Parser) readTrailers() (ast.Node, error) {
	e, err := p.readAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.tryOperator("."):
			name, err := p.MustReadName()
			if err != nil {
				return nil, err
			}
			e = &ast.Getattr{Expr: e, Attr: name}
		case p.tryOperator("("):
			if e, err = p.readCall(e); err != nil {
				return nil, err
			}
		case p.tryOperator("["):
			if e, err = p.readSubscript(e); err != nil {
				return nil, err
			}
		default:
			return e, nil
		}
	}
}

// readCall reads the arguments after `(`: positional, `k=v`, `*args` and
// `**kwargs`, with an optional trailing comma.
func (p *Parser) readCall(fn ast.Node) (ast.Node, error) {
	call := &ast.CallFunc{Func: fn}
	for count := 0; !p.tryOperator(")"); count++ {
		if count > 0 {
			if err := p.mustOperator(","); err != nil {
				return nil, err
			}
			if p.tryOperator(")") {
				break
			}
		}
		switch {
		case p.tryOperator("**"):
			e, err := p.readTest()
			if err != nil {
				return nil, err
			}
			call.DstarArgs = ast.Some(e)
		case p.tryOperator("*"):
			e, err := p.readTest()
			if err != nil {
				return nil, err
			}
			call.StarArgs = ast.Some(e)
		default:
			e, err := p.readTest()
			if err != nil {
				return nil, err
			}
			if name, ok := e.(*ast.Name); ok && p.tryOperator("=") {
				value, err := p.readTest()
				if err != nil {
					return nil, err
				}
				e = &ast.Keyword{Name: name.Name, Expr: value}
			}
			call.Args = append(call.Args, e)
		}
	}
	return call, nil
}

// readSubscript reads the inside of `x[...]`: one or more keys, or a
// `lower:upper` slice with either bound optional.
func (p *Parser) readSubscript(e ast.Node) (ast.Node, error) {
	var lower ast.Node
	if !p.isOperator(":") {
		var err error
		if lower, err = p.readTest(); err != nil {
			return nil, err
		}
	}
	if p.tryOperator(":") {
		s := &ast.Slice{Expr: e}
		if lower != nil {
			s.Lower = ast.Some(lower)
		}
		if !p.isOperator("]") {
			upper, err := p.readTest()
			if err != nil {
				return nil, err
			}
			s.Upper = ast.Some(upper)
		}
		if token := p.PeekToken(); token.Is(OperatorTokenType, ":") {
			return nil, fmt.Errorf("slice steps are not supported at %s", token.Span.Start())
		}
		if err := p.mustOperator("]"); err != nil {
			return nil, err
		}
		return s, nil
	}
	subs := []ast.Node{lower}
	trailing := false
	for p.tryOperator(",") {
		if p.isOperator("]") {
			trailing = true
			break
		}
		sub, err := p.readTest()
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := p.mustOperator("]"); err != nil {
		return nil, err
	}
	if trailing && len(subs) == 1 {
		subs = []ast.Node{&ast.Tuple{Nodes: subs}}
	}
	return &ast.Subscript{Expr: e, Subs: subs}, nil
}

func (p *Parser) readAtom() (ast.Node, error) {
	token := p.PeekToken()
	if token == nil {
		return nil, unexpected(nil, "expression")
	}
	switch token.Type {
	case NameTokenType:
		p.DropPeekedToken()
		return ast.N(token.Text), nil
	case NumberTokenType:
		p.DropPeekedToken()
		lit, err := ReadNumber(token)
		if err != nil {
			return nil, err
		}
		return &ast.Const{Value: lit}, nil
	case StringTokenType:
		return p.readStrings(), nil
	case KeywordTokenType:
		switch token.Text {
		case "True", "False":
			p.DropPeekedToken()
			return ast.Bool(token.Text == "True"), nil
		case "None":
			p.DropPeekedToken()
			return ast.NoneConst(), nil
		}
	case OperatorTokenType:
		switch token.Text {
		case "(":
			p.DropPeekedToken()
			return p.readParenthesized()
		case "[":
			p.DropPeekedToken()
			nodes, err := p.readItems("]")
			if err != nil {
				return nil, err
			}
			return &ast.List{Nodes: nodes}, nil
		case "{":
			p.DropPeekedToken()
			return p.readDict()
		}
	}
	return nil, unexpected(token, "expression")
}

// readStrings joins adjacent string literals into one constant.
func (p *Parser) readStrings() ast.Node {
	value := ""
	for {
		token := p.TryReadType(StringTokenType)
		if token == nil {
			return ast.Str(value)
		}
		if token.Value != nil {
			value += *token.Value
		}
	}
}

func (p *Parser) readParenthesized() (ast.Node, error) {
	if p.tryOperator(")") {
		return &ast.Tuple{}, nil
	}
	first, err := p.readTest()
	if err != nil {
		return nil, err
	}
	if p.tryOperator(")") {
		return first, nil
	}
	if err := p.mustOperator(","); err != nil {
		return nil, err
	}
	rest, err := p.readItems(")")
	if err != nil {
		return nil, err
	}
	return &ast.Tuple{Nodes: append([]ast.Node{first}, rest...)}, nil
}

// readItems reads comma-separated expressions up to and including closer.
func (p *Parser) readItems(closer string) ([]ast.Node, error) {
	var nodes []ast.Node
	for !p.tryOperator(closer) {
		if len(nodes) > 0 {
			if err := p.mustOperator(","); err != nil {
				return nil, err
			}
			if p.tryOperator(closer) {
				break
			}
		}
		e, err := p.readTest()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, e)
	}
	return nodes, nil
}

func (p *Parser) readDict() (ast.Node, error) {
	d := &ast.Dict{}
	for !p.tryOperator("}") {
		if len(d.Items) > 0 {
			if err := p.mustOperator(","); err != nil {
				return nil, err
			}
			if p.tryOperator("}") {
				break
			}
		}
		key, err := p.readTest()
		if err != nil {
			return nil, err
		}
		if err := p.mustOperator(":"); err != nil {
			return nil, err
		}
		value, err := p.readTest()
		if err != nil {
			return nil, err
		}
		d.Items = append(d.Items, &ast.DictItem{Key: key, Value: value})
	}
	return d, nil
}

type parameters struct {
	argnames []string
	defaults []ast.Node
	varargs  bool
	kwargs   bool
}

// readParams reads a parameter list up to, but not including, closer.
// Plain names come first, then names with defaults, then *v and **k.
func (p *Parser) readParams(closer string) (*parameters, error) {
	ps := &parameters{}
	var positional []string
	var varName, kwName string
	for count := 0; !p.isOperator(closer); count++ {
		if count > 0 {
			if err := p.mustOperator(","); err != nil {
				return nil, err
			}
			if p.isOperator(closer) {
				break
			}
		}
		token := p.PeekToken()
		if ps.kwargs {
			return nil, unexpected(token, closer)
		}
		switch {
		case p.tryOperator("**"):
			name, err := p.MustReadName()
			if err != nil {
				return nil, err
			}
			ps.kwargs, kwName = true, name
		case p.tryOperator("*"):
			if ps.varargs {
				return nil, unexpected(token, "parameter name")
			}
			name, err := p.MustReadName()
			if err != nil {
				return nil, err
			}
			ps.varargs, varName = true, name
		default:
			if ps.varargs {
				return nil, fmt.Errorf("parameter after *%s at %s", varName, token.Span.Start())
			}
			name, err := p.MustReadName()
			if err != nil {
				return nil, err
			}
			positional = append(positional, name)
			if p.tryOperator("=") {
				value, err := p.readTest()
				if err != nil {
					return nil, err
				}
				ps.defaults = append(ps.defaults, value)
			} else if len(ps.defaults) > 0 {
				return nil, fmt.Errorf("non-default parameter '%s' follows default parameter at %s", name, token.Span.Start())
			}
		}
	}
	ps.argnames = positional
	if ps.varargs {
		ps.argnames = append(ps.argnames, varName)
	}
	if ps.kwargs {
		ps.argnames = append(ps.argnames, kwName)
	}
	return ps, nil
}
