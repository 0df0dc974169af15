package parser

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/Warbo/python-decompiler/pkg/ast"
	. "github.com/Warbo/python-decompiler/pkg/common"
)

// ReadNumber converts a number token to a literal. Floats too large for
// float64 read as infinity, which is how `1e999` spells it.
func ReadNumber(token *Token) (ast.Literal, error) {
	text := strings.ReplaceAll(token.Text, "_", "")
	lower := strings.ToLower(text)
	fail := func() (ast.Literal, error) {
		return ast.Literal{}, fmt.Errorf("invalid number literal '%s' at %s", token.Text, token.Span.Start())
	}
	switch {
	case strings.HasSuffix(lower, "j"):
		f, err := parseFloat(lower[:len(lower)-1])
		if err != nil {
			return fail()
		}
		return ast.ImagValue(f), nil
	case len(lower) > 1 && lower[0] == '0' && strings.ContainsRune("xob", rune(lower[1])):
		i, ok := new(big.Int).SetString(lower, 0)
		if !ok {
			return fail()
		}
		return ast.Literal{Kind: ast.IntLiteral, Int: i}, nil
	case strings.ContainsAny(lower, ".e"):
		f, err := parseFloat(lower)
		if err != nil {
			return fail()
		}
		return ast.FloatValue(f), nil
	}
	i, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return fail()
	}
	return ast.Literal{Kind: ast.IntLiteral, Int: i}, nil
}

func parseFloat(text string) (float64, error) {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	return f, nil
}

// negate folds a minus sign into a non-negative numeric constant, so
// `(-1.5)` reads back as the constant it was rendered from.
func negate(e ast.Node) ast.Node {
	k, ok := e.(*ast.Const)
	if !ok || k.Value.Negative() {
		return &ast.UnarySub{Expr: e}
	}
	switch k.Value.Kind {
	case ast.IntLiteral:
		return &ast.Const{Value: ast.Literal{Kind: ast.IntLiteral, Int: new(big.Int).Neg(k.Value.Int)}}
	case ast.FloatLiteral, ast.ImagLiteral:
		f := k.Value.Float
		return &ast.Const{Value: ast.Literal{Kind: k.Value.Kind, Float: -f}}
	}
	return &ast.UnarySub{Expr: e}
}

// multiply folds `1e999 * 0`, the spelling of NaN, into a constant.
func multiply(left, right ast.Node) ast.Node {
	l, ok := left.(*ast.Const)
	if ok && (l.Value.Kind == ast.FloatLiteral || l.Value.Kind == ast.ImagLiteral) && math.IsInf(l.Value.Float, 1) {
		if r, ok := right.(*ast.Const); ok && r.Value.Kind == ast.IntLiteral && r.Value.Int.Sign() == 0 {
			return &ast.Const{Value: ast.Literal{Kind: l.Value.Kind, Float: math.NaN()}}
		}
	}
	return &ast.Mul{Left: left, Right: right}
}

// docstring splits a leading string statement off a body.
func docstring(stmts []ast.Node) (Option[string], []ast.Node) {
	if len(stmts) > 0 {
		if d, ok := stmts[0].(*ast.Discard); ok {
			if k, ok := d.Expr.(*ast.Const); ok && k.Value.Kind == ast.StrLiteral {
				return Some(k.Value.Str), stmts[1:]
			}
		}
	}
	return None[string](), stmts
}
