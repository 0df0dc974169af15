package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/Warbo/python-decompiler/pkg/ast"
)

// Spellings for the floats that have no literal of their own. 1e999
// overflows to infinity when read.
const (
	Infinity    = "1e999"
	NotANumber  = "(1e999 * 0)"
	ImagPostfix = "j"
)

// Literal spells a constant so that reading it back yields the same value.
// Negative numbers are parenthesised, so the result can be used as an
// operand anywhere.
func Literal(l ast.Literal) string {
	switch l.Kind {
	case ast.NoneLiteral:
		return "None"
	case ast.BoolLiteral:
		if l.Bool {
			return "True"
		}
		return "False"
	case ast.IntLiteral:
		if l.Int == nil {
			return "0"
		}
		if l.Int.Sign() < 0 {
			return "(" + l.Int.String() + ")"
		}
		return l.Int.String()
	case ast.FloatLiteral:
		return number(l.Float, "")
	case ast.ImagLiteral:
		return number(l.Float, ImagPostfix)
	case ast.StrLiteral:
		return Quote(l.Str)
	}
	return ""
}

// Quote uses double quotes and backslash escapes that mean the same in
// both Go and Python string literals.
func Quote(s string) string {
	return strconv.Quote(s)
}

func number(f float64, postfix string) string {
	switch {
	case math.IsNaN(f):
		return "(" + Infinity + postfix + " * 0)"
	case math.IsInf(f, 1):
		return Infinity + postfix
	case math.IsInf(f, -1):
		return "(-" + Infinity + postfix + ")"
	case math.Signbit(f):
		return "(-" + digits(-f, postfix) + ")"
	}
	return digits(f, postfix)
}

// digits spells a non-negative finite number. Floats always carry a point
// or an exponent, so they never read back as integers.
func digits(f float64, postfix string) string {
	text := strconv.FormatFloat(f, 'g', -1, 64)
	if postfix == "" && !strings.ContainsAny(text, ".e") {
		text += ".0"
	}
	return text + postfix
}
