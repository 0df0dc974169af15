package ast

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

type LiteralKind int

const (
	NoneLiteral LiteralKind = iota
	BoolLiteral
	IntLiteral
	FloatLiteral
	ImagLiteral
	StrLiteral
)

var literalKindNames = map[LiteralKind]string{
	NoneLiteral:  "none",
	BoolLiteral:  "bool",
	IntLiteral:   "int",
	FloatLiteral: "float",
	ImagLiteral:  "imag",
	StrLiteral:   "str",
}

func (k LiteralKind) String() string {
	return literalKindNames[k]
}

// Literal is the value carried by a Const. Only the field selected by Kind
// is meaningful; Float also holds the magnitude of imaginary literals.
type Literal struct {
	Kind  LiteralKind
	Bool  bool
	Int   *big.Int
	Float float64
	Str   string
}

func NoneValue() Literal             { return Literal{Kind: NoneLiteral} }
func BoolValue(b bool) Literal       { return Literal{Kind: BoolLiteral, Bool: b} }
func IntValue(i int64) Literal       { return Literal{Kind: IntLiteral, Int: big.NewInt(i)} }
func BigIntValue(i *big.Int) Literal { return Literal{Kind: IntLiteral, Int: new(big.Int).Set(i)} }
func FloatValue(f float64) Literal   { return Literal{Kind: FloatLiteral, Float: f} }
func ImagValue(f float64) Literal    { return Literal{Kind: ImagLiteral, Float: f} }
func StrValue(s string) Literal      { return Literal{Kind: StrLiteral, Str: s} }

// Text is the canonical spelling used by the term view. It is not source
// syntax: strings are raw and special floats are spelled inf, -inf and nan.
func (l Literal) Text() string {
	switch l.Kind {
	case NoneLiteral:
		return "None"
	case BoolLiteral:
		if l.Bool {
			return "True"
		}
		return "False"
	case IntLiteral:
		if l.Int == nil {
			return "0"
		}
		return l.Int.String()
	case FloatLiteral, ImagLiteral:
		return floatText(l.Float)
	case StrLiteral:
		return l.Str
	}
	return ""
}

// Negative reports whether a numeric literal has its sign bit set.
func (l Literal) Negative() bool {
	switch l.Kind {
	case IntLiteral:
		return l.Int != nil && l.Int.Sign() < 0
	case FloatLiteral, ImagLiteral:
		return !math.IsNaN(l.Float) && math.Signbit(l.Float)
	}
	return false
}

func floatText(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func parseFloatText(text string) (float64, error) {
	switch text {
	case "nan":
		return math.NaN(), nil
	case "inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	}
	return strconv.ParseFloat(text, 64)
}

// ParseLiteral is the inverse of Literal.Text for the given kind name.
func ParseLiteral(kind, text string) (Literal, error) {
	switch strings.ToLower(kind) {
	case "none":
		return NoneValue(), nil
	case "bool":
		switch text {
		case "True":
			return BoolValue(true), nil
		case "False":
			return BoolValue(false), nil
		}
		return Literal{}, fmt.Errorf("invalid bool literal: %q", text)
	case "int":
		i, ok := new(big.Int).SetString(text, 10)
		if !ok {
			return Literal{}, fmt.Errorf("invalid int literal: %q", text)
		}
		return Literal{Kind: IntLiteral, Int: i}, nil
	case "float":
		f, err := parseFloatText(text)
		if err != nil {
			return Literal{}, fmt.Errorf("invalid float literal: %q", text)
		}
		return FloatValue(f), nil
	case "imag":
		f, err := parseFloatText(text)
		if err != nil {
			return Literal{}, fmt.Errorf("invalid imaginary literal: %q", text)
		}
		return ImagValue(f), nil
	case "str":
		return StrValue(text), nil
	}
	return Literal{}, fmt.Errorf("unknown literal kind: %q", kind)
}
