// Package tokenizer splits core Python syntax into tokens, turning leading
// whitespace into explicit indent and dedent tokens.
package tokenizer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/Warbo/python-decompiler/pkg/common"
)

type Tokenizer struct {
	rules *TokenizerRules

	input       []rune
	pos         int
	line        int
	col         int
	indents     []int
	depth       int // bracket nesting; newlines inside brackets are ignored
	atLineStart bool
	tokens      []*common.Token
}

func New(rules *TokenizerRules) *Tokenizer {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Tokenizer{rules: rules}
}

// Tokenize tokenizes input with the default rules.
func Tokenize(input string) ([]*common.Token, error) {
	return New(nil).Tokenize(input)
}

// Tokenize returns every token of input. The result always ends with
// NEWLINE (when there was any statement), the dedents that close open
// blocks, and END.
func (t *Tokenizer) Tokenize(input string) ([]*common.Token, error) {
	t.input = []rune(strings.ReplaceAll(input, "\r\n", "\n"))
	t.pos, t.line, t.col = 0, 1, 1
	t.indents = []int{0}
	t.depth = 0
	t.atLineStart = true
	t.tokens = nil

	for {
		if t.atLineStart && t.depth == 0 {
			if err := t.indentation(); err != nil {
				return nil, err
			}
		}
		t.skipSpace()
		if t.eof() {
			break
		}
		start := t.here()
		ch := t.peek()
		var err error
		switch {
		case ch == '\n':
			t.advance()
			if t.depth == 0 {
				t.newline(start)
				t.atLineStart = true
			}
		case ch == '"' || ch == '\'':
			err = t.readString(start, t.pos)
		case isNameStart(ch):
			err = t.readName(start)
		case isDigit(ch) || (ch == '.' && isDigit(t.peekAt(1))):
			err = t.readNumber(start)
		default:
			err = t.readOperator(start)
		}
		if err != nil {
			return nil, err
		}
	}

	end := t.here()
	t.newline(end)
	for len(t.indents) > 1 {
		t.indents = t.indents[:len(t.indents)-1]
		t.emit(common.DedentTokenType, "", end)
	}
	t.emit(common.EndTokenType, "", end)
	return t.tokens, nil
}

func (t *Tokenizer) eof() bool {
	return t.pos >= len(t.input)
}

func (t *Tokenizer) peek() rune {
	return t.peekAt(0)
}

func (t *Tokenizer) peekAt(offset int) rune {
	if t.pos+offset >= len(t.input) {
		return 0
	}
	return t.input[t.pos+offset]
}

func (t *Tokenizer) advance() {
	if t.input[t.pos] == '\n' {
		t.line++
		t.col = 1
	} else {
		t.col++
	}
	t.pos++
}

func (t *Tokenizer) here() common.LineCol {
	return common.LineCol{LineNo: t.line, ColNo: t.col}
}

func (t *Tokenizer) emit(tokenType common.TokenType, text string, start common.LineCol) *common.Token {
	token := &common.Token{Text: text, Type: tokenType, Span: start.Span(t.here())}
	t.tokens = append(t.tokens, token)
	return token
}

// newline ends a logical line, unless it was empty.
func (t *Tokenizer) newline(start common.LineCol) {
	if len(t.tokens) == 0 {
		return
	}
	switch t.tokens[len(t.tokens)-1].Type {
	case common.NewlineTokenType, common.IndentTokenType, common.DedentTokenType:
		return
	}
	t.emit(common.NewlineTokenType, "", start)
}

func (t *Tokenizer) skipSpace() {
	for !t.eof() {
		switch ch := t.peek(); {
		case ch == ' ' || ch == '\t' || ch == '\f':
			t.advance()
		case ch == '\\' && t.peekAt(1) == '\n':
			t.advance()
			t.advance()
		case ch == '#':
			for !t.eof() && t.peek() != '\n' {
				t.advance()
			}
		case ch == '\n' && t.depth > 0:
			t.advance()
		default:
			return
		}
	}
}

// indentation measures the leading whitespace of the next non-blank line
// and emits the indents or dedents it implies.
func (t *Tokenizer) indentation() error {
	for {
		width := 0
		for !t.eof() {
			switch t.peek() {
			case ' ':
				width++
			case '\t':
				width = (width/8 + 1) * 8
			case '\f':
				width = 0
			default:
				goto measured
			}
			t.advance()
		}
	measured:
		if t.eof() {
			return nil
		}
		if ch := t.peek(); ch == '\n' || ch == '#' {
			for !t.eof() && t.peek() != '\n' {
				t.advance()
			}
			if !t.eof() {
				t.advance()
			}
			continue
		}
		t.atLineStart = false
		start := t.here()
		top := t.indents[len(t.indents)-1]
		if width > top {
			if len(t.tokens) == 0 {
				return fmt.Errorf("unexpected indent at %s", start)
			}
			t.indents = append(t.indents, width)
			t.emit(common.IndentTokenType, "", start)
			return nil
		}
		for width < top {
			t.indents = t.indents[:len(t.indents)-1]
			t.emit(common.DedentTokenType, "", start)
			top = t.indents[len(t.indents)-1]
		}
		if width != top {
			return fmt.Errorf("unindent does not match any outer indentation level at %s", start)
		}
		return nil
	}
}

func isNameStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isNameChar(ch rune) bool {
	return isNameStart(ch) || unicode.IsDigit(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func (t *Tokenizer) readName(start common.LineCol) error {
	from := t.pos
	for !t.eof() && isNameChar(t.peek()) {
		t.advance()
	}
	text := string(t.input[from:t.pos])
	if (t.peek() == '"' || t.peek() == '\'') && isStringPrefix(text) {
		return t.readString(start, from)
	}
	if t.rules.Keywords[text] {
		t.emit(common.KeywordTokenType, text, start)
	} else {
		t.emit(common.NameTokenType, text, start)
	}
	return nil
}

func isStringPrefix(text string) bool {
	switch strings.ToLower(text) {
	case "r", "u":
		return true
	}
	return false
}

func (t *Tokenizer) readNumber(start common.LineCol) error {
	from := t.pos
	digits := func(ok func(rune) bool) {
		for !t.eof() && (ok(t.peek()) || t.peek() == '_') {
			t.advance()
		}
	}
	if t.peek() == '0' && strings.ContainsRune("xXoObB", t.peekAt(1)) {
		t.advance()
		t.advance()
		digits(func(ch rune) bool { return isDigit(ch) || strings.ContainsRune("abcdefABCDEF", ch) })
	} else {
		digits(isDigit)
		if t.peek() == '.' {
			t.advance()
			digits(isDigit)
		}
		if e := t.peek(); e == 'e' || e == 'E' {
			next := t.peekAt(1)
			if isDigit(next) || ((next == '+' || next == '-') && isDigit(t.peekAt(2))) {
				t.advance()
				if next == '+' || next == '-' {
					t.advance()
				}
				digits(isDigit)
			}
		}
	}
	if j := t.peek(); j == 'j' || j == 'J' {
		t.advance()
	}
	if isNameChar(t.peek()) {
		return fmt.Errorf("invalid number literal '%s' at %s", string(t.input[from:t.pos+1]), start)
	}
	t.emit(common.NumberTokenType, string(t.input[from:t.pos]), start)
	return nil
}

// readString reads a quoted literal whose text (including any prefix)
// starts at from, decoding escapes into the token's Value.
func (t *Tokenizer) readString(start common.LineCol, from int) error {
	raw := strings.ContainsAny(string(t.input[from:t.pos]), "rR")
	quote := t.peek()
	triple := t.peekAt(1) == quote && t.peekAt(2) == quote
	t.advance()
	if triple {
		t.advance()
		t.advance()
	}
	var value strings.Builder
	for {
		if t.eof() {
			return fmt.Errorf("unterminated string starting at %s", start)
		}
		ch := t.peek()
		if ch == quote {
			if !triple {
				t.advance()
				break
			}
			if t.peekAt(1) == quote && t.peekAt(2) == quote {
				t.advance()
				t.advance()
				t.advance()
				break
			}
		}
		if ch == '\n' && !triple {
			return fmt.Errorf("unterminated string starting at %s", start)
		}
		if ch == '\\' {
			t.advance()
			if t.eof() {
				return fmt.Errorf("unterminated string starting at %s", start)
			}
			if raw {
				value.WriteRune('\\')
				value.WriteRune(t.peek())
				t.advance()
				continue
			}
			if err := t.escape(&value); err != nil {
				return err
			}
			continue
		}
		value.WriteRune(ch)
		t.advance()
	}
	token := t.emit(common.StringTokenType, string(t.input[from:t.pos]), start)
	v := value.String()
	token.Value = &v
	return nil
}

var simpleEscapes = map[rune]rune{
	'\\': '\\', '\'': '\'', '"': '"',
	'a': '\a', 'b': '\b', 'f': '\f', 'n': '\n', 'r': '\r', 't': '\t', 'v': '\v',
}

// escape decodes the escape sequence after a backslash. Unknown escapes
// keep their backslash.
func (t *Tokenizer) escape(value *strings.Builder) error {
	at := t.here()
	ch := t.peek()
	if ch == '\n' {
		t.advance()
		return nil
	}
	if r, ok := simpleEscapes[ch]; ok {
		value.WriteRune(r)
		t.advance()
		return nil
	}
	hex := map[rune]int{'x': 2, 'u': 4, 'U': 8}
	if n, ok := hex[ch]; ok {
		t.advance()
		if t.pos+n > len(t.input) {
			return fmt.Errorf("truncated \\%c escape at %s", ch, at)
		}
		code, err := strconv.ParseUint(string(t.input[t.pos:t.pos+n]), 16, 32)
		if err != nil || code > unicode.MaxRune {
			return fmt.Errorf("invalid \\%c escape at %s", ch, at)
		}
		for i := 0; i < n; i++ {
			t.advance()
		}
		value.WriteRune(rune(code))
		return nil
	}
	if ch >= '0' && ch <= '7' {
		code := 0
		for i := 0; i < 3 && t.peek() >= '0' && t.peek() <= '7'; i++ {
			code = code*8 + int(t.peek()-'0')
			t.advance()
		}
		value.WriteRune(rune(code))
		return nil
	}
	value.WriteRune('\\')
	return nil
}

func (t *Tokenizer) readOperator(start common.LineCol) error {
	for _, op := range t.rules.Operators {
		if !t.hasPrefix(op) {
			continue
		}
		for range op {
			t.advance()
		}
		switch op {
		case "(", "[", "{":
			t.depth++
		case ")", "]", "}":
			if t.depth > 0 {
				t.depth--
			}
		}
		t.emit(common.OperatorTokenType, op, start)
		return nil
	}
	return fmt.Errorf("invalid character '%c' at %s", t.peek(), start)
}

func (t *Tokenizer) hasPrefix(op string) bool {
	i := 0
	for _, r := range op {
		if t.pos+i >= len(t.input) || t.input[t.pos+i] != r {
			return false
		}
		i++
	}
	return true
}
