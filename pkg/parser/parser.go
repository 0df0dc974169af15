// Package parser reads Python source back into ast trees. It accepts the
// core syntax the renderer writes plus the operator sugar the desugaring
// transform removes, so both sides of a translation can be read.
package parser

import (
	"fmt"
	"slices"

	"github.com/Warbo/python-decompiler/pkg/ast"
	. "github.com/Warbo/python-decompiler/pkg/common"
	"github.com/Warbo/python-decompiler/pkg/tokenizer"
)

type TokenQueue struct {
	tokens []*Token
}

func NewTokenQueue(tokens []*Token) TokenQueue {
	return TokenQueue{
		tokens: tokens,
	}
}

func (q *TokenQueue) Peek() *Token {
	if len(q.tokens) == 0 {
		return nil
	}
	return q.tokens[0]
}

func (q *TokenQueue) Pop() *Token {
	if len(q.tokens) == 0 {
		return nil
	}
	token := q.tokens[0]
	q.tokens = q.tokens[1:]
	return token
}

type Parser struct {
	queue TokenQueue
}

func NewParser(tokens []*Token) *Parser {
	return &Parser{queue: NewTokenQueue(tokens)}
}

// StringToParser tokenizes input with the default tokenizer rules.
func StringToParser(input string) (*Parser, error) {
	tokens, err := tokenizer.Tokenize(input)
	if err != nil {
		return nil, err
	}
	return NewParser(tokens), nil
}

// ParseModule reads a whole source file. A leading string statement
// becomes the module docstring.
func ParseModule(input string) (*ast.Module, error) {
	p, err := StringToParser(input)
	if err != nil {
		return nil, err
	}
	return p.ReadModule()
}

// ParseStatements reads a sequence of statements without docstring
// extraction.
func ParseStatements(input string) (*ast.Stmt, error) {
	p, err := StringToParser(input)
	if err != nil {
		return nil, err
	}
	stmts, err := p.readStatementsUntil(EndTokenType)
	if err != nil {
		return nil, err
	}
	if _, err := p.MustReadType(EndTokenType, "end of input"); err != nil {
		return nil, err
	}
	return &ast.Stmt{Nodes: stmts}, nil
}

// ParseExpression reads a single expression list. A bare comma-separated
// list is a Tuple.
func ParseExpression(input string) (ast.Node, error) {
	p, err := StringToParser(input)
	if err != nil {
		return nil, err
	}
	e, err := p.readTestList()
	if err != nil {
		return nil, err
	}
	p.TryReadType(NewlineTokenType)
	if _, err := p.MustReadType(EndTokenType, "end of input"); err != nil {
		return nil, err
	}
	return e, nil
}

// ParseNode reads input as the same kind of fragment that a node with the
// given tag renders to. A single statement comes back on its own; several
// come back as a Stmt.
func ParseNode(tag ast.Tag, input string) (ast.Node, error) {
	switch {
	case tag == ast.TagModule:
		return ParseModule(input)
	case tag == ast.TagStmt:
		return ParseStatements(input)
	case ast.IsStatement(tag):
		stmt, err := ParseStatements(input)
		if err != nil {
			return nil, err
		}
		if len(stmt.Nodes) == 1 {
			return stmt.Nodes[0], nil
		}
		return stmt, nil
	}
	return ParseExpression(input)
}

func (p *Parser) ReadModule() (*ast.Module, error) {
	stmts, err := p.readStatementsUntil(EndTokenType)
	if err != nil {
		return nil, err
	}
	if _, err := p.MustReadType(EndTokenType, "end of input"); err != nil {
		return nil, err
	}
	doc, rest := docstring(stmts)
	return &ast.Module{Doc: doc, Body: &ast.Stmt{Nodes: rest}}, nil
}

// PeekToken returns the next token without consuming it. If there are no more
// tokens, it returns nil.
func (p *Parser) PeekToken() *Token {
	return p.queue.Peek()
}

// DropPeekedToken consumes the next token.
func (p *Parser) DropPeekedToken() {
	p.queue.Pop()
}

func describe(token *Token) string {
	switch token.Type {
	case NewlineTokenType:
		return "newline"
	case IndentTokenType:
		return "indent"
	case DedentTokenType:
		return "dedent"
	case EndTokenType:
		return "end of input"
	}
	return token.Text
}

func unexpected(token *Token, expecting string) error {
	if token == nil || token.Type == EndTokenType {
		return fmt.Errorf("found end of input while expecting '%s'", expecting)
	}
	return fmt.Errorf("found '%s' while expecting '%s' at %s", describe(token), expecting, token.Span.Start())
}

func (p *Parser) MustReadToken(expectedType TokenType, text string) (*Token, error) {
	token := p.PeekToken()
	if !token.Is(expectedType, text) {
		return nil, unexpected(token, text)
	}
	p.DropPeekedToken()
	return token, nil
}

func (p *Parser) TryReadToken(expectedType TokenType, text string) *Token {
	token := p.PeekToken()
	if token.Is(expectedType, text) {
		p.DropPeekedToken()
		return token
	}
	return nil
}

func (p *Parser) TryReadOneOf(expectedType TokenType, options []string) *Token {
	token := p.PeekToken()
	if token != nil && token.Type == expectedType && slices.Contains(options, token.Text) {
		p.DropPeekedToken()
		return token
	}
	return nil
}

// MustReadType consumes a token of the given type whatever its text.
func (p *Parser) MustReadType(expectedType TokenType, expecting string) (*Token, error) {
	token := p.TryReadType(expectedType)
	if token == nil {
		return nil, unexpected(p.PeekToken(), expecting)
	}
	return token, nil
}

func (p *Parser) TryReadType(expectedType TokenType) *Token {
	token := p.PeekToken()
	if token != nil && token.Type == expectedType {
		p.DropPeekedToken()
		return token
	}
	return nil
}

func (p *Parser) MustReadName() (string, error) {
	token, err := p.MustReadType(NameTokenType, "name")
	if err != nil {
		return "", err
	}
	return token.Text, nil
}

func (p *Parser) isKeyword(text string) bool {
	return p.PeekToken().Is(KeywordTokenType, text)
}

func (p *Parser) isOperator(text string) bool {
	return p.PeekToken().Is(OperatorTokenType, text)
}

func (p *Parser) tryKeyword(text string) bool {
	return p.TryReadToken(KeywordTokenType, text) != nil
}

func (p *Parser) tryOperator(text string) bool {
	return p.TryReadToken(OperatorTokenType, text) != nil
}

func (p *Parser) mustKeyword(text string) error {
	_, err := p.MustReadToken(KeywordTokenType, text)
	return err
}

func (p *Parser) mustOperator(text string) error {
	_, err := p.MustReadToken(OperatorTokenType, text)
	return err
}
