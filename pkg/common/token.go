package common

// TokenType represents the different types of tokens.
type TokenType string

const (
	NameTokenType     TokenType = "V" // Identifiers
	KeywordTokenType  TokenType = "K" // Reserved words (def, if, lambda)
	NumberTokenType   TokenType = "n" // Integer, float and imaginary literals
	StringTokenType   TokenType = "s" // Quoted string literals
	OperatorTokenType TokenType = "O" // Punctuation and operators
	NewlineTokenType  TokenType = "N" // End of a logical line
	IndentTokenType   TokenType = ">" // Start of a deeper block
	DedentTokenType   TokenType = "<" // End of a block
	EndTokenType      TokenType = "E" // End of input
)

// Token is a single lexeme of the core surface syntax.
type Token struct {
	Text string    `json:"text"`
	Span Span      `json:"span"`
	Type TokenType `json:"type"`

	// Value holds the decoded contents of string tokens.
	Value *string `json:"value,omitempty"`
}

func (t *Token) Is(tokenType TokenType, text string) bool {
	return t != nil && t.Type == tokenType && t.Text == text
}
