package tokenizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Warbo/python-decompiler/pkg/common"
	"github.com/stretchr/testify/require"
)

func types(tokens []*common.Token) string {
	s := ""
	for _, t := range tokens {
		s += string(t.Type)
	}
	return s
}

func texts(tokens []*common.Token) []string {
	var out []string
	for _, t := range tokens {
		if t.Text != "" {
			out = append(out, t.Text)
		}
	}
	return out
}

func TestTokenTypes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"assignment", "x = 1\n", "VOnNE"},
		{"no trailing newline", "x = 1", "VOnNE"},
		{"empty", "", "E"},
		{"only comments", "# nothing\n\n   # here\n", "E"},
		{"block", "if a:\n    b\nc\n", "KVON>VN<VNE"},
		{"nested blocks close at end", "if a:\n    if b:\n        c", "KVON>KVON>VN<<E"},
		{"newlines inside brackets", "f(a,\n  b)\n", "VOVOVONE"},
		{"continuation", "x = \\\n  1\n", "VOnNE"},
		{"comment after code", "x  # trailing\n\n", "VNE"},
		{"string", "'a'\n", "sNE"},
		{"keywords", "not None\n", "KKNE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, types(tokens))
		})
	}
}

func TestTabsIndentToMultiplesOfEight(t *testing.T) {
	tokens, err := Tokenize("if a:\n\tb\n        c\n")
	require.NoError(t, err)
	require.Equal(t, "KVON>VNVN<E", types(tokens))
}

func TestLongestOperatorWins(t *testing.T) {
	tokens, err := Tokenize("a **= b // c ** d <= e\n")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "**=", "b", "//", "c", "**", "d", "<=", "e"}, texts(tokens))
}

func TestNumbers(t *testing.T) {
	tokens, err := Tokenize("0x1F 1_000 1.5e-3 2j .5 7. 1e999\n")
	require.NoError(t, err)
	require.Equal(t, []string{"0x1F", "1_000", "1.5e-3", "2j", ".5", "7.", "1e999"}, texts(tokens))
	for _, token := range tokens[:7] {
		require.Equal(t, common.NumberTokenType, token.Type)
	}
}

func TestStringValues(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`'a\'b'`, "a'b"},
		{`"c\n"`, "c\n"},
		{`r"\d"`, `\d`},
		{`"\x41\u00e9\U0001F600\101"`, "A\u00e9\U0001F600A"},
		{`"\q"`, `\q`},
		{`"""two` + "\n" + `lines"""`, "two\nlines"},
		{`'''it's'''`, "it's"},
		{`"tab\there\x00\a\v"`, "tab\there\x00\a\v"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			require.NoError(t, err)
			require.Equal(t, common.StringTokenType, tokens[0].Type)
			require.NotNil(t, tokens[0].Value)
			require.Equal(t, tt.want, *tokens[0].Value)
			require.Equal(t, tt.input, tokens[0].Text)
		})
	}
}

func TestSpans(t *testing.T) {
	tokens, err := Tokenize("x = 1\nif y:\n    z\n")
	require.NoError(t, err)
	one := tokens[2]
	require.Equal(t, "1", one.Text)
	require.Equal(t, common.Span{StartLine: 1, StartColumn: 5, EndLine: 1, EndColumn: 6}, one.Span)
	z := tokens[9]
	require.Equal(t, "z", z.Text)
	require.Equal(t, 3, z.Span.StartLine)
	require.Equal(t, 5, z.Span.StartColumn)
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bad dedent", "if a:\n        b\n    c\n", "unindent does not match any outer indentation level at line 3"},
		{"leading indent", "  x\n", "unexpected indent at line 1, column 3"},
		{"unterminated", "'abc\n", "unterminated string starting at line 1, column 1"},
		{"unterminated triple", `"""abc`, "unterminated string"},
		{"invalid character", "a $ b\n", "invalid character '$' at line 1, column 3"},
		{"bad number", "12abc\n", "invalid number literal"},
		{"bad escape", `"\xZZ"`, "invalid \\x escape"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRulesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keyword: [print]\noperator: [\"<>\"]\n"), 0o600))

	file, err := LoadRulesFile(path)
	require.NoError(t, err)
	rules, err := ApplyRulesToDefaults(file)
	require.NoError(t, err)

	tokens, err := New(rules).Tokenize("print a <> b\n")
	require.NoError(t, err)
	require.Equal(t, "KVOVNE", types(tokens))
	require.Equal(t, "<>", tokens[2].Text)
}

func TestRulesFileErrors(t *testing.T) {
	_, err := LoadRulesFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "failed to read rules file")

	_, err = ApplyRulesToDefaults(&RulesFile{Operator: []string{"abc"}})
	require.ErrorContains(t, err, "does not look like punctuation")

	_, err = ApplyRulesToDefaults(&RulesFile{Keyword: []string{"+"}})
	require.ErrorContains(t, err, "does not look like a name")
}
