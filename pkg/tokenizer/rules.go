package tokenizer

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// RulesFile represents the structure of a YAML rules file
type RulesFile struct {
	Keyword  []string `yaml:"keyword"`
	Operator []string `yaml:"operator"`
}

// TokenizerRules holds the reserved words and the operator spellings. The
// operators are kept longest first, so that matching is greedy.
type TokenizerRules struct {
	Keywords  map[string]bool
	Operators []string
}

var defaultKeywords = []string{
	"False", "None", "True", "and", "as", "assert", "break", "class",
	"continue", "def", "del", "elif", "else", "except", "finally", "for",
	"from", "global", "if", "import", "in", "is", "lambda", "not", "or",
	"pass", "raise", "return", "while", "with", "yield",
}

var defaultOperators = []string{
	"**=", "//=", ">>=", "<<=",
	"!=", "==", "<=", ">=", "**", "//", "<<", ">>", "->",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"+", "-", "*", "/", "%", "&", "|", "^", "~", "<", ">",
	"(", ")", "[", "]", "{", "}", ",", ":", ".", ";", "@", "=",
}

// DefaultRules returns the default tokenizer rules
func DefaultRules() *TokenizerRules {
	rules := &TokenizerRules{Keywords: map[string]bool{}}
	for _, k := range defaultKeywords {
		rules.Keywords[k] = true
	}
	rules.setOperators(defaultOperators)
	return rules
}

func (r *TokenizerRules) setOperators(ops []string) {
	r.Operators = append([]string(nil), ops...)
	sort.SliceStable(r.Operators, func(i, j int) bool {
		return len(r.Operators[i]) > len(r.Operators[j])
	})
}

// LoadRulesFile loads and parses a YAML rules file
func LoadRulesFile(filename string) (*RulesFile, error) {
	data, err := os.ReadFile(filename) // #nosec G304 - CLI tool reads user-specified config files
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file '%s': %w", filename, err)
	}

	var rules RulesFile
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse YAML in rules file '%s': %w", filename, err)
	}

	return &rules, nil
}

// ApplyRulesToDefaults adds the words and operators of a RulesFile to the
// defaults. An operator that starts like a letter is rejected, since it
// could never be told apart from a name.
func ApplyRulesToDefaults(rules *RulesFile) (*TokenizerRules, error) {
	tokenizerRules := DefaultRules()
	for _, k := range rules.Keyword {
		if !isNameStart(firstRune(k)) {
			return nil, fmt.Errorf("keyword %q does not look like a name", k)
		}
		tokenizerRules.Keywords[k] = true
	}
	if len(rules.Operator) > 0 {
		ops := append([]string(nil), tokenizerRules.Operators...)
		for _, op := range rules.Operator {
			if op == "" || isNameStart(firstRune(op)) || isDigit(firstRune(op)) {
				return nil, fmt.Errorf("operator %q does not look like punctuation", op)
			}
			ops = append(ops, op)
		}
		tokenizerRules.setOperators(ops)
	}
	return tokenizerRules, nil
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
