package common

import (
	"fmt"
	"io"
	"strings"
)

// Node is the generic term view of a tree: a name, leaf attributes and
// ordered children. Printers and readers work on this shape only.
type Node struct {
	Name     string            `json:"name" yaml:"name"`
	Options  map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
	Children []*Node           `json:"children,omitempty" yaml:"children,omitempty"`
}

const OptionValue = "value"
const OptionName = "name"
const OptionKind = "kind"
const OptionAttr = "attr"
const OptionOp = "op"
const OptionDoc = "doc"

// TrimValue trims a value if it's a token value and trimming is enabled
func TrimValue(key, value string, trimLength int) string {
	if key == OptionValue && trimLength > 0 && len(value) > trimLength {
		// Reserve space for Unicode ellipsis (1 character: "…")
		if trimLength >= 2 {
			return value[:trimLength-1] + "…"
		} else if trimLength >= 1 {
			return value[:trimLength]
		}
	}
	return value
}

// PrintFunc writes a tree in one of the supported formats.
type PrintFunc func(*Node, string, io.Writer, *PrintOptions) error

func PickPrintFunc(format string) (PrintFunc, error) {
	switch strings.ToUpper(format) {
	case "JSON":
		return PrintASTJSON, nil
	case "YAML":
		return PrintASTYAML, nil
	case "ASCIITREE":
		return PrintASTAsciiTree, nil
	case "DOT":
		return PrintASTDOT, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// Equal reports whether two terms have the same name, options and children.
// A nil options map equals an empty one.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Name != other.Name || len(n.Options) != len(other.Options) || len(n.Children) != len(other.Children) {
		return false
	}
	for key, value := range n.Options {
		if v, ok := other.Options[key]; !ok || v != value {
			return false
		}
	}
	for i, child := range n.Children {
		if !child.Equal(other.Children[i]) {
			return false
		}
	}
	return true
}
