package rewriter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Warbo/python-decompiler/pkg/ast"
	"github.com/Warbo/python-decompiler/pkg/common"
)

// Count constrains the length of a list field.
type Count struct {
	Exactly *int `yaml:"count,omitempty"`
	Min     *int `yaml:"min,omitempty"`
	Max     *int `yaml:"max,omitempty"`
}

func Exactly(n int) Count {
	return Count{Exactly: &n}
}

func AtLeast(n int) Count {
	return Count{Min: &n}
}

func AtMost(n int) Count {
	return Count{Max: &n}
}

func Between(lo, hi int) Count {
	return Count{Min: &lo, Max: &hi}
}

// AnyCount accepts every length.
func AnyCount() Count {
	return Count{}
}

func (c Count) Allows(n int) bool {
	if c.Exactly != nil && n != *c.Exactly {
		return false
	}
	if c.Min != nil && n < *c.Min {
		return false
	}
	if c.Max != nil && n > *c.Max {
		return false
	}
	return true
}

func (c Count) String() string {
	var parts []string
	if c.Exactly != nil {
		parts = append(parts, fmt.Sprintf("== %d", *c.Exactly))
	}
	if c.Min != nil {
		parts = append(parts, fmt.Sprintf(">= %d", *c.Min))
	}
	if c.Max != nil {
		parts = append(parts, fmt.Sprintf("<= %d", *c.Max))
	}
	if len(parts) == 0 {
		return "any"
	}
	return strings.Join(parts, ", ")
}

// Pattern describes the shape an alternative accepts: the variant, the
// lengths of its list fields, which optional fields are present or absent,
// and exact values of leaf fields.
type Pattern struct {
	Tag     ast.Tag           `yaml:"tag"`
	Lists   map[string]Count  `yaml:"lists,omitempty"`
	Present []string          `yaml:"present,omitempty"`
	Absent  []string          `yaml:"absent,omitempty"`
	Leaves  map[string]string `yaml:"leaves,omitempty"`
}

func (p *Pattern) Matches(n ast.Node) bool {
	if n == nil || (p.Tag != "" && n.Tag() != p.Tag) {
		return false
	}
	for name, count := range p.Lists {
		f, ok := ast.FieldOf(n, name)
		if !ok || f.Kind != ast.ListField || !count.Allows(len(f.Nodes)) {
			return false
		}
	}
	for _, name := range p.Present {
		f, ok := ast.FieldOf(n, name)
		if !ok || !f.Present() {
			return false
		}
	}
	for _, name := range p.Absent {
		f, ok := ast.FieldOf(n, name)
		if !ok || f.Present() {
			return false
		}
	}
	if len(p.Leaves) > 0 {
		leaves := ast.LeafOptions(n)
		for key, want := range p.Leaves {
			if got, ok := leaves[key]; !ok || got != want {
				return false
			}
		}
	}
	return true
}

// Validate checks that the pattern only mentions fields its variant has.
func (p *Pattern) Validate(name string) error {
	if p.Tag == "" {
		return fmt.Errorf("pattern has no tag: %s", name)
	}
	proto, ok := ast.New(p.Tag)
	if !ok {
		return fmt.Errorf("pattern %s: unknown tag %q", name, p.Tag)
	}
	for _, field := range sortedKeys(p.Lists) {
		if f, ok := ast.FieldOf(proto, field); !ok || f.Kind != ast.ListField {
			return fmt.Errorf("pattern %s: %s has no list field %q", name, p.Tag, field)
		}
	}
	for _, field := range append(append([]string{}, p.Present...), p.Absent...) {
		f, ok := ast.FieldOf(proto, field)
		if !ok || !optional(f) {
			return fmt.Errorf("pattern %s: %s has no optional field %q", name, p.Tag, field)
		}
	}
	leaves := ast.LeafOptions(proto)
	for _, key := range sortedKeys(p.Leaves) {
		if _, ok := leaves[key]; ok {
			continue
		}
		// Absent optional leaves are missing from the prototype's options.
		if f, ok := ast.FieldOf(proto, key); ok && f.Kind == ast.LeafField {
			continue
		}
		return fmt.Errorf("pattern %s: %s has no leaf field %q", name, p.Tag, key)
	}
	return nil
}

func optional(f ast.Field) bool {
	if f.Kind == ast.OptionalField {
		return true
	}
	_, ok := f.Leaf.(common.Option[string])
	return f.Kind == ast.LeafField && ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
