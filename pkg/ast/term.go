package ast

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/Warbo/python-decompiler/pkg/common"
)

// ToTerm converts a node to the generic term view. Leaf fields become
// options; each node-bearing field becomes a child named after the field,
// holding zero or more terms.
func ToTerm(n Node) *common.Node {
	if _, ok := structOf(n); !ok {
		return nil
	}
	term := &common.Node{Name: string(n.Tag())}
	for _, f := range Fields(n) {
		if f.Kind == LeafField {
			encodeLeaf(term, f)
			continue
		}
		slot := &common.Node{Name: f.Name}
		for _, child := range f.Nodes {
			slot.Children = append(slot.Children, ToTerm(child))
		}
		term.Children = append(term.Children, slot)
	}
	return term
}

func encodeLeaf(term *common.Node, f Field) {
	if term.Options == nil {
		term.Options = map[string]string{}
	}
	switch leaf := f.Leaf.(type) {
	case string:
		term.Options[f.Name] = leaf
	case bool:
		term.Options[f.Name] = strconv.FormatBool(leaf)
	case int:
		term.Options[f.Name] = strconv.Itoa(leaf)
	case []string:
		term.Options[f.Name] = strings.Join(leaf, ",")
	case common.Option[string]:
		if value, ok := leaf.Get(); ok {
			term.Options[f.Name] = value
		}
	case Literal:
		term.Options[common.OptionKind] = leaf.Kind.String()
		term.Options[common.OptionValue] = leaf.Text()
	}
}

// FromTerm rebuilds a node from its term view. It is the inverse of ToTerm
// and the way trees produced outside this module enter it.
func FromTerm(term *common.Node) (Node, error) {
	if term == nil {
		return nil, fmt.Errorf("missing node")
	}
	n, ok := New(Tag(term.Name))
	if !ok {
		return nil, fmt.Errorf("unknown node tag: %q", term.Name)
	}
	slots := make(map[string]*common.Node, len(term.Children))
	for _, slot := range term.Children {
		if slot == nil {
			return nil, fmt.Errorf("%s: missing field", term.Name)
		}
		if _, dup := slots[slot.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate field %q", term.Name, slot.Name)
		}
		if kind, ok := HasField(n.Tag(), slot.Name); !ok || kind == LeafField {
			return nil, fmt.Errorf("%s: unknown field %q", term.Name, slot.Name)
		}
		slots[slot.Name] = slot
	}
	v := reflect.ValueOf(n).Elem()
	for _, info := range shapeOf(v.Type()) {
		fv := v.Field(info.index)
		if info.kind == LeafField {
			if err := decodeLeaf(fv, info, term); err != nil {
				return nil, fmt.Errorf("%s.%s: %w", term.Name, info.name, err)
			}
			continue
		}
		slot := slots[info.name]
		var children []Node
		if slot != nil {
			for i, childTerm := range slot.Children {
				child, err := FromTerm(childTerm)
				if err != nil {
					return nil, fmt.Errorf("%s.%s[%d]: %w", term.Name, info.name, i, err)
				}
				children = append(children, child)
			}
		}
		switch info.kind {
		case ChildField:
			if len(children) != 1 {
				return nil, fmt.Errorf("%s.%s: expected exactly one node, found %d", term.Name, info.name, len(children))
			}
			if err := place(n, info, children[0]); err != nil {
				return nil, err
			}
			fv.Set(reflect.ValueOf(children[0]))
		case OptionalField:
			switch len(children) {
			case 0:
			case 1:
				fv.Set(reflect.ValueOf(common.Some(children[0])))
			default:
				return nil, fmt.Errorf("%s.%s: expected at most one node, found %d", term.Name, info.name, len(children))
			}
		case ListField:
			list := reflect.MakeSlice(info.typ, len(children), len(children))
			for i, child := range children {
				if err := placeElem(n, info, child); err != nil {
					return nil, err
				}
				list.Index(i).Set(reflect.ValueOf(child))
			}
			fv.Set(list)
		}
	}
	return n, nil
}

func decodeLeaf(fv reflect.Value, info fieldInfo, term *common.Node) error {
	if info.typ == literalType {
		lit, err := ParseLiteral(term.Options[common.OptionKind], term.Options[common.OptionValue])
		if err != nil {
			return err
		}
		fv.Set(reflect.ValueOf(lit))
		return nil
	}
	text, present := term.Options[info.name]
	switch {
	case info.typ == optionStrType:
		if present {
			fv.Set(reflect.ValueOf(common.Some(text)))
		}
	case info.typ == stringsType:
		if text != "" {
			fv.Set(reflect.ValueOf(strings.Split(text, ",")))
		}
	case info.typ.Kind() == reflect.String:
		fv.SetString(text)
	case info.typ.Kind() == reflect.Bool:
		if present {
			b, err := strconv.ParseBool(text)
			if err != nil {
				return err
			}
			fv.SetBool(b)
		}
	case info.typ.Kind() == reflect.Int:
		if present {
			i, err := strconv.Atoi(text)
			if err != nil {
				return err
			}
			fv.SetInt(int64(i))
		}
	}
	return nil
}

// Equal reports whether two trees have the same variants and the same
// fields, recursively. Floats compare by their canonical text, so NaN
// equals NaN.
func Equal(a, b Node) bool {
	return ToTerm(a).Equal(ToTerm(b))
}

// LeafOptions returns the leaf fields of n as they appear in its term view.
func LeafOptions(n Node) map[string]string {
	term := &common.Node{}
	for _, f := range Fields(n) {
		if f.Kind == LeafField {
			encodeLeaf(term, f)
		}
	}
	return term.Options
}
