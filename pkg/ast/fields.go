package ast

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/Warbo/python-decompiler/pkg/common"
)

type FieldKind int

const (
	ChildField    FieldKind = iota // exactly one node
	ListField                      // ordered nodes
	OptionalField                  // zero or one node, explicitly marked
	LeafField                      // plain data
)

// Field is a read-only view of one field of a node.
type Field struct {
	Name  string // lower camel case, as used by patterns and the term view
	Kind  FieldKind
	Nodes []Node // the child, the list elements, or the present optional
	Leaf  any    // the Go value of a leaf field
}

// Present reports whether an optional field holds a node, or an optional
// leaf holds a value. Other fields are always present.
func (f Field) Present() bool {
	switch f.Kind {
	case OptionalField:
		return len(f.Nodes) == 1
	case LeafField:
		if opt, ok := f.Leaf.(common.Option[string]); ok {
			return opt.IsPresent()
		}
	}
	return true
}

type fieldInfo struct {
	index int
	name  string
	kind  FieldKind
	typ   reflect.Type
}

var (
	nodeType       = reflect.TypeOf((*Node)(nil)).Elem()
	optionNodeType = reflect.TypeOf(common.Option[Node]{})
	optionStrType  = reflect.TypeOf(common.Option[string]{})
	literalType    = reflect.TypeOf(Literal{})
	stringsType    = reflect.TypeOf([]string{})
)

var shapes sync.Map // reflect.Type -> []fieldInfo

func shapeOf(t reflect.Type) []fieldInfo {
	if cached, ok := shapes.Load(t); ok {
		return cached.([]fieldInfo)
	}
	var infos []fieldInfo
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		infos = append(infos, fieldInfo{
			index: i,
			name:  lowerFirst(sf.Name),
			kind:  kindOf(sf.Type),
			typ:   sf.Type,
		})
	}
	shapes.Store(t, infos)
	return infos
}

func kindOf(t reflect.Type) FieldKind {
	switch {
	case t == optionNodeType:
		return OptionalField
	case t == nodeType, t.Kind() == reflect.Ptr && t.Implements(nodeType):
		return ChildField
	case t.Kind() == reflect.Slice && (t.Elem() == nodeType || t.Elem().Kind() == reflect.Ptr && t.Elem().Implements(nodeType)):
		return ListField
	case t.Kind() == reflect.String, t.Kind() == reflect.Bool, t.Kind() == reflect.Int,
		t == stringsType, t == optionStrType, t == literalType:
		return LeafField
	}
	panic(fmt.Sprintf("ast: unsupported field type %s", t))
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func structOf(n Node) (reflect.Value, bool) {
	if n == nil {
		return reflect.Value{}, false
	}
	v := reflect.ValueOf(n)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return reflect.Value{}, false
	}
	return v.Elem(), true
}

// Fields returns the fields of n in declaration order.
func Fields(n Node) []Field {
	v, ok := structOf(n)
	if !ok {
		return nil
	}
	infos := shapeOf(v.Type())
	fields := make([]Field, 0, len(infos))
	for _, info := range infos {
		fields = append(fields, readField(v.Field(info.index), info))
	}
	return fields
}

// FieldOf returns the named field of n.
func FieldOf(n Node, name string) (Field, bool) {
	v, ok := structOf(n)
	if !ok {
		return Field{}, false
	}
	for _, info := range shapeOf(v.Type()) {
		if info.name == name {
			return readField(v.Field(info.index), info), true
		}
	}
	return Field{}, false
}

// HasField reports whether variants with the given tag have the named field,
// and of which kind.
func HasField(tag Tag, name string) (FieldKind, bool) {
	proto, ok := New(tag)
	if !ok {
		return 0, false
	}
	f, ok := FieldOf(proto, name)
	return f.Kind, ok
}

func readField(fv reflect.Value, info fieldInfo) Field {
	f := Field{Name: info.name, Kind: info.kind}
	switch info.kind {
	case ChildField:
		if !fv.IsNil() {
			f.Nodes = []Node{fv.Interface().(Node)}
		}
	case ListField:
		f.Nodes = make([]Node, fv.Len())
		for i := range f.Nodes {
			f.Nodes[i] = fv.Index(i).Interface().(Node)
		}
	case OptionalField:
		if child, ok := fv.Interface().(common.Option[Node]).Get(); ok {
			f.Nodes = []Node{child}
		}
	case LeafField:
		f.Leaf = fv.Interface()
	}
	return f
}

// MapChildren returns a copy of n whose node-bearing fields hold the results
// of f applied to the originals, in declaration order. n is not modified.
// index is -1 for fields that are not lists.
func MapChildren(n Node, f func(field string, index int, child Node) (Node, error)) (Node, error) {
	v, ok := structOf(n)
	if !ok {
		return nil, fmt.Errorf("cannot map children of %v", n)
	}
	cp := reflect.New(v.Type())
	cp.Elem().Set(v)
	out := cp.Elem()
	for _, info := range shapeOf(v.Type()) {
		fv := v.Field(info.index)
		switch info.kind {
		case ChildField:
			if fv.IsNil() {
				continue
			}
			nn, err := f(info.name, -1, fv.Interface().(Node))
			if err != nil {
				return nil, err
			}
			if err := place(n, info, nn); err != nil {
				return nil, err
			}
			out.Field(info.index).Set(reflect.ValueOf(nn))
		case ListField:
			if fv.IsNil() {
				continue
			}
			list := reflect.MakeSlice(info.typ, fv.Len(), fv.Len())
			for i := 0; i < fv.Len(); i++ {
				nn, err := f(info.name, i, fv.Index(i).Interface().(Node))
				if err != nil {
					return nil, err
				}
				if err := placeElem(n, info, nn); err != nil {
					return nil, err
				}
				list.Index(i).Set(reflect.ValueOf(nn))
			}
			out.Field(info.index).Set(list)
		case OptionalField:
			child, present := fv.Interface().(common.Option[Node]).Get()
			if !present {
				continue
			}
			nn, err := f(info.name, -1, child)
			if err != nil {
				return nil, err
			}
			if nn == nil {
				return nil, fmt.Errorf("%s.%s: replacement is nil", n.Tag(), info.name)
			}
			out.Field(info.index).Set(reflect.ValueOf(common.Some(nn)))
		}
	}
	return cp.Interface().(Node), nil
}

func place(parent Node, info fieldInfo, child Node) error {
	if child == nil {
		return fmt.Errorf("%s.%s: replacement is nil", parent.Tag(), info.name)
	}
	if !reflect.TypeOf(child).AssignableTo(info.typ) {
		return fmt.Errorf("%s.%s: cannot hold a %s", parent.Tag(), info.name, child.Tag())
	}
	return nil
}

func placeElem(parent Node, info fieldInfo, child Node) error {
	if child == nil {
		return fmt.Errorf("%s.%s: replacement is nil", parent.Tag(), info.name)
	}
	if !reflect.TypeOf(child).AssignableTo(info.typ.Elem()) {
		return fmt.Errorf("%s.%s: cannot hold a %s", parent.Tag(), info.name, child.Tag())
	}
	return nil
}

// Nodes widens a typed slice of nodes.
func Nodes[T Node](xs []T) []Node {
	out := make([]Node, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

// Walk visits n and its descendants in pre-order. Returning false from
// visit skips the node's children.
func Walk(n Node, visit func(Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for _, f := range Fields(n) {
		for _, child := range f.Nodes {
			Walk(child, visit)
		}
	}
}
