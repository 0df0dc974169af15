package ast

import (
	"bytes"
	"math"
	"testing"

	"github.com/Warbo/python-decompiler/pkg/common"
)

func sampleFunction() *Function {
	return &Function{
		Name:     "f",
		Argnames: []string{"a", "b", "rest"},
		Defaults: []Node{Int(1)},
		Varargs:  true,
		Doc:      common.Some("Adds."),
		Code: Block(
			&If{
				Tests: []*Branch{{Test: N("a"), Body: Block(&Return{Value: Some(&Add{Left: N("a"), Right: N("b")})})}},
				Else:  Some(Block(&Pass{})),
			},
		),
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Node
		want bool
	}{
		{"same names", N("x"), N("x"), true},
		{"different names", N("x"), N("y"), false},
		{"load and store differ", N("x"), &AssName{Name: "x"}, false},
		{"nan equals nan", Float(math.NaN()), Float(math.NaN()), true},
		{"signed zeros differ", Float(0), Float(math.Copysign(0, -1)), false},
		{"absent optionals", &Return{}, &Return{Value: Absent()}, true},
		{"absent and present", &Return{}, &Return{Value: Some(NoneConst())}, false},
		{"list order matters", &Tuple{Nodes: []Node{N("a"), N("b")}}, &Tuple{Nodes: []Node{N("b"), N("a")}}, false},
		{"nil and empty lists", &Tuple{}, &Tuple{Nodes: []Node{}}, true},
		{"deep", sampleFunction(), sampleFunction(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMapChildrenDoesNotMutate(t *testing.T) {
	orig := &Add{Left: N("a"), Right: N("b")}
	mapped, err := MapChildren(orig, func(field string, index int, child Node) (Node, error) {
		return N(child.(*Name).Name + "2"), nil
	})
	if err != nil {
		t.Fatalf("MapChildren failed: %v", err)
	}
	if orig.Left.(*Name).Name != "a" || orig.Right.(*Name).Name != "b" {
		t.Errorf("original was modified: %#v", orig)
	}
	want := &Add{Left: N("a2"), Right: N("b2")}
	if !Equal(mapped, want) {
		t.Errorf("got %#v, want %#v", mapped, want)
	}
}

func TestMapChildrenVisitsFieldsInOrder(t *testing.T) {
	var seen []string
	_, err := MapChildren(sampleFunction(), func(field string, index int, child Node) (Node, error) {
		seen = append(seen, field)
		return child, nil
	})
	if err != nil {
		t.Fatalf("MapChildren failed: %v", err)
	}
	want := []string{"defaults", "code"}
	if len(seen) != len(want) {
		t.Fatalf("visited %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("visit %d: got %s, want %s", i, seen[i], want[i])
		}
	}
}

func TestMapChildrenRejectsWrongType(t *testing.T) {
	branch := &Branch{Test: N("c"), Body: Block(&Pass{})}
	_, err := MapChildren(branch, func(field string, index int, child Node) (Node, error) {
		if field == "body" {
			return &Pass{}, nil
		}
		return child, nil
	})
	if err == nil {
		t.Fatal("expected an error placing a Pass into Branch.body")
	}
}

func TestTermRoundTripThroughJSON(t *testing.T) {
	m := &Module{Doc: common.Some("doc"), Body: Block(sampleFunction(), &Discard{Expr: Float(math.Inf(-1))})}
	var buf bytes.Buffer
	if err := common.PrintASTJSON(ToTerm(m), "", &buf, nil); err != nil {
		t.Fatalf("print failed: %v", err)
	}
	term, err := common.ReadASTJSON(&buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	back, err := FromTerm(term)
	if err != nil {
		t.Fatalf("FromTerm failed: %v", err)
	}
	if !Equal(m, back) {
		t.Errorf("round trip changed the tree:\n got %#v\nwant %#v", back, m)
	}
}

func TestFromTermErrors(t *testing.T) {
	tests := []struct {
		name string
		term *common.Node
	}{
		{"unknown tag", &common.Node{Name: "Print"}},
		{"unknown field", &common.Node{Name: "Discard", Children: []*common.Node{{Name: "value"}}}},
		{"missing child", &common.Node{Name: "Discard", Children: []*common.Node{{Name: "expr"}}}},
		{"bad literal", &common.Node{Name: "Const", Options: map[string]string{"kind": "int", "value": "x"}}},
		{"wrong child type", &common.Node{Name: "If", Children: []*common.Node{{Name: "tests", Children: []*common.Node{{Name: "Pass"}}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromTerm(tt.term); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestWalkCountsNodes(t *testing.T) {
	count := 0
	Walk(sampleFunction(), func(Node) bool {
		count++
		return true
	})
	// Function, Const, Stmt, If, Branch, Name, Stmt, Return, Add, Name, Name, Stmt, Pass
	if count != 13 {
		t.Errorf("visited %d nodes, want 13", count)
	}
}

func TestPositional(t *testing.T) {
	got := Positional([]string{"a", "b", "args", "kw"}, true, true)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Positional() = %v", got)
	}
}
