package common

import (
	"strconv"
	"strings"
)

// Path locates a node by the chain of fields leading to it from the root.
// SiblingPosition is -1 for fields that hold a single child.
type Path struct {
	Parent          string // Name of the enclosing node
	Field           string // Field of the parent holding this node
	SiblingPosition int    // Position within the field, when it is a list
	Others          *Path
}

func (p *Path) Extend(parent, field string, position int) *Path {
	return &Path{Parent: parent, Field: field, SiblingPosition: position, Others: p}
}

func (p *Path) String() string {
	if p == nil {
		return "<root>"
	}
	var steps []string
	for q := p; q != nil; q = q.Others {
		steps = append(steps, q.step())
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return strings.Join(steps, " > ")
}

func (p *Path) step() string {
	var b strings.Builder
	b.WriteString(p.Parent)
	b.WriteString(".")
	b.WriteString(p.Field)
	if p.SiblingPosition >= 0 {
		b.WriteString("[")
		b.WriteString(strconv.Itoa(p.SiblingPosition))
		b.WriteString("]")
	}
	return b.String()
}
