package desugar

import (
	"strconv"

	"github.com/Warbo/python-decompiler/pkg/ast"
	"github.com/Warbo/python-decompiler/pkg/resolver"
)

// TemporaryVariable is a fresh name bound by the transform.
type TemporaryVariable struct {
	Name string
}

// temps allocates temporaries for one transform. Names are never ones the
// input tree uses; released names are handed out again before new ones.
type temps struct {
	prefix  string
	used    map[string]bool
	next    int
	freeTmp []*TemporaryVariable
}

func newTemps(prefix string, used map[string]bool) *temps {
	return &temps{prefix: prefix, used: used}
}

func (t *temps) NewTemporaryVariable() *TemporaryVariable {
	for {
		name := t.prefix + strconv.Itoa(t.next)
		t.next++
		if !t.used[name] {
			return &TemporaryVariable{Name: name}
		}
	}
}

func (t *temps) AllocateTemporaryVariable() *TemporaryVariable {
	if len(t.freeTmp) > 0 {
		tv := t.freeTmp[len(t.freeTmp)-1]
		t.freeTmp = t.freeTmp[:len(t.freeTmp)-1]
		return tv
	}
	return t.NewTemporaryVariable()
}

// FreeTemporaryVariable releases temporaries in reverse, so that the next
// allocations return them in their original order.
func (t *temps) FreeTemporaryVariable(tvs ...*TemporaryVariable) {
	for i := len(tvs) - 1; i >= 0; i-- {
		t.freeTmp = append(t.freeTmp, tvs[i])
	}
}

// deleteTemporaries unbinds tvs once the statement that needed them is
// done, so they never show up in a module or class namespace.
func deleteTemporaries(tvs []*TemporaryVariable) []ast.Node {
	if len(tvs) == 0 {
		return nil
	}
	targets := make([]ast.Node, len(tvs))
	for i, tv := range tvs {
		targets[i] = &ast.AssName{Name: tv.Name}
	}
	return []ast.Node{&ast.Delete{Targets: targets}}
}

// session is the per-transform state handed to every rule action.
type session struct {
	info   *resolver.Info
	temps  *temps
	thunks map[*ast.Lambda]bool
}

func newSession(info *resolver.Info, prefix string) *session {
	var used map[string]bool
	if info != nil {
		used = info.Used
	}
	return &session{info: info, temps: newTemps(prefix, used), thunks: make(map[*ast.Lambda]bool)}
}

// thunk wraps body in a lambda taking no arguments and remembers it as one
// the transform made.
func (s *session) thunk(body ast.Node) *ast.Lambda {
	l := ast.Thunk(body)
	s.thunks[l] = true
	return l
}

func (s *session) isThunk(n ast.Node) bool {
	l, ok := n.(*ast.Lambda)
	return ok && s.thunks[l]
}

// scope returns the resolved scope n introduced.
func (s *session) scope(n ast.Node) (*resolver.Scope, bool) {
	if s == nil || s.info == nil {
		return nil, false
	}
	scope, ok := s.info.Scopes[n]
	return scope, ok
}

func (s *session) qualName(n ast.Node) (string, bool) {
	if s == nil || s.info == nil {
		return "", false
	}
	name, ok := s.info.QualNames[n]
	return name, ok
}
