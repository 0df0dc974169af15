package resolver

import "github.com/Warbo/python-decompiler/pkg/ast"

// ScopeKind is the construct that introduced a scope.
type ScopeKind string

const (
	ModuleScope   ScopeKind = "module"
	ClassScope    ScopeKind = "class"
	FunctionScope ScopeKind = "function"
	LambdaScope   ScopeKind = "lambda"
)

// Scope represents a single scope level in the scope stack.
type Scope struct {
	Level       int                        // Nesting level (0 = module).
	Kind        ScopeKind                  // What introduced the scope.
	Identifiers map[string]*IdentifierInfo // Names bound in this scope.
	Globals     map[string]bool            // Names declared global in this scope.
	Parent      *Scope                     // Parent scope for lookups.
	Node        ast.Node                   // The AST node that introduced this scope.
	QualName    string                     // Qualified name of Node, empty for the module.
}

func newModuleScope(root ast.Node) *Scope {
	return &Scope{
		Kind:        ModuleScope,
		Identifiers: make(map[string]*IdentifierInfo),
		Globals:     make(map[string]bool),
		Node:        root,
	}
}

// NewChildScope creates a new child scope of the current scope.
func (s *Scope) NewChildScope(kind ScopeKind, node ast.Node, qualName string) *Scope {
	return &Scope{
		Level:       s.Level + 1,
		Kind:        kind,
		Identifiers: make(map[string]*IdentifierInfo),
		Globals:     make(map[string]bool),
		Parent:      s,
		Node:        node,
		QualName:    qualName,
	}
}

func (s *Scope) module() *Scope {
	for s.Parent != nil {
		s = s.Parent
	}
	return s
}

// qualify returns the qualified name a definition called name gets when it
// is bound in this scope.
func (s *Scope) qualify(name string) string {
	switch {
	case s.Kind == ModuleScope || s.Globals[name]:
		return name
	case s.Kind == ClassScope:
		return s.QualName + "." + name
	}
	return s.QualName + ".<locals>." + name
}

// bind records name as bound here, or in the module scope when it was
// declared global.
func (s *Scope) bind(name string, r *Resolver) *IdentifierInfo {
	target := s
	if s.Globals[name] {
		target = s.module()
	}
	if info, ok := target.Identifiers[name]; ok {
		return info
	}
	return target.NewIdentifierInfo(name, r.NewSerialNo())
}

// Lookup finds the binding a use of name refers to. Class scopes are only
// visible from their own body, as in Python.
func (s *Scope) Lookup(name string) *IdentifierInfo {
	for scope := s; scope != nil; scope = scope.Parent {
		if scope != s && scope.Kind == ClassScope {
			continue
		}
		if scope.Globals[name] {
			return scope.module().Identifiers[name]
		}
		if info, ok := scope.Identifiers[name]; ok {
			return info
		}
	}
	return nil
}

func (s *Scope) NewIdentifierInfo(name string, uniqueID uint64) *IdentifierInfo {
	info := &IdentifierInfo{
		Name:          name,
		UniqueID:      uniqueID,
		ScopeType:     s.scopeType(),
		DefiningScope: s,
	}
	s.Identifiers[name] = info
	return info
}

func (s *Scope) scopeType() ScopeType {
	switch s.Kind {
	case ModuleScope:
		return GlobalScope
	case ClassScope:
		return ClassMemberScope
	}
	return LocalScope
}
