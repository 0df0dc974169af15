// Package resolver computes the scope facts the desugaring transform needs:
// the qualified name of every definition and the set of identifiers a tree
// already uses.
package resolver

import (
	"strings"

	"github.com/Warbo/python-decompiler/pkg/ast"
)

// Info is the result of resolving a tree.
type Info struct {
	// QualNames maps each Function, Class and Lambda to its qualified name.
	QualNames map[ast.Node]string
	// Used is every identifier that appears anywhere in the tree.
	Used map[string]bool
	// Scopes maps each scope-introducing node to its scope; the root maps
	// to the module scope.
	Scopes map[ast.Node]*Scope
	// Unresolved lists names used without any binding in scope, such as
	// builtins.
	Unresolved map[string]bool
}

type reference struct {
	scope *Scope
	name  string
}

// Resolver performs identifier resolution on a syntax tree.
type Resolver struct {
	currentScope *Scope
	globalScope  *Scope
	nextID       uint64
	info         *Info
	references   []reference
}

// NewResolver creates a new resolver instance.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve resolves root with a fresh resolver.
func Resolve(root ast.Node) *Info {
	return NewResolver().Resolve(root)
}

// Resolve walks root in two passes: the first builds the scope structure
// and records bindings and uses, the second matches each use to its
// binding now that every binding is known.
func (r *Resolver) Resolve(root ast.Node) *Info {
	r.globalScope = newModuleScope(root)
	r.currentScope = r.globalScope
	r.nextID = 0
	r.references = nil
	r.info = &Info{
		QualNames:  make(map[ast.Node]string),
		Used:       make(map[string]bool),
		Scopes:     map[ast.Node]*Scope{root: r.globalScope},
		Unresolved: make(map[string]bool),
	}
	if body := bodyOf(root); body != nil {
		declareGlobals(r.globalScope, body)
	}
	r.traverse(root)
	for _, ref := range r.references {
		if info := ref.scope.Lookup(ref.name); info != nil {
			info.References++
		} else {
			r.info.Unresolved[ref.name] = true
		}
	}
	return r.info
}

func (r *Resolver) NewSerialNo() uint64 {
	no := r.nextID
	r.nextID++
	return no
}

func (r *Resolver) use(name string) {
	r.info.Used[name] = true
	r.references = append(r.references, reference{scope: r.currentScope, name: name})
}

func (r *Resolver) define(name string) {
	r.info.Used[name] = true
	r.currentScope.bind(name, r)
}

// traverse performs a custom traversal of the tree, handling the nodes that
// bind names or open scopes and descending through everything else.
func (r *Resolver) traverse(n ast.Node) {
	switch n := n.(type) {
	case nil:
		return
	case *ast.Name:
		r.use(n.Name)
	case *ast.AssName:
		r.define(n.Name)
	case *ast.Global:
		for _, name := range n.Names {
			r.info.Used[name] = true
		}
	case *ast.Import:
		for _, alias := range n.Names {
			r.info.Used[strings.Split(alias.Name, ".")[0]] = true
			r.define(importedName(alias))
		}
	case *ast.From:
		for _, alias := range n.Names {
			if alias.Name == "*" {
				continue
			}
			r.info.Used[alias.Name] = true
			r.define(importedName(alias))
		}
	case *ast.Function:
		r.traverseAll(n.Decorators)
		r.traverseAll(n.Defaults)
		r.define(n.Name)
		r.handleScope(FunctionScope, n, r.currentScope.qualify(n.Name), n.Argnames, n.Code)
	case *ast.Lambda:
		r.traverseAll(n.Defaults)
		r.handleScope(LambdaScope, n, r.currentScope.qualify("<lambda>"), n.Argnames, n.Code)
	case *ast.Class:
		r.traverseAll(n.Decorators)
		r.traverseAll(n.Bases)
		r.define(n.Name)
		r.handleScope(ClassScope, n, r.currentScope.qualify(n.Name), nil, n.Code)
	default:
		for _, f := range ast.Fields(n) {
			r.traverseAll(f.Nodes)
		}
	}
}

func (r *Resolver) traverseAll(nodes []ast.Node) {
	for _, n := range nodes {
		r.traverse(n)
	}
}

// handleScope processes a node that introduces a scope, binding its
// parameters before walking its body.
func (r *Resolver) handleScope(kind ScopeKind, n ast.Node, qualName string, params []string, body ast.Node) {
	r.info.QualNames[n] = qualName
	r.currentScope = r.currentScope.NewChildScope(kind, n, qualName)
	r.info.Scopes[n] = r.currentScope
	if stmts, ok := body.(*ast.Stmt); ok {
		declareGlobals(r.currentScope, stmts)
	}
	for _, param := range params {
		r.define(param)
	}
	r.traverse(body)
	r.currentScope = r.currentScope.Parent
}

// declareGlobals applies the global statements of a body to its scope
// before any binding is seen, since they govern the whole scope. Nested
// definitions have scopes of their own and are not searched.
func declareGlobals(scope *Scope, body ast.Node) {
	ast.Walk(body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.Global:
			for _, name := range n.Names {
				scope.Globals[name] = true
			}
		case *ast.Function, *ast.Class, *ast.Lambda:
			return false
		}
		return true
	})
}

func bodyOf(root ast.Node) ast.Node {
	switch root := root.(type) {
	case *ast.Module:
		return root.Body
	case *ast.Stmt:
		return root
	}
	return nil
}

// importedName is the name an import binds: the alias, or the first
// component of a dotted module name.
func importedName(alias *ast.Alias) string {
	if as, ok := alias.AsName.Get(); ok {
		return as
	}
	return strings.Split(alias.Name, ".")[0]
}
