package desugar

import (
	"fmt"

	"github.com/Warbo/python-decompiler/pkg/ast"
	"github.com/Warbo/python-decompiler/pkg/common"
	"github.com/Warbo/python-decompiler/pkg/rewriter"
)

// Metadata attributes a definition can be followed by.
const (
	MetaName     = "__name__"
	MetaQualName = "__qualname__"
	MetaDoc      = "__doc__"
	MetaModule   = "__module__"
)

func checkMetadata(kind string, attrs []string) error {
	for _, attr := range attrs {
		switch attr {
		case MetaName, MetaQualName, MetaDoc, MetaModule:
		default:
			return fmt.Errorf("unknown %s metadata attribute %q", kind, attr)
		}
	}
	return nil
}

func hasAttr(attrs []string, attr string) bool {
	for _, a := range attrs {
		if a == attr {
			return true
		}
	}
	return false
}

// definition is what functions and classes have in common once their own
// fields are desugared.
type definition struct {
	name       string
	doc        common.Option[string]
	decorators []ast.Node
}

// metadata builds `name.__attr__ = value` for each configured attribute.
func metadata(def definition, qualName string, attrs []string) []ast.Node {
	stmts := make([]ast.Node, 0, len(attrs))
	for _, attr := range attrs {
		var value ast.Node
		switch attr {
		case MetaName:
			value = ast.Str(def.name)
		case MetaQualName:
			value = ast.Str(qualName)
		case MetaDoc:
			value = ast.NoneConst()
			if doc, ok := def.doc.Get(); ok {
				value = ast.Str(doc)
			}
		case MetaModule:
			value = ast.N("__name__")
		}
		stmts = append(stmts, &ast.Assign{
			Targets: []ast.Node{&ast.AssAttr{Expr: ast.N(def.name), Attr: attr}},
			Expr:    value,
		})
	}
	return stmts
}

// bindDecorators evaluates the decorators before the definition binds its
// name, as the runtime does: each one that is not a plain name other than
// the definition's own is bound to a temporary, outermost first.
// `@x.setter def x` becomes `_t0 = x.setter; def x; ...; x = _t0(x)`.
func bindDecorators(s *session, def *definition) ([]ast.Node, []*TemporaryVariable) {
	var stmts []ast.Node
	var tmps []*TemporaryVariable
	bound := make([]ast.Node, len(def.decorators))
	for i, dec := range def.decorators {
		if name, ok := dec.(*ast.Name); ok && name.Name != def.name {
			bound[i] = dec
			continue
		}
		tv := s.temps.AllocateTemporaryVariable()
		tmps = append(tmps, tv)
		stmts = append(stmts, ast.AssignName(tv.Name, dec))
		bound[i] = ast.N(tv.Name)
	}
	def.decorators = bound
	return stmts, tmps
}

// applyDecorators builds `f = d(f)` for each decorator, innermost (last
// written) first.
func applyDecorators(def definition) []ast.Node {
	stmts := make([]ast.Node, 0, len(def.decorators))
	for i := len(def.decorators) - 1; i >= 0; i-- {
		stmts = append(stmts, ast.AssignName(def.name, ast.Call(def.decorators[i], ast.N(def.name))))
	}
	return stmts
}

// expand surrounds a desugared definition with the statements it implies:
// its decorators are evaluated before it, then its metadata is set, then
// the decorators are applied. Metadata describes the undecorated object,
// as the runtime would have set it at definition time.
func (d *Desugarer) expand(c ctx, n ast.Node, out ast.Node, def definition, attrs []string) ast.Node {
	s := sessionOf(c)
	qualName, ok := s.qualName(n)
	if !ok {
		qualName = def.name
	}
	var before []ast.Node
	var tmps []*TemporaryVariable
	if d.config.Options.expandDecorators() {
		before, tmps = bindDecorators(s, &def)
		defer s.temps.FreeTemporaryVariable(tmps...)
	}
	stmts := append(before, out)
	stmts = append(stmts, metadata(def, qualName, attrs)...)
	if d.config.Options.expandDecorators() {
		stmts = append(stmts, applyDecorators(def)...)
		stmts = append(stmts, deleteTemporaries(tmps)...)
	}
	return sequence(stmts)
}

// keepNonEmpty gives a body that held only a docstring a pass statement.
func keepNonEmpty(body *ast.Stmt) *ast.Stmt {
	if len(body.Nodes) == 0 {
		return ast.Block(&ast.Pass{})
	}
	return body
}

func (d *Desugarer) items(c ctx, field string, nodes []ast.Node) ([]ast.Node, error) {
	out := make([]ast.Node, 0, len(nodes))
	for i, n := range nodes {
		r, err := c.Item(field, i, n)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (d *Desugarer) body(c ctx, field string, body *ast.Stmt) (*ast.Stmt, error) {
	r, err := c.Child(field, body)
	if err != nil {
		return nil, err
	}
	stmt, ok := r.(*ast.Stmt)
	if !ok {
		return nil, c.Fail(rewriter.UnmatchedShape, "definition", "body desugared to %s", r.Tag())
	}
	return stmt, nil
}

func (d *Desugarer) function(c ctx, n ast.Node) (ast.Node, error) {
	fn := n.(*ast.Function)
	decorators, err := d.items(c, "decorators", fn.Decorators)
	if err != nil {
		return nil, err
	}
	defaults, err := d.items(c, "defaults", fn.Defaults)
	if err != nil {
		return nil, err
	}
	code, err := d.body(c, "code", fn.Code)
	if err != nil {
		return nil, err
	}
	out := *fn
	out.Decorators = decorators
	out.Defaults = defaults
	out.Code = code
	attrs := d.config.Metadata.Function
	if hasAttr(attrs, MetaDoc) {
		out.Doc = common.None[string]()
		out.Code = keepNonEmpty(code)
	}
	if d.config.Options.expandDecorators() {
		out.Decorators = nil
	}
	def := definition{name: fn.Name, doc: fn.Doc, decorators: decorators}
	return d.expand(c, n, &out, def, attrs), nil
}

func (d *Desugarer) class(c ctx, n ast.Node) (ast.Node, error) {
	class := n.(*ast.Class)
	decorators, err := d.items(c, "decorators", class.Decorators)
	if err != nil {
		return nil, err
	}
	bases, err := d.items(c, "bases", class.Bases)
	if err != nil {
		return nil, err
	}
	code, err := d.body(c, "code", class.Code)
	if err != nil {
		return nil, err
	}
	out := *class
	out.Decorators = decorators
	out.Bases = bases
	out.Code = code
	attrs := d.config.Metadata.Class
	if hasAttr(attrs, MetaDoc) {
		out.Doc = common.None[string]()
		out.Code = keepNonEmpty(code)
	}
	if d.config.Options.expandDecorators() {
		out.Decorators = nil
	}
	if out.Code, err = d.classThunks(c, n, out.Code); err != nil {
		return nil, err
	}
	def := definition{name: class.Name, doc: class.Doc, decorators: decorators}
	return d.expand(c, n, &out, def, attrs), nil
}
