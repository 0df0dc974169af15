// Package translate drives the desugaring transform and the renderer over a
// module one top-level statement at a time, so that a failure in one unit
// can be recorded without losing the others.
package translate

import (
	"fmt"
	"strings"

	"github.com/Warbo/python-decompiler/pkg/ast"
	"github.com/Warbo/python-decompiler/pkg/checker"
	"github.com/Warbo/python-decompiler/pkg/common"
	"github.com/Warbo/python-decompiler/pkg/desugar"
	"github.com/Warbo/python-decompiler/pkg/parser"
	"github.com/Warbo/python-decompiler/pkg/render"
	"github.com/Warbo/python-decompiler/pkg/resolver"
)

type Stage string

const (
	StageCheck     Stage = "check"
	StageDesugar   Stage = "desugar"
	StageRender    Stage = "render"
	StageRoundTrip Stage = "roundtrip"
)

// Unit is the outcome for one top-level statement.
type Unit struct {
	Index  int
	Tag    ast.Tag
	Name   string   // Qualified name, for definitions.
	Source ast.Node // The statement as given.
	Core   ast.Node // The desugared statement, when desugaring succeeded.
	Text   string   // Rendered lines, when rendering succeeded.
	Stage  Stage    // Where the unit failed.
	Err    error
}

func (u *Unit) Failed() bool {
	return u.Err != nil
}

// Label names the unit in messages.
func (u *Unit) Label() string {
	if u.Name != "" {
		return fmt.Sprintf("unit %d (%s %s)", u.Index, u.Tag, u.Name)
	}
	return fmt.Sprintf("unit %d (%s)", u.Index, u.Tag)
}

type Result struct {
	Doc   common.Option[string]
	Units []*Unit
}

// Failures lists the units that did not translate.
func (r *Result) Failures() []*Unit {
	var out []*Unit
	for _, u := range r.Units {
		if u.Failed() {
			out = append(out, u)
		}
	}
	return out
}

// Text is the rendered module: the docstring, then every unit that
// translated, in order.
func (r *Result) Text() string {
	var b strings.Builder
	if doc, ok := r.Doc.Get(); ok {
		b.WriteString(render.Quote(doc))
		b.WriteString("\n")
	}
	for _, u := range r.Units {
		if !u.Failed() {
			b.WriteString(u.Text)
		}
	}
	return b.String()
}

// Module reassembles the desugared units that translated into a module.
func (r *Result) Module() *ast.Module {
	body := &ast.Stmt{}
	for _, u := range r.Units {
		if u.Failed() {
			continue
		}
		if stmt, ok := u.Core.(*ast.Stmt); ok {
			body.Nodes = append(body.Nodes, stmt.Nodes...)
		} else {
			body.Nodes = append(body.Nodes, u.Core)
		}
	}
	return &ast.Module{Doc: r.Doc, Body: body}
}

// Translator is safe for concurrent use when its desugarer and renderer
// are.
type Translator struct {
	Desugarer *desugar.Desugarer
	Renderer  *render.Renderer
	Check     bool // Validate each unit before desugaring it.
	RoundTrip bool // Read each rendered unit back and compare.
}

// NewTranslator uses the default desugaring table and renderer.
func NewTranslator() (*Translator, error) {
	d, err := desugar.New(nil)
	if err != nil {
		return nil, err
	}
	r, err := render.New()
	if err != nil {
		return nil, err
	}
	return &Translator{Desugarer: d, Renderer: r, Check: true}, nil
}

// TranslateModule translates each top-level statement of m. With keepGoing
// a failing unit is recorded and the rest carry on; otherwise the first
// failure is returned along with the units so far.
func (t *Translator) TranslateModule(m *ast.Module, keepGoing bool) (*Result, error) {
	if m == nil || m.Body == nil {
		return nil, fmt.Errorf("module has no body")
	}
	info := resolver.Resolve(m)
	result := &Result{Doc: m.Doc}
	for i, stmt := range m.Body.Nodes {
		u := t.translate(i, stmt, info)
		result.Units = append(result.Units, u)
		if u.Failed() && !keepGoing {
			return result, fmt.Errorf("%s failed at %s: %w", u.Label(), u.Stage, u.Err)
		}
	}
	return result, nil
}

// TranslateSource reads core syntax and translates it.
func (t *Translator) TranslateSource(source string, keepGoing bool) (*Result, error) {
	m, err := parser.ParseModule(source)
	if err != nil {
		return nil, err
	}
	return t.TranslateModule(m, keepGoing)
}

func (t *Translator) translate(index int, stmt ast.Node, info *resolver.Info) *Unit {
	u := &Unit{Index: index, Source: stmt}
	if stmt == nil {
		u.Stage, u.Err = StageCheck, fmt.Errorf("missing statement")
		return u
	}
	u.Tag = stmt.Tag()
	u.Name = info.QualNames[stmt]
	if t.Check {
		c := checker.NewChecker()
		if !c.Check(stmt) {
			u.Stage, u.Err = StageCheck, c.Err()
			return u
		}
	}
	core, err := t.Desugarer.TransformWith(stmt, info)
	if err != nil {
		u.Stage, u.Err = StageDesugar, err
		return u
	}
	u.Core = core
	if u.Text, err = t.Renderer.Render(core, 0); err != nil {
		u.Stage, u.Err = StageRender, err
		return u
	}
	if t.RoundTrip {
		renderFn := func(n ast.Node) (string, error) { return t.Renderer.Render(n, 0) }
		if err := checker.RoundTrip(core, renderFn, parser.ParseNode); err != nil {
			u.Stage, u.Err = StageRoundTrip, err
		}
	}
	return u
}
