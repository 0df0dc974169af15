// Package render turns core-vocabulary trees into Python source text. It is
// a rule set over the same engine as the desugaring transform, producing
// strings instead of nodes; the indentation depth travels in the context.
package render

import (
	"io"
	"strings"

	"github.com/Warbo/python-decompiler/pkg/ast"
	"github.com/Warbo/python-decompiler/pkg/common"
	"github.com/Warbo/python-decompiler/pkg/rewriter"
)

type (
	alternative = rewriter.Alternative[string]
	ctx         = rewriter.Ctx[string]
)

const DefaultIndent = "    "

// Renderer is immutable once built and may be shared between goroutines.
type Renderer struct {
	indent string
	rules  *rewriter.RuleSet[string]
	engine *rewriter.Engine[string]
}

type Option func(*options)

type options struct {
	indent string
	extra  *rewriter.RuleSet[string]
	engine []rewriter.EngineOption
}

// WithIndent sets the text of one indentation level.
func WithIndent(unit string) Option {
	return func(o *options) { o.indent = unit }
}

// WithRules layers extra in front of the built-in rules.
func WithRules(extra *rewriter.RuleSet[string]) Option {
	return func(o *options) { o.extra = extra }
}

func WithTrace(w io.Writer) Option {
	return func(o *options) { o.engine = append(o.engine, rewriter.WithTrace(w)) }
}

func WithMaxDepth(depth int) Option {
	return func(o *options) { o.engine = append(o.engine, rewriter.WithMaxDepth(depth)) }
}

func New(opts ...Option) (*Renderer, error) {
	o := options{indent: DefaultIndent}
	for _, opt := range opts {
		opt(&o)
	}
	r := &Renderer{indent: o.indent}
	rules := rewriter.NewRuleSet[string]("render")
	r.addStatementRules(rules)
	r.addExpressionRules(rules)
	r.rules = rules.Extend(o.extra)
	var err error
	if r.engine, err = rewriter.NewEngine(r.rules, o.engine...); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) Rules() *rewriter.RuleSet[string] {
	return r.rules.Clone()
}

// Render renders n at the given indentation depth. Statements come back as
// complete lines; expressions as a fragment without indentation.
func (r *Renderer) Render(n ast.Node, depth int) (string, error) {
	return r.engine.Run(n, depth, nil)
}

func (r *Renderer) RenderModule(m *ast.Module) (string, error) {
	return r.Render(m, 0)
}

////////////////////////////////////////////////////////////////////////////////
/// Helpers
////////////////////////////////////////////////////////////////////////////////

func (r *Renderer) line(c ctx, text string) string {
	return strings.Repeat(r.indent, c.Depth()) + text + "\n"
}

func fail(kind rewriter.ErrorKind, detail string) rewriter.Action[string] {
	return func(c ctx, n ast.Node) (string, error) {
		return "", c.Fail(kind, "", "%s", detail)
	}
}

func lists(tag ast.Tag, field string, count rewriter.Count) *rewriter.Pattern {
	return &rewriter.Pattern{Tag: tag, Lists: map[string]rewriter.Count{field: count}}
}

func items(c ctx, field string, nodes []ast.Node) ([]string, error) {
	out := make([]string, 0, len(nodes))
	for i, n := range nodes {
		text, err := c.Item(field, i, n)
		if err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, nil
}

func joined(c ctx, field string, nodes []ast.Node) (string, error) {
	parts, err := items(c, field, nodes)
	if err != nil {
		return "", err
	}
	return strings.Join(parts, ", "), nil
}

// parenthesized reports whether n needs parentheses as the receiver of an
// attribute or a call: `(lambda: x)()`, `(1).real`.
func parenthesized(n ast.Node) bool {
	switch n := n.(type) {
	case *ast.Lambda:
		return true
	case *ast.Const:
		switch n.Value.Kind {
		case ast.IntLiteral, ast.FloatLiteral, ast.ImagLiteral:
			return true
		}
	}
	return false
}

func receiver(c ctx, field string, n ast.Node) (string, error) {
	text, err := c.Child(field, n)
	if err != nil {
		return "", err
	}
	if parenthesized(n) && !strings.HasPrefix(text, "(") {
		return "(" + text + ")", nil
	}
	return text, nil
}

// isDocstring reports whether a statement would read back as a docstring
// when it leads a body.
func isDocstring(n ast.Node) bool {
	d, ok := n.(*ast.Discard)
	if !ok {
		return false
	}
	k, ok := d.Expr.(*ast.Const)
	return ok && k.Value.Kind == ast.StrLiteral
}

// suite renders a body at c's depth, led by its docstring. A body holding
// only a docstring is allowed; otherwise an empty body is an arity error.
func (r *Renderer) suite(c ctx, field string, doc common.Option[string], code *ast.Stmt, emptyOK bool) (string, error) {
	if code == nil {
		return "", c.Fail(rewriter.UnmatchedShape, "body", "missing %s", field)
	}
	var b strings.Builder
	text, hasDoc := doc.Get()
	if hasDoc {
		b.WriteString(r.line(c, Quote(text)))
	}
	if len(code.Nodes) == 0 && (hasDoc || emptyOK) {
		return b.String(), nil
	}
	if !hasDoc && len(code.Nodes) > 0 && isDocstring(code.Nodes[0]) {
		return "", c.Fail(rewriter.UnmatchedShape, "body", "leading string statement in %s would read back as a docstring", field)
	}
	body, err := c.Child(field, code)
	if err != nil {
		return "", err
	}
	b.WriteString(body)
	return b.String(), nil
}

// block renders a nested body under a header line.
func (r *Renderer) block(c ctx, header, field string, body ast.Node) (string, error) {
	if body == nil {
		return "", c.Fail(rewriter.UnmatchedShape, "block", "missing %s", field)
	}
	text, err := c.Nested().Child(field, body)
	if err != nil {
		return "", err
	}
	return r.line(c, header+":") + text, nil
}

// orElse renders an optional trailing `else:` block.
func (r *Renderer) orElse(c ctx, opt common.Option[ast.Node]) (string, error) {
	body, ok := opt.Get()
	if !ok {
		return "", nil
	}
	return r.block(c, "else", "else", body)
}

// params renders a parameter list in its one valid surface order: plain
// names, names with defaults, then *varargs and **kwargs.
func params(c ctx, argnames []string, defaults []ast.Node, varargs, kwargs bool) (string, error) {
	flags := 0
	if varargs {
		flags++
	}
	if kwargs {
		flags++
	}
	if len(argnames) < flags {
		return "", c.Fail(rewriter.ArityMismatch, "parameters", "%d parameter names for %d variadic flags", len(argnames), flags)
	}
	positional := ast.Positional(argnames, varargs, kwargs)
	if len(defaults) > len(positional) {
		return "", c.Fail(rewriter.ArityMismatch, "parameters", "%d defaults for %d positional parameters", len(defaults), len(positional))
	}
	firstDefault := len(positional) - len(defaults)
	parts := make([]string, 0, len(argnames))
	for i, name := range positional {
		if i < firstDefault {
			parts = append(parts, name)
			continue
		}
		value, err := c.Item("defaults", i-firstDefault, defaults[i-firstDefault])
		if err != nil {
			return "", err
		}
		parts = append(parts, name+"="+value)
	}
	rest := argnames[len(positional):]
	if varargs {
		parts = append(parts, "*"+rest[0])
		rest = rest[1:]
	}
	if kwargs {
		parts = append(parts, "**"+rest[0])
	}
	return strings.Join(parts, ", "), nil
}

func (r *Renderer) decorators(c ctx, decorators []ast.Node) (string, error) {
	var b strings.Builder
	for i, d := range decorators {
		text, err := c.Item("decorators", i, d)
		if err != nil {
			return "", err
		}
		b.WriteString(r.line(c, "@"+text))
	}
	return b.String(), nil
}
