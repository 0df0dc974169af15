package checker

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Warbo/python-decompiler/pkg/ast"
	"github.com/Warbo/python-decompiler/pkg/common"
)

type Bug struct {
	Message string
	Node    ast.Node
	Path    *common.Path
}

type Issue struct {
	Message string
	Node    ast.Node
	Path    *common.Path
}

// Checker performs structural validation on a syntax tree before it is
// desugared or rendered.
type Checker struct {
	Bugs   []Bug   // Malformed trees that no reader should produce.
	Issues []Issue // Trees that are well formed but not valid Python.
}

func (c *Checker) ReportErrors(w io.Writer) {
	// First report any bugs and then move onto issues.
	if len(c.Bugs) > 0 {
		fmt.Fprintln(w, "Bug in input tree detected; the tree is malformed:")
		for i, bug := range c.Bugs {
			fmt.Fprintf(w, "  [%d]. %s, at %s\n", i+1, bug.Message, bug.Path)
		}
	}
	if len(c.Issues) > 0 {
		fmt.Fprintln(w, "Errors found in the source code:")
		for i, issue := range c.Issues {
			fmt.Fprintf(w, "  [%d]. %s, at %s\n", i+1, issue.Message, issue.Path)
		}
	}
}

// NewChecker creates a new checker instance.
func NewChecker() *Checker {
	return &Checker{
		Bugs:   []Bug{},
		Issues: []Issue{},
	}
}

func (c *Checker) OK() bool {
	return len(c.Issues) == 0 && len(c.Bugs) == 0
}

// Err summarises the problems found so far as a single error, or returns
// nil when there are none.
func (c *Checker) Err() error {
	if c.OK() {
		return nil
	}
	var b strings.Builder
	c.ReportErrors(&b)
	return errors.New(strings.TrimSuffix(b.String(), "\n"))
}

// Check validates the tree rooted at n, accumulating into c. It reports
// whether c has found no problems so far.
func (c *Checker) Check(n ast.Node) bool {
	c.validate(n, nil, scope{})
	return c.OK()
}

// scope tracks what the enclosing definitions allow.
type scope struct {
	function bool
	loop     bool
}

func missing(n ast.Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func (c *Checker) validate(n ast.Node, path *common.Path, s scope) {
	if missing(n) {
		c.addBug("invalid node: nil", n, path)
		return
	}

	switch n := n.(type) {
	case *ast.Module:
		c.validateDoc(n, path, n.Doc)
		c.validateBody(n, path, "body", n.Body, true)
	case *ast.Stmt:
		c.validateStatements(n, path)
	case *ast.Assign:
		c.atLeastOne(n, path, "targets", len(n.Targets))
		c.validateTargets(n, path, "targets", n.Targets)
	case *ast.AugAssign:
		switch n.Target.(type) {
		case *ast.Name, *ast.Getattr, *ast.Subscript, *ast.Slice:
		default:
			c.addBug(fmt.Sprintf("%s cannot be an augmented assignment target", tagOf(n.Target)), n, path)
		}
	case *ast.AssTuple:
		c.validateTargets(n, path, "nodes", n.Nodes)
	case *ast.AssList:
		c.validateTargets(n, path, "nodes", n.Nodes)
	case *ast.AssName:
		c.validateIdentifier(n, path, n.Name)
		if n.Name == "None" || n.Name == "True" || n.Name == "False" {
			c.addIssue(fmt.Sprintf("cannot assign to %s", n.Name), n, path)
		}
	case *ast.Name:
		c.validateIdentifier(n, path, n.Name)
	case *ast.Delete:
		c.atLeastOne(n, path, "targets", len(n.Targets))
		c.validateTargets(n, path, "targets", n.Targets)
	case *ast.Break:
		if !s.loop {
			c.addIssue("'break' outside loop", n, path)
		}
	case *ast.Continue:
		if !s.loop {
			c.addIssue("'continue' not properly in loop", n, path)
		}
	case *ast.Return:
		if !s.function {
			c.addIssue("'return' outside function", n, path)
		}
	case *ast.Yield:
		if !s.function {
			c.addIssue("'yield' outside function", n, path)
		}
	case *ast.If:
		c.atLeastOne(n, path, "tests", len(n.Tests))
	case *ast.Branch:
		c.validateBody(n, path, "body", n.Body, false)
	case *ast.While:
		c.validateBody(n, path, "body", n.Body, false)
	case *ast.For:
		c.validateTarget(n, path, "assign", -1, n.Assign)
		c.validateBody(n, path, "body", n.Body, false)
	case *ast.With:
		if vars, ok := n.Vars.Get(); ok {
			c.validateTarget(n, path, "vars", -1, vars)
		}
		c.validateBody(n, path, "body", n.Body, false)
	case *ast.Function:
		c.validateIdentifier(n, path, n.Name)
		c.validateParams(n, path, n.Argnames, len(n.Defaults), n.Varargs, n.Kwargs)
		c.validateDoc(n, path, n.Doc)
		c.validateBody(n, path, "code", n.Code, n.Doc.IsPresent())
	case *ast.Lambda:
		c.validateParams(n, path, n.Argnames, len(n.Defaults), n.Varargs, n.Kwargs)
	case *ast.Class:
		c.validateIdentifier(n, path, n.Name)
		c.validateDoc(n, path, n.Doc)
		c.validateBody(n, path, "code", n.Code, n.Doc.IsPresent())
	case *ast.TryExcept:
		c.atLeastOne(n, path, "handlers", len(n.Handlers))
		c.validateBody(n, path, "body", n.Body, false)
		for i, h := range n.Handlers {
			if !missing(h) && !h.Type.IsPresent() && i != len(n.Handlers)-1 {
				c.addIssue("default 'except:' must be last", h, path.Extend(string(n.Tag()), "handlers", i))
			}
		}
	case *ast.Handler:
		if name, ok := n.Name.Get(); ok {
			if !n.Type.IsPresent() {
				c.addBug("except clause binds a name but has no type", n, path)
			}
			c.validateTarget(n, path, "name", -1, name)
		}
		c.validateBody(n, path, "body", n.Body, false)
	case *ast.TryFinally:
		switch body := n.Body.(type) {
		case *ast.TryExcept:
		case *ast.Stmt:
			c.validateBody(n, path, "body", body, false)
		default:
			c.addBug(fmt.Sprintf("finally follows %s", tagOf(n.Body)), n, path)
		}
		c.validateBody(n, path, "final", n.Final, false)
	case *ast.Raise:
		if n.Cause.IsPresent() && !n.Exc.IsPresent() {
			c.addBug("raise has a cause but no exception", n, path)
		}
	case *ast.Global:
		c.atLeastOne(n, path, "names", len(n.Names))
		for _, name := range n.Names {
			c.validateIdentifier(n, path, name)
		}
	case *ast.Import:
		c.atLeastOne(n, path, "names", len(n.Names))
	case *ast.From:
		c.atLeastOne(n, path, "names", len(n.Names))
		if n.Module == "" && n.Level == 0 {
			c.addBug("from-import names no module", n, path)
		}
		if n.Level < 0 {
			c.addBug(fmt.Sprintf("negative import level %d", n.Level), n, path)
		}
	case *ast.Const:
		if n.Value.Kind == ast.StrLiteral {
			c.validateText(n, path, n.Value.Str)
		}
	case *ast.Keyword:
		c.validateIdentifier(n, path, n.Name)
	case *ast.CallFunc:
		c.validateKeywords(n, path)
	case *ast.Compare:
		c.atLeastOne(n, path, "ops", len(n.Ops))
	case *ast.And:
		c.atLeastOne(n, path, "nodes", len(n.Nodes))
	case *ast.Or:
		c.atLeastOne(n, path, "nodes", len(n.Nodes))
	case *ast.Bitand:
		c.atLeastTwo(n, path, "nodes", len(n.Nodes))
	case *ast.Bitor:
		c.atLeastTwo(n, path, "nodes", len(n.Nodes))
	case *ast.Bitxor:
		c.atLeastTwo(n, path, "nodes", len(n.Nodes))
	}

	c.validateChildren(n, path, s)
}

// validateChildren descends into every node-bearing field. Definition
// bodies start a new scope; decorators and defaults stay in the outer one.
func (c *Checker) validateChildren(n ast.Node, path *common.Path, s scope) {
	for _, f := range ast.Fields(n) {
		if f.Kind == ast.LeafField {
			continue
		}
		child := s
		switch n.(type) {
		case *ast.Function, *ast.Lambda:
			if f.Name == "code" {
				child = scope{function: true}
			}
		case *ast.Class:
			if f.Name == "code" {
				child = scope{}
			}
		case *ast.While, *ast.For:
			if f.Name == "body" {
				child.loop = true
			}
		}
		if f.Kind == ast.ListField {
			for i, node := range f.Nodes {
				c.validate(node, path.Extend(string(n.Tag()), f.Name, i), child)
			}
			continue
		}
		for _, node := range f.Nodes {
			c.validate(node, path.Extend(string(n.Tag()), f.Name, -1), child)
		}
		if f.Kind == ast.ChildField && len(f.Nodes) == 0 {
			c.addBug(fmt.Sprintf("missing %s", f.Name), n, path)
		}
	}
}

func (c *Checker) validateStatements(n *ast.Stmt, path *common.Path) {
	for i, stmt := range n.Nodes {
		if !missing(stmt) && !ast.IsStatement(stmt.Tag()) {
			c.addBug(fmt.Sprintf("%s in statement position", stmt.Tag()), stmt, path.Extend(string(n.Tag()), "nodes", i))
		}
	}
}

// validateBody reports a block with no statements, which has no
// rendering. A definition with a docstring may have an otherwise empty body.
func (c *Checker) validateBody(n ast.Node, path *common.Path, field string, body *ast.Stmt, emptyOK bool) {
	if body != nil && len(body.Nodes) == 0 && !emptyOK {
		c.addBug(fmt.Sprintf("empty %s", field), n, path.Extend(string(n.Tag()), field, -1))
	}
}

func (c *Checker) validateParams(n ast.Node, path *common.Path, argnames []string, defaults int, varargs, kwargs bool) {
	flags := 0
	if varargs {
		flags++
	}
	if kwargs {
		flags++
	}
	if len(argnames) < flags {
		c.addBug(fmt.Sprintf("%d parameter names for %d variadic flags", len(argnames), flags), n, path)
		return
	}
	if positional := ast.Positional(argnames, varargs, kwargs); defaults > len(positional) {
		c.addBug(fmt.Sprintf("%d defaults for %d positional parameters", defaults, len(positional)), n, path)
	}
	seen := map[string]bool{}
	for _, name := range argnames {
		c.validateIdentifier(n, path, name)
		if seen[name] {
			c.addIssue(fmt.Sprintf("duplicate argument '%s' in function definition", name), n, path)
		}
		seen[name] = true
	}
}

func (c *Checker) validateKeywords(n *ast.CallFunc, path *common.Path) {
	seen := map[string]bool{}
	for _, arg := range n.Args {
		if k, ok := arg.(*ast.Keyword); ok {
			if seen[k.Name] {
				c.addIssue(fmt.Sprintf("keyword argument repeated: %s", k.Name), n, path)
			}
			seen[k.Name] = true
		}
	}
}

func (c *Checker) validateTargets(n ast.Node, path *common.Path, field string, targets []ast.Node) {
	for i, t := range targets {
		c.validateTarget(n, path, field, i, t)
	}
}

func (c *Checker) validateTarget(n ast.Node, path *common.Path, field string, index int, target ast.Node) {
	switch target.(type) {
	case *ast.AssName, *ast.AssAttr, *ast.AssTuple, *ast.AssList, *ast.Subscript, *ast.Slice:
		return
	}
	if missing(target) {
		return
	}
	c.addBug(fmt.Sprintf("%s cannot be an assignment target", target.Tag()), target, path.Extend(string(n.Tag()), field, index))
}

var keywords = map[string]bool{
	"and": true, "as": true, "assert": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"not": true, "or": true, "pass": true, "raise": true, "return": true,
	"try": true, "while": true, "with": true, "yield": true,
}

func (c *Checker) validateIdentifier(n ast.Node, path *common.Path, name string) {
	if !isIdentifier(name) {
		c.addBug(fmt.Sprintf("invalid identifier %q", name), n, path)
		return
	}
	if keywords[name] {
		c.addIssue(fmt.Sprintf("keyword '%s' used as an identifier", name), n, path)
	}
}

// Strings are rendered as Python text literals, which cannot spell
// arbitrary bytes.
func (c *Checker) validateText(n ast.Node, path *common.Path, text string) {
	if !utf8.ValidString(text) {
		c.addBug(fmt.Sprintf("string %q is not valid UTF-8", text), n, path)
	}
}

func (c *Checker) validateDoc(n ast.Node, path *common.Path, doc common.Option[string]) {
	if text, ok := doc.Get(); ok {
		c.validateText(n, path, text)
	}
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func (c *Checker) atLeastOne(n ast.Node, path *common.Path, field string, count int) {
	if count == 0 {
		c.addBug(fmt.Sprintf("%s has no %s", n.Tag(), field), n, path)
	}
}

func (c *Checker) atLeastTwo(n ast.Node, path *common.Path, field string, count int) {
	if count < 2 {
		c.addBug(fmt.Sprintf("%s needs at least two %s, got %d", n.Tag(), field, count), n, path)
	}
}

func tagOf(n ast.Node) string {
	if missing(n) {
		return "nothing"
	}
	return string(n.Tag())
}

// We add a bug if a reader is supposed to guarantee the condition but it is
// violated.
func (c *Checker) addBug(message string, node ast.Node, path *common.Path) {
	c.Bugs = append(c.Bugs, Bug{Message: message, Node: node, Path: path})
}

// We add an issue if the tree is well formed but is not valid Python.
func (c *Checker) addIssue(message string, node ast.Node, path *common.Path) {
	c.Issues = append(c.Issues, Issue{Message: message, Node: node, Path: path})
}
