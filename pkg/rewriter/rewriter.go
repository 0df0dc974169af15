// Package rewriter is the rule engine shared by the desugaring transform and
// the renderer. A RuleSet maps each node tag to an ordered group of
// alternatives; an Engine dispatches a node to the first alternative whose
// pattern and guards accept it.
package rewriter

import (
	"fmt"
	"io"
	"sort"

	"github.com/Warbo/python-decompiler/pkg/ast"
	"github.com/Warbo/python-decompiler/pkg/common"
)

// Guard is a predicate over a node whose pattern already matched.
type Guard func(n ast.Node) bool

// Action produces the result for a matched node. It recurses through c.
type Action[R any] func(c Ctx[R], n ast.Node) (R, error)

type Alternative[R any] struct {
	Name    string
	Pattern *Pattern
	Guards  []Guard
	Action  Action[R]
}

// accepts evaluates the pattern, then the guards left to right, stopping at
// the first failure.
func (alt *Alternative[R]) accepts(n ast.Node) bool {
	if alt.Pattern != nil && !alt.Pattern.Matches(n) {
		return false
	}
	for _, guard := range alt.Guards {
		if !guard(n) {
			return false
		}
	}
	return true
}

type RuleSet[R any] struct {
	Name   string
	groups map[ast.Tag][]*Alternative[R]
}

func NewRuleSet[R any](name string) *RuleSet[R] {
	return &RuleSet[R]{Name: name, groups: make(map[ast.Tag][]*Alternative[R])}
}

// Add appends alternatives to the group for tag.
func (rs *RuleSet[R]) Add(tag ast.Tag, alts ...*Alternative[R]) *RuleSet[R] {
	rs.groups[tag] = append(rs.groups[tag], alts...)
	return rs
}

// Prepend puts alternatives ahead of those already in the group for tag.
func (rs *RuleSet[R]) Prepend(tag ast.Tag, alts ...*Alternative[R]) *RuleSet[R] {
	group := make([]*Alternative[R], 0, len(alts)+len(rs.groups[tag]))
	group = append(group, alts...)
	rs.groups[tag] = append(group, rs.groups[tag]...)
	return rs
}

// Extend returns a new rule set in which every alternative of extra is tried
// before this set's alternatives for the same tag.
func (rs *RuleSet[R]) Extend(extra *RuleSet[R]) *RuleSet[R] {
	out := rs.Clone()
	if extra == nil {
		return out
	}
	for _, tag := range extra.Tags() {
		out.Prepend(tag, extra.groups[tag]...)
	}
	return out
}

func (rs *RuleSet[R]) Clone() *RuleSet[R] {
	out := NewRuleSet[R](rs.Name)
	for tag, alts := range rs.groups {
		out.groups[tag] = append([]*Alternative[R](nil), alts...)
	}
	return out
}

func (rs *RuleSet[R]) Alternatives(tag ast.Tag) []*Alternative[R] {
	return rs.groups[tag]
}

// Tags lists the tags that have a group, sorted.
func (rs *RuleSet[R]) Tags() []ast.Tag {
	tags := make([]ast.Tag, 0, len(rs.groups))
	for tag := range rs.groups {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

func (rs *RuleSet[R]) Validate() error {
	for _, tag := range rs.Tags() {
		for i, alt := range rs.groups[tag] {
			if alt == nil || alt.Action == nil {
				return fmt.Errorf("error in rule \"%s/%s\" #%d: no action", rs.Name, tag, i)
			}
			if alt.Pattern == nil {
				continue
			}
			if alt.Pattern.Tag != tag {
				return fmt.Errorf("error in rule \"%s/%s\": pattern is for %s", rs.Name, alt.Name, alt.Pattern.Tag)
			}
			if err := alt.Pattern.Validate(alt.Name); err != nil {
				return fmt.Errorf("error in rule \"%s/%s\": %w", rs.Name, alt.Name, err)
			}
		}
	}
	return nil
}

// DefaultMaxDepth bounds recursion through the engine.
const DefaultMaxDepth = 5000

type EngineOption func(*engineOptions)

type engineOptions struct {
	trace    io.Writer
	maxDepth int
}

// WithTrace writes one line per committed alternative to w.
func WithTrace(w io.Writer) EngineOption {
	return func(o *engineOptions) { o.trace = w }
}

func WithMaxDepth(depth int) EngineOption {
	return func(o *engineOptions) { o.maxDepth = depth }
}

// Engine applies a frozen copy of a rule set. It holds no per-call state
// and may be shared between goroutines.
type Engine[R any] struct {
	rules   *RuleSet[R]
	options engineOptions
}

func NewEngine[R any](rules *RuleSet[R], opts ...EngineOption) (*Engine[R], error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	e := &Engine[R]{rules: rules.Clone(), options: engineOptions{maxDepth: DefaultMaxDepth}}
	for _, opt := range opts {
		opt(&e.options)
	}
	return e, nil
}

func (e *Engine[R]) Name() string {
	return e.rules.Name
}

// Run applies the engine to n at the given indentation depth. session is
// handed unchanged to every action of this run.
func (e *Engine[R]) Run(n ast.Node, depth int, session any) (R, error) {
	return Ctx[R]{engine: e, depth: depth, session: session}.Apply(n)
}

// Ctx is the context of one rule application. It is passed by value, so
// descending into a child never disturbs the caller's context.
type Ctx[R any] struct {
	engine  *Engine[R]
	depth   int
	level   int
	tag     ast.Tag
	path    *common.Path
	session any
}

// Depth is the indentation depth.
func (c Ctx[R]) Depth() int {
	return c.depth
}

func (c Ctx[R]) Session() any {
	return c.session
}

func (c Ctx[R]) Path() *common.Path {
	return c.path
}

func (c Ctx[R]) Engine() *Engine[R] {
	return c.engine
}

// Nested is the context for a block one level deeper.
func (c Ctx[R]) Nested() Ctx[R] {
	c.depth++
	return c
}

// At is the context for the child held in field of the current node.
func (c Ctx[R]) At(field string, index int) Ctx[R] {
	c.path = c.path.Extend(string(c.tag), field, index)
	return c
}

func (c Ctx[R]) Child(field string, n ast.Node) (R, error) {
	return c.At(field, -1).Apply(n)
}

func (c Ctx[R]) Item(field string, index int, n ast.Node) (R, error) {
	return c.At(field, index).Apply(n)
}

// Apply dispatches n to its group and runs the first accepting alternative.
// Once an alternative is chosen its result is final.
func (c Ctx[R]) Apply(n ast.Node) (R, error) {
	var zero R
	group := c.engine.rules.Name
	if n == nil {
		return zero, &Error{Kind: UnmatchedShape, Tag: "<nil>", Group: group, Path: c.path, Detail: "missing node"}
	}
	c.tag = n.Tag()
	c.level++
	group = c.group()
	if c.level > c.engine.options.maxDepth {
		return zero, &Error{Kind: RecursionLimit, Tag: c.tag, Group: group, Path: c.path, Detail: fmt.Sprintf("nesting exceeds %d", c.engine.options.maxDepth)}
	}
	alts := c.engine.rules.groups[c.tag]
	if len(alts) == 0 {
		return zero, &Error{Kind: UnmatchedShape, Tag: c.tag, Group: group, Path: c.path, Detail: "no rule group for this tag"}
	}
	for _, alt := range alts {
		if !alt.accepts(n) {
			continue
		}
		if c.engine.options.trace != nil {
			fmt.Fprintf(c.engine.options.trace, "%s: %s at %s\n", group, alt.Name, c.path)
		}
		return alt.Action(c, n)
	}
	return zero, &Error{Kind: UnmatchedShape, Tag: c.tag, Group: group, Path: c.path, Detail: "no alternative accepts this node"}
}

func (c Ctx[R]) group() string {
	return c.engine.rules.Name + "/" + string(c.tag)
}

// Fail builds an error located at the current node.
func (c Ctx[R]) Fail(kind ErrorKind, alternative string, format string, args ...any) error {
	return &Error{
		Kind:        kind,
		Tag:         c.tag,
		Group:       c.group(),
		Alternative: alternative,
		Path:        c.path,
		Detail:      fmt.Sprintf(format, args...),
	}
}
