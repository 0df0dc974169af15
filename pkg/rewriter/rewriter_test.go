package rewriter

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/Warbo/python-decompiler/pkg/ast"
	"github.com/stretchr/testify/require"
)

// names renders Name nodes and joins tuples, enough to observe dispatch.
func names() *RuleSet[string] {
	rules := NewRuleSet[string]("test")
	rules.Add(ast.TagName, &Alternative[string]{
		Name:   "name",
		Action: func(c Ctx[string], n ast.Node) (string, error) { return n.(*ast.Name).Name, nil },
	})
	return rules
}

func TestOrderedChoicePicksEarlierAlternative(t *testing.T) {
	rules := names()
	rules.Add(ast.TagTuple,
		&Alternative[string]{
			Name:    "first",
			Pattern: &Pattern{Tag: ast.TagTuple, Lists: map[string]Count{"nodes": AtLeast(1)}},
			Action:  func(c Ctx[string], n ast.Node) (string, error) { return "first", nil },
		},
		&Alternative[string]{
			Name:    "second",
			Pattern: &Pattern{Tag: ast.TagTuple, Lists: map[string]Count{"nodes": Exactly(2)}},
			Action:  func(c Ctx[string], n ast.Node) (string, error) { return "second", nil },
		},
	)
	engine, err := NewEngine(rules)
	require.NoError(t, err)

	got, err := engine.Run(&ast.Tuple{Nodes: []ast.Node{ast.N("a"), ast.N("b")}}, 0, nil)
	require.NoError(t, err)
	require.Equal(t, "first", got)

	got, err = engine.Run(&ast.Tuple{}, 0, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnmatchedShape))
	require.Empty(t, got)
}

func TestGuardsRunLeftToRightAndOnlyAfterPattern(t *testing.T) {
	var calls []string
	guard := func(label string, result bool) Guard {
		return func(ast.Node) bool {
			calls = append(calls, label)
			return result
		}
	}
	rules := NewRuleSet[string]("test").Add(ast.TagTuple,
		&Alternative[string]{
			Name:    "pattern fails",
			Pattern: &Pattern{Tag: ast.TagTuple, Lists: map[string]Count{"nodes": Exactly(5)}},
			Guards:  []Guard{guard("never", true)},
			Action:  func(c Ctx[string], n ast.Node) (string, error) { return "wrong", nil },
		},
		&Alternative[string]{
			Name:   "second guard fails",
			Guards: []Guard{guard("a", true), guard("b", false), guard("c", true)},
			Action: func(c Ctx[string], n ast.Node) (string, error) { return "wrong", nil },
		},
		&Alternative[string]{
			Name:   "wins",
			Guards: []Guard{guard("d", true)},
			Action: func(c Ctx[string], n ast.Node) (string, error) { return "right", nil },
		},
		&Alternative[string]{
			Name:   "never tried",
			Guards: []Guard{guard("e", true)},
			Action: func(c Ctx[string], n ast.Node) (string, error) { return "wrong", nil },
		},
	)
	engine, err := NewEngine(rules)
	require.NoError(t, err)

	got, err := engine.Run(&ast.Tuple{}, 0, nil)
	require.NoError(t, err)
	require.Equal(t, "right", got)
	require.Equal(t, []string{"a", "b", "d"}, calls)
}

func TestUnmatchedShapeNamesTagGroupAndPosition(t *testing.T) {
	rules := names()
	rules.Add(ast.TagTuple, &Alternative[string]{
		Name: "join",
		Action: func(c Ctx[string], n ast.Node) (string, error) {
			var parts []string
			for i, item := range n.(*ast.Tuple).Nodes {
				s, err := c.Item("nodes", i, item)
				if err != nil {
					return "", err
				}
				parts = append(parts, s)
			}
			return strings.Join(parts, ","), nil
		},
	})
	engine, err := NewEngine(rules)
	require.NoError(t, err)

	_, err = engine.Run(&ast.Tuple{Nodes: []ast.Node{ast.N("a"), ast.Int(1)}}, 0, nil)
	require.Error(t, err)
	rerr, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, UnmatchedShape, rerr.Kind)
	require.Equal(t, ast.TagConst, rerr.Tag)
	require.Equal(t, "test/Const", rerr.Group)
	require.Equal(t, "Tuple.nodes[1]", rerr.Path.String())
	require.Contains(t, err.Error(), "Const")
	require.Contains(t, err.Error(), "test/Const")
}

func TestReentrantRecursionOnSynthesizedNodes(t *testing.T) {
	// A chain renders its head and recursively renders a synthesized
	// chain built from its tail.
	rules := names()
	rules.Add(ast.TagOr,
		&Alternative[string]{
			Name:    "last",
			Pattern: &Pattern{Tag: ast.TagOr, Lists: map[string]Count{"nodes": Exactly(1)}},
			Action: func(c Ctx[string], n ast.Node) (string, error) {
				return c.Item("nodes", 0, n.(*ast.Or).Nodes[0])
			},
		},
		&Alternative[string]{
			Name:    "head and rest",
			Pattern: &Pattern{Tag: ast.TagOr, Lists: map[string]Count{"nodes": AtLeast(2)}},
			Action: func(c Ctx[string], n ast.Node) (string, error) {
				nodes := n.(*ast.Or).Nodes
				head, err := c.Item("nodes", 0, nodes[0])
				if err != nil {
					return "", err
				}
				rest, err := c.Apply(&ast.Or{Nodes: nodes[1:]})
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("(%s|%s)", head, rest), nil
			},
		},
	)
	engine, err := NewEngine(rules)
	require.NoError(t, err)

	got, err := engine.Run(&ast.Or{Nodes: []ast.Node{ast.N("a"), ast.N("b"), ast.N("c")}}, 0, nil)
	require.NoError(t, err)
	require.Equal(t, "(a|(b|c))", got)
}

// joinRule consumes one element per step and fails for any other shape.
func joinRule() *ListRule[string, string] {
	return &ListRule[string, string]{
		Name: "join",
		Alternatives: []*ListAlternative[string, string]{
			{
				Name:  "empty",
				Arity: Exactly(0),
				Action: func(c Ctx[string], head Slice, tail string, hasTail bool) (string, error) {
					return "", nil
				},
			},
			{
				Name:  "head",
				Arity: AtLeast(1),
				Take:  1,
				Action: func(c Ctx[string], head Slice, tail string, hasTail bool) (string, error) {
					s, err := Apply(c, head, 0)
					if err != nil {
						return "", err
					}
					if hasTail {
						return s + "," + tail, nil
					}
					return s, nil
				},
			},
		},
	}
}

func TestListRuleConsumesEveryElement(t *testing.T) {
	rule := joinRule()
	rules := names().Add(ast.TagList, &Alternative[string]{
		Name: "list",
		Action: func(c Ctx[string], n ast.Node) (string, error) {
			return rule.Apply(c, "nodes", n.(*ast.List).Nodes)
		},
	})
	engine, err := NewEngine(rules)
	require.NoError(t, err)

	for size := 0; size <= 5; size++ {
		t.Run(fmt.Sprintf("N=%d", size), func(t *testing.T) {
			var items []ast.Node
			var want []string
			for i := 0; i < size; i++ {
				name := fmt.Sprintf("x%d", i)
				items = append(items, ast.N(name))
				want = append(want, name)
			}
			got, err := engine.Run(&ast.List{Nodes: items}, 0, nil)
			require.NoError(t, err)
			require.Equal(t, strings.Join(want, ","), got)
		})
	}
}

func TestListRuleRejectsPartialConsumption(t *testing.T) {
	lazy := &ListRule[string, string]{
		Name: "lazy",
		Alternatives: []*ListAlternative[string, string]{
			{
				Name:  "stops early",
				Arity: AtLeast(0),
				Action: func(c Ctx[string], head Slice, tail string, hasTail bool) (string, error) {
					return "done", nil
				},
			},
		},
	}
	pairs := &ListRule[string, string]{
		Name: "pairs",
		Alternatives: []*ListAlternative[string, string]{
			{Name: "pair", Arity: AtLeast(2), Take: 2, Action: func(c Ctx[string], head Slice, tail string, hasTail bool) (string, error) {
				return "pair", nil
			}},
			{Name: "none", Arity: Exactly(0), Action: func(c Ctx[string], head Slice, tail string, hasTail bool) (string, error) {
				return "", nil
			}},
		},
	}
	tests := []struct {
		name  string
		rule  *ListRule[string, string]
		items int
	}{
		{"take nothing from a non-empty list", lazy, 2},
		{"odd element left over", pairs, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := NewRuleSet[string]("test").Add(ast.TagList, &Alternative[string]{
				Name: "list",
				Action: func(c Ctx[string], n ast.Node) (string, error) {
					return tt.rule.Apply(c, "nodes", n.(*ast.List).Nodes)
				},
			})
			engine, err := NewEngine(rules)
			require.NoError(t, err)
			items := make([]ast.Node, tt.items)
			for i := range items {
				items[i] = ast.N("x")
			}
			_, err = engine.Run(&ast.List{Nodes: items}, 0, nil)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrArityMismatch), "got %v", err)
		})
	}
}

func TestExtendPutsExtraRulesFirst(t *testing.T) {
	base := names()
	extra := NewRuleSet[string]("extra").Add(ast.TagName, &Alternative[string]{
		Name:   "shout",
		Action: func(c Ctx[string], n ast.Node) (string, error) { return strings.ToUpper(n.(*ast.Name).Name), nil },
	})
	engine, err := NewEngine(base.Extend(extra))
	require.NoError(t, err)
	got, err := engine.Run(ast.N("x"), 0, nil)
	require.NoError(t, err)
	require.Equal(t, "X", got)

	// The base set is unchanged.
	engine, err = NewEngine(base)
	require.NoError(t, err)
	got, err = engine.Run(ast.N("x"), 0, nil)
	require.NoError(t, err)
	require.Equal(t, "x", got)
}

func TestDepthIsThreadedFunctionally(t *testing.T) {
	rules := NewRuleSet[string]("test")
	rules.Add(ast.TagName, &Alternative[string]{
		Name: "depth",
		Action: func(c Ctx[string], n ast.Node) (string, error) {
			return fmt.Sprintf("%s@%d", n.(*ast.Name).Name, c.Depth()), nil
		},
	})
	rules.Add(ast.TagTuple, &Alternative[string]{
		Name: "nest first",
		Action: func(c Ctx[string], n ast.Node) (string, error) {
			nodes := n.(*ast.Tuple).Nodes
			inner, err := c.Nested().Item("nodes", 0, nodes[0])
			if err != nil {
				return "", err
			}
			outer, err := c.Item("nodes", 1, nodes[1])
			if err != nil {
				return "", err
			}
			return inner + " " + outer, nil
		},
	})
	engine, err := NewEngine(rules)
	require.NoError(t, err)
	got, err := engine.Run(&ast.Tuple{Nodes: []ast.Node{ast.N("a"), ast.N("b")}}, 2, nil)
	require.NoError(t, err)
	require.Equal(t, "a@3 b@2", got)
}

func TestRecursionLimit(t *testing.T) {
	rules := names().Add(ast.TagNot, &Alternative[string]{
		Name: "not",
		Action: func(c Ctx[string], n ast.Node) (string, error) {
			return c.Child("expr", n.(*ast.Not).Expr)
		},
	})
	engine, err := NewEngine(rules, WithMaxDepth(10))
	require.NoError(t, err)
	var n ast.Node = ast.N("x")
	for i := 0; i < 20; i++ {
		n = &ast.Not{Expr: n}
	}
	_, err = engine.Run(n, 0, nil)
	require.True(t, errors.Is(err, ErrRecursionLimit), "got %v", err)
}

func TestTraceWritesCommittedAlternatives(t *testing.T) {
	var trace strings.Builder
	engine, err := NewEngine(names(), WithTrace(&trace))
	require.NoError(t, err)
	_, err = engine.Run(ast.N("x"), 0, nil)
	require.NoError(t, err)
	require.Equal(t, "test/Name: name at <root>\n", trace.String())
}

func TestEngineIsSafeForConcurrentUse(t *testing.T) {
	engine, err := NewEngine(names())
	require.NoError(t, err)
	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = engine.Run(ast.N(fmt.Sprintf("n%d", i)), 0, nil)
		}(i)
	}
	wg.Wait()
	for i, got := range results {
		require.Equal(t, fmt.Sprintf("n%d", i), got)
	}
}

func TestValidateRejectsBadRules(t *testing.T) {
	tests := []struct {
		name  string
		rules *RuleSet[string]
	}{
		{"missing action", NewRuleSet[string]("t").Add(ast.TagName, &Alternative[string]{Name: "x"})},
		{"pattern for another tag", NewRuleSet[string]("t").Add(ast.TagName, &Alternative[string]{
			Name: "x", Pattern: &Pattern{Tag: ast.TagConst}, Action: func(Ctx[string], ast.Node) (string, error) { return "", nil },
		})},
		{"unknown list field", NewRuleSet[string]("t").Add(ast.TagName, &Alternative[string]{
			Name: "x", Pattern: &Pattern{Tag: ast.TagName, Lists: map[string]Count{"nodes": AnyCount()}}, Action: func(Ctx[string], ast.Node) (string, error) { return "", nil },
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.rules)
			require.Error(t, err)
		})
	}
}
