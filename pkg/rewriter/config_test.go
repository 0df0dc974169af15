package rewriter

import (
	"testing"

	"github.com/Warbo/python-decompiler/pkg/ast"
	"github.com/stretchr/testify/require"
)

const sampleRules = `
name: sample
rules:
  - name: a + b -> a.__add__(b)
    match:
      tag: Add
    action:
      method:
        receiver: left
        name: __add__
        args: [right]
  - name: not x -> bool(x).__lognot__()
    match:
      tag: Not
    action:
      method:
        receiver: expr
        name: __lognot__
        coerce: bool
  - name: a & b & c
    match:
      tag: Bitand
      lists:
        nodes:
          min: 2
    action:
      foldMethod:
        list: nodes
        name: __and__
  - name: slice bounds
    match:
      tag: Slice
    action:
      call:
        func: slice
        args: [lower, upper]
  - name: +x -> x
    match:
      tag: UnaryAdd
    action:
      replaceByChild: expr
  - name: no print
    match:
      tag: Name
      leaves:
        name: print
    action:
      fail: print is not supported
  - name: names
    match:
      tag: Name
    action:
      replaceByChild: missing
`

func compileSample(t *testing.T, yamlText string) *Engine[ast.Node] {
	t.Helper()
	config, err := LoadRewriteConfigFromString(yamlText)
	require.NoError(t, err)
	rules, err := config.Compile()
	require.NoError(t, err)
	rules.Add(ast.TagName, &Alternative[ast.Node]{
		Name:   "keep",
		Action: func(c Ctx[ast.Node], n ast.Node) (ast.Node, error) { return n, nil },
	})
	engine, err := NewEngine(rules)
	require.NoError(t, err)
	return engine
}

func TestConfigRejectsUnknownFields(t *testing.T) {
	config, err := LoadRewriteConfigFromString(sampleRules)
	require.NoError(t, err)
	_, err = config.Compile()
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing")
}

func TestCompiledRules(t *testing.T) {
	valid := sampleRules[:len(sampleRules)-len(`  - name: names
    match:
      tag: Name
    action:
      replaceByChild: missing
`)]
	engine := compileSample(t, valid)

	tests := []struct {
		name string
		in   ast.Node
		want ast.Node
	}{
		{"method", &ast.Add{Left: ast.N("a"), Right: ast.N("b")}, ast.Method(ast.N("a"), "__add__", ast.N("b"))},
		{"coerced method", &ast.Not{Expr: ast.N("a")}, ast.Method(ast.Call(ast.N("bool"), ast.N("a")), "__lognot__")},
		{"fold", &ast.Bitand{Nodes: []ast.Node{ast.N("a"), ast.N("b"), ast.N("c")}},
			ast.Method(ast.Method(ast.N("a"), "__and__", ast.N("b")), "__and__", ast.N("c"))},
		{"call with absent optional", &ast.Slice{Expr: ast.N("x"), Upper: ast.Some(ast.N("n"))},
			ast.Call(ast.N("slice"), ast.NoneConst(), ast.N("n"))},
		{"replace by child", &ast.UnaryAdd{Expr: ast.N("a")}, ast.N("a")},
		{"nested", &ast.Add{Left: &ast.Not{Expr: ast.N("a")}, Right: &ast.UnaryAdd{Expr: ast.N("b")}},
			ast.Method(ast.Method(ast.Call(ast.N("bool"), ast.N("a")), "__lognot__"), "__add__", ast.N("b"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Run(tt.in, 0, nil)
			require.NoError(t, err)
			require.True(t, ast.Equal(tt.want, got), "got %#v", ast.ToTerm(got))
		})
	}

	_, err := engine.Run(&ast.Add{Left: ast.N("print"), Right: ast.N("b")}, 0, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "print is not supported")
	require.Contains(t, err.Error(), "Add.left")
}

func TestActionConfigValidate(t *testing.T) {
	field := "expr"
	msg := "no"
	tests := []struct {
		name   string
		config ActionConfig
		ok     bool
	}{
		{"none", ActionConfig{}, false},
		{"two", ActionConfig{ReplaceByChild: &field, Fail: &msg}, false},
		{"method without name", ActionConfig{Method: &MethodConfig{Receiver: "left"}}, false},
		{"one", ActionConfig{ReplaceByChild: &field}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestPatternMatches(t *testing.T) {
	fn := &ast.Function{Name: "f", Argnames: []string{"a"}, Defaults: []ast.Node{ast.Int(1)}, Code: ast.Block(&ast.Pass{})}
	tests := []struct {
		name    string
		pattern Pattern
		want    bool
	}{
		{"tag only", Pattern{Tag: ast.TagFunction}, true},
		{"wrong tag", Pattern{Tag: ast.TagClass}, false},
		{"defaults count", Pattern{Tag: ast.TagFunction, Lists: map[string]Count{"defaults": Exactly(1)}}, true},
		{"defaults too few", Pattern{Tag: ast.TagFunction, Lists: map[string]Count{"defaults": AtLeast(2)}}, false},
		{"defaults at most", Pattern{Tag: ast.TagFunction, Lists: map[string]Count{"defaults": AtMost(0)}}, false},
		{"decorators between", Pattern{Tag: ast.TagFunction, Lists: map[string]Count{"decorators": Between(0, 2)}}, true},
		{"doc absent", Pattern{Tag: ast.TagFunction, Absent: []string{"doc"}}, true},
		{"doc present", Pattern{Tag: ast.TagFunction, Present: []string{"doc"}}, false},
		{"leaf", Pattern{Tag: ast.TagFunction, Leaves: map[string]string{"name": "f", "varargs": "false"}}, true},
		{"leaf differs", Pattern{Tag: ast.TagFunction, Leaves: map[string]string{"name": "g"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.pattern.Validate(tt.name))
			require.Equal(t, tt.want, tt.pattern.Matches(fn))
		})
	}
}
