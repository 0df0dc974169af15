package resolver

import (
	"testing"

	"github.com/Warbo/python-decompiler/pkg/ast"
	"github.com/Warbo/python-decompiler/pkg/common"
	"github.com/stretchr/testify/require"
)

func TestQualifiedNames(t *testing.T) {
	method := &ast.Function{Name: "m", Argnames: []string{"self"}, Code: ast.Block(&ast.Pass{})}
	inner := &ast.Function{Name: "inner", Code: ast.Block(&ast.Pass{})}
	escaped := &ast.Function{Name: "g", Code: ast.Block(&ast.Pass{})}
	lambda := ast.Thunk(ast.N("x"))
	local := &ast.Class{Name: "L", Code: ast.Block(&ast.Pass{})}
	outer := &ast.Function{
		Name:     "outer",
		Argnames: []string{"x"},
		Code: ast.Block(
			&ast.Global{Names: []string{"g"}},
			inner,
			escaped,
			local,
			&ast.Return{Value: ast.Some(lambda)},
		),
	}
	class := &ast.Class{Name: "C", Code: ast.Block(method)}
	root := &ast.Module{Body: ast.Block(class, outer)}

	info := Resolve(root)

	tests := []struct {
		node ast.Node
		want string
	}{
		{class, "C"},
		{method, "C.m"},
		{outer, "outer"},
		{inner, "outer.<locals>.inner"},
		{escaped, "g"},
		{local, "outer.<locals>.L"},
		{lambda, "outer.<locals>.<lambda>"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, info.QualNames[tt.node])
		})
	}
	require.Contains(t, info.Scopes[root].Identifiers, "g")
	require.NotContains(t, info.Scopes[outer].Identifiers, "g")
}

func TestUsedIdentifiers(t *testing.T) {
	root := &ast.Module{Body: ast.Block(
		&ast.Import{Names: []*ast.Alias{{Name: "os.path"}}},
		&ast.From{Module: "m", Names: []*ast.Alias{{Name: "a", AsName: common.Some("b")}}},
		ast.AssignName("_t0", ast.Call(ast.N("f"), ast.Attr(ast.N("x"), "attr"))),
	)}
	info := Resolve(root)
	for _, name := range []string{"os", "a", "b", "_t0", "f", "x"} {
		require.True(t, info.Used[name], name)
	}
	require.False(t, info.Used["attr"])
	require.False(t, info.Used["path"])
	require.True(t, info.Unresolved["f"])
	require.False(t, info.Unresolved["os"])
}

func TestClassScopeIsHiddenFromMethods(t *testing.T) {
	method := &ast.Function{Name: "m", Code: ast.Block(&ast.Return{Value: ast.Some(ast.N("y"))})}
	class := &ast.Class{Name: "C", Code: ast.Block(ast.AssignName("y", ast.Int(1)), method)}
	info := Resolve(&ast.Module{Body: ast.Block(class)})
	require.True(t, info.Unresolved["y"])
	require.Equal(t, 0, info.Scopes[class].Identifiers["y"].References)
}
