package bundler

import (
	"path/filepath"
	"testing"

	"github.com/Warbo/python-decompiler/pkg/ast"
	"github.com/Warbo/python-decompiler/pkg/translate"
	"github.com/stretchr/testify/require"
)

func newBundle(t *testing.T) *Bundler {
	t.Helper()
	b, err := NewBundler(filepath.Join(t.TempDir(), "bundle.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func translateSource(t *testing.T, source string) *translate.Result {
	t.Helper()
	tr, err := translate.NewTranslator()
	require.NoError(t, err)
	result, err := tr.TranslateSource(source, true)
	require.NoError(t, err)
	return result
}

func TestMigrations(t *testing.T) {
	b := newBundle(t)
	ok, err := b.CheckMigration()
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, b.Migrate())
	ok, err = b.CheckMigration()
	require.NoError(t, err)
	require.True(t, ok)

	// Migrating again is a no-op.
	require.NoError(t, b.Migrate())
}

func TestProcessResult(t *testing.T) {
	b := newBundle(t)
	require.NoError(t, b.Migrate())

	source := "x = a + 1\nbreak\ndef f():\n    return x\n"
	require.NoError(t, b.AddSource("m.py", source))
	require.NoError(t, b.ProcessResult("m.py", translateSource(t, source)))

	units, err := b.Units()
	require.NoError(t, err)
	require.Len(t, units, 2)
	require.Equal(t, 0, units[0].Position)
	require.Equal(t, "x = a.__add__(1)\n", units[0].Text)
	require.Equal(t, "Function", units[1].Tag)
	require.Equal(t, "f", units[1].Name)

	tree, err := units[0].Tree()
	require.NoError(t, err)
	require.True(t, ast.Equal(ast.AssignName("x", ast.Method(ast.N("a"), "__add__", ast.Int(1))), tree))

	failures, err := b.Failures()
	require.NoError(t, err)
	require.Len(t, failures, 1)
	require.Equal(t, 1, failures[0].Position)
	require.Equal(t, "check", failures[0].Stage)
	require.Contains(t, failures[0].Message, "'break' outside loop")

	users, err := b.Users("a")
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, 0, users[0].Position)

	contents, err := b.Source("m.py")
	require.NoError(t, err)
	require.Equal(t, source, contents)
}

func TestProcessResultReplacesPreviousRun(t *testing.T) {
	b := newBundle(t)
	require.NoError(t, b.Migrate())
	require.NoError(t, b.ProcessResult("m.py", translateSource(t, "break\ny = 1\n")))
	require.NoError(t, b.ProcessResult("m.py", translateSource(t, "y = 2\n")))

	units, err := b.Units()
	require.NoError(t, err)
	require.Len(t, units, 1)
	require.Equal(t, "y = 2\n", units[0].Text)

	failures, err := b.Failures()
	require.NoError(t, err)
	require.Empty(t, failures)
}

func TestFindIdentifierReferences(t *testing.T) {
	n := ast.Call(ast.N("f"), ast.N("x"), ast.Method(ast.N("x"), "g", ast.N("y")))
	require.Equal(t, []string{"f", "x", "y"}, findIdentifierReferences(n))
}

func TestEncodeTreeRoundTrip(t *testing.T) {
	n := &ast.Function{Name: "f", Argnames: []string{"a"}, Code: ast.Block(&ast.Return{Value: ast.Some(ast.Float(0.5))})}
	data, err := EncodeTree(n)
	require.NoError(t, err)
	back, err := DecodeTree(data)
	require.NoError(t, err)
	require.True(t, ast.Equal(n, back))

	_, err = DecodeTree("{")
	require.ErrorContains(t, err, "failed to parse stored tree")
}
