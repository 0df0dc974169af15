package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Warbo/python-decompiler/pkg/ast"
	"github.com/Warbo/python-decompiler/pkg/bundler"
	"github.com/Warbo/python-decompiler/pkg/translate"
	"github.com/stretchr/testify/require"
)

func TestGuessFormat(t *testing.T) {
	require.Equal(t, "JSON", guessFormat("tree.json"))
	require.Equal(t, "YAML", guessFormat("tree.YML"))
	require.Equal(t, "PY", guessFormat("prog.py"))
	require.Equal(t, "PY", guessFormat(""))
}

func TestReadModuleFormats(t *testing.T) {
	fromSource, err := readModule("PY", []byte("x = 1\n"), "")
	require.NoError(t, err)

	data, err := bundler.EncodeTree(fromSource)
	require.NoError(t, err)
	fromJSON, err := readModule("JSON", []byte(data), "")
	require.NoError(t, err)
	require.True(t, ast.Equal(fromSource, fromJSON))

	_, err = readModule("XML", nil, "")
	require.ErrorContains(t, err, "unknown input format: XML")
}

func TestReadModuleRejectsNonModule(t *testing.T) {
	_, err := readModule("YAML", []byte("name: Pass\n"), "")
	require.ErrorContains(t, err, "input tree is a Pass, not a Module")
}

func TestReadModuleTokenRules(t *testing.T) {
	rules := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte("keyword: [\"1abc\"]\n"), 0o600))
	_, err := readModule("PY", []byte("x = 1\n"), rules)
	require.ErrorContains(t, err, "error applying token rules")
}

func TestBundleMigratesFreshFileOnly(t *testing.T) {
	tr, err := translate.NewTranslator()
	require.NoError(t, err)
	result, err := tr.TranslateSource("x = 1\n", false)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.bundle")
	require.NoError(t, bundle(path, "m.py", "x = 1\n", result, false, false))

	b, err := bundler.NewBundler(path)
	require.NoError(t, err)
	defer b.Close()
	units, err := b.Units()
	require.NoError(t, err)
	require.Len(t, units, 1)

	stale := filepath.Join(t.TempDir(), "stale.bundle")
	require.NoError(t, os.WriteFile(stale, nil, 0o600))
	require.ErrorContains(t, bundle(stale, "m.py", "x = 1\n", result, false, false), "rerun with --migrate")
	require.NoError(t, bundle(stale, "m.py", "x = 1\n", result, true, false))
}
