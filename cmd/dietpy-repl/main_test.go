package main

import (
	"bytes"
	"testing"

	"github.com/Warbo/python-decompiler/pkg/translate"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T) *session {
	t.Helper()
	tr, err := translate.NewTranslator()
	require.NoError(t, err)
	return &session{translator: tr, format: "JSON"}
}

func TestEvalWritesCoreText(t *testing.T) {
	var out, errOut bytes.Buffer
	newSession(t).eval("x = a - b\n", &out, &errOut)
	require.Equal(t, "x = a.__sub__(b)\n", out.String())
	require.Empty(t, errOut.String())
}

func TestEvalReportsFailingUnits(t *testing.T) {
	var out, errOut bytes.Buffer
	newSession(t).eval("break\ny = 1\n", &out, &errOut)
	require.Equal(t, "y = 1\n", out.String())
	require.Contains(t, errOut.String(), "Error: unit 0 (Break) failed at check: ")
}

func TestEvalShowsTree(t *testing.T) {
	var out, errOut bytes.Buffer
	s := newSession(t)
	s.showTree = true
	s.eval("pass\n", &out, &errOut)
	require.Contains(t, out.String(), "pass\n")
	require.Contains(t, out.String(), `"name": "Module"`)
}

func TestEvalParseError(t *testing.T) {
	var out, errOut bytes.Buffer
	newSession(t).eval("x = (\n", &out, &errOut)
	require.Empty(t, out.String())
	require.Contains(t, errOut.String(), "Error: ")
}
