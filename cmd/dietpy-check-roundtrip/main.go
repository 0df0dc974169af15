package main

import (
	"fmt"
	"io"
	"os"

	pflag "github.com/spf13/pflag"

	"github.com/Warbo/python-decompiler/pkg/ast"
	"github.com/Warbo/python-decompiler/pkg/checker"
	"github.com/Warbo/python-decompiler/pkg/parser"
	"github.com/Warbo/python-decompiler/pkg/render"
)

// Version is injected at build time via ldflags.
var Version = "dev"

func main() {
	// Define command line flags.
	var inputFile = pflag.StringP("input", "i", "", "Input file (defaults to stdin)")
	var verbose = pflag.BoolP("verbose", "v", false, "Report every statement, not only failures")
	var version = pflag.Bool("version", false, "Print version and exit")
	var help = pflag.BoolP("help", "h", false, "Print help message and exit")

	// Custom usage message.
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nReads core Python, renders each top-level statement and reads it back.\n")
		fmt.Fprintf(os.Stderr, "Exits with status 1 when any statement does not survive the round trip.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	// Handle version flag.
	if *version {
		fmt.Printf("dietpy-check-roundtrip version %s\n", Version)
		os.Exit(0)
	}

	// Handle help flag.
	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	input := io.Reader(os.Stdin)
	if *inputFile != "" {
		file, err := os.Open(*inputFile) // #nosec G304 - CLI tool reads user-specified input files
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input file: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()
		input = file
	}
	source, err := io.ReadAll(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}

	module, err := parser.ParseModule(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Parse error: %v\n", err)
		os.Exit(1)
	}

	r, err := render.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating renderer: %v\n", err)
		os.Exit(1)
	}
	renderFn := func(n ast.Node) (string, error) { return r.Render(n, 0) }

	failed := 0
	for i, stmt := range module.Body.Nodes {
		if err := checker.RoundTrip(stmt, renderFn, parser.ParseNode); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "Error: statement %d (%s): %v\n", i, stmt.Tag(), err)
			continue
		}
		if *verbose {
			fmt.Printf("statement %d (%s): ok\n", i, stmt.Tag())
		}
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d statements failed the round trip\n", failed, len(module.Body.Nodes))
		os.Exit(1)
	}
}
