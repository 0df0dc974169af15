package main

import (
	"fmt"
	"os"
	"strings"

	pflag "github.com/spf13/pflag"

	"github.com/Warbo/python-decompiler/pkg/ast"
	"github.com/Warbo/python-decompiler/pkg/common"
)

// Version is injected at build time via ldflags.
var Version = "dev"

const DEFAULT_FORMAT = "ASCIITREE"

func main() {
	// Define command line flags.
	var from = pflag.String("from", "JSON", "Input format (JSON, YAML)")
	var format = pflag.StringP("format", "f", DEFAULT_FORMAT, "Output format (JSON, YAML, ASCIITREE, DOT)")
	var indent = pflag.Int("indent", 2, "Indentation level for display purposes")
	var trim = pflag.Int("trim", 0, "Trim values for display purposes")
	var raw = pflag.Bool("raw", false, "Convert the tree without checking it against the node model")
	var version = pflag.Bool("version", false, "Print version and exit")
	var help = pflag.BoolP("help", "h", false, "Print help message and exit")

	// Custom usage message.
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nConverts a syntax tree between formats.\n")
		fmt.Fprintf(os.Stderr, "Reads the tree from stdin and writes the converted tree to stdout.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	// Handle version flag.
	if *version {
		fmt.Printf("dietpy-convert-tree version %s\n", Version)
		os.Exit(0)
	}

	// Handle help flag.
	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	tree, err := common.ReadAST(*from, os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s input: %v\n", strings.ToUpper(*from), err)
		os.Exit(1)
	}

	// Going through the node model normalises the tree and rejects unknown
	// tags, fields and malformed leaves.
	if !*raw {
		node, err := ast.FromTerm(tree)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error decoding tree: %v\n", err)
			os.Exit(1)
		}
		tree = ast.ToTerm(node)
	}

	// Select the appropriate print function based on format.
	printFunc, err := common.PickPrintFunc(*format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Print the tree in the selected format.
	err = printFunc(tree, strings.Repeat(" ", *indent), os.Stdout, &common.PrintOptions{
		Format:            *format,
		Indent:            *indent,
		TrimTokenOnOutput: *trim,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
}
