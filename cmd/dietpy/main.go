package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Warbo/python-decompiler/pkg/ast"
	"github.com/Warbo/python-decompiler/pkg/bundler"
	"github.com/Warbo/python-decompiler/pkg/common"
	"github.com/Warbo/python-decompiler/pkg/desugar"
	"github.com/Warbo/python-decompiler/pkg/parser"
	"github.com/Warbo/python-decompiler/pkg/render"
	"github.com/Warbo/python-decompiler/pkg/tokenizer"
	"github.com/Warbo/python-decompiler/pkg/translate"
)

// Version is injected at build time via ldflags.
var Version = "dev"

const usage = `dietpy - desugar Python syntax trees into core Python

This command pipes together reading, syntax checking, desugaring, rendering
and bundling in memory. The input is a syntax tree (JSON or YAML) or Python
source in the syntax the tool itself reads. The output is the equivalent
program written with method calls in place of operators.

Usage:
  dietpy [options]

Options:
`

const DEFAULT_FORMAT = "PY"

func main() {
	var showHelp, showVersion, debug, keepGoing, coreAST, checkRoundTrip, noCheck, migrate bool
	var inputFile, outputFile, bundleFile, tokenRulesFile, rewriteRulesFile, from, format string
	var indent int

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", usage)
		flag.PrintDefaults()
	}

	flag.BoolVar(&showHelp, "h", false, "Show help")
	flag.BoolVar(&showHelp, "help", false, "Show help")
	flag.BoolVar(&showVersion, "version", false, "Show version")
	flag.BoolVar(&debug, "debug", false, "Trace every rule that fires to stderr")
	flag.BoolVar(&keepGoing, "keep-going", false, "Skip top-level statements that fail instead of stopping")
	flag.BoolVar(&coreAST, "core-ast", false, "Write the desugared tree instead of Python text")
	flag.BoolVar(&checkRoundTrip, "check-roundtrip", false, "Read each rendered statement back and compare it with its tree")
	flag.BoolVar(&noCheck, "no-check", false, "Skip the syntax checks on the input tree")
	flag.BoolVar(&migrate, "migrate", false, "Migrate an existing bundle file to the current schema")
	flag.StringVar(&inputFile, "input", "", "Input file (defaults to stdin)")
	flag.StringVar(&outputFile, "output", "", "Output file (defaults to stdout)")
	flag.StringVar(&bundleFile, "bundle", "", "Bundle file to record the translation in (optional)")
	flag.StringVar(&tokenRulesFile, "token-rules", "", "YAML file containing tokenizer rules (optional)")
	flag.StringVar(&rewriteRulesFile, "rewrite-rules", "", "YAML file layered over the default desugaring rules (optional)")
	flag.StringVar(&from, "from", "", "Input format (JSON, YAML, PY); guessed from the file name when empty")
	flag.StringVar(&format, "f", DEFAULT_FORMAT, "Output format (PY, JSON, YAML, ASCIITREE, DOT)")
	flag.StringVar(&format, "format", DEFAULT_FORMAT, "Output format (PY, JSON, YAML, ASCIITREE, DOT)")
	flag.IntVar(&indent, "indent", 4, "Spaces per indentation level in the output")

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("dietpy version %s\n", Version)
		os.Exit(0)
	}

	// Reject any positional arguments.
	if len(flag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "Error: Unexpected positional arguments. Use --input flag instead.\n\n")
		flag.Usage()
		os.Exit(1)
	}

	format = strings.ToUpper(format)
	if coreAST && format == "PY" {
		format = "JSON"
	}
	if !coreAST && format != "PY" {
		coreAST = true
	}

	// Phase 1: Reading.
	input := io.Reader(os.Stdin)
	if inputFile != "" {
		file, err := os.Open(inputFile) // #nosec G304 - CLI tool reads user-specified input files
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input file: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()
		input = file
	}
	inputBytes, err := io.ReadAll(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}

	if from == "" {
		from = guessFormat(inputFile)
	}
	module, err := readModule(strings.ToUpper(from), inputBytes, tokenRulesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading module: %v\n", err)
		os.Exit(1)
	}

	// Phase 2: Building the desugarer and the renderer.
	config, err := desugar.DefaultConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading default desugar rules: %v\n", err)
		os.Exit(1)
	}
	if rewriteRulesFile != "" {
		extra, err := desugar.LoadConfig(rewriteRulesFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading rewrite configuration file: %v\n", err)
			os.Exit(1)
		}
		config = config.Layer(extra)
	}

	var desugarOptions []desugar.Option
	renderOptions := []render.Option{render.WithIndent(strings.Repeat(" ", indent))}
	if debug {
		desugarOptions = append(desugarOptions, desugar.WithTrace(os.Stderr))
		renderOptions = append(renderOptions, render.WithTrace(os.Stderr))
	}
	d, err := desugar.New(config, desugarOptions...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating desugarer: %v\n", err)
		os.Exit(1)
	}
	r, err := render.New(renderOptions...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating renderer: %v\n", err)
		os.Exit(1)
	}

	// Phase 3: Translation.
	tr := &translate.Translator{Desugarer: d, Renderer: r, Check: !noCheck, RoundTrip: checkRoundTrip}
	result, err := tr.TranslateModule(module, keepGoing)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Phase 4: Output.
	var out bytes.Buffer
	if coreAST {
		printFunc, err := common.PickPrintFunc(format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		options := &common.PrintOptions{Format: format, Indent: 2}
		if err := printFunc(ast.ToTerm(result.Module()), "  ", &out, options); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing tree: %v\n", err)
			os.Exit(1)
		}
	} else {
		out.WriteString(result.Text())
	}
	if outputFile != "" {
		if err := os.WriteFile(outputFile, out.Bytes(), 0o644); err != nil { // #nosec G306 - output is ordinary source text
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
	} else if _, err := os.Stdout.Write(out.Bytes()); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}

	// Phase 5: Bundling.
	if bundleFile != "" {
		fileName := inputFile
		if fileName == "" {
			fileName = "<stdin>"
		}
		if err := bundle(bundleFile, fileName, string(inputBytes), result, migrate, debug); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	failures := result.Failures()
	for _, u := range failures {
		fmt.Fprintf(os.Stderr, "Error: %s failed at %s: %v\n", u.Label(), u.Stage, u.Err)
	}
	if len(failures) > 0 {
		os.Exit(1)
	}

	if debug {
		fmt.Fprintf(os.Stderr, "Translation completed successfully.\n")
	}
}

func guessFormat(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".json":
		return "JSON"
	case ".yaml", ".yml":
		return "YAML"
	}
	return "PY"
}

// readModule reads a tree in one of the term formats, or parses source.
func readModule(from string, data []byte, tokenRulesFile string) (*ast.Module, error) {
	var node ast.Node
	switch from {
	case "JSON", "YAML":
		term, err := common.ReadAST(from, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		if node, err = ast.FromTerm(term); err != nil {
			return nil, err
		}
	case "PY":
		rules := tokenizer.DefaultRules()
		if tokenRulesFile != "" {
			rulesFile, err := tokenizer.LoadRulesFile(tokenRulesFile)
			if err != nil {
				return nil, err
			}
			if rules, err = tokenizer.ApplyRulesToDefaults(rulesFile); err != nil {
				return nil, fmt.Errorf("error applying token rules: %w", err)
			}
		}
		tokens, err := tokenizer.New(rules).Tokenize(string(data))
		if err != nil {
			return nil, err
		}
		if node, err = parser.NewParser(tokens).ReadModule(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown input format: %s", from)
	}
	module, ok := node.(*ast.Module)
	if !ok {
		return nil, fmt.Errorf("input tree is a %s, not a Module", node.Tag())
	}
	return module, nil
}

// bundle records result in bundleFile. A fresh file is migrated; an
// existing one is only migrated when asked to.
func bundle(bundleFile, fileName, source string, result *translate.Result, migrate, debug bool) error {
	_, err := os.Stat(bundleFile)
	fileExists := err == nil

	b, err := bundler.NewBundler(bundleFile)
	if err != nil {
		return fmt.Errorf("failed to create bundler: %w", err)
	}
	defer b.Close()

	upToDate, err := b.CheckMigration()
	if err != nil {
		return fmt.Errorf("failed to check migration status: %w", err)
	}
	if !upToDate {
		if fileExists && !migrate {
			return fmt.Errorf("database schema is not up to date, rerun with --migrate")
		}
		if err := b.Migrate(); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		if debug {
			fmt.Fprintf(os.Stderr, "Database initialized successfully.\n")
		}
	}

	if err := b.AddSource(fileName, source); err != nil {
		return err
	}
	return b.ProcessResult(fileName, result)
}
