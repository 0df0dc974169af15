package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	pflag "github.com/spf13/pflag"

	"github.com/Warbo/python-decompiler/pkg/ast"
	"github.com/Warbo/python-decompiler/pkg/common"
	"github.com/Warbo/python-decompiler/pkg/desugar"
	"github.com/Warbo/python-decompiler/pkg/translate"
)

// Version is injected at build time via ldflags.
var Version = "dev"

const (
	historyFile = ".dietpy_history"
	promptMain  = ">>> "
	promptCont  = "... "
)

const banner = `dietpy %s - type Python, get core Python back.
Commands: :tree toggles the desugared tree, :quit exits.`

type session struct {
	translator *translate.Translator
	showTree   bool
	format     string
}

func main() {
	// Define command line flags.
	var rewriteRules = pflag.String("rewrite-rules", "", "YAML file layered over the default desugaring rules")
	var showTree = pflag.BoolP("tree", "t", false, "Show the desugared tree after each input")
	var format = pflag.StringP("format", "f", "ASCIITREE", "Tree format (JSON, YAML, ASCIITREE, DOT)")
	var noHistory = pflag.Bool("no-history", false, "Do not read or write the history file")
	var version = pflag.Bool("version", false, "Print version and exit")
	var help = pflag.BoolP("help", "h", false, "Print help message and exit")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nInteractive desugaring: each input is parsed, desugared and rendered.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *version {
		fmt.Printf("dietpy-repl version %s\n", Version)
		os.Exit(0)
	}

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	if _, err := common.PickPrintFunc(*format); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	tr, err := translate.NewTranslator()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating translator: %v\n", err)
		os.Exit(1)
	}
	if *rewriteRules != "" {
		if tr.Desugarer, err = layeredDesugarer(*rewriteRules); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading rewrite configuration file: %v\n", err)
			os.Exit(1)
		}
	}

	s := &session{translator: tr, showTree: *showTree, format: *format}
	os.Exit(s.repl(!*noHistory))
}

func layeredDesugarer(rewriteRules string) (*desugar.Desugarer, error) {
	config, err := desugar.DefaultConfig()
	if err != nil {
		return nil, err
	}
	extra, err := desugar.LoadConfig(rewriteRules)
	if err != nil {
		return nil, err
	}
	return desugar.New(config.Layer(extra))
}

func (s *session) repl(useHistory bool) int {
	fmt.Printf(banner+"\n", Version)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	var histPath string
	if home, err := os.UserHomeDir(); err == nil && useHistory {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	for {
		code, ok := readInput(ln)
		if !ok {
			fmt.Println()
			return 0
		}

		trimmed := strings.TrimSpace(code)
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return 0
			case ":tree":
				s.showTree = !s.showTree
				fmt.Printf("tree display %s\n", map[bool]string{true: "on", false: "off"}[s.showTree])
			default:
				fmt.Printf("unknown command. Type :quit to exit.\n")
			}
			continue
		}
		if trimmed == "" {
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		s.eval(code, os.Stdout, os.Stderr)
	}
}

// readInput reads one entry. A line ending in a colon opens a block, which
// runs until the next blank line.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	inBlock := false
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return b.String(), b.Len() > 0
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if inBlock && strings.TrimSpace(line) == "" {
			return b.String(), true
		}
		b.WriteString(line)
		b.WriteByte('\n')
		if strings.HasSuffix(strings.TrimSpace(line), ":") {
			inBlock = true
		}
		if !inBlock {
			return b.String(), true
		}
	}
}

// eval translates one entry, writing the core text (and tree) to out and
// problems to errOut.
func (s *session) eval(code string, out, errOut io.Writer) {
	result, err := s.translator.TranslateSource(code, true)
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return
	}
	for _, u := range result.Failures() {
		fmt.Fprintf(errOut, "Error: %s failed at %s: %v\n", u.Label(), u.Stage, u.Err)
	}
	fmt.Fprint(out, result.Text())
	if s.showTree {
		printFunc, err := common.PickPrintFunc(s.format)
		if err != nil {
			fmt.Fprintf(errOut, "Error: %v\n", err)
			return
		}
		if err := printFunc(ast.ToTerm(result.Module()), "  ", out, &common.PrintOptions{Format: s.format, Indent: 2}); err != nil {
			fmt.Fprintf(errOut, "Error writing tree: %v\n", err)
		}
	}
}
