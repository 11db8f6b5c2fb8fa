// Package main provides the aster-parse command line driver: tokenize,
// parse and check Aster sources, with an optional watch mode.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/olekukonko/tablewriter"

	"github.com/orizon-lang/aster/internal/ast"
	"github.com/orizon-lang/aster/internal/diag"
	"github.com/orizon-lang/aster/internal/dialect"
	"github.com/orizon-lang/aster/internal/lexer"
	"github.com/orizon-lang/aster/internal/parser"
	"github.com/orizon-lang/aster/internal/source"
	"github.com/orizon-lang/aster/internal/watch"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version information")
		dialectName = flag.String("dialect", "Aster3", "language dialect: Aster1|Aster2|Aster3")
		langVersion = flag.String("lang-version", "", "derive the dialect from a language version (overrides -dialect)")
		dumpTokens  = flag.Bool("tokens", false, "print the token stream as a table")
		dumpAST     = flag.Bool("ast", false, "print the parsed tree")
		watchMode   = flag.Bool("watch", false, "reparse files on change")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("aster-parse v%s (%s)\n", version, commit)
		return
	}

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "error: no input files")
		flag.Usage()
		os.Exit(1)
	}

	d, err := pickDialect(*dialectName, *langVersion)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	console := &diag.Console{Out: os.Stderr}
	exitCode := 0
	for _, path := range files {
		if !processFile(path, d, console, *dumpTokens, *dumpAST) {
			exitCode = 1
		}
	}

	if *watchMode {
		runWatch(files, d, console, *dumpTokens, *dumpAST)
		return
	}
	os.Exit(exitCode)
}

func pickDialect(name, langVersion string) (dialect.Dialect, error) {
	if langVersion != "" {
		return dialect.ForVersion(langVersion)
	}
	switch name {
	case "Aster1":
		return dialect.Aster1, nil
	case "Aster2":
		return dialect.Aster2, nil
	case "Aster3":
		return dialect.Aster3, nil
	}
	return dialect.Dialect{}, fmt.Errorf("unknown dialect %q", name)
}

func processFile(path string, d dialect.Dialect, console *diag.Console, dumpTokens, dumpAST bool) bool {
	in, err := source.FromFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return false
	}

	if dumpTokens {
		printTokens(in, d)
	}

	collector := &diag.Collector{}
	p := parser.New(in, d, diag.Tee{collector, console})
	tree, perr := p.ParseSource()
	if perr != nil {
		return false
	}
	for _, dg := range collector.All() {
		if dg.Severity == diag.Error {
			return false
		}
	}

	if dumpAST {
		dumpTree(tree)
	} else {
		fmt.Printf("%s: OK (%d top-level statements)\n", path, len(tree.Stats))
	}
	return true
}

func printTokens(in *source.Input, d dialect.Dialect) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Pos", "Type", "Text"})
	table.SetBorder(false)
	for _, tok := range lexer.Tokenize(in, d) {
		if tok.Type == lexer.TokenWhitespace {
			continue
		}
		text := tok.Literal
		if len(text) > 30 {
			text = text[:27] + "..."
		}
		table.Append([]string{
			fmt.Sprintf("%d:%d", tok.Pos.Line, tok.Pos.Column),
			tok.Type.String(),
			text,
		})
	}
	table.Render()
}

func dumpTree(tree *ast.Source) {
	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, MaxDepth: 32}
	cfg.Fdump(os.Stdout, tree)
}

func runWatch(files []string, d dialect.Dialect, console *diag.Console, dumpTokens, dumpAST bool) {
	w, err := watch.New(".aster", ".ast")
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer w.Close()
	for _, f := range files {
		if err := w.Add(f); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	}
	fmt.Println("watching for changes...")
	for {
		select {
		case ev := <-w.Events():
			fmt.Printf("reparsing %s\n", ev.Path)
			processFile(ev.Path, d, console, dumpTokens, dumpAST)
		case err := <-w.Errors():
			fmt.Fprintln(os.Stderr, "watch error:", err)
		}
	}
}
