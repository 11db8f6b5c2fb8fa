package parser

import (
	"testing"

	"github.com/orizon-lang/aster/internal/ast"
	"github.com/orizon-lang/aster/internal/diag"
	"github.com/orizon-lang/aster/internal/dialect"
	"github.com/orizon-lang/aster/internal/source"
)

// test helpers shared by the parser test files

func parseTermIn(t *testing.T, d dialect.Dialect, input string) ast.Term {
	t.Helper()
	p := New(source.FromString(input), d, nil)
	term, err := p.ParseTerm()
	if err != nil {
		t.Fatalf("parse %q: %v", input, err)
	}
	return term
}

func parseTerm(t *testing.T, input string) ast.Term {
	t.Helper()
	return parseTermIn(t, dialect.Aster3, input)
}

func parseTypeIn(t *testing.T, d dialect.Dialect, input string) ast.Type {
	t.Helper()
	p := New(source.FromString(input), d, nil)
	tpe, err := p.ParseType()
	if err != nil {
		t.Fatalf("parse type %q: %v", input, err)
	}
	return tpe
}

func parsePatIn(t *testing.T, d dialect.Dialect, input string) ast.Pat {
	t.Helper()
	p := New(source.FromString(input), d, nil)
	pat, err := p.ParsePat()
	if err != nil {
		t.Fatalf("parse pattern %q: %v", input, err)
	}
	return pat
}

func parseSourceIn(t *testing.T, d dialect.Dialect, input string) *ast.Source {
	t.Helper()
	p := New(source.FromString(input), d, nil)
	src, err := p.ParseSource()
	if err != nil {
		t.Fatalf("parse source %q: %v", input, err)
	}
	return src
}

func expectTermError(t *testing.T, d dialect.Dialect, input string) error {
	t.Helper()
	p := New(source.FromString(input), d, nil)
	_, err := p.ParseTerm()
	if err == nil {
		t.Fatalf("parse %q: expected error, got none", input)
	}
	return err
}

func expectSourceError(t *testing.T, d dialect.Dialect, input string) error {
	t.Helper()
	p := New(source.FromString(input), d, nil)
	_, err := p.ParseSource()
	if err == nil {
		t.Fatalf("parse %q: expected error, got none", input)
	}
	return err
}

func termName(t *testing.T, term ast.Term) string {
	t.Helper()
	name, ok := term.(*ast.TermName)
	if !ok {
		t.Fatalf("expected TermName, got %T", term)
	}
	return name.Value
}

// TestParserBasic checks that representative inputs parse into the
// expected root node kinds.
func TestParserBasic(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "Value definition", input: "val x = 42"},
		{name: "Method definition", input: "def add(a: Int, b: Int): Int = a + b"},
		{name: "Class definition", input: "class C(x: Int) { def f = x }"},
		{name: "Object definition", input: "object Main { def main(args: Array[String]): Unit = run() }"},
		{name: "Trait with members", input: "trait Show[A] { def show(a: A): String }"},
		{name: "Package header", input: "package a.b\nclass C"},
		{name: "Import", input: "import a.b.{c, d}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(source.FromString(tt.input), dialect.Aster3, nil)
			src, err := p.ParseSource()
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			if src == nil || len(src.Stats) == 0 {
				t.Fatal("expected at least one top-level statement")
			}
		})
	}
}

// TestParserWarnings checks that deprecation warnings land in the sink
// without failing the parse.
func TestParserWarnings(t *testing.T) {
	collector := &diag.Collector{}
	p := New(source.FromString("def f { g() }"), dialect.Aster1, collector)
	if _, err := p.ParseSource(); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	var warned bool
	for _, d := range collector.All() {
		if d.Severity == diag.Warning {
			warned = true
		}
	}
	if !warned {
		t.Error("expected a deprecation warning for procedure syntax")
	}
}

// TestParserFailFast checks that errors abort the entry point with no
// partial tree.
func TestParserFailFast(t *testing.T) {
	p := New(source.FromString("class 42"), dialect.Aster3, nil)
	src, err := p.ParseSource()
	if err == nil {
		t.Fatal("expected parse error")
	}
	if src != nil {
		t.Error("expected no tree on failure")
	}
}
