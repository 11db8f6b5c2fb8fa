package parser

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/orizon-lang/aster/internal/ast"
	"github.com/orizon-lang/aster/internal/dialect"
	"github.com/orizon-lang/aster/internal/source"
)

func TestEntryPointFamilies(t *testing.T) {
	type run func() (ast.Tree, error)
	mk := func(input string, d dialect.Dialect) *Parser {
		return New(source.FromString(input), d, nil)
	}

	tests := []struct {
		name string
		run  run
	}{
		{"Source", func() (ast.Tree, error) { return mk("class C", dialect.Aster3).ParseSource() }},
		{"Stat", func() (ast.Tree, error) { return mk("val x = 1", dialect.Aster3).ParseStat() }},
		{"Term", func() (ast.Tree, error) { return mk("a + b", dialect.Aster3).ParseTerm() }},
		{"Type", func() (ast.Tree, error) { return mk("List[Int]", dialect.Aster3).ParseType() }},
		{"Pat", func() (ast.Tree, error) { return mk("Some(x)", dialect.Aster3).ParsePat() }},
		{"Case", func() (ast.Tree, error) { return mk("case x => x", dialect.Aster3).ParseCase() }},
		{"Ctor", func() (ast.Tree, error) { return mk("def this() = this(0)", dialect.Aster3).ParseCtor() }},
		{"Init", func() (ast.Tree, error) { return mk("B(1)", dialect.Aster3).ParseInit() }},
		{"Self", func() (ast.Tree, error) { return mk("self: T =>", dialect.Aster3).ParseSelf() }},
		{"Template", func() (ast.Tree, error) { return mk("B with M { def f = 1 }", dialect.Aster1).ParseTemplate() }},
		{"Mod", func() (ast.Tree, error) { return mk("final", dialect.Aster3).ParseMod() }},
		{"Enumerator", func() (ast.Tree, error) { return mk("x <- xs", dialect.Aster3).ParseEnumerator() }},
		{"Importer", func() (ast.Tree, error) { return mk("a.b.C", dialect.Aster3).ParseImporter() }},
		{"Importee", func() (ast.Tree, error) { return mk("x => y", dialect.Aster2).ParseImportee() }},
		{"TermParam", func() (ast.Tree, error) { return mk("x: Int = 1", dialect.Aster3).ParseTermParam() }},
		{"TypeParam", func() (ast.Tree, error) { return mk("A <: B", dialect.Aster3).ParseTypeParam() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := tt.run()
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			if tree == nil {
				t.Fatal("expected a tree")
			}
		})
	}
}

func TestEntryPointRejectsTrailingInput(t *testing.T) {
	p := New(source.FromString("a b c ]"), dialect.Aster3, nil)
	if _, err := p.ParseTerm(); err == nil {
		t.Fatal("expected error for trailing input")
	}
}

func TestUnquoteEntryPoints(t *testing.T) {
	d := dialect.Aster3.WithUnquotes()
	p := New(source.FromString("f($x)"), d, nil)
	term, err := p.ParseUnquoteTerm()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	apply := term.(*ast.TermApply)
	quasi, ok := apply.Args[0].(*ast.Quasi)
	if !ok {
		t.Fatalf("expected Quasi argument, got %T", apply.Args[0])
	}
	if quasi.Body != "x" || quasi.Rank != 0 {
		t.Errorf("quasi: got %+v", quasi)
	}

	pp := New(source.FromString("Some($x)"), d.WithQuasiPatterns(), nil)
	pat, err := pp.ParseUnquotePat()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	ex := pat.(*ast.PatExtract)
	if _, ok := ex.Args[0].(*ast.Quasi); !ok {
		t.Errorf("expected Quasi pattern, got %T", ex.Args[0])
	}

	// Ellipsis holes carry their rank.
	p3 := New(source.FromString("f(..$xs)"), d, nil)
	term3, err := p3.ParseUnquoteTerm()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	q3 := term3.(*ast.TermApply).Args[0].(*ast.Quasi)
	if q3.Rank != 2 {
		t.Errorf("rank: got %d, want 2", q3.Rank)
	}

	// Without the dialect flag the same input is rejected.
	plain := New(source.FromString("f($x)"), dialect.Aster3, nil)
	if _, err := plain.ParseUnquoteTerm(); err == nil {
		t.Fatal("expected error without unquote dialect")
	}
}

// TestOriginInvariants checks the universal span invariants on a corpus of
// accepted inputs: ordered endpoints and child containment.
func TestOriginInvariants(t *testing.T) {
	inputs := []string{
		"class C[T <: Ord[T]](x: T) extends B with M { def f = x }",
		"val x = a + b * c",
		"for (x <- xs if x > 0) yield x",
		"def f(a: Int)(using b: Ctx): Int = a",
		"x match { case Some(v) if v > 0 => v case _ => 0 }",
		`s"hello $name"`,
		"enum E { case A, B }",
	}
	for _, input := range inputs {
		src := parseSourceIn(t, dialect.Aster3, input)
		tokenCount := len(New(source.FromString(input), dialect.Aster3, nil).in.Tokens())
		ast.Walk(src, func(node ast.Tree) bool {
			o := node.Origin()
			if o.StartToken > o.EndToken {
				t.Errorf("%q: node %T has inverted token range [%d,%d)", input, node, o.StartToken, o.EndToken)
			}
			if o.StartToken < 0 || o.EndToken > tokenCount {
				t.Errorf("%q: node %T range out of bounds", input, node)
			}
			if o.Span.Start.Offset > o.Span.End.Offset {
				t.Errorf("%q: node %T has inverted span", input, node)
			}
			parentSpan := o.Span
			for _, child := range ast.Children(node) {
				co := child.Origin()
				if co.Span.Start.Offset == co.Span.End.Offset {
					continue // synthesized zero-width names sit at the cursor
				}
				if co.Span.Start.Offset < parentSpan.Start.Offset || co.Span.End.Offset > parentSpan.End.Offset {
					t.Errorf("%q: child %T span %v escapes parent %T span %v",
						input, child, co.Span, node, parentSpan)
				}
			}
			return true
		})
	}
}

// TestSpanTrimming checks that trivia around a node is excluded from its
// span.
func TestSpanTrimming(t *testing.T) {
	term := parseTerm(t, "  x  ")
	sp := term.Span()
	if sp.Start.Offset != 2 || sp.End.Offset != 3 {
		t.Errorf("trimmed span: got [%d,%d), want [2,3)", sp.Start.Offset, sp.End.Offset)
	}
}

// TestDialectMonotonicity checks that inputs accepted by a smaller dialect
// are accepted with the same shape by a strictly larger one, for inputs
// whose meaning is dialect-stable.
func TestDialectMonotonicity(t *testing.T) {
	if !dialect.Aster2.Extends(dialect.Aster1) {
		t.Fatal("Aster2 should extend Aster1")
	}
	inputs := []string{
		"val x = a + b",
		"class C(x: Int) { def f = x }",
		"import a.b.{c, d}",
		"val y = x match { case 1 => a case _ => b }",
	}
	for _, input := range inputs {
		small := parseSourceIn(t, dialect.Aster1, input)
		large := parseSourceIn(t, dialect.Aster2, input)
		if diff := cmp.Diff(shapeOf(small), shapeOf(large)); diff != "" {
			t.Errorf("%q: shape differs between dialects (-Aster1 +Aster2):\n%s", input, diff)
		}
	}
}

// shapeOf flattens a tree into its node-kind preorder, ignoring origins.
func shapeOf(tree ast.Tree) []string {
	var out []string
	ast.Walk(tree, func(node ast.Tree) bool {
		out = append(out, nodeKind(node))
		return true
	})
	return out
}

func nodeKind(node ast.Tree) string {
	return fmt.Sprintf("%T", node)
}
