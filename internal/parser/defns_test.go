package parser

import (
	"strings"
	"testing"

	"github.com/orizon-lang/aster/internal/ast"
	"github.com/orizon-lang/aster/internal/dialect"
	"github.com/orizon-lang/aster/internal/source"
)

func TestClassDefFull(t *testing.T) {
	src := parseSourceIn(t, dialect.Aster3,
		"class C[T <: Ord[T]](x: T) extends B with M { def f = x }")
	cls, ok := src.Stats[0].(*ast.DefnClass)
	if !ok {
		t.Fatalf("got %T", src.Stats[0])
	}
	if cls.Name.Value != "C" {
		t.Errorf("name: got %s", cls.Name.Value)
	}
	if len(cls.Tparams) != 1 {
		t.Fatalf("tparams: got %d", len(cls.Tparams))
	}
	hi, ok := cls.Tparams[0].Bounds.Hi.(*ast.TypeApply)
	if !ok {
		t.Fatalf("bound: got %T", cls.Tparams[0].Bounds.Hi)
	}
	if name, ok := hi.Tpe.(*ast.TypeName); !ok || name.Value != "Ord" {
		t.Errorf("bound head: got %#v", hi.Tpe)
	}
	if len(cls.Ctor.Paramss) != 1 || len(cls.Ctor.Paramss[0]) != 1 {
		t.Fatal("primary constructor misparsed")
	}
	param := cls.Ctor.Paramss[0][0]
	if param.Name.Value != "x" || len(param.Mods) != 0 {
		t.Error("constructor parameter misparsed")
	}
	if len(cls.Templ.Inits) != 2 {
		t.Fatalf("parents: got %d", len(cls.Templ.Inits))
	}
	if len(cls.Templ.Stats) != 1 {
		t.Fatalf("body stats: got %d", len(cls.Templ.Stats))
	}
	def, ok := cls.Templ.Stats[0].(*ast.DefnDef)
	if !ok {
		t.Fatalf("member: got %T", cls.Templ.Stats[0])
	}
	if termName(t, def.Body) != "x" {
		t.Error("member body misparsed")
	}
}

func TestGivenWithBody(t *testing.T) {
	src := parseSourceIn(t, dialect.Aster3,
		"given intOrd: Ord[Int] with { def compare(a: Int, b: Int) = a - b }")
	given, ok := src.Stats[0].(*ast.DefnGiven)
	if !ok {
		t.Fatalf("got %T", src.Stats[0])
	}
	if given.Name.Value != "intOrd" {
		t.Errorf("name: got %s", given.Name.Value)
	}
	if len(given.Tparams) != 0 || len(given.Sparams) != 0 {
		t.Error("unexpected parameter clauses")
	}
	if len(given.Templ.Inits) != 1 {
		t.Fatal("parent init missing")
	}
	if _, ok := given.Templ.Inits[0].Tpe.(*ast.TypeApply); !ok {
		t.Errorf("parent type: got %T", given.Templ.Inits[0].Tpe)
	}
	def := given.Templ.Stats[0].(*ast.DefnDef)
	if def.Name.Value != "compare" {
		t.Errorf("member: got %s", def.Name.Value)
	}
	body, ok := def.Body.(*ast.TermApplyInfix)
	if !ok || body.Op.Value != "-" {
		t.Errorf("member body: got %#v", def.Body)
	}
}

func TestGivenForms(t *testing.T) {
	alias := parseSourceIn(t, dialect.Aster3, "given ord: Ord[Int] = intOrdering")
	if _, ok := alias.Stats[0].(*ast.DefnGivenAlias); !ok {
		t.Fatalf("alias: got %T", alias.Stats[0])
	}

	anon := parseSourceIn(t, dialect.Aster3, "given Ord[Int] = intOrdering")
	ga := anon.Stats[0].(*ast.DefnGivenAlias)
	if !ga.Name.IsAnonymous() {
		t.Error("expected anonymous given")
	}

	decl := parseSourceIn(t, dialect.Aster3, "given ord: Ord[Int]")
	if _, ok := decl.Stats[0].(*ast.DeclGiven); !ok {
		t.Fatalf("decl: got %T", decl.Stats[0])
	}

	withUsing := parseSourceIn(t, dialect.Aster3, "given listOrd[A](using ord: Ord[A]): Ord[List[A]] = make(ord)")
	lo := withUsing.Stats[0].(*ast.DefnGivenAlias)
	if len(lo.Tparams) != 1 || len(lo.Sparams) != 1 {
		t.Error("given header clauses misparsed")
	}

	err := expectSourceError(t, dialect.Aster3, "given Ord[Int]")
	if !strings.Contains(err.Error(), "anonymous given") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestModifierValidation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "Repeated modifier", input: "final final class C", want: "repeated modifier"},
		{name: "Final abstract", input: "final abstract class C", want: "illegal combination"},
		{name: "Final sealed", input: "final sealed trait T", want: "illegal combination"},
		{name: "Open sealed", input: "open sealed class C", want: "illegal combination"},
		{name: "Open final", input: "open final class C", want: "illegal combination"},
		{name: "Private protected", input: "private protected def f: Int", want: "illegal combination"},
		{name: "Override abstract", input: "override abstract class C", want: "illegal combination"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := expectSourceError(t, dialect.Aster3, tt.input)
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("message: got %v, want substring %q", err, tt.want)
			}
		})
	}
}

func TestCaseClassAndObject(t *testing.T) {
	src := parseSourceIn(t, dialect.Aster3, "case class P(x: Int, y: Int)")
	cls := src.Stats[0].(*ast.DefnClass)
	if _, ok := cls.Mods[0].(*ast.ModCase); !ok {
		t.Errorf("expected case mod, got %T", cls.Mods[0])
	}

	obj := parseSourceIn(t, dialect.Aster3, "case object Empty")
	o := obj.Stats[0].(*ast.DefnObject)
	if _, ok := o.Mods[0].(*ast.ModCase); !ok {
		t.Errorf("expected case mod, got %T", o.Mods[0])
	}
}

func TestValVarForms(t *testing.T) {
	val := parseSourceIn(t, dialect.Aster3, "val (a, b) = pair")
	dv := val.Stats[0].(*ast.DefnVal)
	if _, ok := dv.Pats[0].(*ast.PatTuple); !ok {
		t.Errorf("pattern: got %T", dv.Pats[0])
	}

	decl := parseSourceIn(t, dialect.Aster3, "val x: Int")
	if _, ok := decl.Stats[0].(*ast.DeclVal); !ok {
		t.Fatalf("decl: got %T", decl.Stats[0])
	}

	wildcardInit := parseSourceIn(t, dialect.Aster1, "var cache: Entry = _")
	vr := wildcardInit.Stats[0].(*ast.DefnVar)
	if vr.Rhs != nil {
		t.Error("wildcard initializer should leave Rhs empty")
	}
}

func TestEnumDef(t *testing.T) {
	src := parseSourceIn(t, dialect.Aster3,
		"enum Color { case Red, Green, Blue\ncase Custom(rgb: Int) extends Color }")
	enum, ok := src.Stats[0].(*ast.DefnEnum)
	if !ok {
		t.Fatalf("got %T", src.Stats[0])
	}
	if len(enum.Templ.Stats) != 2 {
		t.Fatalf("enum stats: got %d", len(enum.Templ.Stats))
	}
	rep, ok := enum.Templ.Stats[0].(*ast.DefnRepeatedEnumCase)
	if !ok || len(rep.Cases) != 3 {
		t.Fatalf("repeated case: got %#v", enum.Templ.Stats[0])
	}
	ec, ok := enum.Templ.Stats[1].(*ast.DefnEnumCase)
	if !ok || len(ec.Inits) != 1 {
		t.Fatalf("parameterized case: got %#v", enum.Templ.Stats[1])
	}
}

func TestExtensionGroup(t *testing.T) {
	single := parseSourceIn(t, dialect.Aster3, "extension (x: Int) def squared: Int = x * x")
	ext, ok := single.Stats[0].(*ast.DefnExtensionGroup)
	if !ok {
		t.Fatalf("got %T", single.Stats[0])
	}
	if _, ok := ext.Body.(*ast.DefnDef); !ok {
		t.Errorf("body: got %T", ext.Body)
	}

	group := parseSourceIn(t, dialect.Aster3, "extension (x: Int) { def a = x\ndef b = x }")
	eg := group.Stats[0].(*ast.DefnExtensionGroup)
	block, ok := eg.Body.(*ast.TermBlock)
	if !ok || len(block.Stats) != 2 {
		t.Fatalf("group body: got %#v", eg.Body)
	}
}

func TestImports(t *testing.T) {
	tests := []struct {
		name    string
		dialect dialect.Dialect
		input   string
		check   func(t *testing.T, imp *ast.Import)
	}{
		{
			name:    "Single name",
			dialect: dialect.Aster3,
			input:   "import a.b.C",
			check: func(t *testing.T, imp *ast.Import) {
				if _, ok := imp.Importers[0].Importees[0].(*ast.ImporteeName); !ok {
					t.Errorf("got %T", imp.Importers[0].Importees[0])
				}
			},
		},
		{
			name:    "Wildcard underscore",
			dialect: dialect.Aster2,
			input:   "import a.b._",
			check: func(t *testing.T, imp *ast.Import) {
				if _, ok := imp.Importers[0].Importees[0].(*ast.ImporteeWildcard); !ok {
					t.Errorf("got %T", imp.Importers[0].Importees[0])
				}
			},
		},
		{
			name:    "Wildcard star",
			dialect: dialect.Aster3,
			input:   "import a.b.*",
			check: func(t *testing.T, imp *ast.Import) {
				if _, ok := imp.Importers[0].Importees[0].(*ast.ImporteeWildcard); !ok {
					t.Errorf("got %T", imp.Importers[0].Importees[0])
				}
			},
		},
		{
			name:    "Selector braces",
			dialect: dialect.Aster2,
			input:   "import a.{b, c => d, e => _}",
			check: func(t *testing.T, imp *ast.Import) {
				sels := imp.Importers[0].Importees
				if len(sels) != 3 {
					t.Fatalf("selectors: got %d", len(sels))
				}
				if _, ok := sels[1].(*ast.ImporteeRename); !ok {
					t.Errorf("rename: got %T", sels[1])
				}
				if _, ok := sels[2].(*ast.ImporteeUnimport); !ok {
					t.Errorf("unimport: got %T", sels[2])
				}
			},
		},
		{
			name:    "As rename",
			dialect: dialect.Aster3,
			input:   "import a.b as c",
			check: func(t *testing.T, imp *ast.Import) {
				if _, ok := imp.Importers[0].Importees[0].(*ast.ImporteeRename); !ok {
					t.Errorf("got %T", imp.Importers[0].Importees[0])
				}
			},
		},
		{
			name:    "Given import",
			dialect: dialect.Aster3,
			input:   "import cats.given",
			check: func(t *testing.T, imp *ast.Import) {
				if _, ok := imp.Importers[0].Importees[0].(*ast.ImporteeGivenAll); !ok {
					t.Errorf("got %T", imp.Importers[0].Importees[0])
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := parseSourceIn(t, tt.dialect, tt.input)
			imp, ok := src.Stats[0].(*ast.Import)
			if !ok {
				t.Fatalf("got %T", src.Stats[0])
			}
			tt.check(t, imp)
		})
	}
}

func TestExportClause(t *testing.T) {
	src := parseSourceIn(t, dialect.Aster3, "export impl.*")
	if _, ok := src.Stats[0].(*ast.Export); !ok {
		t.Fatalf("got %T", src.Stats[0])
	}
	expectSourceError(t, dialect.Aster1, "export impl.x")
}

func TestSecondaryCtor(t *testing.T) {
	src := parseSourceIn(t, dialect.Aster3,
		"class C(x: Int) { def this() = { this(0); init() } }")
	cls := src.Stats[0].(*ast.DefnClass)
	ctor, ok := cls.Templ.Stats[0].(*ast.CtorSecondary)
	if !ok {
		t.Fatalf("got %T", cls.Templ.Stats[0])
	}
	if len(ctor.Init.Argss) != 1 {
		t.Error("self invocation misparsed")
	}
	if len(ctor.Stats) != 1 {
		t.Errorf("trailing stats: got %d", len(ctor.Stats))
	}
}

func TestPackageForms(t *testing.T) {
	header := parseSourceIn(t, dialect.Aster3, "package a.b\nclass C\nobject O")
	pkg, ok := header.Stats[0].(*ast.Pkg)
	if !ok {
		t.Fatalf("got %T", header.Stats[0])
	}
	if len(pkg.Stats) != 2 {
		t.Fatalf("package stats: got %d", len(pkg.Stats))
	}

	braced := parseSourceIn(t, dialect.Aster3, "package a { class C }")
	pb := braced.Stats[0].(*ast.Pkg)
	if len(pb.Stats) != 1 {
		t.Fatal("braced package misparsed")
	}

	pkgObj := parseSourceIn(t, dialect.Aster1, "package object util { def f = 1 }")
	if _, ok := pkgObj.Stats[0].(*ast.PkgObject); !ok {
		t.Fatalf("got %T", pkgObj.Stats[0])
	}
}

func TestSelfType(t *testing.T) {
	src := parseSourceIn(t, dialect.Aster3, "trait T { self: Base => def f = self }")
	tr := src.Stats[0].(*ast.DefnTrait)
	if tr.Templ.Self == nil {
		t.Fatal("self type missing")
	}
	if tr.Templ.Self.Name.Value != "self" {
		t.Errorf("self name: got %s", tr.Templ.Self.Name.Value)
	}
	if tr.Templ.Self.Tpe == nil {
		t.Error("self ascription missing")
	}
	if len(tr.Templ.Stats) != 1 {
		t.Errorf("body stats: got %d", len(tr.Templ.Stats))
	}
}

func TestDerivesClause(t *testing.T) {
	src := parseSourceIn(t, dialect.Aster3, "case class P(x: Int) derives Eq, Show")
	cls := src.Stats[0].(*ast.DefnClass)
	if len(cls.Templ.Derives) != 2 {
		t.Fatalf("derives: got %d", len(cls.Templ.Derives))
	}
}

func TestEndMarker(t *testing.T) {
	src := parseSourceIn(t, dialect.Aster3, "object A { def f = 1\nend f }")
	obj := src.Stats[0].(*ast.DefnObject)
	if len(obj.Templ.Stats) != 2 {
		t.Fatalf("stats: got %d", len(obj.Templ.Stats))
	}
	if _, ok := obj.Templ.Stats[1].(*ast.TermEndMarker); !ok {
		t.Errorf("got %T", obj.Templ.Stats[1])
	}
}

func TestColonTemplateBody(t *testing.T) {
	src := parseSourceIn(t, dialect.Aster3, "object A:\n  def f = 1\n  def g = 2\n")
	obj := src.Stats[0].(*ast.DefnObject)
	if len(obj.Templ.Stats) != 2 {
		t.Fatalf("indented body stats: got %d", len(obj.Templ.Stats))
	}
}

func TestTraitParametersGate(t *testing.T) {
	if _, err := New(source.FromString("trait T(x: Int)"), dialect.Aster3, nil).ParseSource(); err != nil {
		t.Errorf("Aster3 trait parameters should parse: %v", err)
	}
	err := expectSourceError(t, dialect.Aster1, "trait T(x: Int)")
	if !strings.Contains(err.Error(), "trait parameters") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestProcedureSyntaxByDialect(t *testing.T) {
	src := parseSourceIn(t, dialect.Aster1, "def run { go() }")
	def := src.Stats[0].(*ast.DefnDef)
	tn, ok := def.Tpe.(*ast.TypeName)
	if !ok || tn.Value != "Unit" {
		t.Errorf("synthesized result type: got %#v", def.Tpe)
	}
	expectSourceError(t, dialect.Aster3, "def run { go() }")
}

func TestAmmonite(t *testing.T) {
	p := New(source.FromString("val x = 1\n@\nval y = 2"), dialect.Aster2, nil)
	multi, err := p.ParseAmmonite()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(multi.Sources) != 2 {
		t.Fatalf("sources: got %d", len(multi.Sources))
	}
	for i, s := range multi.Sources {
		if len(s.Stats) != 1 {
			t.Errorf("source %d stats: got %d", i, len(s.Stats))
		}
	}
}
