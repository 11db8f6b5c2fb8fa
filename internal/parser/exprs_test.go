package parser

import (
	"strings"
	"testing"

	"github.com/orizon-lang/aster/internal/ast"
	"github.com/orizon-lang/aster/internal/dialect"
)

func TestEmptyParamLambda(t *testing.T) {
	term := parseTerm(t, "()  =>  x")
	fn, ok := term.(*ast.TermFunction)
	if !ok {
		t.Fatalf("expected Function, got %T", term)
	}
	if len(fn.Params) != 0 {
		t.Errorf("expected no parameters, got %d", len(fn.Params))
	}
	if termName(t, fn.Body) != "x" {
		t.Errorf("body: got %v", fn.Body)
	}
}

func TestPartialFunctionLiteral(t *testing.T) {
	term := parseTerm(t, "{ case x => x }")
	pf, ok := term.(*ast.TermPartialFunction)
	if !ok {
		t.Fatalf("expected PartialFunction, got %T", term)
	}
	if len(pf.Cases) != 1 {
		t.Fatalf("expected one case, got %d", len(pf.Cases))
	}
	c := pf.Cases[0]
	if _, ok := c.Pat.(*ast.PatVar); !ok {
		t.Errorf("case pattern: expected Var, got %T", c.Pat)
	}
	if c.Cond != nil {
		t.Error("expected no guard")
	}
	if termName(t, c.Body) != "x" {
		t.Errorf("case body: got %v", c.Body)
	}
}

func TestForYield(t *testing.T) {
	term := parseTerm(t, "for (x <- xs if x > 0) yield x")
	fy, ok := term.(*ast.TermForYield)
	if !ok {
		t.Fatalf("expected ForYield, got %T", term)
	}
	if len(fy.Enums) != 2 {
		t.Fatalf("expected two enumerators, got %d", len(fy.Enums))
	}
	gen, ok := fy.Enums[0].(*ast.EnumeratorGenerator)
	if !ok {
		t.Fatalf("first enumerator: expected Generator, got %T", fy.Enums[0])
	}
	if _, ok := gen.Pat.(*ast.PatVar); !ok {
		t.Errorf("generator pattern: expected Var, got %T", gen.Pat)
	}
	if termName(t, gen.Rhs) != "xs" {
		t.Errorf("generator rhs: got %v", gen.Rhs)
	}
	guard, ok := fy.Enums[1].(*ast.EnumeratorGuard)
	if !ok {
		t.Fatalf("second enumerator: expected Guard, got %T", fy.Enums[1])
	}
	cond, ok := guard.Cond.(*ast.TermApplyInfix)
	if !ok {
		t.Fatalf("guard condition: expected ApplyInfix, got %T", guard.Cond)
	}
	if cond.Op.Value != ">" {
		t.Errorf("guard operator: got %s", cond.Op.Value)
	}
	lit, ok := cond.Args[0].(*ast.Lit)
	if !ok || lit.Kind != ast.LitInt || lit.Value.(int32) != 0 {
		t.Errorf("guard literal: got %#v", cond.Args[0])
	}
}

func TestControlForms(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, term ast.Term)
	}{
		{
			name:  "If else",
			input: "if (c) a else b",
			check: func(t *testing.T, term ast.Term) {
				n, ok := term.(*ast.TermIf)
				if !ok {
					t.Fatalf("got %T", term)
				}
				if termName(t, n.Cond) != "c" || termName(t, n.Thenp) != "a" || termName(t, n.Elsep) != "b" {
					t.Error("if parts misparsed")
				}
			},
		},
		{
			name:  "If without else gets unit",
			input: "if (c) a",
			check: func(t *testing.T, term ast.Term) {
				n := term.(*ast.TermIf)
				lit, ok := n.Elsep.(*ast.Lit)
				if !ok || lit.Kind != ast.LitUnit {
					t.Errorf("else branch: got %#v", n.Elsep)
				}
			},
		},
		{
			name:  "While",
			input: "while (c) step()",
			check: func(t *testing.T, term ast.Term) {
				if _, ok := term.(*ast.TermWhile); !ok {
					t.Fatalf("got %T", term)
				}
			},
		},
		{
			name:  "Try catch finally",
			input: "try f() catch { case e => g } finally h()",
			check: func(t *testing.T, term ast.Term) {
				n, ok := term.(*ast.TermTry)
				if !ok {
					t.Fatalf("got %T", term)
				}
				if len(n.Catchp) != 1 || n.Finallyp == nil {
					t.Error("try parts misparsed")
				}
			},
		},
		{
			name:  "Throw",
			input: "throw err",
			check: func(t *testing.T, term ast.Term) {
				if _, ok := term.(*ast.TermThrow); !ok {
					t.Fatalf("got %T", term)
				}
			},
		},
		{
			name:  "Return without operand",
			input: "return",
			check: func(t *testing.T, term ast.Term) {
				n := term.(*ast.TermReturn)
				lit, ok := n.Expr.(*ast.Lit)
				if !ok || lit.Kind != ast.LitUnit {
					t.Errorf("return operand: got %#v", n.Expr)
				}
			},
		},
		{
			name:  "Match",
			input: "x match { case 1 => a case _ => b }",
			check: func(t *testing.T, term ast.Term) {
				n, ok := term.(*ast.TermMatch)
				if !ok {
					t.Fatalf("got %T", term)
				}
				if len(n.Cases) != 2 {
					t.Errorf("expected two cases, got %d", len(n.Cases))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, parseTerm(t, tt.input))
		})
	}
}

func TestDoWhileByDialect(t *testing.T) {
	term := parseTermIn(t, dialect.Aster1, "do step() while (c)")
	if _, ok := term.(*ast.TermDo); !ok {
		t.Fatalf("expected Do, got %T", term)
	}
	err := expectTermError(t, dialect.Aster3, "do step() while (c)")
	if !strings.Contains(err.Error(), "does not support") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestLambdaShapes(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		params int
		typed  bool
	}{
		{name: "Bare name", input: "x => x", params: 1},
		{name: "Parenthesized name", input: "(x) => x", params: 1},
		{name: "Typed param", input: "(x: Int) => x", params: 1, typed: true},
		{name: "Param tuple", input: "(x, y) => x", params: 2},
		{name: "Placeholder param", input: "_ => 1", params: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := parseTerm(t, tt.input)
			fn, ok := term.(*ast.TermFunction)
			if !ok {
				t.Fatalf("expected Function, got %T", term)
			}
			if len(fn.Params) != tt.params {
				t.Fatalf("params: got %d, want %d", len(fn.Params), tt.params)
			}
			if tt.typed && fn.Params[0].Tpe == nil {
				t.Error("expected a typed parameter")
			}
		})
	}
}

func TestImplicitLambda(t *testing.T) {
	term := parseTerm(t, "implicit x => x")
	fn, ok := term.(*ast.TermFunction)
	if !ok {
		t.Fatalf("expected Function, got %T", term)
	}
	if len(fn.Params) != 1 || len(fn.Params[0].Mods) != 1 {
		t.Fatal("expected one implicit parameter")
	}
	if _, ok := fn.Params[0].Mods[0].(*ast.ModImplicit); !ok {
		t.Errorf("expected implicit mod, got %T", fn.Params[0].Mods[0])
	}
}

func TestIllegalFormalParameter(t *testing.T) {
	err := expectTermError(t, dialect.Aster3, "(a + b) => a")
	if !strings.Contains(err.Error(), "not a legal formal parameter") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestPostfixSuffixes(t *testing.T) {
	term := parseTerm(t, "a.b[Int](c).d")
	sel, ok := term.(*ast.TermSelect)
	if !ok {
		t.Fatalf("expected outer Select, got %T", term)
	}
	if sel.Name.Value != "d" {
		t.Errorf("outer selector: got %s", sel.Name.Value)
	}
	apply, ok := sel.Qual.(*ast.TermApply)
	if !ok {
		t.Fatalf("expected Apply under select, got %T", sel.Qual)
	}
	if _, ok := apply.Fun.(*ast.TermApplyType); !ok {
		t.Errorf("expected ApplyType under apply, got %T", apply.Fun)
	}
}

func TestEtaExpansion(t *testing.T) {
	term := parseTerm(t, "f _")
	if _, ok := term.(*ast.TermEta); !ok {
		t.Fatalf("expected Eta, got %T", term)
	}
}

func TestAssignment(t *testing.T) {
	term := parseTerm(t, "x = 1")
	assign, ok := term.(*ast.TermAssign)
	if !ok {
		t.Fatalf("expected Assign, got %T", term)
	}
	if termName(t, assign.Lhs) != "x" {
		t.Error("assign lhs misparsed")
	}
}

func TestAscription(t *testing.T) {
	term := parseTerm(t, "x: Int")
	asc, ok := term.(*ast.TermAscribe)
	if !ok {
		t.Fatalf("expected Ascribe, got %T", term)
	}
	if _, ok := asc.Tpe.(*ast.TypeName); !ok {
		t.Errorf("ascribed type: got %T", asc.Tpe)
	}
}

func TestRepeatedArgument(t *testing.T) {
	term := parseTerm(t, "f(xs: _*)")
	apply, ok := term.(*ast.TermApply)
	if !ok {
		t.Fatalf("expected Apply, got %T", term)
	}
	if _, ok := apply.Args[0].(*ast.TermRepeated); !ok {
		t.Errorf("expected Repeated argument, got %T", apply.Args[0])
	}
	// Outside argument position the splice is rejected.
	expectTermError(t, dialect.Aster3, "xs: _*")
}

func TestInterpolation(t *testing.T) {
	term := parseTerm(t, `s"a $x b"`)
	interp, ok := term.(*ast.TermInterpolate)
	if !ok {
		t.Fatalf("expected Interpolate, got %T", term)
	}
	if interp.Prefix.Value != "s" {
		t.Errorf("prefix: got %s", interp.Prefix.Value)
	}
	if len(interp.Parts) != 2 || len(interp.Args) != 1 {
		t.Fatalf("parts/args: got %d/%d, want 2/1", len(interp.Parts), len(interp.Args))
	}
	if termName(t, interp.Args[0]) != "x" {
		t.Error("splice argument misparsed")
	}
}

func TestMacroQuoteSplice(t *testing.T) {
	quote := parseTerm(t, "'{ x + 1 }")
	q, ok := quote.(*ast.TermQuotedMacro)
	if !ok {
		t.Fatalf("expected QuotedMacro, got %T", quote)
	}
	if _, ok := q.Body.(*ast.TermApplyInfix); !ok {
		t.Errorf("quote body: got %T", q.Body)
	}

	tquote := parseTerm(t, "'[ List[Int] ]")
	tq := tquote.(*ast.TermQuotedMacro)
	if _, ok := tq.Body.(*ast.TypeApply); !ok {
		t.Errorf("type quote body: got %T", tq.Body)
	}

	splice := parseTerm(t, "'{ ${ x } }")
	outer := splice.(*ast.TermQuotedMacro)
	if _, ok := outer.Body.(*ast.TermSplicedMacro); !ok {
		t.Errorf("expected splice inside quote, got %T", outer.Body)
	}
}

func TestNewExpressions(t *testing.T) {
	term := parseTerm(t, "new C(1)")
	n, ok := term.(*ast.TermNew)
	if !ok {
		t.Fatalf("expected New, got %T", term)
	}
	if len(n.Init.Argss) != 1 || len(n.Init.Argss[0]) != 1 {
		t.Error("constructor arguments misparsed")
	}

	anon := parseTerm(t, "new C { def f = 1 }")
	na, ok := anon.(*ast.TermNewAnonymous)
	if !ok {
		t.Fatalf("expected NewAnonymous, got %T", anon)
	}
	if len(na.Templ.Inits) != 1 || len(na.Templ.Stats) != 1 {
		t.Error("anonymous template misparsed")
	}
}

func TestBlockExpr(t *testing.T) {
	term := parseTerm(t, "{ val x = 1; x }")
	block, ok := term.(*ast.TermBlock)
	if !ok {
		t.Fatalf("expected Block, got %T", term)
	}
	if len(block.Stats) != 2 {
		t.Fatalf("expected two statements, got %d", len(block.Stats))
	}
	if _, ok := block.Stats[0].(*ast.DefnVal); !ok {
		t.Errorf("first statement: got %T", block.Stats[0])
	}
}

func TestNumericRangeErrors(t *testing.T) {
	expectTermError(t, dialect.Aster3, "2147483648")
	// The negated boundary value stays in range.
	term := parseTerm(t, "-2147483648")
	lit, ok := term.(*ast.Lit)
	if !ok || lit.Kind != ast.LitInt {
		t.Fatalf("expected Int literal, got %#v", term)
	}
}

func TestApplyUsing(t *testing.T) {
	term := parseTerm(t, "f(using ctx)")
	if _, ok := term.(*ast.TermApplyUsing); !ok {
		t.Fatalf("expected ApplyUsing, got %T", term)
	}
}

func TestSignificantIndentation(t *testing.T) {
	term := parseTerm(t, "if x then y else z")
	n, ok := term.(*ast.TermIf)
	if !ok {
		t.Fatalf("expected If, got %T", term)
	}
	if termName(t, n.Cond) != "x" {
		t.Error("condition misparsed")
	}
}
