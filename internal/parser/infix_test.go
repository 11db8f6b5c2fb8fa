package parser

import (
	"strings"
	"testing"

	"github.com/orizon-lang/aster/internal/ast"
	"github.com/orizon-lang/aster/internal/dialect"
)

func TestOperatorPrecedence(t *testing.T) {
	// The tiers, lowest to highest: letters, |, ^, &, = !, < >, :, + -,
	// * / %, other symbolic.
	ordered := []string{"max", "|", "^", "&", "==", "<", "::", "+", "*", "@@"}
	for i := 1; i < len(ordered); i++ {
		lo, hi := ordered[i-1], ordered[i]
		if operatorPrecedence(lo) >= operatorPrecedence(hi) {
			t.Errorf("precedence(%q)=%d should be below precedence(%q)=%d",
				lo, operatorPrecedence(lo), hi, operatorPrecedence(hi))
		}
	}
	if operatorPrecedence("+=") != 0 {
		t.Errorf("assignment operators take the lowest tier, got %d", operatorPrecedence("+="))
	}
	if operatorPrecedence("!=") == 0 {
		t.Error("!= is a comparison, not an assignment")
	}
}

func TestOperatorAssociativity(t *testing.T) {
	if !isLeftAssoc("+") || !isLeftAssoc("map") {
		t.Error("operators without a trailing colon are left-associative")
	}
	if isLeftAssoc("::") || isLeftAssoc("+:") {
		t.Error("operators with a trailing colon are right-associative")
	}
}

// infixShape renders nested ApplyInfix structure for comparison.
func infixShape(term ast.Term) string {
	switch n := term.(type) {
	case *ast.TermName:
		return n.Value
	case *ast.Lit:
		return "lit"
	case *ast.TermApplyInfix:
		var b strings.Builder
		b.WriteString("(")
		b.WriteString(infixShape(n.Lhs))
		b.WriteString(" ")
		b.WriteString(n.Op.Value)
		b.WriteString(" ")
		for i, a := range n.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(infixShape(a))
		}
		b.WriteString(")")
		return b.String()
	}
	return "?"
}

func TestInfixLaws(t *testing.T) {
	tests := []struct {
		name  string
		input string
		shape string
	}{
		{
			name:  "Left-associative operators parse left to right",
			input: "a + b + c",
			shape: "((a + b) + c)",
		},
		{
			name:  "Right-associative operators parse right to left",
			input: "a :: b :: c",
			shape: "(a :: (b :: c))",
		},
		{
			name:  "Higher precedence binds tighter",
			input: "a + b * c",
			shape: "(a + (b * c))",
		},
		{
			name:  "Lower tier on the outside",
			input: "a + b :: c :: d",
			shape: "((a + b) :: (c :: d))",
		},
		{
			name:  "Alphanumeric operators take the lowest tier",
			input: "a max b + c",
			shape: "(a max (b + c))",
		},
		{
			name:  "Union tier below comparison",
			input: "a | b == c",
			shape: "(a | (b == c))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := parseTerm(t, tt.input)
			if got := infixShape(term); got != tt.shape {
				t.Errorf("shape of %q: got %s, want %s", tt.input, got, tt.shape)
			}
		})
	}
}

func TestMixedAssociativityIsError(t *testing.T) {
	err := expectTermError(t, dialect.Aster3, "a +: b + c")
	if !strings.Contains(err.Error(), "associative") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestInfixTypeArguments(t *testing.T) {
	term := parseTerm(t, "a op[Int] b")
	infix, ok := term.(*ast.TermApplyInfix)
	if !ok {
		t.Fatalf("expected ApplyInfix, got %T", term)
	}
	if len(infix.Targs) != 1 {
		t.Fatalf("expected one type argument, got %d", len(infix.Targs))
	}
}

func TestPostfixOperator(t *testing.T) {
	term := parseTermIn(t, dialect.Aster1, "xs reverse")
	sel, ok := term.(*ast.TermSelect)
	if !ok {
		t.Fatalf("expected Select from postfix chain end, got %T", term)
	}
	if sel.Name.Value != "reverse" {
		t.Errorf("postfix selector: got %s", sel.Name.Value)
	}
}
