package parser

import (
	"strings"

	"github.com/orizon-lang/aster/internal/ast"
)

// The infix engine: a precedence/associativity stack machine shared between
// expression and pattern parsing. Operator precedence derives from the
// first character of the operator's name; associativity from its last
// (trailing ':' means right-associative).

// operatorPrecedence returns the precedence tier of op, higher binds
// tighter. Assignment operators sit below everything; alphanumeric
// operators just above them.
func operatorPrecedence(op string) int {
	if op == "" {
		return 0
	}
	if isAssignmentOp(op) {
		return 0
	}
	first := rune(op[0])
	switch {
	case first == '|':
		return 2
	case first == '^':
		return 3
	case first == '&':
		return 4
	case first == '=' || first == '!':
		return 5
	case first == '<' || first == '>':
		return 6
	case first == ':':
		return 7
	case first == '+' || first == '-':
		return 8
	case first == '*' || first == '/' || first == '%':
		return 9
	case isLetterish(first):
		return 1
	default:
		return 10
	}
}

func isLetterish(r rune) bool {
	return r == '_' || r == '$' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 0x7f && !isSymbolicRune(r)
}

func isSymbolicRune(r rune) bool {
	switch r {
	case '!', '#', '%', '&', '*', '+', '-', '/', ':', '<', '=', '>', '?', '@', '\\', '^', '|', '~':
		return true
	}
	return false
}

// isAssignmentOp reports whether op is an assignment operator: ends with
// '=', does not start with '=', and is not a comparison.
func isAssignmentOp(op string) bool {
	if !strings.HasSuffix(op, "=") || len(op) == 1 {
		return false
	}
	switch op {
	case "<=", ">=", "!=", "==":
		return false
	}
	return op[0] != '='
}

// isLeftAssoc reports whether op associates to the left. Operators ending
// in ':' are right-associative.
func isLeftAssoc(op string) bool {
	return !strings.HasSuffix(op, ":")
}

// unfinishedInfix is one pending frame of the stack machine: a left operand
// waiting for its right-hand side.
type unfinishedInfix struct {
	lhsStart int // raw token index where the lhs begins
	lhs      any
	lhsEnd   int // raw token index of the last lhs token
	op       *ast.TermName
	targs    []ast.Type
}

// infixContext abstracts the two concrete reducers (terms and patterns)
// over a common stack discipline.
type infixContext interface {
	// finish merges one frame with its right-hand side, producing the new
	// accumulated operand.
	finish(p *Parser, uf unfinishedInfix, rhs any, rhsEnd int) any
}

// termInfixContext reduces to ApplyInfix nodes.
type termInfixContext struct{}

func (termInfixContext) finish(p *Parser, uf unfinishedInfix, rhs any, rhsEnd int) any {
	var args []ast.Term
	switch r := rhs.(type) {
	case []ast.Term:
		args = r
	case ast.Term:
		args = []ast.Term{r}
	}
	node := &ast.TermApplyInfix{
		Lhs:   uf.lhs.(ast.Term),
		Op:    uf.op,
		Targs: uf.targs,
		Args:  args,
	}
	return ast.Term(atPos(p, uf.lhsStart, rhsEnd, node))
}

// patInfixContext reduces to ExtractInfix nodes; tuple right-hand sides
// splat into the argument list.
type patInfixContext struct{}

func (patInfixContext) finish(p *Parser, uf unfinishedInfix, rhs any, rhsEnd int) any {
	var args []ast.Pat
	switch r := rhs.(type) {
	case *ast.PatTuple:
		args = r.Args
	case ast.Pat:
		args = []ast.Pat{r}
	}
	node := &ast.PatExtractInfix{
		Lhs: uf.lhs.(ast.Pat),
		Op:  uf.op,
		Rhs: args,
	}
	return ast.Pat(atPos(p, uf.lhsStart, rhsEnd, node))
}

// reduceStack pops frames above base whose operator dominates incomingOp
// (strictly higher precedence, or equal and left-associative) and finishes
// each with the accumulating right-hand side. An empty incomingOp reduces
// everything above base. Mixing associativities at one precedence tier is a
// hard error.
func (p *Parser) reduceStack(ctx infixContext, stack *[]unfinishedInfix, base int, curr any, currEnd int, incomingOp string) any {
	inPrec := operatorPrecedence(incomingOp)
	for len(*stack) > base {
		top := (*stack)[len(*stack)-1]
		topPrec := operatorPrecedence(top.op.Value)
		if incomingOp != "" && topPrec == inPrec &&
			isLeftAssoc(top.op.Value) != isLeftAssoc(incomingOp) {
			p.syntaxError("left- and right-associative operators with same precedence may not be mixed", p.cur())
		}
		dominates := incomingOp == "" || topPrec > inPrec || (topPrec == inPrec && isLeftAssoc(incomingOp))
		if !dominates {
			break
		}
		*stack = (*stack)[:len(*stack)-1]
		curr = ctx.finish(p, top, curr, currEnd)
	}
	return curr
}
