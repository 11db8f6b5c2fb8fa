package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/orizon-lang/aster/internal/ast"
	"github.com/orizon-lang/aster/internal/lexer"
)

// Expression grammar. The central driver is expr(location, allowRepeated);
// the postfix/infix chain runs on the shared infix engine.

// expr parses a full expression at the given statement location.
func (p *Parser) expr(loc Location, allowRepeated bool) ast.Term {
	start := p.start()
	switch p.curType() {
	case lexer.TokenIf:
		return p.ifExpr(start)
	case lexer.TokenWhile:
		return p.whileExpr(start)
	case lexer.TokenDo:
		return p.doWhileExpr(start)
	case lexer.TokenTry:
		return p.tryExpr(start)
	case lexer.TokenThrow:
		p.next()
		body := p.expr(NoStat, false)
		return done(p, start, &ast.TermThrow{Expr: body})
	case lexer.TokenReturn:
		p.next()
		var body ast.Term
		if p.isExprIntro(p.cur()) {
			body = p.expr(NoStat, false)
		} else {
			body = done(p, start, &ast.Lit{Kind: ast.LitUnit})
		}
		return done(p, start, &ast.TermReturn{Expr: body})
	case lexer.TokenFor:
		return p.forExpr(start)
	case lexer.TokenImplicit:
		return p.implicitLambda(start, loc)
	}
	return p.exprRest(start, loc, allowRepeated)
}

// exprRest continues after the control-form dispatch: postfix/infix chain,
// assignment, ascription, match suffix, and lambda disambiguation.
func (p *Parser) exprRest(start int, loc Location, allowRepeated bool) ast.Term {
	t := p.postfixExpr(loc, allowRepeated)

	switch p.curType() {
	case lexer.TokenEq:
		switch t.(type) {
		case *ast.TermName, *ast.TermSelect, *ast.TermApply:
			p.next()
			rhs := p.expr(loc, false)
			return done(p, start, &ast.TermAssign{Lhs: t, Rhs: rhs})
		}

	case lexer.TokenColon:
		p.next()
		switch {
		case p.at(lexer.TokenAt):
			annots := p.annots(false)
			t = done(p, start, &ast.TermAnnotate{Expr: t, Annots: annots})
		case p.at(lexer.TokenUnderscore) && isRawStar(ahead(p, func() lexer.Token { return p.cur() })):
			p.next() // _
			p.next() // *
			if !allowRepeated {
				p.syntaxError("repeated argument not allowed here", p.in.Previous())
			}
			t = done(p, start, &ast.TermRepeated{Expr: t})
		case p.in.ObserveIndented():
			// colon-EOL opens an indented argument block (fewer braces)
			if !p.dialect.AllowFewerBraces {
				p.syntaxError(p.dialect.Name+" does not support colon argument blocks", p.cur())
			}
			arg := p.indentedExprBlock()
			t = done(p, start, &ast.TermApply{Fun: t, Args: []ast.Term{arg}})
		default:
			var tpe ast.Type
			if loc == NoStat {
				tpe = p.typ()
			} else {
				tpe = p.infixType()
			}
			t = done(p, start, &ast.TermAscribe{Expr: t, Tpe: tpe})
		}
	}

	if p.at(lexer.TokenMatch) {
		p.next()
		cases := p.caseBlock()
		t = done(p, start, &ast.TermMatch{Expr: t, Cases: cases})
	}

	if p.at(lexer.TokenFatArrow) || p.at(lexer.TokenCtxArrow) {
		isCtx := p.at(lexer.TokenCtxArrow)
		if loc == TemplateStat {
			// Self-type annotations are resolved by the template parser
			// before expression parsing gets here; reaching an arrow in
			// template position means a lambda was written where a
			// statement is expected.
			p.syntaxError("self-type annotation may not be in infix position", p.cur())
		}
		params := p.convertToParams(t)
		p.next()
		var body ast.Term
		if loc == BlockStat {
			body = p.lambdaBlockBody()
		} else {
			body = p.expr(NoStat, false)
		}
		if isCtx {
			return done(p, start, &ast.TermContextFunction{Params: params, Body: body})
		}
		return done(p, start, &ast.TermFunction{Params: params, Body: body})
	}

	return t
}

// lambdaBlockBody parses the rest of the enclosing block as the body of a
// lambda whose arrow was just consumed.
func (p *Parser) lambdaBlockBody() ast.Term {
	start := p.start()
	if p.in.ObserveIndented() {
		return p.indentedExprBlock()
	}
	stats := p.blockStatSeq()
	if len(stats) == 1 {
		if t, isTerm := stats[0].(ast.Term); isTerm {
			return t
		}
	}
	return done(p, start, &ast.TermBlock{Stats: stats})
}

// indentedExprBlock parses an indented statement block opened by a virtual
// Indent token.
func (p *Parser) indentedExprBlock() ast.Term {
	start := p.start()
	p.accept(lexer.TokenIndent)
	stats := p.blockStatSeq()
	p.in.ObserveOutdented()
	p.accept(lexer.TokenOutdent)
	if len(stats) == 1 {
		if t, isTerm := stats[0].(ast.Term); isTerm {
			return t
		}
	}
	return done(p, start, &ast.TermBlock{Stats: stats})
}

// convertToParams rewrites a lambda's left-hand side into its parameter
// list. The legal shapes: (), x, (x), x: T, (x: T), tuples of parameters,
// the placeholder _ and quasiquote holes.
func (p *Parser) convertToParams(t ast.Term) []*ast.TermParam {
	switch n := t.(type) {
	case *ast.Lit:
		if n.Kind == ast.LitUnit {
			return nil
		}
	case *ast.TermName:
		name := &ast.Name{Value: n.Value}
		name.SetOrigin(n.Origin())
		param := &ast.TermParam{Name: name}
		param.SetOrigin(n.Origin())
		return []*ast.TermParam{param}
	case *ast.TermPlaceholder:
		name := &ast.Name{}
		name.SetOrigin(n.Origin())
		param := &ast.TermParam{Name: name}
		param.SetOrigin(n.Origin())
		return []*ast.TermParam{param}
	case *ast.TermAscribe:
		inner := p.convertToParams(n.Expr)
		if len(inner) == 1 && inner[0].Tpe == nil {
			param := &ast.TermParam{Mods: inner[0].Mods, Name: inner[0].Name, Tpe: n.Tpe}
			param.SetOrigin(n.Origin())
			return []*ast.TermParam{param}
		}
	case *ast.TermTuple:
		var params []*ast.TermParam
		for _, arg := range n.Args {
			sub := p.convertToParams(arg)
			if len(sub) != 1 {
				p.syntaxError("not a legal formal parameter", p.cur())
			}
			params = append(params, sub[0])
		}
		return params
	case *ast.Quasi:
		param := &ast.TermParam{Name: &ast.Name{}}
		param.SetOrigin(n.Origin())
		return []*ast.TermParam{param}
	}
	p.syntaxError("not a legal formal parameter", p.cur())
	return nil
}

// implicitLambda parses `implicit x => body`.
func (p *Parser) implicitLambda(start int, loc Location) ast.Term {
	p.accept(lexer.TokenImplicit)
	modStart := p.in.PreviousIndex()
	mod := atPos(p, modStart, modStart, &ast.ModImplicit{})

	paramStart := p.start()
	var name *ast.Name
	switch {
	case p.cur().IsIdent():
		tok := p.cur()
		p.next()
		name = done(p, paramStart, &ast.Name{Value: identValue(tok)})
	case p.at(lexer.TokenUnderscore):
		p.next()
		name = done(p, paramStart, &ast.Name{})
	default:
		p.syntaxErrorExpected(lexer.TokenIdent)
	}
	var tpe ast.Type
	if p.acceptOpt(lexer.TokenColon) {
		tpe = p.infixType()
	}
	param := done(p, paramStart, &ast.TermParam{Mods: []ast.Mod{mod}, Name: name, Tpe: tpe})
	p.accept(lexer.TokenFatArrow)
	var body ast.Term
	if loc == BlockStat {
		body = p.lambdaBlockBody()
	} else {
		body = p.expr(NoStat, false)
	}
	return done(p, start, &ast.TermFunction{Params: []*ast.TermParam{param}, Body: body})
}

// ---- control forms ----

func (p *Parser) ifExpr(start int) ast.Term {
	p.accept(lexer.TokenIf)
	var cond ast.Term
	bracedCond := p.at(lexer.TokenLParen)
	if bracedCond {
		p.accept(lexer.TokenLParen)
		cond = p.expr(NoStat, false)
		p.accept(lexer.TokenRParen)
	} else {
		if !p.dialect.AllowSignificantIndentation {
			p.syntaxErrorExpected(lexer.TokenLParen)
		}
		cond = p.expr(NoStat, false)
		p.accept(lexer.TokenThen)
	}
	thenp := p.exprOrIndentedBlock()
	var elsep ast.Term
	p.newlineOptWhenFollowing(lexer.TokenElse)
	p.acceptOpt(lexer.TokenSemicolon)
	if p.acceptOpt(lexer.TokenElse) {
		elsep = p.exprOrIndentedBlock()
	} else {
		elsep = done(p, start, &ast.Lit{Kind: ast.LitUnit})
	}
	return done(p, start, &ast.TermIf{Cond: cond, Thenp: thenp, Elsep: elsep})
}

// exprOrIndentedBlock parses an expression, entering an indented block if
// the line ends first. Without significant indentation the line ends are
// plain continuation whitespace.
func (p *Parser) exprOrIndentedBlock() ast.Term {
	if p.in.ObserveIndented() {
		return p.indentedExprBlock()
	}
	p.newlinesOpt()
	return p.expr(NoStat, false)
}

func (p *Parser) whileExpr(start int) ast.Term {
	p.accept(lexer.TokenWhile)
	var cond ast.Term
	if p.at(lexer.TokenLParen) {
		p.accept(lexer.TokenLParen)
		cond = p.expr(NoStat, false)
		p.accept(lexer.TokenRParen)
	} else {
		if !p.dialect.AllowSignificantIndentation {
			p.syntaxErrorExpected(lexer.TokenLParen)
		}
		cond = p.expr(NoStat, false)
		p.accept(lexer.TokenDo)
	}
	body := p.exprOrIndentedBlock()
	return done(p, start, &ast.TermWhile{Cond: cond, Body: body})
}

func (p *Parser) doWhileExpr(start int) ast.Term {
	if !p.dialect.AllowDoWhile {
		p.syntaxError(p.dialect.Name+" does not support do-while loops", p.cur())
	}
	p.accept(lexer.TokenDo)
	body := p.expr(NoStat, false)
	p.acceptStatSepOpt()
	p.accept(lexer.TokenWhile)
	p.accept(lexer.TokenLParen)
	cond := p.expr(NoStat, false)
	p.accept(lexer.TokenRParen)
	return done(p, start, &ast.TermDo{Body: body, Cond: cond})
}

func (p *Parser) tryExpr(start int) ast.Term {
	p.accept(lexer.TokenTry)
	var body ast.Term
	if p.at(lexer.TokenLBrace) {
		body = p.blockExpr()
	} else if p.in.ObserveIndented() {
		body = p.indentedExprBlock()
	} else {
		body = p.expr(NoStat, false)
	}

	var catchCases []*ast.Case
	var handler ast.Term
	p.newlineOptWhenFollowing(lexer.TokenCatch)
	if p.acceptOpt(lexer.TokenCatch) {
		if p.at(lexer.TokenLBrace) || p.at(lexer.TokenCase) || p.in.Current().IsLineEnd() {
			catchCases = p.caseBlock()
		} else {
			if !p.dialect.AllowTryWithAnyExpr {
				p.syntaxError(p.dialect.Name+" does not support try with an expression handler", p.cur())
			}
			handler = p.expr(NoStat, false)
		}
	}

	var finallyp ast.Term
	p.newlineOptWhenFollowing(lexer.TokenFinally)
	if p.acceptOpt(lexer.TokenFinally) {
		finallyp = p.exprOrIndentedBlock()
	}

	if handler != nil {
		return done(p, start, &ast.TermTryWithHandler{Expr: body, Catchp: handler, Finallyp: finallyp})
	}
	return done(p, start, &ast.TermTry{Expr: body, Catchp: catchCases, Finallyp: finallyp})
}

func (p *Parser) forExpr(start int) ast.Term {
	p.accept(lexer.TokenFor)
	var enums []ast.Enumerator
	switch {
	case p.at(lexer.TokenLParen):
		p.accept(lexer.TokenLParen)
		enums = p.enumerators()
		p.accept(lexer.TokenRParen)
	case p.at(lexer.TokenLBrace):
		p.accept(lexer.TokenLBrace)
		p.newlinesOpt()
		enums = p.enumerators()
		p.newlinesOpt()
		p.accept(lexer.TokenRBrace)
	default:
		if !p.dialect.AllowSignificantIndentation {
			p.syntaxErrorExpected(lexer.TokenLParen)
		}
		if p.in.ObserveIndented() {
			p.accept(lexer.TokenIndent)
			enums = p.enumerators()
			p.in.ObserveOutdented()
			p.accept(lexer.TokenOutdent)
		} else {
			enums = p.enumerators()
		}
	}
	p.newlineOptWhenFollowedBy(func(t lexer.Token) bool {
		return t.Type == lexer.TokenYield || t.Type == lexer.TokenDo || p.isExprIntro(t)
	})
	if p.acceptOpt(lexer.TokenYield) {
		body := p.exprOrIndentedBlock()
		return done(p, start, &ast.TermForYield{Enums: enums, Body: body})
	}
	if p.at(lexer.TokenDo) && p.dialect.AllowSignificantIndentation {
		p.next()
	}
	body := p.exprOrIndentedBlock()
	return done(p, start, &ast.TermFor{Enums: enums, Body: body})
}

// enumerators parses the clause list of a for comprehension: the leading
// generator followed by guards, value bindings and further generators.
func (p *Parser) enumerators() []ast.Enumerator {
	var enums []ast.Enumerator
	enums = append(enums, p.generator(true))
	for {
		for p.isStatSep() {
			p.next()
		}
		switch {
		case p.at(lexer.TokenIf):
			start := p.start()
			p.next()
			cond := p.postfixExprTerm(NoStat)
			enums = append(enums, done(p, start, &ast.EnumeratorGuard{Cond: cond}))
		case p.at(lexer.TokenRParen), p.at(lexer.TokenRBrace), p.at(lexer.TokenYield),
			p.at(lexer.TokenDo), p.at(lexer.TokenEOF), p.at(lexer.TokenOutdent):
			return enums
		case p.in.Current().IsLineEnd():
			return enums
		default:
			enums = append(enums, p.generator(false))
		}
	}
}

// generator parses `pat <- rhs`, `case pat <- rhs`, or `pat = rhs`.
func (p *Parser) generator(first bool) ast.Enumerator {
	start := p.start()
	isCase := false
	if p.at(lexer.TokenCase) {
		isCase = true
		p.next()
	}
	if p.at(lexer.TokenVal) {
		p.deprecationWarning("val keyword in for comprehension is deprecated", p.cur())
		p.next()
	}
	pat := p.pattern1(InPatternNoSeq)
	switch {
	case p.at(lexer.TokenLeftArrow):
		p.next()
		rhs := p.expr(NoStat, false)
		if isCase {
			return done(p, start, &ast.EnumeratorCaseGenerator{Pat: pat, Rhs: rhs})
		}
		return done(p, start, &ast.EnumeratorGenerator{Pat: pat, Rhs: rhs})
	case p.at(lexer.TokenEq):
		if first {
			p.syntaxError("for comprehension must start with a generator", p.cur())
		}
		p.next()
		rhs := p.expr(NoStat, false)
		return done(p, start, &ast.EnumeratorVal{Pat: pat, Rhs: rhs})
	}
	p.syntaxErrorExpected(lexer.TokenLeftArrow)
	return nil
}

// ---- postfix / infix / prefix / simple ----

// postfixExprTerm is postfixExpr reduced to a single term.
func (p *Parser) postfixExprTerm(loc Location) ast.Term {
	return p.postfixExpr(loc, false)
}

// postfixExpr parses a prefix expression followed by the operator chain,
// reduced with the term infix engine.
func (p *Parser) postfixExpr(loc Location, allowRepeated bool) ast.Term {
	ctx := termInfixContext{}
	var stack []unfinishedInfix
	start := p.start()

	var curr any = p.prefixExpr(allowRepeated)
	currEnd := p.in.PreviousIndex()

	for {
		tok := p.cur()

		// Leading infix: under significant indentation a symbolic operator
		// opening a continuation line extends the chain.
		if tok.Type == lexer.TokenLF && p.dialect.AllowSignificantIndentation {
			leads := ahead(p, func() bool {
				t := p.cur()
				return t.Type == lexer.TokenOpIdent &&
					ahead(p, func() bool { return p.isExprIntro(p.cur()) })
			})
			if leads {
				p.next()
				continue
			}
		}

		// `match` participating as an operator.
		if tok.Type == lexer.TokenMatch && p.dialect.AllowMatchAsOperator {
			reduced := p.reduceStack(ctx, &stack, 0, curr, currEnd, "match")
			p.next()
			cases := p.caseBlock()
			lhs := asTerm(reduced)
			m := atPos(p, lhsStartOf(stack, start, lhs), p.in.PreviousIndex(), &ast.TermMatch{Expr: lhs, Cases: cases})
			curr = ast.Term(m)
			currEnd = p.in.PreviousIndex()
			continue
		}

		if !tok.IsIdent() {
			break
		}
		opText := identValue(tok)

		curr = p.reduceStack(ctx, &stack, 0, curr, currEnd, opText)
		opStart := p.start()
		p.next()
		op := done(p, opStart, &ast.TermName{Value: opText})

		var targs []ast.Type
		if p.at(lexer.TokenLBracket) {
			targs = p.typeArgs()
		}

		p.newlineOptWhenFollowedBy(func(t lexer.Token) bool { return p.isExprIntro(t) })
		if !p.isExprIntro(p.cur()) {
			// Chain terminates as a postfix selection: t op.
			if len(targs) > 0 {
				p.syntaxError("type application is not allowed for postfix operators", p.cur())
			}
			if !p.dialect.AllowPostfixOperators {
				p.syntaxError(p.dialect.Name+" does not support postfix operator notation", p.in.Previous())
			}
			lhs := asTerm(curr)
			sel := atPos(p, lhsStartOf(stack, start, lhs), p.in.PreviousIndex(), &ast.TermSelect{Qual: lhs, Name: op})
			curr = ast.Term(sel)
			currEnd = p.in.PreviousIndex()
			break
		}

		stack = append(stack, unfinishedInfix{
			lhsStart: lhsStartOf(stack, start, asTerm(curr)),
			lhs:      asTerm(curr),
			lhsEnd:   currEnd,
			op:       op,
			targs:    targs,
		})
		curr = p.argumentExprsOrPrefixExpr()
		currEnd = p.in.PreviousIndex()
	}

	res := p.reduceStack(ctx, &stack, 0, curr, currEnd, "")
	return asTerm(res)
}

func asTerm(v any) ast.Term {
	switch t := v.(type) {
	case ast.Term:
		return t
	case []ast.Term:
		if len(t) == 1 {
			return t[0]
		}
		if len(t) == 0 {
			return nil
		}
		// Multiple values only arise from argument lists; the tuple shape
		// is already positioned.
		return t[0]
	}
	return nil
}

// lhsStartOf returns where the accumulated left operand begins.
func lhsStartOf(stack []unfinishedInfix, chainStart int, lhs ast.Term) int {
	if len(stack) == 0 {
		return chainStart
	}
	if lhs != nil {
		return lhs.Origin().StartToken
	}
	return chainStart
}

// argumentExprsOrPrefixExpr parses the right-hand side of an infix
// operator: a parenthesized or braced argument list, or a prefix
// expression.
func (p *Parser) argumentExprsOrPrefixExpr() any {
	switch p.curType() {
	case lexer.TokenLParen:
		return p.argumentExprs()
	case lexer.TokenLBrace:
		return []ast.Term{p.blockExpr()}
	}
	t := p.prefixExpr(false)
	t2 := p.simpleExprRestFrom(t)
	return []ast.Term{t2}
}

// simpleExprRestFrom is a continuation hook used when a prefix expression
// must still absorb postfix suffixes; prefixExpr already applies them, so
// this is the identity today.
func (p *Parser) simpleExprRestFrom(t ast.Term) ast.Term { return t }

// prefixExpr parses an optional unary operator followed by a simple
// expression.
func (p *Parser) prefixExpr(allowRepeated bool) ast.Term {
	tok := p.cur()
	if !isUnaryOp(tok) {
		return p.simpleExpr(allowRepeated)
	}
	start := p.start()
	opStart := p.start()
	p.next()
	op := done(p, opStart, &ast.TermName{Value: tok.Literal})
	if (tok.Literal == "-") && p.cur().IsLiteral() && isNumericLit(p.cur()) {
		lit := p.literal(true)
		rest := p.simpleExprRest(start, lit, true)
		return rest
	}
	arg := p.simpleExpr(false)
	return done(p, start, &ast.TermApplyUnary{Op: op, Arg: arg})
}

func isNumericLit(tok lexer.Token) bool {
	switch tok.Type {
	case lexer.TokenIntLit, lexer.TokenLongLit, lexer.TokenFloatLit, lexer.TokenDoubleLit:
		return true
	}
	return false
}

// simpleExpr parses primaries and their postfix suffix chain.
func (p *Parser) simpleExpr(allowRepeated bool) ast.Term {
	start := p.start()
	tok := p.cur()
	var t ast.Term
	canApply := true

	switch {
	case tok.Type == lexer.TokenUnquote || tok.Type == lexer.TokenEllipsis:
		t = p.unquote()

	case tok.IsLiteral():
		t = p.literal(false)

	case tok.Type == lexer.TokenInterpID:
		t = p.termInterpolate()

	case tok.Type == lexer.TokenXMLStart:
		t = p.termXml()

	case tok.Type == lexer.TokenIdent || tok.Type == lexer.TokenBackquotedIdent ||
		tok.Type == lexer.TokenOpIdent || tok.Type == lexer.TokenThis || tok.Type == lexer.TokenSuper:
		ref, _ := p.pathRef()
		t = ref

	case tok.Type == lexer.TokenUnderscore:
		p.next()
		t = done(p, start, &ast.TermPlaceholder{})

	case tok.Type == lexer.TokenLParen:
		t = p.parenExpr(start)

	case tok.Type == lexer.TokenLBrace:
		canApply = false
		t = p.blockExpr()

	case tok.Type == lexer.TokenNew:
		canApply = false
		t = p.newExpr(start)

	case tok.Type == lexer.TokenQuoteBrace:
		t = p.macroQuoteBlock(start)

	case tok.Type == lexer.TokenQuoteBracket:
		t = p.macroQuoteType(start)

	case tok.Type == lexer.TokenQuoteID:
		p.next()
		name := &ast.TermName{Value: tok.Payload}
		name.SetOrigin(p.trimmedOrigin(start, p.in.PreviousIndex()))
		t = done(p, start, &ast.TermQuotedMacro{Body: name})

	case tok.Type == lexer.TokenSpliceBrace:
		t = p.macroSplice(start)

	case tok.Type == lexer.TokenIndent:
		t = p.indentedExprBlock()

	default:
		p.syntaxError("illegal start of simple expression", tok)
	}

	return p.simpleExprRestCanApply(start, t, canApply, allowRepeated)
}

func (p *Parser) simpleExprRestCanApply(start int, t ast.Term, canApply, allowRepeated bool) ast.Term {
	return p.simpleExprRest0(start, t, canApply)
}

// simpleExprRest absorbs the postfix suffixes: selections, type
// applications, argument lists and eta expansion.
func (p *Parser) simpleExprRest(start int, t ast.Term, canApply bool) ast.Term {
	return p.simpleExprRest0(start, t, canApply)
}

func (p *Parser) simpleExprRest0(start int, t ast.Term, canApply bool) ast.Term {
	for {
		switch p.curType() {
		case lexer.TokenDot:
			stop := ahead(p, func() bool { return !p.cur().IsIdent() && !p.at(lexer.TokenThis) && !p.at(lexer.TokenSuper) })
			if stop {
				return t
			}
			p.next()
			switch {
			case p.at(lexer.TokenThis):
				p.next()
				var qual *ast.Name
				if name, isName := t.(*ast.TermName); isName {
					qual = &ast.Name{Value: name.Value}
					qual.SetOrigin(name.Origin())
				} else {
					qual = p.anonName()
				}
				t = atPos(p, start, p.in.PreviousIndex(), &ast.TermThis{Qual: qual})
			case p.at(lexer.TokenSuper):
				p.next()
				var qual *ast.Name
				if name, isName := t.(*ast.TermName); isName {
					qual = &ast.Name{Value: name.Value}
					qual.SetOrigin(name.Origin())
				} else {
					qual = p.anonName()
				}
				sq := p.mixinQualifierOpt()
				t = atPos(p, start, p.in.PreviousIndex(), &ast.TermSuper{ThisQual: qual, SuperQual: sq})
			default:
				tok := p.cur()
				nameStart := p.start()
				p.next()
				name := done(p, nameStart, &ast.TermName{Value: identValue(tok)})
				t = atPos(p, start, p.in.PreviousIndex(), &ast.TermSelect{Qual: t, Name: name})
			}
			canApply = true

		case lexer.TokenLBracket:
			if !canApply {
				return t
			}
			targs := p.typeArgs()
			t = atPos(p, start, p.in.PreviousIndex(), &ast.TermApplyType{Fun: t, Targs: targs})

		case lexer.TokenLParen:
			if !canApply {
				return t
			}
			usingSeen, args := p.argumentExprsUsing()
			if usingSeen {
				t = atPos(p, start, p.in.PreviousIndex(), &ast.TermApplyUsing{Fun: t, Args: args})
			} else {
				t = atPos(p, start, p.in.PreviousIndex(), &ast.TermApply{Fun: t, Args: args})
			}

		case lexer.TokenLBrace:
			if !canApply {
				return t
			}
			arg := p.blockExpr()
			t = atPos(p, start, p.in.PreviousIndex(), &ast.TermApply{Fun: t, Args: []ast.Term{arg}})

		case lexer.TokenUnderscore:
			p.next()
			t = atPos(p, start, p.in.PreviousIndex(), &ast.TermEta{Expr: t})
			return t

		case lexer.TokenLF:
			// Newlines are consumed before an opening brace, and, under
			// significant indentation, before a leading selection.
			cont := ahead(p, func() bool {
				if p.at(lexer.TokenLBrace) {
					return true
				}
				return p.at(lexer.TokenDot) && p.dialect.AllowSignificantIndentation
			})
			if cont && canApply {
				p.next()
				continue
			}
			return t

		default:
			return t
		}
	}
}

// parenExpr parses unit, parenthesized expressions and tuples.
func (p *Parser) parenExpr(start int) ast.Term {
	p.accept(lexer.TokenLParen)
	if p.acceptOpt(lexer.TokenRParen) {
		return done(p, start, &ast.Lit{Kind: ast.LitUnit})
	}

	// (using x: T, ...) => body
	if p.isSoft(p.cur(), kwUsing) {
		if params, usingOK := p.usingLambdaParams(); usingOK {
			return p.finishParamLambda(start, params)
		}
	}

	var elems []ast.Term
	for {
		elems = append(elems, p.expr(NoStat, true))
		if !p.acceptOpt(lexer.TokenComma) {
			break
		}
		if p.dialect.AllowTrailingCommas && p.at(lexer.TokenRParen) {
			break
		}
	}
	p.accept(lexer.TokenRParen)
	if len(elems) == 1 {
		return elems[0]
	}
	return done(p, start, &ast.TermTuple{Args: elems})
}

// usingLambdaParams speculatively parses `using (ident [: type])+ )`
// inside an already-open paren, for context function literals.
func (p *Parser) usingLambdaParams() ([]*ast.TermParam, bool) {
	return tryParse(p, func() []*ast.TermParam {
		usingStart := p.start()
		p.next() // the `using` soft keyword
		usingMod := atPos(p, usingStart, usingStart, &ast.ModUsing{})
		var params []*ast.TermParam
		for {
			paramStart := p.start()
			var name *ast.Name
			switch {
			case p.cur().IsIdent():
				tok := p.cur()
				p.next()
				name = done(p, paramStart, &ast.Name{Value: identValue(tok)})
			case p.at(lexer.TokenUnderscore):
				p.next()
				name = done(p, paramStart, &ast.Name{})
			default:
				p.syntaxErrorExpected(lexer.TokenIdent)
			}
			var tpe ast.Type
			if p.acceptOpt(lexer.TokenColon) {
				tpe = p.paramType()
			}
			params = append(params, done(p, usingStart, &ast.TermParam{
				Mods: []ast.Mod{usingMod},
				Name: name,
				Tpe:  tpe,
			}))
			if !p.acceptOpt(lexer.TokenComma) {
				break
			}
		}
		p.accept(lexer.TokenRParen)
		if !p.at(lexer.TokenFatArrow) && !p.at(lexer.TokenCtxArrow) {
			p.syntaxErrorExpected(lexer.TokenFatArrow)
		}
		return params
	})
}

func (p *Parser) finishParamLambda(start int, params []*ast.TermParam) ast.Term {
	isCtx := p.at(lexer.TokenCtxArrow)
	p.next()
	body := p.expr(NoStat, false)
	if isCtx {
		return done(p, start, &ast.TermContextFunction{Params: params, Body: body})
	}
	return done(p, start, &ast.TermFunction{Params: params, Body: body})
}

// argumentExprsUsing parses an argument list, detecting a leading `using`.
func (p *Parser) argumentExprsUsing() (bool, []ast.Term) {
	p.accept(lexer.TokenLParen)
	if p.acceptOpt(lexer.TokenRParen) {
		return false, nil
	}
	usingSeen := false
	if p.isSoft(p.cur(), kwUsing) {
		isArgList := ahead(p, func() bool { return p.isExprIntro(p.cur()) })
		if isArgList {
			usingSeen = true
			p.next()
		}
	}
	var args []ast.Term
	for {
		args = append(args, p.expr(NoStat, true))
		if !p.acceptOpt(lexer.TokenComma) {
			break
		}
		if p.dialect.AllowTrailingCommas && p.at(lexer.TokenRParen) {
			break
		}
	}
	p.accept(lexer.TokenRParen)
	return usingSeen, args
}

// argumentExprs parses a parenthesized argument list for infix right-hand
// sides.
func (p *Parser) argumentExprs() []ast.Term {
	_, args := p.argumentExprsUsing()
	return args
}

// blockExpr parses { ... }: a partial function when it opens with case, a
// plain block otherwise.
func (p *Parser) blockExpr() ast.Term {
	start := p.start()
	p.accept(lexer.TokenLBrace)
	p.newlinesOpt()
	if p.isCaseIntro(p.cur()) {
		cases := p.caseClauses(lexer.TokenRBrace)
		p.accept(lexer.TokenRBrace)
		return done(p, start, &ast.TermPartialFunction{Cases: cases})
	}
	stats := p.blockStatSeq()
	p.accept(lexer.TokenRBrace)
	return done(p, start, &ast.TermBlock{Stats: stats})
}

// caseBlock parses the cases of a match: braced or indented.
func (p *Parser) caseBlock() []*ast.Case {
	if p.at(lexer.TokenLBrace) {
		p.next()
		p.newlinesOpt()
		cases := p.caseClauses(lexer.TokenRBrace)
		p.accept(lexer.TokenRBrace)
		return cases
	}
	if p.in.ObserveIndented() {
		p.accept(lexer.TokenIndent)
		p.newlinesOpt()
		cases := p.caseClauses(lexer.TokenOutdent)
		p.in.ObserveOutdented()
		p.accept(lexer.TokenOutdent)
		return cases
	}
	p.syntaxError("match statement requires cases", p.cur())
	return nil
}

// caseClauses parses one or more case clauses up to the closing token.
func (p *Parser) caseClauses(closeWith lexer.TokenType) []*ast.Case {
	var cases []*ast.Case
	for p.isCaseIntro(p.cur()) {
		cases = append(cases, p.caseClause())
		p.newlinesOpt()
		if closeWith == lexer.TokenOutdent {
			p.in.ObserveOutdented()
		}
		if p.at(closeWith) {
			break
		}
	}
	if len(cases) == 0 {
		p.syntaxError("match statement requires cases", p.cur())
	}
	return cases
}

// caseClause parses `case pat [if guard] => body`.
func (p *Parser) caseClause() *ast.Case {
	start := p.start()
	p.accept(lexer.TokenCase)
	pat := p.pattern(InPatternNoSeq)
	var guard ast.Term
	if p.acceptOpt(lexer.TokenIf) {
		guard = p.postfixExprTerm(NoStat)
	}
	p.accept(lexer.TokenFatArrow)
	body := p.caseBody()
	return done(p, start, &ast.Case{Pat: pat, Cond: guard, Body: body})
}

// caseBody parses the statements of one case up to the next case or the
// block's end.
func (p *Parser) caseBody() ast.Term {
	start := p.start()
	if p.in.ObserveIndented() {
		return p.indentedExprBlock()
	}
	p.newlinesOpt()
	var stats []ast.Stat
	for !p.isCaseDefEnd() {
		stats = append(stats, p.blockStat()...)
		if p.isCaseDefEnd() {
			break
		}
		p.acceptStatSep()
		p.newlinesOpt()
	}
	if len(stats) == 1 {
		if t, isTerm := stats[0].(ast.Term); isTerm {
			return t
		}
	}
	return done(p, start, &ast.TermBlock{Stats: stats})
}

func (p *Parser) isCaseDefEnd() bool {
	switch p.curType() {
	case lexer.TokenRBrace, lexer.TokenEOF, lexer.TokenOutdent:
		return true
	case lexer.TokenCase:
		return p.isCaseIntro(p.cur())
	}
	if p.in.Current().IsLineEnd() {
		return ahead(p, func() bool { return p.isCaseDefEnd() })
	}
	return false
}

// ---- new expressions ----

func (p *Parser) newExpr(start int) ast.Term {
	p.accept(lexer.TokenNew)
	if p.at(lexer.TokenLBrace) {
		templ := p.templateBody(OwnerClass)
		return done(p, start, &ast.TermNewAnonymous{Templ: templ})
	}
	init := p.initCall()
	// Parents or a body make the instantiation anonymous.
	if p.at(lexer.TokenWith) || p.at(lexer.TokenLBrace) ||
		(p.curType() == lexer.TokenLF && ahead(p, func() bool { return p.at(lexer.TokenLBrace) })) {
		inits := []*ast.Init{init}
		for p.acceptOpt(lexer.TokenWith) {
			inits = append(inits, p.initCall())
		}
		var templ *ast.Template
		p.newlineOptWhenFollowing(lexer.TokenLBrace)
		if p.at(lexer.TokenLBrace) {
			templ = p.templateBody(OwnerClass)
		} else {
			templ = done(p, start, &ast.Template{})
		}
		templ.Inits = inits
		return done(p, start, &ast.TermNewAnonymous{Templ: templ})
	}
	return done(p, start, &ast.TermNew{Init: init})
}

// initCall parses `tpe(args...)*` as a parent constructor invocation.
func (p *Parser) initCall() *ast.Init {
	start := p.start()
	t := p.annotType()
	var argss [][]ast.Term
	for p.at(lexer.TokenLParen) {
		_, args := p.argumentExprsUsing()
		argss = append(argss, args)
	}
	name := p.anonName()
	return done(p, start, &ast.Init{Tpe: t, Name: name, Argss: argss})
}

// ---- macro quote / splice ----

func (p *Parser) macroQuoteBlock(start int) ast.Term {
	if !p.dialect.AllowQuotedTerms {
		p.syntaxError(p.dialect.Name+" does not support quoted terms", p.cur())
	}
	p.accept(lexer.TokenQuoteBrace)
	p.quotedSpliceDepth++
	p.newlinesOpt()
	stats := p.blockStatSeq()
	p.quotedSpliceDepth--
	p.accept(lexer.TokenRBrace)
	var body ast.Tree
	if len(stats) == 1 {
		body = stats[0]
	} else {
		body = atPos(p, start, p.in.PreviousIndex(), &ast.TermBlock{Stats: stats})
	}
	return done(p, start, &ast.TermQuotedMacro{Body: body})
}

func (p *Parser) macroQuoteType(start int) ast.Term {
	if !p.dialect.AllowQuotedTerms {
		p.syntaxError(p.dialect.Name+" does not support quoted types", p.cur())
	}
	p.accept(lexer.TokenQuoteBracket)
	tpe := p.typ()
	p.accept(lexer.TokenRBracket)
	return done(p, start, &ast.TermQuotedMacro{Body: tpe})
}

func (p *Parser) macroSplice(start int) ast.Term {
	if !p.dialect.AllowSplices {
		p.syntaxError(p.dialect.Name+" does not support splices", p.cur())
	}
	p.accept(lexer.TokenSpliceBrace)
	p.quotedSpliceDepth--
	p.newlinesOpt()
	stats := p.blockStatSeq()
	p.quotedSpliceDepth++
	p.accept(lexer.TokenRBrace)
	var body ast.Tree
	if len(stats) == 1 {
		body = stats[0]
	} else {
		body = atPos(p, start, p.in.PreviousIndex(), &ast.TermBlock{Stats: stats})
	}
	return done(p, start, &ast.TermSplicedMacro{Body: body})
}

// ---- interpolation and XML ----

// termInterpolate parses an interpolated string in term position.
func (p *Parser) termInterpolate() ast.Term {
	start := p.start()
	prefix, parts, rawArgs := p.interpolateRaw(func() ast.Tree {
		return p.expr(NoStat, false)
	})
	args := make([]ast.Term, len(rawArgs))
	for i, a := range rawArgs {
		args[i] = a.(ast.Term)
	}
	return done(p, start, &ast.TermInterpolate{Prefix: prefix, Parts: parts, Args: args})
}

// interpolateRaw drives the shared interpolation token protocol: an id, a
// start marker, then alternating parts and spliced subtrees.
func (p *Parser) interpolateRaw(parseArg func() ast.Tree) (*ast.TermName, []*ast.Lit, []ast.Tree) {
	idTok := p.cur()
	idStart := p.start()
	p.next()
	prefix := done(p, idStart, &ast.TermName{Value: idTok.Literal})
	p.accept(lexer.TokenInterpStart)

	var parts []*ast.Lit
	var args []ast.Tree
	for {
		partTok := p.cur()
		if partTok.Type != lexer.TokenInterpPart {
			p.syntaxErrorExpected(lexer.TokenInterpPart)
		}
		partStart := p.start()
		p.next()
		parts = append(parts, done(p, partStart, &ast.Lit{Kind: ast.LitString, Value: partTok.Payload}))

		switch p.curType() {
		case lexer.TokenInterpSpliceStart:
			p.next()
			args = append(args, parseArg())
			p.accept(lexer.TokenInterpSpliceEnd)
		case lexer.TokenInterpEnd:
			p.next()
			return prefix, parts, args
		default:
			p.syntaxErrorExpected(lexer.TokenInterpEnd)
		}
	}
}

// termXml parses an XML literal in term position.
func (p *Parser) termXml() ast.Term {
	start := p.start()
	if !p.dialect.AllowXmlLiterals {
		p.syntaxError(p.dialect.Name+" does not support XML literals", p.cur())
	}
	parts, rawArgs := p.xmlRaw(func() ast.Tree {
		return p.expr(NoStat, false)
	})
	args := make([]ast.Term, len(rawArgs))
	for i, a := range rawArgs {
		args[i] = a.(ast.Term)
	}
	return done(p, start, &ast.TermXml{Parts: parts, Args: args})
}

// xmlRaw drives the XML token protocol, which mirrors interpolation with
// an XML token family.
func (p *Parser) xmlRaw(parseArg func() ast.Tree) ([]*ast.Lit, []ast.Tree) {
	p.accept(lexer.TokenXMLStart)
	var parts []*ast.Lit
	var args []ast.Tree
	for {
		partTok := p.cur()
		if partTok.Type != lexer.TokenXMLPart {
			p.syntaxErrorExpected(lexer.TokenXMLPart)
		}
		partStart := p.start()
		p.next()
		parts = append(parts, done(p, partStart, &ast.Lit{Kind: ast.LitString, Value: partTok.Payload}))

		switch p.curType() {
		case lexer.TokenXMLSpliceStart:
			p.next()
			args = append(args, parseArg())
			p.accept(lexer.TokenXMLSpliceEnd)
		case lexer.TokenXMLEnd:
			p.next()
			return parts, args
		default:
			p.syntaxErrorExpected(lexer.TokenXMLEnd)
		}
	}
}

// ---- literals and quasiquote holes ----

// literal decodes the current literal token into a Lit node, range-checking
// numeric values.
func (p *Parser) literal(negated bool) *ast.Lit {
	tok := p.cur()
	start := p.start()
	if negated {
		start = p.in.PreviousIndex()
	}
	p.next()

	sign := ""
	if negated {
		sign = "-"
	}
	numText := strings.ReplaceAll(tok.Literal, "_", "")

	switch tok.Type {
	case lexer.TokenIntLit:
		v, err := strconv.ParseInt(sign+numText, 0, 64)
		if err != nil || v > math.MaxInt32 || v < math.MinInt32 {
			p.syntaxError("integer number too large", tok)
		}
		return done(p, start, &ast.Lit{Kind: ast.LitInt, Value: int32(v)})
	case lexer.TokenLongLit:
		v, err := strconv.ParseInt(sign+strings.TrimRight(numText, "lL"), 0, 64)
		if err != nil {
			p.syntaxError("long number too large", tok)
		}
		return done(p, start, &ast.Lit{Kind: ast.LitLong, Value: v})
	case lexer.TokenFloatLit:
		v, err := strconv.ParseFloat(sign+strings.TrimRight(numText, "fF"), 32)
		if err != nil || math.IsInf(v, 0) {
			p.syntaxError("float number too large", tok)
		}
		return done(p, start, &ast.Lit{Kind: ast.LitFloat, Value: float32(v)})
	case lexer.TokenDoubleLit:
		v, err := strconv.ParseFloat(sign+strings.TrimRight(numText, "dD"), 64)
		if err != nil || math.IsInf(v, 0) {
			p.syntaxError("double number too large", tok)
		}
		return done(p, start, &ast.Lit{Kind: ast.LitDouble, Value: v})
	case lexer.TokenCharLit:
		r := []rune(tok.Payload)
		var ch rune
		if len(r) > 0 {
			ch = r[0]
		}
		return done(p, start, &ast.Lit{Kind: ast.LitChar, Value: ch})
	case lexer.TokenStringLit:
		return done(p, start, &ast.Lit{Kind: ast.LitString, Value: tok.Payload})
	case lexer.TokenSymbolLit:
		return done(p, start, &ast.Lit{Kind: ast.LitSymbol, Value: tok.Payload})
	case lexer.TokenTrue:
		return done(p, start, &ast.Lit{Kind: ast.LitBool, Value: true})
	case lexer.TokenFalse:
		return done(p, start, &ast.Lit{Kind: ast.LitBool, Value: false})
	case lexer.TokenNull:
		return done(p, start, &ast.Lit{Kind: ast.LitNull})
	}
	p.syntaxError(fmt.Sprintf("literal expected but %s found", tok.Type), tok)
	return nil
}

// unquote builds a quasiquote hole from an unquote or ellipsis escape.
func (p *Parser) unquote() *ast.Quasi {
	if !p.dialect.AllowUnquotes {
		p.syntaxError(p.dialect.Name+" does not support unquotes", p.cur())
	}
	start := p.start()
	rank := 0
	if p.at(lexer.TokenEllipsis) {
		rank = int(p.cur().Payload[0] - '0')
		p.next()
	}
	tok := p.cur()
	if tok.Type != lexer.TokenUnquote {
		p.syntaxError("unquote expected after ellipsis", tok)
	}
	p.next()
	return done(p, start, &ast.Quasi{Rank: rank, Body: tok.Payload})
}
