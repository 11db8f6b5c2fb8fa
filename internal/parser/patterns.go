package parser

import (
	"github.com/orizon-lang/aster/internal/ast"
	"github.com/orizon-lang/aster/internal/lexer"
)

// Pattern grammar. Every production threads the sequence Mode: InPatternSeqOK
// admits the _* sequence wildcard, InPatternNoSeq forbids it, InPatternXML
// additionally enters XML-literal patterns.

// pattern parses a full pattern: alternation with |.
func (p *Parser) pattern(mode Mode) ast.Pat {
	start := p.start()
	lhs := p.pattern1(mode)
	for isRawBar(p.cur()) {
		p.next()
		rhs := p.pattern1(mode)
		lhs = atPos(p, start, p.in.PreviousIndex(), &ast.PatAlternative{Lhs: lhs, Rhs: rhs})
	}
	return lhs
}

// pattern1 parses an optionally type-ascribed pattern. Ascription binds
// only to variables, wildcards, quasiquote holes and `@` bindings.
func (p *Parser) pattern1(mode Mode) ast.Pat {
	start := p.start()
	lhs := p.pattern2(mode)
	if !p.at(lexer.TokenColon) {
		return lhs
	}
	switch lhs.(type) {
	case *ast.PatVar, *ast.PatWildcard, *ast.Quasi, *ast.PatBind:
	default:
		return lhs
	}
	p.next()
	tpe := p.patternTyp()
	return done(p, start, &ast.PatTyped{Lhs: lhs, Rhs: tpe})
}

// patternTyp parses a type in pattern position, where lowercase names bind
// type variables.
func (p *Parser) patternTyp() ast.Type {
	saved := p.inPatternType
	p.inPatternType = true
	defer func() { p.inPatternType = saved }()
	return p.typ()
}

// pattern2 parses an optionally @-bound pattern.
func (p *Parser) pattern2(mode Mode) ast.Pat {
	start := p.start()
	lhs := p.pattern3(mode)
	if !p.at(lexer.TokenAt) {
		return lhs
	}
	var lhsVar *ast.PatVar
	switch l := lhs.(type) {
	case *ast.PatVar:
		lhsVar = l
	case *ast.PatWildcard:
		// _ @ pat is the same as pat
		p.next()
		return p.pattern3(mode)
	case *ast.PatSelect:
		// An upper-case name is reclassified as a binding when the dialect
		// allows it and an @ follows.
		if name, isName := l.Ref.(*ast.TermName); isName && p.dialect.AllowUpperCasePatternVarBinding {
			v := &ast.PatVar{Name: name}
			v.SetOrigin(l.Origin())
			lhsVar = v
		}
	}
	if lhsVar == nil {
		return lhs
	}
	p.next()
	// x @ _* binds the rest of a sequence.
	if p.at(lexer.TokenUnderscore) && isRawStar(ahead(p, func() lexer.Token { return p.cur() })) {
		if !p.dialect.AllowAtForExtractorVarargs {
			p.syntaxError(p.dialect.Name+" does not support @-style vararg patterns", p.cur())
		}
		swStart := p.start()
		p.next() // _
		p.next() // *
		p.checkSeqWildcardClose(mode)
		sw := done(p, swStart, &ast.PatSeqWildcard{})
		return done(p, start, &ast.PatBind{Lhs: lhsVar, Rhs: sw})
	}
	rhs := p.pattern3(mode)
	return done(p, start, &ast.PatBind{Lhs: lhsVar, Rhs: rhs})
}

// pattern3 parses infix patterns via the shared infix engine.
func (p *Parser) pattern3(mode Mode) ast.Pat {
	start := p.start()
	ctx := patInfixContext{}
	var stack []unfinishedInfix

	curStart := start
	lhs := p.simplePattern(mode)
	lhsEnd := p.in.PreviousIndex()

	// Postfix stars: _* sequence wildcards and name* vararg bindings.
	if sw := p.seqWildcardOpt(mode, curStart, lhs); sw != nil {
		lhs = sw
		lhsEnd = p.in.PreviousIndex()
	}

	var curr any = lhs
	for {
		tok := p.cur()
		if !p.isPatternInfixOp(tok) {
			break
		}
		opText := tok.Literal
		curr = p.reduceStack(ctx, &stack, 0, curr, lhsEnd, opText)
		opStart := p.start()
		p.next()
		op := done(p, opStart, &ast.TermName{Value: opText})
		stack = append(stack, unfinishedInfix{
			lhsStart: frameStart(stack, start, curStart, curr),
			lhs:      curr,
			lhsEnd:   lhsEnd,
			op:       op,
		})
		p.newlineOptWhenFollowedBy(func(t lexer.Token) bool { return p.isPatternIntro(t) })
		curStart = p.start()
		curr = p.simplePattern(mode)
		lhsEnd = p.in.PreviousIndex()
	}
	res := p.reduceStack(ctx, &stack, 0, curr, lhsEnd, "")
	return res.(ast.Pat)
}

// frameStart picks the token index the pending frame's lhs begins at: the
// chain start while the stack is reducing into one spine, the operand's own
// start for the upper frames of a right-leaning chain.
func frameStart(stack []unfinishedInfix, chainStart, operandStart int, curr any) int {
	if len(stack) == 0 {
		return chainStart
	}
	if t, ok := curr.(ast.Tree); ok {
		return t.Origin().StartToken
	}
	return operandStart
}

// isPatternInfixOp reports whether tok continues an infix pattern.
func (p *Parser) isPatternInfixOp(tok lexer.Token) bool {
	if !p.dialect.AllowInfixPatterns {
		return false
	}
	switch tok.Type {
	case lexer.TokenOpIdent:
		return !isRawBar(tok) && !isRawStar(tok)
	case lexer.TokenIdent:
		// Alphanumeric extractors participate when something pattern-like
		// follows.
		return ahead(p, func() bool { return p.isPatternIntro(p.cur()) })
	}
	return false
}

func (p *Parser) isPatternIntro(tok lexer.Token) bool {
	if tok.IsIdent() || tok.IsLiteral() {
		return true
	}
	switch tok.Type {
	case lexer.TokenUnderscore, lexer.TokenLParen, lexer.TokenThis,
		lexer.TokenInterpID, lexer.TokenXMLStart:
		return true
	case lexer.TokenUnquote, lexer.TokenEllipsis:
		return p.dialect.AllowUnquotes
	}
	return false
}

// seqWildcardOpt recognizes the _* sequence wildcard and name* vararg
// binding after a just-parsed simple pattern, with the targeted misuse
// diagnostics.
func (p *Parser) seqWildcardOpt(mode Mode, start int, lhs ast.Pat) ast.Pat {
	if !isRawStar(p.cur()) {
		return nil
	}
	switch l := lhs.(type) {
	case *ast.PatWildcard:
		p.next()
		p.checkSeqWildcardClose(mode)
		return done(p, start, &ast.PatSeqWildcard{})
	case *ast.PatVar:
		if p.dialect.AllowPostfixStarVarargSplices {
			p.next()
			p.checkSeqWildcardClose(mode)
			return done(p, start, &ast.PatRepeated{Name: l.Name})
		}
	}
	return nil
}

// checkSeqWildcardClose enforces that a sequence wildcard is the last
// pattern of a sequence-OK context.
func (p *Parser) checkSeqWildcardClose(mode Mode) {
	if mode != InPatternSeqOK && mode != InPatternXML {
		p.syntaxError("bad use of _* (sequence pattern not allowed)", p.cur())
	}
	switch p.curType() {
	case lexer.TokenRParen, lexer.TokenEOF:
	case lexer.TokenRBrace:
		p.syntaxError("bad brace or paren after _*", p.cur())
	default:
		p.syntaxError("bad use of _* (sequence pattern must be last)", p.cur())
	}
}

// simplePattern parses the pattern primaries.
func (p *Parser) simplePattern(mode Mode) ast.Pat {
	start := p.start()
	tok := p.cur()

	switch {
	case tok.Type == lexer.TokenUnquote || tok.Type == lexer.TokenEllipsis:
		return p.unquote()

	case tok.Type == lexer.TokenUnderscore:
		p.next()
		return done(p, start, &ast.PatWildcard{})

	case tok.Type == lexer.TokenOpIdent && tok.Literal == "-" &&
		ahead(p, func() bool { return p.cur().IsLiteral() }):
		p.next()
		return p.literalPat(true)

	case tok.IsLiteral():
		return p.literalPat(false)

	case tok.Type == lexer.TokenInterpID:
		return p.patInterpolate()

	case tok.Type == lexer.TokenXMLStart:
		if mode != InPatternXML && mode != InPatternSeqOK {
			p.syntaxError("XML patterns are not allowed here", tok)
		}
		return p.xmlPat()

	case tok.Type == lexer.TokenGiven && p.dialect.AllowGivenUsing:
		p.next()
		tpe := p.patternTyp()
		return done(p, start, &ast.PatGiven{Tpe: tpe})

	case tok.Type == lexer.TokenLParen:
		p.next()
		var elems []ast.Pat
		if !p.at(lexer.TokenRParen) {
			for {
				elems = append(elems, p.pattern(InPatternNoSeq))
				if !p.acceptOpt(lexer.TokenComma) {
					break
				}
				if p.dialect.AllowTrailingCommas && p.at(lexer.TokenRParen) {
					break
				}
			}
		}
		p.accept(lexer.TokenRParen)
		switch len(elems) {
		case 0:
			return done(p, start, &ast.Lit{Kind: ast.LitUnit})
		case 1:
			return elems[0]
		default:
			return done(p, start, &ast.PatTuple{Args: elems})
		}

	case tok.IsIdent() || tok.Type == lexer.TokenThis:
		return p.extractorOrRef(mode, start)
	}

	p.syntaxError("pattern expected but "+tok.Type.String()+" found", tok)
	return nil
}

// extractorOrRef parses variables, stable references, and extractor
// applications.
func (p *Parser) extractorOrRef(mode Mode, start int) ast.Pat {
	tok := p.cur()

	// A plain lowercase name not followed by a selector or argument list is
	// a pattern variable. Backquoted identifiers are always stable.
	if isVarPatternName(tok) {
		bindsVar := !ahead(p, func() bool {
			switch p.curType() {
			case lexer.TokenDot, lexer.TokenLParen, lexer.TokenLBracket:
				return true
			}
			return false
		})
		if bindsVar {
			nameStart := p.start()
			p.next()
			name := done(p, nameStart, &ast.TermName{Value: tok.Literal})
			return done(p, start, &ast.PatVar{Name: name})
		}
	}

	ref, _ := p.pathRef()
	var targs []ast.Type
	if p.at(lexer.TokenLBracket) {
		targs = p.typeArgs()
	}
	if p.at(lexer.TokenLParen) {
		p.next()
		var args []ast.Pat
		if !p.at(lexer.TokenRParen) {
			for {
				args = append(args, p.pattern(InPatternSeqOK))
				if !p.acceptOpt(lexer.TokenComma) {
					break
				}
				if p.dialect.AllowTrailingCommas && p.at(lexer.TokenRParen) {
					break
				}
			}
		}
		p.accept(lexer.TokenRParen)
		return done(p, start, &ast.PatExtract{Fun: ref, Targs: targs, Args: args})
	}
	if len(targs) > 0 {
		p.syntaxError("pattern must be a value or have an argument list", p.cur())
	}
	if name, isName := ref.(*ast.TermName); isName {
		return done(p, start, &ast.PatSelect{Ref: name})
	}
	return done(p, start, &ast.PatSelect{Ref: ref})
}

// literalPat parses a literal pattern.
func (p *Parser) literalPat(negated bool) ast.Pat {
	return p.literal(negated)
}

// patInterpolate parses an interpolated string in pattern position; splice
// holes contain patterns.
func (p *Parser) patInterpolate() ast.Pat {
	start := p.start()
	prefix, parts, rawArgs := p.interpolateRaw(func() ast.Tree {
		return p.pattern(InPatternNoSeq)
	})
	args := make([]ast.Pat, len(rawArgs))
	for i, a := range rawArgs {
		args[i] = a.(ast.Pat)
	}
	return done(p, start, &ast.PatInterpolate{Prefix: prefix, Parts: parts, Args: args})
}

// xmlPat parses an XML pattern from the XML token family; splice holes
// contain sequence-OK patterns.
func (p *Parser) xmlPat() ast.Pat {
	start := p.start()
	parts, rawArgs := p.xmlRaw(func() ast.Tree {
		return p.pattern(InPatternXML)
	})
	args := make([]ast.Pat, len(rawArgs))
	for i, a := range rawArgs {
		args[i] = a.(ast.Pat)
	}
	return done(p, start, &ast.PatXml{Parts: parts, Args: args})
}
