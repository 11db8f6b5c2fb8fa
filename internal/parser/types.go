package parser

import (
	"github.com/orizon-lang/aster/internal/ast"
	"github.com/orizon-lang/aster/internal/lexer"
)

// Type grammar. The entry is typ(); paramType() is the variant legal only
// in parameter position (by-name and repeated types).

// typ parses a full type expression, including function, context function,
// dependent function, polymorphic function, type lambda, existential and
// match types.
func (p *Parser) typ() ast.Type {
	start := p.start()
	var t ast.Type

	switch {
	case p.at(lexer.TokenLParen):
		t = p.parenOrFunctionType(start)
		if t == nil {
			return nil // parenOrFunctionType produced the full node
		}
	case p.at(lexer.TokenLBracket) && (p.dialect.AllowTypeLambdas || p.dialect.AllowPolymorphicFunctionTypes):
		return p.typeLambdaOrPoly(start)
	default:
		t = p.infixType()
	}
	return p.typSuffix(start, t)
}

// typSuffix handles the trailing productions shared by every prefix form:
// =>, ?=>, forSome, match.
func (p *Parser) typSuffix(start int, t ast.Type) ast.Type {
	for {
		switch {
		case p.at(lexer.TokenFatArrow):
			p.next()
			res := p.typ()
			t = atPos(p, start, p.in.PreviousIndex(), &ast.TypeFunction{Params: []ast.Type{t}, Res: res})
		case p.at(lexer.TokenCtxArrow):
			if !p.dialect.AllowContextFunctionTypes {
				p.syntaxError(p.dialect.Name+" does not support context function types", p.cur())
			}
			p.next()
			res := p.typ()
			t = atPos(p, start, p.in.PreviousIndex(), &ast.TypeContextFunction{Params: []ast.Type{t}, Res: res})
		case p.at(lexer.TokenForSome):
			if !p.dialect.AllowExistentialTypes {
				p.syntaxError(p.dialect.Name+" does not support existential types", p.cur())
			}
			p.next()
			p.accept(lexer.TokenLBrace)
			stats := p.existentialStats()
			p.accept(lexer.TokenRBrace)
			t = atPos(p, start, p.in.PreviousIndex(), &ast.TypeExistential{Tpe: t, Stats: stats})
		case p.at(lexer.TokenMatch) && p.dialect.AllowMatchTypes:
			p.next()
			cases := p.typeCaseClauses()
			t = atPos(p, start, p.in.PreviousIndex(), &ast.TypeMatch{Tpe: t, Cases: cases})
		default:
			return t
		}
	}
}

// parenOrFunctionType disambiguates (T1, T2) => R, (x: T) => R, and plain
// tuple/parenthesized types. Typed parameters and plain types may not mix.
func (p *Parser) parenOrFunctionType(start int) ast.Type {
	p.accept(lexer.TokenLParen)

	if p.acceptOpt(lexer.TokenRParen) {
		// () => R
		arrowCtx := p.curType()
		if arrowCtx != lexer.TokenFatArrow && arrowCtx != lexer.TokenCtxArrow {
			p.syntaxError("function type expected after empty parameter list", p.cur())
		}
		isCtx := arrowCtx == lexer.TokenCtxArrow
		p.next()
		res := p.typ()
		if isCtx {
			return atPos(p, start, p.in.PreviousIndex(), &ast.TypeContextFunction{Res: res})
		}
		return atPos(p, start, p.in.PreviousIndex(), &ast.TypeFunction{Res: res})
	}

	var plain []ast.Type
	var typed []*ast.TermParam
	for {
		elemStart := p.start()
		if param, ok := p.typedFunParamOpt(elemStart); ok {
			typed = append(typed, param)
		} else {
			plain = append(plain, p.paramType())
		}
		if !p.acceptOpt(lexer.TokenComma) {
			break
		}
		if p.dialect.AllowTrailingCommas && p.at(lexer.TokenRParen) {
			break
		}
	}
	p.accept(lexer.TokenRParen)
	if len(plain) > 0 && len(typed) > 0 {
		p.syntaxError("can't mix function type and dependent function type syntaxes", p.cur())
	}

	switch p.curType() {
	case lexer.TokenFatArrow:
		p.next()
		res := p.typ()
		if len(typed) > 0 {
			if !p.dialect.AllowDependentFunctionTypes {
				p.syntaxError(p.dialect.Name+" does not support dependent function types", p.cur())
			}
			return atPos(p, start, p.in.PreviousIndex(), &ast.TypeDependentFunction{Params: typed, Res: res})
		}
		return atPos(p, start, p.in.PreviousIndex(), &ast.TypeFunction{Params: plain, Res: res})
	case lexer.TokenCtxArrow:
		if !p.dialect.AllowContextFunctionTypes {
			p.syntaxError(p.dialect.Name+" does not support context function types", p.cur())
		}
		p.next()
		res := p.typ()
		if len(typed) > 0 {
			p.syntaxError("dependent context function types are not supported", p.cur())
		}
		return atPos(p, start, p.in.PreviousIndex(), &ast.TypeContextFunction{Params: plain, Res: res})
	}

	if len(typed) > 0 {
		p.syntaxError("function type expected after dependent parameter list", p.cur())
	}
	var t ast.Type
	if len(plain) == 1 {
		t = plain[0]
	} else {
		t = atPos(p, start, p.in.PreviousIndex(), &ast.TypeTuple{Args: plain})
	}
	// A parenthesized prefix continues as an ordinary simple type.
	t = p.simpleTypeRest(start, t)
	t = p.infixTypeRest(start, t, 0)
	t = p.refinedTypeRest(start, t)
	return t
}

// typedFunParamOpt speculatively parses `ident : type` as a dependent
// function parameter.
func (p *Parser) typedFunParamOpt(start int) (*ast.TermParam, bool) {
	if p.curType() != lexer.TokenIdent {
		return nil, false
	}
	isTyped := ahead(p, func() bool { return p.at(lexer.TokenColon) })
	if !isTyped {
		return nil, false
	}
	nameTok := p.cur()
	nameStart := p.start()
	p.next()
	name := done(p, nameStart, &ast.Name{Value: nameTok.Literal})
	p.accept(lexer.TokenColon)
	tpe := p.paramType()
	return done(p, start, &ast.TermParam{Name: name, Tpe: tpe}), true
}

// typeLambdaOrPoly parses [Xs] =>> T and [Xs] => T.
func (p *Parser) typeLambdaOrPoly(start int) ast.Type {
	tparams := p.typeParamClause()
	switch p.curType() {
	case lexer.TokenTypeLambdaArrow:
		if !p.dialect.AllowTypeLambdas {
			p.syntaxError(p.dialect.Name+" does not support type lambdas", p.cur())
		}
		p.next()
		body := p.typ()
		return done(p, start, &ast.TypeLambda{Tparams: tparams, Body: body})
	case lexer.TokenFatArrow:
		if !p.dialect.AllowPolymorphicFunctionTypes {
			p.syntaxError(p.dialect.Name+" does not support polymorphic function types", p.cur())
		}
		p.next()
		res := p.typ()
		switch res.(type) {
		case *ast.TypeFunction, *ast.TypeContextFunction, *ast.TypeDependentFunction:
		default:
			p.syntaxError("polymorphic function types must have a value parameter list", p.cur())
		}
		return done(p, start, &ast.TypePolyFunction{Tparams: tparams, Res: res})
	}
	p.syntaxError("=>> or => expected after type parameter list", p.cur())
	return nil
}

// infixType parses refined types joined by infix operators with term
// precedence and associativity.
func (p *Parser) infixType() ast.Type {
	start := p.start()
	t := p.refinedType()
	return p.infixTypeRest(start, t, 0)
}

// isTypeInfixOp reports whether the current token is an infix type
// operator at this point: a symbolic operator, or an alphanumeric
// identifier followed by a type.
func (p *Parser) isTypeInfixOp() bool {
	tok := p.cur()
	switch tok.Type {
	case lexer.TokenOpIdent:
		if tok.Literal == "*" {
			// A trailing star is a repeated parameter type, not an operator.
			return !ahead(p, func() bool {
				switch p.curType() {
				case lexer.TokenRParen, lexer.TokenComma, lexer.TokenRBracket,
					lexer.TokenRBrace, lexer.TokenEq, lexer.TokenEOF,
					lexer.TokenLF, lexer.TokenLFLF:
					return true
				}
				return false
			})
		}
		return true
	case lexer.TokenIdent:
		if p.isSoft(tok, kwDerives) || p.isSoft(tok, kwAs) {
			return false
		}
		return ahead(p, func() bool { return p.isTypeIntro(p.cur()) })
	}
	return false
}

func (p *Parser) infixTypeRest(lhsStart int, lhs ast.Type, minPrec int) ast.Type {
	for p.isTypeInfixOp() {
		opTok := p.cur()
		opPrec := operatorPrecedence(opTok.Literal)
		if opPrec < minPrec {
			return lhs
		}
		opStart := p.start()
		p.next()
		op := done(p, opStart, &ast.TypeName{Value: opTok.Literal})
		p.newlineOptWhenFollowedBy(func(t lexer.Token) bool { return p.isTypeIntro(t) })
		rhsStart := p.start()
		rhs := p.refinedType()
		// Fold tighter-binding (or same-tier right-associative) operators
		// into the right-hand side before finishing this frame.
		if p.isTypeInfixOp() {
			nextTok := p.cur()
			nextPrec := operatorPrecedence(nextTok.Literal)
			if nextPrec == opPrec && isLeftAssoc(nextTok.Literal) != isLeftAssoc(opTok.Literal) {
				p.syntaxError("left- and right-associative operators with same precedence may not be mixed", p.cur())
			}
			if nextPrec > opPrec || (nextPrec == opPrec && !isLeftAssoc(opTok.Literal)) {
				next := opPrec + 1
				if !isLeftAssoc(opTok.Literal) {
					next = opPrec
				}
				rhs = p.infixTypeRest(rhsStart, rhs, next)
			}
		}
		lhs = p.finishInfixType(lhsStart, lhs, opTok.Literal, op, rhs)
	}
	return lhs
}

func (p *Parser) finishInfixType(lhsStart int, lhs ast.Type, opText string, op *ast.TypeName, rhs ast.Type) ast.Type {
	end := p.in.PreviousIndex()
	switch {
	case opText == "&" && p.dialect.AllowAndTypes:
		return atPos(p, lhsStart, end, &ast.TypeAnd{Lhs: lhs, Rhs: rhs})
	case opText == "|" && p.dialect.AllowOrTypes:
		return atPos(p, lhsStart, end, &ast.TypeOr{Lhs: lhs, Rhs: rhs})
	default:
		return atPos(p, lhsStart, end, &ast.TypeApplyInfix{Lhs: lhs, Op: op, Rhs: rhs})
	}
}

// refinedType parses withType optionally followed by refinements.
func (p *Parser) refinedType() ast.Type {
	start := p.start()
	var t ast.Type
	if !p.at(lexer.TokenLBrace) {
		t = p.withType()
	}
	return p.refinedTypeRest(start, t)
}

func (p *Parser) refinedTypeRest(start int, t ast.Type) ast.Type {
	for {
		p.newlineOptWhenFollowing(lexer.TokenLBrace)
		if !p.at(lexer.TokenLBrace) {
			return t
		}
		p.accept(lexer.TokenLBrace)
		stats := p.refineStats()
		p.accept(lexer.TokenRBrace)
		t = atPos(p, start, p.in.PreviousIndex(), &ast.TypeRefine{Tpe: t, Stats: stats})
	}
}

// withType parses annotated types joined by `with`.
func (p *Parser) withType() ast.Type {
	start := p.start()
	t := p.annotType()
	for p.at(lexer.TokenWith) {
		// `with` beginning a template body (given ... with { ... }) is not a
		// compound type; callers watch for that before invoking typ().
		p.next()
		rhs := p.annotType()
		t = atPos(p, start, p.in.PreviousIndex(), &ast.TypeWith{Lhs: t, Rhs: rhs})
	}
	return t
}

// annotType parses a simple type with optional trailing annotations.
func (p *Parser) annotType() ast.Type {
	start := p.start()
	t := p.simpleType()
	if p.at(lexer.TokenAt) {
		annots := p.annots(false)
		t = atPos(p, start, p.in.PreviousIndex(), &ast.TypeAnnotate{Tpe: t, Annots: annots})
	}
	return t
}

// simpleType parses the head of a type: paths, projections, applications,
// tuples, wildcards, literal types and quasiquote holes.
func (p *Parser) simpleType() ast.Type {
	start := p.start()
	var t ast.Type

	tok := p.cur()
	switch {
	case tok.Type == lexer.TokenUnquote || tok.Type == lexer.TokenEllipsis:
		t = p.unquote()
	case tok.Type == lexer.TokenLParen:
		p.next()
		var elems []ast.Type
		for {
			elems = append(elems, p.paramType())
			if !p.acceptOpt(lexer.TokenComma) {
				break
			}
			if p.dialect.AllowTrailingCommas && p.at(lexer.TokenRParen) {
				break
			}
		}
		p.accept(lexer.TokenRParen)
		if len(elems) == 1 {
			t = elems[0]
		} else {
			t = atPos(p, start, p.in.PreviousIndex(), &ast.TypeTuple{Args: elems})
		}
	case tok.Type == lexer.TokenUnderscore:
		p.next()
		bounds := p.typeBounds()
		t = atPos(p, start, p.in.PreviousIndex(), &ast.TypeWildcard{Bounds: bounds})
	case tok.Type == lexer.TokenOpIdent && tok.Literal == "?" && p.dialect.AllowQuestionMarkAsTypeWildcard:
		p.next()
		bounds := p.typeBounds()
		t = atPos(p, start, p.in.PreviousIndex(), &ast.TypeWildcard{Bounds: bounds})
	case tok.IsLiteral():
		if !p.dialect.AllowLiteralTypes {
			p.syntaxError(p.dialect.Name+" does not support literal types", tok)
		}
		t = p.literal(false)
	case tok.Type == lexer.TokenOpIdent && tok.Literal == "-" &&
		ahead(p, func() bool { return p.cur().IsLiteral() }):
		if !p.dialect.AllowLiteralTypes {
			p.syntaxError(p.dialect.Name+" does not support literal types", tok)
		}
		p.next()
		t = p.literal(true)
	case tok.IsIdent() || tok.Type == lexer.TokenThis || tok.Type == lexer.TokenSuper:
		t = p.pathType(start)
	default:
		p.syntaxError("type expected but "+tok.Type.String()+" found", tok)
	}
	return p.simpleTypeRest(start, t)
}

func (p *Parser) simpleTypeRest(start int, t ast.Type) ast.Type {
	for {
		switch p.curType() {
		case lexer.TokenHash:
			p.next()
			nameTok := p.cur()
			if !nameTok.IsIdent() {
				p.syntaxErrorExpected(lexer.TokenIdent)
			}
			nameStart := p.start()
			p.next()
			name := done(p, nameStart, &ast.TypeName{Value: nameTok.Literal})
			t = atPos(p, start, p.in.PreviousIndex(), &ast.TypeProject{Qual: t, Name: name})
		case lexer.TokenLBracket:
			args := p.typeArgs()
			t = atPos(p, start, p.in.PreviousIndex(), &ast.TypeApply{Tpe: t, Args: args})
		default:
			return t
		}
	}
}

// pathType parses a (possibly qualified) type path: A, a.B, a.b.type,
// this.T, super[M].T.
func (p *Parser) pathType(start int) ast.Type {
	ref, lastName := p.pathRef()
	// path '.' 'type' → singleton
	if p.at(lexer.TokenDot) {
		isSingleton := ahead(p, func() bool { return p.at(lexer.TokenTypeKw) })
		if isSingleton {
			p.next() // .
			p.next() // type
			return done(p, start, &ast.TypeSingleton{Ref: ref})
		}
	}
	if lastName == nil {
		// this/super with no trailing selection: singleton reference
		return done(p, start, &ast.TypeSingleton{Ref: ref})
	}
	tn := &ast.TypeName{Value: lastName.Value}
	tn.SetOrigin(lastName.Origin())
	switch r := ref.(type) {
	case *ast.TermName:
		if p.inPatternType && isVarPatternText(r.Value) {
			tv := done(p, start, &ast.TypeVar{Name: tn})
			return tv
		}
		return done(p, start, tn)
	case *ast.TermSelect:
		return done(p, start, &ast.TypeSelect{Qual: r.Qual, Name: tn})
	default:
		return done(p, start, &ast.TypeSelect{Qual: ref, Name: tn})
	}
}

// pathRef parses a stable reference as a term: ident{.ident}, this, super.
// Returns the full reference and the final plain name (nil if the path ends
// in this/super).
func (p *Parser) pathRef() (ast.Term, *ast.TermName) {
	start := p.start()
	var ref ast.Term
	var last *ast.TermName

	switch p.curType() {
	case lexer.TokenThis:
		p.next()
		ref = done(p, start, &ast.TermThis{Qual: p.anonName()})
	case lexer.TokenSuper:
		p.next()
		sq := p.mixinQualifierOpt()
		ref = done(p, start, &ast.TermSuper{ThisQual: p.anonName(), SuperQual: sq})
	default:
		tok := p.cur()
		if !tok.IsIdent() {
			p.syntaxErrorExpected(lexer.TokenIdent)
		}
		nameStart := p.start()
		p.next()
		name := done(p, nameStart, &ast.TermName{Value: identValue(tok)})
		// qual.this / qual.super
		if p.at(lexer.TokenDot) {
			kind := ahead(p, func() lexer.TokenType { return p.curType() })
			if kind == lexer.TokenThis {
				p.next()
				p.next()
				qual := &ast.Name{Value: name.Value}
				qual.SetOrigin(name.Origin())
				ref = done(p, start, &ast.TermThis{Qual: qual})
			} else if kind == lexer.TokenSuper {
				p.next()
				p.next()
				qual := &ast.Name{Value: name.Value}
				qual.SetOrigin(name.Origin())
				sq := p.mixinQualifierOpt()
				ref = done(p, start, &ast.TermSuper{ThisQual: qual, SuperQual: sq})
			}
		}
		if ref == nil {
			ref = name
			last = name
		}
	}

	for p.at(lexer.TokenDot) {
		stop := ahead(p, func() bool {
			t := p.cur()
			return !t.IsIdent()
		})
		if stop {
			break
		}
		p.next() // dot
		tok := p.cur()
		nameStart := p.start()
		p.next()
		name := done(p, nameStart, &ast.TermName{Value: identValue(tok)})
		ref = atPos(p, start, p.in.PreviousIndex(), &ast.TermSelect{Qual: ref, Name: name})
		last = name
	}
	return ref, last
}

func (p *Parser) mixinQualifierOpt() *ast.Name {
	if !p.at(lexer.TokenLBracket) {
		return p.anonName()
	}
	p.next()
	tok := p.cur()
	if !tok.IsIdent() {
		p.syntaxErrorExpected(lexer.TokenIdent)
	}
	nameStart := p.start()
	p.next()
	name := done(p, nameStart, &ast.Name{Value: identValue(tok)})
	p.accept(lexer.TokenRBracket)
	return name
}

// anonName builds a zero-width anonymous name at the current position.
func (p *Parser) anonName() *ast.Name {
	n := &ast.Name{}
	idx := p.in.CurrentIndex()
	n.SetOrigin(p.trimmedOrigin(idx, idx-1))
	return n
}

// typeArgs parses [T1, T2, ...].
func (p *Parser) typeArgs() []ast.Type {
	p.accept(lexer.TokenLBracket)
	var args []ast.Type
	for {
		args = append(args, p.typ())
		if !p.acceptOpt(lexer.TokenComma) {
			break
		}
		if p.dialect.AllowTrailingCommas && p.at(lexer.TokenRBracket) {
			break
		}
	}
	p.accept(lexer.TokenRBracket)
	return args
}

// paramType parses a type in parameter position: => T, T, T*.
func (p *Parser) paramType() ast.Type {
	start := p.start()
	if p.acceptOpt(lexer.TokenFatArrow) {
		t := p.typ()
		return done(p, start, &ast.TypeByName{Tpe: t})
	}
	t := p.typ()
	if isRawStar(p.cur()) {
		p.next()
		return done(p, start, &ast.TypeRepeated{Tpe: t})
	}
	return t
}

// typeBounds parses optional >: and <: bounds.
func (p *Parser) typeBounds() *ast.TypeBounds {
	start := p.start()
	var lo, hi ast.Type
	if p.acceptOpt(lexer.TokenSupertype) {
		lo = p.typ()
	}
	if p.acceptOpt(lexer.TokenSubtype) {
		hi = p.typ()
	}
	b := &ast.TypeBounds{Lo: lo, Hi: hi}
	return done(p, start, b)
}

// typeParamClause parses [tparams...].
func (p *Parser) typeParamClause() []*ast.TypeParam {
	p.accept(lexer.TokenLBracket)
	var params []*ast.TypeParam
	for {
		params = append(params, p.typeParam())
		if !p.acceptOpt(lexer.TokenComma) {
			break
		}
		if p.dialect.AllowTrailingCommas && p.at(lexer.TokenRBracket) {
			break
		}
	}
	p.accept(lexer.TokenRBracket)
	return params
}

// typeParamClauseOpt parses a type parameter clause if present.
func (p *Parser) typeParamClauseOpt() []*ast.TypeParam {
	if !p.at(lexer.TokenLBracket) {
		return nil
	}
	return p.typeParamClause()
}

// typeParam parses one type parameter with variance, nested parameters and
// bounds.
func (p *Parser) typeParam() *ast.TypeParam {
	start := p.start()
	var mods []ast.Mod
	for p.at(lexer.TokenAt) {
		mods = append(mods, p.annot())
	}
	tok := p.cur()
	if tok.Type == lexer.TokenOpIdent && (tok.Literal == "+" || tok.Literal == "-") {
		modStart := p.start()
		p.next()
		if tok.Literal == "+" {
			mods = append(mods, done(p, modStart, &ast.ModCovariant{}))
		} else {
			mods = append(mods, done(p, modStart, &ast.ModContravariant{}))
		}
	}
	var name *ast.Name
	nameStart := p.start()
	switch {
	case p.cur().IsIdent():
		tok := p.cur()
		p.next()
		name = done(p, nameStart, &ast.Name{Value: identValue(tok)})
	case p.at(lexer.TokenUnderscore):
		p.next()
		name = done(p, nameStart, &ast.Name{})
	default:
		p.syntaxErrorExpected(lexer.TokenIdent)
	}
	tparams := p.typeParamClauseOpt()
	bounds := p.typeBounds()
	var vbounds, cbounds []ast.Type
	for p.at(lexer.TokenViewBound) {
		if !p.dialect.AllowViewBounds {
			p.syntaxError(p.dialect.Name+" does not support view bounds", p.cur())
		}
		p.next()
		vbounds = append(vbounds, p.typ())
	}
	for p.acceptOpt(lexer.TokenColon) {
		cbounds = append(cbounds, p.typ())
	}
	return done(p, start, &ast.TypeParam{
		Mods:    mods,
		Name:    name,
		Tparams: tparams,
		Bounds:  bounds,
		Vbounds: vbounds,
		Cbounds: cbounds,
	})
}

// typeCaseClauses parses `{ case T => U ... }` or an indented block of
// type cases.
func (p *Parser) typeCaseClauses() []*ast.TypeCase {
	var cases []*ast.TypeCase
	closeWith := lexer.TokenRBrace
	if p.at(lexer.TokenLBrace) {
		p.next()
	} else if p.in.ObserveIndented() {
		p.accept(lexer.TokenIndent)
		closeWith = lexer.TokenOutdent
	} else {
		p.accept(lexer.TokenLBrace)
	}
	p.newlinesOpt()
	for p.at(lexer.TokenCase) {
		start := p.start()
		p.next()
		pat := p.infixType()
		p.accept(lexer.TokenFatArrow)
		body := p.typ()
		cases = append(cases, done(p, start, &ast.TypeCase{Pat: pat, Body: body}))
		p.acceptStatSepOpt()
		p.newlinesOpt()
		if closeWith == lexer.TokenOutdent {
			p.in.ObserveOutdented()
		}
		if p.at(closeWith) {
			break
		}
	}
	if len(cases) == 0 {
		p.syntaxError("match type requires cases", p.cur())
	}
	if closeWith == lexer.TokenOutdent {
		p.in.ObserveOutdented()
	}
	p.accept(closeWith)
	return cases
}

// refineStats parses the declaration statements of a structural
// refinement.
func (p *Parser) refineStats() []ast.Stat {
	var stats []ast.Stat
	p.newlinesOpt()
	for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
		if !p.isDclIntro(p.cur()) {
			p.syntaxError("declaration expected in refinement", p.cur())
		}
		stats = append(stats, p.defOrDcl(nil))
		p.acceptStatSepOpt()
		p.newlinesOpt()
	}
	return stats
}

// existentialStats parses the declarations of a forSome clause.
func (p *Parser) existentialStats() []ast.Stat {
	var stats []ast.Stat
	p.newlinesOpt()
	for p.at(lexer.TokenVal) || p.at(lexer.TokenTypeKw) {
		stats = append(stats, p.defOrDcl(nil))
		p.acceptStatSepOpt()
		p.newlinesOpt()
	}
	if len(stats) == 0 {
		p.syntaxError("existential type requires declarations", p.cur())
	}
	return stats
}

// identValue extracts the identifier text, using the decoded payload for
// backquoted identifiers.
func identValue(tok lexer.Token) string {
	if tok.Type == lexer.TokenBackquotedIdent {
		return tok.Payload
	}
	return tok.Literal
}

// isVarPatternText reports whether a name in pattern-type position is a
// type variable.
func isVarPatternText(s string) bool {
	if s == "" {
		return false
	}
	r := rune(s[0])
	return r == '_' || (r >= 'a' && r <= 'z')
}
