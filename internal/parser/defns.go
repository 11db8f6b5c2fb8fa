package parser

import (
	"fmt"

	"github.com/orizon-lang/aster/internal/ast"
	"github.com/orizon-lang/aster/internal/lexer"
)

// Definition grammar: modifiers, val/var/def/type, class-likes, givens,
// extensions, imports/exports, end markers, and the statement sequences
// that host them.

// ---- annotations and modifiers ----

// annot parses one @init annotation.
func (p *Parser) annot() ast.Mod {
	start := p.start()
	p.accept(lexer.TokenAt)
	init := p.initCall()
	return done(p, start, &ast.ModAnnot{Init: init})
}

// annots parses a run of annotations. When skipNewlines is set, statement
// separators after each annotation are consumed, as in definition position.
func (p *Parser) annots(skipNewlines bool) []ast.Mod {
	var out []ast.Mod
	for p.at(lexer.TokenAt) {
		out = append(out, p.annot())
		if skipNewlines {
			p.newlinesOpt()
		}
	}
	return out
}

// modKind names a modifier for duplicate and conflict checking.
func modKind(m ast.Mod) string {
	switch m.(type) {
	case *ast.ModAbstract:
		return "abstract"
	case *ast.ModFinal:
		return "final"
	case *ast.ModSealed:
		return "sealed"
	case *ast.ModOpen:
		return "open"
	case *ast.ModImplicit:
		return "implicit"
	case *ast.ModLazy:
		return "lazy"
	case *ast.ModOverride:
		return "override"
	case *ast.ModPrivate:
		return "private"
	case *ast.ModProtected:
		return "protected"
	case *ast.ModCase:
		return "case"
	case *ast.ModInline:
		return "inline"
	case *ast.ModInfix:
		return "infix"
	case *ast.ModOpaque:
		return "opaque"
	case *ast.ModTransparent:
		return "transparent"
	case *ast.ModErased:
		return "erased"
	case *ast.ModUsing:
		return "using"
	}
	return ""
}

// illegalModCombinations is the fixed table of mutually exclusive modifier
// pairs.
var illegalModCombinations = [][2]string{
	{"final", "abstract"},
	{"final", "sealed"},
	{"open", "final"},
	{"open", "sealed"},
	{"private", "protected"},
	{"case", "implicit"},
	{"override", "abstract"},
	{"transparent", "opaque"},
}

// validateMods rejects repeated modifiers and illegal combinations.
func (p *Parser) validateMods(mods []ast.Mod, at lexer.Token) {
	seen := map[string]bool{}
	for _, m := range mods {
		kind := modKind(m)
		if kind == "" {
			continue
		}
		if seen[kind] {
			p.syntaxError("repeated modifier", at)
		}
		seen[kind] = true
	}
	for _, pair := range illegalModCombinations {
		if seen[pair[0]] && seen[pair[1]] {
			p.syntaxError(fmt.Sprintf("illegal combination of modifiers: %s and %s", pair[0], pair[1]), at)
		}
	}
}

// modifiers collects annotations and modifier keywords in definition
// position. isLocal restricts the set to local modifiers.
func (p *Parser) modifiers(isLocal bool) []ast.Mod {
	var mods []ast.Mod
	for {
		tok := p.cur()
		start := p.start()
		switch {
		case tok.Type == lexer.TokenAt:
			// An annotation directly on a definition; interleaving after
			// keyword modifiers is accepted the way the grammar is written.
			mods = append(mods, p.annot())
			p.newlinesOpt()
			continue
		case tok.Type == lexer.TokenAbstract:
			p.next()
			mods = append(mods, done(p, start, &ast.ModAbstract{}))
		case tok.Type == lexer.TokenFinal:
			p.next()
			mods = append(mods, done(p, start, &ast.ModFinal{}))
		case tok.Type == lexer.TokenSealed:
			p.next()
			mods = append(mods, done(p, start, &ast.ModSealed{}))
		case tok.Type == lexer.TokenImplicit:
			p.next()
			mods = append(mods, done(p, start, &ast.ModImplicit{}))
		case tok.Type == lexer.TokenLazy:
			p.next()
			mods = append(mods, done(p, start, &ast.ModLazy{}))
		case tok.Type == lexer.TokenOverride && !isLocal:
			p.next()
			mods = append(mods, done(p, start, &ast.ModOverride{}))
		case tok.Type == lexer.TokenPrivate && !isLocal:
			p.next()
			mods = append(mods, done(p, start, &ast.ModPrivate{Within: p.accessQualifierOpt()}))
		case tok.Type == lexer.TokenProtected && !isLocal:
			p.next()
			mods = append(mods, done(p, start, &ast.ModProtected{Within: p.accessQualifierOpt()}))
		case p.isSoft(tok, kwOpen):
			if !p.modifierFollows() {
				return mods
			}
			p.next()
			mods = append(mods, done(p, start, &ast.ModOpen{}))
		case p.isSoft(tok, kwOpaque):
			if !p.modifierFollows() {
				return mods
			}
			p.next()
			mods = append(mods, done(p, start, &ast.ModOpaque{}))
		case p.isSoft(tok, kwInline):
			if !p.modifierFollows() {
				return mods
			}
			p.next()
			mods = append(mods, done(p, start, &ast.ModInline{}))
		case p.isSoft(tok, kwInfixMod):
			if !p.modifierFollows() {
				return mods
			}
			p.next()
			mods = append(mods, done(p, start, &ast.ModInfix{}))
		case p.isSoft(tok, kwTransparent):
			if !p.modifierFollows() {
				return mods
			}
			p.next()
			mods = append(mods, done(p, start, &ast.ModTransparent{}))
		case p.isSoft(tok, kwErased):
			if !p.modifierFollows() {
				return mods
			}
			p.next()
			mods = append(mods, done(p, start, &ast.ModErased{}))
		default:
			return mods
		}
		p.newlinesOpt()
	}
}

// modifierFollows decides whether a soft keyword acts as a modifier here:
// another modifier or a definition keyword must follow.
func (p *Parser) modifierFollows() bool {
	return ahead(p, func() bool {
		t := p.cur()
		return p.isDefIntro(t) || p.isModifier(t)
	})
}

func (p *Parser) accessQualifierOpt() *ast.Name {
	if !p.at(lexer.TokenLBracket) {
		return p.anonName()
	}
	p.next()
	start := p.start()
	var name *ast.Name
	switch {
	case p.at(lexer.TokenThis):
		p.next()
		name = done(p, start, &ast.Name{Value: "this"})
	case p.cur().IsIdent():
		tok := p.cur()
		p.next()
		name = done(p, start, &ast.Name{Value: identValue(tok)})
	default:
		p.syntaxErrorExpected(lexer.TokenIdent)
	}
	p.accept(lexer.TokenRBracket)
	return name
}

// ---- parameters ----

// paramClauses parses zero or more value parameter clauses. ownerIsType
// enables val/var parameters (class primary constructors).
func (p *Parser) paramClauses(ownerIsType bool) [][]*ast.TermParam {
	var clauses [][]*ast.TermParam
	for p.at(lexer.TokenLParen) {
		clauses = append(clauses, p.paramClause(ownerIsType))
	}
	return clauses
}

func (p *Parser) paramClause(ownerIsType bool) []*ast.TermParam {
	p.accept(lexer.TokenLParen)
	if p.acceptOpt(lexer.TokenRParen) {
		return []*ast.TermParam{}
	}

	var clauseMods []ast.Mod
	switch {
	case p.at(lexer.TokenImplicit):
		start := p.start()
		p.next()
		clauseMods = append(clauseMods, done(p, start, &ast.ModImplicit{}))
	case p.isSoft(p.cur(), kwUsing):
		start := p.start()
		p.next()
		clauseMods = append(clauseMods, done(p, start, &ast.ModUsing{}))
	}

	var params []*ast.TermParam
	for {
		params = append(params, p.param(ownerIsType, clauseMods))
		if !p.acceptOpt(lexer.TokenComma) {
			break
		}
		if p.dialect.AllowTrailingCommas && p.at(lexer.TokenRParen) {
			break
		}
	}
	p.accept(lexer.TokenRParen)
	return params
}

func (p *Parser) param(ownerIsType bool, clauseMods []ast.Mod) *ast.TermParam {
	start := p.start()
	if len(clauseMods) > 0 {
		// The shared implicit/using modifier sits on the clause keyword, so
		// each parameter of the clause spans from that keyword.
		start = clauseMods[0].Origin().StartToken
	}
	mods := append([]ast.Mod{}, clauseMods...)
	mods = append(mods, p.annots(false)...)
	if ownerIsType {
		mods = append(mods, p.modifiers(false)...)
	}
	switch {
	case p.at(lexer.TokenVal):
		if !ownerIsType {
			p.syntaxError("val parameters are only allowed on constructors", p.cur())
		}
		modStart := p.start()
		p.next()
		mods = append(mods, done(p, modStart, &ast.ModValParam{}))
	case p.at(lexer.TokenVar):
		if !ownerIsType {
			p.syntaxError("var parameters are only allowed on constructors", p.cur())
		}
		modStart := p.start()
		p.next()
		mods = append(mods, done(p, modStart, &ast.ModVarParam{}))
	}

	nameStart := p.start()
	var name *ast.Name
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

	var tpe ast.Type
	if p.acceptOpt(lexer.TokenColon) {
		tpe = p.paramType()
	}
	var def ast.Term
	if p.acceptOpt(lexer.TokenEq) {
		def = p.expr(NoStat, false)
	}
	return done(p, start, &ast.TermParam{Mods: mods, Name: name, Tpe: tpe, Default: def})
}

// ---- val / var / def / type ----

// defOrDcl parses a definition or declaration after its modifiers.
func (p *Parser) defOrDcl(mods []ast.Mod) ast.Stat {
	at := p.cur()
	p.validateMods(mods, at)
	switch p.curType() {
	case lexer.TokenVal, lexer.TokenVar:
		return p.patDefOrDcl(mods)
	case lexer.TokenDef:
		return p.funDefOrDcl(mods)
	case lexer.TokenTypeKw:
		return p.typeDefOrDcl(mods)
	case lexer.TokenGiven:
		return p.givenDecl(mods)
	}
	p.syntaxError("definition or declaration expected", p.cur())
	return nil
}

// patDefOrDcl parses val/var definitions and declarations.
func (p *Parser) patDefOrDcl(mods []ast.Mod) ast.Stat {
	start := firstModStart(p, mods)
	isVar := p.at(lexer.TokenVar)
	p.next()

	var pats []ast.Pat
	for {
		pats = append(pats, p.pattern2(InPatternNoSeq))
		if !p.acceptOpt(lexer.TokenComma) {
			break
		}
	}

	var tpe ast.Type
	if p.acceptOpt(lexer.TokenColon) {
		tpe = p.typ()
	}

	if p.acceptOpt(lexer.TokenEq) {
		// var x: T = _ keeps the default initializer.
		if isVar && p.at(lexer.TokenUnderscore) && tpe != nil {
			isWildcardInit := ahead(p, func() bool { return p.isStatSep() || p.isStatSeqEnd(p.cur()) })
			if isWildcardInit {
				p.next()
				return done(p, start, &ast.DefnVar{Mods: mods, Pats: pats, Tpe: tpe, Rhs: nil})
			}
		}
		var rhs ast.Term
		if p.in.ObserveIndented() {
			rhs = p.indentedExprBlock()
		} else {
			rhs = p.expr(NoStat, false)
		}
		if isVar {
			return done(p, start, &ast.DefnVar{Mods: mods, Pats: pats, Tpe: tpe, Rhs: rhs})
		}
		return done(p, start, &ast.DefnVal{Mods: mods, Pats: pats, Tpe: tpe, Rhs: rhs})
	}

	// Declaration: every pattern must be a plain name and a type is
	// mandatory.
	if tpe == nil {
		p.syntaxErrorExpected(lexer.TokenEq)
	}
	for _, pat := range pats {
		switch pat.(type) {
		case *ast.PatVar, *ast.Quasi:
		default:
			p.syntaxError("pattern definition may not be abstract", p.cur())
		}
	}
	if isVar {
		return done(p, start, &ast.DeclVar{Mods: mods, Pats: pats, Tpe: tpe})
	}
	return done(p, start, &ast.DeclVal{Mods: mods, Pats: pats, Tpe: tpe})
}

// funDefOrDcl parses def definitions, declarations and macro defs.
func (p *Parser) funDefOrDcl(mods []ast.Mod) ast.Stat {
	start := firstModStart(p, mods)
	p.accept(lexer.TokenDef)

	nameTok := p.cur()
	if !nameTok.IsIdent() {
		p.syntaxErrorExpected(lexer.TokenIdent)
	}
	nameStart := p.start()
	p.next()
	name := done(p, nameStart, &ast.TermName{Value: identValue(nameTok)})

	return p.funDefRest(start, mods, name)
}

// funDefRest parses everything of a method definition after its name.
func (p *Parser) funDefRest(start int, mods []ast.Mod, name *ast.TermName) ast.Stat {
	tparams := p.typeParamClauseOpt()
	paramss := p.paramClauses(false)

	var tpe ast.Type
	if p.acceptOpt(lexer.TokenColon) {
		tpe = p.typ()
	}

	switch {
	case p.acceptOpt(lexer.TokenEq):
		if p.at(lexer.TokenMacro) {
			p.next()
			body := p.expr(NoStat, false)
			return done(p, start, &ast.DefnMacro{Mods: mods, Name: name, Tparams: tparams, Paramss: paramss, Tpe: tpe, Body: body})
		}
		var body ast.Term
		if p.in.ObserveIndented() {
			body = p.indentedExprBlock()
		} else {
			body = p.expr(NoStat, false)
		}
		return done(p, start, &ast.DefnDef{Mods: mods, Name: name, Tparams: tparams, Paramss: paramss, Tpe: tpe, Body: body})

	case p.at(lexer.TokenLBrace) && tpe == nil:
		// Procedure syntax: def f { ... } gets a synthesized Unit result.
		if p.dialect.AllowProcedureSyntax {
			p.deprecationWarning("procedure syntax is deprecated: add `: Unit =` to explicitly declare the result type", p.cur())
		} else {
			p.syntaxError(p.dialect.Name+" does not support procedure syntax", p.cur())
		}
		unit := atPos(p, p.start(), p.start()-1, &ast.TypeName{Value: "Unit"})
		body := p.blockExpr()
		return done(p, start, &ast.DefnDef{Mods: mods, Name: name, Tparams: tparams, Paramss: paramss, Tpe: unit, Body: body})

	default:
		if tpe == nil {
			p.syntaxErrorExpected(lexer.TokenEq)
		}
		return done(p, start, &ast.DeclDef{Mods: mods, Name: name, Tparams: tparams, Paramss: paramss, Tpe: tpe})
	}
}

// typeDefOrDcl parses type aliases and abstract type members.
func (p *Parser) typeDefOrDcl(mods []ast.Mod) ast.Stat {
	start := firstModStart(p, mods)
	p.accept(lexer.TokenTypeKw)
	p.newlinesOpt()

	nameTok := p.cur()
	if !nameTok.IsIdent() {
		p.syntaxErrorExpected(lexer.TokenIdent)
	}
	nameStart := p.start()
	p.next()
	name := done(p, nameStart, &ast.TypeName{Value: identValue(nameTok)})

	tparams := p.typeParamClauseOpt()
	bounds := p.typeBounds()

	if p.acceptOpt(lexer.TokenEq) {
		body := p.typ()
		return done(p, start, &ast.DefnType{Mods: mods, Name: name, Tparams: tparams, Bounds: bounds, Body: body})
	}
	return done(p, start, &ast.DeclType{Mods: mods, Name: name, Tparams: tparams, Bounds: bounds})
}

// ---- class-likes ----

// tmplDef parses class, trait, object, enum and case variants after their
// modifiers.
func (p *Parser) tmplDef(mods []ast.Mod) ast.Stat {
	switch p.curType() {
	case lexer.TokenCase:
		caseStart := p.start()
		isClass := ahead(p, func() bool { return p.at(lexer.TokenClass) })
		isObject := ahead(p, func() bool { return p.at(lexer.TokenObject) })
		if !isClass && !isObject {
			p.syntaxError("class or object expected after case", p.cur())
		}
		p.next()
		mods = append(mods, atPos(p, caseStart, caseStart, &ast.ModCase{}))
		if isClass {
			return p.classDef(mods, true)
		}
		return p.objectDef(mods)
	case lexer.TokenClass:
		return p.classDef(mods, false)
	case lexer.TokenTrait:
		return p.traitDef(mods)
	case lexer.TokenObject:
		return p.objectDef(mods)
	case lexer.TokenEnum:
		return p.enumDef(mods)
	}
	p.syntaxError("expected start of definition", p.cur())
	return nil
}

func (p *Parser) classDef(mods []ast.Mod, isCase bool) ast.Stat {
	start := firstModStart(p, mods)
	p.validateMods(mods, p.cur())
	p.accept(lexer.TokenClass)

	name := p.typeNameHere()
	tparams := p.typeParamClauseOpt()
	owner := OwnerClass
	if isCase {
		owner = OwnerCaseClass
	}
	ctor := p.primaryCtor(owner)
	templ := p.templateOpt(owner)
	return done(p, start, &ast.DefnClass{Mods: mods, Name: name, Tparams: tparams, Ctor: ctor, Templ: templ})
}

func (p *Parser) traitDef(mods []ast.Mod) ast.Stat {
	start := firstModStart(p, mods)
	p.validateMods(mods, p.cur())
	p.accept(lexer.TokenTrait)

	name := p.typeNameHere()
	tparams := p.typeParamClauseOpt()
	if p.at(lexer.TokenLParen) && !p.dialect.AllowTraitParameters {
		p.syntaxError(p.dialect.Name+" does not support trait parameters", p.cur())
	}
	ctor := p.primaryCtor(OwnerTrait)
	templ := p.templateOpt(OwnerTrait)
	return done(p, start, &ast.DefnTrait{Mods: mods, Name: name, Tparams: tparams, Ctor: ctor, Templ: templ})
}

func (p *Parser) objectDef(mods []ast.Mod) ast.Stat {
	start := firstModStart(p, mods)
	p.validateMods(mods, p.cur())
	p.accept(lexer.TokenObject)

	nameTok := p.cur()
	if !nameTok.IsIdent() {
		p.syntaxErrorExpected(lexer.TokenIdent)
	}
	nameStart := p.start()
	p.next()
	name := done(p, nameStart, &ast.TermName{Value: identValue(nameTok)})
	templ := p.templateOpt(OwnerObject)
	return done(p, start, &ast.DefnObject{Mods: mods, Name: name, Templ: templ})
}

func (p *Parser) enumDef(mods []ast.Mod) ast.Stat {
	if !p.dialect.AllowEnums {
		p.syntaxError(p.dialect.Name+" does not support enums", p.cur())
	}
	start := firstModStart(p, mods)
	p.validateMods(mods, p.cur())
	p.accept(lexer.TokenEnum)

	name := p.typeNameHere()
	tparams := p.typeParamClauseOpt()
	ctor := p.primaryCtor(OwnerEnum)
	templ := p.templateOpt(OwnerEnum)
	return done(p, start, &ast.DefnEnum{Mods: mods, Name: name, Tparams: tparams, Ctor: ctor, Templ: templ})
}

func (p *Parser) typeNameHere() *ast.TypeName {
	tok := p.cur()
	if !tok.IsIdent() {
		p.syntaxErrorExpected(lexer.TokenIdent)
	}
	start := p.start()
	p.next()
	return done(p, start, &ast.TypeName{Value: identValue(tok)})
}

// primaryCtor parses the primary constructor: access modifiers plus value
// parameter clauses.
func (p *Parser) primaryCtor(owner TemplateOwner) *ast.CtorPrimary {
	start := p.start()
	var mods []ast.Mod
	mods = append(mods, p.annots(false)...)
	switch p.curType() {
	case lexer.TokenPrivate:
		modStart := p.start()
		p.next()
		mods = append(mods, done(p, modStart, &ast.ModPrivate{Within: p.accessQualifierOpt()}))
	case lexer.TokenProtected:
		modStart := p.start()
		p.next()
		mods = append(mods, done(p, modStart, &ast.ModProtected{Within: p.accessQualifierOpt()}))
	}
	var paramss [][]*ast.TermParam
	if owner != OwnerObject {
		paramss = p.paramClauses(true)
	}
	name := p.anonName()
	return done(p, start, &ast.CtorPrimary{Mods: mods, Name: name, Paramss: paramss})
}

// enumCaseDef parses one enum case (simple, parameterized, or repeated).
func (p *Parser) enumCaseDef(mods []ast.Mod) ast.Stat {
	start := firstModStart(p, mods)
	p.accept(lexer.TokenCase)

	nameTok := p.cur()
	if !nameTok.IsIdent() {
		p.syntaxErrorExpected(lexer.TokenIdent)
	}
	nameStart := p.start()
	p.next()
	name := done(p, nameStart, &ast.TermName{Value: identValue(nameTok)})

	// case A, B, C
	if p.at(lexer.TokenComma) {
		names := []*ast.TermName{name}
		for p.acceptOpt(lexer.TokenComma) {
			tok := p.cur()
			if !tok.IsIdent() {
				p.syntaxErrorExpected(lexer.TokenIdent)
			}
			nStart := p.start()
			p.next()
			names = append(names, done(p, nStart, &ast.TermName{Value: identValue(tok)}))
		}
		return done(p, start, &ast.DefnRepeatedEnumCase{Mods: mods, Cases: names})
	}

	tparams := p.typeParamClauseOpt()
	var ctor *ast.CtorPrimary
	ctorStart := p.start()
	paramss := p.paramClauses(true)
	ctor = atPos(p, ctorStart, p.in.PreviousIndex(), &ast.CtorPrimary{Name: p.anonName(), Paramss: paramss})

	var inits []*ast.Init
	if p.acceptOpt(lexer.TokenExtends) {
		for {
			inits = append(inits, p.initCall())
			if !p.acceptOpt(lexer.TokenWith) {
				break
			}
		}
	}
	return done(p, start, &ast.DefnEnumCase{Mods: mods, Name: name, Tparams: tparams, Ctor: ctor, Inits: inits})
}

// ---- givens ----

// givenDecl parses given definitions, aliases and declarations. The header
// `[name] [tparams] [using clauses] :` is recognized speculatively; on
// failure the cursor rewinds and the anonymous form is parsed.
func (p *Parser) givenDecl(mods []ast.Mod) ast.Stat {
	if !p.dialect.AllowGivenUsing {
		p.syntaxError(p.dialect.Name+" does not support given definitions", p.cur())
	}
	start := firstModStart(p, mods)
	p.accept(lexer.TokenGiven)

	type header struct {
		name    *ast.Name
		tparams []*ast.TypeParam
		sparams [][]*ast.TermParam
	}

	hdr, ok := tryParse(p, func() header {
		var h header
		if p.cur().Type == lexer.TokenIdent {
			nameStart := p.start()
			tok := p.cur()
			p.next()
			h.name = done(p, nameStart, &ast.Name{Value: identValue(tok)})
		} else {
			h.name = p.anonName()
		}
		h.tparams = p.typeParamClauseOpt()
		for p.at(lexer.TokenLParen) {
			clause := p.paramClause(false)
			usingOK := len(clause) > 0 && hasUsingMod(clause[0].Mods)
			if !usingOK {
				p.syntaxError("given parameters must be using clauses", p.cur())
			}
			h.sparams = append(h.sparams, clause)
		}
		p.accept(lexer.TokenColon)
		return h
	})
	if !ok {
		hdr = header{name: p.anonName()}
	}

	tpe := p.startGivenType()

	switch {
	case p.at(lexer.TokenWith):
		p.next()
		templ := p.givenTemplate(tpe)
		return done(p, start, &ast.DefnGiven{Mods: mods, Name: hdr.name, Tparams: hdr.tparams, Sparams: hdr.sparams, Templ: templ})
	case p.acceptOpt(lexer.TokenEq):
		var rhs ast.Term
		if p.in.ObserveIndented() {
			rhs = p.indentedExprBlock()
		} else {
			rhs = p.expr(NoStat, false)
		}
		return done(p, start, &ast.DefnGivenAlias{Mods: mods, Name: hdr.name, Tparams: hdr.tparams, Sparams: hdr.sparams, Tpe: tpe, Rhs: rhs})
	default:
		if hdr.name.IsAnonymous() {
			p.syntaxError("anonymous given cannot be abstract", p.cur())
		}
		return done(p, start, &ast.DeclGiven{Mods: mods, Name: hdr.name, Tparams: hdr.tparams, Sparams: hdr.sparams, Tpe: tpe})
	}
}

// startGivenType parses the declared type of a given, stopping before a
// `with` that opens the template body.
func (p *Parser) startGivenType() ast.Type {
	start := p.start()
	t := p.annotType()
	t = p.infixTypeRest(start, t, 0)
	return t
}

// givenTemplate parses the structural body of a given after `with`,
// wiring the declared type in as the parent init.
func (p *Parser) givenTemplate(parent ast.Type) *ast.Template {
	start := parent.Origin().StartToken
	init := &ast.Init{Tpe: parent, Name: p.anonName()}
	init.SetOrigin(parent.Origin())
	templ := p.templateBody(OwnerGiven)
	templ.Inits = []*ast.Init{init}
	return atPos(p, start, p.in.PreviousIndex(), templ)
}

func hasUsingMod(mods []ast.Mod) bool {
	for _, m := range mods {
		switch m.(type) {
		case *ast.ModUsing, *ast.ModImplicit:
			return true
		}
	}
	return false
}

// extensionGroupDecl parses `extension [tparams] (param) { defs }`.
func (p *Parser) extensionGroupDecl() ast.Stat {
	start := p.start()
	p.next() // the `extension` soft keyword

	tparams := p.typeParamClauseOpt()
	var paramss [][]*ast.TermParam
	for p.at(lexer.TokenLParen) {
		paramss = append(paramss, p.paramClause(false))
	}

	p.newlineOptWhenFollowing(lexer.TokenLBrace)
	var body ast.Stat
	switch {
	case p.at(lexer.TokenLBrace):
		bodyStart := p.start()
		p.accept(lexer.TokenLBrace)
		p.newlinesOpt()
		var stats []ast.Stat
		for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
			mods := p.modifiers(false)
			stats = append(stats, p.defOrDcl(mods))
			p.acceptStatSepOpt()
			p.newlinesOpt()
		}
		p.accept(lexer.TokenRBrace)
		block := atPos(p, bodyStart, p.in.PreviousIndex(), &ast.TermBlock{Stats: stats})
		body = block
	case p.in.ObserveIndented():
		bodyStart := p.start()
		p.accept(lexer.TokenIndent)
		var stats []ast.Stat
		for !p.at(lexer.TokenOutdent) && !p.at(lexer.TokenEOF) {
			p.newlinesOpt()
			mods := p.modifiers(false)
			stats = append(stats, p.defOrDcl(mods))
			p.acceptStatSepOpt()
			p.in.ObserveOutdented()
		}
		p.accept(lexer.TokenOutdent)
		body = atPos(p, bodyStart, p.in.PreviousIndex(), &ast.TermBlock{Stats: stats})
	default:
		mods := p.modifiers(false)
		body = p.defOrDcl(mods)
	}
	return done(p, start, &ast.DefnExtensionGroup{Tparams: tparams, Paramss: paramss, Body: body})
}

// ---- import / export ----

func (p *Parser) importStmt() ast.Stat {
	start := p.start()
	p.accept(lexer.TokenImport)
	importers := p.importers()
	return done(p, start, &ast.Import{Importers: importers})
}

func (p *Parser) exportStmt() ast.Stat {
	if !p.dialect.AllowExportClause {
		p.syntaxError(p.dialect.Name+" does not support export clauses", p.cur())
	}
	start := p.start()
	p.accept(lexer.TokenExport)
	importers := p.importers()
	return done(p, start, &ast.Export{Importers: importers})
}

func (p *Parser) importers() []*ast.Importer {
	var importers []*ast.Importer
	for {
		importers = append(importers, p.importer())
		if !p.acceptOpt(lexer.TokenComma) {
			break
		}
	}
	return importers
}

// importer parses ref.importees, accumulating the stable prefix until the
// final selector.
func (p *Parser) importer() *ast.Importer {
	start := p.start()
	tok := p.cur()
	if !tok.IsIdent() && tok.Type != lexer.TokenThis {
		p.syntaxErrorExpected(lexer.TokenIdent)
	}

	var ref ast.Term
	if tok.Type == lexer.TokenThis {
		p.next()
		ref = done(p, start, &ast.TermThis{Qual: p.anonName()})
	} else {
		nameStart := p.start()
		p.next()
		name := done(p, nameStart, &ast.TermName{Value: identValue(tok)})
		ref = name
	}

	for {
		// `import a as b` (no dot) renames the head itself.
		if p.isSoft(p.cur(), kwAs) && p.dialect.AllowAsForImportRename {
			if name, isName := ref.(*ast.TermName); isName {
				importee := p.renameImportee(name)
				anon := p.anonName()
				refAnon := &ast.TermName{Value: ""}
				refAnon.SetOrigin(anon.Origin())
				return done(p, start, &ast.Importer{Ref: refAnon, Importees: []ast.Importee{importee}})
			}
		}
		if !p.at(lexer.TokenDot) {
			// A bare path imports its last name.
			sel, lastName := splitLastSelect(ref)
			if lastName == nil {
				p.syntaxErrorExpected(lexer.TokenDot)
			}
			n := &ast.Name{Value: lastName.Value}
			n.SetOrigin(lastName.Origin())
			importee := &ast.ImporteeName{Name: n}
			importee.SetOrigin(lastName.Origin())
			return done(p, start, &ast.Importer{Ref: sel, Importees: []ast.Importee{importee}})
		}
		p.next() // dot
		switch {
		case p.at(lexer.TokenUnderscore):
			p.next()
			w := atPos(p, p.in.PreviousIndex(), p.in.PreviousIndex(), &ast.ImporteeWildcard{})
			return done(p, start, &ast.Importer{Ref: ref, Importees: []ast.Importee{w}})
		case isRawStar(p.cur()) && p.dialect.AllowStarWildcardImport:
			p.next()
			w := atPos(p, p.in.PreviousIndex(), p.in.PreviousIndex(), &ast.ImporteeWildcard{})
			return done(p, start, &ast.Importer{Ref: ref, Importees: []ast.Importee{w}})
		case p.at(lexer.TokenGiven) && p.dialect.AllowGivenImports:
			p.next()
			var imp ast.Importee
			if p.isTypeIntro(p.cur()) && !p.isStatSep() {
				gStart := p.in.PreviousIndex()
				tpe := p.infixType()
				imp = atPos(p, gStart, p.in.PreviousIndex(), &ast.ImporteeGiven{Tpe: tpe})
			} else {
				imp = atPos(p, p.in.PreviousIndex(), p.in.PreviousIndex(), &ast.ImporteeGivenAll{})
			}
			return done(p, start, &ast.Importer{Ref: ref, Importees: []ast.Importee{imp}})
		case p.at(lexer.TokenLBrace):
			importees := p.importees()
			return done(p, start, &ast.Importer{Ref: ref, Importees: importees})
		case p.cur().IsIdent():
			tok := p.cur()
			nameStart := p.start()
			p.next()
			// Continue the stable prefix when another dot follows.
			if p.at(lexer.TokenDot) || (p.isSoft(p.cur(), kwAs) && p.dialect.AllowAsForImportRename) {
				name := done(p, nameStart, &ast.TermName{Value: identValue(tok)})
				if p.isSoft(p.cur(), kwAs) {
					importee := p.renameImportee(name)
					return done(p, start, &ast.Importer{Ref: ref, Importees: []ast.Importee{importee}})
				}
				ref = atPos(p, start, p.in.PreviousIndex(), &ast.TermSelect{Qual: ref, Name: name})
				continue
			}
			n := done(p, nameStart, &ast.Name{Value: identValue(tok)})
			importee := atPos(p, nameStart, p.in.PreviousIndex(), &ast.ImporteeName{Name: n})
			return done(p, start, &ast.Importer{Ref: ref, Importees: []ast.Importee{importee}})
		default:
			p.syntaxErrorExpected(lexer.TokenIdent)
		}
	}
}

// renameImportee parses `name as rename` with the name already consumed.
func (p *Parser) renameImportee(name *ast.TermName) ast.Importee {
	start := name.Origin().StartToken
	p.next() // as
	from := &ast.Name{Value: name.Value}
	from.SetOrigin(name.Origin())
	if p.acceptOpt(lexer.TokenUnderscore) {
		return atPos(p, start, p.in.PreviousIndex(), &ast.ImporteeUnimport{Name: from})
	}
	tok := p.cur()
	if !tok.IsIdent() {
		p.syntaxErrorExpected(lexer.TokenIdent)
	}
	toStart := p.start()
	p.next()
	to := done(p, toStart, &ast.Name{Value: identValue(tok)})
	return atPos(p, start, p.in.PreviousIndex(), &ast.ImporteeRename{Name: from, Rename: to})
}

// importees parses { sel1, sel2, ... }.
func (p *Parser) importees() []ast.Importee {
	p.accept(lexer.TokenLBrace)
	var out []ast.Importee
	for {
		out = append(out, p.importee())
		if !p.acceptOpt(lexer.TokenComma) {
			break
		}
	}
	p.accept(lexer.TokenRBrace)
	return out
}

func (p *Parser) importee() ast.Importee {
	start := p.start()
	switch {
	case p.at(lexer.TokenUnderscore):
		p.next()
		return done(p, start, &ast.ImporteeWildcard{})
	case isRawStar(p.cur()) && p.dialect.AllowStarWildcardImport:
		p.next()
		return done(p, start, &ast.ImporteeWildcard{})
	case p.at(lexer.TokenGiven) && p.dialect.AllowGivenImports:
		p.next()
		if p.isTypeIntro(p.cur()) && !p.at(lexer.TokenComma) && !p.at(lexer.TokenRBrace) {
			tpe := p.infixType()
			return done(p, start, &ast.ImporteeGiven{Tpe: tpe})
		}
		return done(p, start, &ast.ImporteeGivenAll{})
	case p.cur().IsIdent():
		tok := p.cur()
		nameStart := p.start()
		p.next()
		name := done(p, nameStart, &ast.Name{Value: identValue(tok)})
		if p.at(lexer.TokenFatArrow) || (p.isSoft(p.cur(), kwAs) && p.dialect.AllowAsForImportRename) {
			p.next()
			if p.acceptOpt(lexer.TokenUnderscore) {
				return done(p, start, &ast.ImporteeUnimport{Name: name})
			}
			toTok := p.cur()
			if !toTok.IsIdent() {
				p.syntaxErrorExpected(lexer.TokenIdent)
			}
			toStart := p.start()
			p.next()
			to := done(p, toStart, &ast.Name{Value: identValue(toTok)})
			return done(p, start, &ast.ImporteeRename{Name: name, Rename: to})
		}
		return done(p, start, &ast.ImporteeName{Name: name})
	}
	p.syntaxError("import selector expected", p.cur())
	return nil
}

// splitLastSelect splits a select chain into its prefix and final name.
func splitLastSelect(ref ast.Term) (ast.Term, *ast.TermName) {
	switch r := ref.(type) {
	case *ast.TermSelect:
		return r.Qual, r.Name
	case *ast.TermName:
		return r, r
	}
	return ref, nil
}

// ---- end markers ----

// endMarkerOpt parses `end name` when the dialect allows it.
func (p *Parser) endMarkerOpt() ast.Stat {
	if !p.isSoft(p.cur(), kwEnd) {
		return nil
	}
	follows := ahead(p, func() bool {
		t := p.cur()
		if t.IsIdent() {
			return true
		}
		switch t.Type {
		case lexer.TokenIf, lexer.TokenWhile, lexer.TokenFor, lexer.TokenMatch,
			lexer.TokenTry, lexer.TokenNew, lexer.TokenThis, lexer.TokenGiven,
			lexer.TokenVal:
			return true
		}
		return false
	})
	if !follows {
		return nil
	}
	start := p.start()
	p.next() // end
	tok := p.cur()
	nameStart := p.start()
	p.next()
	name := done(p, nameStart, &ast.TermName{Value: tok.Literal})
	return done(p, start, &ast.TermEndMarker{Name: name})
}

// ---- statement sequences ----

// blockStatSeq parses the statements of a block up to its closing token.
func (p *Parser) blockStatSeq() []ast.Stat {
	var stats []ast.Stat
	p.newlinesOpt()
	for !p.isStatSeqEnd(p.cur()) && !p.isCaseDefEndForBlock() {
		stats = append(stats, p.blockStat()...)
		if p.isStatSeqEnd(p.cur()) || p.isCaseDefEndForBlock() {
			break
		}
		p.in.ObserveOutdented()
		if p.at(lexer.TokenOutdent) {
			break
		}
		p.acceptStatSep()
		p.newlinesOpt()
		p.in.ObserveOutdented()
	}
	return stats
}

func (p *Parser) isCaseDefEndForBlock() bool {
	return p.curType() == lexer.TokenCase && p.isCaseIntro(p.cur())
}

// blockStat parses one statement in block position.
func (p *Parser) blockStat() []ast.Stat {
	switch {
	case p.at(lexer.TokenImport):
		return []ast.Stat{p.importStmt()}
	case p.at(lexer.TokenExport):
		return []ast.Stat{p.exportStmt()}
	case p.isSoft(p.cur(), kwExtension) && p.extensionFollows():
		return []ast.Stat{p.extensionGroupDecl()}
	case p.at(lexer.TokenImplicit):
		// `implicit x => ...` is a lambda; `implicit val ...` a definition.
		isLambda := ahead(p, func() bool {
			if !p.cur().IsIdent() && !p.at(lexer.TokenUnderscore) {
				return false
			}
			return ahead(p, func() bool {
				return p.at(lexer.TokenFatArrow) || p.at(lexer.TokenColon)
			})
		})
		if isLambda {
			return []ast.Stat{p.expr(BlockStat, false)}
		}
		mods := p.modifiers(true)
		return []ast.Stat{p.localDef(mods)}
	case p.isDefIntro(p.cur()) && !p.isCaseIntro(p.cur()):
		mods := p.modifiers(true)
		return []ast.Stat{p.localDef(mods)}
	}
	if end := p.endMarkerOpt(); end != nil {
		return []ast.Stat{end}
	}
	if p.isExprIntro(p.cur()) {
		return []ast.Stat{p.expr(BlockStat, false)}
	}
	p.syntaxError("illegal start of statement", p.cur())
	return nil
}

func (p *Parser) extensionFollows() bool {
	return ahead(p, func() bool {
		return p.at(lexer.TokenLParen) || p.at(lexer.TokenLBracket)
	})
}

// localDef parses a definition in block position after its modifiers.
func (p *Parser) localDef(mods []ast.Mod) ast.Stat {
	switch p.curType() {
	case lexer.TokenVal, lexer.TokenVar, lexer.TokenDef, lexer.TokenTypeKw, lexer.TokenGiven:
		return p.defOrDcl(mods)
	case lexer.TokenClass, lexer.TokenTrait, lexer.TokenObject, lexer.TokenEnum, lexer.TokenCase:
		return p.tmplDef(mods)
	}
	p.syntaxError("definition expected", p.cur())
	return nil
}

// firstModStart finds the token index the definition starts at: its first
// modifier, or the cursor if it has none.
func firstModStart(p *Parser, mods []ast.Mod) int {
	if len(mods) > 0 {
		return mods[0].Origin().StartToken
	}
	return p.start()
}
