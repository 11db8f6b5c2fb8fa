package parser

import (
	"github.com/orizon-lang/aster/internal/ast"
	"github.com/orizon-lang/aster/internal/lexer"
)

// Template grammar: inheritance clauses, early definitions, derives
// clauses, self types and class-like bodies.

// templateOpt parses the optional template of a class-like definition:
// extends clause, derives clause, and body.
func (p *Parser) templateOpt(owner TemplateOwner) *ast.Template {
	start := p.start()
	var early []ast.Stat
	var inits []*ast.Init

	p.newlineOptWhenFollowing(lexer.TokenExtends)
	if p.acceptOpt(lexer.TokenExtends) {
		// Early definitions: extends { stats } with Parent...
		if p.at(lexer.TokenLBrace) {
			got, ok := tryParse(p, func() []ast.Stat {
				p.accept(lexer.TokenLBrace)
				p.newlinesOpt()
				var stats []ast.Stat
				for !p.at(lexer.TokenRBrace) {
					mods := p.modifiers(false)
					stats = append(stats, p.defOrDcl(mods))
					p.acceptStatSepOpt()
					p.newlinesOpt()
				}
				p.accept(lexer.TokenRBrace)
				p.accept(lexer.TokenWith)
				return stats
			})
			if ok {
				early = got
				inits = p.initCalls()
			} else {
				// extends { ... } with no parents: a refinement-style body.
				templ := p.templateBody(owner)
				return atPos(p, start, p.in.PreviousIndex(), templ)
			}
		} else {
			inits = p.initCalls()
		}
	}

	derives := p.derivesClauseOpt()

	var templ *ast.Template
	p.newlineOptWhenFollowedBy(func(t lexer.Token) bool { return t.Type == lexer.TokenLBrace })
	switch {
	case p.at(lexer.TokenLBrace):
		templ = p.templateBody(owner)
	case p.at(lexer.TokenColon) && p.dialect.AllowSignificantIndentation && p.colonOpensTemplate():
		templ = p.indentedTemplateBody(owner)
	default:
		templ = &ast.Template{}
	}
	templ.Early = early
	templ.Inits = inits
	templ.Derives = derives
	return atPos(p, start, p.in.PreviousIndex(), templ)
}

// initCalls parses the parent constructor chain.
func (p *Parser) initCalls() []*ast.Init {
	var inits []*ast.Init
	for {
		inits = append(inits, p.initCall())
		p.newlineOptWhenFollowing(lexer.TokenWith)
		if !p.acceptOpt(lexer.TokenWith) {
			break
		}
	}
	return inits
}

// derivesClauseOpt parses `derives T1, T2, ...`.
func (p *Parser) derivesClauseOpt() []ast.Type {
	p.newlineOptWhenFollowedBy(func(t lexer.Token) bool { return p.isSoft(t, kwDerives) })
	if !p.isSoft(p.cur(), kwDerives) {
		return nil
	}
	p.next()
	var out []ast.Type
	for {
		start := p.start()
		t := p.annotType()
		out = append(out, p.simpleTypeRest(start, t))
		if !p.acceptOpt(lexer.TokenComma) {
			break
		}
	}
	return out
}

// colonOpensTemplate checks that the colon at the cursor is a braceless
// template body marker (colon at end of line).
func (p *Parser) colonOpensTemplate() bool {
	return ahead(p, func() bool { return p.in.Current().IsLineEnd() })
}

// templateBody parses { [self =>] stats }.
func (p *Parser) templateBody(owner TemplateOwner) *ast.Template {
	start := p.start()
	p.accept(lexer.TokenLBrace)
	p.newlinesOpt()
	self := p.selfTypeOpt()
	stats := p.templateStatSeq(owner)
	p.accept(lexer.TokenRBrace)
	return atPos(p, start, p.in.PreviousIndex(), &ast.Template{Self: self, Stats: stats})
}

// indentedTemplateBody parses a colon-EOL braceless body.
func (p *Parser) indentedTemplateBody(owner TemplateOwner) *ast.Template {
	start := p.start()
	p.accept(lexer.TokenColon)
	if !p.in.ObserveIndented() {
		p.syntaxError("indented definitions expected after colon", p.cur())
	}
	p.accept(lexer.TokenIndent)
	self := p.selfTypeOpt()
	stats := p.templateStatSeq(owner)
	p.in.ObserveOutdented()
	p.accept(lexer.TokenOutdent)
	return atPos(p, start, p.in.PreviousIndex(), &ast.Template{Self: self, Stats: stats})
}

// selfTypeOpt speculatively parses the `name: T =>` prefix of a template
// body. If the arrow is missing the cursor rewinds and the prefix parses
// again as an ordinary statement.
func (p *Parser) selfTypeOpt() *ast.Self {
	self, ok := tryParse(p, func() *ast.Self {
		start := p.start()
		var name *ast.Name
		nameStart := p.start()
		switch {
		case p.at(lexer.TokenThis):
			p.next()
			name = done(p, nameStart, &ast.Name{Value: "this"})
		case p.at(lexer.TokenUnderscore):
			p.next()
			name = done(p, nameStart, &ast.Name{})
		case p.cur().Type == lexer.TokenIdent:
			tok := p.cur()
			p.next()
			name = done(p, nameStart, &ast.Name{Value: identValue(tok)})
		default:
			p.syntaxErrorExpected(lexer.TokenIdent)
		}
		var tpe ast.Type
		if p.acceptOpt(lexer.TokenColon) {
			tpe = p.infixType()
		}
		p.accept(lexer.TokenFatArrow)
		return done(p, start, &ast.Self{Name: name, Tpe: tpe})
	})
	if !ok {
		return nil
	}
	p.newlinesOpt()
	return self
}

// templateStatSeq parses the statements of a template body.
func (p *Parser) templateStatSeq(owner TemplateOwner) []ast.Stat {
	var stats []ast.Stat
	p.newlinesOpt()
	for !p.isStatSeqEnd(p.cur()) {
		stat := p.templateStat(owner)
		if stat != nil {
			stats = append(stats, stat)
		}
		if p.isStatSeqEnd(p.cur()) {
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

// templateStat parses one statement in template position.
func (p *Parser) templateStat(owner TemplateOwner) ast.Stat {
	switch {
	case p.at(lexer.TokenImport):
		return p.importStmt()
	case p.at(lexer.TokenExport):
		return p.exportStmt()
	case p.at(lexer.TokenCase) && owner == OwnerEnum && p.isCaseIntro(p.cur()):
		mods := p.annots(true)
		return p.enumCaseDef(mods)
	case p.isSoft(p.cur(), kwExtension) && p.extensionFollows():
		return p.extensionGroupDecl()
	case p.isDefIntro(p.cur()):
		return p.nonLocalDefOrDcl(owner)
	}
	if end := p.endMarkerOpt(); end != nil {
		return end
	}
	if p.isExprIntro(p.cur()) {
		return p.expr(TemplateStat, false)
	}
	p.syntaxError("illegal start of definition", p.cur())
	return nil
}

// nonLocalDefOrDcl parses a member definition with full modifiers,
// dispatching secondary constructors on `def this`.
func (p *Parser) nonLocalDefOrDcl(owner TemplateOwner) ast.Stat {
	mods := p.modifiers(false)
	return p.defOrDclOrSecondaryCtor(owner, mods)
}

// defOrDclOrSecondaryCtor dispatches between member definitions and
// secondary constructors.
func (p *Parser) defOrDclOrSecondaryCtor(owner TemplateOwner, mods []ast.Mod) ast.Stat {
	switch p.curType() {
	case lexer.TokenVal, lexer.TokenVar, lexer.TokenTypeKw, lexer.TokenGiven:
		return p.defOrDcl(mods)
	case lexer.TokenDef:
		isCtor := ahead(p, func() bool { return p.at(lexer.TokenThis) })
		if isCtor {
			if owner == OwnerTrait && !p.dialect.AllowTraitParameters {
				p.syntaxError("traits may not have secondary constructors", p.cur())
			}
			return p.secondaryCtor(mods)
		}
		return p.defOrDcl(mods)
	case lexer.TokenClass, lexer.TokenTrait, lexer.TokenObject, lexer.TokenEnum, lexer.TokenCase:
		return p.tmplDef(mods)
	}
	if p.isSoft(p.cur(), kwExtension) {
		return p.extensionGroupDecl()
	}
	p.syntaxError("definition or declaration expected", p.cur())
	return nil
}

// secondaryCtor parses `def this(params...) = { this(...); stats }`.
func (p *Parser) secondaryCtor(mods []ast.Mod) ast.Stat {
	start := firstModStart(p, mods)
	p.accept(lexer.TokenDef)
	nameStart := p.start()
	p.accept(lexer.TokenThis)
	name := done(p, nameStart, &ast.Name{Value: "this"})

	paramss := p.paramClauses(false)
	if len(paramss) == 0 {
		p.syntaxErrorExpected(lexer.TokenLParen)
	}
	p.accept(lexer.TokenEq)
	p.newlinesOpt()
	init, stats := p.secondaryCtorRest()
	return done(p, start, &ast.CtorSecondary{Mods: mods, Name: name, Paramss: paramss, Init: init, Stats: stats})
}

// secondaryCtorRest parses the constructor body: either a bare this(...)
// call or a block whose first statement is one.
func (p *Parser) secondaryCtorRest() (*ast.Init, []ast.Stat) {
	if p.at(lexer.TokenLBrace) {
		p.accept(lexer.TokenLBrace)
		p.newlinesOpt()
		init := p.selfInvocation()
		var stats []ast.Stat
		for p.isStatSep() {
			p.next()
			p.newlinesOpt()
			if p.at(lexer.TokenRBrace) {
				break
			}
			stats = append(stats, p.blockStat()...)
		}
		p.newlinesOpt()
		p.accept(lexer.TokenRBrace)
		return init, stats
	}
	return p.selfInvocation(), nil
}

// selfInvocation parses this(args...)+.
func (p *Parser) selfInvocation() *ast.Init {
	start := p.start()
	thisStart := p.start()
	p.accept(lexer.TokenThis)
	thisRef := done(p, thisStart, &ast.TermThis{Qual: p.anonName()})
	tpe := atPos(p, thisStart, p.in.PreviousIndex(), &ast.TypeSingleton{Ref: thisRef})
	if !p.at(lexer.TokenLParen) {
		p.syntaxErrorExpected(lexer.TokenLParen)
	}
	var argss [][]ast.Term
	for p.at(lexer.TokenLParen) {
		_, args := p.argumentExprsUsing()
		argss = append(argss, args)
	}
	name := p.anonName()
	return done(p, start, &ast.Init{Tpe: tpe, Name: name, Argss: argss})
}
