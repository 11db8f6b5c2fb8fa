package parser

import (
	"github.com/orizon-lang/aster/internal/ast"
	"github.com/orizon-lang/aster/internal/diag"
	"github.com/orizon-lang/aster/internal/lexer"
)

// Entry points. Each accepts the BOF token, runs its production, accepts
// EOF, and returns the Origin-annotated tree. The first grammar error
// aborts the invocation and is returned as the error value.

func (p *Parser) recoverBailout(err *error) {
	if r := recover(); r != nil {
		bail, isBail := r.(diag.Bailout)
		if !isBail {
			panic(r)
		}
		*err = bail.Diagnostic
	}
}

func entry[T any](p *Parser, production func() T) (res T, err error) {
	defer p.recoverBailout(&err)
	p.accept(lexer.TokenBOF)
	res = production()
	p.newlinesOpt()
	for p.in.ObserveOutdented() || p.at(lexer.TokenOutdent) {
		p.accept(lexer.TokenOutdent)
		p.newlinesOpt()
	}
	p.accept(lexer.TokenEOF)
	return res, nil
}

// ParseSource parses a whole compilation unit.
func (p *Parser) ParseSource() (*ast.Source, error) {
	return entry(p, p.source)
}

// ParseAmmonite parses multi-source script input: sources delimited by @
// between them.
func (p *Parser) ParseAmmonite() (*ast.MultiSource, error) {
	return entry(p, func() *ast.MultiSource {
		start := p.start()
		var sources []*ast.Source
		for {
			srcStart := p.start()
			stats := p.topStatSeqUntil(func() bool { return p.atScriptSeparator() })
			sources = append(sources, done(p, srcStart, &ast.Source{Stats: stats}))
			if !p.atScriptSeparator() {
				break
			}
			p.next() // @
			p.newlinesOpt()
		}
		return done(p, start, &ast.MultiSource{Sources: sources})
	})
}

func (p *Parser) atScriptSeparator() bool {
	return p.curType() == lexer.TokenAt
}

// ParseStat parses a single statement (definition, declaration, import, or
// expression).
func (p *Parser) ParseStat() (ast.Stat, error) {
	return entry(p, func() ast.Stat {
		p.newlinesOpt()
		switch {
		case p.at(lexer.TokenPackage):
			return p.packageClause()
		case p.at(lexer.TokenImport):
			return p.importStmt()
		case p.at(lexer.TokenExport):
			return p.exportStmt()
		case p.isSoft(p.cur(), kwExtension) && p.extensionFollows():
			return p.extensionGroupDecl()
		case p.isDefIntro(p.cur()):
			return p.nonLocalDefOrDcl(OwnerClass)
		}
		return p.expr(BlockStat, false)
	})
}

// ParseTerm parses a single expression.
func (p *Parser) ParseTerm() (ast.Term, error) {
	return entry(p, func() ast.Term {
		p.newlinesOpt()
		return p.expr(NoStat, false)
	})
}

// ParseType parses a single type.
func (p *Parser) ParseType() (ast.Type, error) {
	return entry(p, func() ast.Type {
		p.newlinesOpt()
		return p.typ()
	})
}

// ParsePat parses a single pattern in sequence-OK context.
func (p *Parser) ParsePat() (ast.Pat, error) {
	return entry(p, func() ast.Pat {
		p.newlinesOpt()
		return p.pattern(InPatternSeqOK)
	})
}

// ParseCase parses a single case clause.
func (p *Parser) ParseCase() (*ast.Case, error) {
	return entry(p, func() *ast.Case {
		p.newlinesOpt()
		return p.caseClause()
	})
}

// ParseCtor parses a constructor: secondary when it opens with def,
// primary otherwise.
func (p *Parser) ParseCtor() (ast.Ctor, error) {
	return entry(p, func() ast.Ctor {
		p.newlinesOpt()
		if p.at(lexer.TokenDef) {
			return p.secondaryCtor(nil).(*ast.CtorSecondary)
		}
		return p.primaryCtor(OwnerClass)
	})
}

// ParseInit parses a parent constructor invocation.
func (p *Parser) ParseInit() (*ast.Init, error) {
	return entry(p, func() *ast.Init {
		p.newlinesOpt()
		return p.initCall()
	})
}

// ParseSelf parses a self-type annotation.
func (p *Parser) ParseSelf() (*ast.Self, error) {
	return entry(p, func() *ast.Self {
		p.newlinesOpt()
		self := p.selfTypeOpt()
		if self == nil {
			p.syntaxError("self type expected", p.cur())
		}
		return self
	})
}

// ParseTemplate parses a template (inheritance clauses plus body).
func (p *Parser) ParseTemplate() (*ast.Template, error) {
	return entry(p, func() *ast.Template {
		p.newlinesOpt()
		if p.at(lexer.TokenLBrace) {
			return p.templateBody(OwnerClass)
		}
		start := p.start()
		inits := p.initCalls()
		var templ *ast.Template
		p.newlineOptWhenFollowing(lexer.TokenLBrace)
		if p.at(lexer.TokenLBrace) {
			templ = p.templateBody(OwnerClass)
		} else {
			templ = &ast.Template{}
		}
		templ.Inits = inits
		return atPos(p, start, p.in.PreviousIndex(), templ)
	})
}

// ParseMod parses exactly one modifier.
func (p *Parser) ParseMod() (ast.Mod, error) {
	return entry(p, func() ast.Mod {
		p.newlinesOpt()
		if p.at(lexer.TokenAt) {
			return p.annot()
		}
		mods := p.modifiers(false)
		if len(mods) != 1 {
			p.syntaxError("exactly one modifier expected", p.cur())
		}
		return mods[0]
	})
}

// ParseEnumerator parses a single for-comprehension clause.
func (p *Parser) ParseEnumerator() (ast.Enumerator, error) {
	return entry(p, func() ast.Enumerator {
		p.newlinesOpt()
		if p.at(lexer.TokenIf) {
			start := p.start()
			p.next()
			cond := p.postfixExprTerm(NoStat)
			return ast.Enumerator(done(p, start, &ast.EnumeratorGuard{Cond: cond}))
		}
		return p.generator(false)
	})
}

// ParseImporter parses a single importer clause.
func (p *Parser) ParseImporter() (*ast.Importer, error) {
	return entry(p, func() *ast.Importer {
		p.newlinesOpt()
		return p.importer()
	})
}

// ParseImportee parses a single import selector.
func (p *Parser) ParseImportee() (ast.Importee, error) {
	return entry(p, func() ast.Importee {
		p.newlinesOpt()
		return p.importee()
	})
}

// ParseTermParam parses a single term parameter.
func (p *Parser) ParseTermParam() (*ast.TermParam, error) {
	return entry(p, func() *ast.TermParam {
		p.newlinesOpt()
		return p.param(true, nil)
	})
}

// ParseTypeParam parses a single type parameter.
func (p *Parser) ParseTypeParam() (*ast.TypeParam, error) {
	return entry(p, func() *ast.TypeParam {
		p.newlinesOpt()
		return p.typeParam()
	})
}

// ParseUnquoteTerm parses a term fragment inside a quasiquote unquote;
// the parser must have been constructed with an unquote-enabled dialect.
func (p *Parser) ParseUnquoteTerm() (ast.Term, error) {
	if !p.dialect.AllowUnquotes {
		return nil, diag.Diagnostic{Severity: diag.Error, Span: p.cur().Span(),
			Message: p.dialect.Name + " does not support unquotes"}
	}
	p.quotedSpliceDepth++
	defer func() { p.quotedSpliceDepth-- }()
	return p.ParseTerm()
}

// ParseUnquotePat parses a pattern fragment inside a quasiquote unquote.
func (p *Parser) ParseUnquotePat() (ast.Pat, error) {
	if !p.dialect.AllowUnquotes {
		return nil, diag.Diagnostic{Severity: diag.Error, Span: p.cur().Span(),
			Message: p.dialect.Name + " does not support unquotes"}
	}
	p.quotedPatternDepth++
	defer func() { p.quotedPatternDepth-- }()
	return p.ParsePat()
}

// ---- top-level productions ----

// source parses the top-level statement sequence of a compilation unit.
func (p *Parser) source() *ast.Source {
	start := p.start()
	p.newlinesOpt()
	stats := p.topStatSeqUntil(nil)
	return done(p, start, &ast.Source{Stats: stats})
}

// topStatSeqUntil parses top-level statements until EOF or the extra stop
// predicate fires.
func (p *Parser) topStatSeqUntil(stop func() bool) []ast.Stat {
	var stats []ast.Stat
	for {
		p.newlinesOpt()
		if p.at(lexer.TokenEOF) || p.at(lexer.TokenRBrace) || p.at(lexer.TokenOutdent) {
			return stats
		}
		if stop != nil && stop() {
			return stats
		}
		stats = append(stats, p.topStat())
		if p.at(lexer.TokenEOF) || p.at(lexer.TokenRBrace) || p.at(lexer.TokenOutdent) {
			return stats
		}
		if stop != nil && stop() {
			return stats
		}
		p.in.ObserveOutdented()
		if p.at(lexer.TokenOutdent) {
			return stats
		}
		p.acceptStatSep()
	}
}

// topStat parses one top-level statement.
func (p *Parser) topStat() ast.Stat {
	switch {
	case p.at(lexer.TokenPackage):
		return p.packageClause()
	case p.at(lexer.TokenImport):
		return p.importStmt()
	case p.at(lexer.TokenExport):
		return p.exportStmt()
	case p.isSoft(p.cur(), kwExtension) && p.extensionFollows():
		return p.extensionGroupDecl()
	case p.isDefIntro(p.cur()):
		mods := p.modifiers(false)
		return p.topLevelDef(mods)
	}
	if end := p.endMarkerOpt(); end != nil {
		return end
	}
	if p.isExprIntro(p.cur()) {
		if !p.dialect.AllowToplevelTerms {
			p.syntaxError("expected class or object definition", p.cur())
		}
		return p.expr(BlockStat, false)
	}
	p.syntaxError("expected class or object definition", p.cur())
	return nil
}

// topLevelDef parses a top-level definition after its modifiers.
func (p *Parser) topLevelDef(mods []ast.Mod) ast.Stat {
	switch p.curType() {
	case lexer.TokenClass, lexer.TokenTrait, lexer.TokenObject, lexer.TokenEnum, lexer.TokenCase:
		return p.tmplDef(mods)
	case lexer.TokenVal, lexer.TokenVar, lexer.TokenDef, lexer.TokenTypeKw, lexer.TokenGiven:
		if !p.dialect.AllowToplevelStatements {
			p.syntaxError(p.dialect.Name+" does not support toplevel definitions", p.cur())
		}
		return p.defOrDcl(mods)
	}
	p.syntaxError("expected start of definition", p.cur())
	return nil
}

// packageClause parses package headers, package blocks and package
// objects.
func (p *Parser) packageClause() ast.Stat {
	start := p.start()
	p.accept(lexer.TokenPackage)

	if p.at(lexer.TokenObject) {
		p.next()
		nameTok := p.cur()
		if !nameTok.IsIdent() {
			p.syntaxErrorExpected(lexer.TokenIdent)
		}
		nameStart := p.start()
		p.next()
		name := done(p, nameStart, &ast.TermName{Value: identValue(nameTok)})
		templ := p.templateOpt(OwnerObject)
		return done(p, start, &ast.PkgObject{Name: name, Templ: templ})
	}

	ref := p.qualID()
	p.newlineOptWhenFollowing(lexer.TokenLBrace)
	if p.at(lexer.TokenLBrace) {
		p.accept(lexer.TokenLBrace)
		stats := p.topStatSeqUntil(nil)
		p.accept(lexer.TokenRBrace)
		return done(p, start, &ast.Pkg{Ref: ref, Stats: stats})
	}
	// Header style: the rest of the unit belongs to this package.
	p.acceptStatSepOpt()
	stats := p.topStatSeqUntil(nil)
	return done(p, start, &ast.Pkg{Ref: ref, Stats: stats})
}

// qualID parses a dotted name.
func (p *Parser) qualID() ast.Term {
	start := p.start()
	tok := p.cur()
	if !tok.IsIdent() {
		p.syntaxErrorExpected(lexer.TokenIdent)
	}
	p.next()
	var ref ast.Term = done(p, start, &ast.TermName{Value: identValue(tok)})
	for p.at(lexer.TokenDot) {
		isName := ahead(p, func() bool { return p.cur().IsIdent() })
		if !isName {
			break
		}
		p.next()
		nTok := p.cur()
		nStart := p.start()
		p.next()
		name := done(p, nStart, &ast.TermName{Value: identValue(nTok)})
		ref = atPos(p, start, p.in.PreviousIndex(), &ast.TermSelect{Qual: ref, Name: name})
	}
	return ref
}
