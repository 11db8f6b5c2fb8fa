package parser

import (
	"github.com/orizon-lang/aster/internal/lexer"
)

// Classifier predicates over tokens. These are the dialect-gated boolean
// queries the grammar dispatches on; token-local classification lives on
// lexer.Token itself.

// soft keywords
const (
	kwAs          = "as"
	kwDerives     = "derives"
	kwEnd         = "end"
	kwErased      = "erased"
	kwExtension   = "extension"
	kwInfixMod    = "infix"
	kwInline      = "inline"
	kwOpaque      = "opaque"
	kwOpen        = "open"
	kwTransparent = "transparent"
	kwUsing       = "using"
)

// isSoft reports whether tok is the given contextual keyword under the
// current dialect.
func (p *Parser) isSoft(tok lexer.Token, word string) bool {
	if !tok.Is(word) {
		return false
	}
	switch word {
	case kwUsing, kwAs:
		return p.dialect.AllowGivenUsing || p.dialect.AllowAsForImportRename
	case kwDerives:
		return p.dialect.AllowDerives
	case kwEnd:
		return p.dialect.AllowEndMarkers
	case kwExtension:
		return p.dialect.AllowExtensionMethods
	case kwInline:
		return p.dialect.AllowInlineMods
	case kwInfixMod:
		return p.dialect.AllowInfixMods
	case kwOpaque:
		return p.dialect.AllowOpaqueTypes
	case kwOpen:
		return p.dialect.AllowOpenClass
	case kwTransparent:
		return p.dialect.AllowTransparentMods
	case kwErased:
		return p.dialect.AllowInlineMods
	}
	return false
}

// isExprIntro reports whether tok can begin an expression.
func (p *Parser) isExprIntro(tok lexer.Token) bool {
	if tok.IsIdent() || tok.IsLiteral() {
		return true
	}
	switch tok.Type {
	case lexer.TokenIf, lexer.TokenWhile, lexer.TokenFor, lexer.TokenTry,
		lexer.TokenDo, lexer.TokenThrow, lexer.TokenReturn, lexer.TokenNew,
		lexer.TokenThis, lexer.TokenSuper, lexer.TokenImplicit,
		lexer.TokenLParen, lexer.TokenLBrace, lexer.TokenUnderscore,
		lexer.TokenInterpID, lexer.TokenXMLStart, lexer.TokenIndent:
		return true
	case lexer.TokenQuoteBrace, lexer.TokenQuoteBracket, lexer.TokenQuoteID:
		return p.dialect.AllowQuotedTerms
	case lexer.TokenSpliceBrace:
		return p.dialect.AllowSplices
	case lexer.TokenUnquote, lexer.TokenEllipsis:
		return p.dialect.AllowUnquotes
	case lexer.TokenMacro:
		return false
	}
	return false
}

// isTypeIntro reports whether tok can begin a type.
func (p *Parser) isTypeIntro(tok lexer.Token) bool {
	if tok.IsIdent() {
		return true
	}
	switch tok.Type {
	case lexer.TokenLParen, lexer.TokenLBrace, lexer.TokenUnderscore,
		lexer.TokenThis, lexer.TokenSuper:
		return true
	case lexer.TokenLBracket:
		return p.dialect.AllowTypeLambdas || p.dialect.AllowPolymorphicFunctionTypes
	case lexer.TokenUnquote, lexer.TokenEllipsis:
		return p.dialect.AllowUnquotes
	}
	return tok.IsLiteral() && p.dialect.AllowLiteralTypes
}

// isDefIntro reports whether tok can begin a definition or declaration,
// including its modifiers and annotations.
func (p *Parser) isDefIntro(tok lexer.Token) bool {
	if p.isDclIntro(tok) || p.isTemplateDefIntro(tok) || p.isModifier(tok) {
		return true
	}
	switch tok.Type {
	case lexer.TokenAt, lexer.TokenCase:
		return true
	case lexer.TokenUnquote, lexer.TokenEllipsis:
		return p.dialect.AllowUnquotes
	}
	return p.isSoft(tok, kwExtension) || p.isSoft(tok, kwInline)
}

func (p *Parser) isDclIntro(tok lexer.Token) bool {
	switch tok.Type {
	case lexer.TokenVal, lexer.TokenVar, lexer.TokenDef, lexer.TokenTypeKw:
		return true
	case lexer.TokenGiven:
		return p.dialect.AllowGivenUsing
	}
	return false
}

func (p *Parser) isTemplateDefIntro(tok lexer.Token) bool {
	switch tok.Type {
	case lexer.TokenClass, lexer.TokenTrait, lexer.TokenObject:
		return true
	case lexer.TokenEnum:
		return p.dialect.AllowEnums
	}
	return false
}

// isModifier reports whether tok is a modifier keyword (hard or soft).
func (p *Parser) isModifier(tok lexer.Token) bool {
	switch tok.Type {
	case lexer.TokenAbstract, lexer.TokenFinal, lexer.TokenSealed,
		lexer.TokenImplicit, lexer.TokenLazy, lexer.TokenOverride,
		lexer.TokenPrivate, lexer.TokenProtected:
		return true
	}
	return p.isSoft(tok, kwOpen) || p.isSoft(tok, kwOpaque) ||
		p.isSoft(tok, kwInline) || p.isSoft(tok, kwInfixMod) ||
		p.isSoft(tok, kwTransparent) || p.isSoft(tok, kwErased)
}

// isLocalModifier reports whether tok may modify a local definition.
func (p *Parser) isLocalModifier(tok lexer.Token) bool {
	switch tok.Type {
	case lexer.TokenAbstract, lexer.TokenFinal, lexer.TokenSealed,
		lexer.TokenImplicit, lexer.TokenLazy:
		return true
	}
	return p.isSoft(tok, kwInline) || p.isSoft(tok, kwInfixMod) ||
		p.isSoft(tok, kwOpaque) || p.isSoft(tok, kwOpen) ||
		p.isSoft(tok, kwTransparent)
}

// isUnaryOp reports whether tok is a prefix operator.
func isUnaryOp(tok lexer.Token) bool {
	if tok.Type != lexer.TokenOpIdent {
		return false
	}
	switch tok.Literal {
	case "-", "+", "~", "!":
		return true
	}
	return false
}

// isRawStar reports whether tok is the bare * operator.
func isRawStar(tok lexer.Token) bool {
	return tok.Type == lexer.TokenOpIdent && tok.Literal == "*"
}

// isRawBar reports whether tok is the bare | operator.
func isRawBar(tok lexer.Token) bool {
	return tok.Type == lexer.TokenOpIdent && tok.Literal == "|"
}

// isRawAmp reports whether tok is the bare & operator.
func isRawAmp(tok lexer.Token) bool {
	return tok.Type == lexer.TokenOpIdent && tok.Literal == "&"
}

// isVarPatternName reports whether an identifier introduces a pattern
// variable rather than a stable reference: not backquoted, and a leading
// lower-case ASCII letter, '_' or '$'.
func isVarPatternName(tok lexer.Token) bool {
	if tok.Type != lexer.TokenIdent {
		return false
	}
	r := rune(tok.Literal[0])
	return r == '_' || (r >= 'a' && r <= 'z') || r == '$'
}

// isStatSeqEnd reports whether tok terminates a statement sequence.
func (p *Parser) isStatSeqEnd(tok lexer.Token) bool {
	switch tok.Type {
	case lexer.TokenRBrace, lexer.TokenEOF, lexer.TokenOutdent:
		return true
	}
	return false
}

// isCaseIntro reports whether tok begins a case clause (and not a case
// class or case object).
func (p *Parser) isCaseIntro(tok lexer.Token) bool {
	if tok.Type != lexer.TokenCase {
		return false
	}
	return !ahead(p, func() bool {
		t := p.cur().Type
		return t == lexer.TokenClass || t == lexer.TokenObject
	})
}
