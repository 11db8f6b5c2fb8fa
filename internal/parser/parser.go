// Package parser implements the Aster recursive descent parser. It consumes
// the token stream produced by the lexer and builds the typed AST, attaching
// trimmed source spans to every node.
//
// The parser is single-threaded: one instance owns one token buffer and one
// cursor. Speculative lookahead is done by forking and restoring the cursor;
// paths that may be abandoned must not emit diagnostics or construct nodes.
package parser

import (
	"fmt"

	"github.com/orizon-lang/aster/internal/ast"
	"github.com/orizon-lang/aster/internal/diag"
	"github.com/orizon-lang/aster/internal/dialect"
	"github.com/orizon-lang/aster/internal/lexer"
	"github.com/orizon-lang/aster/internal/source"
)

// Location describes the statement position expression parsing runs in. It
// disambiguates lambda vs. self-type, repeated arguments, and ascription
// scoping.
type Location int

const (
	NoStat Location = iota
	BlockStat
	TemplateStat
	PostfixStat
)

// Mode selects the pattern sequence context.
type Mode int

const (
	OutsidePattern Mode = iota
	InPatternSeqOK
	InPatternNoSeq
	InPatternXML
)

// TemplateOwner describes which construct owns a template, controlling
// which grammar variants are legal inside it.
type TemplateOwner int

const (
	OwnerClass TemplateOwner = iota
	OwnerCaseClass
	OwnerTrait
	OwnerEnum
	OwnerObject
	OwnerGiven
)

func (o TemplateOwner) String() string {
	switch o {
	case OwnerClass:
		return "class"
	case OwnerCaseClass:
		return "case class"
	case OwnerTrait:
		return "trait"
	case OwnerEnum:
		return "enum"
	case OwnerObject:
		return "object"
	case OwnerGiven:
		return "given"
	}
	return "template"
}

// Parser holds all mutable parse state for one input.
type Parser struct {
	input   *source.Input
	dialect dialect.Dialect
	in      *Cursor
	sink    diag.Sink

	// Quote/splice nesting counters.
	quotedSpliceDepth  int
	quotedPatternDepth int

	// inPatternType marks that a type is being parsed inside a pattern
	// ascription, where lowercase names bind type variables.
	inPatternType bool
}

// New creates a parser over input under the given dialect, reporting
// diagnostics to sink. A nil sink discards warnings (errors are still
// returned by the entry points).
func New(input *source.Input, d dialect.Dialect, sink diag.Sink) *Parser {
	if sink == nil {
		sink = &diag.Collector{}
	}
	tokens := lexer.Tokenize(input, d)
	return &Parser{
		input:   input,
		dialect: d,
		in:      NewCursor(tokens, d),
		sink:    sink,
	}
}

// ---- diagnostics ----

func (p *Parser) reportAt(sev diag.Severity, sp source.Span, msg string) {
	p.sink.Report(diag.Diagnostic{Severity: sev, Span: sp, Message: msg})
}

// syntaxError reports a hard error at tok and aborts the parse.
func (p *Parser) syntaxError(msg string, tok lexer.Token) {
	d := diag.Diagnostic{Severity: diag.Error, Span: tok.Span(), Message: msg}
	p.sink.Report(d)
	panic(diag.Bailout{Diagnostic: d})
}

func (p *Parser) syntaxErrorExpected(tt lexer.TokenType) {
	cur := p.in.Current()
	p.syntaxError(fmt.Sprintf("%s expected but %s found", tt, cur.Type), cur)
}

// deprecationWarning reports a warning at tok and continues.
func (p *Parser) deprecationWarning(msg string, tok lexer.Token) {
	p.reportAt(diag.Warning, tok.Span(), msg)
}

// ---- token plumbing ----

func (p *Parser) cur() lexer.Token         { return p.in.Current() }
func (p *Parser) curType() lexer.TokenType { return p.in.Current().Type }

// next advances past the current token.
func (p *Parser) next() { p.in.Advance() }

// accept consumes a token of type tt or fails hard.
func (p *Parser) accept(tt lexer.TokenType) lexer.Token {
	tok := p.cur()
	if tok.Type != tt {
		p.syntaxErrorExpected(tt)
	}
	p.next()
	return tok
}

// acceptOpt consumes the current token only if it has type tt.
func (p *Parser) acceptOpt(tt lexer.TokenType) bool {
	if p.curType() == tt {
		p.next()
		return true
	}
	return false
}

// at reports whether the current token has type tt.
func (p *Parser) at(tt lexer.TokenType) bool { return p.curType() == tt }

// ahead evaluates body with the cursor advanced by one visible token, then
// restores the cursor unconditionally.
func ahead[T any](p *Parser, body func() T) T {
	snap := p.in.Fork()
	p.in.Advance()
	res := body()
	p.in.Restore(snap)
	return res
}

// speculate runs body on a forked cursor. If body returns false the cursor
// is restored; otherwise the consumed tokens stay consumed.
func (p *Parser) speculate(body func() bool) bool {
	snap := p.in.Fork()
	ok := body()
	if !ok {
		p.in.Restore(snap)
	}
	return ok
}

// tryParse runs body on a forked cursor, catching parse bailouts. On
// bailout the cursor is restored and the zero value returned with ok=false.
// Only used over short predicate-like subparses that do not emit: body runs
// against a muted sink so abandoned paths leave no diagnostics behind.
func tryParse[T any](p *Parser, body func() T) (res T, ok bool) {
	snap := p.in.Fork()
	savedSink := p.sink
	probe := &diag.Collector{}
	p.sink = probe
	defer func() {
		p.sink = savedSink
		if r := recover(); r != nil {
			if _, isBail := r.(diag.Bailout); !isBail {
				panic(r)
			}
			p.in.Restore(snap)
			ok = false
			return
		}
		// Commit: replay warnings gathered along the kept path.
		for _, d := range probe.All() {
			savedSink.Report(d)
		}
	}()
	res = body()
	ok = true
	return
}

// ---- newline handling ----

// newlineOptWhenFollowedBy skips a single statement-separating newline when
// the token after it satisfies pred.
func (p *Parser) newlineOptWhenFollowedBy(pred func(lexer.Token) bool) {
	if p.curType() == lexer.TokenLF {
		follows := ahead(p, func() bool { return pred(p.cur()) })
		if follows {
			p.next()
		}
	}
}

// newlineOptWhenFollowing skips a single newline followed by a token of
// type tt.
func (p *Parser) newlineOptWhenFollowing(tt lexer.TokenType) {
	p.newlineOptWhenFollowedBy(func(t lexer.Token) bool { return t.Type == tt })
}

// newlinesOpt skips any run of newline tokens.
func (p *Parser) newlinesOpt() {
	for p.curType() == lexer.TokenLF || p.curType() == lexer.TokenLFLF {
		p.next()
	}
}

func (p *Parser) isStatSep() bool {
	switch p.curType() {
	case lexer.TokenSemicolon, lexer.TokenLF, lexer.TokenLFLF:
		return true
	}
	return false
}

func (p *Parser) acceptStatSep() {
	if p.isStatSep() {
		p.next()
		return
	}
	p.syntaxError(fmt.Sprintf("end of statement expected but %s found", p.curType()), p.cur())
}

func (p *Parser) acceptStatSepOpt() {
	if p.isStatSep() {
		p.next()
	}
}

// ---- position bookkeeping ----

// start returns the raw token index the next node will begin at.
func (p *Parser) start() int { return p.in.CurrentIndex() }

// atPos assigns an origin to t covering raw token indices
// [startIdx, endIdx] with trivia trimmed at both ends, and returns t.
func atPos[T ast.Tree](p *Parser, startIdx, endIdx int, t T) T {
	origin := p.trimmedOrigin(startIdx, endIdx)
	if setter, okSet := any(t).(interface{ SetOrigin(ast.Origin) }); okSet {
		setter.SetOrigin(origin)
	}
	return t
}

// done assigns an origin to t from startIdx through the previously consumed
// token, and returns t.
func done[T ast.Tree](p *Parser, startIdx int, t T) T {
	return atPos(p, startIdx, p.in.PreviousIndex(), t)
}

// trimmedOrigin computes the Origin for raw token range [startIdx, endIdx]
// inclusive, skipping trivia tokens at both ends. An empty candidate range
// collapses to [start, start); a range holding a single trivia token spans
// just that token.
func (p *Parser) trimmedOrigin(startIdx, endIdx int) ast.Origin {
	toks := p.in.Tokens()
	if startIdx >= len(toks) {
		startIdx = len(toks) - 1
	}
	if endIdx >= len(toks) {
		endIdx = len(toks) - 1
	}
	if endIdx < startIdx {
		tok := toks[startIdx]
		return ast.Origin{
			Input:      p.input,
			Dialect:    p.dialect.Name,
			Span:       source.Span{Start: tok.Pos, End: tok.Pos},
			StartToken: startIdx,
			EndToken:   startIdx,
		}
	}
	lo, hi := startIdx, endIdx
	for lo < hi && toks[lo].IsTrivia() {
		lo++
	}
	for hi > lo && toks[hi].IsTrivia() {
		hi--
	}
	if lo == hi && toks[lo].IsTrivia() {
		tok := toks[lo]
		return ast.Origin{
			Input:      p.input,
			Dialect:    p.dialect.Name,
			Span:       source.Span{Start: tok.Pos, End: tok.End},
			StartToken: lo,
			EndToken:   lo + 1,
		}
	}
	return ast.Origin{
		Input:      p.input,
		Dialect:    p.dialect.Name,
		Span:       source.Span{Start: toks[lo].Pos, End: toks[hi].End},
		StartToken: lo,
		EndToken:   hi + 1,
	}
}
