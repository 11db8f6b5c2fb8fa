package parser

import (
	"github.com/orizon-lang/aster/internal/dialect"
	"github.com/orizon-lang/aster/internal/lexer"
)

// regionKind classifies the syntactic regions the cursor tracks while
// advancing. Inside parenthesized and bracketed regions line ends are not
// statement separators and are skipped transparently.
type regionKind int

const (
	regionParen regionKind = iota
	regionBracket
	regionBrace
	regionInterp
	regionIndent
)

type region struct {
	kind  regionKind
	width int // indentation column for regionIndent
}

// Cursor is the mutable bidirectional iterator over scanner tokens. It
// skips whitespace and comments, suppresses line ends inside flat regions,
// and synthesizes virtual indent/outdent tokens on demand when significant
// indentation is enabled.
//
// Every combinator that inspects more than one token ahead must either
// commit or restore the cursor from a snapshot taken with Fork. A snapshot
// captures the full cursor state, including regions and any synthesized
// tokens, so forks abandoned mid-speculation leave no residue.
type Cursor struct {
	tokens  []lexer.Token
	dialect dialect.Dialect

	cur     int // raw index of the current visible token
	prev    int // raw index of the previous non-trivia token
	regions []region
	pending []lexer.Token // synthesized tokens served before tokens[cur]
}

// Snapshot is an opaque fork point.
type Snapshot struct {
	cur     int
	prev    int
	regions []region
	pending []lexer.Token
}

// NewCursor creates a cursor positioned at the BOF token.
func NewCursor(tokens []lexer.Token, d dialect.Dialect) *Cursor {
	c := &Cursor{tokens: tokens, dialect: d}
	c.cur = 0 // BOF
	c.prev = 0
	return c
}

// Tokens returns the underlying token buffer.
func (c *Cursor) Tokens() []lexer.Token { return c.tokens }

// Current returns the current visible token.
func (c *Cursor) Current() lexer.Token {
	if n := len(c.pending); n > 0 {
		return c.pending[n-1]
	}
	return c.tokens[c.cur]
}

// Previous returns the most recently consumed non-trivia token.
func (c *Cursor) Previous() lexer.Token { return c.tokens[c.prev] }

// CurrentIndex returns the raw index of the current token.
func (c *Cursor) CurrentIndex() int { return c.cur }

// PreviousIndex returns the raw index of the previous non-trivia token.
func (c *Cursor) PreviousIndex() int { return c.prev }

// CurrentIndentation returns the source column of the current token, or -1
// at end of input.
func (c *Cursor) CurrentIndentation() int {
	if c.tokens[c.cur].Type == lexer.TokenEOF {
		return -1
	}
	return c.tokens[c.cur].Pos.Column
}

// Advance moves to the next visible token, maintaining the region stack.
func (c *Cursor) Advance() {
	if n := len(c.pending); n > 0 {
		c.pending = c.pending[:n-1]
		return
	}
	tok := c.tokens[c.cur]
	if !tok.IsTrivia() {
		c.prev = c.cur
		c.trackRegion(tok)
	}
	if tok.Type == lexer.TokenEOF {
		return
	}
	c.cur++
	c.skipHidden()
}

func (c *Cursor) trackRegion(tok lexer.Token) {
	switch tok.Type {
	case lexer.TokenLParen:
		c.regions = append(c.regions, region{kind: regionParen})
	case lexer.TokenLBracket, lexer.TokenQuoteBracket:
		c.regions = append(c.regions, region{kind: regionBracket})
	case lexer.TokenLBrace, lexer.TokenQuoteBrace, lexer.TokenSpliceBrace:
		c.regions = append(c.regions, region{kind: regionBrace})
	case lexer.TokenInterpSpliceStart:
		c.regions = append(c.regions, region{kind: regionInterp})
	case lexer.TokenRParen, lexer.TokenRBracket, lexer.TokenRBrace, lexer.TokenInterpSpliceEnd:
		if n := len(c.regions); n > 0 && c.regions[n-1].kind != regionIndent {
			c.regions = c.regions[:n-1]
		}
	}
}

// skipHidden advances cur past tokens the parser never sees: whitespace,
// comments, and, inside paren/bracket regions, line ends.
func (c *Cursor) skipHidden() {
	for {
		tok := c.tokens[c.cur]
		switch tok.Type {
		case lexer.TokenWhitespace, lexer.TokenComment, lexer.TokenBlockComment:
			c.cur++
			continue
		case lexer.TokenLF, lexer.TokenLFLF:
			if c.inFlatRegion() {
				c.cur++
				continue
			}
		}
		return
	}
}

func (c *Cursor) inFlatRegion() bool {
	for i := len(c.regions) - 1; i >= 0; i-- {
		switch c.regions[i].kind {
		case regionParen, regionBracket:
			return true
		case regionBrace, regionIndent, regionInterp:
			return false
		}
	}
	return false
}

// Fork captures the cursor state for later restoration.
func (c *Cursor) Fork() Snapshot {
	snap := Snapshot{cur: c.cur, prev: c.prev}
	snap.regions = append(snap.regions, c.regions...)
	snap.pending = append(snap.pending, c.pending...)
	return snap
}

// Restore rewinds the cursor to a snapshot. Virtual tokens synthesized
// after the fork are discarded with the rest of the speculative state.
func (c *Cursor) Restore(s Snapshot) {
	c.cur = s.cur
	c.prev = s.prev
	c.regions = c.regions[:0]
	c.regions = append(c.regions, s.regions...)
	c.pending = c.pending[:0]
	c.pending = append(c.pending, s.pending...)
}

// currentIndentWidth is the width of the innermost indentation region, or 0
// outside any indented block.
func (c *Cursor) currentIndentWidth() int {
	for i := len(c.regions) - 1; i >= 0; i-- {
		if c.regions[i].kind == regionIndent {
			return c.regions[i].width
		}
		if c.regions[i].kind == regionBrace {
			return 0
		}
	}
	return 0
}

// ObserveIndented synthesizes an Indent token if the cursor sits on a line
// end whose following token begins a strictly more indented block. Returns
// true when the virtual token was inserted; the caller consumes it with an
// ordinary Advance.
func (c *Cursor) ObserveIndented() bool {
	if !c.dialect.AllowSignificantIndentation {
		return false
	}
	if len(c.pending) > 0 {
		return false
	}
	tok := c.tokens[c.cur]
	if !tok.IsLineEnd() {
		return false
	}
	j := c.cur
	for j < len(c.tokens) && (c.tokens[j].IsLineEnd() || c.tokens[j].Type == lexer.TokenWhitespace ||
		c.tokens[j].IsComment()) {
		j++
	}
	if j >= len(c.tokens) || c.tokens[j].Type == lexer.TokenEOF {
		return false
	}
	col := c.tokens[j].Pos.Column
	if col <= c.currentIndentWidth() {
		return false
	}
	c.regions = append(c.regions, region{kind: regionIndent, width: col})
	c.cur = j
	at := c.tokens[j].Pos
	c.pending = append(c.pending, lexer.Token{Type: lexer.TokenIndent, Pos: at, End: at})
	return true
}

// ObserveOutdented synthesizes an Outdent token if the cursor sits at a
// statement separator (or EOF) whose following token dedents below the
// innermost indentation region. Returns true when the virtual token was
// inserted.
func (c *Cursor) ObserveOutdented() bool {
	if !c.dialect.AllowSignificantIndentation {
		return false
	}
	if len(c.pending) > 0 {
		return false
	}
	n := len(c.regions)
	if n == 0 || c.regions[n-1].kind != regionIndent {
		return false
	}
	width := c.regions[n-1].width
	tok := c.tokens[c.cur]
	if tok.Type == lexer.TokenEOF {
		c.regions = c.regions[:n-1]
		c.pending = append(c.pending, lexer.Token{Type: lexer.TokenOutdent, Pos: tok.Pos, End: tok.Pos})
		return true
	}
	if !tok.IsLineEnd() {
		return false
	}
	j := c.cur
	for j < len(c.tokens) && (c.tokens[j].IsLineEnd() || c.tokens[j].Type == lexer.TokenWhitespace ||
		c.tokens[j].IsComment()) {
		j++
	}
	var col int
	if j >= len(c.tokens) || c.tokens[j].Type == lexer.TokenEOF {
		col = 0
	} else {
		col = c.tokens[j].Pos.Column
	}
	if col >= width {
		return false
	}
	c.regions = c.regions[:n-1]
	at := c.tokens[c.cur].Pos
	c.pending = append(c.pending, lexer.Token{Type: lexer.TokenOutdent, Pos: at, End: at})
	return true
}
