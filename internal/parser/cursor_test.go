package parser

import (
	"testing"

	"github.com/orizon-lang/aster/internal/dialect"
	"github.com/orizon-lang/aster/internal/lexer"
	"github.com/orizon-lang/aster/internal/source"
)

func newCursor(input string, d dialect.Dialect) *Cursor {
	return NewCursor(lexer.Tokenize(source.FromString(input), d), d)
}

func TestCursorStartsAtBOF(t *testing.T) {
	c := newCursor("x", dialect.Aster3)
	if c.Current().Type != lexer.TokenBOF {
		t.Fatalf("initial token: got %s, want BOF", c.Current().Type)
	}
	c.Advance()
	if c.Current().Type != lexer.TokenIdent {
		t.Fatalf("after BOF: got %s, want identifier", c.Current().Type)
	}
}

func TestCursorSkipsHiddenTokens(t *testing.T) {
	c := newCursor("a  /* c */  b", dialect.Aster3)
	c.Advance() // past BOF
	if c.Current().Literal != "a" {
		t.Fatalf("got %q", c.Current().Literal)
	}
	c.Advance()
	if c.Current().Literal != "b" {
		t.Fatalf("comment and whitespace should be invisible, got %q", c.Current().Literal)
	}
}

func TestCursorNewlinesSuppressedInParens(t *testing.T) {
	c := newCursor("f(a,\nb)", dialect.Aster3)
	var seen []lexer.TokenType
	for c.Current().Type != lexer.TokenEOF {
		c.Advance()
		seen = append(seen, c.Current().Type)
	}
	for _, tt := range seen {
		if tt == lexer.TokenLF {
			t.Fatal("line end visible inside parenthesized region")
		}
	}
}

func TestCursorNewlinesVisibleInBraces(t *testing.T) {
	c := newCursor("{ a\nb }", dialect.Aster3)
	sawLF := false
	for c.Current().Type != lexer.TokenEOF {
		c.Advance()
		if c.Current().Type == lexer.TokenLF {
			sawLF = true
		}
	}
	if !sawLF {
		t.Fatal("line end should be visible inside braces")
	}
}

func TestCursorForkRestore(t *testing.T) {
	c := newCursor("a b c d", dialect.Aster3)
	c.Advance() // at a
	snap := c.Fork()
	c.Advance()
	c.Advance()
	if c.Current().Literal != "c" {
		t.Fatalf("got %q", c.Current().Literal)
	}
	c.Restore(snap)
	if c.Current().Literal != "a" {
		t.Fatalf("restore: got %q, want a", c.Current().Literal)
	}
	if c.Previous().Type != lexer.TokenBOF {
		t.Errorf("previous after restore: got %s", c.Previous().Type)
	}
}

func TestCursorNestedForks(t *testing.T) {
	c := newCursor("a b c d e", dialect.Aster3)
	c.Advance()
	outer := c.Fork()
	c.Advance()
	inner := c.Fork()
	c.Advance()
	c.Restore(inner)
	if c.Current().Literal != "b" {
		t.Fatalf("inner restore: got %q", c.Current().Literal)
	}
	c.Restore(outer)
	if c.Current().Literal != "a" {
		t.Fatalf("outer restore: got %q", c.Current().Literal)
	}
}

func TestObserveIndented(t *testing.T) {
	c := newCursor("a\n  b", dialect.Aster3)
	c.Advance() // a
	c.Advance() // LF
	if c.Current().Type != lexer.TokenLF {
		t.Fatalf("expected LF, got %s", c.Current().Type)
	}
	if !c.ObserveIndented() {
		t.Fatal("expected indent to be observed")
	}
	if c.Current().Type != lexer.TokenIndent {
		t.Fatalf("expected virtual Indent, got %s", c.Current().Type)
	}
	c.Advance()
	if c.Current().Literal != "b" {
		t.Fatalf("after indent: got %q", c.Current().Literal)
	}
}

func TestObserveIndentedRequiresDialect(t *testing.T) {
	c := newCursor("a\n  b", dialect.Aster1)
	c.Advance()
	c.Advance()
	if c.ObserveIndented() {
		t.Fatal("indentation must not be observed when the dialect disables it")
	}
}

func TestObserveOutdented(t *testing.T) {
	c := newCursor("a\n  b\nc", dialect.Aster3)
	c.Advance() // a
	c.Advance() // LF
	if !c.ObserveIndented() {
		t.Fatal("indent expected")
	}
	c.Advance() // consume Indent, now at b
	c.Advance() // LF before c
	if !c.ObserveOutdented() {
		t.Fatal("outdent expected")
	}
	if c.Current().Type != lexer.TokenOutdent {
		t.Fatalf("expected virtual Outdent, got %s", c.Current().Type)
	}
}

func TestForkDiscardsSynthesizedTokens(t *testing.T) {
	// A virtual indent synthesized inside an abandoned branch must vanish
	// on restore.
	c := newCursor("a\n  b", dialect.Aster3)
	c.Advance() // a
	c.Advance() // LF
	snap := c.Fork()
	if !c.ObserveIndented() {
		t.Fatal("indent expected")
	}
	c.Restore(snap)
	if c.Current().Type != lexer.TokenLF {
		t.Fatalf("after restore: got %s, want LF", c.Current().Type)
	}
	// The indent region must be gone too: observing again still works.
	if !c.ObserveIndented() {
		t.Fatal("indent should be observable again after restore")
	}
}
