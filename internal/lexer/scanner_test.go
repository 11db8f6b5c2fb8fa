package lexer

import (
	"testing"

	"github.com/orizon-lang/aster/internal/dialect"
	"github.com/orizon-lang/aster/internal/source"
)

// kinds filters trivia and returns the visible token types.
func kinds(tokens []Token) []TokenType {
	var out []TokenType
	for _, t := range tokens {
		switch t.Type {
		case TokenWhitespace, TokenLF, TokenLFLF, TokenComment, TokenBlockComment, TokenBOF, TokenEOF:
			continue
		}
		out = append(out, t.Type)
	}
	return out
}

func TestScannerBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []TokenType
	}{
		{
			name:     "Keywords and identifiers",
			input:    "val x = 42",
			expected: []TokenType{TokenVal, TokenIdent, TokenEq, TokenIntLit},
		},
		{
			name:     "Operator identifiers",
			input:    "a :: b",
			expected: []TokenType{TokenIdent, TokenOpIdent, TokenIdent},
		},
		{
			name:     "Reserved operators",
			input:    "x => y",
			expected: []TokenType{TokenIdent, TokenFatArrow, TokenIdent},
		},
		{
			name:     "Type bounds",
			input:    "[T <: U >: L]",
			expected: []TokenType{TokenLBracket, TokenIdent, TokenSubtype, TokenIdent, TokenSupertype, TokenIdent, TokenRBracket},
		},
		{
			name:     "Literals",
			input:    `1 2L 3.0 4.0f 'c' "s" true null`,
			expected: []TokenType{TokenIntLit, TokenLongLit, TokenDoubleLit, TokenFloatLit, TokenCharLit, TokenStringLit, TokenTrue, TokenNull},
		},
		{
			name:     "Underscore and star stay separate",
			input:    "_*",
			expected: []TokenType{TokenUnderscore, TokenOpIdent},
		},
		{
			name:     "Backquoted identifier",
			input:    "`type`",
			expected: []TokenType{TokenBackquotedIdent},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := Tokenize(source.FromString(tt.input), dialect.Aster3)
			got := kinds(tokens)
			if len(got) != len(tt.expected) {
				t.Fatalf("token count: got %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("token %d: got %s, want %s", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestScannerBOFEOF(t *testing.T) {
	tokens := Tokenize(source.FromString("x"), dialect.Aster3)
	if tokens[0].Type != TokenBOF {
		t.Errorf("first token: got %s, want BOF", tokens[0].Type)
	}
	if tokens[len(tokens)-1].Type != TokenEOF {
		t.Errorf("last token: got %s, want EOF", tokens[len(tokens)-1].Type)
	}
}

func TestScannerLineEnds(t *testing.T) {
	tokens := Tokenize(source.FromString("a\nb\n\nc"), dialect.Aster3)
	var lineEnds []TokenType
	for _, tok := range tokens {
		if tok.IsLineEnd() {
			lineEnds = append(lineEnds, tok.Type)
		}
	}
	want := []TokenType{TokenLF, TokenLFLF}
	if len(lineEnds) != len(want) {
		t.Fatalf("line ends: got %v, want %v", lineEnds, want)
	}
	for i := range want {
		if lineEnds[i] != want[i] {
			t.Errorf("line end %d: got %s, want %s", i, lineEnds[i], want[i])
		}
	}
}

func TestScannerDialectKeywords(t *testing.T) {
	// `given` is reserved only when the dialect enables it.
	t3 := Tokenize(source.FromString("given"), dialect.Aster3)
	if got := kinds(t3); got[0] != TokenGiven {
		t.Errorf("Aster3 given: got %s, want given", got[0])
	}
	t1 := Tokenize(source.FromString("given"), dialect.Aster1)
	if got := kinds(t1); got[0] != TokenIdent {
		t.Errorf("Aster1 given: got %s, want identifier", got[0])
	}
}

func TestScannerInterpolation(t *testing.T) {
	tokens := Tokenize(source.FromString(`s"a $x b"`), dialect.Aster3)
	got := kinds(tokens)
	want := []TokenType{
		TokenInterpID, TokenInterpStart, TokenInterpPart,
		TokenInterpSpliceStart, TokenIdent, TokenInterpSpliceEnd,
		TokenInterpPart, TokenInterpEnd,
	}
	if len(got) != len(want) {
		t.Fatalf("interpolation tokens: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestScannerInterpolationSpliceBlock(t *testing.T) {
	tokens := Tokenize(source.FromString(`s"v=${a + b}"`), dialect.Aster3)
	sawSpliceStart, sawOp, sawSpliceEnd := false, false, false
	for _, tok := range tokens {
		switch tok.Type {
		case TokenInterpSpliceStart:
			sawSpliceStart = true
		case TokenOpIdent:
			sawOp = true
		case TokenInterpSpliceEnd:
			sawSpliceEnd = true
		}
	}
	if !sawSpliceStart || !sawOp || !sawSpliceEnd {
		t.Errorf("splice block scanned incompletely: start=%v op=%v end=%v", sawSpliceStart, sawOp, sawSpliceEnd)
	}
}

func TestScannerUnquote(t *testing.T) {
	d := dialect.Aster3.WithUnquotes()
	tokens := Tokenize(source.FromString("f($x, ..$xs)"), d)
	var unquotes, ellipses int
	for _, tok := range tokens {
		switch tok.Type {
		case TokenUnquote:
			unquotes++
		case TokenEllipsis:
			ellipses++
		}
	}
	if unquotes != 2 || ellipses != 1 {
		t.Errorf("got %d unquotes and %d ellipses, want 2 and 1", unquotes, ellipses)
	}
}

func TestScannerComments(t *testing.T) {
	tokens := Tokenize(source.FromString("a /* b /* c */ d */ e // f"), dialect.Aster3)
	got := kinds(tokens)
	want := []TokenType{TokenIdent, TokenIdent}
	if len(got) != len(want) {
		t.Fatalf("tokens after comments: got %v, want %v", got, want)
	}
}

func TestScannerStringPayload(t *testing.T) {
	tokens := Tokenize(source.FromString(`"a\nb"`), dialect.Aster3)
	for _, tok := range tokens {
		if tok.Type == TokenStringLit {
			if tok.Payload != "a\nb" {
				t.Errorf("payload: got %q, want %q", tok.Payload, "a\nb")
			}
			return
		}
	}
	t.Fatal("no string literal scanned")
}
