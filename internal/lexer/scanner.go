package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/orizon-lang/aster/internal/dialect"
	"github.com/orizon-lang/aster/internal/source"
)

// Scanner turns an input buffer into the materialized token stream the
// parser consumes. The stream always begins with BOF and ends with EOF;
// trivia tokens (whitespace, line ends, comments) are included so the parser
// can trim node spans precisely.
//
// XML literals are not scanned: the TokenXML* family exists for streams
// assembled by other producers, and the parser's XML productions are driven
// purely by those kinds.
type Scanner struct {
	in      *source.Input
	dialect dialect.Dialect
	src     string

	off  int
	line int
	col  int

	tokens []Token
}

// NewScanner creates a scanner over in for the given dialect.
func NewScanner(in *source.Input, d dialect.Dialect) *Scanner {
	return &Scanner{in: in, dialect: d, src: in.Text(), line: 1, col: 1}
}

// Tokenize scans the whole input. Scan failures become TokenError tokens
// carrying the message in Payload; the caller decides how to report them.
func Tokenize(in *source.Input, d dialect.Dialect) []Token {
	s := NewScanner(in, d)
	return s.run()
}

func (s *Scanner) run() []Token {
	bof := s.pos()
	s.emitAt(TokenBOF, "", "", bof, bof)
	for s.off < len(s.src) {
		s.scanToken()
	}
	eof := s.pos()
	s.emitAt(TokenEOF, "", "", eof, eof)
	return s.tokens
}

func (s *Scanner) pos() source.Position {
	return source.Position{
		Filename: s.in.Filename,
		Line:     s.line,
		Column:   s.col,
		Offset:   s.in.Abs(s.off),
	}
}

func (s *Scanner) peek() rune {
	if s.off >= len(s.src) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(s.src[s.off:])
	return r
}

func (s *Scanner) peekAt(n int) rune {
	off := s.off
	for i := 0; i < n; i++ {
		if off >= len(s.src) {
			return -1
		}
		_, w := utf8.DecodeRuneInString(s.src[off:])
		off += w
	}
	if off >= len(s.src) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(s.src[off:])
	return r
}

func (s *Scanner) next() rune {
	if s.off >= len(s.src) {
		return -1
	}
	r, w := utf8.DecodeRuneInString(s.src[s.off:])
	s.off += w
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return r
}

func (s *Scanner) emit(tt TokenType, start source.Position, payload string) {
	end := s.pos()
	lit := s.src[start.Offset-s.in.Abs(0) : s.off]
	s.emitAt(tt, lit, payload, start, end)
}

func (s *Scanner) emitAt(tt TokenType, lit, payload string, start, end source.Position) {
	s.tokens = append(s.tokens, Token{Type: tt, Literal: lit, Payload: payload, Pos: start, End: end})
}

func (s *Scanner) errorf(start source.Position, msg string) {
	s.emit(TokenError, start, msg)
}

// scanToken scans one token. Inside an interpolation splice the caller
// watches brace depth and emits the splice end marker itself.
func (s *Scanner) scanToken() {
	start := s.pos()
	r := s.peek()

	switch {
	case r == ' ' || r == '\t' || r == '\r':
		for {
			r = s.peek()
			if r != ' ' && r != '\t' && r != '\r' {
				break
			}
			s.next()
		}
		s.emit(TokenWhitespace, start, "")

	case r == '\n':
		s.scanLineEnds(start)

	case r == '/' && s.peekAt(1) == '/':
		for s.peek() != -1 && s.peek() != '\n' {
			s.next()
		}
		s.emit(TokenComment, start, "")

	case r == '/' && s.peekAt(1) == '*':
		s.scanBlockComment(start)

	case r == '`':
		s.scanBackquoted(start)

	case r == '"':
		s.scanString(start)

	case r == '\'':
		s.scanQuoteOrChar(start)

	case r == '$' && s.dialect.AllowUnquotes:
		s.scanUnquote(start)

	case r == '$' && s.peekAt(1) == '{' && s.dialect.AllowSplices:
		s.next()
		s.next()
		s.emit(TokenSpliceBrace, start, "")

	case isIdentStart(r):
		s.scanIdentOrKeyword(start)

	case r >= '0' && r <= '9':
		s.scanNumber(start)

	case r == '.':
		s.scanDots(start)

	default:
		if s.scanPunct(start, r) {
			return
		}
		if isOperatorChar(r) {
			s.scanOperator(start)
			return
		}
		s.next()
		s.errorf(start, "illegal character")
	}
}

// scanLineEnds consumes one or more newlines. Two newlines separated only by
// horizontal whitespace form a single LFLF token; the indentation of the
// following code line is left for the next whitespace token.
func (s *Scanner) scanLineEnds(start source.Position) {
	s.next() // first '\n'
	newlines := 1
	for {
		save := s.off
		saveLine, saveCol := s.line, s.col
		for s.peek() == ' ' || s.peek() == '\t' || s.peek() == '\r' {
			s.next()
		}
		if s.peek() == '\n' {
			s.next()
			newlines++
			continue
		}
		s.off, s.line, s.col = save, saveLine, saveCol
		break
	}
	if newlines > 1 {
		s.emit(TokenLFLF, start, "")
	} else {
		s.emit(TokenLF, start, "")
	}
}

func (s *Scanner) scanBlockComment(start source.Position) {
	s.next() // '/'
	s.next() // '*'
	nesting := 1
	for nesting > 0 {
		r := s.peek()
		if r == -1 {
			s.errorf(start, "unclosed comment")
			return
		}
		if r == '/' && s.peekAt(1) == '*' {
			s.next()
			s.next()
			nesting++
			continue
		}
		if r == '*' && s.peekAt(1) == '/' {
			s.next()
			s.next()
			nesting--
			continue
		}
		s.next()
	}
	s.emit(TokenBlockComment, start, "")
}

func (s *Scanner) scanBackquoted(start source.Position) {
	s.next() // '`'
	var b strings.Builder
	for {
		r := s.peek()
		if r == -1 || r == '\n' {
			s.errorf(start, "unclosed backquoted identifier")
			return
		}
		s.next()
		if r == '`' {
			break
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		s.errorf(start, "empty backquoted identifier")
		return
	}
	s.emit(TokenBackquotedIdent, start, b.String())
}

func (s *Scanner) scanIdentOrKeyword(start source.Position) {
	word, opSuffix := s.scanWord()
	if opSuffix {
		s.emit(TokenOpIdent, start, "")
		return
	}
	if word == "_" {
		s.emit(TokenUnderscore, start, "")
		return
	}
	if tt, ok := keywords[word]; ok {
		s.emit(tt, start, "")
		return
	}
	if tt, ok := dialectKeywords[word]; ok && s.dialectReserves(tt) {
		s.emit(tt, start, "")
		return
	}
	// Interpolator id: identifier immediately followed by a quote.
	if s.peek() == '"' && s.dialect.AllowInterpolation {
		end := s.pos()
		s.emitAt(TokenInterpID, word, "", start, end)
		s.scanInterpolation()
		return
	}
	s.emit(TokenIdent, start, "")
}

// scanWord consumes an alphanumeric identifier, including an operator
// suffix after a trailing underscore (foo_+). Reports whether the suffix
// form was taken. A bare underscore never takes the suffix.
func (s *Scanner) scanWord() (string, bool) {
	var b strings.Builder
	for isIdentPart(s.peek()) {
		b.WriteRune(s.next())
	}
	word := b.String()
	if word != "_" && strings.HasSuffix(word, "_") && isOperatorChar(s.peek()) {
		for isOperatorChar(s.peek()) {
			s.next()
		}
		return word, true
	}
	return word, false
}

func (s *Scanner) dialectReserves(tt TokenType) bool {
	switch tt {
	case TokenEnum:
		return s.dialect.AllowEnums
	case TokenExport:
		return s.dialect.AllowExportClause
	case TokenGiven:
		return s.dialect.AllowGivenUsing
	case TokenThen:
		return s.dialect.AllowSignificantIndentation
	}
	return false
}

func (s *Scanner) scanNumber(start source.Position) {
	isHex := false
	if s.peek() == '0' && (s.peekAt(1) == 'x' || s.peekAt(1) == 'X') {
		isHex = true
		s.next()
		s.next()
		for isHexDigit(s.peek()) || s.peek() == '_' {
			s.next()
		}
	} else {
		for isDigit(s.peek()) || s.peek() == '_' {
			s.next()
		}
	}

	isFloating := false
	if !isHex && s.peek() == '.' && isDigit(s.peekAt(1)) {
		isFloating = true
		s.next()
		for isDigit(s.peek()) || s.peek() == '_' {
			s.next()
		}
	}
	if !isHex && (s.peek() == 'e' || s.peek() == 'E') {
		la := s.peekAt(1)
		la2 := s.peekAt(2)
		if isDigit(la) || ((la == '+' || la == '-') && isDigit(la2)) {
			isFloating = true
			s.next()
			if s.peek() == '+' || s.peek() == '-' {
				s.next()
			}
			for isDigit(s.peek()) {
				s.next()
			}
		}
	}

	switch s.peek() {
	case 'l', 'L':
		if isFloating {
			s.next()
			s.errorf(start, "long suffix on floating-point literal")
			return
		}
		s.next()
		s.emit(TokenLongLit, start, "")
	case 'f', 'F':
		s.next()
		s.emit(TokenFloatLit, start, "")
	case 'd', 'D':
		s.next()
		s.emit(TokenDoubleLit, start, "")
	default:
		if isFloating {
			s.emit(TokenDoubleLit, start, "")
		} else {
			s.emit(TokenIntLit, start, "")
		}
	}
}

func (s *Scanner) scanString(start source.Position) {
	if strings.HasPrefix(s.src[s.off:], `"""`) {
		s.next()
		s.next()
		s.next()
		var b strings.Builder
		for {
			if s.off >= len(s.src) {
				s.errorf(start, "unclosed multi-line string literal")
				return
			}
			if strings.HasPrefix(s.src[s.off:], `"""`) && s.peekAt(3) != '"' {
				s.next()
				s.next()
				s.next()
				break
			}
			b.WriteRune(s.next())
		}
		s.emit(TokenStringLit, start, b.String())
		return
	}

	s.next() // opening quote
	var b strings.Builder
	for {
		r := s.peek()
		if r == -1 || r == '\n' {
			s.errorf(start, "unclosed string literal")
			return
		}
		s.next()
		if r == '"' {
			break
		}
		if r == '\\' {
			dec, ok := s.scanEscape()
			if !ok {
				s.errorf(start, "invalid escape sequence")
				return
			}
			b.WriteRune(dec)
			continue
		}
		b.WriteRune(r)
	}
	s.emit(TokenStringLit, start, b.String())
}

func (s *Scanner) scanEscape() (rune, bool) {
	r := s.next()
	switch r {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case '0':
		return 0, true
	case '\\':
		return '\\', true
	case '\'':
		return '\'', true
	case '"':
		return '"', true
	case 'u':
		var v rune
		for i := 0; i < 4; i++ {
			d := s.peek()
			if !isHexDigit(d) {
				return 0, false
			}
			s.next()
			v = v*16 + hexValue(d)
		}
		return v, true
	}
	return 0, false
}

// scanQuoteOrChar disambiguates '{ '[ quotes, character literals, symbol
// literals and quoted identifiers.
func (s *Scanner) scanQuoteOrChar(start source.Position) {
	la := s.peekAt(1)
	if s.dialect.AllowQuotedTerms && la == '{' {
		s.next()
		s.next()
		s.emit(TokenQuoteBrace, start, "")
		return
	}
	if s.dialect.AllowQuotedTerms && la == '[' {
		s.next()
		s.next()
		s.emit(TokenQuoteBracket, start, "")
		return
	}
	// 'x' is a char literal; '\n' likewise.
	if la == '\\' || (la != -1 && s.peekAt(2) == '\'') {
		s.next() // opening quote
		var ch rune
		if s.peek() == '\\' {
			s.next()
			dec, ok := s.scanEscape()
			if !ok {
				s.errorf(start, "invalid escape in character literal")
				return
			}
			ch = dec
		} else {
			ch = s.next()
		}
		if s.peek() != '\'' {
			s.errorf(start, "unclosed character literal")
			return
		}
		s.next()
		s.emit(TokenCharLit, start, string(ch))
		return
	}
	if isIdentStart(la) {
		s.next() // quote
		word, _ := s.scanWord()
		if s.dialect.AllowSymbolLiterals {
			s.emit(TokenSymbolLit, start, word)
			return
		}
		if s.dialect.AllowQuotedTerms {
			s.emit(TokenQuoteID, start, word)
			return
		}
		s.errorf(start, "symbol literals are not supported in this dialect")
		return
	}
	s.next()
	s.errorf(start, "unclosed character literal")
}

// scanUnquote scans a quasiquote escape: $ident or ${...}. The payload is
// the escape body; the parser re-parses it on demand.
func (s *Scanner) scanUnquote(start source.Position) {
	s.next() // '$'
	if s.peek() == '{' {
		bodyStart := s.off + 1
		depth := 0
		for {
			r := s.peek()
			if r == -1 {
				s.errorf(start, "unclosed unquote")
				return
			}
			s.next()
			if r == '{' {
				depth++
			} else if r == '}' {
				depth--
				if depth == 0 {
					break
				}
			}
		}
		s.emit(TokenUnquote, start, s.src[bodyStart:s.off-1])
		return
	}
	if isIdentStart(s.peek()) {
		word, _ := s.scanWord()
		s.emit(TokenUnquote, start, word)
		return
	}
	s.errorf(start, "expected identifier or block after $")
}

func (s *Scanner) scanDots(start source.Position) {
	dots := 0
	for s.peek() == '.' {
		s.next()
		dots++
		if dots == 3 {
			break
		}
	}
	if dots >= 2 && s.peek() == '$' && s.dialect.AllowUnquotes {
		s.emit(TokenEllipsis, start, string(rune('0'+dots)))
		return
	}
	// Re-emit plain dots one at a time.
	for i := 0; i < dots; i++ {
		p := start
		p.Column += i
		p.Offset += i
		end := p
		end.Column++
		end.Offset++
		s.emitAt(TokenDot, ".", "", p, end)
	}
}

func (s *Scanner) scanPunct(start source.Position, r rune) bool {
	var tt TokenType
	switch r {
	case '(':
		tt = TokenLParen
	case ')':
		tt = TokenRParen
	case '[':
		tt = TokenLBracket
	case ']':
		tt = TokenRBracket
	case '{':
		tt = TokenLBrace
	case '}':
		tt = TokenRBrace
	case ',':
		tt = TokenComma
	case ';':
		tt = TokenSemicolon
	default:
		return false
	}
	s.next()
	s.emit(tt, start, "")
	return true
}

// reservedOperators are operator-character sequences that are their own
// token kinds rather than operator identifiers.
var reservedOperators = map[string]TokenType{
	":":   TokenColon,
	"=":   TokenEq,
	"=>":  TokenFatArrow,
	"<-":  TokenLeftArrow,
	"<:":  TokenSubtype,
	">:":  TokenSupertype,
	"<%":  TokenViewBound,
	"#":   TokenHash,
	"@":   TokenAt,
	"?=>": TokenCtxArrow,
	"=>>": TokenTypeLambdaArrow,
}

func (s *Scanner) scanOperator(start source.Position) {
	var b strings.Builder
	for isOperatorChar(s.peek()) {
		b.WriteRune(s.next())
	}
	op := b.String()
	if tt, ok := reservedOperators[op]; ok {
		switch tt {
		case TokenCtxArrow:
			if !s.dialect.AllowContextFunctionTypes {
				tt = TokenOpIdent
			}
		case TokenTypeLambdaArrow:
			if !s.dialect.AllowTypeLambdas && !s.dialect.AllowPolymorphicFunctionTypes {
				tt = TokenOpIdent
			}
		case TokenViewBound:
			if !s.dialect.AllowViewBounds {
				tt = TokenOpIdent
			}
		}
		s.emit(tt, start, "")
		return
	}
	s.emit(TokenOpIdent, start, "")
}

// scanInterpolation scans the remainder of an interpolated string after its
// id token: the start quote, alternating parts and splices, and the end
// quote. Splice bodies are scanned with the ordinary token rules.
func (s *Scanner) scanInterpolation() {
	start := s.pos()
	triple := strings.HasPrefix(s.src[s.off:], `"""`)
	if triple {
		s.next()
		s.next()
		s.next()
	} else {
		s.next()
	}
	s.emit(TokenInterpStart, start, "")

	partStart := s.pos()
	var part strings.Builder
	flushPart := func(end source.Position) {
		lit := s.src[partStart.Offset-s.in.Abs(0) : end.Offset-s.in.Abs(0)]
		s.emitAt(TokenInterpPart, lit, part.String(), partStart, end)
		part.Reset()
	}

	for {
		r := s.peek()
		if r == -1 {
			s.errorf(start, "unclosed string interpolation")
			return
		}
		if r == '"' {
			if triple {
				if strings.HasPrefix(s.src[s.off:], `"""`) && s.peekAt(3) != '"' {
					endPos := s.pos()
					flushPart(endPos)
					qStart := s.pos()
					s.next()
					s.next()
					s.next()
					s.emit(TokenInterpEnd, qStart, "")
					return
				}
				part.WriteRune(s.next())
				continue
			}
			endPos := s.pos()
			flushPart(endPos)
			qStart := s.pos()
			s.next()
			s.emit(TokenInterpEnd, qStart, "")
			return
		}
		if r == '\n' && !triple {
			s.errorf(start, "unclosed string interpolation")
			return
		}
		if r == '$' {
			la := s.peekAt(1)
			switch {
			case la == '$':
				s.next()
				s.next()
				part.WriteByte('$')
				continue
			case la == '{':
				endPos := s.pos()
				flushPart(endPos)
				spStart := s.pos()
				s.next() // $
				s.next() // {
				s.emit(TokenInterpSpliceStart, spStart, "")
				s.scanSpliceBody()
				partStart = s.pos()
				continue
			case isIdentStart(la):
				endPos := s.pos()
				flushPart(endPos)
				spStart := s.pos()
				s.next() // $
				spEnd := s.pos()
				s.emitAt(TokenInterpSpliceStart, "$", "", spStart, spEnd)
				idStart := s.pos()
				word, _ := s.scanWord()
				idEnd := s.pos()
				s.emitAt(TokenIdent, word, "", idStart, idEnd)
				s.emitAt(TokenInterpSpliceEnd, "", "", idEnd, idEnd)
				partStart = s.pos()
				continue
			default:
				part.WriteRune(s.next())
				continue
			}
		}
		if r == '\\' && !triple {
			s.next()
			dec, ok := s.scanEscape()
			if !ok {
				s.errorf(start, "invalid escape sequence")
				return
			}
			part.WriteRune(dec)
			continue
		}
		part.WriteRune(s.next())
	}
}

// scanSpliceBody scans ordinary tokens until the brace that closes a ${
// splice, which becomes the splice end marker.
func (s *Scanner) scanSpliceBody() {
	depth := 1
	for {
		r := s.peek()
		if r == -1 {
			s.errorf(s.pos(), "unclosed interpolation splice")
			return
		}
		if r == '{' || (r == '$' && s.peekAt(1) == '{' && s.dialect.AllowSplices && !s.dialect.AllowUnquotes) {
			depth++
		}
		if r == '}' {
			depth--
			if depth == 0 {
				brStart := s.pos()
				s.next()
				s.emit(TokenInterpSpliceEnd, brStart, "")
				return
			}
		}
		s.scanToken()
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func hexValue(r rune) rune {
	switch {
	case isDigit(r):
		return r - '0'
	case r >= 'a' && r <= 'f':
		return r - 'a' + 10
	default:
		return r - 'A' + 10
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

// isOperatorChar reports whether r may appear in an operator identifier.
func isOperatorChar(r rune) bool {
	switch r {
	case '!', '#', '%', '&', '*', '+', '-', '/', ':', '<', '=', '>', '?', '@', '\\', '^', '|', '~':
		return true
	}
	return unicode.In(r, unicode.Sm, unicode.So)
}
