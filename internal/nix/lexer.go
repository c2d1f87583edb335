package nix

import (
	"fmt"
	"strings"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokIdent
	tokString
	tokIndentString
	tokURI
	tokNumber
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokLParen
	tokRParen
	tokSemi
	tokColon
	tokComma
	tokDot
	tokEllipsis
	tokAt
	tokAssign
	tokOp
)

type token struct {
	typ   tokenType
	text  string
	parts []Part // filled for tokString and tokIndentString
	start Position
	end   Position // exclusive
}

// ParseError reports a syntax problem with its source location.
type ParseError struct {
	Pos Position
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// lexer scans source text into tokens, tracking 1-based line/column
// positions the same way the position index later resolves them: one column
// per character, reset to 1 on newline.
type lexer struct {
	src  []rune
	cur  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src), line: 1, col: 1}
}

func (l *lexer) pos() Position {
	return Position{Line: l.line, Column: l.col}
}

func (l *lexer) eof() bool {
	return l.cur >= len(l.src)
}

func (l *lexer) peek() rune {
	if l.eof() {
		return 0
	}
	return l.src[l.cur]
}

func (l *lexer) peekAt(n int) rune {
	if l.cur+n >= len(l.src) {
		return 0
	}
	return l.src[l.cur+n]
}

func (l *lexer) advance() rune {
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *lexer) errorf(pos Position, format string, args ...interface{}) error {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// lex scans the whole source into a token slice ending with tokEOF.
func lex(src string) ([]token, error) {
	l := newLexer(src)
	var toks []token

	for {
		if err := l.skipTrivia(); err != nil {
			return nil, err
		}
		if l.eof() {
			toks = append(toks, token{typ: tokEOF, start: l.pos(), end: l.pos()})
			return toks, nil
		}

		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
	}
}

// skipTrivia consumes whitespace and comments.
func (l *lexer) skipTrivia() error {
	for !l.eof() {
		switch {
		case isSpace(l.peek()):
			l.advance()
		case l.peek() == '#':
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}
		case l.peek() == '/' && l.peekAt(1) == '*':
			start := l.pos()
			l.advance()
			l.advance()
			for {
				if l.eof() {
					return l.errorf(start, "unterminated block comment")
				}
				if l.peek() == '*' && l.peekAt(1) == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *lexer) next() (token, error) {
	start := l.pos()
	ch := l.peek()

	switch {
	case ch == '"':
		return l.lexString()
	case ch == '\'' && l.peekAt(1) == '\'':
		return l.lexIndentedString()
	case isIdentStart(ch):
		return l.lexIdentOrURI()
	case isDigit(ch):
		return l.lexNumber()
	}

	l.advance()
	switch ch {
	case '{':
		return token{typ: tokLBrace, text: "{", start: start, end: l.pos()}, nil
	case '}':
		return token{typ: tokRBrace, text: "}", start: start, end: l.pos()}, nil
	case '[':
		return token{typ: tokLBracket, text: "[", start: start, end: l.pos()}, nil
	case ']':
		return token{typ: tokRBracket, text: "]", start: start, end: l.pos()}, nil
	case '(':
		return token{typ: tokLParen, text: "(", start: start, end: l.pos()}, nil
	case ')':
		return token{typ: tokRParen, text: ")", start: start, end: l.pos()}, nil
	case ';':
		return token{typ: tokSemi, text: ";", start: start, end: l.pos()}, nil
	case ':':
		return token{typ: tokColon, text: ":", start: start, end: l.pos()}, nil
	case ',':
		return token{typ: tokComma, text: ",", start: start, end: l.pos()}, nil
	case '@':
		return token{typ: tokAt, text: "@", start: start, end: l.pos()}, nil
	case '.':
		if l.peek() == '.' && l.peekAt(1) == '.' {
			l.advance()
			l.advance()
			return token{typ: tokEllipsis, text: "...", start: start, end: l.pos()}, nil
		}
		return token{typ: tokDot, text: ".", start: start, end: l.pos()}, nil
	case '=':
		if l.peek() == '=' {
			l.advance()
			return token{typ: tokOp, text: "==", start: start, end: l.pos()}, nil
		}
		return token{typ: tokAssign, text: "=", start: start, end: l.pos()}, nil
	}

	return token{typ: tokOp, text: string(ch), start: start, end: l.pos()}, nil
}

// lexString scans a double-quoted string into raw and interpolation parts.
// Part spans exclude the quote delimiters.
func (l *lexer) lexString() (token, error) {
	start := l.pos()
	l.advance() // opening quote

	var parts []Part
	rawStart := l.pos()
	var raw strings.Builder

	flushRaw := func(end Position) {
		if raw.Len() > 0 {
			parts = append(parts, &PartRaw{
				Content: raw.String(),
				Src:     Span{Start: rawStart, End: end},
			})
			raw.Reset()
		}
	}

	for {
		if l.eof() {
			return token{}, l.errorf(start, "unterminated string")
		}
		switch {
		case l.peek() == '"':
			closing := l.pos()
			flushRaw(closing)
			l.advance()
			if len(parts) == 0 {
				// An empty literal still gets one empty raw part so the
				// editor has a span to replace.
				parts = append(parts, &PartRaw{Src: Span{Start: closing, End: closing}})
			}
			return token{typ: tokString, parts: parts, start: start, end: l.pos()}, nil
		case l.peek() == '\\':
			raw.WriteRune(l.advance())
			if !l.eof() {
				raw.WriteRune(l.advance())
			}
		case l.peek() == '$' && l.peekAt(1) == '{':
			interpStart := l.pos()
			flushRaw(interpStart)
			if err := l.skipInterpolation(); err != nil {
				return token{}, err
			}
			parts = append(parts, &PartInterpolation{Src: Span{Start: interpStart, End: l.pos()}})
			rawStart = l.pos()
		default:
			raw.WriteRune(l.advance())
		}
	}
}

// lexIndentedString scans a ''...'' string. Same part structure as
// lexString; a doubled '' inside the body ends the literal.
func (l *lexer) lexIndentedString() (token, error) {
	start := l.pos()
	l.advance()
	l.advance() // opening ''

	var parts []Part
	rawStart := l.pos()
	var raw strings.Builder

	flushRaw := func(end Position) {
		if raw.Len() > 0 {
			parts = append(parts, &PartRaw{
				Content: raw.String(),
				Src:     Span{Start: rawStart, End: end},
			})
			raw.Reset()
		}
	}

	for {
		if l.eof() {
			return token{}, l.errorf(start, "unterminated indented string")
		}
		switch {
		case l.peek() == '\'' && l.peekAt(1) == '\'':
			// ''' escapes a literal '' inside the body.
			if l.peekAt(2) == '\'' {
				raw.WriteRune(l.advance())
				raw.WriteRune(l.advance())
				raw.WriteRune(l.advance())
				continue
			}
			closing := l.pos()
			flushRaw(closing)
			l.advance()
			l.advance()
			if len(parts) == 0 {
				parts = append(parts, &PartRaw{Src: Span{Start: closing, End: closing}})
			}
			return token{typ: tokIndentString, parts: parts, start: start, end: l.pos()}, nil
		case l.peek() == '$' && l.peekAt(1) == '{':
			interpStart := l.pos()
			flushRaw(interpStart)
			if err := l.skipInterpolation(); err != nil {
				return token{}, err
			}
			parts = append(parts, &PartInterpolation{Src: Span{Start: interpStart, End: l.pos()}})
			rawStart = l.pos()
		default:
			raw.WriteRune(l.advance())
		}
	}
}

// skipInterpolation consumes a balanced `${ ... }`, skipping over any nested
// strings so a `}` inside them does not close the interpolation.
func (l *lexer) skipInterpolation() error {
	start := l.pos()
	l.advance() // $
	l.advance() // {
	depth := 1

	for depth > 0 {
		if l.eof() {
			return l.errorf(start, "unterminated interpolation")
		}
		switch l.peek() {
		case '{':
			depth++
			l.advance()
		case '}':
			depth--
			l.advance()
		case '"':
			l.advance()
			for !l.eof() && l.peek() != '"' {
				if l.peek() == '\\' {
					l.advance()
				}
				if !l.eof() {
					l.advance()
				}
			}
			if !l.eof() {
				l.advance()
			}
		default:
			l.advance()
		}
	}
	return nil
}

// lexIdentOrURI scans an identifier, upgrading it to a bare URI literal when
// a colon immediately follows and is itself immediately followed by a URI
// character (the same rule Nix uses to tell `github:owner/repo` apart from a
// function head like `inputs: ...`).
func (l *lexer) lexIdentOrURI() (token, error) {
	start := l.pos()
	var text strings.Builder

	for !l.eof() && isIdentChar(l.peek()) {
		text.WriteRune(l.advance())
	}

	if l.peek() == ':' && isURIChar(l.peekAt(1)) {
		text.WriteRune(l.advance())
		for !l.eof() && isURIChar(l.peek()) {
			text.WriteRune(l.advance())
		}
		return token{typ: tokURI, text: text.String(), start: start, end: l.pos()}, nil
	}

	return token{typ: tokIdent, text: text.String(), start: start, end: l.pos()}, nil
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos()
	var text strings.Builder
	for !l.eof() && (isDigit(l.peek()) || l.peek() == '.') {
		// `1..2` never occurs; a trailing dot would belong to a key path,
		// which never starts with a digit anyway.
		text.WriteRune(l.advance())
	}
	return token{typ: tokNumber, text: text.String(), start: start, end: l.pos()}, nil
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentChar(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == '\'' || ch == '-'
}

func isURIChar(ch rune) bool {
	if isIdentStart(ch) || isDigit(ch) {
		return true
	}
	switch ch {
	case '%', '/', '?', ':', '@', '&', '=', '+', '$', ',', '-', '_', '.', '!', '~', '*', '\'':
		return true
	}
	return false
}
