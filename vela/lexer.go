package vela

import (
	"strings"
	"unicode"
)

type lexer struct {
	src      []rune
	off      int
	line     int
	col      int
	listener ErrorListener
}

func newLexer(src string, listener ErrorListener) *lexer {
	return &lexer{
		src:      []rune(src),
		line:     1,
		col:      1,
		listener: listener,
	}
}

func (l *lexer) pos() Pos {
	return Pos{Offset: l.off, Line: l.line, Column: l.col}
}

func (l *lexer) peek(n int) rune {
	if l.off+n < len(l.src) {
		return l.src[l.off+n]
	}

	return 0
}

func (l *lexer) advance() rune {
	r := l.src[l.off]
	l.off++

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return r
}

func (l *lexer) errorf(pos Pos, msg string) Token {
	l.listener.SyntaxError(pos, msg)

	return Token{Kind: TokenIllegal, Pos: pos}
}

func (l *lexer) skipSpace() {
	for l.off < len(l.src) {
		switch r := l.src[l.off]; {
		case r == '#':
			for l.off < len(l.src) && l.src[l.off] != '\n' {
				l.advance()
			}
		case unicode.IsSpace(r):
			l.advance()
		default:
			return
		}
	}
}

// next scans the next token. Errors are reported to the listener and yield a
// TokenIllegal.
func (l *lexer) next() Token {
	l.skipSpace()

	start := l.pos()

	if l.off >= len(l.src) {
		return Token{Kind: TokenEOF, Pos: start}
	}

	r := l.src[l.off]

	switch {
	case isIdentStart(r):
		return l.ident(start)
	case isDigit(r) || (r == '.' && isDigit(l.peek(1))):
		return l.number(start)
	case r == '"':
		return l.string(start)
	}

	l.advance()

	kind := TokenIllegal

	switch r {
	case '(':
		kind = TokenLParen
	case ')':
		kind = TokenRParen
	case '{':
		kind = TokenLBrace
	case '}':
		kind = TokenRBrace
	case '[':
		kind = TokenLBracket
	case ']':
		kind = TokenRBracket
	case ',':
		kind = TokenComma
	case ':':
		kind = TokenColon
	case ';':
		kind = TokenSemicolon
	case '+':
		kind = TokenPlus
	case '-':
		kind = TokenMinus
	case '*':
		kind = TokenStar
	case '/':
		kind = TokenSlash
	case '^':
		kind = TokenCaret
	case '=':
		kind = TokenEqual
		if l.peek(0) == '~' {
			l.advance()

			kind = TokenMatch
		}
	case '>':
		kind = TokenGreater
		if l.peek(0) == '=' {
			l.advance()

			kind = TokenGreaterEqual
		}
	case '<':
		kind = TokenLess

		switch l.peek(0) {
		case '=':
			l.advance()

			kind = TokenLessEqual
		case '>':
			l.advance()

			kind = TokenNotEqual
		case '-':
			l.advance()

			kind = TokenArrow
		}
	default:
		return l.errorf(start, "unexpected character "+quoteRune(r))
	}

	return Token{
		Kind: kind,
		Text: string(l.src[start.Offset:l.off]),
		Pos:  start,
	}
}

func (l *lexer) ident(start Pos) Token {
	for l.off < len(l.src) && isIdentPart(l.src[l.off]) {
		l.advance()
	}

	text := string(l.src[start.Offset:l.off])

	kind := TokenIdent
	if kw, ok := keywords[strings.ToLower(text)]; ok {
		kind = kw
	}

	return Token{Kind: kind, Text: text, Pos: start}
}

func (l *lexer) number(start Pos) Token {
	l.digits()

	if l.peek(0) == '.' && isDigit(l.peek(1)) {
		l.advance()
		l.digits()
	} else if l.peek(0) == '.' && !isIdentStart(l.peek(1)) {
		// trailing point, as in "1."
		l.advance()
	}

	if e := l.peek(0); e == 'e' || e == 'E' {
		n := 1
		if s := l.peek(1); s == '+' || s == '-' {
			n = 2
		}

		if !isDigit(l.peek(n)) {
			l.advance()

			return l.errorf(start, "malformed exponent in number")
		}

		for range n {
			l.advance()
		}

		l.digits()
	}

	return Token{
		Kind: TokenNumber,
		Text: string(l.src[start.Offset:l.off]),
		Pos:  start,
	}
}

func (l *lexer) digits() {
	for l.off < len(l.src) && isDigit(l.src[l.off]) {
		l.advance()
	}
}

// string scans a double-quoted literal. Text holds the unescaped value.
func (l *lexer) string(start Pos) Token {
	l.advance() // opening quote

	var b strings.Builder

	for {
		if l.off >= len(l.src) {
			return l.errorf(start, "unterminated string")
		}

		r := l.advance()

		switch r {
		case '"':
			return Token{Kind: TokenString, Text: b.String(), Pos: start}
		case '\n':
			return l.errorf(start, "unterminated string")
		case '\\':
			if l.off >= len(l.src) {
				return l.errorf(start, "unterminated string")
			}

			epos := l.pos()

			switch e := l.advance(); e {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			case '"', '\\':
				b.WriteRune(e)
			default:
				return l.errorf(epos, "unknown escape sequence \\"+string(e))
			}
		default:
			b.WriteRune(r)
		}
	}
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentPart(r rune) bool { return isIdentStart(r) || unicode.IsDigit(r) }

func quoteRune(r rune) string { return "'" + string(r) + "'" }
