package vela

//go:generate go tool stringer --linecomment --type TokenKind --output token_string.go

import "strconv"

// TokenKind identifies the lexical class of a [Token]. Its String method
// returns the spelling of fixed tokens, or a description of the class for
// variable ones.
type TokenKind int

// Token kinds.
const (
	TokenEOF     TokenKind = iota // end of input
	TokenIllegal                  // illegal token
	TokenIdent                    // identifier
	TokenNumber                   // number
	TokenString                   // string

	TokenLParen    // (
	TokenRParen    // )
	TokenLBrace    // {
	TokenRBrace    // }
	TokenLBracket  // [
	TokenRBracket  // ]
	TokenComma     // ,
	TokenColon     // :
	TokenSemicolon // ;

	TokenPlus         // +
	TokenMinus        // -
	TokenStar         // *
	TokenSlash        // /
	TokenCaret        // ^
	TokenEqual        // =
	TokenNotEqual     // <>
	TokenLess         // <
	TokenGreater      // >
	TokenLessEqual    // <=
	TokenGreaterEqual // >=
	TokenMatch        // =~
	TokenArrow        // <-

	TokenIs    // is
	TokenIf    // if
	TokenThen  // then
	TokenElse  // else
	TokenAnd   // and
	TokenOr    // or
	TokenNot   // not
	TokenIn    // in
	TokenTrue  // true
	TokenFalse // false
	TokenFun   // fun
)

// keywords maps the lower-case spelling of each reserved word to its kind.
var keywords = map[string]TokenKind{
	"is":    TokenIs,
	"if":    TokenIf,
	"then":  TokenThen,
	"else":  TokenElse,
	"and":   TokenAnd,
	"or":    TokenOr,
	"not":   TokenNot,
	"in":    TokenIn,
	"true":  TokenTrue,
	"false": TokenFalse,
	"fun":   TokenFun,
}

// Pos is a position in source text. Line and Column are 1-based; Column
// counts runes.
type Pos struct {
	Offset int
	Line   int
	Column int
}

// String returns "line:column".
func (p Pos) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Token is a lexical unit produced by the lexer.
type Token struct {
	Kind TokenKind
	Text string
	Pos  Pos
}

// String returns the token text, or the kind description for tokens without
// text.
func (t Token) String() string {
	if t.Text != "" {
		return t.Text
	}

	return t.Kind.String()
}
