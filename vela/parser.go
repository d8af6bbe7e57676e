package vela

import (
	"errors"
	"strconv"
	"strings"
)

// bailout unwinds the parser after the first reported error.
type bailout struct{}

type parser struct {
	toks     []Token
	pos      int
	listener ErrorListener
}

// Parse parses src into a PROGRAM node without consulting any cache. Errors
// are reported to each listener and returned together as a [*ParseError];
// no AST is returned on error.
func Parse(src string, ls ...ErrorListener) (*AST, error) {
	var collector ErrorCollector

	p := &parser{listener: append(listeners{&collector}, ls...)}

	ast, ok := p.parse(src)
	if !ok || len(collector.Errors) > 0 {
		return nil, &ParseError{Errors: collector.Errors, Source: src}
	}

	return ast, nil
}

func (p *parser) parse(src string) (ast *AST, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, isBailout := r.(bailout); !isBailout {
				panic(r)
			}

			ast, ok = nil, false
		}
	}()

	lex := newLexer(src, p.listener)

	for {
		tok := lex.next()
		if tok.Kind == TokenIllegal {
			return nil, false
		}

		p.toks = append(p.toks, tok)

		if tok.Kind == TokenEOF {
			break
		}
	}

	prog := newAST(OpProgram, nil, p.forms(TokenEOF)...)

	return prog, true
}

func (p *parser) peek() Token { return p.peekAt(0) }

func (p *parser) peekAt(n int) Token {
	if i := p.pos + n; i < len(p.toks) {
		return p.toks[i]
	}

	return p.toks[len(p.toks)-1]
}

func (p *parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}

	return tok
}

func (p *parser) accept(kind TokenKind) bool {
	if p.peek().Kind == kind {
		p.next()

		return true
	}

	return false
}

func (p *parser) expect(kind TokenKind) Token {
	tok := p.peek()
	if tok.Kind != kind {
		p.errorf(tok, "expected "+describe(kind)+", found "+describeToken(tok))
	}

	return p.next()
}

func (p *parser) errorf(tok Token, msg string) {
	p.listener.SyntaxError(tok.Pos, msg)
	panic(bailout{})
}

func describe(kind TokenKind) string {
	switch kind {
	case TokenEOF, TokenIdent, TokenNumber, TokenString, TokenIllegal:
		return kind.String()
	default:
		return strconv.Quote(kind.String())
	}
}

func describeToken(tok Token) string {
	switch tok.Kind {
	case TokenEOF:
		return tok.Kind.String()
	case TokenString:
		return "string " + strconv.Quote(tok.Text)
	case TokenIdent, TokenNumber:
		return tok.Kind.String() + " " + strconv.Quote(tok.Text)
	default:
		return strconv.Quote(tok.String())
	}
}

// forms parses forms until the closing token, which is consumed.
func (p *parser) forms(end TokenKind) []*AST {
	var forms []*AST

	for {
		for p.accept(TokenSemicolon) {
		}

		if p.accept(end) {
			return forms
		}

		if p.peek().Kind == TokenEOF {
			p.errorf(p.peek(), "expected "+describe(end)+", found end of input")
		}

		forms = append(forms, p.form())
	}
}

func (p *parser) form() *AST {
	if p.peek().Kind == TokenIdent {
		switch p.peekAt(1).Kind {
		case TokenIs, TokenArrow:
			return p.binding()
		case TokenLParen:
			if p.isFundef() {
				return p.fundef()
			}
		}
	}

	return p.expr()
}

// isFundef distinguishes "f(t: real) ..." and "f() {...}" from a call.
func (p *parser) isFundef() bool {
	switch p.peekAt(2).Kind {
	case TokenIdent:
		return p.peekAt(3).Kind == TokenColon
	case TokenRParen:
		k := p.peekAt(3).Kind

		return k == TokenColon || k == TokenLBrace
	default:
		return false
	}
}

func (p *parser) binding() *AST {
	name := p.next()
	p.next() // is, <-

	n := newAST(OpBind, &name, p.expr())
	n.deterministic = false

	return n
}

func (p *parser) fundef() *AST {
	name := p.next()
	params, ret, body := p.signatureAndBody()

	markTail(body, name.Text)

	n := newAST(OpFundef, &name, params, ret, body)
	n.deterministic = false

	return n
}

// fun parses an anonymous function literal.
func (p *parser) fun() *AST {
	tok := p.expect(TokenFun)
	params, ret, body := p.signatureAndBody()

	return newAST(OpFun, &tok, params, ret, body)
}

func (p *parser) signatureAndBody() (params, ret, body *AST) {
	lparen := p.expect(TokenLParen)

	var list []*AST

	seen := make(map[string]bool)

	if p.peek().Kind != TokenRParen {
		for {
			pname := p.expect(TokenIdent)
			if canon := Canonical(pname.Text); seen[canon] {
				p.listener.SyntaxError(pname.Pos, "duplicate parameter "+strconv.Quote(pname.Text))
			} else {
				seen[canon] = true
			}

			p.expect(TokenColon)
			list = append(list, newAST(OpParam, &pname, p.typeName()))

			if !p.accept(TokenComma) {
				break
			}
		}
	}

	p.expect(TokenRParen)

	params = newAST(OpParams, &lparen, list...)

	if p.accept(TokenColon) {
		ret = p.typeName()
	} else {
		ret = newAST(OpType, nil)
	}

	body = p.block()

	return params, ret, body
}

func (p *parser) typeName() *AST {
	tok := p.peek()
	if tok.Kind != TokenIdent {
		p.errorf(tok, "expected type name, found "+describeToken(tok))
	}

	typ, ok := ParseType(tok.Text)
	if !ok {
		p.errorf(tok, "unknown type "+strconv.Quote(tok.Text))
	}

	p.next()

	n := newAST(OpType, &tok)
	n.typ = typ

	return n
}

func (p *parser) block() *AST {
	lbrace := p.expect(TokenLBrace)

	return newAST(OpBlock, &lbrace, p.forms(TokenRBrace)...)
}

func (p *parser) expr() *AST { return p.or() }

func (p *parser) or() *AST {
	lhs := p.and()

	for p.peek().Kind == TokenOr {
		tok := p.next()
		lhs = newAST(OpOr, &tok, lhs, p.and())
	}

	return lhs
}

func (p *parser) and() *AST {
	lhs := p.not()

	for p.peek().Kind == TokenAnd {
		tok := p.next()
		lhs = newAST(OpAnd, &tok, lhs, p.not())
	}

	return lhs
}

func (p *parser) not() *AST {
	if p.peek().Kind == TokenNot {
		tok := p.next()

		return newAST(OpNot, &tok, p.not())
	}

	return p.comparison()
}

var comparisons = map[TokenKind]Op{
	TokenEqual:        OpEqual,
	TokenNotEqual:     OpNotEqual,
	TokenLess:         OpLess,
	TokenGreater:      OpGreater,
	TokenLessEqual:    OpLessEqual,
	TokenGreaterEqual: OpGreaterEqual,
	TokenMatch:        OpMatch,
	TokenIn:           OpIn,
}

func (p *parser) comparison() *AST {
	lhs := p.additive()

	if op, ok := comparisons[p.peek().Kind]; ok {
		tok := p.next()
		lhs = newAST(op, &tok, lhs, p.additive())
	}

	return lhs
}

func (p *parser) additive() *AST {
	lhs := p.term()

	for {
		var op Op

		switch p.peek().Kind {
		case TokenPlus:
			op = OpAdd
		case TokenMinus:
			op = OpSub
		default:
			return lhs
		}

		tok := p.next()
		lhs = newAST(op, &tok, lhs, p.term())
	}
}

func (p *parser) term() *AST {
	lhs := p.unary()

	for {
		var op Op

		switch p.peek().Kind {
		case TokenStar:
			op = OpMul
		case TokenSlash:
			op = OpDiv
		default:
			return lhs
		}

		tok := p.next()
		lhs = newAST(op, &tok, lhs, p.unary())
	}
}

func (p *parser) unary() *AST {
	if p.peek().Kind == TokenMinus {
		tok := p.next()

		return newAST(OpNeg, &tok, p.unary())
	}

	return p.power()
}

func (p *parser) power() *AST {
	base := p.primary()

	if p.peek().Kind == TokenCaret {
		tok := p.next()

		return newAST(OpPow, &tok, base, p.unary())
	}

	return base
}

func (p *parser) primary() *AST {
	tok := p.peek()

	switch tok.Kind {
	case TokenNumber:
		p.next()

		v, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				p.errorf(tok, "number out of range "+strconv.Quote(tok.Text))
			}

			p.errorf(tok, "malformed number "+strconv.Quote(tok.Text))
		}

		return literal(tok, Real(v))
	case TokenString:
		p.next()

		return literal(tok, String(tok.Text))
	case TokenTrue, TokenFalse:
		p.next()

		return literal(tok, Boolean(tok.Kind == TokenTrue))
	case TokenIdent:
		p.next()

		if p.peek().Kind == TokenLParen {
			return p.call(tok)
		}

		return newAST(OpIdent, &tok)
	case TokenLParen:
		p.next()

		n := p.expr()
		p.expect(TokenRParen)

		return n
	case TokenLBracket:
		return p.list()
	case TokenLBrace:
		return p.block()
	case TokenFun:
		return p.fun()
	case TokenIf:
		return p.conditional()
	default:
		p.errorf(tok, "unexpected "+describeToken(tok))

		return nil
	}
}

func literal(tok Token, v Operand) *AST {
	n := newAST(OpLiteral, &tok)
	n.value = v

	return n
}

func (p *parser) call(name Token) *AST {
	p.expect(TokenLParen)

	var args []*AST

	if p.peek().Kind != TokenRParen {
		for {
			args = append(args, p.expr())

			if !p.accept(TokenComma) {
				break
			}
		}
	}

	p.expect(TokenRParen)

	n := newAST(OpFuncall, &name, args...)
	if impureNatives[strings.ToUpper(name.Text)] {
		n.deterministic = false
	}

	return n
}

func (p *parser) list() *AST {
	lbracket := p.expect(TokenLBracket)

	var elems []*AST

	for !p.accept(TokenRBracket) {
		if p.peek().Kind == TokenEOF {
			p.errorf(p.peek(), "expected \"]\", found end of input")
		}

		elems = append(elems, p.expr())
		p.accept(TokenComma)
	}

	return newAST(OpList, &lbracket, elems...)
}

func (p *parser) conditional() *AST {
	tok := p.expect(TokenIf)
	cond := p.expr()
	p.expect(TokenThen)

	children := []*AST{cond, p.expr()}

	if p.accept(TokenElse) {
		children = append(children, p.expr())
	}

	return newAST(OpIf, &tok, children...)
}

// markTail flags self-calls to name that are the value of body.
func markTail(n *AST, name string) {
	switch n.Op {
	case OpBlock:
		if last := n.Last(); last != nil {
			markTail(last, name)
		}
	case OpIf:
		for _, branch := range n.Children[1:] {
			markTail(branch, name)
		}
	case OpFuncall:
		if strings.EqualFold(n.Name(), name) {
			n.tail = true
		}
	}
}
