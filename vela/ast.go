package vela

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// Op is the operation tag of an [AST] node.
type Op int

// Operations.
const (
	OpProgram Op = iota
	OpLiteral
	OpIdent
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpPow
	OpNeg
	OpEqual
	OpNotEqual
	OpLess
	OpGreater
	OpLessEqual
	OpGreaterEqual
	OpMatch
	OpIn
	OpAnd
	OpOr
	OpNot
	OpBind
	OpBlock
	OpIf
	OpList
	OpFuncall
	OpFundef
	OpFun
	OpParams
	OpParam
	OpType
)

type opInfo struct {
	name   string
	symbol string
	arity  int // -1 for variadic
}

var ops = [...]opInfo{
	OpProgram:      {"PROGRAM", "", -1},
	OpLiteral:      {"LITERAL", "", 0},
	OpIdent:        {"IDENT", "", 0},
	OpAdd:          {"ADD", "+", 2},
	OpSub:          {"SUB", "-", 2},
	OpMul:          {"MUL", "*", 2},
	OpDiv:          {"DIV", "/", 2},
	OpPow:          {"POW", "^", 2},
	OpNeg:          {"NEG", "-", 1},
	OpEqual:        {"EQUAL", "=", 2},
	OpNotEqual:     {"NOT_EQUAL", "<>", 2},
	OpLess:         {"LESS", "<", 2},
	OpGreater:      {"GREATER", ">", 2},
	OpLessEqual:    {"LESS_EQUAL", "<=", 2},
	OpGreaterEqual: {"GREATER_EQUAL", ">=", 2},
	OpMatch:        {"MATCH", "=~", 2},
	OpIn:           {"IN", "in", 2},
	OpAnd:          {"AND", "and", 2},
	OpOr:           {"OR", "or", 2},
	OpNot:          {"NOT", "not", 1},
	OpBind:         {"BIND", "is", 1},
	OpBlock:        {"BLOCK", "", -1},
	OpIf:           {"IF", "if", -1},
	OpList:         {"LIST", "", -1},
	OpFuncall:      {"FUNCALL", "call", -1},
	OpFundef:       {"FUNDEF", "", 3},
	OpFun:          {"FUN", "fun", 3},
	OpParams:       {"PARAMS", "", -1},
	OpParam:        {"PARAM", "", 1},
	OpType:         {"TYPE", "", 0},
}

// String returns the upper-case operation name.
func (o Op) String() string {
	if o >= 0 && int(o) < len(ops) {
		return ops[o].name
	}

	return "Op(" + strconv.Itoa(int(o)) + ")"
}

// Symbol returns the source spelling of an operator, or its name when the
// operation has no single symbol.
func (o Op) Symbol() string {
	if o >= 0 && int(o) < len(ops) && ops[o].symbol != "" {
		return ops[o].symbol
	}

	return o.String()
}

// Arity returns the number of children a node of this operation has, or -1
// if it takes a variable number. IF takes two or three.
func (o Op) Arity() int {
	if o >= 0 && int(o) < len(ops) {
		return ops[o].arity
	}

	return -1
}

// AST is a node of a parsed VeLa program.
type AST struct {
	Op       Op
	Children []*AST
	Token    *Token // literal text, identifier, function, parameter or type name

	value         Operand // LITERAL payload
	typ           Type    // TYPE payload
	deterministic bool
	tail          bool // FUNCALL in self tail position
}

// newAST builds a node whose determinism is the conjunction over children.
func newAST(op Op, tok *Token, children ...*AST) *AST {
	n := &AST{Op: op, Token: tok, Children: children, deterministic: true}

	for _, c := range children {
		if !c.deterministic {
			n.deterministic = false

			break
		}
	}

	return n
}

// Name returns the token text, or "" if the node has no token.
func (a *AST) Name() string {
	if a.Token == nil {
		return ""
	}

	return a.Token.Text
}

// Literal returns the value of a LITERAL node.
func (a *AST) Literal() (Operand, bool) {
	return a.value, a.Op == OpLiteral
}

// DeclaredType returns the type named by a TYPE node. It is [TypeNone] when
// no type was written.
func (a *AST) DeclaredType() Type { return a.typ }

// Deterministic reports whether evaluating the node can depend only on the
// source text and the current bindings.
func (a *AST) Deterministic() bool { return a.deterministic }

// TailCall reports whether a FUNCALL node is a self-call in tail position of
// the enclosing named function.
func (a *AST) TailCall() bool { return a.tail }

// IsLeaf reports whether the node has no children.
func (a *AST) IsLeaf() bool { return len(a.Children) == 0 }

// Last returns the last child, or nil.
func (a *AST) Last() *AST {
	if len(a.Children) == 0 {
		return nil
	}

	return a.Children[len(a.Children)-1]
}

// Equal reports whether a and b are structurally equal. Source positions are
// ignored.
func (a *AST) Equal(b *AST) bool {
	if a == nil || b == nil {
		return a == b
	}

	if a.Op != b.Op || a.Name() != b.Name() || a.typ != b.typ ||
		a.deterministic != b.deterministic || a.tail != b.tail ||
		!a.value.Equal(b.value) {
		return false
	}

	return slices.EqualFunc(a.Children, b.Children, (*AST).Equal)
}

// String returns the node as an s-expression.
func (a *AST) String() string {
	var b strings.Builder

	a.sexpr(&b)

	return b.String()
}

func (a *AST) sexpr(b *strings.Builder) {
	if a == nil {
		b.WriteString("nil")

		return
	}

	switch a.Op {
	case OpLiteral:
		b.WriteString(a.value.Quote())

		return
	case OpIdent:
		b.WriteString(a.Name())

		return
	case OpType:
		b.WriteString(strings.ToLower(a.typ.String()))

		return
	}

	b.WriteByte('(')
	b.WriteString(a.Op.Symbol())

	switch a.Op {
	case OpFuncall, OpBind, OpFundef, OpParam:
		b.WriteByte(' ')
		b.WriteString(a.Name())
	}

	for _, c := range a.Children {
		b.WriteByte(' ')
		c.sexpr(b)
	}

	b.WriteByte(')')
}

// Fprint writes the node as an indented tree.
func (a *AST) Fprint(w io.Writer) error {
	return a.fprint(w, 0)
}

func (a *AST) fprint(w io.Writer, depth int) error {
	line := strings.Repeat("  ", depth) + a.Op.String()

	switch {
	case a.Op == OpLiteral:
		line += " " + a.value.Quote() + " : " + a.value.Type().String()
	case a.Op == OpType:
		line += " " + a.typ.String()
	case a.Token != nil && a.Token.Text != "":
		line += " " + strconv.Quote(a.Token.Text)
	}

	if !a.deterministic {
		line += " !det"
	}

	if a.tail {
		line += " tail"
	}

	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}

	for _, c := range a.Children {
		if err := c.fprint(w, depth+1); err != nil {
			return err
		}
	}

	return nil
}

// markImpure returns a with every FUNCALL whose name satisfies impure marked
// non-deterministic, together with its ancestors. Nodes are copied along
// changed paths only, so a shared AST is never modified.
func (a *AST) markImpure(impure func(name string) bool) *AST {
	var children []*AST

	for i, c := range a.Children {
		if nc := c.markImpure(impure); nc != c {
			if children == nil {
				children = slices.Clone(a.Children)
			}

			children[i] = nc
		}
	}

	call := a.Op == OpFuncall && a.deterministic && impure(a.Name())
	if children == nil && !call {
		return a
	}

	n := *a
	if children != nil {
		n.Children = children
	}

	n.deterministic = a.deterministic && !call
	for _, c := range n.Children {
		if !c.deterministic {
			n.deterministic = false
		}
	}

	return &n
}

// Walk calls fn for each node in depth-first order, stopping descent into a
// node's children when fn returns false.
func (a *AST) Walk(fn func(*AST) bool) {
	if a == nil || !fn(a) {
		return
	}

	for _, c := range a.Children {
		c.Walk(fn)
	}
}
