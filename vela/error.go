package vela

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrParse              = NewError("parse error")
	ErrReadInput          = NewError("failed to read input")
	ErrUnboundIdentifier  = NewError("unbound identifier")
	ErrTypeMismatch       = NewError("type mismatch")
	ErrArity              = NewError("arity mismatch")
	ErrUndefinedFunction  = NewError("undefined function")
	ErrNoMatchingOverload = NewError("no matching overload")
	ErrAmbiguousCall      = NewError("ambiguous call")
	ErrDivisionByZero     = NewError("division by zero")
	ErrNative             = NewError("native function failed")
	ErrReturnType         = NewError("return type mismatch")
	ErrNoValue            = NewError("expression produced no value")
	ErrNoResult           = NewError("expression produced no result")
	ErrMultipleResults    = NewError("expression produced multiple results")
	ErrCallDepth          = NewError("maximum call depth exceeded")
	ErrInvalidPattern     = NewError("invalid pattern")
	ErrIndexRange         = NewError("index out of range")
	ErrScopeUnderflow     = NewError("cannot pop root scope")
	ErrModelFunction      = NewError("model function not defined")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an Error with the same message, so that
// copies made by [Error.With] and [Error.Wrap] still match their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && e.msg != "" && e.msg == t.msg
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// EvalError is returned when evaluation of a parsed program fails.
// Kind is one of the package sentinels and matches with errors.Is.
type EvalError struct {
	Kind  *Error
	Op    string // operator symbol or "call"
	Name  string // identifier or function name, if any
	Types []Type // operand or argument types involved
	Pos   Pos
	Err   error
}

func evalError(kind *Error, n *AST) *EvalError {
	e := &EvalError{Kind: kind}
	if n != nil && n.Token != nil {
		e.Pos = n.Token.Pos
	}

	return e
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	var b strings.Builder

	if e.Kind != nil {
		b.WriteString(e.Kind.msg)
	} else {
		b.WriteString("evaluation error")
	}

	if e.Name != "" {
		b.WriteString(" ")
		b.WriteString(strconv.Quote(e.Name))
	}

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	if e.Types != nil {
		b.WriteString(" (")

		for i, t := range e.Types {
			if i > 0 {
				b.WriteString(", ")
			}

			b.WriteString(t.String())
		}

		b.WriteString(")")
	}

	if e.Pos.Line > 0 {
		b.WriteString(" at ")
		b.WriteString(e.Pos.String())
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

// Is reports whether target is the error's Kind.
func (e *EvalError) Is(target error) bool {
	return e.Kind != nil && e.Kind.Is(target)
}

// Unwrap returns the underlying cause, typically an error reported by a
// native function.
func (e *EvalError) Unwrap() error { return e.Err }

// LogValue implements slog.LogValuer.
func (e *EvalError) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 6)

	if e.Kind != nil {
		attrs = append(attrs, slog.String("error", e.Kind.msg))
	}

	if e.Op != "" {
		attrs = append(attrs, slog.String("op", e.Op))
	}

	if e.Name != "" {
		attrs = append(attrs, slog.String("name", e.Name))
	}

	if len(e.Types) > 0 {
		names := make([]string, len(e.Types))
		for i, t := range e.Types {
			names[i] = t.String()
		}

		attrs = append(attrs, slog.Any("types", names))
	}

	if e.Pos.Line > 0 {
		attrs = append(attrs, slog.String("pos", e.Pos.String()))
	}

	if e.Err != nil {
		attrs = append(attrs, slog.String("cause", e.Err.Error()))
	}

	return slog.GroupValue(attrs...)
}

// SyntaxError is a single lexical or grammatical error.
type SyntaxError struct {
	Pos Pos
	Msg string
}

// ParseError is returned when source text cannot be parsed. It carries every
// error reported to the collecting listener and the source they refer to.
type ParseError struct {
	Errors []SyntaxError
	Source string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if len(e.Errors) == 0 {
		return ErrParse.msg
	}

	first := e.Errors[0]

	var b strings.Builder

	b.WriteString("parse error at line ")
	b.WriteString(strconv.Itoa(first.Pos.Line))
	b.WriteString(", column ")
	b.WriteString(strconv.Itoa(first.Pos.Column))
	b.WriteString(": ")
	b.WriteString(first.Msg)

	if snippet := e.Snippet(); snippet != "" {
		b.WriteString("\n")
		b.WriteString(snippet)
	}

	return b.String()
}

// Line returns the line of the first error.
func (e *ParseError) Line() int {
	if len(e.Errors) == 0 {
		return 0
	}

	return e.Errors[0].Pos.Line
}

// Column returns the column of the first error.
func (e *ParseError) Column() int {
	if len(e.Errors) == 0 {
		return 0
	}

	return e.Errors[0].Pos.Column
}

// Snippet renders the source line of the first error with a caret under the
// offending column.
func (e *ParseError) Snippet() string {
	if len(e.Errors) == 0 || e.Source == "" {
		return ""
	}

	pos := e.Errors[0].Pos
	lines := strings.Split(e.Source, "\n")

	if pos.Line <= 0 || pos.Line > len(lines) {
		return ""
	}

	var b strings.Builder

	num := strconv.Itoa(pos.Line)

	b.WriteString("  ")
	b.WriteString(num)
	b.WriteString(" | ")
	b.WriteString(lines[pos.Line-1])
	b.WriteString("\n")

	// 2 leading spaces + " | "
	padding := strings.Repeat(" ", len(num)+5)
	if pos.Column > 0 {
		padding += strings.Repeat(" ", pos.Column-1)
	}

	b.WriteString(padding)
	b.WriteString("^")

	return b.String()
}

// Is matches [ErrParse].
func (e *ParseError) Is(target error) bool {
	return ErrParse.Is(target)
}

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("error", ErrParse.msg)}

	if len(e.Errors) > 0 {
		first := e.Errors[0]
		attrs = append(attrs,
			slog.String("cause", first.Msg),
			slog.Int("line", first.Pos.Line),
			slog.Int("column", first.Pos.Column),
		)
	}

	if len(e.Errors) > 1 {
		attrs = append(attrs, slog.Int("count", len(e.Errors)))
	}

	return slog.GroupValue(attrs...)
}
