// Package vela implements VeLa, a small expression language for defining
// constants, helper functions and model functions that are evaluated against
// observation times.
//
// # Syntax
//
// A program is a sequence of forms separated by whitespace, newlines or
// optional semicolons. Comments start with # and run to the end of the line.
//
//	# bindings
//	zeroPoint is 2457504.93
//	period <- 0.4
//
//	# named, typed function definition
//	f(t: real): real {
//	    0.09 * cos(2*PI*(t - zeroPoint)/period)
//	}
//
//	# anonymous function value
//	double is fun(x: real): real { x * 2 }
//
//	if f(2457505) > 0 then "bright" else "faint"
//
// Operators, loosest to tightest: or; and; not; = <> < > <= >= =~ in;
// + -; * /; unary -; ^. Keywords, type names and identifiers are
// case-insensitive.
//
// # Types
//
// Every value is an [Operand] of type REAL, BOOLEAN, STRING, LIST or
// FUNCTION. Function parameters may also be declared ANY, which matches a
// value of every type during overload resolution.
//
// # Evaluation
//
// An [Interpreter] owns a [Scope] stack and a [Registry] of native and
// user-defined functions. Parsed programs are memoized in a [Cache] keyed by
// source text, and results of deterministic expressions are memoized per
// interpreter until a root binding or function definition changes.
package vela
