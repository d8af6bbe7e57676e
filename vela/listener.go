package vela

// ErrorListener receives lexical and syntax errors as they are found.
type ErrorListener interface {
	SyntaxError(pos Pos, msg string)
}

// ErrorListenerFunc adapts a function to [ErrorListener].
type ErrorListenerFunc func(pos Pos, msg string)

// SyntaxError calls f(pos, msg).
func (f ErrorListenerFunc) SyntaxError(pos Pos, msg string) { f(pos, msg) }

// ErrorCollector is the default listener. It records every error so the
// parser can return them together as a [ParseError].
type ErrorCollector struct {
	Errors []SyntaxError
}

// SyntaxError records the error.
func (c *ErrorCollector) SyntaxError(pos Pos, msg string) {
	c.Errors = append(c.Errors, SyntaxError{Pos: pos, Msg: msg})
}

// listeners fans an error out to several listeners.
type listeners []ErrorListener

func (ls listeners) SyntaxError(pos Pos, msg string) {
	for _, l := range ls {
		if l != nil {
			l.SyntaxError(pos, msg)
		}
	}
}
