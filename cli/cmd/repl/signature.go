package repl

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/vela/vela"
)

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
	signatureSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string // function name as typed
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside parameter list
}

// detectFunctionCall analyzes the input to determine if the cursor is inside
// a function call's parameter list. Commas nested in parentheses, list
// brackets or braces do not advance the argument index.
func detectFunctionCall(input string, cursor int) functionCall {
	if cursor > len(input) {
		cursor = len(input)
	}

	depth := 0
	openParen := -1

scan:
	for i := cursor; i > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		switch r {
		case ')', ']', '}':
			depth++
		case '[', '{':
			if depth > 0 {
				depth--
			}
		case '(':
			if depth == 0 {
				openParen = i

				break scan
			}

			depth--
		}
	}

	if openParen == -1 {
		return functionCall{}
	}

	nameStart := openParen

	for nameStart > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:nameStart])
		if !isIdentRune(r) {
			break
		}

		nameStart -= size
	}

	name := input[nameStart:openParen]
	if name == "" {
		return functionCall{}
	}

	argIndex := 0
	depth = 0

	for _, r := range input[openParen+1 : cursor] {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				argIndex++
			}
		}
	}

	return functionCall{
		name:     name,
		argIndex: argIndex,
		inCall:   true,
	}
}

// signatureHint describes one overload for display.
type signatureHint struct {
	name      string
	params    []string
	returns   string
	overloads int
}

// getSignature returns the overload of name best suited to a call that has
// reached argIndex: the first with more than argIndex parameters, or else
// the first registered. Parameters of user functions are shown with their
// names.
func getSignature(in *vela.Interpreter, name string, argIndex int) (signatureHint, bool) {
	set := in.LookupFunctions(name)
	if len(set) == 0 {
		return signatureHint{}, false
	}

	pick := set[0]

	for _, fn := range set {
		if len(fn.Signature().Params) > argIndex {
			pick = fn

			break
		}
	}

	sig := pick.Signature()
	hint := signatureHint{
		name:      sig.Name,
		params:    make([]string, len(sig.Params)),
		overloads: len(set),
	}

	if sig.Return != vela.TypeNone {
		hint.returns = sig.Return.String()
	}

	var names []string
	if uf, ok := pick.(*vela.UserFunction); ok {
		names = uf.Params()
	}

	for i, t := range sig.Params {
		if i < len(names) {
			hint.params[i] = strings.ToLower(names[i]) + ": " + t.String()
		} else {
			hint.params[i] = t.String()
		}
	}

	return hint, true
}

// renderSignatureHint renders the function signature with the current
// parameter highlighted.
func renderSignatureHint(hint signatureHint, currentArgIdx int) string {
	if hint.name == "" {
		return ""
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(hint.name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range hint.params {
		if i > 0 {
			b.WriteString(signatureSeparatorStyle.Render(", "))
		}

		if i == currentArgIdx {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	if hint.returns != "" {
		b.WriteString(signatureStyle.Render(": " + hint.returns))
	}

	if hint.overloads > 1 {
		b.WriteString(hintStyle.Render("  +" + strconv.Itoa(hint.overloads-1) + " overloads"))
	}

	return b.String()
}
