package repl

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/vela/vela"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "funcs", "vars", "edit", "clear", "quit"}

// keywords are offered as completions alongside bound names.
var keywords = []string{
	"is", "if", "then", "else", "and", "or", "not", "in", "true", "false", "fun",
	"real", "boolean", "string", "list", "function", "any",
}

// isIdentRune reports whether r may appear in a VeLa identifier.
func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isWordBoundary returns true if the rune delimits a word for completion.
// Everything that cannot appear in an identifier is a boundary.
func isWordBoundary(r rune) bool { return !isIdentRune(r) }

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input.
// Returns an empty word when the cursor sits on a boundary (after a space,
// an operator, start of line, etc.).
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// inString reports whether offset lies inside a string literal.
func inString(input string, offset int) bool {
	var open, escaped bool

	for i, r := range input {
		if i >= offset {
			break
		}

		switch {
		case escaped:
			escaped = false
		case open && r == '\\':
			escaped = true
		case r == '"':
			open = !open
		case !open && r == '#':
			return false
		}
	}

	return open
}

// evalCandidates returns every name that can complete in eval mode: the
// interpreter's bindings and functions followed by the keywords. Names are
// offered in lower case, which the language accepts.
func evalCandidates(in *vela.Interpreter) []string {
	names := in.Names()
	out := make([]string, 0, len(names)+len(keywords))

	for _, n := range names {
		out = append(out, strings.ToLower(n))
	}

	for _, k := range keywords {
		if !slices.Contains(out, k) {
			out = append(out, k)
		}
	}

	return out
}

// computeMatches calculates the fuzzy match results for the word at the cursor.
// It returns the matches (ranked best-first), the candidate list, and the word
// boundaries. An empty word yields no matches so that the hint line stays
// visible.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, wordStart, wordEnd := wordBounds(input, cursor)
	if word == "" {
		return nil, nil, wordStart, wordEnd
	}

	if m.mode == modeCtrl {
		candidates = ctrlCommands
	} else {
		if inString(input, wordStart) {
			return nil, nil, wordStart, wordEnd
		}

		candidates = evalCandidates(m.in)
	}

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Each candidate is rendered with its matched
// characters highlighted. The selected candidate (when tabbing) uses the
// selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
	isFunc func(string) bool,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		selected := tabActive && i == suggIdx
		rendered := renderCandidate(match, selected, isFunc != nil && isFunc(match.Str))
		candidateWidth := lipgloss.Width(rendered)

		entryWidth := candidateWidth
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted. Functions are displayed with a "()" suffix that is not part of
// the completion.
func renderCandidate(match fuzzy.Match, selected, function bool) string {
	baseStyle := suggestionStyle
	highlightStyle := matchStyle

	if selected {
		baseStyle = selectedStyle
		highlightStyle = selectedMatchStyle
	}

	matchSet := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matchSet[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		ch := string(r)
		if matchSet[i] {
			b.WriteString(highlightStyle.Render(ch))
		} else {
			b.WriteString(baseStyle.Render(ch))
		}
	}

	if function {
		b.WriteString(baseStyle.Render("()"))
	}

	return b.String()
}

// maxPreview is the widest value preview shown by the vars command.
const maxPreview = 40

// formatPreview renders a short form of a bound value.
func formatPreview(v vela.Operand) string {
	s := v.Quote()
	if utf8.RuneCountInString(s) > maxPreview {
		r := []rune(s)
		s = string(r[:maxPreview-3]) + "..."
	}

	return s + " : " + v.Type().String()
}
