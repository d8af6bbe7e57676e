package cmd

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/vela/vela"
)

// maxSuggestions limits the names offered for an unknown function.
const maxSuggestions = 3

// Funcs lists function signatures.
type Funcs struct {
	Name string `arg:"" help:"List only overloads of this function." optional:""`

	out io.Writer `kong:"-"`
}

// Run executes the funcs command.
func (f *Funcs) Run(ctx context.Context, in *vela.Interpreter) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var set []vela.Executor

	if f.Name == "" {
		set = in.Functions()
	} else {
		set = in.LookupFunctions(f.Name)
		if len(set) == 0 {
			e := ErrUnknownFunction.With(slog.String("name", f.Name))
			if s := suggest(f.Name, in); len(s) > 0 {
				e = e.With(slog.String("suggest", strings.Join(s, ", ")))
			}

			return e
		}
	}

	w := writer(f.out)

	for _, fn := range set {
		line := fn.Signature().String()
		if !fn.Deterministic() {
			line += " [impure]"
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	return nil
}

// suggest returns the function names closest to name.
func suggest(name string, in *vela.Interpreter) []string {
	var names []string

	seen := make(map[string]struct{})

	for _, fn := range in.Functions() {
		n := fn.Signature().Name
		if _, ok := seen[n]; ok || n == "" {
			continue
		}

		seen[n] = struct{}{}
		names = append(names, n)
	}

	name = vela.Canonical(name)
	matches := fuzzy.Find(name, names)

	out := make([]string, 0, maxSuggestions)
	for i := 0; i < len(matches) && i < maxSuggestions; i++ {
		out = append(out, matches[i].Str)
	}

	if len(out) == 0 {
		out = nearest(name, names)
	}

	return out
}

// nearest returns the names within a small edit distance of name, closest
// first. It catches typos that fuzzy matching cannot, such as swapped
// letters.
func nearest(name string, names []string) []string {
	type candidate struct {
		name string
		dist int
	}

	limit := max(2, utf8.RuneCountInString(name)/3)

	var cs []candidate

	for _, n := range names {
		if d := levenshtein.ComputeDistance(name, n); d <= limit {
			cs = append(cs, candidate{name: n, dist: d})
		}
	}

	slices.SortFunc(cs, func(a, b candidate) int {
		return cmp.Or(cmp.Compare(a.dist, b.dist), strings.Compare(a.name, b.name))
	})

	out := make([]string, 0, maxSuggestions)
	for i := 0; i < len(cs) && i < maxSuggestions; i++ {
		out = append(out, cs[i].name)
	}

	return out
}
