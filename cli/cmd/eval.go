package cmd

import (
	"context"
	"io"
	"strings"

	"github.com/ardnew/vela/vela"
)

// Eval evaluates one expression and prints its value.
type Eval struct {
	Expr   []string `arg:"" help:"Expression; multiple arguments are joined with spaces." name:"expr"`
	Output string   `default:"native" enum:"native,json,yaml" help:"Result encoding (${enum})." short:"o"`

	out io.Writer `kong:"-"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context, in *vela.Interpreter) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	val, err := in.EvaluateExpression(ctx, strings.Join(e.Expr, " "))
	if err != nil {
		return err
	}

	return encode(writer(e.out), e.Output, val)
}
