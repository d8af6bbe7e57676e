package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/ardnew/vela/vela"
)

// AST prints the parse tree of a program without evaluating it.
type AST struct {
	File   string `arg:"" default:"-" help:"Program file, or '-' for stdin." type:"path"`
	Format string `default:"tree" enum:"tree,sexpr,json,yaml" help:"Tree layout (${enum})." short:"f"`

	out io.Writer `kong:"-"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context, in *vela.Interpreter) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := readInput(a.File)
	if err != nil {
		return err
	}

	tree, err := in.Parse(ctx, src)
	if err != nil {
		return err
	}

	w := writer(a.out)

	switch a.Format {
	case "tree":
		err = tree.Fprint(w)
	case "sexpr":
		_, err = fmt.Fprintln(w, tree.String())
	default:
		return encode(w, a.Format, tree)
	}

	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
