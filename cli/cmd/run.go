package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/vela/log"
	"github.com/ardnew/vela/vela"
)

// Run evaluates a program and prints the value of its final statement.
type Run struct {
	File   string `arg:"" default:"-" help:"Program file, or '-' for stdin."            type:"path"`
	Output string `default:"native" enum:"native,json,yaml" help:"Result encoding (${enum})." short:"o"`
	Quiet  bool   `help:"Do not print the final value."                                 short:"q"`

	out io.Writer `kong:"-"`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context, in *vela.Interpreter) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := openInput(r.File)
	if err != nil {
		return err
	}

	defer src.Close()

	val, ok, err := in.ProgramReader(ctx, src)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "program evaluated",
		slog.String("file", r.File),
		slog.Bool("value", ok),
	)

	if !ok || r.Quiet {
		return nil
	}

	return encode(writer(r.out), r.Output, val)
}
