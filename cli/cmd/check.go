package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ardnew/vela/vela"
)

// Check requires that exactly one function with the given signature is
// defined, as a host program would before calling into a model.
type Check struct {
	Name    string `arg:""                                    help:"Function name."`
	Params  string `help:"Comma-separated parameter types."   placeholder:"TYPES" short:"p"`
	Returns string `help:"Return type, or empty for none."    placeholder:"TYPE"  short:"r"`

	out io.Writer `kong:"-"`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context, in *vela.Interpreter) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	params, err := vela.ParseTypes(c.Params)
	if err != nil {
		return ErrInvalidSignature.With(slog.String("params", c.Params)).Wrap(err)
	}

	ret := vela.TypeNone

	if c.Returns != "" {
		var ok bool

		if ret, ok = vela.ParseType(c.Returns); !ok {
			return ErrInvalidSignature.With(slog.String("returns", c.Returns))
		}
	}

	fn, err := in.RequireFunction(c.Name, params, ret)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(writer(c.out), fn.Signature()); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
