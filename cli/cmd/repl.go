package cmd

import (
	"context"

	"github.com/ardnew/vela/cli/cmd/repl"
	"github.com/ardnew/vela/log"
	"github.com/ardnew/vela/vela"
)

// Repl starts an interactive console over the interpreter.
type Repl struct {
	History bool `default:"true" help:"Persist input history in the cache directory." negatable:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context, in *vela.Interpreter) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var dir string

	if r.History {
		if ktx := kongContextFrom(ctx); ktx != nil {
			dir = ktx.Model.Vars()[CacheIdentifier]
		}
	}

	return repl.Run(ctx, in, dir, log.Default())
}
