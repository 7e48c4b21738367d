package cmd

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/ardnew/fns/cli/cmd/repl"
	"github.com/ardnew/fns/log"
)

// Repl starts an interactive session in which every input is evaluated in
// one persistent environment.
type Repl struct {
	hostBindings `embed:""`

	History    string `default:"${cache}/history.utf8" help:"History file; empty disables history." type:"path"`
	MaxDepth   int    `default:"256"                    help:"Maximum expression nesting depth."`
	NoBuiltins bool   `                                 help:"Omit the fns and math builtin objects."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	flags := evalFlags{
		hostBindings: r.hostBindings,
		MaxDepth:     r.MaxDepth,
		NoBuiltins:   r.NoBuiltins,
	}

	opts, err := flags.options(ctx)
	if err != nil {
		return err
	}

	if r.History != "" {
		r.History = filepath.Clean(r.History)
	}

	log.DebugContext(ctx, "repl", slog.String("history", r.History))

	return repl.Run(ctx, repl.Config{
		Options: opts,
		History: r.History,
		Logger:  log.Default(),
	})
}
