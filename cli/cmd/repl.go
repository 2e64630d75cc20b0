package cmd

import (
	"context"
	"log/slog"
	"slices"

	"github.com/ardnew/jinja/cli/cmd/repl"
	"github.com/ardnew/jinja/lang"
	"github.com/ardnew/jinja/log"
)

// Repl starts an interactive session that renders each line entered.
type Repl struct {
	ContextFlags  `embed:""`
	TemplateFlags `embed:""`

	Host     bool `help:"Enable host globals, filters and tests."`
	MaxDepth int  `default:"256" help:"Maximum macro call depth (0 for no limit)." name:"max-depth"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if slices.Contains(r.Context, stdinSource) {
		return ErrReadContext.With(slog.String("reason", "stdin is reserved for the terminal"))
	}

	data, err := r.load(ctx)
	if err != nil {
		return err
	}

	opts := append(r.options(), lang.WithMaxCallDepth(r.MaxDepth))
	session := repl.NewSession(registry(r.Host), data, log.Default(), opts...)

	return repl.Run(ctx, session, kongVar(ctx, CacheIdentifier))
}
