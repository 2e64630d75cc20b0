package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/ardnew/jinja/host"
	"github.com/ardnew/jinja/lang"
	"github.com/ardnew/jinja/log"
)

// TemplateFlags holds the flags that affect how a template is compiled.
type TemplateFlags struct {
	TrimBlocks   bool `help:"Remove the first newline after a block tag."                    name:"trim-blocks"`
	LstripBlocks bool `help:"Strip whitespace from the start of a line up to a block tag." name:"lstrip-blocks"`
}

func (f TemplateFlags) options() []lang.Option {
	return []lang.Option{
		lang.WithTrimBlocks(f.TrimBlocks),
		lang.WithLstripBlocks(f.LstripBlocks),
		lang.WithLogger(log.Default()),
	}
}

// compile reads the template at path ("-" for stdin) and compiles it.
func (f TemplateFlags) compile(ctx context.Context, path string, opts ...lang.Option) (*lang.Template, error) {
	r, err := openSource(ctx, path)
	if err != nil {
		return nil, ErrReadTemplate.Wrap(err).With(slog.String("file", path))
	}
	defer r.Close()

	name := path
	if path == stdinSource {
		name = "<stdin>"
	}

	opts = append(append(f.options(), lang.WithName(name)), opts...)

	return lang.CompileReader(ctx, r, opts...)
}

// Render renders a template with data from context files and --set values.
type Render struct {
	ContextFlags  `embed:""`
	TemplateFlags `embed:""`

	Host     bool   `help:"Enable host globals, filters and tests (env, cwd, platform, path_join, exists, ...)."`
	MaxDepth int    `default:"256"         help:"Maximum macro call depth (0 for no limit)."                       name:"max-depth"`
	Output   string `default:"-"           help:"Output file or '-' for stdout."                                   placeholder:"FILE" short:"o"`

	Template string `arg:"" default:"-" help:"Template file or '-' for stdin." name:"template"`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if r.Template == stdinSource && slices.Contains(r.Context, stdinSource) {
		return ErrReadContext.With(slog.String("reason", "stdin cannot hold both template and context"))
	}

	data, err := r.load(ctx)
	if err != nil {
		return err
	}

	tmpl, err := r.compile(ctx, r.Template,
		lang.WithRegistry(registry(r.Host)),
		lang.WithMaxCallDepth(r.MaxDepth),
	)
	if err != nil {
		return lang.WrapError(err).With(slog.String("command", "render"))
	}

	vars := make(lang.Vars, data.Len())
	for k, v := range data.All() {
		vars[k] = v
	}

	out, err := tmpl.Render(ctx, vars)
	if err != nil {
		return lang.WrapError(err).With(slog.String("command", "render"))
	}

	if err := r.write(ctx, out); err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("file", r.Output))
	}

	log.DebugContext(ctx, "rendered template",
		slog.String("template", tmpl.Name()),
		slog.String("output", r.Output),
		slog.Int("bytes", len(out)),
	)

	return nil
}

// registry returns the default registry, or a copy extended with the host
// globals, filters and tests when withHost is set.
func registry(withHost bool) *lang.Registry {
	if !withHost {
		return lang.DefaultRegistry()
	}

	reg := lang.NewRegistry()
	host.Register(reg)

	return reg
}

func (r *Render) write(ctx context.Context, out string) error {
	if r.Output == "" || r.Output == stdinSource {
		_, err := io.WriteString(stdout(ctx), out)

		return err
	}

	return os.WriteFile(r.Output, []byte(out), 0o644) //nolint:gosec
}
