package lang

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ardnew/jinja/log"
)

// Vars is the data context passed to a render.
type Vars map[string]Value

// optionsKey holds the options that affect compilation output.
// This type is gob-encodable for cache key hashing.
type optionsKey struct {
	TrimBlocks   bool
	LstripBlocks bool
}

// config holds compile and render options.
type config struct {
	logger       log.Logger
	registry     *Registry
	name         string
	maxCallDepth int
	optionsKey
}

// Option configures compilation or rendering.
type Option func(*config)

// WithTrimBlocks removes the first newline after a block or comment tag.
func WithTrimBlocks(enable bool) Option {
	return func(c *config) { c.TrimBlocks = enable }
}

// WithLstripBlocks strips spaces and tabs from the start of a line up to a
// block or comment tag.
func WithLstripBlocks(enable bool) Option {
	return func(c *config) { c.LstripBlocks = enable }
}

// WithName sets the template name used in log records and errors.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithRegistry sets the filters, tests and globals available to templates.
// The default is [DefaultRegistry].
func WithRegistry(r *Registry) Option {
	return func(c *config) { c.registry = r }
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithMaxCallDepth limits nesting of macro and caller invocations. Zero (the
// default) means no limit.
func WithMaxCallDepth(depth int) Option {
	return func(c *config) { c.maxCallDepth = max(depth, 0) }
}

func makeConfig(opts ...Option) config {
	var c config

	for _, opt := range opts {
		opt(&c)
	}

	if c.registry == nil {
		c.registry = DefaultRegistry()
	}

	return c
}

// Template is a compiled template. It is immutable and safe for concurrent
// use by multiple goroutines.
type Template struct {
	program *Program
	source  string
	cfg     config
}

// Compile tokenizes and parses source.
func Compile(ctx context.Context, source string, opts ...Option) (*Template, error) {
	cfg := makeConfig(opts...)

	return compile(ctx, source, cfg)
}

func compile(ctx context.Context, source string, cfg config) (*Template, error) {
	start := time.Now()
	normal := normalize(source, cfg)

	tokens, err := tokenize(normal)
	if err != nil {
		return nil, WrapError(err).With(slog.String("template", cfg.name))
	}

	program, err := parse(normal, tokens)
	if err != nil {
		return nil, WrapError(err).With(slog.String("template", cfg.name))
	}

	cfg.logger.TraceContext(ctx, "compile complete",
		slog.String("template", cfg.name),
		slog.Int("source_bytes", len(source)),
		slog.Int("token_count", len(tokens)),
		slog.Int("node_count", len(program.Body)),
		slog.Duration("elapsed", time.Since(start)),
	)

	return &Template{program: program, source: normal, cfg: cfg}, nil
}

// Name returns the name given with [WithName].
func (t *Template) Name() string { return t.cfg.name }

// Program returns the parsed syntax tree. It must not be modified.
func (t *Template) Program() *Program { return t.program }

// Source returns the whitespace-normalized source the template was parsed
// from.
func (t *Template) Source() string { return t.source }

// Render executes the template in a fresh root environment holding vars.
func (t *Template) Render(ctx context.Context, vars Vars) (string, error) {
	return t.RenderEnv(ctx, vars, nil)
}

// RenderEnv executes the template in env after binding vars into it. Top-level
// assignments made by the template remain in env afterwards. A nil env is
// replaced with a fresh root environment.
//
// On error the partial output is discarded.
func (t *Template) RenderEnv(
	ctx context.Context,
	vars Vars,
	env *Environment,
) (string, error) {
	start := time.Now()

	if env == nil {
		env = NewEnvironment(nil)
	}

	for k, v := range vars {
		env.Define(k, v)
	}

	in := newInterpreter(ctx, t.cfg)
	in.source = t.source

	prev := env.ip
	env.ip = in

	defer func() { env.ip = prev }()

	var out strings.Builder

	sig, err := in.execBody(t.program.Body, env, &out)
	if err == nil && sig != signalNone {
		err = ErrSyntax.Wrap(ErrLoopControl)
	}

	if err != nil {
		t.cfg.logger.TraceContext(ctx, "render failed",
			slog.String("template", t.cfg.name),
			slog.Any("error", err),
		)

		return "", WrapError(err).With(slog.String("template", t.cfg.name))
	}

	t.cfg.logger.TraceContext(ctx, "render complete",
		slog.String("template", t.cfg.name),
		slog.Int("var_count", len(vars)),
		slog.Int("output_bytes", out.Len()),
		slog.Duration("elapsed", time.Since(start)),
	)

	return out.String(), nil
}
