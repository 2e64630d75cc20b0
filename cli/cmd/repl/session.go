package repl

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/jinja/lang"
	"github.com/ardnew/jinja/log"
)

// Session evaluates lines of template source against one persistent
// environment, so that {% set %} assignments and macros survive from one
// line to the next.
type Session struct {
	registry *lang.Registry
	env      *lang.Environment
	opts     []lang.Option
	logger   log.Logger
}

// NewSession returns a session whose root scope holds vars. A nil registry
// selects [lang.DefaultRegistry].
func NewSession(
	registry *lang.Registry,
	vars *lang.Object,
	logger log.Logger,
	opts ...lang.Option,
) *Session {
	if registry == nil {
		registry = lang.DefaultRegistry()
	}

	s := &Session{
		registry: registry,
		logger:   logger,
		opts:     slices.Clone(opts),
	}

	s.SetVars(vars)

	return s
}

// Registry returns the registry templates are rendered with.
func (s *Session) Registry() *lang.Registry { return s.registry }

// SetVars replaces every binding in the session with the keys of vars.
func (s *Session) SetVars(vars *lang.Object) {
	s.env = lang.NewEnvironment(nil)

	if vars == nil {
		return
	}

	for k, v := range vars.All() {
		s.env.Define(k, v)
	}
}

// Vars returns the current bindings as an object ordered by name.
func (s *Session) Vars() *lang.Object {
	pairs := make([]any, 0)
	for k, v := range s.env.All() {
		pairs = append(pairs, k, v)
	}

	return lang.ObjectOf(pairs...)
}

// Names returns the bound variable names followed by the registry globals
// that they do not shadow.
func (s *Session) Names() []string {
	names := s.env.Local()

	for _, g := range s.registry.Globals() {
		if !slices.Contains(names, g) {
			names = append(names, g)
		}
	}

	return names
}

// Lookup resolves a dotted path such as "user.home" through the session
// variables and then the registry globals.
func (s *Session) Lookup(path string) (lang.Value, bool) {
	segments := strings.Split(path, ".")

	v, ok := s.env.Lookup(segments[0])
	if !ok {
		if v, ok = s.registry.Global(segments[0]); !ok {
			return nil, false
		}
	}

	for _, seg := range segments[1:] {
		obj, isObj := v.(*lang.Object)
		if !isObj {
			return nil, false
		}

		if v, ok = obj.Get(seg); !ok {
			return nil, false
		}
	}

	return v, true
}

// Callable reports whether name resolves to a function or macro.
func (s *Session) Callable(name string) bool {
	v, ok := s.Lookup(name)
	if !ok {
		return false
	}

	switch v.(type) {
	case *lang.Function, *lang.MacroValue:
		return true
	}

	return false
}

// Signature describes the filter, test, macro or global function name.
func (s *Session) Signature(c lang.Category, name string) (lang.Signature, bool) {
	if c != lang.CategoryGlobal {
		return s.registry.Signature(c, name)
	}

	if v, ok := s.env.Lookup(name); ok {
		m, isMacro := v.(*lang.MacroValue)
		if !isMacro {
			return lang.Signature{}, false
		}

		sig := lang.Signature{Name: name}

		for _, p := range m.Def.Params {
			param := lang.Param{Name: p.Name}
			if p.Default != nil {
				param.Name += "=…"
			}

			sig.Params = append(sig.Params, param)
		}

		return sig, true
	}

	return s.registry.Signature(c, name)
}

// Eval compiles line and renders it into the session environment. A line
// holding no template delimiters is treated as a single expression.
func (s *Session) Eval(ctx context.Context, line string) (string, error) {
	src := line
	if !hasDelimiter(line) {
		src = "{{ " + line + " }}"
	}

	opts := append(slices.Clone(s.opts),
		lang.WithName("repl"),
		lang.WithRegistry(s.registry),
		lang.WithLogger(s.logger),
	)

	tmpl, err := lang.Compile(ctx, src, opts...)
	if err != nil {
		return "", err
	}

	out, err := tmpl.RenderEnv(ctx, nil, s.env)

	s.logger.TraceContext(ctx, "repl eval",
		slog.String("source", src),
		slog.Int("output_bytes", len(out)),
		slog.Bool("ok", err == nil),
	)

	return out, err
}

func hasDelimiter(line string) bool {
	for _, d := range []string{"{{", "{%", "{#"} {
		if strings.Contains(line, d) {
			return true
		}
	}

	return false
}
