package lang

import (
	"log/slog"
	"slices"
	"strconv"
)

// Param declares a parameter of a native function for [BindArgs] and for
// signature help. A nil Default marks the parameter as required.
type Param struct {
	Default Value
	Name    string
}

// BindArgs matches positional and keyword arguments against params and
// returns one value per parameter, in declaration order. Missing optional
// parameters receive their default.
func BindArgs(name string, args []Value, kwargs *Object, params []Param) ([]Value, error) {
	if len(args) > len(params) {
		return nil, runtimeError(ErrArgument, name+": too many positional arguments",
			slog.Int("max", len(params)),
			slog.Int("actual", len(args)),
		)
	}

	out := make([]Value, len(params))
	copy(out, args)

	for k, v := range kwargs.All() {
		i := slices.IndexFunc(params, func(p Param) bool { return p.Name == k })

		switch {
		case i < 0:
			return nil, runtimeError(ErrArgument, name+": unexpected keyword argument "+strconv.Quote(k))
		case i < len(args):
			return nil, runtimeError(ErrArgument, name+": multiple values for argument "+strconv.Quote(k))
		}

		out[i] = v
	}

	for i, p := range params {
		if out[i] != nil {
			continue
		}

		if p.Default == nil {
			return nil, runtimeError(ErrArgument, name+": missing required argument "+strconv.Quote(p.Name))
		}

		out[i] = p.Default
	}

	return out, nil
}

// CallValue invokes a function or macro value from native code, such as a
// filter that accepts a callable argument.
func CallValue(fn Value, args []Value, kwargs *Object, env *Environment) (Value, error) {
	return env.interp().call(fn, args, kwargs, env)
}

func (in *interpreter) call(fn Value, args []Value, kwargs *Object, env *Environment) (Value, error) {
	switch f := fn.(type) {
	case *Function:
		return f.Fn(args, kwargs, env)
	case *MacroValue:
		return in.callMacro(f, args, kwargs, env)
	}

	return nil, runtimeError(ErrNotCallable, "",
		slog.String("kind", kindOf(fn).String()))
}

// enter runs fn one level deeper in the call stack, enforcing the configured
// depth limit.
func (in *interpreter) enter(fn func() (Value, error)) (Value, error) {
	in.depth++
	defer func() { in.depth-- }()

	if in.maxDepth > 0 && in.depth > in.maxDepth {
		return nil, runtimeError(ErrCallDepth, "", slog.Int("limit", in.maxDepth))
	}

	return fn()
}

// callMacro renders the macro body in a child of its defining environment.
// A caller bound in the calling environment is forwarded.
func (in *interpreter) callMacro(
	m *MacroValue,
	args []Value,
	kwargs *Object,
	caller *Environment,
) (Value, error) {
	return in.enter(func() (Value, error) {
		scope := in.scope(m.Env)

		if err := in.bindParams(m.Def.Name, m.Def.Params, args, kwargs, m.Env, scope); err != nil {
			return nil, err
		}

		if c, ok := caller.Lookup("caller"); ok && !m.declares("caller") {
			scope.Define("caller", c)
		}

		in.logger.TraceContext(in.ctx, "macro call",
			slog.String("macro", m.Def.Name),
			slog.Int("depth", in.depth),
		)

		return in.render(m.Def.Body, scope)
	})
}

func (m *MacroValue) declares(name string) bool {
	return slices.ContainsFunc(m.Def.Params, func(p Parameter) bool { return p.Name == name })
}

// bindParams binds arguments to template-declared parameters in scope.
// Defaults are evaluated in def.
func (in *interpreter) bindParams(
	name string,
	params []Parameter,
	args []Value,
	kwargs *Object,
	def, scope *Environment,
) error {
	if len(args) > len(params) {
		return runtimeError(ErrArgument, name+": too many positional arguments",
			slog.Int("max", len(params)),
			slog.Int("actual", len(args)),
		)
	}

	for k := range kwargs.All() {
		i := slices.IndexFunc(params, func(p Parameter) bool { return p.Name == k })

		switch {
		case i < 0:
			return runtimeError(ErrArgument, name+": unexpected keyword argument "+strconv.Quote(k))
		case i < len(args):
			return runtimeError(ErrArgument, name+": multiple values for argument "+strconv.Quote(k))
		}
	}

	defaults := in.scope(def)

	for i, p := range params {
		if i < len(args) {
			scope.Define(p.Name, args[i])

			continue
		}

		if v, ok := kwargs.Get(p.Name); ok {
			scope.Define(p.Name, v)

			continue
		}

		if p.Default == nil {
			return runtimeError(ErrArgument, name+": missing required argument "+strconv.Quote(p.Name))
		}

		v, err := in.eval(p.Default, defaults)
		if err != nil {
			return err
		}

		scope.Define(p.Name, v)
	}

	return nil
}
