package lang

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ardnew/jinja/log"
)

// signal is the control outcome of executing a statement.
type signal int

const (
	signalNone signal = iota
	signalBreak
	signalContinue
)

// interpreter walks a parsed template. One interpreter serves a single
// render and is never shared between goroutines.
type interpreter struct {
	ctx      context.Context
	registry *Registry
	logger   log.Logger
	source   string
	depth    int
	maxDepth int
}

func newInterpreter(ctx context.Context, cfg config) *interpreter {
	return &interpreter{
		ctx:      ctx,
		registry: cfg.registry,
		logger:   cfg.logger,
		maxDepth: cfg.maxCallDepth,
	}
}

// scope returns a child of parent bound to this interpreter.
func (in *interpreter) scope(parent *Environment) *Environment {
	env := NewEnvironment(parent)
	env.ip = in

	return env
}

// locate attaches the position of node to err unless it already has one.
// Errors from native functions that are not engine errors are reported as
// runtime errors.
func (in *interpreter) locate(err error, node Node) error {
	var e *Error

	if !errors.As(err, &e) ||
		!(errors.Is(err, ErrRuntime) || errors.Is(err, ErrSyntax) || errors.Is(err, ErrLex)) {
		e = ErrRuntime.Wrap(err)
	}

	if !e.Position().IsZero() || node == nil {
		return e
	}

	if in.source == "" {
		return e.At(Position{Offset: node.Pos()})
	}

	return e.At(positionAt(in.source, node.Pos()))
}

func (in *interpreter) execBody(body []Stmt, env *Environment, out *strings.Builder) (signal, error) {
	for _, s := range body {
		sig, err := in.exec(s, env, out)
		if err != nil {
			return signalNone, in.locate(err, s)
		}

		if sig != signalNone {
			return sig, nil
		}
	}

	return signalNone, nil
}

func (in *interpreter) exec(s Stmt, env *Environment, out *strings.Builder) (signal, error) {
	switch s := s.(type) {
	case *Text:
		out.WriteString(s.Value)

	case *Comment:

	case *Output:
		v, err := in.eval(s.Expr, env)
		if err != nil {
			return signalNone, err
		}

		out.WriteString(Stringify(v))

	case *If:
		test, err := in.eval(s.Test, env)
		if err != nil {
			return signalNone, err
		}

		if Truthy(test) {
			return in.execBody(s.Body, env, out)
		}

		return in.execBody(s.Else, env, out)

	case *For:
		return signalNone, in.execFor(s, env, out)

	case *Set:
		return signalNone, in.execSet(s, env)

	case *Macro:
		env.Define(s.Name, &MacroValue{Def: s, Env: env})

	case *Break:
		return signalBreak, nil

	case *Continue:
		return signalContinue, nil

	case *CallBlock:
		return signalNone, in.execCallBlock(s, env, out)

	case *FilterBlock:
		return signalNone, in.execFilterBlock(s, env, out)

	case *Program:
		return in.execBody(s.Body, env, out)

	default:
		return signalNone, runtimeError(ErrTypeMismatch, "unknown statement")
	}

	return signalNone, nil
}

// iterate returns the elements a for loop visits: array elements, object
// [key, value] pairs in insertion order, or string characters. Undefined
// iterates as empty.
func iterate(v Value) ([]Value, error) {
	switch v := v.(type) {
	case Array:
		return v, nil
	case *Object:
		items := make([]Value, 0, v.Len())
		for k, e := range v.All() {
			items = append(items, Array{String(k), e})
		}

		return items, nil
	case String:
		items := make([]Value, 0, len(v))
		for _, r := range string(v) {
			items = append(items, String(r))
		}

		return items, nil
	case nil, Undefined:
		return nil, nil
	}

	return nil, runtimeError(ErrNotIterable, "",
		slog.String("kind", kindOf(v).String()))
}

func (in *interpreter) execFor(s *For, env *Environment, out *strings.Builder) error {
	iterable, err := in.eval(s.Iterable, env)
	if err != nil {
		return err
	}

	items, err := iterate(iterable)
	if err != nil {
		return in.locate(err, s.Iterable)
	}

	loop := in.scope(env)

	if s.Filter != nil {
		admitted := make([]Value, 0, len(items))

		for _, item := range items {
			if err := bind(s.Target, item, loop); err != nil {
				return in.locate(err, s.Target)
			}

			ok, err := in.eval(s.Filter, loop)
			if err != nil {
				return err
			}

			if Truthy(ok) {
				admitted = append(admitted, item)
			}
		}

		items = admitted
	}

	if len(items) == 0 {
		_, err := in.execBody(s.Else, env, out)

		return err
	}

	for i, item := range items {
		if err := bind(s.Target, item, loop); err != nil {
			return in.locate(err, s.Target)
		}

		loop.Define("loop", loopObject(items, i))

		sig, err := in.execBody(s.Body, loop, out)
		if err != nil {
			return err
		}

		if sig == signalBreak {
			break
		}
	}

	return nil
}

// loopObject builds the "loop" variable for iteration i of items.
func loopObject(items []Value, i int) *Object {
	n := len(items)

	o := NewObject(12)
	o.put("index", Int(i+1))
	o.put("index0", Int(i))
	o.put("revindex", Int(n-i))
	o.put("revindex0", Int(n-i-1))
	o.put("first", Bool(i == 0))
	o.put("last", Bool(i == n-1))
	o.put("length", Int(n))

	if i > 0 {
		o.put("previtem", items[i-1])
	}

	if i+1 < n {
		o.put("nextitem", items[i+1])
	}

	o.put("cycle", NewFunction("cycle", func(args []Value, _ *Object, _ *Environment) (Value, error) {
		if len(args) == 0 {
			return nil, runtimeError(ErrArgument, "cycle requires at least one value")
		}

		return args[i%len(args)], nil
	}))

	return o
}

// bind defines target in env from v, unpacking arrays into tuple targets.
func bind(target Expr, v Value, env *Environment) error {
	switch t := target.(type) {
	case *Identifier:
		env.Define(t.Name, v)

		return nil

	case *TupleLiteral:
		items, err := unpack(v, len(t.Items))
		if err != nil {
			return err
		}

		for i, item := range t.Items {
			if err := bind(item, items[i], env); err != nil {
				return err
			}
		}

		return nil
	}

	return ErrSyntax.Wrap(ErrInvalidTarget)
}

// unpack returns the n elements of v or an arity error. Objects unpack
// their values in order, so groupby results bind as (grouper, list).
func unpack(v Value, n int) ([]Value, error) {
	var items []Value

	switch v := v.(type) {
	case Array:
		items = v
	case String:
		items, _ = iterate(v)
	case *Object:
		for _, e := range v.All() {
			items = append(items, e)
		}
	default:
		return nil, runtimeError(ErrArity, "cannot unpack "+kindOf(v).String(),
			slog.Int("expected", n))
	}

	if len(items) != n {
		return nil, runtimeError(ErrArity, "",
			slog.Int("expected", n),
			slog.Int("actual", len(items)),
		)
	}

	return items, nil
}

func (in *interpreter) execSet(s *Set, env *Environment) error {
	var (
		v   Value
		err error
	)

	if s.Value != nil {
		v, err = in.eval(s.Value, env)
	} else {
		v, err = in.render(s.Body, in.scope(env))
	}

	if err != nil {
		return err
	}

	return in.assign(s.Target, v, env)
}

// render executes body into a new string value.
func (in *interpreter) render(body []Stmt, env *Environment) (Value, error) {
	var b strings.Builder

	sig, err := in.execBody(body, env, &b)
	if err != nil {
		return nil, err
	}

	if sig != signalNone {
		return nil, ErrSyntax.Wrap(ErrLoopControl)
	}

	return String(b.String()), nil
}

func (in *interpreter) assign(target Expr, v Value, env *Environment) error {
	switch t := target.(type) {
	case *Identifier:
		env.Assign(t.Name, v)

		return nil

	case *TupleLiteral:
		items, err := unpack(v, len(t.Items))
		if err != nil {
			return in.locate(err, t)
		}

		for i, item := range t.Items {
			if err := in.assign(item, items[i], env); err != nil {
				return err
			}
		}

		return nil

	case *Member:
		return in.assignMember(t, v, env)
	}

	return ErrSyntax.Wrap(ErrInvalidTarget)
}

// assignMember stores v under the member key and writes the rebuilt object
// back through its base expression.
func (in *interpreter) assignMember(m *Member, v Value, env *Environment) error {
	base, err := in.eval(m.Object, env)
	if err != nil {
		return err
	}

	obj, ok := base.(*Object)
	if !ok {
		return in.locate(runtimeError(ErrTypeMismatch, "cannot assign attribute of "+kindOf(base).String()), m)
	}

	key, err := in.memberKey(m, env)
	if err != nil {
		return err
	}

	name, ok := key.(String)
	if !ok {
		return in.locate(runtimeError(ErrTypeMismatch, "object keys must be strings"), m.Property)
	}

	return in.assign(m.Object, obj.With(string(name), v), env)
}

func (in *interpreter) execCallBlock(s *CallBlock, env *Environment, out *strings.Builder) error {
	caller := NewFunction("caller", func(args []Value, kwargs *Object, _ *Environment) (Value, error) {
		scope := in.scope(env)

		if err := in.bindParams("caller", s.CallerParams, args, kwargs, env, scope); err != nil {
			return nil, err
		}

		return in.enter(func() (Value, error) { return in.render(s.Body, scope) })
	})

	scope := in.scope(env)
	scope.Define("caller", caller)

	v, err := in.eval(s.Call, scope)
	if err != nil {
		return err
	}

	out.WriteString(Stringify(v))

	return nil
}

func (in *interpreter) execFilterBlock(s *FilterBlock, env *Environment, out *strings.Builder) error {
	body, err := in.render(s.Body, env)
	if err != nil {
		return err
	}

	v, err := in.applyChain(s.Filter, body, env)
	if err != nil {
		return err
	}

	out.WriteString(Stringify(v))

	return nil
}

// applyChain applies a filter chain whose innermost operand is nil to
// subject.
func (in *interpreter) applyChain(f *FilterExpr, subject Value, env *Environment) (Value, error) {
	if f.Operand != nil {
		inner, ok := f.Operand.(*FilterExpr)
		if !ok || inner == nil {
			return nil, runtimeError(ErrTypeMismatch, "invalid filter chain")
		}

		var err error
		if subject, err = in.applyChain(inner, subject, env); err != nil {
			return nil, err
		}
	}

	args, kwargs, err := in.evalArgs(f.Args, env)
	if err != nil {
		return nil, err
	}

	v, err := in.applyFilter(f.Name, subject, args, kwargs, env)
	if err != nil {
		return nil, in.locate(err, f)
	}

	return v, nil
}
