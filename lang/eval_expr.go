package lang

import "log/slog"

// eval evaluates e in env, attaching the position of the innermost failing
// node to any error.
func (in *interpreter) eval(e Expr, env *Environment) (Value, error) {
	v, err := in.evalExpr(e, env)
	if err != nil {
		return nil, in.locate(err, e)
	}

	return v, nil
}

func (in *interpreter) evalExpr(e Expr, env *Environment) (Value, error) {
	switch e := e.(type) {
	case *StringLiteral:
		return String(e.Value), nil
	case *IntegerLiteral:
		return Int(e.Value), nil
	case *FloatLiteral:
		return Float(e.Value), nil
	case *BooleanLiteral:
		return Bool(e.Value), nil
	case *NullLiteral:
		return Null{}, nil
	case *ArrayLiteral:
		return in.evalList(e.Items, env)
	case *TupleLiteral:
		return in.evalList(e.Items, env)
	case *ObjectLiteral:
		return in.evalObject(e, env)
	case *Identifier:
		return in.lookup(e.Name, env), nil
	case *Unary:
		return in.evalUnary(e, env)
	case *Binary:
		return in.evalBinary(e, env)
	case *Ternary:
		return in.evalTernary(e, env)
	case *Call:
		return in.evalCall(e, env)
	case *Member:
		return in.evalMember(e, env)
	case *Slice:
		return in.evalSlice(e, env)
	case *FilterExpr:
		return in.evalFilter(e, env)
	case *TestExpr:
		return in.evalTest(e, env)
	case *Spread:
		return nil, runtimeError(ErrTypeMismatch, "unpacking is only allowed in call arguments")
	}

	return nil, runtimeError(ErrTypeMismatch, "unknown expression")
}

// lookup resolves an identifier through env and then the registry globals.
// Misses yield undefined.
func (in *interpreter) lookup(name string, env *Environment) Value {
	if v, ok := env.Lookup(name); ok {
		return v
	}

	if v, ok := in.registry.Global(name); ok {
		return v
	}

	return Undefined{}
}

func (in *interpreter) evalList(items []Expr, env *Environment) (Value, error) {
	out := make(Array, 0, len(items))

	for _, item := range items {
		v, err := in.eval(item, env)
		if err != nil {
			return nil, err
		}

		out = append(out, v)
	}

	return out, nil
}

func (in *interpreter) evalObject(e *ObjectLiteral, env *Environment) (Value, error) {
	o := NewObject(len(e.Entries))

	for _, entry := range e.Entries {
		k, err := in.eval(entry.Key, env)
		if err != nil {
			return nil, err
		}

		key, err := objectKey(k)
		if err != nil {
			return nil, in.locate(err, entry.Key)
		}

		v, err := in.eval(entry.Value, env)
		if err != nil {
			return nil, err
		}

		o.put(key, v)
	}

	return o, nil
}

// objectKey converts a scalar to an object key.
func objectKey(k Value) (string, error) {
	switch k := k.(type) {
	case String:
		return string(k), nil
	case Int, Float, Bool, Null:
		return Stringify(k), nil
	}

	return "", runtimeError(ErrTypeMismatch, "unusable object key",
		slog.String("kind", kindOf(k).String()))
}

func (in *interpreter) evalUnary(e *Unary, env *Environment) (Value, error) {
	v, err := in.eval(e.Operand, env)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case TokenNot:
		return Bool(!Truthy(v)), nil
	case TokenMinus:
		return Negate(v)
	case TokenPlus:
		if IsNumber(v) {
			return v, nil
		}

		return nil, runtimeError(ErrTypeMismatch, "bad operand for unary +",
			slog.String("operand", kindOf(v).String()))
	}

	return nil, runtimeError(ErrTypeMismatch, "unknown unary operator "+e.Op.String())
}

func (in *interpreter) evalBinary(e *Binary, env *Environment) (Value, error) {
	left, err := in.eval(e.Left, env)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case TokenAnd:
		if !Truthy(left) {
			return left, nil
		}

		return in.eval(e.Right, env)

	case TokenOr:
		if Truthy(left) {
			return left, nil
		}

		return in.eval(e.Right, env)
	}

	right, err := in.eval(e.Right, env)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case TokenIn:
		ok, err := Contains(right, left)

		return Bool(ok), err

	case TokenEqual, TokenNotEqual,
		TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual:
		return compareOp(e.Op, left, right)
	}

	return Arithmetic(e.Op, left, right)
}

func (in *interpreter) evalTernary(e *Ternary, env *Environment) (Value, error) {
	test, err := in.eval(e.Test, env)
	if err != nil {
		return nil, err
	}

	switch {
	case Truthy(test):
		return in.eval(e.Then, env)
	case e.Else != nil:
		return in.eval(e.Else, env)
	}

	return Undefined{}, nil
}

func (in *interpreter) evalCall(e *Call, env *Environment) (Value, error) {
	callee, err := in.eval(e.Callee, env)
	if err != nil {
		return nil, err
	}

	args, kwargs, err := in.evalArgs(e.Args, env)
	if err != nil {
		return nil, err
	}

	return in.call(callee, args, kwargs, env)
}

// evalArgs evaluates call arguments, expanding *spread and **kwargs.
// kwargs is nil when no keyword arguments were given.
func (in *interpreter) evalArgs(a Arguments, env *Environment) ([]Value, *Object, error) {
	args := make([]Value, 0, len(a.Positional))

	for _, p := range a.Positional {
		if s, ok := p.(*Spread); ok {
			v, err := in.eval(s.Operand, env)
			if err != nil {
				return nil, nil, err
			}

			items, err := iterate(v)
			if err != nil {
				return nil, nil, in.locate(err, s)
			}

			args = append(args, items...)

			continue
		}

		v, err := in.eval(p, env)
		if err != nil {
			return nil, nil, err
		}

		args = append(args, v)
	}

	if len(a.Keywords) == 0 && a.Kwargs == nil {
		return args, nil, nil
	}

	kwargs := NewObject(len(a.Keywords))

	for _, kw := range a.Keywords {
		v, err := in.eval(kw.Value, env)
		if err != nil {
			return nil, nil, err
		}

		if kwargs.Has(kw.Name) {
			return nil, nil, in.locate(runtimeError(ErrArgument,
				"keyword argument repeated: "+kw.Name), kw.Value)
		}

		kwargs.put(kw.Name, v)
	}

	if a.Kwargs != nil {
		v, err := in.eval(a.Kwargs, env)
		if err != nil {
			return nil, nil, err
		}

		extra, ok := v.(*Object)
		if !ok && !IsUndefined(v) {
			return nil, nil, in.locate(runtimeError(ErrTypeMismatch,
				"argument after ** must be an object"), a.Kwargs)
		}

		for k, v := range extra.All() {
			if kwargs.Has(k) {
				return nil, nil, in.locate(runtimeError(ErrArgument,
					"keyword argument repeated: "+k), a.Kwargs)
			}

			kwargs.put(k, v)
		}
	}

	return args, kwargs, nil
}

func (in *interpreter) memberKey(e *Member, env *Environment) (Value, error) {
	if !e.Computed {
		if id, ok := e.Property.(*Identifier); ok {
			return String(id.Name), nil
		}
	}

	return in.eval(e.Property, env)
}

func (in *interpreter) evalMember(e *Member, env *Environment) (Value, error) {
	obj, err := in.eval(e.Object, env)
	if err != nil {
		return nil, err
	}

	key, err := in.memberKey(e, env)
	if err != nil {
		return nil, err
	}

	return getMember(obj, key), nil
}

// getMember implements obj.name and obj[key]. Misses yield undefined.
func getMember(obj, key Value) Value {
	switch o := obj.(type) {
	case *Object:
		if k, ok := key.(String); ok {
			if v, ok := o.Get(string(k)); ok {
				return v
			}

			if m, ok := method(o, string(k)); ok {
				return m
			}
		}

	case Array:
		if i, ok := index(key, len(o)); ok {
			return o[i]
		}

	case String:
		switch k := key.(type) {
		case Int:
			r := []rune(string(o))
			if i, ok := index(k, len(r)); ok {
				return String(r[i])
			}
		case String:
			if m, ok := method(o, string(k)); ok {
				return m
			}
		}
	}

	return Undefined{}
}

// index resolves a possibly negative integer index into a sequence of
// length n.
func index(key Value, n int) (int, bool) {
	k, ok := key.(Int)
	if !ok {
		return 0, false
	}

	i := int(k)
	if i < 0 {
		i += n
	}

	return i, i >= 0 && i < n
}

func (in *interpreter) evalSlice(e *Slice, env *Environment) (Value, error) {
	obj, err := in.eval(e.Object, env)
	if err != nil {
		return nil, err
	}

	var bounds [3]*int

	for i, x := range []Expr{e.Start, e.Stop, e.Step} {
		if x == nil {
			continue
		}

		v, err := in.eval(x, env)
		if err != nil {
			return nil, err
		}

		switch v := v.(type) {
		case Int:
			n := int(v)
			bounds[i] = &n
		case Null, Undefined:
		default:
			return nil, in.locate(runtimeError(ErrTypeMismatch,
				"slice indices must be integers",
				slog.String("kind", kindOf(v).String())), x)
		}
	}

	return SliceValue(obj, bounds[0], bounds[1], bounds[2])
}

// SliceValue applies Python slice semantics to a string or array. Nil
// bounds take their defaults for the step direction.
func SliceValue(v Value, start, stop, step *int) (Value, error) {
	st := 1
	if step != nil {
		st = *step
	}

	if st == 0 {
		return nil, runtimeError(ErrZeroStep, "")
	}

	switch v := v.(type) {
	case String:
		r := []rune(string(v))
		idx := sliceIndices(len(r), start, stop, st)
		out := make([]rune, len(idx))

		for i, j := range idx {
			out[i] = r[j]
		}

		return String(out), nil

	case Array:
		idx := sliceIndices(len(v), start, stop, st)
		out := make(Array, len(idx))

		for i, j := range idx {
			out[i] = v[j]
		}

		return out, nil
	}

	return nil, runtimeError(ErrTypeMismatch, "value is not sliceable",
		slog.String("kind", kindOf(v).String()))
}

// sliceIndices returns the indices selected by [start:stop:step] over a
// sequence of length n.
func sliceIndices(n int, start, stop *int, step int) []int {
	clamp := func(p *int, def, lo, hi int) int {
		if p == nil {
			return def
		}

		i := *p
		if i < 0 {
			i += n
		}

		return min(max(i, lo), hi)
	}

	var idx []int

	if step > 0 {
		from, to := clamp(start, 0, 0, n), clamp(stop, n, 0, n)
		for i := from; i < to; i += step {
			idx = append(idx, i)
		}

		return idx
	}

	from, to := clamp(start, n-1, -1, n-1), clamp(stop, -1, -1, n-1)
	for i := from; i > to; i += step {
		idx = append(idx, i)
	}

	return idx
}

func (in *interpreter) evalFilter(e *FilterExpr, env *Environment) (Value, error) {
	subject, err := in.eval(e.Operand, env)
	if err != nil {
		return nil, err
	}

	args, kwargs, err := in.evalArgs(e.Args, env)
	if err != nil {
		return nil, err
	}

	return in.applyFilter(e.Name, subject, args, kwargs, env)
}

func (in *interpreter) evalTest(e *TestExpr, env *Environment) (Value, error) {
	subject, err := in.eval(e.Operand, env)
	if err != nil {
		return nil, err
	}

	args, kwargs, err := in.evalArgs(e.Args, env)
	if err != nil {
		return nil, err
	}

	ok, err := in.applyTest(e.Name, subject, args, kwargs, env)
	if err != nil {
		return nil, err
	}

	return Bool(ok != e.Negated), nil
}

// applyFilter resolves name against callable variables first, then the
// registry.
func (in *interpreter) applyFilter(
	name string,
	subject Value,
	args []Value,
	kwargs *Object,
	env *Environment,
) (Value, error) {
	full := append([]Value{subject}, args...)

	if v, ok := env.Lookup(name); ok && isCallable(v) {
		return in.call(v, full, kwargs, env)
	}

	fn, ok := in.registry.Filter(name)
	if !ok {
		return nil, in.registry.unknown(CategoryFilter, name)
	}

	return fn(full, kwargs, env)
}

// applyTest resolves name like [interpreter.applyFilter]. A callable
// variable passes when its result is truthy.
func (in *interpreter) applyTest(
	name string,
	subject Value,
	args []Value,
	kwargs *Object,
	env *Environment,
) (bool, error) {
	full := append([]Value{subject}, args...)

	if v, ok := env.Lookup(name); ok && isCallable(v) {
		r, err := in.call(v, full, kwargs, env)

		return Truthy(r), err
	}

	fn, ok := in.registry.Test(name)
	if !ok {
		return false, in.registry.unknown(CategoryTest, name)
	}

	return fn(full, kwargs, env)
}

func isCallable(v Value) bool {
	switch v.(type) {
	case *Function, *MacroValue:
		return true
	}

	return false
}
