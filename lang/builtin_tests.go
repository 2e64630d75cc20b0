package lang

import (
	"math"
	"strings"
	"unicode"
)

func registerTests(r *Registry) {
	value := Param{Name: "value"}
	other := Param{Name: "other"}

	is := func(doc string, pred func(Value) bool, names ...string) {
		r.defineTest(builtin{
			doc:    doc,
			params: []Param{value},
			fn:     func(a []Value, _ *Environment) (Value, error) { return Bool(pred(a[0])), nil },
		}, names...)
	}

	is("Return true if the value is a boolean.", func(v Value) bool {
		_, ok := v.(Bool)

		return ok
	}, "boolean")

	is("Return true if the value can be called.", isCallable, "callable")
	is("Return true if the value is defined.", func(v Value) bool { return !IsUndefined(v) }, "defined")
	is("Return true if the value is undefined.", IsUndefined, "undefined")
	is("Return true if the value is none.", func(v Value) bool {
		_, ok := v.(Null)

		return ok
	}, "none")
	is("Return true if the value is the boolean false.", func(v Value) bool { return v == Bool(false) }, "false")
	is("Return true if the value is the boolean true.", func(v Value) bool { return v == Bool(true) }, "true")
	is("Return true if the value is a float.", func(v Value) bool {
		_, ok := v.(Float)

		return ok
	}, "float")
	is("Return true if the value is an integer.", func(v Value) bool {
		_, ok := v.(Int)

		return ok
	}, "integer")
	is("Return true if the value is a number.", IsNumber, "number")
	is("Return true if the value is a string.", func(v Value) bool {
		_, ok := v.(String)

		return ok
	}, "string")
	is("Return true if the value is an object.", func(v Value) bool {
		_, ok := v.(*Object)

		return ok
	}, "mapping")
	is("Return true if the value is a string, array or object.", func(v Value) bool {
		_, ok := Length(v)

		return ok
	}, "sequence")
	is("Return true if the value can be iterated.", func(v Value) bool {
		if IsUndefined(v) {
			return false
		}

		_, err := iterate(v)

		return err == nil
	}, "iterable")
	is("Return true if the integer is even.", func(v Value) bool {
		n, ok := v.(Int)

		return ok && n%2 == 0
	}, "even")
	is("Return true if the integer is odd.", func(v Value) bool {
		n, ok := v.(Int)

		return ok && n%2 != 0
	}, "odd")
	is("Return true if the string is all lowercase.", func(v Value) bool {
		s, ok := v.(String)

		return ok && hasCase(string(s)) && strings.ToLower(string(s)) == string(s)
	}, "lower")
	is("Return true if the string is all uppercase.", func(v Value) bool {
		s, ok := v.(String)

		return ok && hasCase(string(s)) && strings.ToUpper(string(s)) == string(s)
	}, "upper")

	r.defineTest(builtin{
		doc:    "Return true if the value is divisible by num.",
		params: []Param{value, {Name: "num"}},
		fn: func(a []Value, _ *Environment) (Value, error) {
			switch x := a[0].(type) {
			case Int:
				if y, ok := a[1].(Int); ok {
					if y == 0 {
						return nil, runtimeError(ErrDivisionByZero, "")
					}

					return Bool(x%y == 0), nil
				}
			}

			x, xok := toFloat(a[0])
			y, yok := toFloat(a[1])

			if !xok || !yok {
				return nil, mismatch("divisibleby", a[0], a[1])
			}

			if y == 0 {
				return nil, runtimeError(ErrDivisionByZero, "")
			}

			return Bool(math.Mod(x, y) == 0), nil
		},
	}, "divisibleby")

	r.defineTest(builtin{
		doc:    "Return true if the value equals other.",
		params: []Param{value, other},
		fn:     func(a []Value, _ *Environment) (Value, error) { return Bool(Equal(a[0], a[1])), nil },
	}, "eq", "equalto", "==")

	r.defineTest(builtin{
		doc:    "Return true if the value does not equal other.",
		params: []Param{value, other},
		fn:     func(a []Value, _ *Environment) (Value, error) { return Bool(!Equal(a[0], a[1])), nil },
	}, "ne", "!=")

	order := func(op TokenKind, doc string, names ...string) {
		r.defineTest(builtin{
			doc:    doc,
			params: []Param{value, other},
			fn:     func(a []Value, _ *Environment) (Value, error) { return compareOp(op, a[0], a[1]) },
		}, names...)
	}

	order(TokenLess, "Return true if the value is less than other.", "lt", "lessthan", "<")
	order(TokenLessEqual, "Return true if the value is less than or equal to other.", "le", "<=")
	order(TokenGreater, "Return true if the value is greater than other.", "gt", "greaterthan", ">")
	order(TokenGreaterEqual, "Return true if the value is greater than or equal to other.", "ge", ">=")

	r.defineTest(builtin{
		doc:    "Return true if the value is the same object as other.",
		params: []Param{value, other},
		fn: func(a []Value, _ *Environment) (Value, error) {
			return Bool(sameAs(a[0], a[1])), nil
		},
	}, "sameas")

	r.defineTest(builtin{
		doc:    "Return true if the value is contained in seq.",
		params: []Param{value, {Name: "seq"}},
		fn: func(a []Value, _ *Environment) (Value, error) {
			ok, err := Contains(a[1], a[0])

			return Bool(ok), err
		},
	}, "in")

	r.defineTest(builtin{
		doc:    "Return true if a filter with the given name exists.",
		params: []Param{value},
		fn: func(a []Value, env *Environment) (Value, error) {
			name, ok := a[0].(String)
			if !ok {
				return Bool(false), nil
			}

			_, found := env.interp().registry.Filter(string(name))

			return Bool(found), nil
		},
	}, "filter")

	r.defineTest(builtin{
		doc:    "Return true if a test with the given name exists.",
		params: []Param{value},
		fn: func(a []Value, env *Environment) (Value, error) {
			name, ok := a[0].(String)
			if !ok {
				return Bool(false), nil
			}

			_, found := env.interp().registry.Test(string(name))

			return Bool(found), nil
		},
	}, "test")
}

// hasCase reports whether s contains a cased letter.
func hasCase(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsUpper(r) || unicode.IsLower(r)
	}) >= 0
}

// sameAs compares by identity for reference values and by value for
// scalars.
func sameAs(a, b Value) bool {
	switch x := a.(type) {
	case *Object:
		y, ok := b.(*Object)

		return ok && x == y
	case Array:
		y, ok := b.(Array)

		return ok && len(x) == len(y) && (len(x) == 0 || &x[0] == &y[0])
	case *Function, *MacroValue:
		return a == b
	}

	return kindOf(a) == kindOf(b) && Equal(a, b)
}
