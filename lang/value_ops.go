package lang

import (
	"log/slog"
	"math"
	"strings"
)

// mismatch builds the runtime error for an operator applied to operands it
// does not support.
func mismatch(op string, a, b Value) *Error {
	return runtimeError(ErrTypeMismatch, "",
		slog.String("op", op),
		slog.String("left", kindOf(a).String()),
		slog.String("right", kindOf(b).String()),
	)
}

// Arithmetic applies a binary arithmetic operator (+ - * / // % ** ~).
func Arithmetic(op TokenKind, a, b Value) (Value, error) {
	switch op {
	case TokenPlus:
		return add(a, b)
	case TokenMinus:
		return numeric(op, a, b,
			func(x, y int64) (Value, error) { return Int(x - y), nil },
			func(x, y float64) (Value, error) { return Float(x - y), nil },
		)
	case TokenStar:
		return multiply(a, b)
	case TokenSlash:
		return numeric(op, a, b,
			func(x, y int64) (Value, error) {
				if y == 0 {
					return nil, runtimeError(ErrDivisionByZero, "")
				}

				return Float(float64(x) / float64(y)), nil
			},
			func(x, y float64) (Value, error) {
				if y == 0 {
					return nil, runtimeError(ErrDivisionByZero, "")
				}

				return Float(x / y), nil
			},
		)
	case TokenFloorDiv:
		return numeric(op, a, b,
			func(x, y int64) (Value, error) {
				if y == 0 {
					return nil, runtimeError(ErrDivisionByZero, "")
				}

				return Int(floorDiv(x, y)), nil
			},
			func(x, y float64) (Value, error) {
				if y == 0 {
					return nil, runtimeError(ErrDivisionByZero, "")
				}

				return Float(math.Floor(x / y)), nil
			},
		)
	case TokenPercent:
		x, xok := a.(Int)
		y, yok := b.(Int)

		if !xok || !yok {
			return nil, mismatch(op.String(), a, b)
		}

		if y == 0 {
			return nil, runtimeError(ErrDivisionByZero, "modulo by zero")
		}

		return Int(floorMod(int64(x), int64(y))), nil
	case TokenPow:
		return numeric(op, a, b,
			func(x, y int64) (Value, error) {
				if y < 0 {
					return Float(math.Pow(float64(x), float64(y))), nil
				}

				return Int(intPow(x, y)), nil
			},
			func(x, y float64) (Value, error) { return Float(math.Pow(x, y)), nil },
		)
	case TokenTilde:
		return String(Stringify(a) + Stringify(b)), nil
	}

	return nil, mismatch(op.String(), a, b)
}

// numeric dispatches to onInt when both operands are integers and to
// onFloat when both are numbers.
func numeric(
	op TokenKind,
	a, b Value,
	onInt func(x, y int64) (Value, error),
	onFloat func(x, y float64) (Value, error),
) (Value, error) {
	if x, ok := a.(Int); ok {
		if y, ok := b.(Int); ok {
			return onInt(int64(x), int64(y))
		}
	}

	if IsNumber(a) && IsNumber(b) {
		x, _ := toFloat(a)
		y, _ := toFloat(b)

		return onFloat(x, y)
	}

	return nil, mismatch(op.String(), a, b)
}

func add(a, b Value) (Value, error) {
	if IsNumber(a) && IsNumber(b) {
		return numeric(TokenPlus, a, b,
			func(x, y int64) (Value, error) { return Int(x + y), nil },
			func(x, y float64) (Value, error) { return Float(x + y), nil },
		)
	}

	_, as := a.(String)
	_, bs := b.(String)

	if as || bs {
		return String(Stringify(a) + Stringify(b)), nil
	}

	if x, ok := a.(Array); ok {
		if y, ok := b.(Array); ok {
			out := make(Array, 0, len(x)+len(y))

			return append(append(out, x...), y...), nil
		}
	}

	return nil, mismatch("+", a, b)
}

func multiply(a, b Value) (Value, error) {
	if IsNumber(a) && IsNumber(b) {
		return numeric(TokenStar, a, b,
			func(x, y int64) (Value, error) { return Int(x * y), nil },
			func(x, y float64) (Value, error) { return Float(x * y), nil },
		)
	}

	seq, n := a, b
	if _, ok := a.(Int); ok {
		seq, n = b, a
	}

	count, ok := n.(Int)
	if !ok {
		return nil, mismatch("*", a, b)
	}

	count = max(count, 0)

	switch s := seq.(type) {
	case String:
		return String(strings.Repeat(string(s), int(count))), nil
	case Array:
		out := make(Array, 0, len(s)*int(count))
		for range count {
			out = append(out, s...)
		}

		return out, nil
	}

	return nil, mismatch("*", a, b)
}

func floorDiv(x, y int64) int64 {
	q := x / y
	if (x%y != 0) && ((x < 0) != (y < 0)) {
		q--
	}

	return q
}

func floorMod(x, y int64) int64 {
	r := x % y
	if r != 0 && ((r < 0) != (y < 0)) {
		r += y
	}

	return r
}

func intPow(base, exp int64) int64 {
	result := int64(1)

	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}

		base *= base
		exp >>= 1
	}

	return result
}

// Negate applies unary minus.
func Negate(v Value) (Value, error) {
	switch v := v.(type) {
	case Int:
		return -v, nil
	case Float:
		return -v, nil
	}

	return nil, runtimeError(ErrTypeMismatch, "bad operand for unary -",
		slog.String("operand", kindOf(v).String()))
}

// Equal reports structural equality. Integers and floats compare by numeric
// value; any other pair of different kinds is unequal.
func Equal(a, b Value) bool {
	if IsNumber(a) && IsNumber(b) {
		if x, ok := a.(Int); ok {
			if y, ok := b.(Int); ok {
				return x == y
			}
		}

		x, _ := toFloat(a)
		y, _ := toFloat(b)

		return x == y
	}

	if kindOf(a) != kindOf(b) {
		return false
	}

	switch x := a.(type) {
	case nil, Undefined, Null:
		return true
	case Bool:
		return x == b.(Bool)
	case String:
		return x == b.(String)
	case Array:
		y := b.(Array)
		if len(x) != len(y) {
			return false
		}

		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}

		return true
	case *Object:
		y := b.(*Object)
		if x.Len() != y.Len() {
			return false
		}

		for k, v := range x.All() {
			w, ok := y.Get(k)
			if !ok || !Equal(v, w) {
				return false
			}
		}

		return true
	case *Function:
		return x == b.(*Function)
	case *MacroValue:
		return x == b.(*MacroValue)
	}

	return false
}

// Compare orders a and b, returning -1, 0 or +1. Only numbers, strings,
// booleans and arrays of comparable elements are ordered; anything else is a
// runtime error.
func Compare(a, b Value) (int, error) {
	if IsNumber(a) && IsNumber(b) {
		if x, ok := a.(Int); ok {
			if y, ok := b.(Int); ok {
				return cmp3(x, y), nil
			}
		}

		x, _ := toFloat(a)
		y, _ := toFloat(b)

		return cmp3(x, y), nil
	}

	switch x := a.(type) {
	case String:
		if y, ok := b.(String); ok {
			return strings.Compare(string(x), string(y)), nil
		}
	case Bool:
		if y, ok := b.(Bool); ok {
			xi, _ := toFloat(x)
			yi, _ := toFloat(y)

			return cmp3(xi, yi), nil
		}
	case Array:
		if y, ok := b.(Array); ok {
			for i := range min(len(x), len(y)) {
				c, err := Compare(x[i], y[i])
				if err != nil || c != 0 {
					return c, err
				}
			}

			return cmp3(len(x), len(y)), nil
		}
	}

	return 0, mismatch("compare", a, b)
}

func cmp3[T int | Int | float64](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}

	return 0
}

// compareOp evaluates one of < <= > >= == !=.
func compareOp(op TokenKind, a, b Value) (Value, error) {
	switch op {
	case TokenEqual:
		return Bool(Equal(a, b)), nil
	case TokenNotEqual:
		return Bool(!Equal(a, b)), nil
	}

	c, err := Compare(a, b)
	if err != nil {
		return nil, err
	}

	switch op {
	case TokenLess:
		return Bool(c < 0), nil
	case TokenLessEqual:
		return Bool(c <= 0), nil
	case TokenGreater:
		return Bool(c > 0), nil
	case TokenGreaterEqual:
		return Bool(c >= 0), nil
	}

	return nil, mismatch(op.String(), a, b)
}

// Contains implements the "in" operator: membership in an array, substring
// of a string, or key presence in an object.
func Contains(container, item Value) (bool, error) {
	switch c := container.(type) {
	case Array:
		for _, e := range c {
			if Equal(e, item) {
				return true, nil
			}
		}

		return false, nil
	case String:
		s, ok := item.(String)
		if !ok {
			return false, mismatch("in", item, container)
		}

		return strings.Contains(string(c), string(s)), nil
	case *Object:
		s, ok := item.(String)

		return ok && c.Has(string(s)), nil
	}

	return false, mismatch("in", item, container)
}

// Length returns the length of a string (in characters), array or object.
func Length(v Value) (int, bool) {
	switch v := v.(type) {
	case String:
		return len([]rune(string(v))), true
	case Array:
		return len(v), true
	case *Object:
		return v.Len(), true
	}

	return 0, false
}
