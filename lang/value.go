package lang

import "math"

// Kind identifies the variant of a [Value].
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
	KindFunction
	KindMacro
)

// String returns the template-facing name of the kind.
func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "none"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	case KindMacro:
		return "macro"
	default:
		return "unknown"
	}
}

// Value is a runtime template value. The set of implementations is closed:
// [Undefined], [Null], [Bool], [Int], [Float], [String], [Array], *[Object],
// *[Function] and *[MacroValue].
type Value interface {
	Kind() Kind
	value()
}

type (
	// Undefined is the result of looking up a name or key that does not
	// exist. It renders as the empty string.
	Undefined struct{}

	// Null is the none literal.
	Null struct{}

	// Bool is a boolean.
	Bool bool

	// Int is a 64-bit signed integer.
	Int int64

	// Float is a 64-bit float.
	Float float64

	// String is a Unicode string.
	String string

	// Array is an ordered sequence. Arrays are treated as immutable.
	Array []Value
)

// Func is the calling convention shared by native functions and filters.
// For filters the subject is args[0]. kwargs is never modified by callers
// and may be nil.
type Func func(args []Value, kwargs *Object, env *Environment) (Value, error)

// Function is a native callable value.
type Function struct {
	Fn   Func
	Name string
}

// NewFunction returns a named native function value.
func NewFunction(name string, fn Func) *Function {
	return &Function{Name: name, Fn: fn}
}

// MacroValue is a macro bound to the environment it was defined in.
type MacroValue struct {
	Def *Macro
	Env *Environment
}

func (Undefined) Kind() Kind   { return KindUndefined }
func (Null) Kind() Kind        { return KindNull }
func (Bool) Kind() Kind        { return KindBool }
func (Int) Kind() Kind         { return KindInt }
func (Float) Kind() Kind       { return KindFloat }
func (String) Kind() Kind      { return KindString }
func (Array) Kind() Kind       { return KindArray }
func (*Object) Kind() Kind     { return KindObject }
func (*Function) Kind() Kind   { return KindFunction }
func (*MacroValue) Kind() Kind { return KindMacro }

func (Undefined) value()   {}
func (Null) value()        {}
func (Bool) value()        {}
func (Int) value()         {}
func (Float) value()       {}
func (String) value()      {}
func (Array) value()       {}
func (*Object) value()     {}
func (*Function) value()   {}
func (*MacroValue) value() {}

// Truthy reports the boolean interpretation of v.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case nil, Undefined, Null:
		return false
	case Bool:
		return bool(v)
	case Int:
		return v != 0
	case Float:
		return v != 0 && !math.IsNaN(float64(v))
	case String:
		return v != ""
	case Array:
		return len(v) > 0
	case *Object:
		return v.Len() > 0
	default:
		return true
	}
}

// IsUndefined reports whether v is undefined (or a nil interface).
func IsUndefined(v Value) bool {
	if v == nil {
		return true
	}

	_, ok := v.(Undefined)

	return ok
}

// IsNumber reports whether v is an Int or a Float.
func IsNumber(v Value) bool {
	switch v.(type) {
	case Int, Float:
		return true
	}

	return false
}

// toFloat converts a numeric value to float64.
func toFloat(v Value) (float64, bool) {
	switch v := v.(type) {
	case Int:
		return float64(v), true
	case Float:
		return float64(v), true
	case Bool:
		if v {
			return 1, true
		}

		return 0, true
	}

	return 0, false
}

// kindOf returns the kind of v, treating nil as undefined.
func kindOf(v Value) Kind {
	if v == nil {
		return KindUndefined
	}

	return v.Kind()
}
