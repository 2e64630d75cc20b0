package lang

import (
	"fmt"
	"log/slog"
	"maps"
	"math"
	"reflect"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
)

// ValueOf converts Go data to a template value. Supported inputs are nil,
// booleans, all integer and float types, strings, []any and other slices,
// map[string]any and other string-keyed maps (keys sorted), yaml.MapSlice
// and yaml.MapItem (order kept), and Value itself.
func ValueOf(v any) (Value, error) {
	switch v := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case int:
		return Int(v), nil
	case int8:
		return Int(v), nil
	case int16:
		return Int(v), nil
	case int32:
		return Int(v), nil
	case int64:
		return Int(v), nil
	case uint:
		return uintValue(uint64(v))
	case uint8:
		return Int(v), nil
	case uint16:
		return Int(v), nil
	case uint32:
		return Int(v), nil
	case uint64:
		return uintValue(v)
	case float32:
		return Float(v), nil
	case float64:
		return Float(v), nil
	case []any:
		return arrayOf(len(v), func(i int) any { return v[i] })
	case yaml.MapSlice:
		o := NewObject(len(v))

		for _, item := range v {
			e, err := ValueOf(item.Value)
			if err != nil {
				return nil, err
			}

			o.put(fmt.Sprint(item.Key), e)
		}

		return o, nil
	case yaml.MapItem:
		return ValueOf(yaml.MapSlice{v})
	case map[string]any:
		o := NewObject(len(v))

		for _, k := range slices.Sorted(maps.Keys(v)) {
			e, err := ValueOf(v[k])
			if err != nil {
				return nil, err
			}

			o.put(k, e)
		}

		return o, nil
	}

	return reflectValue(reflect.ValueOf(v))
}

func uintValue(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Float(u), nil
	}

	return Int(u), nil
}

func arrayOf(n int, at func(int) any) (Value, error) {
	out := make(Array, n)

	for i := range n {
		e, err := ValueOf(at(i))
		if err != nil {
			return nil, err
		}

		out[i] = e
	}

	return out, nil
}

// reflectValue handles typed slices and maps not matched by ValueOf.
func reflectValue(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null{}, nil
		}

		return ValueOf(rv.Elem().Interface())

	case reflect.Slice, reflect.Array:
		return arrayOf(rv.Len(), func(i int) any { return rv.Index(i).Interface() })

	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		byKey := make(map[string]reflect.Value, rv.Len())

		for iter := rv.MapRange(); iter.Next(); {
			k := fmt.Sprint(iter.Key().Interface())
			keys = append(keys, k)
			byKey[k] = iter.Value()
		}

		slices.Sort(keys)

		o := NewObject(len(keys))

		for _, k := range keys {
			e, err := ValueOf(byKey[k].Interface())
			if err != nil {
				return nil, err
			}

			o.put(k, e)
		}

		return o, nil

	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return uintValue(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	}

	return nil, runtimeError(ErrTypeMismatch, "cannot convert Go value",
		slog.String("type", rv.Type().String()))
}

// NativeVars converts a map of Go data to render variables.
func NativeVars(m map[string]any) (Vars, error) {
	vars := make(Vars, len(m))

	for k, v := range m {
		tv, err := ValueOf(v)
		if err != nil {
			return nil, WrapError(err).With(slog.String("key", k))
		}

		vars[k] = tv
	}

	return vars, nil
}

// ToNative converts a template value to plain Go data: nil, bool, int64,
// float64, string, []any and map[string]any. Functions and macros convert
// to their string representation.
func ToNative(v Value) any {
	switch v := v.(type) {
	case nil, Undefined, Null:
		return nil
	case Bool:
		return bool(v)
	case Int:
		return int64(v)
	case Float:
		return float64(v)
	case String:
		return string(v)
	case Array:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = ToNative(e)
		}

		return out
	case *Object:
		out := make(map[string]any, v.Len())
		for k, e := range v.All() {
			out[k] = ToNative(e)
		}

		return out
	}

	return Repr(v)
}

// toOrdered converts v like [ToNative] but keeps object key order by using
// yaml.MapSlice.
func toOrdered(v Value) any {
	switch v := v.(type) {
	case Array:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = toOrdered(e)
		}

		return out
	case *Object:
		out := make(yaml.MapSlice, 0, v.Len())
		for k, e := range v.All() {
			out = append(out, yaml.MapItem{Key: k, Value: toOrdered(e)})
		}

		return out
	}

	return ToNative(v)
}

// EncodeYAML formats v as YAML without a trailing newline. Object key order
// is kept.
func EncodeYAML(v Value, indent int) (string, error) {
	b, err := yaml.MarshalWithOptions(toOrdered(v), yaml.Indent(max(indent, 1)))
	if err != nil {
		return "", runtimeError(ErrTypeMismatch, err.Error())
	}

	return strings.TrimSuffix(string(b), "\n"), nil
}
