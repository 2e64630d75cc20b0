package lang

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/goccy/go-yaml"
)

func TestValueOf(t *testing.T) {
	t.Parallel()

	n := 7

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "None"},
		{"value", String("x"), "'x'"},
		{"small integer kinds", []any{int8(-1), uint16(2), int32(3)}, "[-1, 2, 3]"},
		{"large unsigned", uint64(math.MaxUint64), "1.8446744073709552e+19"},
		{"float32", float32(0.5), "0.5"},
		{"map keys sorted", map[string]any{"b": 1, "a": []any{true, nil, 2.5}}, "{'a': [True, None, 2.5], 'b': 1}"},
		{"map slice order", yaml.MapSlice{{Key: "z", Value: 1}, {Key: "a", Value: 2}}, "{'z': 1, 'a': 2}"},
		{"typed slice", []string{"x", "y"}, "['x', 'y']"},
		{"typed map", map[int]bool{2: false, 1: true}, "{'1': True, '2': False}"},
		{"pointer", &n, "7"},
		{"nil pointer", (*int)(nil), "None"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, err := ValueOf(tt.in)
			if err != nil {
				t.Fatalf("ValueOf(%#v) error: %v", tt.in, err)
			}

			if got := Repr(v); got != tt.want {
				t.Errorf("ValueOf(%#v) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}

	if _, err := ValueOf(struct{ A int }{1}); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("ValueOf(struct) error = %v, want ErrTypeMismatch", err)
	}
}

func TestNativeVars(t *testing.T) {
	t.Parallel()

	vars, err := NativeVars(map[string]any{"name": "x", "n": 2})
	if err != nil {
		t.Fatalf("NativeVars error: %v", err)
	}

	if out := renderString(t, "{{ name }}{{ n + 1 }}", vars); out != "x3" {
		t.Errorf("render = %q, want %q", out, "x3")
	}

	_, err = NativeVars(map[string]any{"bad": make(chan int)})
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("NativeVars(chan) error = %v, want ErrTypeMismatch", err)
	}
}

func TestToNative(t *testing.T) {
	t.Parallel()

	v := ObjectOf("a", Array{Int(1), Float(2.5), Null{}}, "b", ObjectOf("c", true))

	want := map[string]any{
		"a": []any{int64(1), 2.5, nil},
		"b": map[string]any{"c": true},
	}

	if got := ToNative(v); !reflect.DeepEqual(got, want) {
		t.Errorf("ToNative = %#v, want %#v", got, want)
	}

	if got := ToNative(NewFunction("f", nil)); got != "<function f>" {
		t.Errorf("ToNative(function) = %#v", got)
	}

	ordered, ok := toOrdered(v).(yaml.MapSlice)
	if !ok || len(ordered) != 2 || ordered[0].Key != "a" || ordered[1].Key != "b" {
		t.Errorf("toOrdered = %#v, want ordered map slice", toOrdered(v))
	}
}
