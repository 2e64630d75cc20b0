package lang

import (
	"maps"
	"slices"
	"strings"
	"unicode/utf8"
)

type methodFunc func(recv Value, args []Value, kwargs *Object) (Value, error)

// stringMethods are bound on member access to string values.
var stringMethods = map[string]methodFunc{
	"upper": func(recv Value, args []Value, kwargs *Object) (Value, error) {
		return String(strings.ToUpper(string(recv.(String)))), nil
	},
	"lower": func(recv Value, args []Value, kwargs *Object) (Value, error) {
		return String(strings.ToLower(string(recv.(String)))), nil
	},
	"title": func(recv Value, args []Value, kwargs *Object) (Value, error) {
		return String(title(string(recv.(String)))), nil
	},
	"capitalize": func(recv Value, args []Value, kwargs *Object) (Value, error) {
		return String(capitalize(string(recv.(String)))), nil
	},
	"strip":  trimMethod("strip", strings.Trim, strings.TrimSpace),
	"lstrip": trimMethod("lstrip", strings.TrimLeft, func(s string) string { return strings.TrimLeft(s, " \t\r\n\v\f") }),
	"rstrip": trimMethod("rstrip", strings.TrimRight, func(s string) string { return strings.TrimRight(s, " \t\r\n\v\f") }),
	"split": func(recv Value, args []Value, kwargs *Object) (Value, error) {
		a, err := BindArgs("split", args, kwargs, []Param{
			{Name: "sep", Default: Null{}},
			{Name: "maxsplit", Default: Int(-1)},
		})
		if err != nil {
			return nil, err
		}

		limit, err := intArg("split", "maxsplit", a[1])
		if err != nil {
			return nil, err
		}

		s := string(recv.(String))

		var parts []string

		if sep, ok := optString(a[0]); ok {
			if sep == "" {
				return nil, runtimeError(ErrArgument, "split: empty separator")
			}

			n := -1
			if limit >= 0 {
				n = limit + 1
			}

			parts = strings.SplitN(s, sep, n)
		} else {
			parts = splitFields(s, limit)
		}

		out := make(Array, len(parts))
		for i, p := range parts {
			out[i] = String(p)
		}

		return out, nil
	},
	"startswith": affixMethod("startswith", strings.HasPrefix),
	"endswith":   affixMethod("endswith", strings.HasSuffix),
	"replace": func(recv Value, args []Value, kwargs *Object) (Value, error) {
		a, err := BindArgs("replace", args, kwargs, []Param{
			{Name: "old"},
			{Name: "new"},
			{Name: "count", Default: Int(-1)},
		})
		if err != nil {
			return nil, err
		}

		n, err := intArg("replace", "count", a[2])
		if err != nil {
			return nil, err
		}

		return String(strings.Replace(string(recv.(String)), Stringify(a[0]), Stringify(a[1]), n)), nil
	},
	"find": func(recv Value, args []Value, kwargs *Object) (Value, error) {
		a, err := BindArgs("find", args, kwargs, []Param{{Name: "sub"}})
		if err != nil {
			return nil, err
		}

		s := string(recv.(String))

		i := strings.Index(s, Stringify(a[0]))
		if i < 0 {
			return Int(-1), nil
		}

		return Int(utf8.RuneCountInString(s[:i])), nil
	},
	"count": func(recv Value, args []Value, kwargs *Object) (Value, error) {
		a, err := BindArgs("count", args, kwargs, []Param{{Name: "sub"}})
		if err != nil {
			return nil, err
		}

		s, sub := string(recv.(String)), Stringify(a[0])
		if sub == "" {
			return Int(utf8.RuneCountInString(s) + 1), nil
		}

		return Int(strings.Count(s, sub)), nil
	},
	"join": func(recv Value, args []Value, kwargs *Object) (Value, error) {
		a, err := BindArgs("join", args, kwargs, []Param{{Name: "iterable"}})
		if err != nil {
			return nil, err
		}

		items, err := sequence("join", a[0])
		if err != nil {
			return nil, err
		}

		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = Stringify(item)
		}

		return String(strings.Join(parts, string(recv.(String)))), nil
	},
}

// objectMethods are bound on member access to objects when no entry with
// the same key exists.
var objectMethods = map[string]methodFunc{
	"items": func(recv Value, args []Value, kwargs *Object) (Value, error) {
		items, _ := iterate(recv)

		return Array(items), nil
	},
	"keys": func(recv Value, args []Value, kwargs *Object) (Value, error) {
		keys := recv.(*Object).Keys()
		out := make(Array, len(keys))

		for i, k := range keys {
			out[i] = String(k)
		}

		return out, nil
	},
	"values": func(recv Value, args []Value, kwargs *Object) (Value, error) {
		o := recv.(*Object)
		out := make(Array, 0, o.Len())

		for _, v := range o.All() {
			out = append(out, v)
		}

		return out, nil
	},
	"get": func(recv Value, args []Value, kwargs *Object) (Value, error) {
		a, err := BindArgs("get", args, kwargs, []Param{{Name: "key"}, {Name: "default", Default: Null{}}})
		if err != nil {
			return nil, err
		}

		k, ok := a[0].(String)
		if !ok {
			return a[1], nil
		}

		if v, ok := recv.(*Object).Get(string(k)); ok {
			return v, nil
		}

		return a[1], nil
	},
}

// method binds the named method of recv as a function value.
func method(recv Value, name string) (*Function, bool) {
	var table map[string]methodFunc

	switch recv.(type) {
	case String:
		table = stringMethods
	case *Object:
		table = objectMethods
	default:
		return nil, false
	}

	m, ok := table[name]
	if !ok {
		return nil, false
	}

	return NewFunction(name, func(args []Value, kwargs *Object, _ *Environment) (Value, error) {
		return m(recv, args, kwargs)
	}), true
}

// Methods returns the sorted method names available on values of kind k.
func Methods(k Kind) []string {
	var table map[string]methodFunc

	switch k {
	case KindString:
		table = stringMethods
	case KindObject:
		table = objectMethods
	}

	return slices.Sorted(maps.Keys(table))
}

func trimMethod(name string, cut func(string, string) string, space func(string) string) methodFunc {
	return func(recv Value, args []Value, kwargs *Object) (Value, error) {
		a, err := BindArgs(name, args, kwargs, []Param{{Name: "chars", Default: Null{}}})
		if err != nil {
			return nil, err
		}

		s := string(recv.(String))
		if chars, ok := optString(a[0]); ok {
			return String(cut(s, chars)), nil
		}

		return String(space(s)), nil
	}
}

func affixMethod(name string, match func(string, string) bool) methodFunc {
	return func(recv Value, args []Value, kwargs *Object) (Value, error) {
		a, err := BindArgs(name, args, kwargs, []Param{{Name: "affix"}})
		if err != nil {
			return nil, err
		}

		s := string(recv.(String))

		if alts, ok := a[0].(Array); ok {
			for _, alt := range alts {
				if match(s, Stringify(alt)) {
					return Bool(true), nil
				}
			}

			return Bool(false), nil
		}

		return Bool(match(s, Stringify(a[0]))), nil
	}
}

// splitFields splits on runs of whitespace, performing at most limit
// splits when limit is non-negative.
func splitFields(s string, limit int) []string {
	if limit < 0 {
		return strings.Fields(s)
	}

	var out []string

	s = strings.TrimLeft(s, " \t\r\n\v\f")

	for len(out) < limit && s != "" {
		i := strings.IndexAny(s, " \t\r\n\v\f")
		if i < 0 {
			break
		}

		out = append(out, s[:i])
		s = strings.TrimLeft(s[i:], " \t\r\n\v\f")
	}

	if s != "" {
		out = append(out, s)
	}

	return out
}
