package lang

import (
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// Helpers shared by the built-in filters, tests and globals.

func argError(name, detail string, v Value) error {
	return runtimeError(ErrArgument, name+": "+detail,
		slog.String("kind", kindOf(v).String()))
}

// toInt converts numbers, booleans and numeric strings to an integer.
func toInt(v Value) (int64, bool) {
	switch v := v.(type) {
	case Int:
		return int64(v), true
	case Float:
		return int64(v), true
	case Bool:
		if v {
			return 1, true
		}

		return 0, true
	case String:
		s := strings.TrimSpace(string(v))
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}

		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f), true
		}
	}

	return 0, false
}

// intArg returns v as an int or reports which argument was wrong.
func intArg(name, param string, v Value) (int, error) {
	n, ok := toInt(v)
	if !ok {
		return 0, argError(name, param+" must be an integer", v)
	}

	return int(n), nil
}

// optString returns the string value of v unless v is none or undefined.
func optString(v Value) (string, bool) {
	switch v := v.(type) {
	case nil, Null, Undefined:
		return "", false
	case String:
		return string(v), true
	}

	return Stringify(v), true
}

// isNone reports whether v is none or undefined.
func isNone(v Value) bool {
	switch v.(type) {
	case nil, Null, Undefined:
		return true
	}

	return false
}

// sequence returns the elements of an iterable filter subject.
func sequence(name string, v Value) ([]Value, error) {
	items, err := iterate(v)
	if err != nil {
		return nil, argError(name, "value is not iterable", v)
	}

	return items, nil
}

// attribute resolves a dotted path such as "user.name" or "items.0"
// against v.
func attribute(v Value, path string) Value {
	for part := range strings.SplitSeq(path, ".") {
		var key Value = String(part)
		if n, err := strconv.ParseInt(part, 10, 64); err == nil {
			if _, ok := v.(*Object); !ok {
				key = Int(n)
			}
		}

		v = getMember(v, key)
	}

	return v
}

// attrGetter returns a function selecting the attribute named by attr, or
// the identity when attr is none.
func attrGetter(attr Value) func(Value) Value {
	path, ok := optString(attr)
	if !ok {
		return func(v Value) Value { return v }
	}

	return func(v Value) Value { return attribute(v, path) }
}

// foldCase lowercases strings, recursively through arrays, for
// case-insensitive comparisons.
func foldCase(v Value) Value {
	switch v := v.(type) {
	case String:
		return String(strings.ToLower(string(v)))
	case Array:
		out := make(Array, len(v))
		for i, e := range v {
			out[i] = foldCase(e)
		}

		return out
	}

	return v
}

// sortValues stably sorts items by key. The first comparison error is
// returned.
func sortValues(items []Value, key func(Value) Value, reverse bool) error {
	var err error

	slices.SortStableFunc(items, func(a, b Value) int {
		c, cerr := Compare(key(a), key(b))
		if cerr != nil && err == nil {
			err = cerr
		}

		if reverse {
			return -c
		}

		return c
	})

	return err
}

// sortKey builds a key function from attribute and case sensitivity
// arguments.
func sortKey(attr, caseSensitive Value) func(Value) Value {
	get := attrGetter(attr)
	if Truthy(caseSensitive) {
		return get
	}

	return func(v Value) Value { return foldCase(get(v)) }
}

// uniqueValues removes later duplicates under key, keeping first
// occurrences in order.
func uniqueValues(items []Value, key func(Value) Value) Array {
	out := make(Array, 0, len(items))
	seen := make([]Value, 0, len(items))

	for _, item := range items {
		k := key(item)
		if slices.ContainsFunc(seen, func(s Value) bool { return Equal(s, k) }) {
			continue
		}

		seen = append(seen, k)
		out = append(out, item)
	}

	return out
}
