package lang

import (
	"html"
	"math"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

func registerFilters(r *Registry) {
	value := Param{Name: "value"}

	r.defineFilter(builtin{
		doc:    "Return the absolute value of a number.",
		params: []Param{value},
		fn: func(a []Value, _ *Environment) (Value, error) {
			switch v := a[0].(type) {
			case Int:
				return Int(max(v, -v)), nil
			case Float:
				return Float(math.Abs(float64(v))), nil
			}

			return nil, argError("abs", "value must be a number", a[0])
		},
	}, "abs")

	r.defineFilter(builtin{
		doc:    "Get an attribute of an object by name.",
		params: []Param{value, {Name: "name"}},
		fn: func(a []Value, _ *Environment) (Value, error) {
			return getMember(a[0], a[1]), nil
		},
	}, "attr")

	r.defineFilter(builtin{
		doc:    "Split a sequence into lists of the given size, padding the last with fill_with.",
		params: []Param{value, {Name: "linecount"}, {Name: "fill_with", Default: Null{}}},
		fn:     filterBatch,
	}, "batch")

	r.defineFilter(builtin{
		doc:    "Uppercase the first character and lowercase the rest.",
		params: []Param{value},
		fn: func(a []Value, _ *Environment) (Value, error) {
			return String(capitalize(Stringify(a[0]))), nil
		},
	}, "capitalize")

	r.defineFilter(builtin{
		doc:    "Center the value in a field of the given width.",
		params: []Param{value, {Name: "width", Default: Int(80)}},
		fn: func(a []Value, _ *Environment) (Value, error) {
			width, err := intArg("center", "width", a[1])
			if err != nil {
				return nil, err
			}

			return String(center(Stringify(a[0]), width)), nil
		},
	}, "center")

	length := builtin{
		doc:    "Return the number of items in a sequence or object, or characters in a string.",
		params: []Param{value},
		fn: func(a []Value, _ *Environment) (Value, error) {
			if IsUndefined(a[0]) {
				return Int(0), nil
			}

			n, ok := Length(a[0])
			if !ok {
				return nil, argError("length", "value has no length", a[0])
			}

			return Int(n), nil
		},
	}
	r.defineFilter(length, "length", "count")

	r.defineFilter(builtin{
		doc: "Return default_value if the value is undefined, or if it is falsy and boolean is true.",
		params: []Param{
			value,
			{Name: "default_value", Default: String("")},
			{Name: "boolean", Default: Bool(false)},
		},
		fn: func(a []Value, _ *Environment) (Value, error) {
			if IsUndefined(a[0]) || (Truthy(a[2]) && !Truthy(a[0])) {
				return a[1], nil
			}

			return a[0], nil
		},
	}, "default", "d")

	r.defineFilter(builtin{
		doc: "Sort an object by key or value and return a list of [key, value] pairs.",
		params: []Param{
			value,
			{Name: "case_sensitive", Default: Bool(false)},
			{Name: "by", Default: String("key")},
			{Name: "reverse", Default: Bool(false)},
		},
		fn: filterDictsort,
	}, "dictsort")

	r.defineFilter(builtin{
		doc:    "Replace the characters & < > \" and ' with HTML-safe sequences.",
		params: []Param{value},
		fn: func(a []Value, _ *Environment) (Value, error) {
			return String(html.EscapeString(Stringify(a[0]))), nil
		},
	}, "escape", "e")

	r.defineFilter(builtin{
		doc:    "Return the first item of a sequence.",
		params: []Param{value},
		fn: func(a []Value, _ *Environment) (Value, error) {
			items, err := sequence("first", a[0])
			if err != nil || len(items) == 0 {
				return Undefined{}, err
			}

			return items[0], nil
		},
	}, "first")

	r.defineFilter(builtin{
		doc:    "Return the last item of a sequence.",
		params: []Param{value},
		fn: func(a []Value, _ *Environment) (Value, error) {
			items, err := sequence("last", a[0])
			if err != nil || len(items) == 0 {
				return Undefined{}, err
			}

			return items[len(items)-1], nil
		},
	}, "last")

	r.defineFilter(builtin{
		doc:    "Convert the value to a float, or return default if conversion fails.",
		params: []Param{value, {Name: "default", Default: Float(0)}},
		fn: func(a []Value, _ *Environment) (Value, error) {
			switch v := a[0].(type) {
			case Int:
				return Float(v), nil
			case Float:
				return v, nil
			case Bool:
				f, _ := toFloat(v)

				return Float(f), nil
			case String:
				if f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64); err == nil {
					return Float(f), nil
				}
			}

			return a[1], nil
		},
	}, "float")

	r.defineFilter(builtin{
		doc: "Convert the value to an integer, or return default if conversion fails. " +
			"Strings are parsed in the given base.",
		params: []Param{value, {Name: "default", Default: Int(0)}, {Name: "base", Default: Int(10)}},
		fn: func(a []Value, _ *Environment) (Value, error) {
			if s, ok := a[0].(String); ok {
				base, err := intArg("int", "base", a[2])
				if err != nil {
					return nil, err
				}

				text := strings.ToLower(strings.TrimSpace(string(s)))
				if base != 10 {
					text = strings.TrimPrefix(text, "0x")
					text = strings.TrimPrefix(text, "0o")
					text = strings.TrimPrefix(text, "0b")
				}

				if n, err := strconv.ParseInt(text, base, 64); err == nil {
					return Int(n), nil
				}

				if base == 10 {
					if f, err := strconv.ParseFloat(text, 64); err == nil {
						return Int(int64(f)), nil
					}
				}

				return a[1], nil
			}

			if n, ok := toInt(a[0]); ok {
				return Int(n), nil
			}

			return a[1], nil
		},
	}, "int")

	r.defineFilter(builtin{
		doc: "Group a sequence of objects by an attribute. Each group is an object " +
			"with grouper and list entries.",
		params: []Param{value, {Name: "attribute"}, {Name: "default", Default: Null{}}},
		fn:     filterGroupby,
	}, "groupby")

	r.defineFilter(builtin{
		doc: "Indent each line after the first by width spaces (or the width string). " +
			"first indents the first line, blank indents empty lines.",
		params: []Param{
			value,
			{Name: "width", Default: Int(4)},
			{Name: "first", Default: Bool(false)},
			{Name: "blank", Default: Bool(false)},
		},
		fn: filterIndent,
	}, "indent")

	r.defineFilter(builtin{
		doc:    "Return the [key, value] pairs of an object.",
		params: []Param{value},
		fn: func(a []Value, _ *Environment) (Value, error) {
			switch v := a[0].(type) {
			case *Object:
				items, _ := iterate(v)

				return Array(items), nil
			case nil, Undefined:
				return Array{}, nil
			}

			return nil, argError("items", "value must be an object", a[0])
		},
	}, "items")

	r.defineFilter(builtin{
		doc:    "Concatenate the items of a sequence with a separator.",
		params: []Param{value, {Name: "d", Default: String("")}, {Name: "attribute", Default: Null{}}},
		fn: func(a []Value, _ *Environment) (Value, error) {
			items, err := sequence("join", a[0])
			if err != nil {
				return nil, err
			}

			get := attrGetter(a[2])
			parts := make([]string, len(items))

			for i, item := range items {
				parts[i] = Stringify(get(item))
			}

			return String(strings.Join(parts, Stringify(a[1]))), nil
		},
	}, "join")

	r.defineFilter(builtin{
		doc:    "Convert the value to a list. Strings become lists of characters.",
		params: []Param{value},
		fn: func(a []Value, _ *Environment) (Value, error) {
			items, err := sequence("list", a[0])
			if err != nil {
				return nil, err
			}

			return slices.Clone(Array(items)), nil
		},
	}, "list")

	r.defineFilter(builtin{
		doc:    "Convert a string to lowercase.",
		params: []Param{value},
		fn: func(a []Value, _ *Environment) (Value, error) {
			return String(strings.ToLower(Stringify(a[0]))), nil
		},
	}, "lower")

	r.defineFilter(builtin{
		doc:    "Convert a string to uppercase.",
		params: []Param{value},
		fn: func(a []Value, _ *Environment) (Value, error) {
			return String(strings.ToUpper(Stringify(a[0]))), nil
		},
	}, "upper")

	r.RegisterFilter("map", filterMap, Param{Name: "filter"}, Param{Name: "attribute", Default: Null{}})
	r.Document(CategoryFilter, "map",
		"Apply a filter to each item, or select an attribute with attribute=name.")

	extreme := func(name string, want int) builtin {
		return builtin{
			doc: "Return the " + name + "imum item of a sequence.",
			params: []Param{
				value,
				{Name: "case_sensitive", Default: Bool(false)},
				{Name: "attribute", Default: Null{}},
			},
			fn: func(a []Value, _ *Environment) (Value, error) {
				items, err := sequence(name, a[0])
				if err != nil || len(items) == 0 {
					return Undefined{}, err
				}

				key := sortKey(a[2], a[1])
				best := items[0]

				for _, item := range items[1:] {
					c, err := Compare(key(item), key(best))
					if err != nil {
						return nil, err
					}

					if c == want {
						best = item
					}
				}

				return best, nil
			},
		}
	}
	r.defineFilter(extreme("max", 1), "max")
	r.defineFilter(extreme("min", -1), "min")

	r.RegisterFilter("select", selectFilter(true, false), Param{Name: "test", Default: Null{}})
	r.RegisterFilter("reject", selectFilter(false, false), Param{Name: "test", Default: Null{}})
	r.RegisterFilter("selectattr", selectFilter(true, true),
		Param{Name: "attribute"}, Param{Name: "test", Default: Null{}})
	r.RegisterFilter("rejectattr", selectFilter(false, true),
		Param{Name: "attribute"}, Param{Name: "test", Default: Null{}})
	r.Document(CategoryFilter, "select", "Keep the items that pass a test, or are truthy.")
	r.Document(CategoryFilter, "reject", "Drop the items that pass a test, or are truthy.")
	r.Document(CategoryFilter, "selectattr", "Keep the items whose attribute passes a test.")
	r.Document(CategoryFilter, "rejectattr", "Drop the items whose attribute passes a test.")

	r.defineFilter(builtin{
		doc: "Replace occurrences of old with new. count limits the replacements.",
		params: []Param{
			value,
			{Name: "old"},
			{Name: "new"},
			{Name: "count", Default: Null{}},
		},
		fn: func(a []Value, _ *Environment) (Value, error) {
			n := -1
			if !isNone(a[3]) {
				var err error
				if n, err = intArg("replace", "count", a[3]); err != nil {
					return nil, err
				}
			}

			return String(strings.Replace(Stringify(a[0]), Stringify(a[1]), Stringify(a[2]), n)), nil
		},
	}, "replace")

	r.defineFilter(builtin{
		doc:    "Reverse a string or sequence.",
		params: []Param{value},
		fn: func(a []Value, _ *Environment) (Value, error) {
			if s, ok := a[0].(String); ok {
				r := []rune(string(s))
				slices.Reverse(r)

				return String(r), nil
			}

			items, err := sequence("reverse", a[0])
			if err != nil {
				return nil, err
			}

			out := slices.Clone(Array(items))
			slices.Reverse(out)

			return out, nil
		},
	}, "reverse")

	r.defineFilter(builtin{
		doc: "Round a number to precision digits. method is common, ceil or floor.",
		params: []Param{
			value,
			{Name: "precision", Default: Int(0)},
			{Name: "method", Default: String("common")},
		},
		fn: filterRound,
	}, "round")

	r.defineFilter(builtin{
		doc:    "Mark the value as safe. Output is never escaped, so this returns the value unchanged.",
		params: []Param{value},
		fn:     func(a []Value, _ *Environment) (Value, error) { return a[0], nil },
	}, "safe")

	r.defineFilter(builtin{
		doc:    "Split a sequence into the given number of columns, padding with fill_with.",
		params: []Param{value, {Name: "slices"}, {Name: "fill_with", Default: Null{}}},
		fn:     filterSlice,
	}, "slice")

	r.defineFilter(builtin{
		doc: "Sort a sequence.",
		params: []Param{
			value,
			{Name: "reverse", Default: Bool(false)},
			{Name: "case_sensitive", Default: Bool(false)},
			{Name: "attribute", Default: Null{}},
		},
		fn: func(a []Value, _ *Environment) (Value, error) {
			items, err := sequence("sort", a[0])
			if err != nil {
				return nil, err
			}

			out := slices.Clone(Array(items))

			return out, sortValues(out, sortKey(a[3], a[2]), Truthy(a[1]))
		},
	}, "sort")

	r.defineFilter(builtin{
		doc:    "Convert the value to a string.",
		params: []Param{value},
		fn:     func(a []Value, _ *Environment) (Value, error) { return String(Stringify(a[0])), nil },
	}, "string")

	r.defineFilter(builtin{
		doc:    "Sum a sequence of numbers, optionally selecting an attribute, starting at start.",
		params: []Param{value, {Name: "attribute", Default: Null{}}, {Name: "start", Default: Int(0)}},
		fn: func(a []Value, _ *Environment) (Value, error) {
			items, err := sequence("sum", a[0])
			if err != nil {
				return nil, err
			}

			get := attrGetter(a[1])
			total := a[2]

			for _, item := range items {
				if total, err = Arithmetic(TokenPlus, total, get(item)); err != nil {
					return nil, err
				}
			}

			return total, nil
		},
	}, "sum")

	r.defineFilter(builtin{
		doc:    "Capitalize the first letter of each word.",
		params: []Param{value},
		fn:     func(a []Value, _ *Environment) (Value, error) { return String(title(Stringify(a[0]))), nil },
	}, "title")

	r.defineFilter(builtin{
		doc:    "Serialize the value as JSON. indent places nested values on separate lines.",
		params: []Param{value, {Name: "indent", Default: Null{}}},
		fn: func(a []Value, _ *Environment) (Value, error) {
			indent := 0
			if !isNone(a[1]) {
				var err error
				if indent, err = intArg("tojson", "indent", a[1]); err != nil {
					return nil, err
				}
			}

			s, err := EncodeJSON(a[0], indent)

			return String(s), err
		},
	}, "tojson")

	r.defineFilter(builtin{
		doc:    "Serialize the value as YAML, preserving object key order.",
		params: []Param{value, {Name: "indent", Default: Int(2)}},
		fn: func(a []Value, _ *Environment) (Value, error) {
			indent, err := intArg("toyaml", "indent", a[1])
			if err != nil {
				return nil, err
			}

			s, err := EncodeYAML(a[0], indent)
			if err != nil {
				return nil, err
			}

			return String(s), nil
		},
	}, "toyaml")

	r.defineFilter(builtin{
		doc:    "Strip leading and trailing whitespace, or the given characters.",
		params: []Param{value, {Name: "chars", Default: Null{}}},
		fn: func(a []Value, _ *Environment) (Value, error) {
			if chars, ok := optString(a[1]); ok {
				return String(strings.Trim(Stringify(a[0]), chars)), nil
			}

			return String(strings.TrimSpace(Stringify(a[0]))), nil
		},
	}, "trim")

	r.defineFilter(builtin{
		doc: "Truncate a string to length characters, appending end. Words are kept " +
			"whole unless killwords is true. Strings within leeway of length are kept.",
		params: []Param{
			value,
			{Name: "length", Default: Int(255)},
			{Name: "killwords", Default: Bool(false)},
			{Name: "end", Default: String("...")},
			{Name: "leeway", Default: Int(5)},
		},
		fn: filterTruncate,
	}, "truncate")

	r.defineFilter(builtin{
		doc: "Return the unique items of a sequence in first-seen order.",
		params: []Param{
			value,
			{Name: "case_sensitive", Default: Bool(false)},
			{Name: "attribute", Default: Null{}},
		},
		fn: func(a []Value, _ *Environment) (Value, error) {
			items, err := sequence("unique", a[0])
			if err != nil {
				return nil, err
			}

			return uniqueValues(items, sortKey(a[2], a[1])), nil
		},
	}, "unique")

	r.defineFilter(builtin{
		doc:    "Count the words in a string.",
		params: []Param{value},
		fn: func(a []Value, _ *Environment) (Value, error) {
			return Int(len(strings.Fields(Stringify(a[0])))), nil
		},
	}, "wordcount")

	r.defineFilter(builtin{
		doc:    "Return a random item from a sequence.",
		params: []Param{value},
		fn: func(a []Value, _ *Environment) (Value, error) {
			items, err := sequence("random", a[0])
			if err != nil || len(items) == 0 {
				return Undefined{}, err
			}

			return items[rand.IntN(len(items))], nil
		},
	}, "random")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}

	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// title uppercases the first letter of every word and lowercases the rest.
// A word starts after any character that is not a letter or digit.
func title(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	start := true

	for _, r := range s {
		switch {
		case start && unicode.IsLetter(r):
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteRune(unicode.ToLower(r))
		}

		start = !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	}

	return b.String()
}

func center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if width <= n {
		return s
	}

	pad := width - n
	left := pad / 2

	if pad%2 == 1 && width%2 == 1 {
		left++
	}

	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}

func filterBatch(a []Value, _ *Environment) (Value, error) {
	items, err := sequence("batch", a[0])
	if err != nil {
		return nil, err
	}

	size, err := intArg("batch", "linecount", a[1])
	if err != nil {
		return nil, err
	}

	if size <= 0 {
		return nil, argError("batch", "linecount must be positive", a[1])
	}

	out := Array{}

	for chunk := range slices.Chunk(items, size) {
		row := slices.Clone(Array(chunk))

		if len(row) < size && !isNone(a[2]) {
			for len(row) < size {
				row = append(row, a[2])
			}
		}

		out = append(out, row)
	}

	return out, nil
}

func filterSlice(a []Value, _ *Environment) (Value, error) {
	items, err := sequence("slice", a[0])
	if err != nil {
		return nil, err
	}

	n, err := intArg("slice", "slices", a[1])
	if err != nil {
		return nil, err
	}

	if n <= 0 {
		return nil, argError("slice", "slices must be positive", a[1])
	}

	per, extra := len(items)/n, len(items)%n
	out := make(Array, 0, n)
	offset := 0

	for i := range n {
		start := offset + i*per
		if i < extra {
			offset++
		}

		col := slices.Clone(Array(items[start : offset+(i+1)*per]))

		if !isNone(a[2]) && i >= extra {
			col = append(col, a[2])
		}

		out = append(out, col)
	}

	return out, nil
}

func filterDictsort(a []Value, _ *Environment) (Value, error) {
	obj, ok := a[0].(*Object)
	if !ok {
		return nil, argError("dictsort", "value must be an object", a[0])
	}

	pos := 0

	switch by := Stringify(a[2]); by {
	case "key":
	case "value":
		pos = 1
	default:
		return nil, argError("dictsort", "by must be 'key' or 'value'", a[2])
	}

	items, _ := iterate(obj)

	key := func(v Value) Value {
		k := v.(Array)[pos]
		if !Truthy(a[1]) {
			return foldCase(k)
		}

		return k
	}

	return Array(items), sortValues(items, key, Truthy(a[3]))
}

func filterGroupby(a []Value, _ *Environment) (Value, error) {
	items, err := sequence("groupby", a[0])
	if err != nil {
		return nil, err
	}

	path := Stringify(a[1])
	key := func(v Value) Value {
		k := attribute(v, path)
		if IsUndefined(k) && !isNone(a[2]) {
			return a[2]
		}

		return k
	}

	sorted := slices.Clone(items)
	if err := sortValues(sorted, key, false); err != nil {
		return nil, err
	}

	out := Array{}

	for i := 0; i < len(sorted); {
		grouper := key(sorted[i])
		j := i + 1

		for j < len(sorted) && Equal(key(sorted[j]), grouper) {
			j++
		}

		out = append(out, ObjectOf(
			"grouper", grouper,
			"list", slices.Clone(Array(sorted[i:j])),
		))
		i = j
	}

	return out, nil
}

func filterIndent(a []Value, _ *Environment) (Value, error) {
	prefix, ok := a[1].(String)
	if !ok {
		width, err := intArg("indent", "width", a[1])
		if err != nil {
			return nil, err
		}

		prefix = String(strings.Repeat(" ", max(width, 0)))
	}

	lines := strings.Split(Stringify(a[0]), "\n")

	for i, line := range lines {
		if i == 0 && !Truthy(a[2]) {
			continue
		}

		if line == "" && !Truthy(a[3]) {
			continue
		}

		lines[i] = string(prefix) + line
	}

	return String(strings.Join(lines, "\n")), nil
}

func filterRound(a []Value, _ *Environment) (Value, error) {
	f, ok := toFloat(a[0])
	if !ok {
		return nil, argError("round", "value must be a number", a[0])
	}

	precision, err := intArg("round", "precision", a[1])
	if err != nil {
		return nil, err
	}

	scale := math.Pow10(precision)

	var op func(float64) float64

	switch Stringify(a[2]) {
	case "common":
		op = math.RoundToEven
	case "ceil":
		op = math.Ceil
	case "floor":
		op = math.Floor
	default:
		return nil, argError("round", "method must be common, ceil or floor", a[2])
	}

	return Float(op(f*scale) / scale), nil
}

func filterTruncate(a []Value, _ *Environment) (Value, error) {
	s := []rune(Stringify(a[0]))

	length, err := intArg("truncate", "length", a[1])
	if err != nil {
		return nil, err
	}

	leeway, err := intArg("truncate", "leeway", a[4])
	if err != nil {
		return nil, err
	}

	end := Stringify(a[3])
	if len(s) <= length+leeway {
		return String(s), nil
	}

	cut := max(length-utf8.RuneCountInString(end), 0)
	head := string(s[:cut])

	if !Truthy(a[2]) {
		if i := strings.LastIndexByte(head, ' '); i >= 0 {
			head = head[:i]
		}
	}

	return String(head + end), nil
}

func filterMap(args []Value, kwargs *Object, env *Environment) (Value, error) {
	if len(args) == 0 {
		return nil, runtimeError(ErrArgument, "map: missing value")
	}

	items, err := sequence("map", args[0])
	if err != nil {
		return nil, err
	}

	out := make(Array, 0, len(items))

	if attr, ok := kwargs.Get("attribute"); ok {
		def, hasDefault := kwargs.Get("default")
		get := attrGetter(attr)

		for _, item := range items {
			v := get(item)
			if IsUndefined(v) && hasDefault {
				v = def
			}

			out = append(out, v)
		}

		return out, nil
	}

	if len(args) < 2 {
		return nil, runtimeError(ErrArgument, "map: expected a filter name or attribute=")
	}

	name := Stringify(args[1])
	in := env.interp()

	for _, item := range items {
		v, err := in.applyFilter(name, item, args[2:], kwargs, env)
		if err != nil {
			return nil, err
		}

		out = append(out, v)
	}

	return out, nil
}

// selectFilter builds select, reject, selectattr and rejectattr.
func selectFilter(keep, byAttr bool) Func {
	return func(args []Value, kwargs *Object, env *Environment) (Value, error) {
		name := "select"

		switch {
		case !keep && byAttr:
			name = "rejectattr"
		case keep && byAttr:
			name = "selectattr"
		case !keep:
			name = "reject"
		}

		if len(args) == 0 || (byAttr && len(args) < 2) {
			return nil, runtimeError(ErrArgument, name+": missing arguments")
		}

		items, err := sequence(name, args[0])
		if err != nil {
			return nil, err
		}

		get := func(v Value) Value { return v }
		rest := args[1:]

		if byAttr {
			get = attrGetter(args[1])
			rest = args[2:]
		}

		in := env.interp()
		out := Array{}

		for _, item := range items {
			subject := get(item)

			var ok bool

			if len(rest) == 0 {
				ok = Truthy(subject)
			} else if ok, err = in.applyTest(Stringify(rest[0]), subject, rest[1:], kwargs, env); err != nil {
				return nil, err
			}

			if ok == keep {
				out = append(out, item)
			}
		}

		return out, nil
	}
}
