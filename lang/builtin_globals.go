package lang

import (
	"log/slog"
	"strings"
	"sync"
)

func registerGlobals(r *Registry) {
	r.RegisterGlobal("range", NewFunction("range", globalRange),
		Param{Name: "start"}, Param{Name: "stop", Default: Null{}}, Param{Name: "step", Default: Int(1)})
	r.Document(CategoryGlobal, "range",
		"Return the integers from start (default 0) up to but excluding stop.")

	r.RegisterGlobal("namespace", NewFunction("namespace", globalDict))
	r.Document(CategoryGlobal, "namespace",
		"Return an object whose attributes can be assigned with {% set ns.attr = value %}.")

	r.RegisterGlobal("dict", NewFunction("dict", globalDict))
	r.Document(CategoryGlobal, "dict", "Return an object built from keyword arguments.")

	r.RegisterGlobal("cycler", NewFunction("cycler", globalCycler))
	r.Document(CategoryGlobal, "cycler",
		"Return an object whose next() yields the arguments in turn, with current() and reset().")

	r.defineGlobal(builtin{
		doc:    "Return a function that returns the empty string on its first call and sep afterwards.",
		params: []Param{{Name: "sep", Default: String(", ")}},
		fn: func(a []Value, _ *Environment) (Value, error) {
			var (
				mu     sync.Mutex
				called bool
			)

			sep := a[0]

			return NewFunction("joiner", func([]Value, *Object, *Environment) (Value, error) {
				mu.Lock()
				defer mu.Unlock()

				if !called {
					called = true

					return String(""), nil
				}

				return sep, nil
			}), nil
		},
	}, "joiner")

	r.defineGlobal(builtin{
		doc: "Generate n paragraphs of lorem ipsum text, each between min and max words.",
		params: []Param{
			{Name: "n", Default: Int(5)},
			{Name: "html", Default: Bool(true)},
			{Name: "min", Default: Int(20)},
			{Name: "max", Default: Int(100)},
		},
		fn: globalLipsum,
	}, "lipsum")

	r.defineGlobal(builtin{
		doc:    "Abort rendering with the given message.",
		params: []Param{{Name: "message"}},
		fn: func(a []Value, _ *Environment) (Value, error) {
			msg := Stringify(a[0])

			return nil, runtimeError(ErrRaised, msg, slog.String("message", msg))
		},
	}, "raise_exception")
}

func globalRange(args []Value, kwargs *Object, _ *Environment) (Value, error) {
	if len(args) == 1 {
		args = []Value{Int(0), args[0]}
	}

	a, err := BindArgs("range", args, kwargs, []Param{
		{Name: "start", Default: Int(0)},
		{Name: "stop"},
		{Name: "step", Default: Int(1)},
	})
	if err != nil {
		return nil, err
	}

	var bounds [3]int

	for i, name := range []string{"start", "stop", "step"} {
		if bounds[i], err = intArg("range", name, a[i]); err != nil {
			return nil, err
		}
	}

	start, stop, step := bounds[0], bounds[1], bounds[2]
	if step == 0 {
		return nil, runtimeError(ErrZeroStep, "range step cannot be zero")
	}

	out := Array{}

	for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
		out = append(out, Int(i))
	}

	return out, nil
}

// globalDict builds an object from optional positional objects followed by
// keyword arguments.
func globalDict(args []Value, kwargs *Object, _ *Environment) (Value, error) {
	o := NewObject(kwargs.Len())

	for _, a := range args {
		src, ok := a.(*Object)
		if !ok {
			return nil, argError("dict", "positional arguments must be objects", a)
		}

		o = o.Merge(src)
	}

	return o.Merge(kwargs), nil
}

func globalCycler(args []Value, _ *Object, _ *Environment) (Value, error) {
	if len(args) == 0 {
		return nil, runtimeError(ErrArgument, "cycler: at least one item is required")
	}

	var (
		mu  sync.Mutex
		pos int
	)

	items := Array(args)

	return ObjectOf(
		"items", items,
		"current", NewFunction("current", func([]Value, *Object, *Environment) (Value, error) {
			mu.Lock()
			defer mu.Unlock()

			return items[pos], nil
		}),
		"next", NewFunction("next", func([]Value, *Object, *Environment) (Value, error) {
			mu.Lock()
			defer mu.Unlock()

			v := items[pos]
			pos = (pos + 1) % len(items)

			return v, nil
		}),
		"reset", NewFunction("reset", func([]Value, *Object, *Environment) (Value, error) {
			mu.Lock()
			defer mu.Unlock()

			pos = 0

			return String(""), nil
		}),
	), nil
}

var lipsumWords = strings.Fields(`
	lorem ipsum dolor sit amet consectetur adipiscing elit sed do eiusmod tempor
	incididunt ut labore et dolore magna aliqua enim ad minim veniam quis
	nostrud exercitation ullamco laboris nisi aliquip ex ea commodo consequat
	duis aute irure in reprehenderit voluptate velit esse cillum eu fugiat nulla
	pariatur excepteur sint occaecat cupidatat non proident sunt culpa qui
	officia deserunt mollit anim id est laborum
`)

// globalLipsum produces deterministic placeholder text so that renders stay
// reproducible.
func globalLipsum(a []Value, _ *Environment) (Value, error) {
	var bounds [3]int

	for i, name := range []string{"n", "min", "max"} {
		v := a[0]
		if i > 0 {
			v = a[i+1]
		}

		n, err := intArg("lipsum", name, v)
		if err != nil {
			return nil, err
		}

		bounds[i] = max(n, 0)
	}

	n, lo, hi := bounds[0], bounds[1], max(bounds[1], bounds[2])
	paragraphs := make([]string, 0, n)
	w := 0

	for p := range n {
		count := lo
		if hi > lo {
			count += (p * 7919) % (hi - lo + 1)
		}

		words := make([]string, max(count, 1))
		for i := range words {
			words[i] = lipsumWords[w%len(lipsumWords)]
			w++
		}

		text := capitalize(strings.Join(words, " ")) + "."

		if Truthy(a[1]) {
			text = "<p>" + text + "</p>"
		}

		paragraphs = append(paragraphs, text)
	}

	return String(strings.Join(paragraphs, "\n\n")), nil
}
