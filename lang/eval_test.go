package lang

import (
	"errors"
	"strings"
	"testing"
)

func renderString(t *testing.T, source string, vars Vars, opts ...Option) string {
	t.Helper()

	tmpl, err := Compile(t.Context(), source, opts...)
	if err != nil {
		t.Fatalf("Compile(%q) error: %v", source, err)
	}

	out, err := tmpl.Render(t.Context(), vars)
	if err != nil {
		t.Fatalf("Render(%q) error: %v", source, err)
	}

	return out
}

type renderCase struct {
	name   string
	source string
	vars   Vars
	want   string
}

func runRenderCases(t *testing.T, tests []renderCase) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := renderString(t, tt.source, tt.vars); got != tt.want {
				t.Errorf("render %q = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestRenderExpressions(t *testing.T) {
	t.Parallel()

	runRenderCases(t, []renderCase{
		{"floor division", "{{ 5 // 2 }}", nil, "2"},
		{"true division", "{{ 5 / 2 }}", nil, "2.5"},
		{"exact division is float", "{{ 4 / 2 }}", nil, "2.0"},
		{"negative floor division", "{{ -7 // 2 }}", nil, "-4"},
		{"modulo sign follows divisor", "{{ -7 % 3 }}", nil, "2"},
		{"integer power", "{{ 2 ** 10 }}", nil, "1024"},
		{"negative power", "{{ 2 ** -1 }}", nil, "0.5"},
		{"string repetition", `{{ "ab" * 3 }}`, nil, "ababab"},
		{"array repetition", "{{ [0] * 3 }}", nil, "[0, 0, 0]"},
		{"concatenation", `{{ 1 ~ "a" ~ none }}`, nil, "1aNone"},
		{"array addition", "{{ [1, 2] + [3] }}", nil, "[1, 2, 3]"},
		{"float repr", "{{ 0.1 + 0.2 }}", nil, "0.30000000000000004"},
		{"float exponent", "{{ 10.0 ** 20 }}", nil, "1e+20"},
		{"precedence", "{{ 1 + 2 * 3 - 4 / 2 }}", nil, "5.0"},
		{"parentheses", "{{ (1 + 2) * 3 }}", nil, "9"},
		{"object literal", "{{ {'a': 1, 'b': 'x'} }}", nil, "{'a': 1, 'b': 'x'}"},
		{"numeric object key", "{{ {1: 'x'}['1'] }}", nil, "x"},
		{"nested literal", "{{ [none, true, 'q', [1.5]] }}", nil, "[None, True, 'q', [1.5]]"},
		{"adjacent strings", `{{ "a" 'b' }}`, nil, "ab"},
		{"ternary", `{{ "yes" if x else "no" }}`, nil, "no"},
		{"ternary without else", "{{ 1 if false }}", nil, ""},
		{"or returns operand", `{{ x or "d" }}`, nil, "d"},
		{"and returns operand", "{{ 0 and 1 }}", nil, "0"},
		{"not", "{{ not [] }}", nil, "True"},
		{"mixed comparison", "{{ 1 < 2.5 and 1 == 1.0 }}", nil, "True"},
		{"string comparison", `{{ "a" < "b" }}`, nil, "True"},
		{"substring", "{{ 'b' in 'abc' }}", nil, "True"},
		{"key membership", "{{ 'k' in {'k': 1} }}", nil, "True"},
		{"not in", "{{ 3 not in [1, 2] }}", nil, "True"},
		{"variable", "{{ name }}", Vars{"name": String("world")}, "world"},
		{"member", "{{ user.name }}", Vars{"user": ObjectOf("name", "ann")}, "ann"},
		{"subscript", "{{ user['name'] }}", Vars{"user": ObjectOf("name", "ann")}, "ann"},
		{"dotted index", "{{ items.1 }}", Vars{"items": Array{Int(1), Int(2)}}, "2"},
		{"negative index", `{{ "hello"[-1] }}`, nil, "o"},
	})
}

func TestRenderSlicing(t *testing.T) {
	t.Parallel()

	runRenderCases(t, []renderCase{
		{"string slice", `{{ "abcdef"[1:5] }}`, nil, "bcde"},
		{"string reverse", `{{ "abc"[::-1] }}`, nil, "cba"},
		{"array tail", "{{ [1, 2, 3, 4][-2:] }}", nil, "[3, 4]"},
		{"array step", "{{ [1, 2, 3, 4, 5][::2] }}", nil, "[1, 3, 5]"},
		{"array reverse", "{{ [1, 2, 3][::-1] }}", nil, "[3, 2, 1]"},
		{"out of range", "{{ [1, 2][5:9] }}", nil, "[]"},
		{"negative step bounds", `{{ "abcdef"[4:1:-1] }}`, nil, "edc"},
	})
}

func TestRenderUndefined(t *testing.T) {
	t.Parallel()

	runRenderCases(t, []renderCase{
		{"missing variable", "[{{ missing }}]", nil, "[]"},
		{"missing chain", "[{{ missing.attr.deeper }}]", nil, "[]"},
		{"missing key", "[{{ obj.nope }}]", Vars{"obj": NewObject(0)}, "[]"},
		{"missing index", "[{{ [1][3] }}]", nil, "[]"},
		{"default", `{{ missing | default("x") }}`, nil, "x"},
		{"defined test", "{{ missing is defined }}", nil, "False"},
		{"falsy", "{% if missing %}a{% else %}b{% endif %}", nil, "b"},
		{"iterates empty", "{% for x in missing %}x{% else %}none{% endfor %}", nil, "none"},
	})
}

func TestRenderLoops(t *testing.T) {
	t.Parallel()

	runRenderCases(t, []renderCase{
		{
			"else branch",
			"{% for x in [] %}{{ x }}{% else %}empty{% endfor %}",
			nil, "empty",
		},
		{
			"metadata",
			"{% for x in ['a', 'b', 'c'] %}" +
				"{{ loop.index }}{{ loop.index0 }}{{ loop.revindex }}" +
				"{{ loop.first }}{{ loop.last }}{{ loop.length }} {% endfor %}",
			nil, "103TrueFalse3 212FalseFalse3 321FalseTrue3 ",
		},
		{
			"filtered indices",
			"{% for x in range(10) if x is even %}{{ loop.index }}:{{ x }} {% endfor %}",
			nil, "1:0 2:2 3:4 4:6 5:8 ",
		},
		{
			"filter rejects all",
			"{% for x in [1, 3] if x is even %}{{ x }}{% else %}none{% endfor %}",
			nil, "none",
		},
		{
			"break and continue",
			"{% for x in range(10) %}{% if x == 3 %}{% break %}{% endif %}" +
				"{% if x is odd %}{% continue %}{% endif %}{{ x }}{% endfor %}",
			nil, "02",
		},
		{
			"previous and next",
			"{% for x in [1, 2, 3] %}{{ loop.previtem }}-{{ loop.nextitem }} {% endfor %}",
			nil, "-2 1-3 2- ",
		},
		{
			"cycle",
			"{% for x in [1, 2, 3] %}{{ loop.cycle('a', 'b') }}{% endfor %}",
			nil, "aba",
		},
		{
			"object pairs",
			"{% for k, v in {'a': 1, 'b': 2} %}{{ k }}={{ v }};{% endfor %}",
			nil, "a=1;b=2;",
		},
		{
			"string characters",
			"{% for c in 'abc' %}{{ c }}.{% endfor %}",
			nil, "a.b.c.",
		},
		{
			"nested loop variables",
			"{% for a in [1, 2] %}{% for b in [1] %}{{ loop.index }}{% endfor %}{{ loop.index }}{% endfor %}",
			nil, "1112",
		},
		{
			"loop scope does not leak",
			"{% for i in [1] %}{% set y = 2 %}{% endfor %}[{{ y }}]",
			nil, "[]",
		},
	})
}

func TestRenderAssignment(t *testing.T) {
	t.Parallel()

	runRenderCases(t, []renderCase{
		{
			"namespace persists across iterations",
			"{% set ns = namespace(count=0) %}{% for i in range(4) %}" +
				"{% set ns.count = ns.count + 1 %}{% endfor %}{{ ns.count }}",
			nil, "4",
		},
		{"tuple", "{% set a, b = 1, 2 %}{{ a + b }}", nil, "3"},
		{"block", "{% set s %}hi {{ 1 }}{% endset %}{{ s | upper }}", nil, "HI 1"},
		{"reassign", "{% set x = 1 %}{% set x = x + 1 %}{{ x }}", nil, "2"},
		{
			"nested member",
			"{% set o = {'a': {'b': 1}} %}{% set o.a.b = 2 %}{{ o.a.b }}",
			nil, "2",
		},
	})
}

func TestRenderMacros(t *testing.T) {
	t.Parallel()

	runRenderCases(t, []renderCase{
		{
			"defaults and keywords",
			`{% macro greet(name, greeting="Hello") %}{{ greeting }}, {{ name }}!{% endmacro %}` +
				`{{ greet("Ann") }} {{ greet("Bob", greeting="Hi") }}`,
			nil, "Hello, Ann! Hi, Bob!",
		},
		{
			"default sees definition scope",
			"{% set base = 10 %}{% macro f(n=base + 1) %}{{ n }}{% endmacro %}{{ f() }}",
			nil, "11",
		},
		{
			"recursion",
			"{% macro f(n) %}{% if n > 0 %}{{ n }}{{ f(n - 1) }}{% endif %}{% endmacro %}{{ f(3) }}",
			nil, "321",
		},
		{
			"caller",
			"{% macro wrap() %}<{{ caller() }}>{% endmacro %}{% call wrap() %}inner{% endcall %}",
			nil, "<inner>",
		},
		{
			"caller with parameters",
			"{% macro each(items) %}{% for i in items %}{{ caller(i) }}{% endfor %}{% endmacro %}" +
				"{% call(x) each([1, 2]) %}[{{ x }}]{% endcall %}",
			nil, "[1][2]",
		},
		{
			"spread arguments",
			"{% macro add(a, b) %}{{ a + b }}{% endmacro %}{{ add(*[1, 2]) }}{{ add(**{'a': 3, 'b': 4}) }}",
			nil, "37",
		},
		{
			"macro as filter",
			"{% macro shout(s) %}{{ s }}!{% endmacro %}{{ 'hi' | shout }}",
			nil, "hi!",
		},
		{
			"filter block",
			"{% filter upper | replace('B', '-') %}abc{% endfilter %}",
			nil, "A-C",
		},
		{
			"single filter block",
			"{% filter upper %}abc{% endfilter %}",
			nil, "ABC",
		},
		{
			"nested filter blocks",
			"{% filter trim %}{% filter upper %} x y {% endfilter %}{% endfilter %}",
			nil, "X Y",
		},
	})
}

func TestRenderMethods(t *testing.T) {
	t.Parallel()

	runRenderCases(t, []renderCase{
		{"split and join", `{{ "a,b".split(",") | join("-") }}`, nil, "a-b"},
		{"strip", `[{{ " x ".strip() }}]`, nil, "[x]"},
		{"startswith", `{{ "abc".startswith("ab") }}`, nil, "True"},
		{"object items", "{{ {'a': 1}.items() }}", nil, "[['a', 1]]"},
		{"object get", "{{ {'a': 1}.get('b', 2) }}", nil, "2"},
		{"key shadows method", "{{ {'items': 1}.items }}", nil, "1"},
	})
}

func TestRenderWhitespace(t *testing.T) {
	t.Parallel()

	got := renderString(t, "a\n  {%- if true -%}\n  b\n  {%- endif -%}\n  c", nil)
	if got != "abc" {
		t.Errorf("trim markers: got %q, want %q", got, "abc")
	}

	got = renderString(t, "{% raw %}  {{- x }}{% endraw %}", nil)
	if want := "  {{- x }}"; got != want {
		t.Errorf("raw block: got %q, want %q", got, want)
	}

	src := "<ul>\n  {% for x in [1, 2] %}\n  <li>{{ x }}</li>\n  {% endfor %}\n</ul>"

	got = renderString(t, src, nil, WithTrimBlocks(true), WithLstripBlocks(true))
	if want := "<ul>\n  <li>1</li>\n  <li>2</li>\n</ul>"; got != want {
		t.Errorf("trim and lstrip blocks: got %q, want %q", got, want)
	}
}

func TestRenderFilterOverride(t *testing.T) {
	t.Parallel()

	custom := NewFunction("upper", func([]Value, *Object, *Environment) (Value, error) {
		return String("custom"), nil
	})

	got := renderString(t, `{{ "x" | upper }}`, Vars{"upper": custom})
	if got != "custom" {
		t.Errorf("bound filter: got %q, want %q", got, "custom")
	}

	got = renderString(t, `{{ "x" | upper }}`, Vars{"upper": String("not callable")})
	if got != "X" {
		t.Errorf("non-callable binding: got %q, want %q", got, "X")
	}
}

func TestRenderDeterministic(t *testing.T) {
	t.Parallel()

	tmpl, err := Compile(t.Context(),
		"{% for k, v in data | dictsort %}{{ k }}={{ v | tojson }};{% endfor %}{{ lipsum(1, false, 3, 3) }}")
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}

	vars := Vars{"data": ObjectOf("b", Array{Int(1)}, "a", ObjectOf("x", true))}

	first, err := tmpl.Render(t.Context(), vars)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}

	for range 10 {
		again, err := tmpl.Render(t.Context(), vars)
		if err != nil {
			t.Fatalf("Render error: %v", err)
		}

		if again != first {
			t.Fatalf("render differs: %q vs %q", again, first)
		}
	}

	if want := `a={"x": true};b=[1];Lorem ipsum dolor.`; first != want {
		t.Errorf("render = %q, want %q", first, want)
	}
}

func TestRenderEnvPersists(t *testing.T) {
	t.Parallel()

	env := NewEnvironment(nil)

	for _, src := range []string{
		"{% set total = 1 %}",
		"{% macro twice(x) %}{{ x * 2 }}{% endmacro %}",
		"{% set total = total + 1 %}",
	} {
		tmpl, err := Compile(t.Context(), src)
		if err != nil {
			t.Fatalf("Compile(%q) error: %v", src, err)
		}

		if _, err := tmpl.RenderEnv(t.Context(), nil, env); err != nil {
			t.Fatalf("RenderEnv(%q) error: %v", src, err)
		}
	}

	tmpl, err := Compile(t.Context(), "{{ twice(total) }}")
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}

	out, err := tmpl.RenderEnv(t.Context(), nil, env)
	if err != nil {
		t.Fatalf("RenderEnv error: %v", err)
	}

	if out != "4" {
		t.Errorf("output = %q, want %q", out, "4")
	}
}

func TestRenderErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		opts   []Option
		kind   *Error
	}{
		{"type mismatch", `{{ 1 - "a" }}`, nil, ErrTypeMismatch},
		{"division by zero", "{{ 1 / 0 }}", nil, ErrDivisionByZero},
		{"modulo by zero", "{{ 1 % 0 }}", nil, ErrDivisionByZero},
		{"unknown filter", "{{ 1 | nope }}", nil, ErrUnknownFilter},
		{"unknown test", "{{ 1 is nope }}", nil, ErrUnknownTest},
		{"zero step", `{{ "abc"[::0] }}`, nil, ErrZeroStep},
		{"unpack arity", "{% for a, b in [1] %}{% endfor %}", nil, ErrArity},
		{"not iterable", "{% for x in 5 %}{% endfor %}", nil, ErrNotIterable},
		{"not callable", "{{ 5() }}", nil, ErrNotCallable},
		{"bad membership", "{{ 3 in 5 }}", nil, ErrTypeMismatch},
		{"missing macro argument", "{% macro m(a) %}{% endmacro %}{{ m() }}", nil, ErrArgument},
		{"extra macro argument", "{% macro m() %}{% endmacro %}{{ m(1) }}", nil, ErrArgument},
		{"unknown keyword", "{{ range(1, bogus=2) }}", nil, ErrArgument},
		{"raised", `{{ raise_exception("boom") }}`, nil, ErrRaised},
		{
			"call depth",
			"{% macro f() %}{{ f() }}{% endmacro %}{{ f() }}",
			[]Option{WithMaxCallDepth(8)},
			ErrCallDepth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpl, err := Compile(t.Context(), tt.source, tt.opts...)
			if err != nil {
				t.Fatalf("Compile(%q) error: %v", tt.source, err)
			}

			out, err := tmpl.Render(t.Context(), nil)
			if err == nil {
				t.Fatalf("Render(%q) = %q, want error", tt.source, out)
			}

			if out != "" {
				t.Errorf("partial output %q returned with error", out)
			}

			if !errors.Is(err, ErrRuntime) {
				t.Errorf("error %v is not ErrRuntime", err)
			}

			if !errors.Is(err, tt.kind) {
				t.Errorf("error %v is not %v", err, tt.kind)
			}

			if errors.Is(err, ErrSyntax) || errors.Is(err, ErrLex) {
				t.Errorf("error %v matches more than one category", err)
			}
		})
	}
}

func TestRenderErrorPosition(t *testing.T) {
	t.Parallel()

	tmpl, err := Compile(t.Context(), "ab\n{{ 1 / 0 }}")
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}

	_, err = tmpl.Render(t.Context(), nil)

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("error %v is not *Error", err)
	}

	if pos := e.Position(); pos.Line != 2 || pos.Column != 6 {
		t.Errorf("position = %v, want line 2, column 6", pos)
	}
}

func TestUnknownFilterSuggestion(t *testing.T) {
	t.Parallel()

	tmpl, err := Compile(t.Context(), "{{ 'x' | uper }}")
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}

	_, err = tmpl.Render(t.Context(), nil)
	if err == nil || !strings.Contains(err.Error(), `did you mean "upper"`) {
		t.Errorf("error = %v, want suggestion for upper", err)
	}
}
