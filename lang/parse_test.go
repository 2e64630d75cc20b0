package lang

import (
	"errors"
	"testing"
)

func mustParse(t *testing.T, source string) *Program {
	t.Helper()

	tokens, err := Tokenize(source)
	if err != nil {
		t.Fatalf("Tokenize(%q) error: %v", source, err)
	}

	program, err := Parse(tokens)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", source, err)
	}

	return program
}

// outputExpr returns the expression of a template holding a single output
// tag.
func outputExpr(t *testing.T, source string) Expr {
	t.Helper()

	program := mustParse(t, source)
	if len(program.Body) != 1 {
		t.Fatalf("Parse(%q) produced %d statements, want 1", source, len(program.Body))
	}

	out, ok := program.Body[0].(*Output)
	if !ok {
		t.Fatalf("Parse(%q) statement is %T, want *Output", source, program.Body[0])
	}

	return out.Expr
}

func TestParsePrecedence(t *testing.T) {
	t.Parallel()

	e := outputExpr(t, "{{ 1 + 2 * 3 }}")

	add, ok := e.(*Binary)
	if !ok || add.Op != TokenPlus {
		t.Fatalf("root = %#v, want + binary", e)
	}

	if mul, ok := add.Right.(*Binary); !ok || mul.Op != TokenStar {
		t.Errorf("right operand = %#v, want * binary", add.Right)
	}

	e = outputExpr(t, "{{ a or b and c }}")

	or, ok := e.(*Binary)
	if !ok || or.Op != TokenOr {
		t.Fatalf("root = %#v, want or binary", e)
	}

	if and, ok := or.Right.(*Binary); !ok || and.Op != TokenAnd {
		t.Errorf("right operand = %#v, want and binary", or.Right)
	}
}

func TestParseFilterChain(t *testing.T) {
	t.Parallel()

	e := outputExpr(t, "{{ name | trim | replace('a', 'b') }}")

	outer, ok := e.(*FilterExpr)
	if !ok || outer.Name != "replace" || len(outer.Args.Positional) != 2 {
		t.Fatalf("outer = %#v, want replace with two arguments", e)
	}

	inner, ok := outer.Operand.(*FilterExpr)
	if !ok || inner.Name != "trim" {
		t.Fatalf("inner = %#v, want trim", outer.Operand)
	}

	if id, ok := inner.Operand.(*Identifier); !ok || id.Name != "name" {
		t.Errorf("operand = %#v, want identifier name", inner.Operand)
	}
}

func TestParseTests(t *testing.T) {
	t.Parallel()

	e := outputExpr(t, "{{ x is not divisibleby 3 }}")

	test, ok := e.(*TestExpr)
	if !ok {
		t.Fatalf("expression = %T, want *TestExpr", e)
	}

	if test.Name != "divisibleby" || !test.Negated || len(test.Args.Positional) != 1 {
		t.Errorf("test = %+v", test)
	}

	e = outputExpr(t, "{{ x is none }}")
	if test, ok := e.(*TestExpr); !ok || test.Name != "none" || test.Negated {
		t.Errorf("expression = %#v, want none test", e)
	}

	e = outputExpr(t, "{{ x not in y }}")

	not, ok := e.(*Unary)
	if !ok || not.Op != TokenNot {
		t.Fatalf("expression = %#v, want not unary", e)
	}

	if in, ok := not.Operand.(*Binary); !ok || in.Op != TokenIn {
		t.Errorf("operand = %#v, want in binary", not.Operand)
	}
}

func TestParsePostfix(t *testing.T) {
	t.Parallel()

	e := outputExpr(t, "{{ a.b[0](1, k=2)[1:-1] }}")

	slice, ok := e.(*Slice)
	if !ok || slice.Start == nil || slice.Stop == nil || slice.Step != nil {
		t.Fatalf("expression = %#v, want slice with start and stop", e)
	}

	call, ok := slice.Object.(*Call)
	if !ok || len(call.Args.Positional) != 1 || len(call.Args.Keywords) != 1 {
		t.Fatalf("object = %#v, want call with one positional and one keyword", slice.Object)
	}

	index, ok := call.Callee.(*Member)
	if !ok || !index.Computed {
		t.Fatalf("callee = %#v, want computed member", call.Callee)
	}

	attr, ok := index.Object.(*Member)
	if !ok || attr.Computed {
		t.Fatalf("object = %#v, want dotted member", index.Object)
	}
}

func TestParseStatements(t *testing.T) {
	t.Parallel()

	program := mustParse(t,
		"{% for k, v in items if v %}{{ k }}{% else %}none{% endfor %}"+
			"{% if a %}1{% elif b %}2{% else %}3{% endif %}"+
			"{% set x, y = 1, 2 %}"+
			"{% macro m(a, b=1) %}{{ a }}{% endmacro m %}"+
			"{% call(item) m(1) %}{{ item }}{% endcall %}"+
			"{% filter upper | trim %} x {% endfilter %}")

	if len(program.Body) != 6 {
		t.Fatalf("body has %d statements, want 6", len(program.Body))
	}

	loop, ok := program.Body[0].(*For)
	if !ok {
		t.Fatalf("statement 0 = %T, want *For", program.Body[0])
	}

	if target, ok := loop.Target.(*TupleLiteral); !ok || len(target.Items) != 2 {
		t.Errorf("for target = %#v, want pair", loop.Target)
	}

	if loop.Filter == nil || len(loop.Else) != 1 {
		t.Errorf("for filter = %v, else = %v", loop.Filter, loop.Else)
	}

	cond, ok := program.Body[1].(*If)
	if !ok || len(cond.Else) != 1 {
		t.Fatalf("statement 1 = %#v, want if with nested elif", program.Body[1])
	}

	if elif, ok := cond.Else[0].(*If); !ok || len(elif.Else) != 1 {
		t.Errorf("elif = %#v, want if with else", cond.Else[0])
	}

	set, ok := program.Body[2].(*Set)
	if !ok {
		t.Fatalf("statement 2 = %T, want *Set", program.Body[2])
	}

	if value, ok := set.Value.(*TupleLiteral); !ok || len(value.Items) != 2 {
		t.Errorf("set value = %#v, want tuple", set.Value)
	}

	macro, ok := program.Body[3].(*Macro)
	if !ok || macro.Name != "m" || len(macro.Params) != 2 {
		t.Fatalf("statement 3 = %#v, want macro m/2", program.Body[3])
	}

	if macro.Params[0].Default != nil || macro.Params[1].Default == nil {
		t.Errorf("macro params = %+v", macro.Params)
	}

	call, ok := program.Body[4].(*CallBlock)
	if !ok || len(call.CallerParams) != 1 || call.Call == nil {
		t.Errorf("statement 4 = %#v, want call block", program.Body[4])
	}

	filter, ok := program.Body[5].(*FilterBlock)
	if !ok || filter.Filter.Name != "trim" {
		t.Fatalf("statement 5 = %#v, want filter block ending in trim", program.Body[5])
	}

	if inner, ok := filter.Filter.Operand.(*FilterExpr); !ok || inner.Name != "upper" || inner.Operand != nil {
		t.Errorf("filter chain = %#v", filter.Filter.Operand)
	}
}

func TestParseCoalescesText(t *testing.T) {
	t.Parallel()

	program := mustParse(t, "a{% raw %}b{% endraw %}c")
	if len(program.Body) != 1 {
		t.Fatalf("body has %d statements, want 1", len(program.Body))
	}

	if text, ok := program.Body[0].(*Text); !ok || text.Value != "abc" {
		t.Errorf("body = %#v, want text abc", program.Body[0])
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		kind  *Error
	}{
		{"unclosed if", "{% if x %}", ErrUnexpectedToken},
		{"unclosed output", "{{ x", ErrUnexpectedToken},
		{"empty output", "{{ }}", ErrUnexpectedToken},
		{"stray end tag", "{% endfor %}", ErrUnexpectedToken},
		{"unknown statement", "{% include 'x' %}", ErrUnexpectedToken},
		{"literal target", "{% set 1 = 2 %}", ErrInvalidTarget},
		{"call target", "{% set f() = 2 %}", ErrInvalidTarget},
		{"positional after keyword", "{{ f(a=1, 2) }}", ErrArgumentOrder},
		{"keyword after kwargs", "{{ f(**o, a=1) }}", ErrArgumentOrder},
		{"two spreads", "{{ f(*a, *b) }}", ErrArgumentOrder},
		{"break outside loop", "{% break %}", ErrLoopControl},
		{"continue in macro", "{% for x in y %}{% macro m() %}{% continue %}{% endmacro %}{% endfor %}", ErrLoopControl},
		{"call block without call", "{% call m %}{% endcall %}", ErrUnexpectedToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tokens, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize(%q) error: %v", tt.input, err)
			}

			_, err = Parse(tokens)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.input)
			}

			if !errors.Is(err, ErrSyntax) {
				t.Errorf("error %v is not ErrSyntax", err)
			}

			if !errors.Is(err, tt.kind) {
				t.Errorf("error %v is not %v", err, tt.kind)
			}

			if errors.Is(err, ErrLex) || errors.Is(err, ErrRuntime) {
				t.Errorf("error %v matches more than one category", err)
			}
		})
	}
}

func TestCompileErrorPosition(t *testing.T) {
	t.Parallel()

	_, err := Compile(t.Context(), "line one\n{{ 1 + }}")
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("Compile error = %v, want ErrSyntax", err)
	}

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("error %T is not *Error", err)
	}

	if pos := e.Position(); pos.Line != 2 || pos.Column != 8 {
		t.Errorf("position = %v, want line 2, column 8", pos)
	}
}

func FuzzCompile(f *testing.F) {
	f.Add("{{ a + b * 2 }}")
	f.Add("{% for x in xs if x %}{{ loop.index }}{% else %}-{% endfor %}")
	f.Add("{% macro m(a, b=1) %}{{ caller(a) }}{% endmacro %}{% call(x) m(2) %}{{ x }}{% endcall %}")
	f.Add("{% set ns = namespace(n=0) %}{% set ns.n = ns.n + 1 %}")
	f.Add("{{ x is not divisibleby(3) and y not in z }}")
	f.Add("{{ f(*a, k=1, **o)[1:-1:2] | join(', ') }}")

	f.Fuzz(func(t *testing.T, input string) {
		_, err := Compile(t.Context(), input)
		if err == nil {
			return
		}

		if !errors.Is(err, ErrLex) && !errors.Is(err, ErrSyntax) {
			t.Fatalf("Compile error %v is neither ErrLex nor ErrSyntax", err)
		}
	})
}
