package repl

import (
	"errors"
	"slices"
	"testing"

	"github.com/ardnew/jinja/lang"
	"github.com/ardnew/jinja/log"
)

func TestSessionEval(t *testing.T) {
	t.Parallel()

	s := NewSession(nil, lang.ObjectOf("name", "ada"), log.Default())

	steps := []struct {
		line string
		want string
	}{
		{"1 + 2", "3"},
		{"name | upper", "ADA"},
		{"{% set n = 4 %}", ""},
		{"n * 2", "8"},
		{"{% macro greet(who, p='hi') %}{{ p }} {{ who }}{% endmacro %}", ""},
		{"greet(name)", "hi ada"},
		{"Hello, {{ name }}!", "Hello, ada!"},
		{"{# nothing #}", ""},
	}

	for _, step := range steps {
		got, err := s.Eval(t.Context(), step.line)
		if err != nil {
			t.Fatalf("Eval(%q) error: %v", step.line, err)
		}

		if got != step.want {
			t.Errorf("Eval(%q) = %q, want %q", step.line, got, step.want)
		}
	}

	if !s.Callable("greet") {
		t.Error("Callable(greet) = false after macro definition")
	}

	sig, ok := s.Signature(lang.CategoryGlobal, "greet")
	if !ok {
		t.Fatal("Signature(greet) not found")
	}

	if got := sig.String(); got != "greet(who, p=…)" {
		t.Errorf("Signature(greet) = %q", got)
	}
}

func TestSessionEvalError(t *testing.T) {
	t.Parallel()

	s := NewSession(nil, nil, log.Default())

	if _, err := s.Eval(t.Context(), "{{ unclosed"); !errors.Is(err, lang.ErrSyntax) {
		t.Errorf("Eval(bad syntax) error = %v, want ErrSyntax", err)
	}

	if _, err := s.Eval(t.Context(), "x | nosuchfilter"); !errors.Is(err, lang.ErrUnknownFilter) {
		t.Errorf("Eval(unknown filter) error = %v, want ErrUnknownFilter", err)
	}
}

func TestSessionVars(t *testing.T) {
	t.Parallel()

	s := NewSession(nil, lang.ObjectOf("b", 2, "a", 1), log.Default())

	if _, err := s.Eval(t.Context(), "{% set c = a + b %}"); err != nil {
		t.Fatal(err)
	}

	vars := s.Vars()
	if got := vars.Keys(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Vars().Keys() = %v", got)
	}

	if v, _ := vars.Get("c"); lang.Repr(v) != "3" {
		t.Errorf("Vars()[c] = %s, want 3", lang.Repr(v))
	}

	s.SetVars(lang.ObjectOf("z", "last"))

	if _, ok := s.Lookup("a"); ok {
		t.Error("Lookup(a) found after SetVars")
	}

	if got, err := s.Eval(t.Context(), "z"); err != nil || got != "last" {
		t.Errorf("Eval(z) = %q, %v", got, err)
	}
}

func TestSessionLookup(t *testing.T) {
	t.Parallel()

	s := NewSession(nil, lang.ObjectOf(
		"user", lang.ObjectOf("home", "/home/ada"),
	), log.Default())

	if v, ok := s.Lookup("user.home"); !ok || lang.Stringify(v) != "/home/ada" {
		t.Errorf("Lookup(user.home) = %v, %v", v, ok)
	}

	if _, ok := s.Lookup("user.home.x"); ok {
		t.Error("Lookup(user.home.x) found a member of a string")
	}

	if _, ok := s.Lookup("range"); !ok {
		t.Error("Lookup(range) did not fall back to globals")
	}

	if !s.Callable("range") || s.Callable("user") {
		t.Error("Callable() misclassified range or user")
	}
}

func TestDecodeVars(t *testing.T) {
	t.Parallel()

	obj, err := decodeVars([]byte("b: 1\na:\n  c: [x, y]\n"))
	if err != nil {
		t.Fatal(err)
	}

	if got := obj.Keys(); !slices.Equal(got, []string{"b", "a"}) {
		t.Errorf("decodeVars() keys = %v", got)
	}

	if _, err := decodeVars([]byte("- 1\n- 2\n")); !errors.Is(err, ErrNotMapping) {
		t.Errorf("decodeVars(list) error = %v, want ErrNotMapping", err)
	}

	if obj, err := decodeVars([]byte("~\n")); err != nil || obj.Len() != 0 {
		t.Errorf("decodeVars(null) = %v, %v", obj, err)
	}
}
