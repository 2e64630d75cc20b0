package lang

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"
)

func TestCompileReaderCache(t *testing.T) {
	t.Parallel()

	const source = "{% for x in xs %}{{ x }}\n{% endfor %}"

	compile := func(opts ...Option) *Template {
		t.Helper()

		tmpl, err := CompileReader(t.Context(), strings.NewReader(source), opts...)
		if err != nil {
			t.Fatalf("CompileReader error: %v", err)
		}

		return tmpl
	}

	first := compile(WithName("first"))
	second := compile(WithName("second"))

	if first.Program() != second.Program() {
		t.Error("compiling the same source twice did not reuse the cached program")
	}

	if second.Name() != "second" {
		t.Errorf("Name() = %q, want the name of the second compile", second.Name())
	}

	trimmed := compile(WithTrimBlocks(true))
	if trimmed.Program() == first.Program() {
		t.Error("different whitespace options shared a cached program")
	}

	vars := Vars{"xs": Array{Int(1), Int(2)}}

	if out, err := trimmed.Render(t.Context(), vars); err != nil || out != "1\n2\n" {
		t.Errorf("trimmed render = %q, %v", out, err)
	}

	if out, err := first.Render(t.Context(), vars); err != nil || out != "1\n2\n" {
		t.Errorf("render = %q, %v", out, err)
	}
}

func TestCompileReaderErrors(t *testing.T) {
	t.Parallel()

	for range 2 {
		_, err := CompileReader(t.Context(), strings.NewReader("{{ cached error"))
		if !errors.Is(err, ErrSyntax) {
			t.Errorf("CompileReader error = %v, want ErrSyntax", err)
		}
	}

	_, err := CompileReader(t.Context(), iotest.ErrReader(errors.New("boom")))
	if !errors.Is(err, ErrReadInput) {
		t.Errorf("CompileReader error = %v, want ErrReadInput", err)
	}
}

func TestClearCache(t *testing.T) {
	const source = "{{ 'clear cache' }}"

	before, err := CompileReader(t.Context(), strings.NewReader(source))
	if err != nil {
		t.Fatalf("CompileReader error: %v", err)
	}

	ClearCache()

	after, err := CompileReader(t.Context(), strings.NewReader(source))
	if err != nil {
		t.Fatalf("CompileReader error: %v", err)
	}

	if before.Program() == after.Program() {
		t.Error("ClearCache kept the cached program")
	}
}
