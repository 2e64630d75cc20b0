package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/jinja/lang"
	"github.com/ardnew/jinja/pkg"
)

func TestRenderRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := writeFile(t, dir, "data.yaml", "name: ada\nitems: [a, b]\n")

	tests := []struct {
		name   string
		stdin  string
		render Render
		want   string
	}{
		{
			name:   "stdin_template",
			stdin:  "Hello {{ name }}!",
			render: Render{ContextFlags: ContextFlags{Context: []string{data}}, Template: "-"},
			want:   "Hello ada!",
		},
		{
			name: "file_template_trim_blocks",
			render: Render{
				ContextFlags:  ContextFlags{Context: []string{data}},
				TemplateFlags: TemplateFlags{TrimBlocks: true},
				Template:      writeFile(t, dir, "loop.j2", "{% for i in items %}\n{{ i }}\n{% endfor %}\n"),
			},
			want: "a\nb\n",
		},
		{
			name:   "set_overrides_context",
			stdin:  "{{ name }}",
			render: Render{ContextFlags: ContextFlags{Context: []string{data}, Set: []string{`name="grace"`}}, Template: "-"},
			want:   "grace",
		},
		{
			name:   "context_from_stdin",
			stdin:  "name: stdin\n",
			render: Render{ContextFlags: ContextFlags{Context: []string{"-"}}, Template: writeFile(t, dir, "name.j2", "{{ name }}")},
			want:   "stdin",
		},
		{
			name:   "host_tests",
			stdin:  "{{ '/' is directory }}",
			render: Render{Host: true, Template: "-"},
			want:   "True",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer

			ctx := WithStreams(t.Context(), strings.NewReader(tt.stdin), &out)

			if err := tt.render.Run(ctx); err != nil {
				t.Fatalf("Render.Run() error = %v", err)
			}

			if got := out.String(); got != tt.want {
				t.Errorf("Render.Run() output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderOutputFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.txt")
	ctx := WithStreams(t.Context(), strings.NewReader("{{ 6 * 7 }}"), nil)

	if err := (&Render{Template: "-", Output: path}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	if got, err := os.ReadFile(path); err != nil || string(got) != "42" {
		t.Errorf("output file = %q, %v", got, err)
	}
}

func TestRenderErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name   string
		stdin  string
		render Render
		want   error
	}{
		{
			name:   "stdin_twice",
			render: Render{ContextFlags: ContextFlags{Context: []string{"-"}}, Template: "-"},
			want:   ErrReadContext,
		},
		{
			name:   "missing_template",
			render: Render{Template: filepath.Join(dir, "missing.j2")},
			want:   ErrReadTemplate,
		},
		{
			name:   "syntax_error",
			stdin:  "{{ unclosed",
			render: Render{Template: "-"},
			want:   lang.ErrSyntax,
		},
		{
			name:   "host_disabled",
			stdin:  "{{ '/' is directory }}",
			render: Render{Template: "-"},
			want:   lang.ErrUnknownTest,
		},
		{
			name:   "call_depth",
			stdin:  "{% macro f() %}{{ f() }}{% endmacro %}{{ f() }}",
			render: Render{Template: "-", MaxDepth: 8},
			want:   lang.ErrCallDepth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer

			ctx := WithStreams(t.Context(), strings.NewReader(tt.stdin), &out)

			if err := tt.render.Run(ctx); !errors.Is(err, tt.want) {
				t.Errorf("Render.Run() error = %v, want %v", err, tt.want)
			}

			if out.Len() != 0 {
				t.Errorf("Render.Run() wrote %q on error", out.String())
			}
		})
	}
}

func TestParseCommands(t *testing.T) {
	t.Parallel()

	const src = "Hi {{ name | upper }}{% if x %}!{% endif %}"

	run := func(t *testing.T, r interface{ Run(context.Context) error }) string {
		t.Helper()

		var out bytes.Buffer

		if err := r.Run(WithStreams(t.Context(), strings.NewReader(src), &out)); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		return out.String()
	}

	source := ParseSource{Indent: 2, Template: "-"}

	t.Run("tree", func(t *testing.T) {
		t.Parallel()

		if got := run(t, &ParseTree{source}); !strings.Contains(got, "name") {
			t.Errorf("parse tree output = %q", got)
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		if got := run(t, &ParseJSON{source}); !json.Valid([]byte(got)) {
			t.Errorf("parse json output is not JSON: %q", got)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()

		if got := run(t, &ParseYAML{source}); !strings.Contains(got, "upper") {
			t.Errorf("parse yaml output = %q", got)
		}
	})

	t.Run("tokens", func(t *testing.T) {
		t.Parallel()

		got := run(t, &ParseTokens{source})
		if !strings.HasPrefix(got, "0") || !strings.Contains(got, `"Hi "`) {
			t.Errorf("parse tokens output = %q", got)
		}
	})
}

func TestVersionRun(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	if err := (Version{}).Run(WithStreams(t.Context(), nil, &out)); err != nil {
		t.Fatal(err)
	}

	if want := pkg.Name + " " + pkg.Version() + "\n"; out.String() != want {
		t.Errorf("Version.Run() = %q, want %q", out.String(), want)
	}
}
