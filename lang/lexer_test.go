package lang

import (
	"errors"
	"slices"
	"testing"
)

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}

	return out
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []TokenKind
	}{
		{
			name:  "text only",
			input: "plain text",
			want:  []TokenKind{TokenText, TokenEOF},
		},
		{
			name:  "expression",
			input: "Hello {{ name }}!",
			want: []TokenKind{
				TokenText, TokenOpenExpression, TokenIdentifier,
				TokenCloseExpression, TokenText, TokenEOF,
			},
		},
		{
			name:  "statement",
			input: "{% if x %}y{% endif %}",
			want: []TokenKind{
				TokenOpenStatement, TokenIf, TokenIdentifier, TokenCloseStatement,
				TokenText,
				TokenOpenStatement, TokenEndIf, TokenCloseStatement,
				TokenEOF,
			},
		},
		{
			name:  "comment",
			input: "{# note #}",
			want:  []TokenKind{TokenComment, TokenEOF},
		},
		{
			name:  "arithmetic operators",
			input: "{{ 1 + 2.5 // 3 ** 4 % 5 }}",
			want: []TokenKind{
				TokenOpenExpression,
				TokenInteger, TokenPlus, TokenFloat, TokenFloorDiv,
				TokenInteger, TokenPow, TokenInteger, TokenPercent, TokenInteger,
				TokenCloseExpression, TokenEOF,
			},
		},
		{
			name:  "comparison operators",
			input: "{{ a != b <= c == d }}",
			want: []TokenKind{
				TokenOpenExpression,
				TokenIdentifier, TokenNotEqual, TokenIdentifier, TokenLessEqual,
				TokenIdentifier, TokenEqual, TokenIdentifier,
				TokenCloseExpression, TokenEOF,
			},
		},
		{
			name:  "object literal closing braces",
			input: "{{ {'a': 1}}}",
			want: []TokenKind{
				TokenOpenExpression,
				TokenOpenBrace, TokenString, TokenColon, TokenInteger, TokenCloseBrace,
				TokenCloseExpression, TokenEOF,
			},
		},
		{
			name:  "keywords",
			input: "{{ True and none or not false }}",
			want: []TokenKind{
				TokenOpenExpression,
				TokenTrue, TokenAnd, TokenNone, TokenOr, TokenNot, TokenFalse,
				TokenCloseExpression, TokenEOF,
			},
		},
		{
			name:  "raw block",
			input: "{% raw %}{{ x }}{% endraw %}",
			want:  []TokenKind{TokenText, TokenEOF},
		},
		{
			name:  "lone brace is text",
			input: "a { b } c",
			want:  []TokenKind{TokenText, TokenEOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tokens, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize(%q) error: %v", tt.input, err)
			}

			if got := kinds(tokens); !slices.Equal(got, tt.want) {
				t.Errorf("Tokenize(%q) kinds = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenizeText(t *testing.T) {
	t.Parallel()

	tokens, err := Tokenize(`ab{{ "x\ny" }}{% raw %}{{ raw }}{% endraw %}`)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}

	want := []Token{
		{Kind: TokenText, Text: "ab", Offset: 0},
		{Kind: TokenOpenExpression, Text: "{{", Offset: 2},
		{Kind: TokenString, Text: "x\ny", Offset: 5},
		{Kind: TokenCloseExpression, Text: "}}", Offset: 12},
		{Kind: TokenText, Text: "{{ raw }}", Offset: 23},
		{Kind: TokenEOF, Text: "", Offset: 44},
	}

	if !slices.Equal(tokens, want) {
		t.Errorf("tokens = %+v\nwant %+v", tokens, want)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		opts  []Option
		want  string
	}{
		{
			name:  "trim markers",
			input: "a  {%- if true -%}  b  {%- endif %}",
			want:  "a{% if true %}b{% endif %}",
		},
		{
			name:  "expression trim markers",
			input: "a {{- x -}} b",
			want:  "a{{ x }}b",
		},
		{
			name:  "comment trim markers",
			input: "a\n{#- c -#}\nb",
			want:  "a{# c #}b",
		},
		{
			name:  "trim blocks",
			input: "{% if true %}\nx\n{% endif %}\n",
			opts:  []Option{WithTrimBlocks(true)},
			want:  "{% if true %}x\n{% endif %}",
		},
		{
			name:  "lstrip blocks",
			input: "  {% if true %}x\n\t{% endif %}",
			opts:  []Option{WithLstripBlocks(true)},
			want:  "{% if true %}x\n{% endif %}",
		},
		{
			name:  "lstrip leaves expressions",
			input: "  {{ x }}",
			opts:  []Option{WithLstripBlocks(true)},
			want:  "  {{ x }}",
		},
		{
			name:  "raw body untouched",
			input: "{% raw %}  {{- x -}}  {% endraw %}",
			want:  "{% raw %}  {{- x -}}  {% endraw %}",
		},
		{
			name:  "raw delimiters trim body",
			input: "a {%- raw -%}  {{- x }}  {%- endraw -%} b",
			want:  "a{% raw %}{{- x }}{% endraw %}b",
		},
		{
			name:  "raw with trim and lstrip blocks",
			input: "{% raw %}\n  {%- x %}\n  {% endraw %}\n",
			opts:  []Option{WithTrimBlocks(true), WithLstripBlocks(true)},
			want:  "{% raw %}  {%- x %}\n{% endraw %}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Normalize(tt.input, tt.opts...); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenizeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		kind  *Error
		line  int
		col   int
	}{
		{"unterminated string", `{{ "abc }}`, ErrUnterminatedString, 1, 4},
		{"unterminated comment", "x\n{# abc", ErrUnterminatedComment, 2, 1},
		{"unexpected character", "{{ a $ b }}", ErrUnexpectedChar, 1, 6},
		{"unterminated raw", "{% raw %}abc", ErrUnterminatedRaw, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Tokenize(tt.input)
			if err == nil {
				t.Fatalf("Tokenize(%q) succeeded, want error", tt.input)
			}

			if !errors.Is(err, ErrLex) {
				t.Errorf("error %v is not ErrLex", err)
			}

			if !errors.Is(err, tt.kind) {
				t.Errorf("error %v is not %v", err, tt.kind)
			}

			if errors.Is(err, ErrSyntax) || errors.Is(err, ErrRuntime) {
				t.Errorf("error %v matches more than one category", err)
			}

			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("error %T is not *Error", err)
			}

			if pos := e.Position(); pos.Line != tt.line || pos.Column != tt.col {
				t.Errorf("position = %v, want line %d, column %d", pos, tt.line, tt.col)
			}
		})
	}
}

func FuzzTokenize(f *testing.F) {
	f.Add("Hello {{ name }}!")
	f.Add("{% for x in y if x %}{{ loop.index }}{% endfor %}")
	f.Add("{# comment #}{%- set a = [1, 2.5, 'x'] -%}")
	f.Add("{% raw %}{{ x }}{% endraw %}")
	f.Add(`{{ "unterminated`)
	f.Add("{{ {'a': {'b': 1}} }}")

	f.Fuzz(func(t *testing.T, input string) {
		tokens, err := Tokenize(input)
		if err != nil {
			if !errors.Is(err, ErrLex) {
				t.Fatalf("Tokenize error %v is not ErrLex", err)
			}

			return
		}

		if len(tokens) == 0 || tokens[len(tokens)-1].Kind != TokenEOF {
			t.Fatalf("token stream does not end with EOF: %v", kinds(tokens))
		}

		normal := Normalize(input)
		prev := 0

		for i, tok := range tokens {
			if tok.Offset < prev || tok.Offset > len(normal) {
				t.Fatalf("token %d offset %d out of order (prev %d, len %d)",
					i, tok.Offset, prev, len(normal))
			}

			if i < len(tokens)-1 && tok.Kind == TokenEOF {
				t.Fatalf("EOF token at index %d of %d", i, len(tokens))
			}

			prev = tok.Offset
		}
	})
}
