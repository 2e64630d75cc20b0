package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/ardnew/jinja/lang"
)

// Parse prints the syntax tree or token stream of a template without
// rendering it.
type Parse struct {
	Tree   ParseTree   `cmd:"" default:"withargs" help:"Print the syntax tree as an outline (default)."`
	JSON   ParseJSON   `cmd:""                    help:"Print the syntax tree as JSON."`
	YAML   ParseYAML   `cmd:""                    help:"Print the syntax tree as YAML."`
	Tokens ParseTokens `cmd:""                    help:"Print the token stream."`
}

// ParseSource holds the arguments shared by every parse format.
type ParseSource struct {
	TemplateFlags `embed:""`

	Indent   int    `default:"2" help:"Indent width."                  short:"i"`
	Template string `arg:""      default:"-"                              help:"Template file or '-' for stdin." name:"template"`
}

// program compiles the template and returns its syntax tree.
func (p *ParseSource) program(ctx context.Context, format string) (*lang.Program, error) {
	tmpl, err := p.compile(ctx, p.Template)
	if err != nil {
		return nil, lang.WrapError(err).
			With(slog.String("command", "parse"), slog.String("format", format))
	}

	return tmpl.Program(), nil
}

// ParseTree prints the syntax tree as an indented outline.
type ParseTree struct{ ParseSource `embed:""` }

// Run executes the parse tree command.
func (p *ParseTree) Run(ctx context.Context) error {
	prog, err := p.program(ctx, "tree")
	if err != nil {
		return err
	}

	return prog.Format(ctx, stdout(ctx), p.Indent)
}

// ParseJSON prints the syntax tree as JSON.
type ParseJSON struct{ ParseSource `embed:""` }

// Run executes the parse json command.
func (p *ParseJSON) Run(ctx context.Context) error {
	prog, err := p.program(ctx, "json")
	if err != nil {
		return err
	}

	return prog.FormatJSON(ctx, stdout(ctx), p.Indent)
}

// ParseYAML prints the syntax tree as YAML.
type ParseYAML struct{ ParseSource `embed:""` }

// Run executes the parse yaml command.
func (p *ParseYAML) Run(ctx context.Context) error {
	prog, err := p.program(ctx, "yaml")
	if err != nil {
		return err
	}

	return prog.FormatYAML(ctx, stdout(ctx), p.Indent)
}

// ParseTokens prints one token per line: offset, kind and quoted text.
type ParseTokens struct{ ParseSource `embed:""` }

// Run executes the parse tokens command.
func (p *ParseTokens) Run(ctx context.Context) error {
	src, err := readSource(ctx, p.Template)
	if err != nil {
		return ErrReadTemplate.Wrap(err).With(slog.String("file", p.Template))
	}

	tokens, err := lang.Tokenize(string(src), p.options()...)
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("command", "parse"), slog.String("format", "tokens"))
	}

	w := tabwriter.NewWriter(stdout(ctx), 0, 0, max(p.Indent, 1), ' ', 0)

	for _, tok := range tokens {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%q\n", tok.Offset, tok.Kind, tok.Text); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	return w.Flush()
}
