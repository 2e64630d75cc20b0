// Package lang implements a Jinja-compatible template language: a lexer, a
// recursive descent parser producing a syntax tree, and a tree-walking
// interpreter with the standard catalogue of filters, tests and globals.
//
// # Pipeline
//
// Rendering a template runs four phases:
//
//   - Normalize: line endings are unified and the trim_blocks and
//     lstrip_blocks options are applied to the raw source.
//   - Tokenize: text, comments and {{ }} / {% %} tags become tokens.
//     A "-" inside a delimiter strips adjacent whitespace, and
//     {% raw %} ... {% endraw %} passes its body through as text.
//   - Parse: tokens become a [Program] of statements and expressions.
//   - Render: the program is evaluated against an [Environment] chain
//     and a [Registry] of filters, tests and globals.
//
// [Compile] runs the first three phases once so a [Template] can be
// rendered many times. [CompileReader] additionally caches parsed programs
// by source and options.
//
// # Grammar
//
// Informal EBNF for tags:
//
//	Stmt     → if Expr Body (elif Expr Body)* (else Body)? endif
//	         | for Target in Or (if Expr)? Body (else Body)? endfor
//	         | set Target '=' ExprList | set Target Body endset
//	         | macro Name '(' Params ')' Body endmacro
//	         | call ('(' Params ')')? Call Body endcall
//	         | filter Chain Body endfilter
//	         | break | continue
//	Expr     → Or (if Or (else Expr)?)?
//	Or       → And (or And)*
//	And      → Not (and Not)*
//	Not      → not Not | Compare
//	Compare  → Term ((== != < <= > >= in | not in) Term | is not? Test)*
//	Term     → Filter ((+ - ~) Filter)*
//	Filter   → Factor ('|' Name Args?)*
//	Factor   → Power ((* / // %) Power)*
//	Power    → Unary (** Unary)*
//	Unary    → (- | + | *) Unary | Postfix
//	Postfix  → Primary ('.' Name | '[' Index ']' | '(' Args ')')*
//
// # Values
//
// Every runtime value implements [Value]. Objects keep insertion order and
// are copied on update. Undefined is distinct from none: it renders as the
// empty string, iterates as empty and is falsy, but arithmetic on it fails.
//
// # Example
//
//	{% macro item(name, price=0) -%}
//	  {{ name | title }}: {{ price | round(2) }}
//	{%- endmacro %}
//	{% for p in products if p.stock > 0 -%}
//	  {{ loop.index }}. {{ item(p.name, p.price) }}
//	{% else -%}
//	  nothing in stock
//	{% endfor %}
package lang
