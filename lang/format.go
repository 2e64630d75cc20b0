package lang

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes an indented outline of the syntax tree to w, one node per
// line.
func (p *Program) Format(_ context.Context, w io.Writer, indent int) error {
	var b strings.Builder

	outline(&b, Tree(p), "", max(indent, 1), 0)

	_, err := io.WriteString(w, b.String())

	return err
}

// FormatJSON writes the syntax tree as JSON to w.
func (p *Program) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	s, err := EncodeJSON(Tree(p), indent)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, s)

	return err
}

// FormatYAML writes the syntax tree as YAML to w. Zero indent selects flow
// style.
func (p *Program) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, toOrdered(Tree(p)), opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

// Tree converts a node to a template value: an object holding the node type,
// its offset and one entry per child or attribute. Absent children are none.
func Tree(n Node) Value {
	if n == nil {
		return Null{}
	}

	o := NewObject(6)
	o.put("type", String(nodeType(n)))
	o.put("offset", Int(n.Pos()))

	switch n := n.(type) {
	case *Program:
		o.put("body", stmts(n.Body))
	case *Text:
		o.put("value", String(n.Value))
	case *Comment:
		o.put("value", String(n.Value))
	case *Output:
		o.put("expr", Tree(n.Expr))
	case *If:
		o.put("test", Tree(n.Test))
		o.put("body", stmts(n.Body))
		o.put("else", stmts(n.Else))
	case *For:
		o.put("target", Tree(n.Target))
		o.put("iterable", Tree(n.Iterable))
		o.put("filter", Tree(n.Filter))
		o.put("body", stmts(n.Body))
		o.put("else", stmts(n.Else))
	case *Set:
		o.put("target", Tree(n.Target))
		o.put("value", Tree(n.Value))
		o.put("body", stmts(n.Body))
	case *Macro:
		o.put("name", String(n.Name))
		o.put("params", params(n.Params))
		o.put("body", stmts(n.Body))
	case *CallBlock:
		o.put("call", Tree(n.Call))
		o.put("caller_params", params(n.CallerParams))
		o.put("body", stmts(n.Body))
	case *FilterBlock:
		o.put("filter", Tree(n.Filter))
		o.put("body", stmts(n.Body))
	case *StringLiteral:
		o.put("value", String(n.Value))
	case *IntegerLiteral:
		o.put("value", Int(n.Value))
	case *FloatLiteral:
		o.put("value", Float(n.Value))
	case *BooleanLiteral:
		o.put("value", Bool(n.Value))
	case *ArrayLiteral:
		o.put("items", exprs(n.Items))
	case *TupleLiteral:
		o.put("items", exprs(n.Items))
	case *ObjectLiteral:
		entries := make(Array, len(n.Entries))
		for i, e := range n.Entries {
			entries[i] = ObjectOf("key", Tree(e.Key), "value", Tree(e.Value))
		}

		o.put("entries", entries)
	case *Identifier:
		o.put("name", String(n.Name))
	case *Unary:
		o.put("op", String(n.Op.String()))
		o.put("operand", Tree(n.Operand))
	case *Spread:
		o.put("operand", Tree(n.Operand))
	case *Binary:
		o.put("op", String(n.Op.String()))
		o.put("left", Tree(n.Left))
		o.put("right", Tree(n.Right))
	case *Ternary:
		o.put("then", Tree(n.Then))
		o.put("test", Tree(n.Test))
		o.put("else", Tree(n.Else))
	case *Call:
		o.put("callee", Tree(n.Callee))
		o.put("args", arguments(n.Args))
	case *Member:
		o.put("object", Tree(n.Object))
		o.put("property", Tree(n.Property))
		o.put("computed", Bool(n.Computed))
	case *Slice:
		o.put("object", Tree(n.Object))
		o.put("start", Tree(n.Start))
		o.put("stop", Tree(n.Stop))
		o.put("step", Tree(n.Step))
	case *FilterExpr:
		o.put("name", String(n.Name))
		o.put("operand", Tree(n.Operand))
		o.put("args", arguments(n.Args))
	case *TestExpr:
		o.put("name", String(n.Name))
		o.put("negated", Bool(n.Negated))
		o.put("operand", Tree(n.Operand))
		o.put("args", arguments(n.Args))
	}

	return o
}

func nodeType(n Node) string {
	s := fmt.Sprintf("%T", n)

	return s[strings.LastIndexByte(s, '.')+1:]
}

func stmts(body []Stmt) Array {
	out := make(Array, len(body))
	for i, s := range body {
		out[i] = Tree(s)
	}

	return out
}

func exprs(items []Expr) Array {
	out := make(Array, len(items))
	for i, e := range items {
		out[i] = Tree(e)
	}

	return out
}

func params(ps []Parameter) Array {
	out := make(Array, len(ps))
	for i, p := range ps {
		out[i] = ObjectOf("name", p.Name, "default", Tree(p.Default))
	}

	return out
}

func arguments(a Arguments) Value {
	kw := make(Array, len(a.Keywords))
	for i, k := range a.Keywords {
		kw[i] = ObjectOf("name", k.Name, "value", Tree(k.Value))
	}

	return ObjectOf(
		"positional", exprs(a.Positional),
		"keywords", kw,
		"kwargs", Tree(a.Kwargs),
	)
}

// outline writes the tree produced by [Tree] as indented text.
func outline(b *strings.Builder, v Value, label string, indent, depth int) {
	pad := strings.Repeat(" ", indent*depth)

	switch v := v.(type) {
	case *Object:
		typ, isNode := v.Get("type")

		b.WriteString(pad)

		if label != "" {
			b.WriteString(label + ": ")
		}

		if isNode {
			off, _ := v.Get("offset")
			b.WriteString(Stringify(typ) + " @" + Stringify(off))
		}

		var scalars []string

		for k, e := range v.All() {
			if k == "type" || k == "offset" {
				continue
			}

			switch e := e.(type) {
			case *Object, Array, Null:
				continue
			default:
				scalars = append(scalars, k+"="+Repr(e))
			}
		}

		if len(scalars) > 0 {
			b.WriteString(" " + strings.Join(scalars, " "))
		}

		b.WriteByte('\n')

		for k, e := range v.All() {
			switch e := e.(type) {
			case *Object:
				outline(b, e, k, indent, depth+1)
			case Array:
				if len(e) == 0 {
					continue
				}

				b.WriteString(strings.Repeat(" ", indent*(depth+1)) + k + ":\n")

				for i, item := range e {
					outline(b, item, strconv.Itoa(i), indent, depth+2)
				}
			}
		}

	default:
		b.WriteString(pad + label + ": " + Repr(v) + "\n")
	}
}
