package lang

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// Stringify returns the output form of v, as written by {{ v }}.
func Stringify(v Value) string {
	switch v := v.(type) {
	case nil, Undefined:
		return ""
	case String:
		return string(v)
	default:
		return Repr(v)
	}
}

// Repr returns the Python-style representation of v used inside array and
// object output: strings are quoted, none is "None" and booleans are
// capitalized.
func Repr(v Value) string {
	var b strings.Builder

	writeRepr(&b, v)

	return b.String()
}

func writeRepr(b *strings.Builder, v Value) {
	switch v := v.(type) {
	case nil, Undefined:
		b.WriteString("Undefined")
	case Null:
		b.WriteString("None")
	case Bool:
		if v {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case Int:
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case Float:
		b.WriteString(formatFloat(float64(v)))
	case String:
		b.WriteString(quoteString(string(v)))
	case Array:
		b.WriteByte('[')

		for i, e := range v {
			if i > 0 {
				b.WriteString(", ")
			}

			writeRepr(b, e)
		}

		b.WriteByte(']')
	case *Object:
		b.WriteByte('{')

		i := 0
		for k, e := range v.All() {
			if i > 0 {
				b.WriteString(", ")
			}

			b.WriteString(quoteString(k))
			b.WriteString(": ")
			writeRepr(b, e)

			i++
		}

		b.WriteByte('}')
	case *Function:
		b.WriteString("<function " + v.Name + ">")
	case *MacroValue:
		b.WriteString("<macro " + v.Def.Name + ">")
	}
}

// formatFloat renders f the way Python's repr does: shortest round-trip
// digits, always with a fractional part or exponent.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	if f == 0 {
		if math.Signbit(f) {
			return "-0.0"
		}

		return "0.0"
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)

	exp := 0
	if i := strings.IndexByte(sci, 'e'); i >= 0 {
		exp, _ = strconv.Atoi(sci[i+1:])
	}

	if exp < -4 || exp >= 16 {
		mant, e, _ := strings.Cut(sci, "e")
		sign := e[0]
		digits := strings.TrimLeft(e[1:], "0")

		if len(digits) < 2 {
			digits = strings.Repeat("0", 2-len(digits)) + digits
		}

		return mant + "e" + string(sign) + digits
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}

	return s
}

// quoteString quotes s the way Python's repr does.
func quoteString(s string) string {
	quote := byte('\'')
	if strings.IndexByte(s, '\'') >= 0 && strings.IndexByte(s, '"') < 0 {
		quote = '"'
	}

	var b strings.Builder

	b.Grow(len(s) + 2)
	b.WriteByte(quote)

	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(quote):
			b.WriteByte('\\')
			b.WriteByte(quote)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			b.WriteString(`\x`)

			h := strconv.FormatInt(int64(r), 16)
			if len(h) < 2 {
				b.WriteByte('0')
			}

			b.WriteString(h)
		default:
			b.WriteRune(r)
		}
	}

	b.WriteByte(quote)

	return b.String()
}

// EncodeJSON serializes v as JSON. Object keys keep insertion order. With
// indent <= 0 the output is single-line with ", " and ": " separators;
// otherwise nested values are placed on their own lines indented by indent
// spaces per level.
func EncodeJSON(v Value, indent int) (string, error) {
	var b strings.Builder

	if err := writeJSON(&b, v, indent, 0); err != nil {
		return "", err
	}

	return b.String(), nil
}

func writeJSON(b *strings.Builder, v Value, indent, depth int) error {
	switch v := v.(type) {
	case nil, Undefined, Null:
		b.WriteString("null")
	case Bool:
		b.WriteString(strconv.FormatBool(bool(v)))
	case Int:
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case Float:
		switch f := float64(v); {
		case math.IsNaN(f):
			b.WriteString("NaN")
		case math.IsInf(f, 1):
			b.WriteString("Infinity")
		case math.IsInf(f, -1):
			b.WriteString("-Infinity")
		default:
			b.WriteString(formatFloat(f))
		}
	case String:
		b.WriteString(jsonString(string(v)))
	case Array:
		if len(v) == 0 {
			b.WriteString("[]")

			return nil
		}

		b.WriteByte('[')

		for i, e := range v {
			if i > 0 {
				b.WriteByte(',')
			}

			jsonBreak(b, indent, depth+1, i > 0)

			if err := writeJSON(b, e, indent, depth+1); err != nil {
				return err
			}
		}

		jsonBreak(b, indent, depth, false)
		b.WriteByte(']')
	case *Object:
		if v.Len() == 0 {
			b.WriteString("{}")

			return nil
		}

		b.WriteByte('{')

		i := 0
		for k, e := range v.All() {
			if i > 0 {
				b.WriteByte(',')
			}

			jsonBreak(b, indent, depth+1, i > 0)
			b.WriteString(jsonString(k))
			b.WriteString(": ")

			if err := writeJSON(b, e, indent, depth+1); err != nil {
				return err
			}

			i++
		}

		jsonBreak(b, indent, depth, false)
		b.WriteByte('}')
	default:
		return runtimeError(ErrTypeMismatch, "value is not JSON serializable",
			slog.String("kind", kindOf(v).String()))
	}

	return nil
}

// jsonBreak writes the whitespace between JSON elements.
func jsonBreak(b *strings.Builder, indent, depth int, sep bool) {
	if indent <= 0 {
		if sep {
			b.WriteByte(' ')
		}

		return
	}

	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", indent*depth))
}

func jsonString(s string) string {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)

	return strings.TrimSuffix(buf.String(), "\n")
}
