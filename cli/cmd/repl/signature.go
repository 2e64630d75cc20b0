package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/jinja/lang"
)

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall describes the call whose argument list holds the cursor.
type functionCall struct {
	name     string
	category lang.Category
	argIndex int
	inCall   bool
}

// bracket is an unclosed '(', '[' or '{' and the number of commas seen at
// its own depth.
type bracket struct {
	open   int
	commas int
	paren  bool
}

// detectFunctionCall finds the innermost call enclosing cursor. Brackets
// and commas inside string literals are ignored. The category is
// [lang.CategoryFilter] after '|' and [lang.CategoryTest] after "is".
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))

	var (
		stack []bracket
		quote byte
	)

	for i := 0; i < cursor; i++ {
		c := input[i]

		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}

			continue
		}

		switch c {
		case '\'', '"':
			quote = c
		case '(', '[', '{':
			stack = append(stack, bracket{open: i, paren: c == '('})
		case ')', ']', '}':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case ',':
			if n := len(stack); n > 0 {
				stack[n-1].commas++
			}
		}
	}

	for i := len(stack) - 1; i >= 0; i-- {
		b := stack[i]
		if !b.paren {
			continue
		}

		start := callNameStart(input, b.open)
		if name := input[start:b.open]; name != "" {
			return functionCall{
				name:     name,
				category: callCategory(input[:start]),
				argIndex: b.commas,
				inCall:   true,
			}
		}
	}

	return functionCall{}
}

// callNameStart returns the offset of the dotted name ending at end.
func callNameStart(input string, end int) int {
	start := end

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if r != '.' && r != '_' &&
			(r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			break
		}

		start -= size
	}

	return start
}

func callCategory(before string) lang.Category {
	before = strings.TrimRight(before, " \t")
	if strings.HasSuffix(before, "|") {
		return lang.CategoryFilter
	}

	fields := strings.Fields(before)
	if n := len(fields); n > 0 {
		if fields[n-1] == "is" || (fields[n-1] == "not" && n > 1 && fields[n-2] == "is") {
			return lang.CategoryTest
		}
	}

	return lang.CategoryGlobal
}

// renderSignatureHint renders sig with the parameter at argIdx highlighted.
// A parameter named "*name" collects the remaining positional arguments.
func renderSignatureHint(sig lang.Signature, argIdx int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(sig.Name))
	b.WriteString(signatureStyle.Render("("))

	for i, p := range sig.Params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		text := p.Name
		if p.Default != nil {
			text += "=" + lang.Repr(p.Default)
		}

		variadic := strings.HasPrefix(p.Name, "*")
		if argIdx == i || (variadic && argIdx > i) {
			b.WriteString(currentParamStyle.Render(text))
		} else {
			b.WriteString(signatureStyle.Render(text))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	if sig.Doc != "" {
		b.WriteString("  ")
		b.WriteString(hintStyle.Render(sig.Doc))
	}

	return b.String()
}
