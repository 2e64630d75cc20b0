package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/jinja/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{
	"help", "vars", "filters", "tests", "edit", "clear", "quit",
}

// isWordBoundary reports whether r ends an identifier. Template identifiers
// never contain '-' or '~', so both act as operators here.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '[', ']', '{', '}',
		'+', '-', '*', '/', '%', '~',
		'<', '>', '=', '!',
		'|', ',', ':', '\'', '"':
		return true
	}

	return false
}

// wordBounds returns the word under the cursor and its byte offsets in
// input. The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the member-access chain leading up to the word at
// wordStart. For "x + user.ho" with the word "ho" it is "user". It is empty
// for top-level words.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimRight(prefix, ".")
	pos := len(prefix)

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.TrimSpace(prefix[pos:])
}

// completionKind selects the candidate source for the word at the cursor.
type completionKind int

const (
	completeName completionKind = iota
	completeMember
	completeFilter
	completeTest
)

// completionContext classifies the word starting at wordStart.
func completionContext(input string, wordStart int) (completionKind, string) {
	if parent := parentPath(input, wordStart); parent != "" {
		return completeMember, parent
	}

	before := strings.TrimRight(input[:wordStart], " \t")
	if strings.HasSuffix(before, "|") {
		return completeFilter, ""
	}

	fields := strings.Fields(before)
	if n := len(fields); n > 0 {
		last := fields[n-1]
		if last == "is" || (last == "not" && n > 1 && fields[n-2] == "is") {
			return completeTest, ""
		}
	}

	return completeName, ""
}

// candidates returns the completions of the given kind.
func (s *Session) candidates(kind completionKind, parent string) []string {
	switch kind {
	case completeMember:
		v, ok := s.Lookup(parent)
		if !ok {
			return nil
		}

		if obj, ok := v.(*lang.Object); ok {
			return obj.Keys()
		}

		return nil
	case completeFilter:
		return s.registry.Filters()
	case completeTest:
		return s.registry.Tests()
	}

	return s.Names()
}

// computeMatches ranks the candidates for the word at the cursor. An empty
// word lists every candidate after '.', '|' or 'is', and nothing elsewhere
// so the hint line stays visible.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	kind := completeName

	if m.mode == modeCtrl {
		candidates = ctrlCommands
	} else {
		var parent string

		kind, parent = completionContext(input, wordStart)
		candidates = m.session.candidates(kind, parent)
	}

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	if word == "" {
		if kind == completeName {
			return nil, nil, wordStart, wordEnd
		}

		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, candidates, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to
// fit width. The selected candidate is highlighted while tab-cycling.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
	callable func(string) bool,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx, callable(match.Str))

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders one candidate with its matched characters in
// bold. Callables get a "()" suffix that is not part of the completion.
func renderCandidate(match fuzzy.Match, selected, callable bool) string {
	baseStyle := suggestionStyle
	highlightStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	if callable {
		b.WriteString(baseStyle.Render("()"))
	}

	return b.String()
}
