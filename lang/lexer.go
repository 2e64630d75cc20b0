package lang

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Whitespace control rewrites applied before scanning.
var (
	lstripPattern = regexp.MustCompile(`(?m)^[ \t]*(\{[%#])`)
	trimPattern   = regexp.MustCompile(`([%#]\})\n`)

	trimControl = []struct {
		pattern *regexp.Regexp
		replace string
	}{
		{regexp.MustCompile(`-%\}\s*`), "%}"},
		{regexp.MustCompile(`\s*\{%-`), "{%"},
		{regexp.MustCompile(`-\}\}\s*`), "}}"},
		{regexp.MustCompile(`\s*\{\{-`), "{{"},
		{regexp.MustCompile(`-#\}\s*`), "#}"},
		{regexp.MustCompile(`\s*\{#-`), "{#"},
	}

	rawOpen  = regexp.MustCompile(`^\{%\s*raw\s*%\}`)
	rawClose = regexp.MustCompile(`\{%\s*endraw\s*%\}`)

	// rawBlock captures the opening tag, its trailing trim marker, the body
	// and the leading trim marker of the closing tag.
	rawBlock = regexp.MustCompile(`(?s)(\{%-?\s*raw\s*(-?)%\})(.*?)\{%(-?)\s*endraw\s*-?%\}`)
)

// Normalize applies the whitespace-control rewrites to source. The result is
// the text that [Tokenize] scans and that token offsets refer to.
func Normalize(source string, opts ...Option) string {
	cfg := makeConfig(opts...)

	return normalize(source, cfg)
}

// normalize rewrites the text outside raw blocks. A raw body is copied as is,
// except for the trimming its own delimiters request.
func normalize(source string, cfg config) string {
	var b strings.Builder

	last := 0

	for _, m := range rawBlock.FindAllStringSubmatchIndex(source, -1) {
		b.WriteString(rewrite(source[last:m[3]], cfg))

		body := source[m[6]:m[7]]

		if cfg.TrimBlocks {
			body = strings.TrimPrefix(body, "\n")
		}

		if m[5] > m[4] {
			body = strings.TrimLeftFunc(body, unicode.IsSpace)
		}

		if m[9] > m[8] {
			body = strings.TrimRightFunc(body, unicode.IsSpace)
		} else if i := strings.LastIndexByte(body, '\n'); cfg.LstripBlocks && i >= 0 &&
			strings.Trim(body[i+1:], " \t") == "" {
			body = body[:i+1]
		}

		b.WriteString(body)

		// The closing tag starts the next segment.
		last = m[7]
	}

	b.WriteString(rewrite(source[last:], cfg))

	return b.String()
}

func rewrite(source string, cfg config) string {
	if cfg.LstripBlocks {
		source = lstripPattern.ReplaceAllString(source, "$1")
	}

	if cfg.TrimBlocks {
		source = trimPattern.ReplaceAllString(source, "$1")
	}

	for _, tc := range trimControl {
		source = tc.pattern.ReplaceAllString(source, tc.replace)
	}

	return source
}

// Tokenize converts template source into a token sequence terminated by a
// single [TokenEOF]. Token offsets index into [Normalize] applied to source.
func Tokenize(source string, opts ...Option) ([]Token, error) {
	cfg := makeConfig(opts...)

	return tokenize(normalize(source, cfg))
}

type lexer struct {
	src    string
	tokens []Token
	pos    int
	curly  int
}

func tokenize(src string) ([]Token, error) {
	l := &lexer{src: src}

	if err := l.run(); err != nil {
		return nil, err
	}

	l.emit(TokenEOF, "", len(src))

	return l.tokens, nil
}

func (l *lexer) emit(kind TokenKind, text string, offset int) {
	l.tokens = append(l.tokens, Token{Kind: kind, Text: text, Offset: offset})
}

func (l *lexer) fail(kind *Error, offset int, attrs ...slog.Attr) error {
	return ErrLex.At(positionAt(l.src, offset)).Wrap(kind.With(attrs...))
}

func (l *lexer) run() error {
	for l.pos < len(l.src) {
		rest := l.src[l.pos:]

		idx := nextOpener(rest)
		if idx < 0 {
			l.emit(TokenText, rest, l.pos)
			l.pos = len(l.src)

			break
		}

		if idx > 0 {
			l.emit(TokenText, rest[:idx], l.pos)
			l.pos += idx
			rest = rest[idx:]
		}

		switch rest[:2] {
		case "{#":
			end := strings.Index(rest[2:], "#}")
			if end < 0 {
				return l.fail(ErrUnterminatedComment, l.pos)
			}

			l.emit(TokenComment, rest[2:2+end], l.pos)
			l.pos += 2 + end + 2

		case "{%":
			if loc := rawOpen.FindStringIndex(rest); loc != nil {
				if err := l.lexRaw(loc[1]); err != nil {
					return err
				}

				continue
			}

			l.emit(TokenOpenStatement, "{%", l.pos)
			l.pos += 2

			if err := l.lexTag(TokenCloseStatement); err != nil {
				return err
			}

		case "{{":
			l.emit(TokenOpenExpression, "{{", l.pos)
			l.pos += 2

			if err := l.lexTag(TokenCloseExpression); err != nil {
				return err
			}
		}
	}

	return nil
}

// nextOpener returns the index of the next tag opener in s, or -1.
func nextOpener(s string) int {
	for i := 0; i+1 < len(s); i++ {
		if s[i] != '{' {
			continue
		}

		switch s[i+1] {
		case '{', '%', '#':
			return i
		}
	}

	return -1
}

// lexRaw emits the body of a raw block as text. skip is the length of the
// opening tag.
func (l *lexer) lexRaw(skip int) error {
	start := l.pos
	body := l.src[start+skip:]

	loc := rawClose.FindStringIndex(body)
	if loc == nil {
		return l.fail(ErrUnterminatedRaw, start)
	}

	if loc[0] > 0 {
		l.emit(TokenText, body[:loc[0]], start+skip)
	}

	l.pos = start + skip + loc[1]

	return nil
}

// lexTag scans tokens inside a tag until the closing delimiter.
func (l *lexer) lexTag(closing TokenKind) error {
	l.curly = 0

	for {
		l.skipSpace()

		if l.pos >= len(l.src) {
			return nil
		}

		rest := l.src[l.pos:]

		switch {
		case closing == TokenCloseExpression && l.curly == 0 &&
			strings.HasPrefix(rest, "}}"):
			l.emit(TokenCloseExpression, "}}", l.pos)
			l.pos += 2

			return nil

		case closing == TokenCloseStatement && strings.HasPrefix(rest, "%}"):
			l.emit(TokenCloseStatement, "%}", l.pos)
			l.pos += 2

			return nil
		}

		r, _ := utf8.DecodeRuneInString(rest)

		switch {
		case r == '\'' || r == '"':
			if err := l.lexString(r); err != nil {
				return err
			}

		case isDigit(r):
			l.lexNumber()

		case r == '_' || unicode.IsLetter(r):
			l.lexIdentifier()

		default:
			if !l.lexOperator() {
				return l.fail(ErrUnexpectedChar, l.pos,
					slog.String("char", string(r)),
					slog.Int("offset", l.pos),
				)
			}
		}
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}

		l.pos += size
	}
}

func (l *lexer) lexString(quote rune) error {
	start := l.pos
	l.pos++ // opening quote

	var b strings.Builder

	for l.pos < len(l.src) {
		c := l.src[l.pos]

		switch {
		case rune(c) == quote:
			l.pos++
			l.emit(TokenString, b.String(), start)

			return nil

		case c == '\\' && l.pos+1 < len(l.src):
			next := l.src[l.pos+1]

			switch next {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '"', '\'':
				b.WriteByte(next)
			default:
				b.WriteByte(c)
				b.WriteByte(next)
			}

			l.pos += 2

		default:
			b.WriteByte(c)
			l.pos++
		}
	}

	return l.fail(ErrUnterminatedString, start)
}

func (l *lexer) lexNumber() {
	start := l.pos
	l.pos = scanDigits(l.src, l.pos)

	kind := TokenInteger

	if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && isDigit(rune(l.src[l.pos+1])) {
		kind = TokenFloat
		l.pos = scanDigits(l.src, l.pos+1)
	}

	l.emit(kind, l.src[start:l.pos], start)
}

func scanDigits(s string, pos int) int {
	for pos < len(s) && isDigit(rune(s[pos])) {
		pos++
	}

	return pos
}

func (l *lexer) lexIdentifier() {
	start := l.pos

	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}

		l.pos += size
	}

	word := l.src[start:l.pos]

	if kind, ok := keywords[word]; ok {
		l.emit(kind, word, start)

		return
	}

	l.emit(TokenIdentifier, word, start)
}

func (l *lexer) lexOperator() bool {
	rest := l.src[l.pos:]

	for _, op := range operators {
		if !strings.HasPrefix(rest, op.text) {
			continue
		}

		switch op.kind {
		case TokenOpenBrace:
			l.curly++
		case TokenCloseBrace:
			l.curly--
		}

		l.emit(op.kind, op.text, l.pos)
		l.pos += len(op.text)

		return true
	}

	return false
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
