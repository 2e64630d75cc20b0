package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of a pretty text handler. Styles come from a
// renderer bound to the output writer, so color is dropped automatically
// when the writer is not a terminal.
type palette struct {
	time    lipgloss.Style
	source  lipgloss.Style
	message lipgloss.Style
	key     lipgloss.Style
	str     lipgloss.Style
	number  lipgloss.Style
	boolean lipgloss.Style
	other   lipgloss.Style
	trace   lipgloss.Style
	debug   lipgloss.Style
	info    lipgloss.Style
	warn    lipgloss.Style
	error   lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return &palette{
		time:    fg("8"),
		source:  fg("8").Italic(true),
		message: r.NewStyle().Bold(true),
		key:     fg("6"),
		str:     fg("2"),
		number:  fg("5"),
		boolean: fg("3"),
		other:   fg("4"),
		trace:   fg("8").Bold(true),
		debug:   fg("4").Bold(true),
		info:    fg("2").Bold(true),
		warn:    fg("3").Bold(true),
		error:   fg("1").Bold(true),
	}
}

func (p *palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l < slog.LevelDebug:
		return p.trace
	case l < slog.LevelInfo:
		return p.debug
	case l < slog.LevelWarn:
		return p.info
	case l < slog.LevelError:
		return p.warn
	default:
		return p.error
	}
}

// prettyHandler writes one line per record:
//
//	15:04:05 INFO  message key=value group.key=value
//
// Attributes added with WithAttrs are formatted once and cached.
type prettyHandler struct {
	opts   slog.HandlerOptions
	style  *palette
	mu     *sync.Mutex
	w      io.Writer
	prefix string
	attrs  []byte
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	h := &prettyHandler{
		style: newPalette(w),
		mu:    &sync.Mutex{},
		w:     w,
	}

	if opts != nil {
		h.opts = *opts
	}

	return h
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	if !r.Time.IsZero() {
		if a := h.replace(slog.Time(slog.TimeKey, r.Time)); a.Key != "" {
			buf.WriteString(h.style.time.Render(a.Value.String()))
			buf.WriteByte(' ')
		}
	}

	if a := h.replace(slog.Any(slog.LevelKey, r.Level)); a.Key != "" {
		name := fmt.Sprintf("%-5s", a.Value.String())
		buf.WriteString(h.style.level(r.Level).Render(name))
		buf.WriteByte(' ')
	}

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			loc := filepath.Base(src.File) + ":" + strconv.Itoa(src.Line)
			buf.WriteString(h.style.source.Render(loc))
			buf.WriteByte(' ')
		}
	}

	buf.WriteString(h.style.message.Render(r.Message))
	buf.Write(h.attrs)

	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(buf, h.prefix, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	buf := bytes.NewBuffer(append([]byte(nil), h.attrs...))
	for _, a := range attrs {
		h.appendAttr(buf, h.prefix, a)
	}

	clone := *h
	clone.attrs = buf.Bytes()

	return &clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	clone := *h
	clone.prefix = h.prefix + name + "."

	return &clone
}

// replace applies the ReplaceAttr option to a built-in attribute.
func (h *prettyHandler) replace(a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr == nil {
		return a
	}

	return h.opts.ReplaceAttr(nil, a)
}

// appendAttr writes a as " key=value". Groups are flattened into dotted
// keys; a group with an empty key is inlined.
func (h *prettyHandler) appendAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if len(group) == 0 {
			return
		}

		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, ga := range group {
			h.appendAttr(buf, prefix, ga)
		}

		return
	}

	buf.WriteByte(' ')
	buf.WriteString(h.style.key.Render(prefix + a.Key))
	buf.WriteByte('=')
	buf.WriteString(h.value(a.Value))
}

func (h *prettyHandler) value(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return h.style.str.Render(quoteIfNeeded(v.String()))
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return h.style.number.Render(v.String())
	case slog.KindBool:
		return h.style.boolean.Render(v.String())
	case slog.KindDuration:
		return h.style.number.Render(v.Duration().String())
	case slog.KindTime:
		return h.style.other.Render(v.Time().Format(time.RFC3339))
	default:
		if err, ok := v.Any().(error); ok {
			return h.style.error.Render(quoteIfNeeded(err.Error()))
		}

		return h.style.other.Render(quoteIfNeeded(v.String()))
	}
}

// quoteIfNeeded quotes s when it would not read back as a single token.
func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}

	if strings.ContainsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '=' || r == '"' || !unicode.IsPrint(r)
	}) {
		return strconv.Quote(s)
	}

	return s
}

// indentWriter re-indents each JSON record written to it. The JSON handler
// writes one complete record per call.
type indentWriter struct {
	w io.Writer
}

func (iw indentWriter) Write(p []byte) (int, error) {
	var buf bytes.Buffer

	if err := json.Indent(&buf, bytes.TrimSpace(p), "", "  "); err != nil {
		return iw.w.Write(p)
	}

	buf.WriteByte('\n')

	if _, err := iw.w.Write(buf.Bytes()); err != nil {
		return 0, err
	}

	return len(p), nil
}
