package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestMakeDefaults(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := Make(&buf)

	if logger.Level() != DefaultLevel {
		t.Errorf("Level() = %v, want %v", logger.Level(), DefaultLevel)
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("Format() = %v, want %v", logger.Format(), DefaultFormat)
	}

	if logger.caller != DefaultCaller || logger.pretty != DefaultPretty {
		t.Errorf("caller = %v, pretty = %v", logger.caller, logger.pretty)
	}

	logger.Info("hidden")

	if buf.Len() != 0 {
		t.Errorf("info written below default level: %q", buf.String())
	}

	logger.Warn("shown")

	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn not written: %q", buf.String())
	}
}

func TestZeroLogger(t *testing.T) {
	t.Parallel()

	var logger Logger

	logger.Trace("nothing")
	logger.ErrorContext(t.Context(), "nothing")

	if logger.With(slog.Int("a", 1)).Logger != nil {
		t.Error("With on zero logger created a handler")
	}

	if logger.Enabled(t.Context(), LevelError) {
		t.Error("zero logger is enabled")
	}

	if logger.Level() != DefaultLevel || logger.Format() != DefaultFormat {
		t.Errorf("zero logger level = %v, format = %v", logger.Level(), logger.Format())
	}
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level Level
		want  []string
	}{
		{LevelTrace, []string{"t", "d", "i", "w", "e"}},
		{LevelDebug, []string{"d", "i", "w", "e"}},
		{LevelInfo, []string{"i", "w", "e"}},
		{LevelError, []string{"e"}},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			logger := Make(&buf, WithLevel(tt.level), WithFormat(FormatJSON), WithPretty(false))
			logger.Trace("t")
			logger.Debug("d")
			logger.Info("i")
			logger.Warn("w")
			logger.Error("e")

			var got []string

			for line := range strings.Lines(buf.String()) {
				var rec map[string]any
				if err := json.Unmarshal([]byte(line), &rec); err != nil {
					t.Fatalf("invalid JSON %q: %v", line, err)
				}

				got = append(got, rec["msg"].(string))
			}

			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("messages = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJSONRecord(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := Make(&buf,
		WithFormat(FormatJSON),
		WithPretty(false),
		WithLevel(LevelTrace),
		WithTimeLayout("none"),
	).With(slog.String("component", "lang"))

	logger.TraceContext(t.Context(), "compile", slog.Int("bytes", 12))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}

	if _, ok := rec["time"]; ok {
		t.Error("time present with layout none")
	}

	want := map[string]any{
		"level":     "TRACE",
		"msg":       "compile",
		"component": "lang",
		"bytes":     float64(12),
	}

	for k, v := range want {
		if rec[k] != v {
			t.Errorf("%s = %v, want %v", k, rec[k], v)
		}
	}
}

func TestPrettyJSONIsIndented(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	Make(&buf, WithFormat(FormatJSON), WithTimeLayout("none")).Error("boom")

	if want := "{\n  \"level\": \"ERROR\",\n  \"msg\": \"boom\"\n}\n"; buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestPrettyText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelDebug), WithTimeLayout("none")).
		With(slog.String("template", "greeting"))

	logger.Debug("rendered",
		slog.Group("out", slog.Int("bytes", 5)),
		slog.String("note", "two words"),
		slog.Any("err", errors.New("bad")),
	)

	line := buf.String()

	for _, want := range []string{
		"DEBUG rendered",
		" template=greeting",
		" out.bytes=5",
		` note="two words"`,
		" err=bad",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("output %q is missing %q", line, want)
		}
	}

	if strings.Count(line, "\n") != 1 {
		t.Errorf("output %q is not a single line", line)
	}
}

func TestPrettyTextGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	h := newPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(h.WithGroup("render").WithAttrs([]slog.Attr{slog.String("name", "x")}))

	logger.Info("done", slog.Int("depth", 2))

	for _, want := range []string{"INFO  done", " render.name=x", " render.depth=2"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output %q is missing %q", buf.String(), want)
		}
	}
}

func TestWrapKeepsAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	base := Make(&buf, WithFormat(FormatJSON), WithPretty(false)).With(slog.String("k", "v"))
	wrapped := base.Wrap(WithLevel(LevelInfo))

	wrapped.Info("hello")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}

	if rec["k"] != "v" {
		t.Errorf("record = %v, want attribute k=v", rec)
	}

	if base.Level() != DefaultLevel {
		t.Errorf("Wrap modified the receiver level to %v", base.Level())
	}
}

func TestCallerPointsAtCaller(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON), WithPretty(false), WithCaller(true))
	logger.Warn("where")

	var rec struct {
		Source struct {
			File string `json:"file"`
		} `json:"source"`
	}

	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}

	if !strings.HasSuffix(rec.Source.File, "log_test.go") {
		t.Errorf("source file = %q, want log_test.go", rec.Source.File)
	}
}

func TestConcurrentLogging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelInfo), WithTimeLayout("none"))

	var wg sync.WaitGroup

	for range 16 {
		wg.Go(func() {
			for range 10 {
				logger.Info("tick")
			}
		})
	}

	wg.Wait()

	if n := strings.Count(buf.String(), "tick\n"); n != 160 {
		t.Errorf("wrote %d complete lines, want 160", n)
	}
}
