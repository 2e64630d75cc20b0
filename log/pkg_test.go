package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// The package-level logger is global state, so these tests do not run in
// parallel.

func TestPackageLogger(t *testing.T) {
	saved := Default()
	t.Cleanup(func() { SetDefault(saved) })

	var buf bytes.Buffer

	SetDefault(Make(&buf, WithTimeLayout("none"), WithPretty(false)))

	Info("hidden")
	Warn("visible", slog.String("k", "v"))

	if got := buf.String(); got != "level=WARN msg=visible k=v\n" {
		t.Errorf("output = %q", got)
	}

	buf.Reset()

	logger := Config(WithLevel(LevelTrace))
	if logger.Level() != LevelTrace || Default().Level() != LevelTrace {
		t.Errorf("Config did not update the level: %v", Default().Level())
	}

	TraceContext(t.Context(), "deep")
	With(slog.Int("n", 1)).Debug("child")

	out := buf.String()
	for _, want := range []string{"level=TRACE msg=deep", "level=DEBUG msg=child n=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q is missing %q", out, want)
		}
	}
}
