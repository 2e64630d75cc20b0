package profile

import (
	"slices"
	"testing"
)

func TestNew(t *testing.T) {
	t.Parallel()

	p := New(WithMode("cpu"), WithDir("/tmp/prof"), WithQuiet(true))

	if want := (Profiler{Mode: "cpu", Dir: "/tmp/prof", Quiet: true}); p != want {
		t.Errorf("New() = %+v, want %+v", p, want)
	}
}

func TestStartWithoutMode(t *testing.T) {
	t.Parallel()

	s := New(WithDir(t.TempDir())).Start()
	if _, ok := s.(ignore); !ok {
		t.Errorf("Start() = %T, want no-op", s)
	}

	s.Stop()
}

func TestUnknownModeIsDisabled(t *testing.T) {
	t.Parallel()

	p := New(WithMode("bogus"))
	if p.Enabled() {
		t.Error("unknown mode reported as enabled")
	}

	if slices.Contains(Modes(), "bogus") {
		t.Error("Modes() contains bogus")
	}

	p.Start().Stop()
}
