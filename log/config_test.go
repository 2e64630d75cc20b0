package log

import (
	"slices"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{" Info ", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"info+2", Level(2)},
		{"bogus", DefaultLevel},
		{"", DefaultLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"text", FormatText},
		{"xml", DefaultFormat},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNamesRoundTrip(t *testing.T) {
	t.Parallel()

	levels := slices.Collect(Levels())
	if want := []string{"trace", "debug", "info", "warn", "error"}; !slices.Equal(levels, want) {
		t.Errorf("Levels() = %v, want %v", levels, want)
	}

	for _, name := range levels {
		if got := ParseLevel(name).String(); got != name {
			t.Errorf("ParseLevel(%q).String() = %q", name, got)
		}
	}

	for name := range Formats() {
		if got := ParseFormat(name).String(); got != name {
			t.Errorf("ParseFormat(%q).String() = %q", name, got)
		}
	}

	if got := Level(3).String(); got != "Level(3)" {
		t.Errorf("Level(3).String() = %q", got)
	}
}

func TestTimeLayout(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, time.March, 5, 7, 8, 9, 0, time.UTC)

	tests := []struct {
		layout string
		want   string
	}{
		{"RFC3339", "2024-03-05T07:08:09Z"},
		{"rfc-3339", "2024-03-05T07:08:09Z"},
		{"DateOnly", "2024-03-05"},
		{"kitchen", "7:08AM"},
		{"2006/01/02", "2024/03/05"},
		{"none", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := makeFormatTimeFunc(tt.layout)(ts); got != tt.want {
			t.Errorf("layout %q formatted %q, want %q", tt.layout, got, tt.want)
		}
	}
}

func TestOptionsDoNotShareState(t *testing.T) {
	t.Parallel()

	base := makeConfig(nil)
	debug := apply(base, WithLevel(LevelDebug), WithFormat(FormatJSON))

	if base.level != DefaultLevel || base.format != DefaultFormat {
		t.Errorf("base config changed: level %v, format %v", base.level, base.format)
	}

	if debug.level != LevelDebug || debug.format != FormatJSON {
		t.Errorf("derived config: level %v, format %v", debug.level, debug.format)
	}

	if base.output == nil {
		t.Error("nil writer was not replaced")
	}
}
