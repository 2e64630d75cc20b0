package log

//go:generate go tool stringer --linecomment --type Level,Format --output config_string.go

import (
	"io"
	"iter"
	"log/slog"
	"strings"
	"time"
)

// Level represents the severity of a log message.
type Level slog.Level

const levelTraceMask = -8

const (
	LevelTrace Level = Level(levelTraceMask)  // trace
	LevelDebug Level = Level(slog.LevelDebug) // debug
	LevelInfo  Level = Level(slog.LevelInfo)  // info
	LevelWarn  Level = Level(slog.LevelWarn)  // warn
	LevelError Level = Level(slog.LevelError) // error
)

// DefaultLevel is the default log level.
const DefaultLevel = LevelWarn

// Levels returns an iterator over the names of all defined log levels, from
// most to least verbose.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, level := range []Level{
			LevelTrace,
			LevelDebug,
			LevelInfo,
			LevelWarn,
			LevelError,
		} {
			if !yield(level.String()) {
				return
			}
		}
	}
}

// ParseLevel parses a level name. Valid names are "trace", "debug", "info",
// "warn" and "error" in any case, optionally followed by a "+" or "-" and an
// integer offset (see [slog.Level.UnmarshalText]). Unknown names yield
// [DefaultLevel].
func ParseLevel(s string) Level {
	s = strings.TrimSpace(s)

	// slog does not know about trace.
	if strings.EqualFold(s, "trace") {
		return LevelTrace
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}

	return Level(l)
}

// Format represents the output format for log messages.
type Format int

const (
	FormatText Format = iota // text
	FormatJSON               // json
)

// DefaultFormat is the default log message format.
const DefaultFormat = FormatText

// Formats returns an iterator over the names of all defined log formats.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, format := range []Format{FormatText, FormatJSON} {
			if !yield(format.String()) {
				return
			}
		}
	}
}

// ParseFormat parses a format name, "text" or "json". Unknown names yield
// [DefaultFormat].
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return DefaultFormat
	}
}

// FormatTime formats a record timestamp. An empty result omits the time.
type FormatTime func(time.Time) string

// DefaultTimeLayout is the default used when no valid time layout is provided.
const DefaultTimeLayout = time.TimeOnly

// DefaultCaller is the default setting for including caller information
// in log output.
const DefaultCaller = false

// DefaultPretty is the default setting for pretty printing log output.
const DefaultPretty = true

// config holds the configuration of a Logger. It is copied, never shared,
// so options need no locking.
type config struct {
	output     io.Writer
	formatTime FormatTime
	attrs      []slog.Attr
	level      Level
	format     Format
	caller     bool
	pretty     bool
}

// Option applies a configuration option to config.
type Option func(config) config

// apply applies multiple options to a config.
func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}

// makeConfig creates a new config with defaults applied, overridden by any
// provided options.
func makeConfig(w io.Writer, opts ...Option) config {
	return apply(config{}, append([]Option{WithDefaults(w)}, opts...)...)
}

// handlerOptions returns the slog options shared by every handler: level
// filtering, source locations, the configured time layout and upper-case
// level names that know about trace.
func (c config) handlerOptions() *slog.HandlerOptions {
	formatTime := c.formatTime
	if formatTime == nil {
		formatTime = makeFormatTimeFunc(DefaultTimeLayout)
	}

	return &slog.HandlerOptions{
		AddSource: c.caller,
		Level:     slog.Level(c.level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}

			switch a.Key {
			case slog.TimeKey:
				if t, ok := a.Value.Any().(time.Time); ok {
					formatted := formatTime(t)
					if formatted == "" {
						return slog.Attr{}
					}

					a.Value = slog.StringValue(formatted)
				}

			case slog.LevelKey:
				if level, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(strings.ToUpper(Level(level).String()))
				}
			}

			return a
		},
	}
}

// handler creates a slog.Handler for the configuration.
func (c config) handler() slog.Handler {
	output := c.output
	if output == nil {
		output = io.Discard
	}

	opts := c.handlerOptions()

	var h slog.Handler

	switch {
	case c.format == FormatJSON && c.pretty:
		h = slog.NewJSONHandler(indentWriter{output}, opts)
	case c.format == FormatJSON:
		h = slog.NewJSONHandler(output, opts)
	case c.pretty:
		h = newPrettyHandler(output, opts)
	default:
		h = slog.NewTextHandler(output, opts)
	}

	if len(c.attrs) > 0 {
		h = h.WithAttrs(c.attrs)
	}

	return h
}

// WithDefaults returns an option that resets every setting to its default
// and writes to w. A nil writer discards output.
func WithDefaults(w io.Writer) Option {
	return func(config) config {
		if w == nil {
			w = io.Discard
		}

		return config{
			output:     w,
			formatTime: makeFormatTimeFunc(DefaultTimeLayout),
			level:      DefaultLevel,
			format:     DefaultFormat,
			caller:     DefaultCaller,
			pretty:     DefaultPretty,
		}
	}
}

// WithOutput returns an option that sets the writer for log messages.
// A nil writer discards output.
func WithOutput(w io.Writer) Option {
	return func(c config) config {
		if w == nil {
			w = io.Discard
		}

		c.output = w

		return c
	}
}

// WithLevel returns an option that sets the minimum log level.
func WithLevel(level Level) Option {
	return func(c config) config {
		c.level = level

		return c
	}
}

// WithFormat returns an option that sets the output format.
func WithFormat(format Format) Option {
	return func(c config) config {
		c.format = format

		return c
	}
}

// WithTimeLayout returns an option that sets the layout used to format log
// timestamps.
//
// The layout can name one of the layouts in the [time] package, matched
// case-insensitively and ignoring punctuation (for example "RFC3339",
// "rfc-3339-nano" or "DateTime"). Anything else is passed verbatim to
// [time.Time.Format]. An empty layout or "none" omits timestamps.
func WithTimeLayout(layout string) Option {
	return func(c config) config {
		c.formatTime = makeFormatTimeFunc(layout)

		return c
	}
}

// WithCaller returns an option that controls whether the source file and
// line of the logging call are included.
func WithCaller(enable bool) Option {
	return func(c config) config {
		c.caller = enable

		return c
	}
}

// WithPretty returns an option that controls pretty printing. Pretty text is
// aligned and colored when the output is a terminal; pretty JSON is indented.
func WithPretty(enable bool) Option {
	return func(c config) config {
		c.pretty = enable

		return c
	}
}

// timeLayout maps normalized layout names to their time package constants.
var timeLayout = map[string]string{
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rubydate":    time.RubyDate,
	"rfc822":      time.RFC822,
	"rfc822z":     time.RFC822Z,
	"rfc850":      time.RFC850,
	"kitchen":     time.Kitchen,
	"datetime":    time.DateTime,
	"dateonly":    time.DateOnly,
	"timeonly":    time.TimeOnly,

	"stamp": time.Stamp,
	"none":  "",

	"stampmilli": time.StampMilli,
	"milli":      time.StampMilli,
	"ms":         time.StampMilli,

	"stampmicro": time.StampMicro,
	"micro":      time.StampMicro,
	"us":         time.StampMicro,

	"stampnano": time.StampNano,
	"nano":      time.StampNano,
	"ns":        time.StampNano,
}

func makeFormatTimeFunc(layout string) FormatTime {
	// Normalize only for lookup; custom layouts are used verbatim.
	key := strings.Map(
		func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				return r
			}

			return -1
		},
		strings.ToLower(layout),
	)

	if std, ok := timeLayout[key]; ok {
		layout = std
	}

	if strings.TrimSpace(layout) == "" {
		return func(time.Time) string { return "" }
	}

	return func(t time.Time) string { return t.Format(layout) }
}
