package cli

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/jinja/log"
)

// logFormat configures the default logger as a side effect of parsing, so
// that errors reported while kong is still parsing use the requested format.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel configures the default logger as a side effect of parsing.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"${logLevel}"  enum:"${logLevelEnum}"  help:"Set log level."`
	Format     logFormat `default:"${logFormat}" enum:"${logFormatEnum}" help:"Set log format."`
	TimeLayout string    `default:"TimeOnly"                              help:"Set timestamp format (a time package layout name, a custom layout, or none)."`
	Caller     bool      `default:"false"                                 help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                                  help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevel":      log.DefaultLevel.String(),
		"logLevelEnum":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormat":     log.DefaultFormat.String(),
		"logFormatEnum": strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

// start applies every parsed logging flag to the default logger.
func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

// scan applies logging flags found in args before kong parses them, so the
// logger is configured regardless of where the flags appear. Boolean flags
// never reach a TextUnmarshaler, which is why they are handled here too.
func (f *logConfig) scan(args []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return
		}

		name, value, assigned := strings.Cut(arg, "=")

		negated := strings.HasPrefix(name, "--no-log-")
		if !negated && !strings.HasPrefix(name, "--log-") {
			continue
		}

		// next consumes the following argument as the flag value.
		next := func() string {
			if !assigned && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++

				return args[i]
			}

			return value
		}

		switch name {
		case "--log-level":
			_ = f.Level.UnmarshalText([]byte(next()))
		case "--log-format":
			_ = f.Format.UnmarshalText([]byte(next()))
		case "--log-pretty", "--no-log-pretty":
			if v, ok := scanBool(value, assigned, negated); ok {
				f.Pretty = v
				log.Config(log.WithPretty(v))
			}
		case "--log-caller", "--no-log-caller":
			if v, ok := scanBool(value, assigned, negated); ok {
				f.Caller = v
				log.Config(log.WithCaller(v))
			}
		}
	}
}

// scanBool interprets a boolean flag. Values are only taken from "=value".
func scanBool(value string, assigned, negated bool) (bool, bool) {
	if !assigned {
		return !negated, true
	}

	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, false
	}

	return v != negated, true
}
