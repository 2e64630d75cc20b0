package log

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"
)

// Logger is an immutable structured logger. The zero value discards every
// message, so packages can hold a Logger without checking for nil.
type Logger struct {
	*slog.Logger
	config
}

// Make creates a new [Logger] that writes to w.
// The default configuration is [DefaultFormat], [DefaultLevel],
// [DefaultTimeLayout], [DefaultPretty] and caller info disabled.
func Make(w io.Writer, opts ...Option) Logger {
	return makeLogger(makeConfig(w, opts...))
}

func makeLogger(cfg config) Logger {
	return Logger{
		Logger: slog.New(cfg.handler()),
		config: cfg,
	}
}

// Wrap returns a copy of l reconfigured with opts. Attributes added with
// [Logger.With] are retained.
func (l Logger) Wrap(opts ...Option) Logger {
	if l.Logger == nil {
		return Make(nil, opts...)
	}

	return makeLogger(apply(l.config, opts...))
}

// With returns a copy of l that includes attrs in every message.
func (l Logger) With(attrs ...slog.Attr) Logger {
	if l.Logger == nil || len(attrs) == 0 {
		return l
	}

	cfg := l.config
	cfg.attrs = append(append([]slog.Attr(nil), l.attrs...), attrs...)

	return Logger{
		Logger: slog.New(l.Handler().WithAttrs(attrs)),
		config: cfg,
	}
}

// Level returns the minimum level of messages written.
func (l Logger) Level() Level {
	if l.Logger == nil {
		return DefaultLevel
	}

	return l.level
}

// Format returns the output format.
func (l Logger) Format() Format {
	if l.Logger == nil {
		return DefaultFormat
	}

	return l.format
}

// Output returns the writer messages are written to.
func (l Logger) Output() io.Writer {
	if l.Logger == nil || l.output == nil {
		return io.Discard
	}

	return l.output
}

// Enabled reports whether a message at level would be written.
func (l Logger) Enabled(ctx context.Context, level Level) bool {
	return l.Logger != nil && l.Logger.Enabled(ctx, slog.Level(level))
}

// TraceContext logs a message at Trace level with the provided context.
func (l Logger) TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logContext(ctx, LevelTrace, msg, attrs...)
}

// Trace logs a message at Trace level.
func (l Logger) Trace(msg string, attrs ...slog.Attr) {
	l.logContext(DefaultContextProvider(), LevelTrace, msg, attrs...)
}

// DebugContext logs a message at Debug level with the provided context.
func (l Logger) DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logContext(ctx, LevelDebug, msg, attrs...)
}

// Debug logs a message at Debug level.
func (l Logger) Debug(msg string, attrs ...slog.Attr) {
	l.logContext(DefaultContextProvider(), LevelDebug, msg, attrs...)
}

// InfoContext logs a message at Info level with the provided context.
func (l Logger) InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logContext(ctx, LevelInfo, msg, attrs...)
}

// Info logs a message at Info level.
func (l Logger) Info(msg string, attrs ...slog.Attr) {
	l.logContext(DefaultContextProvider(), LevelInfo, msg, attrs...)
}

// WarnContext logs a message at Warn level with the provided context.
func (l Logger) WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logContext(ctx, LevelWarn, msg, attrs...)
}

// Warn logs a message at Warn level.
func (l Logger) Warn(msg string, attrs ...slog.Attr) {
	l.logContext(DefaultContextProvider(), LevelWarn, msg, attrs...)
}

// ErrorContext logs a message at Error level with the provided context.
func (l Logger) ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logContext(ctx, LevelError, msg, attrs...)
}

// Error logs a message at Error level.
func (l Logger) Error(msg string, attrs ...slog.Attr) {
	l.logContext(DefaultContextProvider(), LevelError, msg, attrs...)
}

// callerSkip is the number of frames between runtime.Callers and the caller
// of a logging method: runtime.Callers, logContext and the method itself.
const callerSkip = 3

// logContext builds the record by hand so the source location points at
// the caller of the exported method rather than at this package.
// Every exported logging method must call it directly.
func (l Logger) logContext(
	ctx context.Context,
	level Level,
	msg string,
	attrs ...slog.Attr,
) {
	if l.Logger == nil {
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if !l.Logger.Enabled(ctx, slog.Level(level)) {
		return
	}

	var pc uintptr

	if l.caller {
		var pcs [1]uintptr

		runtime.Callers(callerSkip, pcs[:])
		pc = pcs[0]
	}

	r := slog.NewRecord(time.Now(), slog.Level(level), msg, pc)
	r.AddAttrs(attrs...)
	_ = l.Handler().Handle(ctx, r)
}
