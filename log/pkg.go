package log

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// DefaultContextProvider supplies the context for logging methods that do
// not take one.
var DefaultContextProvider = context.TODO

var (
	defaultMu  sync.RWMutex
	defaultLog = Make(os.Stderr)
)

// Default returns the package-level logger.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()

	return defaultLog
}

// SetDefault replaces the package-level logger.
func SetDefault(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultLog = l
}

// Config reconfigures the package-level logger with opts and returns the
// result.
func Config(opts ...Option) Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultLog = defaultLog.Wrap(opts...)

	return defaultLog
}

// With returns a copy of the package-level logger that includes attrs in
// every message.
func With(attrs ...slog.Attr) Logger {
	return Default().With(attrs...)
}

// Trace logs at [LevelTrace] with the package-level logger.
func Trace(msg string, attrs ...slog.Attr) {
	Default().logContext(DefaultContextProvider(), LevelTrace, msg, attrs...)
}

// TraceContext logs at [LevelTrace] with the package-level logger.
func TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logContext(ctx, LevelTrace, msg, attrs...)
}

// Debug logs at [LevelDebug] with the package-level logger.
func Debug(msg string, attrs ...slog.Attr) {
	Default().logContext(DefaultContextProvider(), LevelDebug, msg, attrs...)
}

// DebugContext logs at [LevelDebug] with the package-level logger.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logContext(ctx, LevelDebug, msg, attrs...)
}

// Info logs at [LevelInfo] with the package-level logger.
func Info(msg string, attrs ...slog.Attr) {
	Default().logContext(DefaultContextProvider(), LevelInfo, msg, attrs...)
}

// InfoContext logs at [LevelInfo] with the package-level logger.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logContext(ctx, LevelInfo, msg, attrs...)
}

// Warn logs at [LevelWarn] with the package-level logger.
func Warn(msg string, attrs ...slog.Attr) {
	Default().logContext(DefaultContextProvider(), LevelWarn, msg, attrs...)
}

// WarnContext logs at [LevelWarn] with the package-level logger.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logContext(ctx, LevelWarn, msg, attrs...)
}

// Error logs at [LevelError] with the package-level logger.
func Error(msg string, attrs ...slog.Attr) {
	Default().logContext(DefaultContextProvider(), LevelError, msg, attrs...)
}

// ErrorContext logs at [LevelError] with the package-level logger.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logContext(ctx, LevelError, msg, attrs...)
}
