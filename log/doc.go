// Package log wraps [log/slog] with the small logging surface used by the
// template engine and its command line tools.
//
// A [Logger] is immutable. Options are applied when it is created with
// [Make] or derived with [Logger.Wrap], and [Logger.With] returns a copy
// carrying extra attributes. The zero Logger discards everything, which is
// what the template engine uses when no logger is configured.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339"),
//		log.WithCaller(true))
//
//	logger.Info("rendered", slog.String("template", name))
//
// # Levels
//
// In addition to the slog levels the package defines [LevelTrace], used for
// compiler and evaluator internals.
//
// # Formats
//
// [FormatText] output is pretty by default: aligned, and colored with
// lipgloss when the writer is a terminal. [FormatJSON] output is indented
// when pretty and one record per line otherwise.
//
// # Package Logger
//
// The package-level functions log through [Default], which writes to
// standard error. [Config] reconfigures it in place.
package log
