package log_test

import (
	"log/slog"
	"os"

	"github.com/ardnew/jinja/log"
)

func ExampleMake() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelInfo),
		log.WithTimeLayout("none"),
		log.WithPretty(false))

	logger.Debug("not shown")
	logger.Info("template rendered", slog.String("name", "greeting"), slog.Int("bytes", 12))

	// Output:
	// level=INFO msg="template rendered" name=greeting bytes=12
}

func ExampleLogger_With() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatJSON),
		log.WithTimeLayout("none"),
		log.WithPretty(false)).
		With(slog.String("component", "repl"))

	logger.Warn("history unavailable")

	// Output:
	// {"level":"WARN","msg":"history unavailable","component":"repl"}
}
