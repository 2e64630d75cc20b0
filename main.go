package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/jinja/cli"
	"github.com/ardnew/jinja/log"
)

func main() {
	err := cli.Run(context.Background(), os.Exit, os.Args[1:]...)
	if err != nil {
		log.Error("render failed", slog.Any("error", err))
		os.Exit(1)
	}
}
