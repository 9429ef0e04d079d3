// Package main is the entry point for the weft CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"go.trai.ch/weft/cmd/weft/commands"
	"go.trai.ch/weft/internal/adapters/config"
	"go.trai.ch/weft/internal/adapters/logger"
	"go.trai.ch/weft/internal/adapters/shell"
	"go.trai.ch/weft/internal/adapters/telemetry"
	"go.trai.ch/weft/internal/adapters/toolchain"
	"go.trai.ch/weft/internal/app"
	_ "go.trai.ch/weft/internal/wiring"
)

func main() {
	if err := run(); err != nil {
		// zerr prints a pretty error report with stack trace and metadata when using %+v
		_, _ = fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	log := logger.New()
	application := app.New(
		log,
		config.NewLoader(log),
		toolchain.New(log),
		shell.NewExecutor(log),
		telemetry.New(),
	)

	return commands.New(application).Execute(ctx)
}
