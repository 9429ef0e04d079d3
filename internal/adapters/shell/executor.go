// Package shell provides the external command runner adapter.
package shell

import (
	"context"
	"os/exec"
	"strings"

	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

// Executor implements ports.CommandRunner using os/exec. Command output is
// streamed line-wise to the logger.
type Executor struct {
	logger ports.Logger
}

var _ ports.CommandRunner = (*Executor)(nil)

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Run executes the given argv in the given working directory. An empty dir
// runs the command in the current directory. Generator and compiler
// invocations inherit the process environment; tool paths are resolved at
// configuration time, not here.
func (e *Executor) Run(ctx context.Context, argv []string, dir string) error {
	if len(argv) == 0 {
		return nil
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec // argv comes from the expanded task template
	cmd.Dir = dir
	cmd.Stdout = &logWriter{logger: e.logger, level: "info"}
	cmd.Stderr = &logWriter{logger: e.logger, level: "error"}

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return zerr.With(zerr.With(zerr.Wrap(err, "command failed"),
			"command", argv[0]), "exit_code", exitCode)
	}
	return nil
}

type logWriter struct {
	logger ports.Logger
	level  string
}

// Write forwards output line-wise. Partial lines are not buffered; the
// generators write whole diagnostics per write in practice.
func (w *logWriter) Write(p []byte) (n int, err error) {
	lines := strings.Split(strings.TrimSuffix(string(p), "\n"), "\n")
	for _, line := range lines {
		if line == "" {
			continue
		}
		if w.level == "info" {
			w.logger.Info(line)
		} else {
			w.logger.Error(zerr.New(line))
		}
	}
	return len(p), nil
}
