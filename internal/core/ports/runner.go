package ports

import "context"

// CommandRunner defines the interface for invoking external generator and
// compiler commands.
//
//go:generate go run go.uber.org/mock/mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks
type CommandRunner interface {
	// Run executes the given argv in the given working directory.
	// It returns an error when the command cannot start or exits non-zero.
	Run(ctx context.Context, argv []string, dir string) error
}
