// Package app implements the application layer for weft.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"go.trai.ch/weft/internal/adapters/state"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/weft/internal/engine/scheduler"
	"go.trai.ch/weft/internal/engine/task"
	"go.trai.ch/weft/internal/qt"
	"go.trai.ch/zerr"
)

// Toolchain produces the finalized tool environment during the
// configuration phase.
type Toolchain interface {
	Configure(ctx context.Context) (*domain.Env, error)
}

// App represents the main application logic.
type App struct {
	logger    ports.Logger
	loader    ports.UnitLoader
	toolchain Toolchain
	runner    ports.CommandRunner
	telemetry ports.Telemetry
}

// New creates a new App instance.
func New(logger ports.Logger, loader ports.UnitLoader, tc Toolchain, runner ports.CommandRunner, telemetry ports.Telemetry) *App {
	return &App{
		logger:    logger,
		loader:    loader,
		toolchain: tc,
		runner:    runner,
		telemetry: telemetry,
	}
}

// BuildOptions parameterizes one build invocation.
type BuildOptions struct {
	// Root is the build root directory.
	Root string
	// ConfigPath is the unit declaration file.
	ConfigPath string
	// Jobs bounds task parallelism; zero means one worker per CPU.
	Jobs int
	// Translate enables translation-string extraction tasks.
	Translate bool
}

// Build runs one full build: configure the toolchain, load the units, wire
// up their task graphs and execute them.
func (a *App) Build(ctx context.Context, opts BuildOptions) error {
	defer a.telemetry.Close() //nolint:errcheck // Best effort flush

	jobs := opts.Jobs
	if jobs < 1 {
		jobs = runtime.NumCPU()
	}

	toolEnv, err := a.toolchain.Configure(ctx)
	if err != nil {
		return zerr.Wrap(err, "toolchain configuration failed")
	}

	tree, err := domain.NewTree(opts.Root)
	if err != nil {
		return err
	}

	store, err := state.NewStore(filepath.Join(tree.Root(), state.DefaultPath))
	if err != nil {
		return err
	}

	units, err := a.loader.Load(opts.ConfigPath, tree)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	producer := scheduler.New(a.logger, a.telemetry)
	build := qt.NewBuild(tree, task.Deps{
		Runner: a.runner,
		Store:  store,
		Logger: a.logger,
	}, producer)
	build.Translate = opts.Translate

	var tasks []domain.Task
	for _, u := range units {
		if !u.HasFeature(qt.FeatureTag) {
			a.logger.Warn(fmt.Sprintf("unit %s does not use the %s feature, skipping", u.Name, qt.FeatureTag))
			continue
		}
		mergeEnv(u.Env, toolEnv)
		if err := qt.ProcessUnit(build, u); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to wire unit"), "unit", u.Name)
		}
		tasks = append(tasks, u.Tasks...)
	}

	if len(tasks) == 0 {
		a.logger.Info("nothing to do")
		return nil
	}

	if err := producer.Run(ctx, tasks, jobs); err != nil {
		return zerr.Wrap(err, "build execution failed")
	}
	return nil
}

// mergeEnv copies the toolchain variables into a unit environment. Unit
// declarations never set tool variables, so replacing is safe.
func mergeEnv(dst, src *domain.Env) {
	for _, key := range src.Keys() {
		dst.Set(key, src.Get(key)...)
	}
}
