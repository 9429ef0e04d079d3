// Package toolchain locates the generator binaries and produces the
// finalized environment the pipeline expands its command templates against.
package toolchain

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

// tool binds an environment variable to the candidate binary names tried in
// order.
type tool struct {
	envVar     string
	candidates []string
}

var tools = []tool{
	{"QT_MOC", []string{"moc-qt5", "moc"}},
	{"QT_RCC", []string{"rcc-qt5", "rcc"}},
	{"QT_UIC", []string{"uic-qt5", "uic"}},
	{"QT_LRELEASE", []string{"lrelease-qt5", "lrelease"}},
	{"QT_LUPDATE", []string{"lupdate-qt5", "lupdate"}},
}

// Config discovers tools during the configuration phase.
type Config struct {
	logger ports.Logger

	// getenv and probe are swappable for tests.
	getenv func(string) string
	probe  func(ctx context.Context, path string) (string, error)
}

// New creates a Config reading the process environment.
func New(logger ports.Logger) *Config {
	return &Config{
		logger: logger,
		getenv: os.Getenv,
		probe:  probeVersion,
	}
}

// Configure locates every generator binary and returns the environment
// holding the tool paths and the flag tables. A missing binary or an
// unsupported widget-form generator version is fatal: no task graph is
// built on a half-configured toolchain.
func (c *Config) Configure(ctx context.Context) (*domain.Env, error) {
	env := domain.NewEnv()
	dirs := c.searchDirs()

	for _, t := range tools {
		path := c.find(t.candidates, dirs)
		if path == "" {
			return nil, zerr.With(zerr.With(domain.ErrToolNotFound,
				"tool", t.candidates[0]), "tried", strings.Join(t.candidates, ", "))
		}
		c.logger.Info(fmt.Sprintf("checking for %s: %s", t.candidates[0], path))
		env.Set(t.envVar, path)
	}

	if err := c.checkUicVersion(ctx, env.First("QT_UIC")); err != nil {
		return nil, err
	}

	cxx := c.getenv("CXX")
	if cxx == "" {
		cxx = "c++"
	}
	env.Set("CXX", cxx)

	env.Set("MOC_ST", "-o")
	env.Set("MOCCPPPATH_ST", "-I%s")
	env.Set("MOCDEFINES_ST", "-D%s")
	env.Set("CPPPATH_ST", "-I%s")
	env.Set("DEFINES_ST", "-D%s")
	env.Set("UI_PATTERN", "ui_%s.h")
	env.Set("LRELEASE_FLAGS", "-silent")

	return env, nil
}

// searchDirs returns the explicit tool directories: QT5_BIN entries first,
// then QT5_ROOT/bin. PATH is the implicit fallback in find.
func (c *Config) searchDirs() []string {
	var dirs []string
	if bin := c.getenv("QT5_BIN"); bin != "" {
		dirs = append(dirs, filepath.SplitList(bin)...)
	}
	if root := c.getenv("QT5_ROOT"); root != "" {
		dirs = append(dirs, filepath.Join(root, "bin"))
	}
	return dirs
}

func (c *Config) find(candidates, dirs []string) string {
	for _, name := range candidates {
		for _, dir := range dirs {
			path := filepath.Join(dir, name)
			if isExecutable(path) {
				return path
			}
		}
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	mode := info.Mode()
	return !mode.IsDir() && mode&0o111 != 0
}

// checkUicVersion rejects the widget-form generators of the unsupported
// major versions 3 and 4.
func (c *Config) checkUicVersion(ctx context.Context, uic string) error {
	version, err := c.probe(ctx, uic)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to probe uic version"), "tool", uic)
	}
	if strings.HasPrefix(version, "3.") || strings.HasPrefix(version, "4.") {
		return zerr.With(zerr.With(domain.ErrToolVersion,
			"tool", uic), "version", version)
	}
	return nil
}

// probeVersion runs `<uic> -version` and returns the last whitespace field
// of its output. Older generators print the banner on stderr, so both
// streams are read.
func probeVersion(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, path, "-version") //nolint:gosec // Tool path discovered above
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", err
	}

	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return "", zerr.New("version probe produced no output")
	}
	return fields[len(fields)-1], nil
}
