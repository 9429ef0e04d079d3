package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/adapters/config"
	"go.trai.ch/weft/internal/adapters/telemetry"
	"go.trai.ch/weft/internal/app"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// fakeToolchain skips binary discovery and hands out the flag tables
// directly.
type fakeToolchain struct{}

func (fakeToolchain) Configure(context.Context) (*domain.Env, error) {
	env := domain.NewEnv()
	env.Set("QT_MOC", "moc")
	env.Set("QT_RCC", "rcc")
	env.Set("QT_UIC", "uic")
	env.Set("QT_LRELEASE", "lrelease")
	env.Set("QT_LUPDATE", "lupdate")
	env.Set("CXX", "c++")
	env.Set("MOC_ST", "-o")
	env.Set("MOCCPPPATH_ST", "-I%s")
	env.Set("MOCDEFINES_ST", "-D%s")
	env.Set("CPPPATH_ST", "-I%s")
	env.Set("DEFINES_ST", "-D%s")
	env.Set("UI_PATTERN", "ui_%s.h")
	env.Set("LRELEASE_FLAGS", "-silent")
	return env, nil
}

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newApp(t *testing.T, commands *int) *app.App {
	t.Helper()
	ctrl := gomock.NewController(t)

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	// Stand in for the external generators: touch the output file, which
	// is the last word of every template used here.
	runner := mocks.NewMockCommandRunner(ctrl)
	runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, argv []string, _ string) error {
			*commands++
			return os.WriteFile(argv[len(argv)-1], []byte("out"), 0o600)
		}).AnyTimes()

	return app.New(log, config.NewLoader(log), fakeToolchain{}, runner, telemetry.NewNoop())
}

func TestApp_Build(t *testing.T) {
	root := t.TempDir()
	write(t, root, "weft.yaml", `
units:
  - name: app
    features: [qt]
    source: [main.cpp]
    moc: [widget.h]
`)
	write(t, root, "main.cpp", "int main() { return 0; }\n")
	write(t, root, "widget.h", "class W {};\n")

	commands := 0
	a := newApp(t, &commands)

	err := a.Build(context.Background(), app.BuildOptions{
		Root:       root,
		ConfigPath: filepath.Join(root, "weft.yaml"),
		Jobs:       2,
	})
	require.NoError(t, err)

	// One generation run plus two compiles.
	assert.Equal(t, 3, commands)
	assert.FileExists(t, filepath.Join(root, "generated_widget.0.cpp"))
	assert.FileExists(t, filepath.Join(root, ".weft", "state.json"))
}

func TestApp_Build_Incremental(t *testing.T) {
	root := t.TempDir()
	write(t, root, "weft.yaml", `
units:
  - name: app
    features: [qt]
    source: [main.cpp]
`)
	write(t, root, "main.cpp", "int main() { return 0; }\n")

	commands := 0
	opts := app.BuildOptions{
		Root:       root,
		ConfigPath: filepath.Join(root, "weft.yaml"),
		Jobs:       1,
	}

	require.NoError(t, newApp(t, &commands).Build(context.Background(), opts))
	assert.Equal(t, 1, commands)

	// Unchanged input, present output: everything is up to date.
	commands = 0
	require.NoError(t, newApp(t, &commands).Build(context.Background(), opts))
	assert.Equal(t, 0, commands)

	// Touching the source invalidates the stored signature.
	write(t, root, "main.cpp", "int main() { return 1; }\n")
	commands = 0
	require.NoError(t, newApp(t, &commands).Build(context.Background(), opts))
	assert.Equal(t, 1, commands)
}

func TestApp_Build_DiscoveryRunsGeneration(t *testing.T) {
	root := t.TempDir()
	write(t, root, "weft.yaml", `
units:
  - name: app
    features: [qt]
    source: [widget.cpp]
`)
	write(t, root, "widget.cpp", "#include \"widget.moc\"\nint main() { return 0; }\n")

	commands := 0
	a := newApp(t, &commands)

	err := a.Build(context.Background(), app.BuildOptions{
		Root:       root,
		ConfigPath: filepath.Join(root, "weft.yaml"),
		Jobs:       1,
	})
	require.NoError(t, err)

	// The directive resolved to the source itself, ran moc, then compiled.
	assert.Equal(t, 2, commands)
	assert.FileExists(t, filepath.Join(root, "widget.moc"))
}

func TestApp_Build_MissingConfig(t *testing.T) {
	root := t.TempDir()

	commands := 0
	a := newApp(t, &commands)

	err := a.Build(context.Background(), app.BuildOptions{
		Root:       root,
		ConfigPath: filepath.Join(root, "weft.yaml"),
	})
	require.Error(t, err)
}
