package commands_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/cmd/weft/commands"
	"go.trai.ch/weft/internal/adapters/config"
	"go.trai.ch/weft/internal/adapters/telemetry"
	"go.trai.ch/weft/internal/app"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type stubToolchain struct{}

func (stubToolchain) Configure(context.Context) (*domain.Env, error) {
	return domain.NewEnv(), nil
}

func newCLI(t *testing.T) *commands.CLI {
	t.Helper()
	ctrl := gomock.NewController(t)

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	runner := mocks.NewMockCommandRunner(ctrl)
	runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	a := app.New(log, config.NewLoader(log), stubToolchain{}, runner, telemetry.NewNoop())
	return commands.New(a)
}

func TestRoot_Help(t *testing.T) {
	cli := newCLI(t)
	cli.SetArgs([]string{"--help"})
	require.NoError(t, cli.Execute(context.Background()))
}

func TestVersion(t *testing.T) {
	cli := newCLI(t)
	cli.SetArgs([]string{"version"})
	require.NoError(t, cli.Execute(context.Background()))
}

func TestBuild_MissingConfig(t *testing.T) {
	root := t.TempDir()

	cli := newCLI(t)
	cli.SetArgs([]string{"build", "--root", root, "-c", filepath.Join(root, "weft.yaml")})
	require.Error(t, cli.Execute(context.Background()))
}

func TestBuild_EmptyUnit(t *testing.T) {
	root := t.TempDir()
	configPath := filepath.Join(root, "weft.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("units:\n  - name: app\n"), 0o600))

	cli := newCLI(t)
	cli.SetArgs([]string{"build", "--root", root, "-c", configPath})
	require.NoError(t, cli.Execute(context.Background()))
}

func TestBuild_RejectsPositionalArgs(t *testing.T) {
	cli := newCLI(t)
	cli.SetArgs([]string{"build", "unexpected"})
	require.Error(t, cli.Execute(context.Background()))
}
