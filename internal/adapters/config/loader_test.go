package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/adapters/config"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newLoader(t *testing.T) *config.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	return config.NewLoader(log)
}

func writeConfig(t *testing.T, root, content string) string {
	t.Helper()
	path := filepath.Join(root, config.DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTree(t *testing.T, root string) *domain.Tree {
	t.Helper()
	tree, err := domain.NewTree(root)
	require.NoError(t, err)
	return tree
}

func TestLoader_Load(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "include"), 0o750))

	path := writeConfig(t, root, `
version: "1"
units:
  - name: app
    dir: src
    source: [main.cpp, icons.qrc]
    includes: [../include]
    features: [qt]
    defines: [QT_NO_DEBUG]
    moc: [widget.h]
    lang: [de]
    update: true
    langname: translations
`)

	tree := newTree(t, root)
	units, err := newLoader(t).Load(path, tree)
	require.NoError(t, err)
	require.Len(t, units, 1)

	u := units[0]
	assert.Equal(t, "app", u.Name)
	assert.Equal(t, 0, u.Idx)
	assert.Equal(t, "src", u.Dir.Rel())
	assert.Equal(t, []string{"main.cpp", "icons.qrc"}, u.Source)
	assert.True(t, u.HasFeature("qt"))
	assert.Equal(t, []string{"widget.h"}, u.Moc)
	assert.Equal(t, []string{"de"}, u.Lang)
	assert.True(t, u.Update)
	assert.Equal(t, "translations", u.LangName)

	require.Len(t, u.IncludeNodes, 1)
	assert.Equal(t, "include", u.IncludeNodes[0].Rel())
	assert.Equal(t, []string{u.IncludeNodes[0].Abs()}, u.Env.Get("INCPATHS"))
	assert.Equal(t, []string{"QT_NO_DEBUG"}, u.Env.Get("DEFINES"))
}

func TestLoader_SameNameGetsIncrementingIdx(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "b"), 0o750))

	path := writeConfig(t, root, `
units:
  - name: app
    dir: a
  - name: app
    dir: b
  - name: other
    dir: a
`)

	units, err := newLoader(t).Load(path, newTree(t, root))
	require.NoError(t, err)
	require.Len(t, units, 3)

	assert.Equal(t, 0, units[0].Idx)
	assert.Equal(t, 1, units[1].Idx)
	assert.Equal(t, 0, units[2].Idx)
}

func TestLoader_DuplicateUnit(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, `
units:
  - name: app
  - name: app
`)

	_, err := newLoader(t).Load(path, newTree(t, root))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateUnit)
}

func TestLoader_NoUnits(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, `version: "1"`)

	_, err := newLoader(t).Load(path, newTree(t, root))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoUnits)
}

func TestLoader_MissingFile(t *testing.T) {
	root := t.TempDir()
	_, err := newLoader(t).Load(filepath.Join(root, "absent.yaml"), newTree(t, root))
	require.Error(t, err)
}

func TestLoader_MalformedYAML(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "units: [unclosed")

	_, err := newLoader(t).Load(path, newTree(t, root))
	require.Error(t, err)
}

func TestLoader_UnnamedUnit(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, `
units:
  - dir: .
`)

	_, err := newLoader(t).Load(path, newTree(t, root))
	require.Error(t, err)
}

func TestLoader_MissingUnitDir(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, `
units:
  - name: app
    dir: nowhere
`)

	_, err := newLoader(t).Load(path, newTree(t, root))
	require.Error(t, err)
}

func TestLoader_UseMergesFlagBundle(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "qt", "include"), 0o750))

	path := writeConfig(t, root, `
libs:
  qt5core:
    defines: [QT_CORE_LIB]
    includes: [qt/include]
    flags: [-fPIC]
units:
  - name: app
    use: [qt5core, unknown]
`)

	units, err := newLoader(t).Load(path, newTree(t, root))
	require.NoError(t, err)
	require.Len(t, units, 1)

	u := units[0]
	assert.Equal(t, []string{"QT_CORE_LIB"}, u.Env.Get("DEFINES"))
	assert.Equal(t, []string{"-fPIC"}, u.Env.Get("CXXFLAGS"))
	require.Len(t, u.Env.Get("INCPATHS"), 1)
}

func TestLoader_SkipsMissingIncludeDir(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, `
units:
  - name: app
    includes: [no-such-dir]
`)

	units, err := newLoader(t).Load(path, newTree(t, root))
	require.NoError(t, err)
	assert.Empty(t, units[0].IncludeNodes)
}
