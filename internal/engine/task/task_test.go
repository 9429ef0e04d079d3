package task_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports/mocks"
	"go.trai.ch/weft/internal/engine/task"
	"go.uber.org/mock/gomock"
)

func newTestTree(t *testing.T) *domain.Tree {
	t.Helper()
	tree, err := domain.NewTree(t.TempDir())
	require.NoError(t, err)
	return tree
}

func writeNode(t *testing.T, tree *domain.Tree, rel, content string) *domain.Node {
	t.Helper()
	n := tree.FindOrDeclare(rel)
	require.NoError(t, n.Write([]byte(content)))
	return n
}

func TestExec_Expand(t *testing.T) {
	tree := newTestTree(t)
	src := writeNode(t, tree, "src/widget.h", "class Widget {};\n")
	tgt := tree.FindOrDeclare("src/widget.moc")

	env := domain.NewEnv()
	env.Set("QT_MOC", "/opt/qt/bin/moc")
	env.Set("MOC_FLAGS", "-i")
	env.Set("MOCCPPPATH_ST", "-I%s")
	env.Set("INCPATHS", "include", "src")

	tsk := task.NewExec("moc", &domain.Unit{}, env, task.Deps{})
	tsk.SetInputs(src)
	tsk.SetOutputs(tgt)
	tsk.SetTemplate("${QT_MOC}", "${MOC_FLAGS}", "${MOCCPPPATH_ST:INCPATHS}", "${EMPTY}", "${SRC}", "-o", "${TGT}")

	argv, err := tsk.Expand()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/opt/qt/bin/moc", "-i", "-Iinclude", "-Isrc",
		src.Abs(), "-o", tgt.Abs(),
	}, argv)
}

func TestExec_Expand_InlineVar(t *testing.T) {
	tree := newTestTree(t)
	env := domain.NewEnv()
	env.Set("RCNAME", "icons")

	tsk := task.NewExec("rcc", &domain.Unit{}, env, task.Deps{})
	tsk.SetTemplate("rcc", "-name", "${RCNAME}")
	_ = tree

	argv, err := tsk.Expand()
	require.NoError(t, err)
	assert.Equal(t, []string{"rcc", "-name", "icons"}, argv)
}

func TestExec_Readiness_DefersOnUnfinishedPredecessor(t *testing.T) {
	tree := newTestTree(t)
	src := writeNode(t, tree, "a.cpp", "int a;\n")

	pred := task.NewExec("moc", &domain.Unit{}, domain.NewEnv(), task.Deps{})
	tsk := task.NewExec("cxx", &domain.Unit{}, domain.NewEnv(), task.Deps{})
	tsk.SetInputs(src)
	tsk.SetTemplate("cc", "${SRC}")
	tsk.AddRunAfter(pred)

	r, err := tsk.Readiness()
	require.NoError(t, err)
	assert.Equal(t, domain.AskLater, r)

	// Repeated queries with no new information keep deferring.
	r, err = tsk.Readiness()
	require.NoError(t, err)
	assert.Equal(t, domain.AskLater, r)

	pred.SetState(domain.StateSuccess)
	r, err = tsk.Readiness()
	require.NoError(t, err)
	assert.Equal(t, domain.ReadyToRun, r)
}

func TestExec_Readiness_FailedPredecessorIsFatal(t *testing.T) {
	tree := newTestTree(t)
	src := writeNode(t, tree, "a.cpp", "int a;\n")

	pred := task.NewExec("moc", &domain.Unit{}, domain.NewEnv(), task.Deps{})
	pred.SetState(domain.StateFailed)

	tsk := task.NewExec("cxx", &domain.Unit{}, domain.NewEnv(), task.Deps{})
	tsk.SetInputs(src)
	tsk.SetTemplate("cc", "${SRC}")
	tsk.AddRunAfter(pred)

	_, err := tsk.Readiness()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "predecessor failed")
}

func TestExec_Readiness_SkipsWhenUpToDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tree := newTestTree(t)
	src := writeNode(t, tree, "a.cpp", "int a;\n")
	out := writeNode(t, tree, "a.o", "obj")

	store := mocks.NewMockSignatureStore(ctrl)
	tsk := task.NewExec("cxx", &domain.Unit{}, domain.NewEnv(), task.Deps{Store: store})
	tsk.SetInputs(src)
	tsk.SetOutputs(out)
	tsk.SetTemplate("cc", "${SRC}", "-o", "${TGT}")

	sig, err := tsk.Signature()
	require.NoError(t, err)

	store.EXPECT().Get(tsk.ID()).Return(&domain.TaskRecord{TaskID: tsk.ID(), Signature: sig}, nil)
	r, err := tsk.Readiness()
	require.NoError(t, err)
	assert.Equal(t, domain.SkipRun, r)
}

func TestExec_Readiness_RunsWhenOutputMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tree := newTestTree(t)
	src := writeNode(t, tree, "a.cpp", "int a;\n")
	out := tree.FindOrDeclare("a.o")

	store := mocks.NewMockSignatureStore(ctrl)
	tsk := task.NewExec("cxx", &domain.Unit{}, domain.NewEnv(), task.Deps{Store: store})
	tsk.SetInputs(src)
	tsk.SetOutputs(out)
	tsk.SetTemplate("cc", "${SRC}", "-o", "${TGT}")

	sig, err := tsk.Signature()
	require.NoError(t, err)

	store.EXPECT().Get(tsk.ID()).Return(&domain.TaskRecord{TaskID: tsk.ID(), Signature: sig}, nil)
	r, err := tsk.Readiness()
	require.NoError(t, err)
	assert.Equal(t, domain.ReadyToRun, r)
}

func TestExec_Run(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tree := newTestTree(t)
	src := writeNode(t, tree, "a.ts", "<TS/>")
	out := tree.FindOrDeclare("a.qm")

	env := domain.NewEnv()
	env.Set("QT_LRELEASE", "lrelease")

	runner := mocks.NewMockCommandRunner(ctrl)
	store := mocks.NewMockSignatureStore(ctrl)

	tsk := task.NewExec("ts2qm", &domain.Unit{}, env, task.Deps{Runner: runner, Store: store})
	tsk.SetInputs(src)
	tsk.SetOutputs(out)
	tsk.SetTemplate("${QT_LRELEASE}", "${SRC}", "-qm", "${TGT}")

	runner.EXPECT().Run(gomock.Any(), []string{"lrelease", src.Abs(), "-qm", out.Abs()}, "").Return(nil)
	store.EXPECT().Put(gomock.Any()).DoAndReturn(func(rec domain.TaskRecord) error {
		assert.Equal(t, tsk.ID(), rec.TaskID)
		assert.NotEmpty(t, rec.Signature)
		return nil
	})

	require.NoError(t, tsk.Run(context.Background()))
}

func TestExec_Run_CommandFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tree := newTestTree(t)
	src := writeNode(t, tree, "a.ts", "<TS/>")

	runner := mocks.NewMockCommandRunner(ctrl)
	store := mocks.NewMockSignatureStore(ctrl)

	tsk := task.NewExec("ts2qm", &domain.Unit{}, domain.NewEnv(), task.Deps{Runner: runner, Store: store})
	tsk.SetInputs(src)
	tsk.SetTemplate("lrelease", "${SRC}")

	runner.EXPECT().Run(gomock.Any(), gomock.Any(), "").Return(errors.New("exit status 1"))
	// No Put on failure.

	err := tsk.Run(context.Background())
	require.Error(t, err)
}

func TestExec_ScanRunsOnce(t *testing.T) {
	tree := newTestTree(t)
	src := writeNode(t, tree, "a.qrc", "<RCC/>")
	dep := writeNode(t, tree, "img.png", "png")

	calls := 0
	tsk := task.NewExec("rcc", &domain.Unit{}, domain.NewEnv(), task.Deps{})
	tsk.SetInputs(src)
	tsk.SetTemplate("rcc", "${SRC}")
	tsk.SetScan(func() ([]*domain.Node, []string, error) {
		calls++
		return []*domain.Node{dep}, []string{"missing.png"}, nil
	})

	_, _, err := tsk.Scan()
	require.NoError(t, err)
	_, err = tsk.Signature()
	require.NoError(t, err)
	nodes, names, err := tsk.Scan()
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Len(t, nodes, 1)
	assert.Equal(t, []string{"missing.png"}, names)
}

func TestExec_SignatureTracksScanDeps(t *testing.T) {
	tree := newTestTree(t)
	src := writeNode(t, tree, "a.qrc", "<RCC/>")
	dep := writeNode(t, tree, "img.png", "v1")

	build := func() *task.Exec {
		tsk := task.NewExec("rcc", &domain.Unit{}, domain.NewEnv(), task.Deps{})
		tsk.SetInputs(src)
		tsk.SetTemplate("rcc", "${SRC}")
		tsk.SetScan(func() ([]*domain.Node, []string, error) {
			return []*domain.Node{dep}, nil, nil
		})
		return tsk
	}

	before, err := build().Signature()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(tree.Root(), "img.png"), []byte("v2"), 0o600))

	after, err := build().Signature()
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestExec_InvalidateSignature(t *testing.T) {
	tree := newTestTree(t)
	src := writeNode(t, tree, "a.cpp", "int a;\n")

	tsk := task.NewExec("cxx", &domain.Unit{}, domain.NewEnv(), task.Deps{})
	tsk.SetInputs(src)
	tsk.SetTemplate("cc", "${SRC}")

	first, err := tsk.Signature()
	require.NoError(t, err)

	pred := task.NewExec("moc", &domain.Unit{}, domain.NewEnv(), task.Deps{})
	pred.SetState(domain.StateSuccess)
	tsk.AddRunAfter(pred)
	tsk.InvalidateSignature()

	second, err := tsk.Signature()
	require.NoError(t, err)
	// Same content, same command: identical after recomputation.
	assert.Equal(t, first, second)
}

func TestExec_AddRunAfterDeduplicates(t *testing.T) {
	pred := task.NewExec("moc", &domain.Unit{}, domain.NewEnv(), task.Deps{})
	tsk := task.NewExec("cxx", &domain.Unit{}, domain.NewEnv(), task.Deps{})

	tsk.AddRunAfter(pred)
	tsk.AddRunAfter(pred)

	assert.Len(t, tsk.RunAfter(), 1)
}
