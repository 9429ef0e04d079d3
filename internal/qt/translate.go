package qt

import (
	"context"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/engine/task"
)

// NewReleaseTask creates the catalog compilation task for one translation
// source.
func NewReleaseTask(b *Build, unit *domain.Unit, ts *domain.Node) *task.Exec {
	t := task.NewExec("ts2qm", unit, unit.Env, b.Deps)
	t.SetInputs(ts)
	t.SetOutputs(ts.ChangeExt(".qm"))
	t.SetTemplate("${QT_LRELEASE}", "${LRELEASE_FLAGS}", "${SRC}", "-qm", "${TGT}")
	return t
}

// NewUpdateTask creates the string extraction task regenerating one
// translation source from the unit's compiled sources and forms. Extraction
// rewrites files in the source tree, so it stays behind an explicit opt-in.
func NewUpdateTask(b *Build, unit *domain.Unit, inputs []*domain.Node, ts *domain.Node) *task.Exec {
	t := task.NewExec("trans_update", unit, unit.Env, b.Deps)
	t.SetInputs(inputs...)
	t.SetOutputs(ts)
	t.SetTemplate("${QT_LUPDATE}", "${SRC}", "-ts", "${TGT}")
	return t
}

// CatalogManifest writes a synthesized resource manifest referencing the
// unit's compiled translation catalogs. It runs no external command.
type CatalogManifest struct {
	*task.Exec
}

// NewCatalogManifest creates the manifest task over the given catalog nodes.
func NewCatalogManifest(b *Build, unit *domain.Unit, catalogs []*domain.Node, out *domain.Node) *CatalogManifest {
	e := task.NewExec("qm2rcc", unit, unit.Env, b.Deps)
	e.SetInputs(catalogs...)
	e.SetOutputs(out)
	return &CatalogManifest{Exec: e}
}

// Run renders the manifest with catalog paths relative to the manifest's
// directory and persists the task signature.
func (t *CatalogManifest) Run(_ context.Context) error {
	out := t.Outputs()[0]
	dir := out.Dir()

	paths := make([]string, 0, len(t.Inputs()))
	for _, qm := range t.Inputs() {
		paths = append(paths, qm.PathFrom(dir))
	}
	if err := out.Write(SynthesizeManifest(paths)); err != nil {
		return err
	}
	return t.Commit()
}
