package qt

import (
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/engine/task"
)

// NewMocTask creates the meta-object generation task for one header.
func NewMocTask(unit *domain.Unit, env *domain.Env, deps task.Deps, header, generated *domain.Node) *task.Exec {
	t := task.NewExec("moc", unit, env, deps)
	t.SetInputs(header)
	t.SetOutputs(generated)
	t.SetTemplate(
		"${QT_MOC}",
		"${MOC_FLAGS}",
		"${MOCCPPPATH_ST:INCPATHS}",
		"${MOCDEFINES_ST:DEFINES}",
		"${SRC}",
		"${MOC_ST}",
		"${TGT}",
	)
	return t
}
