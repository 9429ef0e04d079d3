package qt

import (
	"fmt"
	"path"
	"strings"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/engine/task"
)

const defaultUIPattern = "ui_%s.h"

// NewUicTask creates the widget-form header generation task. The output name
// follows the configured pattern so that sources can include it by
// convention.
func NewUicTask(b *Build, unit *domain.Unit, form *domain.Node) *task.Exec {
	pattern := unit.Env.First("UI_PATTERN")
	if pattern == "" {
		pattern = defaultUIPattern
	}
	base := strings.TrimSuffix(form.Name(), path.Ext(form.Name()))
	header := form.Dir().FindOrDeclare(fmt.Sprintf(pattern, base))

	t := task.NewExec("uic", unit, unit.Env, b.Deps)
	t.SetInputs(form)
	t.SetOutputs(header)
	t.SetTemplate("${QT_UIC}", "${SRC}", "-o", "${TGT}")
	return t
}
