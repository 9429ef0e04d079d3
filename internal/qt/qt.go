// Package qt integrates the Qt code-generator pipeline (moc, rcc, uic,
// lrelease, lupdate) into the task engine.
//
// Compiled C++ sources may reference generated artifacts that are only
// known after scanning the source for `#include "<base>.moc"` directives.
// The corresponding generation tasks are created dynamically during
// scheduling and injected at the front of the outstanding queue, so a
// compiled source never starts before all its generation sub-tasks have
// completed.
package qt

import (
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/weft/internal/engine/task"
)

// FeatureTag activates the pipeline for a build unit.
const FeatureTag = "qt"

// Build is the build-scoped context shared by wiring and discovery. It owns
// the task cache and the injection side channel; both are only touched from
// the scheduling goroutine.
type Build struct {
	Tree     *domain.Tree
	Deps     task.Deps
	Injector ports.Injector
	Cache    *TaskCache

	// Manifest parses resource manifests for rcc staleness scanning.
	// A nil parser degrades to an empty dependency list plus a warning.
	Manifest ManifestParser

	// Translate enables translation-string extraction tasks (the
	// --translate command-line opt-in).
	Translate bool
}

// NewBuild creates the build context.
func NewBuild(tree *domain.Tree, deps task.Deps, injector ports.Injector) *Build {
	return &Build{
		Tree:     tree,
		Deps:     deps,
		Injector: injector,
		Cache:    NewTaskCache(injector),
		Manifest: XMLManifest{},
	}
}
