package domain

import "slices"

// Unit is a declared build unit: a named collection of sources and feature
// attributes, plus the tasks created for it. The optional attributes of the
// generator pipeline are explicit defaulted fields rather than free-form
// metadata.
type Unit struct {
	// Name is the target name of the unit.
	Name string
	// Idx is a per-target-name incrementing counter. It disambiguates
	// generated file names when several units in the same directory process
	// the same header.
	Idx int
	// Dir is the unit's base directory node.
	Dir *Node
	// Source lists the declared source files, relative to Dir. Hooks may
	// append generated sources during wiring.
	Source []string
	// Includes lists the declared include directories, relative to Dir.
	Includes []string
	// IncludeNodes are the resolved include directory nodes, in declared
	// order.
	IncludeNodes []*Node
	// Features lists the feature tags activating wiring hooks.
	Features []string
	// Defines lists preprocessor defines for compiled sources.
	Defines []string
	// Use lists library tags whose flags are merged into the unit env.
	Use []string

	// Moc lists headers to force-generate, independent of scanning.
	Moc []string
	// Lang lists translation catalogs, by file reference or bare name.
	Lang []string
	// Update enables translation-string extraction (opt-in via flag).
	Update bool
	// LangName, when set, embeds the compiled catalogs as a resource under
	// this name.
	LangName string

	// Env is the unit environment all task environments derive from.
	Env *Env

	// Tasks are all tasks owned by the unit.
	Tasks []Task
	// CompiledTasks are the object-producing tasks; their primary inputs
	// feed translation extraction.
	CompiledTasks []Task
}

// HasFeature reports whether the unit declares the given feature tag.
func (u *Unit) HasFeature(name string) bool {
	return slices.Contains(u.Features, name)
}

// Register records a task as owned by the unit.
func (u *Unit) Register(t Task) {
	u.Tasks = append(u.Tasks, t)
}

// RegisterCompiled records an object-producing task.
func (u *Unit) RegisterCompiled(t Task) {
	u.CompiledTasks = append(u.CompiledTasks, t)
}
