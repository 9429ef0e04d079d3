package qt

import (
	"fmt"
	"path"
	"strings"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/zerr"
)

type kinder interface {
	Kind() string
}

// ProcessUnit wires up all tasks of one build unit: explicit generation
// requests, per-extension source dispatch, translation handling and
// generator flag derivation. Tasks are registered on the unit in creation
// order.
func ProcessUnit(b *Build, u *domain.Unit) error {
	preds, err := processMocs(b, u)
	if err != nil {
		return err
	}
	if err := dispatchSources(b, u, preds); err != nil {
		return err
	}
	if err := applyTranslations(b, u); err != nil {
		return err
	}
	applyGeneratorFlags(u)
	return nil
}

// processMocs creates one generation task per explicitly listed header,
// independent of scanning. The generated source joins the unit's source list
// under a collision-free name and is compiled like any declared source.
func processMocs(b *Build, u *domain.Unit) (map[*domain.Node]domain.Task, error) {
	preds := make(map[*domain.Node]domain.Task, len(u.Moc))

	for _, name := range u.Moc {
		header := u.Dir.Find(name)
		if header == nil {
			return nil, zerr.With(zerr.With(domain.ErrMissingSource,
				"header", name), "unit", u.Name)
		}

		base := strings.TrimSuffix(header.Name(), path.Ext(header.Name()))
		generated := header.Dir().FindOrDeclare(
			fmt.Sprintf("generated_%s.%d.cpp", base, u.Idx))

		tsk := NewMocTask(u, u.Env, b.Deps, header, generated)
		u.Register(tsk)

		preds[generated] = tsk
		u.Source = append(u.Source, generated.PathFrom(u.Dir))
	}
	return preds, nil
}

// dispatchSources routes every declared source to its extension hook.
func dispatchSources(b *Build, u *domain.Unit, preds map[*domain.Node]domain.Task) error {
	for _, s := range u.Source {
		node := u.Dir.Find(s)
		if node == nil {
			return zerr.With(zerr.With(domain.ErrMissingSource,
				"source", s), "unit", u.Name)
		}

		switch path.Ext(s) {
		case ".cpp", ".cc", ".cxx", ".C":
			cs := NewCompiledSource(b, u, node)
			if pred, ok := preds[node]; ok {
				cs.AddRunAfter(pred)
			}
			u.Register(cs)
			u.RegisterCompiled(cs)

		case ".qrc":
			rcc := NewRccTask(b, u, node)
			u.Register(rcc)

			cs := NewCompiledSource(b, u, rcc.Outputs()[0])
			cs.AddRunAfter(rcc)
			u.Register(cs)
			u.RegisterCompiled(cs)

		case ".ui":
			u.Register(NewUicTask(b, u, node))

		case ".ts":
			u.Lang = append(u.Lang, s)

		default:
			return zerr.With(zerr.With(domain.ErrMissingSource,
				"source", s), "reason", "no hook for extension")
		}
	}
	return nil
}

// applyTranslations compiles the unit's translation catalogs, optionally
// regenerates them from the sources first, and embeds them as a resource
// when a catalog name is set.
func applyTranslations(b *Build, u *domain.Unit) error {
	if len(u.Lang) == 0 {
		return nil
	}

	var (
		releases []domain.Task
		catalogs []*domain.Node
	)
	for _, lang := range u.Lang {
		name := lang
		if path.Ext(name) != ".ts" {
			name += ".ts"
		}
		ts := u.Dir.Find(name)
		if ts == nil {
			return zerr.With(zerr.With(domain.ErrMissingSource,
				"catalog", name), "unit", u.Name)
		}

		rel := NewReleaseTask(b, u, ts)
		u.Register(rel)
		releases = append(releases, rel)
		catalogs = append(catalogs, rel.Outputs()[0])
	}

	if u.Update && b.Translate {
		inputs := extractionInputs(u)
		for _, rel := range releases {
			upd := NewUpdateTask(b, u, inputs, rel.Inputs()[0])
			u.Register(upd)
			// Extraction rewrites the catalog the release reads.
			rel.AddRunAfter(upd)
		}
	}

	if u.LangName != "" {
		manifest := u.Dir.FindOrDeclare(u.LangName + ".qrc")

		cm := NewCatalogManifest(b, u, catalogs, manifest)
		cm.AddRunAfter(releases...)
		u.Register(cm)

		rcc := NewRccTask(b, u, manifest)
		rcc.AddRunAfter(cm)
		u.Register(rcc)

		cs := NewCompiledSource(b, u, rcc.Outputs()[0])
		cs.AddRunAfter(rcc)
		u.Register(cs)
		u.RegisterCompiled(cs)
	}
	return nil
}

// extractionInputs collects what string extraction reads: the primary input
// of every compile task plus every widget form.
func extractionInputs(u *domain.Unit) []*domain.Node {
	var inputs []*domain.Node
	for _, t := range u.CompiledTasks {
		if len(t.Inputs()) > 0 {
			inputs = append(inputs, t.Inputs()[0])
		}
	}
	for _, t := range u.Tasks {
		if k, ok := t.(kinder); ok && k.Kind() == "uic" {
			inputs = append(inputs, t.Inputs()[0])
		}
	}
	return inputs
}

// applyGeneratorFlags forwards the unit's compiler define and include flags
// to the code generator. Only flags carrying the define or include markers
// are forwarded; MSVC-style markers are normalized to their dash form.
func applyGeneratorFlags(u *domain.Unit) {
	u.Env.Append("MOC_FLAGS", TranslateFlags(u.Env.Get("CXXFLAGS"))...)
}

// TranslateFlags filters compiler flags down to defines and include paths.
func TranslateFlags(flags []string) []string {
	var out []string
	for _, flag := range flags {
		if len(flag) < 2 {
			continue
		}
		switch flag[:2] {
		case "-D", "-I":
			out = append(out, flag)
		case "/D", "/I":
			out = append(out, "-"+flag[1:])
		}
	}
	return out
}
