package qt

import (
	"path"
	"strings"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/engine/task"
	"go.trai.ch/zerr"
)

// HeaderExts are the extensions tried, in order, when resolving a generation
// directive to a header.
var HeaderExts = []string{".h", ".hpp", ".hxx", ".hh"}

// CompiledSource compiles one C++ source to an object file and performs
// dynamic dependency discovery: on its first readiness query it scans the
// source for generation directives, creates the matching generation tasks
// through the build cache and registers them as predecessors.
type CompiledSource struct {
	*task.Exec

	build   *Build
	mocDone bool
}

// NewCompiledSource creates the compile task for the given source node.
func NewCompiledSource(b *Build, unit *domain.Unit, src *domain.Node) *CompiledSource {
	e := task.NewExec("cxx", unit, unit.Env, b.Deps)
	e.SetInputs(src)
	e.SetOutputs(src.ChangeExt(".o"))
	e.SetTemplate(
		"${CXX}",
		"${CXXFLAGS}",
		"${CPPPATH_ST:INCPATHS}",
		"${DEFINES_ST:DEFINES}",
		"-c",
		"${SRC}",
		"-o",
		"${TGT}",
	)

	t := &CompiledSource{Exec: e, build: b}
	e.SetScan(func() ([]*domain.Node, []string, error) {
		return ScanSource(src, t.searchDirs())
	})
	return t
}

// searchDirs returns the directive search path: the source's directory
// followed by the unit's declared include directories, in declared order.
func (t *CompiledSource) searchDirs() []*domain.Node {
	src := t.Inputs()[0]
	return append([]*domain.Node{src.Dir()}, t.Unit().IncludeNodes...)
}

// Readiness runs directive discovery exactly once before delegating to the
// standard query. Discovery only starts once every predecessor known so far
// has finished, so generated inputs of the source exist when it is scanned.
func (t *CompiledSource) Readiness() (domain.Readiness, error) {
	if !t.mocDone {
		for _, p := range t.RunAfter() {
			if !p.State().Finished() {
				return domain.AskLater, nil
			}
		}
		if err := t.addMocTasks(); err != nil {
			return domain.ReadyToRun, err
		}
	}
	return t.Exec.Readiness()
}

// addMocTasks resolves every generation directive of the source to a header
// and wires up the generation task for it. A directive that resolves to no
// header is a hard error.
func (t *CompiledSource) addMocTasks() error {
	t.mocDone = true

	src := t.Inputs()[0]
	_, names, err := t.Scan()
	if err != nil {
		return err
	}
	// Any signature computed before this point cannot account for the tasks
	// created below.
	t.InvalidateSignature()

	dirs := t.searchDirs()
	ownBase := strings.TrimSuffix(src.Name(), path.Ext(src.Name()))

	seen := make(map[string]struct{})
	for _, name := range names {
		if !strings.HasSuffix(name, directiveExt) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		base := strings.TrimSuffix(name, directiveExt)
		header := t.resolveDirective(base, ownBase, src, dirs)
		if header == nil {
			return zerr.With(zerr.With(domain.ErrUnresolvedReference,
				"directive", name), "source", src.Rel())
		}

		mocTask, hit := t.build.Cache.GetOrCreate(t, header, header.ChangeExt(directiveExt))
		if hit {
			t.InvalidateSignature()
		}
		t.AddRunAfter(mocTask)
	}
	return nil
}

// resolveDirective maps a directive base name to its header. A directive
// matching the source's own base name points at the source itself; anything
// else is searched across the directories and header extensions in order.
func (t *CompiledSource) resolveDirective(base, ownBase string, src *domain.Node, dirs []*domain.Node) *domain.Node {
	if base == ownBase {
		return src
	}
	for _, dir := range dirs {
		for _, ext := range HeaderExts {
			if h := dir.Find(base + ext); h != nil {
				return h
			}
		}
	}
	return nil
}
