package qt

import (
	"bytes"
	"path"
	"strings"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/engine/task"
)

// NewRccTask creates the resource compilation task for one manifest. The
// generated C++ source is declared next to the manifest; compiling it is the
// caller's business.
func NewRccTask(b *Build, unit *domain.Unit, manifest *domain.Node) *task.Exec {
	t := task.NewExec("rcc", unit, unit.Env, b.Deps)
	t.SetInputs(manifest)
	t.SetOutputs(manifest.ChangeExt("_rc.cpp"))
	t.SetTemplate(
		"${QT_RCC}",
		"-name",
		strings.TrimSuffix(manifest.Name(), path.Ext(manifest.Name())),
		"${SRC}",
		"${RCC_FLAGS}",
		"-o",
		"${TGT}",
	)
	t.SetScan(func() ([]*domain.Node, []string, error) {
		return scanManifest(b, manifest)
	})
	return t
}

// scanManifest resolves the files a manifest references so that changing an
// embedded file re-runs the resource compiler. Without a parser the task
// still runs, it just cannot detect stale embedded content.
func scanManifest(b *Build, manifest *domain.Node) ([]*domain.Node, []string, error) {
	if b.Manifest == nil {
		b.Deps.Logger.Warn("no manifest parser available, resource dependencies will be incomplete")
		return nil, nil, nil
	}

	data, err := manifest.Read()
	if err != nil {
		return nil, nil, err
	}
	files, err := b.Manifest.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}

	var (
		nodes []*domain.Node
		names []string
		dir   = manifest.Dir()
	)
	for _, f := range files {
		if n := dir.Find(f); n != nil {
			nodes = append(nodes, n)
			continue
		}
		names = append(names, f)
	}
	return nodes, names, nil
}
