// Package task implements the external-command task base used by all
// pipeline stages.
package task

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

// Deps bundles the collaborators every task needs.
type Deps struct {
	Runner ports.CommandRunner
	Store  ports.SignatureStore
	Logger ports.Logger
}

// ScanFunc discovers extra dependencies of a task: resolved nodes plus
// names that could not be resolved to a node. Unresolved names still
// participate in the signature so that a file appearing later triggers a
// rebuild.
type ScanFunc func() (nodes []*domain.Node, names []string, err error)

var _ domain.Task = (*Exec)(nil)

// Exec is a task running one external command, built from a template of
// ${VAR}, ${PATTERN:VAR}, ${SRC} and ${TGT} words expanded against the
// task environment.
type Exec struct {
	kind     string
	unit     *domain.Unit
	env      *domain.Env
	template []string
	deps     Deps

	inputs   []*domain.Node
	outputs  []*domain.Node
	runAfter []domain.Task
	state    domain.TaskState

	scan      ScanFunc
	scanned   bool
	scanNodes []*domain.Node
	scanNames []string

	cachedSig string
}

// NewExec creates a task of the given kind bound to a unit and environment.
// Inputs, outputs and the command template are set afterwards, mirroring
// how hooks assemble tasks incrementally.
func NewExec(kind string, unit *domain.Unit, env *domain.Env, deps Deps) *Exec {
	return &Exec{
		kind: kind,
		unit: unit,
		env:  env,
		deps: deps,
	}
}

// Kind returns the task kind (moc, rcc, uic, ...).
func (t *Exec) Kind() string { return t.kind }

// Unit returns the owning build unit.
func (t *Exec) Unit() *domain.Unit { return t.unit }

// SetInputs replaces the ordered input nodes.
func (t *Exec) SetInputs(nodes ...*domain.Node) { t.inputs = nodes }

// SetOutputs replaces the ordered output nodes.
func (t *Exec) SetOutputs(nodes ...*domain.Node) { t.outputs = nodes }

// SetTemplate sets the command template.
func (t *Exec) SetTemplate(words ...string) { t.template = words }

// SetScan installs the dependency scan hook.
func (t *Exec) SetScan(fn ScanFunc) { t.scan = fn }

// ID returns the stable task identity: a hash over kind, inputs and
// outputs.
func (t *Exec) ID() string {
	h := xxhash.New()
	_, _ = h.WriteString(t.kind)
	_, _ = h.Write([]byte{0})
	for _, n := range t.inputs {
		_, _ = h.WriteString(n.Rel())
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write([]byte{0})
	for _, n := range t.outputs {
		_, _ = h.WriteString(n.Rel())
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%s-%016x", t.kind, h.Sum64())
}

// Name returns a human-readable task name.
func (t *Exec) Name() string {
	switch {
	case len(t.outputs) > 0:
		return t.kind + " " + t.outputs[0].Rel()
	case len(t.inputs) > 0:
		return t.kind + " " + t.inputs[0].Rel()
	default:
		return t.kind
	}
}

// Inputs returns the ordered input nodes.
func (t *Exec) Inputs() []*domain.Node { return t.inputs }

// Outputs returns the ordered output nodes.
func (t *Exec) Outputs() []*domain.Node { return t.outputs }

// Env returns the task environment.
func (t *Exec) Env() *domain.Env { return t.env }

// RunAfter returns the predecessor tasks.
func (t *Exec) RunAfter() []domain.Task { return t.runAfter }

// AddRunAfter records additional predecessors, ignoring duplicates.
func (t *Exec) AddRunAfter(preds ...domain.Task) {
	for _, p := range preds {
		exists := false
		for _, q := range t.runAfter {
			if q == p {
				exists = true
				break
			}
		}
		if !exists {
			t.runAfter = append(t.runAfter, p)
		}
	}
}

// State returns the lifecycle state.
func (t *Exec) State() domain.TaskState { return t.state }

// SetState updates the lifecycle state.
func (t *Exec) SetState(s domain.TaskState) { t.state = s }

// Scan runs the dependency scan hook once per build and returns the cached
// result on subsequent calls.
func (t *Exec) Scan() ([]*domain.Node, []string, error) {
	if t.scan == nil {
		return nil, nil, nil
	}
	if !t.scanned {
		nodes, names, err := t.scan()
		if err != nil {
			return nil, nil, err
		}
		t.scanNodes, t.scanNames, t.scanned = nodes, names, true
	}
	return t.scanNodes, t.scanNames, nil
}

// Signature returns the content+config hash of the task: the expanded
// command, the input contents and the scan-discovered dependencies. The
// result is cached until InvalidateSignature is called.
func (t *Exec) Signature() (string, error) {
	if t.cachedSig != "" {
		return t.cachedSig, nil
	}

	argv, err := t.Expand()
	if err != nil {
		return "", err
	}

	h := xxhash.New()
	for _, word := range argv {
		_, _ = h.WriteString(word)
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write([]byte{0})

	if err := hashNodes(h, t.inputs); err != nil {
		return "", err
	}

	nodes, names, err := t.Scan()
	if err != nil {
		return "", err
	}
	if err := hashNodes(h, nodes); err != nil {
		return "", err
	}
	for _, name := range names {
		_, _ = h.WriteString(name)
		_, _ = h.Write([]byte{0})
	}

	t.cachedSig = fmt.Sprintf("%016x", h.Sum64())
	return t.cachedSig, nil
}

// InvalidateSignature discards the cached signature. Gaining a new
// predecessor changes what "up to date" means, so discovery invalidates
// the requesting task after a cache hit.
func (t *Exec) InvalidateSignature() {
	t.cachedSig = ""
}

// Readiness implements the standard runnable-status query: error on a
// failed predecessor, defer while predecessors are unfinished, skip when
// the signature matches the stored one and all outputs exist, run
// otherwise.
func (t *Exec) Readiness() (domain.Readiness, error) {
	for _, p := range t.runAfter {
		if p.State() == domain.StateFailed {
			return domain.ReadyToRun, zerr.With(zerr.With(zerr.New("predecessor failed"),
				"task", t.Name()), "predecessor", p.Name())
		}
		if !p.State().Finished() {
			return domain.AskLater, nil
		}
	}

	sig, err := t.Signature()
	if err != nil {
		return domain.ReadyToRun, err
	}

	if t.deps.Store != nil {
		rec, err := t.deps.Store.Get(t.ID())
		if err != nil {
			return domain.ReadyToRun, err
		}
		if rec != nil && rec.Signature == sig && t.outputsPresent() {
			return domain.SkipRun, nil
		}
	}

	return domain.ReadyToRun, nil
}

// Run expands the command template and invokes the external command. On
// success the signature is persisted for the next build.
func (t *Exec) Run(ctx context.Context) error {
	argv, err := t.Expand()
	if err != nil {
		return err
	}
	if err := t.deps.Runner.Run(ctx, argv, ""); err != nil {
		return zerr.With(zerr.Wrap(err, "task command failed"), "task", t.Name())
	}
	return t.Commit()
}

// Commit persists the current signature. Custom-run tasks call it after
// producing their outputs.
func (t *Exec) Commit() error {
	if t.deps.Store == nil {
		return nil
	}
	sig, err := t.Signature()
	if err != nil {
		return err
	}
	return t.deps.Store.Put(domain.TaskRecord{
		TaskID:    t.ID(),
		Signature: sig,
		Timestamp: time.Now(),
	})
}

func (t *Exec) outputsPresent() bool {
	for _, n := range t.outputs {
		if _, err := os.Stat(n.Abs()); err != nil {
			return false
		}
	}
	return true
}

func hashNodes(h io.Writer, nodes []*domain.Node) error {
	for _, n := range nodes {
		_, _ = h.Write([]byte(n.Rel()))
		_, _ = h.Write([]byte{0})
		sum, err := hashFile(n.Abs())
		if err != nil {
			return err
		}
		if err := binary.Write(h, binary.LittleEndian, sum); err != nil {
			return zerr.Wrap(err, "failed to write hash to digest")
		}
	}
	return nil
}

func hashFile(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Paths come from the build graph
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open input"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash input"), "path", path)
	}
	return h.Sum64(), nil
}
