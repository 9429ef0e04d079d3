package qt

import (
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/weft/internal/engine/task"
)

// TaskCache deduplicates generation tasks per header within one build. The
// first requester creates and injects the task; later requesters reuse it,
// so a header shared across many compiled sources is processed exactly once.
//
// Only the scheduling goroutine touches the cache, so no locking is needed.
type TaskCache struct {
	injector ports.Injector
	// Keyed by the header's canonical tree-relative path, not node identity.
	entries map[string]*task.Exec
}

// NewTaskCache creates an empty cache bound to the given injector.
func NewTaskCache(injector ports.Injector) *TaskCache {
	return &TaskCache{
		injector: injector,
		entries:  make(map[string]*task.Exec),
	}
}

// GetOrCreate returns the generation task for the given header, creating and
// front-injecting it on first request. Cached tasks run in include-guard-safe
// mode since their output is textually included by more than one source.
// The hit flag tells the requester whether it joined an existing task and
// must invalidate its own signature.
func (c *TaskCache) GetOrCreate(req *CompiledSource, header, generated *domain.Node) (domain.Task, bool) {
	if tsk, ok := c.entries[header.Rel()]; ok {
		return tsk, true
	}

	env := req.Env().Clone()
	env.AppendUnique("MOC_FLAGS", "-i")

	tsk := NewMocTask(req.Unit(), env, req.build.Deps, header, generated)
	c.entries[header.Rel()] = tsk
	req.Unit().Register(tsk)
	c.injector.InsertFront(tsk)
	return tsk, false
}
