package domain

import "context"

// Readiness is the answer to the scheduler's "is this task runnable" query.
type Readiness int

const (
	// ReadyToRun indicates the task can be dispatched now.
	ReadyToRun Readiness = iota
	// AskLater is a non-blocking deferral: the task cannot decide yet and
	// must be polled again after other tasks complete.
	AskLater
	// SkipRun indicates the task is up to date and needs no execution.
	SkipRun
)

// TaskState is the lifecycle state of a task.
type TaskState int

const (
	// StateNotRun indicates the task has not been dispatched yet.
	StateNotRun TaskState = iota
	// StateRunning indicates the task is currently executing.
	StateRunning
	// StateSuccess indicates the task finished successfully.
	StateSuccess
	// StateSkipped indicates the task was up to date and skipped.
	StateSkipped
	// StateFailed indicates the task execution failed.
	StateFailed
)

// Finished reports whether the task has reached a terminal state.
func (s TaskState) Finished() bool {
	return s == StateSuccess || s == StateSkipped || s == StateFailed
}

func (s TaskState) String() string {
	switch s {
	case StateNotRun:
		return "not-run"
	case StateRunning:
		return "running"
	case StateSuccess:
		return "success"
	case StateSkipped:
		return "skipped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Task is a unit of build work. Tasks are created while processing build
// units or dynamically during scheduling, and live until the end of the
// build.
type Task interface {
	// ID returns a stable identity for the task, used to key persisted
	// signatures and per-build scan results.
	ID() string
	// Name returns a human-readable task name for logs and telemetry.
	Name() string
	// Inputs returns the ordered input nodes.
	Inputs() []*Node
	// Outputs returns the ordered output nodes.
	Outputs() []*Node
	// Env returns the task environment.
	Env() *Env
	// RunAfter returns the predecessor tasks that must finish first.
	RunAfter() []Task
	// AddRunAfter records additional predecessors. Duplicates are ignored.
	AddRunAfter(preds ...Task)
	// Readiness answers the scheduler's runnable-status query. An error
	// aborts the whole build (discovery errors are always fatal).
	Readiness() (Readiness, error)
	// Run executes the task.
	Run(ctx context.Context) error
	// State returns the lifecycle state.
	State() TaskState
	// SetState updates the lifecycle state.
	SetState(TaskState)
}
