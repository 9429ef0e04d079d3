// Package scheduler implements the producer/consumer task scheduler.
//
// Scheduling decisions run on a single goroutine; task execution is fanned
// out to a bounded worker pool. Dynamic dependency discovery happens inside
// Readiness queries on the scheduling goroutine and may insert new tasks at
// the front of the outstanding queue through the Injector side channel.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.Injector = (*Producer)(nil)

// Producer owns the outstanding task queue and the expected-total counter.
type Producer struct {
	logger    ports.Logger
	telemetry ports.Telemetry

	mu          sync.Mutex
	outstanding []domain.Task
	total       int
	processed   int
}

// New creates a Producer.
func New(logger ports.Logger, telemetry ports.Telemetry) *Producer {
	return &Producer{
		logger:    logger,
		telemetry: telemetry,
	}
}

// InsertFront prepends a dynamically discovered task to the outstanding
// queue and bumps the expected total. This is the only legal external
// mutation of a running schedule and must be called from code executing
// inside a Readiness query.
func (p *Producer) InsertFront(t domain.Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outstanding = append([]domain.Task{t}, p.outstanding...)
	p.total++
}

func (p *Producer) popFront() domain.Task {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.outstanding) == 0 {
		return nil
	}
	t := p.outstanding[0]
	p.outstanding = p.outstanding[1:]
	return t
}

func (p *Producer) pushBack(tasks ...domain.Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outstanding = append(p.outstanding, tasks...)
}

func (p *Producer) counters() (processed, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed++
	return p.processed, p.total
}

type result struct {
	task   domain.Task
	vertex ports.Vertex
	err    error
}

type runState struct {
	ctx      context.Context
	group    *errgroup.Group
	results  chan result
	deferred []domain.Task
	active   int
	errs     error
}

// Run executes the given tasks with the specified parallelism. It returns
// the joined errors of all failed tasks, or a deadlock error if every
// outstanding task keeps deferring while nothing is running.
func (p *Producer) Run(ctx context.Context, tasks []domain.Task, parallelism int) error {
	if parallelism < 1 {
		parallelism = 1
	}

	p.mu.Lock()
	p.outstanding = append([]domain.Task(nil), tasks...)
	p.total = len(tasks)
	p.processed = 0
	p.mu.Unlock()

	group := &errgroup.Group{}
	group.SetLimit(parallelism)

	state := &runState{
		ctx:     ctx,
		group:   group,
		results: make(chan result, parallelism),
	}

	for {
		p.drainResults(state, false)

		if state.errs != nil || ctx.Err() != nil {
			if state.active == 0 {
				break
			}
			p.drainResults(state, true)
			continue
		}

		t := p.popFront()
		if t == nil {
			if state.active > 0 {
				p.drainResults(state, true)
				continue
			}
			if len(state.deferred) > 0 {
				state.errs = errors.Join(state.errs, p.deadlockError(state.deferred))
			}
			break
		}

		if err := p.process(state, t); err != nil {
			t.SetState(domain.StateFailed)
			state.errs = errors.Join(state.errs, err)
		}
	}

	_ = state.group.Wait()

	if ctx.Err() != nil {
		state.errs = errors.Join(state.errs, ctx.Err())
	}
	return state.errs
}

// process answers one scheduling decision for a popped task.
func (p *Producer) process(state *runState, t domain.Task) error {
	readiness, err := t.Readiness()
	if err != nil {
		return zerr.With(zerr.Wrap(err, "dependency discovery failed"), "task", t.Name())
	}

	switch readiness {
	case domain.AskLater:
		state.deferred = append(state.deferred, t)

	case domain.SkipRun:
		t.SetState(domain.StateSkipped)
		processed, total := p.counters()
		p.logger.Info(fmt.Sprintf("[%d/%d] %s (up to date)", processed, total, t.Name()))
		_, vertex := p.telemetry.Record(state.ctx, t.Name())
		vertex.Cached()
		vertex.Complete(nil)
		p.requeueDeferred(state)

	case domain.ReadyToRun:
		p.dispatch(state, t)
	}
	return nil
}

func (p *Producer) dispatch(state *runState, t domain.Task) {
	t.SetState(domain.StateRunning)
	processed, total := p.counters()
	p.logger.Info(fmt.Sprintf("[%d/%d] %s", processed, total, t.Name()))

	vctx, vertex := p.telemetry.Record(state.ctx, t.Name())
	state.active++

	state.group.Go(func() error {
		state.results <- result{task: t, vertex: vertex, err: t.Run(vctx)}
		return nil
	})
}

// drainResults consumes completion results. With block set it waits for at
// least one result first; it then keeps consuming without blocking.
func (p *Producer) drainResults(state *runState, block bool) {
	if block {
		p.handleResult(state, <-state.results)
	}
	for {
		select {
		case res := <-state.results:
			p.handleResult(state, res)
		default:
			return
		}
	}
}

func (p *Producer) handleResult(state *runState, res result) {
	state.active--
	res.vertex.Complete(res.err)

	if res.err != nil {
		res.task.SetState(domain.StateFailed)
		state.errs = errors.Join(state.errs,
			zerr.With(zerr.Wrap(res.err, "task execution failed"), "task", res.task.Name()))
		return
	}

	res.task.SetState(domain.StateSuccess)
	p.requeueDeferred(state)
}

// requeueDeferred re-polls every deferred task now that new information
// exists (a task completed or was found up to date).
func (p *Producer) requeueDeferred(state *runState) {
	if len(state.deferred) == 0 {
		return
	}
	p.pushBack(state.deferred...)
	state.deferred = nil
}

func (p *Producer) deadlockError(deferred []domain.Task) error {
	err := domain.ErrDeadlock
	for _, t := range deferred {
		err = zerr.With(err, "task", t.Name())
	}
	return err
}
