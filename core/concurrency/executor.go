// File: core/concurrency/executor.go
// Package concurrency implements the thread-affine executor.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// An Executor owns one goroutine locked to one OS thread for its entire life.
// The resource is acquired, used and released on that thread only; callers
// reach it exclusively through submitted tasks.

package concurrency

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/momentics/hioload-affine/affinity"
	"github.com/momentics/hioload-affine/api"
)

// Executor serializes tasks against a resource of type R.
type Executor[R any] struct {
	eng     *engine[R]
	cleanup runtime.Cleanup
}

var _ api.Executor = (*Executor[struct{}])(nil)

// envelope is a type-erased submission. run computes the outcome and returns
// a commit that publishes it to the reply.
type envelope[R any] struct {
	id      string
	run     func(*Scope[R]) (commit func(), err error)
	abandon func()
}

// engine is everything the worker goroutine needs. It must never reference
// the Executor handle, otherwise the handle would stay reachable forever and
// the cleanup below could not fire.
type engine[R any] struct {
	cfg Config[R]
	log *log.Logger
	ch  *taskChannel[*envelope[R]]

	state    atomic.Int32
	threadID int           // written by the worker before New returns
	stopped  chan struct{} // closed after release, when the worker is gone
	relErr   error         // valid after stopped is closed

	submitted  atomic.Uint64
	completed  atomic.Uint64
	failed     atomic.Uint64
	abandoned  atomic.Uint64
	acquireTID atomic.Int64
	releaseTID atomic.Int64
	startedAt  atomic.Int64
	stoppedAt  atomic.Int64
}

// New spawns the worker, acquires the resource on it and returns once the
// executor is running. When acquisition fails the returned error is an
// *api.InitError and the worker thread has already exited.
func New[R any](cfg Config[R]) (*Executor[R], error) {
	if err := cfg.normalize(); err != nil {
		return nil, &api.InitError{Executor: cfg.Name, Err: err}
	}
	if err := claimDomain(cfg.Exclusive, cfg.Name); err != nil {
		return nil, &api.InitError{Executor: cfg.Name, Err: err}
	}

	e := &engine[R]{
		cfg:     cfg,
		log:     cfg.Logger,
		ch:      newTaskChannel[*envelope[R]](),
		stopped: make(chan struct{}),
	}
	e.state.Store(int32(api.StateInitializing))

	ready := make(chan error, 1)
	go e.run(ready)
	if err := <-ready; err != nil {
		<-e.stopped
		return nil, &api.InitError{Executor: cfg.Name, Err: err}
	}

	x := &Executor[R]{eng: e}
	// Last line of defense for executors dropped without Close: signal the
	// worker so it releases the resource and its thread exits.
	x.cleanup = runtime.AddCleanup(x, func(ch *taskChannel[*envelope[R]]) {
		ch.shutdown()
	}, e.ch)
	e.registerProbes()
	return x, nil
}

// Submit enqueues task and returns immediately. It fails with an
// *api.SubmissionError wrapping api.ErrExecutorClosed once shutdown began.
func Submit[R, T any](x *Executor[R], task Task[R, T]) (*Reply[T], error) {
	if task == nil {
		return nil, &api.SubmissionError{Executor: x.Name(), Err: api.ErrNilTask}
	}
	id := uuid.NewString()
	reply := newReply[T](id)
	env := &envelope[R]{
		id: id,
		run: func(s *Scope[R]) (func(), error) {
			v, err := invoke(s, task)
			return func() { reply.resolve(v, err) }, err
		},
		abandon: func() {
			var zero T
			reply.resolve(zero, api.ErrChannelClosed)
		},
	}
	// Counted before the push so Completed never overtakes Submitted.
	x.eng.submitted.Add(1)
	if err := x.eng.ch.push(env); err != nil {
		x.eng.submitted.Add(^uint64(0))
		return nil, &api.SubmissionError{Executor: x.Name(), Err: err}
	}
	x.eng.count("submitted")
	return reply, nil
}

// Call submits task and waits for its result or for ctx to end.
func Call[R, T any](ctx context.Context, x *Executor[R], task Task[R, T]) (T, error) {
	reply, err := Submit(x, task)
	if err != nil {
		var zero T
		return zero, err
	}
	return reply.ReceiveContext(ctx)
}

// Close signals shutdown and waits until the worker has finished the task in
// flight, released the resource and exited. Tasks still queued resolve with
// api.ErrChannelClosed. Close is idempotent and returns the release error.
//
// Called from inside a task, Close only signals and returns nil. Recognizing
// that case needs a platform thread id; where ThreadID reports 0 a task must
// use Scope.Stop instead, or Close waits for itself forever.
func (x *Executor[R]) Close() error {
	return x.CloseContext(context.Background())
}

// CloseContext is Close that stops waiting when ctx ends. The worker still
// completes its shutdown in the background.
func (x *Executor[R]) CloseContext(ctx context.Context) error {
	x.cleanup.Stop()
	return x.eng.close(ctx)
}

// Shutdown implements api.GracefulShutdown.
func (x *Executor[R]) Shutdown() error { return x.Close() }

// Done is closed once the worker thread has exited.
func (x *Executor[R]) Done() <-chan struct{} { return x.eng.stopped }

func (x *Executor[R]) Name() string { return x.eng.cfg.Name }

func (x *Executor[R]) State() api.ExecutorState {
	return api.ExecutorState(x.eng.state.Load())
}

func (x *Executor[R]) ThreadID() int { return x.eng.threadID }

func (x *Executor[R]) Stats() api.ExecutorStats { return x.eng.stats() }

func (e *engine[R]) close(ctx context.Context) error {
	if e.threadID != 0 && affinity.ThreadID() == e.threadID {
		// Called from a task: waiting here would wait on ourselves.
		e.signal()
		return nil
	}
	e.signal()
	select {
	case <-e.stopped:
		if e.relErr != nil {
			return fmt.Errorf("affine %q: release: %w", e.cfg.Name, e.relErr)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("affine %q: waiting for worker: %w", e.cfg.Name, ctx.Err())
	}
}

func (e *engine[R]) signal() {
	if e.ch.shutdown() {
		e.state.CompareAndSwap(int32(api.StateRunning), int32(api.StateShuttingDown))
		e.log.Debug("shutdown signaled", "pending", e.ch.len())
	}
}

func (e *engine[R]) stats() api.ExecutorStats {
	// Outcomes are read before submissions so a snapshot never shows more
	// finished tasks than submitted ones.
	completed, failed, abandoned := e.completed.Load(), e.failed.Load(), e.abandoned.Load()
	st := api.ExecutorStats{
		Name:          e.cfg.Name,
		State:         api.ExecutorState(e.state.Load()),
		Submitted:     e.submitted.Load(),
		Completed:     completed,
		Failed:        failed,
		Abandoned:     abandoned,
		Pending:       e.ch.len(),
		AcquireThread: int(e.acquireTID.Load()),
		ReleaseThread: int(e.releaseTID.Load()),
	}
	if ns := e.startedAt.Load(); ns != 0 {
		st.StartedAt = time.Unix(0, ns)
	}
	if ns := e.stoppedAt.Load(); ns != 0 {
		st.StoppedAt = time.Unix(0, ns)
	}
	return st
}

func (e *engine[R]) metricKey(name string) string {
	return "affine." + e.cfg.Name + "." + name
}

func (e *engine[R]) count(name string) {
	if e.cfg.Metrics != nil {
		e.cfg.Metrics.Add(e.metricKey(name), 1)
	}
}

func (e *engine[R]) registerProbes() {
	if e.cfg.Probes == nil {
		return
	}
	e.cfg.Probes.RegisterProbe(e.metricKey("state"), func() any {
		return api.ExecutorState(e.state.Load()).String()
	})
	e.cfg.Probes.RegisterProbe(e.metricKey("stats"), func() any {
		return e.stats()
	})
}

func (e *engine[R]) unregisterProbes() {
	if e.cfg.Probes == nil {
		return
	}
	e.cfg.Probes.UnregisterProbe(e.metricKey("state"))
	e.cfg.Probes.UnregisterProbe(e.metricKey("stats"))
}
