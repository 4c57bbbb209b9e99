// File: core/concurrency/loop.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Worker side of the executor: thread setup, resource acquisition, the
// dispatch loop and teardown. Everything in this file runs on the locked
// worker thread.

package concurrency

import (
	"errors"
	"runtime"
	"time"

	"github.com/momentics/hioload-affine/affinity"
	"github.com/momentics/hioload-affine/api"
)

var errWorkerExited = errors.New("worker goroutine exited during acquisition")

// run is the worker goroutine. The OS thread is locked and never unlocked,
// so the runtime terminates the thread together with this goroutine.
func (e *engine[R]) run(ready chan<- error) {
	runtime.LockOSThread()
	defer e.finish()
	reported := false
	defer func() {
		if !reported {
			ready <- errWorkerExited
		}
	}()

	e.threadID = affinity.ThreadID()
	if e.cfg.PinCPU {
		if err := affinity.SetAffinity(e.cfg.CPU); err != nil {
			e.log.Warn("cpu pinning failed, running unpinned", "cpu", e.cfg.CPU, "error", err)
		}
	}

	var res R
	err := guard("acquire", func() (err error) {
		res, err = e.cfg.Acquire()
		return err
	})
	if err != nil {
		e.state.Store(int32(api.StateFailed))
		e.log.Error("resource acquisition failed", "error", err)
		reported = true
		ready <- err
		return
	}
	e.acquireTID.Store(int64(affinity.ThreadID()))
	e.startedAt.Store(time.Now().UnixNano())
	e.state.Store(int32(api.StateRunning))
	e.log.Info("executor started", "thread", e.threadID)
	reported = true
	ready <- nil

	defer e.teardown(res)
	e.loop(res)
}

// teardown abandons queued work and releases the resource. It is deferred so
// it also runs when a task exits the goroutine via runtime.Goexit.
func (e *engine[R]) teardown(res R) {
	e.ch.shutdown()
	e.state.Store(int32(api.StateShuttingDown))
	for _, env := range e.ch.drain() {
		env.abandon()
		e.abandoned.Add(1)
		e.count("abandoned")
	}

	e.relErr = guard("release", func() error { return e.cfg.release(res) })
	e.releaseTID.Store(int64(affinity.ThreadID()))
	if e.relErr != nil {
		e.log.Error("resource release failed", "error", e.relErr)
	}
	e.state.Store(int32(api.StateStopped))
	e.log.Info("executor stopped",
		"completed", e.completed.Load(),
		"failed", e.failed.Load(),
		"abandoned", e.abandoned.Load())
}

// loop dispatches tasks until shutdown. Shutdown is checked before every
// task; a task that has started always runs to completion. When idle the
// worker blocks on whichever comes first, new work or the stop signal.
func (e *engine[R]) loop(res R) {
	for {
		select {
		case <-e.ch.stopping():
			return
		default:
		}

		if env, ok := e.ch.pop(); ok {
			e.dispatch(res, env)
			continue
		}

		select {
		case <-e.ch.stopping():
			return
		case <-e.ch.ready():
		}
	}
}

func (e *engine[R]) dispatch(res R, env *envelope[R]) {
	scope := newScope(res, env.id, e.threadID, e.signal)
	start := time.Now()
	done := false
	defer func() {
		if !done {
			// Goexit from inside the task; its submitter must not hang.
			scope.end()
			env.abandon()
		}
	}()
	commit, err := env.run(scope)
	done = true
	scope.end()

	if err != nil {
		e.failed.Add(1)
		e.count("failed")
		e.log.Warn("task failed", "task", env.id, "elapsed", time.Since(start), "error", err)
	} else {
		e.completed.Add(1)
		e.count("completed")
		e.log.Debug("task completed", "task", env.id, "elapsed", time.Since(start))
	}
	commit()
}

// finish runs last on the worker, after release or a failed acquisition.
func (e *engine[R]) finish() {
	e.unregisterProbes()
	releaseDomain(e.cfg.Exclusive)
	e.stoppedAt.Store(time.Now().UnixNano())
	close(e.stopped)
}
