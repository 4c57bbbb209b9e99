// File: core/concurrency/scope.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Scope hands the thread-affine resource to a running unit of work.

package concurrency

import (
	"fmt"
	"sync/atomic"

	"github.com/momentics/hioload-affine/affinity"
	"github.com/momentics/hioload-affine/api"
)

// Task is one unit of work. It runs on the worker thread and must not keep
// the scope, or the resource obtained from it, after returning.
type Task[R, T any] func(s *Scope[R]) (T, error)

// Scope is valid only for the duration of a single task on the worker thread.
type Scope[R any] struct {
	res    R
	taskID string
	owner  int
	live   atomic.Bool
	stop   func()
}

func newScope[R any](res R, taskID string, owner int, stop func()) *Scope[R] {
	s := &Scope[R]{res: res, taskID: taskID, owner: owner, stop: stop}
	s.live.Store(true)
	return s
}

// Resource returns the affine resource. It panics with api.ErrScopeEscaped
// after the task has returned or when called from another OS thread. The
// thread check needs a platform thread id and is skipped where ThreadID is 0.
func (s *Scope[R]) Resource() R {
	if !s.live.Load() {
		panic(fmt.Errorf("%w: task %s already returned", api.ErrScopeEscaped, s.taskID))
	}
	if s.owner != 0 {
		if tid := affinity.ThreadID(); tid != s.owner {
			panic(fmt.Errorf("%w: thread %d, owner %d", api.ErrScopeEscaped, tid, s.owner))
		}
	}
	return s.res
}

// TaskID returns the id of the submission being executed.
func (s *Scope[R]) TaskID() string { return s.taskID }

// ThreadID returns the worker thread id, 0 when the platform cannot tell.
func (s *Scope[R]) ThreadID() int { return s.owner }

// Stop signals the executor to shut down once the current task returns.
// Unlike Close it never waits, so it is safe on every platform.
func (s *Scope[R]) Stop() {
	if s.stop != nil {
		s.stop()
	}
}

func (s *Scope[R]) end() { s.live.Store(false) }
