// File: core/concurrency/reply.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reply is the caller-side handle of one submitted unit of work.

package concurrency

import (
	"context"
	"sync/atomic"

	"github.com/momentics/hioload-affine/api"
)

// Reply resolves exactly once, either with the task outcome or with
// api.ErrChannelClosed when the worker stopped before running the task.
// Reads are repeatable and always observe the same result.
type Reply[T any] struct {
	id      string
	written atomic.Bool
	done    chan struct{}
	res     api.Result[T]
}

func newReply[T any](id string) *Reply[T] {
	return &Reply[T]{id: id, done: make(chan struct{})}
}

// resolve stores the outcome. Later calls are ignored and report false.
func (r *Reply[T]) resolve(v T, err error) bool {
	if !r.written.CompareAndSwap(false, true) {
		return false
	}
	r.res = api.Result[T]{Value: v, Err: err}
	close(r.done)
	return true
}

// ID returns the submission id, also found in logs and ExecutionError.TaskID.
func (r *Reply[T]) ID() string { return r.id }

// Done is closed once the reply is resolved.
func (r *Reply[T]) Done() <-chan struct{} { return r.done }

// Receive blocks until the reply is resolved.
func (r *Reply[T]) Receive() (T, error) {
	<-r.done
	return r.res.Unpack()
}

// ReceiveContext is Receive bounded by ctx. Giving up does not cancel the task.
func (r *Reply[T]) ReceiveContext(ctx context.Context) (T, error) {
	select {
	case <-r.done:
		return r.res.Unpack()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// TryReceive polls the reply without blocking.
func (r *Reply[T]) TryReceive() (api.Result[T], bool) {
	select {
	case <-r.done:
		return r.res, true
	default:
		return api.Result[T]{}, false
	}
}
