// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Error helpers for the affine executor. The taxonomy itself lives in api.

package concurrency

import (
	"fmt"
	"runtime/debug"

	"github.com/momentics/hioload-affine/api"
)

// invoke runs task and converts both returned errors and panics into
// *api.ExecutionError so a failing task never unwinds the worker.
func invoke[R, T any](s *Scope[R], task Task[R, T]) (v T, err error) {
	defer func() {
		if p := recover(); p != nil {
			var zero T
			ee := &api.ExecutionError{TaskID: s.taskID, Panic: p, Stack: debug.Stack()}
			if pe, ok := p.(error); ok {
				ee.Err = pe
			}
			v, err = zero, ee
		}
	}()
	v, err = task(s)
	if err != nil {
		var zero T
		return zero, &api.ExecutionError{TaskID: s.taskID, Err: err}
	}
	return v, nil
}

// guard runs fn and reports a panic as an error.
func guard(phase string, fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s panicked: %v", phase, p)
		}
	}()
	return fn()
}
