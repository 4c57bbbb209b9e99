// Package api
// Author: momentics <momentics@gmail.com>
//
// Error taxonomy for affine executors. Callers separate "my task failed"
// (ErrExecution) from "the executor is gone" (ErrExecutorClosed,
// ErrChannelClosed) with errors.Is.

package api

import (
	"errors"
	"fmt"
)

var (
	ErrInit           = errors.New("affine: resource initialization failed")
	ErrExecutorClosed = errors.New("affine: executor is closed")
	ErrExecution      = errors.New("affine: task execution failed")
	ErrChannelClosed  = errors.New("affine: reply channel closed before a result was produced")

	ErrScopeEscaped  = errors.New("affine: resource accessed outside of its worker scope")
	ErrDomainBusy    = errors.New("affine: exclusive domain already owned by a live executor")
	ErrInvalidConfig = errors.New("affine: invalid configuration")
	ErrNilTask       = errors.New("affine: nil task")
)

// InitError reports a failed construction. No worker is left running.
type InitError struct {
	Executor string
	Err      error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("affine %q: init: %v", e.Executor, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

func (e *InitError) Is(target error) bool { return target == ErrInit }

// SubmissionError reports a submission rejected by the executor.
type SubmissionError struct {
	Executor string
	Err      error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("affine %q: submit: %v", e.Executor, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// ExecutionError carries the failure of one unit of work. Panic is set when
// the task panicked instead of returning an error.
type ExecutionError struct {
	TaskID string
	Err    error
	Panic  any
	Stack  []byte
}

func (e *ExecutionError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("affine task %s: panic: %v", e.TaskID, e.Panic)
	}
	return fmt.Sprintf("affine task %s: %v", e.TaskID, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

func (e *ExecutionError) Is(target error) bool { return target == ErrExecution }
