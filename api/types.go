// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations for affine executors.

package api

import "time"

// ExecutorState enumerates the lifecycle of an affine executor.
type ExecutorState int32

const (
	StateInitializing ExecutorState = iota
	StateRunning
	StateShuttingDown
	StateStopped
	StateFailed // acquisition failed; terminal
)

func (s ExecutorState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting_down"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ExecutorStats provides a point-in-time view of executor activity.
type ExecutorStats struct {
	Name      string
	State     ExecutorState
	Submitted uint64 // accepted by Submit
	Completed uint64 // ran and returned a value
	Failed    uint64 // ran and returned an error or panicked
	Abandoned uint64 // never started because the worker stopped
	Pending   int    // queued, not yet started

	// Worker thread observed at acquisition and at release. Zero when the
	// platform cannot report thread ids or the phase has not happened yet.
	AcquireThread int
	ReleaseThread int

	StartedAt time.Time
	StoppedAt time.Time
}
