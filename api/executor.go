// Package api
// Author: momentics
//
// Contract shared by affine executors, independent of resource type.

package api

// Executor is the resource-agnostic view of an affine executor. Submission is
// generic and therefore lives next to the concrete type.
type Executor interface {
	GracefulShutdown

	// Name identifies the executor in logs, metrics and probes.
	Name() string

	// State returns the current lifecycle state.
	State() ExecutorState

	// Stats returns a point-in-time activity snapshot.
	Stats() ExecutorStats

	// ThreadID returns the kernel id of the worker thread, or 0.
	ThreadID() int
}
