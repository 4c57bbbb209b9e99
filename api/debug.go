// Package api
// Author: momentics
//
// Live debug introspection for running executors.

package api

// Debug exposes runtime introspection.
type Debug interface {
	// DumpState emits a snapshot of system state for diagnostics.
	DumpState() map[string]any

	// RegisterProbe dynamically registers new debug probes.
	RegisterProbe(name string, fn func() any)

	// UnregisterProbe removes a probe; unknown names are ignored.
	UnregisterProbe(name string)
}
