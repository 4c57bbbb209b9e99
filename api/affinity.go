// Package api
// Author: momentics@gmail.com
//
// OS thread identity and CPU pinning contracts.

package api

// Affinity controls which CPU the calling OS thread runs on. Callers must
// hold runtime.LockOSThread for the pin to stay meaningful.
type Affinity interface {
	// Pin binds the current OS thread to cpuID.
	Pin(cpuID int) error
	// ThreadID returns the kernel id of the current OS thread, or 0.
	ThreadID() int
	// Supported reports whether Pin can succeed on this platform.
	Supported() bool
}
