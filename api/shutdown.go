// File: api/shutdown.go
// Package api defines unified graceful shutdown contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// GracefulShutdown is implemented by components that own a worker thread.
type GracefulShutdown interface {
	// Shutdown stops accepting work, lets in-flight work finish, releases
	// owned resources and returns once the worker has exited.
	Shutdown() error
}
