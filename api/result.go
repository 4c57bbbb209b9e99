// Package api
// Author: momentics@gmail.com
//
// Generic result and error propagation.

package api

// Result wraps any payload or error.
type Result[T any] struct {
	Value T
	Err   error
}

// Unpack splits the result into the conventional Go pair.
func (r Result[T]) Unpack() (T, error) {
	return r.Value, r.Err
}
