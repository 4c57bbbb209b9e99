// Package control
// Author: momentics <momentics@gmail.com>
//
// Settings, runtime metrics and debug introspection for affine executors.
//
// Provides concurrent-safe state handling primitives including:
//   - Settings loading from file and environment (viper)
//   - Counters and gauges published by running executors
//   - Named debug probes and platform probes
package control
