// File: core/concurrency/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/momentics/hioload-affine/api"
	"github.com/momentics/hioload-affine/control"
)

const defaultName = "affine"

// Config is the init configuration of an Executor.
type Config[R any] struct {
	Name string // Used in logs, metrics and probes; defaults to "affine"

	// Acquire creates the resource. It is called exactly once, on the worker thread.
	Acquire func() (R, error)
	// Release destroys the resource on the worker thread during shutdown.
	// When nil and R implements io.Closer, Close is used.
	Release func(R) error

	PinCPU bool // Pin the worker thread to CPU
	CPU    int

	// Exclusive, when set, allows at most one live executor per key in the
	// process. Use it for resources backed by process-global runtime state.
	Exclusive string

	Logger  *log.Logger
	Metrics *control.MetricsRegistry
	Probes  *control.DebugProbes
}

func (c *Config[R]) normalize() error {
	if c.Name == "" {
		c.Name = defaultName
	}
	if c.Acquire == nil {
		return fmt.Errorf("%w: Acquire is required", api.ErrInvalidConfig)
	}
	if c.PinCPU && c.CPU < 0 {
		return fmt.Errorf("%w: cpu %d", api.ErrInvalidConfig, c.CPU)
	}
	if c.Logger == nil {
		c.Logger = log.NewWithOptions(os.Stderr, log.Options{
			Prefix:          defaultName + "/" + c.Name,
			Level:           log.WarnLevel,
			ReportTimestamp: true,
		})
	}
	return nil
}

func (c *Config[R]) release(res R) error {
	if c.Release != nil {
		return c.Release(res)
	}
	if closer, ok := any(res).(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
