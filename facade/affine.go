// File: facade/affine.go
// Unified facade layer for hioload-affine.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Runtime bundles an affine executor with the logger, metrics registry and
// debug probes described by control.Settings, so a host application can go
// from a settings file to a running executor in one call.

package facade

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/momentics/hioload-affine/api"
	"github.com/momentics/hioload-affine/control"
	"github.com/momentics/hioload-affine/core/concurrency"
)

// ResourceSpec describes how to create and destroy the thread-affine resource.
type ResourceSpec[R any] struct {
	Acquire func() (R, error)
	Release func(R) error // optional, see concurrency.Config.Release
}

type options struct {
	logOutput io.Writer
}

// Option customizes Open.
type Option func(*options)

// WithLogOutput redirects the runtime logger, stderr by default.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.logOutput = w
		}
	}
}

// Runtime is the main facade type.
type Runtime[R any] struct {
	settings control.Settings
	logger   *log.Logger
	metrics  *control.MetricsRegistry
	probes   *control.DebugProbes
	executor *concurrency.Executor[R]
}

var _ api.GracefulShutdown = (*Runtime[struct{}])(nil)

// OpenFile loads settings from path and opens a Runtime.
func OpenFile[R any](path string, rs ResourceSpec[R], opts ...Option) (*Runtime[R], error) {
	s, err := control.LoadSettings(path)
	if err != nil {
		return nil, err
	}
	return Open(s, rs, opts...)
}

// Open validates settings, builds the ambient services and starts the executor.
func Open[R any](s control.Settings, rs ResourceSpec[R], opts ...Option) (*Runtime[R], error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	o := options{logOutput: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	rt := &Runtime[R]{
		settings: s,
		logger: log.NewWithOptions(o.logOutput, log.Options{
			Prefix:          "affine/" + s.Name,
			Level:           s.Level(),
			ReportTimestamp: true,
		}),
	}
	if s.EnableMetrics {
		rt.metrics = control.NewMetricsRegistry()
	}
	if s.EnableDebug {
		rt.probes = control.NewDebugProbes()
		control.RegisterPlatformProbes(rt.probes)
	}

	x, err := concurrency.New(concurrency.Config[R]{
		Name:      s.Name,
		Acquire:   rs.Acquire,
		Release:   rs.Release,
		PinCPU:    s.CPU >= 0,
		CPU:       s.CPU,
		Exclusive: s.Exclusive,
		Logger:    rt.logger,
		Metrics:   rt.metrics,
		Probes:    rt.probes,
	})
	if err != nil {
		return nil, fmt.Errorf("facade: open %q: %w", s.Name, err)
	}
	rt.executor = x
	return rt, nil
}

// Executor returns the underlying executor for Submit and Call.
func (rt *Runtime[R]) Executor() *concurrency.Executor[R] { return rt.executor }

// Settings returns the settings the runtime was opened with.
func (rt *Runtime[R]) Settings() control.Settings { return rt.settings }

// Logger returns the runtime logger.
func (rt *Runtime[R]) Logger() *log.Logger { return rt.logger }

// Metrics returns the registry, nil when metrics are disabled.
func (rt *Runtime[R]) Metrics() *control.MetricsRegistry { return rt.metrics }

// Debug returns the probe registry, nil when debug is disabled.
func (rt *Runtime[R]) Debug() api.Debug {
	if rt.probes == nil {
		return nil
	}
	return rt.probes
}

// Close stops the executor, waiting at most settings.ShutdownTimeout.
func (rt *Runtime[R]) Close() error {
	ctx := context.Background()
	if rt.settings.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rt.settings.ShutdownTimeout)
		defer cancel()
	}
	return rt.executor.CloseContext(ctx)
}

// Shutdown implements api.GracefulShutdown by delegating to Close.
func (rt *Runtime[R]) Shutdown() error {
	return rt.Close()
}
