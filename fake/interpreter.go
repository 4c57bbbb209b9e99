// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

// Package fake provides an in-memory stand-in for an embedded interpreter
// runtime. Like the real thing it may only be used from the OS thread that
// created it, which makes it a strict test double for affine executors.
package fake

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-affine/affinity"
)

var (
	ErrWrongThread = errors.New("fake: interpreter used from a foreign thread")
	ErrClosed      = errors.New("fake: interpreter closed")
	ErrNoFunction  = errors.New("fake: no such function")
	ErrBadArgs     = errors.New("fake: bad arguments")
	ErrRaised      = errors.New("fake: interpreter raised an exception")
)

// Func is a callable registered in the interpreter module.
type Func func(args ...any) (any, error)

// Interpreter is not safe for concurrent use and is bound to its creating thread.
type Interpreter struct {
	owner   int
	funcs   map[string]Func
	calls   atomic.Int64
	closed  atomic.Bool
	release atomic.Int64
}

// NewInterpreter creates an interpreter bound to the calling OS thread.
// It has the semantics of a factory; the caller must hold runtime.LockOSThread.
func NewInterpreter() (*Interpreter, error) {
	in := &Interpreter{owner: affinity.ThreadID()}
	in.funcs = map[string]Func{
		"heavy_computation": heavyComputation,
		"sum":               sum,
		"fail": func(args ...any) (any, error) {
			return nil, fmt.Errorf("%w: %v", ErrRaised, args)
		},
	}
	return in, nil
}

// Failing returns a factory whose acquisition always fails with err.
func Failing(err error) func() (*Interpreter, error) {
	return func() (*Interpreter, error) { return nil, err }
}

// Define registers or replaces a module-level function.
func (in *Interpreter) Define(name string, fn Func) error {
	if err := in.check(); err != nil {
		return err
	}
	in.funcs[name] = fn
	return nil
}

// Call invokes a module-level function by name.
func (in *Interpreter) Call(name string, args ...any) (any, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	fn, ok := in.funcs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoFunction, name)
	}
	in.calls.Add(1)
	return fn(args...)
}

// Close tears the interpreter down; it must run on the owner thread.
func (in *Interpreter) Close() error {
	if err := in.check(); err != nil {
		return err
	}
	in.release.Store(int64(affinity.ThreadID()))
	in.closed.Store(true)
	return nil
}

// OwnerThread is the id of the thread that created the interpreter.
func (in *Interpreter) OwnerThread() int { return in.owner }

// ReleaseThread is the id of the thread that closed it, 0 while open.
func (in *Interpreter) ReleaseThread() int { return int(in.release.Load()) }

// Calls returns the number of successful lookups.
func (in *Interpreter) Calls() int64 { return in.calls.Load() }

// Closed reports whether Close succeeded.
func (in *Interpreter) Closed() bool { return in.closed.Load() }

func (in *Interpreter) check() error {
	if in.closed.Load() {
		return ErrClosed
	}
	if in.owner != 0 {
		if tid := affinity.ThreadID(); tid != in.owner {
			return fmt.Errorf("%w: thread %d, owner %d", ErrWrongThread, tid, in.owner)
		}
	}
	return nil
}

// heavyComputation(size int[, delay time.Duration]) returns a size x size
// matrix of ones after sleeping for delay.
func heavyComputation(args ...any) (any, error) {
	if len(args) == 0 || len(args) > 2 {
		return nil, fmt.Errorf("%w: heavy_computation(size[, delay])", ErrBadArgs)
	}
	size, ok := args[0].(int)
	if !ok || size < 0 {
		return nil, fmt.Errorf("%w: size %v", ErrBadArgs, args[0])
	}
	if len(args) == 2 {
		delay, ok := args[1].(time.Duration)
		if !ok {
			return nil, fmt.Errorf("%w: delay %v", ErrBadArgs, args[1])
		}
		time.Sleep(delay)
	}
	return Ones(size), nil
}

func sum(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: sum(matrix)", ErrBadArgs)
	}
	m, ok := args[0].(Matrix)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a matrix", ErrBadArgs, args[0])
	}
	return m.Sum(), nil
}
