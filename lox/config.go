// Copyright © 2018 The ELPS authors

package lox

import (
	"errors"
	"io"
	"time"
)

// Config is a function that configures an Interpreter or its runtime.
type Config func(in *Interpreter) error

// WithStdout returns a Config that makes print statements write to w instead
// of the default, os.Stdout.
func WithStdout(w io.Writer) Config {
	return func(in *Interpreter) error {
		in.Runtime.Stdout = w
		return nil
	}
}

// WithStderr returns a Config that makes the interpreter write debugging
// output to w instead of the default, os.Stderr.
func WithStderr(w io.Writer) Config {
	return func(in *Interpreter) error {
		in.Runtime.Stderr = w
		return nil
	}
}

// WithReader returns a Config that makes the interpreter use r to parse
// source streams.  There is no default Reader for an interpreter.
func WithReader(r Reader) Config {
	return func(in *Interpreter) error {
		in.Runtime.Reader = r
		return nil
	}
}

// WithMaximumStackHeight returns a Config that will prevent the interpreter
// from allowing the call stack height to exceed n.  A non-positive n removes
// the limit, leaving deep recursion bounded only by the Go stack.
func WithMaximumStackHeight(n int) Config {
	return func(in *Interpreter) error {
		in.Runtime.Stack.MaxHeight = n
		return nil
	}
}

// WithProfiler returns a Config that reports every function call to p.
func WithProfiler(p Profiler) Config {
	return func(in *Interpreter) error {
		if p == nil {
			return errors.New("nil profiler")
		}
		in.Runtime.Profiler = p
		return nil
	}
}

// WithClock returns a Config that makes the clock native read time from now.
// The clock's epoch is fixed when the interpreter is created.
func WithClock(now func() time.Time) Config {
	return func(in *Interpreter) error {
		if now == nil {
			return errors.New("nil clock")
		}
		in.Runtime.Clock = now
		in.resetClock()
		return nil
	}
}
