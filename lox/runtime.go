// Copyright © 2018 The ELPS authors

package lox

import (
	"io"
	"os"
	"time"
)

// Runtime holds the state an Interpreter shares with its configuration: the
// output streams, the call stack and optional collaborators.
type Runtime struct {
	// Stdout receives the output of print statements.
	Stdout io.Writer
	// Stderr receives debugging output such as stack traces.
	Stderr   io.Writer
	Stack    *CallStack
	Reader   Reader
	Profiler Profiler
	// Clock returns the current time for the clock native.
	Clock func() time.Time
}

// StandardRuntime returns a new Runtime writing to os.Stdout and os.Stderr
// with the default maximum stack height.
func StandardRuntime() *Runtime {
	return &Runtime{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Stack:  &CallStack{MaxHeight: DefaultMaxStackHeight},
		Clock:  time.Now,
	}
}
