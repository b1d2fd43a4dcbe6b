// Copyright © 2018 The ELPS authors

package lox

// Profiler observes function calls made by an Interpreter.
type Profiler interface {
	// IsEnabled reports whether the profiler is recording.
	IsEnabled() bool
	// Enable the profiler
	Enable() error
	// Complete ends the profiling session and flushes any output.
	Complete() error
	// Start marks the beginning of a call to fn.  The returned function is
	// called when the call returns, successfully or not.
	Start(fn Callable) func()
}
