// Copyright © 2018 The ELPS authors

package lox

// DefaultBuiltins returns the native functions defined in the global
// environment of every Interpreter.
func DefaultBuiltins() []*NativeFunction {
	return []*NativeFunction{
		{Name: "clock", NArgs: 0, Fn: builtinClock},
	}
}

// builtinClock returns milliseconds since the Unix epoch.  The value is the
// wall time at which the interpreter started plus the monotonic time elapsed
// since, so it never decreases during a run.
func builtinClock(in *Interpreter, args []interface{}) (interface{}, error) {
	elapsed := in.Runtime.Clock().Sub(in.epoch)
	return float64(in.epoch.UnixMilli()) + float64(elapsed.Nanoseconds())/1e6, nil
}
