// Copyright © 2018 The ELPS authors

package lox

import (
	"fmt"
	"io"

	"github.com/luthersystems/lox/parser/token"
)

// DefaultMaxStackHeight is the call depth at which a program fails with a
// stack overflow unless configured otherwise.
const DefaultMaxStackHeight = 25000

// CallStack is a function call stack.
type CallStack struct {
	Frames    []CallFrame
	MaxHeight int
}

// CallFrame is one frame in the CallStack
type CallFrame struct {
	Source *token.Location // call site
	Name   string
}

func (f *CallFrame) String() string {
	if f.Source != nil {
		return fmt.Sprintf("%s: %s", f.Source, f.Name)
	}
	return f.Name
}

// Copy creates a copy of the current stack so that it can be attach to a
// runtime error.
func (s *CallStack) Copy() *CallStack {
	frames := make([]CallFrame, len(s.Frames))
	copy(frames, s.Frames)
	return &CallStack{
		MaxHeight: s.MaxHeight,
		Frames:    frames,
	}
}

// Top returns the CallFrame at the top of the stack or nil if none exists.
func (s *CallStack) Top() *CallFrame {
	if s == nil || len(s.Frames) == 0 {
		return nil
	}
	return &s.Frames[len(s.Frames)-1]
}

// Height returns the number of frames on the stack.
func (s *CallStack) Height() int {
	return len(s.Frames)
}

// Push pushes a new stack frame for a call to name made at src.  Push fails
// without modifying s if the frame would exceed the maximum height.
func (s *CallStack) Push(src *token.Location, name string) error {
	if s.MaxHeight > 0 && len(s.Frames) >= s.MaxHeight {
		return &StackOverflowError{len(s.Frames) + 1}
	}
	s.Frames = append(s.Frames, CallFrame{
		Source: src,
		Name:   name,
	})
	return nil
}

// Pop removes the top CallFrame from the stack and returns it.  If the stack
// is empty Pop panics.
func (s *CallStack) Pop() CallFrame {
	if len(s.Frames) < 1 {
		panic("pop called on an empty stack")
	}
	f := s.Frames[len(s.Frames)-1]
	s.Frames[len(s.Frames)-1] = CallFrame{}
	s.Frames = s.Frames[:len(s.Frames)-1]
	return f
}

// Reset discards all frames.
func (s *CallStack) Reset() {
	s.Frames = s.Frames[:0]
}

// DebugPrint prints s
func (s *CallStack) DebugPrint(w io.Writer) (int, error) {
	n, err := fmt.Fprintf(w, "Stack Trace [%d frames -- entrypoint last]:\n", len(s.Frames))
	if err != nil {
		return n, err
	}
	indent := "  "
	for i := len(s.Frames) - 1; i >= 0; i-- {
		fstr := s.Frames[i].String()
		_n, err := fmt.Fprintf(w, "%sheight %d: %s\n", indent, i, fstr)
		n += _n
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// StackOverflowError is returned by CallStack.Push when the stack is full.
type StackOverflowError struct {
	Height int
}

func (e *StackOverflowError) Error() string {
	return fmt.Sprintf("stack height exceeded maximum: %v", e.Height)
}
