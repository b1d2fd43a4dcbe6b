// Copyright © 2018 The ELPS authors

package lox

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/luthersystems/lox/parser/token"
)

// Exit statuses used by command line drivers.
const (
	ExitOK      = 0
	ExitUsage   = 64
	ExitStatic  = 65 // lexical, syntax and static errors
	ExitNoInput = 66
	ExitRuntime = 70
)

// RuntimeError is an error raised while executing a program.  Token locates
// the operation that failed.
type RuntimeError struct {
	Token   *token.Token
	Message string
	// Stack is a copy of the call stack at the time of the error.
	Stack *CallStack
}

var _ token.Classified = (*RuntimeError)(nil)

func runtimeErrorf(tok *token.Token, format string, v ...interface{}) *RuntimeError {
	return &RuntimeError{
		Token:   tok,
		Message: fmt.Sprintf(format, v...),
	}
}

// Error implements the error interface using the "message\n[line: N]"
// format.
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s\n[line: %d]", e.Message, e.Line())
}

// Line returns the source line of the failed operation.
func (e *RuntimeError) Line() int {
	return e.Token.Line()
}

// Class implements token.Classified.
func (e *RuntimeError) Class() token.ErrorClass {
	return token.ClassRuntime
}

// WriteTrace writes the error and a stack trace to w
func (e *RuntimeError) WriteTrace(w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	var n int
	var err error
	wrote := func(_n int, _err error) bool {
		n += _n
		err = _err
		return err == nil
	}
	if !wrote(bw.WriteString(e.Error())) {
		return n, err
	}
	if !wrote(bw.WriteString("\n")) {
		return n, err
	}
	if e.Stack != nil && len(e.Stack.Frames) > 0 {
		if !wrote(e.Stack.DebugPrint(bw)) {
			return n, err
		}
	}
	return n, bw.Flush()
}

// ClassOf returns the pipeline class of err, or 0 if err is nil or did not
// come from lox.
func ClassOf(err error) token.ErrorClass {
	if err == nil {
		return 0
	}
	return token.ClassOf(err)
}

// ExitCode maps err to a process exit status: 0 for nil, 65 for lexical,
// syntax and static errors and 70 for runtime errors.  A source file that
// cannot be opened or read maps to 66; any other failure is an internal
// error and maps to 70.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch ClassOf(err) {
	case token.ClassLexical, token.ClassSyntax, token.ClassStatic:
		return ExitStatic
	case token.ClassRuntime:
		return ExitRuntime
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return ExitNoInput
	}
	return ExitRuntime
}
