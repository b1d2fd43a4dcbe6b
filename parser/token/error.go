// Copyright © 2024 The ELPS authors

package token

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorClass identifies the phase of the pipeline that produced an error.
// Drivers use it to choose a process exit status.
type ErrorClass int

const (
	ClassLexical ErrorClass = iota + 1
	ClassSyntax
	ClassStatic
	ClassRuntime
)

func (c ErrorClass) String() string {
	switch c {
	case ClassLexical:
		return "lexical"
	case ClassSyntax:
		return "syntax"
	case ClassStatic:
		return "static"
	case ClassRuntime:
		return "runtime"
	default:
		return "unknown"
	}
}

// Classified is implemented by every error the lox pipeline produces.
type Classified interface {
	error
	Class() ErrorClass
}

// Error is a located diagnostic produced before execution: by the lexer, the
// parser, or the resolver.
type Error struct {
	Kind    ErrorClass
	Source  *Location
	Where   string // " at end", " at 'x'" or empty
	Message string
}

var _ Classified = (*Error)(nil)

// Errorf returns a new Error of the given class positioned at tok.
func Errorf(class ErrorClass, tok *Token, format string, v ...interface{}) *Error {
	return &Error{
		Kind:    class,
		Source:  tok.Source,
		Where:   Where(tok),
		Message: fmt.Sprintf(format, v...),
	}
}

// Where describes the position of tok for a diagnostic message.
func Where(tok *Token) string {
	if tok.Type == EOF {
		return " at end"
	}
	return fmt.Sprintf(" at '%s'", tok.Lexeme)
}

// Line returns the source line of the error.
func (err *Error) Line() int {
	if err.Source == nil {
		return 0
	}
	return err.Source.Line
}

// Error implements the error interface using the canonical
// "[line N] error{where}: message" format.
func (err *Error) Error() string {
	return fmt.Sprintf("[line %d] error%s: %s", err.Line(), err.Where, err.Message)
}

// Class implements Classified.
func (err *Error) Class() ErrorClass {
	return err.Kind
}

// ErrorList accumulates the diagnostics of one pipeline phase.  A nil or
// empty ErrorList means the phase succeeded.
type ErrorList []*Error

// Add appends err to the list.
func (list *ErrorList) Add(err *Error) {
	*list = append(*list, err)
}

// Len returns the number of errors in the list.
func (list ErrorList) Len() int { return len(list) }

// Sort orders the list by source line, keeping report order within a line.
func (list ErrorList) Sort() {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Line() < list[j].Line()
	})
}

// Error implements the error interface.  Each diagnostic occupies one line.
func (list ErrorList) Error() string {
	switch len(list) {
	case 0:
		return "no errors"
	case 1:
		return list[0].Error()
	}
	var buf strings.Builder
	for i, err := range list {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(err.Error())
	}
	return buf.String()
}

// Class returns the class of the first error in the list.
func (list ErrorList) Class() ErrorClass {
	if len(list) == 0 {
		return 0
	}
	return list[0].Kind
}

// Err returns an error equivalent to list, or nil if list is empty.
func (list ErrorList) Err() error {
	if len(list) == 0 {
		return nil
	}
	return list
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (list ErrorList) Unwrap() []error {
	errs := make([]error, len(list))
	for i := range list {
		errs[i] = list[i]
	}
	return errs
}

// ClassOf returns the class of err if it, or any error it wraps, is a
// Classified error.  ClassOf returns 0 when err carries no class.
func ClassOf(err error) ErrorClass {
	var c Classified
	if errors.As(err, &c) {
		return c.Class()
	}
	return 0
}
