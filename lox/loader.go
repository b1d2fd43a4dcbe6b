// Copyright © 2018 The ELPS authors

package lox

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/luthersystems/lox/analysis"
	"github.com/luthersystems/lox/ast"
)

// Run resolves stmts and, if resolution reports no errors, executes them.
// Static errors are returned as a token.ErrorList and nothing is executed.
func (in *Interpreter) Run(stmts []ast.Stmt) error {
	if errs := analysis.Resolve(stmts, in); len(errs) > 0 {
		return errs
	}
	return in.Interpret(stmts)
}

// Load reads a program from r using the configured Reader and runs it.  The
// returned error is the first failing phase's error: a token.ErrorList for
// lexical, syntax or static errors or a *RuntimeError.
func (in *Interpreter) Load(name string, r io.Reader) error {
	if in.Runtime.Reader == nil {
		return errors.New("no reader configured")
	}
	stmts, err := in.Runtime.Reader.Read(name, r)
	if err != nil {
		return err
	}
	return in.Run(stmts)
}

// LoadString runs the program in source.
func (in *Interpreter) LoadString(name, source string) error {
	return in.Load(name, strings.NewReader(source))
}

// LoadFile runs the program stored at path.
func (in *Interpreter) LoadFile(path string) error {
	f, err := os.Open(path) //#nosec G304
	if err != nil {
		return fmt.Errorf("unable to open source file: %w", err)
	}
	defer f.Close() //nolint:errcheck
	return in.Load(path, f)
}
