// Copyright © 2018 The ELPS authors

// Package lox implements the runtime of the lox scripting language: lexical
// environments, callable values and a tree-walking Interpreter.
//
// Source is turned into statements by a Reader (see package parser), checked
// by the static resolver in package analysis, and then executed:
//
//	in, err := lox.NewInterpreter(lox.WithReader(parser.NewReader()))
//	if err != nil {
//		return err
//	}
//	err = in.LoadString("main.lox", `print "hello";`)
package lox

import (
	"io"

	"github.com/luthersystems/lox/ast"
)

// Version is the version of the interpreter reported by the command line.
const Version = "1.0"

// Reader turns source text into statements.
type Reader interface {
	// Read the contents of r and return the statements of the program.  Read
	// returns a token.ErrorList when the source has lexical or syntax errors.
	Read(name string, r io.Reader) ([]ast.Stmt, error)
}
