// Copyright © 2018 The ELPS authors

// Package parser provides the default lox.Reader.
package parser

import (
	"io"

	"github.com/luthersystems/lox/ast"
	"github.com/luthersystems/lox/lox"
	"github.com/luthersystems/lox/parser/rdparser"
)

type reader struct{}

// NewReader returns a new lox.Reader
func NewReader() lox.Reader {
	return reader{}
}

// Read implements lox.Reader.  Lexical and syntax errors are returned
// together as a token.ErrorList ordered by line.
func (reader) Read(name string, r io.Reader) ([]ast.Stmt, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	stmts, errs := rdparser.ParseSource(name, string(b))
	if len(errs) > 0 {
		return nil, errs
	}
	return stmts, nil
}
