// Copyright © 2018 The ELPS authors

package rdparser

import (
	"github.com/luthersystems/lox/ast"
	"github.com/luthersystems/lox/parser/lexer"
	"github.com/luthersystems/lox/parser/token"
)

// ParseSource scans and parses src.  Scanning errors do not prevent parsing,
// so a single call reports every lexical and syntax error in the source,
// ordered by line.
func ParseSource(file string, src string) ([]ast.Stmt, token.ErrorList) {
	lex := lexer.New(file, src)
	stmts, perrs := New(lex).ParseProgram()
	errs := append(token.ErrorList{}, lex.Errors()...)
	errs = append(errs, perrs...)
	if len(errs) == 0 {
		return stmts, nil
	}
	errs.Sort()
	return stmts, errs
}
