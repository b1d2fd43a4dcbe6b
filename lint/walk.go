// Copyright © 2024 The ELPS authors

package lint

import (
	"github.com/luthersystems/lox/ast"
	"github.com/luthersystems/lox/astutil"
	"github.com/luthersystems/lox/parser/token"
)

// Walk calls fn for every node in the program, depth-first.
func Walk(stmts []ast.Stmt, fn func(node ast.Node)) {
	astutil.Walk(stmts, func(node ast.Node, _ ast.Node, _ int) {
		fn(node)
	})
}

// StatementLists calls fn for the top-level statements and for every
// statement sequence a program nests: braced blocks and function bodies.
// Blocks synthesized by the parser when it desugars a for loop are skipped
// because their statements do not appear in that order in source.
func StatementLists(stmts []ast.Stmt, fn func(list []ast.Stmt)) {
	fn(stmts)
	astutil.Walk(stmts, func(node ast.Node, _ ast.Node, _ int) {
		switch n := node.(type) {
		case *ast.BlockStmt:
			if n.Brace != nil && n.Brace.Type == token.LEFT_BRACE {
				fn(n.Statements)
			}
		case *ast.FunctionStmt:
			fn(n.Body)
		}
	})
}

// Calls calls fn for every call expression in the program.
func Calls(stmts []ast.Stmt, fn func(call *ast.Call)) {
	astutil.Walk(stmts, func(node ast.Node, _ ast.Node, _ int) {
		if call, ok := node.(*ast.Call); ok {
			fn(call)
		}
	})
}

// SourceOf returns the best source location for a node, or nil.
func SourceOf(node ast.Node) *token.Location {
	if stmt, ok := node.(*ast.ExpressionStmt); ok {
		node = leftmost(stmt.Expression)
	}
	tok := node.Pos()
	if tok == nil {
		return nil
	}
	return tok.Source
}

// leftmost descends to the first operand of an expression so that binary
// operations and calls are located at the start of their source text.
func leftmost(expr ast.Expr) ast.Expr {
	for {
		switch e := expr.(type) {
		case *ast.Binary:
			expr = e.Left
		case *ast.Logical:
			expr = e.Left
		case *ast.Call:
			expr = e.Callee
		default:
			return expr
		}
	}
}

// Terminates reports whether control never falls off the end of stmt: it is
// a return, a block containing one, or an if whose branches both terminate.
func Terminates(stmt ast.Stmt) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.BlockStmt:
		for _, inner := range s.Statements {
			if Terminates(inner) {
				return true
			}
		}
	case *ast.IfStmt:
		return s.Else != nil && Terminates(s.Then) && Terminates(s.Else)
	}
	return false
}

// truthy reports the truthiness of a literal value: nil and false are falsey.
func truthy(v interface{}) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	}
	return true
}
