// Copyright © 2024 The ELPS authors

// Package astutil provides shared syntax tree utilities for lox programs.
//
// These helpers are used by the command line tools and the language server
// for traversing and printing parsed programs.
package astutil

import (
	"github.com/luthersystems/lox/ast"
	"github.com/luthersystems/lox/parser/token"
)

// Walk calls fn for every node in the tree, depth-first in source order.
// parent is nil for top-level statements.
func Walk(stmts []ast.Stmt, fn func(node ast.Node, parent ast.Node, depth int)) {
	for _, stmt := range stmts {
		walkNode(stmt, nil, 0, fn)
	}
}

func walkNode(node ast.Node, parent ast.Node, depth int, fn func(ast.Node, ast.Node, int)) {
	if isNil(node) {
		return
	}
	fn(node, parent, depth)
	for _, child := range Children(node) {
		walkNode(child, node, depth+1, fn)
	}
}

// Inspect traverses the tree rooted at node depth-first.  If fn returns false
// the children of the node are skipped.
func Inspect(node ast.Node, fn func(ast.Node) bool) {
	if isNil(node) || !fn(node) {
		return
	}
	for _, child := range Children(node) {
		Inspect(child, fn)
	}
}

// Children returns the direct child nodes of node in source order.  Absent
// optional children (an omitted else branch or initializer) are not
// included.
func Children(node ast.Node) []ast.Node {
	var c []ast.Node
	add := func(n ast.Node) {
		if !isNil(n) {
			c = append(c, n)
		}
	}
	switch n := node.(type) {
	case *ast.Assign:
		add(n.Value)
	case *ast.Binary:
		add(n.Left)
		add(n.Right)
	case *ast.Logical:
		add(n.Left)
		add(n.Right)
	case *ast.Unary:
		add(n.Right)
	case *ast.Grouping:
		add(n.Expression)
	case *ast.Call:
		add(n.Callee)
		for _, arg := range n.Args {
			add(arg)
		}
	case *ast.ExpressionStmt:
		add(n.Expression)
	case *ast.PrintStmt:
		add(n.Expression)
	case *ast.VarStmt:
		add(n.Initializer)
	case *ast.BlockStmt:
		for _, s := range n.Statements {
			add(s)
		}
	case *ast.IfStmt:
		add(n.Condition)
		add(n.Then)
		add(n.Else)
	case *ast.WhileStmt:
		add(n.Condition)
		add(n.Body)
	case *ast.FunctionStmt:
		for _, s := range n.Body {
			add(s)
		}
	case *ast.ReturnStmt:
		add(n.Value)
	}
	return c
}

// Identifiers returns every identifier token of the tree in source order:
// declared names, parameters and variable references.
func Identifiers(stmts []ast.Stmt) []*token.Token {
	var ids []*token.Token
	Walk(stmts, func(node ast.Node, _ ast.Node, _ int) {
		switch n := node.(type) {
		case *ast.Variable:
			ids = append(ids, n.Name)
		case *ast.Assign:
			ids = append(ids, n.Name)
		case *ast.VarStmt:
			ids = append(ids, n.Name)
		case *ast.FunctionStmt:
			ids = append(ids, n.Name)
			ids = append(ids, n.Params...)
		}
	})
	return ids
}

func isNil(node ast.Node) bool {
	return node == nil
}
