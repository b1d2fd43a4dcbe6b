// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/luthersystems/lox/ast"
	"github.com/luthersystems/lox/parser/token"
)

// Reference records a resolved symbol usage.
type Reference struct {
	Symbol *Symbol
	Source *token.Location
	Node   ast.Expr // *ast.Variable or *ast.Assign
	// Depth is the number of scopes between the reference and its
	// declaration, or -1 when the name is bound at global scope.
	Depth int
	// LateBound marks a global reference bound to the last declaration of
	// its name because the declaration in effect when it runs is not known
	// statically, as in a function body.
	LateBound bool
}

// UnresolvedRef records a symbol usage that could not be resolved.
type UnresolvedRef struct {
	Name   string
	Source *token.Location
	Node   ast.Expr
}
