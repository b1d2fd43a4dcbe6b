// Copyright © 2024 The ELPS authors

// Package ast declares the syntax tree of lox programs.  Expressions and
// statements are closed sum types: the unexported marker methods restrict the
// Expr and Stmt interfaces to the node types declared here, and consumers
// dispatch on them with type switches.
//
// Nodes are immutable once the parser returns them.  The resolver and
// interpreter identify variable references by node pointer.
package ast

import "github.com/luthersystems/lox/parser/token"

// Node is any syntax tree node.
type Node interface {
	// Pos returns the token that best locates the node in source for
	// diagnostics.
	Pos() *token.Token
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

type (
	// Literal is a constant nil, boolean, number or string.
	Literal struct {
		Token *token.Token
		Value interface{}
	}

	// Variable reads a binding.
	Variable struct {
		Name *token.Token
	}

	// Assign stores Value into an existing binding.
	Assign struct {
		Name  *token.Token
		Value Expr
	}

	// Binary is an arithmetic, comparison or equality operation.
	Binary struct {
		Left     Expr
		Operator *token.Token
		Right    Expr
	}

	// Logical is a short-circuiting "and" or "or".
	Logical struct {
		Left     Expr
		Operator *token.Token
		Right    Expr
	}

	// Unary is a prefix "!" or "-".
	Unary struct {
		Operator *token.Token
		Right    Expr
	}

	// Grouping is a parenthesized expression.
	Grouping struct {
		Paren      *token.Token
		Expression Expr
	}

	// Call invokes Callee.  Paren is the closing parenthesis, used to report
	// runtime errors raised by the call.
	Call struct {
		Callee Expr
		Paren  *token.Token
		Args   []Expr
	}
)

func (e *Literal) Pos() *token.Token  { return e.Token }
func (e *Variable) Pos() *token.Token { return e.Name }
func (e *Assign) Pos() *token.Token   { return e.Name }
func (e *Binary) Pos() *token.Token   { return e.Operator }
func (e *Logical) Pos() *token.Token  { return e.Operator }
func (e *Unary) Pos() *token.Token    { return e.Operator }
func (e *Grouping) Pos() *token.Token { return e.Paren }
func (e *Call) Pos() *token.Token     { return e.Paren }

func (*Literal) exprNode()  {}
func (*Variable) exprNode() {}
func (*Assign) exprNode()   {}
func (*Binary) exprNode()   {}
func (*Logical) exprNode()  {}
func (*Unary) exprNode()    {}
func (*Grouping) exprNode() {}
func (*Call) exprNode()     {}

type (
	// ExpressionStmt evaluates an expression for its side effects.
	ExpressionStmt struct {
		Expression Expr
	}

	// PrintStmt writes the stringified value of Expression.
	PrintStmt struct {
		Keyword    *token.Token
		Expression Expr
	}

	// VarStmt declares a variable.  Initializer is nil when omitted.
	VarStmt struct {
		Name        *token.Token
		Initializer Expr
	}

	// BlockStmt introduces a lexical scope.
	BlockStmt struct {
		Brace      *token.Token
		Statements []Stmt
	}

	// IfStmt is a conditional.  Else is nil when there is no else branch.
	IfStmt struct {
		Keyword   *token.Token
		Condition Expr
		Then      Stmt
		Else      Stmt
	}

	// WhileStmt is the only loop construct; "for" loops desugar into it.
	WhileStmt struct {
		Keyword   *token.Token
		Condition Expr
		Body      Stmt
	}

	// FunctionStmt declares a named function.
	FunctionStmt struct {
		Name   *token.Token
		Params []*token.Token
		Body   []Stmt
	}

	// ReturnStmt leaves the enclosing function.  Value is nil for a bare
	// "return;".
	ReturnStmt struct {
		Keyword *token.Token
		Value   Expr
	}
)

func (s *ExpressionStmt) Pos() *token.Token { return s.Expression.Pos() }
func (s *PrintStmt) Pos() *token.Token      { return s.Keyword }
func (s *VarStmt) Pos() *token.Token        { return s.Name }
func (s *BlockStmt) Pos() *token.Token      { return s.Brace }
func (s *IfStmt) Pos() *token.Token         { return s.Keyword }
func (s *WhileStmt) Pos() *token.Token      { return s.Keyword }
func (s *FunctionStmt) Pos() *token.Token   { return s.Name }
func (s *ReturnStmt) Pos() *token.Token     { return s.Keyword }

func (*ExpressionStmt) stmtNode() {}
func (*PrintStmt) stmtNode()      {}
func (*VarStmt) stmtNode()        {}
func (*BlockStmt) stmtNode()      {}
func (*IfStmt) stmtNode()         {}
func (*WhileStmt) stmtNode()      {}
func (*FunctionStmt) stmtNode()   {}
func (*ReturnStmt) stmtNode()     {}

// Arity returns the number of declared parameters.
func (s *FunctionStmt) Arity() int {
	return len(s.Params)
}
