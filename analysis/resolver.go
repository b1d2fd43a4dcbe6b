// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/luthersystems/lox/ast"
	"github.com/luthersystems/lox/parser/token"
)

// Binder receives the static depth of each local variable reference found by
// Resolve.  A depth of zero means the innermost enclosing scope.  References
// that are not reported to the Binder are globals.
type Binder interface {
	Resolve(expr ast.Expr, depth int)
}

// Resolve runs the static resolution pass over a parsed program, reporting
// the depth of every local variable reference to binder.  Resolution does not
// stop at the first error; all static errors are returned.
func Resolve(stmts []ast.Stmt, binder Binder) token.ErrorList {
	if binder == nil {
		binder = nopBinder{}
	}
	r := newResolver(binder, NewScope(ScopeGlobal, nil, nil))
	r.resolveStmts(stmts)
	return r.result.Errors
}

type functionType int

const (
	funcNone functionType = iota
	funcFunction
)

// localScope tracks whether each name declared in a block has finished its
// initializer.
type localScope struct {
	defined map[string]bool
	scope   *Scope
}

type resolver struct {
	binder  Binder
	root    *Scope
	scopes  []*localScope
	current functionType
	globals []*Reference // references awaiting global binding
	result  *Result
}

func newResolver(binder Binder, root *Scope) *resolver {
	return &resolver{
		binder: binder,
		root:   root,
		result: &Result{RootScope: root},
	}
}

func (r *resolver) resolveStmts(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		r.resolveStmt(stmt)
	}
}

func (r *resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		r.beginScope(ScopeBlock, s)
		r.resolveStmts(s.Statements)
		r.endScope()
	case *ast.VarStmt:
		if len(r.scopes) == 0 {
			// A global initializer still sees the previous declaration of
			// the name.
			if s.Initializer != nil {
				r.resolveExpr(s.Initializer)
			}
			r.declare(s.Name, SymVariable, s, nil)
			break
		}
		r.declare(s.Name, SymVariable, s, nil)
		if s.Initializer != nil {
			r.resolveExpr(s.Initializer)
		}
		r.define(s.Name)
	case *ast.FunctionStmt:
		// Defining the name before resolving the body lets a function
		// refer to itself recursively.
		r.declare(s.Name, SymFunction, s, signatureOf(s))
		r.define(s.Name)
		r.resolveFunction(s, funcFunction)
	case *ast.ExpressionStmt:
		r.resolveExpr(s.Expression)
	case *ast.IfStmt:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}
	case *ast.PrintStmt:
		r.resolveExpr(s.Expression)
	case *ast.ReturnStmt:
		if r.current == funcNone {
			r.errorf(s.Keyword, "Can't return from top-level code.")
		}
		if s.Value != nil {
			r.resolveExpr(s.Value)
		}
	case *ast.WhileStmt:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Body)
	}
}

func (r *resolver) resolveFunction(fn *ast.FunctionStmt, typ functionType) {
	enclosing := r.current
	r.current = typ
	defer func() { r.current = enclosing }()

	r.beginScope(ScopeFunction, fn)
	for _, param := range fn.Params {
		r.declare(param, SymParameter, nil, nil)
		r.define(param)
	}
	r.resolveStmts(fn.Body)
	r.endScope()
}

func (r *resolver) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Variable:
		if n := len(r.scopes); n > 0 {
			if defined, ok := r.scopes[n-1].defined[e.Name.Lexeme]; ok && !defined {
				r.errorf(e.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(e, e.Name)
	case *ast.Assign:
		r.resolveExpr(e.Value)
		r.resolveLocal(e, e.Name)
	case *ast.Binary:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Logical:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Unary:
		r.resolveExpr(e.Right)
	case *ast.Grouping:
		r.resolveExpr(e.Expression)
	case *ast.Call:
		r.resolveExpr(e.Callee)
		for _, arg := range e.Args {
			r.resolveExpr(arg)
		}
	case *ast.Literal:
	}
}

// resolveLocal binds expr to the innermost scope declaring name.  When no
// local scope declares it the reference is global.  Top-level code binds to
// the global declaration in effect at that statement; references inside
// function bodies, and those preceding any declaration, are left for
// resolveGlobals.
func (r *resolver) resolveLocal(expr ast.Expr, name *token.Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i].defined[name.Lexeme]; ok {
			depth := len(r.scopes) - 1 - i
			r.binder.Resolve(expr, depth)
			r.reference(expr, name, r.scopes[i].scope.LookupLocal(name.Lexeme), depth)
			return
		}
	}
	if r.current == funcNone {
		if sym := r.root.LookupLocal(name.Lexeme); sym != nil {
			r.reference(expr, name, sym, -1)
			return
		}
	}
	r.globals = append(r.globals, &Reference{
		Source:    name.Source,
		Node:      expr,
		Depth:     -1,
		LateBound: true,
	})
}

// resolveGlobals binds references left unresolved by the local pass to the
// last global declaration of their name.  Globals are late bound, so a
// function body may refer to a global declared after it.
func (r *resolver) resolveGlobals() {
	for _, ref := range r.globals {
		name := ref.Node.Pos().Lexeme
		sym := r.root.LookupLocal(name)
		if sym == nil {
			r.result.Unresolved = append(r.result.Unresolved, &UnresolvedRef{
				Name:   name,
				Source: ref.Source,
				Node:   ref.Node,
			})
			continue
		}
		ref.Symbol = sym
		sym.References++
		r.result.References = append(r.result.References, ref)
	}
	r.globals = nil
}

func (r *resolver) reference(expr ast.Expr, name *token.Token, sym *Symbol, depth int) {
	if sym == nil {
		return
	}
	sym.References++
	r.result.References = append(r.result.References, &Reference{
		Symbol: sym,
		Source: name.Source,
		Node:   expr,
		Depth:  depth,
	})
}

func (r *resolver) beginScope(kind ScopeKind, node ast.Node) {
	parent := r.root
	if n := len(r.scopes); n > 0 {
		parent = r.scopes[n-1].scope
	}
	r.scopes = append(r.scopes, &localScope{
		defined: make(map[string]bool),
		scope:   NewScope(kind, parent, node),
	})
}

func (r *resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// declare adds name to the innermost scope, marked as not yet initialized.
// Names declared at global scope may be redeclared.
func (r *resolver) declare(name *token.Token, kind SymbolKind, node ast.Node, sig *Signature) {
	sym := &Symbol{
		Name:      name.Lexeme,
		Kind:      kind,
		Source:    name.Source,
		Signature: sig,
		Node:      node,
	}
	r.result.Symbols = append(r.result.Symbols, sym)
	n := len(r.scopes)
	if n == 0 {
		r.root.Define(sym)
		return
	}
	top := r.scopes[n-1]
	if _, ok := top.defined[name.Lexeme]; ok {
		r.errorf(name, "Already a variable with this name in this scope.")
	}
	top.defined[name.Lexeme] = false
	top.scope.Define(sym)
}

func (r *resolver) define(name *token.Token) {
	if n := len(r.scopes); n > 0 {
		r.scopes[n-1].defined[name.Lexeme] = true
	}
}

func (r *resolver) errorf(tok *token.Token, format string, v ...interface{}) {
	r.result.Errors.Add(token.Errorf(token.ClassStatic, tok, format, v...))
}
