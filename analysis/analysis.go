// Copyright © 2024 The ELPS authors

// Package analysis provides the static passes that run between parsing and
// execution of lox source.
//
// Resolve computes, for every local variable reference, the number of scopes
// between the reference and its declaration and reports static errors.  The
// interpreter consumes the depths through the Binder interface.  Analyze runs
// the same pass and additionally returns the scope tree, declared symbols and
// references, which tools such as the language server use.
package analysis

import (
	"github.com/luthersystems/lox/ast"
	"github.com/luthersystems/lox/parser/token"
)

// Config controls the behavior of the analyzer.
type Config struct {
	// Builtins are the natives predefined in the global scope.
	Builtins []ExternalSymbol

	// Filename is the source file being analyzed.
	Filename string
}

// ExternalSymbol represents a global defined outside the analyzed source.
type ExternalSymbol struct {
	Name  string
	Arity int
}

// Result holds the output of semantic analysis.
type Result struct {
	RootScope  *Scope
	Symbols    []*Symbol
	References []*Reference
	Unresolved []*UnresolvedRef
	Errors     token.ErrorList
}

// Analyze performs semantic analysis on a parsed program.  It builds a scope
// tree, resolves references, and collects unresolved global references.
// Static errors are reported in Result.Errors.
func Analyze(stmts []ast.Stmt, cfg *Config) *Result {
	if cfg == nil {
		cfg = &Config{}
	}
	root := NewScope(ScopeGlobal, nil, nil)
	populateBuiltins(root, cfg.Builtins)

	r := newResolver(nopBinder{}, root)
	r.resolveStmts(stmts)
	r.resolveGlobals()
	return r.result
}

// Symbols returns the declarations of stmts (functions, variables and
// parameters) in source order.
func Symbols(stmts []ast.Stmt) []*Symbol {
	return Analyze(stmts, nil).Symbols
}

// ReferenceAt returns the reference whose name token contains the given
// 1-based line and column, or nil.
func (r *Result) ReferenceAt(line, col int) *Reference {
	for _, ref := range r.References {
		if contains(ref.Node.Pos(), line, col) {
			return ref
		}
	}
	return nil
}

// SymbolAt returns the symbol whose declaring name contains the given 1-based
// line and column, or nil.
func (r *Result) SymbolAt(line, col int) *Symbol {
	for _, sym := range r.Symbols {
		if sym.Source == nil || sym.Source.Line != line {
			continue
		}
		if col >= sym.Source.Col && col < sym.Source.Col+len(sym.Name) {
			return sym
		}
	}
	return nil
}

// ReferencesTo returns all references bound to sym.
func (r *Result) ReferencesTo(sym *Symbol) []*Reference {
	var refs []*Reference
	for _, ref := range r.References {
		if ref.Symbol == sym {
			refs = append(refs, ref)
		}
	}
	return refs
}

func contains(tok *token.Token, line, col int) bool {
	if tok == nil || tok.Source == nil || tok.Source.Line != line {
		return false
	}
	return col >= tok.Source.Col && col < tok.Source.Col+len(tok.Lexeme)
}

type nopBinder struct{}

func (nopBinder) Resolve(ast.Expr, int) {}
