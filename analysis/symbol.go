// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/luthersystems/lox/ast"
	"github.com/luthersystems/lox/parser/token"
)

// SymbolKind classifies a symbol definition.
type SymbolKind int

const (
	SymVariable  SymbolKind = iota // var declaration
	SymFunction                    // fun declaration
	SymParameter                   // function parameter
	SymBuiltin                     // native function
)

func (k SymbolKind) String() string {
	switch k {
	case SymVariable:
		return "variable"
	case SymFunction:
		return "function"
	case SymParameter:
		return "parameter"
	case SymBuiltin:
		return "builtin"
	default:
		return "unknown"
	}
}

// Symbol represents a defined name in a scope.
type Symbol struct {
	Name       string
	Kind       SymbolKind
	Source     *token.Location // nil for builtins
	Scope      *Scope
	Signature  *Signature // non-nil for callables
	Node       ast.Node   // declaring statement; nil for builtins and parameters
	References int
}

// Signature describes the parameter signature of a callable symbol.
type Signature struct {
	Params []string
}

// Arity returns the number of arguments the callable requires.
func (sig *Signature) Arity() int {
	if sig == nil {
		return 0
	}
	return len(sig.Params)
}

// Global reports whether sym is declared at file level.
func (sym *Symbol) Global() bool {
	return sym.Scope == nil || sym.Scope.Kind == ScopeGlobal
}

func signatureOf(fn *ast.FunctionStmt) *Signature {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Lexeme
	}
	return &Signature{Params: params}
}
