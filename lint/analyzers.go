// Copyright © 2024 The ELPS authors

package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/luthersystems/lox/analysis"
	"github.com/luthersystems/lox/ast"
)

// AnalyzerStaticError reports the errors the resolver would raise before
// running the program.
var AnalyzerStaticError = &Analyzer{
	Name:     "static-error",
	Severity: SeverityError,
	Doc:      "Report errors that prevent a program from running.\n\nThese are the checks the interpreter performs after parsing: returning from top-level code, redeclaring a local in the same scope and reading a local in its own initializer.",
	Run: func(pass *Pass) error {
		if pass.Semantics == nil {
			return nil
		}
		for _, err := range pass.Semantics.Errors {
			pass.Reportf(err.Source, "%s", err.Message)
		}
		return nil
	},
}

// AnalyzerUndefinedVariable reports reads and assignments of globals that
// are never declared.
var AnalyzerUndefinedVariable = &Analyzer{
	Name:     "undefined-variable",
	Severity: SeverityWarning,
	Doc:      "Report globals that are used but never declared.\n\nGlobals are late bound so the program only fails if the statement actually runs, but a name that no declaration or native provides is almost always a typo.",
	Run: func(pass *Pass) error {
		if pass.Semantics == nil {
			return nil
		}
		for _, ref := range pass.Semantics.Unresolved {
			pass.Reportf(ref.Source, "undefined variable '%s'", ref.Name)
		}
		return nil
	},
}

// AnalyzerUnusedVariable reports local variables and functions that are
// never referenced.
var AnalyzerUnusedVariable = &Analyzer{
	Name:     "unused-variable",
	Severity: SeverityWarning,
	Doc:      "Report local variables and functions that are declared but never used.\n\nGlobals and parameters are not checked. Names starting with an underscore are ignored.",
	Run: func(pass *Pass) error {
		if pass.Semantics == nil {
			return nil
		}
		for _, sym := range pass.Semantics.Symbols {
			if sym.Global() || sym.References > 0 || strings.HasPrefix(sym.Name, "_") {
				continue
			}
			switch sym.Kind {
			case analysis.SymVariable:
				pass.Reportf(sym.Source, "variable '%s' declared and not used", sym.Name)
			case analysis.SymFunction:
				pass.Reportf(sym.Source, "function '%s' declared and not used", sym.Name)
			}
		}
		return nil
	},
}

// AnalyzerShadowedVariable reports local declarations that hide a local
// declared in an enclosing scope.
var AnalyzerShadowedVariable = &Analyzer{
	Name:     "shadowed-variable",
	Severity: SeverityInfo,
	Doc:      "Report local declarations that shadow an enclosing local.\n\nShadowing a global is not reported.",
	Run: func(pass *Pass) error {
		if pass.Semantics == nil {
			return nil
		}
		for _, sym := range pass.Semantics.Symbols {
			if sym.Global() {
				continue
			}
			outer := lookupEnclosingLocal(sym.Scope.Parent, sym.Name)
			if outer == nil || outer.Source == nil {
				continue
			}
			pass.ReportWithNotes(Diagnostic{
				Pos:     positionOf(sym.Source),
				Message: fmt.Sprintf("declaration of '%s' shadows an enclosing declaration", sym.Name),
			}, fmt.Sprintf("'%s' is declared at %s", sym.Name, outer.Source))
		}
		return nil
	},
}

func lookupEnclosingLocal(scope *analysis.Scope, name string) *analysis.Symbol {
	for s := scope; s != nil && s.Kind != analysis.ScopeGlobal; s = s.Parent {
		if sym := s.LookupLocal(name); sym != nil {
			return sym
		}
	}
	return nil
}

// AnalyzerCallArity reports calls to known functions with the wrong number
// of arguments.
var AnalyzerCallArity = &Analyzer{
	Name:     "call-arity",
	Severity: SeverityError,
	Doc:      "Check argument counts of calls to declared functions and natives.\n\nA call is checked only when its callee names a function declaration or native that is never reassigned, so the callee at runtime is known. A global function declared more than once is checked against the declaration in effect at each top-level call.",
	Run: func(pass *Pass) error {
		if pass.Semantics == nil {
			return nil
		}
		refs := make(map[ast.Expr]*analysis.Reference)
		reassigned := make(map[*analysis.Symbol]bool)
		for _, ref := range pass.Semantics.References {
			refs[ref.Node] = ref
			if _, ok := ref.Node.(*ast.Assign); ok {
				reassigned[ref.Symbol] = true
			}
		}
		globalDecls := make(map[string]int)
		for _, sym := range pass.Semantics.Symbols {
			if sym.Global() {
				globalDecls[sym.Name]++
			}
		}
		Calls(pass.Stmts, func(call *ast.Call) {
			callee, ok := call.Callee.(*ast.Variable)
			if !ok {
				return
			}
			ref := refs[callee]
			if ref == nil || reassigned[ref.Symbol] {
				return
			}
			if ref.LateBound && globalDecls[ref.Symbol.Name] > 1 {
				return
			}
			sym := ref.Symbol
			if sym.Kind != analysis.SymFunction && sym.Kind != analysis.SymBuiltin {
				return
			}
			if want := sym.Signature.Arity(); want != len(call.Args) {
				pass.Reportf(callee.Name.Source, "Expected %d arguments but got %d.", want, len(call.Args))
			}
		})
		return nil
	},
}

// AnalyzerUnreachableCode reports statements that follow a return in the
// same statement list.
var AnalyzerUnreachableCode = &Analyzer{
	Name:     "unreachable-code",
	Severity: SeverityWarning,
	Doc:      "Report statements that can never execute.\n\nA statement is unreachable when an earlier statement of the same block returns on every path.",
	Run: func(pass *Pass) error {
		StatementLists(pass.Stmts, func(list []ast.Stmt) {
			for i, stmt := range list {
				if Terminates(stmt) && i+1 < len(list) {
					pass.Reportf(SourceOf(list[i+1]), "unreachable code")
					return
				}
			}
		})
		return nil
	},
}

// AnalyzerSelfAssignment reports assignments of a variable to itself.
var AnalyzerSelfAssignment = &Analyzer{
	Name:     "self-assignment",
	Severity: SeverityWarning,
	Doc:      "Report assignments of a variable to itself, such as `x = x;`.",
	Run: func(pass *Pass) error {
		Walk(pass.Stmts, func(node ast.Node) {
			assign, ok := node.(*ast.Assign)
			if !ok {
				return
			}
			if v, ok := assign.Value.(*ast.Variable); ok && v.Name.Lexeme == assign.Name.Lexeme {
				pass.Reportf(assign.Name.Source, "self-assignment of '%s'", assign.Name.Lexeme)
			}
		})
		return nil
	},
}

// AnalyzerConstantCondition reports if statements whose condition is a
// literal and while loops that can never run.
var AnalyzerConstantCondition = &Analyzer{
	Name:     "constant-condition",
	Severity: SeverityWarning,
	Doc:      "Report conditions that are literal constants.\n\nAn if statement on a literal always takes the same branch. A while loop on a falsey literal never runs its body. `while (true)` is an accepted idiom and is not reported.",
	Run: func(pass *Pass) error {
		Walk(pass.Stmts, func(node ast.Node) {
			switch n := node.(type) {
			case *ast.IfStmt:
				if lit, ok := n.Condition.(*ast.Literal); ok {
					pass.Reportf(n.Keyword.Source, "condition is always %t", truthy(lit.Value))
				}
			case *ast.WhileStmt:
				if lit, ok := n.Condition.(*ast.Literal); ok && !truthy(lit.Value) {
					pass.Reportf(n.Keyword.Source, "loop body never runs")
				}
			}
		})
		return nil
	},
}

// DefaultAnalyzers returns the built-in set of lint checks.
func DefaultAnalyzers() []*Analyzer {
	return []*Analyzer{
		AnalyzerStaticError,
		AnalyzerUndefinedVariable,
		AnalyzerUnusedVariable,
		AnalyzerShadowedVariable,
		AnalyzerCallArity,
		AnalyzerUnreachableCode,
		AnalyzerSelfAssignment,
		AnalyzerConstantCondition,
	}
}

// AnalyzerNames returns a sorted list of all default analyzer names.
func AnalyzerNames() []string {
	analyzers := DefaultAnalyzers()
	names := make([]string, len(analyzers))
	for i, a := range analyzers {
		names[i] = a.Name
	}
	sort.Strings(names)
	return names
}

// AnalyzerDoc returns a formatted documentation string for all analyzers.
func AnalyzerDoc() string {
	var b strings.Builder
	for _, a := range DefaultAnalyzers() {
		fmt.Fprintf(&b, "  %s\n", a.Name)
		lines := strings.Split(a.Doc, "\n")
		fmt.Fprintf(&b, "    %s\n\n", lines[0])
	}
	return b.String()
}
