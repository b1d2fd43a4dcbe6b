// Copyright © 2024 The ELPS authors

package analysis

// populateBuiltins adds the interpreter's native functions to the given
// scope.
func populateBuiltins(scope *Scope, builtins []ExternalSymbol) {
	for _, b := range builtins {
		scope.Define(&Symbol{
			Name:      b.Name,
			Kind:      SymBuiltin,
			Signature: &Signature{Params: make([]string, b.Arity)},
		})
	}
}
