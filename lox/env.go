// Copyright © 2018 The ELPS authors

package lox

import (
	"fmt"

	"github.com/luthersystems/lox/parser/token"
)

// Env is a lexical scope: a mapping of names to values with a link to the
// enclosing scope.  The parent of an Env is fixed when it is created.
type Env struct {
	Scope  map[string]interface{}
	Parent *Env
	names  []string
}

// NewEnv returns a new Env enclosed by parent.  The global environment has a
// nil parent.
func NewEnv(parent *Env) *Env {
	return &Env{
		Scope:  make(map[string]interface{}),
		Parent: parent,
	}
}

// Define binds name to v in env, replacing any existing binding of name in
// env.  Bindings in enclosing scopes are unaffected.
func (env *Env) Define(name string, v interface{}) {
	if _, ok := env.Scope[name]; !ok {
		env.names = append(env.names, name)
	}
	env.Scope[name] = v
}

// Get returns the value bound to name in env or its nearest enclosing scope.
func (env *Env) Get(name *token.Token) (interface{}, error) {
	for e := env; e != nil; e = e.Parent {
		if v, ok := e.Scope[name.Lexeme]; ok {
			return v, nil
		}
	}
	return nil, undefined(name)
}

// Assign updates the nearest existing binding of name.  Assign never creates
// a binding; assigning an undeclared name is an error.
func (env *Env) Assign(name *token.Token, v interface{}) error {
	for e := env; e != nil; e = e.Parent {
		if _, ok := e.Scope[name.Lexeme]; ok {
			e.Scope[name.Lexeme] = v
			return nil
		}
	}
	return undefined(name)
}

// GetAt returns the value of name in the scope exactly depth links above env.
func (env *Env) GetAt(depth int, name string) interface{} {
	return env.Ancestor(depth).Scope[name]
}

// AssignAt binds name to v in the scope exactly depth links above env.
func (env *Env) AssignAt(depth int, name string, v interface{}) {
	env.Ancestor(depth).Scope[name] = v
}

// Ancestor returns the scope depth links above env.  Ancestor panics if the
// chain is shorter than depth, which means the static depths were computed
// for a different tree.
func (env *Env) Ancestor(depth int) *Env {
	e := env
	for i := 0; i < depth; i++ {
		if e.Parent == nil {
			panic(fmt.Sprintf("scope depth %d exceeds environment chain", depth))
		}
		e = e.Parent
	}
	return e
}

// Names returns the names bound directly in env in the order they were first
// defined.
func (env *Env) Names() []string {
	names := make([]string, len(env.names))
	copy(names, env.names)
	return names
}

// Len returns the number of names bound directly in env.
func (env *Env) Len() int {
	return len(env.Scope)
}

func undefined(name *token.Token) error {
	return runtimeErrorf(name, "Undefined variable '%s'.", name.Lexeme)
}
