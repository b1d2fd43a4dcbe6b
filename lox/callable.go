// Copyright © 2018 The ELPS authors

package lox

import (
	"fmt"

	"github.com/luthersystems/lox/ast"
)

// Callable is a value that can be invoked by a call expression.
type Callable interface {
	// Arity returns the exact number of arguments the callable accepts.
	Arity() int
	// Call invokes the callable with arguments that have already been
	// checked against Arity.
	Call(in *Interpreter, args []interface{}) (interface{}, error)
	String() string
}

// NativeFunction is a Callable implemented in Go.
type NativeFunction struct {
	Name  string
	NArgs int
	Fn    func(in *Interpreter, args []interface{}) (interface{}, error)
}

var _ Callable = (*NativeFunction)(nil)

// Arity implements Callable.
func (fn *NativeFunction) Arity() int {
	return fn.NArgs
}

// Call implements Callable.
func (fn *NativeFunction) Call(in *Interpreter, args []interface{}) (interface{}, error) {
	return fn.Fn(in, args)
}

func (fn *NativeFunction) String() string {
	return "<native fn>"
}

// Function is a function declared in lox source together with the
// environment that was current when the declaration executed.
type Function struct {
	Decl    *ast.FunctionStmt
	Closure *Env
}

var _ Callable = (*Function)(nil)

// Name returns the declared name of fn.
func (fn *Function) Name() string {
	return fn.Decl.Name.Lexeme
}

// Arity implements Callable.
func (fn *Function) Arity() int {
	return fn.Decl.Arity()
}

// Call implements Callable.  Parameters are bound in a new environment
// enclosed by the closure, never by the caller's environment.
func (fn *Function) Call(in *Interpreter, args []interface{}) (interface{}, error) {
	env := NewEnv(fn.Closure)
	for i, param := range fn.Decl.Params {
		env.Define(param.Lexeme, args[i])
	}
	res, err := in.executeBlock(fn.Decl.Body, env)
	if err != nil {
		return nil, err
	}
	return res.value, nil
}

func (fn *Function) String() string {
	return fmt.Sprintf("<fn %s>", fn.Name())
}
