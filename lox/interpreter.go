// Copyright © 2018 The ELPS authors

package lox

import (
	"errors"
	"fmt"
	"time"

	"github.com/luthersystems/lox/ast"
	"github.com/luthersystems/lox/parser/token"
)

// Interpreter executes resolved lox programs.  An Interpreter is not safe for
// concurrent use.  Globals persist across calls to Interpret, so a REPL can
// run each entry against the same Interpreter.
type Interpreter struct {
	Runtime *Runtime
	Globals *Env

	env    *Env             // current scope
	locals map[ast.Expr]int // static depths keyed by node identity
	epoch  time.Time
}

// NewInterpreter returns an Interpreter whose global environment holds the
// default builtins, configured by config in order.
func NewInterpreter(config ...Config) (*Interpreter, error) {
	in := &Interpreter{
		Runtime: StandardRuntime(),
		Globals: NewEnv(nil),
		locals:  make(map[ast.Expr]int),
	}
	in.env = in.Globals
	in.resetClock()
	for _, fn := range DefaultBuiltins() {
		in.Globals.Define(fn.Name, fn)
	}
	for _, fn := range config {
		if err := fn(in); err != nil {
			return nil, err
		}
	}
	return in, nil
}

func (in *Interpreter) resetClock() {
	in.epoch = in.Runtime.Clock()
}

// Resolve records that expr refers to a binding depth scopes above the scope
// in which it is evaluated.  Resolve implements analysis.Binder.
func (in *Interpreter) Resolve(expr ast.Expr, depth int) {
	in.locals[expr] = depth
}

// Interpret executes stmts in order.  The first runtime error aborts the
// remaining statements and is returned as a *RuntimeError.  Bindings made by
// statements that completed before the error remain defined.
func (in *Interpreter) Interpret(stmts []ast.Stmt) error {
	for _, stmt := range stmts {
		_, err := in.execute(stmt)
		if err != nil {
			var rerr *RuntimeError
			if errors.As(err, &rerr) && rerr.Stack == nil {
				rerr.Stack = in.Runtime.Stack.Copy()
			}
			in.env = in.Globals
			in.Runtime.Stack.Reset()
			return err
		}
	}
	return nil
}

// execResult is the outcome of executing a statement.  A returning result
// unwinds enclosing statements up to the function call that executes the
// return.
type execResult struct {
	returning bool
	value     interface{}
}

func (in *Interpreter) execute(stmt ast.Stmt) (execResult, error) {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		_, err := in.evaluate(s.Expression)
		return execResult{}, err
	case *ast.PrintStmt:
		v, err := in.evaluate(s.Expression)
		if err != nil {
			return execResult{}, err
		}
		_, err = fmt.Fprintln(in.Runtime.Stdout, Stringify(v))
		return execResult{}, err
	case *ast.VarStmt:
		var v interface{}
		if s.Initializer != nil {
			var err error
			v, err = in.evaluate(s.Initializer)
			if err != nil {
				return execResult{}, err
			}
		}
		in.env.Define(s.Name.Lexeme, v)
		return execResult{}, nil
	case *ast.BlockStmt:
		return in.executeBlock(s.Statements, NewEnv(in.env))
	case *ast.IfStmt:
		cond, err := in.evaluate(s.Condition)
		if err != nil {
			return execResult{}, err
		}
		if Truthy(cond) {
			return in.execute(s.Then)
		}
		if s.Else != nil {
			return in.execute(s.Else)
		}
		return execResult{}, nil
	case *ast.WhileStmt:
		for {
			cond, err := in.evaluate(s.Condition)
			if err != nil {
				return execResult{}, err
			}
			if !Truthy(cond) {
				return execResult{}, nil
			}
			res, err := in.execute(s.Body)
			if err != nil || res.returning {
				return res, err
			}
		}
	case *ast.FunctionStmt:
		in.env.Define(s.Name.Lexeme, &Function{Decl: s, Closure: in.env})
		return execResult{}, nil
	case *ast.ReturnStmt:
		var v interface{}
		if s.Value != nil {
			var err error
			v, err = in.evaluate(s.Value)
			if err != nil {
				return execResult{}, err
			}
		}
		return execResult{returning: true, value: v}, nil
	default:
		return execResult{}, fmt.Errorf("unknown statement type %T", stmt)
	}
}

// executeBlock executes stmts in env.  The current environment is restored
// however the block exits.
func (in *Interpreter) executeBlock(stmts []ast.Stmt, env *Env) (execResult, error) {
	prev := in.env
	in.env = env
	defer func() { in.env = prev }()
	for _, stmt := range stmts {
		res, err := in.execute(stmt)
		if err != nil || res.returning {
			return res, err
		}
	}
	return execResult{}, nil
}

func (in *Interpreter) evaluate(expr ast.Expr) (interface{}, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return e.Value, nil
	case *ast.Grouping:
		return in.evaluate(e.Expression)
	case *ast.Variable:
		return in.lookUpVariable(e.Name, e)
	case *ast.Assign:
		v, err := in.evaluate(e.Value)
		if err != nil {
			return nil, err
		}
		if depth, ok := in.locals[e]; ok {
			in.env.AssignAt(depth, e.Name.Lexeme, v)
			return v, nil
		}
		if err := in.Globals.Assign(e.Name, v); err != nil {
			return nil, err
		}
		return v, nil
	case *ast.Unary:
		return in.evaluateUnary(e)
	case *ast.Binary:
		return in.evaluateBinary(e)
	case *ast.Logical:
		left, err := in.evaluate(e.Left)
		if err != nil {
			return nil, err
		}
		if e.Operator.Type == token.OR {
			if Truthy(left) {
				return left, nil
			}
		} else if !Truthy(left) {
			return left, nil
		}
		return in.evaluate(e.Right)
	case *ast.Call:
		return in.evaluateCall(e)
	default:
		return nil, fmt.Errorf("unknown expression type %T", expr)
	}
}

func (in *Interpreter) lookUpVariable(name *token.Token, expr ast.Expr) (interface{}, error) {
	if depth, ok := in.locals[expr]; ok {
		return in.env.GetAt(depth, name.Lexeme), nil
	}
	return in.Globals.Get(name)
}

func (in *Interpreter) evaluateUnary(e *ast.Unary) (interface{}, error) {
	right, err := in.evaluate(e.Right)
	if err != nil {
		return nil, err
	}
	switch e.Operator.Type {
	case token.BANG:
		return !Truthy(right), nil
	case token.MINUS:
		x, ok := right.(float64)
		if !ok {
			return nil, runtimeErrorf(e.Operator, "Operand must be a number.")
		}
		return -x, nil
	}
	return nil, runtimeErrorf(e.Operator, "Unknown unary operator '%s'.", e.Operator.Lexeme)
}

func (in *Interpreter) evaluateBinary(e *ast.Binary) (interface{}, error) {
	left, err := in.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := in.evaluate(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Operator.Type {
	case token.EQUAL_EQUAL:
		return Equal(left, right), nil
	case token.BANG_EQUAL:
		return !Equal(left, right), nil
	case token.PLUS:
		switch l := left.(type) {
		case float64:
			if r, ok := right.(float64); ok {
				return l + r, nil
			}
		case string:
			if r, ok := right.(string); ok {
				return l + r, nil
			}
		}
		return nil, runtimeErrorf(e.Operator, "Operands must be two numbers or two strings.")
	}

	l, lok := left.(float64)
	r, rok := right.(float64)
	if !lok || !rok {
		return nil, runtimeErrorf(e.Operator, "Operands must be numbers.")
	}
	switch e.Operator.Type {
	case token.MINUS:
		return l - r, nil
	case token.STAR:
		return l * r, nil
	case token.SLASH:
		return l / r, nil
	case token.GREATER:
		return l > r, nil
	case token.GREATER_EQUAL:
		return l >= r, nil
	case token.LESS:
		return l < r, nil
	case token.LESS_EQUAL:
		return l <= r, nil
	}
	return nil, runtimeErrorf(e.Operator, "Unknown binary operator '%s'.", e.Operator.Lexeme)
}

func (in *Interpreter) evaluateCall(e *ast.Call) (interface{}, error) {
	callee, err := in.evaluate(e.Callee)
	if err != nil {
		return nil, err
	}
	args := make([]interface{}, len(e.Args))
	for i, arg := range e.Args {
		args[i], err = in.evaluate(arg)
		if err != nil {
			return nil, err
		}
	}
	fn, ok := callee.(Callable)
	if !ok {
		return nil, runtimeErrorf(e.Paren, "Can only call functions.")
	}
	if len(args) != fn.Arity() {
		return nil, runtimeErrorf(e.Paren, "Expected %d arguments but got %d.", fn.Arity(), len(args))
	}
	return in.call(e.Paren, fn, args)
}

// call invokes fn with a new frame on the call stack.  A runtime error raised
// inside fn captures the stack before the frame is popped.
func (in *Interpreter) call(site *token.Token, fn Callable, args []interface{}) (interface{}, error) {
	err := in.Runtime.Stack.Push(site.Source, callableName(fn))
	if err != nil {
		var overflow *StackOverflowError
		if errors.As(err, &overflow) {
			return nil, &RuntimeError{
				Token:   site,
				Message: "Stack overflow.",
				Stack:   in.Runtime.Stack.Copy(),
			}
		}
		return nil, err
	}
	defer in.Runtime.Stack.Pop()

	if p := in.Runtime.Profiler; p != nil && p.IsEnabled() {
		defer p.Start(fn)()
	}

	v, err := fn.Call(in, args)
	if err != nil {
		var rerr *RuntimeError
		if errors.As(err, &rerr) && rerr.Stack == nil {
			rerr.Stack = in.Runtime.Stack.Copy()
		}
		return nil, err
	}
	return v, nil
}

func callableName(fn Callable) string {
	switch fn := fn.(type) {
	case *Function:
		return fn.Name()
	case *NativeFunction:
		return fn.Name
	default:
		return fn.String()
	}
}
