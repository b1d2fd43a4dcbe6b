// Copyright © 2024 The ELPS authors

package astutil

import (
	"bytes"
	"testing"

	"github.com/luthersystems/lox/ast"
	"github.com/luthersystems/lox/parser/lexer"
	"github.com/luthersystems/lox/parser/rdparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	tokens, errs := lexer.Scan("test", src)
	require.Empty(t, errs)
	stmts, errs := rdparser.Parse(tokens)
	require.Empty(t, errs)
	return stmts
}

func TestWalk_Depth(t *testing.T) {
	stmts := parse(t, `fun f(a) { print a + 1; }`)
	type visit struct {
		typ   string
		depth int
	}
	var visits []visit
	Walk(stmts, func(node ast.Node, parent ast.Node, depth int) {
		if depth == 0 {
			assert.Nil(t, parent)
		} else {
			assert.NotNil(t, parent)
		}
		visits = append(visits, visit{Sprint(node), depth})
	})
	assert.Equal(t, []visit{
		{"(fun f (a) (print (+ a 1)))", 0},
		{"(print (+ a 1))", 1},
		{"(+ a 1)", 2},
		{"a", 3},
		{"1", 3},
	}, visits)
}

func TestInspect_Prune(t *testing.T) {
	stmts := parse(t, `print 1; { print 2; } print 3;`)
	var printed []string
	for _, stmt := range stmts {
		Inspect(stmt, func(node ast.Node) bool {
			if _, ok := node.(*ast.BlockStmt); ok {
				return false
			}
			if p, ok := node.(*ast.PrintStmt); ok {
				printed = append(printed, Sprint(p.Expression))
			}
			return true
		})
	}
	assert.Equal(t, []string{"1", "3"}, printed)
}

func TestChildren_OptionalOmitted(t *testing.T) {
	stmts := parse(t, `var a; if (a) print a; return;`)
	require.Len(t, stmts, 3)
	assert.Empty(t, Children(stmts[0]))
	assert.Len(t, Children(stmts[1]), 2)
	assert.Empty(t, Children(stmts[2]))
}

func TestIdentifiers(t *testing.T) {
	stmts := parse(t, `var x = 1; fun add(a, b) { return a + b; } x = add(x, 2);`)
	var names []string
	for _, id := range Identifiers(stmts) {
		names = append(names, id.Lexeme)
	}
	assert.Equal(t, []string{"x", "add", "a", "b", "a", "b", "x", "add", "x"}, names)
}

func TestSprint(t *testing.T) {
	tests := []struct {
		source string
		output string
	}{
		{`1 + 2 * 3;`, `(; (+ 1 (* 2 3)))`},
		{`print -(1.5);`, `(print (- (group 1.5)))`},
		{`print "hi";`, `(print "hi")`},
		{`var a;`, `(var a)`},
		{`var a = nil;`, `(var a nil)`},
		{`a = b = true;`, `(; (= a (= b true)))`},
		{`f(1)(2, x);`, `(; (call (call f 1) 2 x))`},
		{`print a or b and !c;`, `(print (or a (and b (! c))))`},
		{`if (a) print 1; else print 2;`, `(if a (print 1) (print 2))`},
		{`while (false) {}`, `(while false (block))`},
		{`fun f() { return; }`, `(fun f () (return))`},
	}
	for i, test := range tests {
		stmts := parse(t, test.source)
		require.Len(t, stmts, 1, "test %d", i)
		assert.Equal(t, test.output, Sprint(stmts[0]), "test %d", i)
	}
}

func TestFprint(t *testing.T) {
	stmts := parse(t, `fun f(a) { if (a) { print a; } else print 0; } f(1);`)
	var buf bytes.Buffer
	require.NoError(t, Fprint(&buf, stmts))
	assert.Equal(t, `(fun f (a)
  (if a
    (block
      (print a))
    (print 0)))
(; (call f 1))
`, buf.String())
}
