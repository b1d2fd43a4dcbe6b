// Copyright © 2018 The ELPS authors

package rdparser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/luthersystems/lox/ast"
	"github.com/luthersystems/lox/astutil"
	"github.com/luthersystems/lox/parser/lexer"
	"github.com/luthersystems/lox/parser/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseString(t *testing.T, src string) ([]ast.Stmt, token.ErrorList) {
	t.Helper()
	tokens, errs := lexer.Scan("test", src)
	require.Empty(t, errs, "lexical errors in %q", src)
	return Parse(tokens)
}

func TestParser(t *testing.T) {
	tests := []struct {
		source string
		output string
	}{
		{`1;`, `(; 1)`},
		{`12.5;`, `(; 12.5)`},
		{`"xyz";`, `(; "xyz")`},
		{`true; false; nil;`, "(; true)\n(; false)\n(; nil)"},
		{`2 + 3 * 4;`, `(; (+ 2 (* 3 4)))`},
		{`1 - 2 - 3;`, `(; (- (- 1 2) 3))`},
		{`8 / 4 / 2;`, `(; (/ (/ 8 4) 2))`},
		{`(1 + 2) * 3;`, `(; (* (group (+ 1 2)) 3))`},
		{`!!a;`, `(; (! (! a)))`},
		{`-a * b;`, `(; (* (- a) b))`},
		{`a < b == c >= d;`, `(; (== (< a b) (>= c d)))`},
		{`a != b;`, `(; (!= a b))`},
		{`a or b or c;`, `(; (or (or a b) c))`},
		{`a and b or c and d;`, `(; (or (and a b) (and c d)))`},
		{`a = b = c;`, `(; (= a (= b c)))`},
		{`a = 1 + 2;`, `(; (= a (+ 1 2)))`},
		{`f();`, `(; (call f))`},
		{`f(1, 2)(3);`, `(; (call (call f 1 2) 3))`},
		{`print a;`, `(print a)`},
		{`var a;`, `(var a)`},
		{`var a = "x";`, `(var a "x")`},
		{`{ var a = 1; print a; }`, `(block (var a 1) (print a))`},
		{`{}`, `(block)`},
		{`if (a) print 1;`, `(if a (print 1))`},
		{`if (a) if (b) print 1; else print 2;`, `(if a (if b (print 1) (print 2)))`},
		{`while (a) a = a - 1;`, `(while a (; (= a (- a 1))))`},
		{`fun f() {}`, `(fun f ())`},
		{`fun add(a, b) { return a + b; }`, `(fun add (a b) (return (+ a b)))`},
		{`fun f() { return; }`, `(fun f () (return))`},
	}

	for i, test := range tests {
		stmts, errs := parseString(t, test.source)
		if !assert.Empty(t, errs, "test %d: %q", i, test.source) {
			continue
		}
		assert.Equal(t, test.output, astutil.SprintProgram(stmts), "test %d: %q", i, test.source)
	}
}

func TestParser_ForDesugar(t *testing.T) {
	tests := []struct {
		source string
		output string
	}{
		{
			`for (var i = 0; i < 3; i = i + 1) print i;`,
			`(block (var i 0) (while (< i 3) (block (print i) (; (= i (+ i 1))))))`,
		},
		{
			`for (i = 0; i < 3;) print i;`,
			`(block (; (= i 0)) (while (< i 3) (print i)))`,
		},
		{
			`for (;;) print 1;`,
			`(while true (print 1))`,
		},
		{
			`for (; x; x = x - 1) {}`,
			`(while x (block (block) (; (= x (- x 1)))))`,
		},
	}
	for i, test := range tests {
		stmts, errs := parseString(t, test.source)
		require.Empty(t, errs, "test %d", i)
		assert.Equal(t, test.output, astutil.SprintProgram(stmts), "test %d", i)
	}
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		source string
		errs   []string
	}{
		{`print;`, []string{`[line 1] error at ';': Expect expression.`}},
		{`print 1`, []string{`[line 1] error at end: Expect ';' after value.`}},
		{`var 1 = 2;`, []string{`[line 1] error at '1': Expect variable name.`}},
		{`1 + 2 = 3;`, []string{`[line 1] error at '=': Invalid assignment target.`}},
		{`(a) = 3;`, []string{`[line 1] error at '=': Invalid assignment target.`}},
		{`{ print 1;`, []string{`[line 1] error at end: Expect '}' after block.`}},
		{`fun f(a b) {}`, []string{`[line 1] error at 'b': Expect ')' after parameters.`}},
		{`fun (a) {}`, []string{`[line 1] error at '(': Expect function name.`}},
		{`if a) print 1;`, []string{`[line 1] error at 'a': Expect '(' after 'if'.`}},
		{`while (a print 1;`, []string{`[line 1] error at 'print': Expect ')' after condition.`}},
		{`f(1, 2;`, []string{`[line 1] error at ';': Expect ')' after arguments.`}},
		{`class A {}`, []string{`[line 1] error at 'class': Expect expression.`}},
		{`this;`, []string{`[line 1] error at 'this': Expect expression.`}},
		{
			"print 1 +;\nvar = 2;\nprint 3;\nprint (4;",
			[]string{
				`[line 1] error at ';': Expect expression.`,
				`[line 2] error at '=': Expect variable name.`,
				`[line 4] error at ';': Expect ')' after expression.`,
			},
		},
	}
	for i, test := range tests {
		_, errs := parseString(t, test.source)
		var msgs []string
		for _, err := range errs {
			assert.Equal(t, token.ClassSyntax, err.Class(), "test %d", i)
			msgs = append(msgs, err.Error())
		}
		assert.Equal(t, test.errs, msgs, "test %d: %q", i, test.source)
	}
}

func TestParser_Synchronize(t *testing.T) {
	// The statement following each bad one still parses.
	stmts, errs := parseString(t, "var a = ;\nprint 1;\nprint 2 3\nvar b = 4;")
	require.Len(t, errs, 2)
	assert.Equal(t, "(print 1)\n(var b 4)", astutil.SprintProgram(stmts))
}

func TestParser_InvalidAssignmentKeepsParsing(t *testing.T) {
	stmts, errs := parseString(t, "1 = 2; print 3;")
	require.Len(t, errs, 1)
	// No synchronization: the statement containing the bad target is kept.
	assert.Equal(t, "(; 1)\n(print 3)", astutil.SprintProgram(stmts))
}

func TestParser_ErrorInsideBlock(t *testing.T) {
	stmts, errs := parseString(t, "{ print; print 1; }\nprint 2;")
	require.Len(t, errs, 1)
	assert.Equal(t, "(block (print 1))\n(print 2)", astutil.SprintProgram(stmts))
}

func TestParser_MaxArgs(t *testing.T) {
	names := make([]string, MaxArgs+1)
	for i := range names {
		names[i] = fmt.Sprintf("p%d", i)
	}
	list := strings.Join(names, ", ")

	_, errs := parseString(t, "fun f("+list+") {}")
	require.Len(t, errs, 1)
	assert.Equal(t, "[line 1] error at 'p255': Can't have more than 255 parameters.", errs[0].Error())

	stmts, errs := parseString(t, "f("+list+");")
	require.Len(t, errs, 1)
	assert.Equal(t, "[line 1] error at 'p255': Can't have more than 255 arguments.", errs[0].Error())
	// The call is still built.
	require.Len(t, stmts, 1)
	call := stmts[0].(*ast.ExpressionStmt).Expression.(*ast.Call)
	assert.Len(t, call.Args, MaxArgs+1)

	_, errs = parseString(t, "fun f("+strings.Join(names[:MaxArgs], ", ")+") {}")
	assert.Empty(t, errs)
}

func TestParser_Locations(t *testing.T) {
	stmts, errs := parseString(t, "var a = 1;\n\nfun f(x) {\n  return x;\n}\nf(a);")
	require.Empty(t, errs)
	require.Len(t, stmts, 3)
	assert.Equal(t, 1, stmts[0].Pos().Line())
	assert.Equal(t, 3, stmts[1].Pos().Line())
	ret := stmts[1].(*ast.FunctionStmt).Body[0]
	assert.Equal(t, 4, ret.Pos().Line())
	call := stmts[2].(*ast.ExpressionStmt).Expression.(*ast.Call)
	assert.Equal(t, ")", call.Paren.Lexeme)
	assert.Equal(t, 6, call.Paren.Line())
}

func TestParser_Deterministic(t *testing.T) {
	src := `fun fib(n) { if (n < 2) return n; return fib(n - 1) + fib(n - 2); }
for (var i = 0; i < 10; i = i + 1) print fib(i);`
	first, errs := parseString(t, src)
	require.Empty(t, errs)
	second, errs := parseString(t, src)
	require.Empty(t, errs)
	assert.Equal(t, first, second)
	assert.NotSame(t, first[0], second[0])
}

func TestParseSource(t *testing.T) {
	stmts, errs := ParseSource("test", "print @;\nvar x = 1;")
	require.Len(t, errs, 2)
	assert.Equal(t, token.ClassLexical, errs[0].Class())
	assert.Equal(t, "[line 1] error: Unexpected character.", errs[0].Error())
	assert.Equal(t, "[line 1] error at ';': Expect expression.", errs[1].Error())
	assert.Equal(t, "(var x 1)", astutil.SprintProgram(stmts))
}

func TestInteractive(t *testing.T) {
	p := NewInteractive("repl")
	p.SetPrompts("> ", ". ")
	assert.Equal(t, "> ", p.Prompt())

	stmts, errs, done := p.Feed("fun f(a) {")
	assert.False(t, done)
	assert.Nil(t, stmts)
	assert.Nil(t, errs)
	assert.True(t, p.IsParsing())
	assert.Equal(t, ". ", p.Prompt())

	_, _, done = p.Feed("  print a;")
	assert.False(t, done)

	stmts, errs, done = p.Feed("}")
	assert.True(t, done)
	assert.Empty(t, errs)
	require.Len(t, stmts, 1)
	assert.Equal(t, "(fun f (a) (print a))", astutil.Sprint(stmts[0]))
	assert.False(t, p.IsParsing())

	// Errors not at the end of input complete the entry.
	stmts, errs, done = p.Feed("print );")
	assert.True(t, done)
	assert.Len(t, errs, 1)
	assert.Empty(t, stmts)

	_, _, done = p.Feed(`print "multi`)
	assert.False(t, done)
	stmts, errs, done = p.Feed(`line";`)
	assert.True(t, done)
	assert.Empty(t, errs)
	assert.Equal(t, "(print \"multi\\nline\")", astutil.Sprint(stmts[0]))

	_, _, done = p.Feed("{")
	assert.False(t, done)
	p.Reset()
	assert.False(t, p.IsParsing())

	var nilp *Interactive
	assert.False(t, nilp.IsParsing())
}

func TestIncomplete(t *testing.T) {
	assert.False(t, Incomplete(nil))
	_, errs := ParseSource("test", "print 1 +")
	assert.True(t, Incomplete(errs))
	_, errs = ParseSource("test", "print 1 + ;")
	assert.False(t, Incomplete(errs))
	_, errs = ParseSource("test", "print @")
	assert.False(t, Incomplete(errs))
}
