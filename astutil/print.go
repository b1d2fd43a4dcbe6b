// Copyright © 2024 The ELPS authors

package astutil

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/luthersystems/lox/ast"
	"github.com/muesli/reflow/indent"
)

// Sprint returns a parenthesized prefix rendering of node on a single line.
// Two structurally equal trees always print identically, which makes the
// output suitable for comparing parse results in tests.
//
//	print 1 + 2 * 3;   =>   (print (+ 1 (* 2 3)))
func Sprint(node ast.Node) string {
	var buf strings.Builder
	sprint(&buf, node)
	return buf.String()
}

// SprintProgram renders each statement with Sprint, separated by newlines.
func SprintProgram(stmts []ast.Stmt) string {
	lines := make([]string, len(stmts))
	for i, stmt := range stmts {
		lines[i] = Sprint(stmt)
	}
	return strings.Join(lines, "\n")
}

// Fprint writes an indented rendering of stmts to w.  Statements nested in
// blocks, loops, conditionals and functions each begin a new line.
func Fprint(w io.Writer, stmts []ast.Stmt) error {
	for _, stmt := range stmts {
		_, err := fmt.Fprintln(w, pretty(stmt))
		if err != nil {
			return err
		}
	}
	return nil
}

func pretty(stmt ast.Stmt) string {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		return nested("block", s.Statements...)
	case *ast.FunctionStmt:
		return nested("fun "+s.Name.Lexeme+" "+params(s), s.Body...)
	case *ast.WhileStmt:
		return nested("while "+Sprint(s.Condition), s.Body)
	case *ast.IfStmt:
		head := "if " + Sprint(s.Condition)
		if s.Else == nil {
			return nested(head, s.Then)
		}
		return nested(head, s.Then, s.Else)
	default:
		return Sprint(stmt)
	}
}

func nested(head string, body ...ast.Stmt) string {
	if len(body) == 0 {
		return "(" + head + ")"
	}
	lines := make([]string, len(body))
	for i, stmt := range body {
		lines[i] = pretty(stmt)
	}
	return "(" + head + "\n" + indent.String(strings.Join(lines, "\n"), 2) + ")"
}

func params(fn *ast.FunctionStmt) string {
	names := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		names[i] = p.Lexeme
	}
	return "(" + strings.Join(names, " ") + ")"
}

func sprint(buf *strings.Builder, node ast.Node) {
	switch n := node.(type) {
	case nil:
		buf.WriteString("<nil>")
	case *ast.Literal:
		buf.WriteString(literal(n.Value))
	case *ast.Variable:
		buf.WriteString(n.Name.Lexeme)
	case *ast.Assign:
		form(buf, "=", n.Name.Lexeme, n.Value)
	case *ast.Binary:
		form(buf, n.Operator.Lexeme, "", n.Left, n.Right)
	case *ast.Logical:
		form(buf, n.Operator.Lexeme, "", n.Left, n.Right)
	case *ast.Unary:
		form(buf, n.Operator.Lexeme, "", n.Right)
	case *ast.Grouping:
		form(buf, "group", "", n.Expression)
	case *ast.Call:
		args := make([]ast.Node, 0, len(n.Args)+1)
		args = append(args, n.Callee)
		for _, arg := range n.Args {
			args = append(args, arg)
		}
		form(buf, "call", "", args...)
	case *ast.ExpressionStmt:
		form(buf, ";", "", n.Expression)
	case *ast.PrintStmt:
		form(buf, "print", "", n.Expression)
	case *ast.VarStmt:
		if n.Initializer == nil {
			form(buf, "var", n.Name.Lexeme)
		} else {
			form(buf, "var", n.Name.Lexeme, n.Initializer)
		}
	case *ast.BlockStmt:
		form(buf, "block", "", stmtNodes(n.Statements)...)
	case *ast.IfStmt:
		if n.Else == nil {
			form(buf, "if", "", n.Condition, n.Then)
		} else {
			form(buf, "if", "", n.Condition, n.Then, n.Else)
		}
	case *ast.WhileStmt:
		form(buf, "while", "", n.Condition, n.Body)
	case *ast.FunctionStmt:
		form(buf, "fun", n.Name.Lexeme+" "+params(n), stmtNodes(n.Body)...)
	case *ast.ReturnStmt:
		if n.Value == nil {
			form(buf, "return", "")
		} else {
			form(buf, "return", "", n.Value)
		}
	default:
		fmt.Fprintf(buf, "<%T>", node)
	}
}

// form writes "(head attr children...)".  An empty attr is omitted.
func form(buf *strings.Builder, head string, attr string, children ...ast.Node) {
	buf.WriteString("(")
	buf.WriteString(head)
	if attr != "" {
		buf.WriteString(" ")
		buf.WriteString(attr)
	}
	for _, c := range children {
		buf.WriteString(" ")
		sprint(buf, c)
	}
	buf.WriteString(")")
}

func stmtNodes(stmts []ast.Stmt) []ast.Node {
	nodes := make([]ast.Node, len(stmts))
	for i := range stmts {
		nodes[i] = stmts[i]
	}
	return nodes
}

func literal(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprint(v)
	}
}
