// Copyright © 2018 The ELPS authors

package rdparser

import (
	"errors"

	"github.com/luthersystems/lox/ast"
	"github.com/luthersystems/lox/parser/lexer"
	"github.com/luthersystems/lox/parser/token"
)

// MaxArgs is the maximum number of parameters a function may declare and the
// maximum number of arguments a call may pass.
const MaxArgs = 255

// errSync is returned up the descent after a syntax error has been recorded.
// The error itself is never shown to users; declaration catches it and
// resynchronizes.
var errSync = errors.New("syntax error")

// Parser is a recursive-descent lox parser.
type Parser struct {
	src  *TokenSource
	errs token.ErrorList
}

// NewFromSource initializes and returns a Parser that reads tokens from src.
func NewFromSource(src *TokenSource) *Parser {
	return &Parser{
		src: src,
	}
}

// New initializes and returns a Parser that reads tokens from lex.
func New(lex *lexer.Lexer) *Parser {
	return NewFromSource(NewTokenSource(lex))
}

// Parse parses a complete program from a scanned token sequence.  Syntax
// errors do not stop the parser; every error found is returned and the
// statements that failed to parse are omitted from the result.
func Parse(tokens []*token.Token) ([]ast.Stmt, token.ErrorList) {
	p := NewFromSource(NewTokenStreamSource(TokenSlice(tokens)))
	return p.ParseProgram()
}

// ParseProgram parses declarations until EOF.
func (p *Parser) ParseProgram() ([]ast.Stmt, token.ErrorList) {
	var stmts []ast.Stmt
	for !p.src.IsEOF() {
		stmt := p.declaration()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, p.errs
}

// Errors returns the syntax errors recorded so far.
func (p *Parser) Errors() token.ErrorList {
	return p.errs
}

func (p *Parser) declaration() ast.Stmt {
	var (
		stmt ast.Stmt
		err  error
	)
	switch {
	case p.Accept(token.FUN):
		stmt, err = p.function("function")
	case p.Accept(token.VAR):
		stmt, err = p.varDeclaration()
	default:
		stmt, err = p.statement()
	}
	if err != nil {
		p.synchronize()
		return nil
	}
	return stmt
}

func (p *Parser) function(kind string) (*ast.FunctionStmt, error) {
	name, err := p.consume(token.IDENTIFIER, "Expect %s name.", kind)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LEFT_PAREN, "Expect '(' after %s name.", kind); err != nil {
		return nil, err
	}
	var params []*token.Token
	if !p.src.Check(token.RIGHT_PAREN) {
		for {
			if len(params) >= MaxArgs {
				p.errorf(p.src.Peek(), "Can't have more than %d parameters.", MaxArgs)
			}
			param, err := p.consume(token.IDENTIFIER, "Expect parameter name.")
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !p.Accept(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.consume(token.RIGHT_PAREN, "Expect ')' after parameters."); err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LEFT_BRACE, "Expect '{' before %s body.", kind); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionStmt{Name: name, Params: params, Body: body}, nil
}

func (p *Parser) varDeclaration() (*ast.VarStmt, error) {
	name, err := p.consume(token.IDENTIFIER, "Expect variable name.")
	if err != nil {
		return nil, err
	}
	var init ast.Expr
	if p.Accept(token.EQUAL) {
		init, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.SEMICOLON, "Expect ';' after variable declaration."); err != nil {
		return nil, err
	}
	return &ast.VarStmt{Name: name, Initializer: init}, nil
}

func (p *Parser) statement() (ast.Stmt, error) {
	switch {
	case p.Accept(token.FOR):
		return p.forStatement()
	case p.Accept(token.IF):
		return p.ifStatement()
	case p.Accept(token.PRINT):
		return p.printStatement()
	case p.Accept(token.RETURN):
		return p.returnStatement()
	case p.Accept(token.WHILE):
		return p.whileStatement()
	case p.Accept(token.LEFT_BRACE):
		brace := p.src.Token
		stmts, err := p.block()
		if err != nil {
			return nil, err
		}
		return &ast.BlockStmt{Brace: brace, Statements: stmts}, nil
	default:
		return p.expressionStatement()
	}
}

// forStatement parses a for loop and desugars it into
//
//	{ initializer; while (condition) { body; increment; } }
//
// An omitted condition is the literal true.  The outer block is elided when
// there is no initializer and the inner block when there is no increment.
func (p *Parser) forStatement() (ast.Stmt, error) {
	keyword := p.src.Token
	if _, err := p.consume(token.LEFT_PAREN, "Expect '(' after 'for'."); err != nil {
		return nil, err
	}

	var (
		init ast.Stmt
		err  error
	)
	switch {
	case p.Accept(token.SEMICOLON):
	case p.Accept(token.VAR):
		init, err = p.varDeclaration()
	default:
		init, err = p.expressionStatement()
	}
	if err != nil {
		return nil, err
	}

	var cond ast.Expr
	if !p.src.Check(token.SEMICOLON) {
		if cond, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.SEMICOLON, "Expect ';' after loop condition."); err != nil {
		return nil, err
	}

	var incr ast.Expr
	if !p.src.Check(token.RIGHT_PAREN) {
		if incr, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.RIGHT_PAREN, "Expect ')' after for clauses."); err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}

	if incr != nil {
		body = &ast.BlockStmt{
			Brace:      keyword,
			Statements: []ast.Stmt{body, &ast.ExpressionStmt{Expression: incr}},
		}
	}
	if cond == nil {
		cond = &ast.Literal{Token: keyword, Value: true}
	}
	body = &ast.WhileStmt{Keyword: keyword, Condition: cond, Body: body}
	if init != nil {
		body = &ast.BlockStmt{Brace: keyword, Statements: []ast.Stmt{init, body}}
	}
	return body, nil
}

func (p *Parser) ifStatement() (ast.Stmt, error) {
	keyword := p.src.Token
	if _, err := p.consume(token.LEFT_PAREN, "Expect '(' after 'if'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RIGHT_PAREN, "Expect ')' after if condition."); err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	var els ast.Stmt
	if p.Accept(token.ELSE) {
		if els, err = p.statement(); err != nil {
			return nil, err
		}
	}
	return &ast.IfStmt{Keyword: keyword, Condition: cond, Then: then, Else: els}, nil
}

func (p *Parser) printStatement() (ast.Stmt, error) {
	keyword := p.src.Token
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.SEMICOLON, "Expect ';' after value."); err != nil {
		return nil, err
	}
	return &ast.PrintStmt{Keyword: keyword, Expression: value}, nil
}

func (p *Parser) returnStatement() (ast.Stmt, error) {
	keyword := p.src.Token
	var (
		value ast.Expr
		err   error
	)
	if !p.src.Check(token.SEMICOLON) {
		if value, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.SEMICOLON, "Expect ';' after return value."); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Keyword: keyword, Value: value}, nil
}

func (p *Parser) whileStatement() (ast.Stmt, error) {
	keyword := p.src.Token
	if _, err := p.consume(token.LEFT_PAREN, "Expect '(' after 'while'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RIGHT_PAREN, "Expect ')' after condition."); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Keyword: keyword, Condition: cond, Body: body}, nil
}

func (p *Parser) expressionStatement() (ast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.SEMICOLON, "Expect ';' after expression."); err != nil {
		return nil, err
	}
	return &ast.ExpressionStmt{Expression: expr}, nil
}

// block parses the statements of a block whose opening brace has already
// been consumed.  Errors inside the block are recovered locally so that a
// single bad statement does not discard its siblings.
func (p *Parser) block() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !p.src.Check(token.RIGHT_BRACE) && !p.src.IsEOF() {
		stmt := p.declaration()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	if _, err := p.consume(token.RIGHT_BRACE, "Expect '}' after block."); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) expression() (ast.Expr, error) {
	return p.assignment()
}

func (p *Parser) assignment() (ast.Expr, error) {
	expr, err := p.or()
	if err != nil {
		return nil, err
	}
	if !p.Accept(token.EQUAL) {
		return expr, nil
	}
	equals := p.src.Token
	value, err := p.assignment()
	if err != nil {
		return nil, err
	}
	if v, ok := expr.(*ast.Variable); ok {
		return &ast.Assign{Name: v.Name, Value: value}, nil
	}
	// The parser is not confused about where it is, so there is no need to
	// synchronize.
	p.errorf(equals, "Invalid assignment target.")
	return expr, nil
}

func (p *Parser) or() (ast.Expr, error) {
	return p.logical(p.and, token.OR)
}

func (p *Parser) and() (ast.Expr, error) {
	return p.logical(p.equality, token.AND)
}

func (p *Parser) equality() (ast.Expr, error) {
	return p.binary(p.comparison, token.BANG_EQUAL, token.EQUAL_EQUAL)
}

func (p *Parser) comparison() (ast.Expr, error) {
	return p.binary(p.term, token.GREATER, token.GREATER_EQUAL, token.LESS, token.LESS_EQUAL)
}

func (p *Parser) term() (ast.Expr, error) {
	return p.binary(p.factor, token.MINUS, token.PLUS)
}

func (p *Parser) factor() (ast.Expr, error) {
	return p.binary(p.unary, token.SLASH, token.STAR)
}

// binary parses one left-associative precedence level: operands come from
// next and are folded while the operator is one of ops.
func (p *Parser) binary(next func() (ast.Expr, error), ops ...token.Type) (ast.Expr, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for p.Accept(ops...) {
		op := p.src.Token
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = &ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) logical(next func() (ast.Expr, error), op token.Type) (ast.Expr, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for p.Accept(op) {
		opTok := p.src.Token
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = &ast.Logical{Left: expr, Operator: opTok, Right: right}
	}
	return expr, nil
}

func (p *Parser) unary() (ast.Expr, error) {
	if p.Accept(token.BANG, token.MINUS) {
		op := p.src.Token
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Operator: op, Right: right}, nil
	}
	return p.call()
}

func (p *Parser) call() (ast.Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.Accept(token.LEFT_PAREN) {
		expr, err = p.finishCall(expr)
		if err != nil {
			return nil, err
		}
	}
	return expr, nil
}

func (p *Parser) finishCall(callee ast.Expr) (ast.Expr, error) {
	var args []ast.Expr
	if !p.src.Check(token.RIGHT_PAREN) {
		for {
			if len(args) >= MaxArgs {
				p.errorf(p.src.Peek(), "Can't have more than %d arguments.", MaxArgs)
			}
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.Accept(token.COMMA) {
				break
			}
		}
	}
	paren, err := p.consume(token.RIGHT_PAREN, "Expect ')' after arguments.")
	if err != nil {
		return nil, err
	}
	return &ast.Call{Callee: callee, Paren: paren, Args: args}, nil
}

func (p *Parser) primary() (ast.Expr, error) {
	switch {
	case p.Accept(token.FALSE):
		return &ast.Literal{Token: p.src.Token, Value: false}, nil
	case p.Accept(token.TRUE):
		return &ast.Literal{Token: p.src.Token, Value: true}, nil
	case p.Accept(token.NIL):
		return &ast.Literal{Token: p.src.Token, Value: nil}, nil
	case p.Accept(token.NUMBER, token.STRING):
		return &ast.Literal{Token: p.src.Token, Value: p.src.Token.Literal}, nil
	case p.Accept(token.IDENTIFIER):
		return &ast.Variable{Name: p.src.Token}, nil
	case p.Accept(token.LEFT_PAREN):
		paren := p.src.Token
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RIGHT_PAREN, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return &ast.Grouping{Paren: paren, Expression: expr}, nil
	}
	return nil, p.errorf(p.src.Peek(), "Expect expression.")
}

// synchronize discards tokens until the parser is probably at the start of
// the next statement: just past a semicolon or just before a keyword that
// begins a declaration or statement.
func (p *Parser) synchronize() {
	p.src.Scan()
	for !p.src.IsEOF() {
		if p.src.Token.Type == token.SEMICOLON {
			return
		}
		switch p.PeekType() {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF,
			token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.src.Scan()
	}
}

// Accept consumes the next token if its type is any of typ.
func (p *Parser) Accept(typ ...token.Type) bool {
	return p.src.AcceptType(typ...)
}

// PeekType returns the type of the next token.
func (p *Parser) PeekType() token.Type {
	return p.src.Peek().Type
}

func (p *Parser) consume(typ token.Type, format string, v ...interface{}) (*token.Token, error) {
	if p.Accept(typ) {
		return p.src.Token, nil
	}
	return nil, p.errorf(p.src.Peek(), format, v...)
}

// errorf records a syntax error located at tok and returns errSync so the
// caller can unwind to the enclosing declaration.
func (p *Parser) errorf(tok *token.Token, format string, v ...interface{}) error {
	p.errs.Add(token.Errorf(token.ClassSyntax, tok, format, v...))
	return errSync
}
