// Copyright © 2018 The ELPS authors

package lexer

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/luthersystems/lox/parser/token"
)

// Lexer converts lox source text into tokens.  A Lexer is not resumable: once
// it has emitted an EOF token every following call to ReadToken returns EOF.
//
// Lexical errors do not stop the lexer.  The offending text is skipped, the
// error is recorded, and scanning continues with the next character.
type Lexer struct {
	file string
	src  string

	start     int // byte offset of the current token
	pos       int // byte offset of the next unread rune
	line      int
	col       int // column of the next unread rune
	startLine int
	startCol  int

	errs token.ErrorList
}

// New initializes and returns a Lexer reading src.  File names the source in
// token locations.
func New(file string, src string) *Lexer {
	return &Lexer{
		file: file,
		src:  src,
		line: 1,
		col:  1,
	}
}

// Scan reads the complete token stream from src.  The returned slice always
// ends with an EOF token.  Any lexical errors are returned in report order.
func Scan(file string, src string) ([]*token.Token, token.ErrorList) {
	lex := New(file, src)
	var tokens []*token.Token
	for {
		tok := lex.ReadToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, lex.Errors()
		}
	}
}

// Errors returns the lexical errors encountered so far.
func (lex *Lexer) Errors() token.ErrorList {
	return lex.errs
}

// ReadToken returns the next token in the stream.
func (lex *Lexer) ReadToken() *token.Token {
	for {
		lex.skipWhitespace()
		lex.ignore()
		if lex.eof() {
			return lex.emit(token.EOF, nil)
		}
		c := lex.next()
		switch c {
		case '(':
			return lex.emit(token.LEFT_PAREN, nil)
		case ')':
			return lex.emit(token.RIGHT_PAREN, nil)
		case '{':
			return lex.emit(token.LEFT_BRACE, nil)
		case '}':
			return lex.emit(token.RIGHT_BRACE, nil)
		case ',':
			return lex.emit(token.COMMA, nil)
		case '.':
			return lex.emit(token.DOT, nil)
		case '-':
			return lex.emit(token.MINUS, nil)
		case '+':
			return lex.emit(token.PLUS, nil)
		case ';':
			return lex.emit(token.SEMICOLON, nil)
		case '*':
			return lex.emit(token.STAR, nil)
		case '!':
			return lex.emitPair('=', token.BANG_EQUAL, token.BANG)
		case '=':
			return lex.emitPair('=', token.EQUAL_EQUAL, token.EQUAL)
		case '<':
			return lex.emitPair('=', token.LESS_EQUAL, token.LESS)
		case '>':
			return lex.emitPair('=', token.GREATER_EQUAL, token.GREATER)
		case '/':
			if lex.accept('/') {
				lex.acceptSeq(func(c rune) bool { return c != '\n' })
				continue
			}
			return lex.emit(token.SLASH, nil)
		case '"':
			if tok := lex.readString(); tok != nil {
				return tok
			}
		default:
			if isDigit(c) {
				return lex.readNumber()
			}
			if isAlpha(c) {
				return lex.readIdentifier()
			}
			lex.errorf("Unexpected character.")
		}
	}
}

// readString scans a string literal whose opening quote has been consumed.
// Strings may span lines.  An unterminated string is reported and nil is
// returned, leaving the lexer at EOF.
func (lex *Lexer) readString() *token.Token {
	lex.acceptSeq(func(c rune) bool { return c != '"' })
	if !lex.accept('"') {
		lex.errorf("Unterminated string.")
		return nil
	}
	text := lex.text()
	return lex.emit(token.STRING, text[1:len(text)-1])
}

func (lex *Lexer) readNumber() *token.Token {
	lex.acceptSeq(isDigit)
	if lex.peek() == '.' && isDigit(lex.peekN(1)) {
		lex.next()
		lex.acceptSeq(isDigit)
	}
	// A digit sequence always parses.  Values too large for a float64 become
	// ±Inf, which is the number the literal denotes at runtime anyway.
	x, _ := strconv.ParseFloat(lex.text(), 64)
	return lex.emit(token.NUMBER, x)
}

func (lex *Lexer) readIdentifier() *token.Token {
	lex.acceptSeq(isAlphaNumeric)
	return lex.emit(token.LookupIdent(lex.text()), nil)
}

func (lex *Lexer) skipWhitespace() {
	lex.acceptSeq(func(c rune) bool {
		return c == ' ' || c == '\r' || c == '\t' || c == '\n'
	})
}

func (lex *Lexer) emitPair(second rune, pair token.Type, single token.Type) *token.Token {
	if lex.accept(second) {
		return lex.emit(pair, nil)
	}
	return lex.emit(single, nil)
}

func (lex *Lexer) emit(typ token.Type, literal interface{}) *token.Token {
	tok := &token.Token{
		Type:    typ,
		Lexeme:  lex.text(),
		Literal: literal,
		Source:  lex.locStart(),
	}
	lex.ignore()
	return tok
}

// errorf records a lexical error at the current line and discards the text
// scanned for the current token.
func (lex *Lexer) errorf(format string, v ...interface{}) {
	loc := lex.locStart()
	loc.Line = lex.line
	lex.errs.Add(&token.Error{
		Kind:    token.ClassLexical,
		Source:  loc,
		Message: fmt.Sprintf(format, v...),
	})
	lex.ignore()
}

// ignore discards the text scanned since the last emitted token.
func (lex *Lexer) ignore() {
	lex.start = lex.pos
	lex.startLine = lex.line
	lex.startCol = lex.col
}

func (lex *Lexer) text() string {
	return lex.src[lex.start:lex.pos]
}

func (lex *Lexer) locStart() *token.Location {
	return &token.Location{
		File: lex.file,
		Pos:  lex.start,
		Line: lex.startLine,
		Col:  lex.startCol,
	}
}

func (lex *Lexer) eof() bool {
	return lex.pos >= len(lex.src)
}

func (lex *Lexer) next() rune {
	if lex.eof() {
		return 0
	}
	c, n := utf8.DecodeRuneInString(lex.src[lex.pos:])
	lex.pos += n
	if c == '\n' {
		lex.line++
		lex.col = 1
	} else {
		lex.col++
	}
	return c
}

func (lex *Lexer) peek() rune {
	return lex.peekN(0)
}

// peekN returns the rune n runes past the next unread rune, or 0 past the end
// of input.
func (lex *Lexer) peekN(n int) rune {
	pos := lex.pos
	for {
		if pos >= len(lex.src) {
			return 0
		}
		c, size := utf8.DecodeRuneInString(lex.src[pos:])
		if n == 0 {
			return c
		}
		pos += size
		n--
	}
}

func (lex *Lexer) accept(c rune) bool {
	if lex.eof() || lex.peek() != c {
		return false
	}
	lex.next()
	return true
}

func (lex *Lexer) acceptSeq(fn func(rune) bool) int {
	var n int
	for !lex.eof() && fn(lex.peek()) {
		lex.next()
		n++
	}
	return n
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

func isAlpha(c rune) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

func isAlphaNumeric(c rune) bool {
	return isAlpha(c) || isDigit(c)
}
