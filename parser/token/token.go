// Copyright © 2018 The ELPS authors

package token

import "fmt"

// Source is an abstract stream of tokens which allows one token lookahead.
type Source interface {
	// Token returns the current token.  Token returns nil if Scan has not been
	// called.
	Token() *Token
	// Peek returns the next token in the stream.  At the end of the stream
	// Peek should return a value to indicate the lack of a token (EOF).
	Peek() *Token
	// Scan advances the token stream if possible.  If there are no tokens
	// remaining Scan returns false.
	Scan() bool
}

// Token is a single lexeme scanned from lox source.  Literal holds the
// decoded value of NUMBER (float64) and STRING (string) tokens and is nil for
// every other type.
type Token struct {
	Type    Type
	Lexeme  string
	Literal interface{}
	Source  *Location
}

// Line returns the 1-based source line of tok, or 0 when the token carries no
// location.
func (tok *Token) Line() int {
	if tok == nil || tok.Source == nil {
		return 0
	}
	return tok.Source.Line
}

func (tok *Token) String() string {
	if tok.Literal != nil {
		return fmt.Sprintf("%v %s %v", tok.Type, tok.Lexeme, tok.Literal)
	}
	return fmt.Sprintf("%v %s", tok.Type, tok.Lexeme)
}

type Type uint

// Type constants used by the lox lexer and parser.
const (
	INVALID Type = iota

	// Single-character tokens
	LEFT_PAREN
	RIGHT_PAREN
	LEFT_BRACE
	RIGHT_BRACE
	COMMA
	DOT
	MINUS
	PLUS
	SEMICOLON
	SLASH
	STAR

	// One or two character tokens
	BANG
	BANG_EQUAL
	EQUAL
	EQUAL_EQUAL
	GREATER
	GREATER_EQUAL
	LESS
	LESS_EQUAL

	// Literals
	IDENTIFIER
	STRING
	NUMBER

	// Keywords
	AND
	CLASS
	ELSE
	FALSE
	FUN
	FOR
	IF
	NIL
	OR
	PRINT
	RETURN
	SUPER
	THIS
	TRUE
	VAR
	WHILE

	EOF

	numTokenTypes
)

func (typ Type) String() string {
	typeStrings := [numTokenTypes]string{
		INVALID:       "INVALID",
		LEFT_PAREN:    "LEFT_PAREN",
		RIGHT_PAREN:   "RIGHT_PAREN",
		LEFT_BRACE:    "LEFT_BRACE",
		RIGHT_BRACE:   "RIGHT_BRACE",
		COMMA:         "COMMA",
		DOT:           "DOT",
		MINUS:         "MINUS",
		PLUS:          "PLUS",
		SEMICOLON:     "SEMICOLON",
		SLASH:         "SLASH",
		STAR:          "STAR",
		BANG:          "BANG",
		BANG_EQUAL:    "BANG_EQUAL",
		EQUAL:         "EQUAL",
		EQUAL_EQUAL:   "EQUAL_EQUAL",
		GREATER:       "GREATER",
		GREATER_EQUAL: "GREATER_EQUAL",
		LESS:          "LESS",
		LESS_EQUAL:    "LESS_EQUAL",
		IDENTIFIER:    "IDENTIFIER",
		STRING:        "STRING",
		NUMBER:        "NUMBER",
		AND:           "AND",
		CLASS:         "CLASS",
		ELSE:          "ELSE",
		FALSE:         "FALSE",
		FUN:           "FUN",
		FOR:           "FOR",
		IF:            "IF",
		NIL:           "NIL",
		OR:            "OR",
		PRINT:         "PRINT",
		RETURN:        "RETURN",
		SUPER:         "SUPER",
		THIS:          "THIS",
		TRUE:          "TRUE",
		VAR:           "VAR",
		WHILE:         "WHILE",
		EOF:           "EOF",
	}
	if typ >= numTokenTypes {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

// IsKeyword reports whether typ is one of the reserved words.
func (typ Type) IsKeyword() bool {
	return typ >= AND && typ <= WHILE
}

var keywords = map[string]Type{
	"and":    AND,
	"class":  CLASS,
	"else":   ELSE,
	"false":  FALSE,
	"for":    FOR,
	"fun":    FUN,
	"if":     IF,
	"nil":    NIL,
	"or":     OR,
	"print":  PRINT,
	"return": RETURN,
	"super":  SUPER,
	"this":   THIS,
	"true":   TRUE,
	"var":    VAR,
	"while":  WHILE,
}

// LookupIdent returns the keyword type for ident, or IDENTIFIER when ident is
// not a reserved word.
func LookupIdent(ident string) Type {
	if typ, ok := keywords[ident]; ok {
		return typ
	}
	return IDENTIFIER
}

// Keywords returns the reserved words of the language in no particular order.
func Keywords() []string {
	words := make([]string, 0, len(keywords))
	for w := range keywords {
		words = append(words, w)
	}
	return words
}

type Location struct {
	File string // a name representing the source stream
	Pos  int    // byte offset of the first byte of the token
	Line int    // line number (starting at 1)
	Col  int    // line column number (starting at 1)
}

func (loc *Location) String() string {
	switch {
	case loc.Line == 0:
		return loc.File
	case loc.Col == 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
	}
}
