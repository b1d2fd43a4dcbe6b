// Copyright © 2018 The ELPS authors

package rdparser

import (
	"github.com/luthersystems/lox/parser/lexer"
	"github.com/luthersystems/lox/parser/token"
)

// TokenStream is an arbitrary sequence of tokens.  Typically a TokenStream
// will be a *lexer.Lexer but a slice of pre-scanned tokens works as well.
type TokenStream interface {
	// ReadToken returns the next token from an input source.  When no more
	// tokens can be generated ReadToken returns a token with type token.EOF,
	// and keeps doing so on every later call.
	ReadToken() *token.Token
}

// TokenGenerator implements TokenStream.  The function will be called any time
// a TokenSource wants a token.
type TokenGenerator func() *token.Token

// ReadToken implements TokenStream.
func (fn TokenGenerator) ReadToken() *token.Token {
	return fn()
}

// TokenSlice returns a TokenStream that yields tokens in order.  If tokens
// does not end with an EOF token one is synthesized after the last token.
func TokenSlice(tokens []*token.Token) TokenStream {
	var i int
	eof := &token.Token{Type: token.EOF, Source: &token.Location{}}
	if n := len(tokens); n > 0 && tokens[n-1].Source != nil {
		last := *tokens[n-1].Source
		eof.Source = &last
	}
	return TokenGenerator(func() *token.Token {
		if i >= len(tokens) {
			return eof
		}
		tok := tokens[i]
		i++
		if tok.Type == token.EOF {
			eof = tok
			i = len(tokens)
		}
		return tok
	})
}

// TokenSource abstracts a TokenStream by adding "memory" and providing methods
// to process the stream's tokens with one token of lookahead.
type TokenSource struct {
	lex   TokenStream
	Token *token.Token // the most recently consumed token
	peek  *token.Token
}

// NewTokenStreamSource returns a TokenSource that reads from stream.
func NewTokenStreamSource(stream TokenStream) *TokenSource {
	return &TokenSource{
		lex: stream,
	}
}

// NewTokenSource returns a TokenSource that scans tokens from lex.
func NewTokenSource(lex *lexer.Lexer) *TokenSource {
	return NewTokenStreamSource(lex)
}

// Peek returns the next unconsumed token.
func (s *TokenSource) Peek() *token.Token {
	if s.peek == nil {
		s.peek = s.lex.ReadToken()
	}
	return s.peek
}

// Check reports whether the next token has type typ without consuming it.
func (s *TokenSource) Check(typ token.Type) bool {
	return s.Peek().Type == typ
}

// AcceptType consumes the next token if its type is any of typ.
func (s *TokenSource) AcceptType(typ ...token.Type) bool {
	next := s.Peek().Type
	for _, typ := range typ {
		if next == typ {
			s.scan()
			return true
		}
	}
	return false
}

// Scan consumes the next token.  At EOF Scan leaves the stream in place and
// returns false.
func (s *TokenSource) Scan() bool {
	if s.IsEOF() {
		s.Token = s.Peek()
		return false
	}
	s.scan()
	return true
}

// IsEOF reports whether the stream is exhausted.
func (s *TokenSource) IsEOF() bool {
	return s.Peek().Type == token.EOF
}

func (s *TokenSource) scan() {
	s.Token = s.Peek()
	s.peek = nil
}
