// Copyright © 2018 The ELPS authors

package rdparser

import (
	"strings"
	"sync"

	"github.com/luthersystems/lox/ast"
	"github.com/luthersystems/lox/parser/token"
)

// Interactive implements a parser that consumes source one line at a time
// and reports when the buffered lines form a complete program.  A REPL feeds
// it each line it reads and executes the statements once Feed reports the
// input is complete.
type Interactive struct {
	file       string
	prompt     string
	promptCont string
	mut        sync.RWMutex
	buf        strings.Builder
}

// NewInteractive initializes and returns a new Interactive parser.  File
// names the input in token locations.
func NewInteractive(file string) *Interactive {
	return &Interactive{file: file}
}

// SetPrompts configures the string prompts returned by p.Prompt().  The cont
// string is used to prompt the user when the parser is in the middle of
// parsing a statement at the start of a line.
func (p *Interactive) SetPrompts(prompt, cont string) {
	p.prompt = prompt
	p.promptCont = cont
}

// Prompt returns a simple prompt that can be used by a REPL line reader.
func (p *Interactive) Prompt() string {
	if p.IsParsing() {
		return p.promptCont
	}
	return p.prompt
}

// IsParsing returns true if p holds the beginning of an unfinished
// statement.  IsParsing can be called at any time, potentially by concurrent
// goroutines or when p is nil.
func (p *Interactive) IsParsing() bool {
	if p == nil {
		// definitely not parsing right now
		return false
	}
	p.mut.RLock()
	defer p.mut.RUnlock()
	return p.buf.Len() > 0
}

// Feed appends line to the buffered input and parses everything buffered so
// far.  When the input ends in the middle of a statement Feed returns false
// and keeps the buffer.  Otherwise the buffer is cleared and the parsed
// statements are returned along with any lexical or syntax errors.
func (p *Interactive) Feed(line string) ([]ast.Stmt, token.ErrorList, bool) {
	p.mut.Lock()
	defer p.mut.Unlock()
	if p.buf.Len() == 0 && strings.TrimSpace(line) == "" {
		return nil, nil, true
	}
	p.buf.WriteString(line)
	p.buf.WriteString("\n")
	stmts, errs := ParseSource(p.file, p.buf.String())
	if Incomplete(errs) {
		return nil, nil, false
	}
	p.buf.Reset()
	return stmts, errs, true
}

// Reset discards any buffered input.
func (p *Interactive) Reset() {
	p.mut.Lock()
	defer p.mut.Unlock()
	p.buf.Reset()
}

// Incomplete reports whether errs only describe input that ended too early:
// an unterminated string or syntax errors positioned at the end of input.
// More input could make such a program valid.
func Incomplete(errs token.ErrorList) bool {
	if len(errs) == 0 {
		return false
	}
	for _, err := range errs {
		switch err.Kind {
		case token.ClassLexical:
			if err.Message != "Unterminated string." {
				return false
			}
		case token.ClassSyntax:
			if err.Where != " at end" {
				return false
			}
		default:
			return false
		}
	}
	return true
}
