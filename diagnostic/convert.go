// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"errors"
	"strings"

	"github.com/luthersystems/lox/lox"
	"github.com/luthersystems/lox/parser/token"
)

// FromError converts err into diagnostics.  A token.ErrorList yields one
// diagnostic per entry.  Runtime errors carry their call stack as notes.
// Any other error becomes a single diagnostic without a span.
func FromError(err error) []Diagnostic {
	if err == nil {
		return nil
	}
	var list token.ErrorList
	if errors.As(err, &list) {
		diags := make([]Diagnostic, 0, len(list))
		for _, e := range list {
			diags = append(diags, FromTokenError(e))
		}
		return diags
	}
	var terr *token.Error
	if errors.As(err, &terr) {
		return []Diagnostic{FromTokenError(terr)}
	}
	var rerr *lox.RuntimeError
	if errors.As(err, &rerr) {
		return []Diagnostic{FromRuntimeError(rerr)}
	}
	return []Diagnostic{{
		Severity: SeverityError,
		Message:  err.Error(),
	}}
}

// FromTokenError converts a lexical, syntax or static error.
func FromTokenError(err *token.Error) Diagnostic {
	d := Diagnostic{
		Severity: SeverityError,
		Message:  err.Kind.String() + " error: " + err.Message,
	}
	if err.Source != nil && err.Source.Line > 0 {
		d.Spans = append(d.Spans, Span{
			File:  err.Source.File,
			Line:  err.Source.Line,
			Col:   err.Source.Col,
			Label: strings.TrimSpace(err.Where),
		})
	}
	return d
}

// FromRuntimeError converts a runtime error.  Stack frames are listed
// innermost first.
func FromRuntimeError(err *lox.RuntimeError) Diagnostic {
	d := Diagnostic{
		Severity: SeverityError,
		Message:  "runtime error: " + err.Message,
	}
	if tok := err.Token; tok != nil && tok.Source != nil {
		span := Span{
			File: tok.Source.File,
			Line: tok.Source.Line,
			Col:  tok.Source.Col,
		}
		if n := len(tok.Lexeme); n > 0 && span.Col > 0 && !strings.Contains(tok.Lexeme, "\n") {
			span.EndCol = span.Col + n - 1
		}
		d.Spans = append(d.Spans, span)
	}
	if err.Stack != nil {
		for i := len(err.Stack.Frames) - 1; i >= 0; i-- {
			frame := &err.Stack.Frames[i]
			loc := "unknown"
			if frame.Source != nil {
				loc = frame.Source.String()
			}
			d.Notes = append(d.Notes, "in "+frame.Name+" called at "+loc)
		}
	}
	return d
}
