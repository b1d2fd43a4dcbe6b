// Copyright © 2024 The ELPS authors

package lsp

import (
	"fmt"
	"strings"
	"time"

	"github.com/luthersystems/lox/analysis"
	"github.com/luthersystems/lox/parser/token"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const (
	defaultDebounceDelay = 300 * time.Millisecond
	diagnosticSource     = "lox"
)

// textDocumentDidOpen handles the textDocument/didOpen notification.
func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	doc := s.docs.Open(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		params.TextDocument.Text,
	)
	s.analyzeAndPublish(doc)
	return nil
}

// textDocumentDidChange handles the textDocument/didChange notification.
func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotify(ctx)
	// With full sync, the last content change is the complete document.
	var content string
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			content = c.Text
		}
	}

	doc := s.docs.Change(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		content,
	)

	// Debounce: delay analysis to avoid thrashing during rapid edits.
	s.debounceMu.Lock()
	if t, ok := s.debounce[doc.URI]; ok {
		t.Stop()
	}
	s.debounce[doc.URI] = time.AfterFunc(s.debounceDelay, func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Errorf("analysis of %s panicked: %v", doc.URI, r)
			}
		}()
		d := s.docs.Get(doc.URI)
		if d != nil {
			s.analyzeAndPublish(d)
		}
	})
	s.debounceMu.Unlock()
	return nil
}

// textDocumentDidSave handles the textDocument/didSave notification.
func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.captureNotify(ctx)
	s.cancelDebounce(params.TextDocument.URI)

	doc := s.docs.Get(params.TextDocument.URI)
	if doc != nil {
		s.analyzeAndPublish(doc)
	}
	return nil
}

// textDocumentDidClose handles the textDocument/didClose notification.
func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.cancelDebounce(params.TextDocument.URI)

	// Clear diagnostics for the closed file.
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})

	s.docs.Close(params.TextDocument.URI)
	return nil
}

func (s *Server) cancelDebounce(uri string) {
	s.debounceMu.Lock()
	if t, ok := s.debounce[uri]; ok {
		t.Stop()
		delete(s.debounce, uri)
	}
	s.debounceMu.Unlock()
}

// analyzeAndPublish runs analysis on a document and publishes the resulting
// diagnostics to the client.
func (s *Server) analyzeAndPublish(doc *Document) {
	s.ensureAnalysis(doc)

	// Snapshot document fields under the lock.
	doc.mu.Lock()
	parseErrors := doc.parseErrors
	docAnalysis := doc.analysis
	uri := doc.URI
	doc.mu.Unlock()

	diags := []protocol.Diagnostic{}
	for _, err := range parseErrors {
		diags = append(diags, convertTokenError(err))
	}
	// Static errors are only meaningful for a program that parsed.
	if len(parseErrors) == 0 && docAnalysis != nil {
		for _, err := range docAnalysis.Errors {
			diags = append(diags, convertTokenError(err))
		}
	}
	if docAnalysis != nil {
		for _, ref := range docAnalysis.Unresolved {
			diags = append(diags, convertUnresolved(ref))
		}
	}

	s.log.Debugf("publishing %d diagnostics for %s", len(diags), uri)
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

// convertTokenError converts a lexical, syntax or static error to an LSP
// Diagnostic.
func convertTokenError(err *token.Error) protocol.Diagnostic {
	var r protocol.Range
	if err.Source != nil {
		r = loxToLSPRange(err.Source, errorWidth(err))
	}
	return protocol.Diagnostic{
		Range:    r,
		Severity: severity(protocol.DiagnosticSeverityError),
		Source:   strPtr(diagnosticSource),
		Code:     &protocol.IntegerOrString{Value: err.Kind.String()},
		Message:  err.Message,
	}
}

// errorWidth returns the number of columns highlighted for err, taken from
// the quoted lexeme in its Where suffix.
func errorWidth(err *token.Error) int {
	lexeme, ok := strings.CutPrefix(err.Where, " at '")
	if !ok || len(lexeme) < 2 {
		return 1
	}
	return len(lexeme) - 1
}

// convertUnresolved reports a read or assignment of a global that is never
// declared.  The program may still define it at runtime through another
// file, so the diagnostic is a warning.
func convertUnresolved(ref *analysis.UnresolvedRef) protocol.Diagnostic {
	var r protocol.Range
	if ref.Source != nil {
		r = loxToLSPRange(ref.Source, len(ref.Name))
	}
	return protocol.Diagnostic{
		Range:    r,
		Severity: severity(protocol.DiagnosticSeverityWarning),
		Source:   strPtr(diagnosticSource),
		Code:     &protocol.IntegerOrString{Value: "undefined"},
		Message:  fmt.Sprintf("Undefined variable '%s'.", ref.Name),
	}
}

func severity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func strPtr(s string) *string {
	return &s
}
