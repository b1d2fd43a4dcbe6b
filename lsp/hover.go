// Copyright © 2024 The ELPS authors

package lsp

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/luthersystems/lox/analysis"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentHover handles the textDocument/hover request.
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)

	line := int(params.Position.Line)
	col := int(params.Position.Character)

	sym, _ := symbolAtPosition(doc, line, col)
	if sym == nil {
		return nil, nil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: buildHoverContent(sym),
		},
	}, nil
}

// buildHoverContent builds Markdown hover text for a symbol.
func buildHoverContent(sym *analysis.Symbol) string {
	var sb strings.Builder

	// Header: **kind** `name`
	fmt.Fprintf(&sb, "**%s** `%s`", symbolKindLabel(sym.Kind), sym.Name)

	switch sym.Kind {
	case analysis.SymFunction:
		fmt.Fprintf(&sb, "\n\n```lox\nfun %s%s\n```", sym.Name, formatSignature(sym.Signature))
	case analysis.SymBuiltin:
		fmt.Fprintf(&sb, "\n\n```lox\n%s%s\n```", sym.Name, formatSignature(sym.Signature))
	}

	if sym.Scope != nil && sym.Kind != analysis.SymBuiltin {
		fmt.Fprintf(&sb, "\n\nDeclared in %s scope. References: %d", sym.Scope.Kind, sym.References)
	}

	if sym.Source != nil && sym.Source.File != "" {
		fmt.Fprintf(&sb, "\n\n*Defined in %s:%d*", filepath.Base(sym.Source.File), sym.Source.Line)
	}

	return sb.String()
}

func symbolKindLabel(kind analysis.SymbolKind) string {
	switch kind {
	case analysis.SymFunction:
		return "function"
	case analysis.SymVariable:
		return "variable"
	case analysis.SymParameter:
		return "parameter"
	case analysis.SymBuiltin:
		return "native function"
	default:
		return "symbol"
	}
}
