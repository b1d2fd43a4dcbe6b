// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/luthersystems/lox/analysis"
	"github.com/luthersystems/lox/ast"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentDocumentSymbol handles the textDocument/documentSymbol request.
// Functions are reported with their parameters and local declarations as
// children.
func (s *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)

	if doc.analysis == nil {
		return nil, nil
	}

	symbols := []protocol.DocumentSymbol{}
	for _, sym := range doc.analysis.Symbols {
		if sym.Source == nil || !sym.Global() {
			continue
		}
		symbols = append(symbols, documentSymbol(doc.analysis, sym))
	}
	return symbols, nil
}

func documentSymbol(result *analysis.Result, sym *analysis.Symbol) protocol.DocumentSymbol {
	r := loxToLSPRange(sym.Source, len(sym.Name))
	ds := protocol.DocumentSymbol{
		Name:           sym.Name,
		Detail:         symbolDetail(sym),
		Kind:           mapSymbolKind(sym.Kind),
		Range:          r,
		SelectionRange: r,
	}
	fn, ok := sym.Node.(*ast.FunctionStmt)
	if !ok {
		return ds
	}
	for _, child := range result.Symbols {
		if child.Source == nil || child.Scope == nil || child.Scope.Node != fn {
			continue
		}
		ds.Children = append(ds.Children, documentSymbol(result, child))
	}
	return ds
}

// symbolDetail builds a short detail string (e.g., function signature).
func symbolDetail(sym *analysis.Symbol) *string {
	if sym.Signature == nil {
		return nil
	}
	s := formatSignature(sym.Signature)
	return &s
}
