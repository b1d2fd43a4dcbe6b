// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentDefinition handles the textDocument/definition request.
func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)

	line := int(params.Position.Line)
	col := int(params.Position.Character)

	sym, _ := symbolAtPosition(doc, line, col)
	// Natives have no navigable source.
	if sym == nil || sym.Source == nil {
		return nil, nil
	}

	return protocol.Location{
		URI:   s.resolveURI(params.TextDocument.URI, sym.Source.File),
		Range: loxToLSPRange(sym.Source, len(sym.Name)),
	}, nil
}
