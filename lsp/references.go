// Copyright © 2024 The ELPS authors

package lsp

import (
	"path/filepath"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentReferences handles the textDocument/references request.
func (s *Server) textDocumentReferences(_ *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)

	line := int(params.Position.Line)
	col := int(params.Position.Character)

	sym, _ := symbolAtPosition(doc, line, col)
	if sym == nil || doc.analysis == nil {
		return nil, nil
	}

	var locs []protocol.Location

	if params.Context.IncludeDeclaration && sym.Source != nil {
		locs = append(locs, protocol.Location{
			URI:   s.resolveURI(params.TextDocument.URI, sym.Source.File),
			Range: loxToLSPRange(sym.Source, len(sym.Name)),
		})
	}

	for _, ref := range doc.analysis.ReferencesTo(sym) {
		if ref.Source == nil {
			continue
		}
		locs = append(locs, protocol.Location{
			URI:   s.resolveURI(params.TextDocument.URI, ref.Source.File),
			Range: loxToLSPRange(ref.Source, len(sym.Name)),
		})
	}

	return locs, nil
}

// resolveURI resolves a file path from analysis into a document URI.
// If the file matches the current document, the original URI is returned.
func (s *Server) resolveURI(currentURI, file string) string {
	if file == "" || file == uriToPath(currentURI) {
		return currentURI
	}
	path := file
	if !filepath.IsAbs(path) && s.rootPath != "" {
		path = filepath.Join(s.rootPath, path)
	}
	return pathToURI(path)
}
