// Copyright © 2024 The ELPS authors

package lsp

import (
	"fmt"

	"github.com/luthersystems/lox/analysis"
	"github.com/luthersystems/lox/parser/token"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentPrepareRename validates that the symbol under the cursor
// is renameable and returns its range.
func (s *Server) textDocumentPrepareRename(_ *glsp.Context, params *protocol.PrepareRenameParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)

	line := int(params.Position.Line)
	col := int(params.Position.Character)

	sym, ref := symbolAtPosition(doc, line, col)
	// Per the LSP, prepareRename returns null for non-renameable symbols.
	if sym == nil || sym.Kind == analysis.SymBuiltin {
		return nil, nil
	}

	loc := sym.Source
	if ref != nil && ref.Source != nil {
		loc = ref.Source
	}
	if loc == nil {
		return nil, nil
	}
	return &protocol.RangeWithPlaceholder{
		Range:       loxToLSPRange(loc, len(sym.Name)),
		Placeholder: sym.Name,
	}, nil
}

// textDocumentRename handles the textDocument/rename request.
func (s *Server) textDocumentRename(_ *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, fmt.Errorf("document not found")
	}
	s.ensureAnalysis(doc)

	line := int(params.Position.Line)
	col := int(params.Position.Character)

	sym, _ := symbolAtPosition(doc, line, col)
	if sym == nil {
		return nil, fmt.Errorf("no symbol at position")
	}
	if sym.Kind == analysis.SymBuiltin {
		return nil, fmt.Errorf("cannot rename %s: %s", symbolKindLabel(sym.Kind), sym.Name)
	}
	if !validIdentifier(params.NewName) {
		return nil, fmt.Errorf("invalid identifier: %q", params.NewName)
	}

	edits := make(map[protocol.DocumentUri][]protocol.TextEdit)
	docURI := params.TextDocument.URI

	if sym.Source != nil && sym.Source.Line > 0 {
		defURI := s.resolveURI(docURI, sym.Source.File)
		edits[defURI] = append(edits[defURI], protocol.TextEdit{
			Range:   loxToLSPRange(sym.Source, len(sym.Name)),
			NewText: params.NewName,
		})
	}

	for _, ref := range doc.analysis.ReferencesTo(sym) {
		if ref.Source == nil {
			continue
		}
		refURI := s.resolveURI(docURI, ref.Source.File)
		edits[refURI] = append(edits[refURI], protocol.TextEdit{
			Range:   loxToLSPRange(ref.Source, len(sym.Name)),
			NewText: params.NewName,
		})
	}

	return &protocol.WorkspaceEdit{Changes: edits}, nil
}

// validIdentifier reports whether name can replace an identifier: it must
// scan as a single non-keyword identifier.
func validIdentifier(name string) bool {
	if name == "" || token.LookupIdent(name) != token.IDENTIFIER {
		return false
	}
	first := name[0]
	if first >= '0' && first <= '9' {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isIdentChar(name[i]) {
			return false
		}
	}
	return true
}
