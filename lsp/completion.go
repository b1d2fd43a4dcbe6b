// Copyright © 2024 The ELPS authors

package lsp

import (
	"sort"
	"strings"

	"github.com/luthersystems/lox/parser/token"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentCompletion handles the textDocument/completion request.
func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)

	line := int(params.Position.Line)
	col := int(params.Position.Character)

	doc.mu.Lock()
	prefix := wordPrefix(doc.Content, line, col)
	docAnalysis := doc.analysis
	doc.mu.Unlock()

	items := []protocol.CompletionItem{}
	if docAnalysis != nil {
		scope := scopeAtPosition(docAnalysis.RootScope, line+1, col+1)
		for _, sym := range collectVisibleSymbols(scope) {
			if !strings.HasPrefix(sym.Name, prefix) || sym.Name == prefix {
				continue
			}
			kind := mapCompletionItemKind(sym.Kind)
			items = append(items, protocol.CompletionItem{
				Label:  sym.Name,
				Kind:   &kind,
				Detail: symbolDetail(sym),
			})
		}
	}

	kind := protocol.CompletionItemKindKeyword
	keywords := token.Keywords()
	sort.Strings(keywords)
	for _, kw := range keywords {
		if prefix == "" || !strings.HasPrefix(kw, prefix) || kw == prefix {
			continue
		}
		items = append(items, protocol.CompletionItem{
			Label: kw,
			Kind:  &kind,
		})
	}
	return items, nil
}
