// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/luthersystems/lox/analysis"
	"github.com/luthersystems/lox/parser/lexer"
	"github.com/luthersystems/lox/parser/token"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentSignatureHelp handles textDocument/signatureHelp requests.
// It finds the enclosing function call at the cursor position, looks up
// its signature, and returns parameter hints.
func (s *Server) textDocumentSignatureHelp(_ *glsp.Context, params *protocol.SignatureHelpParams) (*protocol.SignatureHelp, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)

	doc.mu.Lock()
	content := doc.Content
	docAnalysis := doc.analysis
	doc.mu.Unlock()

	if docAnalysis == nil {
		return nil, nil
	}

	line := int(params.Position.Line) + 1
	col := int(params.Position.Character) + 1

	name, argIdx := enclosingCall(content, line, col)
	if name == "" {
		return nil, nil
	}

	sym := lookupCallable(docAnalysis, line, col, name)
	if sym == nil || sym.Signature == nil {
		return nil, nil
	}

	return buildSignatureHelp(sym, argIdx), nil
}

// enclosingCall scans content up to the 1-based line and column and returns
// the callee name and 0-based argument index of the innermost unclosed call.
// The source is scanned rather than parsed because the call under the cursor
// is usually incomplete.
func enclosingCall(content string, line, col int) (string, int) {
	type call struct {
		name string
		args int
	}
	var stack []call
	var prev *token.Token
	lex := lexer.New("", content)
	for {
		tok := lex.ReadToken()
		if tok.Type == token.EOF || !before(tok.Source, line, col) {
			break
		}
		switch tok.Type {
		case token.LEFT_PAREN:
			var c call
			if prev != nil && prev.Type == token.IDENTIFIER {
				c.name = prev.Lexeme
			}
			stack = append(stack, c)
		case token.RIGHT_PAREN:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case token.COMMA:
			if len(stack) > 0 {
				stack[len(stack)-1].args++
			}
		case token.SEMICOLON, token.LEFT_BRACE, token.RIGHT_BRACE:
			stack = stack[:0]
		}
		prev = tok
	}
	if len(stack) == 0 {
		return "", 0
	}
	top := stack[len(stack)-1]
	return top.name, top.args
}

func before(loc *token.Location, line, col int) bool {
	if loc == nil {
		return false
	}
	return loc.Line < line || (loc.Line == line && loc.Col < col)
}

// lookupCallable finds the callable named name visible at the given 1-based
// position.
func lookupCallable(result *analysis.Result, line, col int, name string) *analysis.Symbol {
	scope := scopeAtPosition(result.RootScope, line, col)
	if scope == nil {
		return nil
	}
	sym := scope.Lookup(name)
	if sym == nil || sym.Signature == nil {
		return nil
	}
	return sym
}

// buildSignatureHelp creates a SignatureHelp response for the given symbol
// and active argument index.
func buildSignatureHelp(sym *analysis.Symbol, argIdx int) *protocol.SignatureHelp {
	label := sym.Name + formatSignature(sym.Signature)

	var params []protocol.ParameterInformation
	// Parameter labels are offsets into label so that unnamed builtin
	// parameters can still be highlighted.
	offset := len(sym.Name) + 1
	for i, p := range sym.Signature.Params {
		if p == "" {
			p = "_"
		}
		params = append(params, protocol.ParameterInformation{
			Label: []protocol.UInteger{safeUint(offset), safeUint(offset + len(p))},
		})
		offset += len(p)
		if i < len(sym.Signature.Params)-1 {
			offset += len(", ")
		}
	}

	// Clamp active parameter to valid range.
	if argIdx > len(params)-1 {
		argIdx = len(params) - 1
	}
	activeParam := safeUint(argIdx)
	activeSig := protocol.UInteger(0)
	return &protocol.SignatureHelp{
		Signatures: []protocol.SignatureInformation{{
			Label:      label,
			Parameters: params,
		}},
		ActiveSignature: &activeSig,
		ActiveParameter: &activeParam,
	}
}
