// Copyright © 2024 The ELPS authors

package lsp

import (
	"strings"

	"github.com/luthersystems/lox/parser/lexer"
	"github.com/luthersystems/lox/parser/token"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentFoldingRange handles the textDocument/foldingRange request.
// It returns folding ranges for multi-line braced blocks and consecutive
// comment lines.
func (s *Server) textDocumentFoldingRange(_ *glsp.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	doc.mu.Lock()
	content := doc.Content
	doc.mu.Unlock()

	ranges := blockFoldingRanges(content)
	ranges = append(ranges, commentFoldingRanges(content)...)
	return ranges, nil
}

// blockFoldingRanges pairs braces in the token stream and emits a folding
// range for each pair spanning more than one line.  The closing line is
// left visible.
func blockFoldingRanges(content string) []protocol.FoldingRange {
	var ranges []protocol.FoldingRange
	var open []int
	lex := lexer.New("", content)
	for {
		tok := lex.ReadToken()
		if tok.Type == token.EOF {
			break
		}
		switch tok.Type {
		case token.LEFT_BRACE:
			open = append(open, tok.Source.Line-1)
		case token.RIGHT_BRACE:
			if len(open) == 0 {
				continue
			}
			start := open[len(open)-1]
			open = open[:len(open)-1]
			end := tok.Source.Line - 2
			if end > start {
				kind := string(protocol.FoldingRangeKindRegion)
				ranges = append(ranges, protocol.FoldingRange{
					StartLine: safeUint(start),
					EndLine:   safeUint(end),
					Kind:      &kind,
				})
			}
		}
	}
	return ranges
}

// commentFoldingRanges detects consecutive lines starting with "//" and
// produces a folding range for each block of 2+ lines.
func commentFoldingRanges(content string) []protocol.FoldingRange {
	lines := strings.Split(content, "\n")
	var ranges []protocol.FoldingRange

	blockStart := -1
	flush := func(last int) {
		if blockStart >= 0 && last > blockStart {
			kind := string(protocol.FoldingRangeKindComment)
			ranges = append(ranges, protocol.FoldingRange{
				StartLine: safeUint(blockStart),
				EndLine:   safeUint(last),
				Kind:      &kind,
			})
		}
		blockStart = -1
	}
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			if blockStart < 0 {
				blockStart = i
			}
			continue
		}
		flush(i - 1)
	}
	flush(len(lines) - 1)

	return ranges
}
