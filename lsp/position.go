// Copyright © 2024 The ELPS authors

package lsp

import (
	"sort"
	"strings"

	"github.com/luthersystems/lox/analysis"
	"github.com/luthersystems/lox/parser/token"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// loxToLSPPosition converts a 1-based source location to a 0-based LSP
// position.
func loxToLSPPosition(loc *token.Location) protocol.Position {
	line := loc.Line
	col := loc.Col
	if line > 0 {
		line--
	}
	if col > 0 {
		col--
	}
	return protocol.Position{
		Line:      safeUint(line),
		Character: safeUint(col),
	}
}

// safeUint converts a non-negative int to protocol.UInteger, clamping
// negative values to zero.
func safeUint(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n) // #nosec G115 -- line/col are always small positive ints
}

// loxToLSPRange converts a token location to a single-line LSP range width
// characters wide.
func loxToLSPRange(loc *token.Location, width int) protocol.Range {
	start := loxToLSPPosition(loc)
	end := protocol.Position{
		Line:      start.Line,
		Character: start.Character + safeUint(width),
	}
	return protocol.Range{Start: start, End: end}
}

// symbolAtPosition finds the analysis symbol at the given 0-based LSP
// position in the document's analysis result. It returns both the symbol
// (definition) and the specific reference that was hit, if any.
func symbolAtPosition(doc *Document, line, col int) (*analysis.Symbol, *analysis.Reference) {
	if doc == nil || doc.analysis == nil {
		return nil, nil
	}
	// References first; they point to specific usage sites.
	if ref := doc.analysis.ReferenceAt(line+1, col+1); ref != nil {
		return ref.Symbol, ref
	}
	return doc.analysis.SymbolAt(line+1, col+1), nil
}

// wordAtPosition extracts the identifier at the given 0-based LSP position
// from the document content. The cursor can be inside or at the end of a
// word; in both cases the full word is returned.
func wordAtPosition(content string, line, col int) string {
	start, end := wordBounds(content, line, col)
	if start < 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	return lines[line][start:end]
}

// wordPrefix returns the part of the identifier at the given position that
// precedes the cursor.
func wordPrefix(content string, line, col int) string {
	start, _ := wordBounds(content, line, col)
	if start < 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	if col > len(lines[line]) {
		col = len(lines[line])
	}
	return lines[line][start:col]
}

func wordBounds(content string, line, col int) (int, int) {
	lines := strings.Split(content, "\n")
	if line < 0 || line >= len(lines) {
		return -1, -1
	}
	ln := lines[line]
	if col < 0 || col > len(ln) {
		return -1, -1
	}
	start := col
	for start > 0 && isIdentChar(ln[start-1]) {
		start--
	}
	end := col
	for end < len(ln) && isIdentChar(ln[end]) {
		end++
	}
	return start, end
}

func isIdentChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return c == '_'
}

// scopeAtPosition returns the innermost scope introduced before the given
// 1-based line and column.  Scopes carry no end position, so a scope is
// taken to extend until a sibling opens after it.
func scopeAtPosition(root *analysis.Scope, line, col int) *analysis.Scope {
	if root == nil {
		return nil
	}
	best := root
	for _, child := range root.Children {
		if !scopeStartsBefore(child, line, col) {
			continue
		}
		best = scopeAtPosition(child, line, col)
	}
	return best
}

func scopeStartsBefore(scope *analysis.Scope, line, col int) bool {
	if scope.Node == nil {
		return false
	}
	tok := scope.Node.Pos()
	if tok == nil || tok.Source == nil || tok.Source.Line == 0 {
		return false
	}
	loc := tok.Source
	return loc.Line < line || (loc.Line == line && loc.Col < col)
}

// collectVisibleSymbols walks the scope chain outward from scope, collecting
// all symbols visible at that point, sorted by name.
func collectVisibleSymbols(scope *analysis.Scope) []*analysis.Symbol {
	seen := make(map[string]bool)
	var result []*analysis.Symbol
	for s := scope; s != nil; s = s.Parent {
		for name, sym := range s.Symbols {
			if !seen[name] {
				seen[name] = true
				result = append(result, sym)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// mapSymbolKind converts an analysis.SymbolKind to an LSP SymbolKind.
func mapSymbolKind(kind analysis.SymbolKind) protocol.SymbolKind {
	switch kind {
	case analysis.SymFunction, analysis.SymBuiltin:
		return protocol.SymbolKindFunction
	default:
		return protocol.SymbolKindVariable
	}
}

// mapCompletionItemKind converts an analysis.SymbolKind to an LSP CompletionItemKind.
func mapCompletionItemKind(kind analysis.SymbolKind) protocol.CompletionItemKind {
	switch kind {
	case analysis.SymFunction, analysis.SymBuiltin:
		return protocol.CompletionItemKindFunction
	case analysis.SymVariable, analysis.SymParameter:
		return protocol.CompletionItemKindVariable
	default:
		return protocol.CompletionItemKindText
	}
}

// formatSignature builds a parameter list such as "(a, b)" from a Signature.
// Builtins have unnamed parameters and are shown by position.
func formatSignature(sig *analysis.Signature) string {
	if sig == nil || len(sig.Params) == 0 {
		return "()"
	}
	parts := make([]string, len(sig.Params))
	for i, p := range sig.Params {
		if p == "" {
			p = "_"
		}
		parts[i] = p
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}

// pathToURI converts a filesystem path to a file:// URI.
func pathToURI(path string) string {
	if strings.HasPrefix(path, "/") {
		return "file://" + path
	}
	return path
}
