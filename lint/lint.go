// Copyright © 2024 The ELPS authors

// Package lint provides static analysis for lox source files.
//
// The linter is modeled after go vet: each check is an independent Analyzer
// that receives a parsed program and reports diagnostics.  The framework
// handles parsing, running analyzers, collecting results, and formatting
// output.
//
// Embedders can define custom checks alongside the built-in set.
package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/luthersystems/lox/analysis"
	"github.com/luthersystems/lox/ast"
	"github.com/luthersystems/lox/parser/rdparser"
	"github.com/luthersystems/lox/parser/token"
)

// Severity indicates the severity level of a lint diagnostic.
type Severity int

const (
	severityUnset Severity = iota // unexported zero sentinel for default detection
	SeverityError
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the severity as a JSON string.
// An unset severity (zero value) is marshaled as "warning".
func (s Severity) MarshalJSON() ([]byte, error) {
	if s == severityUnset {
		return json.Marshal("warning")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes a severity from a JSON string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return fmt.Errorf("unknown severity: %q", str)
	}
	return nil
}

// Analyzer defines a single lint check.
type Analyzer struct {
	// Name is a short identifier for this check (e.g. "unused-variable").
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Severity is the default severity for diagnostics from this analyzer.
	Severity Severity

	// Run executes the check. It should call pass.Report() for each finding.
	Run func(pass *Pass) error
}

// Pass provides context to a running analyzer.
type Pass struct {
	// Analyzer is the currently running check.
	Analyzer *Analyzer

	// Filename is the source file being analyzed.
	Filename string

	// Stmts are the top-level parsed statements.
	Stmts []ast.Stmt

	// Semantics holds the result of semantic analysis, if available.
	// Semantic analyzers check for nil and return early.
	Semantics *analysis.Result

	diagnostics []Diagnostic
}

// Report records a diagnostic finding.
func (p *Pass) Report(d Diagnostic) {
	d.Analyzer = p.Analyzer.Name
	if d.Severity == severityUnset {
		d.Severity = p.Analyzer.Severity
	}
	p.diagnostics = append(p.diagnostics, d)
}

// ReportWithNotes records a diagnostic with additional hint text.
func (p *Pass) ReportWithNotes(d Diagnostic, notes ...string) {
	d.Notes = append(d.Notes, notes...)
	p.Report(d)
}

// Reportf is a convenience for reporting a diagnostic at a position.
func (p *Pass) Reportf(source *token.Location, format string, args ...interface{}) {
	p.Report(Diagnostic{
		Pos:     positionOf(source),
		Message: fmt.Sprintf(format, args...),
	})
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	// Pos is the source location of the problem.
	Pos Position `json:"pos"`

	// Message is a human-readable description of the problem.
	Message string `json:"message"`

	// Analyzer is the name of the check that found this problem.
	Analyzer string `json:"analyzer"`

	// Severity is the severity level of the diagnostic.
	Severity Severity `json:"severity"`

	// Notes are optional hint text lines for the user.
	Notes []string `json:"notes,omitempty"`
}

// Position identifies a location in source code.
type Position struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col,omitempty"`
}

func positionOf(loc *token.Location) Position {
	if loc == nil {
		return Position{}
	}
	return Position{File: loc.File, Line: loc.Line, Col: loc.Col}
}

// String returns the position in file:line format.
func (p Position) String() string {
	if p.Line == 0 {
		return p.File
	}
	if p.Col > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// String returns the diagnostic in go vet style: file:line: message (analyzer)
// with optional note lines appended.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s (%s)", d.Pos, d.Message, d.Analyzer)
	for _, n := range d.Notes {
		s += "\n  = note: " + n
	}
	return s
}

// Linter runs a set of analyzers over source files.
type Linter struct {
	Analyzers []*Analyzer
}

// LintFile analyzes a single source file and returns all diagnostics.
// Semantic analyzers are no-ops because no analysis.Result is provided.
func (l *Linter) LintFile(source []byte, filename string) ([]Diagnostic, error) {
	stmts, err := parseFile(source, filename)
	if err != nil {
		return nil, err
	}
	return l.run(source, filename, stmts, nil)
}

// LintFileWithAnalysis parses, analyzes, and lints a source file in one call.
// The analysis result is passed to every analyzer.
func (l *Linter) LintFileWithAnalysis(source []byte, filename string, cfg *analysis.Config) ([]Diagnostic, error) {
	stmts, err := parseFile(source, filename)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &analysis.Config{}
	}
	cfg.Filename = filename
	return l.run(source, filename, stmts, analysis.Analyze(stmts, cfg))
}

// A file that does not parse cannot be linted; its syntax errors are
// returned instead.
func parseFile(source []byte, filename string) ([]ast.Stmt, error) {
	stmts, errs := rdparser.ParseSource(filename, string(source))
	if len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", filename, errs)
	}
	return stmts, nil
}

func (l *Linter) run(source []byte, filename string, stmts []ast.Stmt, semantics *analysis.Result) ([]Diagnostic, error) {
	var all []Diagnostic
	for _, analyzer := range l.Analyzers {
		pass := &Pass{
			Analyzer:  analyzer,
			Filename:  filename,
			Stmts:     stmts,
			Semantics: semantics,
		}
		if err := analyzer.Run(pass); err != nil {
			return nil, fmt.Errorf("%s: analyzer %s: %w", filename, analyzer.Name, err)
		}
		for i := range pass.diagnostics {
			if pass.diagnostics[i].Pos.File == "" {
				pass.diagnostics[i].Pos.File = filename
			}
		}
		all = append(all, pass.diagnostics...)
	}

	all = filterSuppressed(all, nolintDirectives(string(source)))

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Pos.File != all[j].Pos.File {
			return all[i].Pos.File < all[j].Pos.File
		}
		if all[i].Pos.Line != all[j].Pos.Line {
			return all[i].Pos.Line < all[j].Pos.Line
		}
		return all[i].Pos.Col < all[j].Pos.Col
	})
	return all, nil
}

// filterSuppressed removes diagnostics on lines with nolint comments.
func filterSuppressed(diags []Diagnostic, nolint map[int]string) []Diagnostic {
	var filtered []Diagnostic
	for _, d := range diags {
		directive, ok := nolint[d.Pos.Line]
		if !ok {
			filtered = append(filtered, d)
			continue
		}
		// Empty directive = suppress all
		if directive == "" {
			continue
		}
		suppressed := false
		for _, name := range strings.Split(directive, ",") {
			if strings.TrimSpace(name) == d.Analyzer {
				suppressed = true
				break
			}
		}
		if !suppressed {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// nolintDirectives maps each line carrying a "// nolint" comment to its
// analyzer list.  An empty list suppresses every check on the line.
func nolintDirectives(source string) map[int]string {
	lines := make(map[int]string)
	for i, ln := range strings.Split(source, "\n") {
		text, ok := lineComment(ln)
		if !ok {
			continue
		}
		text = strings.TrimSpace(text)
		rest, ok := strings.CutPrefix(text, "nolint")
		if !ok {
			continue
		}
		if rest == "" {
			lines[i+1] = ""
		} else if names, ok := strings.CutPrefix(rest, ":"); ok {
			lines[i+1] = names
		}
	}
	return lines
}

// lineComment returns the text following "//" on ln, ignoring slashes that
// appear inside string literals opened on the same line.
func lineComment(ln string) (string, bool) {
	inString := false
	for i := 0; i < len(ln); i++ {
		switch {
		case ln[i] == '"':
			inString = !inString
		case !inString && strings.HasPrefix(ln[i:], "//"):
			return ln[i+2:], true
		}
	}
	return "", false
}

// FormatText writes diagnostics in go vet text format.
func FormatText(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String()) //nolint:errcheck // best-effort output to writer
	}
}

// FormatJSON writes diagnostics as JSON.
func FormatJSON(w io.Writer, diags []Diagnostic) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}
