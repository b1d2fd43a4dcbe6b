// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/luthersystems/lox/diagnostic"
	lintpkg "github.com/luthersystems/lox/lint"
	"github.com/spf13/viper"
)

func colorMode() (diagnostic.ColorMode, error) {
	return diagnostic.ParseColorMode(viper.GetString(keyColor))
}

// newRenderer returns a renderer that reads annotated source from sources
// before falling back to the file system.  Programs given with -e have no
// file to read.
func newRenderer(mode diagnostic.ColorMode, sources map[string][]byte) *diagnostic.Renderer {
	return &diagnostic.Renderer{
		Color: mode,
		SourceReader: func(name string) ([]byte, error) {
			if src, ok := sources[name]; ok {
				return src, nil
			}
			return os.ReadFile(name) //#nosec G304
		},
	}
}

// renderError reports a failed program to w.  With --color=never the
// interpreter's plain one-line formats are written unchanged; otherwise each
// error is rendered with an annotated source snippet.
func renderError(w io.Writer, mode diagnostic.ColorMode, err error, sources map[string][]byte) {
	if mode == diagnostic.ColorNever {
		fmt.Fprintln(w, err) //nolint:errcheck
		return
	}
	_ = newRenderer(mode, sources).RenderAll(w, diagnostic.FromError(err))
}

// lintDiagToDiagnostic converts a lint.Diagnostic to a diagnostic.Diagnostic.
func lintDiagToDiagnostic(ld lintpkg.Diagnostic) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityWarning,
		Message:  ld.Message + " (" + ld.Analyzer + ")",
	}
	if ld.Severity == lintpkg.SeverityError {
		d.Severity = diagnostic.SeverityError
	}
	if ld.Pos.Line > 0 {
		d.Spans = append(d.Spans, diagnostic.Span{
			File: ld.Pos.File,
			Line: ld.Pos.Line,
			Col:  ld.Pos.Col,
		})
	}
	d.Notes = append(d.Notes, ld.Notes...)
	d.Notes = append(d.Notes, "to suppress: add \"// nolint:"+ld.Analyzer+"\" as a comment on this line")
	return d
}

// renderLintDiagnostics renders lint diagnostics with diagnostic formatting
// to w, or in go vet text format with --color=never.
func renderLintDiagnostics(w io.Writer, mode diagnostic.ColorMode, diags []lintpkg.Diagnostic) {
	if mode == diagnostic.ColorNever {
		lintpkg.FormatText(w, diags)
		return
	}
	ds := make([]diagnostic.Diagnostic, 0, len(diags))
	for _, ld := range diags {
		ds = append(ds, lintDiagToDiagnostic(ld))
	}
	_ = newRenderer(mode, nil).RenderAll(w, ds)
}
