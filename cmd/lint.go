// Copyright © 2024 The ELPS authors

package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/luthersystems/lox/analysis"
	"github.com/luthersystems/lox/lint"
	"github.com/luthersystems/lox/lox"
	"github.com/luthersystems/lox/lsp"
	"github.com/muesli/reflow/indent"
	"github.com/spf13/cobra"
)

// LintCommand creates the "lint" cobra command.
func LintCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts...)
	var (
		jsonOut  bool
		checks   string
		listAll  bool
		excludes []string
	)

	cmd := &cobra.Command{
		Use:   "lint [flags] [files...]",
		Short: "Run static analysis checks on lox source files",
		Long: `Run static analysis checks on lox source files.

The linter reports likely mistakes in lox code, similar to "go vet" for Go.
Each check is an independent analyzer that examines the parsed program and
the result of scope analysis.

With no files, reads from stdin. A path ending in "/..." expands to every
.lox file below that directory.

Exit codes:
  0   No problems found
  1   One or more problems were reported
  64  Bad invocation (unknown check)
  65  A file does not parse
  66  A file cannot be read

To suppress a specific diagnostic, add a comment on the same line:
  x = x; // nolint:self-assignment

To suppress all checks on a line:
  x = x; // nolint

Available checks (use --checks to select specific ones):
` + indent.String(lint.AnalyzerDoc(), 2) + `
Examples:
  lox lint file.lox                           # Lint a single file
  lox lint ./...                              # Lint every file below .
  lox lint --json file.lox                    # Output diagnostics as JSON
  lox lint --checks=call-arity file.lox       # Run only specific checks
  lox lint --list                             # List available checks
  lox lint --exclude='vendor' ./...           # Exclude a directory
  cat file.lox | lox lint                     # Lint from stdin`,
		RunE: func(_ *cobra.Command, args []string) error {
			if listAll {
				for _, name := range lint.AnalyzerNames() {
					fmt.Fprintln(cfg.stdout, name) //nolint:errcheck
				}
				return nil
			}
			mode, err := colorMode()
			if err != nil {
				return usageErrorf("%v", err)
			}
			analyzers, err := selectAnalyzers(checks)
			if err != nil {
				return err
			}
			l := &lint.Linter{Analyzers: analyzers}

			paths := []string{"-"}
			if len(args) > 0 {
				if paths, err = expandArgs(args, excludes); err != nil {
					return &exitError{code: lox.ExitNoInput, err: err}
				}
			}

			var all []lint.Diagnostic
			for _, path := range paths {
				diags, err := cfg.lintPath(l, path)
				if err != nil {
					return err
				}
				all = append(all, diags...)
			}
			if len(all) == 0 {
				return nil
			}

			if jsonOut {
				if err := lint.FormatJSON(cfg.stdout, all); err != nil {
					return failure(err)
				}
			} else {
				renderLintDiagnostics(cfg.stderr, mode, all)
			}
			return &exitError{
				code:     exitFailure,
				err:      fmt.Errorf("%d problem(s) found", len(all)),
				reported: true,
			}
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false,
		"Output diagnostics as JSON.")
	cmd.Flags().StringVar(&checks, "checks", "",
		"Comma-separated list of checks to run (default: all).")
	cmd.Flags().BoolVar(&listAll, "list", false,
		"List available checks and exit.")
	cmd.Flags().StringArrayVar(&excludes, "exclude", nil,
		"Glob pattern for files to exclude (may be repeated).")
	return cmd
}

// selectAnalyzers returns the default analyzers named in the comma-separated
// list, or all of them when the list is empty.
func selectAnalyzers(checks string) ([]*lint.Analyzer, error) {
	analyzers := lint.DefaultAnalyzers()
	if checks == "" {
		return analyzers, nil
	}
	selected := make(map[string]bool)
	for _, name := range strings.Split(checks, ",") {
		selected[strings.TrimSpace(name)] = true
	}
	var filtered []*lint.Analyzer
	for _, a := range analyzers {
		if selected[a.Name] {
			filtered = append(filtered, a)
			delete(selected, a.Name)
		}
	}
	if len(selected) > 0 {
		unknown := make([]string, 0, len(selected))
		for name := range selected {
			unknown = append(unknown, name)
		}
		sort.Strings(unknown)
		return nil, usageErrorf("unknown check: %s", strings.Join(unknown, ", "))
	}
	return filtered, nil
}

// lintPath lints one file with semantic analysis against the standard
// natives.  A file that does not parse is reported like a failed run.
func (c *cmdConfig) lintPath(l *lint.Linter, path string) ([]lint.Diagnostic, error) {
	name, src, err := c.readSource(path)
	if err != nil {
		return nil, err
	}
	diags, err := l.LintFileWithAnalysis(src, name, &analysis.Config{Builtins: lsp.DefaultBuiltins()})
	if err != nil {
		if lox.ClassOf(err) != 0 {
			return nil, c.reportStatic(name, src, errors.Unwrap(err))
		}
		return nil, failure(err)
	}
	return diags, nil
}

func init() {
	rootCmd.AddCommand(LintCommand())
}
