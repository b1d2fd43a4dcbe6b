// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/luthersystems/lox/astutil"
	"github.com/luthersystems/lox/lox"
	"github.com/luthersystems/lox/parser/lexer"
	"github.com/luthersystems/lox/parser/rdparser"
	"github.com/spf13/cobra"
)

const stdinName = "<stdin>"

// readSource reads the named file, or the command's stdin when path is "-".
func (c *cmdConfig) readSource(path string) (string, []byte, error) {
	if path != "-" {
		src, err := os.ReadFile(path) //#nosec G304
		if err != nil {
			return path, nil, &exitError{code: lox.ExitNoInput, err: err}
		}
		return path, src, nil
	}
	var r io.Reader = os.Stdin
	if c.stdin != nil {
		r = c.stdin
	}
	src, err := io.ReadAll(r)
	if err != nil {
		return stdinName, nil, &exitError{code: lox.ExitNoInput, err: fmt.Errorf("reading stdin: %w", err)}
	}
	return stdinName, src, nil
}

// reportStatic renders the errors of a failed scan or parse and returns the
// matching exit error.
func (c *cmdConfig) reportStatic(name string, src []byte, err error) error {
	mode, merr := colorMode()
	if merr != nil {
		return usageErrorf("%v", merr)
	}
	renderError(c.stderr, mode, err, map[string][]byte{name: src})
	return &exitError{code: lox.ExitCode(err), err: err, reported: true}
}

// TokensCommand creates the "tokens" cobra command.
func TokensCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts...)
	return &cobra.Command{
		Use:   "tokens FILE",
		Short: "Print the token stream of a lox source file",
		Long: `Scan a lox source file and print one token per line as
"line:col TYPE lexeme [literal]".  Use "-" to read from stdin.

Lexical errors are reported after the tokens that could be scanned and make
the command exit with status 65.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name, src, err := cfg.readSource(args[0])
			if err != nil {
				return err
			}
			tokens, errs := lexer.Scan(name, string(src))
			for _, tok := range tokens {
				line, col := 0, 0
				if tok.Source != nil {
					line, col = tok.Source.Line, tok.Source.Col
				}
				fmt.Fprintf(cfg.stdout, "%d:%d %s\n", line, col, tok) //nolint:errcheck
			}
			if len(errs) > 0 {
				return cfg.reportStatic(name, src, errs)
			}
			return nil
		},
	}
}

// ASTCommand creates the "ast" cobra command.
func ASTCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts...)
	var compact bool

	cmd := &cobra.Command{
		Use:   "ast FILE",
		Short: "Print the syntax tree of a lox source file",
		Long: `Parse a lox source file and print its syntax tree in parenthesized
prefix form, one statement per line with nested statements indented.  Use
"-" to read from stdin.  For loops are shown in their desugared while form.

Syntax errors make the command exit with status 65.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name, src, err := cfg.readSource(args[0])
			if err != nil {
				return err
			}
			stmts, errs := rdparser.ParseSource(name, string(src))
			if len(errs) > 0 {
				return cfg.reportStatic(name, src, errs)
			}
			if compact {
				_, err = fmt.Fprintln(cfg.stdout, astutil.SprintProgram(stmts))
				return err
			}
			return astutil.Fprint(cfg.stdout, stmts)
		},
	}
	cmd.Flags().BoolVar(&compact, "compact", false,
		"Print each top-level statement on a single line.")
	return cmd
}

func init() {
	rootCmd.AddCommand(TokensCommand())
	rootCmd.AddCommand(ASTCommand())
}
