// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"log"

	"github.com/luthersystems/lox/lsp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tliron/commonlog"

	// Registers the commonlog backend used by the language server.
	_ "github.com/tliron/commonlog/simple"
)

// LSPCommand creates the "lsp" cobra command.  Embedders can pass server
// options, for example lsp.WithBuiltins to declare additional natives.
func LSPCommand(serverOpts ...lsp.Option) *cobra.Command {
	var (
		stdio bool
		port  int
	)

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Start the lox Language Server Protocol server",
		Long: `Start an LSP server for lox source files.

The language server provides real-time IDE features including diagnostics,
hover, go-to-definition, find references, completion, document symbols,
signature help, folding ranges and rename support.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Server logs are written to stderr; --verbose enables debug output.

Examples:
  lox lsp                           Start with stdio transport
  lox lsp --stdio                   Same as above (explicit)
  lox lsp --port 7998               Start with TCP on port 7998

Editor configuration (VS Code):
  Install a generic LSP client extension and configure it to run
  "lox lsp --stdio" for .lox files.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			verbosity := 1
			if viper.GetBool(keyVerbose) {
				verbosity = 2
			}
			commonlog.Configure(verbosity, nil)

			srv := lsp.New(serverOpts...)
			if !stdio && port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				log.Printf("lox LSP server listening on %s", addr)
				if err := srv.RunTCP(addr); err != nil {
					return failure(fmt.Errorf("lsp server error: %w", err))
				}
				return nil
			}
			if err := srv.RunStdio(); err != nil {
				return failure(fmt.Errorf("lsp server error: %w", err))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")

	return cmd
}

func init() {
	rootCmd.AddCommand(LSPCommand())
}
