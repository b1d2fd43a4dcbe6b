// Copyright © 2021 The ELPS authors

package cmd

import (
	"fmt"
	"strings"

	"github.com/luthersystems/lox/docs"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
)

// DocCommand creates the "doc" cobra command.
func DocCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts...)
	var list bool

	cmd := &cobra.Command{
		Use:   "doc [flags] [TOPIC]",
		Short: "Show lox language documentation",
		Long: `Show the lox language reference.

With no arguments the complete reference is printed.  Given a topic, such
as a keyword or the name of a native function, only the matching section
is shown.

Examples:
  lox doc              Print the language reference
  lox doc fun          Show docs for function declarations
  lox doc clock        Show docs for the clock native
  lox doc -l           List the available topics`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if list {
				for _, name := range docs.Topics() {
					fmt.Fprintln(cfg.stdout, name) //nolint:errcheck
				}
				return nil
			}
			if len(args) == 0 {
				_, err := fmt.Fprint(cfg.stdout, docs.LangGuide)
				return err
			}
			text, ok := docs.Topic(args[0])
			if !ok {
				return usageErrorf("no documentation for %q; available topics: %s",
					args[0], strings.Join(docs.Topics(), ", "))
			}
			_, err := fmt.Fprintln(cfg.stdout, wordwrap.String(text, helpWidth))
			return err
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List documentation topics.")
	return cmd
}

func init() {
	rootCmd.AddCommand(DocCommand())
}
