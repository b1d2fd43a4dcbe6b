// Copyright © 2018 The ELPS authors

package cmd

import (
	"github.com/luthersystems/lox/repl"
	"github.com/spf13/cobra"
)

// ReplCommand creates the "repl" cobra command.
func ReplCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts...)
	var (
		historyFile string
		noHistory   bool
	)

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive lox REPL",
		Long: `Start an interactive read-eval-print loop for lox.

Each entry is run in the same interpreter, so variables and functions persist
between entries.  An entry that is not yet complete (an open brace or a
missing semicolon) continues on the next line.  Errors are reported and the
session continues in the global scope.  Line editing, completion of names
and keywords, and command history are supported via readline.  Use Ctrl-D to
exit.

Example REPL session:
  lox> fun square(x) { return x * x; }
  lox> print square(5);
  25
  lox> var total = 0;
  lox> for (var i = 1; i <= 3; i = i + 1) {
         total = total + i;
       }
  lox> print total;
  6`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			mode, err := colorMode()
			if err != nil {
				return usageErrorf("%v", err)
			}
			replOpts := []repl.Option{
				repl.WithStdout(cfg.stdout),
				repl.WithStderr(cfg.stderr),
				repl.WithColor(mode),
				repl.WithInterpreterConfig(cfg.interpreterConfig()...),
			}
			if cfg.stdin != nil {
				replOpts = append(replOpts, repl.WithStdin(cfg.stdin))
			}
			switch {
			case noHistory:
				replOpts = append(replOpts, repl.WithHistoryFile(""))
			case historyFile != "":
				replOpts = append(replOpts, repl.WithHistoryFile(historyFile))
			}
			return repl.RunRepl("lox> ", replOpts...)
		},
	}

	cmd.Flags().StringVar(&historyFile, "history", "",
		"History file (default is $HOME/.lox_history).")
	cmd.Flags().BoolVar(&noHistory, "no-history", false,
		"Do not read or write a history file.")
	return cmd
}

func init() {
	rootCmd.AddCommand(ReplCommand())
}
