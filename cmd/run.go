// Copyright © 2018 The ELPS authors

package cmd

import (
	"context"
	"fmt"

	"github.com/luthersystems/lox/lox"
	"github.com/luthersystems/lox/parser"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// expressionName is the file name given to programs passed with -e.
const expressionName = "<expression>"

// interpreterConfig returns the configuration shared by every interpreter the
// CLI creates: the standard reader, the configured stack limit and the
// command's output streams.
func (c *cmdConfig) interpreterConfig() []lox.Config {
	config := []lox.Config{
		lox.WithReader(parser.NewReader()),
		lox.WithStdout(c.stdout),
		lox.WithStderr(c.stderr),
		lox.WithMaximumStackHeight(viper.GetInt(keyMaxStackHeight)),
	}
	return append(config, c.loxConfig...)
}

// RunCommand creates the "run" cobra command.
func RunCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts...)
	var expression bool

	cmd := &cobra.Command{
		Use:   "run [flags] FILE...",
		Short: "Run lox programs",
		Long: `Run lox programs from files or from the command line.

Each argument is run in order in the same interpreter, so globals declared
by one file are visible to the files that follow.  The first error stops the
run.

Exit codes:
  0   Success
  64  Bad invocation
  65  Lexical, syntax or static error (nothing was executed)
  66  Unreadable input file
  70  Runtime error

Examples:
  lox run fib.lox
  lox run lib.lox main.lox
  lox run -e 'var a = 1; print a + 2;'
  lox --trace=callgrind run fib.lox`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usageErrorf("run requires a file or an expression")
			}
			mode, err := colorMode()
			if err != nil {
				return usageErrorf("%v", err)
			}

			in, err := lox.NewInterpreter(cfg.interpreterConfig()...)
			if err != nil {
				return failure(fmt.Errorf("language initialization failure: %w", err))
			}
			finish, err := startTrace(context.Background(), viper.GetString(keyTrace), viper.GetString(keyTraceFile), in, cfg.stderr)
			if err != nil {
				return usageErrorf("%v", err)
			}

			sources := make(map[string][]byte)
			runErr := runArgs(in, args, expression, sources)
			if err := finish(); err != nil {
				verbosef("trace: %v", err)
			}
			if runErr != nil {
				renderError(cfg.stderr, mode, runErr, sources)
				return &exitError{code: lox.ExitCode(runErr), err: runErr, reported: true}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&expression, "expression", "e", false,
		"Interpret arguments as lox source rather than file names.")
	return cmd
}

// runArgs runs each argument in in, stopping at the first error.  Source
// given with -e is recorded in sources for diagnostic rendering.
func runArgs(in *lox.Interpreter, args []string, expression bool, sources map[string][]byte) error {
	for _, arg := range args {
		var err error
		if expression {
			sources[expressionName] = []byte(arg)
			err = in.LoadString(expressionName, arg)
		} else {
			verbosef("running %s", arg)
			err = in.LoadFile(arg)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(RunCommand())
}
