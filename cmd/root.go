// Copyright © 2018 The ELPS authors

package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/luthersystems/lox/lox"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Configuration keys.  Each is bound to the persistent flag of the same name,
// to the LOX_<KEY> environment variable and to the config file.
const (
	keyColor          = "color"
	keyMaxStackHeight = "max-stack-height"
	keyTrace          = "trace"
	keyTraceFile      = "trace-file"
	keyVerbose        = "verbose"
)

const helpWidth = 78

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lox",
	Short: "lox: a tree-walking interpreter for the Lox language",
	Long: wordwrap.String(`lox runs programs written in Lox, a small dynamically typed scripting language with lexical scope, first-class functions and closures.

Getting started:
  lox run file.lox             Run a source file
  lox run -e 'print 1 + 2;'    Run a program given on the command line
  lox repl                     Start an interactive REPL
  lox lint file.lox            Run static analysis checks
  lox tokens file.lox          Print the token stream of a file
  lox ast file.lox             Print the syntax tree of a file
  lox lsp                      Start the language server
  lox doc fun                  Show language documentation

Language overview:
  Values are nil, booleans, double precision numbers, strings and functions. Only nil and false are falsey. Variables are declared with var and functions with fun; functions close over the scope they are declared in. The single native function is clock(), which returns the time in milliseconds.

Configuration:
  Every persistent flag may also be set in the config file ($HOME/.lox.yaml) or through an environment variable named after the flag, e.g. LOX_MAX_STACK_HEIGHT=256.`, helpWidth),
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if !errors.As(err, &exit) || !exit.reported {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(exitCode(err))
	}
}

// exitError carries the process exit status of a failed command.  Errors
// already written to the user as diagnostics are marked reported.
type exitError struct {
	code     int
	err      error
	reported bool
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// exitFailure is the status of a command that failed for reasons other than
// the program it was given.
const exitFailure = 1

func failure(err error) error {
	return &exitError{code: exitFailure, err: err}
}

func usageErrorf(format string, v ...interface{}) error {
	return &exitError{code: lox.ExitUsage, err: fmt.Errorf(format, v...)}
}

// exitCode returns the process status for an error returned by a command.
// Flag and argument errors raised by cobra itself are usage errors.
func exitCode(err error) int {
	if err == nil {
		return lox.ExitOK
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	return lox.ExitUsage
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.lox.yaml)")
	flags.String(keyColor, "auto",
		`Control colored diagnostics: "auto", "always", or "never".`)
	flags.Int(keyMaxStackHeight, lox.DefaultMaxStackHeight,
		"Maximum call depth before a program fails with a stack overflow.")
	flags.String(keyTrace, traceNone,
		`Trace function calls: "none", "otel", "opencensus", "callgrind" or "pprof".`)
	flags.String(keyTraceFile, "",
		"Output file for callgrind traces (default callgrind.out.lox) or pprof CPU profiles (default cpu.pprof).")
	flags.BoolP(keyVerbose, "v", false, "Log operator messages to stderr.")
	if err := viper.BindPFlags(flags); err != nil {
		log.Fatal(err)
	}
	viper.SetEnvPrefix("lox")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		// Search config in home directory with name ".lox" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".lox")
	}

	// If a config file is found, read it in.
	err := viper.ReadInConfig()
	switch {
	case err == nil:
		verbosef("Using config file: %s", viper.ConfigFileUsed())
	case cfgFile != "":
		log.Printf("unable to read config file: %v", err)
	}
}

// verbosef logs an operator message when --verbose is set.
func verbosef(format string, v ...interface{}) {
	if viper.GetBool(keyVerbose) {
		log.Printf(format, v...)
	}
}
