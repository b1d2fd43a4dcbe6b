// Copyright © 2024 The ELPS authors

package cmd

import (
	"io"
	"os"

	"github.com/luthersystems/lox/lox"
)

// Option configures an exported command factory (RunCommand, LintCommand,
// LSPCommand and the others).
type Option func(*cmdConfig)

type cmdConfig struct {
	stdin     io.ReadCloser // nil reads the process's stdin
	stdout    io.Writer
	stderr    io.Writer
	loxConfig []lox.Config
}

func newCmdConfig(opts ...Option) *cmdConfig {
	c := &cmdConfig{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// WithStdin overrides the input of commands that read stdin.
func WithStdin(r io.ReadCloser) Option {
	return func(c *cmdConfig) { c.stdin = r }
}

// WithStdout overrides the destination of program output.
func WithStdout(w io.Writer) Option {
	return func(c *cmdConfig) { c.stdout = w }
}

// WithStderr overrides the destination of diagnostics.
func WithStderr(w io.Writer) Option {
	return func(c *cmdConfig) { c.stderr = w }
}

// WithInterpreterConfig passes additional configuration to every interpreter
// a command creates.  Embedders use it to install natives or a profiler.
func WithInterpreterConfig(config ...lox.Config) Option {
	return func(c *cmdConfig) { c.loxConfig = append(c.loxConfig, config...) }
}
