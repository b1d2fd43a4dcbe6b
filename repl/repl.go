// Copyright © 2018 The ELPS authors

package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/luthersystems/lox/diagnostic"
	"github.com/luthersystems/lox/lox"
	"github.com/luthersystems/lox/parser"
	"github.com/luthersystems/lox/parser/rdparser"
)

// InputName is the file name given to REPL input in diagnostics.
const InputName = "<stdin>"

type config struct {
	stdin       io.ReadCloser
	stdout      io.Writer
	stderr      io.Writer
	historyFile string
	noHistory   bool
	color       diagnostic.ColorMode
	loxConfig   []lox.Config
}

func newConfig(opts ...Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Option func(*config)

// WithStdin allows overriding the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStdout sets the destination of print statements.
func WithStdout(stdout io.Writer) Option {
	return func(c *config) {
		c.stdout = stdout
	}
}

// WithStderr allows overriding the output of prompts and diagnostics.
func WithStderr(stderr io.Writer) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// WithHistoryFile persists line history in path.  An empty path disables
// history.  The default is ~/.lox_history.
func WithHistoryFile(path string) Option {
	return func(c *config) {
		c.historyFile = path
		c.noHistory = path == ""
	}
}

// WithColor sets the color mode used to render diagnostics.
func WithColor(mode diagnostic.ColorMode) Option {
	return func(c *config) {
		c.color = mode
	}
}

// WithInterpreterConfig passes config to the interpreter created by RunRepl.
func WithInterpreterConfig(cfgs ...lox.Config) Option {
	return func(c *config) {
		c.loxConfig = append(c.loxConfig, cfgs...)
	}
}

// RunRepl runs a simple repl in a fresh interpreter.
func RunRepl(prompt string, opts ...Option) error {
	cfg := newConfig(opts...)
	loxOpts := []lox.Config{
		lox.WithReader(parser.NewReader()),
	}
	if cfg.stdout != nil {
		loxOpts = append(loxOpts, lox.WithStdout(cfg.stdout))
	}
	if cfg.stderr != nil {
		loxOpts = append(loxOpts, lox.WithStderr(cfg.stderr))
	}
	loxOpts = append(loxOpts, cfg.loxConfig...)
	in, err := lox.NewInterpreter(loxOpts...)
	if err != nil {
		return fmt.Errorf("language initialization failure: %w", err)
	}
	return RunInterpreter(in, prompt, strings.Repeat(" ", len(prompt)), opts...)
}

// RunInterpreter runs a repl against in.  Each complete entry is resolved and
// executed in the interpreter's global environment, so definitions persist
// between entries.  RunInterpreter returns when input is exhausted.
func RunInterpreter(in *lox.Interpreter, prompt, cont string, opts ...Option) error {
	p := rdparser.NewInteractive(InputName)
	p.SetPrompts(prompt, cont)

	cfg := newConfig(opts...)
	if cfg.stdout != nil {
		in.Runtime.Stdout = cfg.stdout
	}
	if cfg.stderr != nil {
		in.Runtime.Stderr = cfg.stderr
	}
	history := cfg.historyFile
	if history == "" && !cfg.noHistory {
		history = historyPath()
	}
	ensureHistoryFilePermissions(history)

	rlCfg := &readline.Config{
		Stdout:            in.Runtime.Stderr,
		Stderr:            in.Runtime.Stderr,
		Prompt:            p.Prompt(),
		HistoryFile:       history,
		HistorySearchFold: true,
		AutoComplete:      &symbolCompleter{env: in.Globals},
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return err
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	// The last complete entry is kept so diagnostics can show its source.
	var entry strings.Builder
	renderer := &diagnostic.Renderer{
		Color: cfg.color,
		SourceReader: func(name string) ([]byte, error) {
			if name != InputName {
				return os.ReadFile(name) //#nosec G304
			}
			return []byte(entry.String()), nil
		},
	}

	for {
		rl.SetPrompt(p.Prompt())
		line, err := rl.ReadLine()
		if errors.Is(err, readline.ErrInterrupt) {
			p.Reset()
			entry.Reset()
			continue
		}
		if err != nil {
			// io.EOF or a closed input ends the session.
			return nil
		}
		if !p.IsParsing() {
			entry.Reset()
		}
		entry.WriteString(line)
		entry.WriteString("\n")
		stmts, errs, done := p.Feed(line)
		if !done {
			continue
		}
		if len(errs) > 0 {
			renderError(renderer, in.Runtime.Stderr, errs)
			continue
		}
		if err := in.Run(stmts); err != nil {
			renderError(renderer, in.Runtime.Stderr, err)
		}
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".lox_history")
}

// ensureHistoryFilePermissions creates the history file if needed and
// restricts it to the current user, since it may hold sensitive input.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) //#nosec G304
	if err != nil {
		return
	}
	_ = f.Close()
	_ = os.Chmod(path, 0600)
}
