// Copyright © 2018 The ELPS authors

// Package loxtest runs lox programs from Go tests.  Expectations are either
// written inline as a TestSuite or loaded from YAML fixture files.
package loxtest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luthersystems/lox/lox"
	"github.com/luthersystems/lox/parser"
	"github.com/luthersystems/lox/parser/token"
	"gopkg.in/yaml.v3"
)

func BenchmarkParse(path string, r func() lox.Reader) func(*testing.B) {
	return func(b *testing.B) {
		buf, err := os.ReadFile(path) //#nosec G304
		if err != nil {
			b.Fatalf("Unable to read source file %v: %v", path, err)
		}
		b.SetBytes(int64(len(buf)))
		for i := 0; i < b.N; i++ {
			_, err := r().Read("test", bytes.NewReader(buf))
			if err != nil {
				b.Fatalf("Parse failure: %v", err)
			}
		}
	}
}

// Case is a single program and the observable results of running it in a
// fresh interpreter.
type Case struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	// Stdout is everything the program prints, including output produced
	// before an error.
	Stdout string `yaml:"stdout"`
	// Error is the expected text of the returned error.  An empty Error
	// means the program must succeed.
	Error string `yaml:"error"`
	// Class is the expected error class: lexical, syntax, static or
	// runtime.
	Class string `yaml:"class"`
	// MaxStackHeight overrides the default maximum call depth when positive.
	MaxStackHeight int `yaml:"max_stack_height"`
}

// File is the document format of a fixture file.
type File struct {
	Tests []*Case `yaml:"tests"`
}

// ReadFile decodes the fixture file at path.
func ReadFile(path string) (*File, error) {
	b, err := os.ReadFile(path) //#nosec G304
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	for i, c := range f.Tests {
		if c.Name == "" {
			c.Name = fmt.Sprintf("case%d", i)
		}
	}
	return &f, nil
}

// Runner is a test runner.
type Runner struct {
	// Config is applied to every interpreter the runner creates, after the
	// runner's own output configuration.
	Config []lox.Config

	// Setup runs after an interpreter has been created and before the
	// program under test is loaded.
	Setup func(*lox.Interpreter) error
}

// NewInterpreter returns an interpreter that prints into stdout and logs
// debugging output to t.
func (r *Runner) NewInterpreter(t testing.TB, stdout io.Writer) (*lox.Interpreter, error) {
	config := []lox.Config{
		lox.WithReader(parser.NewReader()),
		lox.WithStdout(stdout),
		lox.WithStderr(NewLogger(t)),
	}
	config = append(config, r.Config...)
	in, err := lox.NewInterpreter(config...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize interpreter: %w", err)
	}
	if r.Setup != nil {
		if err := r.Setup(in); err != nil {
			return nil, fmt.Errorf("setup failed: %w", err)
		}
	}
	return in, nil
}

// RunCase runs c in a fresh interpreter and checks its output and error.
func (r *Runner) RunCase(t *testing.T, c *Case) {
	var stdout bytes.Buffer
	in, err := r.NewInterpreter(t, &stdout)
	if err != nil {
		t.Fatal(err.Error())
	}
	defer in.Runtime.Stderr.(*Logger).Flush()
	if c.MaxStackHeight > 0 {
		in.Runtime.Stack.MaxHeight = c.MaxStackHeight
	}

	err = in.LoadString(c.Name, c.Source)
	if stdout.String() != c.Stdout {
		t.Errorf("expected output %q (got %q)", c.Stdout, stdout.String())
	}
	if c.Error == "" {
		if err != nil {
			ReportError(t, err)
		}
		return
	}
	if err == nil {
		t.Errorf("expected error %q (got success)", c.Error)
		return
	}
	if err.Error() != c.Error {
		t.Errorf("expected error %q (got %q)", c.Error, err.Error())
	}
	if c.Class == "" {
		return
	}
	class, ok := ClassName(c.Class)
	if !ok {
		t.Errorf("unknown error class %q", c.Class)
		return
	}
	if lox.ClassOf(err) != class {
		t.Errorf("expected %s error (got %s)", class, lox.ClassOf(err))
	}
}

// RunTestFile runs each case in the fixture file at path as a subtest.
func (r *Runner) RunTestFile(t *testing.T, path string) {
	var f *File
	ok := t.Run("$load", func(t *testing.T) {
		var err error
		f, err = ReadFile(path)
		if err != nil {
			t.Fatalf("Unable to read test file: %v", err)
		}
	})
	if !ok {
		return
	}

	for _, c := range f.Tests {
		// We don't check the result of t.Run here because we want all
		// independent cases to run during a single run of the file.
		c := c
		t.Run(c.Name, func(t *testing.T) {
			r.RunCase(t, c)
		})
	}
}

// ReportError fails t with err, including a stack trace when err is a
// runtime error.
func ReportError(t testing.TB, err error) {
	t.Helper()
	var rerr *lox.RuntimeError
	if !errors.As(err, &rerr) {
		t.Error(err)
		return
	}
	var buf bytes.Buffer
	_, ioerr := rerr.WriteTrace(&buf)
	if ioerr != nil {
		t.Errorf("io error: %v", ioerr)
		t.Error(err)
		return
	}
	t.Error(buf.String())
}

// TestSequence is a sequence of lox programs run one after another against
// the same interpreter, the way a REPL runs its entries.
type TestSequence []struct {
	Source string // lox source
	Output string // text printed to stdout
	Error  string // expected error text; empty for success
}

// TestSuite is a set of named TestSequences
type TestSuite []struct {
	Name string
	TestSequence
}

// RunTestSuite runs each TestSequence in tests on an isolated interpreter.
func RunTestSuite(t *testing.T, tests TestSuite) {
	for i, test := range tests {
		var out bytes.Buffer
		in, err := lox.NewInterpreter(
			lox.WithReader(parser.NewReader()),
			lox.WithStdout(&out),
			lox.WithStderr(io.Discard),
		)
		if err != nil {
			t.Errorf("test %d %q: %v", i, test.Name, err)
			continue
		}
		for j, expr := range test.TestSequence {
			out.Reset()
			err := in.LoadString("test", expr.Source)
			var msg string
			if err != nil {
				msg = err.Error()
			}
			if msg != expr.Error {
				t.Errorf("test %d %q: expr %d: expected error %q (got %q)", i, test.Name, j, expr.Error, msg)
			}
			if out.String() != expr.Output {
				t.Errorf("test %d %q: expr %d: expected output %q (got %q)", i, test.Name, j, expr.Output, out.String())
			}
		}
	}
}

// RunBenchmark runs a standard benchmark that executes the program parsed
// from source in a fresh interpreter each iteration.
func RunBenchmark(b *testing.B, source string) {
	b.StopTimer()
	p := parser.NewReader()
	stmts, err := p.Read("benchmark", strings.NewReader(source))
	if err != nil {
		b.Fatalf("parse error: %v", err)
	}
	for i := 0; i < b.N; i++ {
		in, err := lox.NewInterpreter(
			lox.WithReader(p),
			lox.WithStdout(io.Discard),
			lox.WithStderr(io.Discard),
		)
		if err != nil {
			b.Fatal(err)
		}
		b.StartTimer()
		err = in.Run(stmts)
		b.StopTimer()
		if err != nil {
			b.Fatalf("run error: %v", err)
		}
	}
}

// ClassName parses the name of an error class as used in fixture files.
func ClassName(s string) (token.ErrorClass, bool) {
	for _, c := range []token.ErrorClass{token.ClassLexical, token.ClassSyntax, token.ClassStatic, token.ClassRuntime} {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}
