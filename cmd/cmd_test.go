// Copyright © 2024 The ELPS authors

package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luthersystems/lox/lox"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plainColor selects the plain diagnostic formats for the duration of a test.
func plainColor(t *testing.T) {
	t.Helper()
	viper.Set(keyColor, "never")
	t.Cleanup(func() { viper.Set(keyColor, "auto") })
}

// execute runs the command built by factory with args and returns its
// output streams and error.
func execute(t *testing.T, factory func(...Option) *cobra.Command, args []string, opts ...Option) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	opts = append([]Option{WithStdout(&stdout), WithStderr(&stderr)}, opts...)
	cmd := factory(opts...)
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

func TestRunCommand_Expression(t *testing.T) {
	plainColor(t)
	stdout, stderr, err := execute(t, RunCommand, []string{"-e", `var a = 1; print a + 2; print "x" + "y";`})
	require.NoError(t, err)
	assert.Equal(t, "3\nxy\n", stdout)
	assert.Empty(t, stderr)
}

func TestRunCommand_FilesShareGlobals(t *testing.T) {
	plainColor(t)
	lib := writeFile(t, "lib.lox", "fun twice(n) { return n * 2; }\n")
	main := writeFile(t, "main.lox", "print twice(21);\n")
	stdout, _, err := execute(t, RunCommand, []string{lib, main})
	require.NoError(t, err)
	assert.Equal(t, "42\n", stdout)
}

func TestRunCommand_Closures(t *testing.T) {
	plainColor(t)
	src := `
fun makeCounter() {
  var i = 0;
  fun count() { i = i + 1; print i; }
  return count;
}
var c = makeCounter();
c();
c();
`
	stdout, _, err := execute(t, RunCommand, []string{"-e", src})
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n", stdout)
}

func TestRunCommand_SyntaxError(t *testing.T) {
	plainColor(t)
	stdout, stderr, err := execute(t, RunCommand, []string{"-e", "print 1 +;"})
	require.Error(t, err)
	assert.Equal(t, lox.ExitStatic, exitCode(err))
	assert.Empty(t, stdout)
	assert.Equal(t, "[line 1] error at ';': Expect expression.\n", stderr)

	var exit *exitError
	require.True(t, errors.As(err, &exit))
	assert.True(t, exit.reported)
}

func TestRunCommand_StaticErrorRunsNothing(t *testing.T) {
	plainColor(t)
	stdout, stderr, err := execute(t, RunCommand, []string{"-e", `print "before"; return 1;`})
	require.Error(t, err)
	assert.Equal(t, lox.ExitStatic, exitCode(err))
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "[line 1] error at 'return': Can't return from top-level code.")
}

func TestRunCommand_RuntimeError(t *testing.T) {
	plainColor(t)
	stdout, stderr, err := execute(t, RunCommand, []string{"-e", "print \"a\";\nprint -\"b\";"})
	require.Error(t, err)
	assert.Equal(t, lox.ExitRuntime, exitCode(err))
	assert.Equal(t, "a\n", stdout)
	assert.Equal(t, "Operand must be a number.\n[line: 2]\n", stderr)
}

func TestRunCommand_StackOverflow(t *testing.T) {
	plainColor(t)
	_, stderr, err := execute(t, RunCommand,
		[]string{"-e", "fun f() { f(); } f();"},
		WithInterpreterConfig(lox.WithMaximumStackHeight(16)))
	require.Error(t, err)
	assert.Equal(t, lox.ExitRuntime, exitCode(err))
	assert.Contains(t, stderr, "Stack overflow.")
}

func TestRunCommand_MissingFile(t *testing.T) {
	plainColor(t)
	missing := filepath.Join(t.TempDir(), "missing.lox")
	_, stderr, err := execute(t, RunCommand, []string{missing})
	require.Error(t, err)
	assert.Equal(t, lox.ExitNoInput, exitCode(err))
	assert.Contains(t, stderr, "missing.lox")
}

func TestRunCommand_NoArgs(t *testing.T) {
	_, _, err := execute(t, RunCommand, nil)
	require.Error(t, err)
	assert.Equal(t, lox.ExitUsage, exitCode(err))
}

func TestRunCommand_RenderedDiagnostic(t *testing.T) {
	viper.Set(keyColor, "always")
	t.Cleanup(func() { viper.Set(keyColor, "auto") })

	_, stderr, err := execute(t, RunCommand, []string{"-e", "var x = 1;\nprint x + nil;"})
	require.Error(t, err)
	assert.Equal(t, lox.ExitRuntime, exitCode(err))
	assert.Contains(t, stderr, "Operands must be")
	assert.Contains(t, stderr, "print x + nil;")
}

func TestRunCommand_BadColor(t *testing.T) {
	viper.Set(keyColor, "sometimes")
	t.Cleanup(func() { viper.Set(keyColor, "auto") })

	_, _, err := execute(t, RunCommand, []string{"-e", "print 1;"})
	require.Error(t, err)
	assert.Equal(t, lox.ExitUsage, exitCode(err))
}

func TestRunCommand_CallgrindTrace(t *testing.T) {
	plainColor(t)
	out := filepath.Join(t.TempDir(), "callgrind.out")
	viper.Set(keyTrace, traceCallgrind)
	viper.Set(keyTraceFile, out)
	t.Cleanup(func() {
		viper.Set(keyTrace, traceNone)
		viper.Set(keyTraceFile, "")
	})

	stdout, _, err := execute(t, RunCommand, []string{"-e", "fun f() { return 1; } print f();"})
	require.NoError(t, err)
	assert.Equal(t, "1\n", stdout)
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(b), "fn=")
}

func TestRunCommand_PprofTrace(t *testing.T) {
	plainColor(t)
	out := filepath.Join(t.TempDir(), "cpu.pprof")
	viper.Set(keyTrace, tracePprof)
	viper.Set(keyTraceFile, out)
	t.Cleanup(func() {
		viper.Set(keyTrace, traceNone)
		viper.Set(keyTraceFile, "")
	})

	stdout, _, err := execute(t, RunCommand, []string{"-e", "fun f(n) { return n * 2; } print f(4);"})
	require.NoError(t, err)
	assert.Equal(t, "8\n", stdout)
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestRunCommand_UnknownTrace(t *testing.T) {
	viper.Set(keyTrace, "dtrace")
	t.Cleanup(func() { viper.Set(keyTrace, traceNone) })

	_, _, err := execute(t, RunCommand, []string{"-e", "print 1;"})
	require.Error(t, err)
	assert.Equal(t, lox.ExitUsage, exitCode(err))
}

func TestTokensCommand(t *testing.T) {
	plainColor(t)
	stdout, _, err := execute(t, TokensCommand, []string{"-"},
		WithStdin(io.NopCloser(strings.NewReader("var a = 1;"))))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "1:1 VAR var", lines[0])
	assert.Equal(t, "1:5 IDENTIFIER a", lines[1])
	assert.True(t, strings.HasPrefix(lines[3], "1:9 NUMBER 1"), lines[3])
	assert.True(t, strings.HasPrefix(lines[5], "1:11 EOF"), lines[5])
}

func TestTokensCommand_LexicalError(t *testing.T) {
	plainColor(t)
	path := writeFile(t, "bad.lox", "var a = @;")
	stdout, stderr, err := execute(t, TokensCommand, []string{path})
	require.Error(t, err)
	assert.Equal(t, lox.ExitStatic, exitCode(err))
	assert.Contains(t, stdout, "VAR var")
	assert.Contains(t, stderr, "Unexpected character.")
}

func TestASTCommand(t *testing.T) {
	plainColor(t)
	path := writeFile(t, "prog.lox", "print 1 + 2 * 3;\n")
	stdout, _, err := execute(t, ASTCommand, []string{"--compact", path})
	require.NoError(t, err)
	assert.Equal(t, "(print (+ 1 (* 2 3)))\n", stdout)
}

func TestASTCommand_SyntaxError(t *testing.T) {
	plainColor(t)
	path := writeFile(t, "bad.lox", "var = 1;\n")
	_, stderr, err := execute(t, ASTCommand, []string{path})
	require.Error(t, err)
	assert.Equal(t, lox.ExitStatic, exitCode(err))
	assert.Contains(t, stderr, "[line 1] error at '='")
}

func TestLintCommand_DefaultFlags(t *testing.T) {
	cmd := LintCommand()
	assert.Equal(t, "lint [flags] [files...]", cmd.Use)
	for _, name := range []string{"json", "checks", "list", "exclude"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestLintCommand_List(t *testing.T) {
	stdout, _, err := execute(t, LintCommand, []string{"--list"})
	require.NoError(t, err)
	assert.Contains(t, stdout, "undefined-variable\n")
	assert.Contains(t, stdout, "call-arity\n")
}

func TestLintCommand_Clean(t *testing.T) {
	plainColor(t)
	path := writeFile(t, "ok.lox", "var a = clock();\nprint a;\n")
	stdout, stderr, err := execute(t, LintCommand, []string{path})
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)
}

func TestLintCommand_Findings(t *testing.T) {
	plainColor(t)
	path := writeFile(t, "bad.lox", "print x;\n")
	_, stderr, err := execute(t, LintCommand, []string{path})
	require.Error(t, err)
	assert.Equal(t, exitFailure, exitCode(err))
	assert.Contains(t, stderr, "bad.lox:1:7: undefined variable 'x' (undefined-variable)")
}

func TestLintCommand_JSON(t *testing.T) {
	plainColor(t)
	path := writeFile(t, "bad.lox", "fun f(a) {}\nf(1, 2);\n")
	stdout, _, err := execute(t, LintCommand, []string{"--json", "--checks", "call-arity", path})
	require.Error(t, err)
	assert.Equal(t, exitFailure, exitCode(err))

	var diags []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &diags))
	require.Len(t, diags, 1)
	assert.Equal(t, "call-arity", diags[0]["analyzer"])
	assert.Equal(t, "error", diags[0]["severity"])
}

func TestLintCommand_Stdin(t *testing.T) {
	plainColor(t)
	_, stderr, err := execute(t, LintCommand, nil,
		WithStdin(io.NopCloser(strings.NewReader("var a = 1;\na = a;\n"))))
	require.Error(t, err)
	assert.Contains(t, stderr, "<stdin>:2:1: self-assignment of 'a'")
}

func TestLintCommand_UnknownCheck(t *testing.T) {
	_, _, err := execute(t, LintCommand, []string{"--checks", "no-such-check,bogus", "x.lox"})
	require.Error(t, err)
	assert.Equal(t, lox.ExitUsage, exitCode(err))
	assert.Contains(t, err.Error(), "bogus, no-such-check")
}

func TestLintCommand_ParseError(t *testing.T) {
	plainColor(t)
	path := writeFile(t, "bad.lox", "print (1;\n")
	_, stderr, err := execute(t, LintCommand, []string{path})
	require.Error(t, err)
	assert.Equal(t, lox.ExitStatic, exitCode(err))
	assert.Contains(t, stderr, "Expect ')' after expression.")
}

func TestLSPCommand_DefaultFlags(t *testing.T) {
	cmd := LSPCommand()
	assert.Equal(t, "lsp [flags]", cmd.Use)
	for _, name := range []string{"stdio", "port"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestReplCommand_DefaultFlags(t *testing.T) {
	cmd := ReplCommand()
	for _, name := range []string{"history", "no-history"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, lox.ExitOK, exitCode(nil))
	assert.Equal(t, lox.ExitUsage, exitCode(errors.New("unknown flag: --bogus")))
	assert.Equal(t, lox.ExitUsage, exitCode(usageErrorf("bad")))
	assert.Equal(t, exitFailure, exitCode(failure(errors.New("boom"))))
	assert.Equal(t, lox.ExitRuntime, exitCode(&exitError{code: lox.ExitRuntime, err: errors.New("x")}))
}

func TestDocCommand(t *testing.T) {
	stdout, _, err := execute(t, DocCommand, []string{"clock"})
	require.NoError(t, err)
	assert.Contains(t, stdout, "milliseconds since the Unix epoch")

	stdout, _, err = execute(t, DocCommand, []string{"-l"})
	require.NoError(t, err)
	assert.Contains(t, stdout, "while\n")

	stdout, _, err = execute(t, DocCommand, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "# The Lox Language"))

	_, _, err = execute(t, DocCommand, []string{"lambda"})
	require.Error(t, err)
	assert.Equal(t, lox.ExitUsage, exitCode(err))
}
