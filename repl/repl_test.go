package repl

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/luthersystems/lox/diagnostic"
	"github.com/luthersystems/lox/lox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runReplWithString(t *testing.T, input string, opts ...Option) (string, error) {
	t.Helper()
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()

	go func() {
		defer inW.Close() //nolint:errcheck // test cleanup
		_, _ = io.WriteString(inW, input)
	}()

	errc := make(chan error, 1)
	go func() {
		errc <- RunRepl("lox> ", append([]Option{
			WithStdin(inR),
			WithStdout(outW),
			WithStderr(outW),
			WithHistoryFile(""),
			WithColor(diagnostic.ColorNever),
		}, opts...)...)
		inR.Close()  //nolint:errcheck,gosec // test cleanup
		outW.Close() //nolint:errcheck,gosec // test cleanup
	}()

	var output bytes.Buffer
	_, _ = io.Copy(&output, outR)
	outR.Close() //nolint:errcheck,gosec // test cleanup

	return output.String(), <-errc
}

func TestEnsureHistoryFilePermissions_CreatesWithRestrictedMode(t *testing.T) {
	dir := t.TempDir()
	histFile := filepath.Join(dir, ".lox_history")

	// File does not exist yet.
	ensureHistoryFilePermissions(histFile)

	info, err := os.Stat(histFile)
	require.NoError(t, err, "history file should be created")
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "new history file should have mode 0600")
}

func TestEnsureHistoryFilePermissions_RestrictsExistingFile(t *testing.T) {
	dir := t.TempDir()
	histFile := filepath.Join(dir, ".lox_history")

	// Create the file with overly permissive mode.
	err := os.WriteFile(histFile, []byte("some history"), 0644)
	require.NoError(t, err)

	ensureHistoryFilePermissions(histFile)

	info, err := os.Stat(histFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "existing history file should be restricted to 0600")

	// Verify contents are preserved.
	data, err := os.ReadFile(histFile)
	require.NoError(t, err)
	assert.Equal(t, "some history", string(data))
}

func TestEnsureHistoryFilePermissions_EmptyPathNoOp(t *testing.T) {
	// Should not panic or error with empty path.
	ensureHistoryFilePermissions("")
}

func TestRunRepl(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Simple Addition",
			input:    "print 1 + 1;\n",
			expected: []string{"2\n"},
		},
		{
			name:     "Globals persist",
			input:    "var a = 20;\nprint a + 1;\n",
			expected: []string{"21\n"},
		},
		{
			name:     "Multi-line entry",
			input:    "fun f(x) {\n  return x * 2;\n}\nprint f(4);\n",
			expected: []string{"8\n"},
		},
		{
			name:     "Runtime error",
			input:    "print -\"x\";\nprint \"still here\";\n",
			expected: []string{"error: runtime error: Operand must be a number.", "--> <stdin>:1:7", "still here\n"},
		},
		{
			name:     "Syntax errors",
			input:    "print );\n",
			expected: []string{"error: syntax error: Expect expression.", " 1 |  print );"},
		},
		{
			name:     "Block error returns to global scope",
			input:    "var x = \"global\";\n{ var x = 1; x(); }\nprint x;\n",
			expected: []string{"Can only call functions.", "global\n"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := runReplWithString(t, tc.input)
			require.NoError(t, err)
			for _, want := range tc.expected {
				require.Contains(t, got, want)
			}
		})
	}
}

func TestRunRepl_InterpreterConfig(t *testing.T) {
	got, err := runReplWithString(t,
		"fun f(n) { return f(n + 1); }\nf(0);\nprint \"after\";\n",
		WithInterpreterConfig(lox.WithMaximumStackHeight(8)))
	require.NoError(t, err)
	assert.Contains(t, got, "Stack overflow.")
	assert.Contains(t, got, "after\n")
}
