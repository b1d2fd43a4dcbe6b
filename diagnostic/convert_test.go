// Copyright © 2024 The ELPS authors

package diagnostic_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/luthersystems/lox/diagnostic"
	"github.com/luthersystems/lox/lox"
	"github.com/luthersystems/lox/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, source string) error {
	t.Helper()
	in, err := lox.NewInterpreter(
		lox.WithReader(parser.NewReader()),
		lox.WithStdout(io.Discard),
	)
	require.NoError(t, err)
	return in.LoadString("main.lox", source)
}

func TestFromError_Syntax(t *testing.T) {
	err := run(t, "print ;\nvar = 1;")
	diags := diagnostic.FromError(err)
	require.Len(t, diags, 2)
	assert.Equal(t, "syntax error: Expect expression.", diags[0].Message)
	assert.Equal(t, []diagnostic.Span{{File: "main.lox", Line: 1, Col: 7, Label: "at ';'"}}, diags[0].Spans)
	assert.Equal(t, "syntax error: Expect variable name.", diags[1].Message)
	assert.Equal(t, 2, diags[1].Spans[0].Line)
}

func TestFromError_Runtime(t *testing.T) {
	err := run(t, "fun f(n) {\n  return n + nil;\n}\nf(1);")
	diags := diagnostic.FromError(err)
	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, "runtime error: Operands must be two numbers or two strings.", d.Message)
	assert.Equal(t, []diagnostic.Span{{File: "main.lox", Line: 2, Col: 12, EndCol: 12}}, d.Spans)
	assert.Equal(t, []string{"in f called at main.lox:4:4"}, d.Notes)

	r := &diagnostic.Renderer{
		Color: diagnostic.ColorNever,
		SourceReader: func(string) ([]byte, error) {
			return []byte("fun f(n) {\n  return n + nil;\n}\nf(1);"), nil
		},
	}
	var buf bytes.Buffer
	require.NoError(t, r.RenderAll(&buf, diags))
	assert.Contains(t, buf.String(), " 2 |    return n + nil;\n")
	assert.Contains(t, buf.String(), "= note: in f called at main.lox:4:4")
}

func TestFromError_Other(t *testing.T) {
	assert.Nil(t, diagnostic.FromError(nil))
	err := fmt.Errorf("unable to open source file: %w", errors.New("no such file"))
	diags := diagnostic.FromError(err)
	require.Len(t, diags, 1)
	assert.Equal(t, "unable to open source file: no such file", diags[0].Message)
	assert.Empty(t, diags[0].Spans)
}
