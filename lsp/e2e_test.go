// Copyright © 2024 The ELPS authors

package lsp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jsonRPCRequest builds a JSON-RPC 2.0 request.
func jsonRPCRequest(id int, method string, params any) []byte {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
		"params":  params,
	}
	b, _ := json.Marshal(msg)
	return b
}

// jsonRPCNotification builds a JSON-RPC 2.0 notification (no id).
func jsonRPCNotification(method string, params any) []byte {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	}
	b, _ := json.Marshal(msg)
	return b
}

// lspMessage wraps JSON content with the LSP Content-Length header.
func lspMessage(content []byte) []byte {
	return fmt.Appendf(nil, "Content-Length: %d\r\n\r\n%s", len(content), content)
}

// readLSPMessage reads a single LSP message from a buffered reader.
// Returns the parsed JSON as a map.
func readLSPMessage(t *testing.T, r *bufio.Reader) map[string]any {
	t.Helper()

	// Read headers until blank line.
	var contentLength int
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("failed to read LSP header: %v", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if val, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			n, err := strconv.Atoi(val)
			require.NoError(t, err, "parsing Content-Length")
			contentLength = n
		}
	}
	require.Greater(t, contentLength, 0, "Content-Length must be positive")

	// Read content body.
	body := make([]byte, contentLength)
	_, err := io.ReadFull(r, body)
	require.NoError(t, err, "reading message body")

	var msg map[string]any
	require.NoError(t, json.Unmarshal(body, &msg), "parsing JSON body")
	return msg
}

// readResponse reads LSP messages until a response with the given id appears.
// Returns the response and any notifications received along the way.
func readResponse(t *testing.T, r *bufio.Reader, id int) (map[string]any, []map[string]any) {
	t.Helper()
	var notifications []map[string]any
	deadline := time.After(10 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("timeout waiting for response id=%d", id)
		default:
		}
		msg := readLSPMessage(t, r)
		// If this message has the expected id, it's our response.
		if msgID, ok := msg["id"]; ok {
			var msgIDFloat float64
			switch v := msgID.(type) {
			case float64:
				msgIDFloat = v
			case json.Number:
				f, _ := v.Float64()
				msgIDFloat = f
			}
			if int(msgIDFloat) == id {
				return msg, notifications
			}
		}
		// Otherwise it's a notification (no id, or different id).
		notifications = append(notifications, msg)
	}
}

// e2eServer starts an LSP server on a random TCP port and returns the
// connection and a cleanup function.
func e2eServer(t *testing.T) (net.Conn, func()) {
	t.Helper()

	srv := New(WithDebounce(50*time.Millisecond), WithExitFunc(func(int) {}))

	// Find a free port.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	_ = listener.Close()

	go func() {
		_ = srv.RunTCP(addr)
	}()

	// Give server a moment to start listening, then connect.
	var conn net.Conn
	for i := 0; i < 50; i++ {
		conn, err = net.Dial("tcp", addr)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, err, "failed to connect to LSP server at %s", addr)

	return conn, func() { _ = conn.Close() }
}

// send writes an LSP message to the connection.
func send(t *testing.T, conn net.Conn, data []byte) {
	t.Helper()
	_, err := conn.Write(lspMessage(data))
	require.NoError(t, err, "writing LSP message")
}

// initializeE2E performs the initialize handshake and returns the
// initialize result.
func initializeE2E(t *testing.T, conn net.Conn, reader *bufio.Reader) map[string]any {
	t.Helper()
	send(t, conn, jsonRPCRequest(1, "initialize", map[string]any{
		"capabilities": map[string]any{},
		"rootUri":      "file:///tmp/e2e-test",
	}))
	resp, _ := readResponse(t, reader, 1)
	send(t, conn, jsonRPCNotification("initialized", map[string]any{}))
	return resp["result"].(map[string]any)
}

func openE2E(t *testing.T, conn net.Conn, uri, text string) {
	t.Helper()
	send(t, conn, jsonRPCNotification("textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{
			"uri":        uri,
			"languageId": "lox",
			"version":    1,
			"text":       text,
		},
	}))
}

// waitDiagnostics reads messages until a publishDiagnostics notification
// for uri arrives.
func waitDiagnostics(t *testing.T, reader *bufio.Reader, uri string) []any {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for diagnostics notification")
		default:
		}
		msg := readLSPMessage(t, reader)
		if method, ok := msg["method"].(string); !ok || method != "textDocument/publishDiagnostics" {
			continue
		}
		params := msg["params"].(map[string]any)
		if params["uri"] != uri {
			continue
		}
		diags, _ := params["diagnostics"].([]any)
		return diags
	}
}

func shutdownE2E(t *testing.T, conn net.Conn, reader *bufio.Reader) {
	t.Helper()
	send(t, conn, jsonRPCRequest(99, "shutdown", nil))
	resp, _ := readResponse(t, reader, 99)
	assert.Nil(t, resp["error"], "shutdown should not error")
	send(t, conn, jsonRPCNotification("exit", nil))
}

const e2eSource = `fun add(a, b) {
  return a + b;
}

var result = add(1, 2);
print result;
`

func TestE2E_FullLifecycle(t *testing.T) {
	conn, cleanup := e2eServer(t)
	defer cleanup()
	reader := bufio.NewReader(conn)
	testURI := "file:///tmp/e2e-test/test.lox"

	result := initializeE2E(t, conn, reader)
	caps := result["capabilities"].(map[string]any)
	assert.NotNil(t, caps["hoverProvider"], "should have hover")
	assert.NotNil(t, caps["definitionProvider"], "should have definition")
	assert.NotNil(t, caps["completionProvider"], "should have completion")
	assert.NotNil(t, caps["referencesProvider"], "should have references")
	assert.NotNil(t, caps["documentSymbolProvider"], "should have document symbols")
	assert.NotNil(t, caps["renameProvider"], "should have rename")
	assert.NotNil(t, caps["signatureHelpProvider"], "should have signature help")
	serverInfo := result["serverInfo"].(map[string]any)
	assert.Equal(t, "lox-lsp", serverInfo["name"])

	openE2E(t, conn, testURI, e2eSource)
	assert.Empty(t, waitDiagnostics(t, reader, testURI))

	// Hover on the declaration of add.
	send(t, conn, jsonRPCRequest(2, "textDocument/hover", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
		"position":     map[string]any{"line": 0, "character": 5},
	}))
	hoverResp, _ := readResponse(t, reader, 2)
	require.NotNil(t, hoverResp["result"], "hover should return a result")
	hoverValue := hoverResp["result"].(map[string]any)["contents"].(map[string]any)["value"].(string)
	assert.Contains(t, hoverValue, "fun add(a, b)")

	// Definition from the call site.
	send(t, conn, jsonRPCRequest(3, "textDocument/definition", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
		"position":     map[string]any{"line": 4, "character": 14},
	}))
	defResp, _ := readResponse(t, reader, 3)
	require.NotNil(t, defResp["result"], "definition should return a result")
	defStart := defResp["result"].(map[string]any)["range"].(map[string]any)["start"].(map[string]any)
	assert.Equal(t, float64(0), defStart["line"])
	assert.Equal(t, float64(4), defStart["character"])

	send(t, conn, jsonRPCRequest(4, "textDocument/documentSymbol", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
	}))
	symResp, _ := readResponse(t, reader, 4)
	var symNames []string
	for _, s := range symResp["result"].([]any) {
		symNames = append(symNames, s.(map[string]any)["name"].(string))
	}
	assert.Equal(t, []string{"add", "result"}, symNames)

	send(t, conn, jsonRPCRequest(5, "textDocument/references", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
		"position":     map[string]any{"line": 0, "character": 5},
		"context":      map[string]any{"includeDeclaration": true},
	}))
	refsResp, _ := readResponse(t, reader, 5)
	assert.Len(t, refsResp["result"].([]any), 2, "definition and one call site")

	send(t, conn, jsonRPCRequest(6, "textDocument/rename", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
		"position":     map[string]any{"line": 0, "character": 5},
		"newName":      "sum",
	}))
	renameResp, _ := readResponse(t, reader, 6)
	changes := renameResp["result"].(map[string]any)["changes"].(map[string]any)
	fileEdits := changes[testURI].([]any)
	assert.Len(t, fileEdits, 2)
	for _, edit := range fileEdits {
		assert.Equal(t, "sum", edit.(map[string]any)["newText"])
	}

	// Introduce a syntax error; diagnostics follow after the debounce.
	send(t, conn, jsonRPCNotification("textDocument/didChange", map[string]any{
		"textDocument": map[string]any{"uri": testURI, "version": 2},
		"contentChanges": []any{
			map[string]any{"text": "var x = ;\n"},
		},
	}))
	diags := waitDiagnostics(t, reader, testURI)
	require.Len(t, diags, 1)
	assert.Equal(t, "Expect expression.", diags[0].(map[string]any)["message"])

	send(t, conn, jsonRPCNotification("textDocument/didClose", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
	}))
	assert.Empty(t, waitDiagnostics(t, reader, testURI), "close clears diagnostics")

	shutdownE2E(t, conn, reader)
}

func TestE2E_DiagnosticsPublishedOnOpen(t *testing.T) {
	conn, cleanup := e2eServer(t)
	defer cleanup()
	reader := bufio.NewReader(conn)
	testURI := "file:///tmp/e2e-diag/test.lox"

	initializeE2E(t, conn, reader)
	openE2E(t, conn, testURI, "{ var a = a; }\nprint b;\n")

	diags := waitDiagnostics(t, reader, testURI)
	require.Len(t, diags, 2)

	static := diags[0].(map[string]any)
	assert.Equal(t, float64(1), static["severity"], "static errors are errors")
	assert.Equal(t, "Can't read local variable in its own initializer.", static["message"])

	undefined := diags[1].(map[string]any)
	assert.Equal(t, float64(2), undefined["severity"], "undefined globals are warnings")
	assert.Equal(t, "Undefined variable 'b'.", undefined["message"])

	shutdownE2E(t, conn, reader)
}

func TestE2E_SignatureHelp(t *testing.T) {
	conn, cleanup := e2eServer(t)
	defer cleanup()
	reader := bufio.NewReader(conn)
	testURI := "file:///tmp/e2e-sig/test.lox"

	initializeE2E(t, conn, reader)
	openE2E(t, conn, testURI, "fun add(a, b) { return a + b; }\nadd(1, \n")
	waitDiagnostics(t, reader, testURI)

	send(t, conn, jsonRPCRequest(2, "textDocument/signatureHelp", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
		"position":     map[string]any{"line": 1, "character": 7},
	}))
	resp, _ := readResponse(t, reader, 2)
	require.NotNil(t, resp["result"], "signature help should return a result")
	help := resp["result"].(map[string]any)
	sigs := help["signatures"].([]any)
	require.Len(t, sigs, 1)
	assert.Equal(t, "add(a, b)", sigs[0].(map[string]any)["label"])
	assert.Equal(t, float64(1), help["activeParameter"])

	shutdownE2E(t, conn, reader)
}

func TestE2E_HoverOnWhitespace(t *testing.T) {
	conn, cleanup := e2eServer(t)
	defer cleanup()
	reader := bufio.NewReader(conn)
	testURI := "file:///tmp/e2e-ws/test.lox"

	initializeE2E(t, conn, reader)
	openE2E(t, conn, testURI, "var a = 1;\n\nprint a;\n")
	waitDiagnostics(t, reader, testURI)

	send(t, conn, jsonRPCRequest(2, "textDocument/hover", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
		"position":     map[string]any{"line": 1, "character": 0},
	}))
	resp, _ := readResponse(t, reader, 2)
	assert.Nil(t, resp["result"])

	shutdownE2E(t, conn, reader)
}
