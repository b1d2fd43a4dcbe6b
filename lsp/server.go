// Copyright © 2024 The ELPS authors

// Package lsp implements a Language Server Protocol server for lox.
// It provides diagnostics, hover, go-to-definition, references,
// completion, document symbols, signature help, folding and rename support.
package lsp

import (
	"os"
	"sync"
	"time"

	"github.com/luthersystems/lox/analysis"
	"github.com/luthersystems/lox/lox"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	glspserver "github.com/tliron/glsp/server"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

const serverName = "lox-lsp"

// Server is the lox language server.
type Server struct {
	handler  protocol.Handler
	glspSrv  *glspserver.Server
	docs     *DocumentStore
	log      commonlog.Logger
	rootURI  string
	rootPath string

	// Natives predefined in the global scope of every document.
	builtins []analysis.ExternalSymbol

	// Debouncer for didChange notifications.
	debounceMu    sync.Mutex
	debounce      map[string]*time.Timer
	debounceDelay time.Duration

	// Context for sending notifications (captured from latest request).
	notifyMu sync.Mutex
	notify   glsp.NotifyFunc

	// exitFn is called on the LSP exit notification. Defaults to os.Exit.
	// Overridable for testing.
	exitFn func(int)
}

// Option configures the LSP server.
type Option func(*Server)

// WithBuiltins replaces the natives the analyzer treats as predefined.  By
// default these are the natives of every lox.Interpreter.
func WithBuiltins(builtins []analysis.ExternalSymbol) Option {
	return func(s *Server) { s.builtins = builtins }
}

// WithDebounce sets how long the server waits after the last edit of a
// document before publishing its diagnostics.
func WithDebounce(d time.Duration) Option {
	return func(s *Server) { s.debounceDelay = d }
}

// WithExitFunc overrides the function called on the exit notification.
func WithExitFunc(fn func(int)) Option {
	return func(s *Server) { s.exitFn = fn }
}

// New creates a new lox LSP server.
func New(opts ...Option) *Server {
	s := &Server{
		docs:          NewDocumentStore(),
		log:           commonlog.GetLogger(serverName),
		builtins:      DefaultBuiltins(),
		debounce:      make(map[string]*time.Timer),
		debounceDelay: defaultDebounceDelay,
		exitFn:        os.Exit,
	}
	for _, o := range opts {
		o(s)
	}

	s.handler = protocol.Handler{
		Initialize: s.initialize,
		Shutdown:   s.shutdown,
		Exit:       s.exit,
		SetTrace:   s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentHover:          s.textDocumentHover,
		TextDocumentDefinition:     s.textDocumentDefinition,
		TextDocumentCompletion:     s.textDocumentCompletion,
		TextDocumentReferences:     s.textDocumentReferences,
		TextDocumentDocumentSymbol: s.textDocumentDocumentSymbol,
		TextDocumentRename:         s.textDocumentRename,
		TextDocumentPrepareRename:  s.textDocumentPrepareRename,
		TextDocumentSignatureHelp:  s.textDocumentSignatureHelp,
		TextDocumentFoldingRange:   s.textDocumentFoldingRange,
	}

	s.glspSrv = glspserver.NewServer(&s.handler, serverName, false)
	return s
}

// DefaultBuiltins returns the natives of a standard interpreter as analysis
// symbols.
func DefaultBuiltins() []analysis.ExternalSymbol {
	var syms []analysis.ExternalSymbol
	for _, fn := range lox.DefaultBuiltins() {
		syms = append(syms, analysis.ExternalSymbol{Name: fn.Name, Arity: fn.NArgs})
	}
	return syms
}

// RunStdio starts the server using stdio transport.
func (s *Server) RunStdio() error {
	return s.glspSrv.RunStdio()
}

// RunTCP starts the server listening on the given address.
func (s *Server) RunTCP(addr string) error {
	return s.glspSrv.RunTCP(addr)
}

// initialize handles the LSP initialize request.
func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.captureNotify(ctx)

	if params.RootURI != nil {
		s.rootURI = *params.RootURI
		s.rootPath = uriToPath(s.rootURI)
	} else if params.RootPath != nil {
		s.rootPath = *params.RootPath
		s.rootURI = pathToURI(s.rootPath)
	}
	s.log.Infof("initialize: root %q", s.rootPath)

	capabilities := s.handler.CreateServerCapabilities()

	// Override text document sync to full.
	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: boolPtr(false)},
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{}

	capabilities.RenameProvider = &protocol.RenameOptions{
		PrepareProvider: boolPtr(true),
	}

	capabilities.SignatureHelpProvider = &protocol.SignatureHelpOptions{
		TriggerCharacters:   []string{"(", ","},
		RetriggerCharacters: []string{")"},
	}

	version := lox.Version
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

// shutdown handles the LSP shutdown request.
func (s *Server) shutdown(ctx *glsp.Context) error {
	// Cancel any pending debounce timers.
	s.debounceMu.Lock()
	for _, t := range s.debounce {
		t.Stop()
	}
	s.debounce = make(map[string]*time.Timer)
	s.debounceMu.Unlock()

	s.log.Infof("shutdown: %d open documents", len(s.docs.All()))
	return nil
}

// exit handles the LSP exit notification by terminating the process.
func (s *Server) exit(_ *glsp.Context) error {
	s.exitFn(0)
	return nil
}

// setTrace handles the $/setTrace notification (required by some clients).
func (s *Server) setTrace(_ *glsp.Context, _ *protocol.SetTraceParams) error {
	return nil
}

// analysisConfig returns the analysis configuration for the document at uri.
func (s *Server) analysisConfig(uri string) *analysis.Config {
	return &analysis.Config{
		Builtins: s.builtins,
		Filename: uriToPath(uri),
	}
}

// ensureAnalysis ensures the document has a current analysis result.
func (s *Server) ensureAnalysis(doc *Document) {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	if doc.analysis != nil {
		return
	}
	doc.analyze(s.analysisConfig(doc.URI))
}

// captureNotify stores the notification function from the context for
// async use (e.g., publishing diagnostics after a debounce).
func (s *Server) captureNotify(ctx *glsp.Context) {
	s.notifyMu.Lock()
	s.notify = ctx.Notify
	s.notifyMu.Unlock()
}

// sendNotification sends a notification to the client.
func (s *Server) sendNotification(method string, params any) {
	s.notifyMu.Lock()
	fn := s.notify
	s.notifyMu.Unlock()
	if fn != nil {
		fn(method, params)
	}
}

func boolPtr(b bool) *bool {
	return &b
}
