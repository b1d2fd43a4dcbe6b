// Copyright © 2024 The ELPS authors

package lsp

import (
	"sync"

	"github.com/luthersystems/lox/analysis"
	"github.com/luthersystems/lox/ast"
	"github.com/luthersystems/lox/parser/rdparser"
	"github.com/luthersystems/lox/parser/token"
)

// Document represents an open text document tracked by the LSP server.
type Document struct {
	mu          sync.Mutex
	URI         string
	Version     int32
	Content     string
	stmts       []ast.Stmt
	analysis    *analysis.Result
	parseErrors token.ErrorList
}

// parse parses the document content and caches the syntax tree.  The parser
// synchronizes after each error so the statements outside broken regions
// are still available for analysis.
func (d *Document) parse() {
	d.stmts, d.parseErrors = rdparser.ParseSource(uriToPath(d.URI), d.Content)
}

// analyze runs semantic analysis on the cached syntax tree.
func (d *Document) analyze(cfg *analysis.Config) {
	d.analysis = analysis.Analyze(d.stmts, cfg)
}

// DocumentStore manages open documents with thread-safe access.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

// Open adds a document to the store and parses it.
func (s *DocumentStore) Open(uri string, version int32, content string) *Document {
	doc := &Document{
		URI:     uri,
		Version: version,
		Content: content,
	}
	doc.parse()
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

// Change updates a document's content (full sync) and re-parses it.
func (s *DocumentStore) Change(uri string, version int32, content string) *Document {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		doc = &Document{URI: uri}
		s.docs[uri] = doc
	}
	s.mu.Unlock()

	doc.mu.Lock()
	doc.Version = version
	doc.Content = content
	doc.parse()
	// Clear cached analysis; it will be rebuilt on next request.
	doc.analysis = nil
	doc.mu.Unlock()
	return doc
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// Get retrieves a document by URI. Returns nil if not found.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// All returns every open document.
func (s *DocumentStore) All() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]*Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	return docs
}
