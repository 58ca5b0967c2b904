// Package lsp serves diagnostics, hovers, completions and quick fixes for
// view! markup over the Language Server Protocol on stdio.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"viewc/internal/version"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	Debounce       time.Duration
	Analyze        AnalyzeFunc
	MaxDiagnostics int
	// Log receives server messages; defaults to stderr.
	Log io.Writer
}

type document struct {
	text    string
	version int
}

// Server handles stdio JSON-RPC for viewc.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	log    io.Writer
	sendMu sync.Mutex
	// runMu serializes analysis runs.
	runMu sync.Mutex

	mu        sync.Mutex
	docs      map[string]*document
	analyses  map[string]*Analysis
	dirty     map[string]struct{}
	published map[string]struct{}

	workspaceRoot     string
	shutdownRequested bool
	debounce          time.Duration
	debounceTimer     *time.Timer
	analyze           AnalyzeFunc
	maxDiagnostics    int
	baseCtx           context.Context
	bindingHints      bool
	traceLSP          bool
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	analyzeFn := opts.Analyze
	if analyzeFn == nil {
		analyzeFn = Analyze
	}
	logw := opts.Log
	if logw == nil {
		logw = os.Stderr
	}
	return &Server{
		in:             bufio.NewReader(in),
		out:            bufio.NewWriter(out),
		log:            logw,
		docs:           make(map[string]*document),
		analyses:       make(map[string]*Analysis),
		dirty:          make(map[string]struct{}),
		published:      make(map[string]struct{}),
		debounce:       debounce,
		analyze:        analyzeFn,
		maxDiagnostics: opts.MaxDiagnostics,
		bindingHints:   true,
		baseCtx:        context.Background(),
	}
}

// Run serves LSP requests until exit or EOF.
func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = ctx
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("failed to parse message: %v", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		if s.shutdownRequested {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/hover":
		return s.handleHover(msg)
	case "textDocument/completion":
		return s.handleCompletion(msg)
	case "textDocument/definition":
		return s.handleDefinition(msg)
	case "textDocument/foldingRange":
		return s.handleFoldingRange(msg)
	case "textDocument/inlayHint":
		return s.handleInlayHint(msg)
	case "textDocument/codeAction":
		return s.handleCodeAction(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	root := uriToPath(params.RootURI)
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = uriToPath(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	s.mu.Lock()
	s.workspaceRoot = root
	s.mu.Unlock()

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    2,
				Save:      saveOptions{IncludeText: true},
			},
			HoverProvider:        true,
			DefinitionProvider:   true,
			CompletionProvider:   &completionOptions{TriggerCharacters: []string{"<", " ", ":"}},
			FoldingRangeProvider: true,
			InlayHintProvider:    true,
			CodeActionProvider:   true,
		},
		ServerInfo: serverInfo{Name: "viewc", Version: version.Version},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.mu.Unlock()
	s.clearPublishedDiagnostics()
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	s.docs[uri] = &document{text: params.TextDocument.Text, version: params.TextDocument.Version}
	s.mu.Unlock()
	s.scheduleDiagnostics(uri)
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if ok {
		doc.text = applyChanges(doc.text, params.ContentChanges)
		doc.version = params.TextDocument.Version
	}
	trace := s.traceLSP
	s.mu.Unlock()
	if !ok {
		return nil
	}
	if trace {
		s.logf("didChange: uri=%s version=%d", uri, params.TextDocument.Version)
	}
	s.scheduleDiagnostics(uri)
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if ok && params.Text != nil {
		doc.text = *params.Text
	}
	// A saved registry manifest changes every open document.
	all := make([]string, 0, len(s.docs))
	for u := range s.docs {
		all = append(all, u)
	}
	s.mu.Unlock()
	s.scheduleDiagnostics(all...)
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	delete(s.docs, uri)
	delete(s.analyses, uri)
	delete(s.dirty, uri)
	s.mu.Unlock()
	s.publishAll()
	return nil
}

// analysisFor returns the latest analysis of uri, or nil.
func (s *Server) analysisFor(uri string) *Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyses[canonicalURI(uri)]
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   rpcError{Code: code, Message: message},
	}
	return s.send(msg)
}

func (s *Server) sendPublish(uri string, version *int, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/publishDiagnostics",
		"params":  publishDiagnosticsParams{URI: uri, Version: version, Diagnostics: list},
	}
	return s.send(msg)
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(s.log, "lsp: "+format+"\n", args...)
}
