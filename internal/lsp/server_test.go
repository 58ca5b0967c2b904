package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"viewc/internal/diag"
	"viewc/internal/driver"
	"viewc/internal/source"
)

const testURI = "file:///tmp/proj/page.view"

// fakeAnalyze reports one error on bytes 1..5 of every document.
func fakeAnalyze(_ context.Context, path string, text []byte, _ int) (*Analysis, error) {
	fs := source.NewFileSet()
	id := fs.AddVirtual(path, text)
	d := diag.New(diag.SevError, diag.ResUnknownComponent, source.Span{File: id, Start: 1, End: 5}, "cannot find component `Labl`")
	return &Analysis{FileSet: fs, File: fs.Get(id), Unit: &driver.Unit{}, Diagnostics: []diag.Diagnostic{d}}, nil
}

func newTestServer(out io.Writer) *Server {
	return NewServer(bytes.NewReader(nil), out, ServerOptions{
		Analyze:  fakeAnalyze,
		Debounce: time.Hour,
		Log:      io.Discard,
	})
}

func notify(t *testing.T, s *Server, method string, params any) {
	t.Helper()
	raw, err := json.Marshal(params)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.handleMessage(&rpcMessage{JSONRPC: "2.0", Method: method, Params: raw}); err != nil {
		t.Fatalf("%s: %v", method, err)
	}
}

type publishMessage struct {
	Method string                   `json:"method"`
	Params publishDiagnosticsParams `json:"params"`
}

func readPublish(t *testing.T, r *bufio.Reader) publishMessage {
	t.Helper()
	payload, err := readMessage(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg publishMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatal(err)
	}
	return msg
}

func TestServerPublishesDiagnostics(t *testing.T) {
	var out bytes.Buffer
	s := newTestServer(&out)
	notify(t, s, "textDocument/didOpen", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: testURI, LanguageID: "view", Version: 3, Text: "<Labl/>\n"},
	})
	s.mu.Lock()
	s.debounceTimer.Stop()
	s.mu.Unlock()
	s.runDiagnostics()

	r := bufio.NewReader(&out)
	msg := readPublish(t, r)
	if msg.Method != "textDocument/publishDiagnostics" || msg.Params.URI != testURI {
		t.Fatalf("message = %+v", msg)
	}
	if msg.Params.Version == nil || *msg.Params.Version != 3 {
		t.Errorf("version = %v", msg.Params.Version)
	}
	want := []lspDiagnostic{{
		Range:    lspRange{Start: position{Character: 1}, End: position{Character: 5}},
		Severity: 1,
		Code:     diag.ResUnknownComponent.ID(),
		Source:   diagnosticSource,
		Message:  "cannot find component `Labl`",
	}}
	if diff := cmp.Diff(want, msg.Params.Diagnostics); diff != "" {
		t.Errorf("diagnostics (-want +got):\n%s", diff)
	}

	notify(t, s, "textDocument/didClose", didCloseTextDocumentParams{TextDocument: textDocumentIdentifier{URI: testURI}})
	cleared := readPublish(t, r)
	if cleared.Params.URI != testURI || len(cleared.Params.Diagnostics) != 0 || cleared.Params.Version != nil {
		t.Errorf("clear = %+v", cleared)
	}
}

func TestServerDropsStaleAnalysis(t *testing.T) {
	var out bytes.Buffer
	s := newTestServer(&out)
	s.analyze = func(ctx context.Context, path string, text []byte, n int) (*Analysis, error) {
		// The document changes while it is being analyzed.
		s.mu.Lock()
		s.docs[testURI].version++
		s.mu.Unlock()
		return fakeAnalyze(ctx, path, text, n)
	}
	notify(t, s, "textDocument/didOpen", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: testURI, Version: 1, Text: "<p/>"},
	})
	s.mu.Lock()
	s.debounceTimer.Stop()
	s.mu.Unlock()
	s.runDiagnostics()
	if a := s.analysisFor(testURI); a != nil {
		t.Errorf("stale analysis stored: version %d", a.Version)
	}
}

func TestDidChangeAppliesEdits(t *testing.T) {
	s := newTestServer(io.Discard)
	notify(t, s, "textDocument/didOpen", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: testURI, Version: 1, Text: "<p/>\n<b/>"},
	})
	notify(t, s, "textDocument/didChange", didChangeTextDocumentParams{
		TextDocument: versionedTextDocumentIdentifier{URI: testURI, Version: 2},
		ContentChanges: []textDocumentContentChangeEvent{{
			Range: &lspRange{Start: position{Line: 1, Character: 1}, End: position{Line: 1, Character: 2}},
			Text:  "i",
		}},
	})
	s.mu.Lock()
	doc := *s.docs[testURI]
	s.debounceTimer.Stop()
	s.mu.Unlock()
	if doc.text != "<p/>\n<i/>" || doc.version != 2 {
		t.Errorf("document = %+v", doc)
	}
}

func TestServerLifecycle(t *testing.T) {
	var in bytes.Buffer
	for _, msg := range []string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"rootUri":"file:///tmp/proj"}}`,
		`{"jsonrpc":"2.0","id":2,"method":"workspace/symbol"}`,
		`{"jsonrpc":"2.0","id":3,"method":"shutdown"}`,
		`{"jsonrpc":"2.0","method":"exit"}`,
	} {
		if err := writeMessage(&in, []byte(msg)); err != nil {
			t.Fatal(err)
		}
	}
	var out bytes.Buffer
	s := NewServer(&in, &out, ServerOptions{Analyze: fakeAnalyze, Log: io.Discard})
	if err := s.Run(context.Background()); !errors.Is(err, ErrExit) {
		t.Fatalf("Run = %v, want ErrExit", err)
	}

	r := bufio.NewReader(&out)
	var init struct {
		Result initializeResult `json:"result"`
	}
	payload, err := readMessage(r)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(payload, &init); err != nil {
		t.Fatal(err)
	}
	caps := init.Result.Capabilities
	if !caps.HoverProvider || !caps.CodeActionProvider || caps.CompletionProvider == nil || init.Result.ServerInfo.Name != "viewc" {
		t.Errorf("capabilities = %+v", init.Result)
	}

	var unknown struct {
		Error *rpcError `json:"error"`
	}
	payload, err = readMessage(r)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(payload, &unknown); err != nil {
		t.Fatal(err)
	}
	if unknown.Error == nil || unknown.Error.Code != codeMethodNotFound {
		t.Errorf("unknown method reply = %s", payload)
	}
}

func TestExitWithoutShutdown(t *testing.T) {
	s := newTestServer(io.Discard)
	if err := s.handleMessage(&rpcMessage{Method: "exit"}); !errors.Is(err, ErrExitWithoutShutdown) {
		t.Errorf("exit = %v", err)
	}
}

func TestApplySettings(t *testing.T) {
	s := newTestServer(io.Discard)
	s.applySettings(json.RawMessage(`{"viewc":{"inlayHints":{"bindingTypes":false},"lsp":{"trace":true}}}`))
	if s.bindingHints || !s.traceLSP {
		t.Errorf("bindingHints=%v traceLSP=%v", s.bindingHints, s.traceLSP)
	}
	s.applySettings(json.RawMessage(`{"viewc":{}}`))
	if s.bindingHints {
		t.Error("absent key reset bindingHints")
	}
}
