package lsp

import (
	"testing"

	"viewc/internal/source"
)

func TestPositionsCountUTF16(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("a.view", []byte("a😀b\nc")))

	offsets := []struct {
		pos position
		off uint32
	}{
		{position{Line: 0, Character: 3}, 5},
		{position{Line: 0, Character: 2}, 1},
		{position{Line: 0, Character: 99}, 6},
		{position{Line: 1, Character: 0}, 7},
	}
	for _, tt := range offsets {
		if got := offsetForPositionInFile(file, tt.pos); got != tt.off {
			t.Errorf("offset(%+v) = %d, want %d", tt.pos, got, tt.off)
		}
	}
	if got := positionForOffsetInFile(file, 6); got != (position{Line: 0, Character: 4}) {
		t.Errorf("position(6) = %+v", got)
	}
	if got := positionForOffsetInFile(file, 7); got != (position{Line: 1, Character: 0}) {
		t.Errorf("position(7) = %+v", got)
	}
}

func TestApplyChangesUTF16(t *testing.T) {
	text := "x😀y"
	got := applyChanges(text, []textDocumentContentChangeEvent{{
		Range: &lspRange{Start: position{Character: 3}, End: position{Character: 4}},
		Text:  "z",
	}})
	if got != "x😀z" {
		t.Errorf("applyChanges = %q", got)
	}
	if got := applyChanges(text, []textDocumentContentChangeEvent{{Text: "new"}}); got != "new" {
		t.Errorf("full replace = %q", got)
	}
}

func TestURIRoundTrip(t *testing.T) {
	if got := uriToPath("file:///tmp/a%20b/x.view"); got != "/tmp/a b/x.view" {
		t.Errorf("uriToPath = %q", got)
	}
	if got := pathToURI("/tmp/a b/x.view"); got != "file:///tmp/a%20b/x.view" {
		t.Errorf("pathToURI = %q", got)
	}
	if got := uriToPath("untitled:Untitled-1"); got != "" {
		t.Errorf("untitled = %q", got)
	}
}
