package lsp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"viewc/internal/diag"
)

const testManifest = `
[component.Label]
props = { text = { type = "String", into = true } }

[component.Card]
props = { title = { type = "String" }, footer = { type = "String", optional = true } }
children = "opaque"

[component.Each]
generics = ["C: Fn(String) -> IV", "IV: IntoView"]
children = "C"
`

// analyzeSrc compiles src as page.view of a fresh project.
func analyzeSrc(t *testing.T, src string) *Analysis {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"viewc.toml":      "[project]\nname = \"demo\"\nregistry = [\"components.toml\"]\n",
		"components.toml": testManifest,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	a, err := Analyze(context.Background(), filepath.Join(dir, "page.view"), []byte(src), 0)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func hoverText(t *testing.T, a *Analysis, pos position) string {
	t.Helper()
	h := buildHover(a, pos)
	if h == nil {
		t.Fatalf("no hover at %+v", pos)
	}
	return h.Contents.Value
}

func TestHover(t *testing.T) {
	a := analyzeSrc(t, `<Label text="hi"/>`)
	if len(a.Diagnostics) != 0 {
		t.Fatalf("diagnostics: %v", a.Diagnostics)
	}
	comp := hoverText(t, a, position{Line: 0, Character: 2})
	for _, want := range []string{"component Label", "`text: String` (into)"} {
		if !strings.Contains(comp, want) {
			t.Errorf("component hover %q lacks %q", comp, want)
		}
	}
	prop := hoverText(t, a, position{Line: 0, Character: 8})
	for _, want := range []string{"text: String", "prop of `Label`"} {
		if !strings.Contains(prop, want) {
			t.Errorf("prop hover %q lacks %q", prop, want)
		}
	}
	if h := buildHover(a, position{Line: 0, Character: 13}); h != nil {
		t.Errorf("hover inside a value: %+v", h)
	}
}

func TestHoverElementAndUnknown(t *testing.T) {
	a := analyzeSrc(t, `<div><Labl/></div>`)
	if got := hoverText(t, a, position{Line: 0, Character: 2}); got != "HTML element `<div>`" {
		t.Errorf("element hover = %q", got)
	}
	if got := hoverText(t, a, position{Line: 0, Character: 7}); !strings.Contains(got, "not declared") {
		t.Errorf("unknown hover = %q", got)
	}
}

func TestBindingHoverAndInlay(t *testing.T) {
	a := analyzeSrc(t, `<Each let:x><p>{x}</p></Each>`)
	if got := hoverText(t, a, position{Line: 0, Character: 10}); !strings.Contains(got, "let x: String") {
		t.Errorf("binding hover = %q", got)
	}
	hints := buildInlayHints(a, lspRange{End: position{Line: 0, Character: 100}})
	want := []inlayHint{{Position: position{Line: 0, Character: 11}, Label: ": String", Kind: inlayKindType}}
	if diff := cmp.Diff(want, hints); diff != "" {
		t.Errorf("hints (-want +got):\n%s", diff)
	}
	if hints := buildInlayHints(a, lspRange{Start: position{Line: 0, Character: 20}, End: position{Line: 0, Character: 30}}); len(hints) != 0 {
		t.Errorf("hints outside range: %+v", hints)
	}
}

func labels(items []completionItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}

func TestCompletion(t *testing.T) {
	a := analyzeSrc(t, `<div><Ca></Ca></div>`)
	got := buildCompletion(a, position{Line: 0, Character: 8})
	if diff := cmp.Diff([]string{"Card"}, labels(got.Items)); diff != "" {
		t.Errorf("tag names (-want +got):\n%s", diff)
	}
	if got.Items[0].Kind != completionKindClass {
		t.Errorf("kind = %d", got.Items[0].Kind)
	}
	if out := buildCompletion(a, position{Line: 0, Character: 5}); len(out.Items) != 0 {
		t.Errorf("completion between tags: %v", labels(out.Items))
	}

	b := analyzeSrc(t, `<Card title="a" >"x"</Card>`)
	attrs := buildCompletion(b, position{Line: 0, Character: 16})
	if diff := cmp.Diff([]string{"footer", "clone:"}, labels(attrs.Items)); diff != "" {
		t.Errorf("attributes (-want +got):\n%s", diff)
	}
}

func TestScanTag(t *testing.T) {
	tests := []struct {
		src    string
		ok     bool
		name   string
		prefix string
	}{
		{"<Lab", true, "", "Lab"},
		{"<Each let:", true, "Each", "let:"},
		{`<Card title={a > b} fo`, true, "Card", "fo"},
		{"<p>", false, "", ""},
		{"</Ca", false, "", ""},
		{"{ x", false, "", ""},
	}
	for _, tt := range tests {
		ctx, ok := scanTag([]byte(tt.src), len(tt.src))
		if ok != tt.ok || ctx.name != tt.name || ctx.prefix != tt.prefix {
			t.Errorf("scanTag(%q) = %+v, %v", tt.src, ctx, ok)
		}
	}
	ctx, _ := scanTag([]byte(`<Card title="x y" on:click={f} `), 31)
	if !ctx.keys["title"] || !ctx.keys["on:click"] || ctx.keys["y"] {
		t.Errorf("keys = %v", ctx.keys)
	}
}

func TestDefinition(t *testing.T) {
	a := analyzeSrc(t, `<Label text="hi"/>`)
	loc := buildDefinition(a, position{Line: 0, Character: 3})
	if loc == nil || !strings.HasSuffix(loc.URI, "/components.toml") {
		t.Fatalf("definition = %+v", loc)
	}
	if prop := buildDefinition(a, position{Line: 0, Character: 8}); prop == nil || prop.URI != loc.URI {
		t.Errorf("prop definition = %+v", prop)
	}
}

func TestFoldingRanges(t *testing.T) {
	a := analyzeSrc(t, "<div>\n  <p>\"hi\"</p>\n</div>\n")
	want := []foldingRange{{StartLine: 0, EndLine: 1, Kind: "region"}}
	if diff := cmp.Diff(want, buildFoldingRanges(a)); diff != "" {
		t.Errorf("folding (-want +got):\n%s", diff)
	}
}

func TestCodeActionRename(t *testing.T) {
	a := analyzeSrc(t, `<Labl text="hi"/>`)
	found := false
	for _, d := range a.Diagnostics {
		if d.Code == diag.ResUnknownComponent {
			found = true
		}
	}
	if !found {
		t.Fatalf("diagnostics: %v", a.Diagnostics)
	}
	actions := buildCodeActions(a, lspRange{End: position{Line: 0, Character: 3}})
	var rename *codeAction
	for i := range actions {
		if actions[i].Title == "rename to `Label`" {
			rename = &actions[i]
		}
	}
	if rename == nil {
		t.Fatalf("actions = %+v", actions)
	}
	want := map[string][]textEdit{
		pathToURI(a.File.Path): {{Range: lspRange{Start: position{Character: 1}, End: position{Character: 5}}, NewText: "Label"}},
	}
	if diff := cmp.Diff(want, rename.Edit.Changes); diff != "" {
		t.Errorf("edit (-want +got):\n%s", diff)
	}
	if rename.Kind != "quickfix" {
		t.Errorf("kind = %q", rename.Kind)
	}
}
