package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"viewc/internal/lexer"
	"viewc/internal/parser"
	"viewc/internal/source"
)

func parseView(t *testing.T, src string) (*source.FileSet, *parser.Result) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.view", []byte(src)))
	res := parser.Parse(file, source.Span{}, parser.Options{})
	if res.Fatal || res.View == nil {
		t.Fatalf("parse failed for %q", src)
	}
	return fs, &res
}

func TestFormatViewPretty(t *testing.T) {
	fs, res := parseView(t, `<div id="a">"x"</div>`)
	var buf bytes.Buffer
	if err := FormatViewPretty(&buf, res.View, fs); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"View (span: 1:1-1:22)",
		"└─ Element div (span: 1:1-1:22)",
		`   ├─ Attr Raw id = "a" (span: 1:6-1:12)`,
		`   └─ Text "x" (span: 1:13-1:16)`,
		"",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("FormatViewPretty (-want +got):\n%s", diff)
	}
}

func TestFormatViewJSON(t *testing.T) {
	_, res := parseView(t, `<Each let:item><p/></Each>`)
	var buf bytes.Buffer
	if err := FormatViewJSON(&buf, res.View); err != nil {
		t.Fatal(err)
	}
	var out ASTNodeOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Type != "View" || len(out.Children) != 1 {
		t.Fatalf("root = %+v", out)
	}
	each := out.Children[0]
	if each.Text != "Each" || len(each.Children) != 2 {
		t.Fatalf("each = %+v", each)
	}
	if attr := each.Children[0]; attr.Type != "Attr" || attr.Text != "let:item" {
		t.Errorf("attr = %+v", attr)
	}
	if p := each.Children[1]; p.Type != "Node" || p.Text != "p" {
		t.Errorf("child = %+v", p)
	}
}

func TestFormatViewTree(t *testing.T) {
	_, res := parseView(t, `<><a/><b/></>`)
	var buf bytes.Buffer
	if err := FormatViewTree(&buf, res.View, nil); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) < 5 {
		t.Fatalf("tree too short:\n%s", buf.String())
	}
	if !strings.Contains(lines[len(lines)-1], "Element a") || !strings.Contains(lines[len(lines)-1], "Element b") {
		t.Errorf("leaves not side by side:\n%s", buf.String())
	}
}

func TestFormatTokens(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.view", []byte(`<p a=1/>`)))
	toks := lexer.Tokenize(file, lexer.Options{})

	var buf bytes.Buffer
	if err := FormatTokensPretty(&buf, toks, fs); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(buf.String(), "\n"); got != len(toks) {
		t.Errorf("lines = %d, tokens = %d", got, len(toks))
	}
	if !strings.Contains(buf.String(), `(leading: space)`) {
		t.Errorf("leading trivia missing:\n%s", buf.String())
	}

	buf.Reset()
	if err := FormatTokensJSON(&buf, toks); err != nil {
		t.Fatal(err)
	}
	var out []TokenOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != len(toks) || out[len(out)-1].Kind != "EOF" {
		t.Errorf("json tokens = %+v", out)
	}
}
