package parser

import (
	"slices"
	"testing"

	"viewc/internal/ast"
	"viewc/internal/diag"
)

func TestParseElementWithAttributes(t *testing.T) {
	p := parseSrc(t, `<div id=A class:bg-green-400=is_started on:click=move |_| go(a) />`)
	if p.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", p.codes())
	}
	root := p.res.View.Root
	if root.Kind != ast.NodeElement || root.Name != "div" || !root.SelfClosing {
		t.Fatalf("root = %+v", root)
	}
	keys := []string{}
	for _, a := range root.Attrs {
		keys = append(keys, a.Key)
	}
	if want := []string{"id", "class:bg-green-400", "on:click"}; !slices.Equal(keys, want) {
		t.Fatalf("keys = %v; want %v", keys, want)
	}
	if got := p.slice(root.Attrs[0].ValueSpan()); got != "A" {
		t.Fatalf("value span text = %q", got)
	}
	if got := p.slice(root.Attrs[2].Span); got != "on:click=move |_| go(a)" {
		t.Fatalf("attr span text = %q", got)
	}
	if got := p.slice(root.Span); got != p.slice(p.file.Span()) {
		t.Fatalf("node span = %q", got)
	}
}

func TestParseComponentKinds(t *testing.T) {
	v := mustParse(t, `<Show when=x><my-element/><ui::Button/>"text"{value}</Show>`)
	root := v.Root
	if root.Kind != ast.NodeComponent {
		t.Fatalf("Show must be a component, got %s", root.Kind)
	}
	var kinds []ast.NodeKind
	for _, c := range root.Children {
		kinds = append(kinds, c.Kind)
	}
	want := []ast.NodeKind{ast.NodeElement, ast.NodeComponent, ast.NodeText, ast.NodeExpr}
	if !slices.Equal(kinds, want) {
		t.Fatalf("child kinds = %v; want %v", kinds, want)
	}
	if root.Children[1].Name != "ui::Button" || root.Children[2].Text != "text" {
		t.Fatalf("children = %+v", root.Children)
	}
}

func TestParseGenerics(t *testing.T) {
	p := parseSrc(t, `<Component<Vec<String>, i32>><p /></Component>`)
	if p.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", p.codes())
	}
	root := p.res.View.Root
	if len(root.Generics) != 2 || root.Generics[0].Text != "Vec<String>" || root.Generics[1].Text != "i32" {
		t.Fatalf("generics = %+v", root.Generics)
	}
	if got := p.slice(root.GenericsSpan); got != "<Vec<String>, i32>" {
		t.Fatalf("generics span = %q", got)
	}
	if len(root.Children) != 1 || root.CloseSpan.Empty() {
		t.Fatalf("children/close = %+v", root)
	}
}

func TestParseCloseTagGenerics(t *testing.T) {
	ok := parseSrc(t, `<Component<Children>><p /></Component<Children>>`)
	if ok.bag.Len() != 0 {
		t.Fatalf("identical generics must be accepted: %v", ok.codes())
	}
	bad := parseSrc(t, `<Component<Children>><p /></Component<String>>`)
	if got := bad.codes(); !slices.Equal(got, []diag.Code{diag.SynCloseTagGenericMismatch}) {
		t.Fatalf("codes = %v", got)
	}
	if got := bad.slice(bad.bag.Items()[0].Primary); got != "<String>" {
		t.Fatalf("mismatch must point at the closing generics, got %q", got)
	}
}

func TestParseFragments(t *testing.T) {
	v := mustParse(t, `<div><>""</></div>`)
	frag := v.Root.Children[0]
	if frag.Kind != ast.NodeFragment || frag.Implicit || len(frag.Children) != 1 {
		t.Fatalf("fragment = %+v", frag)
	}

	v = mustParse(t, `<a/> <b/> "c"`)
	if v.Root.Kind != ast.NodeFragment || !v.Root.Implicit || len(v.Root.Children) != 3 {
		t.Fatalf("implicit fragment = %+v", v.Root)
	}
}

func TestParseGlobalClass(t *testing.T) {
	p := parseSrc(t, `class=A, <div />`)
	if p.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", p.codes())
	}
	v := p.res.View
	if v.Class == nil || p.slice(v.Class.Span()) != "A" || v.Root.Name != "div" {
		t.Fatalf("view = %+v", v)
	}
}

func TestParseUnclosedInnerTag(t *testing.T) {
	p := parseSrc(t, `<div><p>"x"</div>`)
	if got := p.codes(); !slices.Equal(got, []diag.Code{diag.SynUnclosedTag}) {
		t.Fatalf("codes = %v", got)
	}
	if got := p.slice(p.bag.Items()[0].Primary); got != "p" {
		t.Fatalf("unclosed tag must be reported at its name, got %q", got)
	}
	root := p.res.View.Root
	if root.Name != "div" || len(root.Children) != 1 || root.CloseSpan.Empty() {
		t.Fatalf("div must still close normally: %+v", root)
	}
}

func TestParseStrayCloseTag(t *testing.T) {
	p := parseSrc(t, `<div></span><p/></div>`)
	if got := p.codes(); !slices.Equal(got, []diag.Code{diag.SynMismatchedCloseTag}) {
		t.Fatalf("codes = %v", got)
	}
	if got := p.slice(p.bag.Items()[0].Primary); got != "</span>" {
		t.Fatalf("primary = %q", got)
	}
	if len(p.res.View.Root.Children) != 1 {
		t.Fatalf("parsing must resume after the stray tag")
	}
}

func TestParseBareTextIsReported(t *testing.T) {
	p := parseSrc(t, `<p>Hello world</p><br/>`)
	if got := p.codes(); !slices.Equal(got, []diag.Code{diag.SynUnexpectedToken}) {
		t.Fatalf("codes = %v", got)
	}
	if got := p.slice(p.bag.Items()[0].Primary); got != "Hello world" {
		t.Fatalf("primary = %q", got)
	}
	if p.res.View == nil || len(p.res.View.Root.Children) != 2 {
		t.Fatalf("siblings must survive")
	}
}

func TestParseSiblingErrorsAreIsolated(t *testing.T) {
	p := parseSrc(t, `<div><a href= /><b "s"/><i/></div>`)
	if got := p.codes(); !slices.Equal(got, []diag.Code{diag.SynExpectExpression, diag.SynExpectAttrName}) {
		t.Fatalf("codes = %v", got)
	}
	first, second := p.bag.Items()[0].Primary, p.bag.Items()[1].Primary
	if first.Overlaps(second) {
		t.Fatalf("diagnostics must not share spans: %v %v", first, second)
	}
	if n := len(p.res.View.Root.Children); n != 3 {
		t.Fatalf("children = %d; want 3", n)
	}
}

func TestParseFatalErrors(t *testing.T) {
	cases := []struct {
		src  string
		code diag.Code
	}{
		{"", diag.SynEmptyView},
		{"  // only a comment\n", diag.SynEmptyView},
		{`<p>"never closed</p>`, diag.LexUnterminatedString},
		{`<p>{ call(a, b </p>`, diag.SynUnclosedDelimiter},
		{`just words`, diag.SynExpectTagName},
	}
	for _, tc := range cases {
		p := parseSrc(t, tc.src)
		if !p.res.Fatal || p.res.View != nil {
			t.Errorf("%q: expected a fatal result", tc.src)
			continue
		}
		if !slices.Contains(p.codes(), tc.code) {
			t.Errorf("%q: codes = %v; want %s", tc.src, p.codes(), tc.code)
		}
	}
}

func TestParseUnterminatedStringReportsOnce(t *testing.T) {
	p := parseSrc(t, `<div><p>"open</p></div>`)
	if p.bag.Len() != 1 {
		t.Fatalf("want exactly the lexical error, got %v", p.codes())
	}
}
