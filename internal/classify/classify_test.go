package classify_test

import (
	"slices"
	"testing"

	"viewc/internal/ast"
	"viewc/internal/classify"
	"viewc/internal/diag"
	"viewc/internal/parser"
	"viewc/internal/source"
)

type result struct {
	view *ast.View
	bag  *diag.Bag
	src  string
}

func run(t *testing.T, src string) result {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.view", []byte(src)))
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	res := parser.Parse(file, source.Span{}, parser.Options{Reporter: rep})
	if res.View == nil || bag.Len() != 0 {
		t.Fatalf("parse of %q failed: %+v", src, bag.Items())
	}
	classify.Classify(res.View, rep)
	return result{view: res.View, bag: bag, src: src}
}

func (r result) text(sp source.Span) string { return r.src[sp.Start:sp.End] }

func (r result) codes() []diag.Code {
	var out []diag.Code
	for _, d := range r.bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func kinds(n *ast.Node) []ast.AttrKind {
	var out []ast.AttrKind
	for _, a := range n.Attrs {
		out = append(out, a.Kind)
	}
	return out
}

func TestClassifyCategories(t *testing.T) {
	r := run(t, `<C a=1 on:click=f prop:value=v class:active=b style:color=c {..rest} use:focus use:tip=t slot:then let:x clone:y class=k />`)
	want := []ast.AttrKind{
		ast.AttrProp, ast.AttrEvent, ast.AttrDomProperty, ast.AttrClass, ast.AttrStyle,
		ast.AttrSpread, ast.AttrDirective, ast.AttrDirective, ast.AttrSlotMarker,
		ast.AttrChildrenLet, ast.AttrCloneCapture, ast.AttrProp,
	}
	if got := kinds(r.view.Root); !slices.Equal(got, want) {
		t.Fatalf("kinds:\n got  %v\n want %v", got, want)
	}
	if r.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", r.codes())
	}
	ev := r.view.Root.Attrs[1]
	if ev.Name != "click" || r.text(ev.NameSpan) != "click" {
		t.Fatalf("event name = %q (%q)", ev.Name, r.text(ev.NameSpan))
	}
	if r.view.Root.Kind != ast.NodeSlot {
		t.Fatalf("a component with a slot marker must become a slot, got %s", r.view.Root.Kind)
	}
}

func TestClassifyHyphenatedClass(t *testing.T) {
	r := run(t, `<div class:bg-green-400=is_game_started/>`)
	a := r.view.Root.Attrs[0]
	if a.Kind != ast.AttrClass || a.Name != "bg-green-400" || r.text(a.NameSpan) != "bg-green-400" {
		t.Fatalf("attr = %+v", a)
	}
}

func TestClassifyShorthand(t *testing.T) {
	r := run(t, `<Component _a />`)
	a := r.view.Root.Attrs[0]
	p, ok := a.Value.(*ast.PathExpr)
	if a.Kind != ast.AttrProp || !a.Shorthand || !ok || p.Name() != "_a" {
		t.Fatalf("shorthand = %+v", a)
	}
	if a.Value.Span() != a.KeySpan {
		t.Fatalf("shorthand value must be spanned by the key")
	}

	r = run(t, `<input disabled />`)
	if lit, ok := r.view.Root.Attrs[0].Value.(*ast.LitExpr); !ok || lit.Kind != ast.LitBool {
		t.Fatalf("bare element attribute must be boolean, got %+v", r.view.Root.Attrs[0].Value)
	}
}

func TestClassifyMergesLetAndClone(t *testing.T) {
	r := run(t, `<Component let:item let:a clone:x clone:y><p/></Component>`)
	attrs := r.view.Root.Attrs
	if len(attrs) != 2 {
		t.Fatalf("want two merged attributes, got %d", len(attrs))
	}
	if attrs[0].Kind != ast.AttrChildrenLet || len(attrs[0].Idents) != 2 {
		t.Fatalf("let = %+v", attrs[0])
	}
	if got := r.text(attrs[0].Span); got != "let:item let:a" {
		t.Fatalf("merged let span = %q", got)
	}
	if got := r.text(attrs[0].Idents[1].Span); got != "a" {
		t.Fatalf("ident span = %q", got)
	}
	if attrs[1].Kind != ast.AttrCloneCapture || len(attrs[1].Idents) != 2 {
		t.Fatalf("clone = %+v", attrs[1])
	}
}

func TestClassifyShapeErrors(t *testing.T) {
	cases := []struct {
		src  string
		span string
	}{
		{`<div on:click />`, "on:click"},
		{`<div on:=f />`, "on:=f"},
		{`<C slot=x />`, "slot=x"},
		{`<C let:a=b />`, "let:a=b"},
		{`<C {attrs} />`, "{attrs}"},
		{`<C a-b />`, "a-b"},
		{`<div slot />`, "slot"},
		{`<C use: />`, "use:"},
	}
	for _, tc := range cases {
		r := run(t, tc.src)
		if got := r.codes(); !slices.Equal(got, []diag.Code{diag.SynAttributeShape}) {
			t.Errorf("%s: codes = %v", tc.src, got)
			continue
		}
		if got := r.text(r.bag.Items()[0].Primary); got != tc.span {
			t.Errorf("%s: span = %q; want %q", tc.src, got, tc.span)
		}
		if r.view.Root.Attrs[0].Kind != ast.AttrInvalid {
			t.Errorf("%s: rejected attribute must be invalid", tc.src)
		}
	}
}

func TestClassifyDuplicates(t *testing.T) {
	r := run(t, `<C a=1 b=2 a=3 />`)
	if got := r.codes(); !slices.Equal(got, []diag.Code{diag.SynDuplicateAttribute}) {
		t.Fatalf("codes = %v", got)
	}
	d := r.bag.Items()[0]
	if d.Primary != r.view.Root.Attrs[2].KeySpan || len(d.Notes) != 1 {
		t.Fatalf("duplicate must point at the second key with a note: %+v", d)
	}

	r = run(t, `<Then slot slot:then />`)
	if got := r.codes(); !slices.Equal(got, []diag.Code{diag.SynDuplicateAttribute}) {
		t.Fatalf("codes = %v", got)
	}

	r = run(t, `<C let:a id=1 let:b />`)
	if got := r.codes(); !slices.Equal(got, []diag.Code{diag.SynDuplicateAttribute}) {
		t.Fatalf("codes = %v", got)
	}
}
