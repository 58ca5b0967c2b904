package resolve

import (
	"strings"
	"testing"

	"viewc/internal/ast"
	"viewc/internal/classify"
	"viewc/internal/diag"
	"viewc/internal/parser"
	"viewc/internal/registry"
	"viewc/internal/source"
	"viewc/internal/types"
)

const manifest = `
[component.Button]
children = "opaque"
[component.Empty]
[component.Generic]
generics = ["T: Into<String>"]
props = { _a = { type = "T" } }

[component.Plain]
[component.Wrap]
children = "opaque"
[component.Each]
generics = ["C: Fn(String) -> IV", "IV: IntoView"]
children = "C"

[slot.Then]
[slot.ElseIf]
[slot.SlotIf]
slots = { then = "Then" }
[component.If]
children = "opaque"
slots = { then = "Then", slot_if = "Option<SlotIf>", else_if = "Vec<ElseIf>" }
`

type resolved struct {
	res  *Result
	bag  *diag.Bag
	file *source.File
	src  string
}

func resolveSrc(t *testing.T, src string) resolved {
	t.Helper()
	reg, err := registry.Load("reg.toml", []byte(manifest))
	if err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.view", []byte(src)))
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	pr := parser.Parse(file, source.Span{}, parser.Options{Reporter: rep})
	if pr.View == nil {
		t.Fatalf("parse failed for %q: %v", src, bag.Items())
	}
	classify.Classify(pr.View, rep)
	return resolved{res: Resolve(pr.View, reg, rep), bag: bag, file: file, src: src}
}

// one asserts exactly one diagnostic with code whose span text is at, and
// which starts at the n-th occurrence (0-based) of at in the source.
func (r resolved) one(t *testing.T, code diag.Code, at string, n int) diag.Diagnostic {
	t.Helper()
	items := r.bag.Items()
	if len(items) != 1 {
		t.Fatalf("%s: got %d diagnostics, want 1:\n%v", r.src, len(items), items)
	}
	d := items[0]
	if d.Code != code {
		t.Fatalf("%s: code %v, want %v", r.src, d.Code, code)
	}
	if got := r.file.Slice(d.Primary); got != at {
		t.Fatalf("%s: span text %q, want %q", r.src, got, at)
	}
	off := -1
	for i := 0; i <= n; i++ {
		j := strings.Index(r.src[off+1:], at)
		if j < 0 {
			t.Fatalf("occurrence %d of %q not in source", n, at)
		}
		off += j + 1
	}
	if int(d.Primary.Start) != off {
		t.Fatalf("%s: diagnostic at offset %d, want %d", r.src, d.Primary.Start, off)
	}
	return d
}

func (r resolved) none(t *testing.T) {
	t.Helper()
	if r.bag.Len() != 0 {
		t.Fatalf("%s: unexpected diagnostics %v", r.src, r.bag.Items())
	}
}

func (r resolved) node(name string) *ast.Node {
	var found *ast.Node
	ast.Inspect(r.res.View.Root, func(n *ast.Node) bool {
		if found == nil && n.Name == name {
			found = n
		}
		return found == nil
	})
	return found
}

func TestUnknownComponent(t *testing.T) {
	r := resolveSrc(t, `<Buton></Buton>`)
	d := r.one(t, diag.ResUnknownComponent, "Buton", 0)
	if len(d.Notes) != 1 || !strings.Contains(d.Notes[0].Msg, "`Button`") {
		t.Fatalf("notes = %v", d.Notes)
	}
	if len(d.Fixes) != 1 || len(d.Fixes[0].Edits) != 2 {
		t.Fatalf("fixes = %+v", d.Fixes)
	}
	if got := r.file.Slice(d.Fixes[0].Edits[1].Span); got != "Buton" {
		t.Fatalf("closing edit covers %q", got)
	}

	r = resolveSrc(t, `<Zzzzzz/>`)
	if d := r.one(t, diag.ResUnknownComponent, "Zzzzzz", 0); len(d.Fixes) != 0 {
		t.Fatalf("unexpected fix for a distant name")
	}
}

func TestSlotUsedAsComponent(t *testing.T) {
	r := resolveSrc(t, `<Button><Then/></Button>`)
	d := r.one(t, diag.ResUnknownComponent, "Then", 0)
	if len(d.Fixes) != 1 {
		t.Fatalf("fixes = %+v", d.Fixes)
	}
	fix := d.Fixes[0]
	if fix.Edits[0].NewText != " slot" || fix.Edits[0].Span.Start != uint32(strings.Index(r.src, "/>")) {
		t.Fatalf("fix = %+v", fix)
	}
}

func TestElements(t *testing.T) {
	resolveSrc(t, `<div><my-element/><svg/></div>`).none(t)
	r := resolveSrc(t, `<div><foo/></div>`)
	if d := r.one(t, diag.ResUnknownElement, "foo", 0); d.Severity != diag.SevWarning {
		t.Fatalf("severity = %v", d.Severity)
	}
	resolveSrc(t, `<div let:a/>`).one(t, diag.ResUnexpectedChildrenBinding, "let:a", 0)
}

func TestAttrNotApplicable(t *testing.T) {
	resolveSrc(t, `<Empty on:a=|| {} />`).one(t, diag.ResAttrNotApplicable, "on:a", 0)
}

func TestGenerics(t *testing.T) {
	resolveSrc(t, `<Generic<i32, i32> _a=0/>`).one(t, diag.ResGenericArityMismatch, "<i32, i32>", 0)

	r := resolveSrc(t, `<Generic<String> _a="x"/>`)
	r.none(t)
	if got := r.res.Of(r.node("Generic")).Generics["T"]; got == nil || got.Kind != types.KindString {
		t.Fatalf("T = %v", got)
	}
}

func TestSlotBinding(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
		at   string
		nth  int
	}{
		{"exceeded", `<If><Then slot/><Then slot/></If>`, diag.ResSlotCardinalityExceeded, "Then", 1},
		{"missing", `<If></If>`, diag.ResSlotMissing, "If", 0},
		{"wrong type", `<If><Then slot/><ElseIf slot:then/></If>`, diag.ResSlotTypeMismatch, "ElseIf", 0},
		{"undefined field", `<If><Then slot/><ElseIf slot:nope/></If>`, diag.ResUndefinedSlot, "slot:nope", 0},
		{"no field by tag", `<If><Then slot/><SlotIf slot><Then slot/><ElseIf slot/></SlotIf></If>`, diag.ResUndefinedSlot, "slot", 3},
		{"nested exceeded", `<If><Then slot/><SlotIf slot><Then slot/><Then slot/></SlotIf></If>`, diag.ResSlotCardinalityExceeded, "Then", 2},
		{"under element", `<div><Then slot/></div>`, diag.ResUndefinedSlot, "slot", 0},
		{"under fragment", `<><Then slot/></>`, diag.ResUndefinedSlot, "slot", 0},
		{"at root", `<Then slot/>`, diag.ResUndefinedSlot, "slot", 0},
		{"at most one", `<If><Then slot/><SlotIf slot><Then slot/></SlotIf><SlotIf slot><Then slot/></SlotIf></If>`, diag.ResSlotCardinalityExceeded, "SlotIf", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolveSrc(t, tt.src).one(t, tt.code, tt.at, tt.nth)
		})
	}
}

func TestSlotRouting(t *testing.T) {
	r := resolveSrc(t, `<If><ElseIf slot/><Then slot/><p/><ElseIf slot/></If>`)
	r.none(t)
	info := r.res.Of(r.node("If"))
	if len(info.Routed["else_if"]) != 2 || len(info.Routed["then"]) != 1 {
		t.Fatalf("routed = %v", info.Routed)
	}
	if len(info.Plain) != 1 || info.Plain[0].Name != "p" {
		t.Fatalf("plain = %v", info.Plain)
	}
	if f := r.res.Of(r.node("Then")).Field; f == nil || f.Name != "then" || f.Cardinality != registry.ExactlyOne {
		t.Fatalf("Then field = %+v", f)
	}
}

func TestUnresolvedSlotDoesNotCount(t *testing.T) {
	r := resolveSrc(t, `<If><Then slot/><Thenn slot/></If>`)
	r.one(t, diag.ResUnknownSlot, "Thenn", 0)
}

// Every child lands in exactly one of Plain, Routed or Rejected.
func TestChildPartitionIsTotal(t *testing.T) {
	for _, src := range []string{
		`<If><Then slot/><p/><Thenn slot/><ElseIf slot:nope/></If>`,
		`<Iff><Then slot/><p/></Iff>`,
		`<div><Then slot/>"x"</div>`,
		`<><Then slot/><ElseIf slot/></>`,
	} {
		t.Run(src, func(t *testing.T) {
			r := resolveSrc(t, src)
			ast.Inspect(r.res.View.Root, func(n *ast.Node) bool {
				info := r.res.Of(n)
				seen := make(map[*ast.Node]int)
				for _, ch := range info.Plain {
					seen[ch]++
				}
				for _, list := range info.Routed {
					for _, ch := range list {
						seen[ch]++
					}
				}
				for _, ch := range info.Rejected {
					seen[ch]++
				}
				for _, ch := range n.Children {
					if seen[ch] != 1 {
						t.Errorf("child <%s> of <%s> placed %d times", ch.Name, n.Name, seen[ch])
					}
				}
				return true
			})
		})
	}
}

func TestChildrenBinding(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
		at   string
	}{
		{"none with children", `<Plain><p/>"x"</Plain>`, diag.ResUnexpectedChildren, `<p/>"x"`},
		{"opaque with let", `<Wrap let:a><p/></Wrap>`, diag.ResUnexpectedChildrenBinding, "let:a"},
		{"closure without let", `<Each><p/></Each>`, diag.ResMissingChildrenBinding, "<Each>"},
		{"closure bare let", `<Each let><p/></Each>`, diag.ResMissingChildrenBinding, "let"},
		{"closure arity", "<Each\n  let:item\n  let:a\n><p/></Each>", diag.ResChildrenArityMismatch, "let:item\n  let:a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolveSrc(t, tt.src).one(t, tt.code, tt.at, 0)
		})
	}
}

func TestChildrenArityLaw(t *testing.T) {
	for n := 0; n <= 3; n++ {
		lets := make([]string, n)
		for i := range lets {
			lets[i] = "let:x" + string(rune('a'+i))
		}
		src := "<Each " + strings.Join(lets, " ") + "><p/></Each>"
		r := resolveSrc(t, src)
		switch {
		case n == 1:
			r.none(t)
			b := r.res.Of(r.node("Each")).Bindings
			if len(b) != 1 || b[0].Name != "xa" || b[0].Type.Kind != types.KindString {
				t.Fatalf("bindings = %+v", b)
			}
		case n == 0:
			r.one(t, diag.ResMissingChildrenBinding, "<Each >", 0)
		default:
			d := r.one(t, diag.ResChildrenArityMismatch, strings.Join(lets, " "), 0)
			if b := r.res.Of(r.node("Each")).Bindings; len(b) != n || b[1].Type.Kind != types.KindUnknown {
				t.Fatalf("extra bindings = %+v (%v)", b, d)
			}
		}
	}
}

func TestCardinalityLaw(t *testing.T) {
	for n := 0; n <= 3; n++ {
		src := "<If>" + strings.Repeat("<Then slot/>", n) + "</If>"
		r := resolveSrc(t, src)
		switch n {
		case 0:
			r.one(t, diag.ResSlotMissing, "If", 0)
		case 1:
			r.none(t)
		default:
			items := r.bag.Items()
			if len(items) != n-1 {
				t.Fatalf("%d children: %d diagnostics", n, len(items))
			}
			for i, d := range items {
				if d.Code != diag.ResSlotCardinalityExceeded {
					t.Fatalf("code %v", d.Code)
				}
				want := strings.Index(src, "<Then") + (i+1)*len("<Then slot/>") + 1
				if int(d.Primary.Start) != want {
					t.Fatalf("excess %d at %d, want %d", i, d.Primary.Start, want)
				}
			}
		}
	}
}
