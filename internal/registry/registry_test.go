package registry

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"viewc/internal/diag"
	"viewc/internal/source"
	"viewc/internal/types"
)

const sampleTOML = `
[component.Button]
children = "opaque"
[component.Button.props]
class = { type = "MaybeSignal<String>", optional = true, into = true }
on_click = { type = "Callback<ev::MouseEvent>", into = true }

[component.Generic]
generics = ["T: Into<String>"]
props = { _a = { type = "T" } }

[component.List]
generics = ["C: Fn(String) -> IV", "IV: IntoView"]
children = "C"

[component.If]
[component.If.slots]
then = "Then"
else_if = "Vec<ElseIf>"
slot_if = "Option<SlotIf>"

[slot.Then]
children = "ChildrenFn"
[slot.ElseIf]
props = { cond = { type = "MaybeSignal<bool>", into = true } }
[slot.SlotIf]
slots = { then = "Then" }

[struct.GameInfo]
clone = true
unit = true
fields = { name = "String" }

[scope]
is_game_started = "Fn() -> bool"
highlight = "fn(HtmlElement<AnyElement>, i32)"
`

func decode(t *testing.T, name, src string) (*Registry, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual(name, []byte(src)))
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	b := NewBuilder(rep)
	b.Decode(file, rep)
	reg, _ := b.Freeze()
	return reg, bag
}

func TestDecodeTOML(t *testing.T) {
	reg, bag := decode(t, "reg.toml", sampleTOML)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	btn, ok := reg.Lookup("Button")
	if !ok || btn.Children.Kind != ChildrenOpaque {
		t.Fatalf("Button = %+v", btn)
	}
	p, ok := btn.Prop("class")
	if !ok || !p.Optional || !p.Into || p.Type.String() != "MaybeSignal<String>" {
		t.Fatalf("class prop = %+v", p)
	}
	if p, _ := btn.Prop("on_click"); p.Type.String() != "Fn(MouseEvent)" || p.Optional {
		t.Fatalf("on_click prop = %+v", p)
	}
	if _, ok := reg.Lookup("ui::Button"); !ok {
		t.Fatalf("path lookup failed")
	}

	list, _ := reg.Lookup("List")
	if list.Children.Kind != ChildrenClosure || len(list.Children.Params) != 1 || list.Children.Params[0].Kind != types.KindString {
		t.Fatalf("List children = %+v", list.Children)
	}
	if list.Children.Ret.Kind != types.KindParam {
		t.Fatalf("List closure return = %s", list.Children.Ret)
	}

	gen, _ := reg.Lookup("Generic")
	if len(gen.Generics) != 1 || gen.Generics[0].Name != "T" || gen.Generics[0].Bounds[0].String() != "Into<String>" {
		t.Fatalf("generics = %+v", gen.Generics)
	}
	if p, _ := gen.Prop("_a"); p.Type.Kind != types.KindParam {
		t.Fatalf("_a type = %s", p.Type)
	}

	ifc, _ := reg.Lookup("If")
	want := map[string]Cardinality{"then": ExactlyOne, "else_if": ZeroOrMore, "slot_if": AtMostOne}
	for name, card := range want {
		f, ok := reg.LookupSlot(ifc, name)
		if !ok || f.Cardinality != card {
			t.Errorf("slot %s = %+v, want %v", name, f, card)
		}
	}
	if f, _ := reg.LookupSlot(ifc, "else_if"); f.Slot != "ElseIf" {
		t.Errorf("else_if slot type = %q", f.Slot)
	}
	if _, ok := reg.LookupSlotType("Then"); !ok {
		t.Fatalf("slot Then missing")
	}
	if _, ok := reg.Lookup("Then"); ok {
		t.Fatalf("slot visible as component")
	}

	if typ, ok := reg.ScopeType("game_info"); ok {
		t.Fatalf("unexpected scope entry %s", typ)
	}
	if typ, ok := reg.ScopeType("GameInfo"); !ok || typ.String() != "GameInfo" {
		t.Fatalf("unit struct value not in scope")
	}
	if !reg.Env().Clonable(types.Named("GameInfo")) {
		t.Fatalf("GameInfo should be clonable")
	}
	if typ, _ := reg.ScopeType("highlight"); typ.String() != "Fn(HtmlElement<AnyElement>, i32)" {
		t.Fatalf("highlight = %s", typ)
	}
	if got := strings.Join(reg.Names(), ","); got != "Button,Generic,If,List" {
		t.Fatalf("Names = %s", got)
	}
}

func TestDecodeYAML(t *testing.T) {
	src := `component:
  Component:
    props:
      _required:
        type: i64
slot:
  Then:
    children: opaque
`
	reg, bag := decode(t, "reg.yaml", src)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	c, ok := reg.Lookup("Component")
	if !ok {
		t.Fatalf("Component missing")
	}
	if p, ok := c.Prop("_required"); !ok || p.Optional || p.Type.String() != "i64" {
		t.Fatalf("_required = %+v", p)
	}
}

func TestDiagnostics(t *testing.T) {
	tests := []struct {
		name, file, src string
		code            diag.Code
		at              string
	}{
		{"bad type", "r.toml", "[component.A]\nprops = { x = { type = \"Option<\" } }\n", diag.ProjInvalidRegistry, "Option<"},
		{"undeclared slot", "r.toml", "[component.A]\nslots = { then = \"Then\" }\n", diag.ProjInvalidRegistry, "A"},
		{"unknown key", "r.toml", "[component.A]\nchildrn = \"opaque\"\n", diag.ProjUnknownKey, "childrn"},
		{"bad toml", "r.toml", "[component.A\n", diag.ProjInvalidManifest, "[component.A"},
		{"yaml unknown key", "r.yaml", "component:\n  A:\n    childrn: opaque\n", diag.ProjUnknownKey, "    childrn: opaque"},
		{"bad children", "r.toml", "[component.A]\nchildren = \"i32\"\n", diag.ProjInvalidRegistry, "i32"},
		{"children prop", "r.toml", "[component.A]\nprops = { children = { type = \"Children\" } }\n", diag.ProjInvalidRegistry, "children"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := source.NewFileSet()
			file := fs.Get(fs.AddVirtual(tt.file, []byte(tt.src)))
			bag := diag.NewBag(0)
			rep := diag.BagReporter{Bag: bag}
			b := NewBuilder(rep)
			b.Decode(file, rep)
			_, _ = b.Freeze()
			items := bag.Items()
			if len(items) != 1 {
				t.Fatalf("got %d diagnostics, want 1: %v", len(items), items)
			}
			if items[0].Code != tt.code {
				t.Fatalf("code = %v, want %v", items[0].Code, tt.code)
			}
			if got := file.Slice(items[0].Primary); got != tt.at {
				t.Fatalf("span text = %q, want %q", got, tt.at)
			}
		})
	}
}

func TestTOMLErrorSpan(t *testing.T) {
	const src = "[component.A]\nchildren = @\n"
	at := func(start, n, line int) error {
		return toml.ParseError{Message: "bad", Position: toml.Position{Line: line, Start: start, Len: n}}
	}
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"token", at(25, 1, 2), "@"},
		{"wrapped", fmt.Errorf("decode: %w", at(25, 1, 2)), "@"},
		{"newline ends its line", at(13, 1, 2), "[component.A]"},
		{"no extent", at(0, 0, 2), "children = @"},
		{"out of range", at(40, 3, 2), "children = @"},
		{"message only", errors.New("toml: line 2: bad"), "children = @"},
	}
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("r.toml", []byte(src)))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := file.Slice(tomlErrorSpan(file, tt.err)); got != tt.want {
				t.Errorf("span text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDigestStable(t *testing.T) {
	a, _ := decode(t, "a.toml", sampleTOML)
	b, _ := decode(t, "b.toml", sampleTOML)
	if a.Digest() != b.Digest() {
		t.Fatalf("digest differs for identical manifests")
	}
	c, _ := decode(t, "c.toml", sampleTOML+"\n[struct.Extra]\n")
	if a.Digest() == c.Digest() {
		t.Fatalf("digest ignores declarations")
	}
}

func TestCardinality(t *testing.T) {
	for _, tt := range []struct {
		c    Cardinality
		n    int
		want bool
	}{
		{ExactlyOne, 0, false}, {ExactlyOne, 1, true}, {ExactlyOne, 2, false},
		{AtMostOne, 0, true}, {AtMostOne, 2, false}, {ZeroOrMore, 5, true},
	} {
		if got := tt.c.Accepts(tt.n); got != tt.want {
			t.Errorf("%v.Accepts(%d) = %v", tt.c, tt.n, got)
		}
	}
}

func TestLoad(t *testing.T) {
	if _, err := Load("ok.toml", []byte(sampleTOML)); err != nil {
		t.Fatal(err)
	}
	if _, err := Load("bad.toml", []byte("[component.A]\nslots = { x = \"Nope\" }\n")); err == nil {
		t.Fatalf("expected error for dangling slot")
	}
}

func TestSignature(t *testing.T) {
	reg, bag := decode(t, "sig.toml", sampleTOML)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	gen, _ := reg.Lookup("Generic")
	if got, want := gen.Signature(), "Generic<T: Into<String>>"; got != want {
		t.Fatalf("Signature = %q, want %q", got, want)
	}
	button, _ := reg.Lookup("Button")
	if got := button.Signature(); got != "Button" {
		t.Fatalf("Signature = %q", got)
	}
	if got := button.Children.String(); got != "opaque" {
		t.Fatalf("Children = %q", got)
	}
}
