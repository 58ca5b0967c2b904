package driver

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"viewc/internal/diag"
	"viewc/internal/ir"
	"viewc/internal/observ"
	"viewc/internal/registry"
	"viewc/internal/source"
	"viewc/internal/testkit"
)

const manifest = `
[component.Component]
props = { _required = { type = "i64" } }

[component.Label]
props = { text = { type = "String", into = true } }

[component.Each]
generics = ["C: Fn(String) -> IV", "IV: IntoView"]
children = "C"

[component.Wrap]
children = "opaque"

[component.Generic]
generics = ["T: Into<String>"]
props = { _a = { type = "T" } }

[component.SlotIf]
slots = { then = "Then" }

[slot.Then]

[slot.Guarded]
props = { cond = { type = "bool" } }

[component.Guard]
slots = { guarded = "Guarded" }

[struct.A]
unit = true

[struct.Data]

[scope]
data = "Data"
highlight = "fn(HtmlElement, i32)"
`

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.Load("components.toml", []byte(manifest))
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func compileSrc(t *testing.T, src string, opts Options) (*source.File, *Unit) {
	t.Helper()
	fs, u := CompileSource(context.Background(), "app.view", []byte(src), testRegistry(t), opts)
	return fs.Get(u.File), u
}

// summary renders each diagnostic as "CODE text-under-primary-span".
func summary(file *source.File, u *Unit) []string {
	var out []string
	for _, d := range u.Bag.Items() {
		out = append(out, fmt.Sprintf("%s %s", d.Code.ID(), file.Slice(d.Primary)))
	}
	return out
}

func TestPipelineDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"missing required prop", `<Component/>`, []string{"TYP4002 Component"}},
		{"slot cardinality", `<SlotIf><Then slot/><Then slot/></SlotIf>`, []string{"RES3006 Then"}},
		{"children arity", `<Each let:item let:a><p>{item}</p></Each>`, []string{"RES3010 let:item let:a"}},
		{"attribute value", `<div id=A/>`, []string{"TYP4001 A"}},
		{"into prop", `<Label text="hi"/>`, nil},
		{"into prop mismatch", `<Label text=1/>`, []string{"TYP4001 1"}},
		{"unknown prop", `<Label text="a" colour="red"/>`, []string{"TYP4003 colour"}},
		{"event", `<button on:click=move |ev| {}/>`, nil},
		{"event not a function", `<button on:click=1/>`, []string{"TYP4001 1"}},
		{"directive needs value", `<div use:highlight/>`, []string{"TYP4007 use:highlight"}},
		{"directive with value", `<div use:highlight=5/>`, nil},
		{"directive value mismatch", `<div use:highlight="x"/>`, []string{`TYP4001 "x"`}},
		{"unknown directive", `<div use:nothing/>`, []string{"TYP4004 nothing"}},
		{"clone capture", `<Wrap clone:data><p/></Wrap>`, []string{"TYP4005 clone:data"}},
		{"class tuple", `<div class=("a", 1)/>`, []string{"TYP4001 1"}},
		{"class tuple ok", `<div class=("a", true)/>`, nil},
		{"generic inferred", `<Generic _a="x"/>`, nil},
		{"generic bound", `<Generic _a=1/>`, []string{"TYP4009 Generic"}},
		{"slot missing field", `<Guard><Guarded slot/></Guard>`, []string{"TYP4002 Guarded"}},
		{"unresolved name", `<div id=missing/>`, []string{"TYP4004 missing"}},
		{"slot value", `<Guard><Guarded slot cond=1/></Guard>`, []string{"TYP4001 1"}},
		{"undefined slot field value", `<Guard><Guarded slot cond=true/><Guarded slot:nope cond=1/></Guard>`, []string{"RES3003 slot:nope", "TYP4001 1"}},
		{"unknown parent slot value", `<Gaurd><Guarded slot cond=1/></Gaurd>`, []string{"RES3001 Gaurd", "TYP4001 1"}},
		{"element parent slot value", `<div><Guarded slot cond=1/></div>`, []string{"RES3003 slot", "TYP4001 1"}},
		{"path component", `<ui::Component/>`, []string{"TYP4002 ui::Component"}},
		{"fragment in element", `<div><>"a"<span/></></div>`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, u := compileSrc(t, tt.src, Options{})
			if diff := cmp.Diff(tt.want, summary(file, u)); diff != "" {
				t.Errorf("%s: diagnostics (-want +got):\n%s", tt.src, diff)
			}
		})
	}
}

func TestMissingFieldNamesField(t *testing.T) {
	_, u := compileSrc(t, `<Component/>`, Options{})
	items := u.Bag.Items()
	if len(items) != 1 || !strings.Contains(items[0].Message, "`_required`") {
		t.Fatalf("diagnostics = %v", items)
	}
}

func TestExcessSlotAtSecondChild(t *testing.T) {
	src := `<SlotIf><Then slot/><Then slot/></SlotIf>`
	_, u := compileSrc(t, src, Options{})
	items := u.Bag.Items()
	if len(items) != 1 {
		t.Fatalf("diagnostics = %v", items)
	}
	second := strings.LastIndex(src, "<Then") + 1
	if int(items[0].Primary.Start) != second {
		t.Errorf("excess slot at %d, want %d", items[0].Primary.Start, second)
	}
}

func TestUnreachableAfterDivergingChild(t *testing.T) {
	_, u := compileSrc(t, `<>{panic!("no")}<p/></>`, Options{})
	items := u.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.TypUnreachable || items[0].Severity != diag.SevWarning {
		t.Fatalf("diagnostics = %v", items)
	}
	if len(items[0].Notes) != 1 {
		t.Errorf("notes = %v, want the diverging child", items[0].Notes)
	}
}

func TestErrorIsolation(t *testing.T) {
	file, u := compileSrc(t, `<div><Buton/><p id=A/></div>`, Options{})
	want := []string{"RES3001 Buton", "TYP4001 A"}
	if diff := cmp.Diff(want, summary(file, u)); diff != "" {
		t.Fatalf("diagnostics (-want +got):\n%s", diff)
	}
	items := u.Bag.Items()
	for i, d := range items {
		other := items[1-i].Primary
		if d.Primary.Overlaps(other) {
			t.Errorf("%s overlaps %s", d.Code.ID(), items[1-i].Code.ID())
		}
		for _, n := range d.Notes {
			if n.Span == other {
				t.Errorf("%s has a note on the other fault", d.Code.ID())
			}
		}
	}
}

func TestIdempotent(t *testing.T) {
	src := `<Label text="hi"/><div class=("a", true)><Each let:x><p>{x}</p></Each></div>`
	f1, u1 := compileSrc(t, src, Options{})
	f2, u2 := compileSrc(t, src, Options{})
	if u1.Bag.Len() != 0 || u2.Bag.Len() != 0 {
		t.Fatalf("diagnostics: %v / %v", summary(f1, u1), summary(f2, u2))
	}
	if diff := cmp.Diff(u1.Outputs, u2.Outputs); diff != "" {
		t.Errorf("IR differs (-first +second):\n%s", diff)
	}
	if got, want := ir.Print(u1.Passes[0].IR), ir.Print(u2.Passes[0].IR); got != want {
		t.Errorf("printed IR differs:\n%s\n---\n%s", got, want)
	}
}

func TestInvocations(t *testing.T) {
	src := "fn a() -> impl IntoView { view! { <Label text=1/> } }\n" +
		"fn b() -> impl IntoView { view! { <div id=A/> } }\n"
	file, u := compileSrc(t, src, Options{})
	if len(u.Passes) != 2 {
		t.Fatalf("passes = %d, want 2", len(u.Passes))
	}
	want := []string{"TYP4001 1", "TYP4001 A"}
	if diff := cmp.Diff(want, summary(file, u)); diff != "" {
		t.Errorf("diagnostics (-want +got):\n%s", diff)
	}
}

func TestUnclosedInvocation(t *testing.T) {
	file, u := compileSrc(t, "fn a() { view! { <p/>", Options{})
	if len(u.Passes) != 0 {
		t.Errorf("passes = %d, want 0", len(u.Passes))
	}
	if got := summary(file, u); len(got) != 1 || !strings.HasPrefix(got[0], "SYN2007") {
		t.Errorf("diagnostics = %v", got)
	}
}

func TestUntil(t *testing.T) {
	_, u := compileSrc(t, `<Component/>`, Options{Until: StageParse})
	p := u.Passes[0]
	if p.View == nil || p.Resolved != nil || p.IR != nil {
		t.Fatalf("pass ran past parse: %+v", p)
	}
	if u.Bag.Len() != 0 {
		t.Errorf("diagnostics = %v", u.Bag.Items())
	}
}

func TestTimerRecordsStages(t *testing.T) {
	timer := observ.NewTimer()
	_, u := compileSrc(t, `<p/><span/>`, Options{Timer: timer})
	if u.Passes[0].Type == nil {
		t.Fatal("pass did not reach check")
	}
	var names []string
	for _, st := range timer.Stages() {
		names = append(names, st.Name)
		if st.Count != 1 {
			t.Errorf("stage %s ran %d times", st.Name, st.Count)
		}
	}
	if diff := cmp.Diff(Stages, names); diff != "" {
		t.Errorf("stages (-want +got):\n%s", diff)
	}
}

func TestSpansStayInsideInvocation(t *testing.T) {
	srcs := []string{
		`<Label text="hi"/><div class=("a", true)><Each let:x><p>{x}</p></Each></div>`,
		"fn a() -> impl IntoView { view! { <Label text=1/> } }\n" +
			"fn b() -> impl IntoView { view! { <div id=A on:click=handler/> } }\n",
		`<Buton x=1/><SlotIf><Then slot/></SlotIf>`,
	}
	for _, src := range srcs {
		_, u := compileSrc(t, src, Options{})
		for _, p := range u.Passes {
			if p.Fatal {
				continue
			}
			if err := testkit.CheckIR(p.IR, p.Invocation.Span); err != nil {
				t.Errorf("%q: %v", src, err)
			}
		}
	}
}
