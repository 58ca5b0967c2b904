package ast

import (
	"testing"

	"viewc/internal/source"
	"viewc/internal/token"
)

func TestIsElementName(t *testing.T) {
	cases := map[string]bool{
		"div":        true,
		"my-element": true,
		"Button":     false,
		"ui::Button": false,
		"ui::button": false,
		"a::b::Card": false,
		"Foo-bar":    true,
	}
	for name, want := range cases {
		if got := IsElementName(name); got != want {
			t.Errorf("IsElementName(%q) = %v; want %v", name, got, want)
		}
	}
}

func TestSnakeCase(t *testing.T) {
	cases := map[string]string{
		"ElseIf":  "else_if",
		"Then":    "then",
		"SlotIf":  "slot_if",
		"HTTPOk":  "httpok",
		"Item2Of": "item2_of",
	}
	for in, want := range cases {
		if got := SnakeCase(in); got != want {
			t.Errorf("SnakeCase(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestPrintNode(t *testing.T) {
	path := func(name string) *PathExpr {
		return &PathExpr{Segments: []Ident{{Name: name}}}
	}
	n := &Node{
		Kind: NodeComponent,
		Name: "Show",
		Attrs: []*Attr{
			{Kind: AttrProp, Key: "when", Value: &ClosureExpr{
				Move: true,
				Body: &UnaryExpr{Op: token.Bang, X: &CallExpr{Fun: path("started")}},
			}},
			{Kind: AttrCloneCapture, Idents: []Binding{{Name: "a"}, {Name: "b"}}},
			{Key: "..", Braced: true, Value: path("attrs")},
		},
		Children: []*Node{
			{Kind: NodeText, Raw: `"Start"`},
			{Kind: NodeExpr, Expr: &TupleExpr{Elems: []Expr{path("x")}}},
		},
	}
	want := `<Show when=move || !started() clone:a clone:b {..attrs}>"Start"{(x,)}</Show>`
	if got := PrintNode(n); got != want {
		t.Fatalf("PrintNode:\n got  %s\n want %s", got, want)
	}
}

func TestChildrenSpan(t *testing.T) {
	n := &Node{Children: []*Node{
		{Span: source.Span{File: 1, Start: 4, End: 8}},
		{Span: source.Span{File: 1, Start: 10, End: 20}},
	}}
	if got := n.ChildrenSpan(); got.Start != 4 || got.End != 20 {
		t.Fatalf("ChildrenSpan = %v", got)
	}
	if !(&Node{}).ChildrenSpan().Empty() {
		t.Fatalf("no children must give an empty span")
	}
}

func TestInspectExprVisitsNested(t *testing.T) {
	e := &MethodCallExpr{
		Recv:   &PathExpr{Segments: []Ident{{Name: "name"}}},
		Method: Ident{Name: "clone"},
		Args:   []Expr{&LitExpr{Kind: LitInt, Raw: "1"}},
	}
	var seen int
	InspectExpr(e, func(Expr) bool { seen++; return true })
	if seen != 3 {
		t.Fatalf("visited %d expressions; want 3", seen)
	}
}
