package check

import (
	"testing"

	"viewc/internal/diag"
	"viewc/internal/parser"
	"viewc/internal/registry"
	"viewc/internal/source"
	"viewc/internal/types"
)

const manifest = `
[struct.GameInfo]
clone = true
unit = true
fields = { name = "String", score = "i64" }

[struct.A]
unit = true

[scope]
is_game_started = "Fn() -> bool"
start_game = "Fn(GameInfo)"
count = "ReadSignal<i32>"
game_info = "GameInfo"
data = "&str"
`

type run struct {
	typ  *types.Type
	bag  *diag.Bag
	file *source.File
}

func infer(t *testing.T, src string, expected *types.Type) run {
	t.Helper()
	reg, err := registry.Load("reg.toml", []byte(manifest))
	if err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("expr.rs", []byte(src)))
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	e := parser.ParseExpr(file, source.Span{}, parser.Options{Reporter: rep})
	if bag.Len() != 0 {
		t.Fatalf("parse %q: %v", src, bag.Items())
	}
	c := New(reg, rep)
	sc := NewScope(nil)
	sc.Define("item", types.String)
	return run{typ: c.Infer(e, sc, expected), bag: bag, file: file}
}

func TestInferTypes(t *testing.T) {
	tests := []struct {
		src      string
		expected string
		want     string
	}{
		{`1`, "", "{integer}"},
		{`1.5f32`, "", "f32"},
		{`"hi"`, "", "&str"},
		{`true`, "", "bool"},
		{`'c'`, "", "char"},
		{`item`, "", "String"},
		{`GameInfo`, "", "GameInfo"},
		{`is_game_started()`, "", "bool"},
		{`!is_game_started()`, "", "bool"},
		{`move || !is_game_started()`, "", "Fn() -> bool"},
		{`count()`, "", "i32"},
		{`count.get()`, "", "i32"},
		{`game_info.name`, "", "String"},
		{`game_info.clone()`, "", "GameInfo"},
		{`"".to_owned()`, "", "String"},
		{`data.to_string()`, "", "String"},
		{`String::new()`, "", "String"},
		{`format!("{}", item)`, "", "String"},
		{`todo!()`, "", "!"},
		{`vec![1, 2]`, "", "Vec<{integer}>"},
		{`(1, "a")`, "", "({integer}, &str)"},
		{`()`, "", "()"},
		{`{ let x = 1; x }`, "", "i32"},
		{`if is_game_started() { "a" } else { "b" }`, "", "&str"},
		{`|x| x`, "Fn(String) -> String", "Fn(String) -> String"},
		{`move |_| start_game(game_info)`, "Fn(MouseEvent)", "Fn(MouseEvent)"},
		{`1 + 2`, "", "{integer}"},
		{`a::b(item)`, "", "_"},
		{`Some(1)`, "", "Option<{integer}>"},
		{`None`, "Option<String>", "Option<String>"},
		{`view! { <p/> }`, "", "View"},
	}
	for _, tt := range tests {
		var expected *types.Type
		if tt.expected != "" {
			var err error
			if expected, err = types.Parse(tt.expected); err != nil {
				t.Fatal(err)
			}
		}
		r := infer(t, tt.src, expected)
		if r.bag.Len() != 0 {
			t.Errorf("%s: unexpected diagnostics %v", tt.src, r.bag.Items())
			continue
		}
		if got := r.typ.String(); got != tt.want {
			t.Errorf("%s: type %s, want %s", tt.src, got, tt.want)
		}
	}
}

func TestInferDiagnostics(t *testing.T) {
	tests := []struct {
		src  string
		code diag.Code
		at   string
	}{
		{`missing`, diag.TypUnresolvedName, "missing"},
		{`start_game(1)`, diag.TypMismatch, "1"},
		{`start_game()`, diag.TypArgCount, "()"},
		{`is_game_started(1, 2)`, diag.TypArgCount, "(1, 2)"},
		{`game_info()`, diag.TypNotCallable, "game_info"},
		{`move || start_game(nope)`, diag.TypUnresolvedName, "nope"},
		{`if 1 { 2 } else { 3 }`, diag.TypMismatch, "1"},
		{`{ let x: String = 1; x }`, diag.TypMismatch, "1"},
	}
	for _, tt := range tests {
		r := infer(t, tt.src, nil)
		items := r.bag.Items()
		if len(items) != 1 {
			t.Errorf("%s: got %d diagnostics, want 1: %v", tt.src, len(items), items)
			continue
		}
		if items[0].Code != tt.code {
			t.Errorf("%s: code %v, want %v", tt.src, items[0].Code, tt.code)
		}
		if got := r.file.Slice(items[0].Primary); got != tt.at {
			t.Errorf("%s: span %q, want %q", tt.src, got, tt.at)
		}
	}
}

func TestClosureBodyNarrowed(t *testing.T) {
	want, _ := types.Parse("Fn() -> bool")
	r := infer(t, `move || A`, want)
	items := r.bag.Items()
	if len(items) != 1 || items[0].Code != diag.TypMismatch {
		t.Fatalf("diagnostics = %v", items)
	}
	if got := r.file.Slice(items[0].Primary); got != "A" {
		t.Fatalf("mismatch at %q, want the body", got)
	}
	if r.typ.String() != "Fn() -> bool" {
		t.Fatalf("closure type = %s", r.typ)
	}
}

func TestCheckReportsAtExpression(t *testing.T) {
	reg, _ := registry.Load("reg.toml", []byte(manifest))
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("expr.rs", []byte(`game_info`)))
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	e := parser.ParseExpr(file, source.Span{}, parser.Options{Reporter: rep})
	c := New(reg, rep)
	if _, ok := c.Check(e, nil, types.String, true); ok {
		t.Fatalf("GameInfo accepted as String")
	}
	if bag.Len() != 1 || bag.Items()[0].Primary != e.Span() {
		t.Fatalf("diagnostics = %v", bag.Items())
	}
}

func TestScopeShadowing(t *testing.T) {
	outer := NewScope(nil)
	outer.Define("x", types.Bool)
	inner := NewScope(outer)
	inner.Define("x", types.String)
	inner.Define("_", types.Char)
	if got, _ := inner.Lookup("x"); got != types.String {
		t.Fatalf("inner x = %s", got)
	}
	if got, _ := outer.Lookup("x"); got != types.Bool {
		t.Fatalf("outer x = %s", got)
	}
	if _, ok := inner.Lookup("_"); ok {
		t.Fatalf("wildcard bound")
	}
}
