package parser

import (
	"testing"

	"viewc/internal/ast"
	"viewc/internal/diag"
)

func TestParseExpressions(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{`{a + b * c}`, `a + b * c`},
		{`{(a, !d.e())}`, `(a, !d.e())`},
		{`{name.clone()}`, `name.clone()`},
		{`{String::new()}`, `String::new()`},
		{`{items[0].label}`, `items[0].label`},
		{`{move |x: i32, _| x + 1}`, `move |x: i32, _| x + 1`},
		{`{|| -> String { format!("{}", a) }}`, `|| -> String { format!("{}", a) }`},
		{`{if a { 1 } else if b { 2 } else { 3 }}`, `if a { 1 } else if b { 2 } else { 3 }`},
		{`{let x = 1; x}`, `{ let x = 1; x }`},
		{`{vec![1, 2]}`, `vec!(1, 2)`},
		{`{view! { <p/> }}`, `view! { <p/> }`},
		{`{&&x}`, `&&x`},
		{`{"a\nb"}`, `"a\nb"`},
		{`{[0; 3]}`, `[0]`},
		{`{parse::<i32>()}`, `parse::<i32>()`},
	}
	for _, tc := range cases {
		v := mustParse(t, tc.src)
		if got := ast.ExprString(v.Root.Expr); got != tc.want {
			t.Errorf("%s:\n got  %s\n want %s", tc.src, got, tc.want)
		}
	}
}

func TestAttrValuesStopAtOperators(t *testing.T) {
	p := parseSrc(t, `<C a=x + y />`)
	if got := p.codes(); len(got) != 1 || got[0] != diag.SynExpectAttrName {
		t.Fatalf("codes = %v", got)
	}
	if got := ast.ExprString(p.res.View.Root.Attrs[0].Value); got != "x" {
		t.Fatalf("value = %s", got)
	}
}

func TestClosureBodySpan(t *testing.T) {
	p := parseSrc(t, `<div on:click=move |_| A />`)
	c, ok := p.res.View.Root.Attrs[0].Value.(*ast.ClosureExpr)
	if !ok {
		t.Fatalf("value is %T", p.res.View.Root.Attrs[0].Value)
	}
	if got := p.slice(c.Body.Span()); got != "A" {
		t.Fatalf("body span = %q", got)
	}
	if !c.Move || len(c.Params) != 1 || c.Params[0].Name.Name != "_" {
		t.Fatalf("closure = %+v", c)
	}
}

func TestSpreadAttr(t *testing.T) {
	p := parseSrc(t, `<div {..attrs} />`)
	a := p.res.View.Root.Attrs[0]
	if !a.Braced || a.Key != ".." || ast.ExprString(a.Value) != "attrs" {
		t.Fatalf("spread = %+v", a)
	}
	if got := p.slice(a.Span); got != "{..attrs}" {
		t.Fatalf("span = %q", got)
	}
}

func TestUnquote(t *testing.T) {
	cases := map[string]string{
		`"plain"`:       "plain",
		`"a\tb\\c\"d"`:  "a\tb\\c\"d",
		`"\u{48}i"`:     "Hi",
		`r"raw\n"`:      `raw\n`,
		`r#"say "hi""#`: `say "hi"`,
		`'x'`:           "x",
		`'\''`:          "'",
	}
	for in, want := range cases {
		if got := unquote(in); got != want {
			t.Errorf("unquote(%s) = %q; want %q", in, got, want)
		}
	}
}
