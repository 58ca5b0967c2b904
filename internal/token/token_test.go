package token

import (
	"testing"

	"viewc/internal/source"
)

func TestKindStrings(t *testing.T) {
	tests := map[Kind]string{
		LtSlash:  "</",
		SlashGt:  "/>",
		ColonCol: "::",
		KwMove:   "move",
		Ident:    "Ident",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q; want %q", k, got, want)
		}
	}
}

func TestLookupKeywordIsCaseSensitive(t *testing.T) {
	if k, ok := LookupKeyword("move"); !ok || k != KwMove {
		t.Fatalf("move not a keyword")
	}
	for _, word := range []string{"Move", "let", "slot", "class"} {
		if _, ok := LookupKeyword(word); ok {
			t.Errorf("%q must stay an identifier", word)
		}
	}
}

func TestTouches(t *testing.T) {
	a := Token{Kind: Ident, Span: source.Span{Start: 0, End: 2}}
	b := Token{Kind: Minus, Span: source.Span{Start: 2, End: 3}}
	c := Token{Kind: Ident, Span: source.Span{Start: 4, End: 6}}
	if !a.Touches(b) || b.Touches(c) {
		t.Fatalf("Touches wrong")
	}
	if !b.IsNamePart() || (Token{Kind: Assign}).IsNamePart() {
		t.Fatalf("IsNamePart wrong")
	}
}
