package fix

import (
	"testing"

	"viewc/internal/diag"
	"viewc/internal/source"
)

func TestInsertTextGuard(t *testing.T) {
	at := source.Span{File: 0, Start: 5, End: 9}
	f := InsertText("add `slot`", at, " slot", "/>")
	if f.Applicability != diag.FixMachineApplicable {
		t.Errorf("applicability = %s", f.Applicability)
	}
	edit := f.Edits[0]
	if edit.Span.Start != 5 || edit.Span.End != 7 || edit.NewText != " slot/>" || edit.OldText != "/>" {
		t.Fatalf("edit = %+v", edit)
	}

	f = InsertText("add `slot`", at, " slot", "")
	if edit := f.Edits[0]; !edit.Span.Empty() || edit.Span.Start != 5 || edit.OldText != "" {
		t.Fatalf("unguarded edit = %+v", edit)
	}
}

func TestRename(t *testing.T) {
	spans := []source.Span{{Start: 1, End: 6}, {Start: 12, End: 17}}
	f := Rename("rename", spans, "Buton", "Button", Preferred(), WithID("r"))
	if !f.IsPreferred || f.ID != "r" || len(f.Edits) != 2 {
		t.Fatalf("fix = %+v", f)
	}
	for i, e := range f.Edits {
		if e.Span != spans[i] || e.NewText != "Button" || e.OldText != "Buton" {
			t.Errorf("edit %d = %+v", i, e)
		}
	}
}

func TestWrapWith(t *testing.T) {
	f := WrapWith("wrap", source.Span{Start: 2, End: 4}, "{", "}")
	if f.Applicability != diag.FixMaybeIncorrect || len(f.Edits) != 2 {
		t.Fatalf("fix = %+v", f)
	}
	if f.Edits[0].Span.Start != 2 || f.Edits[1].Span.Start != 4 || !f.Edits[1].Span.Empty() {
		t.Errorf("edits = %+v", f.Edits)
	}
}

func TestDeleteSpanAndOptions(t *testing.T) {
	f := DeleteSpan("remove", source.Span{Start: 0, End: 1}, ";", nil, WithApplicability(diag.FixManualReview))
	if f.Applicability != diag.FixManualReview {
		t.Errorf("applicability = %s", f.Applicability)
	}
	if e := f.Edits[0]; e.NewText != "" || e.OldText != ";" {
		t.Errorf("edit = %+v", e)
	}
}
