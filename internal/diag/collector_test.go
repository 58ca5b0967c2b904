package diag

import (
	"testing"

	"viewc/internal/source"
)

func TestCollectorDropsExactDuplicates(t *testing.T) {
	bag := NewBag(0)
	c := NewCollector(bag)
	sp := source.Span{File: 0, Start: 3, End: 9}

	c.Report(ResUnknownComponent, SevError, sp, "unknown component `Buton`", nil, nil)
	c.Report(ResUnknownComponent, SevError, sp, "unknown component `Buton`", nil, nil)

	if bag.Len() != 1 || c.Dropped() != 1 {
		t.Fatalf("len=%d dropped=%d", bag.Len(), c.Dropped())
	}
}

func TestCollectorSuppressesDerivedAtSameSpan(t *testing.T) {
	bag := NewBag(0)
	c := NewCollector(bag)
	tag := source.Span{File: 0, Start: 1, End: 10}
	value := source.Span{File: 0, Start: 14, End: 15}

	c.Report(ResUnknownComponent, SevError, tag, "unknown component", nil, nil)
	// consequence at the same span: dropped
	c.Report(TypMissingField, SevError, tag, "missing field", nil, nil)
	// independent problem elsewhere: kept
	c.Report(TypMismatch, SevError, value, "mismatched types", nil, nil)
	// a root-cause code at an occupied span is still kept
	c.Report(ResGenericArityMismatch, SevError, tag, "generics", nil, nil)

	got := make([]Code, 0, bag.Len())
	for _, d := range bag.Items() {
		got = append(got, d.Code)
	}
	want := []Code{ResUnknownComponent, TypMismatch, ResGenericArityMismatch}
	if len(got) != len(want) {
		t.Fatalf("codes = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("codes = %v; want %v", got, want)
		}
	}
	if !c.Occupied(tag) || c.Occupied(source.Span{File: 0, Start: 1, End: 9}) {
		t.Fatalf("Occupied must match exact spans only")
	}
}

func TestCollectorWarningsDoNotOccupy(t *testing.T) {
	bag := NewBag(0)
	c := NewCollector(bag)
	sp := source.Span{File: 0, Start: 0, End: 4}
	c.Report(ResUnknownElement, SevWarning, sp, "unknown element", nil, nil)
	c.Report(TypMismatch, SevError, sp, "mismatched types", nil, nil)
	if bag.Len() != 2 {
		t.Fatalf("warning suppressed a later error: %d items", bag.Len())
	}
}

func TestBagLimitAndSort(t *testing.T) {
	bag := NewBag(2)
	mk := func(start uint32, sev Severity, code Code) Diagnostic {
		return Diagnostic{Severity: sev, Code: code, Primary: source.Span{Start: start, End: start + 1}}
	}
	if !bag.Add(mk(5, SevError, TypMismatch)) || !bag.Add(mk(1, SevWarning, TypUnreachable)) {
		t.Fatalf("Add under limit failed")
	}
	if bag.Add(mk(0, SevError, TypMismatch)) || !bag.Full() {
		t.Fatalf("limit not enforced")
	}
	bag.Sort()
	if bag.Items()[0].Primary.Start != 1 {
		t.Fatalf("not sorted by start: %+v", bag.Items())
	}
	if !bag.HasErrors() || !bag.HasWarnings() || bag.Count(SevError) != 1 {
		t.Fatalf("severity queries wrong")
	}

	other := NewBag(0)
	other.Add(mk(9, SevError, TypMismatch))
	bag.Merge(other)
	if bag.Len() != 3 || bag.Cap() != 3 {
		t.Fatalf("merge: len=%d cap=%d", bag.Len(), bag.Cap())
	}
	bag.Filter(func(d Diagnostic) bool { return d.Severity == SevError })
	if bag.Len() != 2 {
		t.Fatalf("filter kept %d", bag.Len())
	}
}

func TestCodeIDsAndKinds(t *testing.T) {
	tests := []struct {
		code Code
		id   string
		kind string
	}{
		{SynUnclosedTag, "SYN2002", "SyntaxError"},
		{SynCloseTagGenericMismatch, "SYN2010", "CloseTagGenericMismatch"},
		{ResSlotCardinalityExceeded, "RES3006", "SlotCardinalityExceeded"},
		{TypMissingField, "TYP4002", "MissingField"},
		{ProjInvalidRegistry, "PRJ6003", "Other"},
	}
	for _, tt := range tests {
		if tt.code.ID() != tt.id || tt.code.Kind() != tt.kind {
			t.Errorf("%d: got %s/%s; want %s/%s", tt.code, tt.code.ID(), tt.code.Kind(), tt.id, tt.kind)
		}
	}
	if ResUnknownComponent.Derived() || !TypMismatch.Derived() {
		t.Fatalf("Derived classification wrong")
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(0)
	b := ReportError(BagReporter{Bag: bag}, ResUndefinedSlot, source.Span{Start: 2, End: 6}, "undefined slot").
		WithNote(source.Span{Start: 0, End: 1}, "parent here").
		WithFixSuggestion(ReplaceSpan("rename", source.Span{Start: 2, End: 6}, "then", "them"))
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("emitted %d times", bag.Len())
	}
	d := bag.Items()[0]
	if len(d.Notes) != 1 || len(d.Fixes) != 1 || d.Fixes[0].Edits[0].OldText != "them" {
		t.Fatalf("builder lost details: %+v", d)
	}
}
