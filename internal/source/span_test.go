package source

import "testing"

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 5}
	if got := a.Cover(b); got != (Span{File: 1, Start: 2, End: 8}) {
		t.Fatalf("Cover = %v", got)
	}
	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Fatalf("cross-file Cover changed span: %v", got)
	}
}

func TestSpanContainsOverlaps(t *testing.T) {
	outer := Span{File: 0, Start: 0, End: 10}
	tests := []struct {
		sp       Span
		contains bool
		overlaps bool
	}{
		{Span{0, 0, 10}, true, true},
		{Span{0, 3, 4}, true, true},
		{Span{0, 8, 12}, false, true},
		{Span{0, 10, 12}, false, false},
		{Span{1, 3, 4}, false, false},
	}
	for _, tt := range tests {
		if got := outer.Contains(tt.sp); got != tt.contains {
			t.Errorf("Contains(%v) = %v", tt.sp, got)
		}
		if got := outer.Overlaps(tt.sp); got != tt.overlaps {
			t.Errorf("Overlaps(%v) = %v", tt.sp, got)
		}
	}
}

func TestSpanNarrowNeverWidens(t *testing.T) {
	s := Span{File: 0, Start: 10, End: 20}
	if got := s.Narrow(Span{File: 0, Start: 12, End: 15}); got != (Span{0, 12, 15}) {
		t.Fatalf("Narrow inner = %v", got)
	}
	if got := s.Narrow(Span{File: 0, Start: 5, End: 25}); got != s {
		t.Fatalf("Narrow wider = %v", got)
	}
	if got := s.Narrow(Span{File: 3, Start: 12, End: 15}); got != s {
		t.Fatalf("Narrow other file = %v", got)
	}
	if !s.Head().Empty() || s.Tail().Start != 20 {
		t.Fatalf("Head/Tail wrong: %v %v", s.Head(), s.Tail())
	}
}
