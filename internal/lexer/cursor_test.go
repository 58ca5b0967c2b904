package lexer

import (
	"testing"

	"viewc/internal/source"
)

func createFile(content string) *source.File {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.view", []byte(content))
	return fs.Get(id)
}

func TestCursorSequentialReading(t *testing.T) {
	cursor := NewCursor(createFile("a\nb"))
	for _, want := range []byte("a\nb") {
		if cursor.EOF() {
			t.Fatalf("unexpected EOF before %q", want)
		}
		if got := cursor.Bump(); got != want {
			t.Fatalf("Bump = %q; want %q", got, want)
		}
	}
	if !cursor.EOF() || cursor.Peek() != 0 || cursor.Bump() != 0 {
		t.Fatalf("expected EOF behaviour at the end")
	}
}

func TestCursorPeekN(t *testing.T) {
	cursor := NewCursor(createFile("abc"))
	if b0, b1, ok := cursor.Peek2(); !ok || b0 != 'a' || b1 != 'b' {
		t.Fatalf("Peek2 = %q %q %v", b0, b1, ok)
	}
	if b0, b1, b2, ok := cursor.Peek3(); !ok || b0 != 'a' || b1 != 'b' || b2 != 'c' {
		t.Fatalf("Peek3 = %q %q %q %v", b0, b1, b2, ok)
	}
	cursor.Bump()
	cursor.Bump()
	if _, _, ok := cursor.Peek2(); ok {
		t.Fatalf("Peek2 past the end must fail")
	}
}

func TestCursorMarkAndSpan(t *testing.T) {
	cursor := NewCursor(createFile("hello world"))
	m := cursor.Mark()
	for range 5 {
		cursor.Bump()
	}
	sp := cursor.SpanFrom(m)
	if sp.Start != 0 || sp.End != 5 {
		t.Fatalf("SpanFrom = %v", sp)
	}
	cursor.Reset(m)
	if !cursor.Eat('h') || cursor.Eat('x') {
		t.Fatalf("Eat mismatch")
	}
}

func TestRangeCursorStopsAtLimit(t *testing.T) {
	f := createFile("xx<div/>yy")
	cursor := NewRangeCursor(f, source.Span{File: f.ID, Start: 2, End: 8})
	var got []byte
	for !cursor.EOF() {
		got = append(got, cursor.Bump())
	}
	if string(got) != "<div/>" {
		t.Fatalf("range read %q", got)
	}
}
