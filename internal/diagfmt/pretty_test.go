package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"viewc/internal/diag"
	"viewc/internal/source"
)

func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("<p title=\"unterminated>\n")
	fileID := fs.AddVirtual("/home/user/project/src/test.view", content)
	fs.SetBaseDir("/home/user/project")

	bag := diag.NewBag(10)
	bag.Add(diag.New(
		diag.SevError,
		diag.LexUnterminatedString,
		source.Span{File: fileID, Start: 9, End: 23},
		"Unterminated string literal",
	))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/src/test.view"},
		{"Relative path", PathModeRelative, "src/test.view"},
		{"Basename only", PathModeBasename, "test.view"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: tt.mode})
			output := buf.String()

			if !strings.Contains(output, tt.contains+":1:10") {
				t.Errorf("expected output to contain %q, got:\n%s", tt.contains, output)
			}
			for _, want := range []string{"ERROR", "LEX1002", "Unterminated string"} {
				if !strings.Contains(output, want) {
					t.Errorf("expected %q in output:\n%s", want, output)
				}
			}
		})
	}
}

func TestPathModeAuto(t *testing.T) {
	fs := source.NewFileSet()

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"Short path - as is", "test.view", "test.view"},
		{"Long absolute path - basename", "/very/long/absolute/path/to/some/nested/directory/file.view", "file.view:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileID := fs.AddVirtual(tt.path, []byte("<p>{42}</p>\n"))
			bag := diag.NewBag(10)
			bag.Add(diag.New(diag.SevWarning, diag.LexUnknownChar, source.Span{File: fileID, Start: 4, End: 6}, "Test warning"))

			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeAuto})
			output := buf.String()

			if !strings.HasPrefix(output, tt.expected) {
				t.Errorf("expected output to start with %q, got:\n%s", tt.expected, output)
			}
		})
	}
}

func TestPrettyCaretUnderWideRunes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("\"日本\" <Buton/>")
	fileID := fs.AddVirtual("test.view", content)

	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevError, diag.ResUnknownComponent, source.Span{File: fileID, Start: 10, End: 15}, "unknown component `Buton`"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})

	want := "test.view:1:11: ERROR RES3001: unknown component `Buton`\n" +
		"1 | \"日本\" <Buton/>\n" +
		"  |         ^~~~~\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("Pretty (-want +got):\n%s", diff)
	}
}

func TestPrettyContextLines(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("<div>\n  <Buton/>\n</div>\n")
	fileID := fs.AddVirtual("page.view", content)

	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevError, diag.ResUnknownComponent, source.Span{File: fileID, Start: 9, End: 14}, "unknown component `Buton`"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: PathModeBasename})

	want := "page.view:2:4: ERROR RES3001: unknown component `Buton`\n" +
		"1 | <div>\n" +
		"2 |   <Buton/>\n" +
		"  |    ^~~~~\n" +
		"3 | </div>\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("Pretty (-want +got):\n%s", diff)
	}
}

func TestPrettyWithoutLocation(t *testing.T) {
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevError, diag.IOLoadFileError, source.Nowhere, "failed to load file: missing.view"))

	var buf bytes.Buffer
	Pretty(&buf, bag, source.NewFileSet(), PrettyOpts{})
	if got, want := buf.String(), "ERROR IO5001: failed to load file: missing.view\n"; got != want {
		t.Errorf("Pretty = %q, want %q", got, want)
	}
}

func TestPrettyNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("<Label txt=\"hi\"/>\n")
	fileID := fs.AddVirtual("test.view", content)

	bag := diag.NewBag(4)
	primary := source.Span{File: fileID, Start: 7, End: 10}
	d := diag.New(diag.SevError, diag.TypUnknownProp, primary, "the component `Label` has no prop named `txt`")
	d = d.WithNote(source.Span{File: fileID, Start: 1, End: 6}, "available props: `text`")
	fix := diag.ReplaceSpan("rename to `text`", primary, "text", "txt")
	fix.ID = "rename-prop-001"
	d = d.WithFixSuggestion(fix)
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true, ShowFixes: true})
	output := buf.String()

	for _, want := range []string{
		"note: test.view:1:2: available props: `text`",
		"fix #1: rename to `text` [machine-applicable]",
		"id=rename-prop-001",
		`test.view:1:8 apply="text"`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestPrettyFixPreview(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte(`<Then>"yes"</Then>`)
	fileID := fs.AddVirtual("example.view", content)

	bag := diag.NewBag(2)
	at := source.Span{File: fileID, Start: 5, End: 5}
	d := diag.New(diag.SevError, diag.ResSlotMissing, at, "missing slot marker")
	d = d.WithFixSuggestion(diag.InsertText("add `slot`", at, " slot"))
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowFixes: true, ShowPreview: true})
	output := buf.String()

	for _, want := range []string{
		"preview:",
		`- <Then>"yes"</Then>`,
		`+ <Then slot>"yes"</Then>`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}
