package parser

import (
	"testing"

	"viewc/internal/ast"
	"viewc/internal/diag"
	"viewc/internal/source"
)

type parsed struct {
	res  Result
	bag  *diag.Bag
	file *source.File
	fs   *source.FileSet
}

func parseSrc(t *testing.T, src string) parsed {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.view", []byte(src)))
	bag := diag.NewBag(0)
	res := Parse(file, source.Span{}, Options{Reporter: diag.BagReporter{Bag: bag}})
	return parsed{res: res, bag: bag, file: file, fs: fs}
}

// mustParse fails the test on any diagnostic.
func mustParse(t *testing.T, src string) *ast.View {
	t.Helper()
	p := parseSrc(t, src)
	if p.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics for %q:\n%s", src, diag.FormatGoldenDiagnostics(p.bag.Items(), p.fs, false))
	}
	if p.res.View == nil || p.res.View.Root == nil {
		t.Fatalf("no root for %q", src)
	}
	return p.res.View
}

func (p parsed) slice(sp source.Span) string {
	return string(p.file.Content[sp.Start:sp.End])
}

func (p parsed) codes() []diag.Code {
	var out []diag.Code
	for _, d := range p.bag.Items() {
		out = append(out, d.Code)
	}
	return out
}
