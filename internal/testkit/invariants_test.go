package testkit

import (
	"strings"
	"testing"

	"viewc/internal/ast"
	"viewc/internal/ir"
	"viewc/internal/source"
)

func TestCheckTreeRejectsEscapingChild(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("a.view", []byte(`<div>"x"</div>`)))
	child := &ast.Node{Kind: ast.NodeText, Span: source.Span{File: file.ID, Start: 5, End: 8}, Text: "x"}
	root := &ast.Node{
		Kind:     ast.NodeElement,
		Span:     source.Span{File: file.ID, Start: 0, End: 14},
		Name:     "div",
		NameSpan: source.Span{File: file.ID, Start: 1, End: 4},
		Children: []*ast.Node{child},
	}
	v := &ast.View{Span: root.Span, Root: root}
	if err := CheckTree(v, file); err != nil {
		t.Fatalf("well-formed tree rejected: %v", err)
	}

	child.Span.End = 20
	err := CheckTree(v, file)
	if err == nil || !strings.Contains(err.Error(), "outside parent") {
		t.Fatalf("err = %v, want child outside parent", err)
	}
}

func TestCheckIR(t *testing.T) {
	within := source.Span{File: 1, Start: 10, End: 40}
	call := &ir.Expr{
		Kind:    ir.KindCall,
		Span:    source.Span{File: 1, Start: 15, End: 23},
		Name:    ir.MethodOn,
		Key:     "click",
		KeySpan: source.Span{File: 1, Start: 18, End: 23},
		Recv:    &ir.Expr{Kind: ir.KindElement, Span: source.Span{File: 1, Start: 11, End: 14}, Name: "div"},
	}
	if err := CheckIR(call, within); err != nil {
		t.Fatalf("well-formed IR rejected: %v", err)
	}

	call.Recv.Span = source.Span{File: 2, Start: 11, End: 14}
	if err := CheckIR(call, within); err == nil {
		t.Fatal("span in another file accepted")
	}

	call.Recv.Span = source.Span{File: 1, Start: 11, End: 14}
	call.KeySpan = source.Span{File: 1, Start: 30, End: 35}
	if err := CheckIR(call, within); err == nil || !strings.Contains(err.Error(), "key span") {
		t.Fatalf("err = %v, want key span error", err)
	}
}
