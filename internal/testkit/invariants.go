// Package testkit holds invariant checks shared by tests across packages.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"viewc/internal/ast"
	"viewc/internal/ir"
	"viewc/internal/source"
)

// CheckTree verifies span nesting over a parsed view:
//  1. the view span lies inside the file and covers the root
//  2. every child span is inside its parent's span
//  3. every attribute span is inside its node, and key and value spans
//     are inside the attribute
//  4. every sub-expression span is inside the enclosing expression
func CheckTree(v *ast.View, sf *source.File) error {
	if v == nil || sf == nil {
		return fmt.Errorf("nil view or file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if v.Span.File != sf.ID || v.Span.End > lenContent || v.Span.Start > v.Span.End {
		return fmt.Errorf("view span %v outside file %d of length %d", v.Span, sf.ID, lenContent)
	}
	if v.Root == nil {
		return nil
	}
	if !v.Span.Contains(v.Root.Span) {
		return fmt.Errorf("view span %v does not cover root %v", v.Span, v.Root.Span)
	}
	if v.Class != nil {
		if err := checkExpr(v.Class, v.Span); err != nil {
			return err
		}
	}
	return checkNode(v.Root)
}

func checkNode(n *ast.Node) error {
	if n.Span.Empty() {
		return fmt.Errorf("%s node %q has an empty span", n.Kind, n.Name)
	}
	if n.IsTag() && !n.Span.Contains(n.NameSpan) {
		return fmt.Errorf("tag name span %v outside node %v", n.NameSpan, n.Span)
	}
	for _, a := range n.Attrs {
		if !n.Span.Contains(a.Span) {
			return fmt.Errorf("attribute %q span %v outside node %v", a.Key, a.Span, n.Span)
		}
		if !a.Span.Contains(a.KeySpan) {
			return fmt.Errorf("attribute %q key span %v outside attribute %v", a.Key, a.KeySpan, a.Span)
		}
		for _, id := range a.Idents {
			if !a.Span.Contains(id.Span) {
				return fmt.Errorf("binding %q span %v outside attribute %v", id.Name, id.Span, a.Span)
			}
		}
		if a.Value != nil {
			if err := checkExpr(a.Value, a.Span); err != nil {
				return fmt.Errorf("attribute %q: %w", a.Key, err)
			}
		}
	}
	if n.Expr != nil {
		if err := checkExpr(n.Expr, n.Span); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if !n.Span.Contains(c.Span) {
			return fmt.Errorf("child %s span %v outside parent %q %v", c.Kind, c.Span, n.Name, n.Span)
		}
		if err := checkNode(c); err != nil {
			return err
		}
	}
	return nil
}

func checkExpr(e ast.Expr, outer source.Span) error {
	sp := e.Span()
	if !outer.Contains(sp) {
		return fmt.Errorf("expression span %v outside %v", sp, outer)
	}
	var err error
	ast.InspectExpr(e, func(sub ast.Expr) bool {
		if sub == e {
			return true
		}
		if err == nil {
			err = checkExpr(sub, sp)
		}
		return false
	})
	return err
}

// CheckIR verifies that every node of a lowered view carries a span in the
// invocation's file and inside the invocation, and that captures and
// written keys stay inside their node.
func CheckIR(e *ir.Expr, within source.Span) error {
	var err error
	ir.Inspect(e, func(x *ir.Expr) bool {
		if err != nil {
			return false
		}
		if x.Span.File != within.File || !within.Contains(x.Span) {
			err = fmt.Errorf("%s %q span %v outside invocation %v", x.Kind, x.Name, x.Span, within)
			return false
		}
		if !x.KeySpan.Empty() && !x.Span.Contains(x.KeySpan) {
			err = fmt.Errorf("%s %q key span %v outside %v", x.Kind, x.Key, x.KeySpan, x.Span)
			return false
		}
		for _, c := range x.Captures {
			if !within.Contains(c.Span) {
				err = fmt.Errorf("capture %q span %v outside invocation %v", c.Name, c.Span, within)
				return false
			}
		}
		return true
	})
	return err
}
