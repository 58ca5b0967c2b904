package ast

import (
	"strings"
)

// Print renders a view back to markup. The output is canonical rather than
// faithful: whitespace is normalized, but node, attribute and child order
// are kept so that re-parsing yields the same structure.
func Print(v *View) string {
	var b strings.Builder
	if v.Class != nil {
		b.WriteString("class=")
		writeExpr(&b, v.Class)
		b.WriteString(", ")
	}
	if v.Root != nil {
		writeNode(&b, v.Root)
	}
	return b.String()
}

// PrintNode renders a single node.
func PrintNode(n *Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n *Node) {
	switch n.Kind {
	case NodeText:
		b.WriteString(n.Raw)
		return
	case NodeExpr:
		b.WriteByte('{')
		if n.Expr != nil {
			writeExpr(b, n.Expr)
		}
		b.WriteByte('}')
		return
	case NodeFragment:
		if n.Implicit {
			for i, c := range n.Children {
				if i > 0 {
					b.WriteByte(' ')
				}
				writeNode(b, c)
			}
			return
		}
		b.WriteString("<>")
		writeChildren(b, n)
		b.WriteString("</>")
		return
	}

	b.WriteByte('<')
	b.WriteString(n.Name)
	writeGenerics(b, n.Generics)
	for _, a := range n.Attrs {
		b.WriteByte(' ')
		writeAttr(b, a)
	}
	if n.SelfClosing {
		b.WriteString(" />")
		return
	}
	b.WriteByte('>')
	writeChildren(b, n)
	b.WriteString("</")
	b.WriteString(n.Name)
	b.WriteByte('>')
}

func writeChildren(b *strings.Builder, n *Node) {
	for _, c := range n.Children {
		writeNode(b, c)
	}
}

func writeGenerics(b *strings.Builder, args []TypeArg) {
	if len(args) == 0 {
		return
	}
	b.WriteByte('<')
	for i, t := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(t.Text)
	}
	b.WriteByte('>')
}

func writeAttr(b *strings.Builder, a *Attr) {
	switch {
	case a.Kind == AttrChildrenLet || a.Kind == AttrCloneCapture:
		prefix := "let"
		if a.Kind == AttrCloneCapture {
			prefix = "clone"
		}
		if len(a.Idents) == 0 {
			b.WriteString(prefix)
			return
		}
		for i, id := range a.Idents {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(prefix)
			b.WriteByte(':')
			b.WriteString(id.Name)
		}
		return
	case a.Braced:
		b.WriteByte('{')
		if a.Key == ".." {
			b.WriteString("..")
		}
		if a.Value != nil {
			writeExpr(b, a.Value)
		}
		b.WriteByte('}')
		return
	}
	b.WriteString(a.Key)
	if a.Value != nil && !a.Shorthand {
		b.WriteByte('=')
		writeExpr(b, a.Value)
	}
}

// ExprString renders an expression in canonical form.
func ExprString(e Expr) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

func writeExpr(b *strings.Builder, e Expr) {
	switch x := e.(type) {
	case nil:
	case *BadExpr:
		b.WriteString("<bad>")
	case *LitExpr:
		b.WriteString(x.Raw)
	case *PathExpr:
		for i, s := range x.Segments {
			if i > 0 {
				b.WriteString("::")
			}
			b.WriteString(s.Name)
		}
		if len(x.Generics) > 0 {
			b.WriteString("::")
			writeGenerics(b, x.Generics)
		}
	case *CallExpr:
		writeExpr(b, x.Fun)
		writeArgs(b, '(', x.Args, ')')
	case *MethodCallExpr:
		writeExpr(b, x.Recv)
		b.WriteByte('.')
		b.WriteString(x.Method.Name)
		writeArgs(b, '(', x.Args, ')')
	case *FieldExpr:
		writeExpr(b, x.X)
		b.WriteByte('.')
		b.WriteString(x.Field.Name)
	case *IndexExpr:
		writeExpr(b, x.X)
		b.WriteByte('[')
		writeExpr(b, x.Index)
		b.WriteByte(']')
	case *UnaryExpr:
		b.WriteString(x.Op.String())
		writeExpr(b, x.X)
	case *BinaryExpr:
		writeExpr(b, x.X)
		b.WriteByte(' ')
		b.WriteString(x.Op.String())
		b.WriteByte(' ')
		writeExpr(b, x.Y)
	case *ClosureExpr:
		if x.Move {
			b.WriteString("move ")
		}
		b.WriteByte('|')
		for i, p := range x.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.Name.Name)
			if p.Type != nil {
				b.WriteString(": ")
				b.WriteString(p.Type.Text)
			}
		}
		b.WriteString("| ")
		if x.Ret != nil {
			b.WriteString("-> ")
			b.WriteString(x.Ret.Text)
			b.WriteByte(' ')
		}
		writeExpr(b, x.Body)
	case *BlockExpr:
		writeBlock(b, x)
	case *IfExpr:
		b.WriteString("if ")
		writeExpr(b, x.Cond)
		b.WriteByte(' ')
		writeBlock(b, x.Then)
		if x.Else != nil {
			b.WriteString(" else ")
			writeExpr(b, x.Else)
		}
	case *ParenExpr:
		b.WriteByte('(')
		writeExpr(b, x.X)
		b.WriteByte(')')
	case *TupleExpr:
		b.WriteByte('(')
		for i, el := range x.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			writeExpr(b, el)
		}
		if len(x.Elems) == 1 {
			b.WriteByte(',')
		}
		b.WriteByte(')')
	case *ArrayExpr:
		writeArgs(b, '[', x.Elems, ']')
	case *MacroExpr:
		if x.Opaque {
			b.WriteString(x.Raw)
			return
		}
		b.WriteString(x.Name.Name)
		b.WriteByte('!')
		writeArgs(b, '(', x.Args, ')')
	}
}

func writeBlock(b *strings.Builder, x *BlockExpr) {
	if x == nil {
		b.WriteString("{}")
		return
	}
	if len(x.Stmts) == 0 && x.Tail == nil {
		b.WriteString("{}")
		return
	}
	b.WriteString("{ ")
	for _, s := range x.Stmts {
		if s.Let != nil {
			b.WriteString("let ")
			b.WriteString(s.Let.Name.Name)
			if s.Let.Type != nil {
				b.WriteString(": ")
				b.WriteString(s.Let.Type.Text)
			}
			if s.Let.Value != nil {
				b.WriteString(" = ")
				writeExpr(b, s.Let.Value)
			}
		} else {
			writeExpr(b, s.Expr)
		}
		b.WriteString("; ")
	}
	if x.Tail != nil {
		writeExpr(b, x.Tail)
		b.WriteByte(' ')
	}
	b.WriteByte('}')
}

func writeArgs(b *strings.Builder, open byte, args []Expr, close byte) {
	b.WriteByte(open)
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		writeExpr(b, a)
	}
	b.WriteByte(close)
}
