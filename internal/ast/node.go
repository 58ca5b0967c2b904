package ast

import (
	"viewc/internal/source"
)

// NodeKind enumerates markup node variants.
type NodeKind uint8

const (
	// NodeElement is a built-in or custom HTML element (`div`, `my-element`).
	NodeElement NodeKind = iota
	// NodeComponent is a user component looked up in the registry.
	NodeComponent
	// NodeSlot is a component-shaped node routed into a parent slot field.
	NodeSlot
	// NodeFragment is `<> ... </>` or the implicit wrapper of several roots.
	NodeFragment
	// NodeText is a string literal child.
	NodeText
	// NodeExpr is a `{ expr }` child.
	NodeExpr
)

var nodeKindNames = [...]string{
	NodeElement:   "Element",
	NodeComponent: "Component",
	NodeSlot:      "Slot",
	NodeFragment:  "Fragment",
	NodeText:      "Text",
	NodeExpr:      "Expr",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "NodeKind(?)"
}

// Ident is a name together with where it was written.
type Ident struct {
	Name string
	Span source.Span
}

// TypeArg is one generic argument as written, e.g. `Vec<String>`.
type TypeArg struct {
	Text string
	Span source.Span
}

// Node is one markup node. Tag-shaped nodes (element, component, slot) fill
// the tag fields; text and expression nodes leave them empty.
type Node struct {
	Kind NodeKind
	Span source.Span

	Name         string
	NameSpan     source.Span
	Generics     []TypeArg
	GenericsSpan source.Span // covers `<` .. `>`; empty without generics
	OpenSpan     source.Span // `<` .. `>` or `/>`
	CloseSpan    source.Span // `</Name>`; empty when self-closing
	SelfClosing  bool
	// Implicit marks the fragment synthesized around several roots.
	Implicit bool

	Attrs    []*Attr
	Children []*Node

	// Text holds the decoded value of a NodeText literal; Raw keeps the
	// literal as written.
	Text string
	Raw  string
	// Expr is the braced expression of a NodeExpr; nil for `{}`.
	Expr Expr
}

// IsTag reports whether the node is written as a tag with a name.
func (n *Node) IsTag() bool {
	switch n.Kind {
	case NodeElement, NodeComponent, NodeSlot:
		return true
	}
	return false
}

// AttrsOf returns the attributes of the given kind in source order.
func (n *Node) AttrsOf(kind AttrKind) []*Attr {
	var out []*Attr
	for _, a := range n.Attrs {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

// Attr returns the first attribute of the given kind.
func (n *Node) Attr(kind AttrKind) *Attr {
	for _, a := range n.Attrs {
		if a.Kind == kind {
			return a
		}
	}
	return nil
}

// ChildrenSpan covers all children, or is empty when there are none.
func (n *Node) ChildrenSpan() source.Span {
	if len(n.Children) == 0 {
		return source.Span{}
	}
	return n.Children[0].Span.Cover(n.Children[len(n.Children)-1].Span)
}

// View is the parsed body of one `view!` invocation.
type View struct {
	Span source.Span
	// Class is the optional leading `class=expr,` applied to every root element.
	Class     Expr
	ClassSpan source.Span
	Root      *Node
}
