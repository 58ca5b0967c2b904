// Package classify sorts raw attributes into their categories and checks
// that each one has the shape its category requires.
package classify

import (
	"fmt"
	"strings"
	"unicode"

	"viewc/internal/ast"
	"viewc/internal/diag"
	"viewc/internal/source"
)

// Classify rewrites every raw attribute of the view in place. Rejected
// attributes become ast.AttrInvalid so later stages skip them. A component
// tag carrying a slot marker becomes an ast.NodeSlot.
func Classify(v *ast.View, r diag.Reporter) {
	if v == nil {
		return
	}
	c := classifier{r: r}
	ast.Inspect(v.Root, func(n *ast.Node) bool {
		if n.IsTag() {
			c.node(n)
		}
		return true
	})
}

type classifier struct {
	r diag.Reporter
}

func (c *classifier) node(n *ast.Node) {
	for _, a := range n.Attrs {
		if a.Kind == ast.AttrRaw {
			c.attr(n, a)
		}
	}
	n.Attrs = mergeLists(n.Attrs)
	c.duplicates(n)

	if marker := n.Attr(ast.AttrSlotMarker); marker != nil {
		switch n.Kind {
		case ast.NodeComponent:
			n.Kind = ast.NodeSlot
		case ast.NodeElement:
			c.shape(marker, fmt.Sprintf("`slot` cannot be used on the element `<%s>`; only slot tags can be routed to a parent", n.Name))
		}
	}
}

// Category prefixes of attribute keys.
var prefixes = map[string]ast.AttrKind{
	"on":    ast.AttrEvent,
	"prop":  ast.AttrDomProperty,
	"class": ast.AttrClass,
	"style": ast.AttrStyle,
	"use":   ast.AttrDirective,
	"clone": ast.AttrCloneCapture,
	"let":   ast.AttrChildrenLet,
	"slot":  ast.AttrSlotMarker,
}

func (c *classifier) attr(n *ast.Node, a *ast.Attr) {
	if a.Braced {
		c.braced(a)
		return
	}

	kind, name, nameSpan := split(a)
	a.Kind, a.Name, a.NameSpan = kind, name, nameSpan

	switch kind {
	case ast.AttrEvent, ast.AttrDomProperty, ast.AttrClass, ast.AttrStyle:
		switch {
		case name == "":
			c.shape(a, fmt.Sprintf("expected a name after `%s`", a.Key))
		case !a.HasValue():
			c.shape(a, fmt.Sprintf("`%s` requires a value: `%s=...`", a.Key, a.Key))
		}
	case ast.AttrDirective:
		if name == "" {
			c.shape(a, "expected a directive name after `use:`")
		}
	case ast.AttrSlotMarker:
		if a.HasValue() {
			c.shape(a, "`slot` takes no value; write `slot` or `slot:field`")
		}
	case ast.AttrChildrenLet, ast.AttrCloneCapture:
		switch {
		case a.HasValue():
			c.shape(a, fmt.Sprintf("`%s` takes no value", a.Key))
		case name != "" && !isIdent(name):
			c.shape(a, fmt.Sprintf("`%s` is not a valid binding name", name))
		case name != "":
			a.Idents = []ast.Binding{{Name: name, Span: nameSpan, KeySpan: a.KeySpan}}
		}
	case ast.AttrProp:
		if a.HasValue() {
			return
		}
		switch {
		case n.Kind == ast.NodeElement:
			// A bare element attribute is a boolean attribute.
			a.Value = &ast.LitExpr{Kind: ast.LitBool, Raw: "true", Value: "true", Sp: a.KeySpan}
			a.Shorthand = true
		case isIdent(a.Key):
			a.Value = &ast.PathExpr{Segments: []ast.Ident{{Name: a.Key, Span: a.KeySpan}}, Sp: a.KeySpan}
			a.Shorthand = true
		default:
			c.shape(a, fmt.Sprintf("`%s` requires a value", a.Key))
		}
	}
}

func (c *classifier) braced(a *ast.Attr) {
	if a.Key != ".." {
		c.shape(a, "a braced attribute must be a spread: `{..expr}`")
		return
	}
	a.Kind = ast.AttrSpread
	a.Name = ""
	if !a.HasValue() {
		c.shape(a, "expected an expression after `..`")
	}
}

// split separates the category prefix from a key. Unknown prefixes such as
// `xlink:href` stay part of a plain prop name.
func split(a *ast.Attr) (ast.AttrKind, string, source.Span) {
	key := a.Key
	prefix, rest, hasColon := strings.Cut(key, ":")
	kind, known := prefixes[prefix]
	if !known {
		return ast.AttrProp, key, a.KeySpan
	}
	if !hasColon {
		switch kind {
		case ast.AttrSlotMarker, ast.AttrChildrenLet, ast.AttrCloneCapture:
			return kind, "", source.Span{File: a.KeySpan.File, Start: a.KeySpan.End, End: a.KeySpan.End}
		}
		// `class=...`, `style=...` and friends are plain props.
		return ast.AttrProp, key, a.KeySpan
	}
	nameSpan := a.KeySpan
	nameSpan.Start += uint32(len(prefix) + 1)
	if nameSpan.Start > nameSpan.End {
		nameSpan.Start = nameSpan.End
	}
	return kind, rest, nameSpan
}

// mergeLists folds consecutive `let:` (and `clone:`) attributes into one
// attribute whose span covers them all.
func mergeLists(attrs []*ast.Attr) []*ast.Attr {
	out := attrs[:0]
	for _, a := range attrs {
		if len(out) > 0 {
			prev := out[len(out)-1]
			if prev.Kind == a.Kind && (a.Kind == ast.AttrChildrenLet || a.Kind == ast.AttrCloneCapture) {
				prev.Idents = append(prev.Idents, a.Idents...)
				prev.Span = prev.Span.Cover(a.Span)
				prev.KeySpan = prev.KeySpan.Cover(a.KeySpan)
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

func (c *classifier) duplicates(n *ast.Node) {
	props := map[string]*ast.Attr{}
	var firstSlot, firstLet *ast.Attr
	for _, a := range n.Attrs {
		switch a.Kind {
		case ast.AttrProp:
			if prev, ok := props[a.Name]; ok {
				c.duplicate(a, prev, fmt.Sprintf("prop `%s` is set more than once", a.Name))
				continue
			}
			props[a.Name] = a
		case ast.AttrSlotMarker:
			if firstSlot != nil {
				c.duplicate(a, firstSlot, "a tag can be routed to only one slot")
				continue
			}
			firstSlot = a
		case ast.AttrChildrenLet:
			if firstLet != nil {
				c.duplicate(a, firstLet, "`let:` bindings must be written together")
				continue
			}
			firstLet = a
		}
	}
}

func (c *classifier) duplicate(a, prev *ast.Attr, msg string) {
	a.Kind = ast.AttrInvalid
	if c.r == nil {
		return
	}
	diag.ReportError(c.r, diag.SynDuplicateAttribute, a.KeySpan, msg).
		WithNote(prev.KeySpan, "first written here").
		Emit()
}

func (c *classifier) shape(a *ast.Attr, msg string) {
	a.Kind = ast.AttrInvalid
	if c.r == nil {
		return
	}
	diag.ReportError(c.r, diag.SynAttributeShape, a.Span, msg).Emit()
}

// isIdent reports whether s is a single identifier (no `-` or `:`).
func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case i > 0 && '0' <= r && r <= '9':
		case r > 0x7f && (unicode.IsLetter(r) || i > 0 && unicode.IsDigit(r)):
		default:
			return false
		}
	}
	return true
}
