package resolve

import (
	"fmt"
	"strings"

	"viewc/internal/ast"
	"viewc/internal/diag"
	"viewc/internal/registry"
)

// bindSlots partitions the children of a resolved component or slot into
// routed slot children and plain children, then checks each declared field's
// cardinality.
func (rs *resolver) bindSlots(n *ast.Node, info *Info) {
	c := info.Component
	info.Routed = make(map[string][]*ast.Node)
	mismatched := make(map[*ast.Node]bool)
	for _, ch := range n.Children {
		if ch.Kind != ast.NodeSlot {
			info.Plain = append(info.Plain, ch)
			continue
		}
		child, resolved := rs.reg.LookupSlotType(ch.Name)
		if !resolved {
			// Already reported as an unknown slot; it does not count.
			info.Rejected = append(info.Rejected, ch)
			continue
		}
		marker := ch.Attr(ast.AttrSlotMarker)
		target := marker.Name
		if target == "" {
			target = ast.SnakeCase(ast.BaseName(ch.Name))
		}
		field, ok := c.Slot(target)
		if !ok {
			b := diag.ReportError(rs.r, diag.ResUndefinedSlot, marker.Span,
				fmt.Sprintf("the %s `<%s>` has no slot field `%s`", c.Kind(), n.Name, target))
			if len(c.Slots) > 0 {
				b.WithNote(n.NameSpan, "available slot fields: "+fieldList(c))
			}
			b.Emit()
			info.Rejected = append(info.Rejected, ch)
			continue
		}
		if child.Name != field.Slot {
			mismatched[ch] = true
			diag.ReportError(rs.r, diag.ResSlotTypeMismatch, ch.NameSpan,
				fmt.Sprintf("slot field `%s` of `<%s>` expects `<%s>`, found `<%s>`", field.Name, n.Name, field.Slot, ch.Name)).Emit()
		}
		f := field
		rs.info(ch).Field = &f
		info.Routed[field.Name] = append(info.Routed[field.Name], ch)
	}

	for _, f := range c.Slots {
		got := info.Routed[f.Name]
		if len(got) == 0 && f.Cardinality == registry.ExactlyOne {
			diag.ReportError(rs.r, diag.ResSlotMissing, n.NameSpan,
				fmt.Sprintf("missing slot `%s`: `<%s>` requires exactly one `<%s slot>` child", f.Name, n.Name, f.Slot)).Emit()
			continue
		}
		if f.Cardinality.Accepts(len(got)) {
			continue
		}
		for _, extra := range got[1:] {
			if mismatched[extra] {
				continue
			}
			diag.ReportError(rs.r, diag.ResSlotCardinalityExceeded, extra.NameSpan,
				fmt.Sprintf("slot `%s` of `<%s>` accepts %s `<%s>`, found %d", f.Name, n.Name, f.Cardinality, f.Slot, len(got))).
				WithNote(got[0].NameSpan, "first slot child here").
				Emit()
		}
	}
}

func fieldList(c *registry.Component) string {
	names := make([]string, len(c.Slots))
	for i, f := range c.Slots {
		names[i] = "`" + f.Name + "`"
	}
	return strings.Join(names, ", ")
}

// unroutable reports slot children under elements and fragments, which
// have no slot fields, and sets them aside; every other child is plain.
func (rs *resolver) unroutable(n *ast.Node, info *Info) {
	where := "a fragment"
	if n.Kind == ast.NodeElement {
		where = fmt.Sprintf("the element `<%s>`", n.Name)
	}
	for _, ch := range n.Children {
		if ch.Kind == ast.NodeSlot {
			rs.noSlotFields(ch, where)
			info.Rejected = append(info.Rejected, ch)
			continue
		}
		info.Plain = append(info.Plain, ch)
	}
}

func (rs *resolver) noSlotFields(ch *ast.Node, where string) {
	marker := ch.Attr(ast.AttrSlotMarker)
	if marker == nil {
		return
	}
	diag.ReportError(rs.r, diag.ResUndefinedSlot, marker.Span,
		fmt.Sprintf("`<%s>` is marked as a slot, but %s has no slot fields", ch.Name, where)).Emit()
}
