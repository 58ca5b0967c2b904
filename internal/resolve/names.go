package resolve

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html/atom"

	"viewc/internal/ast"
	"viewc/internal/diag"
	"viewc/internal/fix"
	"viewc/internal/registry"
	"viewc/internal/source"
	"viewc/internal/types"
)

func (rs *resolver) element(n *ast.Node) {
	if let := n.Attr(ast.AttrChildrenLet); let != nil {
		diag.ReportError(rs.r, diag.ResUnexpectedChildrenBinding, let.Span,
			fmt.Sprintf("the element `<%s>` does not take its children as a closure", n.Name)).Emit()
	}
	if strings.Contains(n.Name, "-") || atom.Lookup([]byte(n.Name)) != 0 {
		return
	}
	diag.ReportWarning(rs.r, diag.ResUnknownElement, n.NameSpan,
		fmt.Sprintf("`<%s>` is not a known HTML element; it will be emitted as written", n.Name)).Emit()
}

func (rs *resolver) component(n *ast.Node, info *Info) {
	c, ok := rs.reg.Lookup(n.Name)
	if !ok {
		b := diag.ReportError(rs.r, diag.ResUnknownComponent, n.NameSpan,
			fmt.Sprintf("cannot find component `%s`", n.Name))
		if _, isSlot := rs.reg.LookupSlotType(n.Name); isSlot {
			b.WithNote(n.NameSpan, fmt.Sprintf("`%s` is a slot; mark it with `slot` to route it to a parent field", n.Name)).
				WithFixSuggestion(fix.InsertText("add `slot`", n.NameSpan.Tail(), " slot", "", fix.Preferred()))
		} else {
			rs.suggest(b, n, rs.reg.Names())
		}
		b.Emit()
		return
	}
	info.Component = c
	rs.notApplicable(n)
	rs.generics(n, c, info)
}

func (rs *resolver) slotTag(n *ast.Node, info *Info) {
	c, ok := rs.reg.LookupSlotType(n.Name)
	if !ok {
		b := diag.ReportError(rs.r, diag.ResUnknownSlot, n.NameSpan,
			fmt.Sprintf("cannot find slot `%s`", n.Name))
		if _, isComp := rs.reg.Lookup(n.Name); isComp {
			b.WithNote(n.NameSpan, fmt.Sprintf("`%s` is a component, not a slot", n.Name))
		} else {
			rs.suggest(b, n, rs.reg.SlotNames())
		}
		b.Emit()
		return
	}
	info.Component = c
	rs.notApplicable(n)
	rs.generics(n, c, info)
}

// notApplicable rejects element-only attributes on components and slots.
func (rs *resolver) notApplicable(n *ast.Node) {
	for _, a := range n.Attrs {
		switch a.Kind {
		case ast.AttrEvent, ast.AttrDomProperty, ast.AttrClass, ast.AttrStyle, ast.AttrSpread:
			diag.ReportError(rs.r, diag.ResAttrNotApplicable, a.KeySpan,
				fmt.Sprintf("`%s` only applies to elements, not to the %s `<%s>`", a.Key, kindOf(n), n.Name)).Emit()
			a.Kind = ast.AttrInvalid
		}
	}
}

func kindOf(n *ast.Node) string {
	if n.Kind == ast.NodeSlot {
		return "slot"
	}
	return "component"
}

func (rs *resolver) generics(n *ast.Node, c *registry.Component, info *Info) {
	if len(n.Generics) == 0 {
		return
	}
	if len(n.Generics) != len(c.Generics) {
		diag.ReportError(rs.r, diag.ResGenericArityMismatch, n.GenericsSpan,
			fmt.Sprintf("`%s` takes %d generic argument(s) but %d were supplied",
				n.Name, len(c.Generics), len(n.Generics))).Emit()
		return
	}
	info.Generics = make(map[string]*types.Type, len(n.Generics))
	for i, g := range n.Generics {
		t, err := types.Parse(g.Text)
		if err != nil {
			t = types.Unknown
		}
		info.Generics[c.Generics[i].Name] = t
	}
}

// suggest attaches a did-you-mean note and a rename fix covering both the
// opening and the closing tag.
func (rs *resolver) suggest(b *diag.ReportBuilder, n *ast.Node, names []string) {
	best := closest(ast.BaseName(n.Name), names)
	if best == "" {
		return
	}
	b.WithNote(n.NameSpan, fmt.Sprintf("did you mean `%s`?", best))
	spans := []source.Span{n.NameSpan}
	if cs := n.CloseSpan; !cs.Empty() && int(cs.Len()) == len(n.Name)+3 {
		spans = append(spans, source.Span{File: cs.File, Start: cs.Start + 2, End: cs.End - 1})
	}
	b.WithFixSuggestion(fix.Rename(fmt.Sprintf("rename to `%s`", best), spans, n.Name, best, fix.Preferred()))
}

// closest returns the name within edit distance 2 of target, preferring the
// smallest distance and then alphabetical order.
func closest(target string, names []string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	best, bestDist := "", 3
	for _, name := range sorted {
		if d := distance(target, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// distance is the Levenshtein distance over runes.
func distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
