// Package lower turns a resolved view into IR builder calls. Every emitted
// node takes the span of the syntax it came from; where an earlier stage
// already reported a failure, a typed placeholder takes its place so the
// rest of the tree is still lowered and checked.
package lower

import (
	"slices"

	"viewc/internal/ast"
	"viewc/internal/ir"
	"viewc/internal/registry"
	"viewc/internal/resolve"
	"viewc/internal/source"
	"viewc/internal/types"
)

// Occupancy tells whether an error was already reported at a span.
// *diag.Collector implements it.
type Occupancy interface {
	Occupied(sp source.Span) bool
}

// Lower lowers res. occ may be nil. It returns nil for a nil view.
func Lower(res *resolve.Result, occ Occupancy) *ir.Expr {
	if res == nil || res.View == nil || res.View.Root == nil {
		return nil
	}
	l := &lowerer{res: res, occ: occ}
	v := res.View
	out := &ir.Expr{Kind: ir.KindView, Span: v.Span}
	if v.Class != nil {
		out.Class = l.value(v.Class, types.Str)
	}
	out.Args = []*ir.Expr{l.node(v.Root)}
	return out
}

type lowerer struct {
	res *resolve.Result
	occ Occupancy
}

func (l *lowerer) occupied(sp source.Span) bool {
	return l.occ != nil && l.occ.Occupied(sp)
}

func (l *lowerer) node(n *ast.Node) *ir.Expr {
	switch n.Kind {
	case ast.NodeElement:
		return l.element(n)
	case ast.NodeComponent, ast.NodeSlot:
		return l.component(n)
	case ast.NodeFragment:
		out := &ir.Expr{Kind: ir.KindFragment, Span: n.Span}
		info := l.res.Of(n)
		for _, ch := range n.Children {
			if e, ok := l.child(info, ch); ok {
				out.Args = append(out.Args, e)
			}
		}
		return out
	case ast.NodeText:
		return &ir.Expr{Kind: ir.KindText, Span: n.Span, Name: n.Text}
	case ast.NodeExpr:
		if n.Expr == nil {
			// `{}` renders nothing.
			return &ir.Expr{Kind: ir.KindFragment, Span: n.Span}
		}
		return l.value(n.Expr, types.Renderable)
	}
	return &ir.Expr{Kind: ir.KindPlaceholder, Span: n.Span, Type: types.Unknown}
}

// child lowers ch as a child of a node without slot fields. A slot child
// the resolver set aside sits behind a placeholder. ok is false when ch is
// neither plain nor rejected.
func (l *lowerer) child(info *resolve.Info, ch *ast.Node) (e *ir.Expr, ok bool) {
	switch {
	case slices.Contains(info.Rejected, ch):
		return l.rejected(ch), true
	case slices.Contains(info.Plain, ch):
		return l.node(ch), true
	}
	return nil, false
}

func (l *lowerer) rejected(ch *ast.Node) *ir.Expr {
	return &ir.Expr{Kind: ir.KindPlaceholder, Span: ch.Span, Type: types.Unknown, Args: []*ir.Expr{l.node(ch)}}
}

func (l *lowerer) nodes(list []*ast.Node) []*ir.Expr {
	if len(list) == 0 {
		return nil
	}
	out := make([]*ir.Expr, len(list))
	for i, n := range list {
		out[i] = l.node(n)
	}
	return out
}

// value wraps a host expression. A value that failed to parse, or whose
// span already carries an error, becomes a placeholder of the expected type.
func (l *lowerer) value(e ast.Expr, expected *types.Type) *ir.Expr {
	sp := e.Span()
	if _, bad := e.(*ast.BadExpr); bad || l.occupied(sp) {
		if expected == nil {
			expected = types.Unknown
		}
		return &ir.Expr{Kind: ir.KindPlaceholder, Span: sp, Type: expected}
	}
	return &ir.Expr{Kind: ir.KindValue, Span: sp, Value: e}
}

// setter applies method to recv. The call is attributed to the attribute
// key, its argument to the value.
func setter(recv *ir.Expr, method string, a *ast.Attr, args ...*ir.Expr) *ir.Expr {
	return &ir.Expr{
		Kind:    ir.KindCall,
		Span:    a.KeySpan,
		Name:    method,
		Key:     a.Name,
		KeySpan: a.NameSpan,
		Recv:    recv,
		Args:    args,
	}
}

func captures(a *ast.Attr) []ir.Capture {
	out := make([]ir.Capture, len(a.Idents))
	for i, id := range a.Idents {
		out[i] = ir.Capture{Name: id.Name, Span: id.Span, KeySpan: id.KeySpan}
	}
	return out
}

var elementSetters = map[ast.AttrKind]string{
	ast.AttrProp:        ir.MethodAttr,
	ast.AttrEvent:       ir.MethodOn,
	ast.AttrDomProperty: ir.MethodProperty,
	ast.AttrClass:       ir.MethodClass,
	ast.AttrStyle:       ir.MethodStyle,
	ast.AttrSpread:      ir.MethodSpread,
}

func (l *lowerer) element(n *ast.Node) *ir.Expr {
	head := &ir.Expr{Kind: ir.KindElement, Span: n.NameSpan, Name: n.Name}
	cur := head
	for _, a := range n.Attrs {
		switch a.Kind {
		case ast.AttrDirective:
			cur = l.directive(cur, a)
			continue
		case ast.AttrCloneCapture:
			head.Captures = append(head.Captures, captures(a)...)
			continue
		}
		method, ok := elementSetters[a.Kind]
		if !ok || !a.HasValue() {
			continue
		}
		cur = setter(cur, method, a, l.value(a.Value, nil))
	}
	info := l.res.Of(n)
	for _, ch := range n.Children {
		if e, ok := l.child(info, ch); ok {
			cur = &ir.Expr{Kind: ir.KindCall, Span: ch.Span, Name: ir.MethodChild, Recv: cur, Args: []*ir.Expr{e}}
		}
	}
	return cur
}

func (l *lowerer) directive(cur *ir.Expr, a *ast.Attr) *ir.Expr {
	if !a.HasValue() {
		return setter(cur, ir.MethodDirective, a)
	}
	return setter(cur, ir.MethodDirective, a, l.value(a.Value, nil))
}

func (l *lowerer) component(n *ast.Node) *ir.Expr {
	info := l.res.Of(n)
	if info.Component == nil {
		return l.unresolved(n, info)
	}
	c := info.Component
	kind := ir.KindComponent
	if c.IsSlot {
		kind = ir.KindSlot
	}
	head := &ir.Expr{
		Kind:         kind,
		Span:         n.NameSpan,
		Name:         c.Name,
		Generics:     generics(n, c, info),
		GenericsSpan: n.GenericsSpan,
	}
	cur := head
	var caps []ir.Capture
	for _, a := range n.Attrs {
		switch a.Kind {
		case ast.AttrProp:
			var expected *types.Type
			if p, ok := c.Prop(a.Name); ok {
				expected = types.Substitute(p.Type, info.Generics)
			}
			cur = setter(cur, ir.MethodProp, a, l.value(a.Value, expected))
		case ast.AttrDirective:
			cur = l.directive(cur, a)
		case ast.AttrCloneCapture:
			caps = append(caps, captures(a)...)
		}
	}
	for _, f := range c.Slots {
		routed := info.Routed[f.Name]
		if len(routed) == 0 {
			continue
		}
		sp := routed[0].NameSpan
		if m := routed[0].Attr(ast.AttrSlotMarker); m != nil {
			sp = m.Span
		}
		cur = &ir.Expr{Kind: ir.KindCall, Span: sp, Name: ir.MethodSlot, Key: f.Name, Recv: cur, Args: l.nodes(routed)}
	}
	for _, ch := range info.Rejected {
		cur = &ir.Expr{Kind: ir.KindCall, Span: ch.Span, Name: ir.MethodChild, Recv: cur, Args: []*ir.Expr{l.rejected(ch)}}
	}
	cur, caps = l.children(cur, n, info, caps)
	head.Captures = caps
	return &ir.Expr{Kind: ir.KindBuild, Span: n.NameSpan, Recv: cur}
}

// generics returns the explicit generic arguments in declaration order.
// A list the resolver rejected lowers to unknown types so that nothing
// downstream checks bounds against it.
func generics(n *ast.Node, c *registry.Component, info *resolve.Info) []*types.Type {
	if len(n.Generics) == 0 {
		return nil
	}
	out := make([]*types.Type, len(c.Generics))
	for i, g := range c.Generics {
		out[i] = types.Unknown
		if t, ok := info.Generics[g.Name]; ok {
			out[i] = t
		}
	}
	return out
}

// children emits the `.children(...)` setter. It returns the captures not
// consumed by a children closure.
func (l *lowerer) children(cur *ir.Expr, n *ast.Node, info *resolve.Info, caps []ir.Capture) (*ir.Expr, []ir.Capture) {
	c := info.Component
	let := n.Attr(ast.AttrChildrenLet)
	if len(info.Plain) == 0 {
		return cur, caps
	}
	sp := info.Plain[0].Span.Cover(info.Plain[len(info.Plain)-1].Span)
	kids := l.nodes(info.Plain)

	var arg *ir.Expr
	if c.Children.Kind == registry.ChildrenNone {
		// Rejected children are kept so their own errors still surface.
		arg = &ir.Expr{Kind: ir.KindPlaceholder, Span: sp, Type: types.Unit, Args: kids}
	} else {
		clo := &ir.Expr{Kind: ir.KindClosure, Span: sp, Args: kids, Captures: caps}
		caps = nil
		switch {
		case len(info.Bindings) > 0:
			for _, b := range info.Bindings {
				clo.Params = append(clo.Params, ir.Param{Name: b.Name, Span: b.Span, Type: b.Type})
			}
		case let != nil:
			// A rejected binding list still names the values the children use.
			for _, id := range let.Idents {
				clo.Params = append(clo.Params, ir.Param{Name: id.Name, Span: id.Span, Type: types.Unknown})
			}
		}
		arg = clo
		if info.ChildrenFailed {
			arg = &ir.Expr{
				Kind: ir.KindPlaceholder,
				Span: sp,
				Type: types.Substitute(c.Children.Type, info.Generics),
				Args: []*ir.Expr{clo},
			}
		}
	}
	return &ir.Expr{Kind: ir.KindCall, Span: sp, Name: ir.MethodChildren, Recv: cur, Args: []*ir.Expr{arg}}, caps
}

// unresolved lowers a component or slot the resolver could not find. Its
// attribute values and children are kept behind a placeholder head so they
// are still checked on their own.
func (l *lowerer) unresolved(n *ast.Node, info *resolve.Info) *ir.Expr {
	t := types.View("View")
	if n.Kind == ast.NodeSlot {
		t = types.Unknown
	}
	head := &ir.Expr{Kind: ir.KindPlaceholder, Span: n.NameSpan, Name: n.Name, Type: t}
	cur := head
	for _, a := range n.Attrs {
		switch a.Kind {
		case ast.AttrProp:
			if a.HasValue() {
				cur = setter(cur, ir.MethodProp, a, l.value(a.Value, nil))
			}
		case ast.AttrDirective:
			cur = l.directive(cur, a)
		case ast.AttrCloneCapture:
			head.Captures = append(head.Captures, captures(a)...)
		}
	}
	for _, ch := range n.Children {
		if e, ok := l.child(info, ch); ok {
			cur = &ir.Expr{Kind: ir.KindCall, Span: ch.Span, Name: ir.MethodChild, Recv: cur, Args: []*ir.Expr{e}}
		}
	}
	return cur
}
