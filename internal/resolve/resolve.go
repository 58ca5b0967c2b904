// Package resolve binds a classified view to the registry: component and
// slot names, slot routing and children bindings.
package resolve

import (
	"viewc/internal/ast"
	"viewc/internal/diag"
	"viewc/internal/registry"
	"viewc/internal/source"
	"viewc/internal/types"
)

// Binding is one `let:` name entering scope for a node's children.
type Binding struct {
	Name string
	Span source.Span
	Type *types.Type
}

// Info is what the resolver learned about one node.
type Info struct {
	// Component is the descriptor of a resolved component or slot tag.
	Component *registry.Component
	// Generics holds explicitly written generic arguments by parameter name.
	Generics map[string]*types.Type
	// Field is the parent slot field a slot node is routed to.
	Field *registry.SlotField
	// Plain lists the children that reach the node's own children
	// parameter, in source order.
	Plain []*ast.Node
	// Routed lists slot children per field name, in source order.
	Routed map[string][]*ast.Node
	// Rejected lists slot children that could not be routed: the slot
	// type or field is unknown, or the node has no slot fields. They are
	// still lowered so their own errors surface.
	Rejected []*ast.Node
	// Bindings are the `let:` names visible to Plain children.
	Bindings []Binding
	// ChildrenFailed is set when a children diagnostic was reported.
	ChildrenFailed bool
}

// Result is the resolved view.
type Result struct {
	View *ast.View
	Info map[*ast.Node]*Info
}

// Of returns the info of n; never nil.
func (r *Result) Of(n *ast.Node) *Info {
	if info, ok := r.Info[n]; ok {
		return info
	}
	return &Info{}
}

// Resolve walks the view in pre-order. Every failure is reported and the
// node is left unresolved; siblings are unaffected.
func Resolve(v *ast.View, reg *registry.Registry, r diag.Reporter) *Result {
	if r == nil {
		r = diag.NopReporter{}
	}
	if reg == nil {
		reg, _ = registry.NewBuilder(nil).Freeze()
	}
	res := &Result{View: v, Info: make(map[*ast.Node]*Info)}
	if v == nil || v.Root == nil {
		return res
	}
	rs := &resolver{reg: reg, r: r, res: res}
	if v.Root.Kind == ast.NodeSlot {
		rs.noSlotFields(v.Root, "the view root")
	}
	rs.node(v.Root)
	return res
}

type resolver struct {
	reg *registry.Registry
	r   diag.Reporter
	res *Result
}

func (rs *resolver) info(n *ast.Node) *Info {
	info, ok := rs.res.Info[n]
	if !ok {
		info = &Info{}
		rs.res.Info[n] = info
	}
	return info
}

func (rs *resolver) node(n *ast.Node) {
	info := rs.info(n)
	switch n.Kind {
	case ast.NodeElement:
		rs.element(n)
	case ast.NodeComponent:
		rs.component(n, info)
	case ast.NodeSlot:
		rs.slotTag(n, info)
	}

	switch {
	case info.Component != nil:
		rs.bindSlots(n, info)
		rs.bindChildren(n, info)
	case n.Kind == ast.NodeComponent || n.Kind == ast.NodeSlot:
		// Unresolved: keep the children for lowering, bind nothing.
		for _, ch := range n.Children {
			if ch.Kind == ast.NodeSlot {
				info.Rejected = append(info.Rejected, ch)
				continue
			}
			info.Plain = append(info.Plain, ch)
		}
	default:
		rs.unroutable(n, info)
	}

	for _, ch := range n.Children {
		rs.node(ch)
	}
}
