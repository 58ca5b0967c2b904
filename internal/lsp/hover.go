package lsp

import (
	"encoding/json"
	"fmt"
	"strings"

	"viewc/internal/ast"
	"viewc/internal/registry"
)

func (s *Server) handleHover(msg *rpcMessage) error {
	var params textDocumentPositionParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	a := s.analysisFor(params.TextDocument.URI)
	if a == nil {
		return s.sendResponse(msg.ID, nil)
	}
	return s.sendResponse(msg.ID, buildHover(a, params.Position))
}

func buildHover(a *Analysis, pos position) *hover {
	off := offsetForPositionInFile(a.File, pos)
	h := a.locate(off)
	if h.node == nil {
		return nil
	}
	var text string
	switch {
	case h.binding != nil:
		text = bindingHover(h)
	case h.attr != nil:
		text = attrHover(h)
	default:
		text = tagHover(h)
	}
	if text == "" {
		return nil
	}
	r := rangeForSpan(a.File, h.span)
	return &hover{Contents: markupContent{Kind: "markdown", Value: text}, Range: &r}
}

func tagHover(h hit) string {
	n := h.node
	if n.Kind == ast.NodeElement {
		if strings.Contains(n.Name, "-") {
			return fmt.Sprintf("custom element `<%s>`", n.Name)
		}
		return fmt.Sprintf("HTML element `<%s>`", n.Name)
	}
	c := h.component()
	if c == nil {
		return fmt.Sprintf("`%s` is not declared in the registry", n.Name)
	}
	return componentMarkdown(c, h.info().Field)
}

// componentMarkdown documents a component or slot the way the registry
// declares it.
func componentMarkdown(c *registry.Component, field *registry.SlotField) string {
	var b strings.Builder
	fmt.Fprintf(&b, "```rust\n%s %s\n```\n", c.Kind(), c.Signature())
	if field != nil {
		fmt.Fprintf(&b, "fills slot `%s` (%s)\n\n", field.Name, field.Cardinality)
	}
	if len(c.Props) > 0 {
		b.WriteString("**props**\n")
		for _, p := range c.Props {
			fmt.Fprintf(&b, "- `%s: %s`%s\n", p.Name, p.Type, propFlags(p))
		}
	}
	if len(c.Slots) > 0 {
		b.WriteString("**slots**\n")
		for _, f := range c.Slots {
			fmt.Fprintf(&b, "- `%s`: `%s` (%s)\n", f.Name, f.Slot, f.Cardinality)
		}
	}
	if c.Children.Kind != registry.ChildrenNone {
		fmt.Fprintf(&b, "**children**: `%s`\n", c.Children)
	}
	return strings.TrimRight(b.String(), "\n")
}

func propFlags(p registry.Prop) string {
	var flags []string
	if p.Optional {
		flags = append(flags, "optional")
	}
	if p.Into {
		flags = append(flags, "into")
	}
	if len(flags) == 0 {
		return ""
	}
	return " (" + strings.Join(flags, ", ") + ")"
}

func attrHover(h hit) string {
	a := h.attr
	switch a.Kind {
	case ast.AttrProp:
		c := h.component()
		if c == nil {
			return ""
		}
		p, ok := c.Prop(a.Name)
		if !ok {
			return fmt.Sprintf("`%s` has no prop `%s`", c.Name, a.Name)
		}
		return fmt.Sprintf("```rust\n%s: %s\n```\nprop of `%s`%s", p.Name, p.Type, c.Name, propFlags(p))
	case ast.AttrEvent:
		return fmt.Sprintf("event handler for `%s`", a.Name)
	case ast.AttrClass:
		return fmt.Sprintf("toggles class `%s`", a.Name)
	case ast.AttrStyle:
		return fmt.Sprintf("sets style `%s`", a.Name)
	case ast.AttrDomProperty:
		return fmt.Sprintf("sets DOM property `%s`", a.Name)
	case ast.AttrDirective:
		return fmt.Sprintf("directive `%s`", a.Name)
	case ast.AttrSlotMarker:
		if f := h.info().Field; f != nil {
			return fmt.Sprintf("routed to slot `%s` (%s)", f.Name, f.Cardinality)
		}
		return "slot marker"
	case ast.AttrRaw:
		if h.node.Kind == ast.NodeElement {
			return fmt.Sprintf("attribute `%s`", a.Key)
		}
	}
	return ""
}

func bindingHover(h hit) string {
	if h.attr.Kind == ast.AttrCloneCapture {
		return fmt.Sprintf("```rust\nlet %s = %s.clone()\n```", h.binding.Name, h.binding.Name)
	}
	b, ok := h.bindingType()
	if !ok {
		return ""
	}
	return fmt.Sprintf("```rust\nlet %s: %s\n```\nbound by `%s` children", b.Name, b.Type, h.node.Name)
}
