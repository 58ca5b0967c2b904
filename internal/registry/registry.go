// Package registry holds the read-only table of declared components, slots,
// structs and scope items a view is resolved against.
package registry

import (
	"sort"
	"strings"

	"viewc/internal/ast"
	"viewc/internal/source"
	"viewc/internal/types"
)

// Cardinality is how many children a slot field accepts.
type Cardinality uint8

const (
	ExactlyOne Cardinality = iota
	AtMostOne
	ZeroOrMore
)

func (c Cardinality) String() string {
	switch c {
	case ExactlyOne:
		return "exactly one"
	case AtMostOne:
		return "at most one"
	case ZeroOrMore:
		return "zero or more"
	default:
		return "?"
	}
}

// Accepts reports whether n children satisfy the cardinality.
func (c Cardinality) Accepts(n int) bool {
	switch c {
	case ExactlyOne:
		return n == 1
	case AtMostOne:
		return n <= 1
	default:
		return true
	}
}

// ChildrenKind is how a component receives its non-slot children.
type ChildrenKind uint8

const (
	ChildrenNone ChildrenKind = iota
	ChildrenOpaque
	ChildrenClosure
)

func (k ChildrenKind) String() string {
	switch k {
	case ChildrenNone:
		return "none"
	case ChildrenOpaque:
		return "opaque"
	case ChildrenClosure:
		return "closure"
	default:
		return "?"
	}
}

// Children describes the children parameter. For closures Params are the
// declared parameter types; Type is the declared parameter type itself.
type Children struct {
	Kind   ChildrenKind
	Type   *types.Type
	Params []*types.Type
	Ret    *types.Type
}

type GenericParam struct {
	Name   string
	Bounds []*types.Type
}

type Prop struct {
	Name     string
	Type     *types.Type
	Optional bool
	Into     bool
}

type SlotField struct {
	Name        string
	Slot        string
	Type        *types.Type
	Cardinality Cardinality
}

// Component describes a component or a slot struct. Props and Slots are
// sorted by name.
type Component struct {
	Name     string
	IsSlot   bool
	Generics []GenericParam
	Props    []Prop
	Children Children
	Slots    []SlotField
	Decl     source.Span
}

func (c *Component) Prop(name string) (Prop, bool) {
	i := sort.Search(len(c.Props), func(i int) bool { return c.Props[i].Name >= name })
	if i < len(c.Props) && c.Props[i].Name == name {
		return c.Props[i], true
	}
	return Prop{}, false
}

func (c *Component) Slot(name string) (SlotField, bool) {
	for _, f := range c.Slots {
		if f.Name == name {
			return f, true
		}
	}
	return SlotField{}, false
}

// GenericNames lists the generic parameter names in declaration order.
func (c *Component) GenericNames() []string {
	out := make([]string, len(c.Generics))
	for i, g := range c.Generics {
		out[i] = g.Name
	}
	return out
}

func (c *Component) Generic(name string) (GenericParam, bool) {
	for _, g := range c.Generics {
		if g.Name == name {
			return g, true
		}
	}
	return GenericParam{}, false
}

// Kind returns "component" or "slot".
func (c *Component) Kind() string {
	if c.IsSlot {
		return "slot"
	}
	return "component"
}

// Signature renders the name with its generic parameters and bounds, as
// in `List<C: Fn(String) -> IV, IV: IntoView>`.
func (c *Component) Signature() string {
	if len(c.Generics) == 0 {
		return c.Name
	}
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('<')
	for i, g := range c.Generics {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(g.Name)
		for j, bound := range g.Bounds {
			if j == 0 {
				b.WriteString(": ")
			} else {
				b.WriteString(" + ")
			}
			b.WriteString(bound.String())
		}
	}
	b.WriteByte('>')
	return b.String()
}

// String renders the children parameter: none, opaque or the closure
// signature.
func (ch Children) String() string {
	if ch.Kind != ChildrenClosure {
		return ch.Kind.String()
	}
	var b strings.Builder
	b.WriteString("Fn(")
	for i, p := range ch.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	if ch.Ret != nil {
		b.WriteString(" -> ")
		b.WriteString(ch.Ret.String())
	}
	return b.String()
}

type Struct struct {
	Name   string
	Caps   map[types.Cap]bool
	Unit   bool
	Fields map[string]*types.Type
}

// Registry is frozen: every method is safe for concurrent use.
type Registry struct {
	components map[string]*Component
	slots      map[string]*Component
	structs    map[string]*Struct
	scope      map[string]*types.Type
	digest     [32]byte
}

// Lookup finds a component by tag name; a path such as ui::Button falls
// back to its last segment.
func (r *Registry) Lookup(name string) (*Component, bool) {
	return lookup(r.components, name)
}

// LookupSlotType finds a slot struct by tag name.
func (r *Registry) LookupSlotType(name string) (*Component, bool) {
	return lookup(r.slots, name)
}

// LookupSlot finds the slot field name declared by owner.
func (r *Registry) LookupSlot(owner *Component, name string) (SlotField, bool) {
	if owner == nil {
		return SlotField{}, false
	}
	return owner.Slot(name)
}

func lookup(m map[string]*Component, name string) (*Component, bool) {
	if c, ok := m[name]; ok {
		return c, true
	}
	if base := ast.BaseName(name); base != name {
		c, ok := m[base]
		return c, ok
	}
	return nil, false
}

func (r *Registry) Struct(name string) (*Struct, bool) {
	s, ok := r.structs[name]
	return s, ok
}

// ScopeType returns the type of a scope item or of a unit struct value.
func (r *Registry) ScopeType(name string) (*types.Type, bool) {
	if t, ok := r.scope[name]; ok {
		return t, true
	}
	if s, ok := r.structs[name]; ok && s.Unit {
		return types.Named(name), true
	}
	return nil, false
}

// Capability implements types.Capabilities for declared structs.
func (r *Registry) Capability(name string, c types.Cap) bool {
	s, ok := r.structs[name]
	return ok && s.Caps[c]
}

// Env returns a type environment backed by the registry's structs.
func (r *Registry) Env() types.Env {
	return types.Env{Caps: r}
}

// Names lists component names, sorted.
func (r *Registry) Names() []string { return sortedKeys(r.components) }

// SlotNames lists slot struct names, sorted.
func (r *Registry) SlotNames() []string { return sortedKeys(r.slots) }

// Digest identifies the registry contents; equal registries share it.
func (r *Registry) Digest() [32]byte { return r.digest }

func sortedKeys(m map[string]*Component) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
