package registry

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"viewc/internal/diag"
	"viewc/internal/source"
	"viewc/internal/types"
)

// ComponentSpec is the manifest form of a component or slot.
type ComponentSpec struct {
	Children string              `toml:"children" yaml:"children"`
	Generics []string            `toml:"generics" yaml:"generics"`
	Props    map[string]PropSpec `toml:"props" yaml:"props"`
	Slots    map[string]string   `toml:"slots" yaml:"slots"`
}

type PropSpec struct {
	Type     string `toml:"type" yaml:"type"`
	Optional bool   `toml:"optional" yaml:"optional"`
	Into     bool   `toml:"into" yaml:"into"`
}

type StructSpec struct {
	Clone      bool              `toml:"clone" yaml:"clone"`
	Renderable bool              `toml:"renderable" yaml:"renderable"`
	Attribute  bool              `toml:"attribute" yaml:"attribute"`
	Spread     bool              `toml:"spread" yaml:"spread"`
	Unit       bool              `toml:"unit" yaml:"unit"`
	Fields     map[string]string `toml:"fields" yaml:"fields"`
}

// DeclError is one malformed entry of a declaration. Text is the offending
// manifest text, used to place the diagnostic.
type DeclError struct {
	Decl string
	Text string
	Err  error
}

func (e *DeclError) Error() string {
	return fmt.Sprintf("%s: %v", e.Decl, e.Err)
}

func (e *DeclError) Unwrap() error { return e.Err }

type slotRef struct {
	owner *Component
	field SlotField
}

// Builder accumulates declarations until Freeze.
type Builder struct {
	components map[string]*Component
	slots      map[string]*Component
	structs    map[string]*Struct
	scope      map[string]*types.Type
	refs       []slotRef
	reporter   diag.Reporter
	frozen     bool
}

// NewBuilder returns an empty builder. Freeze reports into r, which may be nil.
func NewBuilder(r diag.Reporter) *Builder {
	if r == nil {
		r = diag.NopReporter{}
	}
	return &Builder{
		components: make(map[string]*Component),
		slots:      make(map[string]*Component),
		structs:    make(map[string]*Struct),
		scope:      make(map[string]*types.Type),
		reporter:   r,
	}
}

func (b *Builder) AddComponent(name string, spec ComponentSpec) error {
	return b.addComponent(name, spec, false, source.Span{})
}

func (b *Builder) AddSlot(name string, spec ComponentSpec) error {
	return b.addComponent(name, spec, true, source.Span{})
}

func (b *Builder) addComponent(name string, spec ComponentSpec, isSlot bool, decl source.Span) error {
	if b.frozen {
		return errors.New("registry: builder already frozen")
	}
	name = norm.NFC.String(strings.TrimSpace(name))
	table := b.components
	if isSlot {
		table = b.slots
	}
	if _, dup := table[name]; dup {
		return &DeclError{Decl: name, Text: name, Err: fmt.Errorf("duplicate declaration")}
	}
	c, err := buildComponent(name, spec, isSlot)
	if c == nil {
		return err
	}
	c.Decl = decl
	table[name] = c
	for _, f := range c.Slots {
		b.refs = append(b.refs, slotRef{owner: c, field: f})
	}
	return err
}

func buildComponent(name string, spec ComponentSpec, isSlot bool) (*Component, error) {
	var errs []error
	fail := func(text string, err error) {
		errs = append(errs, &DeclError{Decl: name, Text: text, Err: err})
	}
	if name == "" {
		return nil, &DeclError{Decl: name, Err: errors.New("empty name")}
	}
	c := &Component{Name: name, IsSlot: isSlot}

	params := make([]string, 0, len(spec.Generics))
	for _, g := range spec.Generics {
		gname, _, _ := strings.Cut(g, ":")
		params = append(params, norm.NFC.String(strings.TrimSpace(gname)))
	}
	for i, g := range spec.Generics {
		gp := GenericParam{Name: params[i]}
		if _, bound, ok := strings.Cut(g, ":"); ok {
			bs, err := types.ParseBounds(bound, params)
			if err != nil {
				fail(g, err)
			}
			gp.Bounds = bs
		}
		c.Generics = append(c.Generics, gp)
	}

	for pname, ps := range spec.Props {
		pname = norm.NFC.String(pname)
		if pname == "children" {
			fail(pname, errors.New("children are declared with the children key"))
			continue
		}
		if _, clash := spec.Slots[pname]; clash {
			fail(pname, fmt.Errorf("prop %q is also a slot field", pname))
			continue
		}
		t, err := types.ParseIn(ps.Type, params)
		if err != nil {
			fail(ps.Type, err)
			t = types.Unknown
		}
		c.Props = append(c.Props, Prop{Name: pname, Type: t, Optional: ps.Optional, Into: ps.Into})
	}
	sort.Slice(c.Props, func(i, j int) bool { return c.Props[i].Name < c.Props[j].Name })

	for fname, text := range spec.Slots {
		f, err := parseSlotField(norm.NFC.String(fname), text, params)
		if err != nil {
			fail(text, err)
			continue
		}
		c.Slots = append(c.Slots, f)
	}
	sort.Slice(c.Slots, func(i, j int) bool { return c.Slots[i].Name < c.Slots[j].Name })

	ch, err := parseChildren(spec.Children, params, c.Generics)
	if err != nil {
		fail(spec.Children, err)
	}
	c.Children = ch
	return c, errors.Join(errs...)
}

func parseSlotField(name, text string, params []string) (SlotField, error) {
	t, err := types.ParseIn(text, params)
	if err != nil {
		return SlotField{}, err
	}
	f := SlotField{Name: name, Type: t, Cardinality: ExactlyOne}
	inner := t
	switch t.Kind {
	case types.KindVec:
		f.Cardinality, inner = ZeroOrMore, t.Elem
	case types.KindOption:
		f.Cardinality, inner = AtMostOne, t.Elem
	}
	if inner.Kind != types.KindNamed {
		return SlotField{}, fmt.Errorf("slot field %q must be a slot type, Vec<slot> or Option<slot>, got %s", name, t)
	}
	f.Slot = inner.Name
	return f, nil
}

func parseChildren(text string, params []string, generics []GenericParam) (Children, error) {
	text = strings.TrimSpace(text)
	switch text {
	case "", "none":
		return Children{Kind: ChildrenNone}, nil
	case "opaque":
		return Children{Kind: ChildrenOpaque, Type: types.View("Children")}, nil
	}
	t, err := types.ParseIn(text, params)
	if err != nil {
		return Children{}, err
	}
	switch t.Kind {
	case types.KindView:
		return Children{Kind: ChildrenOpaque, Type: t}, nil
	case types.KindFn:
		return Children{Kind: ChildrenClosure, Type: t, Params: t.Params, Ret: t.Ret}, nil
	case types.KindParam:
		for _, g := range generics {
			if g.Name != t.Name {
				continue
			}
			for _, b := range g.Bounds {
				if b.Kind == types.KindFn {
					return Children{Kind: ChildrenClosure, Type: t, Params: b.Params, Ret: b.Ret}, nil
				}
			}
		}
		return Children{Kind: ChildrenOpaque, Type: t}, nil
	}
	return Children{}, fmt.Errorf("children must be none, opaque, a view type or a closure, got %s", t)
}

func (b *Builder) AddStruct(name string, spec StructSpec) error {
	if b.frozen {
		return errors.New("registry: builder already frozen")
	}
	name = norm.NFC.String(strings.TrimSpace(name))
	if _, dup := b.structs[name]; dup {
		return &DeclError{Decl: name, Text: name, Err: errors.New("duplicate declaration")}
	}
	s := &Struct{
		Name: name,
		Unit: spec.Unit,
		Caps: map[types.Cap]bool{
			types.CapClone:      spec.Clone,
			types.CapRenderable: spec.Renderable,
			types.CapAttribute:  spec.Attribute,
			types.CapSpread:     spec.Spread,
		},
		Fields: make(map[string]*types.Type, len(spec.Fields)),
	}
	var errs []error
	for fname, text := range spec.Fields {
		t, err := types.Parse(text)
		if err != nil {
			errs = append(errs, &DeclError{Decl: name, Text: text, Err: err})
			t = types.Unknown
		}
		s.Fields[norm.NFC.String(fname)] = t
	}
	b.structs[name] = s
	return errors.Join(errs...)
}

// AddScope declares a value visible to every expression, such as a helper
// function or a directive.
func (b *Builder) AddScope(name, typ string) error {
	if b.frozen {
		return errors.New("registry: builder already frozen")
	}
	name = norm.NFC.String(strings.TrimSpace(name))
	t, err := types.Parse(typ)
	if err != nil {
		return &DeclError{Decl: name, Text: typ, Err: err}
	}
	b.scope[name] = t
	return nil
}

// Freeze validates cross references and returns the read-only registry.
// Dangling slot references are reported and dropped; the registry stays
// usable.
func (b *Builder) Freeze() (*Registry, error) {
	var errs []error
	for _, ref := range b.refs {
		if _, ok := b.slots[ref.field.Slot]; ok {
			continue
		}
		err := fmt.Errorf("%s %s: slot field %q refers to undeclared slot %q",
			ref.owner.Kind(), ref.owner.Name, ref.field.Name, ref.field.Slot)
		diag.ReportError(b.reporter, diag.ProjInvalidRegistry, ref.owner.Decl, err.Error()).Emit()
		errs = append(errs, err)
		kept := ref.owner.Slots[:0]
		for _, f := range ref.owner.Slots {
			if f.Name != ref.field.Name {
				kept = append(kept, f)
			}
		}
		ref.owner.Slots = kept
	}
	b.frozen = true
	r := &Registry{
		components: b.components,
		slots:      b.slots,
		structs:    b.structs,
		scope:      b.scope,
	}
	r.digest = digest(r)
	return r, errors.Join(errs...)
}

func digest(r *Registry) [32]byte {
	h := sha256.New()
	writeComponents := func(tag string, m map[string]*Component) {
		for _, name := range sortedKeys(m) {
			c := m[name]
			fmt.Fprintf(h, "%s %s\n", tag, name)
			for _, g := range c.Generics {
				fmt.Fprintf(h, "  generic %s %v\n", g.Name, g.Bounds)
			}
			for _, p := range c.Props {
				fmt.Fprintf(h, "  prop %s %s %t %t\n", p.Name, p.Type, p.Optional, p.Into)
			}
			for _, f := range c.Slots {
				fmt.Fprintf(h, "  slot %s %s %d\n", f.Name, f.Type, f.Cardinality)
			}
			fmt.Fprintf(h, "  children %s %s\n", c.Children.Kind, c.Children.Type)
		}
	}
	writeComponents("component", r.components)
	writeComponents("slot", r.slots)

	names := make([]string, 0, len(r.structs))
	for n := range r.structs {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		s := r.structs[n]
		fmt.Fprintf(h, "struct %s %t %t %t %t %t\n", n, s.Caps[types.CapClone], s.Caps[types.CapRenderable],
			s.Caps[types.CapAttribute], s.Caps[types.CapSpread], s.Unit)
		fields := make([]string, 0, len(s.Fields))
		for f := range s.Fields {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			fmt.Fprintf(h, "  field %s %s\n", f, s.Fields[f])
		}
	}
	names = names[:0]
	for n := range r.scope {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(h, "scope %s %s\n", n, r.scope[n])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
