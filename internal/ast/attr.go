package ast

import (
	"viewc/internal/source"
)

// AttrKind is the category an attribute is classified into.
// The parser produces AttrRaw only.
type AttrKind uint8

const (
	AttrRaw AttrKind = iota
	AttrProp
	AttrEvent
	AttrDomProperty
	AttrClass
	AttrStyle
	AttrSpread
	AttrDirective
	AttrSlotMarker
	AttrChildrenLet
	AttrCloneCapture
	// AttrInvalid marks an attribute whose shape was rejected.
	AttrInvalid
)

var attrKindNames = [...]string{
	AttrRaw:          "Raw",
	AttrProp:         "Prop",
	AttrEvent:        "Event",
	AttrDomProperty:  "DomProperty",
	AttrClass:        "ClassBinding",
	AttrStyle:        "StyleBinding",
	AttrSpread:       "Spread",
	AttrDirective:    "Directive",
	AttrSlotMarker:   "SlotMarker",
	AttrChildrenLet:  "ChildrenLet",
	AttrCloneCapture: "CloneCapture",
	AttrInvalid:      "Invalid",
}

func (k AttrKind) String() string {
	if int(k) < len(attrKindNames) {
		return attrKindNames[k]
	}
	return "AttrKind(?)"
}

// Attr is one attribute of a tag.
//
// Key is the full key as written (`on:click`, `class:bg-green-400`, `..` for a
// spread). Name is the key without its category prefix and is filled by the
// classifier. Idents lists the identifiers of `let:` and `clone:` attributes;
// consecutive ones are merged into a single Attr.
type Attr struct {
	Kind     AttrKind
	Span     source.Span
	Key      string
	KeySpan  source.Span
	Name     string
	NameSpan source.Span
	Value    Expr
	Idents   []Binding
	// Braced is set for attributes written as `{ .. }`.
	Braced bool
	// Shorthand is set when the value was synthesized from the key (`<C a/>`).
	Shorthand bool
}

// Binding is one identifier of a `let:` or `clone:` list. Span covers the
// name, KeySpan the whole `let:name` key.
type Binding struct {
	Name    string
	Span    source.Span
	KeySpan source.Span
}

// HasValue reports whether the attribute has a value.
func (a *Attr) HasValue() bool { return a.Value != nil }

// ValueSpan returns the span of the value, or an empty span.
func (a *Attr) ValueSpan() source.Span {
	if a.Value == nil {
		return source.Span{}
	}
	return a.Value.Span()
}
