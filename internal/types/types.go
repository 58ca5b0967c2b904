package types

import (
	"fmt"
	"strings"
)

// Kind enumerates the host types the compiler reasons about.
type Kind uint8

const (
	// KindUnknown is the type of anything we cannot see into. It is
	// compatible with everything so that one unknown never cascades.
	KindUnknown Kind = iota
	KindNever
	KindUnit
	KindBool
	KindInt
	KindFloat
	KindChar
	KindStr
	KindString
	// KindIntLit and KindFloatLit are untyped numeric literals.
	KindIntLit
	KindFloatLit
	KindOption
	KindVec
	KindTuple
	KindFn
	KindSignal
	KindView
	KindNamed
	KindParam
)

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindNever:
		return "never"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindChar:
		return "char"
	case KindStr:
		return "str"
	case KindString:
		return "string"
	case KindIntLit:
		return "integer literal"
	case KindFloatLit:
		return "float literal"
	case KindOption:
		return "option"
	case KindVec:
		return "vec"
	case KindTuple:
		return "tuple"
	case KindFn:
		return "fn"
	case KindSignal:
		return "signal"
	case KindView:
		return "view"
	case KindNamed:
		return "named"
	case KindParam:
		return "param"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is an immutable type descriptor. Name carries the spelling for
// numeric, signal, view, named and param kinds.
type Type struct {
	Kind   Kind
	Name   string
	Elem   *Type   // option, vec, signal
	Elems  []*Type // tuple
	Params []*Type // fn
	Ret    *Type   // fn
	Args   []*Type // named generic arguments
}

var (
	Unknown  = &Type{Kind: KindUnknown}
	Never    = &Type{Kind: KindNever}
	Unit     = &Type{Kind: KindUnit}
	Bool     = &Type{Kind: KindBool, Name: "bool"}
	Char     = &Type{Kind: KindChar, Name: "char"}
	Str      = &Type{Kind: KindStr, Name: "&str"}
	String   = &Type{Kind: KindString, Name: "String"}
	IntLit   = &Type{Kind: KindIntLit}
	FloatLit = &Type{Kind: KindFloatLit}
	// Renderable is what a view body evaluates to.
	Renderable = &Type{Kind: KindView, Name: "impl IntoView"}
)

func Int(name string) *Type   { return &Type{Kind: KindInt, Name: name} }
func Float(name string) *Type { return &Type{Kind: KindFloat, Name: name} }
func Option(elem *Type) *Type { return &Type{Kind: KindOption, Elem: elem} }
func Vec(elem *Type) *Type    { return &Type{Kind: KindVec, Elem: elem} }

func Tuple(elems ...*Type) *Type {
	if len(elems) == 0 {
		return Unit
	}
	return &Type{Kind: KindTuple, Elems: elems}
}

func Fn(params []*Type, ret *Type) *Type {
	if ret == nil {
		ret = Unit
	}
	return &Type{Kind: KindFn, Params: params, Ret: ret}
}

// Signal is any reactive wrapper: MaybeSignal, Signal, ReadSignal, RwSignal, Memo.
func Signal(name string, elem *Type) *Type {
	return &Type{Kind: KindSignal, Name: name, Elem: elem}
}

// View is a renderable view type such as Children or ChildrenFn.
func View(name string) *Type { return &Type{Kind: KindView, Name: name} }

func Named(name string, args ...*Type) *Type {
	return &Type{Kind: KindNamed, Name: name, Args: args}
}

func Param(name string) *Type { return &Type{Kind: KindParam, Name: name} }

// IsUnknown reports whether t carries no information.
func (t *Type) IsUnknown() bool { return t == nil || t.Kind == KindUnknown }

// Diverges reports whether evaluating a value of t never completes.
func (t *Type) Diverges() bool { return t != nil && t.Kind == KindNever }

func (t *Type) String() string {
	if t == nil {
		return "_"
	}
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Type) write(b *strings.Builder) {
	switch t.Kind {
	case KindUnknown:
		b.WriteString("_")
	case KindNever:
		b.WriteString("!")
	case KindUnit:
		b.WriteString("()")
	case KindIntLit:
		b.WriteString("{integer}")
	case KindFloatLit:
		b.WriteString("{float}")
	case KindOption:
		b.WriteString("Option<")
		t.Elem.write(b)
		b.WriteByte('>')
	case KindVec:
		b.WriteString("Vec<")
		t.Elem.write(b)
		b.WriteByte('>')
	case KindTuple:
		b.WriteByte('(')
		writeList(b, t.Elems)
		if len(t.Elems) == 1 {
			b.WriteByte(',')
		}
		b.WriteByte(')')
	case KindFn:
		b.WriteString("Fn(")
		writeList(b, t.Params)
		b.WriteByte(')')
		if t.Ret != nil && t.Ret.Kind != KindUnit {
			b.WriteString(" -> ")
			t.Ret.write(b)
		}
	case KindSignal:
		b.WriteString(t.Name)
		b.WriteByte('<')
		t.Elem.write(b)
		b.WriteByte('>')
	case KindNamed:
		b.WriteString(t.Name)
		if len(t.Args) > 0 {
			b.WriteByte('<')
			writeList(b, t.Args)
			b.WriteByte('>')
		}
	default:
		b.WriteString(t.Name)
	}
}

func writeList(b *strings.Builder, list []*Type) {
	for i, t := range list {
		if i > 0 {
			b.WriteString(", ")
		}
		t.write(b)
	}
}

// Equal compares two types structurally.
func Equal(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind || a.Name != b.Name {
		return false
	}
	if (a.Elem == nil) != (b.Elem == nil) || (a.Elem != nil && !Equal(a.Elem, b.Elem)) {
		return false
	}
	if (a.Ret == nil) != (b.Ret == nil) || (a.Ret != nil && !Equal(a.Ret, b.Ret)) {
		return false
	}
	return equalList(a.Elems, b.Elems) && equalList(a.Params, b.Params) && equalList(a.Args, b.Args)
}

func equalList(a, b []*Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Substitute replaces generic parameters by their bindings.
func Substitute(t *Type, bind map[string]*Type) *Type {
	if t == nil || len(bind) == 0 {
		return t
	}
	switch t.Kind {
	case KindParam:
		if b, ok := bind[t.Name]; ok && b != nil {
			return b
		}
		return t
	case KindOption, KindVec, KindSignal:
		out := *t
		out.Elem = Substitute(t.Elem, bind)
		return &out
	case KindTuple:
		out := *t
		out.Elems = substList(t.Elems, bind)
		return &out
	case KindFn:
		out := *t
		out.Params = substList(t.Params, bind)
		out.Ret = Substitute(t.Ret, bind)
		return &out
	case KindNamed:
		out := *t
		out.Args = substList(t.Args, bind)
		return &out
	}
	return t
}

func substList(list []*Type, bind map[string]*Type) []*Type {
	if len(list) == 0 {
		return list
	}
	out := make([]*Type, len(list))
	for i, t := range list {
		out[i] = Substitute(t, bind)
	}
	return out
}

// Mentions reports whether t refers to the generic parameter name.
func Mentions(t *Type, name string) bool {
	if t == nil {
		return false
	}
	if t.Kind == KindParam {
		return t.Name == name
	}
	if Mentions(t.Elem, name) || Mentions(t.Ret, name) {
		return true
	}
	for _, list := range [][]*Type{t.Elems, t.Params, t.Args} {
		for _, e := range list {
			if Mentions(e, name) {
				return true
			}
		}
	}
	return false
}

// Unify matches pattern against found and records bindings for the
// generic parameters of pattern. Conflicting bindings keep the first one.
func Unify(pattern, found *Type, bind map[string]*Type) {
	if pattern == nil || found == nil || found.IsUnknown() {
		return
	}
	switch pattern.Kind {
	case KindParam:
		if _, ok := bind[pattern.Name]; !ok {
			bind[pattern.Name] = found
		}
		return
	case KindOption, KindVec, KindSignal:
		if found.Kind == pattern.Kind {
			Unify(pattern.Elem, found.Elem, bind)
		} else if pattern.Kind == KindSignal {
			// T into Signal<T>.
			Unify(pattern.Elem, found, bind)
		}
	case KindTuple:
		if found.Kind == KindTuple && len(found.Elems) == len(pattern.Elems) {
			for i := range pattern.Elems {
				Unify(pattern.Elems[i], found.Elems[i], bind)
			}
		}
	case KindFn:
		if found.Kind == KindFn && len(found.Params) == len(pattern.Params) {
			for i := range pattern.Params {
				Unify(pattern.Params[i], found.Params[i], bind)
			}
			Unify(pattern.Ret, found.Ret, bind)
		}
	case KindNamed:
		if found.Kind == KindNamed && found.Name == pattern.Name && len(found.Args) == len(pattern.Args) {
			for i := range pattern.Args {
				Unify(pattern.Args[i], found.Args[i], bind)
			}
		}
	}
}

// Default resolves untyped literals to the types the host language falls
// back to: i32 for integers and f64 for floats.
func Default(t *Type) *Type {
	if t == nil {
		return Unknown
	}
	switch t.Kind {
	case KindIntLit:
		return Int("i32")
	case KindFloatLit:
		return Float("f64")
	}
	return t
}
