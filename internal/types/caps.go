package types

// Cap names a capability a named type may declare.
type Cap uint8

const (
	CapClone Cap = iota
	CapRenderable
	CapAttribute
	CapSpread
)

func (c Cap) String() string {
	switch c {
	case CapClone:
		return "Clone"
	case CapRenderable:
		return "IntoView"
	case CapAttribute:
		return "IntoAttribute"
	case CapSpread:
		return "spread"
	default:
		return "?"
	}
}

// Capabilities answers capability questions about named types.
type Capabilities interface {
	Capability(name string, c Cap) bool
}

// NoCaps declares nothing for any named type.
type NoCaps struct{}

func (NoCaps) Capability(string, Cap) bool { return false }

// Env is the context assignability is decided in.
type Env struct {
	Caps Capabilities
}

func (e Env) has(t *Type, c Cap) bool {
	if e.Caps == nil {
		return false
	}
	return e.Caps.Capability(t.Name, c)
}

// opaque reports whether t admits every check: unknown, never and generic
// parameters are accepted everywhere.
func opaque(t *Type) bool {
	return t == nil || t.Kind == KindUnknown || t.Kind == KindNever || t.Kind == KindParam
}

func scalar(t *Type) bool {
	switch t.Kind {
	case KindBool, KindInt, KindFloat, KindChar, KindStr, KindString, KindIntLit, KindFloatLit:
		return true
	}
	return false
}

// thunk returns the result type of a zero-argument function, or nil.
func thunk(t *Type) *Type {
	if t.Kind == KindFn && len(t.Params) == 0 {
		return t.Ret
	}
	return nil
}

// Renderable reports whether t can appear as a view child.
func (e Env) Renderable(t *Type) bool {
	if opaque(t) {
		return true
	}
	switch t.Kind {
	case KindUnit, KindView:
		return true
	case KindOption, KindVec, KindSignal:
		return e.Renderable(t.Elem)
	case KindTuple:
		for _, el := range t.Elems {
			if !e.Renderable(el) {
				return false
			}
		}
		return true
	case KindFn:
		if r := thunk(t); r != nil {
			return e.Renderable(r)
		}
		return false
	case KindNamed:
		return e.has(t, CapRenderable)
	}
	return scalar(t)
}

// AttributeValue reports whether t can be the value of an element attribute.
func (e Env) AttributeValue(t *Type) bool {
	if opaque(t) {
		return true
	}
	switch t.Kind {
	case KindOption, KindSignal:
		return e.AttributeValue(t.Elem)
	case KindFn:
		if r := thunk(t); r != nil {
			return e.AttributeValue(r)
		}
		return false
	case KindNamed:
		return e.has(t, CapAttribute)
	}
	return scalar(t)
}

// ClassToggle reports whether t can drive `class:name=`.
func (e Env) ClassToggle(t *Type) bool {
	if opaque(t) {
		return true
	}
	switch t.Kind {
	case KindBool:
		return true
	case KindSignal:
		return e.ClassToggle(t.Elem)
	case KindFn:
		if r := thunk(t); r != nil {
			return e.ClassToggle(r)
		}
	}
	return false
}

// StyleValue reports whether t can drive `style:name=`.
func (e Env) StyleValue(t *Type) bool {
	if opaque(t) {
		return true
	}
	switch t.Kind {
	case KindBool:
		return false
	case KindOption, KindSignal:
		return e.StyleValue(t.Elem)
	case KindFn:
		if r := thunk(t); r != nil {
			return e.StyleValue(r)
		}
		return false
	case KindNamed:
		return e.has(t, CapAttribute)
	}
	return scalar(t)
}

// EventHandler reports whether t can handle a DOM event: a function of at
// most one parameter, whatever it returns.
func (e Env) EventHandler(t *Type) bool {
	if opaque(t) {
		return true
	}
	return t.Kind == KindFn && len(t.Params) <= 1
}

// Spreadable reports whether t can be spread onto an element with {..x}.
func (e Env) Spreadable(t *Type) bool {
	if opaque(t) {
		return true
	}
	switch t.Kind {
	case KindVec:
		el := t.Elem
		if opaque(el) {
			return true
		}
		return el.Kind == KindTuple && len(el.Elems) == 2 &&
			(opaque(el.Elems[0]) || el.Elems[0].Kind == KindStr || el.Elems[0].Kind == KindString)
	case KindNamed:
		return e.has(t, CapSpread)
	}
	return false
}

// Clonable reports whether a value of t can be captured with clone:.
func (e Env) Clonable(t *Type) bool {
	if opaque(t) || scalar(t) {
		return true
	}
	switch t.Kind {
	case KindUnit, KindFn, KindSignal:
		return true
	case KindOption, KindVec:
		return e.Clonable(t.Elem)
	case KindTuple:
		for _, el := range t.Elems {
			if !e.Clonable(el) {
				return false
			}
		}
		return true
	case KindView:
		return t.Name != "Children" && t.Name != "Fragment"
	case KindNamed:
		return e.has(t, CapClone)
	}
	return false
}
