package types

// Assignable reports whether a value of type found may be passed where
// expected is required. With into, the conversions applied by `into` props
// are accepted as well: &str into String, T into a signal of T, and a
// zero-argument closure returning T into a signal of T.
func (e Env) Assignable(found, expected *Type, into bool) bool {
	if opaque(found) || opaque(expected) {
		return true
	}
	if Equal(found, expected) {
		return true
	}
	switch expected.Kind {
	case KindInt:
		return found.Kind == KindIntLit || (found.Kind == KindInt && found.Name == expected.Name)
	case KindFloat:
		return found.Kind == KindFloatLit || (found.Kind == KindFloat && found.Name == expected.Name)
	case KindIntLit:
		return found.Kind == KindInt
	case KindFloatLit:
		return found.Kind == KindFloat
	case KindString:
		return into && (found.Kind == KindStr || found.Kind == KindChar)
	case KindOption:
		if found.Kind == KindOption {
			return e.Assignable(found.Elem, expected.Elem, into)
		}
		return into && e.Assignable(found, expected.Elem, into)
	case KindVec:
		return found.Kind == KindVec && e.Assignable(found.Elem, expected.Elem, false)
	case KindTuple:
		if found.Kind != KindTuple || len(found.Elems) != len(expected.Elems) {
			return false
		}
		for i := range found.Elems {
			if !e.Assignable(found.Elems[i], expected.Elems[i], false) {
				return false
			}
		}
		return true
	case KindFn:
		return e.fnAssignable(found, expected)
	case KindSignal:
		if found.Kind == KindSignal && (into || found.Name == expected.Name) {
			return e.Assignable(found.Elem, expected.Elem, false)
		}
		if !into {
			return false
		}
		if r := thunk(found); r != nil {
			return e.Assignable(r, expected.Elem, false)
		}
		return e.Assignable(found, expected.Elem, true)
	case KindView:
		return e.Renderable(found)
	case KindNamed:
		if found.Kind != KindNamed || found.Name != expected.Name || len(found.Args) != len(expected.Args) {
			return false
		}
		for i := range found.Args {
			if !e.Assignable(found.Args[i], expected.Args[i], false) {
				return false
			}
		}
		return true
	}
	return false
}

func (e Env) fnAssignable(found, expected *Type) bool {
	if found.Kind != KindFn || len(found.Params) != len(expected.Params) {
		return false
	}
	for i := range found.Params {
		if !e.Assignable(expected.Params[i], found.Params[i], false) {
			return false
		}
	}
	if expected.Ret.Kind == KindUnit {
		return true
	}
	return e.Assignable(found.Ret, expected.Ret, false)
}

// BoundSatisfied reports whether t meets a generic bound. Bounds the model
// does not know about are assumed to hold.
func (e Env) BoundSatisfied(t, bound *Type) bool {
	if opaque(t) || bound == nil {
		return true
	}
	switch bound.Kind {
	case KindView:
		return e.Renderable(t)
	case KindFn:
		return e.Assignable(t, bound, false)
	case KindNamed:
		switch bound.Name {
		case "Into", "From":
			if len(bound.Args) != 1 {
				return true
			}
			return e.Assignable(t, bound.Args[0], true)
		case "Clone", "Copy":
			return e.Clonable(t)
		}
	}
	return true
}

// Assignable decides assignability without named-type capabilities.
func Assignable(found, expected *Type, into bool) bool {
	return Env{}.Assignable(found, expected, into)
}
