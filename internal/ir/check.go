package ir

import (
	"fmt"
	"strings"

	"viewc/internal/ast"
	"viewc/internal/check"
	"viewc/internal/diag"
	"viewc/internal/registry"
	"viewc/internal/types"
)

// Expected types named in element mismatch messages.
var (
	attrValue   = types.Named("impl IntoAttribute")
	propValue   = types.Named("impl IntoProperty")
	classToggle = types.Named("impl IntoClass")
	styleValue  = types.Named("impl IntoStyle")
	eventFn     = types.Fn([]*types.Type{types.Named("Event")}, types.Unit)
	spreadValue = types.Vec(types.Tuple(types.Str, types.Named("Attribute")))
	className   = types.Str
)

// Check type-checks the builder calls of e the way the host compiler would:
// values against the setter they feed, required props at build, directive
// signatures, clone captures and generic bounds. Values get their inferred
// type recorded in Expr.Type. It returns the type of e.
func Check(e *Expr, reg *registry.Registry, r diag.Reporter) *types.Type {
	if r == nil {
		r = diag.NopReporter{}
	}
	if reg == nil {
		reg, _ = registry.NewBuilder(nil).Freeze()
	}
	ck := &checker{reg: reg, c: check.New(reg, r), env: reg.Env(), r: r}
	return ck.expr(e, check.NewScope(nil))
}

type checker struct {
	reg *registry.Registry
	c   *check.Checker
	env types.Env
	r   diag.Reporter
}

func (ck *checker) expr(e *Expr, sc *check.Scope) *types.Type {
	if e == nil {
		return types.Unit
	}
	switch e.Kind {
	case KindView:
		if e.Class != nil {
			ck.globalClass(e.Class, sc)
		}
		for _, a := range e.Args {
			ck.child(a, sc)
		}
		return types.Renderable
	case KindText:
		return types.Str
	case KindValue:
		return ck.infer(e, sc, nil)
	case KindFragment:
		for _, a := range e.Args {
			ck.child(a, sc)
		}
		return types.View("Fragment")
	case KindClosure:
		return ck.closure(e, sc, nil)
	case KindPlaceholder:
		for _, a := range e.Args {
			ck.child(a, sc)
		}
		return e.Type
	}
	return ck.chain(e, sc)
}

func (ck *checker) infer(v *Expr, sc *check.Scope, hint *types.Type) *types.Type {
	switch v.Kind {
	case KindValue:
		v.Type = ck.c.Infer(v.Value, sc, hint)
		return v.Type
	case KindPlaceholder:
		ck.expr(v, sc)
		return types.Unknown
	}
	return ck.expr(v, sc)
}

// want infers v and reports a mismatch against expected when ok rejects it.
func (ck *checker) want(v *Expr, sc *check.Scope, hint, expected *types.Type, ok func(*types.Type) bool) {
	t := ck.infer(v, sc, hint)
	if v.Kind == KindValue && !ok(t) {
		ck.c.Mismatch(v.Span, expected, t, false)
	}
}

func (ck *checker) child(e *Expr, sc *check.Scope) *types.Type {
	t := ck.expr(e, sc)
	if e.Kind == KindValue && !ck.env.Renderable(t) {
		ck.c.Mismatch(e.Span, types.Renderable, t, false)
	}
	return t
}

func (ck *checker) globalClass(v *Expr, sc *check.Scope) {
	ck.want(v, sc, nil, className, func(t *types.Type) bool {
		return t.Kind == types.KindStr || t.Kind == types.KindString || ck.env.Assignable(t, types.String, false)
	})
}

func (ck *checker) closure(e *Expr, sc *check.Scope, bind map[string]*types.Type) *types.Type {
	ck.captures(e, sc)
	inner := check.NewScope(sc)
	params := make([]*types.Type, len(e.Params))
	for i, p := range e.Params {
		params[i] = types.Substitute(p.Type, bind)
		if params[i] == nil {
			params[i] = types.Unknown
		}
		inner.Define(p.Name, params[i])
	}
	for _, a := range e.Args {
		ck.child(a, inner)
	}
	return types.Fn(params, types.View("View"))
}

func (ck *checker) captures(e *Expr, sc *check.Scope) {
	for _, cp := range e.Captures {
		t, ok := sc.Lookup(cp.Name)
		if !ok {
			t, ok = ck.reg.ScopeType(cp.Name)
		}
		if !ok {
			diag.ReportError(ck.r, diag.TypUnresolvedName, cp.Span,
				fmt.Sprintf("cannot find value `%s` in this scope", cp.Name)).Emit()
			continue
		}
		if !ck.env.Clonable(t) {
			diag.ReportError(ck.r, diag.TypNotClonable, cp.KeySpan,
				fmt.Sprintf("`clone:%s` needs `%s` to implement `Clone`", cp.Name, t)).Emit()
		}
	}
}

func (ck *checker) chain(top *Expr, sc *check.Scope) *types.Type {
	head, calls := Chain(top)
	if head == nil {
		return types.Unknown
	}
	var build *Expr
	if top.Kind == KindBuild {
		build = top
	}
	switch head.Kind {
	case KindElement:
		ck.captures(head, sc)
		ck.element(calls, sc)
		return types.View("HtmlElement")
	case KindComponent, KindSlot:
		var c *registry.Component
		var ok bool
		if head.Kind == KindSlot {
			c, ok = ck.reg.LookupSlotType(head.Name)
		} else {
			c, ok = ck.reg.Lookup(head.Name)
		}
		if ok {
			return ck.component(head, c, calls, build, sc)
		}
	}
	ck.captures(head, sc)
	ck.detached(calls, sc)
	if head.Kind == KindPlaceholder && head.Type != nil {
		return head.Type
	}
	return types.Unknown
}

// detached checks setters whose target is unknown: values are inferred
// for their own errors and children checked, nothing is matched.
func (ck *checker) detached(calls []*Expr, sc *check.Scope) {
	for _, call := range calls {
		for _, a := range call.Args {
			switch call.Name {
			case MethodChild, MethodChildren:
				ck.child(a, sc)
			default:
				ck.infer(a, sc, nil)
			}
		}
	}
}

func (ck *checker) element(calls []*Expr, sc *check.Scope) {
	for _, call := range calls {
		if call.Name == MethodDirective {
			ck.directive(call, sc)
			continue
		}
		if len(call.Args) == 0 {
			continue
		}
		v := call.Args[0]
		switch call.Name {
		case MethodAttr:
			ck.attr(call, sc)
		case MethodOn:
			ck.want(v, sc, eventFn, eventFn, ck.env.EventHandler)
		case MethodProperty:
			ck.want(v, sc, nil, propValue, ck.env.AttributeValue)
		case MethodClass:
			ck.want(v, sc, nil, classToggle, ck.env.ClassToggle)
		case MethodStyle:
			ck.want(v, sc, nil, styleValue, ck.env.StyleValue)
		case MethodSpread:
			ck.want(v, sc, nil, spreadValue, ck.env.Spreadable)
		case MethodChild:
			ck.child(v, sc)
		default:
			ck.infer(v, sc, nil)
		}
	}
}

// attr checks a plain element attribute. `class` and `style` also take a
// (name, value) tuple; each half is checked at its own span.
func (ck *checker) attr(call *Expr, sc *check.Scope) {
	v := call.Args[0]
	if v.Kind == KindValue && (call.Key == "class" || call.Key == "style") {
		if tup, ok := ast.Unparen(v.Value).(*ast.TupleExpr); ok && len(tup.Elems) == 2 {
			name := ck.c.Infer(tup.Elems[0], sc, nil)
			if name.Kind != types.KindStr && name.Kind != types.KindString && !ck.env.Assignable(name, types.Str, false) {
				ck.c.Mismatch(tup.Elems[0].Span(), className, name, false)
			}
			val := ck.c.Infer(tup.Elems[1], sc, nil)
			expected, ok := classToggle, ck.env.ClassToggle
			if call.Key == "style" {
				expected, ok = styleValue, ck.env.StyleValue
			}
			if !ok(val) {
				ck.c.Mismatch(tup.Elems[1].Span(), expected, val, false)
			}
			v.Type = types.Tuple(name, val)
			return
		}
	}
	ck.want(v, sc, nil, attrValue, ck.env.AttributeValue)
}

// directive checks `use:name[=value]` against the scope function
// `fn(Element[, T])`.
func (ck *checker) directive(call *Expr, sc *check.Scope) {
	name := call.Key
	fn, ok := sc.Lookup(name)
	if !ok {
		fn, ok = ck.reg.ScopeType(name)
	}
	if !ok {
		diag.ReportError(ck.r, diag.TypUnresolvedName, call.KeySpan,
			fmt.Sprintf("cannot find directive `%s` in this scope", name)).Emit()
		ck.inferAll(call.Args, sc)
		return
	}
	if fn.IsUnknown() || fn.Kind == types.KindParam {
		ck.inferAll(call.Args, sc)
		return
	}
	if fn.Kind != types.KindFn || len(fn.Params) == 0 || len(fn.Params) > 2 {
		diag.ReportError(ck.r, diag.TypNotCallable, call.KeySpan,
			fmt.Sprintf("`%s` cannot be used as a directive: expected `fn(Element)` or `fn(Element, T)`, found `%s`", name, fn)).Emit()
		ck.inferAll(call.Args, sc)
		return
	}
	switch {
	case len(fn.Params) == 2 && len(call.Args) == 0:
		diag.ReportError(ck.r, diag.TypArgCount, call.Span,
			fmt.Sprintf("directive `%s` takes a parameter of type `%s`: write `use:%s=value`", name, fn.Params[1], name)).Emit()
	case len(fn.Params) == 1 && len(call.Args) > 0:
		v := call.Args[0]
		ck.infer(v, sc, nil)
		diag.ReportError(ck.r, diag.TypArgCount, v.Span,
			fmt.Sprintf("directive `%s` takes no parameter", name)).Emit()
	case len(call.Args) > 0:
		v := call.Args[0]
		t := ck.infer(v, sc, fn.Params[1])
		if v.Kind == KindValue && !ck.env.Assignable(t, fn.Params[1], false) {
			ck.c.Mismatch(v.Span, fn.Params[1], t, false)
		}
	}
}

func (ck *checker) inferAll(args []*Expr, sc *check.Scope) {
	for _, a := range args {
		ck.infer(a, sc, nil)
	}
}

func (ck *checker) component(head *Expr, c *registry.Component, calls []*Expr, build *Expr, sc *check.Scope) *types.Type {
	ck.captures(head, sc)
	bind := make(map[string]*types.Type, len(c.Generics))
	for i, g := range head.Generics {
		if i < len(c.Generics) {
			bind[c.Generics[i].Name] = g
		}
	}

	// Infer the generics that explicit arguments left open from the
	// props that mention them.
	inferred := make(map[*Expr]*types.Type)
	supplied := make(map[string]bool)
	for _, call := range calls {
		switch call.Name {
		case MethodProp:
			p, ok := c.Prop(call.Key)
			if !ok || len(call.Args) == 0 {
				continue
			}
			supplied[p.Name] = true
			v := call.Args[0]
			if v.Kind == KindValue && open(p.Type, c, bind) {
				t := ck.infer(v, sc, nil)
				inferred[v] = t
				types.Unify(p.Type, types.Default(t), bind)
			}
		case MethodChildren:
			supplied["children"] = true
			ck.bindChildren(c, call, bind)
		}
	}
	ck.bounds(head, c, bind)

	for _, call := range calls {
		switch call.Name {
		case MethodProp:
			ck.prop(head, c, call, bind, inferred, sc)
		case MethodDirective:
			ck.directive(call, sc)
		case MethodSlot:
			for _, a := range call.Args {
				ck.expr(a, sc)
			}
		case MethodChildren:
			if c.Children.Kind == registry.ChildrenNone && !placeholder(call) {
				diag.ReportError(ck.r, diag.TypUnknownProp, call.Span,
					fmt.Sprintf("the %s `%s` has no `children`", c.Kind(), c.Name)).Emit()
			}
			for _, a := range call.Args {
				if a.Kind == KindClosure {
					ck.closure(a, sc, bind)
					continue
				}
				ck.child(a, sc)
			}
		default:
			ck.detached([]*Expr{call}, sc)
		}
	}
	if build != nil {
		ck.missing(build, c, supplied)
	}
	if c.IsSlot {
		return types.Named(c.Name)
	}
	return types.View("View")
}

func placeholder(call *Expr) bool {
	return len(call.Args) == 1 && call.Args[0].Kind == KindPlaceholder
}

// open reports whether t mentions a generic parameter of c still unbound.
func open(t *types.Type, c *registry.Component, bind map[string]*types.Type) bool {
	for _, g := range c.Generics {
		if _, ok := bind[g.Name]; !ok && types.Mentions(t, g.Name) {
			return true
		}
	}
	return false
}

// bindChildren binds a closure-typed children parameter (and its return
// parameter) from the closure the markup supplies.
func (ck *checker) bindChildren(c *registry.Component, call *Expr, bind map[string]*types.Type) {
	ch := c.Children
	if ch.Kind != registry.ChildrenClosure || ch.Type.Kind != types.KindParam {
		return
	}
	if ch.Ret != nil && ch.Ret.Kind == types.KindParam {
		if _, ok := bind[ch.Ret.Name]; !ok {
			bind[ch.Ret.Name] = types.View("View")
		}
	}
	if _, ok := bind[ch.Type.Name]; ok || placeholder(call) {
		return
	}
	bind[ch.Type.Name] = types.Fn(ch.Params, types.View("View"))
}

func (ck *checker) bounds(head *Expr, c *registry.Component, bind map[string]*types.Type) {
	at := head.Span
	if len(head.Generics) > 0 && !head.GenericsSpan.Empty() {
		at = head.GenericsSpan
	}
	for _, g := range c.Generics {
		t, ok := bind[g.Name]
		if !ok {
			continue
		}
		for _, b := range g.Bounds {
			bound := types.Substitute(b, bind)
			if ck.env.BoundSatisfied(t, bound) {
				continue
			}
			diag.ReportError(ck.r, diag.TypGenericBound, at,
				fmt.Sprintf("the bound `%s: %s` of `%s` is not satisfied: `%s` is `%s`", g.Name, b, c.Name, g.Name, t)).Emit()
		}
	}
}

func (ck *checker) prop(head *Expr, c *registry.Component, call *Expr, bind map[string]*types.Type, inferred map[*Expr]*types.Type, sc *check.Scope) {
	p, ok := c.Prop(call.Key)
	if !ok {
		b := diag.ReportError(ck.r, diag.TypUnknownProp, call.Span,
			fmt.Sprintf("the %s `%s` has no prop named `%s`", c.Kind(), c.Name, call.Key))
		if len(c.Props) > 0 {
			names := make([]string, len(c.Props))
			for i, p := range c.Props {
				names[i] = "`" + p.Name + "`"
			}
			b.WithNote(head.Span, "available props: "+strings.Join(names, ", "))
		}
		b.Emit()
		ck.inferAll(call.Args, sc)
		return
	}
	if len(call.Args) == 0 {
		return
	}
	want := types.Substitute(p.Type, bind)
	v := call.Args[0]
	t, seen := inferred[v]
	if !seen {
		t = ck.infer(v, sc, want)
	}
	if v.Kind == KindValue && !ck.env.Assignable(t, want, p.Into) {
		ck.c.Mismatch(v.Span, want, t, p.Into)
	}
}

// missing reports every required field absent at build in one diagnostic
// on the tag name.
func (ck *checker) missing(build *Expr, c *registry.Component, supplied map[string]bool) {
	var names []string
	for _, p := range c.Props {
		if !p.Optional && !supplied[p.Name] {
			names = append(names, "`"+p.Name+"`")
		}
	}
	if c.Children.Kind != registry.ChildrenNone && !supplied["children"] {
		names = append(names, "`children`")
	}
	if len(names) == 0 {
		return
	}
	field := "field"
	if len(names) > 1 {
		field = "fields"
	}
	diag.ReportError(ck.r, diag.TypMissingField, build.Span,
		fmt.Sprintf("missing required %s %s in `%s`", field, strings.Join(names, ", "), c.Name)).Emit()
}
