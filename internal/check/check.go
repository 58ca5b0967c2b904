package check

import (
	"fmt"
	"regexp"
	"strconv"

	"viewc/internal/ast"
	"viewc/internal/diag"
	"viewc/internal/registry"
	"viewc/internal/source"
	"viewc/internal/token"
	"viewc/internal/types"
)

var numSuffix = regexp.MustCompile(`(i8|i16|i32|i64|i128|isize|u8|u16|u32|u64|u128|usize|f32|f64)$`)

// Checker infers expression types against a registry. Diagnostics raised
// during inference (unresolved names, bad calls, argument mismatches) go to
// the reporter.
type Checker struct {
	reg *registry.Registry
	env types.Env
	rep diag.Reporter
}

// New returns a checker. reg may be nil, in which case only scope bindings
// resolve.
func New(reg *registry.Registry, r diag.Reporter) *Checker {
	if r == nil {
		r = diag.NopReporter{}
	}
	c := &Checker{reg: reg, rep: r}
	if reg != nil {
		c.env = reg.Env()
	}
	return c
}

func (c *Checker) Env() types.Env { return c.env }

// Check infers e with expected as a hint and reports a TypeMismatch at e
// when the result cannot be passed where expected is required.
func (c *Checker) Check(e ast.Expr, sc *Scope, expected *types.Type, into bool) (*types.Type, bool) {
	found := c.Infer(e, sc, expected)
	if c.env.Assignable(found, expected, into) {
		return found, true
	}
	c.Mismatch(e.Span(), expected, found, into)
	return found, false
}

// Mismatch reports a TypeMismatch at sp.
func (c *Checker) Mismatch(sp source.Span, expected, found *types.Type, into bool) {
	msg := fmt.Sprintf("mismatched types: expected `%s`, found `%s`", expected, found)
	if into {
		msg = fmt.Sprintf("mismatched types: expected `%s` or a value convertible into it, found `%s`", expected, found)
	}
	diag.ReportError(c.rep, diag.TypMismatch, sp, msg).Emit()
}

// Infer returns the type of e. expected may be nil; it types closure
// parameters and `.into()` results.
func (c *Checker) Infer(e ast.Expr, sc *Scope, expected *types.Type) *types.Type {
	switch e := e.(type) {
	case nil, *ast.BadExpr:
		return types.Unknown
	case *ast.LitExpr:
		return literalType(e)
	case *ast.PathExpr:
		return c.path(e, sc, expected)
	case *ast.ParenExpr:
		return c.Infer(e.X, sc, expected)
	case *ast.CallExpr:
		return c.call(e, sc, expected)
	case *ast.MethodCallExpr:
		return c.method(e, sc, expected)
	case *ast.FieldExpr:
		return c.field(e, sc)
	case *ast.IndexExpr:
		t := c.Infer(e.X, sc, nil)
		c.Infer(e.Index, sc, nil)
		if t.Kind == types.KindVec {
			return t.Elem
		}
		return types.Unknown
	case *ast.UnaryExpr:
		return c.unary(e, sc, expected)
	case *ast.BinaryExpr:
		return c.binary(e, sc)
	case *ast.ClosureExpr:
		return c.closure(e, sc, expected)
	case *ast.BlockExpr:
		return c.block(e, sc, expected)
	case *ast.IfExpr:
		c.Check(e.Cond, sc, types.Bool, false)
		then := c.block(e.Then, sc, expected)
		if e.Else == nil {
			return types.Unit
		}
		els := c.Infer(e.Else, sc, expected)
		if then.Diverges() {
			return els
		}
		return then
	case *ast.TupleExpr:
		var hints []*types.Type
		if expected != nil && expected.Kind == types.KindTuple && len(expected.Elems) == len(e.Elems) {
			hints = expected.Elems
		}
		elems := make([]*types.Type, len(e.Elems))
		for i, el := range e.Elems {
			var hint *types.Type
			if hints != nil {
				hint = hints[i]
			}
			elems[i] = c.Infer(el, sc, hint)
		}
		return types.Tuple(elems...)
	case *ast.ArrayExpr:
		return c.sequence(e.Elems, sc, expected)
	case *ast.MacroExpr:
		return c.macro(e, sc, expected)
	}
	return types.Unknown
}

func literalType(e *ast.LitExpr) *types.Type {
	switch e.Kind {
	case ast.LitString:
		return types.Str
	case ast.LitChar:
		return types.Char
	case ast.LitBool:
		return types.Bool
	}
	if m := numSuffix.FindString(e.Raw); m != "" {
		if m[0] == 'f' {
			return types.Float(m)
		}
		return types.Int(m)
	}
	if e.Kind == ast.LitFloat {
		return types.FloatLit
	}
	return types.IntLit
}

var knownPaths = map[string]*types.Type{
	"String::new":      types.Fn(nil, types.String),
	"String::from":     types.Fn([]*types.Type{types.Unknown}, types.String),
	"Default::default": types.Unknown,
	"None":             types.Option(types.Unknown),
}

func (c *Checker) path(e *ast.PathExpr, sc *Scope, expected *types.Type) *types.Type {
	name := e.Name()
	if len(e.Segments) == 1 {
		if t, ok := sc.Lookup(name); ok {
			return t
		}
	}
	if c.reg != nil {
		if t, ok := c.reg.ScopeType(name); ok {
			return t
		}
	}
	if t, ok := knownPaths[name]; ok {
		if name == "None" && expected != nil && expected.Kind == types.KindOption {
			return expected
		}
		return t
	}
	if len(e.Segments) > 1 || name == "Some" || name == "Ok" || name == "Err" {
		return types.Unknown
	}
	diag.ReportError(c.rep, diag.TypUnresolvedName, e.Sp,
		fmt.Sprintf("cannot find value `%s` in this scope", name)).Emit()
	return types.Unknown
}

func (c *Checker) call(e *ast.CallExpr, sc *Scope, expected *types.Type) *types.Type {
	if p, ok := e.Fun.(*ast.PathExpr); ok && p.Name() == "Some" && len(e.Args) == 1 {
		var hint *types.Type
		if expected != nil && expected.Kind == types.KindOption {
			hint = expected.Elem
		}
		return types.Option(c.Infer(e.Args[0], sc, hint))
	}
	fun := c.Infer(e.Fun, sc, nil)
	switch fun.Kind {
	case types.KindUnknown, types.KindParam:
		c.inferArgs(e.Args, sc)
		return types.Unknown
	case types.KindNever:
		c.inferArgs(e.Args, sc)
		return types.Never
	case types.KindSignal:
		// Signals read by calling them.
		if c.arity(e.ArgSpan, 0, len(e.Args)) {
			return fun.Elem
		}
		c.inferArgs(e.Args, sc)
		return fun.Elem
	case types.KindView:
		c.arity(e.ArgSpan, 0, len(e.Args))
		return types.View("View")
	case types.KindFn:
		if !c.arity(e.ArgSpan, len(fun.Params), len(e.Args)) {
			c.inferArgs(e.Args, sc)
			return fun.Ret
		}
		for i, arg := range e.Args {
			c.Check(arg, sc, fun.Params[i], false)
		}
		return fun.Ret
	}
	c.inferArgs(e.Args, sc)
	diag.ReportError(c.rep, diag.TypNotCallable, e.Fun.Span(),
		fmt.Sprintf("expected function, found `%s`", fun)).Emit()
	return types.Unknown
}

func (c *Checker) arity(sp source.Span, want, got int) bool {
	if want == got {
		return true
	}
	diag.ReportError(c.rep, diag.TypArgCount, sp,
		fmt.Sprintf("this function takes %s but %s supplied", plural(want, "argument"), plural(got, "argument"))).Emit()
	return false
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

func (c *Checker) inferArgs(args []ast.Expr, sc *Scope) {
	for _, a := range args {
		c.Infer(a, sc, nil)
	}
}

func (c *Checker) method(e *ast.MethodCallExpr, sc *Scope, expected *types.Type) *types.Type {
	recv := c.Infer(e.Recv, sc, nil)
	c.inferArgs(e.Args, sc)
	switch e.Method.Name {
	case "clone":
		return recv
	case "to_owned":
		if recv.Kind == types.KindStr {
			return types.String
		}
		return recv
	case "to_string", "to_uppercase", "to_lowercase":
		return types.String
	case "get", "get_untracked", "read", "with":
		if recv.Kind == types.KindSignal {
			return recv.Elem
		}
	case "into":
		if expected != nil {
			return expected
		}
	case "len", "count":
		return types.Int("usize")
	case "is_empty", "is_some", "is_none", "contains", "starts_with", "ends_with":
		return types.Bool
	case "unwrap", "expect", "unwrap_or_default", "unwrap_or":
		if recv.Kind == types.KindOption {
			return recv.Elem
		}
	case "set", "update", "push":
		return types.Unit
	}
	return types.Unknown
}

func (c *Checker) field(e *ast.FieldExpr, sc *Scope) *types.Type {
	recv := c.Infer(e.X, sc, nil)
	switch recv.Kind {
	case types.KindTuple:
		if i, err := strconv.Atoi(e.Field.Name); err == nil && i < len(recv.Elems) {
			return recv.Elems[i]
		}
	case types.KindNamed:
		if c.reg == nil {
			break
		}
		if s, ok := c.reg.Struct(recv.Name); ok {
			if t, ok := s.Fields[e.Field.Name]; ok {
				return t
			}
		}
	}
	return types.Unknown
}

func (c *Checker) unary(e *ast.UnaryExpr, sc *Scope, expected *types.Type) *types.Type {
	switch e.Op {
	case token.Bang:
		t := c.Infer(e.X, sc, nil)
		if t.Kind == types.KindInt || t.Kind == types.KindIntLit {
			return t
		}
		if !c.env.Assignable(t, types.Bool, false) {
			c.Mismatch(e.X.Span(), types.Bool, t, false)
		}
		return types.Bool
	case token.Question:
		t := c.Infer(e.X, sc, nil)
		if t.Kind == types.KindOption {
			return t.Elem
		}
		return types.Unknown
	}
	return c.Infer(e.X, sc, expected)
}

func (c *Checker) binary(e *ast.BinaryExpr, sc *Scope) *types.Type {
	switch e.Op {
	case token.AndAnd, token.OrOr:
		c.Check(e.X, sc, types.Bool, false)
		c.Check(e.Y, sc, types.Bool, false)
		return types.Bool
	case token.EqEq, token.BangEq, token.Lt, token.LtEq, token.Gt, token.GtEq:
		c.Infer(e.X, sc, nil)
		c.Infer(e.Y, sc, nil)
		return types.Bool
	}
	x := c.Infer(e.X, sc, nil)
	y := c.Infer(e.Y, sc, nil)
	switch {
	case e.Op == token.Plus && (x.Kind == types.KindString || x.Kind == types.KindStr):
		return types.String
	case x.Kind == types.KindIntLit || x.Kind == types.KindFloatLit:
		return y
	}
	return x
}

func (c *Checker) closure(e *ast.ClosureExpr, sc *Scope, expected *types.Type) *types.Type {
	var want *types.Type
	if expected != nil && expected.Kind == types.KindFn && len(expected.Params) == len(e.Params) {
		want = expected
	}
	inner := NewScope(sc)
	params := make([]*types.Type, len(e.Params))
	for i, p := range e.Params {
		t := types.Unknown
		switch {
		case p.Type != nil:
			if pt, err := types.Parse(p.Type.Text); err == nil {
				t = pt
			}
		case want != nil:
			t = want.Params[i]
		}
		params[i] = t
		inner.Define(p.Name.Name, t)
	}
	var ret *types.Type
	if e.Ret != nil {
		if rt, err := types.Parse(e.Ret.Text); err == nil {
			ret = rt
		}
	}
	if ret == nil && want != nil && want.Ret.Kind != types.KindUnit {
		ret = want.Ret
	}
	if ret != nil && !ret.IsUnknown() {
		// Narrow a bad return value to the body instead of the closure.
		c.Check(e.Body, inner, ret, false)
		return types.Fn(params, ret)
	}
	return types.Fn(params, c.Infer(e.Body, inner, nil))
}

func (c *Checker) block(b *ast.BlockExpr, sc *Scope, expected *types.Type) *types.Type {
	if b == nil {
		return types.Unit
	}
	inner := NewScope(sc)
	diverges := false
	for _, st := range b.Stmts {
		if st.Let != nil {
			var t *types.Type
			if st.Let.Type != nil {
				if lt, err := types.Parse(st.Let.Type.Text); err == nil {
					t = lt
				}
			}
			if st.Let.Value != nil {
				if t != nil {
					c.Check(st.Let.Value, inner, t, false)
				} else {
					t = c.Infer(st.Let.Value, inner, nil)
				}
			}
			if t == nil {
				t = types.Unknown
			}
			inner.Define(st.Let.Name.Name, types.Default(t))
			continue
		}
		if c.Infer(st.Expr, inner, nil).Diverges() {
			diverges = true
		}
	}
	if b.Tail != nil {
		t := c.Infer(b.Tail, inner, expected)
		if diverges {
			return types.Never
		}
		return t
	}
	if diverges {
		return types.Never
	}
	return types.Unit
}

func (c *Checker) sequence(elems []ast.Expr, sc *Scope, expected *types.Type) *types.Type {
	var hint *types.Type
	if expected != nil && expected.Kind == types.KindVec {
		hint = expected.Elem
	}
	elem := types.Unknown
	for i, el := range elems {
		t := c.Infer(el, sc, hint)
		if i == 0 {
			elem = t
		}
	}
	return types.Vec(elem)
}

func (c *Checker) macro(e *ast.MacroExpr, sc *Scope, expected *types.Type) *types.Type {
	if e.Opaque {
		if e.Name.Name == "view" {
			return types.View("View")
		}
		return types.Unknown
	}
	switch e.Name.Name {
	case "vec":
		return c.sequence(e.Args, sc, expected)
	case "dbg":
		if len(e.Args) == 1 {
			return c.Infer(e.Args[0], sc, expected)
		}
	}
	c.inferArgs(e.Args, sc)
	switch e.Name.Name {
	case "format":
		return types.String
	case "panic", "todo", "unreachable", "unimplemented":
		return types.Never
	case "println", "print", "eprintln":
		return types.Unit
	}
	return types.Unknown
}
