package ir

import (
	"viewc/internal/diag"
)

// Lint reports children placed after a child that never returns. It reads
// the types Check recorded, so it runs after Check. Placeholders never
// diverge: a failure reported earlier cannot make its siblings unreachable.
func Lint(e *Expr, r diag.Reporter) {
	if r == nil {
		return
	}
	lint(e, r)
}

func lint(e *Expr, r diag.Reporter) {
	if e == nil {
		return
	}
	switch e.Kind {
	case KindCall, KindBuild:
		head, calls := Chain(e)
		var children []*Expr
		for _, c := range calls {
			if c.Name == MethodChild {
				children = append(children, c.Args...)
			}
			for _, a := range c.Args {
				lint(a, r)
			}
		}
		unreachable(children, r)
		lint(head, r)
		return
	case KindView, KindFragment, KindClosure, KindPlaceholder:
		unreachable(e.Args, r)
	}
	lint(e.Class, r)
	for _, a := range e.Args {
		lint(a, r)
	}
}

func unreachable(children []*Expr, r diag.Reporter) {
	for i := 0; i+1 < len(children); i++ {
		ch := children[i]
		if ch.Kind != KindValue || !ch.Type.Diverges() {
			continue
		}
		diag.ReportWarning(r, diag.TypUnreachable, children[i+1].Span, "unreachable child").
			WithNote(ch.Span, "any child after this expression is unreachable").
			Emit()
		return
	}
}
