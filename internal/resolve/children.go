package resolve

import (
	"fmt"

	"viewc/internal/ast"
	"viewc/internal/diag"
	"viewc/internal/registry"
	"viewc/internal/types"
)

// bindChildren decides how the plain children reach a resolved component
// or slot and checks the `let:` binding list against the declared closure.
func (rs *resolver) bindChildren(n *ast.Node, info *Info) {
	c := info.Component
	let := n.Attr(ast.AttrChildrenLet)
	fail := func(b *diag.ReportBuilder) {
		info.ChildrenFailed = true
		b.Emit()
	}

	switch c.Children.Kind {
	case registry.ChildrenNone:
		if len(info.Plain) > 0 {
			sp := info.Plain[0].Span.Cover(info.Plain[len(info.Plain)-1].Span)
			fail(diag.ReportError(rs.r, diag.ResUnexpectedChildren, sp,
				fmt.Sprintf("the %s `<%s>` does not accept children", c.Kind(), n.Name)))
		}
		if let != nil {
			fail(diag.ReportError(rs.r, diag.ResUnexpectedChildrenBinding, let.Span,
				fmt.Sprintf("the %s `<%s>` has no children to bind", c.Kind(), n.Name)))
		}

	case registry.ChildrenOpaque:
		if let != nil {
			fail(diag.ReportError(rs.r, diag.ResUnexpectedChildrenBinding, let.Span,
				fmt.Sprintf("the %s `<%s>` takes plain children; `let:` bindings need a closure", c.Kind(), n.Name)))
		}

	case registry.ChildrenClosure:
		want := len(c.Children.Params)
		switch {
		case let == nil:
			if len(info.Plain) == 0 || want == 0 {
				return
			}
			fail(diag.ReportError(rs.r, diag.ResMissingChildrenBinding, n.OpenSpan,
				fmt.Sprintf("the children of `<%s>` are a closure taking %s; bind them with `let:name`", n.Name, args(want))))
			return
		case len(let.Idents) == 0 && want >= 1:
			fail(diag.ReportError(rs.r, diag.ResMissingChildrenBinding, let.Span,
				fmt.Sprintf("`let:` needs a name: the children closure of `<%s>` takes %s", n.Name, args(want))))
		case len(let.Idents) != want:
			fail(diag.ReportError(rs.r, diag.ResChildrenArityMismatch, let.Span,
				fmt.Sprintf("the children closure of `<%s>` takes %s but %d binding(s) were given", n.Name, args(want), len(let.Idents))))
		}
		for i, id := range let.Idents {
			t := types.Unknown
			if i < want {
				t = types.Substitute(c.Children.Params[i], info.Generics)
			}
			info.Bindings = append(info.Bindings, Binding{Name: id.Name, Span: id.Span, Type: t})
		}
	}
}

func args(n int) string {
	if n == 1 {
		return "1 argument"
	}
	return fmt.Sprintf("%d arguments", n)
}
