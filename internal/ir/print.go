package ir

import (
	"fmt"
	"io"
	"strings"

	"viewc/internal/ast"
)

// PrintOptions configures Fprint.
type PrintOptions struct {
	// Spans appends `@start..end` to every node.
	Spans bool
}

// Print renders e in the stable text form used by golden tests.
func Print(e *Expr) string {
	var b strings.Builder
	_ = Fprint(&b, e, PrintOptions{})
	return b.String()
}

// Fprint writes e to w, one builder call per line.
func Fprint(w io.Writer, e *Expr, opts PrintOptions) error {
	p := &printer{spans: opts.Spans}
	p.expr(e, 0)
	p.b.WriteByte('\n')
	_, err := io.WriteString(w, p.b.String())
	return err
}

type printer struct {
	b     strings.Builder
	spans bool
}

func (p *printer) newline(indent int) {
	p.b.WriteByte('\n')
	for range indent {
		p.b.WriteString("  ")
	}
}

func (p *printer) at(e *Expr) {
	if p.spans {
		fmt.Fprintf(&p.b, " @%d..%d", e.Span.Start, e.Span.End)
	}
}

func (p *printer) expr(e *Expr, indent int) {
	if e == nil {
		p.b.WriteString("<nil>")
		return
	}
	switch e.Kind {
	case KindView:
		p.b.WriteString("view(")
		p.at(e)
		if e.Class != nil {
			p.newline(indent + 1)
			p.b.WriteString("class=")
			p.expr(e.Class, indent+1)
			p.b.WriteByte(',')
		}
		p.list(e.Args, indent)
		p.b.WriteByte(')')
	case KindElement:
		fmt.Fprintf(&p.b, "element(%q)", e.Name)
		p.at(e)
	case KindComponent, KindSlot:
		p.b.WriteString(e.Kind.String())
		if len(e.Generics) > 0 {
			p.b.WriteString("::<")
			for i, g := range e.Generics {
				if i > 0 {
					p.b.WriteString(", ")
				}
				p.b.WriteString(g.String())
			}
			p.b.WriteByte('>')
		}
		fmt.Fprintf(&p.b, "(%s)", e.Name)
		p.at(e)
		p.captures(e)
	case KindCall, KindBuild:
		head, calls := Chain(e)
		p.expr(head, indent)
		for _, c := range calls {
			p.newline(indent + 1)
			p.b.WriteString("." + c.Name + "(")
			if c.Key != "" {
				p.b.WriteString(c.Key)
				if len(c.Args) > 0 {
					p.b.WriteString(", ")
				}
			}
			for i, a := range c.Args {
				if i > 0 {
					p.b.WriteString(", ")
				}
				p.expr(a, indent+1)
			}
			p.b.WriteByte(')')
			p.at(c)
		}
		if e.Kind == KindBuild {
			p.newline(indent + 1)
			p.b.WriteString(".build()")
			p.at(e)
		}
	case KindFragment:
		p.b.WriteString("fragment(")
		p.at(e)
		p.list(e.Args, indent)
		p.b.WriteByte(')')
	case KindText:
		fmt.Fprintf(&p.b, "text(%q)", e.Name)
		p.at(e)
	case KindValue:
		p.b.WriteString(ast.ExprString(e.Value))
		p.at(e)
	case KindClosure:
		p.captures(e)
		p.b.WriteString("move |")
		for i, prm := range e.Params {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.b.WriteString(prm.Name)
			if prm.Type != nil && !prm.Type.IsUnknown() {
				p.b.WriteString(": " + prm.Type.String())
			}
		}
		p.b.WriteString("| {")
		p.at(e)
		p.list(e.Args, indent)
		p.b.WriteByte('}')
	case KindPlaceholder:
		fmt.Fprintf(&p.b, "placeholder::<%s>(", e.Type)
		p.at(e)
		p.list(e.Args, indent)
		p.b.WriteByte(')')
	default:
		fmt.Fprintf(&p.b, "<%s>", e.Kind)
	}
}

// list prints children one per line and leaves the cursor on a fresh line
// at indent.
func (p *printer) list(args []*Expr, indent int) {
	if len(args) == 0 {
		return
	}
	for _, a := range args {
		p.newline(indent + 1)
		p.expr(a, indent+1)
		p.b.WriteByte(',')
	}
	p.newline(indent)
}

func (p *printer) captures(e *Expr) {
	if len(e.Captures) == 0 {
		return
	}
	names := make([]string, len(e.Captures))
	for i, c := range e.Captures {
		names[i] = c.Name
	}
	if e.Kind == KindClosure {
		fmt.Fprintf(&p.b, "clone(%s) ", strings.Join(names, ", "))
		return
	}
	fmt.Fprintf(&p.b, ".clone(%s)", strings.Join(names, ", "))
}
