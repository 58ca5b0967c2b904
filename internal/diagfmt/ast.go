package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"viewc/internal/ast"
	"viewc/internal/source"
)

type ASTNodeOutput struct {
	Type     string          `json:"type"`
	Kind     string          `json:"kind,omitempty"`
	Span     source.Span     `json:"span"`
	Text     string          `json:"text,omitempty"`
	Children []ASTNodeOutput `json:"children,omitempty"`
	Fields   map[string]any  `json:"fields,omitempty"`
}

// FormatViewPretty writes v as an indented tree, one node or attribute
// per line.
func FormatViewPretty(w io.Writer, v *ast.View, fs *source.FileSet) error {
	if v == nil {
		return fmt.Errorf("no view")
	}
	root := buildViewTreeNode(v, fs)
	if _, err := fmt.Fprintln(w, root.label); err != nil {
		return err
	}
	return writeIndented(w, root.children, "")
}

func writeIndented(w io.Writer, nodes []*treeNode, prefix string) error {
	for i, n := range nodes {
		branch, next := "├─ ", "│  "
		if i == len(nodes)-1 {
			branch, next = "└─ ", "   "
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", prefix, branch, n.label); err != nil {
			return err
		}
		if err := writeIndented(w, n.children, prefix+next); err != nil {
			return err
		}
	}
	return nil
}

// FormatViewJSON writes v as nested JSON objects.
func FormatViewJSON(w io.Writer, v *ast.View) error {
	if v == nil {
		return fmt.Errorf("no view")
	}
	out := ASTNodeOutput{Type: "View", Span: v.Span}
	if v.Class != nil {
		out.Fields = map[string]any{"class": ast.ExprString(v.Class)}
	}
	if v.Root != nil {
		out.Children = []ASTNodeOutput{nodeJSON(v.Root)}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func nodeJSON(n *ast.Node) ASTNodeOutput {
	out := ASTNodeOutput{Type: "Node", Kind: n.Kind.String(), Span: n.Span}
	switch n.Kind {
	case ast.NodeText:
		out.Text = n.Text
	case ast.NodeExpr:
		if n.Expr != nil {
			out.Text = ast.ExprString(n.Expr)
		}
	case ast.NodeFragment:
		if n.Implicit {
			out.Fields = map[string]any{"implicit": true}
		}
	default:
		out.Text = n.Name
		fields := map[string]any{"name_span": n.NameSpan}
		if len(n.Generics) > 0 {
			gens := make([]string, len(n.Generics))
			for i, g := range n.Generics {
				gens[i] = g.Text
			}
			fields["generics"] = gens
		}
		if n.SelfClosing {
			fields["self_closing"] = true
		}
		out.Fields = fields
		for _, a := range n.Attrs {
			out.Children = append(out.Children, attrJSON(a))
		}
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, nodeJSON(c))
	}
	return out
}

func attrJSON(a *ast.Attr) ASTNodeOutput {
	out := ASTNodeOutput{Type: "Attr", Kind: a.Kind.String(), Span: a.Span, Text: a.Key}
	fields := map[string]any{}
	if a.Name != "" {
		fields["name"] = a.Name
	}
	if a.Value != nil {
		fields["value"] = ast.ExprString(a.Value)
	}
	if len(a.Idents) > 0 {
		names := make([]string, len(a.Idents))
		for i, id := range a.Idents {
			names[i] = id.Name
		}
		fields["idents"] = names
	}
	if a.Shorthand {
		fields["shorthand"] = true
	}
	if len(fields) > 0 {
		out.Fields = fields
	}
	return out
}

func buildViewTreeNode(v *ast.View, fs *source.FileSet) *treeNode {
	root := &treeNode{label: fmt.Sprintf("View (span: %s)", formatSpan(v.Span, fs))}
	if v.Class != nil {
		root.children = append(root.children, &treeNode{
			label: fmt.Sprintf("Class: %s (span: %s)", ast.ExprString(v.Class), formatSpan(v.ClassSpan, fs)),
		})
	}
	if v.Root != nil {
		root.children = append(root.children, buildNodeTreeNode(v.Root, fs))
	}
	return root
}

func buildNodeTreeNode(n *ast.Node, fs *source.FileSet) *treeNode {
	var label string
	switch n.Kind {
	case ast.NodeText:
		label = fmt.Sprintf("Text %q", n.Text)
	case ast.NodeExpr:
		label = "Expr {}"
		if n.Expr != nil {
			label = fmt.Sprintf("Expr {%s}", ast.ExprString(n.Expr))
		}
	case ast.NodeFragment:
		label = "Fragment"
		if n.Implicit {
			label = "Fragment (implicit)"
		}
	default:
		label = n.Kind.String() + " " + n.Name
		if len(n.Generics) > 0 {
			gens := make([]string, len(n.Generics))
			for i, g := range n.Generics {
				gens[i] = g.Text
			}
			label += "<" + strings.Join(gens, ", ") + ">"
		}
	}
	node := &treeNode{label: fmt.Sprintf("%s (span: %s)", label, formatSpan(n.Span, fs))}
	for _, a := range n.Attrs {
		node.children = append(node.children, &treeNode{label: attrLabel(a, fs)})
	}
	for _, c := range n.Children {
		node.children = append(node.children, buildNodeTreeNode(c, fs))
	}
	return node
}

func attrLabel(a *ast.Attr, fs *source.FileSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Attr %s %s", a.Kind, a.Key)
	if len(a.Idents) > 0 {
		names := make([]string, len(a.Idents))
		for i, id := range a.Idents {
			names[i] = id.Name
		}
		fmt.Fprintf(&b, " [%s]", strings.Join(names, ", "))
	}
	if a.Value != nil && !a.Shorthand {
		fmt.Fprintf(&b, " = %s", ast.ExprString(a.Value))
	}
	fmt.Fprintf(&b, " (span: %s)", formatSpan(a.Span, fs))
	return b.String()
}
