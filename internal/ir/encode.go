package ir

import (
	"encoding/json"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"viewc/internal/ast"
	"viewc/internal/source"
)

// SpanJSON is a byte range plus the text it covers.
type SpanJSON struct {
	Start uint32 `json:"start" msgpack:"start"`
	End   uint32 `json:"end" msgpack:"end"`
	Line  uint32 `json:"line,omitempty" msgpack:"line,omitempty"`
	Col   uint32 `json:"col,omitempty" msgpack:"col,omitempty"`
	Text  string `json:"text,omitempty" msgpack:"text,omitempty"`
}

// Node is the exported form of an Expr: the span map written by
// `--emit json` and `--emit msgpack`.
type Node struct {
	Kind     string   `json:"kind" msgpack:"kind"`
	Name     string   `json:"name,omitempty" msgpack:"name,omitempty"`
	Key      string   `json:"key,omitempty" msgpack:"key,omitempty"`
	Type     string   `json:"type,omitempty" msgpack:"type,omitempty"`
	Generics []string `json:"generics,omitempty" msgpack:"generics,omitempty"`
	Params   []string `json:"params,omitempty" msgpack:"params,omitempty"`
	Captures []string `json:"captures,omitempty" msgpack:"captures,omitempty"`
	Expr     string   `json:"expr,omitempty" msgpack:"expr,omitempty"`
	Span     SpanJSON `json:"span" msgpack:"span"`
	Recv     *Node    `json:"recv,omitempty" msgpack:"recv,omitempty"`
	Class    *Node    `json:"class,omitempty" msgpack:"class,omitempty"`
	Args     []*Node  `json:"args,omitempty" msgpack:"args,omitempty"`
}

// Export converts e for serialization. file may be nil; when set, spans
// carry their line, column and text.
func Export(e *Expr, file *source.File) *Node {
	if e == nil {
		return nil
	}
	n := &Node{
		Kind: e.Kind.String(),
		Name: e.Name,
		Key:  e.Key,
		Span: exportSpan(e.Span, file),
		Recv: Export(e.Recv, file),
	}
	if e.Class != nil {
		n.Class = Export(e.Class, file)
	}
	if e.Type != nil && (e.Kind == KindPlaceholder || e.Kind == KindValue) {
		n.Type = e.Type.String()
	}
	if e.Value != nil {
		n.Expr = ast.ExprString(e.Value)
	}
	for _, g := range e.Generics {
		n.Generics = append(n.Generics, g.String())
	}
	for _, p := range e.Params {
		n.Params = append(n.Params, p.Name)
	}
	for _, c := range e.Captures {
		n.Captures = append(n.Captures, c.Name)
	}
	for _, a := range e.Args {
		n.Args = append(n.Args, Export(a, file))
	}
	return n
}

func exportSpan(sp source.Span, file *source.File) SpanJSON {
	out := SpanJSON{Start: sp.Start, End: sp.End}
	if file == nil || sp.File != file.ID {
		return out
	}
	lc := file.LineCol(sp.Start)
	out.Line, out.Col = lc.Line, lc.Col
	out.Text = file.Slice(sp)
	return out
}

// EncodeJSON writes the span map of e as indented JSON.
func EncodeJSON(w io.Writer, e *Expr, file *source.File) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Export(e, file))
}

// EncodeMsgpack writes the span map of e in msgpack form.
func EncodeMsgpack(w io.Writer, e *Expr, file *source.File) error {
	return msgpack.NewEncoder(w).Encode(Export(e, file))
}

// DecodeMsgpack reads a span map written by EncodeMsgpack.
func DecodeMsgpack(r io.Reader) (*Node, error) {
	var n Node
	if err := msgpack.NewDecoder(r).Decode(&n); err != nil {
		return nil, err
	}
	return &n, nil
}
