// Package ir holds the output of lowering: a tree of builder calls in
// which every node carries the span of the syntax that produced it.
package ir

import (
	"viewc/internal/ast"
	"viewc/internal/source"
	"viewc/internal/types"
)

// Kind enumerates IR expression kinds.
type Kind uint8

const (
	// KindView is the whole invocation: view(root).
	KindView Kind = iota
	// KindElement starts an element chain: element("div").
	KindElement
	// KindComponent starts a component chain: component::<G>(Name).
	KindComponent
	// KindSlot starts a slot chain: slot(Name).
	KindSlot
	// KindCall is a builder setter applied to Recv.
	KindCall
	// KindBuild finishes a component or slot chain.
	KindBuild
	KindFragment
	KindText
	// KindValue is a host expression copied from the markup.
	KindValue
	// KindClosure wraps children passed as a closure; Params are the
	// `let:` bindings.
	KindClosure
	// KindPlaceholder stands in, with a well-formed type, for something an
	// earlier stage already reported.
	KindPlaceholder
)

var kindNames = [...]string{
	KindView:        "view",
	KindElement:     "element",
	KindComponent:   "component",
	KindSlot:        "slot",
	KindCall:        "call",
	KindBuild:       "build",
	KindFragment:    "fragment",
	KindText:        "text",
	KindValue:       "value",
	KindClosure:     "closure",
	KindPlaceholder: "placeholder",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// Setter names used by KindCall.
const (
	MethodProp      = "prop"
	MethodAttr      = "attr"
	MethodOn        = "on"
	MethodProperty  = "property"
	MethodClass     = "class"
	MethodStyle     = "style"
	MethodSpread    = "spread"
	MethodDirective = "directive"
	MethodSlot      = "slot_field"
	MethodChild     = "child"
	MethodChildren  = "children"
)

// Param is one children-closure parameter.
type Param struct {
	Name string
	Span source.Span
	Type *types.Type
}

// Capture is one `clone:` identifier. KeySpan covers `clone:name`.
type Capture struct {
	Name    string
	Span    source.Span
	KeySpan source.Span
}

// Expr is one IR node. Span never covers more than the syntax the node was
// produced from: setters carry the attribute key, values their own
// expression, build the tag name.
type Expr struct {
	Kind Kind
	Span source.Span

	// Name is the tag, component or slot name, the setter method, or the
	// decoded text of a KindText.
	Name string
	// Key is the setter argument name: prop, attribute, event, slot field
	// or directive. KeySpan covers it without its prefix.
	Key     string
	KeySpan source.Span

	Recv *Expr
	Args []*Expr

	Generics     []*types.Type
	GenericsSpan source.Span

	Value ast.Expr
	// Type is the stood-in type of a placeholder. Check records the
	// inferred type of values here.
	Type *types.Type

	Params   []Param
	Captures []Capture

	// Class is the global class of a KindView.
	Class *Expr
}

// Chain returns the head of a builder chain and its setters in call order.
// For an Expr that is not a chain it returns e and nil.
func Chain(e *Expr) (head *Expr, calls []*Expr) {
	head = e
	if head != nil && head.Kind == KindBuild {
		head = head.Recv
	}
	for head != nil && head.Kind == KindCall {
		calls = append(calls, head)
		head = head.Recv
	}
	for i, j := 0, len(calls)-1; i < j; i, j = i+1, j-1 {
		calls[i], calls[j] = calls[j], calls[i]
	}
	return head, calls
}

// Inspect visits e and everything reachable from it in pre-order. When f
// returns false the node's operands are skipped.
func Inspect(e *Expr, f func(*Expr) bool) {
	if e == nil || !f(e) {
		return
	}
	Inspect(e.Recv, f)
	Inspect(e.Class, f)
	for _, a := range e.Args {
		Inspect(a, f)
	}
}
