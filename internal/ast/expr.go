package ast

import (
	"viewc/internal/source"
	"viewc/internal/token"
)

// Expr is a host-language expression embedded in the markup: attribute
// values, `{ }` children and everything nested inside them.
type Expr interface {
	Span() source.Span
	exprNode()
}

// LitKind distinguishes literal expressions.
type LitKind uint8

const (
	LitInt LitKind = iota
	LitFloat
	LitString
	LitChar
	LitBool
)

type (
	// BadExpr stands in for an expression that failed to parse.
	BadExpr struct {
		Sp source.Span
	}

	LitExpr struct {
		Kind LitKind
		Raw  string
		// Value is the decoded text of string and char literals.
		Value string
		Sp    source.Span
	}

	// PathExpr is `a`, `a::b` or `a::b::<T>`.
	PathExpr struct {
		Segments []Ident
		Generics []TypeArg
		Sp       source.Span
	}

	CallExpr struct {
		Fun     Expr
		Args    []Expr
		ArgSpan source.Span // `(` .. `)`
		Sp      source.Span
	}

	MethodCallExpr struct {
		Recv    Expr
		Method  Ident
		Args    []Expr
		ArgSpan source.Span
		Sp      source.Span
	}

	// FieldExpr is `x.name` or the tuple access `x.0`.
	FieldExpr struct {
		X     Expr
		Field Ident
		Sp    source.Span
	}

	IndexExpr struct {
		X     Expr
		Index Expr
		Sp    source.Span
	}

	// UnaryExpr covers `!x`, `-x`, `&x` and `*x`.
	UnaryExpr struct {
		Op token.Kind
		X  Expr
		Sp source.Span
	}

	BinaryExpr struct {
		Op    token.Kind
		X, Y  Expr
		OpPos source.Span
		Sp    source.Span
	}

	ClosureParam struct {
		Name Ident
		Type *TypeArg
	}

	ClosureExpr struct {
		Move   bool
		Params []ClosureParam
		Ret    *TypeArg
		Body   Expr
		Sp     source.Span
	}

	// LetStmt is `let name[: T] = value;` inside a block.
	LetStmt struct {
		Name  Ident
		Type  *TypeArg
		Value Expr
		Sp    source.Span
	}

	// Stmt is either a LetStmt or an expression followed by `;`.
	Stmt struct {
		Let  *LetStmt
		Expr Expr
	}

	BlockExpr struct {
		Stmts []Stmt
		Tail  Expr
		Sp    source.Span
	}

	IfExpr struct {
		Cond Expr
		Then *BlockExpr
		Else Expr
		Sp   source.Span
	}

	ParenExpr struct {
		X  Expr
		Sp source.Span
	}

	TupleExpr struct {
		Elems []Expr
		Sp    source.Span
	}

	ArrayExpr struct {
		Elems []Expr
		Sp    source.Span
	}

	// MacroExpr is `name!(args)`. Macros with expression arguments
	// (`format!`, `vec!`, ...) have them parsed; any other macro, nested
	// `view!` included, is Opaque and only its text is kept in Raw.
	MacroExpr struct {
		Name   Ident
		Args   []Expr
		Opaque bool
		Raw    string
		Sp     source.Span
	}
)

func (e *BadExpr) Span() source.Span        { return e.Sp }
func (e *LitExpr) Span() source.Span        { return e.Sp }
func (e *PathExpr) Span() source.Span       { return e.Sp }
func (e *CallExpr) Span() source.Span       { return e.Sp }
func (e *MethodCallExpr) Span() source.Span { return e.Sp }
func (e *FieldExpr) Span() source.Span      { return e.Sp }
func (e *IndexExpr) Span() source.Span      { return e.Sp }
func (e *UnaryExpr) Span() source.Span      { return e.Sp }
func (e *BinaryExpr) Span() source.Span     { return e.Sp }
func (e *ClosureExpr) Span() source.Span    { return e.Sp }
func (e *BlockExpr) Span() source.Span      { return e.Sp }
func (e *IfExpr) Span() source.Span         { return e.Sp }
func (e *ParenExpr) Span() source.Span      { return e.Sp }
func (e *TupleExpr) Span() source.Span      { return e.Sp }
func (e *ArrayExpr) Span() source.Span      { return e.Sp }
func (e *MacroExpr) Span() source.Span      { return e.Sp }

func (*BadExpr) exprNode()        {}
func (*LitExpr) exprNode()        {}
func (*PathExpr) exprNode()       {}
func (*CallExpr) exprNode()       {}
func (*MethodCallExpr) exprNode() {}
func (*FieldExpr) exprNode()      {}
func (*IndexExpr) exprNode()      {}
func (*UnaryExpr) exprNode()      {}
func (*BinaryExpr) exprNode()     {}
func (*ClosureExpr) exprNode()    {}
func (*BlockExpr) exprNode()      {}
func (*IfExpr) exprNode()         {}
func (*ParenExpr) exprNode()      {}
func (*TupleExpr) exprNode()      {}
func (*ArrayExpr) exprNode()      {}
func (*MacroExpr) exprNode()      {}

// Name returns the path joined with `::`.
func (e *PathExpr) Name() string {
	if len(e.Segments) == 1 {
		return e.Segments[0].Name
	}
	n := 0
	for _, s := range e.Segments {
		n += len(s.Name) + 2
	}
	buf := make([]byte, 0, n)
	for i, s := range e.Segments {
		if i > 0 {
			buf = append(buf, "::"...)
		}
		buf = append(buf, s.Name...)
	}
	return string(buf)
}

// Unparen strips any number of enclosing parentheses.
func Unparen(e Expr) Expr {
	for {
		p, ok := e.(*ParenExpr)
		if !ok || p.X == nil {
			return e
		}
		e = p.X
	}
}
