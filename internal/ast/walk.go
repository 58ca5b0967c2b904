package ast

// Inspect visits the tree rooted at n in pre-order. When f returns false the
// children of that node are skipped.
func Inspect(n *Node, f func(*Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range n.Children {
		Inspect(c, f)
	}
}

// InspectExpr visits e and its sub-expressions in pre-order.
func InspectExpr(e Expr, f func(Expr) bool) {
	if e == nil || !f(e) {
		return
	}
	switch x := e.(type) {
	case *CallExpr:
		InspectExpr(x.Fun, f)
		inspectList(x.Args, f)
	case *MethodCallExpr:
		InspectExpr(x.Recv, f)
		inspectList(x.Args, f)
	case *FieldExpr:
		InspectExpr(x.X, f)
	case *IndexExpr:
		InspectExpr(x.X, f)
		InspectExpr(x.Index, f)
	case *UnaryExpr:
		InspectExpr(x.X, f)
	case *BinaryExpr:
		InspectExpr(x.X, f)
		InspectExpr(x.Y, f)
	case *ClosureExpr:
		InspectExpr(x.Body, f)
	case *BlockExpr:
		for _, s := range x.Stmts {
			if s.Let != nil {
				InspectExpr(s.Let.Value, f)
			} else {
				InspectExpr(s.Expr, f)
			}
		}
		InspectExpr(x.Tail, f)
	case *IfExpr:
		InspectExpr(x.Cond, f)
		if x.Then != nil {
			InspectExpr(x.Then, f)
		}
		InspectExpr(x.Else, f)
	case *ParenExpr:
		InspectExpr(x.X, f)
	case *TupleExpr:
		inspectList(x.Elems, f)
	case *ArrayExpr:
		inspectList(x.Elems, f)
	case *MacroExpr:
		inspectList(x.Args, f)
	}
}

func inspectList(list []Expr, f func(Expr) bool) {
	for _, e := range list {
		InspectExpr(e, f)
	}
}
