package parser

import (
	"viewc/internal/ast"
	"viewc/internal/diag"
	"viewc/internal/token"
)

// Binding powers of binary operators; 0 means "not a binary operator".
const (
	precOr = iota + 1
	precAnd
	precCompare
	precBitOr
	precBitAnd
	precAdditive
	precMultiplicative
)

func binaryPrec(k token.Kind) int {
	switch k {
	case token.OrOr:
		return precOr
	case token.AndAnd:
		return precAnd
	case token.EqEq, token.BangEq, token.Lt, token.LtEq, token.Gt, token.GtEq:
		return precCompare
	case token.Pipe:
		return precBitOr
	case token.Amp:
		return precBitAnd
	case token.Plus, token.Minus:
		return precAdditive
	case token.Star, token.Slash, token.Percent:
		return precMultiplicative
	}
	return 0
}

// parseExpr parses a full expression. It is used inside delimiters, where
// `<` and `>` cannot be confused with markup.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseBinary(0)
}

// parseAttrValue parses the value after `=`: a unary or postfix expression
// or a closure. Binary operators need parentheses here.
func (p *Parser) parseAttrValue() ast.Expr {
	return p.parseUnary(false)
}

func (p *Parser) parseBinary(minPrec int) ast.Expr {
	left := p.parseUnary(true)
	for {
		op := p.peek()
		prec := binaryPrec(op.Kind)
		if prec == 0 || prec < minPrec {
			return left
		}
		p.advance()
		right := p.parseBinary(prec + 1)
		left = &ast.BinaryExpr{
			Op:    op.Kind,
			X:     left,
			Y:     right,
			OpPos: op.Span,
			Sp:    left.Span().Cover(right.Span()),
		}
	}
}

func (p *Parser) parseUnary(full bool) ast.Expr {
	switch tok := p.peek(); tok.Kind {
	case token.Bang, token.Minus, token.Star, token.Amp:
		p.advance()
		if tok.Kind == token.Amp && p.peek().Kind == token.Ident && p.peek().Text == "mut" {
			p.advance()
		}
		x := p.parseUnary(full)
		return &ast.UnaryExpr{Op: tok.Kind, X: x, Sp: tok.Span.Cover(x.Span())}
	case token.AndAnd:
		// `&&x` is two borrows.
		p.advance()
		x := p.parseUnary(full)
		inner := &ast.UnaryExpr{Op: token.Amp, X: x, Sp: x.Span()}
		return &ast.UnaryExpr{Op: token.Amp, X: inner, Sp: tok.Span.Cover(x.Span())}
	}
	return p.parsePostfix(p.parsePrimary(full))
}

func (p *Parser) parsePostfix(x ast.Expr) ast.Expr {
	for !p.fatal {
		switch tok := p.peek(); tok.Kind {
		case token.Dot:
			p.advance()
			name := p.peek()
			if name.Kind != token.Ident && name.Kind != token.IntLit {
				p.reportf(diag.SynUnexpectedToken, p.diagSpan(), "expected a field or method name after `.`, found %s", describe(name))
				return x
			}
			p.advance()
			id := ast.Ident{Name: name.Text, Span: name.Span}
			if p.at(token.ColonCol) && p.peekN(1).Kind == token.Lt {
				p.advance()
				p.parseGenericList()
			}
			if name.Kind == token.Ident && p.at(token.LParen) {
				open := p.advance()
				args := p.parseArgs(open)
				x = &ast.MethodCallExpr{Recv: x, Method: id, Args: args, ArgSpan: p.spanFrom(open.Span), Sp: p.spanFrom(x.Span())}
				continue
			}
			x = &ast.FieldExpr{X: x, Field: id, Sp: x.Span().Cover(name.Span)}
		case token.LParen:
			open := p.advance()
			args := p.parseArgs(open)
			x = &ast.CallExpr{Fun: x, Args: args, ArgSpan: p.spanFrom(open.Span), Sp: p.spanFrom(x.Span())}
		case token.LBracket:
			open := p.advance()
			idx := p.parseExpr()
			p.expectClose(open)
			x = &ast.IndexExpr{X: x, Index: idx, Sp: p.spanFrom(x.Span())}
		case token.Question:
			p.advance()
			x = &ast.UnaryExpr{Op: token.Question, X: x, Sp: x.Span().Cover(tok.Span)}
		default:
			return x
		}
	}
	return x
}

// parseArgs parses a comma-separated list after open up to its closer.
func (p *Parser) parseArgs(open token.Token) []ast.Expr {
	closer := closerFor(open.Kind)
	var args []ast.Expr
	for !p.at(closer) && !p.at(token.EOF) && !p.fatal {
		args = append(args, p.parseExpr())
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	p.expectClose(open)
	return args
}

func (p *Parser) parsePrimary(full bool) ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case token.IntLit, token.FloatLit, token.StringLit, token.CharLit, token.KwTrue, token.KwFalse:
		p.advance()
		return literal(tok)
	case token.Ident:
		switch tok.Text {
		case "if":
			return p.parseIf()
		}
		return p.parsePathOrMacro()
	case token.Underscore:
		p.advance()
		return &ast.PathExpr{Segments: []ast.Ident{{Name: "_", Span: tok.Span}}, Sp: tok.Span}
	case token.LParen:
		return p.parseParenOrTuple()
	case token.LBracket:
		return p.parseArray()
	case token.LBrace:
		open := p.advance()
		return p.parseBlockBody(open)
	case token.KwMove, token.Pipe, token.OrOr:
		return p.parseClosure(full)
	}

	sp := p.diagSpan()
	p.reportf(diag.SynExpectExpression, sp, "expected an expression, found %s", describe(tok))
	switch tok.Kind {
	case token.EOF, token.Gt, token.SlashGt, token.Lt, token.LtSlash,
		token.RParen, token.RBracket, token.RBrace, token.Comma, token.Semicolon:
	default:
		p.advance()
	}
	return &ast.BadExpr{Sp: sp}
}

func literal(tok token.Token) *ast.LitExpr {
	lit := &ast.LitExpr{Raw: tok.Text, Sp: tok.Span}
	switch tok.Kind {
	case token.IntLit:
		lit.Kind = ast.LitInt
	case token.FloatLit:
		lit.Kind = ast.LitFloat
	case token.StringLit:
		lit.Kind = ast.LitString
		lit.Value = unquote(tok.Text)
	case token.CharLit:
		lit.Kind = ast.LitChar
		lit.Value = unquote(tok.Text)
	default:
		lit.Kind = ast.LitBool
		lit.Value = tok.Text
	}
	return lit
}

func (p *Parser) parseParenOrTuple() ast.Expr {
	open := p.advance()
	if p.at(token.RParen) {
		p.advance()
		return &ast.TupleExpr{Sp: open.Span.Cover(p.lastSpan)}
	}
	first := p.parseExpr()
	if !p.at(token.Comma) {
		p.expectClose(open)
		return &ast.ParenExpr{X: first, Sp: p.spanFrom(open.Span)}
	}
	elems := []ast.Expr{first}
	for p.at(token.Comma) {
		p.advance()
		if p.at(token.RParen) {
			break
		}
		elems = append(elems, p.parseExpr())
	}
	p.expectClose(open)
	return &ast.TupleExpr{Elems: elems, Sp: p.spanFrom(open.Span)}
}

func (p *Parser) parseArray() ast.Expr {
	open := p.advance()
	if p.at(token.RBracket) {
		p.advance()
		return &ast.ArrayExpr{Sp: open.Span.Cover(p.lastSpan)}
	}
	first := p.parseExpr()
	if p.at(token.Semicolon) {
		// [value; count]
		p.advance()
		p.parseExpr()
		p.expectClose(open)
		return &ast.ArrayExpr{Elems: []ast.Expr{first}, Sp: p.spanFrom(open.Span)}
	}
	elems := []ast.Expr{first}
	for p.at(token.Comma) {
		p.advance()
		if p.at(token.RBracket) {
			break
		}
		elems = append(elems, p.parseExpr())
	}
	p.expectClose(open)
	return &ast.ArrayExpr{Elems: elems, Sp: p.spanFrom(open.Span)}
}
