package parser

import (
	"viewc/internal/ast"
	"viewc/internal/diag"
	"viewc/internal/token"
)

// macros whose arguments are ordinary expressions.
var exprMacros = map[string]bool{
	"format":        true,
	"vec":           true,
	"panic":         true,
	"todo":          true,
	"unreachable":   true,
	"unimplemented": true,
	"println":       true,
	"print":         true,
	"eprintln":      true,
	"dbg":           true,
}

// parsePathOrMacro parses `a::b::<T>` or `name!(...)`.
func (p *Parser) parsePathOrMacro() ast.Expr {
	first := p.advance()
	path := &ast.PathExpr{Segments: []ast.Ident{{Name: first.Text, Span: first.Span}}}

	if bang := p.peek(); bang.Kind == token.Bang && first.Touches(bang) {
		switch p.peekN(1).Kind {
		case token.LParen, token.LBracket, token.LBrace:
			p.advance()
			return p.parseMacro(first)
		}
	}

	for p.at(token.ColonCol) {
		next := p.peekN(1)
		switch next.Kind {
		case token.Ident:
			p.advance()
			p.advance()
			path.Segments = append(path.Segments, ast.Ident{Name: next.Text, Span: next.Span})
			continue
		case token.Lt:
			p.advance()
			path.Generics, _ = p.parseGenericList()
			continue
		}
		p.advance()
		p.reportf(diag.SynUnexpectedToken, p.diagSpan(), "expected an identifier after `::`, found %s", describe(next))
		break
	}
	path.Sp = p.spanFrom(first.Span)
	return path
}

func (p *Parser) parseMacro(name token.Token) ast.Expr {
	open := p.advance()
	m := &ast.MacroExpr{Name: ast.Ident{Name: name.Text, Span: name.Span}}
	if exprMacros[name.Text] {
		m.Args = p.parseArgs(open)
	} else {
		m.Opaque = true
		if p.skipBalanced(closerFor(open.Kind)) {
			p.advance()
		} else {
			p.unclosed(open, closerFor(open.Kind))
		}
	}
	m.Sp = p.spanFrom(name.Span)
	if m.Opaque {
		m.Raw = p.text(m.Sp)
	}
	return m
}

// parseClosure parses `move |a, b: T| body` and `|| body`. Outside
// delimiters the body follows attribute value rules.
func (p *Parser) parseClosure(full bool) ast.Expr {
	start := p.peek()
	c := &ast.ClosureExpr{}
	if p.at(token.KwMove) {
		p.advance()
		c.Move = true
	}
	switch {
	case p.at(token.OrOr):
		p.advance()
	case p.at(token.Pipe):
		p.advance()
		c.Params = p.parseClosureParams()
	default:
		sp := p.diagSpan()
		p.reportf(diag.SynUnexpectedToken, sp, "expected `|` to start the closure parameters, found %s", describe(p.peek()))
		c.Body = &ast.BadExpr{Sp: sp}
		c.Sp = p.spanFrom(start.Span)
		return c
	}

	if p.at(token.Arrow) {
		p.advance()
		if ret, ok := p.parseTypeText(token.LBrace); ok {
			c.Ret = &ret
		}
		if !p.at(token.LBrace) {
			sp := p.diagSpan()
			p.reportf(diag.SynUnexpectedToken, sp, "a closure with a return type needs a `{ ... }` body")
			c.Body = &ast.BadExpr{Sp: sp}
			c.Sp = p.spanFrom(start.Span)
			return c
		}
	}

	if full {
		c.Body = p.parseExpr()
	} else {
		c.Body = p.parseUnary(false)
	}
	c.Sp = start.Span.Cover(c.Body.Span())
	return c
}

func (p *Parser) parseClosureParams() []ast.ClosureParam {
	var params []ast.ClosureParam
	for !p.at(token.Pipe) && !p.fatal {
		tok := p.peek()
		if tok.Kind != token.Ident && tok.Kind != token.Underscore {
			p.reportf(diag.SynUnexpectedToken, p.diagSpan(), "expected a closure parameter, found %s", describe(tok))
			if !p.atOr(token.EOF, token.Gt, token.SlashGt) {
				p.advance()
				continue
			}
			return params
		}
		p.advance()
		if tok.Text == "mut" && p.at(token.Ident) {
			tok = p.advance()
		}
		param := ast.ClosureParam{Name: ast.Ident{Name: tok.Text, Span: tok.Span}}
		if p.at(token.Colon) {
			p.advance()
			if ty, ok := p.parseTypeText(token.Comma, token.Pipe); ok {
				param.Type = &ty
			}
		}
		params = append(params, param)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	p.expect(token.Pipe, diag.SynUnexpectedToken, "expected `|` to end the closure parameters")
	return params
}

func (p *Parser) parseIf() ast.Expr {
	kw := p.advance()
	cond := p.parseExpr()
	ifx := &ast.IfExpr{Cond: cond}
	open, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected `{` after the `if` condition")
	if !ok {
		ifx.Sp = p.spanFrom(kw.Span)
		return ifx
	}
	ifx.Then = p.parseBlockBody(open)
	if tok := p.peek(); tok.Kind == token.Ident && tok.Text == "else" {
		p.advance()
		switch {
		case p.peek().Kind == token.Ident && p.peek().Text == "if":
			ifx.Else = p.parseIf()
		case p.at(token.LBrace):
			ifx.Else = p.parseBlockBody(p.advance())
		default:
			sp := p.diagSpan()
			p.reportf(diag.SynUnexpectedToken, sp, "expected `{` or `if` after `else`")
			ifx.Else = &ast.BadExpr{Sp: sp}
		}
	}
	ifx.Sp = p.spanFrom(kw.Span)
	return ifx
}

// parseBlockBody parses statements after open up to the closing `}`.
func (p *Parser) parseBlockBody(open token.Token) *ast.BlockExpr {
	b := &ast.BlockExpr{}
	for !p.at(token.RBrace) && !p.at(token.EOF) && !p.fatal {
		if tok := p.peek(); tok.Kind == token.Ident && tok.Text == "let" {
			b.Stmts = append(b.Stmts, ast.Stmt{Let: p.parseLet()})
			continue
		}
		e := p.parseExpr()
		switch {
		case p.at(token.Semicolon):
			p.advance()
			b.Stmts = append(b.Stmts, ast.Stmt{Expr: e})
		case p.at(token.RBrace):
			b.Tail = e
		case isBlockLike(e):
			b.Stmts = append(b.Stmts, ast.Stmt{Expr: e})
		default:
			p.reportf(diag.SynUnexpectedToken, p.diagSpan(), "expected `;` or `}`, found %s", describe(p.peek()))
			p.skipStmt()
		}
	}
	p.expectClose(open)
	b.Sp = p.spanFrom(open.Span)
	return b
}

func isBlockLike(e ast.Expr) bool {
	switch e.(type) {
	case *ast.BlockExpr, *ast.IfExpr:
		return true
	}
	return false
}

// skipStmt drops tokens up to the end of the current statement.
func (p *Parser) skipStmt() {
	if !p.at(token.RBrace) {
		p.advance()
	}
	for !p.at(token.Semicolon) && !p.at(token.RBrace) && !p.at(token.EOF) {
		switch p.peek().Kind {
		case token.LParen, token.LBracket, token.LBrace:
			open := p.advance()
			if !p.skipBalanced(closerFor(open.Kind)) {
				return
			}
		}
		p.advance()
	}
	if p.at(token.Semicolon) {
		p.advance()
	}
}

func (p *Parser) parseLet() *ast.LetStmt {
	kw := p.advance()
	let := &ast.LetStmt{}
	name := p.peek()
	if name.Kind != token.Ident && name.Kind != token.Underscore {
		p.reportf(diag.SynUnexpectedToken, p.diagSpan(), "expected a binding name after `let`, found %s", describe(name))
		p.skipStmt()
		let.Sp = p.spanFrom(kw.Span)
		return let
	}
	p.advance()
	if name.Text == "mut" && p.at(token.Ident) {
		name = p.advance()
	}
	let.Name = ast.Ident{Name: name.Text, Span: name.Span}
	if p.at(token.Colon) {
		p.advance()
		if ty, ok := p.parseTypeText(token.Assign, token.Semicolon); ok {
			let.Type = &ty
		}
	}
	if p.at(token.Assign) {
		p.advance()
		let.Value = p.parseExpr()
	}
	p.expect(token.Semicolon, diag.SynUnexpectedToken, "expected `;` after `let`")
	let.Sp = p.spanFrom(kw.Span)
	return let
}
