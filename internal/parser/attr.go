package parser

import (
	"viewc/internal/ast"
	"viewc/internal/diag"
	"viewc/internal/token"
)

// parseAttrs parses attributes up to `>` or `/>`, which is left unconsumed.
// It returns false when the open tag ends early (a new tag or end of input).
func (p *Parser) parseAttrs(n *ast.Node) bool {
	for !p.fatal {
		tok := p.peek()
		switch {
		case tok.Kind == token.Gt || tok.Kind == token.SlashGt:
			return true
		case tok.Kind == token.EOF:
			p.emit(diag.SynUnclosedTag, n.NameSpan, "unexpected end of input inside `<"+n.Name+">`", nil)
			return false
		case tok.Kind == token.Lt || tok.Kind == token.LtSlash:
			p.reportf(diag.SynUnexpectedToken, tok.Span, "expected `>` or `/>` to end `<%s>`", n.Name)
			return false
		case tok.Kind == token.LBrace:
			n.Attrs = append(n.Attrs, p.parseBracedAttr())
		case p.atAttrKey():
			n.Attrs = append(n.Attrs, p.parseAttr())
		default:
			p.reportf(diag.SynExpectAttrName, tok.Span, "expected an attribute name, found %s", describe(tok))
			p.advance()
		}
	}
	return false
}

func (p *Parser) parseAttr() *ast.Attr {
	key, keySpan := p.parseAttrKey()
	a := &ast.Attr{Kind: ast.AttrRaw, Key: key, KeySpan: keySpan, Span: keySpan}
	if !p.at(token.Assign) {
		return a
	}
	p.advance()
	if p.atOr(token.Gt, token.SlashGt, token.EOF) {
		sp := p.diagSpan()
		p.reportf(diag.SynExpectExpression, sp, "expected a value for `%s`", key)
		a.Value = &ast.BadExpr{Sp: sp}
		a.Span = p.spanFrom(keySpan)
		return a
	}
	a.Value = p.parseAttrValue()
	a.Span = keySpan.Cover(a.Value.Span())
	return a
}

// parseBracedAttr parses `{..expr}` (a spread) or `{expr}`.
func (p *Parser) parseBracedAttr() *ast.Attr {
	open := p.advance()
	a := &ast.Attr{Kind: ast.AttrRaw, Braced: true, KeySpan: open.Span}
	if p.at(token.DotDot) {
		dots := p.advance()
		a.Key = ".."
		a.KeySpan = dots.Span
	}
	if !p.at(token.RBrace) {
		a.Value = p.parseExpr()
	}
	p.expectClose(open)
	a.Span = p.spanFrom(open.Span)
	return a
}
