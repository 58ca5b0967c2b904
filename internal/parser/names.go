package parser

import (
	"strings"

	"viewc/internal/ast"
	"viewc/internal/diag"
	"viewc/internal/source"
	"viewc/internal/token"
)

// parseTagName reads `name`, `my-element` or `ui::Button`. Segments must
// touch: `my - element` is not one name.
func (p *Parser) parseTagName() (string, source.Span, bool) {
	first := p.peek()
	if first.Kind != token.Ident {
		return "", source.Span{}, false
	}
	p.advance()
	var b strings.Builder
	b.WriteString(first.Text)
	prev := first
	for {
		sep, part := p.peek(), p.peekN(1)
		if !prev.Touches(sep) || !sep.Touches(part) {
			break
		}
		switch {
		case sep.Kind == token.Minus && (part.Kind == token.Ident || part.Kind == token.IntLit):
		case sep.Kind == token.ColonCol && part.Kind == token.Ident:
		default:
			return b.String(), first.Span.Cover(prev.Span), true
		}
		p.advance()
		p.advance()
		b.WriteString(sep.Text)
		b.WriteString(part.Text)
		prev = part
	}
	return b.String(), first.Span.Cover(prev.Span), true
}

// atAttrKey reports whether the current token can start an attribute key.
func (p *Parser) atAttrKey() bool {
	k := p.peek().Kind
	return k == token.Ident || k == token.Underscore
}

// parseAttrKey reads `id`, `on:click`, `class:bg-green-400` or `let:item`:
// name parts joined by touching `-` and `:`.
func (p *Parser) parseAttrKey() (string, source.Span) {
	first := p.advance()
	var b strings.Builder
	b.WriteString(first.Text)
	prev := first
	for {
		next := p.peek()
		if !prev.Touches(next) {
			break
		}
		if next.Kind != token.Colon && next.Kind != token.Minus && !next.IsNamePart() {
			break
		}
		p.advance()
		b.WriteString(next.Text)
		prev = next
	}
	return b.String(), first.Span.Cover(prev.Span)
}

// parseGenericList parses `<T1, T2>` and returns the arguments and the span
// of the whole list.
func (p *Parser) parseGenericList() ([]ast.TypeArg, source.Span) {
	lt := p.advance()
	var args []ast.TypeArg
	for !p.at(token.Gt) {
		if p.atOr(token.EOF, token.SlashGt, token.LtSlash) {
			p.reportf(diag.SynUnexpectedToken, p.diagSpan(), "expected `>` to close the generic argument list")
			return args, p.spanFrom(lt.Span)
		}
		arg, ok := p.parseTypeText(token.Comma, token.Gt)
		if !ok {
			p.reportf(diag.SynUnexpectedToken, p.diagSpan(), "expected a type, found %s", describe(p.peek()))
			p.advance()
			continue
		}
		args = append(args, arg)
		if p.at(token.Comma) {
			p.advance()
		}
	}
	gt := p.advance()
	return args, lt.Span.Cover(gt.Span)
}

// parseTypeText collects the tokens of one type up to a stop token at
// nesting depth zero. Types are kept as text and parsed later.
func (p *Parser) parseTypeText(stops ...token.Kind) (ast.TypeArg, bool) {
	start := p.pos
	depth := 0
loop:
	for {
		tok := p.peek()
		if depth == 0 {
			for _, k := range stops {
				if tok.Kind == k {
					break loop
				}
			}
		}
		switch tok.Kind {
		case token.EOF, token.SlashGt, token.LtSlash:
			break loop
		case token.Lt, token.LParen, token.LBracket:
			depth++
		case token.Gt, token.RParen, token.RBracket:
			if depth == 0 {
				break loop
			}
			depth--
		}
		p.advance()
	}
	if p.pos == start {
		return ast.TypeArg{}, false
	}
	sp := p.toks[start].Span.Cover(p.lastSpan)
	return ast.TypeArg{Text: p.text(sp), Span: sp}, true
}
