package parser

import (
	"strings"

	"viewc/internal/ast"
	"viewc/internal/diag"
	"viewc/internal/source"
	"viewc/internal/token"
)

// parseTag parses an element, component or fragment starting at `<`.
// It always consumes at least the `<`.
func (p *Parser) parseTag() *ast.Node {
	lt := p.advance()
	if p.at(token.Gt) {
		return p.parseFragment(lt)
	}

	name, nameSpan, ok := p.parseTagName()
	if !ok {
		p.reportf(diag.SynExpectTagName, p.diagSpan(), "expected a tag name after `<`, found %s", describe(p.peek()))
		p.recoverOpenTag()
		return nil
	}
	n := &ast.Node{Kind: ast.NodeComponent, Name: name, NameSpan: nameSpan}
	if ast.IsElementName(name) {
		n.Kind = ast.NodeElement
	}
	if p.at(token.Lt) {
		n.Generics, n.GenericsSpan = p.parseGenericList()
	}

	if !p.parseAttrs(n) {
		// The open tag was cut short; treat it as self-closing.
		n.SelfClosing = true
		n.OpenSpan = p.spanFrom(lt.Span)
		n.Span = n.OpenSpan
		return n
	}
	if p.at(token.SlashGt) {
		end := p.advance()
		n.SelfClosing = true
		n.OpenSpan = lt.Span.Cover(end.Span)
		n.Span = n.OpenSpan
		return n
	}
	gt := p.advance()
	n.OpenSpan = lt.Span.Cover(gt.Span)

	p.parseChildrenUntilClose(n)
	return n
}

func (p *Parser) parseFragment(lt token.Token) *ast.Node {
	gt := p.advance()
	n := &ast.Node{Kind: ast.NodeFragment, OpenSpan: lt.Span.Cover(gt.Span)}
	p.parseChildrenUntilClose(n)
	return n
}

// parseChildrenUntilClose parses children and the closing tag of n and
// sets its span.
func (p *Parser) parseChildrenUntilClose(n *ast.Node) {
	p.open = append(p.open, n.Name)
	n.Children = p.parseChildren(n)
	p.open = p.open[:len(p.open)-1]

	if p.fatal {
		n.Span = p.spanFrom(n.OpenSpan)
		return
	}
	if p.at(token.LtSlash) {
		if name, _, _ := p.peekCloseName(); name == n.Name {
			p.parseCloseTag(n)
			n.Span = n.OpenSpan.Cover(n.CloseSpan)
			return
		}
	}
	// End of input, or a closing tag that belongs to an ancestor: close n
	// implicitly.
	p.emit(diag.SynUnclosedTag, tagNameSpan(n), "unclosed "+tagLabel(n)+": no matching closing tag", nil)
	n.Span = n.OpenSpan
	if len(n.Children) > 0 {
		n.Span = n.Span.Cover(n.Children[len(n.Children)-1].Span)
	}
}

// parseChildren parses nodes until a closing tag for n or one of its
// ancestors, or the end of input.
func (p *Parser) parseChildren(n *ast.Node) []*ast.Node {
	var children []*ast.Node
	for !p.fatal {
		switch p.peek().Kind {
		case token.EOF:
			return children
		case token.Lt, token.StringLit, token.LBrace:
			if c := p.parseNode(); c != nil {
				children = append(children, c)
			}
			continue
		case token.LtSlash:
			name, _, ok := p.peekCloseName()
			if ok && (name == n.Name || p.isOpen(name)) {
				return children
			}
			p.skipStrayClose(n)
			continue
		}
		start := p.peek()
		p.skipText()
		p.reportf(diag.SynUnexpectedToken, start.Span.Cover(p.lastSpan),
			"unexpected %s: text must be written as a string literal", describe(start))
	}
	return children
}

func (p *Parser) isOpen(name string) bool {
	for _, open := range p.open {
		if open == name {
			return true
		}
	}
	return false
}

// peekCloseName reads the name of the closing tag at the current `</`
// without consuming anything. A fragment close `</>` has the empty name.
func (p *Parser) peekCloseName() (string, source.Span, bool) {
	if p.peekN(1).Kind == token.Gt {
		return "", p.peekN(1).Span, true
	}
	save, last := p.pos, p.lastSpan
	p.pos++
	name, sp, ok := p.parseTagName()
	p.pos, p.lastSpan = save, last
	return name, sp, ok
}

// parseCloseTag consumes `</Name<G>>` for n. Generics may be repeated on the
// closing tag only when identical to the opening list.
func (p *Parser) parseCloseTag(n *ast.Node) {
	lts := p.advance()
	if n.Kind != ast.NodeFragment {
		p.parseTagName()
	}
	if p.at(token.Lt) {
		args, sp := p.parseGenericList()
		if !sameGenerics(args, n.Generics) {
			d := []diag.Note{{Span: n.GenericsSpan, Msg: "opening tag generics"}}
			if n.GenericsSpan.Empty() {
				d = []diag.Note{{Span: n.NameSpan, Msg: "opening tag has no generics"}}
			}
			p.emit(diag.SynCloseTagGenericMismatch, sp,
				"closing tag generics do not match the opening tag of "+tagLabel(n), d)
		}
	}
	gt, ok := p.expect(token.Gt, diag.SynUnexpectedToken, "expected `>` to end the closing tag")
	if ok {
		n.CloseSpan = lts.Span.Cover(gt.Span)
	} else {
		n.CloseSpan = p.spanFrom(lts.Span)
	}
}

// skipStrayClose reports and consumes a closing tag that matches nothing
// open. parent is the innermost open tag, nil at the root.
func (p *Parser) skipStrayClose(parent *ast.Node) {
	lts := p.advance()
	name, _, _ := p.parseTagName()
	if p.at(token.Lt) {
		p.parseGenericList()
	}
	if p.at(token.Gt) {
		p.advance()
	}
	sp := lts.Span.Cover(p.lastSpan)
	if parent == nil {
		p.reportf(diag.SynUnexpectedCloseTag, sp, "unexpected closing tag `</%s>`: no tag is open", name)
		return
	}
	p.emit(diag.SynMismatchedCloseTag, sp,
		"closing tag `</"+name+">` does not match "+tagLabel(parent),
		[]diag.Note{{Span: tagNameSpan(parent), Msg: "innermost open tag"}})
}

// recoverOpenTag skips a malformed open tag up to its end.
func (p *Parser) recoverOpenTag() {
	for {
		switch p.peek().Kind {
		case token.Gt, token.SlashGt:
			p.advance()
			return
		case token.EOF, token.Lt, token.LtSlash:
			return
		}
		p.advance()
	}
}

func tagLabel(n *ast.Node) string {
	if n.Kind == ast.NodeFragment {
		return "fragment `<>`"
	}
	return "`<" + n.Name + ">`"
}

func tagNameSpan(n *ast.Node) source.Span {
	if n.Kind == ast.NodeFragment {
		return n.OpenSpan
	}
	return n.NameSpan
}

func sameGenerics(a, b []ast.TypeArg) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if squash(a[i].Text) != squash(b[i].Text) {
			return false
		}
	}
	return true
}

// squash drops whitespace so `Vec< T >` equals `Vec<T>`.
func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}
