package parser

import (
	"slices"

	"viewc/internal/ast"
	"viewc/internal/diag"
	"viewc/internal/lexer"
	"viewc/internal/source"
	"viewc/internal/token"
)

type Options struct {
	Reporter  diag.Reporter
	MaxErrors uint
}

// Result of parsing one invocation body.
type Result struct {
	View *ast.View
	// Fatal is set when the body could not be parsed at all: the pass must
	// stop after reporting.
	Fatal  bool
	Errors uint
}

// Parser holds the state for one invocation body. Tokens are read up front
// so the grammar can look ahead freely.
type Parser struct {
	lx       *lexer.Lexer
	file     *source.File
	toks     []token.Token
	pos      int
	opts     Options
	lastSpan source.Span
	errors   uint
	fatal    bool
	// open is the stack of tag names currently open; "" is a fragment.
	open []string
}

// Parse parses the markup in body, a range of file. A zero body means the
// whole file.
func Parse(file *source.File, body source.Span, opts Options) Result {
	if body == (source.Span{}) {
		body = file.Span()
	}
	p := newParser(file, body, opts)
	view := p.parseView(body)
	fatal := p.fatal || p.lx.Fatal()
	if fatal {
		view = nil
	}
	return Result{View: view, Fatal: fatal, Errors: p.errors + uint(p.lx.Errors())}
}

func newParser(file *source.File, body source.Span, opts Options) *Parser {
	if body == (source.Span{}) {
		body = file.Span()
	}
	lx := lexer.New(file, lexer.Options{Reporter: opts.Reporter, Range: body})
	p := &Parser{
		lx:       lx,
		file:     file,
		opts:     opts,
		lastSpan: source.Span{File: file.ID, Start: body.Start, End: body.Start},
	}
	for {
		tok := lx.Next()
		p.toks = append(p.toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return p
}

// ParseExpr parses body as a single host expression. It returns a BadExpr
// when nothing could be parsed.
func ParseExpr(file *source.File, body source.Span, opts Options) ast.Expr {
	p := newParser(file, body, opts)
	e := p.parseExpr()
	if tok := p.peek(); tok.Kind != token.EOF {
		p.reportf(diag.SynUnexpectedToken, tok.Span, "unexpected %s after expression", describe(tok))
	}
	if e == nil {
		e = &ast.BadExpr{Sp: body}
	}
	return e
}

func (p *Parser) parseView(body source.Span) *ast.View {
	view := &ast.View{Span: body}
	if p.at(token.EOF) {
		p.fatalf(diag.SynEmptyView, body, "empty view: expected at least one node")
		return view
	}

	p.parseGlobalClass(view)

	var roots []*ast.Node
	for !p.at(token.EOF) && !p.fatal {
		switch p.peek().Kind {
		case token.Lt, token.StringLit, token.LBrace:
			if n := p.parseNode(); n != nil {
				roots = append(roots, n)
			}
			continue
		case token.LtSlash:
			p.skipStrayClose(nil)
			continue
		}
		start := p.peek()
		p.skipText()
		if len(roots) == 0 && p.at(token.EOF) {
			p.fatalf(diag.SynExpectTagName, start.Span, "expected a tag, a string literal or a `{...}` block at the root of the view")
			return view
		}
		p.reportf(diag.SynUnexpectedToken, start.Span.Cover(p.lastSpan),
			"unexpected %s: text must be written as a string literal", describe(start))
	}
	if p.fatal {
		return view
	}

	switch len(roots) {
	case 0:
		p.fatalf(diag.SynExpectTagName, body, "expected at least one node in the view")
	case 1:
		view.Root = roots[0]
	default:
		view.Root = &ast.Node{
			Kind:     ast.NodeFragment,
			Span:     roots[0].Span.Cover(roots[len(roots)-1].Span),
			Implicit: true,
			Children: roots,
		}
	}
	return view
}

// parseGlobalClass handles a leading `class=expr,`.
func (p *Parser) parseGlobalClass(view *ast.View) {
	tok := p.peek()
	if tok.Kind != token.Ident || tok.Text != "class" || p.peekN(1).Kind != token.Assign {
		return
	}
	p.advance()
	p.advance()
	view.Class = p.parseAttrValue()
	view.ClassSpan = tok.Span.Cover(view.Class.Span())
	p.expect(token.Comma, diag.SynUnexpectedToken, "expected `,` after the global class")
}

// parseNode parses one node at the current position, or returns nil when
// the current token cannot start a node.
func (p *Parser) parseNode() *ast.Node {
	tok := p.peek()
	switch tok.Kind {
	case token.Lt:
		return p.parseTag()
	case token.StringLit:
		p.advance()
		return &ast.Node{Kind: ast.NodeText, Span: tok.Span, Raw: tok.Text, Text: unquote(tok.Text)}
	case token.LBrace:
		return p.parseExprChild()
	}
	return nil
}

// parseExprChild parses a `{ ... }` child. A block holding a single
// expression is unwrapped to that expression.
func (p *Parser) parseExprChild() *ast.Node {
	open := p.advance()
	block := p.parseBlockBody(open)
	n := &ast.Node{Kind: ast.NodeExpr, Span: block.Sp}
	switch {
	case len(block.Stmts) == 0 && block.Tail != nil:
		n.Expr = block.Tail
	case len(block.Stmts) > 0:
		n.Expr = block
	}
	return n
}

func (p *Parser) peek() token.Token { return p.peekN(0) }

func (p *Parser) peekN(n int) token.Token {
	if i := p.pos + n; i < len(p.toks) {
		return p.toks[i]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) at(k token.Kind) bool { return p.peek().Kind == k }

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}
